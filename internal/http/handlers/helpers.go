package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillmapper-backend/internal/http/response"
	"github.com/yungbote/skillmapper-backend/internal/platform/apierr"
	"github.com/yungbote/skillmapper-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillmapper-backend/internal/platform/dbctx"
)

func requestDB(c *gin.Context) dbctx.Context {
	return dbctx.Context{Ctx: c.Request.Context()}
}

// authorizeUser rejects requests whose userId differs from the verified
// token subject. Unauthenticated deployments accept any userId.
func authorizeUser(c *gin.Context, userID string) bool {
	sub := ctxutil.UserID(c.Request.Context())
	if sub == "" || sub == strings.TrimSpace(userID) {
		return true
	}
	response.RespondError(c, http.StatusForbidden, apierr.CodeForbidden, errors.New("userId does not match token subject"))
	return false
}

func badRequest(c *gin.Context, msg string) {
	response.RespondError(c, http.StatusBadRequest, apierr.CodeInvalidRequest, errors.New(msg))
}
