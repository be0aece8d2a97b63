package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillmapper-backend/internal/platform/apierr"
)

// RespondAPIError writes err through the envelope using the status and code
// it carries. Unclassified errors become a 500 with a generic message; the
// original error is attached to the gin context for the request log.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae == nil {
		RespondError(c, http.StatusInternalServerError, apierr.CodeInternal, nil)
		return
	}
	_ = c.Error(err)
	if ae.Status >= http.StatusInternalServerError && ae.Code == apierr.CodeInternal {
		RespondError(c, ae.Status, ae.Code, errInternal)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

type internalError struct{}

func (internalError) Error() string { return "internal error" }

var errInternal error = internalError{}
