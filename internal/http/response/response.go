package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillmapper-backend/internal/platform/ctxutil"
)

// APIError is the body under "error". RequestID echoes X-Request-Id so a
// client report can be matched to the request log.
type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message:   msg,
			Code:      code,
			RequestID: requestID(c),
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func requestID(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		return td.RequestID
	}
	return ""
}
