package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillmapper-backend/internal/platform/ctxutil"
)

func TestAttachTraceContextRequestID(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		sent string
		keep bool
	}{
		{name: "absent", sent: "", keep: false},
		{name: "opaque token kept", sent: "web-retry_7.a", keep: true},
		{name: "spaces rejected", sent: "a b", keep: false},
		{name: "log injection rejected", sent: "abc\nlevel=error", keep: false},
		{name: "too long rejected", sent: strings.Repeat("x", 65), keep: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var seen *ctxutil.TraceData
			r := gin.New()
			r.Use(AttachTraceContext())
			r.GET("/api/streak", func(c *gin.Context) {
				seen = ctxutil.GetTraceData(c.Request.Context())
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/streak", nil)
			if tc.sent != "" {
				req.Header[headerRequestID] = []string{tc.sent}
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if seen == nil {
				t.Fatalf("trace data missing from request context")
			}
			got := rec.Header().Get(headerRequestID)
			if got == "" || got != seen.RequestID {
				t.Fatalf("header=%q context=%q", got, seen.RequestID)
			}
			if (got == tc.sent) != tc.keep {
				t.Fatalf("request id=%q sent=%q keep=%v", got, tc.sent, tc.keep)
			}
			if rec.Header().Get(headerTraceID) == "" || seen.TraceID == "" {
				t.Fatalf("trace id missing")
			}
		})
	}
}
