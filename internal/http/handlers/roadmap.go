package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillmapper-backend/internal/http/response"
	"github.com/yungbote/skillmapper-backend/internal/modules/roadmap"
	"github.com/yungbote/skillmapper-backend/internal/platform/apierr"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
	"github.com/yungbote/skillmapper-backend/internal/services"
)

var errCompletionUnavailable = errors.New("completion service unavailable")

type RoadmapHandler struct {
	log      *logger.Logger
	roadmaps services.RoadmapService
}

func NewRoadmapHandler(log *logger.Logger, roadmaps services.RoadmapService) *RoadmapHandler {
	return &RoadmapHandler{
		log:      log.With("handler", "RoadmapHandler"),
		roadmaps: roadmaps,
	}
}

type careerReq struct {
	Career     string `json:"career"`
	Difficulty string `json:"difficulty"`
}

// bind rejects only a missing or undecodable body. Field values, empty ones
// included, reach the prompt as sent.
func (h *RoadmapHandler) bind(c *gin.Context) (careerReq, bool) {
	var req careerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "JSON body with career and difficulty required")
		return req, false
	}
	return req, true
}

func (h *RoadmapHandler) fail(c *gin.Context, err error) {
	if roadmap.IsUpstream(err) {
		_ = c.Error(err)
		response.RespondAPIError(c, apierr.Upstream(errCompletionUnavailable))
		return
	}
	response.RespondAPIError(c, err)
}

// POST /api/resources
func (h *RoadmapHandler) Resources(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.roadmaps.Roadmap(c.Request.Context(), req.Career, req.Difficulty)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/suggestions
func (h *RoadmapHandler) Suggestions(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	res, err := h.roadmaps.Suggestions(c.Request.Context(), req.Career, req.Difficulty)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.RespondOK(c, res)
}
