package handlers

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillmapper-backend/internal/http/response"
	"github.com/yungbote/skillmapper-backend/internal/services"
)

const progressRequired = "userId, roadmapConfig, and roadmapData required"

type ProgressHandler struct {
	progress services.ProgressService
}

func NewProgressHandler(progress services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

// GET /api/progress?userId=
func (h *ProgressHandler) Get(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		badRequest(c, "userId required")
		return
	}
	if !authorizeUser(c, userID) {
		return
	}
	view, err := h.progress.Get(requestDB(c), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if view == nil {
		response.RespondOK(c, nil)
		return
	}
	response.RespondOK(c, view)
}

type saveProgressReq struct {
	UserID          string          `json:"userId"`
	RoadmapConfig   json.RawMessage `json:"roadmapConfig"`
	RoadmapData     json.RawMessage `json:"roadmapData"`
	ExpectedVersion *int64          `json:"expectedVersion"`
}

// POST /api/progress
func (h *ProgressHandler) Save(c *gin.Context) {
	var req saveProgressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, progressRequired)
		return
	}
	if req.UserID == "" || services.IsMissingJSON(req.RoadmapConfig) || services.IsMissingJSON(req.RoadmapData) {
		badRequest(c, progressRequired)
		return
	}
	if !authorizeUser(c, req.UserID) {
		return
	}
	version, err := h.progress.Save(requestDB(c), services.SaveProgressInput{
		UserID:          req.UserID,
		RoadmapConfig:   req.RoadmapConfig,
		RoadmapData:     req.RoadmapData,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "version": version})
}
