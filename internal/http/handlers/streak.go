package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillmapper-backend/internal/http/response"
	"github.com/yungbote/skillmapper-backend/internal/services"
)

type StreakHandler struct {
	streaks services.StreakService
}

func NewStreakHandler(streaks services.StreakService) *StreakHandler {
	return &StreakHandler{streaks: streaks}
}

// GET /api/streak?userId=
func (h *StreakHandler) Get(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		badRequest(c, "userId required")
		return
	}
	if !authorizeUser(c, userID) {
		return
	}
	view, err := h.streaks.Get(requestDB(c), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

type checkInReq struct {
	UserID string `json:"userId"`
}

// POST /api/streak/checkin
func (h *StreakHandler) CheckIn(c *gin.Context) {
	var req checkInReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		badRequest(c, "userId required")
		return
	}
	if !authorizeUser(c, req.UserID) {
		return
	}
	view, err := h.streaks.CheckIn(requestDB(c), req.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

type weeklyGoalReq struct {
	UserID     string `json:"userId"`
	WeeklyGoal *int   `json:"weeklyGoal"`
}

// PUT /api/streak/goal
func (h *StreakHandler) SetWeeklyGoal(c *gin.Context) {
	var req weeklyGoalReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" || req.WeeklyGoal == nil {
		badRequest(c, "userId and weeklyGoal required")
		return
	}
	if !authorizeUser(c, req.UserID) {
		return
	}
	view, err := h.streaks.SetWeeklyGoal(requestDB(c), req.UserID, *req.WeeklyGoal)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}
