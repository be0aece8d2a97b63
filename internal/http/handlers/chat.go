package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/skillmapper-backend/internal/http/response"
	"github.com/yungbote/skillmapper-backend/internal/platform/apierr"
	"github.com/yungbote/skillmapper-backend/internal/platform/openai"
	"github.com/yungbote/skillmapper-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatReq struct {
	Prompt string `json:"prompt"`
	Format string `json:"format"`
}

// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "JSON body with prompt required")
		return
	}
	reply, err := h.chat.Reply(c.Request.Context(), req.Prompt, strings.EqualFold(req.Format, "html"))
	if err != nil {
		if errors.Is(err, openai.ErrUpstream) {
			_ = c.Error(err)
			response.RespondAPIError(c, apierr.Upstream(errCompletionUnavailable))
			return
		}
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, reply)
}
