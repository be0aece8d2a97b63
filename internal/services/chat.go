package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/yungbote/skillmapper-backend/internal/modules/roadmap"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
	"github.com/yungbote/skillmapper-backend/internal/platform/openai"
)

// NoResponseMessage is returned when the model replies with empty text.
const NoResponseMessage = "No response from AI."

type ChatReply struct {
	Message     string `json:"message"`
	MessageHTML string `json:"messageHtml,omitempty"`
}

// ChatService answers one prompt per call. Nothing is remembered between
// calls.
type ChatService interface {
	Reply(ctx context.Context, prompt string, renderHTML bool) (ChatReply, error)
}

type chatService struct {
	log       *logger.Logger
	llm       openai.Client
	maxTokens int
	md        goldmark.Markdown
}

func NewChatService(baseLog *logger.Logger, llm openai.Client, maxTokens int) ChatService {
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &chatService{
		log:       baseLog.With("service", "ChatService"),
		llm:       llm,
		maxTokens: maxTokens,
		// Raw HTML in model output is dropped; goldmark only passes it
		// through with html.WithUnsafe.
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

func (s *chatService) Reply(ctx context.Context, prompt string, renderHTML bool) (ChatReply, error) {
	text, err := s.llm.Complete(ctx, "chat", roadmap.ChatPrompt(prompt), s.maxTokens)
	if errors.Is(err, openai.ErrMalformedReply) {
		s.log.Warn("chat reply unusable", "error", err)
		text, err = "", nil
	}
	if err != nil {
		return ChatReply{}, fmt.Errorf("chat completion: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		text = NoResponseMessage
	}
	reply := ChatReply{Message: text}
	if renderHTML {
		var buf bytes.Buffer
		if err := s.md.Convert([]byte(text), &buf); err != nil {
			s.log.Warn("markdown render failed", "error", err)
		} else {
			reply.MessageHTML = buf.String()
		}
	}
	return reply, nil
}
