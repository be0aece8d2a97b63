package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
	"github.com/yungbote/skillmapper-backend/internal/platform/openai"
)

type fakeChatLLM struct {
	reply     string
	err       error
	prompt    string
	maxTokens int
}

func (f *fakeChatLLM) Complete(_ context.Context, _ string, prompt string, maxTokens int) (string, error) {
	f.prompt = prompt
	f.maxTokens = maxTokens
	return f.reply, f.err
}

func (f *fakeChatLLM) Model() string { return "fake" }

func TestChatReply(t *testing.T) {
	llm := &fakeChatLLM{reply: "Practice **daily**."}
	svc := NewChatService(logger.Nop(), llm, 0)

	got, err := svc.Reply(context.Background(), "How do I get better at chess?", false)
	require.NoError(t, err)
	assert.Equal(t, "Practice **daily**.", got.Message)
	assert.Empty(t, got.MessageHTML)
	assert.Equal(t, 1000, llm.maxTokens)
	assert.True(t, strings.HasSuffix(llm.prompt, "answers the question: How do I get better at chess?"))
}

func TestChatReplyHTML(t *testing.T) {
	llm := &fakeChatLLM{reply: "Practice **daily**.\n<script>alert(1)</script>"}
	svc := NewChatService(logger.Nop(), llm, 200)

	got, err := svc.Reply(context.Background(), "q", true)
	require.NoError(t, err)
	assert.Contains(t, got.MessageHTML, "<strong>daily</strong>")
	assert.NotContains(t, got.MessageHTML, "<script>")
	assert.Equal(t, 200, llm.maxTokens)
}

func TestChatReplyEmpty(t *testing.T) {
	svc := NewChatService(logger.Nop(), &fakeChatLLM{reply: "  \n"}, 0)
	got, err := svc.Reply(context.Background(), "q", false)
	require.NoError(t, err)
	assert.Equal(t, NoResponseMessage, got.Message)
}

func TestChatReplyUnusableUpstreamAnswer(t *testing.T) {
	svc := NewChatService(logger.Nop(), &fakeChatLLM{err: fmt.Errorf("%w: status 429", openai.ErrMalformedReply)}, 0)
	reply, err := svc.Reply(context.Background(), "hi", false)
	require.NoError(t, err)
	assert.Equal(t, NoResponseMessage, reply.Message)
}

func TestChatReplyUpstreamError(t *testing.T) {
	svc := NewChatService(logger.Nop(), &fakeChatLLM{err: fmt.Errorf("%w: boom", openai.ErrUpstream)}, 0)
	_, err := svc.Reply(context.Background(), "q", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, openai.ErrUpstream))
}
