package openai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/skillmapper-backend/internal/observability"
	"github.com/yungbote/skillmapper-backend/internal/platform/logger"
)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1/"
	DefaultModel   = "openai/chatgpt-4o-latest"
)

var (
	// ErrUpstream marks a completion API that could not be reached: transport
	// errors, timeouts and cancellation.
	ErrUpstream = errors.New("completion upstream unreachable")
	// ErrMalformedReply marks a completion API that answered with something
	// other than a usable completion: an error status or an undecodable body.
	ErrMalformedReply = errors.New("completion reply malformed")
)

// Client sends one prompt as a single user message and returns the text of
// the first choice. A reply without choices yields "" and no error.
type Client interface {
	Complete(ctx context.Context, kind, prompt string, maxTokens int) (string, error)
	Model() string
}

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

type client struct {
	log   *logger.Logger
	api   oai.Client
	model string
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	return NewWithHTTPClient(log, cfg, nil)
}

// NewWithHTTPClient is NewClient with an explicit transport, used by tests.
func NewWithHTTPClient(log *logger.Logger, cfg Config, hc *http.Client) (Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithMaxRetries(retries),
		option.WithRequestTimeout(timeout),
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	if log == nil {
		log = logger.Nop()
	}
	return &client{
		log:   log.With("service", "OpenAIClient", "model", model),
		api:   oai.NewClient(opts...),
		model: model,
	}, nil
}

func (c *client) Model() string { return c.model }

func (c *client) Complete(ctx context.Context, kind, prompt string, maxTokens int) (string, error) {
	ctx, span := observability.Tracer().Start(ctx, "openai.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.String("llm.kind", kind),
		attribute.Int("llm.max_tokens", maxTokens),
	)

	params := oai.ChatCompletionNewParams{
		Model:    oai.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{oai.UserMessage(prompt)},
	}
	if maxTokens > 0 {
		params.MaxTokens = oai.Int(int64(maxTokens))
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		status := statusOf(err)
		observability.Current().ObserveLLMRequest(c.model, kind, status, dur, 0, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		c.log.Warn("completion failed", "kind", kind, "status", status, "duration_ms", dur.Milliseconds(), "error", err)
		if isTransport(err) {
			return "", fmt.Errorf("%w: %w", ErrUpstream, err)
		}
		return "", fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	observability.Current().ObserveLLMRequest(c.model, kind, "200", dur,
		int(resp.Usage.PromptTokens), int(resp.Usage.CompletionTokens))
	if len(resp.Choices) == 0 {
		c.log.Warn("completion returned no choices", "kind", kind)
		return "", nil
	}
	text := resp.Choices[0].Message.Content
	c.log.Debug("completion ok", "kind", kind, "duration_ms", dur.Milliseconds(), "chars", len(text))
	return text, nil
}

// isTransport reports whether err means no HTTP exchange completed. An
// *oai.Error carries a status, and anything else the SDK returns after a
// response arrived is a body it could not decode.
func isTransport(err error) bool {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func statusOf(err error) string {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		return strconv.Itoa(apiErr.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if isTransport(err) {
		return "transport"
	}
	return "decode"
}
