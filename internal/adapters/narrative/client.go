// Package narrative talks to the remote text-generation service that
// writes the match, one batch of minutes at a time.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/okian/kickoff/internal/domain/model"
	"github.com/okian/kickoff/pkg/logger"
)

// Client defaults.
const (
	DefaultEndpoint = "https://open.bigmodel.cn/api/paas/v4/chat/completions"
	DefaultModel    = "glm-4.6"
	defaultTimeout  = 60 * time.Second
	maxErrorBody    = 512
)

// BatchRequest describes the minutes to simulate and the current teams.
type BatchRequest struct {
	Home     model.Team
	Away     model.Team
	Start    int
	Duration int
}

// End returns the last requested minute.
func (r BatchRequest) End() int {
	return r.Start + r.Duration - 1
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Stream         bool           `json:"stream"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Code    *json.Number `json:"code,omitempty"`
	Msg     string       `json:"msg,omitempty"`
	Error   *apiError    `json:"error,omitempty"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client requests narrative batches over a chat-completions API.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a client using apiKey as the bearer credential.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		endpoint:   DefaultEndpoint,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("narrative")
	}
	return c
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// SimulateBatch asks the remote service for req.Duration minutes starting
// at req.Start. Errors wrap the package sentinels; IsRateLimited tells the
// caller to back off.
func (c *Client) SimulateBatch(ctx context.Context, req BatchRequest) ([]model.Frame, error) {
	if !c.HasCredential() {
		return nil, ErrNoCredential
	}
	requestID := uuid.NewString()
	log := []logger.Field{
		logger.String("request_id", requestID),
		logger.Int("start", req.Start),
		logger.Int("duration", req.Duration),
	}

	body, err := json.Marshal(chatRequest{
		Model:          c.model,
		Messages:       []chatMessage{{Role: "user", Content: BuildPrompt(req)}},
		Stream:         false,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %w", ErrRequestFailed, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrRequestFailed, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn(ctx, "narrative request failed", append(log, logger.Error(err))...)
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrRequestFailed, err)
	}
	log = append(log, logger.Int("status", resp.StatusCode), logger.Duration("latency", time.Since(start)))

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn(ctx, "narrative source rate limited", log...)
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	}

	var cr chatResponse
	jsonErr := json.Unmarshal(respBody, &cr)
	if err := apiFailure(cr, jsonErr == nil); err != nil {
		c.logger.Warn(ctx, "narrative source returned an error", append(log, logger.Error(err))...)
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnexpectedCode, resp.StatusCode, truncate(respBody))
	}
	if jsonErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, jsonErr)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}

	frames, err := ParseFrames(cr.Choices[0].Message.Content, req.Start)
	if err != nil {
		c.logger.Warn(ctx, "narrative content unparseable", append(log, logger.Error(err))...)
		return nil, err
	}
	c.logger.Debug(ctx, "narrative batch received", append(log, logger.Int("frames", len(frames)))...)
	return frames, nil
}

// apiFailure maps the error envelopes the service uses, either a top-level
// code/msg pair or an error object.
func apiFailure(cr chatResponse, decoded bool) error {
	if !decoded {
		return nil
	}
	if cr.Code != nil && cr.Code.String() != "200" {
		if mentionsRateLimit(cr.Code.String(), cr.Msg) {
			return fmt.Errorf("%w: code %s: %s", ErrRateLimited, cr.Code, cr.Msg)
		}
		return fmt.Errorf("%w: code %s: %s", ErrUnexpectedCode, cr.Code, cr.Msg)
	}
	if cr.Error != nil && (cr.Error.Code != "" || cr.Error.Message != "") {
		if mentionsRateLimit(cr.Error.Code, cr.Error.Message) {
			return fmt.Errorf("%w: code %s: %s", ErrRateLimited, cr.Error.Code, cr.Error.Message)
		}
		return fmt.Errorf("%w: code %s: %s", ErrUnexpectedCode, cr.Error.Code, cr.Error.Message)
	}
	return nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		return string(b[:maxErrorBody]) + "..."
	}
	return string(b)
}
