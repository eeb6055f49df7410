package chatgpt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/katrohit/nutrifolio/internal/metrics"
	"github.com/katrohit/nutrifolio/pkg/config"
)

var (
	ErrMissingAPIKey   = errors.New("OpenAI API key is not configured")
	ErrEmptyCompletion = errors.New("no response from OpenAI")
)

const classificationTemperature = 0.2

// UpstreamError is returned when the OpenAI API call does not succeed.
// Message carries the provider's own error text.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("OpenAI API error (status %d): %s", e.StatusCode, e.Message)
	}
	return "OpenAI API error: " + e.Message
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Completer produces a JSON-mode chat completion for a single user turn.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

type Service struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewService(cfg *config.Config) *Service {
	s := &Service{
		model:   cfg.OpenAIModel,
		timeout: cfg.OpenAITimeout,
	}
	if cfg.OpenAIKey == "" {
		logrus.Warn("OPENAI_KEY is empty, classification requests will fail")
		return s
	}

	clientCfg := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}
	s.client = openai.NewClientWithConfig(clientCfg)
	return s
}

func (s *Service) CompleteJSON(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: classificationTemperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	observe("chat_completion", start, err)
	if err != nil {
		logrus.Errorf("OpenAI chat completion failed: %v", err)
		return "", toUpstreamError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}

	logrus.Debugf("OpenAI completion used %d prompt and %d completion tokens",
		resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	return resp.Choices[0].Message.Content, nil
}

// Transcribe converts a voice recording to text. filename only tells the
// API which audio container the data is in.
func (s *Service) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   audio,
	})
	observe("transcription", start, err)
	if err != nil {
		logrus.Errorf("OpenAI transcription failed: %v", err)
		return "", toUpstreamError(err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// ready reports ErrMissingAPIKey when the service was built without a key.
func (s *Service) ready() error {
	if s.client == nil {
		return ErrMissingAPIKey
	}
	return nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func observe(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMRequestDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}

func toUpstreamError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
	}

	return &UpstreamError{Message: err.Error(), Err: err}
}
