package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/metrics"
	"github.com/campus-buddy/backend/pkg/config"
	"github.com/campus-buddy/backend/pkg/logger"
)

const (
	DefaultTimeout = 20 * time.Second

	EmptyReply = "I'm sorry, I couldn't process that right now."
)

// ErrorReply formats the apology returned when the provider call fails.
func ErrorReply(err error) string {
	return fmt.Sprintf("Sorry, I couldn't connect to the assistant service. (%v)", err)
}

// Adapter is the failure boundary around a Provider. Answer always returns
// text within the configured timeout and never panics.
type Adapter struct {
	provider Provider
	timeout  time.Duration
}

func NewAdapter(provider Provider, timeout time.Duration) *Adapter {
	if provider == nil {
		provider = MockProvider{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Adapter{provider: provider, timeout: timeout}
}

func (a *Adapter) Provider() string {
	return a.provider.Name()
}

type generation struct {
	text string
	err  error
}

func (a *Adapter) Answer(ctx context.Context, question string) string {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan generation, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- generation{err: fmt.Errorf("provider panicked: %v", r)}
			}
		}()
		text, err := a.provider.Generate(ctx, Preamble, question)
		done <- generation{text: text, err: err}
	}()

	var out generation
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
		if errors.Is(out.err, context.DeadlineExceeded) {
			out.err = fmt.Errorf("request timed out after %s", a.timeout)
		}
	}

	name := a.provider.Name()
	metrics.AssistantDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if out.err != nil {
		metrics.AssistantRequests.WithLabelValues(name, "error").Inc()
		logger.Warn("Assistant call failed",
			zap.String("provider", name),
			zap.Error(out.err),
		)
		return ErrorReply(out.err)
	}

	metrics.AssistantRequests.WithLabelValues(name, "success").Inc()

	text := strings.TrimSpace(out.text)
	if text == "" {
		return EmptyReply
	}
	return text
}

// New selects the provider named in cfg. A provider without an API key
// degrades to MockProvider so the service still answers.
func New(ctx context.Context, cfg config.AssistantConfig) (*Adapter, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewAdapter(provider, timeout), nil
}

func newProvider(ctx context.Context, cfg config.AssistantConfig) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = "gemini"
	}
	if name != "gemini" && name != "openai" && name != "mock" {
		return nil, fmt.Errorf("unknown assistant provider %q", cfg.Provider)
	}

	if name != "mock" && cfg.APIKey == "" {
		logger.Warn("No assistant API key configured, using offline provider", zap.String("provider", name))
		return MockProvider{}, nil
	}

	switch name {
	case "gemini":
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, cfg.Temperature, cfg.MaxTokens)
	case "openai":
		model := cfg.Model
		if strings.HasPrefix(model, "gemini") {
			model = ""
		}
		return NewOpenAIProvider(cfg.APIKey, model, cfg.Temperature, cfg.MaxTokens), nil
	default:
		return MockProvider{}, nil
	}
}
