// Package chatbot routes student messages to an instant FAQ answer or, on a
// miss, to the remote assistant.
package chatbot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/metrics"
	"github.com/campus-buddy/backend/internal/storage/models"
	"github.com/campus-buddy/backend/pkg/logger"
)

type Source string

const (
	SourceRule    Source = "rule"
	SourceRemote  Source = "remote"
	SourceUnknown Source = "unknown"
)

// Label is the heading shown above an answer in the chat UI.
func (s Source) Label() string {
	switch s {
	case SourceRule:
		return "Campus Buddy — Instant Answer"
	case SourceRemote:
		return "Campus Buddy — Smart Assistant"
	default:
		return "Campus Buddy"
	}
}

const UnknownReply = "I'm not sure how to answer that right now."

type Outcome struct {
	Answer string `json:"answer"`
	Source Source `json:"source"`
}

// Matcher finds an instant answer for text.
type Matcher interface {
	Match(text string) (string, bool)
}

// Answerer produces a remote answer. It must not fail; errors are
// reported as answer text.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

type Dispatcher struct {
	matcher  Matcher
	answerer Answerer
	store    Store
}

func NewDispatcher(matcher Matcher, answerer Answerer, store Store) *Dispatcher {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Dispatcher{matcher: matcher, answerer: answerer, store: store}
}

// Respond answers input from the FAQ when possible and calls the assistant
// exactly once otherwise.
func (d *Dispatcher) Respond(ctx context.Context, input string) Outcome {
	start := time.Now()
	out := d.respond(ctx, input)

	metrics.DispatchTotal.WithLabelValues(string(out.Source)).Inc()
	metrics.DispatchDuration.WithLabelValues(string(out.Source)).Observe(time.Since(start).Seconds())

	logger.Ctx(ctx).Debug("Message dispatched",
		zap.String("source", string(out.Source)),
		zap.Duration("latency", time.Since(start)),
	)
	return out
}

func (d *Dispatcher) respond(ctx context.Context, input string) Outcome {
	if answer, ok := d.matcher.Match(input); ok {
		return Outcome{Answer: answer, Source: SourceRule}
	}

	answer := d.answerer.Answer(ctx, input)
	if strings.TrimSpace(answer) == "" {
		return Outcome{Answer: UnknownReply, Source: SourceUnknown}
	}
	return Outcome{Answer: answer, Source: SourceRemote}
}

// Chat is Respond plus history bookkeeping. An empty sessionID starts a new
// session; the id in use is returned. History failures are logged only.
func (d *Dispatcher) Chat(ctx context.Context, sessionID, input string) (Outcome, string) {
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	asked := time.Now()
	out := d.Respond(ctx, input)

	err := d.store.Append(ctx, sessionID,
		models.Turn{Role: models.RoleUser, Text: input, CreatedAt: asked},
		models.Turn{Role: models.RoleAssistant, Text: out.Answer, Source: string(out.Source), CreatedAt: time.Now()},
	)
	if err != nil {
		metrics.HistoryStoreErrors.WithLabelValues("append").Inc()
		logger.Ctx(ctx).Warn("Failed to store chat turns", zap.String("session_id", sessionID), zap.Error(err))
	}

	return out, sessionID
}

func (d *Dispatcher) History(ctx context.Context, sessionID string) ([]models.Turn, error) {
	turns, err := d.store.History(ctx, sessionID)
	if err != nil {
		metrics.HistoryStoreErrors.WithLabelValues("history").Inc()
		return nil, err
	}
	return turns, nil
}

func (d *Dispatcher) Reset(ctx context.Context, sessionID string) error {
	if err := d.store.Reset(ctx, sessionID); err != nil {
		metrics.HistoryStoreErrors.WithLabelValues("reset").Inc()
		return err
	}
	return nil
}
