package chatbot

import (
	"context"

	"github.com/campus-buddy/backend/internal/storage/models"
	"github.com/campus-buddy/backend/pkg/circuitbreaker"
)

// BreakerStore guards a remote Store. While the breaker is open calls fail
// immediately with circuitbreaker.ErrCircuitOpen, so an unreachable cache
// does not add latency to every chat message.
type BreakerStore struct {
	next    Store
	breaker *circuitbreaker.CircuitBreaker
}

func NewBreakerStore(next Store, breaker *circuitbreaker.CircuitBreaker) *BreakerStore {
	return &BreakerStore{next: next, breaker: breaker}
}

func (s *BreakerStore) Append(ctx context.Context, sessionID string, turns ...models.Turn) error {
	return s.breaker.Execute(ctx, func() error {
		return s.next.Append(ctx, sessionID, turns...)
	})
}

func (s *BreakerStore) History(ctx context.Context, sessionID string) ([]models.Turn, error) {
	var turns []models.Turn
	err := s.breaker.Execute(ctx, func() error {
		var err error
		turns, err = s.next.History(ctx, sessionID)
		return err
	})
	return turns, err
}

func (s *BreakerStore) Reset(ctx context.Context, sessionID string) error {
	return s.breaker.Execute(ctx, func() error {
		return s.next.Reset(ctx, sessionID)
	})
}
