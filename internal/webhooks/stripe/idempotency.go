package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/luisherrera/barberlane-backend/pkg/redis"
)

// IdempotencyGuard short-circuits redelivered webhook events. The mark is
// written before processing; on handler failure it is removed again so the
// processor's automatic retry gets through.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

// NewIdempotencyGuard builds a guard scoped to one webhook route.
func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope}, nil
}

// CheckAndMark reports whether the event was already seen and, if not, marks
// it in the same atomic operation.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	fresh, err := g.store.SetNX(ctx, g.store.IdempotencyKey(g.scope, eventID), "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !fresh, nil
}

// Delete clears the mark so a retry can reprocess the event.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return g.store.Del(ctx, g.store.IdempotencyKey(g.scope, eventID))
}
