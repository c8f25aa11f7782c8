// Package worker turns expense-change events into stored insight digests.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendsight/internal/amqp"
	"spendsight/internal/insights"
	"spendsight/internal/store"
)

const defaultDebounce = 30 * time.Second

// DigestWorker consumes expense events and regenerates the rule-based
// insight digest for the affected owner. Events are debounced per owner:
// a burst of writes produces one digest, not one per event. Because the
// digest reads current store state, processing only the latest event per
// owner is always correct.
type DigestWorker struct {
	insights *insights.Service
	digests  store.DigestStore
	debounce time.Duration
	logger   *slog.Logger

	mu         sync.Mutex
	lastDigest map[string]time.Time
	now        func() time.Time
}

func NewDigestWorker(svc *insights.Service, digests store.DigestStore) *DigestWorker {
	return &DigestWorker{
		insights:   svc,
		digests:    digests,
		debounce:   defaultDebounce,
		logger:     slog.Default().With("component", "digest_worker"),
		lastDigest: make(map[string]time.Time),
		now:        time.Now,
	}
}

// WithDebounce overrides the per-owner debounce window.
func (w *DigestWorker) WithDebounce(d time.Duration) *DigestWorker {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// HandleExpenseEvent processes one event. Returning an error nacks the
// delivery for redelivery, so only store failures propagate; a debounced
// skip is a successful no-op.
func (w *DigestWorker) HandleExpenseEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	if msg.Owner == "" {
		w.logger.WarnContext(ctx, "event without owner, dropping", "expense_id", msg.ExpenseID)
		return nil
	}

	now := w.now()
	if !w.shouldDigest(msg.Owner, now) {
		w.logger.DebugContext(ctx, "digest debounced", "owner", msg.Owner)
		return nil
	}

	digest, ok, err := w.insights.Digest(ctx, msg.Owner, now)
	if err != nil {
		w.release(msg.Owner)
		return fmt.Errorf("generate digest: %w", err)
	}
	if !ok {
		// last expense deleted; nothing to digest
		w.logger.InfoContext(ctx, "no data to digest", "owner", msg.Owner)
		return nil
	}

	if err := w.digests.SaveDigest(ctx, digest); err != nil {
		w.release(msg.Owner)
		return fmt.Errorf("save digest: %w", err)
	}

	w.logger.InfoContext(ctx, "digest stored",
		"owner", msg.Owner,
		"month", digest.Month,
		"trigger_action", msg.Action)
	return nil
}

func (w *DigestWorker) shouldDigest(owner string, now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if last, ok := w.lastDigest[owner]; ok && now.Sub(last) < w.debounce {
		return false
	}
	w.lastDigest[owner] = now
	return true
}

// release forgets the debounce mark so a failed digest can be retried on
// redelivery.
func (w *DigestWorker) release(owner string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.lastDigest, owner)
}
