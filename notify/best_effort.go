package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const DefaultTimeout = 30 * time.Second

// FailureRecorder counts failed deliveries by notification kind.
type FailureRecorder interface {
	NotificationFailed(kind string)
}

// BestEffort runs every notification in its own goroutine on a context that
// survives the caller's cancellation, logging and counting failures.
type BestEffort struct {
	next     Notifier
	logger   *slog.Logger
	failures FailureRecorder
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewBestEffort(next Notifier, logger *slog.Logger, failures FailureRecorder) *BestEffort {
	return &BestEffort{next: next, logger: logger, failures: failures, timeout: DefaultTimeout}
}

func (b *BestEffort) WithTimeout(d time.Duration) *BestEffort {
	b.timeout = d
	return b
}

func (b *BestEffort) TournamentStatusChanged(ctx context.Context, msg StatusChange) {
	b.dispatch(ctx, "tournament_status_changed", slog.Int("tournament_id", msg.TournamentID), func(ctx context.Context) error {
		return b.next.TournamentStatusChanged(ctx, msg)
	})
}

func (b *BestEffort) TeamRegistrationRequested(ctx context.Context, msg Registration) {
	b.dispatch(ctx, "team_registration_requested", registrationAttrs(msg), func(ctx context.Context) error {
		return b.next.TeamRegistrationRequested(ctx, msg)
	})
}

func (b *BestEffort) TeamApproved(ctx context.Context, msg Registration) {
	b.dispatch(ctx, "team_approved", registrationAttrs(msg), func(ctx context.Context) error {
		return b.next.TeamApproved(ctx, msg)
	})
}

func (b *BestEffort) TeamRejected(ctx context.Context, msg Registration) {
	b.dispatch(ctx, "team_rejected", registrationAttrs(msg), func(ctx context.Context) error {
		return b.next.TeamRejected(ctx, msg)
	})
}

// Wait stops accepting notifications and blocks until the in-flight ones have finished.
// Notifications dispatched afterwards are dropped and counted as failures.
func (b *BestEffort) Wait() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *BestEffort) dispatch(parent context.Context, kind string, attr slog.Attr, send func(ctx context.Context) error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		b.logger.WarnContext(parent, "notification dropped after shutdown", slog.String("kind", kind), attr)
		b.recordFailure(kind)
		return
	}
	b.wg.Add(1)
	b.mu.Unlock()

	go func() {
		defer b.wg.Done()
		ctx, cancel := detachedContext(parent, b.timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				b.logger.ErrorContext(ctx, "notification panicked", slog.String("kind", kind), attr, slog.Any("panic", r))
				b.recordFailure(kind)
			}
		}()

		if err := send(ctx); err != nil {
			b.logger.WarnContext(ctx, "notification failed", slog.String("kind", kind), attr, slog.Any("error", err))
			b.recordFailure(kind)
		}
	}()
}

func (b *BestEffort) recordFailure(kind string) {
	if b.failures != nil {
		b.failures.NotificationFailed(kind)
	}
}

func detachedContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}

func registrationAttrs(msg Registration) slog.Attr {
	return slog.Group("registration", slog.Int("tournament_id", msg.TournamentID), slog.Int("team_id", msg.TeamID))
}
