package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/journey"
)

// SessionExpiryJob closes conversation sessions that have been idle
// longer than the configured window. It runs on a cron schedule and
// only touches non-terminal sessions.
type SessionExpiryJob struct {
	states  journey.StateRepository
	maxIdle time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewSessionExpiryJob(states journey.StateRepository, maxIdle time.Duration, logger *slog.Logger) *SessionExpiryJob {
	if states == nil || logger == nil {
		panic("SessionExpiryJob dependencies cannot be nil")
	}
	if maxIdle <= 0 {
		maxIdle = 7 * 24 * time.Hour
	}
	return &SessionExpiryJob{
		states:  states,
		maxIdle: maxIdle,
		logger:  logger.With("job", "SessionExpiry"),
		now:     time.Now,
	}
}

func (j *SessionExpiryJob) Run(ctx context.Context) error {
	startTime := j.now()
	cutoff := startTime.Add(-j.maxIdle)
	j.logger.InfoContext(ctx, "Starting session expiry job.", slog.Time("cutoff", cutoff))

	idle, err := j.states.ListIdleSince(ctx, cutoff)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list idle sessions, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list idle sessions: %w", err)
	}

	if len(idle) == 0 {
		j.logger.InfoContext(ctx, "No idle sessions to expire.", slog.Duration("duration", j.now().Sub(startTime)))
		return nil
	}

	var wg sync.WaitGroup
	var expiredCount, errorCount int32

	for _, state := range idle {
		wg.Add(1)
		go func(s *journey.ApplicationState) {
			defer wg.Done()

			logCtx := j.logger.With(slog.String("sessionID", s.SessionID))

			s.Stage = journey.StageExpired
			s.UpdatedAt = j.now()
			if err := j.states.Save(ctx, s); err != nil {
				logCtx.ErrorContext(ctx, "Failed to expire session", slog.Any("error", err))
				atomic.AddInt32(&errorCount, 1)
				return
			}
			logCtx.InfoContext(ctx, "Session expired.")
			atomic.AddInt32(&expiredCount, 1)
		}(state)
	}

	wg.Wait()
	monitoring.SessionsExpired(int(atomic.LoadInt32(&expiredCount)))

	summaryLog := j.logger.With(
		slog.Duration("duration", j.now().Sub(startTime)),
		slog.Int("idle_sessions", len(idle)),
		slog.Int("sessions_expired", int(expiredCount)),
		slog.Int("errors_encountered", int(errorCount)),
	)
	if errorCount > 0 {
		summaryLog.WarnContext(ctx, "Session expiry job finished with errors.")
		return fmt.Errorf("job completed with %d errors", errorCount)
	}
	summaryLog.InfoContext(ctx, "Session expiry job finished successfully.")
	return nil
}
