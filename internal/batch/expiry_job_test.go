package batch

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"loan-origination/internal/journey"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSessionExpiryJob_ExpiresOnlyStaleOpenSessions(t *testing.T) {
	states := journey.NewInMemoryStateRepository()
	ctx := context.Background()
	now := time.Now()

	stale := journey.NewApplicationState(now.Add(-10 * 24 * time.Hour))
	fresh := journey.NewApplicationState(now)
	done := journey.NewApplicationState(now.Add(-10 * 24 * time.Hour))
	done.Stage = journey.StageSanctioned

	assert.NoError(t, states.Save(ctx, stale))
	assert.NoError(t, states.Save(ctx, fresh))
	assert.NoError(t, states.Save(ctx, done))

	job := NewSessionExpiryJob(states, 7*24*time.Hour, newTestLogger())
	assert.NoError(t, job.Run(ctx))

	got, err := states.Get(ctx, stale.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, journey.StageExpired, got.Stage)

	got, err = states.Get(ctx, fresh.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, journey.StageCollectingIdentity, got.Stage)

	got, err = states.Get(ctx, done.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, journey.StageSanctioned, got.Stage)
}

func TestSessionExpiryJob_NoIdleSessions(t *testing.T) {
	states := journey.NewInMemoryStateRepository()

	job := NewSessionExpiryJob(states, 7*24*time.Hour, newTestLogger())
	assert.NoError(t, job.Run(context.Background()))
}
