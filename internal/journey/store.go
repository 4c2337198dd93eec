package journey

import (
	"context"
	"fmt"
	"sync"
	"time"

	"loan-origination/internal/pkg/apperrors"
)

// StateRepository persists ApplicationState per session. Implementations
// must return independent copies so callers never share mutable state.
type StateRepository interface {
	Get(ctx context.Context, sessionID string) (*ApplicationState, error)
	Save(ctx context.Context, state *ApplicationState) error
	// ListIdleSince returns open sessions whose last update predates the
	// cutoff. Terminal sessions are excluded.
	ListIdleSince(ctx context.Context, cutoff time.Time) ([]*ApplicationState, error)
}

// InMemoryStateRepository is the default store for tests and single
// instance deployments.
type InMemoryStateRepository struct {
	mu     sync.RWMutex
	states map[string]*ApplicationState
}

var _ StateRepository = (*InMemoryStateRepository)(nil)

func NewInMemoryStateRepository() *InMemoryStateRepository {
	return &InMemoryStateRepository{states: make(map[string]*ApplicationState)}
}

func (r *InMemoryStateRepository) Get(ctx context.Context, sessionID string) (*ApplicationState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", apperrors.ErrNotFound, sessionID)
	}
	return state.Clone(), nil
}

func (r *InMemoryStateRepository) Save(ctx context.Context, state *ApplicationState) error {
	if state == nil || state.SessionID == "" {
		return apperrors.NewValidationError("sessionId", "state must carry a session id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.SessionID] = state.Clone()
	return nil
}

func (r *InMemoryStateRepository) ListIdleSince(ctx context.Context, cutoff time.Time) ([]*ApplicationState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var idle []*ApplicationState
	for _, state := range r.states {
		if isTerminal(state.Stage) {
			continue
		}
		if state.UpdatedAt.Before(cutoff) {
			idle = append(idle, state.Clone())
		}
	}
	return idle, nil
}

func isTerminal(stage Stage) bool {
	switch stage {
	case StageSanctioned, StageEnd, StageExpired:
		return true
	}
	return false
}
