package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/journey"
	"loan-origination/internal/pkg/apperrors"
)

// SessionRepository stores the full application state as a JSONB
// document per session, with the stage and last-update time lifted into
// their own columns for querying.
type SessionRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ journey.StateRepository = (*SessionRepository)(nil)

func NewSessionRepository(db DBPool, logger *slog.Logger) *SessionRepository {
	if db == nil {
		panic("DBPool cannot be nil for SessionRepository")
	}
	return &SessionRepository{db: db, logger: logger.With("component", "SessionRepository")}
}

func (r *SessionRepository) Get(ctx context.Context, sessionID string) (*journey.ApplicationState, error) {
	logCtx := r.logger.With(slog.String("operation", "Get"), slog.String("sessionID", sessionID))

	query := `SELECT state FROM sessions WHERE session_id = $1`

	var raw []byte
	if err := r.db.QueryRow(ctx, query, sessionID).Scan(&raw); err != nil {
		return nil, translateDBError(err, logCtx)
	}

	var state journey.ApplicationState
	if err := json.Unmarshal(raw, &state); err != nil {
		logCtx.ErrorContext(ctx, "Failed to decode session state", slog.Any("error", err))
		return nil, fmt.Errorf("%w: corrupt session state for %s: %v", apperrors.ErrInternalServer, sessionID, err)
	}
	return &state, nil
}

func (r *SessionRepository) Save(ctx context.Context, state *journey.ApplicationState) error {
	if state == nil || state.SessionID == "" {
		return apperrors.NewValidationError("sessionId", "state must carry a session id")
	}

	logCtx := r.logger.With(slog.String("operation", "Save"), slog.String("sessionID", state.SessionID))

	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("%w: failed to encode session state: %v", apperrors.ErrInternalServer, err)
	}

	query := `
        INSERT INTO sessions (session_id, stage, state, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (session_id)
        DO UPDATE SET stage = EXCLUDED.stage, state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, state.SessionID, string(state.Stage), raw, state.CreatedAt, state.UpdatedAt); err != nil {
		return translateDBError(err, logCtx)
	}
	return nil
}

func (r *SessionRepository) ListIdleSince(ctx context.Context, cutoff time.Time) ([]*journey.ApplicationState, error) {
	logCtx := r.logger.With(slog.String("operation", "ListIdleSince"))

	query := `
        SELECT state FROM sessions
        WHERE updated_at < $1
          AND stage NOT IN ($2, $3, $4)
        ORDER BY updated_at`

	rows, err := r.db.Query(ctx, query, cutoff,
		string(journey.StageSanctioned), string(journey.StageEnd), string(journey.StageExpired))
	if err != nil {
		return nil, translateDBError(err, logCtx)
	}
	defer rows.Close()

	var idle []*journey.ApplicationState
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, translateDBError(err, logCtx)
		}
		var state journey.ApplicationState
		if err := json.Unmarshal(raw, &state); err != nil {
			logCtx.ErrorContext(ctx, "Skipping corrupt session state", slog.Any("error", err))
			continue
		}
		idle = append(idle, &state)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, logCtx)
	}
	return idle, nil
}
