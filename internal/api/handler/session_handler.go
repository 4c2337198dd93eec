package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/journey"
	"loan-origination/internal/pkg/apperrors"
)

type SessionHandler struct {
	orchestrator *journey.Orchestrator
	logger       *slog.Logger
}

func NewSessionHandler(orch *journey.Orchestrator, l *slog.Logger) *SessionHandler {
	return &SessionHandler{
		orchestrator: orch,
		logger:       l.With("component", "SessionHandler"),
	}
}

// StartSession opens a new conversation and returns its id and greeting.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.orchestrator.StartSession(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewSessionResponse(result.SessionID, result.Reply, result.State))
}

// HandleTurn feeds one applicant message into the session and returns
// the reply plus the updated state.
func (h *SessionHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		respondError(w, fmt.Errorf("%w: sessionID not found in URL path", apperrors.ErrInvalidArgument))
		return
	}

	var req dto.TurnRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}
	if err := req.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	result, err := h.orchestrator.HandleTurn(r.Context(), sessionID, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewSessionResponse(result.SessionID, result.Reply, result.State))
}

// GetSession returns the current state of a conversation.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		respondError(w, fmt.Errorf("%w: sessionID not found in URL path", apperrors.ErrInvalidArgument))
		return
	}

	state, err := h.orchestrator.GetState(r.Context(), sessionID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewSessionResponse(state.SessionID, "", state))
}
