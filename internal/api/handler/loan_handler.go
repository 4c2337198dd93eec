package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"loan-origination/internal/api/handler/dto"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/domain/sanction"
	"loan-origination/internal/pkg/apperrors"
)

type LoanHandler struct {
	service   loan.LoanService
	documents sanction.Store
	logger    *slog.Logger
}

func NewLoanHandler(s loan.LoanService, documents sanction.Store, l *slog.Logger) *LoanHandler {
	return &LoanHandler{
		service:   s,
		documents: documents,
		logger:    l.With("component", "LoanHandler"),
	}
}

func getLoanIDFromURL(r *http.Request) (string, error) {
	id := chi.URLParam(r, "loanID")
	if id == "" {
		return "", fmt.Errorf("loanID not found in URL path")
	}
	return id, nil
}

// GetLoan returns a loan. Add `?include=schedule` to embed the full
// repayment schedule.
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	l, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	if r.URL.Query().Get("include") == "schedule" {
		schedule, err := h.service.Schedule(r.Context(), loanID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, dto.NewLoanResponse(l, schedule))
		return
	}

	respondJSON(w, http.StatusOK, dto.NewLoanResponse(l, nil))
}

// GetSchedule returns the amortization schedule for a loan.
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	schedule, err := h.service.Schedule(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewScheduleResponse(loanID, schedule))
}

// GetSanction serves the sanction letter as plain text.
func (h *LoanHandler) GetSanction(w http.ResponseWriter, r *http.Request) {
	loanID, err := getLoanIDFromURL(r)
	if err != nil {
		respondError(w, fmt.Errorf("%w: %v", apperrors.ErrInvalidArgument, err))
		return
	}

	l, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		respondError(w, err)
		return
	}
	if l.SanctionDocumentRef == nil {
		respondError(w, fmt.Errorf("%w: sanction document for loan %s is not generated yet", apperrors.ErrNotFound, loanID))
		return
	}

	content, err := h.documents.Get(r.Context(), *l.SanctionDocumentRef)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}
