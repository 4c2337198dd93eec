package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan-origination/internal/domain/amortization"
	"loan-origination/internal/pkg/apperrors"
)

type LoanService interface {
	// RecordLoan creates the loan record for an approved application. A
	// persistence failure is surfaced as a retryable error; nothing is
	// partially written.
	RecordLoan(ctx context.Context, l *Loan) (*Loan, error)

	GetLoan(ctx context.Context, loanID string) (*Loan, error)

	GetLoanBySession(ctx context.Context, sessionID string) (*Loan, error)

	// Schedule expands the loan into its full amortization schedule.
	Schedule(ctx context.Context, loanID string) ([]amortization.Period, error)

	// AttachSanctionDocument sets the document reference, exactly once.
	AttachSanctionDocument(ctx context.Context, loanID, ref string) error
}

var _ LoanService = (*loanService)(nil)

type loanService struct {
	repo   Repository
	logger *slog.Logger
}

func NewLoanService(repo Repository, logger *slog.Logger) LoanService {
	if repo == nil {
		panic("loan repository cannot be nil")
	}
	return &loanService{
		repo:   repo,
		logger: logger.With(slog.String("component", "loanService")),
	}
}

func (s *loanService) RecordLoan(ctx context.Context, l *Loan) (*Loan, error) {
	created, err := s.repo.Create(ctx, l)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist loan", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to persist loan: %v", apperrors.ErrDatabase, err)
	}

	s.logger.InfoContext(ctx, "Loan recorded", "loanID", created.LoanID, "customerID", created.CustomerID,
		"amount", created.ApprovedAmount, "approvalType", created.ApprovalType)
	return created, nil
}

func (s *loanService) GetLoan(ctx context.Context, loanID string) (*Loan, error) {
	l, err := s.repo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: loan %s not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.ErrorContext(ctx, "Failed to get loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan %s: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return l, nil
}

func (s *loanService) GetLoanBySession(ctx context.Context, sessionID string) (*Loan, error) {
	l, err := s.repo.GetBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no loan for session %s", apperrors.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("%w: failed to get loan for session %s: %v", apperrors.ErrInternalServer, sessionID, err)
	}
	return l, nil
}

func (s *loanService) Schedule(ctx context.Context, loanID string) ([]amortization.Period, error) {
	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	schedule, err := amortization.BuildSchedule(l.ApprovedAmount, l.InterestRate, l.TenureMonths, l.EMI)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build schedule", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to build schedule for loan %s: %w", loanID, err)
	}
	return schedule, nil
}

func (s *loanService) AttachSanctionDocument(ctx context.Context, loanID, ref string) error {
	if ref == "" {
		return apperrors.NewValidationError("ref", "document reference cannot be empty")
	}

	if err := s.repo.SetSanctionDocument(ctx, loanID, ref); err != nil {
		if errors.Is(err, apperrors.ErrDocumentAlreadySet) {
			s.logger.WarnContext(ctx, "Sanction document reference already set", "loanID", loanID)
			return err
		}
		s.logger.ErrorContext(ctx, "Failed to attach sanction document", "loanID", loanID, slog.Any("error", err))
		return fmt.Errorf("%w: failed to attach sanction document to loan %s: %v", apperrors.ErrDatabase, loanID, err)
	}

	s.logger.InfoContext(ctx, "Sanction document attached", "loanID", loanID, "ref", ref)
	return nil
}
