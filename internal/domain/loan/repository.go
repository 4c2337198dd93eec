package loan

import "context"

type Repository interface {
	// Create persists a new loan and returns it with its assigned LoanID.
	Create(ctx context.Context, l *Loan) (*Loan, error)

	GetByID(ctx context.Context, loanID string) (*Loan, error)

	GetBySession(ctx context.Context, sessionID string) (*Loan, error)

	// SetSanctionDocument records the document reference for a loan. The
	// write succeeds only when no reference is set yet; a second attempt
	// returns apperrors.ErrDocumentAlreadySet.
	SetSanctionDocument(ctx context.Context, loanID, ref string) error
}
