package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"loan-origination/internal/domain/loan"
	"loan-origination/internal/pkg/apperrors"
)

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ loan.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	if db == nil {
		panic("DBPool cannot be nil for LoanRepository")
	}
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

const loanColumns = `loan_id, customer_id, customer_name, session_id, approved_amount, interest_rate,
        tenure_months, emi, approval_type, status, approved_at, sanction_document_ref`

func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) (*loan.Loan, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: loan cannot be nil", apperrors.ErrInvalidArgument)
	}

	logCtx := r.logger.With(slog.String("operation", "Create"))
	logCtx.InfoContext(ctx, "Inserting loan", slog.String("customerID", l.CustomerID))

	if l.LoanID == "" {
		l.LoanID = newLoanID()
	}

	query := `
        INSERT INTO loans (loan_id, customer_id, customer_name, session_id, approved_amount, interest_rate,
            tenure_months, emi, approval_type, status, approved_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING approved_at`

	err := r.db.QueryRow(ctx, query,
		l.LoanID,
		l.CustomerID,
		l.CustomerName,
		l.SessionID,
		l.ApprovedAmount,
		l.InterestRate,
		l.TenureMonths,
		l.EMI,
		l.ApprovalType,
		l.Status,
		l.ApprovedAt,
	).Scan(&l.ApprovedAt)

	if err != nil {
		return nil, translateDBError(err, logCtx)
	}

	logCtx.InfoContext(ctx, "Loan inserted", slog.String("loanID", l.LoanID))
	return l, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, loanID string) (*loan.Loan, error) {
	logCtx := r.logger.With(slog.String("operation", "GetByID"), slog.String("loanID", loanID))

	query := `SELECT ` + loanColumns + ` FROM loans WHERE loan_id = $1`

	l, err := r.scanLoan(r.db.QueryRow(ctx, query, loanID))
	if err != nil {
		return nil, translateDBError(err, logCtx)
	}
	return l, nil
}

func (r *LoanRepository) GetBySession(ctx context.Context, sessionID string) (*loan.Loan, error) {
	logCtx := r.logger.With(slog.String("operation", "GetBySession"), slog.String("sessionID", sessionID))

	query := `SELECT ` + loanColumns + ` FROM loans WHERE session_id = $1`

	l, err := r.scanLoan(r.db.QueryRow(ctx, query, sessionID))
	if err != nil {
		return nil, translateDBError(err, logCtx)
	}
	return l, nil
}

// SetSanctionDocument fills the document reference, guarded so a set
// reference is never overwritten.
func (r *LoanRepository) SetSanctionDocument(ctx context.Context, loanID, ref string) error {
	logCtx := r.logger.With(slog.String("operation", "SetSanctionDocument"), slog.String("loanID", loanID))

	query := `
        UPDATE loans
        SET sanction_document_ref = $2
        WHERE loan_id = $1 AND sanction_document_ref IS NULL`

	tag, err := r.db.Exec(ctx, query, loanID, ref)
	if err != nil {
		return translateDBError(err, logCtx)
	}

	if tag.RowsAffected() == 0 {
		var existing *string
		err := r.db.QueryRow(ctx, `SELECT sanction_document_ref FROM loans WHERE loan_id = $1`, loanID).Scan(&existing)
		if err != nil {
			return translateDBError(err, logCtx)
		}
		if existing != nil {
			logCtx.WarnContext(ctx, "Sanction document reference already set")
			return apperrors.ErrDocumentAlreadySet
		}
		return fmt.Errorf("%w: loan %s", apperrors.ErrNotFound, loanID)
	}

	logCtx.InfoContext(ctx, "Sanction document reference set", slog.String("ref", ref))
	return nil
}

func (r *LoanRepository) scanLoan(row interface{ Scan(dest ...any) error }) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.LoanID,
		&l.CustomerID,
		&l.CustomerName,
		&l.SessionID,
		&l.ApprovedAmount,
		&l.InterestRate,
		&l.TenureMonths,
		&l.EMI,
		&l.ApprovalType,
		&l.Status,
		&l.ApprovedAt,
		&l.SanctionDocumentRef,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func newLoanID() string {
	return "LN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}
