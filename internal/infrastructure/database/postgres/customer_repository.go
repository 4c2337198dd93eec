package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/pkg/apperrors"
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

const customerColumns = `customer_id, name, mobile, city, credit_score, monthly_income, existing_emi, created_at, updated_at`

func (r *CustomerRepository) FindByNormalized(ctx context.Context, name, mobile string) (*customer.Customer, error) {
	logCtx := r.logger.With(slog.String("operation", "FindByNormalized"))
	logCtx.DebugContext(ctx, "Looking up customer by normalized name and mobile")

	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE lower(trim(name)) = $1
          AND replace(replace(mobile, ' ', ''), '-', '') = $2`

	cust, err := r.scanCustomer(r.db.QueryRow(ctx, query, name, mobile))
	if err != nil {
		return nil, translateDBError(err, logCtx)
	}
	return cust, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, customerID string) (*customer.Customer, error) {
	logCtx := r.logger.With(slog.String("operation", "GetByID"), slog.String("customerID", customerID))
	logCtx.DebugContext(ctx, "Fetching customer")

	query := `SELECT ` + customerColumns + ` FROM customers WHERE customer_id = $1`

	cust, err := r.scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		return nil, translateDBError(err, logCtx)
	}
	return cust, nil
}

func (r *CustomerRepository) Create(ctx context.Context, cust *customer.Customer) (*customer.Customer, error) {
	if cust == nil {
		return nil, fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	logCtx := r.logger.With(slog.String("operation", "Create"))
	logCtx.InfoContext(ctx, "Inserting new customer", slog.String("name", cust.Name))

	if cust.CustomerID == "" {
		cust.CustomerID = newCustomerID()
	}

	query := `
        INSERT INTO customers (customer_id, name, mobile, city, credit_score, monthly_income, existing_emi, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		cust.CustomerID,
		cust.Name,
		cust.Mobile,
		cust.City,
		cust.CreditScore,
		cust.MonthlyIncome,
		cust.ExistingEMI,
	).Scan(&cust.CreatedAt, &cust.UpdatedAt)

	if err != nil {
		return nil, translateDBError(err, logCtx)
	}

	logCtx.InfoContext(ctx, "Customer inserted", slog.String("customerID", cust.CustomerID))
	return cust, nil
}

func (r *CustomerRepository) scanCustomer(row interface{ Scan(dest ...any) error }) (*customer.Customer, error) {
	var cust customer.Customer
	err := row.Scan(
		&cust.CustomerID,
		&cust.Name,
		&cust.Mobile,
		&cust.City,
		&cust.CreditScore,
		&cust.MonthlyIncome,
		&cust.ExistingEMI,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

func newCustomerID() string {
	return "CUST" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
