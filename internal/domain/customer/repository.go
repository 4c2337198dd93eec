package customer

import "context"

type Repository interface {
	// FindByNormalized looks up a customer whose normalized name and mobile
	// both match. Callers pass values already run through NormalizeName and
	// NormalizeMobile. A miss returns apperrors.ErrNotFound.
	FindByNormalized(ctx context.Context, name, mobile string) (*Customer, error)

	GetByID(ctx context.Context, customerID string) (*Customer, error)

	Create(ctx context.Context, cust *Customer) (*Customer, error)
}
