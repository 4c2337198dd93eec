package offer

import "context"

type Repository interface {
	// OffersFor returns every standing offer for a customer, in stored
	// order. An empty slice means the customer has no offers.
	OffersFor(ctx context.Context, customerID string) ([]Offer, error)
}
