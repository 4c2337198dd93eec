package offer

import (
	"context"
	"fmt"
	"log/slog"
)

type OfferService interface {
	OffersFor(ctx context.Context, customerID string) ([]Offer, error)

	// BestOffer selects the lowest-rate offer whose cap covers the
	// requested amount. When no offer covers it, the customer's first
	// offer is returned as a fallback; (nil, nil) means no offers at all.
	BestOffer(ctx context.Context, customerID string, amount float64) (*Offer, error)
}

var _ OfferService = (*offerService)(nil)

type offerService struct {
	repo   Repository
	logger *slog.Logger
}

func NewOfferService(repo Repository, logger *slog.Logger) OfferService {
	if repo == nil {
		panic("offer repository cannot be nil")
	}
	return &offerService{
		repo:   repo,
		logger: logger.With(slog.String("component", "offerService")),
	}
}

func (s *offerService) OffersFor(ctx context.Context, customerID string) ([]Offer, error) {
	offers, err := s.repo.OffersFor(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load offers", "customerID", customerID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to load offers for customer %s: %w", customerID, err)
	}
	return offers, nil
}

func (s *offerService) BestOffer(ctx context.Context, customerID string, amount float64) (*Offer, error) {
	offers, err := s.OffersFor(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(offers) == 0 {
		return nil, nil
	}

	var best *Offer
	for i := range offers {
		o := &offers[i]
		if o.MaxAmount < amount {
			continue
		}
		if best == nil || o.BaseInterest < best.BaseInterest {
			best = o
		}
	}

	if best == nil {
		// No offer covers the request; fall back to the first offer so the
		// customer still sees their standing limit.
		best = &offers[0]
	}

	s.logger.InfoContext(ctx, "Offer selected", "customerID", customerID, "offerID", best.OfferID, "rate", best.BaseInterest)
	return best, nil
}
