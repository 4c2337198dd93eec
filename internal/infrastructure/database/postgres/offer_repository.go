package postgres

import (
	"context"
	"log/slog"

	"loan-origination/internal/domain/offer"
)

type OfferRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ offer.Repository = (*OfferRepository)(nil)

func NewOfferRepository(db DBPool, logger *slog.Logger) *OfferRepository {
	if db == nil {
		panic("DBPool cannot be nil for OfferRepository")
	}
	return &OfferRepository{
		db:     db,
		logger: logger.With("component", "OfferRepository"),
	}
}

func (r *OfferRepository) OffersFor(ctx context.Context, customerID string) ([]offer.Offer, error) {
	logCtx := r.logger.With(slog.String("operation", "OffersFor"), slog.String("customerID", customerID))
	logCtx.DebugContext(ctx, "Fetching standing offers")

	query := `
        SELECT offer_id, customer_id, max_amount, base_interest, processing_fee_pct
        FROM offers
        WHERE customer_id = $1
        ORDER BY offer_id`

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, translateDBError(err, logCtx)
	}
	defer rows.Close()

	var offers []offer.Offer
	for rows.Next() {
		var o offer.Offer
		if err := rows.Scan(&o.OfferID, &o.CustomerID, &o.MaxAmount, &o.BaseInterest, &o.ProcessingFeePct); err != nil {
			return nil, translateDBError(err, logCtx)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDBError(err, logCtx)
	}

	logCtx.DebugContext(ctx, "Offers fetched", slog.Int("count", len(offers)))
	return offers, nil
}
