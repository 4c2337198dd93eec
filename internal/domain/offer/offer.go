package offer

// Offer is immutable reference data: a standing pre-approved limit for a
// customer with its commercial terms.
type Offer struct {
	OfferID          string  `json:"offerId"`
	CustomerID       string  `json:"customerId"`
	MaxAmount        float64 `json:"maxAmount"`
	BaseInterest     float64 `json:"baseInterest"`
	ProcessingFeePct float64 `json:"processingFeePct"`
}
