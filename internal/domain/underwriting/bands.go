package underwriting

import "fmt"

type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionReferred Decision = "REFERRED"
	DecisionRejected Decision = "REJECTED"
)

// BandPolicy classifies an application into approve / refer / reject bands
// using only the credit score and obligation ratio. It is the strategy used
// on the verified-offer path and is intentionally independent of the
// threshold Engine: the two paths carry different limits and a different
// outcome vocabulary.
type BandPolicy struct {
	MinScoreAutoApprove int
	MinScoreRefer       int
	MaxFOIRAutoApprove  float64
	MaxFOIRRefer        float64
}

func DefaultBandPolicy() BandPolicy {
	return BandPolicy{
		MinScoreAutoApprove: 725,
		MinScoreRefer:       650,
		MaxFOIRAutoApprove:  0.50,
		MaxFOIRRefer:        0.60,
	}
}

func (p BandPolicy) Classify(creditScore int, foir float64) (Decision, string) {
	switch {
	case creditScore >= p.MinScoreAutoApprove && foir <= p.MaxFOIRAutoApprove:
		return DecisionApproved, fmt.Sprintf("credit score %d >= %d and obligation ratio %.2f%% <= %.0f%%",
			creditScore, p.MinScoreAutoApprove, foir*100, p.MaxFOIRAutoApprove*100)

	case creditScore >= p.MinScoreRefer && foir <= p.MaxFOIRRefer:
		return DecisionReferred, fmt.Sprintf("credit score %d >= %d but needs human review (obligation ratio %.2f%%)",
			creditScore, p.MinScoreRefer, foir*100)

	case creditScore < p.MinScoreRefer:
		return DecisionRejected, fmt.Sprintf("credit score %d below minimum threshold %d",
			creditScore, p.MinScoreRefer)

	case foir > p.MaxFOIRRefer:
		return DecisionRejected, fmt.Sprintf("obligation ratio %.2f%% exceeds maximum threshold %.0f%%",
			foir*100, p.MaxFOIRRefer*100)

	default:
		return DecisionRejected, "application does not meet approval criteria"
	}
}
