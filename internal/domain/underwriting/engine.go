// Package underwriting applies loan eligibility policy. Two independent
// strategies live here: the threshold Engine used by the detailed-evaluation
// path (approve / counter-offer / reject) and the coarser BandPolicy used by
// the verified-offer path (approve / refer / reject).
package underwriting

import (
	"fmt"
	"log/slog"
	"math"

	"loan-origination/internal/domain/amortization"
)

type EvaluationInput struct {
	CreditScore        int
	MonthlyIncome      float64
	ExistingObligation float64
	RequestedAmount    float64
	TenureMonths       int
	AnnualRate         float64
}

// EvaluationResult is immutable once produced. SuggestedAmount is set only
// when the obligation-ratio rule failed but a smaller principal would pass.
type EvaluationResult struct {
	Approved           bool     `json:"approved"`
	Reason             string   `json:"reason"`
	SuggestedAmount    *float64 `json:"suggestedAmount,omitempty"`
	EMI                float64  `json:"emi"`
	ObligationRatio    float64  `json:"obligationRatio"`
	CreditScore        int      `json:"creditScore"`
	MonthlyIncome      float64  `json:"monthlyIncome"`
	ExistingObligation float64  `json:"existingObligation"`
	TenureMonths       int      `json:"tenureMonths"`
	AnnualRate         float64  `json:"annualRate"`
}

type Engine struct {
	thresholds Thresholds
	logger     *slog.Logger
}

func NewEngine(thresholds Thresholds, logger *slog.Logger) *Engine {
	return &Engine{
		thresholds: thresholds,
		logger:     logger.With("component", "UnderwritingEngine"),
	}
}

// Evaluate applies the threshold rules in a fixed order: income floor, tenure
// ceiling, credit score, obligation ratio. The first failing rule decides the
// outcome. A ratio failure first attempts a counter-offer via
// SuggestLowerAmount before hard-rejecting.
func (e *Engine) Evaluate(in EvaluationInput) EvaluationResult {
	emi, err := amortization.Installment(in.RequestedAmount, in.AnnualRate, in.TenureMonths)
	if err != nil {
		emi = 0
	}

	ratio := 1.0
	if in.MonthlyIncome > 0 {
		ratio = (in.ExistingObligation + emi) / in.MonthlyIncome
	}
	ratio = math.Round(ratio*10000) / 10000

	result := EvaluationResult{
		EMI:                emi,
		ObligationRatio:    ratio,
		CreditScore:        in.CreditScore,
		MonthlyIncome:      in.MonthlyIncome,
		ExistingObligation: in.ExistingObligation,
		TenureMonths:       in.TenureMonths,
		AnnualRate:         in.AnnualRate,
	}

	if in.MonthlyIncome < e.thresholds.MinIncome {
		result.Reason = fmt.Sprintf("monthly income %.0f is below the minimum requirement of %.0f",
			in.MonthlyIncome, e.thresholds.MinIncome)
		return result
	}

	if in.TenureMonths > e.thresholds.MaxTenure {
		result.Reason = fmt.Sprintf("requested tenure %d months exceeds the maximum allowed %d months",
			in.TenureMonths, e.thresholds.MaxTenure)
		return result
	}

	if in.CreditScore < e.thresholds.MinCreditScore {
		result.Reason = fmt.Sprintf("credit score %d is below the minimum requirement of %d",
			in.CreditScore, e.thresholds.MinCreditScore)
		return result
	}

	if ratio > e.thresholds.MaxFOIR {
		suggested, ok := e.SuggestLowerAmount(in.MonthlyIncome, in.ExistingObligation, in.TenureMonths, in.AnnualRate, e.thresholds.MaxFOIR)
		if ok {
			result.SuggestedAmount = &suggested
			result.Reason = fmt.Sprintf("obligation ratio %.2f%% exceeds the maximum %.0f%%; %.0f can be offered instead",
				ratio*100, e.thresholds.MaxFOIR*100, suggested)
		} else {
			result.Reason = fmt.Sprintf("obligation ratio %.2f%% exceeds the maximum %.0f%%",
				ratio*100, e.thresholds.MaxFOIR*100)
		}
		e.logger.Info("Obligation ratio rule failed", "ratio", ratio, "max", e.thresholds.MaxFOIR, "suggested", result.SuggestedAmount)
		return result
	}

	result.Approved = true
	result.Reason = "all eligibility criteria met"
	return result
}

// SuggestLowerAmount searches for the largest principal whose installment
// stays within the applicant's affordable headroom. It binary-searches up to
// ten times the monthly income, converging to a 1000-unit interval and
// flooring the result to the nearest 1000.
func (e *Engine) SuggestLowerAmount(monthlyIncome, existingObligation float64, tenureMonths int, annualRate, maxRatio float64) (float64, bool) {
	affordable := monthlyIncome*maxRatio - existingObligation
	if affordable <= 0 || tenureMonths <= 0 {
		return 0, false
	}

	low, high := 0.0, monthlyIncome*10
	const tolerance = 1000.0

	for high-low > tolerance {
		mid := (low + high) / 2
		emi, err := amortization.Installment(mid, annualRate, tenureMonths)
		if err != nil {
			return 0, false
		}
		if emi <= affordable {
			low = mid
		} else {
			high = mid
		}
	}

	suggested := math.Floor(low/1000) * 1000
	if suggested <= 0 {
		return 0, false
	}
	return suggested, true
}
