// Package amortization computes fixed-rate equal-installment (EMI) figures
// and reducing-balance repayment schedules. All money values are rounded to
// two decimal places using round-half-away-from-zero (math.Round), matching
// the rounding used everywhere else in the service.
package amortization

import (
	"fmt"
	"math"

	"loan-origination/internal/pkg/apperrors"
)

// Period is one row of a repayment schedule.
type Period struct {
	Number      int
	Installment float64
	Principal   float64
	Interest    float64
	Outstanding float64
}

// Installment returns the fixed monthly payment for a reducing-balance loan.
// A zero annual rate degenerates to a straight-line principal/months split.
func Installment(principal, annualRatePercent float64, months int) (float64, error) {
	if months <= 0 {
		return 0, fmt.Errorf("%w: months must be positive, got %d", apperrors.ErrInvalidTerm, months)
	}
	if principal <= 0 {
		return 0, nil
	}
	if annualRatePercent == 0 {
		return roundTo(principal/float64(months), 2), nil
	}

	r := annualRatePercent / 1200
	pow := math.Pow(1+r, float64(months))
	emi := principal * r * pow / (pow - 1)
	return roundTo(emi, 2), nil
}

// BuildSchedule expands a loan into its per-period principal/interest split.
// The final period absorbs rounding drift: its principal component is forced
// to the remaining outstanding balance and its displayed installment is
// recomputed from the adjusted components, so the balance always closes at
// exactly zero. The function is pure; identical inputs yield identical rows.
func BuildSchedule(principal, annualRatePercent float64, months int, installment float64) ([]Period, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive, got %d", apperrors.ErrInvalidTerm, months)
	}
	if principal < 0 || installment < 0 {
		return nil, fmt.Errorf("%w: principal and installment must not be negative", apperrors.ErrInvalidArgument)
	}

	r := annualRatePercent / 1200
	outstanding := principal
	schedule := make([]Period, 0, months)

	for i := 1; i <= months; i++ {
		interest := roundTo(outstanding*r, 2)

		var principalComponent, shown float64
		if i == months {
			principalComponent = roundTo(outstanding, 2)
			shown = roundTo(principalComponent+interest, 2)
		} else {
			principalComponent = roundTo(installment-interest, 2)
			shown = installment
		}

		outstanding = roundTo(outstanding-principalComponent, 2)
		if outstanding < 0 {
			outstanding = 0
		}

		schedule = append(schedule, Period{
			Number:      i,
			Installment: shown,
			Principal:   principalComponent,
			Interest:    interest,
			Outstanding: outstanding,
		})
	}

	return schedule, nil
}

func roundTo(n float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(n*pow) / pow
}
