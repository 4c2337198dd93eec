package sanction

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"loan-origination/internal/domain/amortization"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/pkg/apperrors"
)

func sampleInput(t *testing.T) Input {
	t.Helper()

	principal := 500000.0
	annualRate := 14.0
	months := 36

	emi, err := amortization.Installment(principal, annualRate, months)
	assert.NoError(t, err)
	schedule, err := amortization.BuildSchedule(principal, annualRate, months, emi)
	assert.NoError(t, err)

	return Input{
		Loan: &loan.Loan{
			LoanID:         "LN-1001",
			CustomerID:     "CUST001",
			CustomerName:   "Asha Verma",
			SessionID:      "SESS_ab12cd34",
			ApprovedAmount: principal,
			InterestRate:   annualRate,
			TenureMonths:   months,
			EMI:            emi,
			ApprovalType:   loan.ApprovalEvaluated,
			Status:         loan.StatusApproved,
		},
		Customer: &customer.Customer{
			CustomerID:    "CUST001",
			Name:          "Asha Verma",
			Mobile:        "9876543210",
			City:          "Pune",
			CreditScore:   742,
			MonthlyIncome: 85000,
		},
		Schedule:         schedule,
		ProcessingFeePct: 1.5,
		GeneratedAt:      time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	in := sampleInput(t)

	first, err := Generate(in)
	assert.NoError(t, err)
	second, err := Generate(in)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_ContainsIdentityAndTerms(t *testing.T) {
	in := sampleInput(t)

	doc, err := Generate(in)
	assert.NoError(t, err)

	assert.Contains(t, doc, "Asha Verma")
	assert.Contains(t, doc, "CUST001")
	assert.Contains(t, doc, "9876543210")
	assert.Contains(t, doc, "LN-1001")
	assert.Contains(t, doc, "Rs 500,000.00")
	assert.Contains(t, doc, "14% p.a.")
	assert.Contains(t, doc, "36 months")
}

func TestGenerate_ValidityWindow(t *testing.T) {
	in := sampleInput(t)

	doc, err := Generate(in)
	assert.NoError(t, err)

	assert.Contains(t, doc, "Date of Issue    : 01 Mar 2026")
	assert.Contains(t, doc, "Valid Until      : 08 Mar 2026")
}

func TestGenerate_ProcessingFee(t *testing.T) {
	in := sampleInput(t)

	doc, err := Generate(in)
	assert.NoError(t, err)

	// 1.5% of 500000.
	assert.Contains(t, doc, "Processing Fee        : Rs 7,500.00 (1.5% of sanctioned amount)")
}

func TestGenerate_LifeInsuranceOptional(t *testing.T) {
	in := sampleInput(t)

	doc, err := Generate(in)
	assert.NoError(t, err)
	assert.Contains(t, doc, "Life Insurance Premium: Not applicable")

	in.LifeInsuranceOpt = true
	doc, err = Generate(in)
	assert.NoError(t, err)
	// 0.5% of 500000.
	assert.Contains(t, doc, "Life Insurance Premium: Rs 2,500.00")
}

func TestGenerate_ScheduleRowsAndPenalties(t *testing.T) {
	in := sampleInput(t)

	doc, err := Generate(in)
	assert.NoError(t, err)

	rows := 0
	for _, line := range strings.Split(doc, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "1 ") || strings.HasPrefix(trimmed, "36 ") {
			rows++
		}
	}
	assert.Equal(t, 2, rows)

	assert.Contains(t, doc, "3% per month on overdue amount")
	assert.Contains(t, doc, "3% of outstanding principal")
	assert.Contains(t, doc, "Rs 600.00 per instance")
	assert.Contains(t, doc, "Rs 450.00 per instance")
	assert.Contains(t, doc, "Rs 550.00 per request")
}

func TestGenerate_MissingInputs(t *testing.T) {
	in := sampleInput(t)
	in.Loan = nil
	_, err := Generate(in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	in = sampleInput(t)
	in.Customer = nil
	_, err = Generate(in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	in = sampleInput(t)
	in.Schedule = nil
	_, err = Generate(in)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
