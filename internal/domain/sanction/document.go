package sanction

import (
	"fmt"
	"strings"
	"time"

	"loan-origination/internal/domain/amortization"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/currency"
)

// Standing charges quoted on every sanction letter.
const (
	lifeInsurancePct    = 0.5
	latePaymentPctMonth = 3.0
	foreclosurePct      = 3.0
	validityDays        = 7

	chequeDishonourFee = 600
	mandateRejectFee   = 450
	repaymentSwapFee   = 550
)

// Input carries everything the generator needs. ProcessingFeePct comes
// from the offer the customer accepted; GeneratedAt is injected so the
// output is reproducible.
type Input struct {
	Loan             *loan.Loan
	Customer         *customer.Customer
	Schedule         []amortization.Period
	ProcessingFeePct float64
	LifeInsuranceOpt bool
	GeneratedAt      time.Time
}

// Generate renders the sanction letter as plain text. The same input
// always produces byte-identical output.
func Generate(in Input) (string, error) {
	if in.Loan == nil {
		return "", apperrors.NewValidationError("loan", "loan is required")
	}
	if in.Customer == nil {
		return "", apperrors.NewValidationError("customer", "customer is required")
	}
	if len(in.Schedule) == 0 {
		return "", apperrors.NewValidationError("schedule", "amortization schedule is required")
	}

	l := in.Loan
	c := in.Customer
	validUntil := in.GeneratedAt.AddDate(0, 0, validityDays)

	processingFee := l.ApprovedAmount * in.ProcessingFeePct / 100

	var b strings.Builder

	line := strings.Repeat("=", 78)
	thin := strings.Repeat("-", 78)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, center("LOAN SANCTION LETTER"))
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Reference        : %s\n", l.LoanID)
	fmt.Fprintf(&b, "Date of Issue    : %s\n", in.GeneratedAt.Format("02 Jan 2006"))
	fmt.Fprintf(&b, "Valid Until      : %s\n", validUntil.Format("02 Jan 2006"))
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "Borrower         : %s\n", c.Name)
	fmt.Fprintf(&b, "Customer ID      : %s\n", c.CustomerID)
	fmt.Fprintf(&b, "Registered Mobile: %s\n", c.Mobile)
	if c.City != "" {
		fmt.Fprintf(&b, "City             : %s\n", c.City)
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "SANCTIONED TERMS")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Sanctioned Amount     : Rs %s\n", currency.Money(l.ApprovedAmount))
	fmt.Fprintf(&b, "Interest Rate         : %s%% p.a. (reducing balance)\n", currency.Rate(l.InterestRate))
	fmt.Fprintf(&b, "Tenure                : %d months\n", l.TenureMonths)
	fmt.Fprintf(&b, "Equated Monthly Inst. : Rs %s\n", currency.Money(l.EMI))
	fmt.Fprintf(&b, "Approval Type         : %s\n", l.ApprovalType)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "FEES AND CHARGES")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Processing Fee        : Rs %s (%s%% of sanctioned amount)\n",
		currency.Money(processingFee), currency.Rate(in.ProcessingFeePct))
	if in.LifeInsuranceOpt {
		insurance := l.ApprovedAmount * lifeInsurancePct / 100
		fmt.Fprintf(&b, "Life Insurance Premium: Rs %s (%s%% of sanctioned amount)\n",
			currency.Money(insurance), currency.Rate(lifeInsurancePct))
	} else {
		fmt.Fprintln(&b, "Life Insurance Premium: Not applicable")
	}
	fmt.Fprintln(&b, "Documentation Charges : Not applicable")
	fmt.Fprintln(&b, "Stamp Duty            : As per applicable state law")
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "PENALTIES AND OTHER CHARGES")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "Late Payment Charges  : %s%% per month on overdue amount\n", currency.Rate(latePaymentPctMonth))
	fmt.Fprintf(&b, "Foreclosure Charges   : %s%% of outstanding principal\n", currency.Rate(foreclosurePct))
	fmt.Fprintf(&b, "Cheque Dishonour      : Rs %s per instance\n", currency.Money(chequeDishonourFee))
	fmt.Fprintf(&b, "Mandate Rejection     : Rs %s per instance\n", currency.Money(mandateRejectFee))
	fmt.Fprintf(&b, "Repayment Mode Swap   : Rs %s per request\n", currency.Money(repaymentSwapFee))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "REPAYMENT SCHEDULE")
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "%5s  %14s  %14s  %14s  %14s\n",
		"No.", "Installment", "Principal", "Interest", "Outstanding")
	for _, p := range in.Schedule {
		fmt.Fprintf(&b, "%5d  %14s  %14s  %14s  %14s\n",
			p.Number, currency.Money(p.Installment), currency.Money(p.Principal), currency.Money(p.Interest), currency.Money(p.Outstanding))
	}
	fmt.Fprintln(&b, thin)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "This sanction is valid for %d days from the date of issue and is\n", validityDays)
	fmt.Fprintln(&b, "subject to execution of the loan agreement and completion of all")
	fmt.Fprintln(&b, "pending documentation.")
	fmt.Fprintln(&b, line)

	return b.String(), nil
}

// DocumentRef is the stable storage key for a loan's sanction letter.
func DocumentRef(loanID string) string {
	return fmt.Sprintf("sanctions/%s.txt", loanID)
}

func center(s string) string {
	pad := (78 - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

