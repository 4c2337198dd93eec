package loan

import (
	"fmt"
	"time"

	"loan-origination/internal/pkg/apperrors"
)

type ApprovalType string

const (
	ApprovalInstant   ApprovalType = "PREAPPROVED_INSTANT"
	ApprovalEvaluated ApprovalType = "EVALUATED"
)

type LoanStatus string

const (
	StatusApproved LoanStatus = "APPROVED"
	StatusActive   LoanStatus = "ACTIVE"
	StatusClosed   LoanStatus = "CLOSED"
)

// Loan is the record created on approval. It is immutable after creation
// except for SanctionDocumentRef, which is filled in exactly once after the
// sanction document has been generated.
type Loan struct {
	LoanID              string       `json:"loanId"`
	CustomerID          string       `json:"customerId"`
	CustomerName        string       `json:"customerName"`
	SessionID           string       `json:"sessionId"`
	ApprovedAmount      float64      `json:"approvedAmount"`
	InterestRate        float64      `json:"interestRate"`
	TenureMonths        int          `json:"tenureMonths"`
	EMI                 float64      `json:"emi"`
	ApprovalType        ApprovalType `json:"approvalType"`
	Status              LoanStatus   `json:"status"`
	ApprovedAt          time.Time    `json:"approvedAt"`
	SanctionDocumentRef *string      `json:"sanctionDocumentRef,omitempty"`
}

func NewLoan(customerID, customerName, sessionID string, amount, rate float64, tenureMonths int, emi float64, approvalType ApprovalType) (*Loan, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: approved amount must be positive", apperrors.ErrInvalidArgument)
	}
	if tenureMonths <= 0 {
		return nil, fmt.Errorf("%w: tenure must be positive", apperrors.ErrInvalidTerm)
	}
	if approvalType != ApprovalInstant && approvalType != ApprovalEvaluated {
		return nil, fmt.Errorf("%w: unknown approval type %q", apperrors.ErrInvalidArgument, approvalType)
	}

	return &Loan{
		CustomerID:     customerID,
		CustomerName:   customerName,
		SessionID:      sessionID,
		ApprovedAmount: amount,
		InterestRate:   rate,
		TenureMonths:   tenureMonths,
		EMI:            emi,
		ApprovalType:   approvalType,
		Status:         StatusApproved,
		ApprovedAt:     time.Now(),
	}, nil
}
