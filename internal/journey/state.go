package journey

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"loan-origination/internal/domain/underwriting"
)

type Stage string

const (
	StageCollectingIdentity Stage = "COLLECTING_IDENTITY"
	StageCollectingTerms    Stage = "COLLECTING_TERMS"
	StageOfferSelection     Stage = "OFFER_SELECTION"
	StageDocumentCollection Stage = "DOCUMENT_COLLECTION"
	StagePolicyEvaluation   Stage = "POLICY_EVALUATION"
	StageCounterOffer       Stage = "COUNTER_OFFER"
	StageSanctioned         Stage = "SANCTIONED"
	StageEnd                Stage = "END"
	StageExpired            Stage = "EXPIRED"
)

// KYC documents are collected strictly in this order.
const (
	DocumentIDProof      = "ID_PROOF"
	DocumentAddressProof = "ADDRESS_PROOF"
	DocumentIncomeProof  = "INCOME_PROOF"
)

// ApplicationState accumulates one loan application across conversation
// turns. Fields fill in sequentially and are never overwritten, except
// on explicit restart or on acceptance of a suggested lower amount.
type ApplicationState struct {
	SessionID string    `json:"sessionId"`
	Stage     Stage     `json:"stage"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name       string `json:"name,omitempty"`
	Mobile     string `json:"mobile,omitempty"`
	City       string `json:"city,omitempty"`
	CustomerID string `json:"customerId,omitempty"`
	Matched    bool   `json:"matched"`

	RequestedAmount *float64 `json:"requestedAmount,omitempty"`
	TenureMonths    *int     `json:"tenureMonths,omitempty"`
	Purpose         string   `json:"purpose,omitempty"`

	CreditScore        *int     `json:"creditScore,omitempty"`
	MonthlyIncome      *float64 `json:"monthlyIncome,omitempty"`
	ExistingObligation *float64 `json:"existingObligation,omitempty"`

	IDProofReceived      bool `json:"idProofReceived"`
	AddressProofReceived bool `json:"addressProofReceived"`
	IncomeProofReceived  bool `json:"incomeProofReceived"`

	InstantPath      bool     `json:"instantPath"`
	OfferID          string   `json:"offerId,omitempty"`
	InterestRate     *float64 `json:"interestRate,omitempty"`
	ProcessingFeePct *float64 `json:"processingFeePct,omitempty"`
	EligibleAmount   *float64 `json:"eligibleAmount,omitempty"`

	Evaluation          *underwriting.EvaluationResult `json:"evaluation,omitempty"`
	CounterOfferRetries int                            `json:"counterOfferRetries"`
	Decision            string                         `json:"decision,omitempty"`
	DecisionReason      string                         `json:"decisionReason,omitempty"`
	LoanID              string                         `json:"loanId,omitempty"`
	SanctionDocumentRef string                         `json:"sanctionDocumentRef,omitempty"`
}

// NewApplicationState starts a fresh session in the identity stage.
func NewApplicationState(now time.Time) *ApplicationState {
	return &ApplicationState{
		SessionID: NewSessionID(),
		Stage:     StageCollectingIdentity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSessionID returns an id of the form SESS_<8 hex chars>.
func NewSessionID() string {
	return "SESS_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Clone returns a deep copy so a turn can mutate freely and persist
// all-or-nothing.
func (s *ApplicationState) Clone() *ApplicationState {
	c := *s
	c.RequestedAmount = cloneFloat(s.RequestedAmount)
	c.TenureMonths = cloneInt(s.TenureMonths)
	c.CreditScore = cloneInt(s.CreditScore)
	c.MonthlyIncome = cloneFloat(s.MonthlyIncome)
	c.ExistingObligation = cloneFloat(s.ExistingObligation)
	c.InterestRate = cloneFloat(s.InterestRate)
	c.ProcessingFeePct = cloneFloat(s.ProcessingFeePct)
	c.EligibleAmount = cloneFloat(s.EligibleAmount)
	if s.Evaluation != nil {
		eval := *s.Evaluation
		eval.SuggestedAmount = cloneFloat(s.Evaluation.SuggestedAmount)
		c.Evaluation = &eval
	}
	return &c
}

// restart clears everything accumulated in the session except the
// identity already established, so a returning applicant does not
// repeat the matching step.
func (s *ApplicationState) restart(now time.Time) {
	keep := ApplicationState{
		SessionID:  s.SessionID,
		Name:       s.Name,
		Mobile:     s.Mobile,
		City:       s.City,
		CustomerID: s.CustomerID,
		Matched:    s.Matched,
		CreatedAt:  s.CreatedAt,
	}
	if s.Matched {
		// A matched profile came from the customer record, not this
		// conversation, so it survives the restart.
		keep.CreditScore = cloneInt(s.CreditScore)
		keep.MonthlyIncome = cloneFloat(s.MonthlyIncome)
		keep.ExistingObligation = cloneFloat(s.ExistingObligation)
	}
	*s = keep
	s.Stage = StageCollectingTerms
	if s.CustomerID == "" {
		s.Stage = StageCollectingIdentity
		s.Name = ""
		s.Mobile = ""
		s.City = ""
	}
	s.UpdatedAt = now
}

// documentsComplete reports whether the full KYC sequence is done.
func (s *ApplicationState) documentsComplete() bool {
	return s.IDProofReceived && s.AddressProofReceived && s.IncomeProofReceived
}

// nextDocument names the next document owed, in collection order.
func (s *ApplicationState) nextDocument() string {
	switch {
	case !s.IDProofReceived:
		return DocumentIDProof
	case !s.AddressProofReceived:
		return DocumentAddressProof
	case !s.IncomeProofReceived:
		return DocumentIncomeProof
	default:
		return ""
	}
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
