package dto

import (
	"fmt"

	"loan-origination/internal/journey"
)

type TurnRequest struct {
	Message string `json:"message"`
}

func (r *TurnRequest) Validate() error {
	if r.Message == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if len(r.Message) > 2000 {
		return fmt.Errorf("message exceeds the 2000 character limit")
	}
	return nil
}

type SessionResponse struct {
	SessionID string        `json:"sessionId"`
	Reply     string        `json:"reply,omitempty"`
	Stage     string        `json:"stage"`
	State     StateResponse `json:"state"`
}

// StateResponse is the machine-readable side of a turn: every business
// number from the reply, unformatted.
type StateResponse struct {
	CustomerID          string   `json:"customerId,omitempty"`
	Matched             bool     `json:"matched"`
	RequestedAmount     *float64 `json:"requestedAmount,omitempty"`
	EligibleAmount      *float64 `json:"eligibleAmount,omitempty"`
	TenureMonths        *int     `json:"tenureMonths,omitempty"`
	InterestRate        *float64 `json:"interestRate,omitempty"`
	ProcessingFeePct    *float64 `json:"processingFeePct,omitempty"`
	EMI                 *float64 `json:"emi,omitempty"`
	ObligationRatio     *float64 `json:"obligationRatio,omitempty"`
	SuggestedAmount     *float64 `json:"suggestedAmount,omitempty"`
	Decision            string   `json:"decision,omitempty"`
	DecisionReason      string   `json:"decisionReason,omitempty"`
	LoanID              string   `json:"loanId,omitempty"`
	SanctionDocumentRef string   `json:"sanctionDocumentRef,omitempty"`
}

func NewSessionResponse(sessionID, reply string, state *journey.ApplicationState) SessionResponse {
	resp := SessionResponse{
		SessionID: sessionID,
		Reply:     reply,
		Stage:     string(state.Stage),
		State: StateResponse{
			CustomerID:          state.CustomerID,
			Matched:             state.Matched,
			RequestedAmount:     state.RequestedAmount,
			EligibleAmount:      state.EligibleAmount,
			TenureMonths:        state.TenureMonths,
			InterestRate:        state.InterestRate,
			ProcessingFeePct:    state.ProcessingFeePct,
			Decision:            state.Decision,
			DecisionReason:      state.DecisionReason,
			LoanID:              state.LoanID,
			SanctionDocumentRef: state.SanctionDocumentRef,
		},
	}
	if state.Evaluation != nil {
		emi := state.Evaluation.EMI
		ratio := state.Evaluation.ObligationRatio
		resp.State.EMI = &emi
		resp.State.ObligationRatio = &ratio
		resp.State.SuggestedAmount = state.Evaluation.SuggestedAmount
	}
	return resp
}
