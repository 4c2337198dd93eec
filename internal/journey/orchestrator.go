package journey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loan-origination/internal/domain/amortization"
	"loan-origination/internal/domain/customer"
	"loan-origination/internal/domain/loan"
	"loan-origination/internal/domain/offer"
	"loan-origination/internal/domain/sanction"
	"loan-origination/internal/domain/underwriting"
	"loan-origination/internal/event"
	"loan-origination/internal/infrastructure/monitoring"
	"loan-origination/internal/pkg/apperrors"
	"loan-origination/internal/pkg/currency"
)

// Commercial terms used on the detailed path when the applicant holds no
// standing offer.
const (
	defaultInterestRate     = 14.0
	defaultProcessingFeePct = 1.0
	defaultTenureMonths     = 36

	publishTimeout = 5 * time.Second
)

type TurnResult struct {
	SessionID string
	Reply     string
	State     *ApplicationState
}

// Orchestrator drives the loan application conversation. One turn takes
// one message, routes it to the current stage's handler, and persists
// the updated state all-or-nothing at the end of the turn.
type Orchestrator struct {
	states    StateRepository
	customers customer.CustomerService
	offers    offer.OfferService
	loans     loan.LoanService
	documents sanction.Store
	engine    *underwriting.Engine
	bands     underwriting.BandPolicy
	publisher event.EventPublisher
	logger    *slog.Logger
	locks     *sessionLocks
	now       func() time.Time
}

func NewOrchestrator(
	states StateRepository,
	customers customer.CustomerService,
	offers offer.OfferService,
	loans loan.LoanService,
	documents sanction.Store,
	engine *underwriting.Engine,
	bands underwriting.BandPolicy,
	publisher event.EventPublisher,
	logger *slog.Logger,
) *Orchestrator {
	if states == nil || customers == nil || offers == nil || loans == nil || documents == nil {
		panic("orchestrator dependencies cannot be nil")
	}
	if engine == nil {
		panic("underwriting engine cannot be nil")
	}
	if publisher == nil {
		panic("event publisher cannot be nil")
	}
	return &Orchestrator{
		states:    states,
		customers: customers,
		offers:    offers,
		loans:     loans,
		documents: documents,
		engine:    engine,
		bands:     bands,
		publisher: publisher,
		locks:     newSessionLocks(),
		logger:    logger.With(slog.String("component", "Orchestrator")),
		now:       time.Now,
	}
}

// StartSession opens a fresh conversation and returns the greeting.
func (o *Orchestrator) StartSession(ctx context.Context) (*TurnResult, error) {
	state := NewApplicationState(o.now())
	if err := o.states.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("%w: failed to save new session: %v", apperrors.ErrDatabase, err)
	}

	monitoring.SessionStarted()
	o.logger.InfoContext(ctx, "Session started", "sessionID", state.SessionID)

	return &TurnResult{
		SessionID: state.SessionID,
		Reply:     "Welcome to the loan assistant. To get started, please share your full name.",
		State:     state,
	}, nil
}

// GetState returns the current state of a session.
func (o *Orchestrator) GetState(ctx context.Context, sessionID string) (*ApplicationState, error) {
	return o.states.Get(ctx, sessionID)
}

// HandleTurn processes one message for a session. Turns for the same
// session are serialized; state is saved exactly once, after the stage
// handler succeeds. On error nothing is persisted and the turn can be
// retried.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID, message string) (*TurnResult, error) {
	unlock := o.locks.acquire(sessionID)
	defer unlock()

	start := o.now()

	state, err := o.states.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	startStage := state.Stage

	message = strings.TrimSpace(message)

	var reply string
	if isRestart(message) {
		state.restart(o.now())
		reply = "Starting over. " + o.promptFor(state)
	} else {
		reply, err = o.dispatch(ctx, state, message)
		if err != nil {
			return nil, err
		}
	}

	state.UpdatedAt = o.now()
	if err := o.states.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("%w: failed to persist session state: %v", apperrors.ErrDatabase, err)
	}

	monitoring.ObserveTurn(string(startStage), o.now().Sub(start).Seconds())

	return &TurnResult{SessionID: sessionID, Reply: reply, State: state}, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, state *ApplicationState, message string) (string, error) {
	switch state.Stage {
	case StageCollectingIdentity:
		return o.collectIdentity(ctx, state, message)
	case StageCollectingTerms:
		return o.collectTerms(ctx, state, message)
	case StageOfferSelection:
		return o.selectOffer(ctx, state, message)
	case StageDocumentCollection:
		return o.collectDocuments(ctx, state, message)
	case StagePolicyEvaluation:
		return o.runEvaluation(ctx, state)
	case StageCounterOffer:
		return o.handleCounterOffer(ctx, state, message)
	case StageSanctioned:
		return "Your loan is already sanctioned. Say 'restart' to begin a new application.", nil
	case StageEnd:
		return "This application is closed. Say 'restart' to begin a new application.", nil
	case StageExpired:
		return "This session has expired. Say 'restart' to begin a new application.", nil
	default:
		return "", fmt.Errorf("%w: unknown stage %q", apperrors.ErrInternalServer, state.Stage)
	}
}

// promptFor restates the question the current stage is waiting on.
func (o *Orchestrator) promptFor(state *ApplicationState) string {
	switch state.Stage {
	case StageCollectingIdentity:
		return "Please share your full name."
	case StageCollectingTerms:
		return "How much would you like to borrow?"
	default:
		return "Please continue."
	}
}

func (o *Orchestrator) collectIdentity(ctx context.Context, state *ApplicationState, message string) (string, error) {
	if state.Name == "" {
		name := strings.TrimSpace(message)
		if len(name) < 2 || !containsLetter(name) {
			return "I did not catch your name. Please share your full name.", nil
		}
		state.Name = name
		return fmt.Sprintf("Thanks, %s. Please share your 10-digit mobile number.", name), nil
	}

	if state.Mobile == "" {
		mobile, ok := extractMobile(message)
		if !ok {
			return "That does not look like a valid mobile number. Please share your 10-digit mobile number.", nil
		}
		state.Mobile = mobile

		matched, err := o.customers.MatchCustomer(ctx, state.Name, state.Mobile)
		if err != nil {
			return "", err
		}
		if matched != nil {
			state.CustomerID = matched.CustomerID
			state.Matched = true
			state.City = matched.City
			state.CreditScore = intPtr(matched.CreditScore)
			state.MonthlyIncome = floatPtr(matched.MonthlyIncome)
			state.ExistingObligation = floatPtr(matched.ExistingEMI)
			state.Stage = StageCollectingTerms
			o.logger.InfoContext(ctx, "Customer matched", "sessionID", state.SessionID, "customerID", matched.CustomerID)
			return fmt.Sprintf("Welcome back, %s! How much would you like to borrow?", matched.Name), nil
		}
		return "Looks like you are new here. Which city do you live in?", nil
	}

	// New applicant: city is the last identity field before onboarding.
	city := strings.TrimSpace(message)
	if city == "" {
		return "Which city do you live in?", nil
	}
	state.City = city

	created, err := o.customers.CreateCustomer(ctx, state.Name, state.Mobile, state.City)
	if err != nil {
		return "", err
	}
	state.CustomerID = created.CustomerID
	state.Matched = false
	state.Stage = StageCollectingTerms
	o.logger.InfoContext(ctx, "Customer onboarded", "sessionID", state.SessionID, "customerID", created.CustomerID)
	return "You are all set. How much would you like to borrow?", nil
}

func (o *Orchestrator) collectTerms(ctx context.Context, state *ApplicationState, message string) (string, error) {
	if state.RequestedAmount == nil {
		amount, ok := extractAmount(message)
		if !ok {
			return "Please tell me the loan amount you need, for example '5 lakh' or '500000'.", nil
		}
		state.RequestedAmount = &amount

		if state.Matched {
			best, err := o.offers.BestOffer(ctx, state.CustomerID, amount)
			if err != nil {
				return "", err
			}
			if best != nil {
				return o.quoteInstantOffer(ctx, state, best)
			}
		}
		return fmt.Sprintf("Got it, Rs %s. Over how many months or years would you like to repay?",
			currency.Whole(amount)), nil
	}

	if state.TenureMonths == nil {
		months, ok := extractTenure(message)
		if !ok {
			return "Please tell me the repayment period, for example '3 years' or '36 months'.", nil
		}
		state.TenureMonths = &months
		if state.MonthlyIncome == nil {
			return "What is your monthly income?", nil
		}
		return o.presentDetailedTerms(ctx, state)
	}

	if state.MonthlyIncome == nil {
		income, ok := extractNumber(message)
		if !ok {
			return "Please share your monthly income as a number.", nil
		}
		state.MonthlyIncome = &income
		return "What is your total existing monthly EMI obligation? Reply 0 if none.", nil
	}

	if state.ExistingObligation == nil {
		obligation, ok := extractNumber(message)
		if !ok {
			return "Please share your existing monthly EMI obligation as a number, or 0 if none.", nil
		}
		state.ExistingObligation = &obligation
		return "And your latest credit bureau score?", nil
	}

	if state.CreditScore == nil {
		raw, ok := extractNumber(message)
		score := int(raw)
		if !ok || score < 300 || score > 900 {
			return "Please share a credit score between 300 and 900.", nil
		}
		state.CreditScore = &score
		return o.presentDetailedTerms(ctx, state)
	}

	return o.presentDetailedTerms(ctx, state)
}

// presentDetailedTerms fixes the commercial terms for the detailed path
// and asks for confirmation before document collection.
func (o *Orchestrator) presentDetailedTerms(ctx context.Context, state *ApplicationState) (string, error) {
	if state.InterestRate == nil {
		state.InterestRate = floatPtr(defaultInterestRate)
	}
	if state.ProcessingFeePct == nil {
		state.ProcessingFeePct = floatPtr(defaultProcessingFeePct)
	}

	emi, err := o.installmentFor(*state.RequestedAmount, *state.InterestRate, *state.TenureMonths)
	if err != nil {
		return "The repayment period does not work out. Over how many months would you like to repay?", nil
	}

	state.Stage = StageOfferSelection
	return fmt.Sprintf(
		"Here is your indicative quote: Rs %s over %d months at %s%% p.a., EMI Rs %s. Processing fee %s%%. Shall we proceed? (yes/no)",
		currency.Whole(*state.RequestedAmount), *state.TenureMonths, currency.Rate(*state.InterestRate),
		currency.Money(emi), currency.Rate(*state.ProcessingFeePct)), nil
}

func containsLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

func (o *Orchestrator) publishDecision(ctx context.Context, state *ApplicationState, publish func(context.Context, event.DecisionPayload) error, routing string) {
	payload := event.DecisionPayload{
		SessionID:  state.SessionID,
		CustomerID: state.CustomerID,
		Decision:   state.Decision,
		Reason:     state.DecisionReason,
		Timestamp:  o.now(),
	}
	if state.RequestedAmount != nil {
		payload.RequestedAmount = *state.RequestedAmount
	}
	if state.InterestRate != nil {
		payload.InterestRate = *state.InterestRate
	}
	if state.TenureMonths != nil {
		payload.TenureMonths = *state.TenureMonths
	}
	if state.LoanID != "" {
		loanID := state.LoanID
		payload.LoanID = &loanID
	}
	if state.EligibleAmount != nil {
		payload.ApprovedAmount = cloneFloat(state.EligibleAmount)
	}
	if state.Evaluation != nil {
		payload.EMI = state.Evaluation.EMI
		payload.ObligationRatio = state.Evaluation.ObligationRatio
		payload.CreditScore = state.Evaluation.CreditScore
		payload.MonthlyIncome = state.Evaluation.MonthlyIncome
		payload.ExistingObligation = state.Evaluation.ExistingObligation
		payload.SuggestedAmount = cloneFloat(state.Evaluation.SuggestedAmount)
	}
	if state.InstantPath {
		payload.ApprovalType = string(loan.ApprovalInstant)
	} else if state.LoanID != "" {
		payload.ApprovalType = string(loan.ApprovalEvaluated)
	}

	// Fire-and-forget: a publish failure never blocks or fails the turn.
	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	go func() {
		defer cancel()
		if err := publish(detached, payload); err != nil {
			o.logger.Error("Failed to publish decision event", "routingKey", routing,
				"sessionID", payload.SessionID, slog.Any("error", err))
		}
	}()
}

// findOrRecordLoan books the session's loan at most once. The loan row is
// written before the session state; if the state save then fails, the caller
// retries the whole turn, so the session may already hold a booked loan. That
// loan is reused instead of inserting a second one.
func (o *Orchestrator) findOrRecordLoan(ctx context.Context, state *ApplicationState, amount, rate float64, months int, emi float64, approvalType loan.ApprovalType) (*loan.Loan, error) {
	existing, err := o.loans.GetLoanBySession(ctx, state.SessionID)
	if err == nil {
		o.logger.InfoContext(ctx, "Reusing loan already booked for session",
			"sessionID", state.SessionID, "loanID", existing.LoanID)
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	l, err := loan.NewLoan(state.CustomerID, state.Name, state.SessionID, amount, rate, months, emi, approvalType)
	if err != nil {
		return nil, err
	}
	return o.loans.RecordLoan(ctx, l)
}

func (o *Orchestrator) installmentFor(principal, rate float64, months int) (float64, error) {
	emi, err := amortization.Installment(principal, rate, months)
	if err != nil {
		return 0, fmt.Errorf("failed to compute installment: %w", err)
	}
	return emi, nil
}
