package event

import (
	"context"
	"time"
)

// DecisionPayload is the financial snapshot carried on every decision
// event so downstream consumers never need to call back for it.
type DecisionPayload struct {
	SessionID          string    `json:"sessionId"`
	CustomerID         string    `json:"customerId"`
	LoanID             *string   `json:"loanId,omitempty"`
	Decision           string    `json:"decision"`
	Reason             string    `json:"reason,omitempty"`
	RequestedAmount    float64   `json:"requestedAmount"`
	ApprovedAmount     *float64  `json:"approvedAmount,omitempty"`
	SuggestedAmount    *float64  `json:"suggestedAmount,omitempty"`
	InterestRate       float64   `json:"interestRate"`
	TenureMonths       int       `json:"tenureMonths"`
	EMI                float64   `json:"emi"`
	ObligationRatio    float64   `json:"obligationRatio"`
	CreditScore        int       `json:"creditScore"`
	MonthlyIncome      float64   `json:"monthlyIncome"`
	ExistingObligation float64   `json:"existingObligation"`
	ApprovalType       string    `json:"approvalType,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// DocumentReceivedEvent marks one KYC document confirmed in a session.
type DocumentReceivedEvent struct {
	SessionID    string    `json:"sessionId"`
	CustomerID   string    `json:"customerId"`
	DocumentType string    `json:"documentType"`
	Remaining    int       `json:"remaining"`
	Timestamp    time.Time `json:"timestamp"`
}

type SanctionGeneratedEvent struct {
	LoanID      string    `json:"loanId"`
	SessionID   string    `json:"sessionId"`
	CustomerID  string    `json:"customerId"`
	DocumentRef string    `json:"documentRef"`
	ValidUntil  time.Time `json:"validUntil"`
	Timestamp   time.Time `json:"timestamp"`
}

func (p *RabbitMQEventPublisher) PublishDecisionApproved(ctx context.Context, event DecisionPayload) error {
	return p.publish(ctx, routingKeyDecisionApproved, event)
}

func (p *RabbitMQEventPublisher) PublishDecisionReferred(ctx context.Context, event DecisionPayload) error {
	return p.publish(ctx, routingKeyDecisionReferred, event)
}

func (p *RabbitMQEventPublisher) PublishDecisionRejected(ctx context.Context, event DecisionPayload) error {
	return p.publish(ctx, routingKeyDecisionRejected, event)
}

func (p *RabbitMQEventPublisher) PublishCounterOffer(ctx context.Context, event DecisionPayload) error {
	return p.publish(ctx, routingKeyCounterOffer, event)
}

func (p *RabbitMQEventPublisher) PublishOfferDeclined(ctx context.Context, event DecisionPayload) error {
	return p.publish(ctx, routingKeyOfferDeclined, event)
}

func (p *RabbitMQEventPublisher) PublishDocumentReceived(ctx context.Context, event DocumentReceivedEvent) error {
	return p.publish(ctx, routingKeyDocumentReceived, event)
}

func (p *RabbitMQEventPublisher) PublishSanctionGenerated(ctx context.Context, event SanctionGeneratedEvent) error {
	return p.publish(ctx, routingKeySanctionGenerated, event)
}

var _ EventPublisher = (*RabbitMQEventPublisher)(nil)
