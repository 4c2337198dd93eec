package event

import (
	"context"
	"log/slog"
)

// NoopEventPublisher is wired in when eventing is disabled so callers
// never have to nil-check the publisher.
type NoopEventPublisher struct {
	logger *slog.Logger
}

var _ EventPublisher = (*NoopEventPublisher)(nil)

func NewNoopEventPublisher(logger *slog.Logger) EventPublisher {
	return &NoopEventPublisher{logger: logger.With("component", "NoopEventPublisher")}
}

func (p *NoopEventPublisher) PublishDecisionApproved(ctx context.Context, event DecisionPayload) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", routingKeyDecisionApproved)
	return nil
}

func (p *NoopEventPublisher) PublishDecisionReferred(ctx context.Context, event DecisionPayload) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", routingKeyDecisionReferred)
	return nil
}

func (p *NoopEventPublisher) PublishDecisionRejected(ctx context.Context, event DecisionPayload) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", routingKeyDecisionRejected)
	return nil
}

func (p *NoopEventPublisher) PublishCounterOffer(ctx context.Context, event DecisionPayload) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", routingKeyCounterOffer)
	return nil
}

func (p *NoopEventPublisher) PublishOfferDeclined(ctx context.Context, event DecisionPayload) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", routingKeyOfferDeclined)
	return nil
}

func (p *NoopEventPublisher) PublishDocumentReceived(ctx context.Context, event DocumentReceivedEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", routingKeyDocumentReceived)
	return nil
}

func (p *NoopEventPublisher) PublishSanctionGenerated(ctx context.Context, event SanctionGeneratedEvent) error {
	p.logger.DebugContext(ctx, "Event publishing disabled, dropping event", "routingKey", routingKeySanctionGenerated)
	return nil
}
