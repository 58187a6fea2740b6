package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/events"
)

// AuditService writes an audit trail entry for every domain event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service. Entries go to a child logger named "audit".
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserCreated, a.handleUserEvent)
	a.dispatcher.Subscribe(events.EventUserUpdated, a.handleUserEvent)
	a.dispatcher.Subscribe(events.EventUserDeactivated, a.handleUserEvent)
	a.dispatcher.Subscribe(events.EventContactCreated, a.handleContactEvent)
	a.dispatcher.Subscribe(events.EventContactUpdated, a.handleContactEvent)
	a.dispatcher.Subscribe(events.EventContactDeleted, a.handleContactEvent)
	a.dispatcher.Subscribe(events.EventTokenIssued, a.handleTokenIssued)
}

func (a *AuditService) handleUserEvent(_ context.Context, event events.Event) error {
	fields := a.base(event)
	if p, ok := event.Payload.(events.UserChangedPayload); ok {
		fields = append(fields,
			zap.Int64("user_id", p.UserID),
			zap.String("username", p.Username),
			zap.Stringer("role", p.Role),
			zap.Bool("active", p.Active))
		if p.PreviousUsername != "" {
			fields = append(fields, zap.String("previous_username", p.PreviousUsername))
		}
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

func (a *AuditService) handleContactEvent(_ context.Context, event events.Event) error {
	fields := a.base(event)
	if p, ok := event.Payload.(events.ContactChangedPayload); ok {
		fields = append(fields, zap.Int64("contact_id", p.ContactID), zap.String("ddd", p.DDD))
	}
	a.logger.Info(string(event.Type), fields...)
	return nil
}

// Token issuance is frequent; it is recorded at debug level.
func (a *AuditService) handleTokenIssued(_ context.Context, event events.Event) error {
	fields := a.base(event)
	if p, ok := event.Payload.(events.TokenIssuedPayload); ok {
		fields = append(fields, zap.Time("expires_at", p.ExpiresAt), zap.Bool("from_cache", p.FromCache))
	}
	a.logger.Debug(string(event.Type), fields...)
	return nil
}

func (a *AuditService) base(event events.Event) []zap.Field {
	actor := event.Actor.Username
	if actor == "" {
		actor = "anonymous"
	}
	return []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("actor", actor),
		zap.Time("at", event.Timestamp),
	}
}
