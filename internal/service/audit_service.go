package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/events"
)

// AuditService writes an audit trail of authentication events to the log.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handle)
	a.dispatcher.Subscribe(events.EventUserLoggedIn, a.handle)
	a.dispatcher.Subscribe(events.EventTokensRotated, a.handleRotated)
	a.dispatcher.Subscribe(events.EventGuestMerged, a.handle)
	a.dispatcher.Subscribe(events.EventRolesChanged, a.handle)
}

func (a *AuditService) handle(_ context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("principal_id", event.PrincipalID),
		zap.Time("at", event.Timestamp),
		zap.Any("payload", event.Payload))
	return nil
}

// rotations are frequent
func (a *AuditService) handleRotated(_ context.Context, event events.Event) error {
	a.logger.Debug(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("principal_id", event.PrincipalID))
	return nil
}
