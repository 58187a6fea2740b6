package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/events"
)

// TokenEvicter drops the cached token of a username.
type TokenEvicter interface {
	EvictToken(ctx context.Context, username string) error
}

// TokenRevocation evicts cached tokens when the account behind them changes,
// so the next login signs a token with current claims.
type TokenRevocation struct {
	dispatcher events.Dispatcher
	evicter    TokenEvicter
	logger     *zap.Logger
}

// NewTokenRevocation builds the subscriber.
func NewTokenRevocation(dispatcher events.Dispatcher, evicter TokenEvicter, logger *zap.Logger) *TokenRevocation {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenRevocation{dispatcher: dispatcher, evicter: evicter, logger: logger}
}

// RegisterHandlers subscribes to user change events.
func (r *TokenRevocation) RegisterHandlers() {
	if r.dispatcher == nil || r.evicter == nil {
		return
	}
	r.dispatcher.Subscribe(events.EventUserUpdated, r.evict)
	r.dispatcher.Subscribe(events.EventUserDeactivated, r.evict)
}

func (r *TokenRevocation) evict(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserChangedPayload)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", event.Type, event.Payload)
	}
	for _, username := range []string{payload.Username, payload.PreviousUsername} {
		if username == "" {
			continue
		}
		if err := r.evicter.EvictToken(ctx, username); err != nil {
			return fmt.Errorf("evict cached token for %q: %w", username, err)
		}
		r.logger.Debug("cached token evicted", zap.String("username", username), zap.String("event", string(event.Type)))
	}
	return nil
}
