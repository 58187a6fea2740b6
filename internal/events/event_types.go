package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/Behnamfe76/contacts-directory/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserCreated     EventType = "user_created"
	EventUserUpdated     EventType = "user_updated"
	EventUserDeactivated EventType = "user_deactivated"
	EventContactCreated  EventType = "contact_created"
	EventContactUpdated  EventType = "contact_updated"
	EventContactDeleted  EventType = "contact_deleted"
	EventTokenIssued     EventType = "token_issued"
)

// Actor identifies who triggered an event. Anonymous actions leave Username empty.
type Actor struct {
	Username string `json:"username,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current UTC time.
func NewEvent(eventType EventType, actor Actor, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// UserChangedPayload is attached to user events. Subscribers that hold
// per-user state key it by Username.
type UserChangedPayload struct {
	UserID   int64       `json:"user_id"`
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
	Active   bool        `json:"active"`

	// PreviousUsername is set when an update renamed the account.
	PreviousUsername string `json:"previous_username,omitempty"`
}

// ContactChangedPayload is attached to contact events.
type ContactChangedPayload struct {
	ContactID int64  `json:"contact_id"`
	Name      string `json:"name"`
	DDD       string `json:"ddd"`
}

// TokenIssuedPayload is attached to token_issued events.
type TokenIssuedPayload struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
	FromCache bool      `json:"from_cache"`
}
