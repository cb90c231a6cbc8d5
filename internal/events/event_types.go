package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventUserLoggedIn   EventType = "user_logged_in"
	EventTokensRotated  EventType = "tokens_rotated"
	EventGuestMerged    EventType = "guest_merged"
	EventRolesChanged   EventType = "roles_changed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	PrincipalID string    `json:"principal_id"`
	Timestamp   time.Time `json:"timestamp"`
	Payload     any       `json:"payload,omitempty"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, principalID string, payload any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		PrincipalID: principalID,
		Timestamp:   time.Now().UTC(),
		Payload:     payload,
	}
}

// UserLoggedInPayload payload.
type UserLoggedInPayload struct {
	GuestID    string `json:"guest_id,omitempty"`
	Reparented int    `json:"reparented"`
	Discarded  int    `json:"discarded"`
}

// GuestMergedPayload payload.
type GuestMergedPayload struct {
	GuestID    string `json:"guest_id"`
	Reparented int    `json:"reparented"`
	Discarded  int    `json:"discarded"`
}

// RolesChangedPayload payload.
type RolesChangedPayload struct {
	ChangedBy string   `json:"changed_by"`
	Roles     []string `json:"roles"`
}
