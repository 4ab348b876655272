package entity

import (
	"time"

	"github.com/google/uuid"
)

// MeetingStatusScheduled is the only modeled meeting state.
const MeetingStatusScheduled = "scheduled"

// Meeting is a booked calendar slot with a contact.
type Meeting struct {
	ID              uuid.UUID `json:"id"`
	ContactID       uuid.UUID `json:"contact_id"`
	CalendarEventID string    `json:"calendar_event_id"`
	MeetingTime     time.Time `json:"meeting_time"`
	DurationMinutes int       `json:"duration_minutes"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
