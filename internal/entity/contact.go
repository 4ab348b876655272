package entity

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus tracks a contact through the outreach lifecycle.
type ContactStatus string

// Lifecycle states. A contact moves new -> ready -> contacted -> replied,
// with failed reachable from a send error and meeting_scheduled from a
// booked slot. There is no transition out of failed.
const (
	ContactStatusNew              ContactStatus = "new"
	ContactStatusReady            ContactStatus = "ready"
	ContactStatusContacted        ContactStatus = "contacted"
	ContactStatusReplied          ContactStatus = "replied"
	ContactStatusFailed           ContactStatus = "failed"
	ContactStatusMeetingScheduled ContactStatus = "meeting_scheduled"
)

// Contact is a person resolved by enrichment at a company. Email is the
// dedup key and unique across all contacts. DoNotContact, once set, is
// permanent: the sender must never pick a suppressed contact again.
type Contact struct {
	ID              uuid.UUID     `json:"id"`
	CompanyID       uuid.UUID     `json:"company_id"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	Email           string        `json:"email"`
	Title           string        `json:"title"`
	LinkedIn        *string       `json:"linkedin,omitempty"`
	Confidence      int           `json:"confidence"`
	Source          string        `json:"source"`
	Status          ContactStatus `json:"status"`
	DoNotContact    bool          `json:"do_not_contact"`
	LastContactDate *time.Time    `json:"last_contact_date,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
