package entity

import (
	"time"

	"github.com/google/uuid"
)

// OutboundEmail records one successful send attempt. The provider message id
// is used to locate the thread when polling for replies.
type OutboundEmail struct {
	ID             uuid.UUID `json:"id"`
	ContactID      uuid.UUID `json:"contact_id"`
	GmailMessageID string    `json:"gmail_message_id"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
	Status         string    `json:"status"`
}

// InboundReply is a detected reply with its classified intent. The provider
// message id is unique so that re-processing the same message is a no-op
// even across restarts. Responded is stored but never written by any
// automated flow; setting it is a pending product decision.
type InboundReply struct {
	ID             uuid.UUID `json:"id"`
	ContactID      uuid.UUID `json:"contact_id"`
	GmailMessageID string    `json:"gmail_message_id"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	ReceivedAt     time.Time `json:"received_at"`
	Intent         string    `json:"intent"`
	Responded      bool      `json:"responded"`
}
