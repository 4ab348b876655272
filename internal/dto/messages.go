package dto

import "time"

// InboundMessage is a reply-candidate message pulled from the mailbox,
// keyed to an outbound message id for threading. BodyText is the sole
// classifier input.
type InboundMessage struct {
	MessageID  string
	ThreadID   string
	From       string
	Subject    string
	BodyText   string
	ReceivedAt time.Time
}
