package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/intersectiondata/leadflow/internal/dto"
	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/repository"
	"github.com/intersectiondata/leadflow/internal/service/intent"
)

// MeetingSuggester starts the meeting suggestion flow for a contact whose
// reply showed interest.
type MeetingSuggester interface {
	SuggestMeeting(ctx context.Context, contactID uuid.UUID) error
}

// ReplyService owns the contact lifecycle reaction to inbound replies:
// classification, persistence, status transition and downstream action.
type ReplyService struct {
	contacts repository.ContactsRepository
	emails   repository.EmailsRepository
	booker   MeetingSuggester
	logger   *slog.Logger
}

// NewReplyService wires the reply lifecycle. booker may be nil when no
// calendar integration is configured; the suggestion step is then skipped.
func NewReplyService(
	contacts repository.ContactsRepository,
	emails repository.EmailsRepository,
	booker MeetingSuggester,
	logger *slog.Logger,
) *ReplyService {
	return &ReplyService{contacts: contacts, emails: emails, booker: booker, logger: logger}
}

// ProcessReply classifies one inbound message and drives the contact's
// status transition. The reply row is persisted before any side effect so a
// crash in between never loses the raw evidence. A message id seen before
// short-circuits as a no-op; the returned bool reports whether the reply was
// newly processed.
func (s *ReplyService) ProcessReply(ctx context.Context, contactID uuid.UUID, msg dto.InboundMessage) (intent.Intent, bool, error) {
	label := intent.Classify(msg.BodyText)

	reply := &entity.InboundReply{
		ContactID:      contactID,
		GmailMessageID: msg.MessageID,
		Subject:        msg.Subject,
		Body:           msg.BodyText,
		ReceivedAt:     msg.ReceivedAt,
		Intent:         string(label),
	}
	if err := s.emails.InsertReply(ctx, reply); err != nil {
		if errors.Is(err, repository.ErrDuplicateReply) {
			s.logger.Warn("reply already processed", "message_id", msg.MessageID)
			return label, false, nil
		}
		return label, false, fmt.Errorf("persist reply: %w", err)
	}

	if label == intent.Unsubscribe {
		// Permanent suppression: the sender must never pick this
		// contact again.
		if err := s.contacts.Suppress(ctx, contactID); err != nil {
			return label, true, fmt.Errorf("suppress contact: %w", err)
		}
	} else {
		if err := s.contacts.MarkReplied(ctx, contactID); err != nil {
			return label, true, fmt.Errorf("mark contact replied: %w", err)
		}
	}

	s.logger.Info("reply processed",
		"contact_id", contactID,
		"intent", string(label),
		"from", msg.From,
		"subject", msg.Subject,
	)

	if label.TriggersMeeting() && s.booker != nil {
		if err := s.booker.SuggestMeeting(ctx, contactID); err != nil {
			// Suggestion failures never undo the recorded reply; the
			// stored intent allows the flow to be replayed later.
			s.logger.Error("suggest meeting", "contact_id", contactID, "error", err)
		}
	}

	return label, true, nil
}
