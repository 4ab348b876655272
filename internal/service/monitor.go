package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/intersectiondata/leadflow/internal/dto"
	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/repository"
)

// ThreadSource lists the reply-candidate messages threaded under one
// outbound email, excluding our own messages.
type ThreadSource interface {
	ThreadReplies(ctx context.Context, outbound entity.OutboundEmail) ([]dto.InboundMessage, error)
}

// InboxSource lists recent inbox messages regardless of threading; senders
// are matched back to contacts by address. Used by the IMAP fallback.
type InboxSource interface {
	FetchSince(ctx context.Context, since time.Time) ([]dto.InboundMessage, error)
}

// MonitorService polls the mailbox for replies to recent outreach and feeds
// them through the reply lifecycle. Work is sequential: one reply is fully
// processed, including its persistence writes, before the next begins.
type MonitorService struct {
	emails   repository.EmailsRepository
	contacts repository.ContactsRepository
	replies  *ReplyService
	lookback time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewMonitorService wires the reply monitor.
func NewMonitorService(
	emails repository.EmailsRepository,
	contacts repository.ContactsRepository,
	replies *ReplyService,
	lookback time.Duration,
	logger *slog.Logger,
) *MonitorService {
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	return &MonitorService{
		emails:   emails,
		contacts: contacts,
		replies:  replies,
		lookback: lookback,
		logger:   logger,
		now:      time.Now,
	}
}

// CheckThreads walks the threads of outbound emails from the lookback
// window. Per-thread provider errors are logged and skipped; the loop
// continues with the next item.
func (m *MonitorService) CheckThreads(ctx context.Context, source ThreadSource) (int, error) {
	outbound, err := m.emails.ListOutboundSince(ctx, m.now().Add(-m.lookback))
	if err != nil {
		return 0, fmt.Errorf("list recent outbound emails: %w", err)
	}
	m.logger.Info("checking threads for replies", "outbound", len(outbound))

	processed := 0
	for _, sent := range outbound {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		messages, err := source.ThreadReplies(ctx, sent)
		if err != nil {
			m.logger.Error("check thread", "message_id", sent.GmailMessageID, "error", err)
			continue
		}
		for _, msg := range messages {
			_, fresh, err := m.replies.ProcessReply(ctx, sent.ContactID, msg)
			if err != nil {
				m.logger.Error("process reply", "message_id", msg.MessageID, "error", err)
				continue
			}
			if fresh {
				processed++
			}
		}
	}
	return processed, nil
}

// CheckInbox scans recent inbox messages and matches senders to known
// contacts. Messages from unknown addresses are ignored.
func (m *MonitorService) CheckInbox(ctx context.Context, source InboxSource) (int, error) {
	messages, err := source.FetchSince(ctx, m.now().Add(-m.lookback))
	if err != nil {
		return 0, fmt.Errorf("fetch inbox messages: %w", err)
	}
	m.logger.Info("checking inbox for replies", "messages", len(messages))

	processed := 0
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		contact, err := m.contacts.FindByEmail(ctx, msg.From)
		if err != nil {
			if errors.Is(err, repository.ErrContactNotFound) {
				continue
			}
			m.logger.Error("match sender to contact", "from", msg.From, "error", err)
			continue
		}
		_, fresh, err := m.replies.ProcessReply(ctx, contact.ID, msg)
		if err != nil {
			m.logger.Error("process reply", "message_id", msg.MessageID, "error", err)
			continue
		}
		if fresh {
			processed++
		}
	}
	return processed, nil
}
