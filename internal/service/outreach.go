package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/repository"
)

// MessageSender delivers one rendered email and returns the provider
// message id. Implementations must honor the context deadline.
type MessageSender interface {
	Send(ctx context.Context, to, toName, subject, body string) (string, error)
}

// OutreachRenderer produces the personalized subject and body for a
// candidate contact.
type OutreachRenderer interface {
	Render(candidate repository.SendCandidate) (subject, body string, err error)
}

// BatchResult summarises one send cycle.
type BatchResult struct {
	Permitted int
	Sent      int
	Failed    int
	Skipped   string
}

// OutreachService sends the daily cold-outreach batch. Sends are strictly
// sequential; a pacing limiter enforces a minimum delay between them.
type OutreachService struct {
	contacts repository.ContactsRepository
	emails   repository.EmailsRepository
	gate     *QuotaGate
	sender   MessageSender
	renderer OutreachRenderer
	limiter  *rate.Limiter
	minScore int
	logger   *slog.Logger
	now      func() time.Time
}

// NewOutreachService wires the sender pipeline.
func NewOutreachService(
	contacts repository.ContactsRepository,
	emails repository.EmailsRepository,
	gate *QuotaGate,
	sender MessageSender,
	renderer OutreachRenderer,
	sendDelay time.Duration,
	minScore int,
	logger *slog.Logger,
) *OutreachService {
	if sendDelay <= 0 {
		sendDelay = 5 * time.Second
	}
	return &OutreachService{
		contacts: contacts,
		emails:   emails,
		gate:     gate,
		sender:   sender,
		renderer: renderer,
		limiter:  rate.NewLimiter(rate.Every(sendDelay), 1),
		minScore: minScore,
		logger:   logger,
		now:      time.Now,
	}
}

// SendBatch sends up to the permitted number of emails to the
// highest-confidence ready contacts. Quota or window exhaustion is a normal
// no-op outcome, not an error. Individual send failures mark the contact
// failed and the loop continues; the batch can only be aborted between
// contacts.
func (s *OutreachService) SendBatch(ctx context.Context) (BatchResult, error) {
	var result BatchResult

	if !s.gate.WindowOpen() {
		result.Skipped = "outside business hours"
		s.logger.Info("send batch skipped", "reason", result.Skipped)
		return result, nil
	}

	remaining, err := s.gate.Remaining(ctx)
	if err != nil {
		return result, err
	}
	if remaining <= 0 {
		result.Skipped = "daily quota exhausted"
		s.logger.Info("send batch skipped", "reason", result.Skipped)
		return result, nil
	}
	result.Permitted = remaining

	candidates, err := s.contacts.ListSendCandidates(ctx, s.minScore, remaining)
	if err != nil {
		return result, fmt.Errorf("load send candidates: %w", err)
	}
	s.logger.Info("send batch starting", "candidates", len(candidates), "remaining", remaining)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return result, err
		}
		if err := s.sendOne(ctx, candidate); err != nil {
			result.Failed++
			continue
		}
		result.Sent++
	}

	s.logger.Info("send batch finished", "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

func (s *OutreachService) sendOne(ctx context.Context, candidate repository.SendCandidate) error {
	contact := candidate.Contact

	subject, body, err := s.renderer.Render(candidate)
	if err != nil {
		s.logger.Error("render outreach email", "email", contact.Email, "error", err)
		return err
	}

	messageID, err := s.sender.Send(ctx, contact.Email, contact.FirstName+" "+contact.LastName, subject, body)
	if err != nil {
		s.logger.Error("send outreach email", "email", contact.Email, "error", err)
		if markErr := s.contacts.MarkFailed(ctx, contact.ID); markErr != nil {
			s.logger.Error("mark contact failed", "email", contact.Email, "error", markErr)
		}
		return err
	}

	sentAt := s.now()
	outbound := &entity.OutboundEmail{
		ContactID:      contact.ID,
		GmailMessageID: messageID,
		Subject:        subject,
		Body:           body,
		SentAt:         sentAt,
		Status:         "sent",
	}
	if err := s.emails.InsertOutbound(ctx, outbound); err != nil {
		s.logger.Error("record outbound email", "email", contact.Email, "error", err)
		return err
	}
	if err := s.contacts.MarkContacted(ctx, contact.ID, sentAt); err != nil {
		s.logger.Error("mark contact contacted", "email", contact.Email, "error", err)
		return err
	}

	s.logger.Info("outreach email sent", "email", contact.Email, "message_id", messageID)
	return nil
}
