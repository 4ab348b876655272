// Package mailer sends outreach email through the Gmail API and reads
// replies back out of the sent threads.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/intersectiondata/leadflow/internal/config"
	"github.com/intersectiondata/leadflow/internal/dto"
	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/gcal"
)

// Gmail sends and reads mail for one account via the Gmail API.
type Gmail struct {
	service *gmail.Service
	sender  string
	name    string
	logger  *slog.Logger
}

// NewGmail builds a Gmail client from the refresh-token credentials.
func NewGmail(ctx context.Context, cfg config.GoogleConfig, senderEmail, senderName string, logger *slog.Logger) (*Gmail, error) {
	service, err := gmail.NewService(ctx, option.WithTokenSource(gcal.TokenSource(ctx, cfg)))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &Gmail{service: service, sender: senderEmail, name: senderName, logger: logger}, nil
}

// Send delivers one plain-text email and returns Gmail's message id.
func (g *Gmail) Send(ctx context.Context, to, toName, subject, body string) (string, error) {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", g.name, g.sender)
	fmt.Fprintf(&msg, "To: %s <%s>\r\n", toName, to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	raw := base64.URLEncoding.EncodeToString([]byte(msg.String()))
	sent, err := g.service.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("send gmail message: %w", err)
	}
	return sent.Id, nil
}

// ThreadReplies returns the messages other parties added to the thread of a
// sent email. Messages authored by the sender account are skipped.
func (g *Gmail) ThreadReplies(ctx context.Context, outbound entity.OutboundEmail) ([]dto.InboundMessage, error) {
	sent, err := g.service.Users.Messages.Get("me", outbound.GmailMessageID).
		Format("minimal").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("load sent message %s: %w", outbound.GmailMessageID, err)
	}

	thread, err := g.service.Users.Threads.Get("me", sent.ThreadId).
		Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", sent.ThreadId, err)
	}

	var replies []dto.InboundMessage
	for _, msg := range thread.Messages {
		if msg.Id == outbound.GmailMessageID {
			continue
		}
		from := headerValue(msg, "From")
		if strings.Contains(strings.ToLower(from), strings.ToLower(g.sender)) {
			continue
		}
		replies = append(replies, dto.InboundMessage{
			MessageID:  msg.Id,
			ThreadID:   msg.ThreadId,
			From:       extractAddress(from),
			Subject:    headerValue(msg, "Subject"),
			BodyText:   extractBody(msg.Payload, g.logger),
			ReceivedAt: time.UnixMilli(msg.InternalDate),
		})
	}
	return replies, nil
}

func headerValue(msg *gmail.Message, name string) string {
	if msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractAddress pulls the bare address out of a "Name <addr>" header value.
func extractAddress(from string) string {
	if open := strings.LastIndex(from, "<"); open >= 0 {
		if end := strings.LastIndex(from, ">"); end > open {
			return strings.TrimSpace(from[open+1 : end])
		}
	}
	return strings.TrimSpace(from)
}
