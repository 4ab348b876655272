// Package mailbox is the IMAP fallback reply source, used when Gmail OAuth
// credentials are not configured. It polls the INBOX over plain IMAP.
package mailbox

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/intersectiondata/leadflow/internal/config"
	"github.com/intersectiondata/leadflow/internal/dto"
)

// Mailbox polls one IMAP account for inbound replies. Each FetchSince call
// opens a fresh connection; the poll interval is long enough that keeping a
// session alive buys nothing.
type Mailbox struct {
	cfg    config.IMAPConfig
	logger *slog.Logger
}

// New builds an IMAP mailbox poller.
func New(cfg config.IMAPConfig, logger *slog.Logger) *Mailbox {
	return &Mailbox{cfg: cfg, logger: logger}
}

// FetchSince lists inbox messages received after the given instant.
func (m *Mailbox) FetchSince(ctx context.Context, since time.Time) ([]dto.InboundMessage, error) {
	c, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, fmt.Errorf("select INBOX: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("search inbox: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	var out []dto.InboundMessage
	for msg := range messages {
		parsed, err := parseMessage(msg, section)
		if err != nil {
			m.logger.Warn("parse inbox message", "uid", msg.Uid, "error", err)
			continue
		}
		// The SINCE search key has day granularity; filter precisely here.
		if parsed.ReceivedAt.Before(since) {
			continue
		}
		out = append(out, parsed)
	}
	if err := <-done; err != nil {
		return out, fmt.Errorf("fetch inbox messages: %w", err)
	}
	return out, nil
}

func (m *Mailbox) connect(ctx context.Context) (*client.Client, error) {
	dialer := &net.Dialer{Timeout: 30 * time.Second}
	conn, err := tls.DialWithDialer(dialer, "tcp", m.cfg.Server, nil)
	if err != nil {
		return nil, fmt.Errorf("dial imap server: %w", err)
	}

	c, err := client.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create imap client: %w", err)
	}
	if err := c.Login(m.cfg.Email, m.cfg.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap login: %w", err)
	}
	return c, nil
}

func parseMessage(msg *imap.Message, section *imap.BodySectionName) (dto.InboundMessage, error) {
	var out dto.InboundMessage

	if msg.Envelope == nil {
		return out, fmt.Errorf("message %d has no envelope", msg.Uid)
	}
	out.MessageID = msg.Envelope.MessageId
	out.Subject = msg.Envelope.Subject
	out.ReceivedAt = msg.Envelope.Date
	if len(msg.Envelope.From) > 0 {
		out.From = msg.Envelope.From[0].Address()
	}

	body := msg.GetBody(section)
	if body == nil {
		return out, nil
	}
	text, html, err := readParts(body)
	if err != nil {
		return out, err
	}
	out.BodyText = text
	if out.BodyText == "" && html != "" {
		out.BodyText = htmlToText(html)
	}
	return out, nil
}

func readParts(body io.Reader) (text, html string, err error) {
	mr, err := mail.CreateReader(body)
	if err != nil {
		return "", "", fmt.Errorf("create mail reader: %w", err)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return text, html, fmt.Errorf("read mail part: %w", err)
		}
		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := header.ContentType()
		content, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch {
		case strings.HasPrefix(contentType, "text/plain"):
			text = string(content)
		case strings.HasPrefix(contentType, "text/html"):
			html = string(content)
		}
	}
	return text, html, nil
}

func htmlToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("style, script").Remove()
	return strings.TrimSpace(doc.Text())
}
