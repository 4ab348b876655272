package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intersectiondata/leadflow/internal/entity"
)

// ErrDuplicateReply indicates the inbound message id was already processed.
// The unique constraint is the single source of truth for reply dedup.
var ErrDuplicateReply = errors.New("reply already recorded")

// EmailsRepository persists outbound sends and inbound replies.
type EmailsRepository interface {
	InsertOutbound(ctx context.Context, email *entity.OutboundEmail) error
	CountSentOn(ctx context.Context, day time.Time) (int, error)
	ListOutboundSince(ctx context.Context, since time.Time) ([]entity.OutboundEmail, error)
	InsertReply(ctx context.Context, reply *entity.InboundReply) error
	ListRecentReplies(ctx context.Context, limit int) ([]entity.InboundReply, error)
	CountRepliesByIntent(ctx context.Context) (map[string]int, error)
}

// PGXEmailsRepository implements EmailsRepository with pgx.
type PGXEmailsRepository struct {
	pool pgxPool
}

// NewPGXEmailsRepository instantiates an emails repository.
func NewPGXEmailsRepository(pool *pgxpool.Pool) *PGXEmailsRepository {
	return &PGXEmailsRepository{pool: pool}
}

// InsertOutbound records a successful send attempt.
func (r *PGXEmailsRepository) InsertOutbound(ctx context.Context, email *entity.OutboundEmail) error {
	if email == nil {
		return fmt.Errorf("outbound email payload is nil")
	}
	row := r.pool.QueryRow(ctx, `
        INSERT INTO outbound_emails (contact_id, gmail_message_id, subject, body, sent_at, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`,
		email.ContactID,
		email.GmailMessageID,
		email.Subject,
		email.Body,
		email.SentAt,
		email.Status,
	)
	if err := row.Scan(&email.ID); err != nil {
		return fmt.Errorf("insert outbound email: %w", err)
	}
	return nil
}

// CountSentOn counts sends whose timestamp falls on the given calendar date.
func (r *PGXEmailsRepository) CountSentOn(ctx context.Context, day time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
        SELECT COUNT(*) FROM outbound_emails
        WHERE sent_at >= $1 AND sent_at < $2`,
		startOfDay(day), startOfDay(day).AddDate(0, 0, 1),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count sent emails: %w", err)
	}
	return count, nil
}

// ListOutboundSince returns sent emails newer than the given instant, used
// by the reply monitor to bound its thread polling.
func (r *PGXEmailsRepository) ListOutboundSince(ctx context.Context, since time.Time) ([]entity.OutboundEmail, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, contact_id, gmail_message_id, subject, body, sent_at, status
        FROM outbound_emails
        WHERE status = 'sent' AND sent_at >= $1
        ORDER BY sent_at DESC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("list outbound emails: %w", err)
	}
	defer rows.Close()

	var emails []entity.OutboundEmail
	for rows.Next() {
		var e entity.OutboundEmail
		err := rows.Scan(&e.ID, &e.ContactID, &e.GmailMessageID, &e.Subject, &e.Body, &e.SentAt, &e.Status)
		if err != nil {
			return nil, fmt.Errorf("scan outbound email: %w", err)
		}
		emails = append(emails, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbound emails: %w", err)
	}
	return emails, nil
}

// InsertReply records a classified reply. A unique violation on the message
// id maps to ErrDuplicateReply so reprocessing is a safe no-op.
func (r *PGXEmailsRepository) InsertReply(ctx context.Context, reply *entity.InboundReply) error {
	if reply == nil {
		return fmt.Errorf("reply payload is nil")
	}
	row := r.pool.QueryRow(ctx, `
        INSERT INTO inbound_replies (contact_id, gmail_message_id, subject, body, received_at, intent)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id`,
		reply.ContactID,
		reply.GmailMessageID,
		reply.Subject,
		reply.Body,
		reply.ReceivedAt,
		reply.Intent,
	)
	if err := row.Scan(&reply.ID); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateReply
		}
		return fmt.Errorf("insert reply: %w", err)
	}
	return nil
}

// ListRecentReplies returns the newest replies, bounded by limit.
func (r *PGXEmailsRepository) ListRecentReplies(ctx context.Context, limit int) ([]entity.InboundReply, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, contact_id, gmail_message_id, subject, body, received_at, intent, responded
        FROM inbound_replies
        ORDER BY received_at DESC
        LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent replies: %w", err)
	}
	defer rows.Close()

	var replies []entity.InboundReply
	for rows.Next() {
		var reply entity.InboundReply
		err := rows.Scan(
			&reply.ID,
			&reply.ContactID,
			&reply.GmailMessageID,
			&reply.Subject,
			&reply.Body,
			&reply.ReceivedAt,
			&reply.Intent,
			&reply.Responded,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		replies = append(replies, reply)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate replies: %w", err)
	}
	return replies, nil
}

// CountRepliesByIntent aggregates reply counts per classified intent.
func (r *PGXEmailsRepository) CountRepliesByIntent(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT intent, COUNT(*) FROM inbound_replies GROUP BY intent`)
	if err != nil {
		return nil, fmt.Errorf("count replies by intent: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			label string
			count int
		)
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan intent count: %w", err)
		}
		counts[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate intent counts: %w", err)
	}
	return counts, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
