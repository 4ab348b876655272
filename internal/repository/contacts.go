package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intersectiondata/leadflow/internal/entity"
)

// Sentinel errors for contact lookups and the email dedup invariant.
var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrDuplicateContact = errors.New("contact email already exists")
)

// SendCandidate is a contact eligible for outreach together with the company
// name needed to personalize the email.
type SendCandidate struct {
	Contact     entity.Contact
	CompanyName string
}

// ContactsRepository describes persistence operations for contacts.
type ContactsRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error)
	FindByEmail(ctx context.Context, email string) (*entity.Contact, error)
	ListSendCandidates(ctx context.Context, minConfidence, limit int) ([]SendCandidate, error)
	MarkContacted(ctx context.Context, id uuid.UUID, when time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	MarkReplied(ctx context.Context, id uuid.UUID) error
	Suppress(ctx context.Context, id uuid.UUID) error
	MarkMeetingScheduled(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// PGXContactsRepository implements ContactsRepository with pgx.
type PGXContactsRepository struct {
	pool pgxPool
}

// NewPGXContactsRepository instantiates a contacts repository.
func NewPGXContactsRepository(pool *pgxpool.Pool) *PGXContactsRepository {
	return &PGXContactsRepository{pool: pool}
}

const contactColumns = `
        id,
        company_id,
        first_name,
        last_name,
        email,
        title,
        linkedin,
        confidence,
        source,
        status,
        do_not_contact,
        last_contact_date,
        created_at,
        updated_at
`

// Create inserts a contact. A unique violation on email maps to
// ErrDuplicateContact so enrichment can treat duplicates as no-ops.
func (r *PGXContactsRepository) Create(ctx context.Context, contact *entity.Contact) error {
	if contact == nil {
		return fmt.Errorf("contact payload is nil")
	}
	if contact.Email == "" {
		return fmt.Errorf("contact email must not be empty")
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO contacts (company_id, first_name, last_name, email, title, linkedin, confidence, source, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, created_at, updated_at`,
		contact.CompanyID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Title,
		contact.LinkedIn,
		contact.Confidence,
		contact.Source,
		contact.Status,
	)
	if err := row.Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateContact
		}
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

// GetByID retrieves a contact by identifier.
func (r *PGXContactsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("query contact by id: %w", err)
	}
	return contact, nil
}

// FindByEmail retrieves a contact by its unique email.
func (r *PGXContactsRepository) FindByEmail(ctx context.Context, email string) (*entity.Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE email = $1`, email)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("query contact by email: %w", err)
	}
	return contact, nil
}

// ListSendCandidates returns ready, unsuppressed contacts meeting the
// confidence threshold. Ordering is deterministic: confidence descending,
// then oldest first, then id, so equal-confidence batches are reproducible.
func (r *PGXContactsRepository) ListSendCandidates(ctx context.Context, minConfidence, limit int) ([]SendCandidate, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
        SELECT
            c.id, c.company_id, c.first_name, c.last_name, c.email, c.title,
            c.linkedin, c.confidence, c.source, c.status, c.do_not_contact,
            c.last_contact_date, c.created_at, c.updated_at, comp.name
        FROM contacts c
        JOIN companies comp ON c.company_id = comp.id
        WHERE c.status = $1
          AND NOT c.do_not_contact
          AND c.confidence >= $2
        ORDER BY c.confidence DESC, c.created_at ASC, c.id ASC
        LIMIT $3`,
		entity.ContactStatusReady, minConfidence, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list send candidates: %w", err)
	}
	defer rows.Close()

	var candidates []SendCandidate
	for rows.Next() {
		var (
			c           entity.Contact
			linkedin    sql.NullString
			lastContact sql.NullTime
			companyName string
		)
		err := rows.Scan(
			&c.ID,
			&c.CompanyID,
			&c.FirstName,
			&c.LastName,
			&c.Email,
			&c.Title,
			&linkedin,
			&c.Confidence,
			&c.Source,
			&c.Status,
			&c.DoNotContact,
			&lastContact,
			&c.CreatedAt,
			&c.UpdatedAt,
			&companyName,
		)
		if err != nil {
			return nil, fmt.Errorf("scan send candidate: %w", err)
		}
		c.LinkedIn = nullStringToPtr(linkedin)
		if lastContact.Valid {
			ts := lastContact.Time
			c.LastContactDate = &ts
		}
		candidates = append(candidates, SendCandidate{Contact: c, CompanyName: companyName})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate send candidates: %w", err)
	}
	return candidates, nil
}

// MarkContacted records a successful send.
func (r *PGXContactsRepository) MarkContacted(ctx context.Context, id uuid.UUID, when time.Time) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE contacts
        SET status = $2, last_contact_date = $3, updated_at = NOW()
        WHERE id = $1`,
		id, entity.ContactStatusContacted, when,
	)
	if err != nil {
		return fmt.Errorf("mark contact contacted: %w", err)
	}
	return nil
}

// MarkFailed records a send-time provider error. Failed is terminal.
func (r *PGXContactsRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, entity.ContactStatusFailed)
}

// MarkReplied moves a contact to replied after an inbound reply.
func (r *PGXContactsRepository) MarkReplied(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, entity.ContactStatusReplied)
}

// Suppress sets the permanent do-not-contact flag. Status moves to replied
// unless the contact already reached meeting_scheduled.
func (r *PGXContactsRepository) Suppress(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE contacts
        SET do_not_contact = TRUE,
            status = CASE WHEN status = $2 THEN status ELSE $3 END,
            updated_at = NOW()
        WHERE id = $1`,
		id, entity.ContactStatusMeetingScheduled, entity.ContactStatusReplied,
	)
	if err != nil {
		return fmt.Errorf("suppress contact: %w", err)
	}
	return nil
}

// MarkMeetingScheduled advances a contact after a booked slot.
func (r *PGXContactsRepository) MarkMeetingScheduled(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, entity.ContactStatusMeetingScheduled)
}

// CountByStatus aggregates contact counts per lifecycle state.
func (r *PGXContactsRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM contacts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count contacts by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}

func (r *PGXContactsRepository) setStatus(ctx context.Context, id uuid.UUID, status entity.ContactStatus) error {
	_, err := r.pool.Exec(ctx, `UPDATE contacts SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update contact status to %s: %w", status, err)
	}
	return nil
}

func scanContact(row pgx.Row) (*entity.Contact, error) {
	var (
		c           entity.Contact
		linkedin    sql.NullString
		lastContact sql.NullTime
	)
	err := row.Scan(
		&c.ID,
		&c.CompanyID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Title,
		&linkedin,
		&c.Confidence,
		&c.Source,
		&c.Status,
		&c.DoNotContact,
		&lastContact,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.LinkedIn = nullStringToPtr(linkedin)
	if lastContact.Valid {
		ts := lastContact.Time
		c.LastContactDate = &ts
	}
	return &c, nil
}
