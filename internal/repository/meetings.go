package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intersectiondata/leadflow/internal/entity"
)

// MeetingsRepository persists booked meetings.
type MeetingsRepository interface {
	Insert(ctx context.Context, meeting *entity.Meeting) error
}

// PGXMeetingsRepository implements MeetingsRepository with pgx.
type PGXMeetingsRepository struct {
	pool pgxPool
}

// NewPGXMeetingsRepository instantiates a meetings repository.
func NewPGXMeetingsRepository(pool *pgxpool.Pool) *PGXMeetingsRepository {
	return &PGXMeetingsRepository{pool: pool}
}

// Insert stores a scheduled meeting.
func (r *PGXMeetingsRepository) Insert(ctx context.Context, meeting *entity.Meeting) error {
	if meeting == nil {
		return fmt.Errorf("meeting payload is nil")
	}
	row := r.pool.QueryRow(ctx, `
        INSERT INTO meetings (contact_id, calendar_event_id, meeting_time, duration_minutes, status, notes)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`,
		meeting.ContactID,
		meeting.CalendarEventID,
		meeting.MeetingTime,
		meeting.DurationMinutes,
		meeting.Status,
		meeting.Notes,
	)
	if err := row.Scan(&meeting.ID, &meeting.CreatedAt); err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	return nil
}
