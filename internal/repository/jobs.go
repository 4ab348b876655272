package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intersectiondata/leadflow/internal/entity"
)

// JobsRepository persists scraped job postings.
type JobsRepository interface {
	InsertIfNew(ctx context.Context, job *entity.Job) (bool, error)
}

// PGXJobsRepository implements JobsRepository with pgx.
type PGXJobsRepository struct {
	pool pgxPool
}

// NewPGXJobsRepository instantiates a jobs repository.
func NewPGXJobsRepository(pool *pgxpool.Pool) *PGXJobsRepository {
	return &PGXJobsRepository{pool: pool}
}

// InsertIfNew stores a job unless the same posting (title, company, posted
// date) was already scraped. Returns whether a row was inserted.
func (r *PGXJobsRepository) InsertIfNew(ctx context.Context, job *entity.Job) (bool, error) {
	if job == nil {
		return false, fmt.Errorf("job payload is nil")
	}

	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM jobs
            WHERE title = $1 AND company_id = $2 AND posted_date IS NOT DISTINCT FROM $3
        )`,
		job.Title, job.CompanyID, job.PostedDate,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check job existence: %w", err)
	}
	if exists {
		return false, nil
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO jobs (company_id, title, location, posted_date, source, keyword, status)
        VALUES ($1, $2, $3, $4, $5, $6, 'new')
        RETURNING id, created_at`,
		job.CompanyID, job.Title, job.Location, job.PostedDate, job.Source, job.Keyword,
	)
	if err := row.Scan(&job.ID, &job.CreatedAt); err != nil {
		return false, fmt.Errorf("insert job: %w", err)
	}
	return true, nil
}
