package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intersectiondata/leadflow/internal/entity"
)

// ErrCompanyNotFound indicates there is no company row for the given lookup.
var ErrCompanyNotFound = errors.New("company not found")

// ApolloUpdate carries the Apollo payload plus the profile fields extracted
// from it. The payload stays an opaque blob; the extracted fields are
// convenience columns.
type ApolloUpdate struct {
	Payload  json.RawMessage
	Website  *string
	Industry *string
	Size     *string
	Phone    *string
}

// CompaniesRepository describes persistence operations for companies.
type CompaniesRepository interface {
	UpsertByName(ctx context.Context, name string, location *string) (*entity.Company, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	ListPendingEnrichment(ctx context.Context, limit int) ([]entity.Company, error)
	SetHunterResult(ctx context.Context, id uuid.UUID, domain string, payload json.RawMessage) error
	SetApolloResult(ctx context.Context, id uuid.UUID, update ApolloUpdate) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
}

// PGXCompaniesRepository implements CompaniesRepository using pgx.
type PGXCompaniesRepository struct {
	pool pgxPool
}

// NewPGXCompaniesRepository wires a pgx backed repository.
func NewPGXCompaniesRepository(pool *pgxpool.Pool) *PGXCompaniesRepository {
	return &PGXCompaniesRepository{pool: pool}
}

const companyColumns = `
        id,
        name,
        location,
        email_domain,
        website,
        industry,
        size,
        phone,
        hunter_data,
        apollo_data,
        status,
        created_at,
        updated_at
`

// UpsertByName inserts a company unless one with the same name exists.
// Company names are a best-effort dedup key, not a hard constraint, so the
// lookup and insert run as a close read-then-write pair.
func (r *PGXCompaniesRepository) UpsertByName(ctx context.Context, name string, location *string) (*entity.Company, bool, error) {
	if name == "" {
		return nil, false, fmt.Errorf("company name must not be empty")
	}

	existing, err := r.findByName(ctx, name)
	if err != nil && !errors.Is(err, ErrCompanyNotFound) {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO companies (name, location, status)
        VALUES ($1, $2, $3)
        RETURNING `+companyColumns,
		name, location, entity.CompanyStatusNew,
	)
	company, err := scanCompany(row)
	if err != nil {
		return nil, false, fmt.Errorf("insert company: %w", err)
	}
	return company, true, nil
}

// GetByID fetches one company.
func (r *PGXCompaniesRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("query company by id: %w", err)
	}
	return company, nil
}

func (r *PGXCompaniesRepository) findByName(ctx context.Context, name string) (*entity.Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE name = $1 LIMIT 1`, name)
	company, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, fmt.Errorf("query company by name: %w", err)
	}
	return company, nil
}

// ListPendingEnrichment returns companies that still need provider lookups:
// freshly scraped ones and those without a resolved email domain.
func (r *PGXCompaniesRepository) ListPendingEnrichment(ctx context.Context, limit int) ([]entity.Company, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+companyColumns+`
        FROM companies
        WHERE status = $1 OR email_domain IS NULL
        ORDER BY created_at ASC
        LIMIT $2`,
		entity.CompanyStatusNew, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list companies pending enrichment: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// SetHunterResult stores the resolved domain and the raw Hunter payload.
func (r *PGXCompaniesRepository) SetHunterResult(ctx context.Context, id uuid.UUID, domain string, payload json.RawMessage) error {
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	_, err := r.pool.Exec(ctx, `
        UPDATE companies
        SET email_domain = $2, hunter_data = $3::jsonb, updated_at = NOW()
        WHERE id = $1`,
		id, domain, string(payload),
	)
	if err != nil {
		return fmt.Errorf("store hunter result: %w", err)
	}
	return nil
}

// SetApolloResult stores the raw Apollo payload and the profile columns
// extracted from it.
func (r *PGXCompaniesRepository) SetApolloResult(ctx context.Context, id uuid.UUID, update ApolloUpdate) error {
	payload := update.Payload
	if len(payload) == 0 {
		payload = json.RawMessage("{}")
	}
	_, err := r.pool.Exec(ctx, `
        UPDATE companies
        SET apollo_data = $2::jsonb,
            website = COALESCE($3, website),
            industry = COALESCE($4, industry),
            size = COALESCE($5, size),
            phone = COALESCE($6, phone),
            updated_at = NOW()
        WHERE id = $1`,
		id, string(payload), update.Website, update.Industry, update.Size, update.Phone,
	)
	if err != nil {
		return fmt.Errorf("store apollo result: %w", err)
	}
	return nil
}

// SetStatus updates the pipeline status of a company.
func (r *PGXCompaniesRepository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE companies SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update company status: %w", err)
	}
	return nil
}

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var (
		c           entity.Company
		location    sql.NullString
		emailDomain sql.NullString
		website     sql.NullString
		industry    sql.NullString
		size        sql.NullString
		phone       sql.NullString
		hunterData  []byte
		apolloData  []byte
	)

	err := row.Scan(
		&c.ID,
		&c.Name,
		&location,
		&emailDomain,
		&website,
		&industry,
		&size,
		&phone,
		&hunterData,
		&apolloData,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Location = nullStringToPtr(location)
	c.EmailDomain = nullStringToPtr(emailDomain)
	c.Website = nullStringToPtr(website)
	c.Industry = nullStringToPtr(industry)
	c.Size = nullStringToPtr(size)
	c.Phone = nullStringToPtr(phone)
	c.HunterData = rawOrEmpty(hunterData)
	c.ApolloData = rawOrEmpty(apolloData)

	return &c, nil
}

func scanCompanies(rows pgx.Rows) ([]entity.Company, error) {
	var companies []entity.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, *company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

func rawOrEmpty(data []byte) json.RawMessage {
	if len(data) == 0 {
		return json.RawMessage("{}")
	}
	return json.RawMessage(data)
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}
