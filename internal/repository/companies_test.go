package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubCompanyRows struct {
	called bool
}

func (s *stubCompanyRows) Close()                                       {}
func (s *stubCompanyRows) Err() error                                   { return nil }
func (s *stubCompanyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (s *stubCompanyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (s *stubCompanyRows) Next() bool {
	if s.called {
		return false
	}
	s.called = true
	return true
}

func (s *stubCompanyRows) Scan(dest ...any) error {
	if !s.called {
		return errors.New("scan called before next")
	}
	created := time.Now()

	*dest[0].(*uuid.UUID) = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	*dest[1].(*string) = "Acme Analytics"
	*dest[2].(*sql.NullString) = sql.NullString{String: "Chicago, IL", Valid: true}
	*dest[3].(*sql.NullString) = sql.NullString{String: "acme.com", Valid: true}
	*dest[4].(*sql.NullString) = sql.NullString{String: "https://acme.com", Valid: true}
	*dest[5].(*sql.NullString) = sql.NullString{String: "Finance", Valid: true}
	*dest[6].(*sql.NullString) = sql.NullString{String: "200", Valid: true}
	*dest[7].(*sql.NullString) = sql.NullString{}
	*dest[8].(*[]byte) = []byte(`{"domain":"acme.com"}`)
	*dest[9].(*[]byte) = nil
	*dest[10].(*string) = "enriched"
	*dest[11].(*time.Time) = created
	*dest[12].(*time.Time) = created
	return nil
}

func (s *stubCompanyRows) Values() ([]any, error) { return nil, nil }
func (s *stubCompanyRows) RawValues() [][]byte    { return nil }
func (s *stubCompanyRows) Conn() *pgx.Conn        { return nil }

func TestPGXCompaniesRepository_UpsertByNameValidation(t *testing.T) {
	repo := &PGXCompaniesRepository{}
	if _, _, err := repo.UpsertByName(context.Background(), "", nil); err == nil {
		t.Fatalf("expected error for empty company name")
	}
}

func TestScanCompanies(t *testing.T) {
	companies, err := scanCompanies(&stubCompanyRows{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(companies) != 1 {
		t.Fatalf("expected 1 company, got %d", len(companies))
	}
	company := companies[0]
	if company.Name != "Acme Analytics" {
		t.Fatalf("unexpected company: %+v", company)
	}
	if company.EmailDomain == nil || *company.EmailDomain != "acme.com" {
		t.Fatalf("expected email domain set, got %+v", company.EmailDomain)
	}
	if company.Phone != nil {
		t.Fatalf("expected nil phone, got %v", *company.Phone)
	}
	if string(company.HunterData) != `{"domain":"acme.com"}` {
		t.Fatalf("unexpected hunter payload: %s", company.HunterData)
	}
	if string(company.ApolloData) != "{}" {
		t.Fatalf("expected empty apollo payload to default to {}, got %s", company.ApolloData)
	}
}
