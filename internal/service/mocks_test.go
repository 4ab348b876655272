package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockContactsRepo struct {
	CreateFn               func(ctx context.Context, contact *entity.Contact) error
	GetByIDFn              func(ctx context.Context, id uuid.UUID) (*entity.Contact, error)
	FindByEmailFn          func(ctx context.Context, email string) (*entity.Contact, error)
	ListSendCandidatesFn   func(ctx context.Context, minConfidence, limit int) ([]repository.SendCandidate, error)
	MarkContactedFn        func(ctx context.Context, id uuid.UUID, when time.Time) error
	MarkFailedFn           func(ctx context.Context, id uuid.UUID) error
	MarkRepliedFn          func(ctx context.Context, id uuid.UUID) error
	SuppressFn             func(ctx context.Context, id uuid.UUID) error
	MarkMeetingScheduledFn func(ctx context.Context, id uuid.UUID) error
	CountByStatusFn        func(ctx context.Context) (map[string]int, error)
}

func (m *mockContactsRepo) Create(ctx context.Context, contact *entity.Contact) error {
	return m.CreateFn(ctx, contact)
}

func (m *mockContactsRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockContactsRepo) FindByEmail(ctx context.Context, email string) (*entity.Contact, error) {
	return m.FindByEmailFn(ctx, email)
}

func (m *mockContactsRepo) ListSendCandidates(ctx context.Context, minConfidence, limit int) ([]repository.SendCandidate, error) {
	return m.ListSendCandidatesFn(ctx, minConfidence, limit)
}

func (m *mockContactsRepo) MarkContacted(ctx context.Context, id uuid.UUID, when time.Time) error {
	return m.MarkContactedFn(ctx, id, when)
}

func (m *mockContactsRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return m.MarkFailedFn(ctx, id)
}

func (m *mockContactsRepo) MarkReplied(ctx context.Context, id uuid.UUID) error {
	return m.MarkRepliedFn(ctx, id)
}

func (m *mockContactsRepo) Suppress(ctx context.Context, id uuid.UUID) error {
	return m.SuppressFn(ctx, id)
}

func (m *mockContactsRepo) MarkMeetingScheduled(ctx context.Context, id uuid.UUID) error {
	return m.MarkMeetingScheduledFn(ctx, id)
}

func (m *mockContactsRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	return m.CountByStatusFn(ctx)
}

type mockCompaniesRepo struct {
	UpsertByNameFn          func(ctx context.Context, name string, location *string) (*entity.Company, bool, error)
	GetByIDFn               func(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	ListPendingEnrichmentFn func(ctx context.Context, limit int) ([]entity.Company, error)
	SetHunterResultFn       func(ctx context.Context, id uuid.UUID, domain string, payload json.RawMessage) error
	SetApolloResultFn       func(ctx context.Context, id uuid.UUID, update repository.ApolloUpdate) error
	SetStatusFn             func(ctx context.Context, id uuid.UUID, status string) error
}

func (m *mockCompaniesRepo) UpsertByName(ctx context.Context, name string, location *string) (*entity.Company, bool, error) {
	return m.UpsertByNameFn(ctx, name, location)
}

func (m *mockCompaniesRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockCompaniesRepo) ListPendingEnrichment(ctx context.Context, limit int) ([]entity.Company, error) {
	return m.ListPendingEnrichmentFn(ctx, limit)
}

func (m *mockCompaniesRepo) SetHunterResult(ctx context.Context, id uuid.UUID, domain string, payload json.RawMessage) error {
	return m.SetHunterResultFn(ctx, id, domain, payload)
}

func (m *mockCompaniesRepo) SetApolloResult(ctx context.Context, id uuid.UUID, update repository.ApolloUpdate) error {
	return m.SetApolloResultFn(ctx, id, update)
}

func (m *mockCompaniesRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return m.SetStatusFn(ctx, id, status)
}

type mockEmailsRepo struct {
	InsertOutboundFn       func(ctx context.Context, email *entity.OutboundEmail) error
	CountSentOnFn          func(ctx context.Context, day time.Time) (int, error)
	ListOutboundSinceFn    func(ctx context.Context, since time.Time) ([]entity.OutboundEmail, error)
	InsertReplyFn          func(ctx context.Context, reply *entity.InboundReply) error
	ListRecentRepliesFn    func(ctx context.Context, limit int) ([]entity.InboundReply, error)
	CountRepliesByIntentFn func(ctx context.Context) (map[string]int, error)
}

func (m *mockEmailsRepo) InsertOutbound(ctx context.Context, email *entity.OutboundEmail) error {
	return m.InsertOutboundFn(ctx, email)
}

func (m *mockEmailsRepo) CountSentOn(ctx context.Context, day time.Time) (int, error) {
	return m.CountSentOnFn(ctx, day)
}

func (m *mockEmailsRepo) ListOutboundSince(ctx context.Context, since time.Time) ([]entity.OutboundEmail, error) {
	return m.ListOutboundSinceFn(ctx, since)
}

func (m *mockEmailsRepo) InsertReply(ctx context.Context, reply *entity.InboundReply) error {
	return m.InsertReplyFn(ctx, reply)
}

func (m *mockEmailsRepo) ListRecentReplies(ctx context.Context, limit int) ([]entity.InboundReply, error) {
	return m.ListRecentRepliesFn(ctx, limit)
}

func (m *mockEmailsRepo) CountRepliesByIntent(ctx context.Context) (map[string]int, error) {
	return m.CountRepliesByIntentFn(ctx)
}

type mockMeetingsRepo struct {
	InsertFn func(ctx context.Context, meeting *entity.Meeting) error
}

func (m *mockMeetingsRepo) Insert(ctx context.Context, meeting *entity.Meeting) error {
	return m.InsertFn(ctx, meeting)
}
