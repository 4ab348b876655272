package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/time/rate"

	"github.com/intersectiondata/leadflow/internal/apollo"
	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/hunter"
	"github.com/intersectiondata/leadflow/internal/repository"
)

// Finance roles resolved per company, in lookup order.
var targetTitles = []string{
	"Finance Director",
	"FP&A Manager",
	"Financial Analyst",
	"Controller",
	"CFO",
	"VP Finance",
}

// HunterClient resolves company domains and person emails via Hunter.io.
type HunterClient interface {
	DomainSearch(ctx context.Context, company string) (*hunter.DomainSearchResult, error)
	FindEmail(ctx context.Context, domain, company, position string) (*hunter.EmailFinderResult, error)
}

// ApolloClient resolves organizations and their people via Apollo.io.
type ApolloClient interface {
	SearchOrganization(ctx context.Context, company string) (*apollo.Organization, error)
	SearchPeople(ctx context.Context, organizationID string) ([]apollo.Person, error)
}

// EnrichResult summarises one enrichment cycle.
type EnrichResult struct {
	Companies    int
	NewContacts  int
	ReadyContact int
}

// EnrichService resolves contacts for scraped companies. Either provider may
// be nil when its API key is not configured; the service uses whichever is
// available. Provider calls are paced by a shared limiter.
type EnrichService struct {
	companies repository.CompaniesRepository
	contacts  repository.ContactsRepository
	hunter    HunterClient
	apollo    ApolloClient
	limiter   *rate.Limiter
	minScore  int
	logger    *slog.Logger
}

// NewEnrichService wires the enrichment pipeline.
func NewEnrichService(
	companies repository.CompaniesRepository,
	contacts repository.ContactsRepository,
	hunterClient HunterClient,
	apolloClient ApolloClient,
	lookupDelay time.Duration,
	minScore int,
	logger *slog.Logger,
) *EnrichService {
	if lookupDelay <= 0 {
		lookupDelay = time.Second
	}
	return &EnrichService{
		companies: companies,
		contacts:  contacts,
		hunter:    hunterClient,
		apollo:    apolloClient,
		limiter:   rate.NewLimiter(rate.Every(lookupDelay), 1),
		minScore:  minScore,
		logger:    logger,
	}
}

// EnrichPending processes companies that still need provider lookups. A
// provider failure for one company is logged and skipped; the cycle keeps
// going and can only be aborted between companies via the context.
func (s *EnrichService) EnrichPending(ctx context.Context, limit int) (EnrichResult, error) {
	var result EnrichResult

	pending, err := s.companies.ListPendingEnrichment(ctx, limit)
	if err != nil {
		return result, fmt.Errorf("load pending companies: %w", err)
	}
	s.logger.Info("enrichment starting", "companies", len(pending))

	for i := range pending {
		company := &pending[i]
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := s.enrichCompany(ctx, company, &result); err != nil {
			s.logger.Error("enrich company", "company", company.Name, "error", err)
			continue
		}
		result.Companies++
	}

	s.logger.Info("enrichment finished",
		"companies", result.Companies,
		"new_contacts", result.NewContacts,
		"ready_contacts", result.ReadyContact,
	)
	return result, nil
}

func (s *EnrichService) enrichCompany(ctx context.Context, company *entity.Company, result *EnrichResult) error {
	if s.hunter != nil {
		if err := s.enrichFromHunter(ctx, company, result); err != nil {
			return err
		}
	}
	if s.apollo != nil {
		if err := s.enrichFromApollo(ctx, company, result); err != nil {
			return err
		}
	}
	if err := s.companies.SetStatus(ctx, company.ID, entity.CompanyStatusEnriched); err != nil {
		return err
	}
	return nil
}

func (s *EnrichService) enrichFromHunter(ctx context.Context, company *entity.Company, result *EnrichResult) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	search, err := s.hunter.DomainSearch(ctx, company.Name)
	if err != nil {
		return fmt.Errorf("hunter domain search: %w", err)
	}
	if search == nil || search.Domain == "" {
		s.logger.Info("hunter has no domain for company", "company", company.Name)
		return nil
	}
	if err := s.companies.SetHunterResult(ctx, company.ID, search.Domain, search.Raw); err != nil {
		return err
	}
	company.EmailDomain = &search.Domain

	for _, title := range targetTitles {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
		found, err := s.hunter.FindEmail(ctx, search.Domain, company.Name, title)
		if err != nil {
			s.logger.Error("hunter email finder", "company", company.Name, "title", title, "error", err)
			continue
		}
		if found == nil || found.Email == "" {
			continue
		}
		s.saveContact(ctx, result, &entity.Contact{
			CompanyID:  company.ID,
			FirstName:  found.FirstName,
			LastName:   found.LastName,
			Email:      found.Email,
			Title:      title,
			Confidence: found.Score,
			Source:     "hunter",
		})
	}
	return nil
}

func (s *EnrichService) enrichFromApollo(ctx context.Context, company *entity.Company, result *EnrichResult) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	org, err := s.apollo.SearchOrganization(ctx, company.Name)
	if err != nil {
		return fmt.Errorf("apollo organization search: %w", err)
	}
	if org == nil {
		s.logger.Info("apollo has no match for company", "company", company.Name)
		return nil
	}

	update := repository.ApolloUpdate{Payload: org.Raw}
	if org.Website != "" {
		update.Website = &org.Website
	}
	if org.Industry != "" {
		update.Industry = &org.Industry
	}
	if org.Employees > 0 {
		size := strconv.Itoa(org.Employees)
		update.Size = &size
	}
	if normalized := normalizePhone(org.Phone); normalized != "" {
		update.Phone = &normalized
	}
	if err := s.companies.SetApolloResult(ctx, company.ID, update); err != nil {
		return err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	people, err := s.apollo.SearchPeople(ctx, org.ID)
	if err != nil {
		return fmt.Errorf("apollo people search: %w", err)
	}
	for _, person := range people {
		if person.Email == "" {
			continue
		}
		confidence := 70
		if person.EmailVerified {
			confidence = 100
		}
		contact := &entity.Contact{
			CompanyID:  company.ID,
			FirstName:  person.FirstName,
			LastName:   person.LastName,
			Email:      person.Email,
			Title:      person.Title,
			Confidence: confidence,
			Source:     "apollo",
		}
		if person.LinkedIn != "" {
			linkedIn := person.LinkedIn
			contact.LinkedIn = &linkedIn
		}
		s.saveContact(ctx, result, contact)
	}
	return nil
}

// saveContact inserts the contact with a status derived from its confidence
// score. Duplicate emails are a no-op; persistence errors are logged but do
// not abort the company.
func (s *EnrichService) saveContact(ctx context.Context, result *EnrichResult, contact *entity.Contact) {
	contact.Status = entity.ContactStatusNew
	if contact.Confidence >= s.minScore {
		contact.Status = entity.ContactStatusReady
	}

	err := s.contacts.Create(ctx, contact)
	switch {
	case errors.Is(err, repository.ErrDuplicateContact):
		s.logger.Info("contact already known", "email", contact.Email)
	case err != nil:
		s.logger.Error("save contact", "email", contact.Email, "error", err)
	default:
		result.NewContacts++
		if contact.Status == entity.ContactStatusReady {
			result.ReadyContact++
		}
		s.logger.Info("contact saved",
			"email", contact.Email,
			"source", contact.Source,
			"confidence", contact.Confidence,
			"status", contact.Status,
		)
	}
}

// normalizePhone formats a provider phone number as E.164, defaulting to the
// US region for numbers without a country code. Unparseable input yields "".
func normalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(raw, "US")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}
