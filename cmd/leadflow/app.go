package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intersectiondata/leadflow/internal/apollo"
	"github.com/intersectiondata/leadflow/internal/config"
	"github.com/intersectiondata/leadflow/internal/database"
	"github.com/intersectiondata/leadflow/internal/gcal"
	"github.com/intersectiondata/leadflow/internal/hunter"
	"github.com/intersectiondata/leadflow/internal/mailbox"
	"github.com/intersectiondata/leadflow/internal/mailer"
	"github.com/intersectiondata/leadflow/internal/repository"
	"github.com/intersectiondata/leadflow/internal/service"
)

// app carries the shared wiring every command starts from.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *pgxpool.Pool

	companies repository.CompaniesRepository
	contacts  repository.ContactsRepository
	emails    repository.EmailsRepository
	jobs      repository.JobsRepository
	meetings  repository.MeetingsRepository
}

// newApp loads configuration, connects the database and builds the
// repositories.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pool, err := database.Connect(connectCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Bootstrap(connectCtx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		pool:      pool,
		companies: repository.NewPGXCompaniesRepository(pool),
		contacts:  repository.NewPGXContactsRepository(pool),
		emails:    repository.NewPGXEmailsRepository(pool),
		jobs:      repository.NewPGXJobsRepository(pool),
		meetings:  repository.NewPGXMeetingsRepository(pool),
	}, nil
}

func (a *app) close() {
	a.pool.Close()
}

func (a *app) quotaGate() *service.QuotaGate {
	window := service.SendWindow{
		StartHour: a.cfg.SendStartHour,
		EndHour:   a.cfg.SendEndHour,
		Location:  a.cfg.Location(),
	}
	return service.NewQuotaGate(a.emails, window, a.cfg.MaxDailyEmails)
}

func (a *app) enrichService() (*service.EnrichService, error) {
	if err := a.cfg.RequireEnrichment(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: 15 * time.Second}
	var hunterClient service.HunterClient
	if a.cfg.HunterAPIKey != "" {
		hunterClient = hunter.NewClient(httpClient, a.cfg.HunterAPIKey)
	}
	var apolloClient service.ApolloClient
	if a.cfg.ApolloAPIKey != "" {
		apolloClient = apollo.NewClient(httpClient, a.cfg.ApolloAPIKey)
	}

	return service.NewEnrichService(
		a.companies,
		a.contacts,
		hunterClient,
		apolloClient,
		a.cfg.EnrichPause,
		a.cfg.MinConfidence,
		a.logger,
	), nil
}

func (a *app) gmailClient(ctx context.Context) (*mailer.Gmail, error) {
	if err := a.cfg.RequireGoogle(); err != nil {
		return nil, err
	}
	return mailer.NewGmail(ctx, a.cfg.Google, a.cfg.SenderEmail, a.cfg.SenderName, a.logger)
}

func (a *app) outreachService(ctx context.Context) (*service.OutreachService, error) {
	gmail, err := a.gmailClient(ctx)
	if err != nil {
		return nil, err
	}
	renderer, err := mailer.NewTemplateRenderer(
		a.cfg.SenderName,
		a.cfg.CompanyName,
		a.cfg.CompanyAddress,
		a.cfg.PrivacyPolicyURL,
	)
	if err != nil {
		return nil, err
	}
	return service.NewOutreachService(
		a.contacts,
		a.emails,
		a.quotaGate(),
		gmail,
		renderer,
		a.cfg.SendDelay,
		a.cfg.MinConfidence,
		a.logger,
	), nil
}

// bookingService is nil-safe to skip: callers that can run without a
// calendar pass the nil result straight into the reply service.
func (a *app) bookingService(ctx context.Context) (*service.BookingService, error) {
	if err := a.cfg.RequireGoogle(); err != nil {
		return nil, err
	}
	calendar, err := gcal.NewCalendar(ctx, a.cfg.Google)
	if err != nil {
		return nil, err
	}
	return service.NewBookingService(a.contacts, a.meetings, calendar, a.cfg.Location(), a.cfg.MeetingDuration, a.logger), nil
}

// replySources resolves the configured reply source: Gmail threads when
// OAuth credentials exist, otherwise the IMAP inbox.
func (a *app) replySources(ctx context.Context) (service.ThreadSource, service.InboxSource, error) {
	if a.cfg.RequireGoogle() == nil {
		gmail, err := a.gmailClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		return gmail, nil, nil
	}
	if a.cfg.IMAPEnabled() {
		return nil, mailbox.New(a.cfg.IMAP, a.logger), nil
	}
	return nil, nil, fmt.Errorf("no reply source configured; set Google OAuth or IMAP credentials")
}

func (a *app) monitorService(booker service.MeetingSuggester) *service.MonitorService {
	replies := service.NewReplyService(a.contacts, a.emails, booker, a.logger)
	return service.NewMonitorService(a.emails, a.contacts, replies, a.cfg.ReplyLookback, a.logger)
}
