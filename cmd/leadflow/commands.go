package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/intersectiondata/leadflow/internal/daemon"
	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/handler"
	"github.com/intersectiondata/leadflow/internal/router"
	"github.com/intersectiondata/leadflow/internal/scraper"
	"github.com/intersectiondata/leadflow/internal/service"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape job boards for companies hiring Oracle EPM roles",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		s := scraper.New(a.companies, a.jobs, a.cfg.ScrapePause, a.logger)
		defer s.Close()

		result, err := s.Run(ctx, a.cfg.SearchKeywords, a.cfg.SearchLocations)
		if err != nil {
			return err
		}
		fmt.Printf("searches: %d, new companies: %d, new jobs: %d\n",
			result.Searches, result.NewCompanies, result.NewJobs)
		return nil
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Resolve finance contacts for scraped companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		svc, err := a.enrichService()
		if err != nil {
			return err
		}
		result, err := svc.EnrichPending(ctx, a.cfg.EnrichBatchSize)
		if err != nil {
			return err
		}
		fmt.Printf("companies: %d, new contacts: %d (%d ready)\n",
			result.Companies, result.NewContacts, result.ReadyContact)
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one batch of outreach email within today's quota",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		svc, err := a.outreachService(ctx)
		if err != nil {
			return err
		}
		result, err := svc.SendBatch(ctx)
		if err != nil {
			return err
		}
		if result.Skipped != "" {
			fmt.Printf("skipped: %s\n", result.Skipped)
			return nil
		}
		fmt.Printf("sent: %d, failed: %d\n", result.Sent, result.Failed)
		return nil
	},
}

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Check the mailbox once for replies and process them",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		booker, err := a.bookingService(ctx)
		if err != nil {
			a.logger.Warn("calendar unavailable; replies will not book meetings", "error", err)
		}
		monitor := a.monitorService(nilSafeBooker(booker, err))

		threads, inbox, err := a.replySources(ctx)
		if err != nil {
			return err
		}

		var processed int
		if threads != nil {
			processed, err = monitor.CheckThreads(ctx, threads)
		} else {
			processed, err = monitor.CheckInbox(ctx, inbox)
		}
		if err != nil {
			return err
		}
		fmt.Printf("replies processed: %d\n", processed)
		return nil
	},
}

var bookCmd = &cobra.Command{
	Use:   "book <contact-id-or-email>",
	Short: "Book an intro call with a contact on the next free slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		booking, err := a.bookingService(ctx)
		if err != nil {
			return err
		}
		contact, err := lookupContact(ctx, a, args[0])
		if err != nil {
			return err
		}

		meeting, err := booking.BookMeeting(ctx, contact)
		if err != nil {
			return err
		}
		if meeting == nil {
			fmt.Println("no free slot found over the next business days")
			return nil
		}
		fmt.Printf("booked %s for %s\n", meeting.MeetingTime.Format("Mon Jan 2 15:04"), contact.Email)
		return nil
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run send and monitor loops continuously with a status API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		outreach, err := a.outreachService(ctx)
		if err != nil {
			return err
		}
		booker, err := a.bookingService(ctx)
		if err != nil {
			a.logger.Warn("calendar unavailable; replies will not book meetings", "error", err)
		}
		monitor := a.monitorService(nilSafeBooker(booker, err))
		threads, inbox, err := a.replySources(ctx)
		if err != nil {
			return err
		}

		e := echo.New()
		e.Use(echoMiddleware.Recover())
		statusHandler := handler.NewStatusHandler(a.contacts, a.emails, a.quotaGate())
		router.Register(e, a.cfg, a.logger, router.Handlers{Status: statusHandler})

		d := daemon.New(outreach, monitor, threads, inbox, e, daemon.Options{
			SendInterval:    a.cfg.SendInterval,
			MonitorInterval: a.cfg.MonitorInterval,
			StatusAddr:      ":" + a.cfg.StatusPort,
		}, a.logger)
		return d.Run(ctx)
	},
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// lookupContact resolves the book argument as a contact id or an email.
func lookupContact(ctx context.Context, a *app, arg string) (*entity.Contact, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return a.contacts.GetByID(ctx, id)
	}
	return a.contacts.FindByEmail(ctx, arg)
}

// nilSafeBooker avoids handing a typed nil pointer to the reply service,
// which would defeat its booker == nil check.
func nilSafeBooker(b *service.BookingService, err error) service.MeetingSuggester {
	if err != nil || b == nil {
		return nil
	}
	return b
}
