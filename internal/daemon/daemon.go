// Package daemon runs the pipeline continuously: periodic send batches,
// periodic reply monitoring and the status API, under one lifecycle.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/intersectiondata/leadflow/internal/service"
)

// Options configures the daemon's loops.
type Options struct {
	SendInterval    time.Duration
	MonitorInterval time.Duration
	StatusAddr      string
}

// Daemon ties the periodic workers and the status server together. Either
// reply source may be nil; the monitor loop uses whichever is configured,
// preferring the Gmail thread source.
type Daemon struct {
	outreach *service.OutreachService
	monitor  *service.MonitorService
	threads  service.ThreadSource
	inbox    service.InboxSource
	server   *echo.Echo
	opts     Options
	logger   *slog.Logger
}

// New assembles a daemon.
func New(
	outreach *service.OutreachService,
	monitor *service.MonitorService,
	threads service.ThreadSource,
	inbox service.InboxSource,
	server *echo.Echo,
	opts Options,
	logger *slog.Logger,
) *Daemon {
	if opts.SendInterval <= 0 {
		opts.SendInterval = 15 * time.Minute
	}
	if opts.MonitorInterval <= 0 {
		opts.MonitorInterval = 30 * time.Minute
	}
	return &Daemon{
		outreach: outreach,
		monitor:  monitor,
		threads:  threads,
		inbox:    inbox,
		server:   server,
		opts:     opts,
		logger:   logger,
	}
}

// Run blocks until the context is cancelled. Both loops fire once at
// startup; the send loop stays idempotent through the quota gate, so a
// restart never causes extra email.
func (d *Daemon) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)
	go func() {
		d.logger.Info("status server listening", "addr", d.opts.StatusAddr)
		if err := d.server.Start(d.opts.StatusAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sendTicker := time.NewTicker(d.opts.SendInterval)
	defer sendTicker.Stop()
	monitorTicker := time.NewTicker(d.opts.MonitorInterval)
	defer monitorTicker.Stop()

	d.runSend(ctx)
	d.runMonitor(ctx)

	for {
		select {
		case <-ctx.Done():
			return d.shutdown()
		case err := <-serverErr:
			return err
		case <-sendTicker.C:
			d.runSend(ctx)
		case <-monitorTicker.C:
			d.runMonitor(ctx)
		}
	}
}

func (d *Daemon) runSend(ctx context.Context) {
	result, err := d.outreach.SendBatch(ctx)
	if err != nil {
		d.logger.Error("send batch", "error", err)
		return
	}
	if result.Skipped == "" {
		d.logger.Info("send cycle done", "sent", result.Sent, "failed", result.Failed)
	}
}

func (d *Daemon) runMonitor(ctx context.Context) {
	switch {
	case d.threads != nil:
		processed, err := d.monitor.CheckThreads(ctx, d.threads)
		if err != nil {
			d.logger.Error("monitor threads", "error", err)
			return
		}
		d.logger.Info("monitor cycle done", "replies", processed)
	case d.inbox != nil:
		processed, err := d.monitor.CheckInbox(ctx, d.inbox)
		if err != nil {
			d.logger.Error("monitor inbox", "error", err)
			return
		}
		d.logger.Info("monitor cycle done", "replies", processed)
	default:
		d.logger.Warn("no reply source configured; monitoring disabled")
	}
}

func (d *Daemon) shutdown() error {
	d.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.server.Shutdown(shutdownCtx)
}
