package service

import (
	"context"
	"fmt"
	"time"
)

// SendWindow is the weekday business-hours window in which outreach is
// allowed. Hours are half-open: [StartHour, EndHour).
type SendWindow struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// Contains reports whether the instant falls inside the window. Weekends
// are always rejected; the guard fails closed.
func (w SendWindow) Contains(t time.Time) bool {
	if w.Location != nil {
		t = t.In(w.Location)
	}
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := t.Hour()
	return hour >= w.StartHour && hour < w.EndHour
}

// SentCounter exposes the count of sends on a calendar date.
type SentCounter interface {
	CountSentOn(ctx context.Context, day time.Time) (int, error)
}

// QuotaGate combines the business-hours guard with the daily send cap.
// Both guards must pass for a send to be permitted.
type QuotaGate struct {
	emails   SentCounter
	window   SendWindow
	maxDaily int
	now      func() time.Time
}

// NewQuotaGate builds the send gate.
func NewQuotaGate(emails SentCounter, window SendWindow, maxDaily int) *QuotaGate {
	return &QuotaGate{
		emails:   emails,
		window:   window,
		maxDaily: maxDaily,
		now:      time.Now,
	}
}

// WindowOpen reports whether the current instant is within business hours.
func (g *QuotaGate) WindowOpen() bool {
	return g.window.Contains(g.now())
}

// Remaining returns how many sends the daily quota still allows today,
// independent of the business-hours guard. Never negative.
func (g *QuotaGate) Remaining(ctx context.Context) (int, error) {
	sent, err := g.emails.CountSentOn(ctx, g.now())
	if err != nil {
		return 0, fmt.Errorf("count today's sends: %w", err)
	}
	remaining := g.maxDaily - sent
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Permit returns the number of sends allowed right now: zero outside the
// window or when the quota is exhausted.
func (g *QuotaGate) Permit(ctx context.Context) (int, error) {
	if !g.WindowOpen() {
		return 0, nil
	}
	return g.Remaining(ctx)
}
