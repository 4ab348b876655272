package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/service"
)

// ContactStats is the slice of the contacts repository the status API reads.
type ContactStats interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// ReplyStats is the slice of the emails repository the status API reads.
type ReplyStats interface {
	CountSentOn(ctx context.Context, day time.Time) (int, error)
	CountRepliesByIntent(ctx context.Context) (map[string]int, error)
	ListRecentReplies(ctx context.Context, limit int) ([]entity.InboundReply, error)
}

// StatusHandler exposes read-only pipeline insight endpoints.
type StatusHandler struct {
	contacts ContactStats
	emails   ReplyStats
	gate     *service.QuotaGate
}

// NewStatusHandler creates a new handler instance.
func NewStatusHandler(contacts ContactStats, emails ReplyStats, gate *service.QuotaGate) *StatusHandler {
	return &StatusHandler{contacts: contacts, emails: emails, gate: gate}
}

// statsResponse aggregates the pipeline counters for GET /stats.
type statsResponse struct {
	Contacts       map[string]int `json:"contacts"`
	RepliesByLabel map[string]int `json:"replies_by_intent"`
	SentToday      int            `json:"sent_today"`
	SendRemaining  int            `json:"send_remaining_today"`
	WindowOpen     bool           `json:"send_window_open"`
}

// Stats handles GET /stats requests.
func (h *StatusHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	contacts, err := h.contacts.CountByStatus(ctx)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load contact stats")
	}
	replies, err := h.emails.CountRepliesByIntent(ctx)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load reply stats")
	}
	sent, err := h.emails.CountSentOn(ctx, time.Now())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load send stats")
	}
	remaining, err := h.gate.Remaining(ctx)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load send quota")
	}

	return Success(c, http.StatusOK, "", statsResponse{
		Contacts:       contacts,
		RepliesByLabel: replies,
		SentToday:      sent,
		SendRemaining:  remaining,
		WindowOpen:     h.gate.WindowOpen(),
	})
}

// Replies handles GET /replies requests.
func (h *StatusHandler) Replies(c echo.Context) error {
	limit := 20
	if raw := strings.TrimSpace(c.QueryParam("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			return Error(c, http.StatusBadRequest, "invalid limit (use 1-200)")
		}
		limit = parsed
	}

	replies, err := h.emails.ListRecentReplies(c.Request().Context(), limit)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list replies")
	}
	return Success(c, http.StatusOK, "", replies)
}
