// Package gcal wraps the Google Calendar API behind the two operations the
// booking flow needs: a free/busy probe and event creation.
package gcal

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/intersectiondata/leadflow/internal/config"
)

// Calendar talks to one Google calendar.
type Calendar struct {
	service    *calendar.Service
	calendarID string
}

// NewCalendar builds a calendar client from the refresh-token credentials.
func NewCalendar(ctx context.Context, cfg config.GoogleConfig) (*Calendar, error) {
	service, err := calendar.NewService(ctx, option.WithTokenSource(TokenSource(ctx, cfg)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Calendar{service: service, calendarID: cfg.CalendarID}, nil
}

// TokenSource builds an auto-refreshing OAuth token source from the stored
// refresh token. Shared with the Gmail client.
func TokenSource(ctx context.Context, cfg config.GoogleConfig) oauth2.TokenSource {
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
}

// IsFree reports whether the calendar has no busy interval overlapping
// [start, end).
func (c *Calendar) IsFree(ctx context.Context, start, end time.Time) (bool, error) {
	req := &calendar.FreeBusyRequest{
		TimeMin: start.Format(time.RFC3339),
		TimeMax: end.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: c.calendarID}},
	}
	resp, err := c.service.Freebusy.Query(req).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[c.calendarID]
	if !ok {
		return false, fmt.Errorf("freebusy response missing calendar %s", c.calendarID)
	}
	return len(cal.Busy) == 0, nil
}

// CreateEvent books the slot with the attendee invited and a Meet link
// attached. Returns the created event id.
func (c *Calendar) CreateEvent(ctx context.Context, start, end time.Time, attendeeEmail, attendeeName, summary string) (string, error) {
	event := &calendar.Event{
		Summary:     summary,
		Description: "Intro call booked automatically after a positive reply.",
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
		Attendees: []*calendar.EventAttendee{
			{Email: attendeeEmail, DisplayName: attendeeName},
		},
		ConferenceData: &calendar.ConferenceData{
			CreateRequest: &calendar.CreateConferenceRequest{
				RequestId: fmt.Sprintf("leadflow-%d", start.Unix()),
				ConferenceSolutionKey: &calendar.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		},
		Reminders: &calendar.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
			Overrides: []*calendar.EventReminder{
				{Method: "email", Minutes: 60},
				{Method: "popup", Minutes: 10},
			},
		},
	}

	created, err := c.service.Events.
		Insert(c.calendarID, event).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	return created.Id, nil
}
