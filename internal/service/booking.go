package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/repository"
)

// Meeting slots offered per business day, in local hours.
var slotHours = []int{9, 11, 14, 16}

const (
	defaultMeetingDuration = 30 * time.Minute
	bookingHorizon         = 5
)

// CalendarBooker talks to the calendar backend.
type CalendarBooker interface {
	IsFree(ctx context.Context, start, end time.Time) (bool, error)
	CreateEvent(ctx context.Context, start, end time.Time, attendeeEmail, attendeeName, summary string) (string, error)
}

// BookingService books intro calls for interested contacts: it scans the
// next business days for a free slot and creates the calendar event.
type BookingService struct {
	contacts repository.ContactsRepository
	meetings repository.MeetingsRepository
	calendar CalendarBooker
	location *time.Location
	duration time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewBookingService wires the meeting booker.
func NewBookingService(
	contacts repository.ContactsRepository,
	meetings repository.MeetingsRepository,
	calendar CalendarBooker,
	location *time.Location,
	duration time.Duration,
	logger *slog.Logger,
) *BookingService {
	if location == nil {
		location = time.Local
	}
	if duration <= 0 {
		duration = defaultMeetingDuration
	}
	return &BookingService{
		contacts: contacts,
		meetings: meetings,
		calendar: calendar,
		location: location,
		duration: duration,
		logger:   logger,
		now:      time.Now,
	}
}

// CandidateSlots lists meeting start times over the next business days.
// Slots are strictly in the future, weekends are skipped, and ordering is
// chronological so the earliest free slot wins.
func CandidateSlots(now time.Time, days int) []time.Time {
	var slots []time.Time
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for remaining := days; remaining > 0; day = day.AddDate(0, 0, 1) {
		switch day.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		}
		for _, hour := range slotHours {
			// Wall-clock construction keeps the hour stable across DST
			// transitions inside the horizon.
			slot := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, day.Location())
			if slot.After(now) {
				slots = append(slots, slot)
			}
		}
		remaining--
	}
	return slots
}

// BookMeeting finds the earliest free slot and creates the calendar event
// for the contact. Returns nil when every slot over the horizon is busy.
func (s *BookingService) BookMeeting(ctx context.Context, contact *entity.Contact) (*entity.Meeting, error) {
	slots := CandidateSlots(s.now().In(s.location), bookingHorizon)
	for _, start := range slots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start.Add(s.duration)

		free, err := s.calendar.IsFree(ctx, start, end)
		if err != nil {
			return nil, fmt.Errorf("check calendar availability: %w", err)
		}
		if !free {
			continue
		}

		summary := fmt.Sprintf("Intro call with %s %s", contact.FirstName, contact.LastName)
		eventID, err := s.calendar.CreateEvent(ctx, start, end, contact.Email, contact.FirstName+" "+contact.LastName, summary)
		if err != nil {
			return nil, fmt.Errorf("create calendar event: %w", err)
		}

		meeting := &entity.Meeting{
			ContactID:       contact.ID,
			CalendarEventID: eventID,
			MeetingTime:     start,
			DurationMinutes: int(s.duration.Minutes()),
			Status:          entity.MeetingStatusScheduled,
		}
		if err := s.meetings.Insert(ctx, meeting); err != nil {
			return nil, err
		}
		if err := s.contacts.MarkMeetingScheduled(ctx, contact.ID); err != nil {
			return nil, err
		}
		s.logger.Info("meeting booked", "email", contact.Email, "start", start, "event_id", eventID)
		return meeting, nil
	}

	s.logger.Info("no free slot over booking horizon", "email", contact.Email)
	return nil, nil
}

// SuggestMeeting books a slot for the contact identified by id. It backs the
// reply lifecycle's interested and question intents.
func (s *BookingService) SuggestMeeting(ctx context.Context, contactID uuid.UUID) error {
	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return fmt.Errorf("load contact for booking: %w", err)
	}
	if contact.DoNotContact {
		s.logger.Info("skipping booking for suppressed contact", "email", contact.Email)
		return nil
	}
	if _, err := s.BookMeeting(ctx, contact); err != nil {
		return err
	}
	return nil
}
