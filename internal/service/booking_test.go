package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/intersectiondata/leadflow/internal/entity"
)

type mockCalendar struct {
	IsFreeFn      func(ctx context.Context, start, end time.Time) (bool, error)
	CreateEventFn func(ctx context.Context, start, end time.Time, attendeeEmail, attendeeName, summary string) (string, error)
}

func (m *mockCalendar) IsFree(ctx context.Context, start, end time.Time) (bool, error) {
	return m.IsFreeFn(ctx, start, end)
}

func (m *mockCalendar) CreateEvent(ctx context.Context, start, end time.Time, attendeeEmail, attendeeName, summary string) (string, error) {
	return m.CreateEventFn(ctx, start, end, attendeeEmail, attendeeName, summary)
}

func TestCandidateSlotsSkipsWeekends(t *testing.T) {
	// Friday 2026-09-04 08:00.
	now := time.Date(2026, 9, 4, 8, 0, 0, 0, time.UTC)
	slots := CandidateSlots(now, 5)

	// 5 business days at 4 slots each, all in the future of 08:00.
	if len(slots) != 20 {
		t.Fatalf("expected 20 slots, got %d", len(slots))
	}
	for _, slot := range slots {
		switch slot.Weekday() {
		case time.Saturday, time.Sunday:
			t.Errorf("slot %v falls on a weekend", slot)
		}
		if !slot.After(now) {
			t.Errorf("slot %v is not in the future", slot)
		}
	}
	// The second business day after Friday is Monday.
	if slots[4].Weekday() != time.Monday {
		t.Errorf("expected Monday after Friday, got %v", slots[4].Weekday())
	}
}

func TestCandidateSlotsDropPastHours(t *testing.T) {
	// Tuesday 2026-09-01 12:00: the 9 and 11 o'clock slots are gone.
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	slots := CandidateSlots(now, 1)

	if len(slots) != 2 {
		t.Fatalf("expected 2 remaining slots, got %d", len(slots))
	}
	if slots[0].Hour() != 14 || slots[1].Hour() != 16 {
		t.Errorf("expected 14:00 and 16:00, got %v and %v", slots[0], slots[1])
	}
}

func TestBookMeetingTakesFirstFreeSlot(t *testing.T) {
	contact := &entity.Contact{
		ID:        uuid.New(),
		FirstName: "Dana",
		LastName:  "Reyes",
		Email:     "dana@acme.example",
	}

	var (
		booked       *entity.Meeting
		markedID     uuid.UUID
		checkedSlots int
	)
	calendar := &mockCalendar{
		IsFreeFn: func(ctx context.Context, start, end time.Time) (bool, error) {
			checkedSlots++
			// First slot busy, second free.
			return checkedSlots > 1, nil
		},
		CreateEventFn: func(ctx context.Context, start, end time.Time, attendeeEmail, attendeeName, summary string) (string, error) {
			if attendeeEmail != contact.Email {
				t.Errorf("expected attendee %s, got %s", contact.Email, attendeeEmail)
			}
			return "evt-42", nil
		},
	}
	contacts := &mockContactsRepo{
		MarkMeetingScheduledFn: func(ctx context.Context, id uuid.UUID) error {
			markedID = id
			return nil
		},
	}
	meetings := &mockMeetingsRepo{
		InsertFn: func(ctx context.Context, meeting *entity.Meeting) error {
			booked = meeting
			return nil
		},
	}

	svc := NewBookingService(contacts, meetings, calendar, time.UTC, 0, testLogger())
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) }

	meeting, err := svc.BookMeeting(context.Background(), contact)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meeting == nil {
		t.Fatal("expected a booked meeting")
	}
	if booked.CalendarEventID != "evt-42" {
		t.Errorf("expected event id evt-42, got %s", booked.CalendarEventID)
	}
	if booked.MeetingTime.Hour() != 11 {
		t.Errorf("first slot was busy, expected the 11:00 slot, got %v", booked.MeetingTime)
	}
	if booked.DurationMinutes != 30 {
		t.Errorf("expected 30 minute meeting, got %d", booked.DurationMinutes)
	}
	if markedID != contact.ID {
		t.Errorf("expected contact %s marked meeting_scheduled, got %s", contact.ID, markedID)
	}
}

func TestBookMeetingAllSlotsBusy(t *testing.T) {
	calendar := &mockCalendar{
		IsFreeFn: func(ctx context.Context, start, end time.Time) (bool, error) {
			return false, nil
		},
		CreateEventFn: func(ctx context.Context, start, end time.Time, attendeeEmail, attendeeName, summary string) (string, error) {
			t.Fatal("no event should be created when every slot is busy")
			return "", nil
		},
	}
	svc := NewBookingService(&mockContactsRepo{}, &mockMeetingsRepo{}, calendar, time.UTC, 0, testLogger())
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) }

	meeting, err := svc.BookMeeting(context.Background(), &entity.Contact{ID: uuid.New(), Email: "dana@acme.example"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meeting != nil {
		t.Errorf("expected nil meeting, got %+v", meeting)
	}
}

func TestSuggestMeetingSkipsSuppressedContact(t *testing.T) {
	contactID := uuid.New()
	contacts := &mockContactsRepo{
		GetByIDFn: func(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
			return &entity.Contact{ID: contactID, Email: "dana@acme.example", DoNotContact: true}, nil
		},
	}
	calendar := &mockCalendar{
		IsFreeFn: func(ctx context.Context, start, end time.Time) (bool, error) {
			t.Fatal("suppressed contact must not reach the calendar")
			return false, nil
		},
	}

	svc := NewBookingService(contacts, &mockMeetingsRepo{}, calendar, time.UTC, 0, testLogger())
	if err := svc.SuggestMeeting(context.Background(), contactID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCandidateSlotsKeepWallClockAcrossTimeChange(t *testing.T) {
	// Jordan set clocks back one hour on Friday 2021-10-29 at 01:00, so a
	// fixed-duration offset from midnight would land the Friday slots an
	// hour early.
	loc, err := time.LoadLocation("Asia/Amman")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	now := time.Date(2021, 10, 28, 17, 0, 0, 0, loc)

	slots := CandidateSlots(now, 2)
	if len(slots) == 0 {
		t.Fatal("expected slots on the following business day")
	}
	for _, slot := range slots {
		switch slot.Hour() {
		case 9, 11, 14, 16:
		default:
			t.Errorf("slot %v drifted off the offered hours", slot)
		}
	}
}

func TestBookMeetingUsesConfiguredDuration(t *testing.T) {
	contact := &entity.Contact{ID: uuid.New(), FirstName: "Dana", LastName: "Reyes", Email: "dana@acme.example"}

	var booked *entity.Meeting
	calendar := &mockCalendar{
		IsFreeFn: func(ctx context.Context, start, end time.Time) (bool, error) {
			return true, nil
		},
		CreateEventFn: func(ctx context.Context, start, end time.Time, attendeeEmail, attendeeName, summary string) (string, error) {
			if got := end.Sub(start); got != 45*time.Minute {
				t.Errorf("expected a 45 minute event, got %v", got)
			}
			return "evt-45", nil
		},
	}
	meetings := &mockMeetingsRepo{
		InsertFn: func(ctx context.Context, meeting *entity.Meeting) error {
			booked = meeting
			return nil
		},
	}
	contacts := &mockContactsRepo{
		MarkMeetingScheduledFn: func(ctx context.Context, id uuid.UUID) error { return nil },
	}

	svc := NewBookingService(contacts, meetings, calendar, time.UTC, 45*time.Minute, testLogger())
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC) }

	if _, err := svc.BookMeeting(context.Background(), contact); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booked == nil || booked.DurationMinutes != 45 {
		t.Fatalf("expected configured duration persisted, got %+v", booked)
	}
}
