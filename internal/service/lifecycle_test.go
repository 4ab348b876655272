package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/intersectiondata/leadflow/internal/dto"
	"github.com/intersectiondata/leadflow/internal/entity"
	"github.com/intersectiondata/leadflow/internal/repository"
	"github.com/intersectiondata/leadflow/internal/service/intent"
)

type mockBooker struct {
	SuggestMeetingFn func(ctx context.Context, contactID uuid.UUID) error
}

func (m *mockBooker) SuggestMeeting(ctx context.Context, contactID uuid.UUID) error {
	return m.SuggestMeetingFn(ctx, contactID)
}

func inboundMessage(body string) dto.InboundMessage {
	return dto.InboundMessage{
		MessageID:  "msg-1",
		ThreadID:   "thread-1",
		From:       "dana@acme.example",
		Subject:    "Re: quick question",
		BodyText:   body,
		ReceivedAt: time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestProcessReplyInterestedTriggersBooking(t *testing.T) {
	contactID := uuid.New()
	var (
		savedReply *entity.InboundReply
		repliedID  uuid.UUID
		suggested  bool
	)

	emails := &mockEmailsRepo{
		InsertReplyFn: func(ctx context.Context, reply *entity.InboundReply) error {
			savedReply = reply
			return nil
		},
	}
	contacts := &mockContactsRepo{
		MarkRepliedFn: func(ctx context.Context, id uuid.UUID) error {
			repliedID = id
			return nil
		},
	}
	booker := &mockBooker{
		SuggestMeetingFn: func(ctx context.Context, id uuid.UUID) error {
			suggested = true
			return nil
		},
	}

	svc := NewReplyService(contacts, emails, booker, testLogger())
	label, processed, err := svc.ProcessReply(context.Background(), contactID, inboundMessage("Sounds interesting, tell me more"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != intent.Interested {
		t.Errorf("expected interested, got %s", label)
	}
	if !processed {
		t.Error("expected reply to be newly processed")
	}
	if savedReply == nil || savedReply.Intent != string(intent.Interested) {
		t.Errorf("expected persisted reply with interested intent, got %+v", savedReply)
	}
	if repliedID != contactID {
		t.Errorf("expected contact %s marked replied, got %s", contactID, repliedID)
	}
	if !suggested {
		t.Error("interested reply should trigger a meeting suggestion")
	}
}

func TestProcessReplyUnsubscribeSuppresses(t *testing.T) {
	contactID := uuid.New()
	var (
		suppressedID uuid.UUID
		replied      bool
	)

	emails := &mockEmailsRepo{
		InsertReplyFn: func(ctx context.Context, reply *entity.InboundReply) error { return nil },
	}
	contacts := &mockContactsRepo{
		SuppressFn: func(ctx context.Context, id uuid.UUID) error {
			suppressedID = id
			return nil
		},
		MarkRepliedFn: func(ctx context.Context, id uuid.UUID) error {
			replied = true
			return nil
		},
	}
	booker := &mockBooker{
		SuggestMeetingFn: func(ctx context.Context, id uuid.UUID) error {
			t.Fatal("unsubscribe must never trigger a booking")
			return nil
		},
	}

	svc := NewReplyService(contacts, emails, booker, testLogger())
	// Both unsubscribe and interested keywords present; unsubscribe wins.
	label, processed, err := svc.ProcessReply(context.Background(), contactID, inboundMessage("Interested, but please unsubscribe me"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != intent.Unsubscribe {
		t.Errorf("expected unsubscribe, got %s", label)
	}
	if !processed {
		t.Error("expected reply to be newly processed")
	}
	if suppressedID != contactID {
		t.Errorf("expected contact %s suppressed, got %s", contactID, suppressedID)
	}
	if replied {
		t.Error("suppression path must not also mark the contact replied")
	}
}

func TestProcessReplyDuplicateIsNoOp(t *testing.T) {
	emails := &mockEmailsRepo{
		InsertReplyFn: func(ctx context.Context, reply *entity.InboundReply) error {
			return repository.ErrDuplicateReply
		},
	}
	contacts := &mockContactsRepo{
		MarkRepliedFn: func(ctx context.Context, id uuid.UUID) error {
			t.Fatal("duplicate reply must not change contact status")
			return nil
		},
	}

	svc := NewReplyService(contacts, emails, nil, testLogger())
	label, processed, err := svc.ProcessReply(context.Background(), uuid.New(), inboundMessage("Sounds good, tell me more"))
	if err != nil {
		t.Fatalf("duplicate replies are a no-op, got error: %v", err)
	}
	if processed {
		t.Error("duplicate reply should not report as newly processed")
	}
	if label != intent.Interested {
		t.Errorf("classification still runs on duplicates, got %s", label)
	}
}

func TestProcessReplyBookingFailureIsNonFatal(t *testing.T) {
	emails := &mockEmailsRepo{
		InsertReplyFn: func(ctx context.Context, reply *entity.InboundReply) error { return nil },
	}
	contacts := &mockContactsRepo{
		MarkRepliedFn: func(ctx context.Context, id uuid.UUID) error { return nil },
	}
	booker := &mockBooker{
		SuggestMeetingFn: func(ctx context.Context, id uuid.UUID) error {
			return context.DeadlineExceeded
		},
	}

	svc := NewReplyService(contacts, emails, booker, testLogger())
	_, processed, err := svc.ProcessReply(context.Background(), uuid.New(), inboundMessage("What does the pricing look like?"))
	if err != nil {
		t.Fatalf("booking failures must not fail the reply: %v", err)
	}
	if !processed {
		t.Error("expected reply to be processed despite the booking failure")
	}
}
