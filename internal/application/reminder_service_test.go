package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type reminderHarness struct {
	svc          *ReminderService
	sessions     *sessionRepoStub
	assignments  *assignmentRepoStub
	participants *participantRepoStub
	sender       *senderStub
}

func newReminderHarness(now time.Time, withSender bool, sessions ...Session) reminderHarness {
	sessionRepo := newSessionRepoStub(sessions...)
	h := reminderHarness{
		sessions:    sessionRepo,
		assignments: &assignmentRepoStub{sessions: sessionRepo},
		participants: &participantRepoStub{participants: []Participant{
			{ID: "dana", EventID: "event-1", FirstName: "Dana", LastName: "Levi", Phone: "050-123-4567"},
			{ID: "noa", EventID: "event-1", FirstName: "Noa", Phone: "052-765-4321"},
		}},
	}
	var sender ReminderSender
	if withSender {
		h.sender = &senderStub{assignments: h.assignments, at: now}
		sender = h.sender
	}
	h.svc = NewReminderService(h.sessions, h.assignments, h.participants, sender, fixedClock(now))
	return h
}

func TestReminderService_Upcoming(t *testing.T) {
	now := at(9, 0)
	soon := storedSession("keynote", "Keynote", "room-a", at(9, 20), at(10, 0))
	later := storedSession("lunch", "Lunch", "", at(12, 0), at(13, 0))
	due := storedSession("welcome", "Welcome", "", at(9, 13), at(9, 30))

	h := newReminderHarness(now, false, soon, later, due)
	h.assignments.assignments = []Assignment{
		{ID: "a1", SessionID: "keynote", ParticipantID: "dana"},
		{ID: "a2", SessionID: "keynote", ParticipantID: "noa", ReminderSent: true},
		{ID: "a3", SessionID: "lunch", ParticipantID: "dana"},
		{ID: "a4", SessionID: "welcome", ParticipantID: "noa"},
	}

	upcoming, err := h.svc.Upcoming(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected two upcoming reminders, got %d", len(upcoming))
	}

	first := upcoming[0]
	if first.Session.ID != "welcome" || first.MinutesUntilDue != -2 {
		t.Fatalf("unexpected first reminder: %s at %d", first.Session.ID, first.MinutesUntilDue)
	}
	if !first.ReminderAt.Equal(at(8, 58)) {
		t.Fatalf("unexpected reminder time: %v", first.ReminderAt)
	}

	second := upcoming[1]
	if second.Session.ID != "keynote" || second.MinutesUntilDue != 5 {
		t.Fatalf("unexpected second reminder: %s at %d", second.Session.ID, second.MinutesUntilDue)
	}
	if second.Session.Title != "Keynote" || second.Session.RoomID == nil {
		t.Fatalf("expected the stored session to be carried, got %+v", second.Session)
	}
	if len(second.Recipients) != 2 {
		t.Fatalf("expected both recipients, got %d", len(second.Recipients))
	}
	if second.Recipients[0].AssignmentID != "a1" || second.Recipients[0].FirstName != "Dana" || second.Recipients[0].ReminderSent {
		t.Fatalf("unexpected recipient: %+v", second.Recipients[0])
	}
	if !second.Recipients[1].ReminderSent {
		t.Fatalf("expected second recipient to be marked sent")
	}
}

func TestReminderService_SendForSession(t *testing.T) {
	now := at(9, 0)

	t.Run("sends pending recipients", func(t *testing.T) {
		h := newReminderHarness(now, true, storedSession("keynote", "Keynote", "", at(9, 20), at(10, 0)))
		h.assignments.assignments = []Assignment{
			{ID: "a1", SessionID: "keynote", ParticipantID: "dana"},
			{ID: "a2", SessionID: "keynote", ParticipantID: "noa", ReminderSent: true},
		}

		summary, err := h.svc.SendForSession(context.Background(), "event-1", "keynote")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Attempted != 1 || summary.Sent != 1 {
			t.Fatalf("unexpected summary: %+v", summary)
		}
		if _, ok := h.assignments.marked["a1"]; !ok {
			t.Fatalf("expected a1 to be marked")
		}
		if _, ok := h.assignments.marked["a2"]; ok {
			t.Fatalf("expected already sent assignment to be skipped")
		}
	})

	t.Run("sessions outside the window are not found", func(t *testing.T) {
		h := newReminderHarness(now, true, storedSession("lunch", "Lunch", "", at(12, 0), at(13, 0)))
		h.assignments.assignments = []Assignment{{ID: "a1", SessionID: "lunch", ParticipantID: "dana"}}

		if _, err := h.svc.SendForSession(context.Background(), "event-1", "lunch"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if len(h.sender.sent) != 0 {
			t.Fatalf("expected nothing sent")
		}
	})

	t.Run("requires a sender", func(t *testing.T) {
		h := newReminderHarness(now, false, storedSession("keynote", "Keynote", "", at(9, 20), at(10, 0)))

		if _, err := h.svc.SendForSession(context.Background(), "event-1", "keynote"); !errors.Is(err, ErrSenderNotConfigured) {
			t.Fatalf("expected ErrSenderNotConfigured, got %v", err)
		}
	})
}

func TestReminderService_SendDue(t *testing.T) {
	now := at(9, 0)
	due := storedSession("welcome", "Welcome", "", at(9, 13), at(9, 30))
	notYet := storedSession("keynote", "Keynote", "", at(9, 20), at(10, 0))
	done := storedSession("coffee", "Coffee", "", at(9, 10), at(9, 20))

	h := newReminderHarness(now, true, due, notYet, done)
	h.assignments.assignments = []Assignment{
		{ID: "a1", SessionID: "welcome", ParticipantID: "dana"},
		{ID: "a2", SessionID: "welcome", ParticipantID: "noa"},
		{ID: "a3", SessionID: "keynote", ParticipantID: "dana"},
		{ID: "a4", SessionID: "coffee", ParticipantID: "noa", ReminderSent: true},
	}
	ctx := context.Background()

	summaries, err := h.svc.SendDue(ctx, "event-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 || summaries[0].SessionID != "welcome" || summaries[0].Sent != 2 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
	if _, ok := h.assignments.marked["a3"]; ok {
		t.Fatalf("expected reminder that is not yet due to be left alone")
	}

	again, err := h.svc.SendDue(ctx, "event-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no resend once flags are set, got %+v", again)
	}
}
