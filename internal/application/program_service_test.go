package application

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

var programNow = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 15, hour, minute, 0, 0, time.UTC)
}

func storedSession(id, title, room string, start, end time.Time) Session {
	session := Session{
		ID:                  id,
		EventID:             "event-1",
		DayID:               strPtr("day-1"),
		Title:               title,
		Start:               start,
		End:                 end,
		ReminderLeadMinutes: 15,
		ReminderEnabled:     true,
	}
	if room != "" {
		session.RoomID = strPtr(room)
	}
	return session
}

type programHarness struct {
	svc          *ProgramService
	sessions     *sessionRepoStub
	assignments  *assignmentRepoStub
	participants *participantRepoStub
	changes      *changeRepoStub
}

func newProgramHarness(sessions ...Session) programHarness {
	sessionRepo := newSessionRepoStub(sessions...)
	h := programHarness{
		sessions:     sessionRepo,
		assignments:  &assignmentRepoStub{sessions: sessionRepo},
		participants: &participantRepoStub{},
		changes:      &changeRepoStub{},
	}
	ids := &sequentialIDs{prefix: "id-"}
	h.svc = NewProgramService(ProgramRepositories{
		Sessions:     h.sessions,
		Assignments:  h.assignments,
		Participants: h.participants,
		Changes:      h.changes,
	}, ids.generate, fixedClock(programNow))
	return h
}

func TestProgramService_CreateSession(t *testing.T) {
	t.Run("rejects invalid input", func(t *testing.T) {
		h := newProgramHarness()

		_, _, err := h.svc.CreateSession(context.Background(), "event-1", SessionInput{
			Title:               "  ",
			Start:               at(11, 0),
			End:                 at(10, 0),
			ReminderLeadMinutes: intPtr(-1),
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		want := []string{"end", "reminder_lead_minutes", "title"}
		if got := sortedKeys(vErr.FieldErrors); !reflect.DeepEqual(got, want) {
			t.Fatalf("unexpected fields: got %v want %v", got, want)
		}
		if len(h.sessions.sessions) != 0 {
			t.Fatalf("expected nothing persisted")
		}
	})

	t.Run("requires start and end", func(t *testing.T) {
		h := newProgramHarness()

		_, _, err := h.svc.CreateSession(context.Background(), "event-1", SessionInput{Title: "Keynote"})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if _, ok := vErr.FieldErrors["start"]; !ok {
			t.Fatalf("expected start error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["end"]; !ok {
			t.Fatalf("expected end error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("applies defaults and normalises references", func(t *testing.T) {
		h := newProgramHarness()

		session, warnings, err := h.svc.CreateSession(context.Background(), "event-1", SessionInput{
			Title:  "  Keynote ",
			RoomID: strPtr("  "),
			DayID:  strPtr(" day-1 "),
			Start:  at(10, 0),
			End:    at(11, 0),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(warnings) != 0 {
			t.Fatalf("expected no warnings, got %v", warnings)
		}
		if session.ID != "id-1" || session.EventID != "event-1" {
			t.Fatalf("unexpected identity: %+v", session)
		}
		if session.Title != "Keynote" {
			t.Fatalf("expected trimmed title, got %q", session.Title)
		}
		if session.RoomID != nil {
			t.Fatalf("expected blank room to be dropped, got %v", *session.RoomID)
		}
		if session.DayID == nil || *session.DayID != "day-1" {
			t.Fatalf("expected trimmed day id, got %v", session.DayID)
		}
		if session.ReminderLeadMinutes != 15 || !session.ReminderEnabled {
			t.Fatalf("expected reminder defaults, got %d/%v", session.ReminderLeadMinutes, session.ReminderEnabled)
		}
		if !session.CreatedAt.Equal(programNow) || !session.UpdatedAt.Equal(programNow) {
			t.Fatalf("expected timestamps from clock, got %v/%v", session.CreatedAt, session.UpdatedAt)
		}
	})

	t.Run("persists despite room conflict", func(t *testing.T) {
		h := newProgramHarness(storedSession("keynote", "Keynote", "room-a", at(10, 0), at(11, 0)))

		session, warnings, err := h.svc.CreateSession(context.Background(), "event-1", SessionInput{
			Title:  "Breakout",
			DayID:  strPtr("day-1"),
			RoomID: strPtr("room-a"),
			Start:  at(10, 30),
			End:    at(11, 30),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(warnings) != 1 {
			t.Fatalf("expected one warning, got %d", len(warnings))
		}
		if warnings[0].SessionID != "keynote" || warnings[0].OtherSessionID != session.ID {
			t.Fatalf("unexpected warning: %+v", warnings[0])
		}
		if warnings[0].Type != "room" || warnings[0].RoomID == nil || *warnings[0].RoomID != "room-a" {
			t.Fatalf("unexpected warning room: %+v", warnings[0])
		}
		if _, ok := h.sessions.sessions[session.ID]; !ok {
			t.Fatalf("expected conflicting session to be stored")
		}
	})

	t.Run("maps repository failures", func(t *testing.T) {
		h := newProgramHarness()
		h.sessions.createErr = errors.New("disk full")

		_, warnings, err := h.svc.CreateSession(context.Background(), "event-1", SessionInput{
			Title: "Keynote",
			Start: at(10, 0),
			End:   at(11, 0),
		})
		if err == nil || !strings.Contains(err.Error(), "disk full") {
			t.Fatalf("expected repository error, got %v", err)
		}
		if warnings != nil {
			t.Fatalf("expected no warnings on failure")
		}
	})
}

func TestProgramService_UpdateSession(t *testing.T) {
	t.Run("does not conflict with itself and records history", func(t *testing.T) {
		h := newProgramHarness(storedSession("keynote", "Keynote", "room-a", at(10, 0), at(11, 0)))

		updated, warnings, err := h.svc.UpdateSession(context.Background(), "event-1", "keynote", SessionInput{
			Title:        "Keynote",
			DayID:        strPtr("day-1"),
			RoomID:       strPtr("room-a"),
			Start:        at(10, 15),
			End:          at(11, 15),
			ChangeReason: " speaker delayed ",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(warnings) != 0 {
			t.Fatalf("expected no self conflict, got %v", warnings)
		}
		if !updated.Start.Equal(at(10, 15)) || !updated.UpdatedAt.Equal(programNow) {
			t.Fatalf("unexpected update result: %+v", updated)
		}

		if len(h.changes.changes) != 1 {
			t.Fatalf("expected one schedule change, got %d", len(h.changes.changes))
		}
		change := h.changes.changes[0]
		if change.ChangeType != ChangeTypeUpdate || change.Reason != "speaker delayed" {
			t.Fatalf("unexpected change: %+v", change)
		}
		if !strings.Contains(change.OldValue, `"start":"2024-03-15T10:00:00Z"`) {
			t.Fatalf("expected old start in snapshot, got %s", change.OldValue)
		}
		if !strings.Contains(change.NewValue, `"start":"2024-03-15T10:15:00Z"`) {
			t.Fatalf("expected new start in snapshot, got %s", change.NewValue)
		}
	})

	t.Run("records room moves as updates", func(t *testing.T) {
		h := newProgramHarness(storedSession("keynote", "Keynote", "room-a", at(10, 0), at(11, 0)))

		_, _, err := h.svc.UpdateSession(context.Background(), "event-1", "keynote", SessionInput{
			Title:  "Keynote",
			DayID:  strPtr("day-1"),
			RoomID: strPtr("room-b"),
			Start:  at(10, 0),
			End:    at(11, 0),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		change := h.changes.changes[0]
		if change.ChangeType != "update" {
			t.Fatalf("expected update change, got %s", change.ChangeType)
		}
		if !strings.Contains(change.OldValue, `"room_id":"room-a"`) || !strings.Contains(change.NewValue, `"room_id":"room-b"`) {
			t.Fatalf("expected room move in snapshots, got %s -> %s", change.OldValue, change.NewValue)
		}
	})

	t.Run("history failure does not fail the update", func(t *testing.T) {
		h := newProgramHarness(storedSession("keynote", "Keynote", "", at(10, 0), at(11, 0)))
		h.changes.createErr = errors.New("history unavailable")

		_, _, err := h.svc.UpdateSession(context.Background(), "event-1", "keynote", SessionInput{
			Title: "Opening keynote",
			Start: at(10, 0),
			End:   at(11, 0),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := h.sessions.sessions["keynote"].Title; got != "Opening keynote" {
			t.Fatalf("expected update to be stored, got %q", got)
		}
	})

	t.Run("sessions of other events are not found", func(t *testing.T) {
		h := newProgramHarness(storedSession("keynote", "Keynote", "", at(10, 0), at(11, 0)))

		_, _, err := h.svc.UpdateSession(context.Background(), "event-2", "keynote", SessionInput{
			Title: "Keynote",
			Start: at(10, 0),
			End:   at(11, 0),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestProgramService_ListSessions(t *testing.T) {
	t.Run("orders by start and reports conflicts", func(t *testing.T) {
		h := newProgramHarness(
			storedSession("lunch", "Lunch", "", at(12, 0), at(13, 0)),
			storedSession("breakout", "Breakout", "room-a", at(10, 30), at(11, 30)),
			storedSession("keynote", "Keynote", "room-a", at(10, 0), at(11, 0)),
		)

		sessions, warnings, err := h.svc.ListSessions(context.Background(), "event-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var ids []string
		for _, session := range sessions {
			ids = append(ids, session.ID)
		}
		if want := []string{"keynote", "breakout", "lunch"}; !reflect.DeepEqual(ids, want) {
			t.Fatalf("unexpected order: got %v want %v", ids, want)
		}
		if len(warnings) != 1 || warnings[0].SessionID != "keynote" || warnings[0].OtherSessionID != "breakout" {
			t.Fatalf("unexpected warnings: %+v", warnings)
		}
	})

	t.Run("recomputes when stored sessions change underneath", func(t *testing.T) {
		h := newProgramHarness(
			storedSession("keynote", "Keynote", "room-a", at(10, 0), at(11, 0)),
			storedSession("breakout", "Breakout", "room-a", at(10, 30), at(11, 30)),
		)
		ctx := context.Background()

		if _, warnings, err := h.svc.ListSessions(ctx, "event-1"); err != nil || len(warnings) != 1 {
			t.Fatalf("expected one warning, got %v (err %v)", warnings, err)
		}

		// Deleting the room clears the reference in storage without going
		// through ProgramService.
		for _, id := range []string{"keynote", "breakout"} {
			session := h.sessions.sessions[id]
			session.RoomID = nil
			h.sessions.sessions[id] = session
		}

		sessions, warnings, err := h.svc.ListSessions(ctx, "event-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(warnings) != 0 {
			t.Fatalf("expected no warnings once the room is gone, got %+v", warnings)
		}
		for _, session := range sessions {
			if session.RoomID != nil {
				t.Fatalf("expected room to be cleared, got %+v", session)
			}
		}
	})

	t.Run("ignores an entry stored for an older snapshot", func(t *testing.T) {
		h := newProgramHarness(storedSession("keynote", "Keynote", "room-a", at(10, 0), at(11, 0)))
		ctx := context.Background()

		before, _ := h.sessions.ListSessions(ctx, "event-1")
		stale := []ConflictWarning{{Type: "room", SessionID: "keynote", OtherSessionID: "ghost"}}

		if _, _, err := h.svc.CreateSession(ctx, "event-1", SessionInput{
			Title: "Lunch",
			Start: at(12, 0),
			End:   at(13, 0),
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// A listing that read before the write stores its result after it.
		h.svc.cache.Store("event-1", sessionFingerprint(sortSessions(before)), stale)

		if _, warnings, _ := h.svc.ListSessions(ctx, "event-1"); len(warnings) != 0 {
			t.Fatalf("expected fresh warnings, got %+v", warnings)
		}
	})
}

func TestProgramService_CheckCandidate(t *testing.T) {
	h := newProgramHarness(
		storedSession("keynote", "Keynote", "room-a", at(10, 0), at(11, 0)),
		storedSession("breakout", "Breakout", "room-b", at(10, 0), at(11, 0)),
	)
	ctx := context.Background()

	input := SessionInput{
		Title:  "Keynote",
		DayID:  strPtr("day-1"),
		RoomID: strPtr("room-a"),
		Start:  at(10, 30),
		End:    at(11, 30),
	}

	warnings, err := h.svc.CheckCandidate(ctx, "event-1", input, "keynote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected edited session to be excluded, got %v", warnings)
	}

	input.RoomID = strPtr("room-b")
	warnings, err = h.svc.CheckCandidate(ctx, "event-1", input, "keynote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 || warnings[0].SessionID != "breakout" {
		t.Fatalf("expected conflict with breakout, got %+v", warnings)
	}

	if len(h.sessions.sessions) != 2 {
		t.Fatalf("expected pre-flight not to persist")
	}

	if _, err := h.svc.CheckCandidate(ctx, "event-1", SessionInput{}, ""); err == nil {
		t.Fatalf("expected validation error for empty candidate")
	}
}

func TestProgramService_DeleteSession(t *testing.T) {
	h := newProgramHarness(storedSession("keynote", "Keynote", "", at(10, 0), at(11, 0)))
	ctx := context.Background()

	if err := h.svc.DeleteSession(ctx, "event-2", "keynote"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign event, got %v", err)
	}
	if err := h.svc.DeleteSession(ctx, "event-1", "keynote"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(h.sessions.deleted, []string{"keynote"}) {
		t.Fatalf("unexpected deletions: %v", h.sessions.deleted)
	}
	if _, err := h.svc.GetSession(ctx, "event-1", "keynote"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestProgramService_Assignments(t *testing.T) {
	h := newProgramHarness(storedSession("keynote", "Keynote", "", at(10, 0), at(11, 0)))
	h.participants.participants = []Participant{
		{ID: "dana", EventID: "event-1", FirstName: "Dana"},
		{ID: "omer", EventID: "event-2", FirstName: "Omer"},
	}
	ctx := context.Background()

	t.Run("validates identifiers", func(t *testing.T) {
		_, err := h.svc.AssignParticipant(ctx, "event-1", "", " ")
		var vErr *ValidationError
		if !errors.As(err, &vErr) || len(vErr.FieldErrors) != 2 {
			t.Fatalf("expected two field errors, got %v", err)
		}
	})

	t.Run("rejects participants of other events", func(t *testing.T) {
		if _, err := h.svc.AssignParticipant(ctx, "event-1", "keynote", "omer"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	var assignment Assignment
	t.Run("assigns once", func(t *testing.T) {
		var err error
		assignment, err = h.svc.AssignParticipant(ctx, "event-1", "keynote", "dana")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assignment.ReminderSent || !assignment.CreatedAt.Equal(programNow) {
			t.Fatalf("unexpected assignment: %+v", assignment)
		}
		if _, err := h.svc.AssignParticipant(ctx, "event-1", "keynote", "dana"); !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("lists and removes", func(t *testing.T) {
		list, err := h.svc.ListAssignments(ctx, "event-1")
		if err != nil || len(list) != 1 {
			t.Fatalf("expected one assignment, got %v (err %v)", list, err)
		}
		if err := h.svc.UnassignParticipant(ctx, "event-2", assignment.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for foreign event, got %v", err)
		}
		if err := h.svc.UnassignParticipant(ctx, "event-1", assignment.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if list, _ := h.svc.ListAssignments(ctx, "event-1"); len(list) != 0 {
			t.Fatalf("expected assignment to be removed, got %v", list)
		}
	})
}

func TestProgramService_ProgramStats(t *testing.T) {
	past := storedSession("breakfast", "Breakfast", "", at(7, 0), at(7, 45))
	keynote := storedSession("keynote", "Keynote", "room-a", at(10, 0), at(11, 0))
	keynote.TrackID = strPtr("main")
	breakout := storedSession("breakout", "Breakout", "room-a", at(10, 30), at(11, 30))
	breakout.TrackID = strPtr("main")
	quiet := storedSession("quiet", "Quiet room", "", at(12, 0), at(13, 0))
	quiet.TrackID = strPtr("wellness")
	quiet.ReminderEnabled = false

	h := newProgramHarness(past, keynote, breakout, quiet)
	h.participants.participants = []Participant{
		{ID: "dana", EventID: "event-1"},
		{ID: "noa", EventID: "event-1"},
	}
	h.assignments.assignments = []Assignment{
		{ID: "a1", SessionID: "keynote", ParticipantID: "dana"},
		{ID: "a2", SessionID: "keynote", ParticipantID: "noa", ReminderSent: true},
		{ID: "a3", SessionID: "breakfast", ParticipantID: "dana"},
		{ID: "a4", SessionID: "quiet", ParticipantID: "noa"},
		{ID: "a5", SessionID: "breakout", ParticipantID: "noa"},
	}

	stats, err := h.svc.ProgramStats(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ProgramStats{
		Sessions:         4,
		Participants:     2,
		Assignments:      5,
		Tracks:           2,
		PendingReminders: 2,
		Conflicts:        1,
	}
	if stats != want {
		t.Fatalf("unexpected stats: got %+v want %+v", stats, want)
	}
}

func TestProgramService_SessionHistory(t *testing.T) {
	h := newProgramHarness(storedSession("keynote", "Keynote", "", at(10, 0), at(11, 0)))
	ctx := context.Background()

	if _, _, err := h.svc.UpdateSession(ctx, "event-1", "keynote", SessionInput{
		Title: "Keynote",
		Start: at(9, 0),
		End:   at(10, 0),
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history, err := h.svc.SessionHistory(ctx, "event-1", "keynote")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 || history[0].SessionID != "keynote" {
		t.Fatalf("unexpected history: %+v", history)
	}
	if _, err := h.svc.SessionHistory(ctx, "event-1", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProgramService_NilReceiver(t *testing.T) {
	var svc *ProgramService
	if _, _, err := svc.ListSessions(context.Background(), "event-1"); err == nil {
		t.Fatalf("expected error from nil service")
	}
}
