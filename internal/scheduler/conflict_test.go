package scheduler

import (
	"strings"
	"testing"
	"time"
)

func ref(value string) *string {
	return &value
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 3, 15, hour, minute, 0, 0, time.UTC)
}

func session(id, title, room, day string, start, end time.Time) Session {
	s := Session{ID: id, Title: title, Start: start, End: end}
	if room != "" {
		s.RoomID = ref(room)
	}
	if day != "" {
		s.DayID = ref(day)
	}
	return s
}

func TestDetectConflicts(t *testing.T) {
	t.Parallel()

	t.Run("single session never conflicts with itself", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts([]Session{session("s1", "Keynote", "room-a", "day-1", at(9, 0), at(10, 0))})
		if len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("room overlap produces conflict naming both sessions", func(t *testing.T) {
		t.Parallel()
		keynote := session("s1", "Keynote", "room-a", "day-1", at(9, 0), at(10, 0))
		breakout := session("s2", "Breakout", "room-a", "day-1", at(9, 30), at(10, 30))

		got := DetectConflicts([]Session{keynote, breakout})
		if len(got) != 1 {
			t.Fatalf("expected one conflict, got %d", len(got))
		}
		c := got[0]
		if c.Type != ConflictTypeRoom {
			t.Fatalf("expected room conflict, got %s", c.Type)
		}
		if c.SessionID != "s1" || c.OtherSessionID != "s2" {
			t.Fatalf("unexpected session references: %+v", c)
		}
		if !strings.Contains(c.Message, "Keynote") || !strings.Contains(c.Message, "Breakout") {
			t.Fatalf("expected message to name both sessions, got %q", c.Message)
		}

		breakout.RoomID = ref("room-b")
		if got := DetectConflicts([]Session{keynote, breakout}); len(got) != 0 {
			t.Fatalf("expected moving to another room to clear the conflict, got %v", got)
		}
	})

	t.Run("swapping input order keeps cardinality", func(t *testing.T) {
		t.Parallel()
		a := session("a", "A", "room-a", "day-1", at(9, 0), at(10, 0))
		b := session("b", "B", "room-a", "day-1", at(9, 15), at(9, 45))

		forward := DetectConflicts([]Session{a, b})
		reverse := DetectConflicts([]Session{b, a})
		if len(forward) != 1 || len(reverse) != 1 {
			t.Fatalf("expected one conflict each way, got %d and %d", len(forward), len(reverse))
		}
		if reverse[0].SessionID != "b" {
			t.Fatalf("expected first session of the pair to be referenced, got %s", reverse[0].SessionID)
		}
	})

	t.Run("touching intervals are not conflicts", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts([]Session{
			session("a", "A", "room-a", "day-1", at(9, 0), at(10, 0)),
			session("b", "B", "room-a", "day-1", at(10, 0), at(11, 0)),
		})
		if len(got) != 0 {
			t.Fatalf("expected back-to-back sessions to pass, got %v", got)
		}
	})

	t.Run("different rooms never conflict", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts([]Session{
			session("a", "A", "room-a", "day-1", at(9, 0), at(10, 0)),
			session("b", "B", "room-b", "day-1", at(9, 0), at(10, 0)),
		})
		if len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("sessions without rooms are exempt", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts([]Session{
			session("a", "A", "", "day-1", at(9, 0), at(10, 0)),
			session("b", "B", "", "day-1", at(9, 0), at(10, 0)),
		})
		if len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("different days never conflict", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts([]Session{
			session("a", "A", "room-a", "day-1", at(9, 0), at(10, 0)),
			session("b", "B", "room-a", "day-2", at(9, 0), at(10, 0)),
			session("c", "C", "room-a", "", at(9, 0), at(10, 0)),
		})
		if len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("undated sessions in the same room are compared", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts([]Session{
			session("a", "A", "room-a", "", at(9, 0), at(10, 0)),
			session("b", "B", "room-a", "", at(9, 30), at(10, 30)),
		})
		if len(got) != 1 {
			t.Fatalf("expected one conflict, got %d", len(got))
		}
	})

	t.Run("three mutually overlapping sessions yield three conflicts in scan order", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts([]Session{
			session("a", "A", "room-a", "day-1", at(9, 0), at(11, 0)),
			session("b", "B", "room-a", "day-1", at(9, 30), at(10, 30)),
			session("c", "C", "room-a", "day-1", at(10, 0), at(10, 45)),
		})
		want := [][2]string{{"a", "b"}, {"a", "c"}, {"b", "c"}}
		if len(got) != len(want) {
			t.Fatalf("expected %d conflicts, got %d", len(want), len(got))
		}
		for i, pair := range want {
			if got[i].SessionID != pair[0] || got[i].OtherSessionID != pair[1] {
				t.Fatalf("conflict %d: expected %v, got %s/%s", i, pair, got[i].SessionID, got[i].OtherSessionID)
			}
		}
	})

	t.Run("sessions with unparsed timestamps are skipped", func(t *testing.T) {
		t.Parallel()
		got := DetectConflicts([]Session{
			session("a", "A", "room-a", "day-1", time.Time{}, at(10, 0)),
			session("b", "B", "room-a", "day-1", at(9, 0), at(10, 0)),
			session("c", "C", "room-a", "day-1", at(9, 30), at(10, 30)),
		})
		if len(got) != 1 || got[0].SessionID != "b" {
			t.Fatalf("expected only b/c to conflict, got %v", got)
		}
	})

	t.Run("empty input returns nothing", func(t *testing.T) {
		t.Parallel()
		if got := DetectConflicts(nil); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})
}

func TestDetectConflictsForCandidate(t *testing.T) {
	t.Parallel()

	existing := []Session{
		session("s1", "Keynote", "room-a", "day-1", at(9, 0), at(10, 0)),
		session("s2", "Workshop", "room-a", "day-1", at(11, 0), at(12, 0)),
		session("s3", "Panel", "room-b", "day-1", at(9, 0), at(10, 0)),
	}

	t.Run("reports existing sessions that collide", func(t *testing.T) {
		t.Parallel()
		candidate := session("", "Breakout", "room-a", "day-1", at(9, 30), at(11, 30))
		got := DetectConflictsForCandidate(candidate, existing, "")
		if len(got) != 2 {
			t.Fatalf("expected two conflicts, got %d", len(got))
		}
		if got[0].SessionID != "s1" || got[1].SessionID != "s2" {
			t.Fatalf("unexpected conflicts: %+v", got)
		}
		if !strings.Contains(got[0].Message, "Keynote") {
			t.Fatalf("expected message to name the existing session, got %q", got[0].Message)
		}
	})

	t.Run("excluded session is ignored when editing in place", func(t *testing.T) {
		t.Parallel()
		candidate := session("s1", "Keynote", "room-a", "day-1", at(9, 0), at(10, 30))
		if got := DetectConflictsForCandidate(candidate, existing, "s1"); len(got) != 0 {
			t.Fatalf("expected no self conflict, got %v", got)
		}
	})

	t.Run("candidate without a room is exempt", func(t *testing.T) {
		t.Parallel()
		candidate := session("", "Lunch", "", "day-1", at(9, 0), at(10, 0))
		if got := DetectConflictsForCandidate(candidate, existing, ""); len(got) != 0 {
			t.Fatalf("expected no conflicts, got %v", got)
		}
	})

	t.Run("undated candidate follows the listing rule", func(t *testing.T) {
		t.Parallel()
		undated := session("s4", "Reception", "room-a", "", at(18, 0), at(19, 0))
		candidate := session("", "Mixer", "room-a", "", at(18, 30), at(19, 30))

		got := DetectConflictsForCandidate(candidate, append([]Session{undated}, existing...), "")
		if len(got) != 1 || got[0].SessionID != "s4" {
			t.Fatalf("expected the undated session to collide, got %v", got)
		}
		if listed := DetectConflicts([]Session{undated, candidate}); len(listed) != len(got) {
			t.Fatalf("pre-flight and listing disagree: %v vs %v", got, listed)
		}

		dated := session("", "Mixer", "room-a", "day-1", at(18, 30), at(19, 30))
		if got := DetectConflictsForCandidate(dated, []Session{undated}, ""); len(got) != 0 {
			t.Fatalf("expected a dated candidate to skip undated sessions, got %v", got)
		}
	})
}
