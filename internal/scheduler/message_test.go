package scheduler

import (
	"strings"
	"testing"
)

func TestRenderReminderMessage(t *testing.T) {
	t.Parallel()

	participant := Participant{FirstName: "Dana", LastName: "Levi"}

	t.Run("includes optional lines in order", func(t *testing.T) {
		t.Parallel()
		s := Session{
			Title:               "Keynote",
			Start:               at(9, 30),
			ReminderLeadMinutes: 15,
			Location:            "Main hall",
			RoomName:            "A1",
			SpeakerName:         "Noa",
			Description:         "Opening words",
		}
		msg := RenderReminderMessage(participant, s)

		if !strings.HasPrefix(msg, "Hello Dana Levi!") {
			t.Fatalf("expected greeting, got %q", msg)
		}
		order := []string{"*Keynote*", "Time: 09:30", "Location: Main hall", "Room: A1", "Speaker: Noa", "Opening words", "See you there!"}
		last := -1
		for _, fragment := range order {
			idx := strings.Index(msg, fragment)
			if idx < 0 {
				t.Fatalf("expected %q in message %q", fragment, msg)
			}
			if idx < last {
				t.Fatalf("expected %q after previous line in %q", fragment, msg)
			}
			last = idx
		}
		if !strings.Contains(msg, "starting in 15 minutes") {
			t.Fatalf("expected lead time in message, got %q", msg)
		}
	})

	t.Run("omits empty fields", func(t *testing.T) {
		t.Parallel()
		msg := RenderReminderMessage(participant, Session{Title: "Lunch", Start: at(12, 0), ReminderLeadMinutes: 5})
		for _, absent := range []string{"Location:", "Room:", "Speaker:"} {
			if strings.Contains(msg, absent) {
				t.Fatalf("expected %q to be omitted from %q", absent, msg)
			}
		}
	})
}
