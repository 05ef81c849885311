package scheduler

import (
	"testing"
	"time"
)

func reminderSession(id string, start time.Time, lead int) Session {
	return Session{ID: id, Title: id, Start: start, End: start.Add(time.Hour), ReminderLeadMinutes: lead, ReminderEnabled: true}
}

func TestComputeUpcomingReminders(t *testing.T) {
	t.Parallel()

	now := at(9, 0)
	people := []Participant{{ID: "p1", FirstName: "Dana", LastName: "Levi"}, {ID: "p2", FirstName: "Avi"}}

	assign := func(sessionIDs ...string) []Assignment {
		out := make([]Assignment, 0, len(sessionIDs))
		for i, id := range sessionIDs {
			out = append(out, Assignment{ID: id + "-a", SessionID: id, ParticipantID: people[i%len(people)].ID})
		}
		return out
	}

	t.Run("window boundaries", func(t *testing.T) {
		t.Parallel()
		cases := []struct {
			name     string
			offset   time.Duration
			included bool
		}{
			{name: "exactly sixty minutes ahead", offset: 60 * time.Minute, included: true},
			{name: "sixty one minutes ahead", offset: 61 * time.Minute, included: false},
			{name: "five minutes overdue", offset: -5 * time.Minute, included: true},
			{name: "six minutes overdue", offset: -6 * time.Minute, included: false},
			{name: "due now", offset: 0, included: true},
		}
		for _, tc := range cases {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				// reminder lead of 15 minutes: start = due + 15m
				s := reminderSession("s", now.Add(tc.offset+15*time.Minute), 15)
				got := ComputeUpcomingReminders([]Session{s}, assign("s"), people, now)
				if tc.included && len(got) != 1 {
					t.Fatalf("expected session to be included, got %v", got)
				}
				if !tc.included && len(got) != 0 {
					t.Fatalf("expected session to be excluded, got %v", got)
				}
			})
		}
	})

	t.Run("sessions without participants are dropped", func(t *testing.T) {
		t.Parallel()
		s := reminderSession("s", now.Add(20*time.Minute), 15)
		if got := ComputeUpcomingReminders([]Session{s}, nil, people, now); len(got) != 0 {
			t.Fatalf("expected no reminders, got %v", got)
		}
	})

	t.Run("unknown participants are dropped", func(t *testing.T) {
		t.Parallel()
		s := reminderSession("s", now.Add(20*time.Minute), 15)
		assignments := []Assignment{{ID: "a", SessionID: "s", ParticipantID: "ghost"}}
		if got := ComputeUpcomingReminders([]Session{s}, assignments, people, now); len(got) != 0 {
			t.Fatalf("expected no reminders, got %v", got)
		}
	})

	t.Run("disabled reminders are skipped", func(t *testing.T) {
		t.Parallel()
		s := reminderSession("s", now.Add(20*time.Minute), 15)
		s.ReminderEnabled = false
		if got := ComputeUpcomingReminders([]Session{s}, assign("s"), people, now); len(got) != 0 {
			t.Fatalf("expected no reminders, got %v", got)
		}
	})

	t.Run("malformed sessions are skipped", func(t *testing.T) {
		t.Parallel()
		noStart := reminderSession("a", time.Time{}, 15)
		negative := reminderSession("b", now.Add(20*time.Minute), -1)
		valid := reminderSession("c", now.Add(20*time.Minute), 15)
		got := ComputeUpcomingReminders([]Session{noStart, negative, valid}, assign("a", "b", "c"), people, now)
		if len(got) != 1 || got[0].Session.ID != "c" {
			t.Fatalf("expected only the valid session, got %v", got)
		}
	})

	t.Run("results are sorted by urgency", func(t *testing.T) {
		t.Parallel()
		sessions := []Session{
			reminderSession("ten", now.Add(25*time.Minute), 15),
			reminderSession("overdue", now.Add(13*time.Minute), 15),
			reminderSession("later", now.Add(60*time.Minute), 15),
		}
		got := ComputeUpcomingReminders(sessions, assign("ten", "overdue", "later"), people, now)
		want := []int{-2, 10, 45}
		if len(got) != len(want) {
			t.Fatalf("expected %d reminders, got %d", len(want), len(got))
		}
		for i, minutes := range want {
			if got[i].MinutesUntilDue != minutes {
				t.Fatalf("position %d: expected %d minutes, got %d", i, minutes, got[i].MinutesUntilDue)
			}
		}
	})

	t.Run("recipients carry sent status", func(t *testing.T) {
		t.Parallel()
		s := reminderSession("s", now.Add(20*time.Minute), 15)
		assignments := []Assignment{
			{ID: "a1", SessionID: "s", ParticipantID: "p1", ReminderSent: true},
			{ID: "a2", SessionID: "s", ParticipantID: "p2"},
		}
		got := ComputeUpcomingReminders([]Session{s}, assignments, people, now)
		if len(got) != 1 || len(got[0].Recipients) != 2 {
			t.Fatalf("expected one reminder with two recipients, got %v", got)
		}
		pending := got[0].Pending()
		if len(pending) != 1 || pending[0].AssignmentID != "a2" {
			t.Fatalf("expected only a2 pending, got %v", pending)
		}
	})

	t.Run("lunch scenario", func(t *testing.T) {
		t.Parallel()
		lunch := reminderSession("lunch", at(10, 0), 15)
		assignments := []Assignment{{ID: "a", SessionID: "lunch", ParticipantID: "p1"}}

		got := ComputeUpcomingReminders([]Session{lunch}, assignments, people, at(9, 50))
		if len(got) != 1 || got[0].MinutesUntilDue != -5 {
			t.Fatalf("expected lunch 5 minutes overdue, got %v", got)
		}

		if got := ComputeUpcomingReminders([]Session{lunch}, assignments, people, at(9, 51)); len(got) != 0 {
			t.Fatalf("expected lunch excluded once 6 minutes overdue, got %v", got)
		}
		if got := ComputeUpcomingReminders([]Session{lunch}, assignments, people, at(9, 56)); len(got) != 0 {
			t.Fatalf("expected lunch excluded at 09:56, got %v", got)
		}
	})
}

func TestMinutesUntil(t *testing.T) {
	t.Parallel()

	now := at(9, 0)
	cases := []struct {
		offset time.Duration
		want   int
	}{
		{offset: 90 * time.Second, want: 2},
		{offset: 89 * time.Second, want: 1},
		{offset: -330 * time.Second, want: -5},
		{offset: -331 * time.Second, want: -6},
		{offset: 0, want: 0},
	}
	for _, tc := range cases {
		if got := MinutesUntil(now.Add(tc.offset), now); got != tc.want {
			t.Fatalf("offset %s: expected %d, got %d", tc.offset, tc.want, got)
		}
	}
}
