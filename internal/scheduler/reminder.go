package scheduler

import (
	"math"
	"sort"
	"time"
)

const (
	// ReminderLookAhead is how far ahead of now a reminder is considered upcoming.
	ReminderLookAhead = 60
	// ReminderGrace is how long after its due time a reminder is still surfaced.
	ReminderGrace = 5
)

// ReminderRecipient is a participant assigned to a session together with the
// delivery status of that assignment.
type ReminderRecipient struct {
	AssignmentID string
	Participant  Participant
	ReminderSent bool
}

// UpcomingReminder is a session whose reminder falls inside the look-around window.
type UpcomingReminder struct {
	Session         Session
	Recipients      []ReminderRecipient
	MinutesUntilDue int
}

// Pending returns the recipients that have not been notified yet.
func (r UpcomingReminder) Pending() []ReminderRecipient {
	pending := make([]ReminderRecipient, 0, len(r.Recipients))
	for _, recipient := range r.Recipients {
		if !recipient.ReminderSent {
			pending = append(pending, recipient)
		}
	}
	return pending
}

// ReminderAt returns the instant the session's reminder is due.
func ReminderAt(session Session) time.Time {
	return session.Start.Add(-time.Duration(session.ReminderLeadMinutes) * time.Minute)
}

// MinutesUntil rounds the distance from now to t to whole minutes, with
// halves rounded up (-5.5 becomes -5).
func MinutesUntil(t, now time.Time) int {
	return int(math.Floor(t.Sub(now).Minutes() + 0.5))
}

// ComputeUpcomingReminders projects the reminder state of every session against
// now. Only sessions with reminders enabled, a due time between ReminderGrace
// minutes ago and ReminderLookAhead minutes ahead, and at least one resolvable
// participant are returned, ordered by MinutesUntilDue ascending.
func ComputeUpcomingReminders(sessions []Session, assignments []Assignment, participants []Participant, now time.Time) []UpcomingReminder {
	if len(sessions) == 0 {
		return nil
	}

	people := make(map[string]Participant, len(participants))
	for _, participant := range participants {
		people[participant.ID] = participant
	}

	bySession := make(map[string][]Assignment)
	for _, assignment := range assignments {
		bySession[assignment.SessionID] = append(bySession[assignment.SessionID], assignment)
	}

	var upcoming []UpcomingReminder
	for _, session := range sessions {
		if !session.ReminderEnabled || session.Start.IsZero() || session.ReminderLeadMinutes < 0 {
			continue
		}

		minutes := MinutesUntil(ReminderAt(session), now)
		if minutes > ReminderLookAhead || minutes < -ReminderGrace {
			continue
		}

		var recipients []ReminderRecipient
		for _, assignment := range bySession[session.ID] {
			participant, ok := people[assignment.ParticipantID]
			if !ok {
				continue
			}
			recipients = append(recipients, ReminderRecipient{
				AssignmentID: assignment.ID,
				Participant:  participant,
				ReminderSent: assignment.ReminderSent,
			})
		}
		if len(recipients) == 0 {
			continue
		}

		upcoming = append(upcoming, UpcomingReminder{
			Session:         session,
			Recipients:      recipients,
			MinutesUntilDue: minutes,
		})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].MinutesUntilDue < upcoming[j].MinutesUntilDue
	})
	return upcoming
}
