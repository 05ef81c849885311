package scheduler

import "time"

// DefaultReminderLeadMinutes is applied when a session does not configure its own lead time.
const DefaultReminderLeadMinutes = 15

// Session is a scheduled program item as seen by the conflict detector and reminder scheduler.
//
// A zero Start or End marks a timestamp that could not be parsed by the record
// store; such sessions are skipped by every computation in this package.
type Session struct {
	ID                  string
	EventID             string
	DayID               *string
	RoomID              *string
	TrackID             *string
	Title               string
	Description         string
	Location            string
	RoomName            string
	SpeakerName         string
	Start               time.Time
	End                 time.Time
	ReminderLeadMinutes int
	ReminderEnabled     bool
}

// Assignment links a participant to a session and tracks reminder delivery.
type Assignment struct {
	ID             string
	SessionID      string
	ParticipantID  string
	ReminderSent   bool
	ReminderSentAt *time.Time
}

// Participant is the minimal attendee record needed to address a reminder.
type Participant struct {
	ID        string
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// FullName joins the first and last names.
func (p Participant) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

func hasInterval(s Session) bool {
	return !s.Start.IsZero() && !s.End.IsZero()
}

// overlaps reports whether the half-open intervals [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching endpoints do not overlap.
func overlaps(a, b Session) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// sameRef treats two nil references as equal.
func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func cloneRef(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
