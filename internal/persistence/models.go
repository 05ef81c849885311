package persistence

import "time"

// Session is a scheduled program item.
//
// RoomName and SpeakerName are resolved from the catalog on read and are
// ignored on write. Start and End are left zero when the stored value cannot
// be parsed.
type Session struct {
	ID                  string
	EventID             string
	DayID               *string
	RoomID              *string
	TrackID             *string
	SpeakerID           *string
	Title               string
	Description         string
	Location            string
	SessionType         string
	Start               time.Time
	End                 time.Time
	ReminderLeadMinutes int
	ReminderEnabled     bool
	RoomName            string
	SpeakerName         string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Assignment links a participant to a session.
type Assignment struct {
	ID             string
	SessionID      string
	ParticipantID  string
	ReminderSent   bool
	ReminderSentAt *time.Time
	CreatedAt      time.Time
}

// Participant is an attendee of an event.
type Participant struct {
	ID        string
	EventID   string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	CreatedAt time.Time
}

// ProgramDay is one day of the event program.
type ProgramDay struct {
	ID        string
	EventID   string
	Date      string
	DayNumber int
	Theme     string
	CreatedAt time.Time
}

// Track groups sessions by topic.
type Track struct {
	ID        string
	EventID   string
	Name      string
	Color     string
	SortOrder int
	Active    bool
	CreatedAt time.Time
}

// Room is a venue space sessions can be booked into.
type Room struct {
	ID           string
	EventID      string
	Name         string
	Capacity     int
	Floor        string
	Building     string
	Active       bool
	BackupRoomID *string
	CreatedAt    time.Time
}

// Speaker presents one or more sessions.
type Speaker struct {
	ID              string
	EventID         string
	Name            string
	Title           string
	Bio             string
	Email           string
	Phone           string
	BackupSpeakerID *string
	CreatedAt       time.Time
}

// Contingency is a documented fallback plan for a program risk.
type Contingency struct {
	ID              string
	EventID         string
	Type            string
	RiskLevel       string
	Description     string
	ActionPlan      string
	BackupSpeakerID *string
	BackupRoomID    *string
	Status          string
	CreatedAt       time.Time
}

// MessageLog is an outbound message attempt.
type MessageLog struct {
	ID            string
	EventID       string
	ParticipantID *string
	SessionID     *string
	Channel       string
	Recipient     string
	Content       string
	ContentDigest string
	Status        string
	Error         string
	SentAt        time.Time
}

// ScheduleChange is an audit entry written when a session is edited.
type ScheduleChange struct {
	ID         string
	SessionID  string
	ChangeType string
	OldValue   string
	NewValue   string
	Reason     string
	CreatedAt  time.Time
}
