package application

import "time"

// Session is a scheduled program item as exposed by the services.
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

// SessionInput captures caller provided session fields. Nil reminder fields
// fall back to the defaults (15 minutes, enabled).
type SessionInput struct {
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
	ReminderLeadMinutes *int
	ReminderEnabled     *bool
	ChangeReason        string
}

// ConflictWarning describes a room double-booking surfaced alongside a write or listing.
type ConflictWarning struct {
	Type           string
	Message        string
	SessionID      string
	OtherSessionID string
	RoomID         *string
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

// Participant is an attendee who can be assigned to sessions.
type Participant struct {
	ID        string
	EventID   string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	CreatedAt time.Time
}

// ParticipantInput captures caller provided participant fields.
type ParticipantInput struct {
	FirstName string
	LastName  string
	Phone     string
	Email     string
}

// ScheduleChange records an edit to a session with before and after snapshots.
type ScheduleChange struct {
	ID         string
	SessionID  string
	ChangeType string
	OldValue   string
	NewValue   string
	Reason     string
	CreatedAt  time.Time
}

// ProgramStats summarises an event program.
type ProgramStats struct {
	Sessions         int
	Participants     int
	Assignments      int
	Tracks           int
	PendingReminders int
	Conflicts        int
}

// ReminderRecipient is one participant of an upcoming reminder.
type ReminderRecipient struct {
	AssignmentID  string
	ParticipantID string
	FirstName     string
	LastName      string
	Phone         string
	ReminderSent  bool
}

// UpcomingReminder is a session whose reminder is due within the reminder window.
type UpcomingReminder struct {
	Session         Session
	ReminderAt      time.Time
	MinutesUntilDue int
	Recipients      []ReminderRecipient
}

// ProgramDay is one day of the program.
type ProgramDay struct {
	ID        string
	EventID   string
	Date      string
	DayNumber int
	Theme     string
	CreatedAt time.Time
}

// ProgramDayInput captures caller provided day fields. Date uses YYYY-MM-DD.
type ProgramDayInput struct {
	Date      string
	DayNumber int
	Theme     string
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

// TrackInput captures caller provided track fields.
type TrackInput struct {
	Name      string
	Color     string
	SortOrder int
	Active    *bool
}

// Room is a bookable venue space.
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

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name         string
	Capacity     int
	Floor        string
	Building     string
	Active       *bool
	BackupRoomID *string
}

// Speaker presents sessions.
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

// SpeakerInput captures caller provided speaker fields.
type SpeakerInput struct {
	Name            string
	Title           string
	Bio             string
	Email           string
	Phone           string
	BackupSpeakerID *string
}

// Contingency is a fallback plan for a program risk.
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

// ContingencyInput captures caller provided contingency fields.
type ContingencyInput struct {
	Type            string
	RiskLevel       string
	Description     string
	ActionPlan      string
	BackupSpeakerID *string
	BackupRoomID    *string
	Status          string
}
