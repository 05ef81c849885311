package persistence

import (
	"context"
	"time"
)

// SessionRepository stores program sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	UpdateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, eventID string) ([]Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// AssignmentRepository stores participant to session links and their reminder state.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment Assignment) error
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context, eventID string) ([]Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

// ParticipantRepository stores event attendees.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant Participant) error
	GetParticipant(ctx context.Context, id string) (Participant, error)
	ListParticipants(ctx context.Context, eventID string) ([]Participant, error)
	DeleteParticipant(ctx context.Context, eventID, id string) error
}

// CatalogRepository stores the supporting program collections.
type CatalogRepository interface {
	CreateProgramDay(ctx context.Context, day ProgramDay) error
	ListProgramDays(ctx context.Context, eventID string) ([]ProgramDay, error)
	DeleteProgramDay(ctx context.Context, eventID, id string) error

	CreateTrack(ctx context.Context, track Track) error
	ListTracks(ctx context.Context, eventID string) ([]Track, error)
	DeleteTrack(ctx context.Context, eventID, id string) error

	CreateRoom(ctx context.Context, room Room) error
	ListRooms(ctx context.Context, eventID string) ([]Room, error)
	DeleteRoom(ctx context.Context, eventID, id string) error

	CreateSpeaker(ctx context.Context, speaker Speaker) error
	ListSpeakers(ctx context.Context, eventID string) ([]Speaker, error)
	DeleteSpeaker(ctx context.Context, eventID, id string) error

	CreateContingency(ctx context.Context, contingency Contingency) error
	ListContingencies(ctx context.Context, eventID string) ([]Contingency, error)
	DeleteContingency(ctx context.Context, eventID, id string) error
}

// MessageRepository stores the outbound message log.
type MessageRepository interface {
	CreateMessage(ctx context.Context, message MessageLog) (MessageLog, error)
	ListMessages(ctx context.Context, eventID string) ([]MessageLog, error)
}

// ScheduleChangeRepository stores the session edit history.
type ScheduleChangeRepository interface {
	CreateScheduleChange(ctx context.Context, change ScheduleChange) error
	ListScheduleChanges(ctx context.Context, sessionID string) ([]ScheduleChange, error)
}
