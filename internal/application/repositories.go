package application

import (
	"context"
	"errors"
	"time"

	"github.com/example/program-scheduler/internal/persistence"
)

// SessionRepository captures the session persistence operations needed by the services.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessions(ctx context.Context, eventID string) ([]Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// AssignmentRepository captures the assignment persistence operations.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment Assignment) (Assignment, error)
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignments(ctx context.Context, eventID string) ([]Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
	MarkReminderSent(ctx context.Context, id string, at time.Time) error
}

// ParticipantRepository captures the participant persistence operations.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant Participant) (Participant, error)
	GetParticipant(ctx context.Context, id string) (Participant, error)
	ListParticipants(ctx context.Context, eventID string) ([]Participant, error)
	DeleteParticipant(ctx context.Context, eventID, id string) error
}

// ScheduleChangeRepository records session edit history.
type ScheduleChangeRepository interface {
	CreateScheduleChange(ctx context.Context, change ScheduleChange) (ScheduleChange, error)
	ListScheduleChanges(ctx context.Context, sessionID string) ([]ScheduleChange, error)
}

// CatalogRepository captures persistence for the supporting program collections.
type CatalogRepository interface {
	CreateProgramDay(ctx context.Context, day ProgramDay) (ProgramDay, error)
	ListProgramDays(ctx context.Context, eventID string) ([]ProgramDay, error)
	DeleteProgramDay(ctx context.Context, eventID, id string) error

	CreateTrack(ctx context.Context, track Track) (Track, error)
	ListTracks(ctx context.Context, eventID string) ([]Track, error)
	DeleteTrack(ctx context.Context, eventID, id string) error

	CreateRoom(ctx context.Context, room Room) (Room, error)
	ListRooms(ctx context.Context, eventID string) ([]Room, error)
	DeleteRoom(ctx context.Context, eventID, id string) error

	CreateSpeaker(ctx context.Context, speaker Speaker) (Speaker, error)
	ListSpeakers(ctx context.Context, eventID string) ([]Speaker, error)
	DeleteSpeaker(ctx context.Context, eventID, id string) error

	CreateContingency(ctx context.Context, contingency Contingency) (Contingency, error)
	ListContingencies(ctx context.Context, eventID string) ([]Contingency, error)
	DeleteContingency(ctx context.Context, eventID, id string) error
}

// mapRepoError translates persistence sentinels into service level errors.
// field names the input that a constraint or foreign key failure is reported against.
func mapRepoError(err error, field string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return fieldError(field, "references an unknown record")
	case errors.Is(err, persistence.ErrConstraintViolation):
		return fieldError(field, "violates a storage constraint")
	}
	return err
}
