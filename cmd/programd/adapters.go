package main

import (
	"context"
	"time"

	"github.com/example/program-scheduler/internal/application"
	"github.com/example/program-scheduler/internal/notify"
	"github.com/example/program-scheduler/internal/persistence"
)

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

// CreateSession reloads the stored row so joined room and speaker names are filled in.
func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.CreateSession(ctx, toPersistenceSession(session)); err != nil {
		return application.Session{}, err
	}
	return a.GetSession(ctx, session.ID)
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.UpdateSession(ctx, toPersistenceSession(session)); err != nil {
		return application.Session{}, err
	}
	return a.GetSession(ctx, session.ID)
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, id string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) ListSessions(ctx context.Context, eventID string) ([]application.Session, error) {
	models, err := a.repo.ListSessions(ctx, eventID)
	if err != nil || len(models) == 0 {
		return nil, err
	}
	sessions := make([]application.Session, 0, len(models))
	for _, model := range models {
		sessions = append(sessions, toApplicationSession(model))
	}
	return sessions, nil
}

func (a *sessionRepositoryAdapter) DeleteSession(ctx context.Context, id string) error {
	return a.repo.DeleteSession(ctx, id)
}

type assignmentRepositoryAdapter struct {
	repo persistence.AssignmentRepository
}

func newAssignmentRepositoryAdapter(repo persistence.AssignmentRepository) *assignmentRepositoryAdapter {
	return &assignmentRepositoryAdapter{repo: repo}
}

func (a *assignmentRepositoryAdapter) CreateAssignment(ctx context.Context, assignment application.Assignment) (application.Assignment, error) {
	if err := a.repo.CreateAssignment(ctx, persistence.Assignment{
		ID:            assignment.ID,
		SessionID:     assignment.SessionID,
		ParticipantID: assignment.ParticipantID,
		CreatedAt:     assignment.CreatedAt,
	}); err != nil {
		return application.Assignment{}, err
	}
	return a.GetAssignment(ctx, assignment.ID)
}

func (a *assignmentRepositoryAdapter) GetAssignment(ctx context.Context, id string) (application.Assignment, error) {
	stored, err := a.repo.GetAssignment(ctx, id)
	if err != nil {
		return application.Assignment{}, err
	}
	return toApplicationAssignment(stored), nil
}

func (a *assignmentRepositoryAdapter) ListAssignments(ctx context.Context, eventID string) ([]application.Assignment, error) {
	models, err := a.repo.ListAssignments(ctx, eventID)
	if err != nil || len(models) == 0 {
		return nil, err
	}
	assignments := make([]application.Assignment, 0, len(models))
	for _, model := range models {
		assignments = append(assignments, toApplicationAssignment(model))
	}
	return assignments, nil
}

func (a *assignmentRepositoryAdapter) DeleteAssignment(ctx context.Context, id string) error {
	return a.repo.DeleteAssignment(ctx, id)
}

func (a *assignmentRepositoryAdapter) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	return a.repo.MarkReminderSent(ctx, id, at)
}

type participantRepositoryAdapter struct {
	repo persistence.ParticipantRepository
}

func newParticipantRepositoryAdapter(repo persistence.ParticipantRepository) *participantRepositoryAdapter {
	return &participantRepositoryAdapter{repo: repo}
}

func (a *participantRepositoryAdapter) CreateParticipant(ctx context.Context, participant application.Participant) (application.Participant, error) {
	if err := a.repo.CreateParticipant(ctx, persistence.Participant(participant)); err != nil {
		return application.Participant{}, err
	}
	return a.GetParticipant(ctx, participant.ID)
}

func (a *participantRepositoryAdapter) GetParticipant(ctx context.Context, id string) (application.Participant, error) {
	stored, err := a.repo.GetParticipant(ctx, id)
	if err != nil {
		return application.Participant{}, err
	}
	return application.Participant(stored), nil
}

func (a *participantRepositoryAdapter) ListParticipants(ctx context.Context, eventID string) ([]application.Participant, error) {
	models, err := a.repo.ListParticipants(ctx, eventID)
	if err != nil || len(models) == 0 {
		return nil, err
	}
	participants := make([]application.Participant, 0, len(models))
	for _, model := range models {
		participants = append(participants, application.Participant(model))
	}
	return participants, nil
}

func (a *participantRepositoryAdapter) DeleteParticipant(ctx context.Context, eventID, id string) error {
	return a.repo.DeleteParticipant(ctx, eventID, id)
}

type scheduleChangeRepositoryAdapter struct {
	repo persistence.ScheduleChangeRepository
}

func newScheduleChangeRepositoryAdapter(repo persistence.ScheduleChangeRepository) *scheduleChangeRepositoryAdapter {
	return &scheduleChangeRepositoryAdapter{repo: repo}
}

func (a *scheduleChangeRepositoryAdapter) CreateScheduleChange(ctx context.Context, change application.ScheduleChange) (application.ScheduleChange, error) {
	if err := a.repo.CreateScheduleChange(ctx, persistence.ScheduleChange(change)); err != nil {
		return application.ScheduleChange{}, err
	}
	return change, nil
}

func (a *scheduleChangeRepositoryAdapter) ListScheduleChanges(ctx context.Context, sessionID string) ([]application.ScheduleChange, error) {
	models, err := a.repo.ListScheduleChanges(ctx, sessionID)
	if err != nil || len(models) == 0 {
		return nil, err
	}
	changes := make([]application.ScheduleChange, 0, len(models))
	for _, model := range models {
		changes = append(changes, application.ScheduleChange(model))
	}
	return changes, nil
}

// catalogRepositoryAdapter converts between the identical catalog shapes of
// both layers. Catalog rows carry no joined columns, so creates echo their input.
type catalogRepositoryAdapter struct {
	repo persistence.CatalogRepository
}

func newCatalogRepositoryAdapter(repo persistence.CatalogRepository) *catalogRepositoryAdapter {
	return &catalogRepositoryAdapter{repo: repo}
}

func (a *catalogRepositoryAdapter) CreateProgramDay(ctx context.Context, day application.ProgramDay) (application.ProgramDay, error) {
	if err := a.repo.CreateProgramDay(ctx, persistence.ProgramDay(day)); err != nil {
		return application.ProgramDay{}, err
	}
	return day, nil
}

func (a *catalogRepositoryAdapter) ListProgramDays(ctx context.Context, eventID string) ([]application.ProgramDay, error) {
	models, err := a.repo.ListProgramDays(ctx, eventID)
	return convertList(models, err, func(m persistence.ProgramDay) application.ProgramDay { return application.ProgramDay(m) })
}

func (a *catalogRepositoryAdapter) DeleteProgramDay(ctx context.Context, eventID, id string) error {
	return a.repo.DeleteProgramDay(ctx, eventID, id)
}

func (a *catalogRepositoryAdapter) CreateTrack(ctx context.Context, track application.Track) (application.Track, error) {
	if err := a.repo.CreateTrack(ctx, persistence.Track(track)); err != nil {
		return application.Track{}, err
	}
	return track, nil
}

func (a *catalogRepositoryAdapter) ListTracks(ctx context.Context, eventID string) ([]application.Track, error) {
	models, err := a.repo.ListTracks(ctx, eventID)
	return convertList(models, err, func(m persistence.Track) application.Track { return application.Track(m) })
}

func (a *catalogRepositoryAdapter) DeleteTrack(ctx context.Context, eventID, id string) error {
	return a.repo.DeleteTrack(ctx, eventID, id)
}

func (a *catalogRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, persistence.Room(room)); err != nil {
		return application.Room{}, err
	}
	return room, nil
}

func (a *catalogRepositoryAdapter) ListRooms(ctx context.Context, eventID string) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx, eventID)
	return convertList(models, err, func(m persistence.Room) application.Room { return application.Room(m) })
}

func (a *catalogRepositoryAdapter) DeleteRoom(ctx context.Context, eventID, id string) error {
	return a.repo.DeleteRoom(ctx, eventID, id)
}

func (a *catalogRepositoryAdapter) CreateSpeaker(ctx context.Context, speaker application.Speaker) (application.Speaker, error) {
	if err := a.repo.CreateSpeaker(ctx, persistence.Speaker(speaker)); err != nil {
		return application.Speaker{}, err
	}
	return speaker, nil
}

func (a *catalogRepositoryAdapter) ListSpeakers(ctx context.Context, eventID string) ([]application.Speaker, error) {
	models, err := a.repo.ListSpeakers(ctx, eventID)
	return convertList(models, err, func(m persistence.Speaker) application.Speaker { return application.Speaker(m) })
}

func (a *catalogRepositoryAdapter) DeleteSpeaker(ctx context.Context, eventID, id string) error {
	return a.repo.DeleteSpeaker(ctx, eventID, id)
}

func (a *catalogRepositoryAdapter) CreateContingency(ctx context.Context, contingency application.Contingency) (application.Contingency, error) {
	if err := a.repo.CreateContingency(ctx, persistence.Contingency(contingency)); err != nil {
		return application.Contingency{}, err
	}
	return contingency, nil
}

func (a *catalogRepositoryAdapter) ListContingencies(ctx context.Context, eventID string) ([]application.Contingency, error) {
	models, err := a.repo.ListContingencies(ctx, eventID)
	return convertList(models, err, func(m persistence.Contingency) application.Contingency { return application.Contingency(m) })
}

func (a *catalogRepositoryAdapter) DeleteContingency(ctx context.Context, eventID, id string) error {
	return a.repo.DeleteContingency(ctx, eventID, id)
}

// convertList maps a repository list result, keeping nil for empty results.
func convertList[M, A any](models []M, err error, convert func(M) A) ([]A, error) {
	if err != nil || len(models) == 0 {
		return nil, err
	}
	out := make([]A, 0, len(models))
	for _, model := range models {
		out = append(out, convert(model))
	}
	return out, nil
}

// messageLogAdapter records notify deliveries in the message table.
type messageLogAdapter struct {
	repo persistence.MessageRepository
}

func newMessageLogAdapter(repo persistence.MessageRepository) *messageLogAdapter {
	return &messageLogAdapter{repo: repo}
}

func (a *messageLogAdapter) RecordMessage(ctx context.Context, message notify.Message) error {
	_, err := a.repo.CreateMessage(ctx, persistence.MessageLog{
		EventID:       message.EventID,
		SessionID:     optionalString(message.SessionID),
		ParticipantID: optionalString(message.ParticipantID),
		Channel:       message.Channel,
		Recipient:     message.Recipient,
		Content:       message.Content,
		Status:        message.Status,
		Error:         message.Error,
		SentAt:        message.SentAt,
	})
	return err
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session(model)
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session(session)
}

func toApplicationAssignment(model persistence.Assignment) application.Assignment {
	return application.Assignment{
		ID:             model.ID,
		SessionID:      model.SessionID,
		ParticipantID:  model.ParticipantID,
		ReminderSent:   model.ReminderSent,
		ReminderSentAt: cloneTime(model.ReminderSentAt),
		CreatedAt:      model.CreatedAt,
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
