package http

import (
	"context"
	"sync"

	"github.com/example/program-scheduler/internal/application"
	"github.com/example/program-scheduler/internal/notify"
)

type programServiceStub struct {
	session     application.Session
	sessions    []application.Session
	warnings    []application.ConflictWarning
	assignment  application.Assignment
	assignments []application.Assignment
	changes     []application.ScheduleChange
	stats       application.ProgramStats
	err         error

	lastEventID   string
	lastSessionID string
	lastInput     application.SessionInput
	lastExcludeID string
}

func (s *programServiceStub) CreateSession(_ context.Context, eventID string, input application.SessionInput) (application.Session, []application.ConflictWarning, error) {
	s.lastEventID, s.lastInput = eventID, input
	return s.session, s.warnings, s.err
}

func (s *programServiceStub) UpdateSession(_ context.Context, eventID, sessionID string, input application.SessionInput) (application.Session, []application.ConflictWarning, error) {
	s.lastEventID, s.lastSessionID, s.lastInput = eventID, sessionID, input
	return s.session, s.warnings, s.err
}

func (s *programServiceStub) DeleteSession(_ context.Context, eventID, sessionID string) error {
	s.lastEventID, s.lastSessionID = eventID, sessionID
	return s.err
}

func (s *programServiceStub) GetSession(_ context.Context, eventID, sessionID string) (application.Session, error) {
	s.lastEventID, s.lastSessionID = eventID, sessionID
	return s.session, s.err
}

func (s *programServiceStub) ListSessions(_ context.Context, eventID string) ([]application.Session, []application.ConflictWarning, error) {
	s.lastEventID = eventID
	return s.sessions, s.warnings, s.err
}

func (s *programServiceStub) CheckCandidate(_ context.Context, eventID string, input application.SessionInput, excludeID string) ([]application.ConflictWarning, error) {
	s.lastEventID, s.lastInput, s.lastExcludeID = eventID, input, excludeID
	return s.warnings, s.err
}

func (s *programServiceStub) SessionHistory(_ context.Context, eventID, sessionID string) ([]application.ScheduleChange, error) {
	s.lastEventID, s.lastSessionID = eventID, sessionID
	return s.changes, s.err
}

func (s *programServiceStub) AssignParticipant(_ context.Context, eventID, sessionID, _ string) (application.Assignment, error) {
	s.lastEventID, s.lastSessionID = eventID, sessionID
	return s.assignment, s.err
}

func (s *programServiceStub) UnassignParticipant(_ context.Context, eventID, _ string) error {
	s.lastEventID = eventID
	return s.err
}

func (s *programServiceStub) ListAssignments(_ context.Context, eventID string) ([]application.Assignment, error) {
	s.lastEventID = eventID
	return s.assignments, s.err
}

func (s *programServiceStub) ProgramStats(_ context.Context, eventID string) (application.ProgramStats, error) {
	s.lastEventID = eventID
	return s.stats, s.err
}

type reminderServiceStub struct {
	mu        sync.Mutex
	upcoming  []application.UpcomingReminder
	summary   notify.SendSummary
	summaries []notify.SendSummary
	err       error

	upcomingCalls int
	lastSessionID string
}

func (s *reminderServiceStub) Upcoming(_ context.Context, _ string) ([]application.UpcomingReminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upcomingCalls++
	return s.upcoming, s.err
}

func (s *reminderServiceStub) SendForSession(_ context.Context, _, sessionID string) (notify.SendSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSessionID = sessionID
	return s.summary, s.err
}

func (s *reminderServiceStub) SendDue(_ context.Context, _ string) ([]notify.SendSummary, error) {
	return s.summaries, s.err
}

type catalogServiceStub struct {
	rooms       []application.Room
	participant application.Participant
	err         error
	deleted     []string
	lastRoom    application.RoomInput
	lastEventID string
}

func (s *catalogServiceStub) CreateProgramDay(_ context.Context, eventID string, input application.ProgramDayInput) (application.ProgramDay, error) {
	return application.ProgramDay{ID: "day-1", EventID: eventID, Date: input.Date, DayNumber: input.DayNumber}, s.err
}

func (s *catalogServiceStub) ListProgramDays(context.Context, string) ([]application.ProgramDay, error) {
	return nil, s.err
}

func (s *catalogServiceStub) DeleteProgramDay(_ context.Context, eventID, id string) error {
	s.deleted = append(s.deleted, "day:"+id)
	return s.err
}

func (s *catalogServiceStub) CreateTrack(_ context.Context, eventID string, input application.TrackInput) (application.Track, error) {
	return application.Track{ID: "track-1", EventID: eventID, Name: input.Name, Active: true}, s.err
}

func (s *catalogServiceStub) ListTracks(context.Context, string) ([]application.Track, error) {
	return nil, s.err
}

func (s *catalogServiceStub) DeleteTrack(_ context.Context, eventID, id string) error {
	s.deleted = append(s.deleted, "track:"+id)
	return s.err
}

func (s *catalogServiceStub) CreateRoom(_ context.Context, eventID string, input application.RoomInput) (application.Room, error) {
	s.lastEventID, s.lastRoom = eventID, input
	if s.err != nil {
		return application.Room{}, s.err
	}
	return application.Room{ID: "room-1", EventID: eventID, Name: input.Name, Capacity: input.Capacity, Active: true}, nil
}

func (s *catalogServiceStub) ListRooms(_ context.Context, eventID string) ([]application.Room, error) {
	s.lastEventID = eventID
	return s.rooms, s.err
}

func (s *catalogServiceStub) DeleteRoom(_ context.Context, eventID, id string) error {
	s.lastEventID = eventID
	s.deleted = append(s.deleted, "room:"+id)
	return s.err
}

func (s *catalogServiceStub) CreateSpeaker(_ context.Context, eventID string, input application.SpeakerInput) (application.Speaker, error) {
	return application.Speaker{ID: "speaker-1", EventID: eventID, Name: input.Name}, s.err
}

func (s *catalogServiceStub) ListSpeakers(context.Context, string) ([]application.Speaker, error) {
	return nil, s.err
}

func (s *catalogServiceStub) DeleteSpeaker(_ context.Context, eventID, id string) error {
	s.deleted = append(s.deleted, "speaker:"+id)
	return s.err
}

func (s *catalogServiceStub) CreateContingency(_ context.Context, eventID string, input application.ContingencyInput) (application.Contingency, error) {
	return application.Contingency{ID: "cont-1", EventID: eventID, Type: input.Type}, s.err
}

func (s *catalogServiceStub) ListContingencies(context.Context, string) ([]application.Contingency, error) {
	return nil, s.err
}

func (s *catalogServiceStub) DeleteContingency(_ context.Context, eventID, id string) error {
	s.deleted = append(s.deleted, "contingency:"+id)
	return s.err
}

func (s *catalogServiceStub) CreateParticipant(_ context.Context, _ string, _ application.ParticipantInput) (application.Participant, error) {
	return s.participant, s.err
}

func (s *catalogServiceStub) ListParticipants(context.Context, string) ([]application.Participant, error) {
	return nil, s.err
}

func (s *catalogServiceStub) DeleteParticipant(_ context.Context, eventID, id string) error {
	s.deleted = append(s.deleted, "participant:"+id)
	return s.err
}

func strPtr(v string) *string { return &v }
