package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/program-scheduler/internal/scheduler"
)

// ChangeTypeUpdate labels every session history entry. What moved is read
// from the old and new snapshots.
const ChangeTypeUpdate = "update"

// ProgramRepositories groups the stores used by ProgramService.
type ProgramRepositories struct {
	Sessions     SessionRepository
	Assignments  AssignmentRepository
	Participants ParticipantRepository
	Changes      ScheduleChangeRepository
}

// ProgramService coordinates session scheduling, conflict surfacing and
// participant assignment for an event.
type ProgramService struct {
	sessions     SessionRepository
	assignments  AssignmentRepository
	participants ParticipantRepository
	changes      ScheduleChangeRepository
	idGenerator  func() string
	now          func() time.Time
	cache        *warningCache
	logger       *slog.Logger
}

// NewProgramService wires dependencies for program operations.
func NewProgramService(repos ProgramRepositories, idGenerator func() string, now func() time.Time) *ProgramService {
	return NewProgramServiceWithLogger(repos, idGenerator, now, nil)
}

// NewProgramServiceWithLogger wires dependencies for program operations with a specified logger.
func NewProgramServiceWithLogger(repos ProgramRepositories, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ProgramService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ProgramService{
		sessions:     repos.Sessions,
		assignments:  repos.Assignments,
		participants: repos.Participants,
		changes:      repos.Changes,
		idGenerator:  idGenerator,
		now:          now,
		cache:        newWarningCache(defaultWarningCacheTTL, defaultWarningCacheMaxEntries, now),
		logger:       defaultLogger(logger),
	}
}

// WithWarningCacheTTL replaces the conflict warning cache with one using the given TTL.
func (s *ProgramService) WithWarningCacheTTL(ttl time.Duration) *ProgramService {
	if s == nil {
		return nil
	}
	s.cache = newWarningCache(ttl, defaultWarningCacheMaxEntries, s.now)
	return s
}

func (s *ProgramService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ProgramService", operation, attrs...)
}

// CreateSession validates input, persists the session and returns any room
// conflicts it introduces. Conflicts never block the write.
func (s *ProgramService) CreateSession(ctx context.Context, eventID string, input SessionInput) (session Session, warnings []ConflictWarning, err error) {
	if s == nil {
		err = fmt.Errorf("ProgramService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateSession", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID, "conflicts", len(warnings)).InfoContext(ctx, "session created")
	}()

	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	vErr := validateSessionInput(eventID, input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	candidate := buildSession(input)
	candidate.ID = s.idGenerator()
	candidate.EventID = eventID
	candidate.CreatedAt = s.now()
	candidate.UpdatedAt = candidate.CreatedAt

	var detected []ConflictWarning
	detected, err = s.candidateWarnings(ctx, eventID, candidate, "")
	if err != nil {
		return
	}

	var persisted Session
	persisted, err = s.sessions.CreateSession(ctx, candidate)
	if err != nil {
		err = mapRepoError(err, "session")
		return
	}
	s.cache.InvalidateEvent(eventID)

	session = persisted
	warnings = detected
	return
}

// UpdateSession replaces the editable fields of a session, records the change
// in the session history and returns the conflicts of the new placement.
func (s *ProgramService) UpdateSession(ctx context.Context, eventID, sessionID string, input SessionInput) (session Session, warnings []ConflictWarning, err error) {
	if s == nil {
		err = fmt.Errorf("ProgramService is nil")
		return
	}
	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateSession", "event_id", eventID, "session_id", sessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("conflicts", len(warnings)).InfoContext(ctx, "session updated")
	}()

	var existing Session
	existing, err = s.loadSession(ctx, eventID, sessionID)
	if err != nil {
		return
	}

	vErr := validateSessionInput(eventID, input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	candidate := buildSession(input)
	candidate.ID = existing.ID
	candidate.EventID = existing.EventID
	candidate.CreatedAt = existing.CreatedAt
	candidate.UpdatedAt = s.now()

	var detected []ConflictWarning
	detected, err = s.candidateWarnings(ctx, eventID, candidate, existing.ID)
	if err != nil {
		return
	}

	var persisted Session
	persisted, err = s.sessions.UpdateSession(ctx, candidate)
	if err != nil {
		err = mapRepoError(err, "session")
		return
	}
	s.cache.InvalidateEvent(eventID)

	s.recordChange(ctx, logger, existing, persisted, input.ChangeReason)

	session = persisted
	warnings = detected
	return
}

// DeleteSession removes a session of the event together with its assignments.
func (s *ProgramService) DeleteSession(ctx context.Context, eventID, sessionID string) (err error) {
	if s == nil {
		return fmt.Errorf("ProgramService is nil")
	}
	if s.sessions == nil {
		return fmt.Errorf("session repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteSession", "event_id", eventID, "session_id", sessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session deleted")
	}()

	if _, err = s.loadSession(ctx, eventID, sessionID); err != nil {
		return
	}
	if err = s.sessions.DeleteSession(ctx, sessionID); err != nil {
		err = mapRepoError(err, "session")
		return
	}
	s.cache.InvalidateEvent(eventID)
	return nil
}

// GetSession returns a session that belongs to the event.
func (s *ProgramService) GetSession(ctx context.Context, eventID, sessionID string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("ProgramService is nil")
	}
	if s.sessions == nil {
		return Session{}, fmt.Errorf("session repository not configured")
	}
	return s.loadSession(ctx, eventID, sessionID)
}

// ListSessions returns the event's sessions ordered by start time together
// with every room conflict among them.
func (s *ProgramService) ListSessions(ctx context.Context, eventID string) ([]Session, []ConflictWarning, error) {
	if s == nil {
		return nil, nil, fmt.Errorf("ProgramService is nil")
	}
	if s.sessions == nil {
		return nil, nil, fmt.Errorf("session repository not configured")
	}

	sessions, err := s.sessions.ListSessions(ctx, eventID)
	if err != nil {
		return nil, nil, mapRepoError(err, "session")
	}
	ordered := sortSessions(sessions)
	fingerprint := sessionFingerprint(ordered)

	if cached, ok := s.cache.Get(eventID, fingerprint); ok {
		return ordered, cached, nil
	}

	warnings := toConflictWarnings(scheduler.DetectConflicts(toSchedulerSessions(ordered)))
	s.cache.Store(eventID, fingerprint, warnings)
	return ordered, warnings, nil
}

// CheckCandidate reports the conflicts a session would introduce without
// persisting anything. excludeID names the session being edited, if any.
func (s *ProgramService) CheckCandidate(ctx context.Context, eventID string, input SessionInput, excludeID string) ([]ConflictWarning, error) {
	if s == nil {
		return nil, fmt.Errorf("ProgramService is nil")
	}
	if s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}

	vErr := validateSessionInput(eventID, input)
	if vErr.HasErrors() {
		return nil, vErr
	}

	candidate := buildSession(input)
	candidate.ID = strings.TrimSpace(excludeID)
	candidate.EventID = eventID
	return s.candidateWarnings(ctx, eventID, candidate, candidate.ID)
}

// SessionHistory lists the recorded edits of a session, oldest first.
func (s *ProgramService) SessionHistory(ctx context.Context, eventID, sessionID string) ([]ScheduleChange, error) {
	if s == nil {
		return nil, fmt.Errorf("ProgramService is nil")
	}
	if s.sessions == nil || s.changes == nil {
		return nil, fmt.Errorf("schedule change repository not configured")
	}
	if _, err := s.loadSession(ctx, eventID, sessionID); err != nil {
		return nil, err
	}
	changes, err := s.changes.ListScheduleChanges(ctx, sessionID)
	if err != nil {
		return nil, mapRepoError(err, "session_id")
	}
	return changes, nil
}

// AssignParticipant links a participant of the event to one of its sessions.
func (s *ProgramService) AssignParticipant(ctx context.Context, eventID, sessionID, participantID string) (assignment Assignment, err error) {
	if s == nil {
		err = fmt.Errorf("ProgramService is nil")
		return
	}
	if s.sessions == nil || s.assignments == nil || s.participants == nil {
		err = fmt.Errorf("assignment repositories not configured")
		return
	}

	logger := s.loggerWith(ctx, "AssignParticipant",
		"event_id", eventID,
		"session_id", sessionID,
		"participant_id", participantID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to assign participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("assignment_id", assignment.ID).InfoContext(ctx, "participant assigned")
	}()

	sessionID = strings.TrimSpace(sessionID)
	participantID = strings.TrimSpace(participantID)

	vErr := &ValidationError{}
	if sessionID == "" {
		vErr.add("session_id", "session is required")
	}
	if participantID == "" {
		vErr.add("participant_id", "participant is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = s.loadSession(ctx, eventID, sessionID); err != nil {
		return
	}

	var participant Participant
	participant, err = s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		err = mapRepoError(err, "participant_id")
		return
	}
	if participant.EventID != eventID {
		err = ErrNotFound
		return
	}

	candidate := Assignment{
		ID:            s.idGenerator(),
		SessionID:     sessionID,
		ParticipantID: participantID,
		CreatedAt:     s.now(),
	}

	var persisted Assignment
	persisted, err = s.assignments.CreateAssignment(ctx, candidate)
	if err != nil {
		err = mapRepoError(err, "participant_id")
		return
	}
	assignment = persisted
	return
}

// UnassignParticipant removes an assignment that belongs to the event.
func (s *ProgramService) UnassignParticipant(ctx context.Context, eventID, assignmentID string) (err error) {
	if s == nil {
		return fmt.Errorf("ProgramService is nil")
	}
	if s.sessions == nil || s.assignments == nil {
		return fmt.Errorf("assignment repositories not configured")
	}

	logger := s.loggerWith(ctx, "UnassignParticipant", "event_id", eventID, "assignment_id", assignmentID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to remove assignment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "assignment removed")
	}()

	var assignment Assignment
	assignment, err = s.assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		err = mapRepoError(err, "assignment_id")
		return
	}
	if _, err = s.loadSession(ctx, eventID, assignment.SessionID); err != nil {
		return
	}
	if err = s.assignments.DeleteAssignment(ctx, assignmentID); err != nil {
		err = mapRepoError(err, "assignment_id")
	}
	return
}

// ListAssignments returns every assignment of the event's sessions.
func (s *ProgramService) ListAssignments(ctx context.Context, eventID string) ([]Assignment, error) {
	if s == nil {
		return nil, fmt.Errorf("ProgramService is nil")
	}
	if s.assignments == nil {
		return nil, fmt.Errorf("assignment repository not configured")
	}
	assignments, err := s.assignments.ListAssignments(ctx, eventID)
	if err != nil {
		return nil, mapRepoError(err, "event_id")
	}
	return assignments, nil
}

// ProgramStats summarises the event program. Pending reminders count unsent
// assignments of reminder-enabled sessions that have not started yet.
func (s *ProgramService) ProgramStats(ctx context.Context, eventID string) (ProgramStats, error) {
	if s == nil {
		return ProgramStats{}, fmt.Errorf("ProgramService is nil")
	}
	if s.participants == nil || s.assignments == nil {
		return ProgramStats{}, fmt.Errorf("program repositories not configured")
	}

	sessions, warnings, err := s.ListSessions(ctx, eventID)
	if err != nil {
		return ProgramStats{}, err
	}
	participants, err := s.participants.ListParticipants(ctx, eventID)
	if err != nil {
		return ProgramStats{}, mapRepoError(err, "event_id")
	}
	assignments, err := s.assignments.ListAssignments(ctx, eventID)
	if err != nil {
		return ProgramStats{}, mapRepoError(err, "event_id")
	}

	now := s.now()
	tracks := make(map[string]struct{})
	upcoming := make(map[string]bool, len(sessions))
	for _, session := range sessions {
		if session.TrackID != nil {
			tracks[*session.TrackID] = struct{}{}
		}
		upcoming[session.ID] = session.ReminderEnabled && session.Start.After(now)
	}

	stats := ProgramStats{
		Sessions:     len(sessions),
		Participants: len(participants),
		Assignments:  len(assignments),
		Tracks:       len(tracks),
		Conflicts:    len(warnings),
	}
	for _, assignment := range assignments {
		if !assignment.ReminderSent && upcoming[assignment.SessionID] {
			stats.PendingReminders++
		}
	}
	return stats, nil
}

func (s *ProgramService) loadSession(ctx context.Context, eventID, sessionID string) (Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Session{}, ErrNotFound
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, mapRepoError(err, "session_id")
	}
	if session.EventID != eventID {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (s *ProgramService) candidateWarnings(ctx context.Context, eventID string, candidate Session, excludeID string) ([]ConflictWarning, error) {
	if candidate.RoomID == nil {
		return nil, nil
	}
	existing, err := s.sessions.ListSessions(ctx, eventID)
	if err != nil {
		return nil, mapRepoError(err, "session")
	}
	conflicts := scheduler.DetectConflictsForCandidate(toSchedulerSession(candidate), toSchedulerSessions(existing), excludeID)
	return toConflictWarnings(conflicts), nil
}

// recordChange appends a history entry for an update. Failures are logged and
// do not undo the update.
func (s *ProgramService) recordChange(ctx context.Context, logger *slog.Logger, before, after Session, reason string) {
	if s.changes == nil {
		return
	}
	oldValue, err := json.Marshal(snapshotSession(before))
	if err != nil {
		logger.WarnContext(ctx, "failed to encode session snapshot", "error", err)
		return
	}
	newValue, err := json.Marshal(snapshotSession(after))
	if err != nil {
		logger.WarnContext(ctx, "failed to encode session snapshot", "error", err)
		return
	}

	change := ScheduleChange{
		ID:         s.idGenerator(),
		SessionID:  after.ID,
		ChangeType: ChangeTypeUpdate,
		OldValue:   string(oldValue),
		NewValue:   string(newValue),
		Reason:     strings.TrimSpace(reason),
		CreatedAt:  s.now(),
	}
	if _, err := s.changes.CreateScheduleChange(ctx, change); err != nil {
		logger.WarnContext(ctx, "failed to record schedule change", "error", err)
	}
}

type sessionSnapshot struct {
	Title               string  `json:"title"`
	Start               string  `json:"start"`
	End                 string  `json:"end"`
	DayID               *string `json:"day_id,omitempty"`
	RoomID              *string `json:"room_id,omitempty"`
	TrackID             *string `json:"track_id,omitempty"`
	SpeakerID           *string `json:"speaker_id,omitempty"`
	Location            string  `json:"location,omitempty"`
	ReminderLeadMinutes int     `json:"reminder_lead_minutes"`
	ReminderEnabled     bool    `json:"reminder_enabled"`
}

func snapshotSession(session Session) sessionSnapshot {
	return sessionSnapshot{
		Title:               session.Title,
		Start:               session.Start.UTC().Format(time.RFC3339),
		End:                 session.End.UTC().Format(time.RFC3339),
		DayID:               session.DayID,
		RoomID:              session.RoomID,
		TrackID:             session.TrackID,
		SpeakerID:           session.SpeakerID,
		Location:            session.Location,
		ReminderLeadMinutes: session.ReminderLeadMinutes,
		ReminderEnabled:     session.ReminderEnabled,
	}
}

func validateSessionInput(eventID string, input SessionInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(eventID) == "" {
		vErr.add("event_id", "event is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start time is required")
	}
	if input.End.IsZero() {
		vErr.add("end", "end time is required")
	}
	if !input.Start.IsZero() && !input.End.IsZero() && !input.Start.Before(input.End) {
		vErr.add("end", "end time must be after start time")
	}
	if input.ReminderLeadMinutes != nil && *input.ReminderLeadMinutes < 0 {
		vErr.add("reminder_lead_minutes", "reminder lead time cannot be negative")
	}
	return vErr
}

func buildSession(input SessionInput) Session {
	session := Session{
		DayID:               normalizeOptionalString(input.DayID),
		RoomID:              normalizeOptionalString(input.RoomID),
		TrackID:             normalizeOptionalString(input.TrackID),
		SpeakerID:           normalizeOptionalString(input.SpeakerID),
		Title:               strings.TrimSpace(input.Title),
		Description:         strings.TrimSpace(input.Description),
		Location:            strings.TrimSpace(input.Location),
		SessionType:         strings.TrimSpace(input.SessionType),
		Start:               input.Start,
		End:                 input.End,
		ReminderLeadMinutes: scheduler.DefaultReminderLeadMinutes,
		ReminderEnabled:     true,
	}
	if input.ReminderLeadMinutes != nil {
		session.ReminderLeadMinutes = *input.ReminderLeadMinutes
	}
	if input.ReminderEnabled != nil {
		session.ReminderEnabled = *input.ReminderEnabled
	}
	return session
}

func sortSessions(sessions []Session) []Session {
	if len(sessions) == 0 {
		return nil
	}
	ordered := make([]Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Start.Equal(ordered[j].Start) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Start.Before(ordered[j].Start)
	})
	return ordered
}

func toSchedulerSession(session Session) scheduler.Session {
	return scheduler.Session{
		ID:                  session.ID,
		EventID:             session.EventID,
		DayID:               session.DayID,
		RoomID:              session.RoomID,
		TrackID:             session.TrackID,
		Title:               session.Title,
		Description:         session.Description,
		Location:            session.Location,
		RoomName:            session.RoomName,
		SpeakerName:         session.SpeakerName,
		Start:               session.Start,
		End:                 session.End,
		ReminderLeadMinutes: session.ReminderLeadMinutes,
		ReminderEnabled:     session.ReminderEnabled,
	}
}

func toSchedulerSessions(sessions []Session) []scheduler.Session {
	if len(sessions) == 0 {
		return nil
	}
	out := make([]scheduler.Session, len(sessions))
	for i, session := range sessions {
		out[i] = toSchedulerSession(session)
	}
	return out
}

func toConflictWarnings(conflicts []scheduler.Conflict) []ConflictWarning {
	if len(conflicts) == 0 {
		return nil
	}
	warnings := make([]ConflictWarning, len(conflicts))
	for i, conflict := range conflicts {
		warnings[i] = ConflictWarning{
			Type:           string(conflict.Type),
			Message:        conflict.Message,
			SessionID:      conflict.SessionID,
			OtherSessionID: conflict.OtherSessionID,
			RoomID:         conflict.RoomID,
		}
	}
	return warnings
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
