package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/program-scheduler/internal/application"
)

type programService interface {
	CreateSession(ctx context.Context, eventID string, input application.SessionInput) (application.Session, []application.ConflictWarning, error)
	UpdateSession(ctx context.Context, eventID, sessionID string, input application.SessionInput) (application.Session, []application.ConflictWarning, error)
	DeleteSession(ctx context.Context, eventID, sessionID string) error
	GetSession(ctx context.Context, eventID, sessionID string) (application.Session, error)
	ListSessions(ctx context.Context, eventID string) ([]application.Session, []application.ConflictWarning, error)
	CheckCandidate(ctx context.Context, eventID string, input application.SessionInput, excludeID string) ([]application.ConflictWarning, error)
	SessionHistory(ctx context.Context, eventID, sessionID string) ([]application.ScheduleChange, error)
	AssignParticipant(ctx context.Context, eventID, sessionID, participantID string) (application.Assignment, error)
	UnassignParticipant(ctx context.Context, eventID, assignmentID string) error
	ListAssignments(ctx context.Context, eventID string) ([]application.Assignment, error)
	ProgramStats(ctx context.Context, eventID string) (application.ProgramStats, error)
}

// ProgramHandler serves sessions, conflicts, assignments and stats.
type ProgramHandler struct {
	service   programService
	responder responder
	logger    *slog.Logger
}

// NewProgramHandler constructs a ProgramHandler.
func NewProgramHandler(service programService, logger *slog.Logger) *ProgramHandler {
	return &ProgramHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// RegisterRoutes mounts the program routes on an event scoped router.
func (h *ProgramHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sessions", h.ListSessions)
	r.Post("/sessions", h.CreateSession)
	r.Post("/sessions/check", h.CheckCandidate)
	r.Get("/sessions/{sessionID}", h.GetSession)
	r.Put("/sessions/{sessionID}", h.UpdateSession)
	r.Delete("/sessions/{sessionID}", h.DeleteSession)
	r.Get("/sessions/{sessionID}/changes", h.SessionHistory)
	r.Get("/conflicts", h.ListConflicts)
	r.Get("/assignments", h.ListAssignments)
	r.Post("/assignments", h.CreateAssignment)
	r.Delete("/assignments/{assignmentID}", h.DeleteAssignment)
	r.Get("/stats", h.Stats)
}

func (h *ProgramHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *ProgramHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	ctx := r.Context()

	var req sessionRequest
	if !h.responder.decode(ctx, w, r, &req) {
		return
	}
	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(ctx, w, vErr)
		return
	}

	session, warnings, err := h.service.CreateSession(ctx, eventIDFrom(r), input)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	if len(warnings) > 0 {
		requestLogger(r, h.logger, "program", "create_session", "session_id", session.ID).
			InfoContext(ctx, "session stored with conflicts", "conflicts", len(warnings))
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, sessionResponse{
		Session:  toSessionDTO(session),
		Warnings: toWarningDTOs(warnings),
	})
}

func (h *ProgramHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	ctx := r.Context()

	sessionID := pathParam(r, "sessionID")
	var req sessionRequest
	if !h.responder.decode(ctx, w, r, &req) {
		return
	}
	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(ctx, w, vErr)
		return
	}

	session, warnings, err := h.service.UpdateSession(ctx, eventIDFrom(r), sessionID, input)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, sessionResponse{
		Session:  toSessionDTO(session),
		Warnings: toWarningDTOs(warnings),
	})
}

func (h *ProgramHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.DeleteSession(r.Context(), eventIDFrom(r), pathParam(r, "sessionID")); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ProgramHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	session, err := h.service.GetSession(r.Context(), eventIDFrom(r), pathParam(r, "sessionID"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSessionDTO(session))
}

func (h *ProgramHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	sessions, warnings, err := h.service.ListSessions(r.Context(), eventIDFrom(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		dtos = append(dtos, toSessionDTO(session))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{
		Sessions: dtos,
		Warnings: toWarningDTOs(warnings),
	})
}

func (h *ProgramHandler) CheckCandidate(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	ctx := r.Context()

	var req checkRequest
	if !h.responder.decode(ctx, w, r, &req) {
		return
	}
	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(ctx, w, vErr)
		return
	}

	warnings, err := h.service.CheckCandidate(ctx, eventIDFrom(r), input, strings.TrimSpace(req.ExcludeID))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, warningsResponse{Warnings: toWarningDTOs(warnings)})
}

func (h *ProgramHandler) ListConflicts(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	_, warnings, err := h.service.ListSessions(r.Context(), eventIDFrom(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, warningsResponse{Warnings: toWarningDTOs(warnings)})
}

func (h *ProgramHandler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	changes, err := h.service.SessionHistory(r.Context(), eventIDFrom(r), pathParam(r, "sessionID"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]scheduleChangeDTO, 0, len(changes))
	for _, change := range changes {
		dtos = append(dtos, scheduleChangeDTO{
			ID:         change.ID,
			SessionID:  change.SessionID,
			ChangeType: change.ChangeType,
			OldValue:   change.OldValue,
			NewValue:   change.NewValue,
			Reason:     change.Reason,
			CreatedAt:  change.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *ProgramHandler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	ctx := r.Context()

	var req assignmentRequest
	if !h.responder.decode(ctx, w, r, &req) {
		return
	}
	assignment, err := h.service.AssignParticipant(ctx, eventIDFrom(r), req.SessionID, req.ParticipantID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusCreated, toAssignmentDTO(assignment))
}

func (h *ProgramHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	if err := h.service.UnassignParticipant(r.Context(), eventIDFrom(r), pathParam(r, "assignmentID")); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ProgramHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	assignments, err := h.service.ListAssignments(r.Context(), eventIDFrom(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]assignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		dtos = append(dtos, toAssignmentDTO(assignment))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dtos)
}

func (h *ProgramHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	stats, err := h.service.ProgramStats(r.Context(), eventIDFrom(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, statsDTO{
		Sessions:         stats.Sessions,
		Participants:     stats.Participants,
		Assignments:      stats.Assignments,
		Tracks:           stats.Tracks,
		PendingReminders: stats.PendingReminders,
		Conflicts:        stats.Conflicts,
	})
}

type sessionRequest struct {
	DayID               *string `json:"day_id"`
	RoomID              *string `json:"room_id"`
	TrackID             *string `json:"track_id"`
	SpeakerID           *string `json:"speaker_id"`
	Title               string  `json:"title"`
	Description         string  `json:"description"`
	Location            string  `json:"location"`
	SessionType         string  `json:"session_type"`
	Start               string  `json:"start"`
	End                 string  `json:"end"`
	ReminderLeadMinutes *int    `json:"reminder_lead_minutes"`
	ReminderEnabled     *bool   `json:"reminder_enabled"`
	ChangeReason        string  `json:"change_reason"`
}

// toInput parses the timestamps. Empty values pass through as zero times so
// the service reports them as missing.
func (r sessionRequest) toInput() (application.SessionInput, *application.ValidationError) {
	vErr := &application.ValidationError{FieldErrors: map[string]string{}}
	start := parseTimestamp(r.Start, "start", vErr)
	end := parseTimestamp(r.End, "end", vErr)
	if vErr.HasErrors() {
		return application.SessionInput{}, vErr
	}
	return application.SessionInput{
		DayID:               r.DayID,
		RoomID:              r.RoomID,
		TrackID:             r.TrackID,
		SpeakerID:           r.SpeakerID,
		Title:               r.Title,
		Description:         r.Description,
		Location:            r.Location,
		SessionType:         r.SessionType,
		Start:               start,
		End:                 end,
		ReminderLeadMinutes: r.ReminderLeadMinutes,
		ReminderEnabled:     r.ReminderEnabled,
		ChangeReason:        r.ChangeReason,
	}, nil
}

func parseTimestamp(value, field string, vErr *application.ValidationError) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		vErr.FieldErrors[field] = "must be an RFC 3339 timestamp"
		return time.Time{}
	}
	return t
}

type checkRequest struct {
	sessionRequest
	ExcludeID string `json:"exclude_id"`
}

type assignmentRequest struct {
	SessionID     string `json:"session_id"`
	ParticipantID string `json:"participant_id"`
}

type sessionResponse struct {
	Session  sessionDTO           `json:"session"`
	Warnings []conflictWarningDTO `json:"warnings"`
}

type listSessionsResponse struct {
	Sessions []sessionDTO         `json:"sessions"`
	Warnings []conflictWarningDTO `json:"warnings"`
}

type warningsResponse struct {
	Warnings []conflictWarningDTO `json:"warnings"`
}

type sessionDTO struct {
	ID                  string  `json:"id"`
	EventID             string  `json:"event_id"`
	DayID               *string `json:"day_id,omitempty"`
	RoomID              *string `json:"room_id,omitempty"`
	TrackID             *string `json:"track_id,omitempty"`
	SpeakerID           *string `json:"speaker_id,omitempty"`
	Title               string  `json:"title"`
	Description         string  `json:"description,omitempty"`
	Location            string  `json:"location,omitempty"`
	SessionType         string  `json:"session_type,omitempty"`
	Start               string  `json:"start"`
	End                 string  `json:"end"`
	ReminderLeadMinutes int     `json:"reminder_lead_minutes"`
	ReminderEnabled     bool    `json:"reminder_enabled"`
	RoomName            string  `json:"room_name,omitempty"`
	SpeakerName         string  `json:"speaker_name,omitempty"`
	CreatedAt           string  `json:"created_at,omitempty"`
	UpdatedAt           string  `json:"updated_at,omitempty"`
}

func toSessionDTO(session application.Session) sessionDTO {
	return sessionDTO{
		ID:                  session.ID,
		EventID:             session.EventID,
		DayID:               session.DayID,
		RoomID:              session.RoomID,
		TrackID:             session.TrackID,
		SpeakerID:           session.SpeakerID,
		Title:               session.Title,
		Description:         session.Description,
		Location:            session.Location,
		SessionType:         session.SessionType,
		Start:               formatTimestamp(session.Start),
		End:                 formatTimestamp(session.End),
		ReminderLeadMinutes: session.ReminderLeadMinutes,
		ReminderEnabled:     session.ReminderEnabled,
		RoomName:            session.RoomName,
		SpeakerName:         session.SpeakerName,
		CreatedAt:           formatTimestamp(session.CreatedAt),
		UpdatedAt:           formatTimestamp(session.UpdatedAt),
	}
}

// formatTimestamp renders zero times, such as unparseable stored values, as "".
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

type conflictWarningDTO struct {
	Type           string  `json:"type"`
	Message        string  `json:"message"`
	SessionID      string  `json:"session_id"`
	OtherSessionID string  `json:"other_session_id"`
	RoomID         *string `json:"room_id,omitempty"`
}

func toWarningDTOs(warnings []application.ConflictWarning) []conflictWarningDTO {
	out := make([]conflictWarningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, conflictWarningDTO{
			Type:           warning.Type,
			Message:        warning.Message,
			SessionID:      warning.SessionID,
			OtherSessionID: warning.OtherSessionID,
			RoomID:         warning.RoomID,
		})
	}
	return out
}

type assignmentDTO struct {
	ID             string `json:"id"`
	SessionID      string `json:"session_id"`
	ParticipantID  string `json:"participant_id"`
	ReminderSent   bool   `json:"reminder_sent"`
	ReminderSentAt string `json:"reminder_sent_at,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}

func toAssignmentDTO(assignment application.Assignment) assignmentDTO {
	dto := assignmentDTO{
		ID:            assignment.ID,
		SessionID:     assignment.SessionID,
		ParticipantID: assignment.ParticipantID,
		ReminderSent:  assignment.ReminderSent,
		CreatedAt:     formatTimestamp(assignment.CreatedAt),
	}
	if assignment.ReminderSentAt != nil {
		dto.ReminderSentAt = formatTimestamp(*assignment.ReminderSentAt)
	}
	return dto
}

type scheduleChangeDTO struct {
	ID         string `json:"id"`
	SessionID  string `json:"session_id"`
	ChangeType string `json:"change_type"`
	OldValue   string `json:"old_value"`
	NewValue   string `json:"new_value"`
	Reason     string `json:"reason,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type statsDTO struct {
	Sessions         int `json:"sessions"`
	Participants     int `json:"participants"`
	Assignments      int `json:"assignments"`
	Tracks           int `json:"tracks"`
	PendingReminders int `json:"pending_reminders"`
	Conflicts        int `json:"conflicts"`
}
