package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/example/program-scheduler/internal/application"
)

type catalogService interface {
	CreateProgramDay(ctx context.Context, eventID string, input application.ProgramDayInput) (application.ProgramDay, error)
	ListProgramDays(ctx context.Context, eventID string) ([]application.ProgramDay, error)
	DeleteProgramDay(ctx context.Context, eventID, id string) error
	CreateTrack(ctx context.Context, eventID string, input application.TrackInput) (application.Track, error)
	ListTracks(ctx context.Context, eventID string) ([]application.Track, error)
	DeleteTrack(ctx context.Context, eventID, id string) error
	CreateRoom(ctx context.Context, eventID string, input application.RoomInput) (application.Room, error)
	ListRooms(ctx context.Context, eventID string) ([]application.Room, error)
	DeleteRoom(ctx context.Context, eventID, id string) error
	CreateSpeaker(ctx context.Context, eventID string, input application.SpeakerInput) (application.Speaker, error)
	ListSpeakers(ctx context.Context, eventID string) ([]application.Speaker, error)
	DeleteSpeaker(ctx context.Context, eventID, id string) error
	CreateContingency(ctx context.Context, eventID string, input application.ContingencyInput) (application.Contingency, error)
	ListContingencies(ctx context.Context, eventID string) ([]application.Contingency, error)
	DeleteContingency(ctx context.Context, eventID, id string) error
	CreateParticipant(ctx context.Context, eventID string, input application.ParticipantInput) (application.Participant, error)
	ListParticipants(ctx context.Context, eventID string) ([]application.Participant, error)
	DeleteParticipant(ctx context.Context, eventID, id string) error
}

// CatalogHandler serves the reference collections sessions point at.
type CatalogHandler struct {
	service   catalogService
	responder responder
	logger    *slog.Logger
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(service catalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

// RegisterRoutes mounts list, create and delete routes for every collection.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	if h == nil || h.service == nil {
		return
	}
	h.collection(r, "days", h.listDays, h.createDay, h.service.DeleteProgramDay)
	h.collection(r, "tracks", h.listTracks, h.createTrack, h.service.DeleteTrack)
	h.collection(r, "rooms", h.listRooms, h.createRoom, h.service.DeleteRoom)
	h.collection(r, "speakers", h.listSpeakers, h.createSpeaker, h.service.DeleteSpeaker)
	h.collection(r, "contingencies", h.listContingencies, h.createContingency, h.service.DeleteContingency)
	h.collection(r, "participants", h.listParticipants, h.createParticipant, h.service.DeleteParticipant)
}

func (h *CatalogHandler) collection(r chi.Router, name string, list, create http.HandlerFunc, remove func(context.Context, string, string) error) {
	r.Get("/"+name, list)
	r.Post("/"+name, create)
	r.Delete("/"+name+"/{id}", h.deleteWith(remove))
}

func (h *CatalogHandler) deleteWith(remove func(context.Context, string, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathParam(r, "id")
		if id == "" {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingID)
			return
		}
		if err := remove(r.Context(), eventIDFrom(r), id); err != nil {
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
	}
}

// respond writes a created or listed payload, mapping service errors.
func (h *CatalogHandler) respond(w http.ResponseWriter, r *http.Request, status int, payload any, err error) {
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, status, payload)
}

type dayRequest struct {
	Date      string `json:"date"`
	DayNumber int    `json:"day_number"`
	Theme     string `json:"theme"`
}

type dayDTO struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Date      string `json:"date"`
	DayNumber int    `json:"day_number"`
	Theme     string `json:"theme,omitempty"`
}

func toDayDTO(day application.ProgramDay) dayDTO {
	return dayDTO{ID: day.ID, EventID: day.EventID, Date: day.Date, DayNumber: day.DayNumber, Theme: day.Theme}
}

func (h *CatalogHandler) createDay(w http.ResponseWriter, r *http.Request) {
	var req dayRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}
	day, err := h.service.CreateProgramDay(r.Context(), eventIDFrom(r), application.ProgramDayInput{
		Date:      req.Date,
		DayNumber: req.DayNumber,
		Theme:     req.Theme,
	})
	h.respond(w, r, http.StatusCreated, toDayDTO(day), err)
}

func (h *CatalogHandler) listDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.service.ListProgramDays(r.Context(), eventIDFrom(r))
	out := make([]dayDTO, 0, len(days))
	for _, day := range days {
		out = append(out, toDayDTO(day))
	}
	h.respond(w, r, http.StatusOK, out, err)
}

type trackRequest struct {
	Name      string `json:"name"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
	Active    *bool  `json:"active"`
}

type trackDTO struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	Name      string `json:"name"`
	Color     string `json:"color,omitempty"`
	SortOrder int    `json:"sort_order"`
	Active    bool   `json:"active"`
}

func toTrackDTO(track application.Track) trackDTO {
	return trackDTO{
		ID:        track.ID,
		EventID:   track.EventID,
		Name:      track.Name,
		Color:     track.Color,
		SortOrder: track.SortOrder,
		Active:    track.Active,
	}
}

func (h *CatalogHandler) createTrack(w http.ResponseWriter, r *http.Request) {
	var req trackRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}
	track, err := h.service.CreateTrack(r.Context(), eventIDFrom(r), application.TrackInput{
		Name:      req.Name,
		Color:     req.Color,
		SortOrder: req.SortOrder,
		Active:    req.Active,
	})
	h.respond(w, r, http.StatusCreated, toTrackDTO(track), err)
}

func (h *CatalogHandler) listTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.service.ListTracks(r.Context(), eventIDFrom(r))
	out := make([]trackDTO, 0, len(tracks))
	for _, track := range tracks {
		out = append(out, toTrackDTO(track))
	}
	h.respond(w, r, http.StatusOK, out, err)
}

type roomRequest struct {
	Name         string  `json:"name"`
	Capacity     int     `json:"capacity"`
	Floor        string  `json:"floor"`
	Building     string  `json:"building"`
	Active       *bool   `json:"active"`
	BackupRoomID *string `json:"backup_room_id"`
}

type roomDTO struct {
	ID           string  `json:"id"`
	EventID      string  `json:"event_id"`
	Name         string  `json:"name"`
	Capacity     int     `json:"capacity"`
	Floor        string  `json:"floor,omitempty"`
	Building     string  `json:"building,omitempty"`
	Active       bool    `json:"active"`
	BackupRoomID *string `json:"backup_room_id,omitempty"`
}

func toRoomDTO(room application.Room) roomDTO {
	return roomDTO{
		ID:           room.ID,
		EventID:      room.EventID,
		Name:         room.Name,
		Capacity:     room.Capacity,
		Floor:        room.Floor,
		Building:     room.Building,
		Active:       room.Active,
		BackupRoomID: room.BackupRoomID,
	}
}

func (h *CatalogHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}
	room, err := h.service.CreateRoom(r.Context(), eventIDFrom(r), application.RoomInput{
		Name:         req.Name,
		Capacity:     req.Capacity,
		Floor:        req.Floor,
		Building:     req.Building,
		Active:       req.Active,
		BackupRoomID: req.BackupRoomID,
	})
	h.respond(w, r, http.StatusCreated, toRoomDTO(room), err)
}

func (h *CatalogHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.service.ListRooms(r.Context(), eventIDFrom(r))
	out := make([]roomDTO, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomDTO(room))
	}
	h.respond(w, r, http.StatusOK, out, err)
}

type speakerRequest struct {
	Name            string  `json:"name"`
	Title           string  `json:"title"`
	Bio             string  `json:"bio"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	BackupSpeakerID *string `json:"backup_speaker_id"`
}

type speakerDTO struct {
	ID              string  `json:"id"`
	EventID         string  `json:"event_id"`
	Name            string  `json:"name"`
	Title           string  `json:"title,omitempty"`
	Bio             string  `json:"bio,omitempty"`
	Email           string  `json:"email,omitempty"`
	Phone           string  `json:"phone,omitempty"`
	BackupSpeakerID *string `json:"backup_speaker_id,omitempty"`
}

func toSpeakerDTO(speaker application.Speaker) speakerDTO {
	return speakerDTO{
		ID:              speaker.ID,
		EventID:         speaker.EventID,
		Name:            speaker.Name,
		Title:           speaker.Title,
		Bio:             speaker.Bio,
		Email:           speaker.Email,
		Phone:           speaker.Phone,
		BackupSpeakerID: speaker.BackupSpeakerID,
	}
}

func (h *CatalogHandler) createSpeaker(w http.ResponseWriter, r *http.Request) {
	var req speakerRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}
	speaker, err := h.service.CreateSpeaker(r.Context(), eventIDFrom(r), application.SpeakerInput{
		Name:            req.Name,
		Title:           req.Title,
		Bio:             req.Bio,
		Email:           req.Email,
		Phone:           req.Phone,
		BackupSpeakerID: req.BackupSpeakerID,
	})
	h.respond(w, r, http.StatusCreated, toSpeakerDTO(speaker), err)
}

func (h *CatalogHandler) listSpeakers(w http.ResponseWriter, r *http.Request) {
	speakers, err := h.service.ListSpeakers(r.Context(), eventIDFrom(r))
	out := make([]speakerDTO, 0, len(speakers))
	for _, speaker := range speakers {
		out = append(out, toSpeakerDTO(speaker))
	}
	h.respond(w, r, http.StatusOK, out, err)
}

type contingencyRequest struct {
	Type            string  `json:"type"`
	RiskLevel       string  `json:"risk_level"`
	Description     string  `json:"description"`
	ActionPlan      string  `json:"action_plan"`
	BackupSpeakerID *string `json:"backup_speaker_id"`
	BackupRoomID    *string `json:"backup_room_id"`
	Status          string  `json:"status"`
}

type contingencyDTO struct {
	ID              string  `json:"id"`
	EventID         string  `json:"event_id"`
	Type            string  `json:"type"`
	RiskLevel       string  `json:"risk_level"`
	Description     string  `json:"description"`
	ActionPlan      string  `json:"action_plan,omitempty"`
	BackupSpeakerID *string `json:"backup_speaker_id,omitempty"`
	BackupRoomID    *string `json:"backup_room_id,omitempty"`
	Status          string  `json:"status"`
}

func toContingencyDTO(c application.Contingency) contingencyDTO {
	return contingencyDTO{
		ID:              c.ID,
		EventID:         c.EventID,
		Type:            c.Type,
		RiskLevel:       c.RiskLevel,
		Description:     c.Description,
		ActionPlan:      c.ActionPlan,
		BackupSpeakerID: c.BackupSpeakerID,
		BackupRoomID:    c.BackupRoomID,
		Status:          c.Status,
	}
}

func (h *CatalogHandler) createContingency(w http.ResponseWriter, r *http.Request) {
	var req contingencyRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}
	contingency, err := h.service.CreateContingency(r.Context(), eventIDFrom(r), application.ContingencyInput{
		Type:            req.Type,
		RiskLevel:       req.RiskLevel,
		Description:     req.Description,
		ActionPlan:      req.ActionPlan,
		BackupSpeakerID: req.BackupSpeakerID,
		BackupRoomID:    req.BackupRoomID,
		Status:          req.Status,
	})
	h.respond(w, r, http.StatusCreated, toContingencyDTO(contingency), err)
}

func (h *CatalogHandler) listContingencies(w http.ResponseWriter, r *http.Request) {
	contingencies, err := h.service.ListContingencies(r.Context(), eventIDFrom(r))
	out := make([]contingencyDTO, 0, len(contingencies))
	for _, c := range contingencies {
		out = append(out, toContingencyDTO(c))
	}
	h.respond(w, r, http.StatusOK, out, err)
}

type participantRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

type participantDTO struct {
	ID        string `json:"id"`
	EventID   string `json:"event_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

func toParticipantDTO(p application.Participant) participantDTO {
	return participantDTO{
		ID:        p.ID,
		EventID:   p.EventID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Phone:     p.Phone,
		Email:     p.Email,
	}
}

func (h *CatalogHandler) createParticipant(w http.ResponseWriter, r *http.Request) {
	var req participantRequest
	if !h.responder.decode(r.Context(), w, r, &req) {
		return
	}
	participant, err := h.service.CreateParticipant(r.Context(), eventIDFrom(r), application.ParticipantInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
	})
	if err == nil {
		requestLogger(r, h.logger, "catalog", "create_participant", "participant_id", participant.ID).
			DebugContext(r.Context(), "participant registered")
	}
	h.respond(w, r, http.StatusCreated, toParticipantDTO(participant), err)
}

func (h *CatalogHandler) listParticipants(w http.ResponseWriter, r *http.Request) {
	participants, err := h.service.ListParticipants(r.Context(), eventIDFrom(r))
	out := make([]participantDTO, 0, len(participants))
	for _, p := range participants {
		out = append(out, toParticipantDTO(p))
	}
	h.respond(w, r, http.StatusOK, out, err)
}
