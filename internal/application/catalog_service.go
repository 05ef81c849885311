package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"regexp"
	"strings"
	"time"
)

// Contingency risk levels and statuses accepted by the catalog.
const (
	RiskLevelLow      = "low"
	RiskLevelMedium   = "medium"
	RiskLevelHigh     = "high"
	RiskLevelCritical = "critical"

	ContingencyStatusReady     = "ready"
	ContingencyStatusActivated = "activated"
	ContingencyStatusResolved  = "resolved"
)

const dayDateLayout = "2006-01-02"

var (
	hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	phoneDigits     = regexp.MustCompile(`\d`)
)

// CatalogService manages the supporting program collections and participants.
type CatalogService struct {
	catalog      CatalogRepository
	participants ParticipantRepository
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewCatalogService constructs a catalog service with the provided dependencies.
func NewCatalogService(catalog CatalogRepository, participants ParticipantRepository, idGenerator func() string, now func() time.Time) *CatalogService {
	return NewCatalogServiceWithLogger(catalog, participants, idGenerator, now, nil)
}

// NewCatalogServiceWithLogger constructs a catalog service with a specified logger.
func NewCatalogServiceWithLogger(catalog CatalogRepository, participants ParticipantRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CatalogService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CatalogService{
		catalog:      catalog,
		participants: participants,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *CatalogService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CatalogService", operation, attrs...)
}

func (s *CatalogService) ready() error {
	if s == nil {
		return fmt.Errorf("CatalogService is nil")
	}
	if s.catalog == nil {
		return fmt.Errorf("catalog repository not configured")
	}
	return nil
}

// logResult emits the outcome of a write operation.
func (s *CatalogService) logResult(ctx context.Context, logger *slog.Logger, err error, message, id string) {
	if err != nil {
		logger.ErrorContext(ctx, "failed to "+message, "error", err, "error_kind", ErrorKind(err))
		return
	}
	logger.With("id", id).InfoContext(ctx, message)
}

// CreateProgramDay validates and stores a program day.
func (s *CatalogService) CreateProgramDay(ctx context.Context, eventID string, input ProgramDayInput) (day ProgramDay, err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "CreateProgramDay", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "create program day", day.ID) }()

	vErr := requireEvent(eventID)
	date := strings.TrimSpace(input.Date)
	if _, parseErr := time.Parse(dayDateLayout, date); parseErr != nil {
		vErr.add("date", "date must use YYYY-MM-DD")
	}
	if input.DayNumber <= 0 {
		vErr.add("day_number", "day number must be positive")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	day, err = s.catalog.CreateProgramDay(ctx, ProgramDay{
		ID:        s.idGenerator(),
		EventID:   eventID,
		Date:      date,
		DayNumber: input.DayNumber,
		Theme:     strings.TrimSpace(input.Theme),
		CreatedAt: s.now(),
	})
	err = mapRepoError(err, "day_number")
	return
}

// ListProgramDays returns the event's days.
func (s *CatalogService) ListProgramDays(ctx context.Context, eventID string) ([]ProgramDay, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	days, err := s.catalog.ListProgramDays(ctx, eventID)
	return days, mapRepoError(err, "event_id")
}

// DeleteProgramDay removes a day; its sessions keep running without a day.
func (s *CatalogService) DeleteProgramDay(ctx context.Context, eventID, id string) (err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "DeleteProgramDay", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "delete program day", id) }()
	err = mapRepoError(s.catalog.DeleteProgramDay(ctx, eventID, id), "id")
	return
}

// CreateTrack validates and stores a track. Tracks are active unless stated otherwise.
func (s *CatalogService) CreateTrack(ctx context.Context, eventID string, input TrackInput) (track Track, err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "CreateTrack", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "create track", track.ID) }()

	vErr := requireEvent(eventID)
	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	}
	color := strings.TrimSpace(input.Color)
	if color != "" && !hexColorPattern.MatchString(color) {
		vErr.add("color", "color must be a #RRGGBB value")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	track, err = s.catalog.CreateTrack(ctx, Track{
		ID:        s.idGenerator(),
		EventID:   eventID,
		Name:      name,
		Color:     color,
		SortOrder: input.SortOrder,
		Active:    boolOrDefault(input.Active, true),
		CreatedAt: s.now(),
	})
	err = mapRepoError(err, "name")
	return
}

// ListTracks returns the event's tracks.
func (s *CatalogService) ListTracks(ctx context.Context, eventID string) ([]Track, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	tracks, err := s.catalog.ListTracks(ctx, eventID)
	return tracks, mapRepoError(err, "event_id")
}

// DeleteTrack removes a track.
func (s *CatalogService) DeleteTrack(ctx context.Context, eventID, id string) (err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "DeleteTrack", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "delete track", id) }()
	err = mapRepoError(s.catalog.DeleteTrack(ctx, eventID, id), "id")
	return
}

// CreateRoom validates and stores a room.
func (s *CatalogService) CreateRoom(ctx context.Context, eventID string, input RoomInput) (room Room, err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "CreateRoom", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "create room", room.ID) }()

	vErr := requireEvent(eventID)
	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity < 0 {
		vErr.add("capacity", "capacity cannot be negative")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	room, err = s.catalog.CreateRoom(ctx, Room{
		ID:           s.idGenerator(),
		EventID:      eventID,
		Name:         name,
		Capacity:     input.Capacity,
		Floor:        strings.TrimSpace(input.Floor),
		Building:     strings.TrimSpace(input.Building),
		Active:       boolOrDefault(input.Active, true),
		BackupRoomID: normalizeOptionalString(input.BackupRoomID),
		CreatedAt:    s.now(),
	})
	err = mapRepoError(err, "backup_room_id")
	return
}

// ListRooms returns the event's rooms.
func (s *CatalogService) ListRooms(ctx context.Context, eventID string) ([]Room, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rooms, err := s.catalog.ListRooms(ctx, eventID)
	return rooms, mapRepoError(err, "event_id")
}

// DeleteRoom removes a room; sessions held there lose their room.
func (s *CatalogService) DeleteRoom(ctx context.Context, eventID, id string) (err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "DeleteRoom", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "delete room", id) }()
	err = mapRepoError(s.catalog.DeleteRoom(ctx, eventID, id), "id")
	return
}

// CreateSpeaker validates and stores a speaker.
func (s *CatalogService) CreateSpeaker(ctx context.Context, eventID string, input SpeakerInput) (speaker Speaker, err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "CreateSpeaker", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "create speaker", speaker.ID) }()

	vErr := requireEvent(eventID)
	name := strings.TrimSpace(input.Name)
	if name == "" {
		vErr.add("name", "name is required")
	}
	email := strings.TrimSpace(input.Email)
	validateEmail(vErr, email)
	phone := strings.TrimSpace(input.Phone)
	validatePhone(vErr, phone)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	speaker, err = s.catalog.CreateSpeaker(ctx, Speaker{
		ID:              s.idGenerator(),
		EventID:         eventID,
		Name:            name,
		Title:           strings.TrimSpace(input.Title),
		Bio:             strings.TrimSpace(input.Bio),
		Email:           email,
		Phone:           phone,
		BackupSpeakerID: normalizeOptionalString(input.BackupSpeakerID),
		CreatedAt:       s.now(),
	})
	err = mapRepoError(err, "backup_speaker_id")
	return
}

// ListSpeakers returns the event's speakers.
func (s *CatalogService) ListSpeakers(ctx context.Context, eventID string) ([]Speaker, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	speakers, err := s.catalog.ListSpeakers(ctx, eventID)
	return speakers, mapRepoError(err, "event_id")
}

// DeleteSpeaker removes a speaker.
func (s *CatalogService) DeleteSpeaker(ctx context.Context, eventID, id string) (err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "DeleteSpeaker", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "delete speaker", id) }()
	err = mapRepoError(s.catalog.DeleteSpeaker(ctx, eventID, id), "id")
	return
}

// CreateContingency validates and stores a contingency plan. Risk level
// defaults to medium and status to ready.
func (s *CatalogService) CreateContingency(ctx context.Context, eventID string, input ContingencyInput) (contingency Contingency, err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "CreateContingency", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "create contingency", contingency.ID) }()

	vErr := requireEvent(eventID)
	kind := strings.TrimSpace(input.Type)
	if kind == "" {
		vErr.add("type", "type is required")
	}
	description := strings.TrimSpace(input.Description)
	if description == "" {
		vErr.add("description", "description is required")
	}
	risk := strings.ToLower(strings.TrimSpace(input.RiskLevel))
	switch risk {
	case "":
		risk = RiskLevelMedium
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical:
	default:
		vErr.add("risk_level", "risk level must be low, medium, high or critical")
	}
	status := strings.ToLower(strings.TrimSpace(input.Status))
	switch status {
	case "":
		status = ContingencyStatusReady
	case ContingencyStatusReady, ContingencyStatusActivated, ContingencyStatusResolved:
	default:
		vErr.add("status", "status must be ready, activated or resolved")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	contingency, err = s.catalog.CreateContingency(ctx, Contingency{
		ID:              s.idGenerator(),
		EventID:         eventID,
		Type:            kind,
		RiskLevel:       risk,
		Description:     description,
		ActionPlan:      strings.TrimSpace(input.ActionPlan),
		BackupSpeakerID: normalizeOptionalString(input.BackupSpeakerID),
		BackupRoomID:    normalizeOptionalString(input.BackupRoomID),
		Status:          status,
		CreatedAt:       s.now(),
	})
	err = mapRepoError(err, "type")
	return
}

// ListContingencies returns the event's contingency plans.
func (s *CatalogService) ListContingencies(ctx context.Context, eventID string) ([]Contingency, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	contingencies, err := s.catalog.ListContingencies(ctx, eventID)
	return contingencies, mapRepoError(err, "event_id")
}

// DeleteContingency removes a contingency plan.
func (s *CatalogService) DeleteContingency(ctx context.Context, eventID, id string) (err error) {
	if err = s.ready(); err != nil {
		return
	}
	logger := s.loggerWith(ctx, "DeleteContingency", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "delete contingency", id) }()
	err = mapRepoError(s.catalog.DeleteContingency(ctx, eventID, id), "id")
	return
}

// CreateParticipant validates and stores an attendee.
func (s *CatalogService) CreateParticipant(ctx context.Context, eventID string, input ParticipantInput) (participant Participant, err error) {
	if s == nil {
		err = fmt.Errorf("CatalogService is nil")
		return
	}
	if s.participants == nil {
		err = fmt.Errorf("participant repository not configured")
		return
	}
	logger := s.loggerWith(ctx, "CreateParticipant", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "create participant", participant.ID) }()

	vErr := requireEvent(eventID)
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" && last == "" {
		vErr.add("first_name", "a first or last name is required")
	}
	phone := strings.TrimSpace(input.Phone)
	validatePhone(vErr, phone)
	email := strings.TrimSpace(input.Email)
	validateEmail(vErr, email)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	participant, err = s.participants.CreateParticipant(ctx, Participant{
		ID:        s.idGenerator(),
		EventID:   eventID,
		FirstName: first,
		LastName:  last,
		Phone:     phone,
		Email:     email,
		CreatedAt: s.now(),
	})
	err = mapRepoError(err, "phone")
	return
}

// ListParticipants returns the event's attendees.
func (s *CatalogService) ListParticipants(ctx context.Context, eventID string) ([]Participant, error) {
	if s == nil {
		return nil, fmt.Errorf("CatalogService is nil")
	}
	if s.participants == nil {
		return nil, fmt.Errorf("participant repository not configured")
	}
	participants, err := s.participants.ListParticipants(ctx, eventID)
	return participants, mapRepoError(err, "event_id")
}

// DeleteParticipant removes an attendee together with their assignments.
func (s *CatalogService) DeleteParticipant(ctx context.Context, eventID, id string) (err error) {
	if s == nil {
		return fmt.Errorf("CatalogService is nil")
	}
	if s.participants == nil {
		return fmt.Errorf("participant repository not configured")
	}
	logger := s.loggerWith(ctx, "DeleteParticipant", "event_id", eventID)
	defer func() { s.logResult(ctx, logger, err, "delete participant", id) }()
	err = mapRepoError(s.participants.DeleteParticipant(ctx, eventID, id), "id")
	return
}

func requireEvent(eventID string) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(eventID) == "" {
		vErr.add("event_id", "event is required")
	}
	return vErr
}

func validateEmail(vErr *ValidationError, email string) {
	if email == "" {
		return
	}
	if _, err := mail.ParseAddress(email); err != nil {
		vErr.add("email", "email address is invalid")
	}
}

// validatePhone accepts any formatting as long as enough digits are present
// for the delivery client to address the number.
func validatePhone(vErr *ValidationError, phone string) {
	if phone == "" {
		return
	}
	if len(phoneDigits.FindAllString(phone, -1)) < 9 {
		vErr.add("phone", "phone number must contain at least 9 digits")
	}
}

func boolOrDefault(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
