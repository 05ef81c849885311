package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/program-scheduler/internal/application"
	"github.com/example/program-scheduler/internal/persistence"
	"github.com/example/program-scheduler/internal/scheduler"
)

// DefaultEventID is the event every fixture belongs to unless overridden.
const DefaultEventID = "event-001"

var (
	sessionCounter     uint64
	participantCounter uint64
	roomCounter        uint64
)

var referenceTime = time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Session fixtures -----------------------------

// SessionFixture represents a deterministic program session.
type SessionFixture struct {
	ID                  string
	EventID             string
	DayID               *string
	RoomID              *string
	TrackID             *string
	Title               string
	Description         string
	Location            string
	Start               time.Time
	End                 time.Time
	ReminderLeadMinutes int
	ReminderEnabled     bool
	CreatedAt           time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a one hour session starting two hours after the
// reference time, with reminders enabled 15 minutes ahead.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	start := referenceTime.Add(2 * time.Hour)
	fixture := SessionFixture{
		ID:                  fmt.Sprintf("session-%03d", idx),
		EventID:             DefaultEventID,
		Title:               fmt.Sprintf("Session %03d", idx),
		Start:               start,
		End:                 start.Add(time.Hour),
		ReminderLeadMinutes: scheduler.DefaultReminderLeadMinutes,
		ReminderEnabled:     true,
		CreatedAt:           referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionEvent moves the session to another event.
func WithSessionEvent(eventID string) SessionOption {
	return func(f *SessionFixture) {
		f.EventID = eventID
	}
}

// WithSessionTitle overrides the generated title.
func WithSessionTitle(title string) SessionOption {
	return func(f *SessionFixture) {
		f.Title = title
	}
}

// WithSessionDay places the session on a program day.
func WithSessionDay(dayID string) SessionOption {
	return func(f *SessionFixture) {
		f.DayID = &dayID
	}
}

// WithSessionRoom places the session in a room.
func WithSessionRoom(roomID string) SessionOption {
	return func(f *SessionFixture) {
		f.RoomID = &roomID
	}
}

// WithSessionTrack assigns the session to a track.
func WithSessionTrack(trackID string) SessionOption {
	return func(f *SessionFixture) {
		f.TrackID = &trackID
	}
}

// WithSessionLocation sets the free text location.
func WithSessionLocation(location string) SessionOption {
	return func(f *SessionFixture) {
		f.Location = location
	}
}

// WithSessionTimes sets the session interval.
func WithSessionTimes(start, end time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.Start = start
		f.End = end
	}
}

// WithSessionReminder sets the reminder lead time and flag.
func WithSessionReminder(leadMinutes int, enabled bool) SessionOption {
	return func(f *SessionFixture) {
		f.ReminderLeadMinutes = leadMinutes
		f.ReminderEnabled = enabled
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:                  f.ID,
		EventID:             f.EventID,
		DayID:               cloneString(f.DayID),
		RoomID:              cloneString(f.RoomID),
		TrackID:             cloneString(f.TrackID),
		Title:               f.Title,
		Description:         f.Description,
		Location:            f.Location,
		Start:               f.Start,
		End:                 f.End,
		ReminderLeadMinutes: f.ReminderLeadMinutes,
		ReminderEnabled:     f.ReminderEnabled,
		CreatedAt:           f.CreatedAt,
		UpdatedAt:           f.CreatedAt,
	}
}

// Input returns the fixture as an application.SessionInput.
func (f SessionFixture) Input() application.SessionInput {
	lead := f.ReminderLeadMinutes
	enabled := f.ReminderEnabled
	return application.SessionInput{
		DayID:               cloneString(f.DayID),
		RoomID:              cloneString(f.RoomID),
		TrackID:             cloneString(f.TrackID),
		Title:               f.Title,
		Description:         f.Description,
		Location:            f.Location,
		Start:               f.Start,
		End:                 f.End,
		ReminderLeadMinutes: &lead,
		ReminderEnabled:     &enabled,
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:                  f.ID,
		EventID:             f.EventID,
		DayID:               cloneString(f.DayID),
		RoomID:              cloneString(f.RoomID),
		TrackID:             cloneString(f.TrackID),
		Title:               f.Title,
		Description:         f.Description,
		Location:            f.Location,
		Start:               f.Start,
		End:                 f.End,
		ReminderLeadMinutes: f.ReminderLeadMinutes,
		ReminderEnabled:     f.ReminderEnabled,
		CreatedAt:           f.CreatedAt,
		UpdatedAt:           f.CreatedAt,
	}
}

// Scheduler returns the fixture as a scheduler.Session value.
func (f SessionFixture) Scheduler() scheduler.Session {
	return scheduler.Session{
		ID:                  f.ID,
		EventID:             f.EventID,
		DayID:               cloneString(f.DayID),
		RoomID:              cloneString(f.RoomID),
		TrackID:             cloneString(f.TrackID),
		Title:               f.Title,
		Description:         f.Description,
		Location:            f.Location,
		Start:               f.Start,
		End:                 f.End,
		ReminderLeadMinutes: f.ReminderLeadMinutes,
		ReminderEnabled:     f.ReminderEnabled,
	}
}

// --------------------------- Participant fixtures ---------------------------

// ParticipantFixture represents a deterministic attendee.
type ParticipantFixture struct {
	ID        string
	EventID   string
	FirstName string
	LastName  string
	Phone     string
	Email     string
	CreatedAt time.Time
}

// ParticipantOption configures the generated participant fixture.
type ParticipantOption func(*ParticipantFixture)

// NewParticipantFixture returns a deterministic participant fixture.
func NewParticipantFixture(opts ...ParticipantOption) ParticipantFixture {
	idx := atomic.AddUint64(&participantCounter, 1)
	fixture := ParticipantFixture{
		ID:        fmt.Sprintf("participant-%03d", idx),
		EventID:   DefaultEventID,
		FirstName: fmt.Sprintf("Guest%03d", idx),
		LastName:  "Tester",
		Phone:     fmt.Sprintf("050-000-%04d", idx),
		Email:     fmt.Sprintf("guest%03d@example.com", idx),
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithParticipantID overrides the generated participant ID.
func WithParticipantID(id string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.ID = id
	}
}

// WithParticipantEvent moves the participant to another event.
func WithParticipantEvent(eventID string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.EventID = eventID
	}
}

// WithParticipantName sets the participant's names.
func WithParticipantName(first, last string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.FirstName = first
		f.LastName = last
	}
}

// WithParticipantPhone sets the participant's phone number.
func WithParticipantPhone(phone string) ParticipantOption {
	return func(f *ParticipantFixture) {
		f.Phone = phone
	}
}

// Application returns the fixture as an application.Participant value.
func (f ParticipantFixture) Application() application.Participant {
	return application.Participant{
		ID:        f.ID,
		EventID:   f.EventID,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Phone:     f.Phone,
		Email:     f.Email,
		CreatedAt: f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Participant value.
func (f ParticipantFixture) Persistence() persistence.Participant {
	return persistence.Participant{
		ID:        f.ID,
		EventID:   f.EventID,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Phone:     f.Phone,
		Email:     f.Email,
		CreatedAt: f.CreatedAt,
	}
}

// ------------------------------ Room fixtures ------------------------------

// RoomFixture represents a deterministic venue room.
type RoomFixture struct {
	ID        string
	EventID   string
	Name      string
	Capacity  int
	Floor     string
	Building  string
	CreatedAt time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("room-%03d", idx),
		EventID:   DefaultEventID,
		Name:      fmt.Sprintf("Hall %03d", idx),
		Capacity:  int(50 + 10*idx),
		Floor:     "1",
		Building:  "Main",
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		EventID:   f.EventID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		Floor:     f.Floor,
		Building:  f.Building,
		Active:    true,
		CreatedAt: f.CreatedAt,
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:        f.ID,
		EventID:   f.EventID,
		Name:      f.Name,
		Capacity:  f.Capacity,
		Floor:     f.Floor,
		Building:  f.Building,
		Active:    true,
		CreatedAt: f.CreatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
