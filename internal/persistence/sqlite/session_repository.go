package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/example/program-scheduler/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	logger *slog.Logger
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool, logger *slog.Logger) *SessionRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		logger: logger,
	}
}

const sessionColumns = `
	s.id, s.event_id, s.program_day_id, s.room_id, s.track_id, s.speaker_id,
	s.title, s.description, s.location, s.session_type, s.start_time, s.end_time,
	s.reminder_lead_minutes, s.reminder_enabled,
	COALESCE(r.name, ''), COALESCE(sp.name, ''),
	s.created_at, s.updated_at`

const sessionFrom = `
	FROM sessions s
	LEFT JOIN rooms r ON r.id = s.room_id
	LEFT JOIN speakers sp ON sp.id = s.speaker_id`

// CreateSession inserts a new session.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" || session.EventID == "" {
		return persistence.ErrConstraintViolation
	}
	now := nowUTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = session.CreatedAt

	_, err := r.helper.Exec(ctx, `
		INSERT INTO sessions (
			id, event_id, program_day_id, room_id, track_id, speaker_id,
			title, description, location, session_type, start_time, end_time,
			reminder_lead_minutes, reminder_enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID,
		session.EventID,
		nullableString(session.DayID),
		nullableString(session.RoomID),
		nullableString(session.TrackID),
		nullableString(session.SpeakerID),
		session.Title,
		session.Description,
		session.Location,
		session.SessionType,
		formatTime(session.Start),
		formatTime(session.End),
		session.ReminderLeadMinutes,
		boolToInt(session.ReminderEnabled),
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	return r.mapper.MapError(err)
}

// UpdateSession overwrites the editable fields of an existing session.
func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return persistence.ErrNotFound
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = nowUTC()
	}

	result, err := r.helper.Exec(ctx, `
		UPDATE sessions
		SET program_day_id = ?, room_id = ?, track_id = ?, speaker_id = ?,
			title = ?, description = ?, location = ?, session_type = ?,
			start_time = ?, end_time = ?, reminder_lead_minutes = ?, reminder_enabled = ?,
			updated_at = ?
		WHERE id = ?`,
		nullableString(session.DayID),
		nullableString(session.RoomID),
		nullableString(session.TrackID),
		nullableString(session.SpeakerID),
		session.Title,
		session.Description,
		session.Location,
		session.SessionType,
		formatTime(session.Start),
		formatTime(session.End),
		session.ReminderLeadMinutes,
		boolToInt(session.ReminderEnabled),
		formatTime(session.UpdatedAt),
		session.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetSession retrieves a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	if id == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}
	row := r.helper.QueryRow(ctx, `SELECT `+sessionColumns+sessionFrom+` WHERE s.id = ?`, id)
	session, err := r.scanSession(ctx, row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}
	return session, nil
}

// ListSessions returns the sessions of an event ordered by start time.
func (r *SessionRepository) ListSessions(ctx context.Context, eventID string) ([]persistence.Session, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT `+sessionColumns+sessionFrom+` WHERE s.event_id = ? ORDER BY s.start_time ASC, s.id ASC`, eventID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		session, err := r.scanSession(ctx, rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return sessions, nil
}

// DeleteSession removes a session. Assignments and change history cascade.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	n, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// scanSession reads one row. Unparseable start or end values are left zero
// and logged so the rest of the program still loads.
func (r *SessionRepository) scanSession(ctx context.Context, row rowScanner) (persistence.Session, error) {
	var (
		session                           persistence.Session
		dayID, roomID, trackID, speakerID sql.NullString
		start, end, createdAt, updatedAt  string
		enabled                           int
	)
	if err := row.Scan(
		&session.ID,
		&session.EventID,
		&dayID,
		&roomID,
		&trackID,
		&speakerID,
		&session.Title,
		&session.Description,
		&session.Location,
		&session.SessionType,
		&start,
		&end,
		&session.ReminderLeadMinutes,
		&enabled,
		&session.RoomName,
		&session.SpeakerName,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Session{}, err
	}

	session.DayID = stringPtr(dayID)
	session.RoomID = stringPtr(roomID)
	session.TrackID = stringPtr(trackID)
	session.SpeakerID = stringPtr(speakerID)
	session.ReminderEnabled = enabled != 0

	var err error
	if session.Start, err = parseTime(start); err != nil {
		r.logger.WarnContext(ctx, "session has unparseable start time", "session_id", session.ID, "value", start)
	}
	if session.End, err = parseTime(end); err != nil {
		r.logger.WarnContext(ctx, "session has unparseable end time", "session_id", session.ID, "value", end)
	}
	session.CreatedAt, _ = parseTime(createdAt)
	session.UpdatedAt, _ = parseTime(updatedAt)
	return session, nil
}
