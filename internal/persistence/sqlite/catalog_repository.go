package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/program-scheduler/internal/persistence"
)

// CatalogRepository implements persistence.CatalogRepository using SQLite.
type CatalogRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCatalogRepository creates a new SQLite catalog repository.
func NewCatalogRepository(pool *ConnectionPool) *CatalogRepository {
	return &CatalogRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreateProgramDay inserts a program day.
func (r *CatalogRepository) CreateProgramDay(ctx context.Context, day persistence.ProgramDay) error {
	if day.ID == "" || day.EventID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO program_days (id, event_id, date, day_number, theme, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		day.ID, day.EventID, day.Date, day.DayNumber, day.Theme, formatTime(createdAtOrNow(day.CreatedAt)),
	)
	return r.mapper.MapError(err)
}

// ListProgramDays returns the days of an event in day number order.
func (r *CatalogRepository) ListProgramDays(ctx context.Context, eventID string) ([]persistence.ProgramDay, error) {
	var days []persistence.ProgramDay
	err := r.list(ctx, `
		SELECT id, event_id, date, day_number, theme, created_at
		FROM program_days WHERE event_id = ? ORDER BY day_number ASC`, eventID,
		func(row rowScanner) error {
			var day persistence.ProgramDay
			var createdAt string
			if err := row.Scan(&day.ID, &day.EventID, &day.Date, &day.DayNumber, &day.Theme, &createdAt); err != nil {
				return err
			}
			day.CreatedAt, _ = parseTime(createdAt)
			days = append(days, day)
			return nil
		})
	return days, err
}

// DeleteProgramDay removes a day. Sessions on that day become undated.
func (r *CatalogRepository) DeleteProgramDay(ctx context.Context, eventID, id string) error {
	return r.delete(ctx, "program_days", eventID, id)
}

// CreateTrack inserts a track.
func (r *CatalogRepository) CreateTrack(ctx context.Context, track persistence.Track) error {
	if track.ID == "" || track.EventID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO tracks (id, event_id, name, color, sort_order, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		track.ID, track.EventID, track.Name, track.Color, track.SortOrder, boolToInt(track.Active),
		formatTime(createdAtOrNow(track.CreatedAt)),
	)
	return r.mapper.MapError(err)
}

// ListTracks returns the tracks of an event in display order.
func (r *CatalogRepository) ListTracks(ctx context.Context, eventID string) ([]persistence.Track, error) {
	var tracks []persistence.Track
	err := r.list(ctx, `
		SELECT id, event_id, name, color, sort_order, active, created_at
		FROM tracks WHERE event_id = ? ORDER BY sort_order ASC, name ASC`, eventID,
		func(row rowScanner) error {
			var track persistence.Track
			var active int
			var createdAt string
			if err := row.Scan(&track.ID, &track.EventID, &track.Name, &track.Color, &track.SortOrder, &active, &createdAt); err != nil {
				return err
			}
			track.Active = active != 0
			track.CreatedAt, _ = parseTime(createdAt)
			tracks = append(tracks, track)
			return nil
		})
	return tracks, err
}

// DeleteTrack removes a track.
func (r *CatalogRepository) DeleteTrack(ctx context.Context, eventID, id string) error {
	return r.delete(ctx, "tracks", eventID, id)
}

// CreateRoom inserts a room.
func (r *CatalogRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.EventID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO rooms (id, event_id, name, capacity, floor, building, active, backup_room_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.EventID, room.Name, room.Capacity, room.Floor, room.Building, boolToInt(room.Active),
		nullableString(room.BackupRoomID), formatTime(createdAtOrNow(room.CreatedAt)),
	)
	return r.mapper.MapError(err)
}

// ListRooms returns the rooms of an event ordered by name.
func (r *CatalogRepository) ListRooms(ctx context.Context, eventID string) ([]persistence.Room, error) {
	var rooms []persistence.Room
	err := r.list(ctx, `
		SELECT id, event_id, name, capacity, floor, building, active, backup_room_id, created_at
		FROM rooms WHERE event_id = ? ORDER BY name ASC, id ASC`, eventID,
		func(row rowScanner) error {
			var room persistence.Room
			var active int
			var backup sql.NullString
			var createdAt string
			if err := row.Scan(&room.ID, &room.EventID, &room.Name, &room.Capacity, &room.Floor, &room.Building,
				&active, &backup, &createdAt); err != nil {
				return err
			}
			room.Active = active != 0
			room.BackupRoomID = stringPtr(backup)
			room.CreatedAt, _ = parseTime(createdAt)
			rooms = append(rooms, room)
			return nil
		})
	return rooms, err
}

// DeleteRoom removes a room. Sessions booked into it lose their room.
func (r *CatalogRepository) DeleteRoom(ctx context.Context, eventID, id string) error {
	return r.delete(ctx, "rooms", eventID, id)
}

// CreateSpeaker inserts a speaker.
func (r *CatalogRepository) CreateSpeaker(ctx context.Context, speaker persistence.Speaker) error {
	if speaker.ID == "" || speaker.EventID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO speakers (id, event_id, name, title, bio, email, phone, backup_speaker_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		speaker.ID, speaker.EventID, speaker.Name, speaker.Title, speaker.Bio, speaker.Email, speaker.Phone,
		nullableString(speaker.BackupSpeakerID), formatTime(createdAtOrNow(speaker.CreatedAt)),
	)
	return r.mapper.MapError(err)
}

// ListSpeakers returns the speakers of an event ordered by name.
func (r *CatalogRepository) ListSpeakers(ctx context.Context, eventID string) ([]persistence.Speaker, error) {
	var speakers []persistence.Speaker
	err := r.list(ctx, `
		SELECT id, event_id, name, title, bio, email, phone, backup_speaker_id, created_at
		FROM speakers WHERE event_id = ? ORDER BY name ASC, id ASC`, eventID,
		func(row rowScanner) error {
			var speaker persistence.Speaker
			var backup sql.NullString
			var createdAt string
			if err := row.Scan(&speaker.ID, &speaker.EventID, &speaker.Name, &speaker.Title, &speaker.Bio,
				&speaker.Email, &speaker.Phone, &backup, &createdAt); err != nil {
				return err
			}
			speaker.BackupSpeakerID = stringPtr(backup)
			speaker.CreatedAt, _ = parseTime(createdAt)
			speakers = append(speakers, speaker)
			return nil
		})
	return speakers, err
}

// DeleteSpeaker removes a speaker.
func (r *CatalogRepository) DeleteSpeaker(ctx context.Context, eventID, id string) error {
	return r.delete(ctx, "speakers", eventID, id)
}

// CreateContingency inserts a contingency plan.
func (r *CatalogRepository) CreateContingency(ctx context.Context, contingency persistence.Contingency) error {
	if contingency.ID == "" || contingency.EventID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO contingencies (id, event_id, type, risk_level, description, action_plan,
			backup_speaker_id, backup_room_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contingency.ID, contingency.EventID, contingency.Type, contingency.RiskLevel, contingency.Description,
		contingency.ActionPlan, nullableString(contingency.BackupSpeakerID), nullableString(contingency.BackupRoomID),
		contingency.Status, formatTime(createdAtOrNow(contingency.CreatedAt)),
	)
	return r.mapper.MapError(err)
}

// ListContingencies returns the contingency plans of an event, newest first.
func (r *CatalogRepository) ListContingencies(ctx context.Context, eventID string) ([]persistence.Contingency, error) {
	var contingencies []persistence.Contingency
	err := r.list(ctx, `
		SELECT id, event_id, type, risk_level, description, action_plan, backup_speaker_id, backup_room_id, status, created_at
		FROM contingencies WHERE event_id = ? ORDER BY created_at DESC, id ASC`, eventID,
		func(row rowScanner) error {
			var c persistence.Contingency
			var backupSpeaker, backupRoom sql.NullString
			var createdAt string
			if err := row.Scan(&c.ID, &c.EventID, &c.Type, &c.RiskLevel, &c.Description, &c.ActionPlan,
				&backupSpeaker, &backupRoom, &c.Status, &createdAt); err != nil {
				return err
			}
			c.BackupSpeakerID = stringPtr(backupSpeaker)
			c.BackupRoomID = stringPtr(backupRoom)
			c.CreatedAt, _ = parseTime(createdAt)
			contingencies = append(contingencies, c)
			return nil
		})
	return contingencies, err
}

// DeleteContingency removes a contingency plan.
func (r *CatalogRepository) DeleteContingency(ctx context.Context, eventID, id string) error {
	return r.delete(ctx, "contingencies", eventID, id)
}

func (r *CatalogRepository) list(ctx context.Context, query, eventID string, scan func(rowScanner) error) error {
	rows, err := r.helper.Query(ctx, query, eventID)
	if err != nil {
		return r.mapper.MapError(err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return r.mapper.MapError(err)
		}
	}
	return r.mapper.MapError(rows.Err())
}

// delete removes a row of the event from one of the fixed catalog tables.
// A row owned by another event counts as missing.
func (r *CatalogRepository) delete(ctx context.Context, table, eventID, id string) error {
	result, err := r.helper.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND event_id = ?`, table), id, eventID)
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

func createdAtOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return nowUTC()
	}
	return t
}
