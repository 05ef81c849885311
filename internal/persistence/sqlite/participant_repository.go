package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/program-scheduler/internal/persistence"
)

// ParticipantRepository implements persistence.ParticipantRepository using SQLite.
type ParticipantRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewParticipantRepository creates a new SQLite participant repository.
func NewParticipantRepository(pool *ConnectionPool) *ParticipantRepository {
	return &ParticipantRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

const participantColumns = `id, event_id, first_name, last_name, phone, email, created_at`

// CreateParticipant inserts a new participant.
func (r *ParticipantRepository) CreateParticipant(ctx context.Context, participant persistence.Participant) error {
	if participant.ID == "" || participant.EventID == "" {
		return persistence.ErrConstraintViolation
	}
	if participant.CreatedAt.IsZero() {
		participant.CreatedAt = nowUTC()
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO participants (`+participantColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		participant.ID,
		participant.EventID,
		participant.FirstName,
		participant.LastName,
		participant.Phone,
		participant.Email,
		formatTime(participant.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// GetParticipant retrieves a participant by ID.
func (r *ParticipantRepository) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = ?`, id)
	participant, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Participant{}, persistence.ErrNotFound
		}
		return persistence.Participant{}, r.mapper.MapError(err)
	}
	return participant, nil
}

// ListParticipants returns the participants of an event ordered by name.
func (r *ParticipantRepository) ListParticipants(ctx context.Context, eventID string) ([]persistence.Participant, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+participantColumns+`
		FROM participants
		WHERE event_id = ?
		ORDER BY first_name ASC, last_name ASC, id ASC`, eventID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var participants []persistence.Participant
	for rows.Next() {
		participant, err := scanParticipant(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		participants = append(participants, participant)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return participants, nil
}

// DeleteParticipant removes a participant and, by cascade, their assignments.
func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, eventID, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM participants WHERE id = ? AND event_id = ?`, id, eventID)
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

func scanParticipant(row rowScanner) (persistence.Participant, error) {
	var (
		participant persistence.Participant
		createdAt   string
	)
	if err := row.Scan(
		&participant.ID,
		&participant.EventID,
		&participant.FirstName,
		&participant.LastName,
		&participant.Phone,
		&participant.Email,
		&createdAt,
	); err != nil {
		return persistence.Participant{}, err
	}
	participant.CreatedAt, _ = parseTime(createdAt)
	return participant, nil
}
