package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/program-scheduler/internal/persistence"
)

// AssignmentRepository implements persistence.AssignmentRepository using SQLite.
type AssignmentRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewAssignmentRepository creates a new SQLite assignment repository.
// Reminder bookkeeping writes are retried according to retry.
func NewAssignmentRepository(pool *ConnectionPool, retry RetryConfig) *AssignmentRepository {
	return &AssignmentRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(retry),
	}
}

const assignmentColumns = `a.id, a.session_id, a.participant_id, a.reminder_sent, a.reminder_sent_at, a.created_at`

// CreateAssignment links a participant to a session.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	if assignment.ID == "" || assignment.SessionID == "" || assignment.ParticipantID == "" {
		return persistence.ErrConstraintViolation
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = nowUTC()
	}
	var sentAt sql.NullString
	if assignment.ReminderSentAt != nil {
		sentAt = sql.NullString{String: formatTime(*assignment.ReminderSentAt), Valid: true}
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO assignments (id, session_id, participant_id, reminder_sent, reminder_sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		assignment.ID,
		assignment.SessionID,
		assignment.ParticipantID,
		boolToInt(assignment.ReminderSent),
		sentAt,
		formatTime(assignment.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// GetAssignment retrieves an assignment by ID.
func (r *AssignmentRepository) GetAssignment(ctx context.Context, id string) (persistence.Assignment, error) {
	row := r.helper.QueryRow(ctx, `SELECT `+assignmentColumns+` FROM assignments a WHERE a.id = ?`, id)
	assignment, err := scanAssignment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Assignment{}, persistence.ErrNotFound
		}
		return persistence.Assignment{}, r.mapper.MapError(err)
	}
	return assignment, nil
}

// ListAssignments returns every assignment whose session belongs to eventID.
func (r *AssignmentRepository) ListAssignments(ctx context.Context, eventID string) ([]persistence.Assignment, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments a
		JOIN sessions s ON s.id = a.session_id
		WHERE s.event_id = ?
		ORDER BY a.created_at ASC, a.id ASC`, eventID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var assignments []persistence.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return assignments, nil
}

// DeleteAssignment removes an assignment by ID.
func (r *AssignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM assignments WHERE id = ?`, id)
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

// MarkReminderSent flips the reminder flag from false to true and stamps the
// time. Marking an already sent assignment keeps the original timestamp.
func (r *AssignmentRepository) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if _, err := r.helper.ExecTx(ctx, tx, `
				UPDATE assignments
				SET reminder_sent = 1, reminder_sent_at = ?
				WHERE id = ? AND reminder_sent = 0`,
				formatTime(at), id,
			); err != nil {
				return err
			}
			var exists int
			if err := r.helper.QueryRowTx(ctx, tx, `SELECT 1 FROM assignments WHERE id = ?`, id).Scan(&exists); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return persistence.ErrNotFound
				}
				return err
			}
			return nil
		})
	})
}

func scanAssignment(row rowScanner) (persistence.Assignment, error) {
	var (
		assignment persistence.Assignment
		sent       int
		sentAt     sql.NullString
		createdAt  string
	)
	if err := row.Scan(
		&assignment.ID,
		&assignment.SessionID,
		&assignment.ParticipantID,
		&sent,
		&sentAt,
		&createdAt,
	); err != nil {
		return persistence.Assignment{}, err
	}
	assignment.ReminderSent = sent != 0
	if sentAt.Valid {
		if t, err := parseTime(sentAt.String); err == nil {
			assignment.ReminderSentAt = &t
		}
	}
	assignment.CreatedAt, _ = parseTime(createdAt)
	return assignment, nil
}
