package sqlite

import (
	"context"

	"github.com/example/program-scheduler/internal/persistence"
)

// ScheduleChangeRepository implements persistence.ScheduleChangeRepository using SQLite.
type ScheduleChangeRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewScheduleChangeRepository creates a new SQLite schedule change repository.
func NewScheduleChangeRepository(pool *ConnectionPool) *ScheduleChangeRepository {
	return &ScheduleChangeRepository{helper: NewQueryHelper(pool), mapper: NewErrorMapper()}
}

// CreateScheduleChange appends an entry to a session's change history.
func (r *ScheduleChangeRepository) CreateScheduleChange(ctx context.Context, change persistence.ScheduleChange) error {
	if change.ID == "" || change.SessionID == "" {
		return persistence.ErrConstraintViolation
	}
	_, err := r.helper.Exec(ctx, `
		INSERT INTO schedule_changes (id, session_id, change_type, old_value, new_value, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		change.ID,
		change.SessionID,
		change.ChangeType,
		change.OldValue,
		change.NewValue,
		change.Reason,
		formatTime(createdAtOrNow(change.CreatedAt)),
	)
	return r.mapper.MapError(err)
}

// ListScheduleChanges returns the change history of a session, oldest first.
func (r *ScheduleChangeRepository) ListScheduleChanges(ctx context.Context, sessionID string) ([]persistence.ScheduleChange, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, session_id, change_type, old_value, new_value, reason, created_at
		FROM schedule_changes
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var changes []persistence.ScheduleChange
	for rows.Next() {
		var change persistence.ScheduleChange
		var createdAt string
		if err := rows.Scan(&change.ID, &change.SessionID, &change.ChangeType, &change.OldValue,
			&change.NewValue, &change.Reason, &createdAt); err != nil {
			return nil, r.mapper.MapError(err)
		}
		change.CreatedAt, _ = parseTime(createdAt)
		changes = append(changes, change)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return changes, nil
}
