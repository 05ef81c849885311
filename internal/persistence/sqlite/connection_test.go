package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/program-scheduler/internal/persistence"
)

func TestErrorMapperMapError(t *testing.T) {
	mapper := NewErrorMapper()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{name: "no rows", err: sql.ErrNoRows, want: persistence.ErrNotFound},
		{name: "unique", err: errors.New("constraint failed: UNIQUE constraint failed: rooms.id (2067)"), want: persistence.ErrDuplicate},
		{name: "foreign key", err: errors.New("constraint failed: FOREIGN KEY constraint failed (787)"), want: persistence.ErrForeignKeyViolation},
		{name: "check", err: errors.New("constraint failed: CHECK constraint failed: status (275)"), want: persistence.ErrConstraintViolation},
		{name: "not null", err: errors.New("NOT NULL constraint failed: sessions.title"), want: persistence.ErrConstraintViolation},
		{name: "locked", err: errors.New("database is locked (5) (SQLITE_BUSY)"), want: errDatabaseLocked},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, mapper.MapError(tc.err), tc.want)
		})
	}

	assert.NoError(t, mapper.MapError(nil))
	other := errors.New("disk I/O error")
	assert.Equal(t, other, mapper.MapError(other))
}

func TestRetryHelperRetriesLockedDatabase(t *testing.T) {
	helper := NewRetryHelper(RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      2 * time.Millisecond,
		BackoffFactor: 2,
	})

	calls := 0
	err := helper.WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryHelperGivesUp(t *testing.T) {
	helper := NewRetryHelper(RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1})

	calls := 0
	err := helper.WithRetry(context.Background(), func() error {
		calls++
		return errors.New("database is locked")
	})
	assert.ErrorIs(t, err, errDatabaseLocked)
	assert.Equal(t, 3, calls)
}

func TestRetryHelperDoesNotRetryOtherErrors(t *testing.T) {
	helper := NewRetryHelper(DefaultRetryConfig())

	calls := 0
	err := helper.WithRetry(context.Background(), func() error {
		calls++
		return persistence.ErrNotFound
	})
	assert.ErrorIs(t, err, persistence.ErrNotFound)
	assert.Equal(t, 1, calls)
}
