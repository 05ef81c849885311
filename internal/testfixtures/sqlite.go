package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/program-scheduler/internal/persistence"
	"github.com/example/program-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary, migrated
// SQLite database for integration-style persistence tests.
type SQLiteHarness struct {
	// Path is the database file, for tests that open a second connection.
	Path            string
	Store           *sqlite.Store
	Sessions        persistence.SessionRepository
	Assignments     persistence.AssignmentRepository
	Participants    persistence.ParticipantRepository
	Catalog         persistence.CatalogRepository
	Messages        persistence.MessageRepository
	ScheduleChanges persistence.ScheduleChangeRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a file under tb.TempDir.
// Close is registered with tb.Cleanup; calling it earlier is allowed.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "program.db")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := sqlite.Open(path, logger)
	if err != nil {
		tb.Fatalf("failed to open store: %v", err)
	}
	if _, err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate store: %v", err)
	}

	harness := &SQLiteHarness{
		Path:            path,
		Store:           store,
		Sessions:        store.Sessions(),
		Assignments:     store.Assignments(),
		Participants:    store.Participants(),
		Catalog:         store.Catalog(),
		Messages:        store.Messages(),
		ScheduleChanges: store.ScheduleChanges(),
		cleanup: func() {
			_ = store.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}

// SeedRoom stores a room fixture and fails the test on error.
func (h *SQLiteHarness) SeedRoom(tb testing.TB, room RoomFixture) persistence.Room {
	tb.Helper()
	record := room.Persistence()
	if err := h.Catalog.CreateRoom(context.Background(), record); err != nil {
		tb.Fatalf("failed to seed room %s: %v", room.ID, err)
	}
	return record
}

// SeedSession stores a session fixture and fails the test on error.
func (h *SQLiteHarness) SeedSession(tb testing.TB, session SessionFixture) persistence.Session {
	tb.Helper()
	record := session.Persistence()
	if err := h.Sessions.CreateSession(context.Background(), record); err != nil {
		tb.Fatalf("failed to seed session %s: %v", session.ID, err)
	}
	return record
}

// SeedParticipant stores a participant fixture and fails the test on error.
func (h *SQLiteHarness) SeedParticipant(tb testing.TB, participant ParticipantFixture) persistence.Participant {
	tb.Helper()
	record := participant.Persistence()
	if err := h.Participants.CreateParticipant(context.Background(), record); err != nil {
		tb.Fatalf("failed to seed participant %s: %v", participant.ID, err)
	}
	return record
}

// SeedAssignment links a participant to a session and fails the test on error.
func (h *SQLiteHarness) SeedAssignment(tb testing.TB, id, sessionID, participantID string) persistence.Assignment {
	tb.Helper()
	record := persistence.Assignment{
		ID:            id,
		SessionID:     sessionID,
		ParticipantID: participantID,
		CreatedAt:     referenceTime,
	}
	if err := h.Assignments.CreateAssignment(context.Background(), record); err != nil {
		tb.Fatalf("failed to seed assignment %s: %v", id, err)
	}
	return record
}
