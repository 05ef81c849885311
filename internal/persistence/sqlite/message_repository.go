package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/example/program-scheduler/internal/persistence"
)

// MessageRepository implements persistence.MessageRepository using SQLite.
// Message IDs are ULIDs so the log sorts by send time.
type MessageRepository struct {
	helper *QueryHelper
	mapper *ErrorMapper
	now    func() time.Time

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewMessageRepository creates a new SQLite message repository.
func NewMessageRepository(pool *ConnectionPool, now func() time.Time) *MessageRepository {
	if now == nil {
		now = time.Now
	}
	return &MessageRepository{
		helper:  NewQueryHelper(pool),
		mapper:  NewErrorMapper(),
		now:     now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// ContentDigest returns the hex BLAKE2b-256 digest of a message body.
func ContentDigest(content string) string {
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// CreateMessage stores a message attempt, filling in ID, digest and send time.
func (r *MessageRepository) CreateMessage(ctx context.Context, message persistence.MessageLog) (persistence.MessageLog, error) {
	if message.EventID == "" || message.Channel == "" {
		return persistence.MessageLog{}, persistence.ErrConstraintViolation
	}
	if message.SentAt.IsZero() {
		message.SentAt = r.now()
	}
	if message.ID == "" {
		message.ID = r.newID(message.SentAt)
	}
	message.ContentDigest = ContentDigest(message.Content)

	_, err := r.helper.Exec(ctx, `
		INSERT INTO messages (id, event_id, participant_id, session_id, channel, recipient,
			content, content_digest, status, error, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		message.ID,
		message.EventID,
		nullableString(message.ParticipantID),
		nullableString(message.SessionID),
		message.Channel,
		message.Recipient,
		message.Content,
		message.ContentDigest,
		message.Status,
		message.Error,
		formatTime(message.SentAt),
	)
	if err != nil {
		return persistence.MessageLog{}, r.mapper.MapError(err)
	}
	return message, nil
}

// ListMessages returns the message log of an event in send order.
func (r *MessageRepository) ListMessages(ctx context.Context, eventID string) ([]persistence.MessageLog, error) {
	rows, err := r.helper.Query(ctx, `
		SELECT id, event_id, participant_id, session_id, channel, recipient,
			content, content_digest, status, error, sent_at
		FROM messages
		WHERE event_id = ?
		ORDER BY id ASC`, eventID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var messages []persistence.MessageLog
	for rows.Next() {
		var (
			message                  persistence.MessageLog
			participantID, sessionID sql.NullString
			sentAt                   string
		)
		if err := rows.Scan(
			&message.ID,
			&message.EventID,
			&participantID,
			&sessionID,
			&message.Channel,
			&message.Recipient,
			&message.Content,
			&message.ContentDigest,
			&message.Status,
			&message.Error,
			&sentAt,
		); err != nil {
			return nil, r.mapper.MapError(err)
		}
		message.ParticipantID = stringPtr(participantID)
		message.SessionID = stringPtr(sessionID)
		message.SentAt, _ = parseTime(sentAt)
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return messages, nil
}

func (r *MessageRepository) newID(at time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), r.entropy).String()
}
