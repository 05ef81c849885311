package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/program-scheduler/internal/logging"
	"github.com/example/program-scheduler/internal/scheduler"
)

// DefaultSendDelay is the pause between two consecutive delivery calls.
const DefaultSendDelay = 500 * time.Millisecond

// Message statuses written to the message log.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Delivery sends a message body to a single recipient address.
type Delivery interface {
	Deliver(ctx context.Context, recipient, body string) error
}

// Marker flips the reminder-sent flag of an assignment.
type Marker interface {
	MarkReminderSent(ctx context.Context, assignmentID string, at time.Time) error
}

// MessageLog records every delivery attempt.
type MessageLog interface {
	RecordMessage(ctx context.Context, message Message) error
}

// Message is a delivery attempt as written to the message log.
type Message struct {
	EventID       string
	SessionID     string
	ParticipantID string
	Channel       string
	Recipient     string
	Content       string
	Status        string
	Error         string
	SentAt        time.Time
}

// Failure describes a recipient whose reminder was not delivered or not marked.
type Failure struct {
	AssignmentID  string
	ParticipantID string
	Reason        string
}

// SendSummary aggregates the outcome of one bulk send.
type SendSummary struct {
	SessionID string
	Attempted int
	Sent      int
	Failed    int
	Failures  []Failure
}

// Add folds another summary into the receiver.
func (s *SendSummary) Add(other SendSummary) {
	s.Attempted += other.Attempted
	s.Sent += other.Sent
	s.Failed += other.Failed
	s.Failures = append(s.Failures, other.Failures...)
}

// Option customises a Sender.
type Option func(*Sender)

// WithDelay overrides the pause between delivery calls. Negative values are ignored.
func WithDelay(delay time.Duration) Option {
	return func(s *Sender) {
		if delay >= 0 {
			s.delay = delay
		}
	}
}

// WithSleep replaces the function used to pause between calls.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Sender) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithClock replaces the clock used to stamp sent reminders.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation renders session start times in loc.
func WithLocation(loc *time.Location) Option {
	return func(s *Sender) {
		s.location = loc
	}
}

// WithMessageLog records each attempt in log.
func WithMessageLog(log MessageLog) Option {
	return func(s *Sender) {
		s.messages = log
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sender) {
		s.logger = logger
	}
}

// Sender performs sequential, rate limited reminder delivery.
type Sender struct {
	delivery Delivery
	marker   Marker
	messages MessageLog
	delay    time.Duration
	sleep    func(time.Duration)
	now      func() time.Time
	location *time.Location
	channel  string
	logger   *slog.Logger
}

// NewSender wires a delivery transport and an assignment marker.
func NewSender(delivery Delivery, marker Marker, opts ...Option) *Sender {
	s := &Sender{
		delivery: delivery,
		marker:   marker,
		delay:    DefaultSendDelay,
		sleep:    time.Sleep,
		now:      time.Now,
		channel:  "whatsapp",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errNotConfigured = errors.New("notify: sender not configured")

// Send delivers the reminder to every recipient that has not been notified yet.
//
// Failures are counted and the loop moves on to the next recipient. Once
// started the loop is not interrupted by cancellation of ctx.
func (s *Sender) Send(ctx context.Context, reminder scheduler.UpcomingReminder) SendSummary {
	summary := SendSummary{SessionID: reminder.Session.ID}
	pending := reminder.Pending()
	if len(pending) == 0 {
		return summary
	}

	ctx = context.WithoutCancel(ctx)
	logger := s.loggerFor(ctx).With("session_id", reminder.Session.ID)

	session := reminder.Session
	if s.location != nil {
		session.Start = session.Start.In(s.location)
	}

	for i, recipient := range pending {
		if i > 0 && s.delay > 0 {
			s.sleep(s.delay)
		}
		summary.Attempted++

		body := scheduler.RenderReminderMessage(recipient.Participant, session)
		err := s.deliver(ctx, recipient.Participant.Phone, body)
		s.record(ctx, logger, session, recipient, body, err)

		if err == nil {
			err = s.mark(ctx, recipient.AssignmentID)
		}
		if err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, Failure{
				AssignmentID:  recipient.AssignmentID,
				ParticipantID: recipient.Participant.ID,
				Reason:        err.Error(),
			})
			logger.Warn("reminder delivery failed",
				"assignment_id", recipient.AssignmentID,
				"participant_id", recipient.Participant.ID,
				"error", err,
			)
			continue
		}
		summary.Sent++
	}

	logger.Info("reminder batch finished",
		"attempted", summary.Attempted,
		"sent", summary.Sent,
		"failed", summary.Failed,
	)
	return summary
}

func (s *Sender) deliver(ctx context.Context, recipient, body string) error {
	if s.delivery == nil {
		return errNotConfigured
	}
	return s.delivery.Deliver(ctx, recipient, body)
}

func (s *Sender) mark(ctx context.Context, assignmentID string) error {
	if s.marker == nil {
		return errNotConfigured
	}
	return s.marker.MarkReminderSent(ctx, assignmentID, s.now())
}

func (s *Sender) record(ctx context.Context, logger *slog.Logger, session scheduler.Session, recipient scheduler.ReminderRecipient, body string, deliveryErr error) {
	if s.messages == nil {
		return
	}
	message := Message{
		EventID:       session.EventID,
		SessionID:     session.ID,
		ParticipantID: recipient.Participant.ID,
		Channel:       s.channel,
		Recipient:     recipient.Participant.Phone,
		Content:       body,
		Status:        StatusSent,
		SentAt:        s.now(),
	}
	if deliveryErr != nil {
		message.Status = StatusFailed
		message.Error = deliveryErr.Error()
	}
	if err := s.messages.RecordMessage(ctx, message); err != nil {
		logger.Error("record message failed", "participant_id", recipient.Participant.ID, "error", err)
	}
}

func (s *Sender) loggerFor(ctx context.Context) *slog.Logger {
	return logging.Scoped(ctx, s.logger, "component", "notify")
}
