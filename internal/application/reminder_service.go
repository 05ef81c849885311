package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/program-scheduler/internal/notify"
	"github.com/example/program-scheduler/internal/scheduler"
)

// ReminderSender delivers one upcoming reminder to its pending recipients.
type ReminderSender interface {
	Send(ctx context.Context, reminder scheduler.UpcomingReminder) notify.SendSummary
}

// ReminderService computes upcoming reminders and triggers their delivery.
type ReminderService struct {
	sessions     SessionRepository
	assignments  AssignmentRepository
	participants ParticipantRepository
	sender       ReminderSender
	now          func() time.Time
	logger       *slog.Logger
}

// NewReminderService constructs a reminder service. sender may be nil for
// read-only use; send operations then fail with ErrSenderNotConfigured.
func NewReminderService(sessions SessionRepository, assignments AssignmentRepository, participants ParticipantRepository, sender ReminderSender, now func() time.Time) *ReminderService {
	return NewReminderServiceWithLogger(sessions, assignments, participants, sender, now, nil)
}

// NewReminderServiceWithLogger constructs a reminder service with a specified logger.
func NewReminderServiceWithLogger(sessions SessionRepository, assignments AssignmentRepository, participants ParticipantRepository, sender ReminderSender, now func() time.Time, logger *slog.Logger) *ReminderService {
	if now == nil {
		now = time.Now
	}
	return &ReminderService{
		sessions:     sessions,
		assignments:  assignments,
		participants: participants,
		sender:       sender,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReminderService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReminderService", operation, attrs...)
}

// Upcoming returns the event's reminders falling inside the reminder window at
// the current time, soonest first.
func (s *ReminderService) Upcoming(ctx context.Context, eventID string) ([]UpcomingReminder, error) {
	if s == nil {
		return nil, fmt.Errorf("ReminderService is nil")
	}
	snapshot, err := s.loadSnapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return snapshot.upcoming(s.now()), nil
}

// SendForSession delivers the reminder of one session. A session outside the
// reminder window, or without participants, yields ErrNotFound.
func (s *ReminderService) SendForSession(ctx context.Context, eventID, sessionID string) (summary notify.SendSummary, err error) {
	if s == nil {
		err = fmt.Errorf("ReminderService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SendForSession", "event_id", eventID, "session_id", sessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to send session reminder", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session reminder sent",
			"attempted", summary.Attempted,
			"sent", summary.Sent,
			"failed", summary.Failed,
		)
	}()

	if s.sender == nil {
		err = ErrSenderNotConfigured
		return
	}

	var snapshot reminderSnapshot
	snapshot, err = s.loadSnapshot(ctx, eventID)
	if err != nil {
		return
	}

	for _, reminder := range snapshot.compute(s.now()) {
		if reminder.Session.ID == sessionID {
			summary = s.sender.Send(ctx, reminder)
			return
		}
	}
	err = ErrNotFound
	return
}

// SendDue delivers every reminder whose send time has been reached and that
// still has pending recipients. One summary is returned per session sent.
func (s *ReminderService) SendDue(ctx context.Context, eventID string) (summaries []notify.SendSummary, err error) {
	if s == nil {
		err = fmt.Errorf("ReminderService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SendDue", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to send due reminders", "error", err, "error_kind", ErrorKind(err))
			return
		}
		var total notify.SendSummary
		for _, summary := range summaries {
			total.Add(summary)
		}
		logger.InfoContext(ctx, "due reminders processed",
			"sessions", len(summaries),
			"sent", total.Sent,
			"failed", total.Failed,
		)
	}()

	if s.sender == nil {
		err = ErrSenderNotConfigured
		return
	}

	var snapshot reminderSnapshot
	snapshot, err = s.loadSnapshot(ctx, eventID)
	if err != nil {
		return
	}

	for _, reminder := range snapshot.compute(s.now()) {
		if reminder.MinutesUntilDue > 0 || len(reminder.Pending()) == 0 {
			continue
		}
		summaries = append(summaries, s.sender.Send(ctx, reminder))
	}
	return
}

type reminderSnapshot struct {
	sessions     []Session
	assignments  []Assignment
	participants []Participant
}

func (s *ReminderService) loadSnapshot(ctx context.Context, eventID string) (reminderSnapshot, error) {
	if s.sessions == nil || s.assignments == nil || s.participants == nil {
		return reminderSnapshot{}, fmt.Errorf("reminder repositories not configured")
	}
	sessions, err := s.sessions.ListSessions(ctx, eventID)
	if err != nil {
		return reminderSnapshot{}, mapRepoError(err, "event_id")
	}
	assignments, err := s.assignments.ListAssignments(ctx, eventID)
	if err != nil {
		return reminderSnapshot{}, mapRepoError(err, "event_id")
	}
	participants, err := s.participants.ListParticipants(ctx, eventID)
	if err != nil {
		return reminderSnapshot{}, mapRepoError(err, "event_id")
	}
	return reminderSnapshot{sessions: sessions, assignments: assignments, participants: participants}, nil
}

func (r reminderSnapshot) compute(now time.Time) []scheduler.UpcomingReminder {
	assignments := make([]scheduler.Assignment, len(r.assignments))
	for i, assignment := range r.assignments {
		assignments[i] = scheduler.Assignment{
			ID:             assignment.ID,
			SessionID:      assignment.SessionID,
			ParticipantID:  assignment.ParticipantID,
			ReminderSent:   assignment.ReminderSent,
			ReminderSentAt: assignment.ReminderSentAt,
		}
	}
	participants := make([]scheduler.Participant, len(r.participants))
	for i, participant := range r.participants {
		participants[i] = scheduler.Participant{
			ID:        participant.ID,
			FirstName: participant.FirstName,
			LastName:  participant.LastName,
			Phone:     participant.Phone,
			Email:     participant.Email,
		}
	}
	return scheduler.ComputeUpcomingReminders(toSchedulerSessions(r.sessions), assignments, participants, now)
}

func (r reminderSnapshot) upcoming(now time.Time) []UpcomingReminder {
	computed := r.compute(now)
	if len(computed) == 0 {
		return nil
	}

	byID := make(map[string]Session, len(r.sessions))
	for _, session := range r.sessions {
		byID[session.ID] = session
	}

	out := make([]UpcomingReminder, 0, len(computed))
	for _, reminder := range computed {
		recipients := make([]ReminderRecipient, len(reminder.Recipients))
		for i, recipient := range reminder.Recipients {
			recipients[i] = ReminderRecipient{
				AssignmentID:  recipient.AssignmentID,
				ParticipantID: recipient.Participant.ID,
				FirstName:     recipient.Participant.FirstName,
				LastName:      recipient.Participant.LastName,
				Phone:         recipient.Participant.Phone,
				ReminderSent:  recipient.ReminderSent,
			}
		}
		out = append(out, UpcomingReminder{
			Session:         byID[reminder.Session.ID],
			ReminderAt:      scheduler.ReminderAt(reminder.Session),
			MinutesUntilDue: reminder.MinutesUntilDue,
			Recipients:      recipients,
		})
	}
	return out
}
