package application

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/example/program-scheduler/internal/notify"
	"github.com/example/program-scheduler/internal/persistence"
	"github.com/example/program-scheduler/internal/scheduler"
)

type sessionRepoStub struct {
	mu        sync.Mutex
	sessions  map[string]Session
	order     []string
	createErr error
	updateErr error
	listErr   error
	listCalls int
	deleted   []string
}

func newSessionRepoStub(sessions ...Session) *sessionRepoStub {
	stub := &sessionRepoStub{sessions: make(map[string]Session)}
	for _, session := range sessions {
		stub.sessions[session.ID] = session
		stub.order = append(stub.order, session.ID)
	}
	return stub
}

func (r *sessionRepoStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return Session{}, r.createErr
	}
	if _, exists := r.sessions[session.ID]; exists {
		return Session{}, persistence.ErrDuplicate
	}
	r.sessions[session.ID] = session
	r.order = append(r.order, session.ID)
	return session, nil
}

func (r *sessionRepoStub) UpdateSession(ctx context.Context, session Session) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return Session{}, r.updateErr
	}
	if _, exists := r.sessions[session.ID]; !exists {
		return Session{}, persistence.ErrNotFound
	}
	r.sessions[session.ID] = session
	return session, nil
}

func (r *sessionRepoStub) GetSession(ctx context.Context, id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (r *sessionRepoStub) ListSessions(ctx context.Context, eventID string) ([]Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []Session
	for _, id := range r.order {
		session, ok := r.sessions[id]
		if ok && session.EventID == eventID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *sessionRepoStub) DeleteSession(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.sessions, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type assignmentRepoStub struct {
	assignments []Assignment
	sessions    *sessionRepoStub
	createErr   error
	marked      map[string]time.Time
}

func (r *assignmentRepoStub) CreateAssignment(ctx context.Context, assignment Assignment) (Assignment, error) {
	if r.createErr != nil {
		return Assignment{}, r.createErr
	}
	for _, existing := range r.assignments {
		if existing.SessionID == assignment.SessionID && existing.ParticipantID == assignment.ParticipantID {
			return Assignment{}, persistence.ErrDuplicate
		}
	}
	r.assignments = append(r.assignments, assignment)
	return assignment, nil
}

func (r *assignmentRepoStub) GetAssignment(ctx context.Context, id string) (Assignment, error) {
	for _, assignment := range r.assignments {
		if assignment.ID == id {
			return assignment, nil
		}
	}
	return Assignment{}, persistence.ErrNotFound
}

func (r *assignmentRepoStub) ListAssignments(ctx context.Context, eventID string) ([]Assignment, error) {
	var out []Assignment
	for _, assignment := range r.assignments {
		if r.sessions != nil {
			session, err := r.sessions.GetSession(ctx, assignment.SessionID)
			if err != nil || session.EventID != eventID {
				continue
			}
		}
		out = append(out, assignment)
	}
	return out, nil
}

func (r *assignmentRepoStub) DeleteAssignment(ctx context.Context, id string) error {
	for i, assignment := range r.assignments {
		if assignment.ID == id {
			r.assignments = append(r.assignments[:i], r.assignments[i+1:]...)
			return nil
		}
	}
	return persistence.ErrNotFound
}

func (r *assignmentRepoStub) MarkReminderSent(ctx context.Context, id string, at time.Time) error {
	if r.marked == nil {
		r.marked = make(map[string]time.Time)
	}
	for i := range r.assignments {
		if r.assignments[i].ID == id {
			if !r.assignments[i].ReminderSent {
				r.assignments[i].ReminderSent = true
				r.assignments[i].ReminderSentAt = &at
			}
			r.marked[id] = at
			return nil
		}
	}
	return persistence.ErrNotFound
}

type participantRepoStub struct {
	participants []Participant
	createErr    error
	deleted      []string
}

func (r *participantRepoStub) CreateParticipant(ctx context.Context, participant Participant) (Participant, error) {
	if r.createErr != nil {
		return Participant{}, r.createErr
	}
	r.participants = append(r.participants, participant)
	return participant, nil
}

func (r *participantRepoStub) GetParticipant(ctx context.Context, id string) (Participant, error) {
	for _, participant := range r.participants {
		if participant.ID == id {
			return participant, nil
		}
	}
	return Participant{}, persistence.ErrNotFound
}

func (r *participantRepoStub) ListParticipants(ctx context.Context, eventID string) ([]Participant, error) {
	var out []Participant
	for _, participant := range r.participants {
		if participant.EventID == eventID {
			out = append(out, participant)
		}
	}
	return out, nil
}

func (r *participantRepoStub) DeleteParticipant(ctx context.Context, eventID, id string) error {
	for i, participant := range r.participants {
		if participant.ID == id && participant.EventID == eventID {
			r.participants = append(r.participants[:i], r.participants[i+1:]...)
			r.deleted = append(r.deleted, id)
			return nil
		}
	}
	return persistence.ErrNotFound
}

type changeRepoStub struct {
	changes   []ScheduleChange
	createErr error
}

func (r *changeRepoStub) CreateScheduleChange(ctx context.Context, change ScheduleChange) (ScheduleChange, error) {
	if r.createErr != nil {
		return ScheduleChange{}, r.createErr
	}
	r.changes = append(r.changes, change)
	return change, nil
}

func (r *changeRepoStub) ListScheduleChanges(ctx context.Context, sessionID string) ([]ScheduleChange, error) {
	var out []ScheduleChange
	for _, change := range r.changes {
		if change.SessionID == sessionID {
			out = append(out, change)
		}
	}
	return out, nil
}

// senderStub records reminders and marks every pending recipient as sent.
type senderStub struct {
	assignments *assignmentRepoStub
	sent        []scheduler.UpcomingReminder
	at          time.Time
}

func (s *senderStub) Send(ctx context.Context, reminder scheduler.UpcomingReminder) notify.SendSummary {
	s.sent = append(s.sent, reminder)
	summary := notify.SendSummary{SessionID: reminder.Session.ID}
	for _, recipient := range reminder.Pending() {
		summary.Attempted++
		if s.assignments != nil {
			_ = s.assignments.MarkReminderSent(ctx, recipient.AssignmentID, s.at)
		}
		summary.Sent++
	}
	return summary
}

type sequentialIDs struct {
	prefix string
	next   int
}

func (g *sequentialIDs) generate() string {
	g.next++
	return g.prefix + strconv.Itoa(g.next)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(value string) *string {
	return &value
}

func intPtr(value int) *int {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
