package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"

	"github.com/example/program-scheduler/internal/application"
	"github.com/example/program-scheduler/internal/notify"
)

const defaultLiveRefresh = time.Minute

type reminderService interface {
	Upcoming(ctx context.Context, eventID string) ([]application.UpcomingReminder, error)
	SendForSession(ctx context.Context, eventID, sessionID string) (notify.SendSummary, error)
	SendDue(ctx context.Context, eventID string) ([]notify.SendSummary, error)
}

// ReminderHandler serves upcoming reminders, bulk sends and the live feed.
type ReminderHandler struct {
	service   reminderService
	refresh   time.Duration
	responder responder
	logger    *slog.Logger
}

// NewReminderHandler constructs a ReminderHandler. The live feed pushes the
// upcoming list every refresh interval, one minute when refresh is not positive.
func NewReminderHandler(service reminderService, refresh time.Duration, logger *slog.Logger) *ReminderHandler {
	if refresh <= 0 {
		refresh = defaultLiveRefresh
	}
	return &ReminderHandler{
		service:   service,
		refresh:   refresh,
		responder: newResponder(logger),
		logger:    defaultLogger(logger),
	}
}

// RegisterRoutes mounts the reminder routes on an event scoped router.
func (h *ReminderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reminders/upcoming", h.Upcoming)
	r.Get("/reminders/live", h.Live)
	r.Post("/reminders/send", h.SendDue)
	r.Post("/sessions/{sessionID}/reminders/send", h.SendForSession)
}

func (h *ReminderHandler) ready(w http.ResponseWriter) bool {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return false
	}
	return true
}

func (h *ReminderHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	reminders, err := h.service.Upcoming(r.Context(), eventIDFrom(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUpcomingDTOs(reminders))
}

func (h *ReminderHandler) SendDue(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	summaries, err := h.service.SendDue(r.Context(), eventIDFrom(r))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	resp := sendDueResponse{Sessions: make([]sendSummaryDTO, 0, len(summaries))}
	for _, summary := range summaries {
		dto := toSendSummaryDTO(summary)
		resp.Attempted += dto.Attempted
		resp.Sent += dto.Sent
		resp.Failed += dto.Failed
		resp.Sessions = append(resp.Sessions, dto)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *ReminderHandler) SendForSession(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	summary, err := h.service.SendForSession(r.Context(), eventIDFrom(r), pathParam(r, "sessionID"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSendSummaryDTO(summary))
}

// Live upgrades to a websocket and pushes the upcoming list immediately and on
// every refresh tick until the client goes away.
func (h *ReminderHandler) Live(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}
	eventID := eventIDFrom(r)
	logger := requestLogger(r, h.logger, "reminders", "live")

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.WarnContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close(websocket.StatusInternalError, "feed closed")

	// Client frames are ignored; the returned context ends when the peer disconnects.
	ctx := ws.CloseRead(r.Context())
	logger.InfoContext(ctx, "live reminder feed opened")

	ticker := time.NewTicker(h.refresh)
	defer ticker.Stop()

	for {
		if err := h.push(ctx, ws, eventID); err != nil {
			if ctx.Err() == nil {
				logger.WarnContext(ctx, "live reminder push failed", "error", err)
				ws.Close(websocket.StatusInternalError, "push failed")
			}
			return
		}

		select {
		case <-ctx.Done():
			logger.InfoContext(context.WithoutCancel(ctx), "live reminder feed closed")
			ws.Close(websocket.StatusNormalClosure, "")
			return
		case <-ticker.C:
		}
	}
}

func (h *ReminderHandler) push(ctx context.Context, ws *websocket.Conn, eventID string) error {
	reminders, err := h.service.Upcoming(ctx, eventID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(liveMessage{
		Type:      "upcoming_reminders",
		Reminders: toUpcomingDTOs(reminders),
	})
	if err != nil {
		return err
	}

	writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return ws.Write(writeCtx, websocket.MessageText, payload)
}

type liveMessage struct {
	Type      string                `json:"type"`
	Reminders []upcomingReminderDTO `json:"reminders"`
}

type upcomingReminderDTO struct {
	Session         sessionDTO     `json:"session"`
	ReminderAt      string         `json:"reminder_at"`
	MinutesUntilDue int            `json:"minutes_until_due"`
	Recipients      []recipientDTO `json:"recipients"`
}

type recipientDTO struct {
	AssignmentID  string `json:"assignment_id"`
	ParticipantID string `json:"participant_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone,omitempty"`
	ReminderSent  bool   `json:"reminder_sent"`
}

func toUpcomingDTOs(reminders []application.UpcomingReminder) []upcomingReminderDTO {
	out := make([]upcomingReminderDTO, 0, len(reminders))
	for _, reminder := range reminders {
		recipients := make([]recipientDTO, 0, len(reminder.Recipients))
		for _, recipient := range reminder.Recipients {
			recipients = append(recipients, recipientDTO{
				AssignmentID:  recipient.AssignmentID,
				ParticipantID: recipient.ParticipantID,
				FirstName:     recipient.FirstName,
				LastName:      recipient.LastName,
				Phone:         recipient.Phone,
				ReminderSent:  recipient.ReminderSent,
			})
		}
		out = append(out, upcomingReminderDTO{
			Session:         toSessionDTO(reminder.Session),
			ReminderAt:      formatTimestamp(reminder.ReminderAt),
			MinutesUntilDue: reminder.MinutesUntilDue,
			Recipients:      recipients,
		})
	}
	return out
}

type failureDTO struct {
	AssignmentID  string `json:"assignment_id"`
	ParticipantID string `json:"participant_id"`
	Reason        string `json:"reason"`
}

type sendSummaryDTO struct {
	SessionID string       `json:"session_id"`
	Attempted int          `json:"attempted"`
	Sent      int          `json:"sent"`
	Failed    int          `json:"failed"`
	Failures  []failureDTO `json:"failures"`
}

type sendDueResponse struct {
	Attempted int              `json:"attempted"`
	Sent      int              `json:"sent"`
	Failed    int              `json:"failed"`
	Sessions  []sendSummaryDTO `json:"sessions"`
}

func toSendSummaryDTO(summary notify.SendSummary) sendSummaryDTO {
	failures := make([]failureDTO, 0, len(summary.Failures))
	for _, failure := range summary.Failures {
		failures = append(failures, failureDTO{
			AssignmentID:  failure.AssignmentID,
			ParticipantID: failure.ParticipantID,
			Reason:        failure.Reason,
		})
	}
	return sendSummaryDTO{
		SessionID: summary.SessionID,
		Attempted: summary.Attempted,
		Sent:      summary.Sent,
		Failed:    summary.Failed,
		Failures:  failures,
	}
}
