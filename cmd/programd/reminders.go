package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/program-scheduler/internal/notify"
	"github.com/example/program-scheduler/internal/output"
	"github.com/example/program-scheduler/internal/persistence/sqlite"
)

func newRemindersCmd(a *app) *cobra.Command {
	var eventID string
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Show reminders inside the look-around window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(_ *sqlite.Store, svcs services) error {
				upcoming, err := svcs.reminders.Upcoming(cmd.Context(), eventID)
				if err != nil {
					return err
				}
				if len(upcoming) == 0 {
					a.ui.Info("no reminders due around %s", a.displayTime(a.now()))
					return nil
				}

				table := a.ui.Table([]string{"Session", "Starts", "Reminder At", "Due In (min)", "Pending"})
				for _, r := range upcoming {
					pending := 0
					for _, recipient := range r.Recipients {
						if !recipient.ReminderSent {
							pending++
						}
					}
					_ = table.Append([]string{
						r.Session.Title,
						a.displayTime(r.Session.Start),
						a.displayTime(r.ReminderAt),
						output.DueColor(r.MinutesUntilDue),
						fmt.Sprintf("%d/%d", pending, len(r.Recipients)),
					})
				}
				return table.Render()
			})
		},
	}
	cmd.Flags().StringVarP(&eventID, "event", "e", "", "event id")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func newSendRemindersCmd(a *app) *cobra.Command {
	var eventID, sessionID string
	cmd := &cobra.Command{
		Use:   "send-reminders",
		Short: "Deliver due reminders over WhatsApp",
		Long: `send-reminders delivers every reminder that is due now, or the reminder of a
single session with --session. Participants already notified are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireWhatsApp(); err != nil {
				return err
			}
			return a.withStore(cmd.Context(), func(_ *sqlite.Store, svcs services) error {
				var summaries []notify.SendSummary
				if sessionID != "" {
					summary, err := svcs.reminders.SendForSession(cmd.Context(), eventID, sessionID)
					if err != nil {
						return err
					}
					summaries = append(summaries, summary)
				} else {
					due, err := svcs.reminders.SendDue(cmd.Context(), eventID)
					if err != nil {
						return err
					}
					summaries = due
				}
				a.reportSummaries(summaries)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&eventID, "event", "e", "", "event id")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "send only this session's reminder")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func (a *app) reportSummaries(summaries []notify.SendSummary) {
	if len(summaries) == 0 {
		a.ui.Info("no reminders are due")
		return
	}

	var total notify.SendSummary
	for _, s := range summaries {
		total.Add(s)
	}

	table := a.ui.Table([]string{"Session", "Attempted", "Sent", "Failed"})
	for _, s := range summaries {
		_ = table.Append([]string{s.SessionID, fmt.Sprint(s.Attempted), fmt.Sprint(s.Sent), output.CountColor(s.Failed)})
	}
	_ = table.Render()

	for _, f := range total.Failures {
		a.ui.Error("participant %s: %s", f.ParticipantID, f.Reason)
	}
	if total.Failed > 0 {
		a.ui.Warning("sent %d of %d reminder(s)", total.Sent, total.Attempted)
		return
	}
	a.ui.Success("sent %d reminder(s)", total.Sent)
}
