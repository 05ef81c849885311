package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/program-scheduler/internal/persistence/sqlite"
)

func newConflictsCmd(a *app) *cobra.Command {
	var eventID string
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "List room double-bookings for an event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd.Context(), func(_ *sqlite.Store, svcs services) error {
				sessions, warnings, err := svcs.program.ListSessions(cmd.Context(), eventID)
				if err != nil {
					return err
				}
				if len(warnings) == 0 {
					a.ui.Success("no room conflicts across %d session(s)", len(sessions))
					return nil
				}

				titles := make(map[string]string, len(sessions))
				rooms := make(map[string]string, len(sessions))
				for _, s := range sessions {
					titles[s.ID] = s.Title
					if s.RoomID != nil {
						rooms[*s.RoomID] = s.RoomName
					}
				}

				a.ui.Warning("%d room conflict(s)", len(warnings))
				table := a.ui.Table([]string{"Session", "Conflicts With", "Room", "Message"})
				for _, w := range warnings {
					room := "-"
					if w.RoomID != nil {
						room = firstNonEmpty(rooms[*w.RoomID], *w.RoomID)
					}
					_ = table.Append([]string{
						firstNonEmpty(titles[w.SessionID], w.SessionID),
						firstNonEmpty(titles[w.OtherSessionID], w.OtherSessionID),
						room,
						w.Message,
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

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
