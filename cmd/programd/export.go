package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/example/program-scheduler/internal/application"
	"github.com/example/program-scheduler/internal/persistence"
	"github.com/example/program-scheduler/internal/persistence/sqlite"
)

// programExport is the document written by the export command.
type programExport struct {
	EventID       string              `json:"event_id" yaml:"event_id"`
	ExportedAt    string              `json:"exported_at" yaml:"exported_at"`
	Stats         exportStats         `json:"stats" yaml:"stats"`
	Days          []exportDay         `json:"days" yaml:"days"`
	Tracks        []exportTrack       `json:"tracks" yaml:"tracks"`
	Rooms         []exportRoom        `json:"rooms" yaml:"rooms"`
	Speakers      []exportSpeaker     `json:"speakers" yaml:"speakers"`
	Sessions      []exportSession     `json:"sessions" yaml:"sessions"`
	Conflicts     []exportConflict    `json:"conflicts" yaml:"conflicts"`
	Contingencies []exportContingency `json:"contingencies" yaml:"contingencies"`
	Messages      []exportMessage     `json:"messages,omitempty" yaml:"messages,omitempty"`
}

type exportStats struct {
	Sessions         int `json:"sessions" yaml:"sessions"`
	Participants     int `json:"participants" yaml:"participants"`
	Assignments      int `json:"assignments" yaml:"assignments"`
	PendingReminders int `json:"pending_reminders" yaml:"pending_reminders"`
	Conflicts        int `json:"conflicts" yaml:"conflicts"`
}

type exportDay struct {
	ID        string `json:"id" yaml:"id"`
	Date      string `json:"date" yaml:"date"`
	DayNumber int    `json:"day_number" yaml:"day_number"`
	Theme     string `json:"theme,omitempty" yaml:"theme,omitempty"`
}

type exportTrack struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

type exportRoom struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
	Building string `json:"building,omitempty" yaml:"building,omitempty"`
}

type exportSpeaker struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

type exportSession struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Start        string   `json:"start" yaml:"start"`
	End          string   `json:"end" yaml:"end"`
	Room         string   `json:"room,omitempty" yaml:"room,omitempty"`
	Speaker      string   `json:"speaker,omitempty" yaml:"speaker,omitempty"`
	Location     string   `json:"location,omitempty" yaml:"location,omitempty"`
	Participants []string `json:"participants,omitempty" yaml:"participants,omitempty"`
}

type exportConflict struct {
	SessionID      string `json:"session_id" yaml:"session_id"`
	OtherSessionID string `json:"other_session_id" yaml:"other_session_id"`
	Message        string `json:"message" yaml:"message"`
}

type exportContingency struct {
	ID          string `json:"id" yaml:"id"`
	Type        string `json:"type" yaml:"type"`
	RiskLevel   string `json:"risk_level" yaml:"risk_level"`
	Description string `json:"description" yaml:"description"`
	Status      string `json:"status" yaml:"status"`
}

// exportMessage is one reminder delivery attempt. The digest lets an auditor
// confirm which text went out without trusting the stored body.
type exportMessage struct {
	ID            string `json:"id" yaml:"id"`
	SessionID     string `json:"session_id,omitempty" yaml:"session_id,omitempty"`
	ParticipantID string `json:"participant_id,omitempty" yaml:"participant_id,omitempty"`
	Recipient     string `json:"recipient" yaml:"recipient"`
	Status        string `json:"status" yaml:"status"`
	Error         string `json:"error,omitempty" yaml:"error,omitempty"`
	ContentDigest string `json:"content_digest" yaml:"content_digest"`
	SentAt        string `json:"sent_at" yaml:"sent_at"`
}

func newExportCmd(a *app) *cobra.Command {
	var eventID, format, outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an event program as JSON or YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q, expected json or yaml", format)
			}
			return a.withStore(cmd.Context(), func(store *sqlite.Store, svcs services) error {
				doc, err := a.buildExport(cmd.Context(), svcs, eventID)
				if err != nil {
					return err
				}
				if err := exportMessages(cmd.Context(), store.Messages(), eventID, &doc); err != nil {
					return err
				}

				var w io.Writer = cmd.OutOrStdout()
				if outPath != "" {
					f, err := os.Create(outPath)
					if err != nil {
						return fmt.Errorf("create %s: %w", outPath, err)
					}
					defer f.Close()
					w = f
				}
				if err := writeExport(w, format, doc); err != nil {
					return err
				}
				if outPath != "" {
					a.ui.Success("exported %d session(s) to %s", len(doc.Sessions), outPath)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&eventID, "event", "e", "", "event id")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write to file instead of stdout")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func writeExport(w io.Writer, format string, doc programExport) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func (a *app) buildExport(ctx context.Context, svcs services, eventID string) (programExport, error) {
	doc := programExport{EventID: eventID, ExportedAt: a.now().UTC().Format(time.RFC3339)}

	sessions, warnings, err := svcs.program.ListSessions(ctx, eventID)
	if err != nil {
		return programExport{}, err
	}
	assignments, err := svcs.program.ListAssignments(ctx, eventID)
	if err != nil {
		return programExport{}, err
	}
	participants, err := svcs.catalog.ListParticipants(ctx, eventID)
	if err != nil {
		return programExport{}, err
	}
	stats, err := svcs.program.ProgramStats(ctx, eventID)
	if err != nil {
		return programExport{}, err
	}
	doc.Stats = exportStats{
		Sessions:         stats.Sessions,
		Participants:     stats.Participants,
		Assignments:      stats.Assignments,
		PendingReminders: stats.PendingReminders,
		Conflicts:        stats.Conflicts,
	}

	names := make(map[string]string, len(participants))
	for _, p := range participants {
		names[p.ID] = strings.TrimSpace(p.FirstName + " " + p.LastName)
	}
	attendees := make(map[string][]string)
	for _, asg := range assignments {
		attendees[asg.SessionID] = append(attendees[asg.SessionID], firstNonEmpty(names[asg.ParticipantID], asg.ParticipantID))
	}

	for _, s := range sessions {
		doc.Sessions = append(doc.Sessions, exportSession{
			ID:           s.ID,
			Title:        s.Title,
			Start:        formatExportTime(s.Start),
			End:          formatExportTime(s.End),
			Room:         s.RoomName,
			Speaker:      s.SpeakerName,
			Location:     s.Location,
			Participants: attendees[s.ID],
		})
	}
	for _, w := range warnings {
		doc.Conflicts = append(doc.Conflicts, exportConflict{SessionID: w.SessionID, OtherSessionID: w.OtherSessionID, Message: w.Message})
	}

	if err := exportCatalog(ctx, svcs.catalog, eventID, &doc); err != nil {
		return programExport{}, err
	}
	return doc, nil
}

func exportCatalog(ctx context.Context, catalog *application.CatalogService, eventID string, doc *programExport) error {
	days, err := catalog.ListProgramDays(ctx, eventID)
	if err != nil {
		return err
	}
	for _, d := range days {
		doc.Days = append(doc.Days, exportDay{ID: d.ID, Date: d.Date, DayNumber: d.DayNumber, Theme: d.Theme})
	}

	tracks, err := catalog.ListTracks(ctx, eventID)
	if err != nil {
		return err
	}
	for _, t := range tracks {
		doc.Tracks = append(doc.Tracks, exportTrack{ID: t.ID, Name: t.Name, Color: t.Color})
	}

	rooms, err := catalog.ListRooms(ctx, eventID)
	if err != nil {
		return err
	}
	for _, r := range rooms {
		doc.Rooms = append(doc.Rooms, exportRoom{ID: r.ID, Name: r.Name, Capacity: r.Capacity, Building: r.Building})
	}

	speakers, err := catalog.ListSpeakers(ctx, eventID)
	if err != nil {
		return err
	}
	for _, s := range speakers {
		doc.Speakers = append(doc.Speakers, exportSpeaker{ID: s.ID, Name: s.Name, Title: s.Title})
	}

	contingencies, err := catalog.ListContingencies(ctx, eventID)
	if err != nil {
		return err
	}
	for _, c := range contingencies {
		doc.Contingencies = append(doc.Contingencies, exportContingency{
			ID:          c.ID,
			Type:        c.Type,
			RiskLevel:   c.RiskLevel,
			Description: c.Description,
			Status:      c.Status,
		})
	}
	return nil
}

func exportMessages(ctx context.Context, repo persistence.MessageRepository, eventID string, doc *programExport) error {
	messages, err := repo.ListMessages(ctx, eventID)
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}
	for _, m := range messages {
		doc.Messages = append(doc.Messages, exportMessage{
			ID:            m.ID,
			SessionID:     derefString(m.SessionID),
			ParticipantID: derefString(m.ParticipantID),
			Recipient:     m.Recipient,
			Status:        m.Status,
			Error:         m.Error,
			ContentDigest: m.ContentDigest,
			SentAt:        formatExportTime(m.SentAt),
		})
	}
	return nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
