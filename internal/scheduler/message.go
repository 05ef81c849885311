package scheduler

import (
	"fmt"
	"strings"
)

// RenderReminderMessage builds the notification body sent to a participant.
// Optional lines follow the order time, location, room, speaker, description
// and are omitted when the session leaves the field empty. The start time is
// formatted in the location carried by session.Start.
func RenderReminderMessage(participant Participant, session Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Hello %s!\n\n", participant.FullName())
	fmt.Fprintf(&b, "Reminder: starting in %d minutes:\n\n", session.ReminderLeadMinutes)
	fmt.Fprintf(&b, "*%s*\n", session.Title)
	fmt.Fprintf(&b, "Time: %s\n", session.Start.Format("15:04"))

	if v := strings.TrimSpace(session.Location); v != "" {
		fmt.Fprintf(&b, "Location: %s\n", v)
	}
	if v := strings.TrimSpace(session.RoomName); v != "" {
		fmt.Fprintf(&b, "Room: %s\n", v)
	}
	if v := strings.TrimSpace(session.SpeakerName); v != "" {
		fmt.Fprintf(&b, "Speaker: %s\n", v)
	}
	if v := strings.TrimSpace(session.Description); v != "" {
		fmt.Fprintf(&b, "\n%s\n", v)
	}

	b.WriteString("\nSee you there!")
	return b.String()
}
