package scheduler

import "fmt"

// ConflictType describes the type of conflict detected between sessions.
type ConflictType string

const (
	// ConflictTypeRoom indicates a room is double-booked on the same day.
	ConflictTypeRoom ConflictType = "room"
)

// Conflict details an overlapping session pair that callers can present to users.
type Conflict struct {
	Type           ConflictType
	Message        string
	SessionID      string
	OtherSessionID string
	RoomID         *string
}

// DetectConflicts scans every unordered pair of sessions and reports each pair
// sharing a room and a day whose intervals intersect. Results keep scan order.
//
// Day references are compared with nil equal to nil, so two sessions without a
// day in the same room are still compared against each other.
func DetectConflicts(sessions []Session) []Conflict {
	var conflicts []Conflict
	for i := 0; i < len(sessions); i++ {
		a := sessions[i]
		if !hasInterval(a) {
			continue
		}
		for j := i + 1; j < len(sessions); j++ {
			b := sessions[j]
			if !hasInterval(b) || !sharesRoomAndDay(a, b) || !overlaps(a, b) {
				continue
			}
			conflicts = append(conflicts, Conflict{
				Type:           ConflictTypeRoom,
				Message:        fmt.Sprintf("room conflict: %q and %q are booked in the same room at the same time", a.Title, b.Title),
				SessionID:      a.ID,
				OtherSessionID: b.ID,
				RoomID:         cloneRef(a.RoomID),
			})
		}
	}
	return conflicts
}

// DetectConflictsForCandidate checks a proposed session against existing ones
// without requiring it to be part of the collection. The session whose ID
// equals excludeID is ignored so that an edited session does not collide with
// its own stored version.
func DetectConflictsForCandidate(candidate Session, existing []Session, excludeID string) []Conflict {
	if !hasInterval(candidate) || candidate.RoomID == nil {
		return nil
	}

	var conflicts []Conflict
	for _, other := range existing {
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		if !hasInterval(other) || !sharesRoomAndDay(candidate, other) || !overlaps(candidate, other) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Type:           ConflictTypeRoom,
			Message:        fmt.Sprintf("room conflict with %q", other.Title),
			SessionID:      other.ID,
			OtherSessionID: candidate.ID,
			RoomID:         cloneRef(other.RoomID),
		})
	}
	return conflicts
}

func sharesRoomAndDay(a, b Session) bool {
	if a.RoomID == nil || b.RoomID == nil {
		return false
	}
	if *a.RoomID != *b.RoomID {
		return false
	}
	return sameRef(a.DayID, b.DayID)
}
