package publishers

import "time"

// Event is the payload published when a watched lookup changes.
type Event struct {
	TargetID   string    `json:"target_id"`
	TargetName string    `json:"target_name"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Hash       string    `json:"hash"`
	Snapshot   any       `json:"snapshot"`
	ObservedAt time.Time `json:"observed_at"`
}

// NewEvent constructs an Event stamped with the current UTC time.
func NewEvent(targetID, targetName, kind, subject, hash string, snapshot any) Event {
	return Event{
		TargetID:   targetID,
		TargetName: targetName,
		Kind:       kind,
		Subject:    subject,
		Hash:       hash,
		Snapshot:   snapshot,
		ObservedAt: time.Now().UTC(),
	}
}

// attributes are attached to queue/topic messages for subscriber-side filtering.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"target_id": e.TargetID,
		"kind":      e.Kind,
	}
}
