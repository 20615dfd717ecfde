package disputes

import (
	"sort"
	"time"
)

// TimelineEntryType tags the stream an entry came from.
type TimelineEntryType string

const (
	TimelineMessage  TimelineEntryType = "message"
	TimelineEvidence TimelineEntryType = "evidence"
)

// TimelineEntry is one row of the merged case timeline.
type TimelineEntry struct {
	Type      TimelineEntryType `json:"type"`
	CreatedAt time.Time         `json:"created_at"`

	// message fields
	Role     PartyRole `json:"role,omitempty"`
	AuthorID string    `json:"author_id,omitempty"`
	Text     string    `json:"text,omitempty"`

	// evidence fields
	EvidenceID string   `json:"evidence_id,omitempty"`
	Kind       string   `json:"kind,omitempty"`
	Filename   string   `json:"filename,omitempty"`
	StorageKey string   `json:"storage_key,omitempty"`
	AVStatus   AVStatus `json:"av_status,omitempty"`

	seq int64
}

// BuildTimeline merges the message and evidence streams into a single list
// sorted ascending by created_at. Entries with equal timestamps keep their
// insertion order via the per-row sequence number. System messages carry
// the status-transition narrations, so the merged list is the complete
// case history.
func BuildTimeline(messages []DisputeMessage, evidence []DisputeEvidence) []TimelineEntry {
	entries := make([]TimelineEntry, 0, len(messages)+len(evidence))

	for i := range messages {
		m := &messages[i]
		entry := TimelineEntry{
			Type:      TimelineMessage,
			CreatedAt: m.CreatedAt,
			Role:      m.Role,
			Text:      m.Text,
			seq:       m.Seq,
		}
		if m.AuthorID != nil {
			entry.AuthorID = m.AuthorID.String()
		}
		entries = append(entries, entry)
	}

	for i := range evidence {
		e := &evidence[i]
		entries = append(entries, TimelineEntry{
			Type:       TimelineEvidence,
			CreatedAt:  e.CreatedAt,
			EvidenceID: e.ID.String(),
			Kind:       string(e.Kind),
			Filename:   e.Filename,
			StorageKey: e.StorageKey,
			AVStatus:   e.AVStatus,
			seq:        e.Seq,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].seq < entries[j].seq
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return entries
}

// FilterEvidenceForViewer drops evidence the viewer may not see: infected
// or failed scans uploaded by the other party.
func FilterEvidenceForViewer(evidence []DisputeEvidence, viewerID string, isOperator bool) []DisputeEvidence {
	if isOperator {
		return evidence
	}

	visible := make([]DisputeEvidence, 0, len(evidence))
	for i := range evidence {
		e := evidence[i]
		if e.UploadedBy.String() == viewerID || e.AVStatus.VisibleToOpposingParty() {
			visible = append(visible, e)
		}
	}
	return visible
}
