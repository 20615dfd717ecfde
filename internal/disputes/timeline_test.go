package disputes

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTimelineOrdering(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	author := uuid.New()

	messages := []DisputeMessage{
		{Role: RoleSystem, Text: "Dispute opened", Seq: 1, CreatedAt: base},
		{AuthorID: &author, Role: RoleRenter, Text: "The drill came back broken", Seq: 2, CreatedAt: base.Add(time.Minute)},
		{AuthorID: &author, Role: RoleOwner, Text: "It worked fine at pickup", Seq: 5, CreatedAt: base.Add(3 * time.Minute)},
	}
	evidence := []DisputeEvidence{
		{ID: uuid.New(), Kind: EvidencePhoto, Filename: "chuck.jpg", Seq: 3, CreatedAt: base.Add(2 * time.Minute)},
		{ID: uuid.New(), Kind: EvidenceVideo, Filename: "spin-test.mp4", Seq: 4, CreatedAt: base.Add(2 * time.Minute)},
	}

	timeline := BuildTimeline(messages, evidence)
	require.Len(t, timeline, 5)

	assert.Equal(t, TimelineMessage, timeline[0].Type)
	assert.Equal(t, "Dispute opened", timeline[0].Text)
	assert.Equal(t, "The drill came back broken", timeline[1].Text)
	assert.Equal(t, "chuck.jpg", timeline[2].Filename)
	assert.Equal(t, "spin-test.mp4", timeline[3].Filename)
	assert.Equal(t, "It worked fine at pickup", timeline[4].Text)

	for i := 1; i < len(timeline); i++ {
		assert.False(t, timeline[i].CreatedAt.Before(timeline[i-1].CreatedAt))
	}
}

func TestBuildTimelineTieBreakBySequence(t *testing.T) {
	// Same timestamp: the per-row sequence keeps insertion order stable
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	messages := []DisputeMessage{
		{Role: RoleSystem, Text: "second", Seq: 2, CreatedAt: at},
		{Role: RoleSystem, Text: "first", Seq: 1, CreatedAt: at},
	}
	evidence := []DisputeEvidence{
		{ID: uuid.New(), Kind: EvidencePhoto, Filename: "third.jpg", Seq: 3, CreatedAt: at},
	}

	timeline := BuildTimeline(messages, evidence)
	require.Len(t, timeline, 3)
	assert.Equal(t, "first", timeline[0].Text)
	assert.Equal(t, "second", timeline[1].Text)
	assert.Equal(t, "third.jpg", timeline[2].Filename)
}

func TestBuildTimelineEmpty(t *testing.T) {
	assert.Empty(t, BuildTimeline(nil, nil))
}

func TestFilterEvidenceForViewer(t *testing.T) {
	renter := uuid.New()
	owner := uuid.New()

	evidence := []DisputeEvidence{
		{UploadedBy: renter, Filename: "renter-clean.jpg", AVStatus: AVClean},
		{UploadedBy: renter, Filename: "renter-pending.jpg", AVStatus: AVPending},
		{UploadedBy: renter, Filename: "renter-infected.jpg", AVStatus: AVInfected},
		{UploadedBy: owner, Filename: "owner-failed.jpg", AVStatus: AVFailed},
		{UploadedBy: owner, Filename: "owner-clean.jpg", AVStatus: AVClean},
	}

	t.Run("operator sees everything", func(t *testing.T) {
		visible := FilterEvidenceForViewer(evidence, uuid.New().String(), true)
		assert.Len(t, visible, 5)
	})

	t.Run("uploader always sees their own files", func(t *testing.T) {
		visible := FilterEvidenceForViewer(evidence, renter.String(), false)
		names := filenames(visible)
		assert.Contains(t, names, "renter-infected.jpg")
		assert.Contains(t, names, "renter-clean.jpg")
		assert.Contains(t, names, "owner-clean.jpg")
		assert.NotContains(t, names, "owner-failed.jpg")
	})

	t.Run("opposing party never sees infected or failed files", func(t *testing.T) {
		visible := FilterEvidenceForViewer(evidence, owner.String(), false)
		names := filenames(visible)
		assert.Contains(t, names, "renter-clean.jpg")
		assert.Contains(t, names, "renter-pending.jpg")
		assert.NotContains(t, names, "renter-infected.jpg")
		assert.Contains(t, names, "owner-failed.jpg", "own uploads stay visible regardless of scan result")
	})
}

func filenames(evidence []DisputeEvidence) []string {
	names := make([]string, 0, len(evidence))
	for i := range evidence {
		names = append(names, evidence[i].Filename)
	}
	return names
}
