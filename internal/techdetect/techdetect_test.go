package techdetect

import (
	"reflect"
	"testing"
	"time"

	"github.com/worklens/worklens/internal/types"
)

func item(title, body string, meta map[string]string) *types.EvidenceItem {
	return &types.EvidenceItem{
		ID:        "c1",
		Source:    types.SourceCommit,
		Author:    "dana",
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Title:     title,
		Body:      body,
		Metadata:  meta,
	}
}

func TestTechnologiesFromFileExtensions(t *testing.T) {
	members := []*types.EvidenceItem{
		item("refactor session store", "", map[string]string{
			types.MetaFilesChanged: "internal/auth/session.go\nweb/login.tsx\nschema/users.sql",
		}),
	}
	got := Technologies(members)
	want := []string{"Go", "React", "SQL"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Technologies() = %v, want %v", got, want)
	}
}

func TestTechnologiesFromContent(t *testing.T) {
	members := []*types.EvidenceItem{
		item("move session cache to redis", "also bump the docker base image", nil),
	}
	got := Technologies(members)
	want := []string{"Docker", "Redis"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Technologies() = %v, want %v", got, want)
	}
}

func TestTechnologiesFromLabels(t *testing.T) {
	members := []*types.EvidenceItem{
		item("tune query planner", "", map[string]string{
			types.MetaLabels: "postgresql, performance",
		}),
	}
	got := Technologies(members)
	want := []string{"PostgreSQL"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Technologies() = %v, want %v", got, want)
	}
}

func TestTechnologiesDockerfileBasename(t *testing.T) {
	members := []*types.EvidenceItem{
		item("slim the build image", "", map[string]string{
			types.MetaFilesChanged: "build/Dockerfile",
		}),
	}
	got := Technologies(members)
	want := []string{"Docker"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Technologies() = %v, want %v", got, want)
	}
}

func TestTechnologiesSortedUnique(t *testing.T) {
	members := []*types.EvidenceItem{
		item("react hook cleanup", "", map[string]string{
			types.MetaFilesChanged: "web/app.tsx\nweb/hooks.jsx",
		}),
		item("more react cleanup", "react-dom upgrade", nil),
	}
	got := Technologies(members)
	want := []string{"React"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Technologies() = %v, want %v", got, want)
	}
}

func TestTechnologiesNone(t *testing.T) {
	members := []*types.EvidenceItem{item("tidy the changelog", "", nil)}
	if got := Technologies(members); got != nil {
		t.Errorf("Technologies() = %v, want nil", got)
	}
}

func TestComplexityMonotonic(t *testing.T) {
	day := func(n int) time.Time {
		return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
	}
	small := types.WorkStory{
		Technologies: []string{"Go"},
		Milestones: map[types.MilestoneKind]time.Time{
			types.MilestoneFirstCommit: day(0),
			types.MilestoneLastCommit:  day(1),
		},
	}
	big := types.WorkStory{
		Technologies: []string{"Go", "React", "PostgreSQL", "Docker"},
		Milestones: map[types.MilestoneKind]time.Time{
			types.MilestoneFirstCommit: day(0),
			types.MilestoneLastCommit:  day(20),
		},
	}

	smallMembers := []*types.EvidenceItem{
		item("small fix", "", map[string]string{types.MetaLinesChanged: "20"}),
	}
	var bigMembers []*types.EvidenceItem
	for i := 0; i < 8; i++ {
		bigMembers = append(bigMembers,
			item("big change", "", map[string]string{types.MetaLinesChanged: "150"}))
	}

	low := Complexity(&small, smallMembers, DefaultWeights())
	high := Complexity(&big, bigMembers, DefaultWeights())
	if low <= 0 || high > 1 {
		t.Fatalf("scores out of range: low=%v high=%v", low, high)
	}
	if high <= low {
		t.Errorf("Complexity not monotonic: big story %v <= small story %v", high, low)
	}
}

func TestComplexityEmptyStory(t *testing.T) {
	story := types.WorkStory{}
	if got := Complexity(&story, nil, DefaultWeights()); got != 0 {
		t.Errorf("Complexity of empty story = %v, want 0", got)
	}
}

func TestComplexityWeightsScaleDimensions(t *testing.T) {
	story := types.WorkStory{Technologies: []string{"Go", "React", "SQL", "Docker", "Redis"}}
	members := []*types.EvidenceItem{
		item("saturated change", "", map[string]string{types.MetaLinesChanged: "5000"}),
	}

	volumeOnly := Weights{Volume: 1}
	if got := Complexity(&story, members, volumeOnly); got != 1.0 {
		t.Errorf("volume-only weight = %v, want 1.0", got)
	}
	diversityOnly := Weights{Diversity: 2}
	if got := Complexity(&story, members, diversityOnly); got != 2.0 {
		t.Errorf("diversity-only weight = %v, want 2.0", got)
	}
}

func TestFrequency(t *testing.T) {
	stories := []types.WorkStory{
		{Technologies: []string{"Go", "React"}},
		{Technologies: []string{"Go"}},
		{},
	}
	got := Frequency(stories)
	want := map[string]int{"Go": 2, "React": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Frequency() = %v, want %v", got, want)
	}
}
