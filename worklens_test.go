package worklens

import (
	"context"
	"testing"
	"time"
)

func TestCorrelateEndToEnd(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	items := []EvidenceItem{
		{
			ID: "jira-ABC-123", Source: SourceTicket, Author: "sam",
			CreatedAt: created, Title: "Login fails on expired session",
			Metadata: map[string]string{"key": "ABC-123"},
		},
		{
			ID: "gl-commit-9", Source: SourceCommit, Author: "dana",
			CreatedAt: created.AddDate(0, 0, 2),
			Title:     "ABC-123: fix session expiry check",
		},
	}

	out, err := Correlate(context.Background(), DefaultConfig(), items)
	if err != nil {
		t.Fatalf("Correlate() error = %v", err)
	}
	if len(out.Stories) != 1 {
		t.Fatalf("got %d stories, want 1", len(out.Stories))
	}
	if len(out.Relationships) != 1 {
		t.Fatalf("got %d relationships, want 1", len(out.Relationships))
	}
	if out.Relationships[0].Kind != KindSolves {
		t.Errorf("Kind = %v, want solves", out.Relationships[0].Kind)
	}
}

func TestCorrelateRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AcceptThreshold = 2
	if _, err := Correlate(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected config validation error")
	}
}
