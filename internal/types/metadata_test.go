package types

import (
	"reflect"
	"testing"
)

func TestMetadataAccessors(t *testing.T) {
	item := validItem()
	item.Source = SourceMergeRequest
	item.Metadata = map[string]string{
		MetaBranch:       "feature/ABC-123-auth-fix",
		MetaFilesChanged: "internal/auth/session.go\nweb/login.ts\n",
		MetaLinesChanged: "240",
		MetaLabels:       "auth, backend",
		MetaState:        "merged",
	}

	if got := item.BranchName(); got != "feature/ABC-123-auth-fix" {
		t.Errorf("BranchName() = %q", got)
	}
	wantFiles := []string{"internal/auth/session.go", "web/login.ts"}
	if got := item.ChangedFiles(); !reflect.DeepEqual(got, wantFiles) {
		t.Errorf("ChangedFiles() = %v, want %v", got, wantFiles)
	}
	if got := item.LinesChanged(); got != 240 {
		t.Errorf("LinesChanged() = %d, want 240", got)
	}
	wantLabels := []string{"auth", "backend"}
	if got := item.Labels(); !reflect.DeepEqual(got, wantLabels) {
		t.Errorf("Labels() = %v, want %v", got, wantLabels)
	}
	if !item.IsMerged() {
		t.Error("IsMerged() = false for merged merge request")
	}
}

func TestMetadataAccessorsAbsent(t *testing.T) {
	item := validItem()
	if item.BranchName() != "" || item.TicketKey() != "" {
		t.Error("accessors over nil metadata should return zero values")
	}
	if item.ChangedFiles() != nil || item.Labels() != nil {
		t.Error("list accessors over nil metadata should return nil")
	}
	if item.LinesChanged() != 0 {
		t.Error("LinesChanged() over nil metadata should be 0")
	}
}

func TestLinesChangedMalformed(t *testing.T) {
	item := validItem()
	item.Metadata = map[string]string{MetaLinesChanged: "lots"}
	if got := item.LinesChanged(); got != 0 {
		t.Errorf("LinesChanged() = %d for malformed value, want 0", got)
	}
	item.Metadata[MetaLinesChanged] = "-5"
	if got := item.LinesChanged(); got != 0 {
		t.Errorf("LinesChanged() = %d for negative value, want 0", got)
	}
}

func TestIsResolvedTicket(t *testing.T) {
	tests := []struct {
		name   string
		source SourceKind
		status string
		want   bool
	}{
		{"resolved ticket", SourceTicket, "Done", true},
		{"closed ticket", SourceTicket, "closed", true},
		{"open ticket", SourceTicket, "In Progress", false},
		{"no status", SourceTicket, "", false},
		{"resolved-looking commit", SourceCommit, "done", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			item.Source = tt.source
			if tt.status != "" {
				item.Metadata = map[string]string{MetaStatus: tt.status}
			}
			if got := item.IsResolvedTicket(); got != tt.want {
				t.Errorf("IsResolvedTicket() = %v, want %v", got, tt.want)
			}
		})
	}
}
