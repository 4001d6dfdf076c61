package types

import (
	"strconv"
	"strings"
)

// Typed views over the free-form metadata map. Source-specific shapes
// (branch names on commits, status on tickets, changed files on merge
// requests) stay in Metadata; call sites use these accessors instead of
// inspecting the map directly.

// Metadata keys recognized by the engine.
const (
	MetaBranch       = "branch"
	MetaTicketKey    = "key"
	MetaFilesChanged = "files_changed"
	MetaLinesChanged = "lines_changed"
	MetaLabels       = "labels"
	MetaStatus       = "status"
	MetaState        = "state"
)

// BranchName returns the source branch recorded for a commit or merge
// request, or "" when absent.
func (e *EvidenceItem) BranchName() string {
	return e.Metadata[MetaBranch]
}

// TicketKey returns the ticket-tracker key (e.g. "ABC-123") recorded for a
// ticket or ticket comment, or "" when absent.
func (e *EvidenceItem) TicketKey() string {
	return e.Metadata[MetaTicketKey]
}

// ChangedFiles returns the file paths touched by a commit or merge request.
// Paths are stored newline-separated in metadata.
func (e *EvidenceItem) ChangedFiles() []string {
	raw := e.Metadata[MetaFilesChanged]
	if raw == "" {
		return nil
	}
	var files []string
	for _, f := range strings.Split(raw, "\n") {
		f = strings.TrimSpace(f)
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// LinesChanged returns the total added+removed line count recorded for a
// commit or merge request, or 0 when absent or malformed.
func (e *EvidenceItem) LinesChanged() int {
	n, err := strconv.Atoi(e.Metadata[MetaLinesChanged])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Labels returns the labels recorded for the item, stored comma-separated.
func (e *EvidenceItem) Labels() []string {
	raw := e.Metadata[MetaLabels]
	if raw == "" {
		return nil
	}
	var labels []string
	for _, l := range strings.Split(raw, ",") {
		l = strings.TrimSpace(l)
		if l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// TicketStatus returns the lowercase workflow status recorded for a ticket.
func (e *EvidenceItem) TicketStatus() string {
	return strings.ToLower(strings.TrimSpace(e.Metadata[MetaStatus]))
}

// resolvedStatuses are the ticket workflow states treated as terminal.
var resolvedStatuses = map[string]bool{
	"done":      true,
	"closed":    true,
	"resolved":  true,
	"completed": true,
}

// IsResolvedTicket reports whether the item is a ticket in a terminal
// workflow state.
func (e *EvidenceItem) IsResolvedTicket() bool {
	return e.Source == SourceTicket && resolvedStatuses[e.TicketStatus()]
}

// IsMerged reports whether the item is a merge request in the merged state.
func (e *EvidenceItem) IsMerged() bool {
	return e.Source == SourceMergeRequest &&
		strings.EqualFold(strings.TrimSpace(e.Metadata[MetaState]), "merged")
}
