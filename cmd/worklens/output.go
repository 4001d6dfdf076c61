package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/worklens/worklens/internal/types"
	"github.com/worklens/worklens/internal/ui"
)

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(out *types.CorrelatedCollection) {
	renderReport(os.Stdout, out, ui.IsTerminal())
}

// renderReport writes the human-readable run report. Styling is applied
// only when the destination is a terminal.
func renderReport(w io.Writer, out *types.CorrelatedCollection, styled bool) {
	accent := passthrough
	muted := passthrough
	title := passthrough
	warn := passthrough
	separator := ui.SeparatorLight
	if styled {
		accent = ui.RenderAccent
		muted = ui.RenderMuted
		title = ui.RenderTitle
		warn = ui.RenderWarn
		separator = ui.RenderSeparator()
	}

	if out.Partial {
		fmt.Fprintln(w, warn(ui.IconWarn+" partial run: not all candidate pairs were evaluated"))
	}

	fmt.Fprintln(w, title("work stories"))
	for _, s := range out.Stories {
		fmt.Fprintf(w, "%s %s\n", accent(s.ID), s.Title)
		fmt.Fprintf(w, "  %s %d items", muted("members:"), s.Size())
		if len(s.Authors) > 0 {
			fmt.Fprintf(w, "  %s %s", muted("authors:"), strings.Join(s.Authors, ", "))
		}
		fmt.Fprintln(w)
		if len(s.Technologies) > 0 {
			fmt.Fprintf(w, "  %s %s\n", muted("tech:"), strings.Join(s.Technologies, ", "))
		}
		if s.ComplexityScore > 0 {
			fmt.Fprintf(w, "  %s %.2f\n", muted("complexity:"), s.ComplexityScore)
		}
		for _, rel := range s.Relationships {
			fmt.Fprintf(w, "  %s %s %s %s (%.2f, %s)\n",
				muted("└─"), rel.PrimaryID, rel.Kind, rel.RelatedID, rel.Confidence, rel.Method)
		}
	}

	fmt.Fprintln(w, separator)
	fmt.Fprintln(w, title("insights"))
	in := out.Insights
	fmt.Fprintf(w, "  stories: %d (%d singletons)\n", in.TotalStories, in.SingletonStories)
	fmt.Fprintf(w, "  relationships: %d, mean confidence %.2f\n", in.TotalRelationships, in.MeanConfidence)
	fmt.Fprintf(w, "  linked evidence: %.0f%%\n", in.LinkedEvidenceRatio*100)
	if in.Temporal.LeadSamples > 0 {
		fmt.Fprintf(w, "  ticket lead: mean %.1fd, median %.1fd (%d samples)\n",
			in.Temporal.MeanTicketLeadDays, in.Temporal.MedianTicketLeadDays, in.Temporal.LeadSamples)
	}
	if len(in.TechnologyFrequency) > 0 {
		fmt.Fprintf(w, "  technologies: %s\n", formatFrequency(in.TechnologyFrequency))
	}
	fmt.Fprintf(w, "  input hash: %s\n", muted(out.InputHash))
}

func formatFrequency(freq map[string]int) string {
	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s (%d)", k, freq[k]))
	}
	return strings.Join(parts, ", ")
}

func passthrough(s string) string { return s }
