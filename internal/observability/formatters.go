// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/pinkpig777/agentic-resume-tailor/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintTargetProfile outputs a human-readable summary of the extracted
// target profile.
func (p *Printer) PrintTargetProfile(profile *types.TargetProfile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Role:     %s\n", profile.RoleTitle))
	if profile.RoleSummary != "" {
		sb.WriteString(fmt.Sprintf("Summary:  %s\n", profile.RoleSummary))
	}
	sb.WriteString("\n")

	writeKeywordList(&sb, "Must Have", profile.MustHave)
	writeKeywordList(&sb, "Nice To Have", profile.NiceToHave)

	if n := len(profile.RetrievalPlan.ExperienceQueries); n > 0 {
		sb.WriteString(fmt.Sprintf("Planned Queries: %d\n", n))
		count := min(n, maxItemsToShow)
		for i := 0; i < count; i++ {
			q := profile.RetrievalPlan.ExperienceQueries[i]
			sb.WriteString(fmt.Sprintf("  • %s (w=%.1f)\n", q.Query, q.Weight))
		}
		if n > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", n-maxItemsToShow))
		}
	}

	p.printBox("TARGET PROFILE", sb.String())
}

func writeKeywordList(sb *strings.Builder, title string, keywords []types.Keyword) {
	if len(keywords) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	count := min(len(keywords), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", keywords[i].Canonical))
	}
	if len(keywords) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(keywords)-maxItemsToShow))
	}
	sb.WriteString("\n")
}

// PrintIteration outputs a one-iteration summary of the tailoring loop.
func (p *Printer) PrintIteration(trace types.IterationTrace) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Queries:    %d\n", len(trace.QueriesUsed)))
	sb.WriteString(fmt.Sprintf("Candidates: %d\n", trace.CandidateCount))
	sb.WriteString(fmt.Sprintf("Selected:   %d\n", len(trace.SelectedIDs)))
	if len(trace.BoostTerms) > 0 {
		sb.WriteString(fmt.Sprintf("Boosts:     %s\n", strings.Join(trace.BoostTerms, ", ")))
	}
	if trace.Scored {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Final Score:     %d\n", trace.Scores.Final))
		sb.WriteString(fmt.Sprintf("Retrieval:       %.3f\n", trace.Scores.Retrieval))
		sb.WriteString(fmt.Sprintf("Coverage (page): %.3f\n", trace.Scores.CoverageBulletsOnly))
		sb.WriteString(fmt.Sprintf("Coverage (all):  %.3f\n", trace.Scores.CoverageAll))
	}
	if len(trace.MustMissingBulletsOnly) > 0 {
		sb.WriteString(fmt.Sprintf("\nMissing must-haves: %s\n", strings.Join(trace.MustMissingBulletsOnly, ", ")))
	}
	p.printBox(fmt.Sprintf("ITERATION %d", trace.Iteration), sb.String())
}

// PrintRunSummary outputs the final run report summary.
func (p *Printer) PrintRunSummary(report *types.RunReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:        %s\n", report.RunID))
	if report.RoleTitle != "" {
		sb.WriteString(fmt.Sprintf("Role:       %s\n", report.RoleTitle))
	}
	sb.WriteString(fmt.Sprintf("Iterations: %d (best: %d)\n", len(report.Iterations), report.BestIterationIndex))
	sb.WriteString(fmt.Sprintf("Score:      %d\n", report.FinalScore))
	sb.WriteString(fmt.Sprintf("Bullets:    %d\n", len(report.Bullets)))

	rewritten := 0
	for _, b := range report.Bullets {
		if b.Rewritten {
			rewritten++
		}
	}
	if rewritten > 0 {
		sb.WriteString(fmt.Sprintf("Rewritten:  %d\n", rewritten))
	}
	if !report.ProfileUsed {
		sb.WriteString("\nMode: retrieval-only (no structured profile)\n")
	}
	p.printBox("RUN SUMMARY", sb.String())
}
