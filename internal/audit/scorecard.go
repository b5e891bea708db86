package audit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	passStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e53935"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	labelStyle = lipgloss.NewStyle().Faint(true)
)

// Scorecard renders the human-readable run summary. Always produced, even
// on partial failure.
func Scorecard(r *Report) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("normscan scorecard"))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("run:"), r.RunID)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("fingerprint:"), short(r.RunFingerprint))
	fmt.Fprintf(&b, "%s %d  (MUST %d, SHOULD %d, COULD %d, INFO %d)\n",
		labelStyle.Render("rules:"), r.RuleCount,
		r.Priorities.Must, r.Priorities.Should, r.Priorities.Could, r.Priorities.Info)

	if strings.EqualFold(r.ConsistencyCheck, "pass") {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("consistency:"), passStyle.Render("PASS"))
	} else {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("consistency:"), failStyle.Render("FAIL"))
	}

	if len(r.Conflicts) > 0 {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render(fmt.Sprintf("conflicts: %d (see run_report.json)", len(r.Conflicts))))
		for _, c := range r.Conflicts {
			fmt.Fprintf(&b, "  %s resolved to %s via %s\n", c.RuleID, c.Resolved, c.Policy)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "%s\n", warnStyle.Render(fmt.Sprintf("warnings: %d", len(r.Warnings))))
	}

	if r.BaselineDiff != nil {
		d := r.BaselineDiff
		if d.Unchanged() {
			fmt.Fprintf(&b, "%s unchanged since baseline %s\n", labelStyle.Render("baseline:"), short(d.BaselineFingerprint))
		} else {
			fmt.Fprintf(&b, "%s +%d -%d ~%d vs %s\n", labelStyle.Render("baseline:"),
				len(d.Added), len(d.Removed), len(d.Modified), short(d.BaselineFingerprint))
		}
	}

	return b.String()
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	if hash == "" {
		return "(none)"
	}
	return hash
}
