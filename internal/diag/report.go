package diag

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"rvsdgc/internal/opt"
	"rvsdgc/internal/rvsdg"
)

// PassReport records one pipeline pass's effect on a region, counted by
// total node count (recursively through subregions) before and after.
type PassReport struct {
	Name        string
	Description string
	Changed     bool
	NodesBefore int
	NodesAfter  int
}

// RunPasses applies each pass to root in order, same contract as
// opt.Pipeline.Run, and returns one PassReport per pass for FormatReports.
// cmd/rvsdgc calls this instead of opt.Pipeline.Run so it can print a
// change summary; opt.Pipeline itself stays free of a diag dependency.
func RunPasses(passes []opt.Pass, root *rvsdg.Region) ([]PassReport, error) {
	reports := make([]PassReport, 0, len(passes))
	for _, pass := range passes {
		before := countNodes(root)
		changed, err := pass.Apply(root)
		if err != nil {
			return reports, fmt.Errorf("pass %q: %w", pass.Name(), err)
		}
		reports = append(reports, PassReport{
			Name:        pass.Name(),
			Description: pass.Description(),
			Changed:     changed,
			NodesBefore: before,
			NodesAfter:  countNodes(root),
		})
	}
	return reports, nil
}

func countNodes(r *rvsdg.Region) int {
	n := len(r.Nodes())
	for _, node := range r.Nodes() {
		for _, sub := range node.Subregions() {
			n += countNodes(sub)
		}
	}
	return n
}

// FormatReports renders pass reports as a colored, boxed summary in the
// style of internal/errors/reporter.go's "│"-gutter formatting, retargeted
// from per-token source diagnostics to per-pass pipeline diagnostics.
func FormatReports(reports []PassReport) string {
	var b strings.Builder
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	changedColor := color.New(color.FgGreen, color.Bold).SprintFunc()
	noopColor := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(&b, "%s\n", bold("optimization pipeline"))
	for _, r := range reports {
		status := noopColor("no change")
		if r.Changed {
			status = changedColor(fmt.Sprintf("%+d nodes", r.NodesAfter-r.NodesBefore))
		}
		fmt.Fprintf(&b, "  %s %s: %s %s\n", dim("│"), bold(r.Name), r.Description, status)
	}
	return b.String()
}
