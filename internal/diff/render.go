// File: internal/diff/render.go
package diff

import (
	"fmt"
	"strings"
)

const (
	reportHeader    = "Rule;Missing;New\n"
	reportSeparator = "-----;-----;-----\n"
)

// Render serializes the report as the fixed semicolon-delimited text the
// baselines are stored in:
//
//	Rule;Missing;New
//	-----;-----;-----
//	S2;0;1
//	S100;1;1
//	-----;-----;-----
//	Rule;Missing;New
//	2;1;2
//
// Rendering is deterministic; the same report always yields byte-identical
// output.
func (r *DifferenceReport) Render() string {
	var sb strings.Builder
	sb.WriteString(reportHeader)
	sb.WriteString(reportSeparator)
	for _, d := range r.Diffs {
		fmt.Fprintf(&sb, "%s;%d;%d\n", d.RuleKey, d.Missing, d.New)
	}
	sb.WriteString(reportSeparator)
	sb.WriteString(reportHeader)
	fmt.Fprintf(&sb, "%d;%d;%d\n", r.RuleCount(), r.TotalMissing, r.TotalNew)
	return sb.String()
}
