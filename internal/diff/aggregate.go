// File: internal/diff/aggregate.go
package diff

import (
	"slices"

	"github.com/xkilldash9x/autoscan-cli/api/schemas"
)

// IssueDiff accumulates the discrepancies recorded against a single rule.
// Missing counts issues present in the reference run but absent from the
// run under test; New counts the opposite direction (potential false
// positives of the batch analysis).
type IssueDiff struct {
	RuleKey RuleKey
	Missing int
	New     int
}

// record applies the differential plugin's severity convention: the plugin
// re-purposes severity to encode the kind of discrepancy. BLOCKER marks a
// missing issue; every other severity marks a new one. This convention is a
// contract of the upstream plugin and lives only here.
func (d *IssueDiff) record(severity schemas.Severity) {
	if severity == schemas.SeverityBlocker {
		d.Missing++
	} else {
		d.New++
	}
}

// DifferenceReport is the per-rule tally of one aggregation pass, ordered
// by CompareRuleKeys, plus grand totals. It is built once by Aggregate and
// never mutated afterwards.
type DifferenceReport struct {
	Diffs        []IssueDiff
	TotalMissing int
	TotalNew     int
}

// RuleCount returns the number of distinct rules with at least one
// discrepancy.
func (r *DifferenceReport) RuleCount() int {
	return len(r.Diffs)
}

// Aggregate folds the full issue sequence of a run into a DifferenceReport.
// An acc is created lazily on the first occurrence of a rule key; exactly
// one update is applied per issue. A rule identifier outside the expected
// naming scheme aborts with ErrMalformedRuleKey.
func Aggregate(issues []schemas.Issue) (*DifferenceReport, error) {
	byKey := make(map[RuleKey]*IssueDiff)
	for _, issue := range issues {
		key, err := ParseRuleKey(issue.Rule)
		if err != nil {
			return nil, err
		}
		acc, ok := byKey[key]
		if !ok {
			acc = &IssueDiff{RuleKey: key}
			byKey[key] = acc
		}
		acc.record(issue.Severity)
	}

	report := &DifferenceReport{Diffs: make([]IssueDiff, 0, len(byKey))}
	for _, acc := range byKey {
		report.Diffs = append(report.Diffs, *acc)
		report.TotalMissing += acc.Missing
		report.TotalNew += acc.New
	}
	// Map iteration order is random; sort so the report is reproducible
	// regardless of arrival order.
	slices.SortFunc(report.Diffs, func(a, b IssueDiff) int {
		return CompareRuleKeys(a.RuleKey, b.RuleKey)
	})
	return report, nil
}
