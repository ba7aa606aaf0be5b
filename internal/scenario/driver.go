// File: internal/scenario/driver.go
// Description: Orchestrates the end-to-end differential verification: two
// analysis runs, issue collection, aggregation, rendering, and the two
// baseline assertions.
package scenario

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/autoscan-cli/api/schemas"
	"github.com/xkilldash9x/autoscan-cli/internal/config"
	"github.com/xkilldash9x/autoscan-cli/internal/diff"
	"github.com/xkilldash9x/autoscan-cli/internal/invoker"
	"github.com/xkilldash9x/autoscan-cli/internal/platform"
)

// MismatchError reports an assertion that failed against a recorded
// baseline. It carries a line-level diff of expected vs. actual. Fatal to
// the scenario, not to the process.
type MismatchError struct {
	Subject  string
	Expected string
	Actual   string
}

// Error renders the mismatch with a diff-style expected/actual comparison.
func (e *MismatchError) Error() string {
	d := cmp.Diff(strings.Split(e.Expected, "\n"), strings.Split(e.Actual, "\n"))
	return fmt.Sprintf("%s does not match baseline (-expected +actual):\n%s", e.Subject, d)
}

// RunRecorder persists the outcome of a verification run. Optional; a nil
// recorder disables history.
type RunRecorder interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

// RunRecord is one verification run's outcome.
type RunRecord struct {
	ID              string
	ProjectKey      string
	Passed          bool
	DifferenceCount int
	RuleCount       int
	TotalMissing    int
	TotalNew        int
	Report          string
	FinishedAt      time.Time
}

// Result holds everything a verification run produced.
type Result struct {
	RunID           string
	DifferenceCount int
	Report          *diff.DifferenceReport
	Rendered        string
	Passed          bool
}

// Driver runs the verification scenario. Strictly sequential: the batch
// run needs the full run's dump as its reference, so the two invocations
// never overlap.
type Driver struct {
	cfg       *config.Config
	invoker   invoker.Invoker
	collector *platform.Collector
	recorder  RunRecorder
	log       *zap.Logger
}

// NewDriver wires a scenario driver. recorder may be nil.
func NewDriver(cfg *config.Config, inv invoker.Invoker, collector *platform.Collector, recorder RunRecorder, logger *zap.Logger) *Driver {
	return &Driver{
		cfg:       cfg,
		invoker:   inv,
		collector: collector,
		recorder:  recorder,
		log:       logger.Named("scenario"),
	}
}

// Verify executes the scenario end to end and returns its result. An
// assertion failure is returned as a *MismatchError with Result.Passed
// false; Result is non-nil whenever the scenario got far enough to produce
// one. Scratch directories are removed on every exit path.
func (d *Driver) Verify(ctx context.Context) (*Result, error) {
	runID := uuid.New().String()
	d.log.Info("Starting verification scenario",
		zap.String("runID", runID),
		zap.String("project", d.cfg.Project.Key),
	)

	workspace, err := os.MkdirTemp("", "autoscan-verify-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario workspace: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(workspace); rmErr != nil {
			d.log.Warn("Failed to remove scenario workspace", zap.Error(rmErr))
		}
	}()

	if !d.cfg.Analysis.Skip {
		if err := d.runAnalyses(ctx, workspace); err != nil {
			return nil, err
		}
	} else {
		d.log.Info("Skipping analysis invocations, server analyzed out of band")
	}

	// Raw count assertion. No differences at all would mean batch mode
	// finds exactly what the full analysis finds; the baseline records the
	// approved gap.
	count, err := invoker.ReadDifferenceCount(invoker.DifferencesFile(d.cfg, "batch"))
	if err != nil {
		return nil, err
	}
	expectedCount, err := LoadExpectedCount(d.cfg.Baseline.CountFile)
	if err != nil {
		return nil, err
	}
	if count != expectedCount {
		res := &Result{RunID: runID, DifferenceCount: count}
		mismatch := &MismatchError{
			Subject:  "raw difference count",
			Expected: invoker.FormatDifferenceCount(expectedCount),
			Actual:   invoker.FormatDifferenceCount(count),
		}
		d.record(ctx, res)
		return res, mismatch
	}

	// The differential plugin raises its per-issue verdicts as OPEN issues
	// on the run under test; collect them all.
	issues, err := d.collector.CollectAll(ctx, d.cfg.Project.Key, schemas.StatusOpen)
	if err != nil {
		return nil, err
	}
	report, err := diff.Aggregate(issues)
	if err != nil {
		return nil, err
	}
	rendered := report.Render()

	res := &Result{
		RunID:           runID,
		DifferenceCount: count,
		Report:          report,
		Rendered:        rendered,
	}

	expectedReport, err := LoadExpectedReport(d.cfg.Baseline.ReportFile)
	if err != nil {
		return nil, err
	}
	if rendered != expectedReport {
		mismatch := &MismatchError{
			Subject:  "difference report",
			Expected: expectedReport,
			Actual:   rendered,
		}
		d.record(ctx, res)
		return res, mismatch
	}

	res.Passed = true
	d.record(ctx, res)
	d.log.Info("Verification scenario passed",
		zap.String("runID", runID),
		zap.Int("differences", count),
		zap.Int("rules", report.RuleCount()),
	)
	return res, nil
}

// runAnalyses triggers the two external runs, full first. The scratch
// dump directory and the dummy binaries directory live inside the scenario
// workspace and vanish with it.
func (d *Driver) runAnalyses(ctx context.Context, workspace string) error {
	scratchDump, err := os.MkdirTemp(workspace, "dump-old-")
	if err != nil {
		return fmt.Errorf("failed to create scratch dump dir: %w", err)
	}
	if err := d.invoker.Run(ctx, invoker.FullAnalysisSpec(d.cfg, scratchDump)); err != nil {
		return err
	}

	dummyBinaries, err := os.MkdirTemp(workspace, "binaries-")
	if err != nil {
		return fmt.Errorf("failed to create dummy binaries dir: %w", err)
	}
	return d.invoker.Run(ctx, invoker.BatchAnalysisSpec(d.cfg, dummyBinaries))
}

func (d *Driver) record(ctx context.Context, res *Result) {
	if d.recorder == nil {
		return
	}
	rec := RunRecord{
		ID:              res.RunID,
		ProjectKey:      d.cfg.Project.Key,
		Passed:          res.Passed,
		DifferenceCount: res.DifferenceCount,
		Report:          res.Rendered,
		FinishedAt:      time.Now().UTC(),
	}
	if res.Report != nil {
		rec.RuleCount = res.Report.RuleCount()
		rec.TotalMissing = res.Report.TotalMissing
		rec.TotalNew = res.Report.TotalNew
	}
	if err := d.recorder.RecordRun(ctx, rec); err != nil {
		// History is best effort; a storage failure never masks the verdict.
		d.log.Warn("Failed to record verification run", zap.Error(err))
	}
}
