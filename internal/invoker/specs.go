// File: internal/invoker/specs.go
package invoker

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xkilldash9x/autoscan-cli/internal/config"
)

// DifferencesFile returns the path of the differences file the plugin
// writes for the named run.
func DifferencesFile(cfg *config.Config, runName string) string {
	return filepath.Join(cfg.Analysis.DifferencesDir, cfg.Project.Key+"-"+runName+"_differences")
}

// FullAnalysisSpec assembles the reference run: the build-tool analysis
// with complete semantic information. Its issue dump becomes the baseline
// the batch run is compared against. scratchDumpOld is a throwaway
// directory; the full run has no previous dump to diff against.
func FullAnalysisSpec(cfg *config.Config, scratchDumpOld string) RunSpec {
	return RunSpec{
		Name:    "full",
		Command: cfg.Analysis.FullCommand,
		Args:    cfg.Analysis.FullArgs,
		Dir:     cfg.Project.Location,
		Properties: []Property{
			{"analysis.projectKey", cfg.Project.Key},
			{"analysis.projectName", cfg.Project.Name},
			{"diffplugin.dump.old", scratchDumpOld},
			{"diffplugin.dump.new", cfg.Analysis.DumpDir},
			{"diffplugin.differences", DifferencesFile(cfg, "full")},
			{"analysis.failFast", strconv.FormatBool(cfg.Analysis.FailFast)},
		},
	}
}

// BatchAnalysisSpec assembles the run under test: the plain scanner in
// batch mode, with source directories only and a dummy binaries directory
// to pass validation. The full run's dump is its reference.
func BatchAnalysisSpec(cfg *config.Config, dummyBinaries string) RunSpec {
	return RunSpec{
		Name:    "batch",
		Command: cfg.Analysis.BatchCommand,
		Args:    cfg.Analysis.BatchArgs,
		Dir:     cfg.Project.Location,
		Properties: []Property{
			{"analysis.projectKey", cfg.Project.Key},
			{"analysis.projectName", cfg.Project.Name},
			{"analysis.sources", strings.Join(cfg.Project.SourceDirs, ",")},
			{"analysis.tests", strings.Join(cfg.Project.TestDirs, ",")},
			{"analysis.sourceVersion", cfg.Project.SourceVersion},
			{"analysis.sourceEncoding", cfg.Project.SourceEncoding},
			{"analysis.batchMode", "true"},
			{"analysis.binaries", dummyBinaries},
			{"diffplugin.dump.old", cfg.Analysis.DumpDir},
			{"diffplugin.dump.new", cfg.Analysis.BatchDumpDir},
			{"diffplugin.differences", DifferencesFile(cfg, "batch")},
			{"analysis.failFast", strconv.FormatBool(cfg.Analysis.FailFast)},
		},
	}
}
