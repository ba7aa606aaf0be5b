// File: internal/invoker/invoker.go
// Description: Runs the two external analysis invocations. The analyses
// themselves (build tool, scanner, differential plugin) are external
// collaborators; this package only assembles their command lines, executes
// them synchronously, and reads back the plugin's difference count.
package invoker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

// Property is a single -Dkey=value analysis property. Order is preserved
// on the command line.
type Property struct {
	Key   string
	Value string
}

// RunSpec describes one external analysis invocation.
type RunSpec struct {
	Name       string // label used in logs and errors
	Command    string
	Args       []string
	Dir        string
	Properties []Property
	Env        []string // appended to the parent environment
}

// CommandLine returns the full argument list: configured args first, then
// the properties as -Dkey=value flags.
func (s RunSpec) CommandLine() []string {
	args := make([]string, 0, len(s.Args)+len(s.Properties))
	args = append(args, s.Args...)
	for _, p := range s.Properties {
		args = append(args, fmt.Sprintf("-D%s=%s", p.Key, p.Value))
	}
	return args
}

// Invoker executes one analysis run to completion.
type Invoker interface {
	Run(ctx context.Context, spec RunSpec) error
}

// ExecInvoker runs analysis commands as child processes, streaming their
// output to the logger.
type ExecInvoker struct {
	log *zap.Logger
}

// NewExecInvoker creates an invoker that shells out to the real tools.
func NewExecInvoker(logger *zap.Logger) *ExecInvoker {
	return &ExecInvoker{log: logger.Named("invoker")}
}

// Run executes the analysis synchronously and waits for it to finish. A
// non-zero exit is returned as an error wrapping the run name.
func (e *ExecInvoker) Run(ctx context.Context, spec RunSpec) error {
	args := spec.CommandLine()
	e.log.Info("Starting analysis run",
		zap.String("run", spec.Name),
		zap.String("command", spec.Command),
		zap.Strings("args", args),
	)

	cmd := exec.CommandContext(ctx, spec.Command, args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)

	out := &zapio.Writer{Log: e.log.With(zap.String("run", spec.Name)), Level: zapcore.InfoLevel}
	defer out.Close()
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("analysis run %q failed: %w", spec.Name, err)
	}
	e.log.Info("Analysis run finished", zap.String("run", spec.Name))
	return nil
}

// differencesPrefix is the line format the differential plugin writes to
// its differences file.
const differencesPrefix = "Issues differences: "

// ReadDifferenceCount reads the raw difference count the differential
// plugin wrote as a side effect of the analysis run.
func ReadDifferenceCount(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read differences file: %w", err)
	}
	content := strings.TrimSpace(string(raw))
	rest, ok := strings.CutPrefix(content, strings.TrimSpace(differencesPrefix))
	if !ok {
		return 0, fmt.Errorf("differences file %s has unexpected content %q", path, content)
	}
	count, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, fmt.Errorf("differences file %s has non-numeric count %q: %w", path, rest, err)
	}
	return count, nil
}

// FormatDifferenceCount renders a count the way the plugin writes it, for
// baseline files and tests.
func FormatDifferenceCount(count int) string {
	return differencesPrefix + strconv.Itoa(count)
}
