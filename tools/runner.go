// Package tools runs the external scanners (sherlock, maigret, WhatsMyName)
// that tool-transport sources delegate to.
package tools

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"

	"github.com/teranos/footprint/errors"
	"github.com/teranos/footprint/logger"
)

// Command describes one external process invocation
type Command struct {
	Args    []string
	Dir     string
	Env     map[string]string // merged over the parent environment
	Timeout time.Duration     // 0 = no timeout beyond ctx
}

// Result is the outcome of a Command.
// A process that ran reports its own exit code with Error empty. A launch
// failure, timeout or cancellation reports ExitCode -1 with Error set.
type Result struct {
	Command  []string `json:"command"`
	Dir      string   `json:"dir"`
	ExitCode int      `json:"exit_code"`
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
	Error    string   `json:"error,omitempty"`
}

// Failed reports whether the process could not run to completion
func (r Result) Failed() bool {
	return r.Error != ""
}

// Runner executes commands
type Runner interface {
	Run(ctx context.Context, cmd Command) Result
}

// WaitDelay bounds how long Run waits for output pipes after the process is
// killed
var WaitDelay = 2 * time.Second

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	logger *zap.SugaredLogger
}

// NewExecRunner creates a Runner backed by os/exec
func NewExecRunner(log *zap.SugaredLogger) *ExecRunner {
	if log == nil {
		log = logger.ComponentLogger("tools")
	}
	return &ExecRunner{logger: log}
}

// Run executes cmd, enforcing its timeout
func (r *ExecRunner) Run(ctx context.Context, cmd Command) Result {
	result := Result{Command: cmd.Args, Dir: cmd.Dir, ExitCode: -1}
	if len(cmd.Args) == 0 {
		result.Error = "empty command"
		return result
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	proc := exec.CommandContext(runCtx, cmd.Args[0], cmd.Args[1:]...)
	proc.Dir = cmd.Dir
	proc.Env = MergeEnv(os.Environ(), cmd.Env)
	// Scanners fork (uv run python); kill the whole group and stop waiting on
	// pipes held open by orphaned grandchildren.
	killProcessGroup(proc)
	proc.WaitDelay = WaitDelay

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	start := time.Now()
	err := proc.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	log := r.logger.With(logger.FieldCommand, cmd.Args[0], logger.FieldDurationMS, time.Since(start).Milliseconds())

	switch {
	case runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil:
		result.Error = fmt.Sprintf("timed out after %s", cmd.Timeout)
	case ctx.Err() != nil:
		result.Error = errors.Wrap(ctx.Err(), "cancelled").Error()
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.Error = err.Error()
		}
	default:
		result.ExitCode = 0
	}

	if result.Failed() {
		log.Warnw("Tool did not complete", logger.FieldError, result.Error)
	} else {
		log.Debugw("Tool finished", logger.FieldExitCode, result.ExitCode)
	}
	return result
}

// MergeEnv overlays extra onto base (KEY=VALUE pairs). Keys are upper-cased,
// since config loading lower-cases map keys. Overlay keys are appended sorted.
func MergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	overlay := make(map[string]string, len(extra))
	for k, v := range extra {
		overlay[strings.ToUpper(k)] = v
	}

	merged := make([]string, 0, len(base)+len(overlay))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, replaced := overlay[key]; replaced {
			continue
		}
		merged = append(merged, kv)
	}

	keys := make([]string, 0, len(overlay))
	for k := range overlay {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		merged = append(merged, k+"="+overlay[k])
	}
	return merged
}

// SplitExecutable splits a configured interpreter such as "uv run python"
// into argv using shell quoting rules
func SplitExecutable(executable string) ([]string, error) {
	args, err := shellquote.Split(executable)
	if err != nil {
		return nil, errors.Wrapf(err, "parse executable %q", executable)
	}
	if len(args) == 0 {
		return nil, errors.WithHint(
			errors.Newf("executable is empty"),
			"set tools.python_executable in am.toml")
	}
	return args, nil
}
