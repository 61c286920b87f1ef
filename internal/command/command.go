package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// mask replaces secret arguments wherever a Command is printed.
const mask = "[REDACTED]"

// Command is a program path plus an ordered argument vector. Arguments are
// handed to the process as-is, so callers never quote values themselves.
type Command struct {
	Path    string
	Args    []string
	secrets map[int]bool
}

// New builds a Command for path with the given arguments.
func New(path string, args ...string) *Command {
	return &Command{
		Path: path,
		Args: append([]string(nil), args...),
	}
}

// Arg appends a plain argument and returns the Command for chaining.
func (c *Command) Arg(arg string) *Command {
	c.Args = append(c.Args, arg)
	return c
}

// Secret appends an argument that must never appear in logs or errors.
func (c *Command) Secret(arg string) *Command {
	if c.secrets == nil {
		c.secrets = make(map[int]bool)
	}
	c.secrets[len(c.Args)] = true
	c.Args = append(c.Args, arg)
	return c
}

// MaskedArgs returns the arguments with every secret replaced.
func (c *Command) MaskedArgs() []string {
	out := make([]string, len(c.Args))
	for i, a := range c.Args {
		if c.secrets[i] {
			out[i] = mask
			continue
		}
		out[i] = a
	}
	return out
}

func (c *Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.MaskedArgs(), " "))
}

// Error reports a command that could not be started or exited non-zero.
type Error struct {
	Program  string   // Program path
	Args     []string // Arguments, secrets masked
	ExitCode int      // -1 when the process never ran
	Stderr   string   // Trimmed standard error, informational only
	Cause    error    // Underlying error
}

func (e *Error) Error() string {
	var parts []string

	if e.ExitCode < 0 {
		parts = append(parts, fmt.Sprintf("command %s could not be started", e.Program))
	} else {
		parts = append(parts, fmt.Sprintf("command %s failed with status %d", e.Program, e.ExitCode))
	}

	if len(e.Args) > 0 {
		parts = append(parts, fmt.Sprintf("args: %s", strings.Join(e.Args, " ")))
	}

	if e.Stderr != "" {
		parts = append(parts, fmt.Sprintf("stderr: %s", e.Stderr))
	}

	if e.ExitCode < 0 && e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, " - ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsCommandError reports whether err is, or wraps, a command Error.
func IsCommandError(err error) bool {
	var cmdErr *Error
	return errors.As(err, &cmdErr)
}

// Runner executes a Command and returns its standard output as lines.
type Runner interface {
	Run(ctx context.Context, cmd *Command) ([]string, error)
}

// ExecRunner runs commands as local processes.
type ExecRunner struct {
	log *zap.Logger
}

// NewExecRunner creates a process runner. A nil logger disables logging.
func NewExecRunner(log *zap.Logger) *ExecRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExecRunner{log: log}
}

// Run starts cmd, waits for it and returns every stdout line with trailing
// whitespace removed. The whole output is buffered before returning.
func (r *ExecRunner) Run(ctx context.Context, cmd *Command) ([]string, error) {
	r.log.Debug("running command", zap.String("command", cmd.String()))

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	if err := proc.Run(); err != nil {
		cmdErr := &Error{
			Program:  cmd.Path,
			Args:     cmd.MaskedArgs(),
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Cause:    err,
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}

		r.log.Debug("command failed",
			zap.String("command", cmd.String()),
			zap.Int("exit_code", cmdErr.ExitCode),
			zap.String("stderr", cmdErr.Stderr),
		)
		return nil, cmdErr
	}

	return SplitLines(stdout.Bytes()), nil
}

// SplitLines splits raw output into lines, stripping trailing whitespace
// from each. A final newline does not produce an empty trailing line.
// Lines may be of any length.
func SplitLines(out []byte) []string {
	text := strings.TrimSuffix(string(out), "\n")
	if text == "" {
		return []string{}
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r\n")
	}
	return lines
}
