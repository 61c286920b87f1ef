// Package cli holds the command-line front ends of the domain tools. Each
// tool has a kong grammar struct and a Run function taking the raw
// arguments, so main stays a one-liner and the tools can be driven from
// tests.
package cli

import (
	"context"
	"database/sql"
	"io"
	"os"

	"github.com/alecthomas/kong"   // kong is the library we use to parse command-line flags
	"github.com/bgentry/speakeasy" // speakeasy reads passwords without echoing them
	"go.uber.org/zap"

	"github.com/simone-rolando/samba-ad-tools/internal/command"
	"github.com/simone-rolando/samba-ad-tools/internal/config"
	"github.com/simone-rolando/samba-ad-tools/internal/logging"
	"github.com/simone-rolando/samba-ad-tools/internal/register"
	"github.com/simone-rolando/samba-ad-tools/internal/system"
)

///////////////////////////////////////////////////////////////////////////////
// Environment
///////////////////////////////////////////////////////////////////////////////

// Env is everything a tool touches outside its own arguments. main uses
// NewEnv; tests swap in buffers and fakes.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Runner executes samba-tool and chown. Nil means local processes.
	Runner command.Runner

	// AskPassword prompts for a password without echo.
	AskPassword func(prompt string) (string, error)

	// Privileged reports whether the process may change the domain.
	Privileged func() bool

	// OpenDB connects to the register database.
	OpenDB func(ctx context.Context, cfg *config.GeneratorConfig) (*sql.DB, error)

	// Logger overrides the logger built from --verbose.
	Logger *zap.Logger
}

// NewEnv is an initializer function for Env bound to the real process.
func NewEnv() *Env {
	return &Env{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		AskPassword: speakeasy.Ask,
		Privileged:  system.HasPrivileges,
		OpenDB:      register.Open,
	}
}

func (e *Env) logger(verbose bool) (*zap.Logger, error) {
	if e.Logger != nil {
		return e.Logger, nil
	}
	return logging.New(verbose)
}

func (e *Env) runner(log *zap.Logger) command.Runner {
	if e.Runner != nil {
		return e.Runner
	}
	return command.NewExecRunner(log)
}

///////////////////////////////////////////////////////////////////////////////
// Parsing
///////////////////////////////////////////////////////////////////////////////

// parse fills grammar from args. Errors are reported with the usage text.
func parse(env *Env, grammar any, name, description string, args []string) (*kong.Context, error) {
	parser, err := kong.New(grammar,
		kong.Name(name),
		kong.Description(description),
		kong.Writers(env.Stdout, env.Stderr),
		kong.UsageOnError(),
	)
	if err != nil {
		return nil, err
	}
	return parser.Parse(args)
}
