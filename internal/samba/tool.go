// Package samba wraps the samba-tool command line to query and change users
// and groups of a Samba Active Directory domain.
package samba

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/simone-rolando/samba-ad-tools/internal/command"
	"github.com/simone-rolando/samba-ad-tools/internal/config"
	"github.com/simone-rolando/samba-ad-tools/internal/logging"
)

// DomainUser is a user to create or manage in the domain.
type DomainUser struct {
	CommonName string   // Login name, also used as the CN
	FirstName  string   // Given name
	LastName   string   // Surname
	Groups     []string // Groups the user must belong to, possibly empty
	Password   string   // Clear text password
}

// NewDomainUser builds a DomainUser from explicit values.
func NewDomainUser(commonName, firstName, lastName, password string, groups ...string) *DomainUser {
	return &DomainUser{
		CommonName: commonName,
		FirstName:  firstName,
		LastName:   lastName,
		Groups:     append([]string(nil), groups...),
		Password:   password,
	}
}

// Tool runs samba-tool subcommands through a command.Runner.
type Tool struct {
	runner command.Runner
	cfg    *config.ToolsConfiguration
	log    *zap.Logger
}

// NewTool creates a Tool that invokes cfg.SambaPath.
func NewTool(runner command.Runner, cfg *config.ToolsConfiguration, log *zap.Logger) *Tool {
	return &Tool{
		runner: runner,
		cfg:    cfg,
		log:    logging.OrNop(log),
	}
}

func (t *Tool) command(args ...string) *command.Command {
	return command.New(t.cfg.SambaPath, args...)
}

func (t *Tool) run(ctx context.Context, cmd *command.Command) ([]string, error) {
	return t.runner.Run(ctx, cmd)
}

// contains reports whether target is exactly one of the listed lines.
func (t *Tool) contains(ctx context.Context, cmd *command.Command, target string) (bool, error) {
	lines, err := t.run(ctx, cmd)
	if err != nil {
		t.log.Warn("could not determine presence",
			zap.String("command", cmd.String()),
			zap.String("target", target),
			zap.Error(err),
		)
		return false, fmt.Errorf("checking %q: %w", target, err)
	}
	return slices.Contains(lines, target), nil
}
