package samba

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/simone-rolando/samba-ad-tools/internal/command"
)

// Outcome describes what Provision did with a single user.
type Outcome string

const (
	OutcomeCreated Outcome = "created" // Account did not exist and was created
	OutcomeUpdated Outcome = "updated" // Account existed and was refreshed
	OutcomeSkipped Outcome = "skipped" // Account existed and updates are off
)

// Summary counts the outcomes of a ProvisionAll run.
type Summary struct {
	Created int
	Updated int
	Skipped int
	Failed  int
}

// Provisioner brings domain accounts in line with a list of DomainUsers:
// it creates missing users and groups and adds missing memberships.
type Provisioner struct {
	tool *Tool

	// Update resets the password of existing users and completes their
	// group memberships. Without it existing users are left untouched.
	Update bool

	// CreateHome creates the local home directory of new users and the
	// pool directory of new groups, owned by the matching domain account.
	CreateHome bool

	// ChownPath is the chown binary used for home and pool directories.
	ChownPath string
}

// NewProvisioner creates a Provisioner on top of tool.
func NewProvisioner(tool *Tool) *Provisioner {
	return &Provisioner{
		tool:      tool,
		ChownPath: "chown",
	}
}

// Provision applies u to the domain.
func (p *Provisioner) Provision(ctx context.Context, u *DomainUser) (Outcome, error) {
	log := p.tool.log.With(zap.String("user", u.CommonName))

	exists, err := p.tool.UserExists(ctx, u.CommonName)
	if err != nil {
		return "", err
	}

	var outcome Outcome
	switch {
	case !exists:
		if err := p.tool.CreateUser(ctx, u); err != nil {
			return "", err
		}
		if p.CreateHome {
			if err := p.ensureHome(ctx, u.CommonName); err != nil {
				return "", err
			}
		}
		outcome = OutcomeCreated
	case p.Update:
		if u.Password != "" {
			if err := p.tool.SetPassword(ctx, u.CommonName, u.Password); err != nil {
				return "", err
			}
		}
		outcome = OutcomeUpdated
	default:
		log.Info("user already exists, skipping")
		return OutcomeSkipped, nil
	}

	for _, group := range u.Groups {
		if err := p.ensureMembership(ctx, group, u.CommonName); err != nil {
			return "", err
		}
	}

	log.Debug("user provisioned", zap.String("outcome", string(outcome)))
	return outcome, nil
}

// ProvisionAll provisions every user, continuing past individual failures.
// The returned error aggregates every failure.
func (p *Provisioner) ProvisionAll(ctx context.Context, users []*DomainUser) (Summary, error) {
	var summary Summary
	var result *multierror.Error

	for _, u := range users {
		outcome, err := p.Provision(ctx, u)
		if err != nil {
			summary.Failed++
			p.tool.log.Error("provisioning failed", zap.String("user", u.CommonName), zap.Error(err))
			result = multierror.Append(result, fmt.Errorf("user %q: %w", u.CommonName, err))
			continue
		}
		switch outcome {
		case OutcomeCreated:
			summary.Created++
		case OutcomeUpdated:
			summary.Updated++
		case OutcomeSkipped:
			summary.Skipped++
		}
	}

	return summary, result.ErrorOrNil()
}

func (p *Provisioner) ensureMembership(ctx context.Context, group, user string) error {
	exists, err := p.tool.GroupExists(ctx, group)
	if err != nil {
		return err
	}
	if !exists {
		if err := p.tool.AddGroup(ctx, group); err != nil {
			return err
		}
		if p.CreateHome {
			if err := p.ensurePool(ctx, group); err != nil {
				return err
			}
		}
	} else {
		member, err := p.tool.IsMember(ctx, group, user)
		if err != nil {
			return err
		}
		if member {
			return nil
		}
	}
	return p.tool.AddMembers(ctx, group, user)
}

func (p *Provisioner) ensureHome(ctx context.Context, user string) error {
	dir := filepath.Join(p.tool.cfg.HomeDirsPath, user)
	return p.ensureDir(ctx, dir, 0o700, p.tool.cfg.QualifiedName(user))
}

func (p *Provisioner) ensurePool(ctx context.Context, group string) error {
	dir := filepath.Join(p.tool.cfg.PoolPath, group)
	return p.ensureDir(ctx, dir, 0o2770, p.tool.cfg.PoolOwner+":"+p.tool.cfg.QualifiedName(group))
}

func (p *Provisioner) ensureDir(ctx context.Context, dir string, perm os.FileMode, owner string) error {
	if err := os.MkdirAll(dir, perm); err != nil {
		return fmt.Errorf("creating directory %q: %w", dir, err)
	}
	if _, err := p.tool.run(ctx, command.New(p.ChownPath, owner, dir)); err != nil {
		return fmt.Errorf("changing owner of %q: %w", dir, err)
	}
	p.tool.log.Info("directory prepared", zap.String("path", dir), zap.String("owner", owner))
	return nil
}

// GeneratePassword returns a random password made of letters and digits,
// suitable as a first-logon password.
func GeneratePassword(faker *gofakeit.Faker, length int) string {
	if length < 8 {
		length = 8
	}
	return faker.Password(true, true, true, false, false, length)
}

// FillPasswords assigns a generated password to every user without one and
// returns the users that received one.
func FillPasswords(faker *gofakeit.Faker, users []*DomainUser, length int) []*DomainUser {
	var filled []*DomainUser
	for _, u := range users {
		if u.Password == "" {
			u.Password = GeneratePassword(faker, length)
			filled = append(filled, u)
		}
	}
	return filled
}
