package samba

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/simone-rolando/samba-ad-tools/internal/generator"
)

// ListUsers returns every account name in the domain.
func (t *Tool) ListUsers(ctx context.Context) ([]string, error) {
	lines, err := t.run(ctx, t.command("user", "list"))
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return lines, nil
}

// UserExists reports whether username is an account in the domain.
func (t *Tool) UserExists(ctx context.Context, username string) (bool, error) {
	return t.contains(ctx, t.command("user", "list"), username)
}

// HomeDirectory returns the UNC home directory for username on the
// configured file server, e.g. \\FILESRV\homes\jdoe.
func (t *Tool) HomeDirectory(username string) string {
	return generator.HomeDirectory(t.cfg.SrvName+`\`+t.cfg.HomeDirsShare, username)
}

// CreateUser creates the account described by u. Group membership is not
// handled here; see Provisioner.
func (t *Tool) CreateUser(ctx context.Context, u *DomainUser) error {
	if u.CommonName == "" {
		return fmt.Errorf("creating user: empty login name")
	}
	if u.Password == "" {
		return fmt.Errorf("creating user %q: empty password", u.CommonName)
	}

	cmd := t.command("user", "create", u.CommonName).Secret(u.Password)
	if u.FirstName != "" {
		cmd.Arg("--given-name=" + u.FirstName)
	}
	if u.LastName != "" {
		cmd.Arg("--surname=" + u.LastName)
	}
	cmd.Arg("--home-directory=" + t.HomeDirectory(u.CommonName))

	if _, err := t.run(ctx, cmd); err != nil {
		return fmt.Errorf("creating user %q: %w", u.CommonName, err)
	}
	t.log.Info("user created", zap.String("user", u.CommonName))
	return nil
}

// SetPassword replaces the password of username.
func (t *Tool) SetPassword(ctx context.Context, username, password string) error {
	if password == "" {
		return fmt.Errorf("setting password for %q: empty password", username)
	}
	cmd := t.command("user", "setpassword", username).Secret("--newpassword=" + password)
	if _, err := t.run(ctx, cmd); err != nil {
		return fmt.Errorf("setting password for %q: %w", username, err)
	}
	t.log.Info("password set", zap.String("user", username))
	return nil
}

// GetGroups returns the groups username belongs to.
func (t *Tool) GetGroups(ctx context.Context, username string) ([]string, error) {
	lines, err := t.run(ctx, t.command("user", "getgroups", username))
	if err != nil {
		return nil, fmt.Errorf("listing groups of %q: %w", username, err)
	}
	return lines, nil
}
