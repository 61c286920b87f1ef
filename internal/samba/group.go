package samba

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ListGroups returns every group name known to the domain.
func (t *Tool) ListGroups(ctx context.Context) ([]string, error) {
	lines, err := t.run(ctx, t.command("group", "list"))
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	return lines, nil
}

// GroupExists reports whether group is present in the domain. A failed
// lookup returns false together with the error so callers can tell
// "absent" apart from "unknown".
func (t *Tool) GroupExists(ctx context.Context, group string) (bool, error) {
	return t.contains(ctx, t.command("group", "list"), group)
}

// AddGroup creates a new domain group.
func (t *Tool) AddGroup(ctx context.Context, group string) error {
	if _, err := t.run(ctx, t.command("group", "add", group)); err != nil {
		return fmt.Errorf("adding group %q: %w", group, err)
	}
	t.log.Info("group created", zap.String("group", group))
	return nil
}

// AddMembers adds one or more accounts to group.
func (t *Tool) AddMembers(ctx context.Context, group string, members ...string) error {
	if len(members) == 0 {
		return fmt.Errorf("adding members to %q: no members given", group)
	}
	if _, err := t.run(ctx, t.command("group", "addmembers", group, strings.Join(members, ","))); err != nil {
		return fmt.Errorf("adding members to %q: %w", group, err)
	}
	t.log.Info("group members added", zap.String("group", group), zap.Strings("members", members))
	return nil
}

// ListMembers returns the accounts that belong to group.
func (t *Tool) ListMembers(ctx context.Context, group string) ([]string, error) {
	lines, err := t.run(ctx, t.command("group", "listmembers", group))
	if err != nil {
		return nil, fmt.Errorf("listing members of %q: %w", group, err)
	}
	return lines, nil
}

// IsMember reports whether user is listed as a member of group.
func (t *Tool) IsMember(ctx context.Context, group, user string) (bool, error) {
	return t.contains(ctx, t.command("group", "listmembers", group), user)
}
