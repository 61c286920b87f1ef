package samba

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simone-rolando/samba-ad-tools/internal/command"
	"github.com/simone-rolando/samba-ad-tools/internal/config"
	"github.com/simone-rolando/samba-ad-tools/internal/generator"
)

const sambaPath = "/usr/bin/samba-tool"

// fakeDomain emulates the subset of samba-tool used by Tool and records
// every command it receives.
type fakeDomain struct {
	users    []string
	groups   map[string][]string
	failures map[string]error // keyed by "<object> <action>"
	calls    []*command.Command
}

func newFakeDomain() *fakeDomain {
	return &fakeDomain{
		groups:   map[string][]string{},
		failures: map[string]error{},
	}
}

func (d *fakeDomain) Run(_ context.Context, cmd *command.Command) ([]string, error) {
	d.calls = append(d.calls, cmd)

	if cmd.Path != sambaPath {
		return nil, nil
	}
	args := cmd.Args
	key := args[0] + " " + args[1]
	if err, ok := d.failures[key]; ok {
		return nil, err
	}

	switch key {
	case "user list":
		return append([]string(nil), d.users...), nil
	case "user create":
		d.users = append(d.users, args[2])
	case "user setpassword":
	case "user getgroups":
		var groups []string
		for g, members := range d.groups {
			if slices.Contains(members, args[2]) {
				groups = append(groups, g)
			}
		}
		slices.Sort(groups)
		return groups, nil
	case "group list":
		var groups []string
		for g := range d.groups {
			groups = append(groups, g)
		}
		slices.Sort(groups)
		return groups, nil
	case "group add":
		d.groups[args[2]] = nil
	case "group addmembers":
		d.groups[args[2]] = append(d.groups[args[2]], strings.Split(args[3], ",")...)
	case "group listmembers":
		return append([]string(nil), d.groups[args[2]]...), nil
	}
	return nil, nil
}

func (d *fakeDomain) sambaCalls(object, action string) []*command.Command {
	var out []*command.Command
	for _, c := range d.calls {
		if c.Path == sambaPath && len(c.Args) >= 2 && c.Args[0] == object && c.Args[1] == action {
			out = append(out, c)
		}
	}
	return out
}

func testConfig(t *testing.T) *config.ToolsConfiguration {
	t.Helper()
	root := t.TempDir()
	return &config.ToolsConfiguration{
		SambaPath:        sambaPath,
		SrvName:          "FILESRV",
		HomeDirsPath:     filepath.Join(root, "homes"),
		HomeDirsShare:    "homes",
		DomainFQDN:       "corp.example.com",
		NTDomainName:     "CORP",
		PoolPath:         filepath.Join(root, "pools"),
		PoolShare:        "pools",
		PoolOwner:        "root",
		WinbindSeparator: `\`,
	}
}

var errExit = &command.Error{Program: sambaPath, ExitCode: 255, Cause: errors.New("exit status 255")}

func TestGroupExists_ExactMatch(t *testing.T) {
	d := newFakeDomain()
	d.groups["admins2"] = nil
	d.groups["Domain Users"] = nil
	tool := NewTool(d, testConfig(t), nil)
	ctx := context.Background()

	tests := []struct {
		group    string
		expected bool
	}{
		{group: "admins", expected: false},
		{group: "admins2", expected: true},
		{group: "Domain Users", expected: true},
		{group: "Domain", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			exists, err := tool.GroupExists(ctx, tt.group)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, exists)
		})
	}
}

func TestExistenceCheck_CommandFailureIsDistinguishable(t *testing.T) {
	d := newFakeDomain()
	d.failures["user list"] = errExit
	d.failures["group list"] = errExit
	d.failures["group listmembers"] = errExit
	tool := NewTool(d, testConfig(t), nil)
	ctx := context.Background()

	exists, err := tool.UserExists(ctx, "jdoe")
	assert.False(t, exists)
	require.Error(t, err)
	assert.True(t, command.IsCommandError(err))

	exists, err = tool.GroupExists(ctx, "students")
	assert.False(t, exists)
	assert.True(t, command.IsCommandError(err))

	member, err := tool.IsMember(ctx, "students", "jdoe")
	assert.False(t, member)
	assert.True(t, command.IsCommandError(err))
}

func TestUserOperations_ArgumentVectors(t *testing.T) {
	d := newFakeDomain()
	tool := NewTool(d, testConfig(t), nil)
	ctx := context.Background()

	u := NewDomainUser("jdoe", "John", "Doe", "Pa$$w0rd")
	require.NoError(t, tool.CreateUser(ctx, u))
	require.NoError(t, tool.SetPassword(ctx, "jdoe", "N3wPass"))

	create := d.sambaCalls("user", "create")
	require.Len(t, create, 1)
	assert.Equal(t, []string{
		"user", "create", "jdoe", "Pa$$w0rd",
		"--given-name=John", "--surname=Doe", `--home-directory=\\FILESRV\homes\jdoe`,
	}, create[0].Args)
	assert.NotContains(t, create[0].String(), "Pa$$w0rd")

	setpw := d.sambaCalls("user", "setpassword")
	require.Len(t, setpw, 1)
	assert.Equal(t, []string{"user", "setpassword", "jdoe", "--newpassword=N3wPass"}, setpw[0].Args)
	assert.NotContains(t, setpw[0].String(), "N3wPass")

	exists, err := tool.UserExists(ctx, "jdoe")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestToolHomeDirectory(t *testing.T) {
	tests := []struct {
		name     string
		srv      string
		share    string
		expected string
	}{
		{name: "netbios name", srv: "FILESRV", share: "homes", expected: `\\FILESRV\homes\jdoe`},
		{name: "nested share", srv: "fs01", share: `data\homes`, expected: `\\fs01\data\homes\jdoe`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.SrvName = tt.srv
			cfg.HomeDirsShare = tt.share
			tool := NewTool(newFakeDomain(), cfg, nil)

			assert.Equal(t, tt.expected, tool.HomeDirectory("jdoe"))
			assert.Equal(t, generator.HomeDirectory(`\\`+tt.srv+`\`+tt.share, "jdoe"), tool.HomeDirectory("jdoe"))
		})
	}
}

func TestUserOperations_Validation(t *testing.T) {
	tool := NewTool(newFakeDomain(), testConfig(t), nil)
	ctx := context.Background()

	assert.Error(t, tool.CreateUser(ctx, NewDomainUser("", "A", "B", "pw")))
	assert.Error(t, tool.CreateUser(ctx, NewDomainUser("jdoe", "A", "B", "")))
	assert.Error(t, tool.SetPassword(ctx, "jdoe", ""))
	assert.Error(t, tool.AddMembers(ctx, "students"))
}

func TestGroupOperations(t *testing.T) {
	d := newFakeDomain()
	tool := NewTool(d, testConfig(t), nil)
	ctx := context.Background()

	require.NoError(t, tool.AddGroup(ctx, "5a"))
	require.NoError(t, tool.AddMembers(ctx, "5a", "jdoe", "asmith"))

	add := d.sambaCalls("group", "addmembers")
	require.Len(t, add, 1)
	assert.Equal(t, []string{"group", "addmembers", "5a", "jdoe,asmith"}, add[0].Args)

	members, err := tool.ListMembers(ctx, "5a")
	require.NoError(t, err)
	assert.Equal(t, []string{"jdoe", "asmith"}, members)

	member, err := tool.IsMember(ctx, "5a", "asmith")
	require.NoError(t, err)
	assert.True(t, member)

	groups, err := tool.GetGroups(ctx, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, []string{"5a"}, groups)

	all, err := tool.ListGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"5a"}, all)
}

func TestGetGroups_Failure(t *testing.T) {
	d := newFakeDomain()
	d.failures["user getgroups"] = errExit
	tool := NewTool(d, testConfig(t), nil)

	groups, err := tool.GetGroups(context.Background(), "jdoe")
	assert.Nil(t, groups)
	assert.True(t, command.IsCommandError(err))
}

func TestProvision_NewUser(t *testing.T) {
	d := newFakeDomain()
	d.groups["students"] = []string{"asmith"}
	cfg := testConfig(t)
	p := NewProvisioner(NewTool(d, cfg, nil))
	p.CreateHome = true

	outcome, err := p.Provision(context.Background(), NewDomainUser("jdoe", "John", "Doe", "pw", "students", "5a"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	assert.Contains(t, d.users, "jdoe")
	assert.Equal(t, []string{"asmith", "jdoe"}, d.groups["students"])
	assert.Equal(t, []string{"jdoe"}, d.groups["5a"])
	assert.Len(t, d.sambaCalls("group", "add"), 1)

	home := filepath.Join(cfg.HomeDirsPath, "jdoe")
	pool := filepath.Join(cfg.PoolPath, "5a")
	assert.DirExists(t, home)
	assert.DirExists(t, pool)
	_, err = os.Stat(filepath.Join(cfg.PoolPath, "students"))
	assert.True(t, os.IsNotExist(err), "pools are only created for new groups")

	var chowns [][]string
	for _, c := range d.calls {
		if c.Path == "chown" {
			chowns = append(chowns, c.Args)
		}
	}
	assert.Equal(t, [][]string{
		{`CORP\jdoe`, home},
		{`root:CORP\5a`, pool},
	}, chowns)
}

func TestProvision_ExistingUser(t *testing.T) {
	t.Run("skipped without update", func(t *testing.T) {
		d := newFakeDomain()
		d.users = []string{"jdoe"}
		p := NewProvisioner(NewTool(d, testConfig(t), nil))

		outcome, err := p.Provision(context.Background(), NewDomainUser("jdoe", "John", "Doe", "pw", "5a"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeSkipped, outcome)
		assert.Empty(t, d.sambaCalls("user", "setpassword"))
		assert.Empty(t, d.sambaCalls("group", "addmembers"))
	})

	t.Run("updated with update", func(t *testing.T) {
		d := newFakeDomain()
		d.users = []string{"jdoe"}
		d.groups["5a"] = []string{"jdoe"}
		d.groups["students"] = nil
		p := NewProvisioner(NewTool(d, testConfig(t), nil))
		p.Update = true

		outcome, err := p.Provision(context.Background(), NewDomainUser("jdoe", "John", "Doe", "pw", "5a", "students"))
		require.NoError(t, err)
		assert.Equal(t, OutcomeUpdated, outcome)
		assert.Len(t, d.sambaCalls("user", "setpassword"), 1)

		add := d.sambaCalls("group", "addmembers")
		require.Len(t, add, 1, "only the missing membership is added")
		assert.Equal(t, "students", add[0].Args[2])
	})
}

func TestProvisionAll_ContinuesPastFailures(t *testing.T) {
	d := newFakeDomain()
	d.users = []string{"existing"}
	p := NewProvisioner(NewTool(d, testConfig(t), nil))

	users := []*DomainUser{
		NewDomainUser("jdoe", "John", "Doe", "pw"),
		NewDomainUser("nopass", "No", "Pass", ""),
		NewDomainUser("existing", "Ex", "Isting", "pw"),
	}

	summary, err := p.ProvisionAll(context.Background(), users)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nopass")
	assert.Equal(t, Summary{Created: 1, Skipped: 1, Failed: 1}, summary)
}

func TestFillPasswords(t *testing.T) {
	faker := gofakeit.New(42)
	users := []*DomainUser{
		NewDomainUser("a", "A", "A", ""),
		NewDomainUser("b", "B", "B", "keep"),
	}

	filled := FillPasswords(faker, users, 4)
	require.Len(t, filled, 1)
	assert.Equal(t, "a", filled[0].CommonName)
	assert.Len(t, users[0].Password, 8, "length is raised to the minimum")
	assert.Equal(t, "keep", users[1].Password)
}
