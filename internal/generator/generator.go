package generator

import (
	"fmt"     // fmt is used to build human-readable error messages and strings
	"io"      // io lets Run print to any writer when no file is given
	"os"      // os is used for writing LDIF files
	"strings" // strings normalises generated usernames

	"github.com/brianvoe/gofakeit/v6" // gofakeit generates realistic-looking sample users
	"go.uber.org/zap"

	"github.com/simone-rolando/samba-ad-tools/internal/config"
	"github.com/simone-rolando/samba-ad-tools/internal/logging"
)

///////////////////////////////////////////////////////////////////////////////
// Configuration types
///////////////////////////////////////////////////////////////////////////////

// Modes understood by Run.
const (
	ModeUser      = "user"      // add the user object only
	ModeGroup     = "group"     // add a security group
	ModeMember    = "member"    // add the user to GroupName
	ModePassword  = "password"  // replace the user's password
	ModeDelete    = "delete"    // delete the user
	ModeProvision = "provision" // user, sAMAccountName, password and memberships
	ModeFake      = "fake"      // provision Count generated sample users
)

// RunConfig holds everything Run needs to render directives. It does not
// depend on the CLI library so it can be built from tests or other callers.
type RunConfig struct {
	Mode      string             // One of the Mode constants
	Ldap      *config.LdapConfig // Domain settings used in every DN and path
	User      *User              // Target user for user-centred modes
	GroupName string             // Group for ModeGroup and ModeMember
	Password  string             // Clear text password for ModePassword and ModeProvision
	Count     int                // Number of sample users for ModeFake
	Seed      int64              // Seed for ModeFake; 0 picks a random seed
	Template  *UserTemplate      // Optional fixed values for ModeFake
	LDIFFile  string             // Output path; empty means Out
	Out       io.Writer          // Destination when LDIFFile is empty
	Check     bool               // Parse every generated record before writing
	Log       *zap.Logger
}

// NewRunConfig is an initializer function for RunConfig.
func NewRunConfig() *RunConfig {
	return &RunConfig{
		Mode:  ModeProvision,
		Count: 1,
		Seed:  1,
		Out:   os.Stdout,
	}
}

// UserTemplate carries values read from a JSON file. Empty fields are
// generated in fake mode and left blank otherwise.
type UserTemplate struct {
	Username    string `json:"username"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	FirstGroup  string `json:"first_group"`
	SecondGroup string `json:"second_group"`
	Password    string `json:"password"`
}

// NewUserTemplate is an initializer function for UserTemplate.
func NewUserTemplate() *UserTemplate {
	return &UserTemplate{}
}

// User converts the template into a User.
func (t *UserTemplate) User() *User {
	return NewUser(t.Username, t.FirstName, t.LastName, Groups{First: t.FirstGroup, Second: t.SecondGroup})
}

///////////////////////////////////////////////////////////////////////////////
// Sample users
///////////////////////////////////////////////////////////////////////////////

// NewFakeUser builds a sample User with faker, then applies the non-empty
// fields of tmpl. index distinguishes users when tmpl fixes the username.
func NewFakeUser(faker *gofakeit.Faker, tmpl *UserTemplate, index int) (*User, string) {
	first := faker.FirstName()
	last := faker.LastName()
	username := strings.ToLower(faker.Username())
	password := faker.Password(true, true, true, false, false, 12)
	groups := Groups{}

	if tmpl != nil {
		if tmpl.Username != "" {
			username = fmt.Sprintf("%s%d", tmpl.Username, index+1)
		}
		if tmpl.FirstName != "" {
			first = tmpl.FirstName
		}
		if tmpl.LastName != "" {
			last = tmpl.LastName
		}
		if tmpl.Password != "" {
			password = tmpl.Password
		}
		groups = Groups{First: tmpl.FirstGroup, Second: tmpl.SecondGroup}
	}

	return NewUser(username, first, last, groups), password
}

///////////////////////////////////////////////////////////////////////////////
// Rendering
///////////////////////////////////////////////////////////////////////////////

// Render returns the directives selected by cfg.Mode, one record per entry.
func Render(cfg *RunConfig) ([]string, error) {
	if cfg.Ldap == nil {
		return nil, fmt.Errorf("LDAP configuration must not be nil")
	}

	needsUser := cfg.Mode != ModeGroup && cfg.Mode != ModeFake
	if needsUser && (cfg.User == nil || cfg.User.Username == "") {
		return nil, fmt.Errorf("mode %q requires a username", cfg.Mode)
	}

	switch cfg.Mode {
	case ModeUser:
		return []string{AddUser(cfg.User, cfg.Ldap)}, nil

	case ModeGroup:
		if cfg.GroupName == "" {
			return nil, fmt.Errorf("mode %q requires a group name", cfg.Mode)
		}
		return []string{AddGroup(cfg.GroupName, cfg.Ldap)}, nil

	case ModeMember:
		if cfg.GroupName == "" {
			return nil, fmt.Errorf("mode %q requires a group name", cfg.Mode)
		}
		return []string{AddMember(cfg.User, cfg.Ldap, cfg.GroupName)}, nil

	case ModePassword:
		if cfg.Password == "" {
			return nil, fmt.Errorf("mode %q requires a password", cfg.Mode)
		}
		block, err := SetPassword(cfg.User, cfg.Ldap, cfg.Password)
		if err != nil {
			return nil, err
		}
		return []string{block}, nil

	case ModeDelete:
		return []string{DeleteUser(cfg.User, cfg.Ldap)}, nil

	case ModeProvision:
		return Provision(cfg.User, cfg.Ldap, cfg.Password)

	case ModeFake:
		if cfg.Count < 1 {
			return nil, fmt.Errorf("Count must be at least 1")
		}
		faker := gofakeit.New(cfg.Seed)
		var blocks []string
		for i := 0; i < cfg.Count; i++ {
			u, password := NewFakeUser(faker, cfg.Template, i)
			userBlocks, err := Provision(u, cfg.Ldap, password)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, userBlocks...)
		}
		return blocks, nil

	default:
		return nil, fmt.Errorf("unsupported mode: %s", cfg.Mode)
	}
}

///////////////////////////////////////////////////////////////////////////////
// Top-level runner
///////////////////////////////////////////////////////////////////////////////

// Run renders the directives for cfg, optionally checks each record, and
// writes the document to cfg.LDIFFile or cfg.Out.
func Run(cfg *RunConfig) error {
	log := logging.OrNop(cfg.Log)

	blocks, err := Render(cfg)
	if err != nil {
		return err
	}

	if cfg.Check {
		for i, b := range blocks {
			if _, err := Validate(b); err != nil {
				return fmt.Errorf("generated record %d failed validation: %w", i+1, err)
			}
		}
		log.Debug("generated LDIF validated", zap.Int("records", len(blocks)))
	}

	text := Join(blocks)

	if cfg.LDIFFile == "" {
		out := cfg.Out
		if out == nil {
			out = os.Stdout
		}
		_, err := io.WriteString(out, text)
		return err
	}

	// 0600: password records carry reversible credentials.
	if err := os.WriteFile(cfg.LDIFFile, []byte(text), 0o600); err != nil {
		return fmt.Errorf("failed to write LDIF file: %w", err)
	}
	log.Info("LDIF file written", zap.String("path", cfg.LDIFFile), zap.Int("records", len(blocks)))
	return nil
}
