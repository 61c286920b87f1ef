package cli

import (
	"encoding/json" // json is used to decode the optional user template file
	"fmt"
	"os"

	"github.com/simone-rolando/samba-ad-tools/internal/config"
	"github.com/simone-rolando/samba-ad-tools/internal/generator"
)

///////////////////////////////////////////////////////////////////////////////
// CLI configuration
///////////////////////////////////////////////////////////////////////////////

// LdifGenConfig holds the command-line options for ldif-gen. Kong uses the
// struct tags to know which flags exist and how to parse them.
type LdifGenConfig struct {
	Config string `help:"Path to the LDAP settings (TOML)." default:"/etc/ad/settings.toml" type:"path"`
	Mode   string `help:"Directive to generate." enum:"user,group,member,password,delete,provision,fake" default:"provision"`

	Username    string `help:"Login name of the user." short:"u"`
	FirstName   string `help:"Given name of the user." name:"first-name"`
	LastName    string `help:"Surname of the user." name:"last-name"`
	FirstGroup  string `help:"First group of the user." name:"first-group"`
	SecondGroup string `help:"Second group of the user, usually the class." name:"second-group"`
	Password    string `help:"Clear text password. Prompted for in password mode when empty."`
	GroupName   string `help:"Group for the group and member modes." name:"group-name"`

	InputFile string `help:"Optional JSON file with user values. Flags given on the command line take precedence." name:"input-file" type:"existingfile"`
	Count     int    `help:"Number of sample users in fake mode." default:"1"`
	Seed      int64  `help:"Seed for fake mode; 0 picks a random seed." default:"1"`

	LDIFFile string `help:"Write the LDIF to this file instead of stdout." name:"ldif-file" short:"o"`
	Check    bool   `help:"Parse the generated LDIF before writing it."`
	Verbose  bool   `help:"Enable debug logging." short:"v"`
}

// NewLdifGenConfig is an initializer function for LdifGenConfig.
// It sets the same defaults as the flags so the struct is usable without
// parsing.
func NewLdifGenConfig() *LdifGenConfig {
	return &LdifGenConfig{
		Config: config.DefaultLdapPath,
		Mode:   generator.ModeProvision,
		Count:  1,
		Seed:   1,
	}
}

///////////////////////////////////////////////////////////////////////////////
// Template loading helper
///////////////////////////////////////////////////////////////////////////////

// loadTemplateFromFile reads a JSON file at the provided path and decodes it
// into a generator.UserTemplate. The file might look like:
//
//	{
//	  "username": "jdoe",
//	  "first_name": "John",
//	  "last_name": "Doe",
//	  "first_group": "students",
//	  "second_group": "5a"
//	}
func loadTemplateFromFile(path string) (*generator.UserTemplate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file %q: %w", path, err)
	}
	defer f.Close()

	tmpl := generator.NewUserTemplate()

	decoder := json.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse JSON in %q: %w", path, err)
	}

	return tmpl, nil
}

// merge overlays the non-empty command-line values on tmpl.
func (c *LdifGenConfig) merge(tmpl *generator.UserTemplate) *generator.UserTemplate {
	out := *tmpl
	for _, f := range []struct {
		dst *string
		src string
	}{
		{&out.Username, c.Username},
		{&out.FirstName, c.FirstName},
		{&out.LastName, c.LastName},
		{&out.FirstGroup, c.FirstGroup},
		{&out.SecondGroup, c.SecondGroup},
		{&out.Password, c.Password},
	} {
		if f.src != "" {
			*f.dst = f.src
		}
	}
	return &out
}

///////////////////////////////////////////////////////////////////////////////
// Top-level CLI runner
///////////////////////////////////////////////////////////////////////////////

// RunLdifGen is the ldif-gen tool. It:
//
//  1. Fills an LdifGenConfig from the command line.
//  2. Loads the LDAP settings and, if given, the JSON user template.
//  3. Builds a generator.RunConfig and passes it to generator.Run.
func RunLdifGen(env *Env, args []string) error {
	cfg := NewLdifGenConfig()
	if _, err := parse(env, cfg, "ldif-gen", "Generate LDIF directives for Samba Active Directory users and groups.", args); err != nil {
		return err
	}

	log, err := env.logger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ldapCfg, err := config.LoadLdap(cfg.Config)
	if err != nil {
		return err
	}

	tmpl := generator.NewUserTemplate()
	if cfg.InputFile != "" {
		if tmpl, err = loadTemplateFromFile(cfg.InputFile); err != nil {
			return err
		}
	}
	tmpl = cfg.merge(tmpl)

	if cfg.Mode == generator.ModePassword && tmpl.Password == "" {
		if tmpl.Password, err = env.AskPassword("New password: "); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	runCfg := generator.NewRunConfig()
	runCfg.Mode = cfg.Mode
	runCfg.Ldap = ldapCfg
	runCfg.User = tmpl.User()
	runCfg.GroupName = cfg.GroupName
	runCfg.Password = tmpl.Password
	runCfg.Count = cfg.Count
	runCfg.Seed = cfg.Seed
	runCfg.LDIFFile = cfg.LDIFFile
	runCfg.Out = env.Stdout
	runCfg.Check = cfg.Check
	runCfg.Log = log

	// Fake mode only takes the fields the user actually set.
	if cfg.Mode == generator.ModeFake {
		runCfg.Template = tmpl
	}

	return generator.Run(runCfg)
}
