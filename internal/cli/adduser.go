package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"

	"github.com/simone-rolando/samba-ad-tools/internal/config"
	"github.com/simone-rolando/samba-ad-tools/internal/importer"
	"github.com/simone-rolando/samba-ad-tools/internal/samba"
)

// generatedPasswordLength is the length of passwords made by
// --generate-passwords.
const generatedPasswordLength = 12

// AddUserConfig holds the command-line options for domain-adduser.
type AddUserConfig struct {
	Config      string `help:"Path to the tools configuration (JSON)." default:"/etc/adtools/tools.json" type:"path"`
	Filename    string `help:"Semicolon separated login file to import." short:"f" type:"path"`
	Interactive bool   `help:"Prompt for a single user instead of reading a file." short:"i"`
	Update      bool   `help:"Reset the password and complete the groups of users that already exist." short:"u"`
	Encoding    string `help:"Encoding of the login file when it has no byte order mark." enum:"utf-8,latin1,windows-1252" default:"utf-8"`

	GeneratePasswords  bool `help:"Generate a password for users that have none and print it." name:"generate-passwords"`
	CreateHome         bool `help:"Create home directories for new users and pool directories for new groups." name:"create-home"`
	SkipPrivilegeCheck bool `help:"Run even when not root." name:"skip-privilege-check"`

	Verbose bool `help:"Log every samba-tool invocation." short:"v"`
}

// NewAddUserConfig is an initializer function for AddUserConfig.
func NewAddUserConfig() *AddUserConfig {
	return &AddUserConfig{
		Config:   config.DefaultToolsPath,
		Encoding: "utf-8",
	}
}

// RunAddUser is the domain-adduser tool. It creates the users read from a
// login file, or typed at the terminal, together with their groups.
func RunAddUser(ctx context.Context, env *Env, args []string) error {
	cfg := NewAddUserConfig()
	kctx, err := parse(env, cfg, "domain-adduser", "Create Samba domain users and their groups.", args)
	if err != nil {
		return err
	}

	if cfg.Filename == "" && !cfg.Interactive {
		kctx.Stdout = env.Stderr
		if err := kctx.PrintUsage(false); err != nil {
			return err
		}
		return errors.New("no mode selected: use --filename or --interactive")
	}

	if !cfg.SkipPrivilegeCheck && !env.Privileged() {
		return errors.New("domain-adduser must be run as root")
	}

	log, err := env.logger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	tools, err := config.LoadTools(cfg.Config)
	if err != nil {
		return err
	}

	var users []*samba.DomainUser
	if cfg.Interactive {
		u, err := promptUser(env, bufio.NewReader(env.Stdin))
		if err != nil {
			return err
		}
		users = append(users, u)
	} else {
		opts, err := importer.NewOptions()
		if err != nil {
			return err
		}
		opts.Encoding = cfg.Encoding

		res, err := importer.ReadLoginCSV(cfg.Filename, opts)
		if err != nil {
			return err
		}
		if res.Err != nil {
			log.Warn("some rows were skipped", zap.Int("skipped", res.Skipped), zap.Error(res.Err))
		}
		users = res.Users
	}

	if cfg.GeneratePasswords {
		for _, u := range samba.FillPasswords(gofakeit.NewCrypto(), users, generatedPasswordLength) {
			fmt.Fprintf(env.Stdout, "%s;%s\n", u.CommonName, u.Password)
		}
	}

	prov := samba.NewProvisioner(samba.NewTool(env.runner(log), tools, log))
	prov.Update = cfg.Update
	prov.CreateHome = cfg.CreateHome

	summary, err := prov.ProvisionAll(ctx, users)
	log.Info("done",
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return err
}

// promptUser asks for the fields of one user. Groups are typed as a comma
// separated list and the class, if any, is added to them.
func promptUser(env *Env, in *bufio.Reader) (*samba.DomainUser, error) {
	ask := func(prompt string) (string, error) {
		fmt.Fprint(env.Stdout, prompt)
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return "", fmt.Errorf("failed to read %q: %w", strings.TrimSuffix(prompt, ": "), err)
		}
		return strings.TrimSpace(line), nil
	}

	login, err := ask("Login: ")
	if err != nil {
		return nil, err
	}
	if login == "" {
		return nil, errors.New("login must not be empty")
	}
	first, err := ask("First name: ")
	if err != nil {
		return nil, err
	}
	last, err := ask("Last name: ")
	if err != nil {
		return nil, err
	}
	groups, err := ask("Groups (comma separated): ")
	if err != nil {
		return nil, err
	}
	class, err := ask("Class: ")
	if err != nil {
		return nil, err
	}

	password, err := env.AskPassword("Password: ")
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return samba.NewDomainUser(login, first, last, password, importer.SplitGroups(groups, class)...), nil
}
