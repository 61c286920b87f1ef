package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/simone-rolando/samba-ad-tools/internal/config"
	"github.com/simone-rolando/samba-ad-tools/internal/register"
)

// GetLoginConfig holds the command-line options for get-login.
type GetLoginConfig struct {
	Config   string `help:"Path to the register database configuration (JSON)." default:"/etc/adtools/register.json" type:"path"`
	Dir      string `help:"Directory receiving the class files." short:"d" default:"." type:"path"`
	Prefix   string `help:"File name prefix, files are named <prefix>_<class>.csv." short:"p" default:"export"`
	Class    string `help:"Only export this class." short:"c"`
	Group    string `help:"Only export users of this group." short:"g"`
	Truncate bool   `help:"Overwrite existing class files instead of appending to them."`
	Verbose  bool   `help:"Enable debug logging." short:"v"`
}

// NewGetLoginConfig is an initializer function for GetLoginConfig.
func NewGetLoginConfig() *GetLoginConfig {
	return &GetLoginConfig{
		Config: config.DefaultGeneratorPath,
		Dir:    ".",
		Prefix: "export",
	}
}

// RunGetLogin is the get-login tool. It reads the student register and
// writes one login file per class, printing the path of each file.
func RunGetLogin(ctx context.Context, env *Env, args []string) error {
	cfg := NewGetLoginConfig()
	if _, err := parse(env, cfg, "get-login", "Export the student register as per-class login files.", args); err != nil {
		return err
	}

	log, err := env.logger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	dbCfg, err := config.LoadGenerator(cfg.Config)
	if err != nil {
		return err
	}

	db, err := env.OpenDB(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := register.NewStore(db, log).LoginData(ctx)
	if err != nil {
		return err
	}
	if cfg.Class != "" {
		users = register.FilterByClass(users, cfg.Class)
	}
	if cfg.Group != "" {
		users = register.FilterByGroup(users, cfg.Group)
	}
	log.Debug("users selected", zap.Int("count", len(users)), zap.Strings("classes", register.Classes(users)))

	exp, err := register.NewExporter(cfg.Dir, cfg.Prefix)
	if err != nil {
		return err
	}
	exp.Truncate = cfg.Truncate
	exp.Log = log

	paths, err := exp.Export(users)
	for _, p := range paths {
		fmt.Fprintln(env.Stdout, p)
	}
	return err
}
