package cli

import (
	"fmt"

	"github.com/simone-rolando/samba-ad-tools/internal/config"
)

// Configuration kinds understood by show-config.
const (
	KindTools     = "tools"
	KindGenerator = "generator"
	KindLdap      = "ldap"
	KindDomain    = "domain"
	KindLocal     = "local"
)

// ShowConfigConfig holds the command-line options for show-config.
type ShowConfigConfig struct {
	Kind string `help:"Configuration to show." enum:"tools,generator,ldap,domain,local" default:"tools" short:"k"`
	Path string `help:"Configuration file. Defaults to the standard location of the kind." type:"path"`
}

// NewShowConfigConfig is an initializer function for ShowConfigConfig.
func NewShowConfigConfig() *ShowConfigConfig {
	return &ShowConfigConfig{Kind: KindTools}
}

// RunShowConfig is the show-config tool. It loads one configuration file
// and prints it in its own format, with secrets masked.
func RunShowConfig(env *Env, args []string) error {
	cfg := NewShowConfigConfig()
	if _, err := parse(env, cfg, "show-config", "Print a domain tools configuration file.", args); err != nil {
		return err
	}

	var (
		value  any
		format config.Format
		err    error
	)
	switch cfg.Kind {
	case KindTools:
		format = config.FormatJSON
		value, err = config.LoadTools(pathOr(cfg.Path, config.DefaultToolsPath))
	case KindGenerator:
		format = config.FormatJSON
		var gen *config.GeneratorConfig
		if gen, err = config.LoadGenerator(pathOr(cfg.Path, config.DefaultGeneratorPath)); err == nil {
			value = gen.Masked()
		}
	case KindLdap:
		format = config.FormatTOML
		value, err = config.LoadLdap(pathOr(cfg.Path, config.DefaultLdapPath))
	case KindDomain:
		format = config.FormatYAML
		value, err = config.LoadDomain(pathOr(cfg.Path, config.DefaultDomainPath))
	case KindLocal:
		format = config.FormatYAML
		value, err = config.LoadLocal(pathOr(cfg.Path, config.DefaultLocalPath))
	default:
		return fmt.Errorf("unknown configuration kind %q", cfg.Kind)
	}
	if err != nil {
		return err
	}

	return config.Encode(env.Stdout, format, value)
}

func pathOr(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
