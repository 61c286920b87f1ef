package config

// Default file locations used by the command-line tools.
const (
	DefaultToolsPath     = "/etc/adtools/tools.json"
	DefaultGeneratorPath = "/etc/adtools/register.json"
	DefaultLdapPath      = "/etc/ad/settings.toml"
	DefaultDomainPath    = "/etc/adtools/domain.yaml"
	DefaultLocalPath     = "/etc/adtools/local.yaml"
)

// Mask replaces secret values when a configuration is printed.
const Mask = "********"

// ToolsConfiguration holds the Samba domain controller settings shared by
// the user and group tools.
type ToolsConfiguration struct {
	SambaPath        string `json:"sambaPath"`        // Path to the samba-tool binary
	SrvName          string `json:"srvName"`          // File server NetBIOS name
	HomeDirsPath     string `json:"homeDirsPath"`     // Local path of the home directories
	HomeDirsShare    string `json:"homeDirsShare"`    // Share name exporting HomeDirsPath
	DomainFQDN       string `json:"domainFqdn"`       // AD realm, e.g. corp.example.com
	NTDomainName     string `json:"ntDomainName"`     // NetBIOS domain name
	PoolPath         string `json:"poolPath"`         // Local path of the group pools
	PoolShare        string `json:"poolShare"`        // Share name exporting PoolPath
	PoolOwner        string `json:"poolOwner"`        // Local owner of group pool directories
	WinbindSeparator string `json:"winbindSeparator"` // Separator between domain and account names
}

func (c *ToolsConfiguration) Validate() error {
	return requireFields(map[string]string{
		"sambaPath":        c.SambaPath,
		"srvName":          c.SrvName,
		"homeDirsPath":     c.HomeDirsPath,
		"homeDirsShare":    c.HomeDirsShare,
		"domainFqdn":       c.DomainFQDN,
		"ntDomainName":     c.NTDomainName,
		"poolPath":         c.PoolPath,
		"poolShare":        c.PoolShare,
		"poolOwner":        c.PoolOwner,
		"winbindSeparator": c.WinbindSeparator,
	})
}

// QualifiedName returns name prefixed with the NT domain and the winbind
// separator, the form local tools such as chown expect.
func (c *ToolsConfiguration) QualifiedName(name string) string {
	return c.NTDomainName + c.WinbindSeparator + name
}

// LoadTools loads a JSON ToolsConfiguration.
func LoadTools(path string) (*ToolsConfiguration, error) {
	return Load[ToolsConfiguration](path, FormatJSON)
}

// GeneratorConfig holds the credentials of the student register database.
type GeneratorConfig struct {
	DBHost string `json:"databaseHost"`
	DBName string `json:"databaseName"`
	DBUser string `json:"databaseUser"`
	DBPass string `json:"databasePass"`
}

// NewGeneratorConfig builds a GeneratorConfig from explicit values.
func NewGeneratorConfig(host, name, user, pass string) *GeneratorConfig {
	return &GeneratorConfig{
		DBHost: host,
		DBName: name,
		DBUser: user,
		DBPass: pass,
	}
}

func (c *GeneratorConfig) Validate() error {
	return requireFields(map[string]string{
		"databaseHost": c.DBHost,
		"databaseName": c.DBName,
		"databaseUser": c.DBUser,
		"databasePass": c.DBPass,
	})
}

// Masked returns a copy of c with the password hidden, safe to print.
func (c *GeneratorConfig) Masked() *GeneratorConfig {
	masked := *c
	if masked.DBPass != "" {
		masked.DBPass = Mask
	}
	return &masked
}

// LoadGenerator loads a JSON GeneratorConfig.
func LoadGenerator(path string) (*GeneratorConfig, error) {
	return Load[GeneratorConfig](path, FormatJSON)
}

// LdapConfig holds the settings used to render LDIF directives.
type LdapConfig struct {
	ADDomain         string `toml:"ad_domain"`
	ServerFQDN       string `toml:"server_fqdn"`
	HomeDirsPath     string `toml:"home_dirs_path"`
	HomeDirsShare    string `toml:"home_dirs_share"`
	HomeDriveLetter  string `toml:"home_drive_letter"`
	NTDomainName     string `toml:"nt_domain_name"`
	WinbindSeparator string `toml:"winbind_separator"`
}

func (c *LdapConfig) Validate() error {
	return requireFields(map[string]string{
		"ad_domain":         c.ADDomain,
		"server_fqdn":       c.ServerFQDN,
		"home_dirs_path":    c.HomeDirsPath,
		"home_dirs_share":   c.HomeDirsShare,
		"home_drive_letter": c.HomeDriveLetter,
		"nt_domain_name":    c.NTDomainName,
		"winbind_separator": c.WinbindSeparator,
	})
}

// LoadLdap loads a TOML LdapConfig.
func LoadLdap(path string) (*LdapConfig, error) {
	return Load[LdapConfig](path, FormatTOML)
}

// DomainConfiguration describes the Active Directory realm and the shares
// used when creating users.
type DomainConfiguration struct {
	FQDN            string `yaml:"fqdn"`            // AD realm, also the LDAP search base
	NTDomain        string `yaml:"ntDomain"`        // NetBIOS domain name
	DCIPAddress     string `yaml:"dcIpAddress"`     // Domain controller IPv4 address
	DCFQDN          string `yaml:"dcFqdn"`          // Domain controller FQDN
	DCNTName        string `yaml:"dcNtName"`        // Domain controller NetBIOS name
	NTUsersShare    string `yaml:"ntUsersShare"`    // UNC path of the users share
	NTProfilesShare string `yaml:"ntProfilesShare"` // UNC path of the profiles share
}

func (c *DomainConfiguration) Validate() error {
	return requireFields(map[string]string{
		"fqdn":            c.FQDN,
		"ntDomain":        c.NTDomain,
		"dcIpAddress":     c.DCIPAddress,
		"dcFqdn":          c.DCFQDN,
		"dcNtName":        c.DCNTName,
		"ntUsersShare":    c.NTUsersShare,
		"ntProfilesShare": c.NTProfilesShare,
	})
}

// LoadDomain loads a YAML DomainConfiguration.
func LoadDomain(path string) (*DomainConfiguration, error) {
	return Load[DomainConfiguration](path, FormatYAML)
}

// LocalConfiguration holds paths local to the domain controller.
type LocalConfiguration struct {
	UsersHomeDirsPath string `yaml:"usersHomeDirsPath"`
	GroupsPoolPath    string `yaml:"groupsPoolPath"`
}

func (c *LocalConfiguration) Validate() error {
	return requireFields(map[string]string{
		"usersHomeDirsPath": c.UsersHomeDirsPath,
		"groupsPoolPath":    c.GroupsPoolPath,
	})
}

// LoadLocal loads a YAML LocalConfiguration.
func LoadLocal(path string) (*LocalConfiguration, error) {
	return Load[LocalConfiguration](path, FormatYAML)
}
