package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const toolsJSON = `{
  "sambaPath": "/usr/bin/samba-tool",
  "srvName": "FILESRV",
  "homeDirsPath": "/srv/homes",
  "homeDirsShare": "homes",
  "domainFqdn": "corp.example.com",
  "ntDomainName": "CORP",
  "poolPath": "/srv/pools",
  "poolShare": "pools",
  "poolOwner": "root",
  "winbindSeparator": "\\"
}`

func TestLoadTools(t *testing.T) {
	path := writeFile(t, "tools.json", toolsJSON)

	cfg, err := LoadTools(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/usr/bin/samba-tool", cfg.SambaPath)
	assert.Equal(t, "corp.example.com", cfg.DomainFQDN)
	assert.Equal(t, `\`, cfg.WinbindSeparator)
	assert.Equal(t, `CORP\jdoe`, cfg.QualifiedName("jdoe"))
}

func TestLoadTools_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{
			name:    "malformed json",
			content: `{"sambaPath": `,
			errPart: "failed to parse json",
		},
		{
			name:    "missing field",
			content: `{"sambaPath": "/usr/bin/samba-tool"}`,
			errPart: "missing required fields",
		},
		{
			name:    "unknown field",
			content: toolsJSON[:len(toolsJSON)-1] + `, "extra": "x"}`,
			errPart: "unknown field",
		},
		{
			name:    "trailing garbage",
			content: toolsJSON + " garbage",
			errPart: "unexpected data after the top-level value",
		},
		{
			name:    "second object",
			content: toolsJSON + "\n{}",
			errPart: "unexpected data after the top-level value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "tools.json", tt.content)
			cfg, err := LoadTools(path)
			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestLoadTools_TrailingWhitespace(t *testing.T) {
	cfg, err := LoadTools(writeFile(t, "tools.json", toolsJSON+"\n\n"))
	require.NoError(t, err)
	assert.Equal(t, "FILESRV", cfg.SrvName)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := LoadGenerator(filepath.Join(t.TempDir(), "absent.json"))
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadGenerator(t *testing.T) {
	path := writeFile(t, "register.json", `{
  "databaseHost": "db.school.lan",
  "databaseName": "school",
  "databaseUser": "alunni",
  "databasePass": "secret"
}`)

	cfg, err := LoadGenerator(path)
	require.NoError(t, err)
	assert.Equal(t, NewGeneratorConfig("db.school.lan", "school", "alunni", "secret"), cfg)
}

func TestLoadLdap(t *testing.T) {
	path := writeFile(t, "settings.toml", `
ad_domain = "corp.example.com"
server_fqdn = "dc1.corp.example.com"
home_dirs_path = "/srv/homes"
home_dirs_share = '\\dc1\homes'
home_drive_letter = "H:"
nt_domain_name = "CORP"
winbind_separator = '\'
`)

	cfg, err := LoadLdap(path)
	require.NoError(t, err)
	assert.Equal(t, "corp.example.com", cfg.ADDomain)
	assert.Equal(t, `\\dc1\homes`, cfg.HomeDirsShare)
	assert.Equal(t, "H:", cfg.HomeDriveLetter)
}

func TestLoadLdap_UnknownKey(t *testing.T) {
	path := writeFile(t, "settings.toml", `
ad_domain = "corp.example.com"
server_fqdn = "dc1.corp.example.com"
home_dirs_path = "/srv/homes"
home_dirs_share = "homes"
home_drive_letter = "H:"
nt_domain_name = "CORP"
winbind_separator = "+"
ldap_domain = "legacy"
`)

	cfg, err := LoadLdap(path)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ldap_domain")
}

func TestLoadDomainAndLocal(t *testing.T) {
	domainPath := writeFile(t, "domain.yaml", `
fqdn: corp.example.com
ntDomain: CORP
dcIpAddress: 10.0.0.10
dcFqdn: dc1.corp.example.com
dcNtName: DC1
ntUsersShare: \\dc1\users
ntProfilesShare: \\dc1\profiles
`)
	localPath := writeFile(t, "local.yaml", `
usersHomeDirsPath: /srv/homes
groupsPoolPath: /srv/pools
`)

	domain, err := LoadDomain(domainPath)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.10", domain.DCIPAddress)
	assert.Equal(t, `\\dc1\users`, domain.NTUsersShare)

	local, err := LoadLocal(localPath)
	require.NoError(t, err)
	assert.Equal(t, "/srv/pools", local.GroupsPoolPath)
}

func TestDecoderFor_Unknown(t *testing.T) {
	_, err := DecoderFor(Format("ini"))
	assert.Error(t, err)

	_, err = Load[LocalConfiguration]("whatever", Format("ini"))
	assert.Error(t, err)
}

func TestEncode_RoundTrip(t *testing.T) {
	ldap := &LdapConfig{
		ADDomain:         "corp.example.com",
		ServerFQDN:       "dc1.corp.example.com",
		HomeDirsPath:     "/srv/homes",
		HomeDirsShare:    `\\dc1\homes`,
		HomeDriveLetter:  "H:",
		NTDomainName:     "CORP",
		WinbindSeparator: `\`,
	}
	local := &LocalConfiguration{UsersHomeDirsPath: "/srv/homes", GroupsPoolPath: "/srv/pools"}
	gen := NewGeneratorConfig("db", "register", "reader", "pw")

	tests := []struct {
		name   string
		format Format
		value  any
		load   func(path string) (any, error)
	}{
		{name: "json", format: FormatJSON, value: gen, load: func(p string) (any, error) { return LoadGenerator(p) }},
		{name: "toml", format: FormatTOML, value: ldap, load: func(p string) (any, error) { return LoadLdap(p) }},
		{name: "yaml", format: FormatYAML, value: local, load: func(p string) (any, error) { return LoadLocal(p) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tt.format, tt.value))

			got, err := tt.load(writeFile(t, "cfg."+tt.name, buf.String()))
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}

	assert.Error(t, Encode(&bytes.Buffer{}, Format("ini"), local))
}

func TestGeneratorConfig_Masked(t *testing.T) {
	cfg := NewGeneratorConfig("db", "register", "reader", "pw")
	masked := cfg.Masked()
	assert.Equal(t, Mask, masked.DBPass)
	assert.Equal(t, "reader", masked.DBUser)
	assert.Equal(t, "pw", cfg.DBPass, "original is untouched")
}
