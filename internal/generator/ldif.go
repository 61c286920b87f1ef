package generator

import (
	"encoding/base64" // base64 encodes the UTF-16 password payload
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode" // unicode provides the UTF-16LE encoder AD expects for unicodePwd

	"github.com/simone-rolando/samba-ad-tools/internal/config"
)

// SecurityGroup is the groupType of a global security group
// (ADS_GROUP_TYPE_GLOBAL_GROUP | ADS_GROUP_TYPE_SECURITY_ENABLED).
const SecurityGroup int32 = -2147483646

///////////////////////////////////////////////////////////////////////////////
// Records
///////////////////////////////////////////////////////////////////////////////

// Groups holds the two group slots a generated user can be placed in.
// An empty slot is ignored.
type Groups struct {
	First  string
	Second string
}

// Names returns the non-empty group slots in order.
func (g Groups) Names() []string {
	var names []string
	for _, n := range []string{g.First, g.Second} {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}

// User is the account data rendered into LDIF.
type User struct {
	Username  string
	FirstName string
	LastName  string
	Groups    Groups
}

// NewUser is an initializer function for User.
func NewUser(username, firstName, lastName string, groups Groups) *User {
	return &User{
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Groups:    groups,
	}
}

// record accumulates "attribute: value" lines in insertion order.
type record struct {
	b strings.Builder
}

func newRecord(dn string) *record {
	r := &record{}
	r.line("dn", dn)
	return r
}

func (r *record) line(attr, value string) *record {
	r.b.WriteString(attr)
	r.b.WriteString(": ")
	r.b.WriteString(value)
	r.b.WriteByte('\n')
	return r
}

func (r *record) base64(attr, value string) *record {
	r.b.WriteString(attr)
	r.b.WriteString(":: ")
	r.b.WriteString(value)
	r.b.WriteByte('\n')
	return r
}

// end closes a modify operation.
func (r *record) end() *record {
	r.b.WriteString("-\n")
	return r
}

func (r *record) String() string {
	return r.b.String()
}

///////////////////////////////////////////////////////////////////////////////
// Directives
///////////////////////////////////////////////////////////////////////////////

// HomeDirectory returns the UNC home directory of username on share. The
// share may be given with or without its leading double backslash.
func HomeDirectory(share, username string) string {
	if !strings.HasPrefix(share, `\\`) {
		share = `\\` + share
	}
	return share + `\` + username
}

// ProfilePath returns the roaming profile path of username.
func ProfilePath(share, username string) string {
	return HomeDirectory(share, username) + `\.profiles\` + username
}

// AddUser renders the directive that creates the user object. The order of
// attributes and their constant values are fixed.
func AddUser(u *User, cfg *config.LdapConfig) string {
	dc := DomainComponents(cfg.ADDomain)
	dn := UserDN(u.Username, cfg.ADDomain)

	return newRecord(dn).
		line("objectClass", "top").
		line("objectClass", "person").
		line("objectClass", "organizationalPerson").
		line("objectClass", "user").
		line("cn", u.Username).
		line("sn", u.LastName).
		line("givenName", u.FirstName).
		line("instanceType", "4").
		line("name", u.Username).
		line("codePage", "0").
		line("countryCode", "0").
		line("homeDirectory", HomeDirectory(cfg.HomeDirsShare, u.Username)).
		line("homeDrive", cfg.HomeDriveLetter).
		line("profilePath", ProfilePath(cfg.HomeDirsShare, u.Username)).
		line("objectCategory", "CN=Person,CN=Schema,CN=Configuration,"+dc).
		line("displayName", u.FirstName+" "+u.LastName).
		line("distinguishedName", dn).
		String()
}

// SetSAMAccountName renders the directive that sets the pre-Windows 2000
// logon name to the username.
func SetSAMAccountName(u *User, cfg *config.LdapConfig) string {
	return newRecord(UserDN(u.Username, cfg.ADDomain)).
		line("changetype", "modify").
		line("replace", "sAMAccountName").
		line("sAMAccountName", u.Username).
		end().
		String()
}

// AddGroup renders the directive that creates a global security group.
func AddGroup(name string, cfg *config.LdapConfig) string {
	return newRecord(GroupDN(name, cfg.ADDomain)).
		line("objectClass", "top").
		line("objectClass", "group").
		line("cn", name).
		line("sAMAccountName", name).
		line("groupType", strconv.FormatInt(int64(SecurityGroup), 10)).
		String()
}

// AddMember renders the directive that adds u to group.
func AddMember(u *User, cfg *config.LdapConfig, group string) string {
	return newRecord(GroupDN(group, cfg.ADDomain)).
		line("changetype", "modify").
		line("add", "member").
		line("member", UserDN(u.Username, cfg.ADDomain)).
		end().
		String()
}

// UnicodePassword returns the unicodePwd payload for clearText: the
// password wrapped in double quotes, encoded as UTF-16LE, then base64.
func UnicodePassword(clearText string) (string, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	raw, err := enc.Bytes([]byte(`"` + clearText + `"`))
	if err != nil {
		return "", fmt.Errorf("failed to encode password as UTF-16LE: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// SetPassword renders the directive that replaces the password of u.
func SetPassword(u *User, cfg *config.LdapConfig, newPassword string) (string, error) {
	pwd, err := UnicodePassword(newPassword)
	if err != nil {
		return "", err
	}
	return newRecord(UserDN(u.Username, cfg.ADDomain)).
		line("changetype", "modify").
		line("replace", "unicodePwd").
		base64("unicodePwd", pwd).
		end().
		String(), nil
}

// DeleteUser renders the directive that removes u.
func DeleteUser(u *User, cfg *config.LdapConfig) string {
	return newRecord(UserDN(u.Username, cfg.ADDomain)).
		line("changetype", "delete").
		String()
}

// Provision returns, in order, the directives that create u, set its logon
// name and password, and add it to each of its groups.
func Provision(u *User, cfg *config.LdapConfig, password string) ([]string, error) {
	blocks := []string{
		AddUser(u, cfg),
		SetSAMAccountName(u, cfg),
	}

	if password != "" {
		pwd, err := SetPassword(u, cfg, password)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, pwd)
	}

	for _, g := range u.Groups.Names() {
		blocks = append(blocks, AddMember(u, cfg, g))
	}

	return blocks, nil
}

// Join concatenates directives into one LDIF document, separating records
// with a blank line.
func Join(blocks []string) string {
	return strings.Join(blocks, "\n")
}
