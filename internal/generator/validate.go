package generator

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"   // ldap/v3 parses the DN of each record
	ldif "github.com/go-ldap/ldif" // ldif parses LDIF text back into LDAP requests
)

// Validate parses text as LDIF and checks that every record carries a
// well-formed DN. It returns the number of records found.
func Validate(text string) (int, error) {
	parsed, err := ldif.Parse(text)
	if err != nil {
		return 0, fmt.Errorf("failed to parse LDIF: %w", err)
	}

	for i, e := range parsed.Entries {
		dn := RecordDN(e)
		if dn == "" {
			return 0, fmt.Errorf("record %d has no DN", i+1)
		}
		if _, err := ldap.ParseDN(dn); err != nil {
			return 0, fmt.Errorf("record %d has an invalid DN %q: %w", i+1, dn, err)
		}
	}

	return len(parsed.Entries), nil
}

// RecordDN returns the DN of a parsed LDIF record, whatever its kind.
func RecordDN(e *ldif.Entry) string {
	switch {
	case e.Entry != nil:
		return e.Entry.DN
	case e.Add != nil:
		return e.Add.DN
	case e.Modify != nil:
		return e.Modify.DN
	case e.Del != nil:
		return e.Del.DN
	default:
		return ""
	}
}
