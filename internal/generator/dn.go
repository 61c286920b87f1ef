package generator

import "strings"

// DomainComponents converts a dotted FQDN into an LDAP DN suffix, one DC
// component per label: "corp.example.com" -> "DC=corp,DC=example,DC=com".
func DomainComponents(fqdn string) string {
	labels := strings.Split(fqdn, ".")
	parts := make([]string, len(labels))
	for i, label := range labels {
		parts[i] = "DC=" + label
	}
	return strings.Join(parts, ",")
}

// EscapeValue escapes an RDN attribute value as described in RFC 4514:
// "Doe, John" -> "Doe\, John", "#1" -> "\#1".
func EscapeValue(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for i, r := range value {
		switch r {
		case ',', '+', '"', '\\', '<', '>', ';', '=':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '#':
			if i == 0 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case ' ':
			if i == 0 || i == len(value)-1 {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case 0:
			b.WriteString(`\00`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UserDN returns the distinguished name of username in the Users container.
func UserDN(username, fqdn string) string {
	return "CN=" + EscapeValue(username) + ",CN=Users," + DomainComponents(fqdn)
}

// GroupDN returns the distinguished name of a group in the Users container.
func GroupDN(name, fqdn string) string {
	return "CN=" + EscapeValue(name) + ",CN=Users," + DomainComponents(fqdn)
}
