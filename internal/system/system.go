// Package system holds checks about the host the tools run on.
package system

import "os"

// HasPrivileges reports whether the process runs with an effective uid of
// 0, which samba-tool and chown need to change the domain.
func HasPrivileges() bool {
	return os.Geteuid() == 0
}
