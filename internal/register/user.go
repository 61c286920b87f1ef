// Package register reads the student register (the ALUNNO table of the
// school's MySQL database) and exports it as per-class login files.
package register

import (
	"slices"
	"strings"
)

// User is one row of the ALUNNO table.
type User struct {
	Login        string
	LastName     string
	FirstName    string
	Class        string
	Password     string
	TaxCode      string
	Group        string
	BirthDate    string  // YYYY-MM-DD, empty when NULL or unparseable
	DateModified *string // YYYY-MM-DD, nil when NULL or unparseable
}

// FilterByClass returns the users of class, keeping their order.
func FilterByClass(users []User, class string) []User {
	return filter(users, func(u User) bool { return u.Class == class })
}

// FilterByGroup returns the users of group, keeping their order.
func FilterByGroup(users []User, group string) []User {
	return filter(users, func(u User) bool { return u.Group == group })
}

func filter(users []User, keep func(User) bool) []User {
	out := []User{}
	for _, u := range users {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

// SortByClass sorts users by class in place. Users of the same class keep
// their relative order.
func SortByClass(users []User) {
	slices.SortStableFunc(users, func(a, b User) int {
		return strings.Compare(a.Class, b.Class)
	})
}

// Classes returns the distinct classes of users in the order they first
// appear.
func Classes(users []User) []string {
	seen := make(map[string]bool)
	classes := []string{}
	for _, u := range users {
		if !seen[u.Class] {
			seen[u.Class] = true
			classes = append(classes, u.Class)
		}
	}
	return classes
}
