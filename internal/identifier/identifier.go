// Package identifier validates the package identifiers that rebrand
// substitutes throughout a project tree.
package identifier

import (
	"fmt"
	"regexp"
)

// pattern matches a valid package identifier: a letter followed by any
// number of letters, digits, and underscores.
var pattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Validate checks that name is a usable package identifier.
// Returns an error describing the constraint when it is not.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if !pattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q: must start with a letter and contain only letters, digits, and underscores", name)
	}
	return nil
}

// IsValid reports whether name is a usable package identifier.
func IsValid(name string) bool {
	return pattern.MatchString(name)
}
