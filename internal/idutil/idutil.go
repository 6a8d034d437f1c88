// Package idutil provides the id-derivation rule shared by the Role
// Registry and the Knowledge-Domain Registry (spec §4.C1, §4.C2): lowercase
// the name, replace any run of non-alphanumeric/underscore characters with a
// single underscore, then trim leading and trailing underscores.
package idutil

import (
	"regexp"
	"strings"
)

var sanitizer = regexp.MustCompile(`[^a-z0-9_]+`)

// DeriveID derives a stable snake_case id token from a human-readable name.
func DeriveID(name string) string {
	lowered := strings.ToLower(name)
	return strings.Trim(sanitizer.ReplaceAllString(lowered, "_"), "_")
}
