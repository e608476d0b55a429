package universe

import (
	"strings"

	"github.com/dpeckett/deb822/types/dependency"
)

// firstAlternatives parses a Depends/Pre-Depends field's rendered form
// ("libc6 (>= 2.34), libfoo | libbar") and returns one name per
// comma-separated group: the first alternative in each "a | b | c" choice.
// This mirrors di_packages_resolve_dependencies, which also does not
// attempt full alternative-satisfiability search - it always follows the
// first listed alternative.
func firstAlternatives(dep dependency.Dependency) []string {
	text := strings.TrimSpace(dep.String())
	if text == "" {
		return nil
	}

	var names []string
	for _, group := range strings.Split(text, ",") {
		alternatives := strings.Split(group, "|")
		if len(alternatives) == 0 {
			continue
		}
		name := dependencyName(alternatives[0])
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

// dependencyName strips version constraints and architecture qualifiers
// from a single dependency alternative, e.g. "libc6 (>= 2.34) [amd64]"
// becomes "libc6".
func dependencyName(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "([:"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
