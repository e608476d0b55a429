package universe

import (
	"github.com/dpeckett/deb822/types"
)

// Package is a deb822 package stanza enriched with the install-state
// bookkeeping the bootstrap engine needs: its priority ordinal (for the
// priority-based action dispatch in internal/action) and its current
// dpkg status (updated as the fd-3 protocol reports unpack/configure
// transitions).
type Package struct {
	types.Package

	// Rank is the parsed form of the embedded Priority string field.
	// Named distinctly to avoid shadowing types.Package.Priority.
	Rank Priority

	// State is the package's current position in the install state
	// machine, initially StatusNotInstalled for everything the index
	// reports and bumped as dpkg reports progress.
	State Status
}

// Key returns the package name, the identifier install lists and the
// priority memo are keyed by.
func (p *Package) Key() string {
	return p.Name
}

// newPackage wraps a decoded deb822 stanza, computing its Rank from the
// Priority field.
func newPackage(p types.Package) *Package {
	return &Package{
		Package: p,
		Rank:    ParsePriority(p.Priority),
		State:   StatusNotInstalled,
	}
}

// DependencyNames returns the package names named in Depends and
// PreDepends, one name per OR-group (the first alternative in each
// group), matching the original's "resolve by picking a candidate, not
// full SAT search" dependency model.
func (p *Package) DependencyNames() []string {
	var names []string
	names = append(names, firstAlternatives(p.PreDepends)...)
	names = append(names, firstAlternatives(p.Depends)...)
	return names
}
