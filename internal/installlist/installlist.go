// Package installlist builds the ordered, dependency-closed set of
// packages a bootstrap run installs, from the suite's configured
// sections, the priority-based pseudo-selectors, and the CLI's
// --include/--exclude overrides.
package installlist

import (
	"sort"
	"strings"

	"github.com/godebootstrap/godebootstrap/internal/logmsg"
	"github.com/godebootstrap/godebootstrap/internal/suiteconfig"
	"github.com/godebootstrap/godebootstrap/internal/universe"
)

const (
	tokenPriorityRequired  = "priority-required"
	tokenPriorityImportant = "priority-important"
)

// List is an ordered, deduplicated set of packages.
type List struct {
	byName map[string]*universe.Package
	order  []*universe.Package
}

// Packages returns the list's members in order.
func (l *List) Packages() []*universe.Package {
	return l.order
}

// Has reports whether name is a member of the list.
func (l *List) Has(name string) bool {
	_, ok := l.byName[name]
	return ok
}

// Len returns the number of members.
func (l *List) Len() int {
	return len(l.order)
}

func newList(pkgs []*universe.Package) *List {
	l := &List{byName: make(map[string]*universe.Package, len(pkgs))}
	for _, p := range pkgs {
		if _, dup := l.byName[p.Key()]; dup {
			continue
		}
		l.byName[p.Key()] = p
		l.order = append(l.order, p)
	}
	return l
}

// Build implements spec.md §4.E's steps 1-6: scan every active section's
// active package groups for priority pseudo-selectors and explicit
// include/exclude tokens, layer the CLI's includes/excludes on top, then
// resolve the resulting candidate set's dependency closure.
func Build(suite *suiteconfig.Suite, pkgs *universe.Packages, includes, excludes []string, sink *logmsg.Sink) *List {
	include := make(map[string]*universe.Package)
	exclude := make(map[string]*universe.Package)
	var selectRequired, selectImportant bool

	for _, section := range suite.Sections {
		if !section.Activate {
			continue
		}
		for _, group := range section.Groups {
			if !group.Activate {
				continue
			}
			for _, token := range group.Packages {
				scanToken(token, pkgs, include, exclude, &selectRequired, &selectImportant, sink)
			}
		}
	}

	for _, p := range pkgs.All() {
		if isEssential(p) ||
			(selectRequired && p.Rank == universe.PriorityRequired) ||
			(selectImportant && p.Rank == universe.PriorityImportant) {
			include[p.Key()] = p
		}
	}

	for _, name := range includes {
		if p := pkgs.Get(name); p != nil {
			include[name] = p
		} else {
			sink.Warning("--include references unknown package", "package", name)
		}
	}
	for _, name := range excludes {
		if p := pkgs.Get(name); p != nil {
			exclude[name] = p
		} else {
			sink.Message("--exclude references unknown package", "package", name)
		}
	}

	names := make([]string, 0, len(include))
	for name := range include {
		names = append(names, name)
	}
	sort.Strings(names)

	excludedNames := make(map[string]bool, len(exclude))
	for name := range exclude {
		excludedNames[name] = true
	}

	candidates := make([]*universe.Package, 0, len(names))
	for _, name := range names {
		if excludedNames[name] {
			continue
		}
		candidates = append(candidates, include[name])
	}

	// excludedNames is threaded straight into the BFS rather than just
	// filtering candidates up front: a package excluded here can still
	// be some other included package's dependency, and spec.md's
	// --exclude must win even then (an excluded name never re-enters
	// the closure through someone else's dependency chain).
	return newList(pkgs.ResolveDependencies(candidates, excludedNames))
}

func scanToken(token string, pkgs *universe.Packages, include, exclude map[string]*universe.Package, selectRequired, selectImportant *bool, sink *logmsg.Sink) {
	switch {
	case strings.EqualFold(token, tokenPriorityRequired):
		*selectRequired = true
	case strings.EqualFold(token, tokenPriorityImportant):
		*selectImportant = true
	case strings.HasPrefix(token, "-"):
		name := token[1:]
		if p := pkgs.Get(name); p != nil {
			exclude[name] = p
		} else {
			sink.Message("section excludes unknown package", "package", name)
		}
	default:
		if p := pkgs.Get(token); p != nil {
			include[token] = p
		} else {
			sink.Warning("section references unknown package", "package", token)
		}
	}
}

func isEssential(p *universe.Package) bool {
	return p.Essential != nil && bool(*p.Essential)
}
