package universe

// ResolveDependencies computes the transitive dependency closure of the
// given seed packages against the universe, the Go equivalent of
// di_packages_resolve_dependencies. Unknown dependency names (packages
// the universe doesn't list, e.g. virtual packages this model doesn't
// resolve) are silently skipped rather than treated as an error - the
// original does the same, leaving unresolvable names for dpkg itself to
// complain about at install time.
//
// excluded, if non-nil, names packages that must never enter the
// closure even if another seed's dependency chain would otherwise pull
// them back in; it's seeded into the BFS's visited set up front so an
// excluded package is never walked, never added, and never re-expanded
// through its own dependencies.
func (p *Packages) ResolveDependencies(seed []*Package, excluded map[string]bool) []*Package {
	seen := make(map[string]bool, len(seed)+len(excluded))
	for name := range excluded {
		seen[name] = true
	}
	var closure []*Package

	queue := make([]*Package, len(seed))
	copy(queue, seed)

	for len(queue) > 0 {
		pkg := queue[0]
		queue = queue[1:]

		if seen[pkg.Key()] {
			continue
		}
		seen[pkg.Key()] = true
		closure = append(closure, pkg)

		for _, name := range pkg.DependencyNames() {
			if seen[name] {
				continue
			}
			dep := p.Get(name)
			if dep == nil {
				continue
			}
			queue = append(queue, dep)
		}
	}

	return closure
}
