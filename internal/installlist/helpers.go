package installlist

import "github.com/godebootstrap/godebootstrap/internal/universe"

// InstallList selects install's members at priority >= minPriority and
// status < maxStatus, resolves their dependency closure, then re-filters
// that closure by status alone — the exact two-pass shape of the
// original install_list (priority/status filter, resolve, status
// re-filter).
func InstallList(pkgs *universe.Packages, install *List, minPriority universe.Priority, maxStatus universe.Status) *List {
	var seed []*universe.Package
	for _, p := range install.Packages() {
		if p.Rank >= minPriority && p.State < maxStatus {
			seed = append(seed, p)
		}
	}

	closure := pkgs.ResolveDependencies(seed, nil)

	var filtered []*universe.Package
	for _, p := range closure {
		if p.State < maxStatus {
			filtered = append(filtered, p)
		}
	}
	return newList(filtered)
}

// InstallListPackage seeds the closure with a single named package (skip
// entirely if it's unknown or already at or past maxStatus), then
// re-filters the closure by status, mirroring install_list_package.
func InstallListPackage(pkgs *universe.Packages, name string, maxStatus universe.Status) *List {
	p := pkgs.Get(name)
	if p == nil || p.State >= maxStatus {
		return newList(nil)
	}

	closure := pkgs.ResolveDependencies([]*universe.Package{p}, nil)

	var filtered []*universe.Package
	for _, p := range closure {
		if p.State < maxStatus {
			filtered = append(filtered, p)
		}
	}
	return newList(filtered)
}

// InstallListPackageOnly returns the single named package with no
// dependency closure, if it exists and is below maxStatus — mirroring
// install_list_package_only.
func InstallListPackageOnly(pkgs *universe.Packages, name string, maxStatus universe.Status) *List {
	p := pkgs.Get(name)
	if p == nil || p.State >= maxStatus {
		return newList(nil)
	}
	return newList([]*universe.Package{p})
}
