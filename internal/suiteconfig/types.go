// Package suiteconfig models and loads the RFC-822 suite configuration
// files (spec.md §3/§4.D): the catalogue of known suites and, for the
// selected suite, its ordered action list and its flavour/arch-filtered
// package sections.
package suiteconfig

import "strings"

// Flag is one of the two action flags, {FORCE, ONLY}.
type Flag int

const (
	FlagForce Flag = iota
	FlagOnly
)

// ActionKind is the closed set of action verbs spec.md §3/§4.G define.
// Modeled as a closed enum (not open polymorphism) per spec.md §9's
// re-architecture guidance.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionAptInstall
	ActionDpkgConfigure
	ActionDpkgInstall
	ActionDpkgUnpack
	ActionExtract
	ActionHelperInstall
	ActionHelperRemove
	ActionMount
)

// ParseActionKind maps an action file's "Action" field value to an
// ActionKind, case-insensitively. Unrecognized text yields
// ActionUnknown — the engine logs a warning and skips it, it does not
// fail the run (spec.md §7: "Unknown action kinds are warnings and
// the action is skipped").
func ParseActionKind(text string) ActionKind {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "apt-install":
		return ActionAptInstall
	case "dpkg-configure":
		return ActionDpkgConfigure
	case "dpkg-install":
		return ActionDpkgInstall
	case "dpkg-unpack":
		return ActionDpkgUnpack
	case "extract":
		return ActionExtract
	case "helper-install":
		return ActionHelperInstall
	case "helper-remove":
		return ActionHelperRemove
	case "mount":
		return ActionMount
	default:
		return ActionUnknown
	}
}

func (k ActionKind) String() string {
	switch k {
	case ActionAptInstall:
		return "apt-install"
	case ActionDpkgConfigure:
		return "dpkg-configure"
	case ActionDpkgInstall:
		return "dpkg-install"
	case ActionDpkgUnpack:
		return "dpkg-unpack"
	case ActionExtract:
		return "extract"
	case ActionHelperInstall:
		return "helper-install"
	case ActionHelperRemove:
		return "helper-remove"
	case ActionMount:
		return "mount"
	default:
		return "unknown"
	}
}

// Action is one ordered step of a suite's install recipe.
type Action struct {
	Kind     ActionKind
	What     string
	Comment  string
	Flags    map[Flag]bool
	Flavour  []string
	Activate bool
}

// HasFlag reports whether the action carries the given flag.
func (a Action) HasFlag(f Flag) bool {
	return a.Flags[f]
}

// PackageGroup is a nested arch-filtered list of package tokens.
// Tokens are either a literal package name, a "-name" exclusion, or
// one of the pseudo-tokens "priority-required"/"priority-important".
type PackageGroup struct {
	Arch     []string
	Packages []string
	Activate bool
}

// Section is a named grouping of package-selection rules.
type Section struct {
	Name     string
	Flavour  []string
	Groups   []PackageGroup
	Activate bool
}

// CatalogueEntry is one stanza of the top-level "suites" file.
// Requires, when set, is a semver constraint (e.g. ">= 1.2.0") on the
// running godebootstrap version; it lets a suite/keyring catalogue
// declare a minimum binary version it's compatible with.
type CatalogueEntry struct {
	Suite    string
	Config   string
	Keyring  string
	Requires string
}

// Catalogue is the full "suites" file: one entry per known suite.
type Catalogue []CatalogueEntry

// Find returns the entry for the given suite name, or nil.
func (c Catalogue) Find(name string) *CatalogueEntry {
	for i := range c {
		if c[i].Suite == name {
			return &c[i]
		}
	}
	return nil
}

// Suite is the fully loaded, flavour/arch-filtered configuration for
// one bootstrap run.
type Suite struct {
	Name           string
	Arch           string
	Flavour        string
	FlavourValid   bool
	Actions        []Action
	Sections       map[string]*Section
	Authentication bool
}

// splitList splits a field on runs of whitespace and/or commas, the
// grammar spec.md §4.D specifies for Flavour/Arch/Packages fields.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// containsFold reports whether list contains s under ASCII
// case-insensitive comparison.
func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
