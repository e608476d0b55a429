package universe

import "strings"

// Priority mirrors di_package_priority from the original implementation:
// an ordinal ranking of how necessary a package is to a working system.
// Larger values are more important; zero means unset/unknown.
type Priority int

const (
	PriorityUnknown Priority = iota
	PriorityExtra
	PriorityOptional
	PriorityStandard
	PriorityImportant
	PriorityRequired
)

// ParsePriority maps a Release/Packages "Priority" field value to a
// Priority ordinal, the Go equivalent of di_package_priority_text_from.
// Unrecognized text yields PriorityUnknown, matching the original's
// "return 0 if not found" behavior.
func ParsePriority(text string) Priority {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "required":
		return PriorityRequired
	case "important":
		return PriorityImportant
	case "standard":
		return PriorityStandard
	case "optional":
		return PriorityOptional
	case "extra":
		return PriorityExtra
	default:
		return PriorityUnknown
	}
}

func (p Priority) String() string {
	switch p {
	case PriorityRequired:
		return "required"
	case PriorityImportant:
		return "important"
	case PriorityStandard:
		return "standard"
	case PriorityOptional:
		return "optional"
	case PriorityExtra:
		return "extra"
	default:
		return "unknown"
	}
}

// Status mirrors di_package_status: where a package sits in dpkg's
// install state machine. Ordering matters - comparisons like
// "p.State < maxStatus" in installlist rely on it.
type Status int

const (
	StatusNotInstalled Status = iota
	StatusUnpacked
	StatusInstalled
)

// ParseStatus maps a dpkg status-fd line's trailing word ("unpacked",
// "installed", ...) to a Status, the Go equivalent of
// di_package_status_text_from.
func ParseStatus(text string) Status {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "installed", "install":
		return StatusInstalled
	case "unpacked", "half-configured", "half-installed":
		return StatusUnpacked
	default:
		return StatusNotInstalled
	}
}

func (s Status) String() string {
	switch s {
	case StatusInstalled:
		return "installed"
	case StatusUnpacked:
		return "unpacked"
	default:
		return "not-installed"
	}
}
