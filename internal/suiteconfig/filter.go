package suiteconfig

import "fmt"

// Filter applies spec.md §4.D's flavour/arch activation pass: every
// action's and section's Activate field is computed from the chosen
// flavour, every PackageGroup's Activate from the chosen arch. If no
// section mentions the chosen flavour, the flavour is unknown and
// this fails fatally — matching "If no section mentioned the chosen
// flavour, the flavour is 'unknown' and init fails fatally."
func (s *Suite) Filter(flavour string) error {
	s.Flavour = flavour
	s.FlavourValid = false

	for i := range s.Actions {
		s.Actions[i].Activate = matchesFlavour(s.Actions[i].Flavour, flavour)
	}

	for _, section := range s.Sections {
		if containsFold(section.Flavour, flavour) {
			s.FlavourValid = true
		}
		section.Activate = matchesFlavour(section.Flavour, flavour)

		for i := range section.Groups {
			section.Groups[i].Activate = matchesArch(section.Groups[i].Arch, s.Arch)
		}
	}

	if !s.FlavourValid {
		return fmt.Errorf("unknown flavour %q: no section mentions it", flavour)
	}
	return nil
}

// matchesFlavour implements the flavour filter of spec.md §8 property
// 2: active for every flavour when the list is empty, otherwise only
// when the list contains flavour (ASCII case-insensitive).
func matchesFlavour(list []string, flavour string) bool {
	if len(list) == 0 {
		return true
	}
	return containsFold(list, flavour)
}

// matchesArch implements the arch filter of spec.md §8 property 3: an
// arch-less group is always active; "any" (case-insensitive) or the
// chosen arch activates it; anything else does not.
func matchesArch(list []string, arch string) bool {
	if len(list) == 0 {
		return true
	}
	return containsFold(list, "any") || containsFold(list, arch)
}
