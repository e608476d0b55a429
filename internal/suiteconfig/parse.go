package suiteconfig

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dpeckett/deb822"
)

type suitesStanza struct {
	Suite    string
	Config   string
	Keyring  string
	Requires string
}

type actionStanza struct {
	Action  string
	What    string
	Comment string
	Flags   string
	Flavour string
}

type sectionStanza struct {
	Section string
	Flavour string
}

type packagesStanza struct {
	Section  string
	Arch     string
	Packages string
}

// decodeStanzas runs a deb822 decoder over data, calling decode once
// per stanza until EOF. decode is expected to point its target struct
// at a freshly zeroed value each call.
func decodeStanzas(data []byte, decode func(dec *deb822.Decoder) error) error {
	dec := deb822.NewDecoder(bytes.NewReader(data))
	for {
		if err := decode(dec); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}

func parseCatalogue(data []byte) (Catalogue, error) {
	var catalogue Catalogue
	err := decodeStanzas(data, func(dec *deb822.Decoder) error {
		var s suitesStanza
		if err := dec.Decode(&s); err != nil {
			return err
		}
		catalogue = append(catalogue, CatalogueEntry{
			Suite:    strings.TrimSpace(s.Suite),
			Config:   strings.TrimSpace(s.Config),
			Keyring:  strings.TrimSpace(s.Keyring),
			Requires: strings.TrimSpace(s.Requires),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse suites: %w", err)
	}
	return catalogue, nil
}

func parseActions(data []byte) ([]Action, error) {
	var actions []Action
	err := decodeStanzas(data, func(dec *deb822.Decoder) error {
		var s actionStanza
		if err := dec.Decode(&s); err != nil {
			return err
		}
		actions = append(actions, Action{
			Kind:    ParseActionKind(s.Action),
			What:    strings.TrimSpace(s.What),
			Comment: strings.TrimSpace(s.Comment),
			Flags:   parseFlags(s.Flags),
			Flavour: splitList(s.Flavour),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse action: %w", err)
	}
	return actions, nil
}

func parseFlags(text string) map[Flag]bool {
	flags := make(map[Flag]bool)
	for _, token := range splitList(text) {
		switch strings.ToLower(token) {
		case "force":
			flags[FlagForce] = true
		case "only":
			flags[FlagOnly] = true
		}
	}
	return flags
}

func parseSections(data []byte) (map[string]*Section, error) {
	sections := make(map[string]*Section)
	err := decodeStanzas(data, func(dec *deb822.Decoder) error {
		var s sectionStanza
		if err := dec.Decode(&s); err != nil {
			return err
		}
		name := strings.TrimSpace(s.Section)
		sections[name] = &Section{
			Name:    name,
			Flavour: splitList(s.Flavour),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse sections: %w", err)
	}
	return sections, nil
}

// parsedPackageGroup pairs a decoded PackageGroup with the section
// name it belongs to, so loadFrom can warn on an unknown
// reference before discarding it.
type parsedPackageGroup struct {
	Section string
	Group   PackageGroup
}

func parsePackageGroups(data []byte) ([]parsedPackageGroup, error) {
	var groups []parsedPackageGroup
	err := decodeStanzas(data, func(dec *deb822.Decoder) error {
		var s packagesStanza
		if err := dec.Decode(&s); err != nil {
			return err
		}
		groups = append(groups, parsedPackageGroup{
			Section: strings.TrimSpace(s.Section),
			Group: PackageGroup{
				Arch:     splitList(s.Arch),
				Packages: splitList(s.Packages),
			},
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse packages: %w", err)
	}
	return groups, nil
}

func readFileIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}
