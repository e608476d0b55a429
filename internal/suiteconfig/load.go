package suiteconfig

import (
	"fmt"
	"path/filepath"

	"github.com/godebootstrap/godebootstrap/internal/logmsg"
)

// LoadPrimary implements spec.md §4.D's primary init phase: read the
// top-level "suites" catalogue; if suiteName matches an entry with a
// Config subdirectory, load from there; otherwise try loading
// directly from configDir/suiteName.
func LoadPrimary(configDir, suiteName, arch string, sink *logmsg.Sink) (*Suite, error) {
	catalogue, err := loadCatalogue(configDir)
	if err != nil {
		return nil, err
	}

	entry := catalogue.Find(suiteName)
	if err := checkCompat(entry, sink); err != nil {
		return nil, err
	}

	dir := configDir
	if entry != nil && entry.Config != "" {
		dir = filepath.Join(configDir, entry.Config)
	} else {
		dir = filepath.Join(configDir, suiteName)
	}

	return loadFrom(dir, suiteName, arch, sink)
}

// LoadSecondary implements spec.md §4.D's secondary init phase: called
// once the Release file has revealed the suite's real codename.
// Idempotent if the suite is already configured under that name;
// otherwise re-loads from the catalogue entry matching codename, if
// one exists.
func LoadSecondary(suite *Suite, configDir, codename string, sink *logmsg.Sink) (*Suite, error) {
	if suite.Name == codename {
		return suite, nil
	}

	catalogue, err := loadCatalogue(configDir)
	if err != nil {
		return nil, err
	}

	entry := catalogue.Find(codename)
	if entry == nil {
		return suite, nil
	}
	if err := checkCompat(entry, sink); err != nil {
		return nil, err
	}

	dir := configDir
	if entry.Config != "" {
		dir = filepath.Join(configDir, entry.Config)
	}

	return loadFrom(dir, codename, suite.Arch, sink)
}

// LoadFrom loads a suite's action/sections/packages stanzas directly
// from dir, bypassing the suites catalogue lookup LoadPrimary does.
// It's what `--suite-config=NAME` (spec.md §6) needs: the user names
// the config subdirectory explicitly instead of letting the catalogue
// derive it from the suite name.
func LoadFrom(dir, suiteName, arch string, sink *logmsg.Sink) (*Suite, error) {
	return loadFrom(dir, suiteName, arch, sink)
}

func loadCatalogue(configDir string) (Catalogue, error) {
	data, err := readFileIfExists(filepath.Join(configDir, "suites"))
	if err != nil {
		return nil, fmt.Errorf("read suites catalogue: %w", err)
	}
	if data == nil {
		return nil, nil
	}
	return parseCatalogue(data)
}

func loadFrom(dir, suiteName, arch string, sink *logmsg.Sink) (*Suite, error) {
	actionData, err := readFileIfExists(filepath.Join(dir, "action"))
	if err != nil {
		return nil, fmt.Errorf("read action config: %w", err)
	}
	actions, err := parseActions(actionData)
	if err != nil {
		return nil, err
	}

	sectionData, err := readFileIfExists(filepath.Join(dir, "sections"))
	if err != nil {
		return nil, fmt.Errorf("read sections config: %w", err)
	}
	sections, err := parseSections(sectionData)
	if err != nil {
		return nil, err
	}

	packagesData, err := readFileIfExists(filepath.Join(dir, "packages"))
	if err != nil {
		return nil, fmt.Errorf("read packages config: %w", err)
	}
	groups, err := parsePackageGroups(packagesData)
	if err != nil {
		return nil, err
	}

	for _, pg := range groups {
		section, ok := sections[pg.Section]
		if !ok {
			sink.Warning("packages stanza references unknown section", "section", pg.Section)
			continue
		}
		section.Groups = append(section.Groups, pg.Group)
	}

	return &Suite{
		Name:     suiteName,
		Arch:     arch,
		Actions:  actions,
		Sections: sections,
	}, nil
}
