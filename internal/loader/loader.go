// Package loader reads a ruleset from a directory of JSON files. Every
// file is checked against an embedded JSON schema before decoding, and the
// assembled ruleset runs its full cross-reference validation before it is
// handed to the engines.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/napolitain/civkit/internal/ruleset"
)

// Ruleset file names inside a data directory
const (
	ErasFile        = "eras.json"
	TechsFile       = "techs.json"
	SpecialistsFile = "specialists.json"
	ResourcesFile   = "resources.json"
	BuildingsFile   = "buildings.json"
	UnitsFile       = "units.json"
	NationsFile     = "nations.json"
)

// LoadRuleset loads and validates a complete ruleset from dataDir.
// Nations and specialists are optional; everything else must be present.
func LoadRuleset(dataDir string) (*ruleset.Ruleset, error) {
	r := ruleset.NewRuleset()

	if err := loadFile(dataDir, ErasFile, &r.Eras); err != nil {
		return nil, err
	}

	var techs []*ruleset.Technology
	if err := loadFile(dataDir, TechsFile, &techs); err != nil {
		return nil, err
	}
	for _, t := range techs {
		r.Technologies[t.Name] = t
	}

	var resources []*ruleset.TileResource
	if err := loadFile(dataDir, ResourcesFile, &resources); err != nil {
		return nil, err
	}
	for _, res := range resources {
		r.TileResources[res.Name] = res
	}

	var buildings []*ruleset.Building
	if err := loadFile(dataDir, BuildingsFile, &buildings); err != nil {
		return nil, err
	}
	for _, b := range buildings {
		r.Buildings[b.Name] = b
	}

	var units []*ruleset.BaseUnit
	if err := loadFile(dataDir, UnitsFile, &units); err != nil {
		return nil, err
	}
	for _, u := range units {
		r.Units[u.Name] = u
	}

	var specialists []*ruleset.Specialist
	if err := loadOptionalFile(dataDir, SpecialistsFile, &specialists); err != nil {
		return nil, err
	}
	for _, s := range specialists {
		r.Specialists[s.Name] = s
	}

	var nations []*ruleset.Nation
	if err := loadOptionalFile(dataDir, NationsFile, &nations); err != nil {
		return nil, err
	}
	for _, n := range nations {
		r.Nations[n.Name] = n
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("ruleset %s: %w", dataDir, err)
	}
	return r, nil
}

// loadFile reads, schema-checks, and decodes one ruleset file
func loadFile(dataDir, name string, out any) error {
	path := filepath.Join(dataDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := validateAgainstSchema(name, data); err != nil {
		return fmt.Errorf("%s does not match its schema: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// loadOptionalFile is loadFile for files a ruleset may omit
func loadOptionalFile(dataDir, name string, out any) error {
	if _, err := os.Stat(filepath.Join(dataDir, name)); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: %s not found in %s, skipping\n", name, dataDir)
		return nil
	}
	return loadFile(dataDir, name, out)
}
