// Package config loads game options from a YAML file. Options cover the
// difficulty-derived modifiers the stats engine applies and the surfaces
// around the core (server address, autosave cadence).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options is the tuning configuration for one game
type Options struct {
	// Difficulty-derived modifiers
	UnhappinessModifier   float64 `yaml:"unhappinessModifier"`
	AIUnhappinessModifier float64 `yaml:"aiUnhappinessModifier"`
	AIMaintenanceModifier float64 `yaml:"aiMaintenanceModifier"`
	BaseHappiness         float64 `yaml:"baseHappiness"`

	// GoldToSciencePercent moves this share of total gold into science
	// when positive; zero disables the conversion
	GoldToSciencePercent float64 `yaml:"goldToSciencePercent"`

	// RailroadTech gates the rail connection production bonus; empty
	// means no gating tech
	RailroadTech string `yaml:"railroadTech"`

	// Server and persistence surfaces
	ListenAddr        string `yaml:"listenAddr"`
	SavePath          string `yaml:"savePath"`
	AutosaveEveryTurn int    `yaml:"autosaveEveryTurn"`
}

// Default returns the standard-difficulty options
func Default() *Options {
	return &Options{
		UnhappinessModifier:   1.0,
		AIUnhappinessModifier: 1.0,
		AIMaintenanceModifier: 1.0,
		BaseHappiness:         9,
		GoldToSciencePercent:  0,
		RailroadTech:          "Railroads",
		ListenAddr:            ":8080",
		SavePath:              "civkit.db",
		AutosaveEveryTurn:     1,
	}
}

// Load reads options from a YAML file, filling omitted fields with defaults
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}
	opts := Default()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse options file: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate rejects option values outside their meaningful ranges
func (o *Options) Validate() error {
	if o.UnhappinessModifier < 0 {
		return fmt.Errorf("unhappinessModifier must be non-negative, got %v", o.UnhappinessModifier)
	}
	if o.AIUnhappinessModifier < 0 {
		return fmt.Errorf("aiUnhappinessModifier must be non-negative, got %v", o.AIUnhappinessModifier)
	}
	if o.AIMaintenanceModifier < 0 {
		return fmt.Errorf("aiMaintenanceModifier must be non-negative, got %v", o.AIMaintenanceModifier)
	}
	if o.GoldToSciencePercent < 0 || o.GoldToSciencePercent > 100 {
		return fmt.Errorf("goldToSciencePercent must be within [0,100], got %v", o.GoldToSciencePercent)
	}
	if o.AutosaveEveryTurn < 0 {
		return fmt.Errorf("autosaveEveryTurn must be non-negative, got %d", o.AutosaveEveryTurn)
	}
	return nil
}
