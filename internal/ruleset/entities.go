package ruleset

import (
	"fmt"

	"github.com/napolitain/civkit/internal/stats"
)

// Building is one constructable city improvement or wonder
type Building struct {
	Name            string       `json:"name"`
	Cost            int          `json:"cost"`
	Maintenance     int          `json:"maintenance,omitempty"`
	Stats           *stats.Stats `json:"stats,omitempty"`
	PercentStats    *stats.Stats `json:"percentStats,omitempty"`
	RequiredTechs   []string     `json:"requiredTechs,omitempty"`
	RequiredBuilding string      `json:"requiredBuilding,omitempty"`
	UniqueTo        string       `json:"uniqueTo,omitempty"`
	Replaces        string       `json:"replaces,omitempty"`
	IsWonder        bool         `json:"isWonder,omitempty"`
	IsNationalWonder bool        `json:"isNationalWonder,omitempty"`
	RequiredResource string      `json:"requiredResource,omitempty"`
	RequiredNearbyImprovedResources []string `json:"requiredNearbyImprovedResources,omitempty"`
	SpecialistSlots map[string]int `json:"specialistSlots,omitempty"`
	Uniques         []Unique     `json:"uniques,omitempty"`

	uniqueMap   *UniqueMap
	filterCache map[string]bool
}

// UniqueMap returns the type-indexed view of this building's uniques
func (b *Building) UniqueMap() *UniqueMap {
	if b.uniqueMap == nil {
		b.uniqueMap = NewUniqueMap(b.Uniques)
	}
	return b.uniqueMap
}

// IsAnyWonder reports whether the building is a world or national wonder
func (b *Building) IsAnyWonder() bool {
	return b.IsWonder || b.IsNationalWonder
}

// MatchesFilter answers building filters. Results are memoized per filter
// string; only state-invariant filters may be asked here, state-dependent
// checks belong to the conditional dispatch.
func (b *Building) MatchesFilter(filter string) bool {
	if b.filterCache == nil {
		b.filterCache = make(map[string]bool)
	}
	if cached, ok := b.filterCache[filter]; ok {
		return cached
	}
	result := b.matchesFilterUncached(filter)
	b.filterCache[filter] = result
	return result
}

func (b *Building) matchesFilterUncached(filter string) bool {
	switch filter {
	case "All", "all":
		return true
	case "Buildings":
		return !b.IsAnyWonder()
	case "Wonders":
		return b.IsAnyWonder()
	case "World Wonder":
		return b.IsWonder
	case "National Wonder":
		return b.IsNationalWonder
	}
	if filter == b.Name || filter == b.Replaces {
		return true
	}
	// A stat name matches buildings producing that stat
	if stat, err := stats.ParseStat(filter); err == nil {
		return b.Stats != nil && b.Stats.Get(stat) > 0
	}
	return false
}

// BaseUnit is one trainable unit
type BaseUnit struct {
	Name         string   `json:"name"`
	UnitType     string   `json:"unitType"`
	Cost         int      `json:"cost"`
	RequiredTech string   `json:"requiredTech,omitempty"`
	IsCivilian   bool     `json:"isCivilian,omitempty"`
	Uniques      []Unique `json:"uniques,omitempty"`

	uniqueMap   *UniqueMap
	filterCache map[string]bool
}

// UniqueMap returns the type-indexed view of this unit's uniques
func (u *BaseUnit) UniqueMap() *UniqueMap {
	if u.uniqueMap == nil {
		u.uniqueMap = NewUniqueMap(u.Uniques)
	}
	return u.uniqueMap
}

// MatchesFilter answers unit filters, memoized like Building.MatchesFilter
func (u *BaseUnit) MatchesFilter(filter string) bool {
	if u.filterCache == nil {
		u.filterCache = make(map[string]bool)
	}
	if cached, ok := u.filterCache[filter]; ok {
		return cached
	}
	result := u.matchesFilterUncached(filter)
	u.filterCache[filter] = result
	return result
}

func (u *BaseUnit) matchesFilterUncached(filter string) bool {
	switch filter {
	case "All", "all", "Units":
		return true
	case "Military":
		return !u.IsCivilian
	case "Civilian":
		return u.IsCivilian
	}
	return filter == u.Name || filter == u.UnitType
}

// Technology is one researchable tech
type Technology struct {
	Name          string   `json:"name"`
	Era           string   `json:"era"`
	Cost          int      `json:"cost,omitempty"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

// Era is one named game era; order in the ruleset file is the game order
type Era struct {
	Name string `json:"name"`
}

// ResourceKind groups tile resources by their role
type ResourceKind string

const (
	ResourceBonus     ResourceKind = "Bonus"
	ResourceLuxury    ResourceKind = "Luxury"
	ResourceStrategic ResourceKind = "Strategic"
)

// TileResource is one map resource
type TileResource struct {
	Name        string       `json:"name"`
	Kind        ResourceKind `json:"kind"`
	Improvement string       `json:"improvement,omitempty"`
	Stats       *stats.Stats `json:"stats,omitempty"`
}

// Specialist is one assignable citizen profession
type Specialist struct {
	Name  string       `json:"name"`
	Stats *stats.Stats `json:"stats"`
}

// Nation is one playable or city-state nation
type Nation struct {
	Name          string   `json:"name"`
	IsCityState   bool     `json:"isCityState,omitempty"`
	CityStateType string   `json:"cityStateType,omitempty"`
	Uniques       []Unique `json:"uniques,omitempty"`

	uniqueMap *UniqueMap
}

// UniqueMap returns the type-indexed view of this nation's uniques
func (n *Nation) UniqueMap() *UniqueMap {
	if n.uniqueMap == nil {
		n.uniqueMap = NewUniqueMap(n.Uniques)
	}
	return n.uniqueMap
}

// Ruleset is the immutable, validated rule configuration the engines run
// against. Loaded once; engines assume every cross-reference resolves.
type Ruleset struct {
	Buildings     map[string]*Building
	Units         map[string]*BaseUnit
	Technologies  map[string]*Technology
	Eras          []Era
	TileResources map[string]*TileResource
	Specialists   map[string]*Specialist
	Nations       map[string]*Nation

	eraIndex map[string]int
}

// NewRuleset builds an empty ruleset container
func NewRuleset() *Ruleset {
	return &Ruleset{
		Buildings:     make(map[string]*Building),
		Units:         make(map[string]*BaseUnit),
		Technologies:  make(map[string]*Technology),
		TileResources: make(map[string]*TileResource),
		Specialists:   make(map[string]*Specialist),
		Nations:       make(map[string]*Nation),
	}
}

// EraIndexOf resolves a named era to its position in game order
func (r *Ruleset) EraIndexOf(name string) (int, bool) {
	if r.eraIndex == nil {
		r.eraIndex = make(map[string]int, len(r.Eras))
		for i, e := range r.Eras {
			r.eraIndex[e.Name] = i
		}
	}
	idx, ok := r.eraIndex[name]
	return idx, ok
}

// EraIndexOfTech resolves a technology's era to its position, 0 if unknown
func (r *Ruleset) EraIndexOfTech(techName string) int {
	tech, ok := r.Technologies[techName]
	if !ok {
		return 0
	}
	idx, _ := r.EraIndexOf(tech.Era)
	return idx
}

// Validate checks every cross-reference and unique signature. Run once
// after loading; engines panic rather than defend against a ruleset that
// skipped this pass.
func (r *Ruleset) Validate() error {
	for name, b := range r.Buildings {
		for i := range b.Uniques {
			if err := b.Uniques[i].Validate(name); err != nil {
				return err
			}
		}
		for _, tech := range b.RequiredTechs {
			if _, ok := r.Technologies[tech]; !ok {
				return fmt.Errorf("building %q requires unknown tech %q", name, tech)
			}
		}
		if b.RequiredBuilding != "" {
			if _, ok := r.Buildings[b.RequiredBuilding]; !ok {
				return fmt.Errorf("building %q requires unknown building %q", name, b.RequiredBuilding)
			}
		}
		if b.RequiredResource != "" {
			if _, ok := r.TileResources[b.RequiredResource]; !ok {
				return fmt.Errorf("building %q requires unknown resource %q", name, b.RequiredResource)
			}
		}
		for _, res := range b.RequiredNearbyImprovedResources {
			if _, ok := r.TileResources[res]; !ok {
				return fmt.Errorf("building %q requires unknown nearby resource %q", name, res)
			}
		}
		for specialist := range b.SpecialistSlots {
			if _, ok := r.Specialists[specialist]; !ok {
				return fmt.Errorf("building %q offers unknown specialist slot %q", name, specialist)
			}
		}
	}
	for name, u := range r.Units {
		for i := range u.Uniques {
			if err := u.Uniques[i].Validate(name); err != nil {
				return err
			}
		}
		if u.RequiredTech != "" {
			if _, ok := r.Technologies[u.RequiredTech]; !ok {
				return fmt.Errorf("unit %q requires unknown tech %q", name, u.RequiredTech)
			}
		}
	}
	for name, n := range r.Nations {
		for i := range n.Uniques {
			if err := n.Uniques[i].Validate(name); err != nil {
				return err
			}
		}
	}
	for name, t := range r.Technologies {
		if t.Era != "" {
			if _, ok := r.EraIndexOf(t.Era); !ok {
				return fmt.Errorf("tech %q references unknown era %q", name, t.Era)
			}
		}
		for _, prereq := range t.Prerequisites {
			if _, ok := r.Technologies[prereq]; !ok {
				return fmt.Errorf("tech %q has unknown prerequisite %q", name, prereq)
			}
		}
	}
	return nil
}
