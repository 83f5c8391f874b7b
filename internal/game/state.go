package game

import (
	"fmt"
	"sort"

	"github.com/napolitain/civkit/internal/config"
	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/stats"
)

// Position addresses a tile on the map
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// MarshalText lets positions key JSON maps
func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText parses the "x,y" map-key form
func (p *Position) UnmarshalText(text []byte) error {
	_, err := fmt.Sscanf(string(text), "%d,%d", &p.X, &p.Y)
	return err
}

// Tile is one map tile a city can work
type Tile struct {
	Pos         Position    `json:"pos"`
	BaseStats   stats.Stats `json:"baseStats"`
	Terrain     string      `json:"terrain,omitempty"`
	Features    []string    `json:"features,omitempty"`
	Resource    string      `json:"resource,omitempty"`
	Improvement string      `json:"improvement,omitempty"`
	Blockaded   bool        `json:"blockaded,omitempty"`

	// YieldsWithoutPopulation marks tiles contributing even when unworked
	YieldsWithoutPopulation bool `json:"yieldsWithoutPopulation,omitempty"`
}

// Yield is the tile's per-turn contribution; improved resources add their
// resource stats on top of the base yield.
func (t *Tile) Yield(rules *ruleset.Ruleset) *stats.Stats {
	out := t.BaseStats.Clone()
	if t.Resource != "" {
		if res, ok := rules.TileResources[t.Resource]; ok && res.Stats != nil {
			if res.Improvement == "" || res.Improvement == t.Improvement {
				out.Add(res.Stats)
			}
		}
	}
	return out
}

// MatchesTerrainFilter answers terrain filters for construction placement
func (t *Tile) MatchesTerrainFilter(filter string) bool {
	if filter == "All" || filter == t.Terrain {
		return true
	}
	for _, f := range t.Features {
		if f == filter {
			return true
		}
	}
	return filter == t.Resource || filter == t.Improvement
}

// Civilization is one player, AI, or city-state. Cities are referenced by
// ID through the game arena, never embedded.
type Civilization struct {
	Name          string `json:"name"`
	NationName    string `json:"nationName"`
	IsHuman       bool   `json:"isHuman,omitempty"`
	IsCityState   bool   `json:"isCityState,omitempty"`
	CityStateType string `json:"cityStateType,omitempty"`
	Personality   string `json:"personality,omitempty"`
	Defeated      bool   `json:"defeated,omitempty"`

	CityIDs         []string        `json:"cityIDs"`
	TechsResearched map[string]bool `json:"techsResearched"`
	EraName         string          `json:"eraName,omitempty"`

	Gold            float64        `json:"gold"`
	PoliciesAdopted int            `json:"policiesAdopted,omitempty"`
	Happiness       float64        `json:"happiness"`
	GoldenAgeTurns  int            `json:"goldenAgeTurns,omitempty"`
	ResourceAmounts map[string]int `json:"resourceAmounts"`

	// SupplyDeficitPenalty is the production percentage lost to a unit
	// supply shortfall, zero or negative
	SupplyDeficitPenalty float64 `json:"supplyDeficitPenalty,omitempty"`

	// MilitaryRank is this civ's position among major civs by military
	// strength, 0 strongest; feeds tribute willingness
	MilitaryRank int `json:"militaryRank,omitempty"`
	// LocalForceAdvantage grades force near a city-state for tribute
	// willingness, in the same steps the willingness table uses
	LocalForceAdvantage int `json:"localForceAdvantage,omitempty"`

	Flags     map[string]int               `json:"flags,omitempty"`
	Diplomacy map[string]*DiplomacyManager `json:"diplomacy"`

	TemporaryUniques []TemporaryUnique `json:"temporaryUniques,omitempty"`
}

// NewCivilization builds a civ with initialized maps
func NewCivilization(name string) *Civilization {
	return &Civilization{
		Name:            name,
		NationName:      name,
		TechsResearched: make(map[string]bool),
		ResourceAmounts: make(map[string]int),
		Flags:           make(map[string]int),
		Diplomacy:       make(map[string]*DiplomacyManager),
	}
}

// HasTech reports a researched technology
func (c *Civilization) HasTech(name string) bool {
	return c.TechsResearched[name]
}

// IsGoldenAge reports an active golden age
func (c *Civilization) IsGoldenAge() bool {
	return c.GoldenAgeTurns > 0
}

// IsAtWar reports whether any diplomacy pair is in the war state
func (c *Civilization) IsAtWar() bool {
	for _, d := range c.Diplomacy {
		if d.Status == StatusWar {
			return true
		}
	}
	return false
}

// IsAtWarWith reports the war state against one civ
func (c *Civilization) IsAtWarWith(other string) bool {
	d, ok := c.Diplomacy[other]
	return ok && d.Status == StatusWar
}

// GetDiplomacyManager returns the manager for the other civ, creating a
// peaceful one on first contact
func (c *Civilization) GetDiplomacyManager(other string) *DiplomacyManager {
	if d, ok := c.Diplomacy[other]; ok {
		return d
	}
	d := NewDiplomacyManager(c.Name, other)
	c.Diplomacy[other] = d
	return d
}

// Knows reports whether the civs have met
func (c *Civilization) Knows(other string) bool {
	_, ok := c.Diplomacy[other]
	return ok
}

// SetFlag starts a countdown flag; DecrementFlags removes it at zero
func (c *Civilization) SetFlag(flag string, turns int) {
	c.Flags[flag] = turns
}

// HasFlag reports an active countdown flag
func (c *Civilization) HasFlag(flag string) bool {
	return c.Flags[flag] > 0
}

// Nation resolves this civ's nation entry in the ruleset
func (c *Civilization) Nation(rules *ruleset.Ruleset) *ruleset.Nation {
	return rules.Nations[c.NationName]
}

// GameInfo is the arena every component receives explicitly: cities and
// civs are looked up by ID and name, never through back-references.
type GameInfo struct {
	ID      string                   `json:"id"`
	Turn    int                      `json:"turn"`
	Rules   *ruleset.Ruleset         `json:"-"`
	Options *config.Options          `json:"-"`
	Cities  map[string]*City         `json:"cities"`
	Civs    map[string]*Civilization `json:"civs"`

	// TurnOrder fixes the civ processing sequence; it survives
	// serialization so a loaded game replays identically
	TurnOrder []string `json:"turnOrder"`
}

// NewGameInfo builds an empty game over a ruleset and options
func NewGameInfo(id string, rules *ruleset.Ruleset, options *config.Options) *GameInfo {
	if options == nil {
		options = config.Default()
	}
	return &GameInfo{
		ID:      id,
		Rules:   rules,
		Options: options,
		Cities:  make(map[string]*City),
		Civs:    make(map[string]*Civilization),
	}
}

// Rehydrate re-attaches the non-serialized parts after deserialization:
// rules, options, per-city stats holders, and any maps JSON omitted.
func (g *GameInfo) Rehydrate(rules *ruleset.Ruleset, options *config.Options) {
	g.Rules = rules
	g.Options = options
	if g.Options == nil {
		g.Options = config.Default()
	}
	for _, city := range g.Cities {
		city.Stats = NewCityStats(city)
		if city.WorkedTiles == nil {
			city.WorkedTiles = make(map[Position]bool)
		}
		if city.LockedTiles == nil {
			city.LockedTiles = make(map[Position]bool)
		}
		if city.Constructions == nil {
			city.Constructions = NewCityConstructions()
		}
	}
	for _, civ := range g.Civs {
		if civ.TechsResearched == nil {
			civ.TechsResearched = make(map[string]bool)
		}
		if civ.ResourceAmounts == nil {
			civ.ResourceAmounts = make(map[string]int)
		}
		if civ.Flags == nil {
			civ.Flags = make(map[string]int)
		}
		if civ.Diplomacy == nil {
			civ.Diplomacy = make(map[string]*DiplomacyManager)
		}
		// Re-derive the flags JSON omits on temporary uniques; one that
		// no longer validates is dropped
		kept := civ.TemporaryUniques[:0]
		for _, tu := range civ.TemporaryUniques {
			if err := tu.Unique.Validate(tu.Unique.SourceName); err == nil {
				kept = append(kept, tu)
			}
		}
		civ.TemporaryUniques = kept
	}
}

// AddCiv registers a civilization, preserving turn order
func (g *GameInfo) AddCiv(civ *Civilization) {
	g.Civs[civ.Name] = civ
	g.TurnOrder = append(g.TurnOrder, civ.Name)
}

// CivOrder returns civ names in registration order. A game assembled
// without AddCiv gets a sorted order so processing stays deterministic.
func (g *GameInfo) CivOrder() []string {
	if len(g.TurnOrder) != len(g.Civs) {
		g.TurnOrder = g.TurnOrder[:0]
		for name := range g.Civs {
			g.TurnOrder = append(g.TurnOrder, name)
		}
		sort.Strings(g.TurnOrder)
	}
	return g.TurnOrder
}

// AddCity registers a city into the arena and its owner's ID list
func (g *GameInfo) AddCity(city *City) {
	g.Cities[city.ID] = city
	if civ, ok := g.Civs[city.CivName]; ok {
		civ.CityIDs = append(civ.CityIDs, city.ID)
	}
}

// CitiesOf resolves a civ's city IDs against the arena
func (g *GameInfo) CitiesOf(civ *Civilization) []*City {
	out := make([]*City, 0, len(civ.CityIDs))
	for _, id := range civ.CityIDs {
		if city, ok := g.Cities[id]; ok {
			out = append(out, city)
		}
	}
	return out
}

// CapitalOf returns the civ's capital city, nil when none
func (g *GameInfo) CapitalOf(civ *Civilization) *City {
	for _, city := range g.CitiesOf(civ) {
		if city.Capital {
			return city
		}
	}
	return nil
}

// EraIndexOfCiv resolves the civ's current era position
func (g *GameInfo) EraIndexOfCiv(civ *Civilization) int {
	if civ.EraName != "" {
		if idx, ok := g.Rules.EraIndexOf(civ.EraName); ok {
			return idx
		}
	}
	best := 0
	for tech := range civ.TechsResearched {
		if idx := g.Rules.EraIndexOfTech(tech); idx > best {
			best = idx
		}
	}
	return best
}
