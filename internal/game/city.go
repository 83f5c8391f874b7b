package game

import (
	"math"

	"github.com/google/uuid"
	"github.com/napolitain/civkit/internal/ruleset"
)

// Population tracks a city's citizens, stored food, and specialist
// allocations
type Population struct {
	Count       int            `json:"count"`
	FoodStored  float64        `json:"foodStored"`
	Specialists map[string]int `json:"specialists,omitempty"`
}

// SpecialistCount is the number of citizens working as specialists
func (p *Population) SpecialistCount() int {
	total := 0
	for _, n := range p.Specialists {
		total += n
	}
	return total
}

// FreePopulation is the number of citizens neither specialists nor
// otherwise allocated
func (p *Population) FreePopulation() int {
	free := p.Count - p.SpecialistCount()
	if free < 0 {
		return 0
	}
	return free
}

// FoodToGrow is the stored-food threshold for the next citizen
func (p *Population) FoodToGrow() float64 {
	// 15 + 6(n-1) + (n-1)^1.8, the standard growth curve
	n := float64(p.Count - 1)
	if n < 0 {
		n = 0
	}
	return 15 + 6*n + math.Pow(n, 1.8)
}

// City is one settlement in the arena. It never holds a pointer to its
// civilization; owners are resolved by name through GameInfo.
type City struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CivName     string `json:"civName"`
	FoundingCiv string `json:"foundingCiv,omitempty"`

	Capital                bool `json:"capital,omitempty"`
	Puppet                 bool `json:"puppet,omitempty"`
	InResistance           bool `json:"inResistance,omitempty"`
	WeLoveTheKingDay       bool `json:"weLoveTheKingDay,omitempty"`
	ConnectedToCapital     bool `json:"connectedToCapital,omitempty"`
	RailConnectedToCapital bool `json:"railConnectedToCapital,omitempty"`
	Coastal                bool `json:"coastal,omitempty"`

	CenterPos Position           `json:"centerPos"`
	Tiles     map[Position]*Tile `json:"tiles"`

	WorkedTiles map[Position]bool `json:"workedTiles"`
	LockedTiles map[Position]bool `json:"lockedTiles,omitempty"`

	// ShouldReassignPopulation is raised by the reconcile pass when a
	// worked tile had to be unassigned
	ShouldReassignPopulation bool `json:"shouldReassignPopulation,omitempty"`

	Population         Population     `json:"population"`
	ResourceStockpiles map[string]int `json:"resourceStockpiles,omitempty"`
	ReligionFollowers  int            `json:"religionFollowers,omitempty"`

	Constructions *CityConstructions `json:"constructions"`
	Stats         *CityStats         `json:"-"`
}

// NewCity founds a city for a civ at a center position
func NewCity(name, civName string, center Position) *City {
	city := &City{
		ID:                 uuid.NewString(),
		Name:               name,
		CivName:            civName,
		FoundingCiv:        civName,
		CenterPos:          center,
		Tiles:              make(map[Position]*Tile),
		WorkedTiles:        make(map[Position]bool),
		LockedTiles:        make(map[Position]bool),
		Population:         Population{Count: 1, Specialists: make(map[string]int)},
		ResourceStockpiles: make(map[string]int),
		Constructions:      NewCityConstructions(),
	}
	city.Stats = NewCityStats(city)
	city.Tiles[center] = &Tile{Pos: center}
	return city
}

// CenterTile returns the city-center tile
func (c *City) CenterTile() *Tile {
	return c.Tiles[c.CenterPos]
}

// IsWorked reports whether the position is currently worked
func (c *City) IsWorked(pos Position) bool {
	return c.WorkedTiles[pos]
}

// WorkTile assigns a citizen to the tile
func (c *City) WorkTile(pos Position, lock bool) {
	c.WorkedTiles[pos] = true
	if lock {
		c.LockedTiles[pos] = true
	}
}

// HasExtraAnnexUnhappiness reports whether the city suffers the annexed
// foreign-city penalty: founded by another civ, not puppeted, and no
// remove-annex-unhappiness effect present.
func (c *City) HasExtraAnnexUnhappiness(g *GameInfo) bool {
	if c.FoundingCiv == "" || c.FoundingCiv == c.CivName || c.Puppet {
		return false
	}
	state := StateForCity(g, c)
	return !c.MatchingUniquesExist(g, ruleset.UniqueRemoveAnnexUnhappiness, state)
}

// MatchesFilter answers city-scoped filters for conditionals and
// percentage bonuses
func (c *City) MatchesFilter(g *GameInfo, filter string) bool {
	switch filter {
	case "", "in all cities", "All":
		return true
	case "in your cities", "Your":
		return true
	case "in capital":
		return c.Capital
	case "in non-capital cities":
		return !c.Capital
	case "in puppeted cities":
		return c.Puppet
	case "in annexed cities":
		return c.FoundingCiv != "" && c.FoundingCiv != c.CivName && !c.Puppet
	case "in coastal cities":
		return c.Coastal
	case "in cities connected to the capital":
		return c.ConnectedToCapital
	case "in cities with a majority religion":
		return c.ReligionFollowers > 0
	}
	return filter == c.Name
}

// ReconcileWorkedTiles is the mutating phase before a stats recompute:
// blockaded worked tiles are unassigned here so the compute pass stays
// pure.
func (c *City) ReconcileWorkedTiles() {
	for pos := range c.WorkedTiles {
		tile, ok := c.Tiles[pos]
		if !ok || tile.Blockaded {
			delete(c.WorkedTiles, pos)
			delete(c.LockedTiles, pos)
			c.ShouldReassignPopulation = true
		}
	}
}

// CivMatchingUniques collects non-local uniques visible civ-wide: the
// nation's own plus every city building's, conditional-filtered.
func CivMatchingUniques(g *GameInfo, civ *Civilization, t ruleset.UniqueType, state *StateForConditionals, cache *LocalUniqueCache) []*ruleset.Unique {
	var out []*ruleset.Unique
	for _, u := range cache.ForCiv(g, civ, t) {
		if u.IsLocalEffect {
			continue
		}
		if ruleset.ConditionalsApply(u, state) {
			out = append(out, u)
		}
	}
	return out
}

// MatchingUniques collects the uniques affecting this city: the owning
// civ's non-local uniques plus this city's local building effects.
func (c *City) MatchingUniques(g *GameInfo, t ruleset.UniqueType, state *StateForConditionals, cache *LocalUniqueCache) []*ruleset.Unique {
	civ := g.Civs[c.CivName]
	out := CivMatchingUniques(g, civ, t, state, cache)
	for _, u := range cache.ForCity(g, c, t) {
		if !u.IsLocalEffect {
			continue
		}
		if ruleset.ConditionalsApply(u, state) {
			out = append(out, u)
		}
	}
	return out
}

// MatchingUniquesExist is MatchingUniques with an early exit
func (c *City) MatchingUniquesExist(g *GameInfo, t ruleset.UniqueType, state *StateForConditionals) bool {
	cache := NewLocalUniqueCache(false)
	return len(c.MatchingUniques(g, t, state, cache)) > 0
}
