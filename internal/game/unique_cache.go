package game

import (
	"github.com/napolitain/civkit/internal/ruleset"
)

// LocalUniqueCache memoizes the expensive part of unique lookup for the
// duration of one computation burst. Only pre-conditional lists are
// cached; conditionals are re-evaluated on every query, so state-dependent
// answers can never go stale.
type LocalUniqueCache struct {
	enabled bool
	keyed   map[string][]*ruleset.Unique
}

// NewLocalUniqueCache builds a cache; a disabled cache recomputes every
// list and is safe to share as a null object.
func NewLocalUniqueCache(enabled bool) *LocalUniqueCache {
	return &LocalUniqueCache{enabled: enabled, keyed: make(map[string][]*ruleset.Unique)}
}

func (c *LocalUniqueCache) get(key string, compute func() []*ruleset.Unique) []*ruleset.Unique {
	if !c.enabled {
		return compute()
	}
	if cached, ok := c.keyed[key]; ok {
		return cached
	}
	list := compute()
	c.keyed[key] = list
	return list
}

// ForCiv returns the civ's pre-conditional unique list of one type: the
// nation's uniques, every building standing in any of its cities, and any
// active temporary uniques. Temporaries are never cached; they can be
// triggered or expire between bursts sharing one cache.
func (c *LocalUniqueCache) ForCiv(g *GameInfo, civ *Civilization, t ruleset.UniqueType) []*ruleset.Unique {
	list := c.get("civ-"+civ.Name+"-"+string(t), func() []*ruleset.Unique {
		var out []*ruleset.Unique
		if nation := civ.Nation(g.Rules); nation != nil {
			out = append(out, nation.UniqueMap().AllOfType(t)...)
		}
		for _, city := range g.CitiesOf(civ) {
			out = append(out, c.ForCity(g, city, t)...)
		}
		return out
	})
	// Full-slice expression: appending temporaries must not grow the
	// cached backing array
	list = list[:len(list):len(list)]
	for i := range civ.TemporaryUniques {
		tu := &civ.TemporaryUniques[i]
		if tu.Unique.Type == t {
			list = append(list, &tu.Unique)
		}
	}
	return list
}

// ForCity returns the pre-conditional unique list of one type from the
// city's built buildings.
func (c *LocalUniqueCache) ForCity(g *GameInfo, city *City, t ruleset.UniqueType) []*ruleset.Unique {
	return c.get("city-"+city.ID+"-"+string(t), func() []*ruleset.Unique {
		var out []*ruleset.Unique
		for _, name := range city.Constructions.BuiltBuildingNames() {
			building, ok := g.Rules.Buildings[name]
			if !ok {
				continue
			}
			out = append(out, building.UniqueMap().AllOfType(t)...)
		}
		return out
	})
}

// TemporaryUnique is a triggered, time-bounded effect carried on a civ
type TemporaryUnique struct {
	Unique    ruleset.Unique `json:"unique"`
	TurnsLeft int            `json:"turnsLeft"`
}

// ExpireTemporaryUniques decrements every temporary unique and drops the
// ones that ran out. Called once per turn by the turn manager.
func ExpireTemporaryUniques(civ *Civilization) {
	kept := civ.TemporaryUniques[:0]
	for _, tu := range civ.TemporaryUniques {
		tu.TurnsLeft--
		if tu.TurnsLeft > 0 {
			kept = append(kept, tu)
		}
	}
	civ.TemporaryUniques = kept
}
