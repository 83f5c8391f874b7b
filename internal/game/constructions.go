package game

import (
	"encoding/json"
	"math"

	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/stats"
)

// Perpetual construction names: a city with nothing to build converts
// production into a civ-wide stat, or idles.
const (
	PerpetualScience = "Science conversion"
	PerpetualGold    = "Gold conversion"
	PerpetualCulture = "Culture conversion"
	PerpetualFaith   = "Faith conversion"
	PerpetualNothing = "Nothing"
)

// PerpetualConversionRate is the production share a perpetual conversion
// yields before bonuses
const PerpetualConversionRate = 0.25

// PerpetualStatConversion resolves a perpetual construction name to its
// target stat; ok is false for real constructions and for "Nothing".
func PerpetualStatConversion(name string) (stats.Stat, bool) {
	switch name {
	case PerpetualScience:
		return stats.Science, true
	case PerpetualGold:
		return stats.Gold, true
	case PerpetualCulture:
		return stats.Culture, true
	case PerpetualFaith:
		return stats.Faith, true
	}
	return "", false
}

// IsPerpetualConstruction reports a never-finishing construction
func IsPerpetualConstruction(name string) bool {
	if name == PerpetualNothing {
		return true
	}
	_, ok := PerpetualStatConversion(name)
	return ok
}

// CityConstructions owns a city's built buildings, its build queue, and
// per-item work progress.
type CityConstructions struct {
	builtOrder []string
	built      map[string]bool

	Queue    []string       `json:"queue,omitempty"`
	WorkDone map[string]int `json:"workDone,omitempty"`
}

type cityConstructionsJSON struct {
	Built    []string       `json:"built,omitempty"`
	Queue    []string       `json:"queue,omitempty"`
	WorkDone map[string]int `json:"workDone,omitempty"`
}

// MarshalJSON includes the built-building order alongside the queue
func (cc *CityConstructions) MarshalJSON() ([]byte, error) {
	return json.Marshal(cityConstructionsJSON{
		Built:    cc.builtOrder,
		Queue:    cc.Queue,
		WorkDone: cc.WorkDone,
	})
}

// UnmarshalJSON restores the built set from the serialized order
func (cc *CityConstructions) UnmarshalJSON(data []byte) error {
	var raw cityConstructionsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cc.builtOrder = nil
	cc.built = make(map[string]bool, len(raw.Built))
	for _, name := range raw.Built {
		cc.built[name] = true
		cc.builtOrder = append(cc.builtOrder, name)
	}
	cc.Queue = raw.Queue
	cc.WorkDone = raw.WorkDone
	if cc.WorkDone == nil {
		cc.WorkDone = make(map[string]int)
	}
	return nil
}

// NewCityConstructions builds an empty construction ledger
func NewCityConstructions() *CityConstructions {
	return &CityConstructions{
		built:    make(map[string]bool),
		WorkDone: make(map[string]int),
	}
}

// IsBuilt reports a standing building
func (cc *CityConstructions) IsBuilt(name string) bool {
	return cc.built[name]
}

// BuiltBuildingNames returns standing buildings in completion order
func (cc *CityConstructions) BuiltBuildingNames() []string {
	return cc.builtOrder
}

// AddBuilding marks a building complete
func (cc *CityConstructions) AddBuilding(name string) {
	if cc.built[name] {
		return
	}
	cc.built[name] = true
	cc.builtOrder = append(cc.builtOrder, name)
	delete(cc.WorkDone, name)
}

// RemoveBuilding tears a building down (razing, selling)
func (cc *CityConstructions) RemoveBuilding(name string) {
	if !cc.built[name] {
		return
	}
	delete(cc.built, name)
	for i, n := range cc.builtOrder {
		if n == name {
			cc.builtOrder = append(cc.builtOrder[:i], cc.builtOrder[i+1:]...)
			break
		}
	}
}

// CurrentConstruction is the head of the queue, or "Nothing"
func (cc *CityConstructions) CurrentConstruction() string {
	if len(cc.Queue) == 0 {
		return PerpetualNothing
	}
	return cc.Queue[0]
}

// EnqueueConstruction appends to the build queue
func (cc *CityConstructions) EnqueueConstruction(name string) {
	cc.Queue = append(cc.Queue, name)
}

// RemoveFromQueue drops the i-th queue entry
func (cc *CityConstructions) RemoveFromQueue(i int) {
	if i < 0 || i >= len(cc.Queue) {
		return
	}
	cc.Queue = append(cc.Queue[:i], cc.Queue[i+1:]...)
}

// GetWorkDone reports accumulated production points toward an item
func (cc *CityConstructions) GetWorkDone(name string) int {
	return cc.WorkDone[name]
}

// AddProduction applies production points to the current construction and
// reports whether the item completed this call. Perpetual constructions
// never complete.
func (cc *CityConstructions) AddProduction(g *GameInfo, points int) (completed string) {
	current := cc.CurrentConstruction()
	if IsPerpetualConstruction(current) {
		return ""
	}
	cc.WorkDone[current] += points
	cost := constructionCost(g, current)
	if cc.WorkDone[current] < cost {
		return ""
	}
	cc.RemoveFromQueue(0)
	delete(cc.WorkDone, current)
	if _, isBuilding := g.Rules.Buildings[current]; isBuilding {
		cc.AddBuilding(current)
	}
	return current
}

func constructionCost(g *GameInfo, name string) int {
	if b, ok := g.Rules.Buildings[name]; ok {
		return b.Cost
	}
	if u, ok := g.Rules.Units[name]; ok {
		return u.Cost
	}
	return math.MaxInt32
}

// BuiltBuildingStats sums base stats of standing buildings into the tree
// under ["Buildings", name]. Stat uniques on buildings flow in through
// the unique battery, not here.
func (cc *CityConstructions) BuiltBuildingStats(g *GameInfo, tree *stats.StatTreeNode) {
	for _, name := range cc.builtOrder {
		building, ok := g.Rules.Buildings[name]
		if !ok {
			continue
		}
		if building.Stats != nil {
			tree.AddStats(building.Stats, "Buildings", name)
		}
	}
}

// BuiltBuildingMaintenance sums the gold upkeep of standing buildings
func (cc *CityConstructions) BuiltBuildingMaintenance(g *GameInfo) float64 {
	total := 0.0
	for _, name := range cc.builtOrder {
		if building, ok := g.Rules.Buildings[name]; ok {
			total += float64(building.Maintenance)
		}
	}
	return total
}

// CurrentConstructionConvertsFood reports a settler-like current
// construction that eats the city's growth
func (cc *CityConstructions) CurrentConstructionConvertsFood(g *GameInfo, state *StateForConditionals) bool {
	current := cc.CurrentConstruction()
	if IsPerpetualConstruction(current) {
		return false
	}
	unit, ok := g.Rules.Units[current]
	if !ok {
		return false
	}
	return unit.UniqueMap().HasMatchingUnique(ruleset.UniqueConvertFoodToProduction, state)
}
