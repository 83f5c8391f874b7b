package game

import (
	"github.com/napolitain/civkit/internal/ruleset"
)

// StateForConditionals is the context bundle every conditional is
// evaluated against. It implements ruleset.ConditionalState.
type StateForConditionals struct {
	Game *GameInfo
	Civ  *Civilization
	City *City
	Tile *Tile

	ignoreAll bool
}

// StateForCity bundles a city and its owning civ
func StateForCity(g *GameInfo, city *City) *StateForConditionals {
	return &StateForConditionals{Game: g, Civ: g.Civs[city.CivName], City: city}
}

// StateForCiv bundles a civ without a city
func StateForCiv(g *GameInfo, civ *Civilization) *StateForConditionals {
	return &StateForConditionals{Game: g, Civ: civ}
}

// EmptyState carries no context; every situational query answers false
func EmptyState() *StateForConditionals {
	return &StateForConditionals{}
}

// IgnoreConditionalsState is the sentinel for structural validity checks
func IgnoreConditionalsState() *StateForConditionals {
	return &StateForConditionals{ignoreAll: true}
}

func (s *StateForConditionals) IgnoreConditionals() bool { return s.ignoreAll }

func (s *StateForConditionals) IsAtWar() bool {
	return s.Civ != nil && s.Civ.IsAtWar()
}

func (s *StateForConditionals) Happiness() float64 {
	if s.Civ == nil {
		return 0
	}
	return s.Civ.Happiness
}

func (s *StateForConditionals) IsGoldenAge() bool {
	return s.Civ != nil && s.Civ.IsGoldenAge()
}

func (s *StateForConditionals) TurnNumber() int {
	if s.Game == nil {
		return 0
	}
	return s.Game.Turn
}

func (s *StateForConditionals) HasTech(name string) bool {
	return s.Civ != nil && s.Civ.HasTech(name)
}

func (s *StateForConditionals) EraIndex() int {
	if s.Game == nil || s.Civ == nil {
		return 0
	}
	return s.Game.EraIndexOfCiv(s.Civ)
}

func (s *StateForConditionals) EraIndexOf(name string) (int, bool) {
	if s.Game == nil {
		return 0, false
	}
	return s.Game.Rules.EraIndexOf(name)
}

func (s *StateForConditionals) CityMatchesFilter(filter string) bool {
	return s.City != nil && s.City.MatchesFilter(s.Game, filter)
}

// IsThisCity holds when the unique's source building stands in the state's
// own city
func (s *StateForConditionals) IsThisCity(sourceName string) bool {
	return s.City != nil && s.City.Constructions.IsBuilt(sourceName)
}

func (s *StateForConditionals) IsWLTKD() bool {
	return s.City != nil && s.City.WeLoveTheKingDay
}

func (s *StateForConditionals) PopulationCount(filter string) int {
	if s.City == nil {
		return 0
	}
	switch filter {
	case "Specialists":
		return s.City.Population.SpecialistCount()
	case "Followers of the majority religion":
		return s.City.ReligionFollowers
	}
	return s.City.Population.Count
}

func (s *StateForConditionals) HasResource(name string) bool {
	if s.City != nil && s.City.ResourceStockpiles[name] > 0 {
		return true
	}
	return s.Civ != nil && s.Civ.ResourceAmounts[name] > 0
}

var _ ruleset.ConditionalState = (*StateForConditionals)(nil)
