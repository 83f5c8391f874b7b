package ruleset

// ConditionalState is the situational context a conditional is evaluated
// against. The game layer implements it; two sentinel behaviors exist:
// IgnoreConditionals (structural validity checks) and an empty state where
// every query method returns its zero answer.
type ConditionalState interface {
	// IgnoreConditionals short-circuits every conditional to true
	IgnoreConditionals() bool

	IsAtWar() bool
	Happiness() float64
	IsGoldenAge() bool
	TurnNumber() int
	HasTech(name string) bool
	// EraIndex is the position of the civ's current era in the ruleset's
	// era ordering; EraIndexOf resolves a named era the same way
	EraIndex() int
	EraIndexOf(name string) (int, bool)
	// CityMatchesFilter answers city-scoped filters; false when the state
	// carries no city
	CityMatchesFilter(filter string) bool
	IsThisCity(sourceCity string) bool
	IsWLTKD() bool
	PopulationCount(filter string) int
	HasResource(name string) bool
}

// ConditionalsApply reports whether every modifier of the unique holds in
// the given state. Timed-triggerable uniques always pass: they are gated
// by their trigger, not by ambient conditionals.
func ConditionalsApply(u *Unique, state ConditionalState) bool {
	if state.IgnoreConditionals() {
		return true
	}
	if u.IsTimedTriggerable {
		return true
	}
	for i := range u.Modifiers {
		if !conditionalApplies(&u.Modifiers[i], u, state) {
			return false
		}
	}
	return true
}

func conditionalApplies(m *Modifier, owner *Unique, state ConditionalState) bool {
	switch m.Type {
	case ConditionalWar:
		return state.IsAtWar()
	case ConditionalNotWar:
		return !state.IsAtWar()
	case ConditionalHappy:
		return state.Happiness() >= 0
	case ConditionalAboveHappiness:
		return state.Happiness() > float64(m.IntParam(0))
	case ConditionalBelowHappiness:
		return state.Happiness() < float64(m.IntParam(0))
	case ConditionalGoldenAge:
		return state.IsGoldenAge()
	case ConditionalWLTKD:
		return state.IsWLTKD()
	case ConditionalBeforeTurns:
		return state.TurnNumber() < m.IntParam(0)
	case ConditionalAfterTurns:
		return state.TurnNumber() >= m.IntParam(0)
	case ConditionalTech:
		return state.HasTech(m.Param(0))
	case ConditionalNoTech:
		return !state.HasTech(m.Param(0))
	case ConditionalBeforeEra:
		idx, ok := state.EraIndexOf(m.Param(0))
		return ok && state.EraIndex() < idx
	case ConditionalStartingFromEra:
		idx, ok := state.EraIndexOf(m.Param(0))
		return ok && state.EraIndex() >= idx
	case ConditionalDuringEra:
		idx, ok := state.EraIndexOf(m.Param(0))
		return ok && state.EraIndex() == idx
	case ConditionalInThisCity:
		return state.IsThisCity(owner.SourceName)
	case ConditionalCityFilter:
		return state.CityMatchesFilter(m.Param(0))
	case ConditionalPopulationFilter:
		return state.PopulationCount(m.Param(1)) >= m.IntParam(0)
	case ConditionalWithResource:
		return state.HasResource(m.Param(0))
	}
	return false
}

// UniqueMap indexes uniques by type for the ambient queries the engines
// run every recompute.
type UniqueMap struct {
	byType map[UniqueType][]*Unique
}

// NewUniqueMap builds an index over the given uniques
func NewUniqueMap(uniques []Unique) *UniqueMap {
	m := &UniqueMap{byType: make(map[UniqueType][]*Unique)}
	for i := range uniques {
		u := &uniques[i]
		m.byType[u.Type] = append(m.byType[u.Type], u)
	}
	return m
}

// Add appends a unique to the index
func (m *UniqueMap) Add(u *Unique) {
	m.byType[u.Type] = append(m.byType[u.Type], u)
}

// AllOfType returns every unique of the type, ignoring conditionals.
// This is the pre-filter list the local cache stores.
func (m *UniqueMap) AllOfType(t UniqueType) []*Unique {
	return m.byType[t]
}

// GetMatchingUniques returns the uniques of the type whose conditionals
// hold in state. Timed-triggerable uniques are never returned ambiently.
func (m *UniqueMap) GetMatchingUniques(t UniqueType, state ConditionalState) []*Unique {
	var out []*Unique
	for _, u := range m.byType[t] {
		if u.IsTimedTriggerable {
			continue
		}
		if ConditionalsApply(u, state) {
			out = append(out, u)
		}
	}
	return out
}

// HasMatchingUnique reports whether at least one unique of the type applies
func (m *UniqueMap) HasMatchingUnique(t UniqueType, state ConditionalState) bool {
	for _, u := range m.byType[t] {
		if u.IsTimedTriggerable {
			continue
		}
		if ConditionalsApply(u, state) {
			return true
		}
	}
	return false
}
