package game

import "math"

// Tribute mechanics: a major civ can try to extract gold or a worker from
// a city-state; willingness is a summed modifier table and anything above
// zero means the city-state gives in.

const (
	tributeBaseUnwillingness   = -110.0
	tributeInfluencePenalty    = 15.0
	tributeBulliedFlagTurns    = 20
	tributeMemoryFlagTurns     = 75
	tributeGoldBase            = 50
	tributeGoldPerEra          = 5
)

// TributeWillingness sums the willingness table; positive means the
// city-state would yield to the demand.
func TributeWillingness(g *GameInfo, cs *Civilization, demander *Civilization, demandingWorker bool) float64 {
	if !cs.IsCityState || demander.IsCityState {
		return -999
	}
	if len(cs.CityIDs) == 0 {
		return -999
	}

	willingness := tributeBaseUnwillingness

	if cs.Personality == "Hostile" {
		willingness -= 10
	}
	if ally := g.AllyOfCityState(cs); ally != "" && ally != demander.Name {
		willingness -= 10
	}
	for _, protector := range ProtectorsOf(g, cs.Name) {
		if protector.Name != demander.Name {
			willingness -= 20
			break
		}
	}

	if demandingWorker {
		willingness -= 30
		if smallCityState(g, cs) {
			willingness -= 300
		}
	}

	switch turns := cs.Flags[FlagRecentlyBullied]; {
	case turns > 10:
		willingness -= 300
	case turns > 0:
		willingness -= 40
	}

	if d, ok := cs.Diplomacy[demander.Name]; ok && d.GetInfluence() < -30 {
		willingness -= 300
	}

	// Global military weight: the strongest major civ gets the full
	// bonus, each rank down loses a fifth of it
	globalForce := 100.0 - 20.0*float64(demander.MilitaryRank)
	if globalForce > 0 {
		willingness += globalForce
	}

	// Local force advantage near the city-state, in graded steps
	localForce := 20.0 * float64(demander.LocalForceAdvantage)
	if localForce > 80 {
		localForce = 80
	}
	if localForce > 0 {
		willingness += localForce
	}

	return willingness
}

func smallCityState(g *GameInfo, cs *Civilization) bool {
	total := 0
	for _, city := range g.CitiesOf(cs) {
		total += city.Population.Count
	}
	return total < 4
}

// GoldGainedByTribute scales with game progress and lands on a multiple
// of five
func GoldGainedByTribute(g *GameInfo, demander *Civilization) int {
	gold := tributeGoldBase + tributeGoldPerEra*g.EraIndexOfCiv(demander)
	return int(math.Floor(float64(gold)/5) * 5)
}

// TributeGold executes a successful gold demand: the demander pockets the
// gold, loses influence, the city-state remembers being bullied, and
// every protector takes offense.
func TributeGold(g *GameInfo, cs *Civilization, demander *Civilization) int {
	if TributeWillingness(g, cs, demander, false) <= 0 {
		return 0
	}
	gold := GoldGainedByTribute(g, demander)
	demander.Gold += float64(gold)
	cs.GetDiplomacyManager(demander.Name).AddInfluence(-tributeInfluencePenalty)
	cityStateBullied(g, cs, demander)
	return gold
}

// TributeWorker executes a successful worker demand; the caller places the
// unit. Returns false when the city-state refuses.
func TributeWorker(g *GameInfo, cs *Civilization, demander *Civilization) bool {
	if TributeWillingness(g, cs, demander, true) <= 0 {
		return false
	}
	cs.GetDiplomacyManager(demander.Name).AddInfluence(-50)
	cityStateBullied(g, cs, demander)
	return true
}

// cityStateBullied records the offense on the city-state and on every
// watching protector. A protector with a fresh memory of a prior offense
// applies the reduced repeat penalty.
func cityStateBullied(g *GameInfo, cs *Civilization, bully *Civilization) {
	cs.SetFlag(FlagRecentlyBullied, tributeBulliedFlagTurns)

	for _, protector := range ProtectorsOf(g, cs.Name) {
		if protector.Name == bully.Name {
			continue
		}
		if protector.IsAtWarWith(bully.Name) || !protector.Knows(bully.Name) {
			continue
		}
		d := protector.GetDiplomacyManager(bully.Name)
		if d.FlagTurns(FlagRememberBulliedProtectedMinor) > 50 {
			d.AddModifier(ModifierBulliedProtectedMinor, -10)
		} else {
			d.AddModifier(ModifierBulliedProtectedMinor, -15)
		}
		d.SetFlag(FlagRememberBulliedProtectedMinor, tributeMemoryFlagTurns)
	}
}
