package game

import "math"

// TurnSummary reports what one NextTurn call did, for observers
type TurnSummary struct {
	Turn       int                 `json:"turn"`
	CityStats  map[string]CityTurn `json:"cityStats"`
	Happiness  map[string]float64  `json:"happiness"`
}

// CityTurn is one city's outcome for the turn
type CityTurn struct {
	Name       string  `json:"name"`
	Food       float64 `json:"food"`
	Production float64 `json:"production"`
	Gold       float64 `json:"gold"`
	Science    float64 `json:"science"`
	Population int     `json:"population"`
	Completed  string  `json:"completed,omitempty"`
	Starving   bool    `json:"starving,omitempty"`
}

// NextTurn advances the whole game one turn: per civ it ages diplomacy
// flags and temporary uniques, reconciles and recomputes every city,
// applies growth and production, and refreshes civ-wide happiness. One
// civ completes before the next begins.
func NextTurn(g *GameInfo) *TurnSummary {
	g.Turn++
	summary := &TurnSummary{
		Turn:      g.Turn,
		CityStats: make(map[string]CityTurn),
		Happiness: make(map[string]float64),
	}

	for _, name := range g.CivOrder() {
		civ := g.Civs[name]
		if civ.Defeated {
			continue
		}

		for _, d := range civ.Diplomacy {
			d.NextTurnFlags()
		}
		for flag, turns := range civ.Flags {
			turns--
			if turns <= 0 {
				delete(civ.Flags, flag)
			} else {
				civ.Flags[flag] = turns
			}
		}
		ExpireTemporaryUniques(civ)
		if civ.GoldenAgeTurns > 0 {
			civ.GoldenAgeTurns--
		}

		// One cache per civ turn. A building completed mid-loop stays
		// invisible to later cities until next turn; conditionals are
		// still re-evaluated on every query.
		cache := NewLocalUniqueCache(true)
		for _, city := range g.CitiesOf(civ) {
			city.ReconcileWorkedTiles()
			if city.ShouldReassignPopulation {
				AutoAssignPopulation(g, city, DefaultAssignStrategy)
				city.ShouldReassignPopulation = false
			}
			city.Stats.Update(g, cache)

			turn := CityTurn{
				Name:       city.Name,
				Food:       city.Stats.CurrentCityStats.Food,
				Production: city.Stats.CurrentCityStats.Production,
				Gold:       city.Stats.CurrentCityStats.Gold,
				Science:    city.Stats.CurrentCityStats.Science,
				Starving:   city.Stats.IsStarving(),
			}

			applyGrowth(city)
			turn.Completed = city.Constructions.AddProduction(g,
				int(math.Floor(city.Stats.CurrentCityStats.Production)))
			turn.Population = city.Population.Count

			civ.Gold += city.Stats.CurrentCityStats.Gold
			summary.CityStats[city.ID] = turn
		}

		refreshCivHappiness(g, civ)
		summary.Happiness[civ.Name] = civ.Happiness
	}
	return summary
}

// applyGrowth settles the turn's food into stored food, growing or
// starving the city. Population never drops below one.
func applyGrowth(city *City) {
	food := city.Stats.CurrentCityStats.Food
	city.Population.FoodStored += food

	if city.Population.FoodStored < 0 {
		city.Population.FoodStored = 0
		if city.Population.Count > 1 {
			city.Population.Count--
			city.ShouldReassignPopulation = true
		}
		return
	}
	if threshold := city.Population.FoodToGrow(); city.Population.FoodStored >= threshold {
		city.Population.FoodStored -= threshold
		city.Population.Count++
		city.ShouldReassignPopulation = true
	}
}

// refreshCivHappiness sums the base allowance and every city's breakdown
func refreshCivHappiness(g *GameInfo, civ *Civilization) {
	total := g.Options.BaseHappiness
	for _, city := range g.CitiesOf(civ) {
		total += city.Stats.Happiness.Total()
	}
	civ.Happiness = total
}
