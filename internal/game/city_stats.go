package game

import (
	"math"

	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/stats"
)

// StatList is an insertion-ordered source name -> Stats accumulator, the
// flattened final form of the base tree after multipliers and conversions.
type StatList struct {
	names  []string
	values map[string]*stats.Stats
}

// NewStatList builds an empty list
func NewStatList() *StatList {
	return &StatList{values: make(map[string]*stats.Stats)}
}

// Add accumulates stats under a source, creating it at the end on first use
func (l *StatList) Add(source string, s *stats.Stats) {
	entry, ok := l.values[source]
	if !ok {
		entry = stats.New()
		l.values[source] = entry
		l.names = append(l.names, source)
	}
	entry.Add(s)
}

// Get returns the entry for a source, nil when absent
func (l *StatList) Get(source string) *stats.Stats {
	return l.values[source]
}

// Names returns the sources in insertion order
func (l *StatList) Names() []string {
	return l.names
}

// Len returns the number of sources
func (l *StatList) Len() int {
	return len(l.names)
}

// Total sums every entry channel-wise
func (l *StatList) Total() *stats.Stats {
	total := stats.New()
	for _, name := range l.names {
		total.Add(l.values[name])
	}
	return total
}

// Clear empties the list in place
func (l *StatList) Clear() {
	l.names = l.names[:0]
	l.values = make(map[string]*stats.Stats)
}

func (l *StatList) each(fn func(name string, entry *stats.Stats)) {
	for _, name := range l.names {
		fn(name, l.values[name])
	}
}

// HappinessList is the per-bucket happiness breakdown for one city
type HappinessList struct {
	names  []string
	values map[string]float64
}

func newHappinessList() *HappinessList {
	return &HappinessList{values: make(map[string]float64)}
}

// Add accumulates happiness under a named bucket
func (h *HappinessList) Add(bucket string, value float64) {
	if _, ok := h.values[bucket]; !ok {
		h.names = append(h.names, bucket)
	}
	h.values[bucket] += value
}

// Get returns a bucket's value
func (h *HappinessList) Get(bucket string) float64 {
	return h.values[bucket]
}

// Names returns buckets in insertion order
func (h *HappinessList) Names() []string {
	return h.names
}

// Total sums every bucket
func (h *HappinessList) Total() float64 {
	total := 0.0
	for _, v := range h.values {
		total += v
	}
	return total
}

// CityStats is the computed-and-cached yield result of one city. Update
// recomputes it; reads between updates see the cached values.
type CityStats struct {
	city *City

	BaseStatTree         *stats.StatTreeNode
	StatPercentBonusTree *stats.StatTreeNode
	FinalStatList        *StatList
	CurrentCityStats     *stats.Stats
	Happiness            *HappinessList
}

// NewCityStats builds the empty stats holder for a city
func NewCityStats(city *City) *CityStats {
	return &CityStats{
		city:                 city,
		BaseStatTree:         stats.NewStatTree(),
		StatPercentBonusTree: stats.NewStatTree(),
		FinalStatList:        NewStatList(),
		CurrentCityStats:     stats.New(),
		Happiness:            newHappinessList(),
	}
}

// Update recomputes everything in the mandated order. Callers run
// ReconcileWorkedTiles first; this pass only reads city state.
func (cs *CityStats) Update(g *GameInfo, cache *LocalUniqueCache) {
	if cache == nil {
		cache = NewLocalUniqueCache(false)
	}
	city := cs.city
	civ := g.Civs[city.CivName]
	state := StateForCity(g, city)

	tileStats := cs.statsFromTiles(g)
	cs.updateBaseStatTree(g, civ, state, cache, tileStats)
	cs.updateHappiness(g, civ, state, cache, tileStats)
	cs.updatePercentBonusTree(g, civ, state, cache)
	cs.updateFinalStatList(g, civ, state, cache)

	cs.CurrentCityStats = cs.FinalStatList.Total()
}

// statsFromTiles sums the yields of the center tile, worked tiles, and
// tiles that yield without population. Blockaded tiles contribute nothing.
func (cs *CityStats) statsFromTiles(g *GameInfo) *stats.Stats {
	city := cs.city
	out := stats.New()
	for pos, tile := range city.Tiles {
		if tile.Blockaded {
			continue
		}
		if pos == city.CenterPos || city.WorkedTiles[pos] || tile.YieldsWithoutPopulation {
			out.Add(tile.Yield(g.Rules))
		}
	}
	return out
}

func (cs *CityStats) updateBaseStatTree(g *GameInfo, civ *Civilization, state *StateForConditionals, cache *LocalUniqueCache, tileStats *stats.Stats) {
	city := cs.city
	tree := stats.NewStatTree()

	// Citizens research; free citizens also labor
	tree.AddStats(&stats.Stats{
		Science:    float64(city.Population.Count),
		Production: float64(city.Population.FreePopulation()),
	}, "Population")

	tree.AddStats(tileStats, "Tile yields")

	specialistStats := stats.New()
	for name, count := range city.Population.Specialists {
		if count <= 0 {
			continue
		}
		if specialist, ok := g.Rules.Specialists[name]; ok && specialist.Stats != nil {
			specialistStats.Add(specialist.Stats.Times(float64(count)))
		}
	}
	for _, u := range city.MatchingUniques(g, ruleset.UniqueStatsFromSpecialist, state, cache) {
		if !city.MatchesFilter(g, u.Param(0)) {
			continue
		}
		specialistStats.Add(u.Stats.Times(float64(city.Population.SpecialistCount())))
	}
	if !specialistStats.IsEmpty() {
		tree.AddStats(specialistStats, "Specialists")
	}

	if tradeStats := cs.statsFromTradeRoutes(g, civ, state, cache); tradeStats != nil {
		tree.AddStats(tradeStats, "Trade routes")
	}

	city.Constructions.BuiltBuildingStats(g, tree)

	// Conditional flat-stat effects, bucketed under their source
	for _, u := range city.MatchingUniques(g, ruleset.UniqueStats, state, cache) {
		if city.Constructions.IsBuilt(u.SourceName) {
			tree.AddStats(u.Stats, "Buildings", u.SourceName)
		} else {
			tree.AddStats(u.Stats, u.SourceName)
		}
	}
	for _, u := range city.MatchingUniques(g, ruleset.UniqueStatsPerCity, state, cache) {
		if city.MatchesFilter(g, u.Param(0)) {
			tree.AddStats(u.Stats, u.SourceName)
		}
	}
	for _, u := range city.MatchingUniques(g, ruleset.UniqueStatsPerPopulation, state, cache) {
		per := u.IntParam(0)
		if per <= 0 || !city.MatchesFilter(g, u.Param(1)) {
			continue
		}
		factor := float64(city.Population.Count) / float64(per)
		tree.AddStats(u.Stats.Times(factor), u.SourceName)
	}

	cs.BaseStatTree = tree
}

// statsFromTradeRoutes yields the capital-connection gold for non-capital
// cities, scaled by trade route percentage uniques per channel.
func (cs *CityStats) statsFromTradeRoutes(g *GameInfo, civ *Civilization, state *StateForConditionals, cache *LocalUniqueCache) *stats.Stats {
	city := cs.city
	if city.Capital || !city.ConnectedToCapital {
		return nil
	}
	capital := g.CapitalOf(civ)
	if capital == nil {
		return nil
	}
	gold := float64(capital.Population.Count)*0.15 + float64(city.Population.Count)*1.1 - 1
	out := &stats.Stats{Gold: gold}
	for _, u := range CivMatchingUniques(g, civ, ruleset.UniqueBonusStatsFromTrade, state, cache) {
		stat := u.StatParam(1)
		out.Set(stat, out.Get(stat)*(1+u.FloatParam(0)/100))
	}
	return out
}

func (cs *CityStats) updateHappiness(g *GameInfo, civ *Civilization, state *StateForConditionals, cache *LocalUniqueCache, tileStats *stats.Stats) {
	city := cs.city
	list := newHappinessList()
	opts := g.Options

	difficultyModifier := opts.UnhappinessModifier
	if !civ.IsHuman {
		// AI discount compounds on top of the difficulty scaling
		difficultyModifier *= opts.AIUnhappinessModifier
	}

	annex := city.HasExtraAnnexUnhappiness(g)
	baseUnhappiness := -3.0
	if annex {
		baseUnhappiness = -5.0
	}
	list.Add("Cities", baseUnhappiness*difficultyModifier)

	populationUnhappiness := float64(city.Population.Count)
	if annex {
		populationUnhappiness *= 2
	}
	list.Add("Population", -populationUnhappiness*difficultyModifier)

	buildingHappiness := 0.0
	for _, name := range city.Constructions.BuiltBuildingNames() {
		if b, ok := g.Rules.Buildings[name]; ok && b.Stats != nil {
			buildingHappiness += b.Stats.Happiness
		}
	}
	if buildingHappiness != 0 {
		list.Add("Buildings", buildingHappiness)
	}

	if tileStats.Happiness != 0 {
		list.Add("Tiles", tileStats.Happiness)
	}

	specialistHappiness := 0.0
	for name, count := range city.Population.Specialists {
		if specialist, ok := g.Rules.Specialists[name]; ok && specialist.Stats != nil {
			specialistHappiness += specialist.Stats.Happiness * float64(count)
		}
	}
	if specialistHappiness != 0 {
		list.Add("Specialists", specialistHappiness)
	}

	uniqueHappiness := 0.0
	for _, u := range city.MatchingUniques(g, ruleset.UniqueStats, state, cache) {
		uniqueHappiness += u.Stats.Happiness
	}
	if uniqueHappiness != 0 {
		list.Add("Uniques", uniqueHappiness)
	}

	cs.Happiness = list
}

func (cs *CityStats) updatePercentBonusTree(g *GameInfo, civ *Civilization, state *StateForConditionals, cache *LocalUniqueCache) {
	city := cs.city
	tree := stats.NewStatTree()

	if civ.IsGoldenAge() {
		tree.AddStats(&stats.Stats{Production: 20, Culture: 20}, "Golden Age")
	}

	for _, name := range city.Constructions.BuiltBuildingNames() {
		if b, ok := g.Rules.Buildings[name]; ok && b.PercentStats != nil {
			tree.AddStats(b.PercentStats, "Buildings", name)
		}
	}

	// Captured rail is worthless until the gating tech is researched
	railConnected := city.Capital || city.RailConnectedToCapital
	techKnown := g.Options.RailroadTech == "" || civ.HasTech(g.Options.RailroadTech)
	if railConnected && techKnown {
		tree.AddStats(&stats.Stats{Production: 25}, "Railroad")
	}

	if city.Puppet {
		tree.AddStats(&stats.Stats{Science: -25, Culture: -25}, "Puppet City")
	}

	if civ.SupplyDeficitPenalty < 0 {
		tree.AddStats(&stats.Stats{Production: civ.SupplyDeficitPenalty}, "Unit Supply")
	}

	for _, u := range city.MatchingUniques(g, ruleset.UniqueStatPercentBonus, state, cache) {
		tree.AddStats(statOf(u.StatParam(1), u.FloatParam(0)), u.SourceName)
	}
	for _, u := range city.MatchingUniques(g, ruleset.UniqueStatPercentBonusCities, state, cache) {
		if city.MatchesFilter(g, u.Param(2)) {
			tree.AddStats(statOf(u.StatParam(1), u.FloatParam(0)), u.SourceName)
		}
	}

	current := city.Constructions.CurrentConstruction()
	if building, ok := g.Rules.Buildings[current]; ok {
		for _, u := range city.MatchingUniques(g, ruleset.UniquePercentProductionBuildings, state, cache) {
			if building.MatchesFilter(u.Param(1)) && city.MatchesFilter(g, u.Param(2)) {
				tree.AddStats(&stats.Stats{Production: u.FloatParam(0)}, u.SourceName)
			}
		}
		if building.IsAnyWonder() {
			for _, u := range city.MatchingUniques(g, ruleset.UniquePercentProductionWonders, state, cache) {
				if city.MatchesFilter(g, u.Param(1)) {
					tree.AddStats(&stats.Stats{Production: u.FloatParam(0)}, u.SourceName)
				}
			}
		}
		if city.Capital {
			for _, u := range city.MatchingUniques(g, ruleset.UniquePercentProductionInCapital, state, cache) {
				tree.AddStats(&stats.Stats{Production: u.FloatParam(0)}, u.SourceName)
			}
		}
	}
	if unit, ok := g.Rules.Units[current]; ok {
		for _, u := range city.MatchingUniques(g, ruleset.UniquePercentProductionUnits, state, cache) {
			if unit.MatchesFilter(u.Param(1)) && city.MatchesFilter(g, u.Param(2)) {
				tree.AddStats(&stats.Stats{Production: u.FloatParam(0)}, u.SourceName)
			}
		}
	}

	for _, u := range city.MatchingUniques(g, ruleset.UniqueStatPercentFromFollowers, state, cache) {
		bonus := u.FloatParam(0) * float64(city.ReligionFollowers)
		if maxBonus := u.FloatParam(2); bonus > maxBonus {
			bonus = maxBonus
		}
		if bonus > 0 {
			tree.AddStats(statOf(u.StatParam(1), bonus), u.SourceName)
		}
	}

	cs.StatPercentBonusTree = tree
}

func statOf(stat stats.Stat, amount float64) *stats.Stats {
	s := stats.New()
	s.Set(stat, amount)
	return s
}

// updateFinalStatList flattens the base tree and applies bonuses and
// conversions. The channel order is load-bearing: production resolves
// first, the gold-to-science conversion sits between the gold and science
// multipliers so converted science still receives the science bonus.
func (cs *CityStats) updateFinalStatList(g *GameInfo, civ *Civilization, state *StateForConditionals, cache *LocalUniqueCache) {
	city := cs.city
	final := NewStatList()
	for _, name := range cs.BaseStatTree.ChildNames() {
		final.Add(name, cs.BaseStatTree.Child(name).TotalStats())
	}

	percent := cs.StatPercentBonusTree.TotalStats()
	applyPercent := func(stat stats.Stat) {
		factor := 1 + percent.Get(stat)/100
		final.each(func(_ string, entry *stats.Stats) {
			entry.Set(stat, entry.Get(stat)*factor)
		})
	}

	applyPercent(stats.Production)

	// Perpetual conversions divert a quarter of effective production into
	// a civ-wide stat, as their own entry; production itself is consumed
	// by the construction, not reduced here.
	current := city.Constructions.CurrentConstruction()
	if convertTo, ok := PerpetualStatConversion(current); ok {
		rate := PerpetualConversionRate
		for _, u := range CivMatchingUniques(g, civ, ruleset.UniqueProductionConversionBonus, state, cache) {
			rate *= 1 + u.FloatParam(0)/100
		}
		converted := final.Total().Production * rate
		if converted > 0 {
			final.Add(current, statOf(convertTo, math.Floor(converted)))
		}
	}

	applyPercent(stats.Gold)
	applyPercent(stats.Culture)
	applyPercent(stats.Food)
	applyPercent(stats.Faith)

	if pct := g.Options.GoldToSciencePercent; pct > 0 {
		totalGold := final.Total().Gold
		if totalGold > 0 {
			converted := totalGold * pct / 100
			final.Add("Gold -> Science", &stats.Stats{Gold: -converted, Science: converted})
		}
	}

	applyPercent(stats.Science)

	for _, u := range city.MatchingUniques(g, ruleset.UniqueNullifiesStat, state, cache) {
		stat := u.StatParam(0)
		if total := final.Total().Get(stat); total != 0 {
			final.Add(u.SourceName, statOf(stat, -total))
		}
	}

	// Food resolution
	final.Add("Population", &stats.Stats{Food: -cs.foodEaten(g, state, cache)})
	totalFood := final.Total().Food
	if totalFood > 0 {
		// Growth bonuses each apply to the pre-bonus total, deliberately
		// not multiplicative with one another
		for _, u := range city.MatchingUniques(g, ruleset.UniqueGrowthPercentBonus, state, cache) {
			if !city.MatchesFilter(g, u.Param(1)) {
				continue
			}
			final.Add(u.SourceName+" (Growth)", &stats.Stats{Food: totalFood * u.FloatParam(0) / 100})
		}
		if city.WeLoveTheKingDay && civ.Happiness >= 0 {
			final.Add("We Love The King Day", &stats.Stats{Food: totalFood * 0.25})
		}
	}

	if maintenance := cs.maintenance(g, civ, state, cache); maintenance > 0 {
		final.Add("Maintenance", &stats.Stats{Gold: -maintenance})
	}

	if totalFood := final.Total().Food; totalFood > 0 &&
		city.Constructions.CurrentConstructionConvertsFood(g, state) {
		final.Add("Excess food to production", &stats.Stats{
			Production: productionFromExcessiveFood(totalFood),
			Food:       -totalFood,
		})
	}

	// Growth nullification never suppresses starvation
	if totalFood := final.Total().Food; totalFood > 0 {
		for _, u := range city.MatchingUniques(g, ruleset.UniqueNullifiesGrowth, state, cache) {
			final.Add(u.SourceName, &stats.Stats{Food: -totalFood})
			break
		}
	}

	if city.InResistance {
		// Total economic paralysis, stronger than any positive bonus.
		// The production floor does not apply here.
		final.Clear()
	} else if final.Total().Production < 1 {
		// The synthetic entry is exactly 1, added on top of any
		// fractional base rather than topping the total up to 1
		final.Add("Production floor", &stats.Stats{Production: 1})
	}

	cs.FinalStatList = final
}

// productionFromExcessiveFood is the settler conversion table
func productionFromExcessiveFood(food float64) float64 {
	switch {
	case food >= 4:
		return 2 + math.Floor(food/4)
	case food >= 2:
		return 2
	case food >= 1:
		return 1
	}
	return 0
}

// foodEaten is per-citizen consumption with the specialist share scaled by
// any food-consumption percentage uniques
func (cs *CityStats) foodEaten(g *GameInfo, state *StateForConditionals, cache *LocalUniqueCache) float64 {
	city := cs.city
	specialists := city.Population.SpecialistCount()
	specialistShare := float64(specialists) * 2
	for _, u := range city.MatchingUniques(g, ruleset.UniqueFoodConsumptionSpecialists, state, cache) {
		if city.MatchesFilter(g, u.Param(1)) {
			specialistShare *= 1 + u.FloatParam(0)/100
		}
	}
	return float64(city.Population.Count-specialists)*2 + specialistShare
}

func (cs *CityStats) maintenance(g *GameInfo, civ *Civilization, state *StateForConditionals, cache *LocalUniqueCache) float64 {
	city := cs.city
	total := city.Constructions.BuiltBuildingMaintenance(g)
	if !civ.IsHuman {
		total *= g.Options.AIMaintenanceModifier
	}
	for _, u := range city.MatchingUniques(g, ruleset.UniqueBuildingMaintenancePercent, state, cache) {
		if city.MatchesFilter(g, u.Param(1)) {
			total *= 1 + u.FloatParam(0)/100
		}
	}
	return total
}

// IsStarving reports negative net food after a completed update
func (cs *CityStats) IsStarving() bool {
	return cs.CurrentCityStats.Food < 0
}
