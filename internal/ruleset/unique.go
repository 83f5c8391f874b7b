package ruleset

import (
	"fmt"
	"strconv"

	"github.com/napolitain/civkit/internal/stats"
)

// UniqueType identifies an effect. The engine only understands the types
// enumerated here; ruleset files referencing anything else fail to load.
type UniqueType string

const (
	// Additive stat effects
	UniqueStats                UniqueType = "Stats"
	UniqueStatsPerPopulation   UniqueType = "StatsPerPopulation"
	UniqueStatsFromSpecialist  UniqueType = "StatsFromSpecialist"
	UniqueStatsPerCity         UniqueType = "StatsPerCity"
	UniqueTileYieldWithoutPop  UniqueType = "TileYieldWithoutPopulation"
	UniqueBonusStatsFromTrade  UniqueType = "BonusStatsFromTradeRoutes"

	// Percentage effects
	UniqueStatPercentBonus            UniqueType = "StatPercentBonus"
	UniqueStatPercentBonusCities      UniqueType = "StatPercentBonusCities"
	UniquePercentProductionBuildings  UniqueType = "PercentProductionBuildings"
	UniquePercentProductionUnits      UniqueType = "PercentProductionUnits"
	UniquePercentProductionWonders    UniqueType = "PercentProductionWonders"
	UniquePercentProductionInCapital  UniqueType = "PercentProductionBuildingsInCapital"
	UniqueStatPercentFromFollowers    UniqueType = "StatPercentFromReligionFollowers"
	UniqueGrowthPercentBonus          UniqueType = "GrowthPercentBonus"
	UniqueFoodConsumptionSpecialists  UniqueType = "FoodConsumptionBySpecialists"
	UniqueBuildingMaintenancePercent  UniqueType = "BuildingMaintenancePercent"

	// Stat suppression and conversion
	UniqueNullifiesStat            UniqueType = "NullifiesStat"
	UniqueNullifiesGrowth          UniqueType = "NullifiesGrowth"
	UniqueConvertFoodToProduction  UniqueType = "ConvertFoodToProductionWhenConstructed"
	UniqueProductionConversionBonus UniqueType = "ProductionToCivWideStatConversionBonus"
	UniqueRemoveAnnexUnhappiness   UniqueType = "RemoveAnnexUnhappiness"

	// Construction gating
	UniqueUnbuildable           UniqueType = "Unbuildable"
	UniqueOnlyAvailable         UniqueType = "OnlyAvailable"
	UniqueCanOnlyBeBuiltWhen    UniqueType = "CanOnlyBeBuiltWhen"
	UniqueRequiresPopulation    UniqueType = "RequiresPopulation"
	UniqueMustBeOn              UniqueType = "MustBeOn"
	UniqueMustNotBeOn           UniqueType = "MustNotBeOn"
	UniqueMustBeNextTo          UniqueType = "MustBeNextTo"
	UniqueObsoleteWith          UniqueType = "ObsoleteWith"
	UniqueMaxNumberBuildable    UniqueType = "MaxNumberBuildable"
	UniqueHiddenBeforePolicies  UniqueType = "HiddenBeforeAmountPolicies"
	UniqueConsumesResources     UniqueType = "ConsumesResources"
	UniqueCostsResources        UniqueType = "CostsResources"

	// Purchasing
	UniqueCannotBePurchased        UniqueType = "CannotBePurchased"
	UniqueCanBePurchasedWithStat   UniqueType = "CanBePurchasedWithStat"
	UniqueCanBePurchasedForAmount  UniqueType = "CanBePurchasedForAmountStat"

	// Timed trigger effects fire once and are skipped by ambient queries
	UniqueTimedAttackStrength UniqueType = "TimedAttackStrength"
)

// uniqueSignature describes the expected shape of a parsed unique
type uniqueSignature struct {
	params     int
	needsStats bool
	timed      bool
}

var uniqueSignatures = map[UniqueType]uniqueSignature{
	UniqueStats:                     {params: 0, needsStats: true},
	UniqueStatsPerPopulation:        {params: 2, needsStats: true}, // amount of population, city filter
	UniqueStatsFromSpecialist:       {params: 1, needsStats: true}, // city filter
	UniqueStatsPerCity:              {params: 1, needsStats: true}, // city filter
	UniqueTileYieldWithoutPop:       {params: 0, needsStats: true},
	UniqueBonusStatsFromTrade:       {params: 2}, // amount, stat
	UniqueStatPercentBonus:          {params: 2}, // amount, stat
	UniqueStatPercentBonusCities:    {params: 3}, // amount, stat, city filter
	UniquePercentProductionBuildings: {params: 3}, // amount, building filter, city filter
	UniquePercentProductionUnits:    {params: 3}, // amount, unit filter, city filter
	UniquePercentProductionWonders:  {params: 2}, // amount, city filter
	UniquePercentProductionInCapital: {params: 1}, // amount
	UniqueStatPercentFromFollowers:  {params: 3}, // amount, stat, max amount
	UniqueGrowthPercentBonus:        {params: 2}, // amount, city filter
	UniqueFoodConsumptionSpecialists: {params: 2}, // amount, city filter
	UniqueBuildingMaintenancePercent: {params: 2}, // amount, city filter
	UniqueNullifiesStat:             {params: 1}, // stat
	UniqueNullifiesGrowth:           {params: 0},
	UniqueConvertFoodToProduction:   {params: 0},
	UniqueProductionConversionBonus: {params: 1}, // amount
	UniqueRemoveAnnexUnhappiness:    {params: 0},
	UniqueUnbuildable:               {params: 0},
	UniqueOnlyAvailable:             {params: 0},
	UniqueCanOnlyBeBuiltWhen:        {params: 0},
	UniqueRequiresPopulation:        {params: 1}, // amount
	UniqueMustBeOn:                  {params: 1}, // terrain filter
	UniqueMustNotBeOn:               {params: 1}, // terrain filter
	UniqueMustBeNextTo:              {params: 1}, // terrain filter
	UniqueObsoleteWith:              {params: 1}, // tech
	UniqueMaxNumberBuildable:        {params: 1}, // amount
	UniqueHiddenBeforePolicies:      {params: 1}, // amount
	UniqueConsumesResources:         {params: 2}, // amount, resource
	UniqueCostsResources:            {params: 2}, // amount, resource
	UniqueCannotBePurchased:         {params: 0},
	UniqueCanBePurchasedWithStat:    {params: 1}, // stat
	UniqueCanBePurchasedForAmount:   {params: 2}, // amount, stat
	UniqueTimedAttackStrength:       {params: 2, timed: true}, // amount, turns
}

// ModifierType identifies a conditional gating a unique's applicability
type ModifierType string

const (
	ConditionalWar              ModifierType = "ConditionalWar"
	ConditionalNotWar           ModifierType = "ConditionalNotWar"
	ConditionalHappy            ModifierType = "ConditionalHappy"
	ConditionalAboveHappiness   ModifierType = "ConditionalAboveHappiness"
	ConditionalBelowHappiness   ModifierType = "ConditionalBelowHappiness"
	ConditionalGoldenAge        ModifierType = "ConditionalGoldenAge"
	ConditionalWLTKD            ModifierType = "ConditionalWLTKD"
	ConditionalBeforeTurns      ModifierType = "ConditionalBeforeTurns"
	ConditionalAfterTurns       ModifierType = "ConditionalAfterTurns"
	ConditionalTech             ModifierType = "ConditionalTech"
	ConditionalNoTech           ModifierType = "ConditionalNoTech"
	ConditionalBeforeEra        ModifierType = "ConditionalBeforeEra"
	ConditionalStartingFromEra  ModifierType = "ConditionalStartingFromEra"
	ConditionalDuringEra        ModifierType = "ConditionalDuringEra"
	ConditionalInThisCity       ModifierType = "ConditionalInThisCity"
	ConditionalCityFilter       ModifierType = "ConditionalCityFilter"
	ConditionalPopulationFilter ModifierType = "ConditionalPopulationFilter"
	ConditionalWithResource     ModifierType = "ConditionalWithResource"
)

var modifierParamCounts = map[ModifierType]int{
	ConditionalWar:              0,
	ConditionalNotWar:           0,
	ConditionalHappy:            0,
	ConditionalAboveHappiness:   1,
	ConditionalBelowHappiness:   1,
	ConditionalGoldenAge:        0,
	ConditionalWLTKD:            0,
	ConditionalBeforeTurns:      1,
	ConditionalAfterTurns:       1,
	ConditionalTech:             1,
	ConditionalNoTech:           1,
	ConditionalBeforeEra:        1,
	ConditionalStartingFromEra:  1,
	ConditionalDuringEra:        1,
	ConditionalInThisCity:       0,
	ConditionalCityFilter:       1,
	ConditionalPopulationFilter: 2, // amount, population filter
	ConditionalWithResource:     1,
}

// Modifier is one conditional clause of a unique
type Modifier struct {
	Type   ModifierType `json:"type"`
	Params []string     `json:"params,omitempty"`
}

// Param returns the i-th parameter, or "" when absent
func (m *Modifier) Param(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// IntParam parses the i-th parameter as an integer, 0 on failure.
// Load-time validation guarantees parseability for validated rulesets.
func (m *Modifier) IntParam(i int) int {
	n, _ := strconv.Atoi(m.Param(i))
	return n
}

// Unique is one typed effect attached to a ruleset entity. A unique with
// unmet conditionals is inert.
type Unique struct {
	Type      UniqueType   `json:"type"`
	Params    []string     `json:"params,omitempty"`
	Stats     *stats.Stats `json:"stats,omitempty"`
	Modifiers []Modifier   `json:"modifiers,omitempty"`

	// SourceName is the owning entity's name, filled in at load time.
	// Serialized so uniques detached from the ruleset, such as triggered
	// temporary effects, keep their attribution.
	SourceName string `json:"sourceName,omitempty"`

	// IsTimedTriggerable uniques fire once when triggered and are skipped
	// by ambient queries
	IsTimedTriggerable bool `json:"-"`

	// IsLocalEffect marks uniques scoped to their own city
	IsLocalEffect bool `json:"-"`
}

// Param returns the i-th parameter, or "" when absent
func (u *Unique) Param(i int) string {
	if i < 0 || i >= len(u.Params) {
		return ""
	}
	return u.Params[i]
}

// IntParam parses the i-th parameter as an integer, 0 on failure
func (u *Unique) IntParam(i int) int {
	n, _ := strconv.Atoi(u.Param(i))
	return n
}

// FloatParam parses the i-th parameter as a float, 0 on failure
func (u *Unique) FloatParam(i int) float64 {
	f, _ := strconv.ParseFloat(u.Param(i), 64)
	return f
}

// StatParam parses the i-th parameter as a Stat name, Production on failure
func (u *Unique) StatParam(i int) stats.Stat {
	s, err := stats.ParseStat(u.Param(i))
	if err != nil {
		return stats.Production
	}
	return s
}

// Validate checks a raw unique against the engine's closed type and
// signature tables. Called once at ruleset load.
func (u *Unique) Validate(source string) error {
	sig, ok := uniqueSignatures[u.Type]
	if !ok {
		return fmt.Errorf("entity %q: unknown unique type %q", source, u.Type)
	}
	if len(u.Params) != sig.params {
		return fmt.Errorf("entity %q: unique %q expects %d params, got %d",
			source, u.Type, sig.params, len(u.Params))
	}
	if sig.needsStats && u.Stats == nil {
		return fmt.Errorf("entity %q: unique %q requires a stats block", source, u.Type)
	}
	for _, m := range u.Modifiers {
		want, ok := modifierParamCounts[m.Type]
		if !ok {
			return fmt.Errorf("entity %q: unknown conditional %q on unique %q",
				source, m.Type, u.Type)
		}
		if len(m.Params) != want {
			return fmt.Errorf("entity %q: conditional %q expects %d params, got %d",
				source, m.Type, want, len(m.Params))
		}
	}
	u.SourceName = source
	u.IsTimedTriggerable = sig.timed
	for _, m := range u.Modifiers {
		if m.Type == ConditionalInThisCity {
			u.IsLocalEffect = true
		}
	}
	return nil
}
