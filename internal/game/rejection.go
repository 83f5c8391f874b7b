package game

import (
	"fmt"
	"math"

	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/stats"
)

// RejectionReasonType classifies why a construction is not currently
// buildable. The classification drives the build menu: some reasons gray
// an entry out, some hide it entirely.
type RejectionReasonType string

const (
	RejectionAlreadyBuilt            RejectionReasonType = "AlreadyBuilt"
	RejectionUnbuildable             RejectionReasonType = "Unbuildable"
	RejectionNotAvailable            RejectionReasonType = "NotAvailable"
	RejectionCanOnlyBeBuiltWhen      RejectionReasonType = "CanOnlyBeBuiltWhen"
	RejectionRequiresTech            RejectionReasonType = "RequiresTech"
	RejectionObsoleted               RejectionReasonType = "Obsoleted"
	RejectionRequiresBuilding        RejectionReasonType = "RequiresBuildingInThisCity"
	RejectionRequiresPopulation      RejectionReasonType = "RequiresPopulation"
	RejectionMustBeOnTile            RejectionReasonType = "MustBeOnTile"
	RejectionMustNotBeOnTile         RejectionReasonType = "MustNotBeOnTile"
	RejectionMustBeNextToTile        RejectionReasonType = "MustBeNextToTile"
	RejectionMaxNumberBuildable      RejectionReasonType = "MaxNumberBuildable"
	RejectionUniqueToOtherNation     RejectionReasonType = "UniqueToOtherNation"
	RejectionReplacedByOurUnique     RejectionReasonType = "ReplacedByOurUnique"
	RejectionWonderAlreadyBuilt      RejectionReasonType = "WonderAlreadyBuilt"
	RejectionNationalWonderBuilt     RejectionReasonType = "NationalWonderAlreadyBuilt"
	RejectionWonderBuiltElsewhere    RejectionReasonType = "WonderBeingBuiltElsewhere"
	RejectionCityStateWonder         RejectionReasonType = "CityStateWonder"
	RejectionPuppetWonder            RejectionReasonType = "PuppetWonder"
	RejectionConsumesResources       RejectionReasonType = "ConsumesResources"
	RejectionRequiresNearbyResource  RejectionReasonType = "RequiresNearbyResource"
	RejectionHiddenBeforePolicies    RejectionReasonType = "HiddenBeforeAmountPolicies"
	RejectionHiddenBySetting         RejectionReasonType = "HiddenBySetting"
)

// rejectionTraits drives display and queue-pruning decisions per type
type rejectionTraits struct {
	shouldShow   bool
	neverVisible bool
	precedence   int
}

var rejectionTraitTable = map[RejectionReasonType]rejectionTraits{
	RejectionAlreadyBuilt:           {precedence: 1},
	RejectionUnbuildable:            {precedence: 2},
	RejectionNotAvailable:           {neverVisible: true, precedence: 3},
	RejectionCanOnlyBeBuiltWhen:     {shouldShow: true, precedence: 4},
	RejectionRequiresTech:           {precedence: 5},
	RejectionObsoleted:              {neverVisible: true, precedence: 6},
	RejectionRequiresBuilding:       {shouldShow: true, precedence: 7},
	RejectionRequiresPopulation:     {shouldShow: true, precedence: 8},
	RejectionMustBeOnTile:           {precedence: 9},
	RejectionMustNotBeOnTile:        {precedence: 10},
	RejectionMustBeNextToTile:       {precedence: 11},
	RejectionMaxNumberBuildable:     {precedence: 12},
	RejectionUniqueToOtherNation:    {neverVisible: true, precedence: 13},
	RejectionReplacedByOurUnique:    {neverVisible: true, precedence: 14},
	RejectionWonderAlreadyBuilt:     {precedence: 15},
	RejectionNationalWonderBuilt:    {precedence: 16},
	RejectionWonderBuiltElsewhere:   {shouldShow: true, precedence: 17},
	RejectionCityStateWonder:        {neverVisible: true, precedence: 18},
	RejectionPuppetWonder:           {neverVisible: true, precedence: 19},
	RejectionConsumesResources:      {shouldShow: true, precedence: 20},
	RejectionRequiresNearbyResource: {shouldShow: true, precedence: 21},
	RejectionHiddenBeforePolicies:   {neverVisible: true, precedence: 22},
	RejectionHiddenBySetting:        {neverVisible: true, precedence: 23},
}

// ShouldShow reports whether the reason grays the entry but keeps it
// visible in the build menu
func (t RejectionReasonType) ShouldShow() bool {
	return rejectionTraitTable[t].shouldShow
}

// IsNeverVisible reports whether the reason hides the entry entirely
func (t RejectionReasonType) IsNeverVisible() bool {
	return rejectionTraitTable[t].neverVisible
}

// Precedence orders reasons for picking the primary one to display
func (t RejectionReasonType) Precedence() int {
	return rejectionTraitTable[t].precedence
}

// RejectionReason is one typed, displayable explanation
type RejectionReason struct {
	Type RejectionReasonType `json:"type"`
	Text string              `json:"text"`
}

func reject(t RejectionReasonType, format string, args ...any) RejectionReason {
	return RejectionReason{Type: t, Text: fmt.Sprintf(format, args...)}
}

// BuildingRejectionReasons runs the full ordered battery for one building
// in one city. No short-circuit: callers need the complete set.
func BuildingRejectionReasons(g *GameInfo, city *City, b *ruleset.Building) []RejectionReason {
	civ := g.Civs[city.CivName]
	state := StateForCity(g, city)
	cc := city.Constructions
	var reasons []RejectionReason

	if cc.IsBuilt(b.Name) {
		reasons = append(reasons, reject(RejectionAlreadyBuilt, "%s is already built", b.Name))
	}

	for i := range b.Uniques {
		u := &b.Uniques[i]
		switch u.Type {
		// Availability uniques invert: the rejection fires when the
		// conditionals do NOT hold
		case ruleset.UniqueOnlyAvailable:
			if !ruleset.ConditionalsApply(u, state) {
				reasons = append(reasons, reject(RejectionNotAvailable, "%s is not available", b.Name))
			}
			continue
		case ruleset.UniqueCanOnlyBeBuiltWhen:
			if !ruleset.ConditionalsApply(u, state) {
				reasons = append(reasons, reject(RejectionCanOnlyBeBuiltWhen, "%s cannot currently be built here", b.Name))
			}
			continue
		}
		if !ruleset.ConditionalsApply(u, state) {
			continue
		}
		switch u.Type {
		case ruleset.UniqueUnbuildable:
			reasons = append(reasons, reject(RejectionUnbuildable, "%s cannot be built", b.Name))
		case ruleset.UniqueRequiresPopulation:
			if city.Population.Count < u.IntParam(0) {
				reasons = append(reasons, reject(RejectionRequiresPopulation, "requires %d population", u.IntParam(0)))
			}
		case ruleset.UniqueMustBeOn:
			if center := city.CenterTile(); center == nil || !center.MatchesTerrainFilter(u.Param(0)) {
				reasons = append(reasons, reject(RejectionMustBeOnTile, "must be built on %s", u.Param(0)))
			}
		case ruleset.UniqueMustNotBeOn:
			if center := city.CenterTile(); center != nil && center.MatchesTerrainFilter(u.Param(0)) {
				reasons = append(reasons, reject(RejectionMustNotBeOnTile, "must not be built on %s", u.Param(0)))
			}
		case ruleset.UniqueMustBeNextTo:
			if !cityHasNearbyTileMatching(city, u.Param(0)) {
				reasons = append(reasons, reject(RejectionMustBeNextToTile, "must be built next to %s", u.Param(0)))
			}
		case ruleset.UniqueObsoleteWith:
			if civ.HasTech(u.Param(0)) {
				reasons = append(reasons, reject(RejectionObsoleted, "obsolete with %s", u.Param(0)))
			}
		case ruleset.UniqueMaxNumberBuildable:
			if civBuildingCount(g, civ, b.Name) >= u.IntParam(0) {
				reasons = append(reasons, reject(RejectionMaxNumberBuildable, "maximum number already built"))
			}
		case ruleset.UniqueHiddenBeforePolicies:
			if civ.PoliciesAdopted < u.IntParam(0) {
				reasons = append(reasons, reject(RejectionHiddenBeforePolicies, "requires %d adopted policies", u.IntParam(0)))
			}
		}
	}

	if b.UniqueTo != "" && b.UniqueTo != civ.NationName {
		reasons = append(reasons, reject(RejectionUniqueToOtherNation, "unique to %s", b.UniqueTo))
	}
	if replacement := nationReplacementFor(g, civ, b.Name); replacement != "" {
		reasons = append(reasons, reject(RejectionReplacedByOurUnique, "replaced by %s", replacement))
	}

	for _, tech := range b.RequiredTechs {
		if !civ.HasTech(tech) {
			reasons = append(reasons, reject(RejectionRequiresTech, "requires %s", tech))
		}
	}

	if b.IsWonder {
		if wonderBuiltAnywhere(g, b.Name) {
			reasons = append(reasons, reject(RejectionWonderAlreadyBuilt, "wonder is already built"))
		}
		if wonderBeingBuiltElsewhere(g, civ, city, b.Name) {
			reasons = append(reasons, reject(RejectionWonderBuiltElsewhere, "being built in another city"))
		}
		if civ.IsCityState {
			reasons = append(reasons, reject(RejectionCityStateWonder, "city-states cannot build wonders"))
		}
		if city.Puppet {
			reasons = append(reasons, reject(RejectionPuppetWonder, "puppets cannot build wonders"))
		}
	}
	if b.IsNationalWonder {
		for _, other := range g.CitiesOf(civ) {
			if other.Constructions.IsBuilt(b.Name) {
				reasons = append(reasons, reject(RejectionNationalWonderBuilt, "national wonder is already built"))
				break
			}
		}
		if city.Puppet {
			reasons = append(reasons, reject(RejectionPuppetWonder, "puppets cannot build national wonders"))
		}
	}

	if b.RequiredBuilding != "" && !cc.IsBuilt(b.RequiredBuilding) {
		reasons = append(reasons, reject(RejectionRequiresBuilding, "requires %s in this city", b.RequiredBuilding))
	}

	if b.RequiredResource != "" && civ.ResourceAmounts[b.RequiredResource] <= 0 {
		reasons = append(reasons, reject(RejectionConsumesResources, "requires %s", b.RequiredResource))
	}
	for i := range b.Uniques {
		u := &b.Uniques[i]
		if u.Type != ruleset.UniqueConsumesResources || !ruleset.ConditionalsApply(u, state) {
			continue
		}
		if civ.ResourceAmounts[u.Param(1)] < u.IntParam(0) {
			reasons = append(reasons, reject(RejectionConsumesResources, "consumes %s %s per turn", u.Param(0), u.Param(1)))
		}
	}

	// Stockpiled resources were charged when work began; an in-progress
	// construction must not be charged again
	if cc.GetWorkDone(b.Name) == 0 {
		for i := range b.Uniques {
			u := &b.Uniques[i]
			if u.Type != ruleset.UniqueCostsResources || !ruleset.ConditionalsApply(u, state) {
				continue
			}
			if city.ResourceStockpiles[u.Param(1)] < u.IntParam(0) {
				reasons = append(reasons, reject(RejectionConsumesResources, "costs %s %s", u.Param(0), u.Param(1)))
			}
		}
	}

	for _, res := range b.RequiredNearbyImprovedResources {
		if !cityHasImprovedResource(g, city, res) {
			reasons = append(reasons, reject(RejectionRequiresNearbyResource, "requires improved %s nearby", res))
		}
	}

	return reasons
}

// UnitRejectionReasons runs the battery for one trainable unit
func UnitRejectionReasons(g *GameInfo, city *City, unit *ruleset.BaseUnit) []RejectionReason {
	civ := g.Civs[city.CivName]
	state := StateForCity(g, city)
	var reasons []RejectionReason

	if unit.RequiredTech != "" && !civ.HasTech(unit.RequiredTech) {
		reasons = append(reasons, reject(RejectionRequiresTech, "requires %s", unit.RequiredTech))
	}
	for i := range unit.Uniques {
		u := &unit.Uniques[i]
		switch u.Type {
		case ruleset.UniqueOnlyAvailable:
			if !ruleset.ConditionalsApply(u, state) {
				reasons = append(reasons, reject(RejectionNotAvailable, "%s is not available", unit.Name))
			}
		case ruleset.UniqueCanOnlyBeBuiltWhen:
			if !ruleset.ConditionalsApply(u, state) {
				reasons = append(reasons, reject(RejectionCanOnlyBeBuiltWhen, "%s cannot currently be built here", unit.Name))
			}
		case ruleset.UniqueUnbuildable:
			if ruleset.ConditionalsApply(u, state) {
				reasons = append(reasons, reject(RejectionUnbuildable, "%s cannot be built", unit.Name))
			}
		case ruleset.UniqueRequiresPopulation:
			if ruleset.ConditionalsApply(u, state) && city.Population.Count < u.IntParam(0) {
				reasons = append(reasons, reject(RejectionRequiresPopulation, "requires %d population", u.IntParam(0)))
			}
		case ruleset.UniqueObsoleteWith:
			if ruleset.ConditionalsApply(u, state) && civ.HasTech(u.Param(0)) {
				reasons = append(reasons, reject(RejectionObsoleted, "obsolete with %s", u.Param(0)))
			}
		case ruleset.UniqueConsumesResources:
			if ruleset.ConditionalsApply(u, state) && civ.ResourceAmounts[u.Param(1)] < u.IntParam(0) {
				reasons = append(reasons, reject(RejectionConsumesResources, "consumes %s %s per turn", u.Param(0), u.Param(1)))
			}
		case ruleset.UniqueCostsResources:
			// Stockpiles are charged when work begins, never twice
			if city.Constructions.GetWorkDone(unit.Name) == 0 &&
				ruleset.ConditionalsApply(u, state) &&
				city.ResourceStockpiles[u.Param(1)] < u.IntParam(0) {
				reasons = append(reasons, reject(RejectionConsumesResources, "costs %s %s", u.Param(0), u.Param(1)))
			}
		}
	}
	return reasons
}

// ShouldBeDisplayed decides build-menu visibility from the full reason
// set: hidden when any reason can never be visible, otherwise shown when
// all reasons allow graying, or when the entry is purchasable despite
// being production-unbuildable.
func ShouldBeDisplayed(reasons []RejectionReason, purchasable bool) bool {
	if len(reasons) == 0 {
		return true
	}
	allShow := true
	unbuildableOnly := true
	for _, r := range reasons {
		if r.Type.IsNeverVisible() {
			return false
		}
		if !r.Type.ShouldShow() {
			allShow = false
		}
		if r.Type != RejectionUnbuildable {
			unbuildableOnly = false
		}
	}
	if allShow {
		return true
	}
	return purchasable && unbuildableOnly
}

// PrimaryRejectionReason picks the highest-precedence reason to display
func PrimaryRejectionReason(reasons []RejectionReason) *RejectionReason {
	var best *RejectionReason
	for i := range reasons {
		if best == nil || reasons[i].Type.Precedence() < best.Type.Precedence() {
			best = &reasons[i]
		}
	}
	return best
}

// CanBePurchasedWithStat reports whether the construction may be bought
// with the given stat. Gold works by default; every other stat needs an
// explicit unique.
func CanBePurchasedWithStat(uniques *ruleset.UniqueMap, stat stats.Stat, state *StateForConditionals) bool {
	if uniques.HasMatchingUnique(ruleset.UniqueCannotBePurchased, state) {
		return false
	}
	if stat == stats.Gold {
		return true
	}
	for _, u := range uniques.GetMatchingUniques(ruleset.UniqueCanBePurchasedWithStat, state) {
		if u.StatParam(0) == stat {
			return true
		}
	}
	for _, u := range uniques.GetMatchingUniques(ruleset.UniqueCanBePurchasedForAmount, state) {
		if u.StatParam(1) == stat {
			return true
		}
	}
	return false
}

// BaseGoldCost is the standard buyout price curve
func BaseGoldCost(productionCost int, hurryModifier float64) int {
	return int(math.Round(math.Pow(30*float64(productionCost), 0.75) * hurryModifier))
}

// StatBuyCost resolves the price in a non-gold stat, falling back to the
// gold curve when no explicit amount is declared
func StatBuyCost(uniques *ruleset.UniqueMap, productionCost int, stat stats.Stat, state *StateForConditionals) (int, bool) {
	for _, u := range uniques.GetMatchingUniques(ruleset.UniqueCanBePurchasedForAmount, state) {
		if u.StatParam(1) == stat {
			return u.IntParam(0), true
		}
	}
	if CanBePurchasedWithStat(uniques, stat, state) {
		return BaseGoldCost(productionCost, 1), true
	}
	return 0, false
}

func cityHasNearbyTileMatching(city *City, filter string) bool {
	for _, tile := range city.Tiles {
		if tile.Pos == city.CenterPos {
			continue
		}
		if tile.MatchesTerrainFilter(filter) {
			return true
		}
	}
	return false
}

func cityHasImprovedResource(g *GameInfo, city *City, resource string) bool {
	res, ok := g.Rules.TileResources[resource]
	if !ok {
		return false
	}
	for _, tile := range city.Tiles {
		if tile.Resource != resource {
			continue
		}
		if res.Improvement == "" || tile.Improvement == res.Improvement {
			return true
		}
	}
	return false
}

func civBuildingCount(g *GameInfo, civ *Civilization, name string) int {
	count := 0
	for _, city := range g.CitiesOf(civ) {
		if city.Constructions.IsBuilt(name) {
			count++
		}
	}
	return count
}

func nationReplacementFor(g *GameInfo, civ *Civilization, buildingName string) string {
	for name, b := range g.Rules.Buildings {
		if b.Replaces == buildingName && b.UniqueTo == civ.NationName {
			return name
		}
	}
	return ""
}

func wonderBuiltAnywhere(g *GameInfo, name string) bool {
	for _, city := range g.Cities {
		if city.Constructions.IsBuilt(name) {
			return true
		}
	}
	return false
}

func wonderBeingBuiltElsewhere(g *GameInfo, civ *Civilization, here *City, name string) bool {
	for _, city := range g.CitiesOf(civ) {
		if city.ID == here.ID {
			continue
		}
		if city.Constructions.CurrentConstruction() == name {
			return true
		}
	}
	return false
}
