package game

import (
	"fmt"
	"sort"

	"github.com/napolitain/civkit/internal/stats"
)

// AssignStrategy weights tile yields when placing citizens. FoodLead is
// added to the food weight while the city is short of its eaten food, so
// a starving city always reaches for farms first.
type AssignStrategy struct {
	Food       float64
	Production float64
	Gold       float64
	FoodLead   float64
}

// DefaultAssignStrategy balances growth against output the way the
// default governor does.
var DefaultAssignStrategy = AssignStrategy{Food: 1.0, Production: 0.8, Gold: 0.4, FoodLead: 2.0}

func (s AssignStrategy) String() string {
	return fmt.Sprintf("F%.1f/P%.1f/G%.1f", s.Food, s.Production, s.Gold)
}

// score ranks one tile's yield under the strategy
func (s AssignStrategy) score(yield *stats.Stats, starving bool) float64 {
	food := s.Food
	if starving {
		food += s.FoodLead
	}
	return yield.Food*food + yield.Production*s.Production + yield.Gold*s.Gold +
		0.3*(yield.Science+yield.Culture+yield.Faith)
}

// AutoAssignPopulation places free citizens onto the best unworked
// tiles, greedily by strategy score. Locked tiles are never touched and
// the city center is never assigned. Returns the number of citizens
// placed.
func AutoAssignPopulation(g *GameInfo, city *City, strategy AssignStrategy) int {
	free := city.Population.FreePopulation() - len(city.WorkedTiles)
	if free <= 0 {
		return 0
	}

	starving := city.Stats.IsStarving()

	type candidate struct {
		pos   Position
		score float64
	}
	var candidates []candidate
	for pos, tile := range city.Tiles {
		if pos == city.CenterPos || city.WorkedTiles[pos] || tile.Blockaded || tile.YieldsWithoutPopulation {
			continue
		}
		candidates = append(candidates, candidate{pos, strategy.score(tile.Yield(g.Rules), starving)})
	}
	// Deterministic across runs: ties break on position
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].pos.String() < candidates[j].pos.String()
	})

	placed := 0
	for _, c := range candidates {
		if placed == free {
			break
		}
		city.WorkTile(c.pos, false)
		placed++
	}
	return placed
}
