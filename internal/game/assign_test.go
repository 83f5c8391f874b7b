package game

import (
	"testing"

	"github.com/napolitain/civkit/internal/stats"
)

func addTile(city *City, pos Position, s stats.Stats) *Tile {
	tile := &Tile{Pos: pos, BaseStats: s, Terrain: "Grassland"}
	city.Tiles[pos] = tile
	return tile
}

func TestAutoAssignPrefersMixedYieldWhenFed(t *testing.T) {
	g, _, city := testGame(t)
	addTile(city, Position{X: 1, Y: 1}, stats.Stats{Food: 1, Production: 3})
	addTile(city, Position{X: 2, Y: 1}, stats.Stats{Food: 3})
	update(city, g)

	// Pop 5, 3 tiles worked, so two citizens are free
	placed := AutoAssignPopulation(g, city, DefaultAssignStrategy)
	if placed != 2 {
		t.Fatalf("placed = %d, want 2", placed)
	}
	if !city.IsWorked(Position{X: 1, Y: 1}) || !city.IsWorked(Position{X: 2, Y: 1}) {
		t.Error("both free citizens should have been placed")
	}
}

func TestAutoAssignStarvingCityReachesForFood(t *testing.T) {
	g, _, city := testGame(t)
	city.Population.Count = 4
	addTile(city, Position{X: 1, Y: 1}, stats.Stats{Food: 1, Production: 3})
	addTile(city, Position{X: 2, Y: 1}, stats.Stats{Food: 3})
	update(city, g)
	if !city.Stats.IsStarving() {
		t.Fatal("fixture expects a starving city")
	}

	// One free citizen against two candidates
	if placed := AutoAssignPopulation(g, city, DefaultAssignStrategy); placed != 1 {
		t.Fatalf("placed = %d, want 1", placed)
	}
	if !city.IsWorked(Position{X: 2, Y: 1}) {
		t.Error("starving city should take the pure food tile first")
	}
	if city.IsWorked(Position{X: 1, Y: 1}) {
		t.Error("only one citizen was free to place")
	}
}

func TestAutoAssignSkipsCenterAndBlockaded(t *testing.T) {
	g, _, city := testGame(t)
	city.Population.Count = 6
	blocked := addTile(city, Position{X: 1, Y: 1}, stats.Stats{Food: 4, Production: 4})
	blocked.Blockaded = true
	city.CenterTile().BaseStats = stats.Stats{Food: 9}
	update(city, g)

	if placed := AutoAssignPopulation(g, city, DefaultAssignStrategy); placed != 0 {
		t.Fatalf("placed = %d, want 0", placed)
	}
	if city.IsWorked(Position{X: 1, Y: 1}) || city.IsWorked(city.CenterPos) {
		t.Error("blockaded tiles and the center must never be assigned")
	}
}

func TestAutoAssignNoFreeCitizens(t *testing.T) {
	g, _, city := testGame(t)
	city.Population.Count = 3
	addTile(city, Position{X: 1, Y: 1}, stats.Stats{Food: 2})
	update(city, g)

	if placed := AutoAssignPopulation(g, city, DefaultAssignStrategy); placed != 0 {
		t.Fatalf("placed = %d, want 0", placed)
	}
}

func TestNextTurnReassignsAfterBlockade(t *testing.T) {
	g, _, city := testGame(t)
	spare := Position{X: 1, Y: 1}
	addTile(city, spare, stats.Stats{Food: 2, Production: 2})
	city.Population.Count = 3

	city.Tiles[Position{X: 1, Y: 0}].Blockaded = true
	NextTurn(g)

	if city.IsWorked(Position{X: 1, Y: 0}) {
		t.Error("blockaded tile should have been unassigned")
	}
	if !city.IsWorked(spare) {
		t.Error("freed citizen should have moved to the spare tile")
	}
	if city.ShouldReassignPopulation {
		t.Error("reassignment flag should be consumed in the same turn")
	}
}
