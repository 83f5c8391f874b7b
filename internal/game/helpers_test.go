package game

import (
	"testing"

	"github.com/napolitain/civkit/internal/config"
	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/stats"
)

// testRules builds a small validated ruleset shared by the engine tests
func testRules(t *testing.T) *ruleset.Ruleset {
	t.Helper()
	r := ruleset.NewRuleset()
	r.Eras = []ruleset.Era{{Name: "Ancient era"}, {Name: "Classical era"}, {Name: "Industrial era"}}
	r.Technologies["Pottery"] = &ruleset.Technology{Name: "Pottery", Era: "Ancient era"}
	r.Technologies["Writing"] = &ruleset.Technology{Name: "Writing", Era: "Classical era"}
	r.Technologies["Railroads"] = &ruleset.Technology{Name: "Railroads", Era: "Industrial era"}
	r.Specialists["Scientist"] = &ruleset.Specialist{Name: "Scientist", Stats: &stats.Stats{Science: 3}}
	r.TileResources["Iron"] = &ruleset.TileResource{Name: "Iron", Kind: ruleset.ResourceStrategic, Improvement: "Mine", Stats: &stats.Stats{Production: 1}}
	r.Buildings["Monument"] = &ruleset.Building{Name: "Monument", Cost: 40, Maintenance: 1, Stats: &stats.Stats{Culture: 2}}
	r.Buildings["Library"] = &ruleset.Building{
		Name: "Library", Cost: 75, Maintenance: 1,
		Stats:         &stats.Stats{Science: 2},
		RequiredTechs: []string{"Writing"},
	}
	r.Buildings["Workshop"] = &ruleset.Building{
		Name: "Workshop", Cost: 100, Maintenance: 2,
		PercentStats: &stats.Stats{Production: 25},
	}
	r.Buildings["Pyramids"] = &ruleset.Building{Name: "Pyramids", Cost: 185, IsWonder: true}
	r.Units["Warrior"] = &ruleset.BaseUnit{Name: "Warrior", UnitType: "Melee", Cost: 40}
	r.Units["Settler"] = &ruleset.BaseUnit{
		Name: "Settler", UnitType: "Civilian", Cost: 106, IsCivilian: true,
		Uniques: []ruleset.Unique{{Type: ruleset.UniqueConvertFoodToProduction}},
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("test ruleset invalid: %v", err)
	}
	return r
}

// testGame builds a one-civ game with one city holding pop 5 and three
// worked tiles yielding {food 2, production 1} each
func testGame(t *testing.T) (*GameInfo, *Civilization, *City) {
	t.Helper()
	g := NewGameInfo("test-game", testRules(t), config.Default())

	civ := NewCivilization("Rome")
	civ.IsHuman = true
	g.AddCiv(civ)

	city := NewCity("Roma", "Rome", Position{X: 0, Y: 0})
	city.Capital = true
	city.Population.Count = 5
	for i := 1; i <= 3; i++ {
		pos := Position{X: i, Y: 0}
		city.Tiles[pos] = &Tile{Pos: pos, BaseStats: stats.Stats{Food: 2, Production: 1}, Terrain: "Grassland"}
		city.WorkTile(pos, false)
	}
	g.AddCity(city)
	return g, civ, city
}

// addCity founds an extra city for a civ with the given population
func addCity(g *GameInfo, civName, name string, pop int) *City {
	city := NewCity(name, civName, Position{X: 10 + len(g.Cities), Y: 10})
	city.Population.Count = pop
	g.AddCity(city)
	return city
}

// update runs a reconcile plus stats recompute without a shared cache
func update(city *City, g *GameInfo) {
	city.ReconcileWorkedTiles()
	city.Stats.Update(g, nil)
}
