package main

import (
	"github.com/napolitain/civkit/internal/config"
	"github.com/napolitain/civkit/internal/game"
	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/stats"
)

// demoGame builds the bundled scenario over the loaded ruleset: three
// majors and a city-state with founded cities, worked tiles, early
// techs, and queued constructions. It stands in for a map generator.
func demoGame(rules *ruleset.Ruleset, opts *config.Options) *game.GameInfo {
	g := game.NewGameInfo("demo", rules, opts)

	rome := game.NewCivilization("Rome")
	rome.IsHuman = true
	rome.TechsResearched["Agriculture"] = true
	rome.TechsResearched["Pottery"] = true
	rome.TechsResearched["Mining"] = true
	g.AddCiv(rome)

	greece := game.NewCivilization("Greece")
	greece.TechsResearched["Agriculture"] = true
	greece.TechsResearched["Writing"] = true
	g.AddCiv(greece)

	egypt := game.NewCivilization("Egypt")
	egypt.TechsResearched["Agriculture"] = true
	g.AddCiv(egypt)

	tyre := game.NewCivilization("Tyre")
	tyre.IsCityState = true
	tyre.CityStateType = "Maritime"
	g.AddCiv(tyre)

	rome.GetDiplomacyManager("Greece")
	greece.GetDiplomacyManager("Rome")
	rome.GetDiplomacyManager("Egypt")
	egypt.GetDiplomacyManager("Rome")
	rome.GetDiplomacyManager("Tyre").Influence = 15

	roma := foundCity(g, "Roma", "Rome", game.Position{X: 0, Y: 0}, 3, [][3]float64{
		{2, 1, 0},
		{1, 2, 0},
		{2, 0, 1},
	})
	roma.Capital = true
	roma.Tiles[game.Position{X: 2, Y: 0}] = &game.Tile{
		Pos:       game.Position{X: 2, Y: 0},
		BaseStats: stats.Stats{Food: 1},
		Terrain:   "Plains",
		Resource:  "Wheat",
	}
	roma.Constructions.EnqueueConstruction("Monument")

	antium := foundCity(g, "Antium", "Rome", game.Position{X: 5, Y: 2}, 2, [][3]float64{
		{1, 2, 0},
		{0, 2, 1},
	})
	antium.Constructions.EnqueueConstruction("Granary")

	athens := foundCity(g, "Athens", "Greece", game.Position{X: 0, Y: 8}, 3, [][3]float64{
		{2, 1, 0},
		{1, 1, 1},
		{2, 1, 0},
	})
	athens.Capital = true
	athens.Constructions.EnqueueConstruction("Monument")

	thebes := foundCity(g, "Thebes", "Egypt", game.Position{X: 8, Y: 8}, 2, [][3]float64{
		{2, 0, 1},
		{2, 1, 0},
	})
	thebes.Capital = true

	foundCity(g, "Tyre", "Tyre", game.Position{X: 8, Y: 0}, 2, [][3]float64{
		{1, 1, 1},
		{2, 0, 1},
	})

	for _, city := range g.Cities {
		city.Stats.Update(g, nil)
	}
	return g
}

// foundCity registers a city with pop citizens each working one tile of
// the given food/production/gold yields
func foundCity(g *game.GameInfo, name, civName string, center game.Position, pop int, yields [][3]float64) *game.City {
	city := game.NewCity(name, civName, center)
	city.Population.Count = pop
	for i, y := range yields {
		pos := game.Position{X: center.X + 1 + i, Y: center.Y + 1}
		city.Tiles[pos] = &game.Tile{
			Pos:       pos,
			BaseStats: stats.Stats{Food: y[0], Production: y[1], Gold: y[2]},
			Terrain:   "Grassland",
		}
		city.WorkTile(pos, false)
	}
	g.AddCity(city)
	return city
}
