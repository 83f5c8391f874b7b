package save

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/napolitain/civkit/internal/config"
	"github.com/napolitain/civkit/internal/game"
	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/stats"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleGame(t *testing.T) (*game.GameInfo, *ruleset.Ruleset) {
	t.Helper()
	r := ruleset.NewRuleset()
	r.Eras = []ruleset.Era{{Name: "Ancient era"}}
	r.Buildings["Monument"] = &ruleset.Building{Name: "Monument", Cost: 40, Stats: &stats.Stats{Culture: 2}}
	if err := r.Validate(); err != nil {
		t.Fatalf("ruleset invalid: %v", err)
	}

	g := game.NewGameInfo("save-test", r, config.Default())
	civ := game.NewCivilization("Rome")
	g.AddCiv(civ)
	other := game.NewCivilization("Greece")
	g.AddCiv(other)
	civ.GetDiplomacyManager("Greece").AddModifier("SharedBorders", 12)

	boost := ruleset.Unique{Type: ruleset.UniqueStats, Stats: &stats.Stats{Production: 5}}
	if err := boost.Validate("Triumph"); err != nil {
		t.Fatal(err)
	}
	civ.TemporaryUniques = []game.TemporaryUnique{{Unique: boost, TurnsLeft: 3}}

	city := game.NewCity("Roma", "Rome", game.Position{X: 0, Y: 0})
	city.Population.Count = 4
	pos := game.Position{X: 1, Y: 0}
	city.Tiles[pos] = &game.Tile{Pos: pos, BaseStats: stats.Stats{Food: 2, Production: 1}}
	city.WorkTile(pos, true)
	city.Constructions.AddBuilding("Monument")
	city.Constructions.EnqueueConstruction("Monument")
	g.AddCity(city)
	return g, r
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	g, rules := sampleGame(t)
	g.Turn = 7

	id, err := store.SaveSnapshot(ctx, g)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded, err := store.LoadSnapshot(ctx, id, rules, g.Options)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.Turn != 7 || loaded.ID != "save-test" {
		t.Errorf("loaded turn/id = %d/%s", loaded.Turn, loaded.ID)
	}

	var city *game.City
	for _, c := range loaded.Cities {
		city = c
	}
	if city == nil {
		t.Fatal("city lost in round trip")
	}
	if city.Population.Count != 4 {
		t.Errorf("population = %d, want 4", city.Population.Count)
	}
	if !city.Constructions.IsBuilt("Monument") {
		t.Error("built building lost in round trip")
	}
	if city.Constructions.CurrentConstruction() != "Monument" {
		t.Error("build queue lost in round trip")
	}
	if !city.IsWorked(game.Position{X: 1, Y: 0}) {
		t.Error("worked tile lost in round trip")
	}
	if !city.LockedTiles[game.Position{X: 1, Y: 0}] {
		t.Error("tile lock lost in round trip")
	}

	rome := loaded.Civs["Rome"]
	if rome == nil {
		t.Fatal("civ lost in round trip")
	}
	if got := rome.GetDiplomacyManager("Greece").Modifiers["SharedBorders"]; got != 12 {
		t.Errorf("diplomacy modifier = %v, want 12", got)
	}
	if len(rome.TemporaryUniques) != 1 {
		t.Fatalf("temporary uniques = %+v, want 1", rome.TemporaryUniques)
	}
	if tu := rome.TemporaryUniques[0]; tu.TurnsLeft != 3 || tu.Unique.SourceName != "Triumph" {
		t.Errorf("temporary unique lost data: %+v", tu)
	}

	// the restored game must be playable without further setup
	summary := game.NextTurn(loaded)
	if summary.Turn != 8 {
		t.Errorf("turn after load = %d, want 8", summary.Turn)
	}
}

func TestCivOrderSurvivesRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	g, rules := sampleGame(t)
	g.AddCiv(game.NewCivilization("Babylon"))

	// registration order, deliberately not alphabetical
	want := []string{"Rome", "Greece", "Babylon"}
	id, err := store.SaveSnapshot(ctx, g)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	loaded, err := store.LoadSnapshot(ctx, id, rules, g.Options)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	got := loaded.CivOrder()
	if len(got) != len(want) {
		t.Fatalf("civ order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("civ order = %v, want %v", got, want)
		}
	}
}

func TestLatestAndList(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	g, _ := sampleGame(t)

	first, err := store.SaveSnapshot(ctx, g)
	if err != nil {
		t.Fatal(err)
	}
	g.Turn = 3
	second, err := store.SaveSnapshot(ctx, g)
	if err != nil {
		t.Fatal(err)
	}

	latest, err := store.LatestSnapshot(ctx, g.ID)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest != second {
		t.Errorf("latest = %s, want %s", latest, second)
	}

	list, err := store.ListSnapshots(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 2 || list[0].ID != first || list[1].ID != second {
		t.Errorf("list order wrong: %+v", list)
	}
	if list[1].Turn != 3 {
		t.Errorf("list turn = %d, want 3", list[1].Turn)
	}
}

func TestPrune(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	g, _ := sampleGame(t)

	for turn := 1; turn <= 5; turn++ {
		g.Turn = turn
		if _, err := store.SaveSnapshot(ctx, g); err != nil {
			t.Fatal(err)
		}
	}
	if err := store.Prune(ctx, g.ID, 2); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	list, err := store.ListSnapshots(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Turn != 4 || list[1].Turn != 5 {
		t.Errorf("pruned list wrong: %+v", list)
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	store := testStore(t)
	if _, err := store.LoadSnapshot(context.Background(), "no-such-id", nil, nil); err == nil {
		t.Fatal("missing snapshot did not error")
	}
}
