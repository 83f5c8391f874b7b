package game

import (
	"testing"

	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/stats"
)

func TestNextTurnGrowth(t *testing.T) {
	g, _, city := testGame(t)
	city.Population.Count = 2

	// 6 food from tiles minus 4 eaten leaves +2 a turn against a
	// threshold of 22
	NextTurn(g)
	if city.Population.FoodStored != 2 {
		t.Errorf("stored food = %v, want 2", city.Population.FoodStored)
	}
	for i := 0; i < 10; i++ {
		NextTurn(g)
	}
	if city.Population.Count != 3 {
		t.Errorf("population = %d, want 3 after eleven turns", city.Population.Count)
	}
	if city.Population.FoodStored != 0 {
		t.Errorf("stored food = %v, want 0 after growing", city.Population.FoodStored)
	}
	if !city.ShouldReassignPopulation {
		t.Error("growth did not request reassignment")
	}
}

func TestStarvationNeverDropsBelowOne(t *testing.T) {
	g, _, city := testGame(t)

	// pop 5 eats more than the tiles yield; shrinking stops once the
	// food balance recovers
	for i := 0; i < 20; i++ {
		NextTurn(g)
		if city.Population.Count < 1 {
			t.Fatalf("population fell to %d", city.Population.Count)
		}
	}
	if city.Population.Count != 3 {
		t.Errorf("population = %d, want starvation to settle at 3", city.Population.Count)
	}
	if city.Stats.IsStarving() {
		t.Error("settled city still starving")
	}
}

func TestNextTurnCompletesConstruction(t *testing.T) {
	g, _, city := testGame(t)
	city.Constructions.EnqueueConstruction("Monument")
	city.Constructions.WorkDone["Monument"] = 36

	summary := NextTurn(g)
	turn := summary.CityStats[city.ID]
	if turn.Completed != "Monument" {
		t.Errorf("completed = %q, want Monument", turn.Completed)
	}
	if !city.Constructions.IsBuilt("Monument") {
		t.Error("completed building not standing")
	}
	if city.Constructions.CurrentConstruction() != PerpetualNothing {
		t.Errorf("queue head = %q, want %q", city.Constructions.CurrentConstruction(), PerpetualNothing)
	}
}

func TestNextTurnFlagCountdowns(t *testing.T) {
	g, civ, _ := testGame(t)
	other := NewCivilization("Greece")
	g.AddCiv(other)
	civ.SetFlag("TestFlag", 2)
	civ.GetDiplomacyManager(other.Name).SetFlag(FlagPeaceTreaty, 1)

	NextTurn(g)
	if civ.Flags["TestFlag"] != 1 {
		t.Errorf("civ flag = %d, want 1", civ.Flags["TestFlag"])
	}
	if civ.GetDiplomacyManager(other.Name).HasFlag(FlagPeaceTreaty) {
		t.Error("diplomacy flag survived its last turn")
	}

	NextTurn(g)
	if _, ok := civ.Flags["TestFlag"]; ok {
		t.Error("civ flag survived reaching zero")
	}
}

func TestNextTurnExpiresTemporaryUniques(t *testing.T) {
	g, civ, _ := testGame(t)
	civ.TemporaryUniques = []TemporaryUnique{{
		Unique:    ruleset.Unique{Type: ruleset.UniqueStats, Stats: &stats.Stats{Culture: 2}},
		TurnsLeft: 2,
	}}

	NextTurn(g)
	if len(civ.TemporaryUniques) != 1 || civ.TemporaryUniques[0].TurnsLeft != 1 {
		t.Fatalf("temporary uniques after one turn: %+v", civ.TemporaryUniques)
	}
	NextTurn(g)
	if len(civ.TemporaryUniques) != 0 {
		t.Errorf("temporary unique survived expiry: %+v", civ.TemporaryUniques)
	}
}

func TestNextTurnSkipsDefeatedCivs(t *testing.T) {
	g, civ, city := testGame(t)
	civ.Defeated = true
	civ.SetFlag("TestFlag", 5)

	summary := NextTurn(g)
	if len(summary.CityStats) != 0 {
		t.Error("defeated civ's cities were processed")
	}
	if civ.Flags["TestFlag"] != 5 {
		t.Error("defeated civ's flags were aged")
	}
	if city.Population.FoodStored != 0 {
		t.Error("defeated civ's city changed")
	}
}

func TestNextTurnGoldenAgeDecrement(t *testing.T) {
	g, civ, _ := testGame(t)
	civ.GoldenAgeTurns = 2

	NextTurn(g)
	if civ.GoldenAgeTurns != 1 {
		t.Errorf("golden age turns = %d, want 1", civ.GoldenAgeTurns)
	}
	NextTurn(g)
	if civ.IsGoldenAge() {
		t.Error("golden age survived its last turn")
	}
}

func TestNextTurnAccumulatesGold(t *testing.T) {
	g, civ, city := testGame(t)
	city.Constructions.AddBuilding("Monument")

	// maintenance of one gold is the city's only gold flow
	NextTurn(g)
	if civ.Gold != -1 {
		t.Errorf("civ gold = %v, want -1", civ.Gold)
	}
}

func TestTurnSummaryContents(t *testing.T) {
	g, _, city := testGame(t)

	summary := NextTurn(g)
	if summary.Turn != 1 || g.Turn != 1 {
		t.Errorf("turn = %d/%d, want 1", summary.Turn, g.Turn)
	}
	turn, ok := summary.CityStats[city.ID]
	if !ok {
		t.Fatal("city missing from summary")
	}
	if turn.Food != -4 || !turn.Starving {
		t.Errorf("food = %v starving = %v, want -4 and true", turn.Food, turn.Starving)
	}
	// population is recorded after growth settles
	if turn.Population != 4 {
		t.Errorf("population = %d, want 4", turn.Population)
	}
	if got := summary.Happiness["Rome"]; got != 1 {
		t.Errorf("happiness = %v, want 9 base - 3 city - 5 population", got)
	}
}
