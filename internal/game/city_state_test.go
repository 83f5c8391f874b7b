package game

import (
	"testing"

	"github.com/napolitain/civkit/internal/config"
)

// tributeGame sets up a tributable city-state, a strong demander, and a
// protector that knows the demander
func tributeGame(t *testing.T) (*GameInfo, *Civilization, *Civilization, *Civilization) {
	t.Helper()
	g := NewGameInfo("tribute", testRules(t), config.Default())

	demander := NewCivilization("Rome")
	demander.MilitaryRank = 0
	demander.LocalForceAdvantage = 4
	g.AddCiv(demander)

	protector := NewCivilization("Greece")
	g.AddCiv(protector)

	cs := NewCivilization("Tyre")
	cs.IsCityState = true
	g.AddCiv(cs)
	addCity(g, "Tyre", "Tyre", 6)

	demander.GetDiplomacyManager(cs.Name)
	cs.GetDiplomacyManager(demander.Name)
	protector.GetDiplomacyManager(demander.Name)
	demander.GetDiplomacyManager(protector.Name)
	PledgeProtection(g, protector, cs.Name)

	return g, cs, demander, protector
}

func TestTributeGold(t *testing.T) {
	g, cs, demander, protector := tributeGame(t)

	gold := TributeGold(g, cs, demander)
	if gold != 50 {
		t.Errorf("tribute gold = %d, want 50", gold)
	}
	if demander.Gold != 50 {
		t.Errorf("demander gold = %v, want 50", demander.Gold)
	}
	if got := cs.GetDiplomacyManager(demander.Name).GetInfluence(); got != -15 {
		t.Errorf("influence = %v, want -15", got)
	}
	if got := cs.Flags[FlagRecentlyBullied]; got != 20 {
		t.Errorf("bullied flag = %d turns, want 20", got)
	}
	if got := protector.GetDiplomacyManager(demander.Name).Modifiers[ModifierBulliedProtectedMinor]; got != -15 {
		t.Errorf("protector grievance = %v, want -15", got)
	}
}

func TestRepeatTributeUsesReducedPenalty(t *testing.T) {
	g, cs, demander, protector := tributeGame(t)

	TributeGold(g, cs, demander)
	// clear the city-state's own memory so willingness recovers, the
	// protector's memory flag stays fresh
	delete(cs.Flags, FlagRecentlyBullied)

	TributeGold(g, cs, demander)
	d := protector.GetDiplomacyManager(demander.Name)
	if got := d.Modifiers[ModifierBulliedProtectedMinor]; got != -25 {
		t.Errorf("accumulated grievance = %v, want -15 + -10", got)
	}
	if d.FlagTurns(FlagRememberBulliedProtectedMinor) != 75 {
		t.Errorf("memory flag = %d, want refreshed to 75", d.FlagTurns(FlagRememberBulliedProtectedMinor))
	}
}

func TestRecentBullyingBlocksTribute(t *testing.T) {
	g, cs, demander, _ := tributeGame(t)

	TributeGold(g, cs, demander)
	if got := TributeGold(g, cs, demander); got != 0 {
		t.Errorf("back-to-back tribute yielded %d gold", got)
	}
}

func TestTributeGoldScalesWithEra(t *testing.T) {
	g, _, demander, _ := tributeGame(t)

	if got := GoldGainedByTribute(g, demander); got != 50 {
		t.Errorf("ancient tribute = %d, want 50", got)
	}
	demander.EraName = "Industrial era"
	if got := GoldGainedByTribute(g, demander); got != 60 {
		t.Errorf("industrial tribute = %d, want 60", got)
	}
}

func TestWorkerTributeNeedsBiggerCityState(t *testing.T) {
	g, cs, demander, _ := tributeGame(t)

	if !TributeWorker(g, cs, demander) {
		t.Fatal("worker tribute refused despite overwhelming force")
	}
	if got := cs.GetDiplomacyManager(demander.Name).GetInfluence(); got != -50 {
		t.Errorf("influence = %v, want -50", got)
	}

	// shrink the city-state below the worker threshold
	g2, cs2, demander2, _ := tributeGame(t)
	g2.Cities[cs2.CityIDs[0]].Population.Count = 3
	if TributeWorker(g2, cs2, demander2) {
		t.Error("worker tribute granted by a small city-state")
	}
}

func TestWeakDemanderRefused(t *testing.T) {
	g, cs, demander, _ := tributeGame(t)
	demander.MilitaryRank = 5
	demander.LocalForceAdvantage = 0

	if got := TributeWillingness(g, cs, demander, false); got > 0 {
		t.Errorf("willingness = %v, want refusal", got)
	}
	if TributeGold(g, cs, demander) != 0 {
		t.Error("weak demander extracted gold")
	}
}

func TestRivalAllyHardensCityState(t *testing.T) {
	g, cs, demander, protector := tributeGame(t)
	cs.GetDiplomacyManager(protector.Name).SetInfluence(70)

	base := TributeWillingness(g, cs, demander, false)
	cs.GetDiplomacyManager(protector.Name).SetInfluence(0)
	without := TributeWillingness(g, cs, demander, false)
	if base != without-10 {
		t.Errorf("rival ally penalty: with=%v without=%v", base, without)
	}
}
