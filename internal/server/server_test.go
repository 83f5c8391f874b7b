package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/napolitain/civkit/internal/config"
	"github.com/napolitain/civkit/internal/game"
	"github.com/napolitain/civkit/internal/ruleset"
	"github.com/napolitain/civkit/internal/save"
	"github.com/napolitain/civkit/internal/stats"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testGame(t *testing.T) (*game.GameInfo, *game.City) {
	t.Helper()
	r := ruleset.NewRuleset()
	r.Eras = []ruleset.Era{{Name: "Ancient era"}}
	r.Buildings["Monument"] = &ruleset.Building{Name: "Monument", Cost: 40, Stats: &stats.Stats{Culture: 2}}
	if err := r.Validate(); err != nil {
		t.Fatalf("ruleset invalid: %v", err)
	}

	g := game.NewGameInfo("server-test", r, config.Default())
	civ := game.NewCivilization("Rome")
	civ.IsHuman = true
	g.AddCiv(civ)
	other := game.NewCivilization("Greece")
	g.AddCiv(other)
	civ.GetDiplomacyManager("Greece")
	other.GetDiplomacyManager("Rome")

	city := game.NewCity("Roma", "Rome", game.Position{X: 0, Y: 0})
	city.Capital = true
	city.Population.Count = 2
	for i := 1; i <= 3; i++ {
		pos := game.Position{X: i, Y: 0}
		city.Tiles[pos] = &game.Tile{Pos: pos, BaseStats: stats.Stats{Food: 2, Production: 1}}
		city.WorkTile(pos, false)
	}
	g.AddCity(city)
	return g, city
}

func doRequest(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestListCities(t *testing.T) {
	g, city := testGame(t)
	router := New(g, nil).Router()

	w := doRequest(router, http.MethodGet, "/cities")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var cities []citySummary
	if err := json.Unmarshal(w.Body.Bytes(), &cities); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(cities) != 1 || cities[0].ID != city.ID || cities[0].Name != "Roma" {
		t.Errorf("cities = %+v", cities)
	}
	if !cities[0].Capital || cities[0].Population != 2 {
		t.Errorf("city summary wrong: %+v", cities[0])
	}
}

func TestCityStatsEndpoint(t *testing.T) {
	g, city := testGame(t)
	router := New(g, nil).Router()

	doRequest(router, http.MethodPost, "/turn")

	w := doRequest(router, http.MethodGet, "/cities/"+city.ID+"/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp cityStatsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(resp.Final) == 0 || len(resp.Happiness) == 0 {
		t.Fatalf("empty breakdowns: %+v", resp)
	}
	// pop 2 on three 2-food tiles nets +2 food a turn
	if resp.Total.Food != 2 {
		t.Errorf("total food = %v, want 2", resp.Total.Food)
	}
	if resp.Starving {
		t.Error("city should not be starving")
	}
}

func TestCityStatsUnknownID(t *testing.T) {
	g, _ := testGame(t)
	router := New(g, nil).Router()

	if w := doRequest(router, http.MethodGet, "/cities/bogus/stats"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDiplomacyEndpoint(t *testing.T) {
	g, _ := testGame(t)
	g.Civs["Rome"].GetDiplomacyManager("Greece").AddModifier("SharedBorders", 20)
	router := New(g, nil).Router()

	w := doRequest(router, http.MethodGet, "/civs/Rome/diplomacy")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var entries []diplomacyEntry
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if len(entries) != 1 || entries[0].Other != "Greece" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Opinion != 20 || entries[0].Relationship != "Favorable" {
		t.Errorf("entry = %+v", entries[0])
	}

	if w := doRequest(router, http.MethodGet, "/civs/Atlantis/diplomacy"); w.Code != http.StatusNotFound {
		t.Errorf("unknown civ status = %d, want 404", w.Code)
	}
}

func TestAdvanceTurn(t *testing.T) {
	g, _ := testGame(t)
	router := New(g, nil).Router()

	w := doRequest(router, http.MethodPost, "/turn")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var summary game.TurnSummary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if summary.Turn != 1 || g.Turn != 1 {
		t.Errorf("turn = %d/%d, want 1", summary.Turn, g.Turn)
	}
}

func TestAdvanceTurnAutosaves(t *testing.T) {
	g, _ := testGame(t)
	store, err := save.Open(filepath.Join(t.TempDir(), "autosave.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	router := New(g, store).Router()

	doRequest(router, http.MethodPost, "/turn")
	doRequest(router, http.MethodPost, "/turn")

	list, err := store.ListSnapshots(context.Background(), g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("snapshots = %d, want one per turn", len(list))
	}
}

func TestTurnFeed(t *testing.T) {
	g, _ := testGame(t)
	srv := httptest.NewServer(New(g, nil).Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var hello struct {
		Turn int `json:"turn"`
	}
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatalf("reading hello frame: %v", err)
	}
	if hello.Turn != 0 {
		t.Errorf("hello turn = %d, want 0", hello.Turn)
	}

	resp, err := http.Post(srv.URL+"/turn", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	var summary game.TurnSummary
	if err := conn.ReadJSON(&summary); err != nil {
		t.Fatalf("reading feed: %v", err)
	}
	if summary.Turn != 1 {
		t.Errorf("feed turn = %d, want 1", summary.Turn)
	}
	if len(summary.CityStats) != 1 {
		t.Errorf("feed city stats = %d entries, want 1", len(summary.CityStats))
	}
}
