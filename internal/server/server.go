// Package server exposes a running game over a read-mostly HTTP API with
// a websocket feed of turn summaries. One mutex owns all game mutation;
// every handler reads or advances under it.
package server

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/napolitain/civkit/internal/game"
	"github.com/napolitain/civkit/internal/save"
	"github.com/napolitain/civkit/internal/stats"
)

// Server serves one game
type Server struct {
	mu    sync.Mutex
	game  *game.GameInfo
	store *save.Store

	upgrader websocket.Upgrader

	subMu       sync.Mutex
	subscribers map[*websocket.Conn]bool
}

// New wraps a game for serving. store may be nil to disable autosaving.
func New(g *game.GameInfo, store *save.Store) *Server {
	return &Server{
		game:  g,
		store: store,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subscribers: make(map[*websocket.Conn]bool),
	}
}

// Router builds the HTTP routes
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/cities", s.listCities)
	router.GET("/cities/:id/stats", s.cityStats)
	router.GET("/civs/:name/diplomacy", s.civDiplomacy)
	router.POST("/turn", s.advanceTurn)
	router.GET("/ws", s.turnFeed)
	return router
}

type citySummary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Civ        string  `json:"civ"`
	Population int     `json:"population"`
	Capital    bool    `json:"capital,omitempty"`
	Puppet     bool    `json:"puppet,omitempty"`
	Food       float64 `json:"food"`
	Production float64 `json:"production"`
	Gold       float64 `json:"gold"`
	Science    float64 `json:"science"`
	Culture    float64 `json:"culture"`
}

func (s *Server) listCities(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]citySummary, 0, len(s.game.Cities))
	for _, name := range s.game.CivOrder() {
		civ := s.game.Civs[name]
		for _, city := range s.game.CitiesOf(civ) {
			current := city.Stats.CurrentCityStats
			out = append(out, citySummary{
				ID:         city.ID,
				Name:       city.Name,
				Civ:        city.CivName,
				Population: city.Population.Count,
				Capital:    city.Capital,
				Puppet:     city.Puppet,
				Food:       current.Food,
				Production: current.Production,
				Gold:       current.Gold,
				Science:    current.Science,
				Culture:    current.Culture,
			})
		}
	}
	c.JSON(http.StatusOK, out)
}

type statEntry struct {
	Source string       `json:"source"`
	Stats  *stats.Stats `json:"stats"`
}

type happinessEntry struct {
	Source string  `json:"source"`
	Value  float64 `json:"value"`
}

type cityStatsResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Final     []statEntry      `json:"final"`
	Total     *stats.Stats     `json:"total"`
	Happiness []happinessEntry `json:"happiness"`
	Starving  bool             `json:"starving,omitempty"`
}

func (s *Server) cityStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	city, ok := s.game.Cities[c.Param("id")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown city"})
		return
	}

	resp := cityStatsResponse{
		ID:       city.ID,
		Name:     city.Name,
		Total:    city.Stats.CurrentCityStats,
		Starving: city.Stats.IsStarving(),
	}
	for _, source := range city.Stats.FinalStatList.Names() {
		resp.Final = append(resp.Final, statEntry{Source: source, Stats: city.Stats.FinalStatList.Get(source)})
	}
	for _, source := range city.Stats.Happiness.Names() {
		resp.Happiness = append(resp.Happiness, happinessEntry{Source: source, Value: city.Stats.Happiness.Get(source)})
	}
	c.JSON(http.StatusOK, resp)
}

type diplomacyEntry struct {
	Other        string  `json:"other"`
	Status       string  `json:"status"`
	Opinion      float64 `json:"opinion"`
	Influence    float64 `json:"influence,omitempty"`
	Relationship string  `json:"relationship"`
}

func (s *Server) civDiplomacy(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	civ, ok := s.game.Civs[c.Param("name")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown civ"})
		return
	}

	out := make([]diplomacyEntry, 0, len(civ.Diplomacy))
	for _, other := range s.game.CivOrder() {
		d, ok := civ.Diplomacy[other]
		if !ok {
			continue
		}
		entry := diplomacyEntry{
			Other:        other,
			Status:       string(d.Status),
			Opinion:      d.OpinionOfOtherCiv(),
			Relationship: d.RelationshipLevel(s.game).String(),
		}
		if civ.IsCityState {
			entry.Influence = d.GetInfluence()
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) advanceTurn(c *gin.Context) {
	s.mu.Lock()
	summary := game.NextTurn(s.game)
	s.autosaveLocked(c)
	s.mu.Unlock()

	s.broadcast(summary)
	c.JSON(http.StatusOK, summary)
}

// autosaveLocked snapshots the game per the configured cadence. Failures
// surface as a response header rather than failing the turn.
func (s *Server) autosaveLocked(c *gin.Context) {
	cadence := s.game.Options.AutosaveEveryTurn
	if s.store == nil || cadence <= 0 || s.game.Turn%cadence != 0 {
		return
	}
	if _, err := s.store.SaveSnapshot(c.Request.Context(), s.game); err != nil {
		c.Header("X-Autosave-Error", err.Error())
	}
}

func (s *Server) turnFeed(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.subMu.Lock()
	s.subscribers[conn] = true
	s.subMu.Unlock()

	// the first frame carries the current turn so clients know the
	// subscription is live before any advance happens
	s.mu.Lock()
	turn := s.game.Turn
	s.mu.Unlock()
	if err := conn.WriteJSON(gin.H{"turn": turn}); err != nil {
		s.dropSubscriber(conn)
		return
	}

	// the feed is write-only past the hello; reading drains control
	// frames and detects the peer going away
	go func() {
		defer s.dropSubscriber(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) dropSubscriber(conn *websocket.Conn) {
	s.subMu.Lock()
	delete(s.subscribers, conn)
	s.subMu.Unlock()
	conn.Close()
}

// broadcast pushes a turn summary to every feed subscriber
func (s *Server) broadcast(summary *game.TurnSummary) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for conn := range s.subscribers {
		if err := conn.WriteJSON(summary); err != nil {
			delete(s.subscribers, conn)
			conn.Close()
		}
	}
}
