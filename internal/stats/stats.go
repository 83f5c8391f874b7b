package stats

import (
	"fmt"
	"strings"
)

// Stat identifies one yield channel
type Stat string

const (
	Production Stat = "Production"
	Food       Stat = "Food"
	Gold       Stat = "Gold"
	Science    Stat = "Science"
	Culture    Stat = "Culture"
	Happiness  Stat = "Happiness"
	Faith      Stat = "Faith"
)

// AllStats returns every stat in deterministic order
func AllStats() []Stat {
	return []Stat{Production, Food, Gold, Science, Culture, Happiness, Faith}
}

// ParseStat converts a name into a Stat, reporting unknown names
func ParseStat(name string) (Stat, error) {
	for _, s := range AllStats() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown stat %q", name)
}

// Stats holds one value per yield channel
type Stats struct {
	Production float64 `json:"production,omitempty"`
	Food       float64 `json:"food,omitempty"`
	Gold       float64 `json:"gold,omitempty"`
	Science    float64 `json:"science,omitempty"`
	Culture    float64 `json:"culture,omitempty"`
	Happiness  float64 `json:"happiness,omitempty"`
	Faith      float64 `json:"faith,omitempty"`
}

// New builds an empty Stats value
func New() *Stats {
	return &Stats{}
}

// Get returns the value for a stat
func (s *Stats) Get(stat Stat) float64 {
	switch stat {
	case Production:
		return s.Production
	case Food:
		return s.Food
	case Gold:
		return s.Gold
	case Science:
		return s.Science
	case Culture:
		return s.Culture
	case Happiness:
		return s.Happiness
	case Faith:
		return s.Faith
	}
	return 0
}

// Set assigns the value for a stat
func (s *Stats) Set(stat Stat, value float64) {
	switch stat {
	case Production:
		s.Production = value
	case Food:
		s.Food = value
	case Gold:
		s.Gold = value
	case Science:
		s.Science = value
	case Culture:
		s.Culture = value
	case Happiness:
		s.Happiness = value
	case Faith:
		s.Faith = value
	}
}

// AddStat adds a delta to a single channel
func (s *Stats) AddStat(stat Stat, value float64) {
	s.Set(stat, s.Get(stat)+value)
}

// Add accumulates another Stats value into this one
func (s *Stats) Add(other *Stats) {
	if other == nil {
		return
	}
	s.Production += other.Production
	s.Food += other.Food
	s.Gold += other.Gold
	s.Science += other.Science
	s.Culture += other.Culture
	s.Happiness += other.Happiness
	s.Faith += other.Faith
}

// Plus returns the channel-wise sum without mutating either operand
func (s *Stats) Plus(other *Stats) *Stats {
	out := s.Clone()
	out.Add(other)
	return out
}

// Times returns a copy with every channel scaled by factor
func (s *Stats) Times(factor float64) *Stats {
	return &Stats{
		Production: s.Production * factor,
		Food:       s.Food * factor,
		Gold:       s.Gold * factor,
		Science:    s.Science * factor,
		Culture:    s.Culture * factor,
		Happiness:  s.Happiness * factor,
		Faith:      s.Faith * factor,
	}
}

// Clone returns an independent copy
func (s *Stats) Clone() *Stats {
	c := *s
	return &c
}

// Equals reports channel-wise equality
func (s *Stats) Equals(other *Stats) bool {
	if other == nil {
		return s.IsEmpty()
	}
	return *s == *other
}

// IsEmpty reports whether every channel is zero
func (s *Stats) IsEmpty() bool {
	return *s == Stats{}
}

// String renders the non-zero channels, e.g. "+2 Food, +1 Production"
func (s *Stats) String() string {
	var parts []string
	for _, stat := range AllStats() {
		v := s.Get(stat)
		if v == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%+g %s", v, stat))
	}
	if len(parts) == 0 {
		return "(none)"
	}
	return strings.Join(parts, ", ")
}
