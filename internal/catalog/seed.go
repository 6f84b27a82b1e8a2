// Package catalog loads the card reference data: types, the type-advantage
// relation, cards, and the house deck.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"card-battle/internal/constants"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var embeddedSeed []byte

// Seed is the top-level YAML structure.
type Seed struct {
	Types      []TypeEntry      `yaml:"types"`
	Advantages []AdvantageEntry `yaml:"advantages"`
	Cards      []CardEntry      `yaml:"cards"`
	House      HouseEntry       `yaml:"house"`
}

type TypeEntry struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
}

// AdvantageEntry lists every type the attacker deals bonus damage to.
type AdvantageEntry struct {
	Attacker string   `yaml:"attacker"`
	Defends  []string `yaml:"defends"`
}

type CardEntry struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Attack int64  `yaml:"attack"`
	Type   string `yaml:"type"`
	Image  string `yaml:"image"`
}

type HouseEntry struct {
	UserName string  `yaml:"user_name"`
	DeckName string  `yaml:"deck_name"`
	Cards    []int64 `yaml:"cards"`
}

// Pair is one resolved advantage edge.
type Pair struct {
	Attacker int64
	Defender int64
}

func Embedded() (*Seed, error) {
	return Parse(embeddedSeed)
}

// Parse decodes and validates a seed document.
func Parse(data []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed YAML: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Seed) typeIDs() map[string]int64 {
	ids := make(map[string]int64, len(s.Types))
	for _, t := range s.Types {
		ids[strings.ToLower(t.Name)] = t.ID
	}
	return ids
}

// Pairs resolves advantages to type ids. Cards never appear here: the
// relation is over types only.
func (s *Seed) Pairs() []Pair {
	ids := s.typeIDs()
	var pairs []Pair
	for _, a := range s.Advantages {
		for _, d := range a.Defends {
			pairs = append(pairs, Pair{Attacker: ids[strings.ToLower(a.Attacker)], Defender: ids[strings.ToLower(d)]})
		}
	}
	return pairs
}

func (s *Seed) TypeID(name string) int64 {
	return s.typeIDs()[strings.ToLower(name)]
}

func (s *Seed) validate() error {
	if len(s.Types) == 0 {
		return fmt.Errorf("seed has no types")
	}

	typeIDs := make(map[int64]bool, len(s.Types))
	names := make(map[string]bool, len(s.Types))
	for _, t := range s.Types {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		if key == "" {
			return fmt.Errorf("type %d has no name", t.ID)
		}
		if typeIDs[t.ID] || names[key] {
			return fmt.Errorf("duplicate type %d %q", t.ID, t.Name)
		}
		typeIDs[t.ID] = true
		names[key] = true
	}

	edges := make(map[Pair]bool)
	for _, a := range s.Advantages {
		if !names[strings.ToLower(a.Attacker)] {
			return fmt.Errorf("advantage references unknown type %q", a.Attacker)
		}
		for _, d := range a.Defends {
			if !names[strings.ToLower(d)] {
				return fmt.Errorf("advantage references unknown type %q", d)
			}
		}
	}
	for _, p := range s.Pairs() {
		if p.Attacker == p.Defender {
			return fmt.Errorf("type %d cannot have an advantage over itself", p.Attacker)
		}
		if edges[Pair{Attacker: p.Defender, Defender: p.Attacker}] {
			return fmt.Errorf("advantage between types %d and %d is declared both ways", p.Attacker, p.Defender)
		}
		edges[p] = true
	}

	cardIDs := make(map[int64]bool, len(s.Cards))
	for _, c := range s.Cards {
		if cardIDs[c.ID] {
			return fmt.Errorf("duplicate card %d", c.ID)
		}
		if c.Attack <= 0 {
			return fmt.Errorf("card %d has non-positive attack %d", c.ID, c.Attack)
		}
		if !names[strings.ToLower(c.Type)] {
			return fmt.Errorf("card %d references unknown type %q", c.ID, c.Type)
		}
		cardIDs[c.ID] = true
	}

	if len(s.House.Cards) != constants.DeckSize {
		return fmt.Errorf("house deck needs %d cards, has %d", constants.DeckSize, len(s.House.Cards))
	}
	seen := make(map[int64]bool, len(s.House.Cards))
	for _, id := range s.House.Cards {
		if !cardIDs[id] {
			return fmt.Errorf("house deck references unknown card %d", id)
		}
		if seen[id] {
			return fmt.Errorf("house deck repeats card %d", id)
		}
		seen[id] = true
	}
	return nil
}
