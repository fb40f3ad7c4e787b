package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrUnknownStat = errors.New("unknown stat")

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
	RarityIcon      Rarity = "icon"
)

// Rarities lists every tier, rarest first. Probability walks and payout
// lookups iterate this slice so ordering is deterministic everywhere.
var Rarities = []Rarity{RarityIcon, RarityLegendary, RarityEpic, RarityRare, RarityCommon}

func (r Rarity) Valid() bool {
	for _, known := range Rarities {
		if r == known {
			return true
		}
	}
	return false
}

type Stat string

const (
	StatPace      Stat = "pace"
	StatShooting  Stat = "shooting"
	StatPassing   Stat = "passing"
	StatDribbling Stat = "dribbling"
	StatDefending Stat = "defending"
	StatPhysical  Stat = "physical"
)

var Stats = []Stat{StatPace, StatShooting, StatPassing, StatDribbling, StatDefending, StatPhysical}

func ParseStat(s string) (Stat, bool) {
	for _, known := range Stats {
		if Stat(s) == known {
			return known, true
		}
	}
	return "", false
}

type StatLine struct {
	Pace      int `json:"pace"`
	Shooting  int `json:"shooting"`
	Passing   int `json:"passing"`
	Dribbling int `json:"dribbling"`
	Defending int `json:"defending"`
	Physical  int `json:"physical"`
}

// Value returns the line's number for the named stat.
func (s StatLine) Value(stat Stat) (int, error) {
	switch stat {
	case StatPace:
		return s.Pace, nil
	case StatShooting:
		return s.Shooting, nil
	case StatPassing:
		return s.Passing, nil
	case StatDribbling:
		return s.Dribbling, nil
	case StatDefending:
		return s.Defending, nil
	case StatPhysical:
		return s.Physical, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
}

// Card is an immutable catalog entry. Callers receive value copies, so
// mutating a drawn card never touches the catalog.
type Card struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	FullName    string   `json:"fullName"`
	Club        string   `json:"club"`
	Nationality string   `json:"nationality"`
	Position    string   `json:"position"`
	Stats       StatLine `json:"stats"`
	Overall     int      `json:"overall"`
	Rarity      Rarity   `json:"rarity"`
}

// Catalog holds every card, loaded once at startup and never mutated after.
type Catalog struct {
	cards    []Card
	byID     map[string]int
	byRarity map[Rarity][]int
}

func New(cards []Card) (*Catalog, error) {
	// Draw paths index into the card list unconditionally, so an empty
	// catalog is a startup error, not a per-draw concern.
	if len(cards) == 0 {
		return nil, errors.New("catalog has no cards")
	}
	c := &Catalog{
		cards:    make([]Card, len(cards)),
		byID:     make(map[string]int, len(cards)),
		byRarity: make(map[Rarity][]int),
	}
	copy(c.cards, cards)
	for i, card := range c.cards {
		if card.ID == "" {
			return nil, fmt.Errorf("card %d has empty id", i)
		}
		if !card.Rarity.Valid() {
			return nil, fmt.Errorf("card %s has unknown rarity %q", card.ID, card.Rarity)
		}
		if _, dup := c.byID[card.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %s", card.ID)
		}
		c.byID[card.ID] = i
		c.byRarity[card.Rarity] = append(c.byRarity[card.Rarity], i)
	}
	return c, nil
}

// Load reads the card set from a JSON file. Called once from main.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var cards []Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(cards)
}

func (c *Catalog) Size() int { return len(c.cards) }

// Get returns a copy of the card with the given id.
func (c *Catalog) Get(id string) (Card, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Card{}, false
	}
	return c.cards[i], true
}

// CountByRarity reports how many cards exist in the given tier.
func (c *Catalog) CountByRarity(r Rarity) int { return len(c.byRarity[r]) }

// PickByRarity returns a copy of the n-th card of the given tier.
// n must be in [0, CountByRarity(r)).
func (c *Catalog) PickByRarity(r Rarity, n int) Card {
	return c.cards[c.byRarity[r][n]]
}

// Pick returns a copy of the n-th card of the whole catalog.
func (c *Catalog) Pick(n int) Card { return c.cards[n] }
