package pack

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	"github.com/footycards/attax-backend/internal/catalog"
)

// RNG is the randomness the pack engine consumes. *rand.Rand satisfies it;
// tests substitute fixed sequences.
type RNG interface {
	Float64() float64
	IntN(n int) int
}

// NewRNG builds a PCG generator seeded from crypto/rand.
func NewRNG() (RNG, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(b[:8]),
		binary.LittleEndian.Uint64(b[8:]),
	)), nil
}

// TierChance is one (rarity, probability) pair of a drop table.
type TierChance struct {
	Rarity catalog.Rarity
	Chance float64
}

// DropTable is an ordered list of tier chances summing to 1.0 within
// floating tolerance. Iteration order is fixed so a given draw always
// resolves to the same tier.
type DropTable []TierChance

const dropTableTolerance = 1e-6

func (t DropTable) Validate() error {
	sum := 0.0
	seen := make(map[catalog.Rarity]bool, len(t))
	for _, tc := range t {
		if !tc.Rarity.Valid() {
			return fmt.Errorf("drop table has unknown rarity %q", tc.Rarity)
		}
		if seen[tc.Rarity] {
			return fmt.Errorf("drop table repeats rarity %q", tc.Rarity)
		}
		if tc.Chance < 0 {
			return fmt.Errorf("drop table has negative chance for %q", tc.Rarity)
		}
		seen[tc.Rarity] = true
		sum += tc.Chance
	}
	if diff := sum - 1.0; diff > dropTableTolerance || diff < -dropTableTolerance {
		return fmt.Errorf("drop table sums to %v, want 1.0", sum)
	}
	return nil
}

// RollRarity draws one tier from the table. Walks the tiers in order,
// accumulating probability mass, and returns the first tier whose cumulative
// mass exceeds the draw. If rounding leaves the draw unresolved the roll
// falls back to common instead of failing.
func RollRarity(table DropTable, rng RNG) catalog.Rarity {
	roll := rng.Float64()
	cumulative := 0.0
	for _, tc := range table {
		cumulative += tc.Chance
		if roll < cumulative {
			return tc.Rarity
		}
	}
	return catalog.RarityCommon
}
