package pack

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/footycards/attax-backend/internal/catalog"
)

// seqRNG replays a fixed sequence of draws.
type seqRNG struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *seqRNG) Float64() float64 {
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *seqRNG) IntN(n int) int {
	v := r.ints[r.ii%len(r.ints)] % n
	r.ii++
	return v
}

func TestDropTableValidate(t *testing.T) {
	cases := []struct {
		name    string
		table   DropTable
		wantErr bool
	}{
		{
			name: "valid table",
			table: DropTable{
				{catalog.RarityRare, 0.25},
				{catalog.RarityCommon, 0.75},
			},
		},
		{
			name: "sum off by more than tolerance",
			table: DropTable{
				{catalog.RarityRare, 0.25},
				{catalog.RarityCommon, 0.70},
			},
			wantErr: true,
		},
		{
			name: "repeated rarity",
			table: DropTable{
				{catalog.RarityCommon, 0.5},
				{catalog.RarityCommon, 0.5},
			},
			wantErr: true,
		},
		{
			name: "negative chance",
			table: DropTable{
				{catalog.RarityRare, -0.1},
				{catalog.RarityCommon, 1.1},
			},
			wantErr: true,
		},
		{
			name: "unknown rarity",
			table: DropTable{
				{"mythic", 1.0},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.table.Validate()
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}

func TestAllDefinitionsHaveValidTables(t *testing.T) {
	for name, def := range Definitions {
		if err := def.Drops.Validate(); err != nil {
			t.Errorf("pack %q: %v", name, err)
		}
	}
}

func TestRollRarity_PicksByCumulativeMass(t *testing.T) {
	table := DropTable{
		{catalog.RarityIcon, 0.01},
		{catalog.RarityLegendary, 0.04},
		{catalog.RarityEpic, 0.15},
		{catalog.RarityRare, 0.30},
		{catalog.RarityCommon, 0.50},
	}

	cases := []struct {
		draw float64
		want catalog.Rarity
	}{
		{0.0, catalog.RarityIcon},
		{0.009, catalog.RarityIcon},
		{0.01, catalog.RarityLegendary},
		{0.049, catalog.RarityLegendary},
		{0.05, catalog.RarityEpic},
		{0.2, catalog.RarityRare},
		{0.5, catalog.RarityCommon},
		{0.999, catalog.RarityCommon},
	}
	for _, tc := range cases {
		rng := &seqRNG{floats: []float64{tc.draw}, ints: []int{0}}
		if got := RollRarity(table, rng); got != tc.want {
			t.Errorf("draw %v: got %s, want %s", tc.draw, got, tc.want)
		}
	}
}

// A draw beyond the accumulated mass (floating drift) must resolve to
// common, not panic or fall through.
func TestRollRarity_DriftFallsBackToCommon(t *testing.T) {
	table := DropTable{
		{catalog.RarityIcon, 0.5},
		{catalog.RarityLegendary, 0.4999999},
	}
	rng := &seqRNG{floats: []float64{0.99999999}, ints: []int{0}}
	if got := RollRarity(table, rng); got != catalog.RarityCommon {
		t.Fatalf("got %s, want fallback common", got)
	}
}

func TestRollRarity_FrequenciesConverge(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}

	table := Definitions["gold"].Drops
	rng := rand.New(rand.NewPCG(42, 1))

	const draws = 200000
	counts := make(map[catalog.Rarity]int)
	for i := 0; i < draws; i++ {
		counts[RollRarity(table, rng)]++
	}

	for _, tc := range table {
		got := float64(counts[tc.Rarity]) / draws
		// Three-sigma band around the configured probability.
		sigma := math.Sqrt(tc.Chance * (1 - tc.Chance) / draws)
		if math.Abs(got-tc.Chance) > 3*sigma+1e-4 {
			t.Errorf("rarity %s: frequency %v too far from %v", tc.Rarity, got, tc.Chance)
		}
	}
}
