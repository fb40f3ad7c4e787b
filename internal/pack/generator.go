package pack

import (
	"go.uber.org/zap"

	"github.com/footycards/attax-backend/internal/catalog"
)

// Generator draws packs from the shared card catalog.
type Generator struct {
	catalog *catalog.Catalog
	rng     RNG
	log     *zap.Logger
}

func NewGenerator(cat *catalog.Catalog, rng RNG, log *zap.Logger) *Generator {
	return &Generator{catalog: cat, rng: rng, log: log}
}

// Generate draws count cards for the given definition. Each draw rolls a
// rarity, then samples uniformly within that tier. An empty tier is a catalog
// data problem, not a caller problem: the draw falls back to the full catalog
// and the anomaly is logged.
func (g *Generator) Generate(def Definition, count int) []catalog.Card {
	cards := make([]catalog.Card, 0, count)
	for i := 0; i < count; i++ {
		rarity := RollRarity(def.Drops, g.rng)
		n := g.catalog.CountByRarity(rarity)
		if n == 0 {
			g.log.Warn("no cards in rolled rarity, sampling full catalog",
				zap.String("rarity", string(rarity)),
				zap.String("pack", def.Name))
			cards = append(cards, g.catalog.Pick(g.rng.IntN(g.catalog.Size())))
			continue
		}
		cards = append(cards, g.catalog.PickByRarity(rarity, g.rng.IntN(n)))
	}
	return cards
}
