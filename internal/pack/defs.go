package pack

import "github.com/footycards/attax-backend/internal/catalog"

const (
	// CardsPerPack is how many cards one pack yields.
	CardsPerPack = 5
	// FreePacksPerDay caps the free daily allowance.
	FreePacksPerDay = 2
	// FreePackTier is the definition used for the daily freebie.
	FreePackTier = "gold"
	// StartingPoints is the balance a fresh account opens with.
	StartingPoints = 1000
)

// Definition is a named purchasable pack configuration.
type Definition struct {
	Name  string
	Price int
	Drops DropTable
}

// Definitions holds every pack tier on offer. All tiers draw from the same
// catalog; only price and drop rates differ.
var Definitions = map[string]Definition{
	"silver": {
		Name:  "Silver Pack",
		Price: 100,
		Drops: DropTable{
			{catalog.RarityIcon, 0.001},
			{catalog.RarityLegendary, 0.005},
			{catalog.RarityEpic, 0.02},
			{catalog.RarityRare, 0.10},
			{catalog.RarityCommon, 0.874},
		},
	},
	"gold": {
		Name:  "Gold Pack",
		Price: 200,
		Drops: DropTable{
			{catalog.RarityIcon, 0.005},
			{catalog.RarityLegendary, 0.01},
			{catalog.RarityEpic, 0.06},
			{catalog.RarityRare, 0.18},
			{catalog.RarityCommon, 0.745},
		},
	},
	"rare": {
		Name:  "Rare Pack",
		Price: 300,
		Drops: DropTable{
			{catalog.RarityIcon, 0.015},
			{catalog.RarityLegendary, 0.03},
			{catalog.RarityEpic, 0.12},
			{catalog.RarityRare, 0.35},
			{catalog.RarityCommon, 0.485},
		},
	},
	"epic": {
		Name:  "Epic Pack",
		Price: 500,
		Drops: DropTable{
			{catalog.RarityIcon, 0.04},
			{catalog.RarityLegendary, 0.08},
			{catalog.RarityEpic, 0.25},
			{catalog.RarityRare, 0.40},
			{catalog.RarityCommon, 0.23},
		},
	},
}

// DuplicatePoints is the per-rarity payout for cards the player already owns.
var DuplicatePoints = map[catalog.Rarity]int{
	catalog.RarityIcon:      500,
	catalog.RarityLegendary: 300,
	catalog.RarityEpic:      80,
	catalog.RarityRare:      20,
	catalog.RarityCommon:    5,
}
