package pack

import "github.com/footycards/attax-backend/internal/catalog"

// ReconcileResult partitions a freshly drawn pack against an existing
// collection. Every input card lands in exactly one of the two lists.
type ReconcileResult struct {
	NewCards   []catalog.Card
	Duplicates []catalog.Card
	Points     int
}

// Reconcile classifies each drawn card by membership in the owned set taken
// as a snapshot before the pack was opened. A card drawn twice in one pack
// that the player never owned counts as new both times and earns nothing for
// the second copy; ownership collapses to membership when persisted anyway.
// Pure projection: persisting the result is the caller's job.
func Reconcile(cards []catalog.Card, ownedIDs map[string]bool) ReconcileResult {
	res := ReconcileResult{
		NewCards:   []catalog.Card{},
		Duplicates: []catalog.Card{},
	}
	for _, card := range cards {
		if ownedIDs[card.ID] {
			res.Duplicates = append(res.Duplicates, card)
			res.Points += DuplicatePoints[card.Rarity]
		} else {
			res.NewCards = append(res.NewCards, card)
		}
	}
	return res
}
