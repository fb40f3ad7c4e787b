package pack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/footycards/attax-backend/internal/catalog"
)

func TestReconcile_PartitionsWithoutLoss(t *testing.T) {
	cards := []catalog.Card{
		card("c1", catalog.RarityCommon),
		card("r1", catalog.RarityRare),
		card("e1", catalog.RarityEpic),
		card("l1", catalog.RarityLegendary),
		card("i1", catalog.RarityIcon),
	}
	owned := map[string]bool{"r1": true, "i1": true}

	res := Reconcile(cards, owned)

	assert.Len(t, res.NewCards, 3)
	assert.Len(t, res.Duplicates, 2)
	assert.Equal(t, len(cards), len(res.NewCards)+len(res.Duplicates))

	wantPoints := DuplicatePoints[catalog.RarityRare] + DuplicatePoints[catalog.RarityIcon]
	assert.Equal(t, wantPoints, res.Points)
}

func TestReconcile_EmptyOwnedSet(t *testing.T) {
	cards := []catalog.Card{card("c1", catalog.RarityCommon)}
	res := Reconcile(cards, nil)
	assert.Len(t, res.NewCards, 1)
	assert.Empty(t, res.Duplicates)
	assert.Zero(t, res.Points)
}

// Two copies of a card the player never owned both classify as new: the
// membership test runs against the pre-pack snapshot only.
func TestReconcile_DoubleDrawOfUnownedCard(t *testing.T) {
	cards := []catalog.Card{
		card("c1", catalog.RarityCommon),
		card("c1", catalog.RarityCommon),
	}
	res := Reconcile(cards, map[string]bool{})

	assert.Len(t, res.NewCards, 2)
	assert.Empty(t, res.Duplicates)
	assert.Zero(t, res.Points)
}

func TestReconcile_AllDuplicates(t *testing.T) {
	cards := []catalog.Card{
		card("c1", catalog.RarityCommon),
		card("c1", catalog.RarityCommon),
	}
	res := Reconcile(cards, map[string]bool{"c1": true})

	assert.Empty(t, res.NewCards)
	assert.Len(t, res.Duplicates, 2)
	assert.Equal(t, 2*DuplicatePoints[catalog.RarityCommon], res.Points)
}
