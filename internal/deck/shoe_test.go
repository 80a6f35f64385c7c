package deck

import (
	"testing"

	"github.com/blackjackpsp/blackjackd/internal/randutil"
)

func TestNewShoeSize(t *testing.T) {
	for _, decks := range []int{1, 2, 4} {
		shoe := NewShoe(decks, randutil.New(1))
		if got := shoe.Remaining(); got != decks*52 {
			t.Errorf("NewShoe(%d) has %d cards, want %d", decks, got, decks*52)
		}
	}
}

func TestShoeContainsFullDecks(t *testing.T) {
	shoe := NewShoe(2, randutil.New(7))
	counts := make(map[Card]int)
	for shoe.Remaining() > 0 {
		counts[shoe.Draw()]++
	}
	if len(counts) != 52 {
		t.Fatalf("expected 52 distinct cards, got %d", len(counts))
	}
	for card, n := range counts {
		if n != 2 {
			t.Errorf("card %s appears %d times, want 2", card, n)
		}
	}
}

func TestDrawFromEmptyShoe(t *testing.T) {
	shoe := NewStackedShoe(NewCard(Ace, Spades))
	if got := shoe.Draw(); got != NewCard(Ace, Spades) {
		t.Fatalf("first draw = %s, want A♠", got)
	}
	// Empty shoe yields the hidden sentinel, never an error
	for i := 0; i < 3; i++ {
		if got := shoe.Draw(); !got.IsHidden() {
			t.Fatalf("draw from empty shoe = %s, want hidden", got)
		}
	}
}

func TestDrawOrderIsFrontToBack(t *testing.T) {
	shoe := NewStackedShoe(
		NewCard(Two, Spades),
		NewCard(Three, Hearts),
		NewCard(Four, Clubs),
	)
	want := []Card{NewCard(Two, Spades), NewCard(Three, Hearts), NewCard(Four, Clubs)}
	for i, w := range want {
		if got := shoe.Draw(); got != w {
			t.Errorf("draw %d = %s, want %s", i, got, w)
		}
	}
}

func TestNeedsReshuffle(t *testing.T) {
	shoe := NewShoe(1, randutil.New(3))
	for shoe.Remaining() > ReshuffleThreshold {
		shoe.Draw()
		if shoe.NeedsReshuffle() {
			t.Fatalf("shoe with %d cards should not need a reshuffle", shoe.Remaining())
		}
	}
	shoe.Draw()
	if !shoe.NeedsReshuffle() {
		t.Errorf("shoe with %d cards should need a reshuffle", shoe.Remaining())
	}
}

func TestShuffleIsSeedDeterministic(t *testing.T) {
	a := NewShoe(1, randutil.New(42))
	b := NewShoe(1, randutil.New(42))
	for a.Remaining() > 0 {
		if ca, cb := a.Draw(), b.Draw(); ca != cb {
			t.Fatal("same seed produced different shuffles")
		}
	}
}
