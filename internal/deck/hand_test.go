package deck

import "testing"

func hand(cards ...Card) []Card { return cards }

func TestHandValue(t *testing.T) {
	tests := []struct {
		name string
		hand []Card
		want int
	}{
		{"empty", nil, 0},
		{"numeric", hand(NewCard(Two, Spades), NewCard(Nine, Hearts)), 11},
		{"faces count ten", hand(NewCard(Jack, Spades), NewCard(Queen, Hearts), NewCard(King, Clubs)), 30},
		{"soft ace", hand(NewCard(Ace, Spades), NewCard(Six, Hearts)), 17},
		{"ace reduced", hand(NewCard(Ace, Spades), NewCard(Six, Hearts), NewCard(Nine, Clubs)), 16},
		{"two aces one reduced", hand(NewCard(Ace, Spades), NewCard(Ace, Hearts)), 12},
		{"two aces both reduced", hand(NewCard(Ace, Spades), NewCard(Ace, Hearts), NewCard(Queen, Clubs), NewCard(Nine, Diamonds)), 21},
		{"blackjack", hand(NewCard(Ace, Spades), NewCard(King, Hearts)), 21},
		{"hard bust", hand(NewCard(King, Spades), NewCard(Queen, Hearts), NewCard(Two, Clubs)), 22},
		{"hidden counts zero", hand(NewCard(King, Spades), Hidden), 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HandValue(tt.hand); got != tt.want {
				t.Errorf("HandValue() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHandValueIdempotent(t *testing.T) {
	h := hand(NewCard(Ace, Spades), NewCard(Ace, Hearts), NewCard(Seven, Clubs))
	first := HandValue(h)
	second := HandValue(h)
	if first != second {
		t.Errorf("repeated evaluation disagrees: %d then %d", first, second)
	}
	if first != 19 {
		t.Errorf("HandValue() = %d, want 19", first)
	}
}

func TestHandValueNeverBelowHardTotal(t *testing.T) {
	// A-A-A-A-K: hard total is 14 (all aces as 1), and that is the only
	// non-bust arrangement.
	h := hand(
		NewCard(Ace, Spades), NewCard(Ace, Hearts),
		NewCard(Ace, Diamonds), NewCard(Ace, Clubs),
		NewCard(King, Spades),
	)
	if got := HandValue(h); got != 14 {
		t.Errorf("HandValue() = %d, want 14", got)
	}
}

func TestIsBlackjack(t *testing.T) {
	if !IsBlackjack(hand(NewCard(Ace, Spades), NewCard(King, Hearts))) {
		t.Error("A-K should be blackjack")
	}
	if IsBlackjack(hand(NewCard(Seven, Spades), NewCard(Seven, Hearts), NewCard(Seven, Clubs))) {
		t.Error("three-card 21 is not a natural")
	}
	if IsBlackjack(hand(NewCard(Ten, Spades), NewCard(Nine, Hearts))) {
		t.Error("19 is not blackjack")
	}
}

func TestBustProbability(t *testing.T) {
	tests := []struct {
		name string
		hand []Card
		want int
	}{
		// 11 or less can never bust on one card
		{"eleven", hand(NewCard(Five, Spades), NewCard(Six, Hearts)), 0},
		// 12 busts only on a ten-value: 4 of 13
		{"twelve", hand(NewCard(King, Spades), NewCard(Two, Hearts)), 4 * 100 / 13},
		// 16 busts on 6..10: four single ranks plus the ten bucket = 8 of 13
		{"sixteen", hand(NewCard(King, Spades), NewCard(Six, Hearts)), 8 * 100 / 13},
		// 21: every draw busts, the ace counts 1 and still tips it over
		{"twenty-one", hand(NewCard(King, Spades), NewCard(Five, Hearts), NewCard(Six, Clubs)), 100},
		{"busted already", hand(NewCard(King, Spades), NewCard(Queen, Hearts), NewCard(Five, Clubs)), 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BustProbability(tt.hand); got != tt.want {
				t.Errorf("BustProbability() = %d, want %d", got, tt.want)
			}
		})
	}
}
