package deck

import rand "math/rand/v2"

// ReshuffleThreshold is the card count below which a shoe is considered
// spent. A spent shoe is replaced at the start of the next betting round
// rather than mid-hand.
const ReshuffleThreshold = 20

// Shoe is the working set of cards for one table: numDecks full decks
// shuffled together, drawn from the front. A shoe is owned by exactly
// one round and is never shared.
type Shoe struct {
	cards []Card
	rng   *rand.Rand
}

// NewShoe builds and shuffles a shoe of numDecks 52-card decks
func NewShoe(numDecks int, rng *rand.Rand) *Shoe {
	s := &Shoe{
		cards: make([]Card, 0, numDecks*52),
		rng:   rng,
	}
	for i := 0; i < numDecks; i++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				s.cards = append(s.cards, NewCard(rank, suit))
			}
		}
	}
	s.shuffle()
	return s
}

// NewStackedShoe returns a shoe that deals the given cards in order
// without shuffling. Deterministic rounds for tests.
func NewStackedShoe(cards ...Card) *Shoe {
	return &Shoe{cards: cards}
}

func (s *Shoe) shuffle() {
	s.rng.Shuffle(len(s.cards), func(i, j int) {
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	})
}

// Draw removes and returns the front card. An empty shoe yields the
// hidden sentinel instead of failing, so a pathological run of hits can
// never error out a connection.
func (s *Shoe) Draw() Card {
	if len(s.cards) == 0 {
		return Hidden
	}
	card := s.cards[0]
	s.cards = s.cards[1:]
	return card
}

// Remaining returns the number of cards left in the shoe
func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// NeedsReshuffle reports whether the shoe is too depleted to start
// another round
func (s *Shoe) NeedsReshuffle() bool {
	return len(s.cards) < ReshuffleThreshold
}
