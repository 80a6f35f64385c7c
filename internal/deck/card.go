package deck

import (
	"encoding/json"
	"fmt"
)

// Suit represents a card suit. The zero value is the hidden sentinel
// used for the dealer's hole card on the wire.
type Suit int

const (
	HiddenSuit Suit = iota
	Spades
	Hearts
	Diamonds
	Clubs
)

// String returns the display symbol for a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// wireName is the suit's wire representation
func (s Suit) wireName() string {
	switch s {
	case Spades:
		return "spades"
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	default:
		return "hidden"
	}
}

func suitFromWire(name string) (Suit, error) {
	switch name {
	case "spades":
		return Spades, nil
	case "hearts":
		return Hearts, nil
	case "diamonds":
		return Diamonds, nil
	case "clubs":
		return Clubs, nil
	case "hidden":
		return HiddenSuit, nil
	default:
		return HiddenSuit, fmt.Errorf("unknown suit %q", name)
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. The zero value is the hidden sentinel.
type Rank int

const (
	HiddenRank Rank = 0
	Two        Rank = iota + 1
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the display representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

func (r Rank) wireName() string {
	if r == HiddenRank {
		return "hidden"
	}
	return r.String()
}

func rankFromWire(name string) (Rank, error) {
	switch name {
	case "hidden":
		return HiddenRank, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	}
	var n int
	if _, err := fmt.Sscanf(name, "%d", &n); err != nil || n < 2 || n > 10 {
		return HiddenRank, fmt.Errorf("unknown rank %q", name)
	}
	return Rank(n), nil
}

// Points returns the blackjack value of the rank. Aces count 11 here;
// HandValue applies the soft reduction. Hidden counts 0 so a masked
// hole card can never leak into a total.
func (r Rank) Points() int {
	switch {
	case r == HiddenRank:
		return 0
	case r >= Two && r <= Ten:
		return int(r)
	case r == Ace:
		return 11
	default: // J, Q, K
		return 10
	}
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// Hidden is the face-down card sent in place of the dealer's hole card
// while a round is in progress. It carries no rank or suit.
var Hidden = Card{}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// IsHidden reports whether the card is the face-down sentinel
func (c Card) IsHidden() bool {
	return c.Rank == HiddenRank
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// String returns the display representation (e.g. "A♠", "??" when hidden)
func (c Card) String() string {
	if c.IsHidden() {
		return "??"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// wireCard is the JSON shape shared with the desktop client
type wireCard struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

// MarshalJSON encodes the card as {"rank":"A","suit":"spades"}
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireCard{Rank: c.Rank.wireName(), Suit: c.Suit.wireName()})
}

// UnmarshalJSON decodes the wire representation
func (c *Card) UnmarshalJSON(data []byte) error {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rank, err := rankFromWire(w.Rank)
	if err != nil {
		return err
	}
	suit, err := suitFromWire(w.Suit)
	if err != nil {
		return err
	}
	c.Rank = rank
	c.Suit = suit
	return nil
}
