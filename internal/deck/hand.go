package deck

// HandValue computes the blackjack total of a hand. Face cards count 10,
// aces count 11 and are re-counted as 1 one at a time while the total
// busts, hidden cards count 0. Pure function of the hand, so repeated
// evaluation always agrees.
func HandValue(hand []Card) int {
	value := 0
	aces := 0
	for _, c := range hand {
		if c.IsAce() {
			aces++
		}
		value += c.Rank.Points()
	}
	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

// IsBlackjack reports whether the hand is a natural: exactly two cards
// totalling 21.
func IsBlackjack(hand []Card) bool {
	return len(hand) == 2 && HandValue(hand) == 21
}

// IsBust reports whether the hand is over 21
func IsBust(hand []Card) bool {
	return HandValue(hand) > 21
}

// BustProbability estimates the chance the next drawn card busts the
// hand, as a percentage. It counts, across the 13 rank values (2-9,
// ten-or-face as a single 10 bucket, ace as 1), how many would push the
// total over 21. Advisory display only; the server never consults it.
func BustProbability(hand []Card) int {
	total := HandValue(hand)
	if total > 21 {
		return 100
	}
	busting := 0
	for next := 1; next <= 10; next++ {
		weight := 1
		if next == 10 { // T, J, Q, K
			weight = 4
		}
		if total+next > 21 {
			busting += weight
		}
	}
	return busting * 100 / 13
}
