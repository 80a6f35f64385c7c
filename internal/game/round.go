// Package game implements the per-connection blackjack round state
// machine. A Round is owned by exactly one session and never shared;
// the only cross-session state it touches is the injected WinRecorder.
package game

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/blackjackpsp/blackjackd/internal/deck"
	"github.com/blackjackpsp/blackjackd/internal/protocol"
)

// Phase is the round state machine position
type Phase int

const (
	Betting Phase = iota
	Playing
	Finished
)

// String returns the wire name of the phase
func (p Phase) String() string {
	switch p {
	case Betting:
		return "BETTING"
	case Playing:
		return "PLAYING"
	case Finished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// WinRecorder receives player wins. Satisfied by *leaderboard.Store;
// injected so the round never reaches for ambient shared state.
type WinRecorder interface {
	RecordWin(name string)
}

// Built-in table values, used when the configuration supplies none
const (
	DefaultBuyIn    = 1000
	DefaultNumDecks = 4
)

// Defaults are the table values substituted when join_table omits a
// buy-in or deck count. Zero fields fall back to the package constants.
type Defaults struct {
	BuyIn    int
	NumDecks int
}

func (d Defaults) withBuiltin() Defaults {
	if d.BuyIn <= 0 {
		d.BuyIn = DefaultBuyIn
	}
	if d.NumDecks <= 0 {
		d.NumDecks = DefaultNumDecks
	}
	return d
}

// Dealer draws until reaching this hard total
const dealerStand = 17

// Round holds one connection's table: the player's chips and bet, both
// hands, the shoe and the current phase. Transitions return the
// messages to send, in order; requests invalid for the current phase
// return nothing and change nothing, since stale client UIs are
// expected to race the server.
type Round struct {
	playerName string
	chips      int
	bet        int
	playerHand []deck.Card
	dealerHand []deck.Card
	shoe       *deck.Shoe
	numDecks   int
	phase      Phase
	defaults   Defaults

	rng     *rand.Rand
	records WinRecorder
	logger  *log.Logger
}

// NewRound creates an empty round in the betting phase. defaults come
// from the table configuration; zero fields use the built-ins.
func NewRound(defaults Defaults, records WinRecorder, rng *rand.Rand, logger *log.Logger) *Round {
	defaults = defaults.withBuiltin()
	return &Round{
		numDecks: defaults.NumDecks,
		phase:    Betting,
		defaults: defaults,
		rng:      rng,
		records:  records,
		logger:   logger.WithPrefix("round"),
	}
}

// Phase returns the current state machine position
func (r *Round) Phase() Phase { return r.phase }

// Chips returns the player's balance
func (r *Round) Chips() int { return r.chips }

// Bet returns the current wager
func (r *Round) Bet() int { return r.bet }

// HandleMessage applies one client message to the round and returns the
// replies to write. get_records is not routed here; the session answers
// it from the leaderboard directly.
func (r *Round) HandleMessage(msg *protocol.Message) []*protocol.Message {
	switch msg.Type {
	case protocol.TypeJoinTable:
		var data protocol.JoinTableData
		if err := protocol.DecodeData(msg, &data); err != nil {
			r.logger.Warn("Dropping malformed join_table payload", "error", err)
			return nil
		}
		return r.join(data)

	case protocol.TypePlaceBet:
		var data protocol.PlaceBetData
		if err := protocol.DecodeData(msg, &data); err != nil {
			r.logger.Warn("Dropping malformed place_bet payload", "error", err)
			return nil
		}
		return r.placeBet(data.Amount)

	case protocol.TypeHit:
		return r.hit()

	case protocol.TypeStand:
		return r.stand()

	case protocol.TypeDouble:
		return r.double()

	case protocol.TypeSurrender:
		return r.surrender()

	default:
		return nil
	}
}

// join is valid in any state. Chips are replaced with the buy-in only
// when joining from the betting phase; a "new round" join issued from
// FINISHED keeps the balance.
func (r *Round) join(data protocol.JoinTableData) []*protocol.Message {
	buyIn := data.BuyIn
	if buyIn <= 0 {
		buyIn = r.defaults.BuyIn
	}
	numDecks := data.NumDecks
	if numDecks <= 0 {
		numDecks = r.defaults.NumDecks
	}

	r.playerName = data.PlayerName
	if r.phase == Betting {
		r.chips = buyIn
	}
	r.numDecks = numDecks
	r.shoe = deck.NewShoe(numDecks, r.rng)
	r.playerHand = nil
	r.dealerHand = nil
	r.bet = 0
	r.phase = Betting

	r.logger.Info("Player joined table",
		"player", r.playerName, "chips", r.chips, "decks", numDecks)
	return []*protocol.Message{r.tableState()}
}

// placeBet debits the wager and deals the opening hands. Invalid
// amounts are dropped with no reply.
func (r *Round) placeBet(amount int) []*protocol.Message {
	if r.phase != Betting {
		return nil
	}
	if amount <= 0 || amount > r.chips {
		r.logger.Debug("Rejecting bet", "amount", amount, "chips", r.chips)
		return nil
	}

	r.chips -= amount
	r.bet = amount

	if r.shoe == nil || r.shoe.NeedsReshuffle() {
		r.logger.Debug("Replacing spent shoe", "decks", r.numDecks)
		r.shoe = deck.NewShoe(r.numDecks, r.rng)
	}

	// player/dealer/player/dealer
	r.playerHand = []deck.Card{r.shoe.Draw()}
	r.dealerHand = []deck.Card{r.shoe.Draw()}
	r.playerHand = append(r.playerHand, r.shoe.Draw())
	r.dealerHand = append(r.dealerHand, r.shoe.Draw())
	r.phase = Playing

	r.logger.Info("Bet placed", "player", r.playerName, "bet", r.bet, "chips", r.chips)

	if deck.IsBlackjack(r.playerHand) {
		// Natural pays 3:2: stake back plus one and a half times the bet
		payout := r.bet + r.bet*3/2
		r.chips += payout
		r.phase = Finished
		r.recordWin()
		r.logger.Info("Natural blackjack", "player", r.playerName, "payout", payout)
		return []*protocol.Message{
			r.tableState(),
			r.handResult(protocol.WinnerPlayer, payout, "blackjack 3:2"),
		}
	}

	return []*protocol.Message{r.tableState()}
}

// hit draws one card into the player's hand
func (r *Round) hit() []*protocol.Message {
	if r.phase != Playing {
		return nil
	}
	r.playerHand = append(r.playerHand, r.shoe.Draw())

	if deck.IsBust(r.playerHand) {
		r.phase = Finished
		r.logger.Info("Player busts", "player", r.playerName, "value", deck.HandValue(r.playerHand))
		return []*protocol.Message{
			r.tableState(),
			r.handResult(protocol.WinnerDealer, 0, "bust"),
		}
	}
	return []*protocol.Message{r.tableState()}
}

// double debits the original bet again, draws exactly one card and
// ends the player's turn. The debit is validated against the original
// bet, before doubling.
func (r *Round) double() []*protocol.Message {
	if r.phase != Playing || r.chips < r.bet {
		return nil
	}
	r.chips -= r.bet
	r.bet *= 2
	r.playerHand = append(r.playerHand, r.shoe.Draw())

	if deck.IsBust(r.playerHand) {
		r.phase = Finished
		r.logger.Info("Player busts on double", "player", r.playerName)
		return []*protocol.Message{
			r.tableState(),
			r.handResult(protocol.WinnerDealer, 0, "bust on double"),
		}
	}
	return r.resolveDealer()
}

// surrender forfeits the hand for half the bet back
func (r *Round) surrender() []*protocol.Message {
	if r.phase != Playing {
		return nil
	}
	refund := r.bet / 2
	r.chips += refund
	r.phase = Finished
	r.logger.Info("Player surrenders", "player", r.playerName, "refund", refund)
	return []*protocol.Message{
		r.tableState(),
		r.handResult(protocol.WinnerDealer, refund, "surrendered"),
	}
}

// stand ends the player's turn and plays out the dealer
func (r *Round) stand() []*protocol.Message {
	if r.phase != Playing {
		return nil
	}
	return r.resolveDealer()
}

// resolveDealer draws the dealer to a hard 17+ and settles the wager.
// Shared by stand and a non-busting double.
func (r *Round) resolveDealer() []*protocol.Message {
	for deck.HandValue(r.dealerHand) < dealerStand {
		card := r.shoe.Draw()
		if card.IsHidden() {
			// Shoe ran dry mid-resolution; hidden cards score zero, so
			// stop rather than draw forever.
			break
		}
		r.dealerHand = append(r.dealerHand, card)
	}
	r.phase = Finished

	playerValue := deck.HandValue(r.playerHand)
	dealerValue := deck.HandValue(r.dealerHand)

	var result *protocol.Message
	switch {
	case dealerValue > 21:
		payout := r.bet * 2
		r.chips += payout
		r.recordWin()
		result = r.handResult(protocol.WinnerPlayer, payout, "dealer busts")
	case playerValue > dealerValue:
		payout := r.bet * 2
		r.chips += payout
		r.recordWin()
		result = r.handResult(protocol.WinnerPlayer, payout, "you win")
	case playerValue == dealerValue:
		r.chips += r.bet
		result = r.handResult(protocol.WinnerPush, r.bet, "push")
	default:
		result = r.handResult(protocol.WinnerDealer, 0, "dealer wins")
	}

	r.logger.Info("Round resolved",
		"player", r.playerName, "playerValue", playerValue,
		"dealerValue", dealerValue, "chips", r.chips)

	// table_state first, revealing the full dealer hand
	return []*protocol.Message{r.tableState(), result}
}

func (r *Round) recordWin() {
	if r.records != nil && r.playerName != "" {
		r.records.RecordWin(r.playerName)
	}
}

// tableState snapshots the round for the client. While the round is in
// play every dealer card after the first is replaced with the hidden
// sentinel; leaking the hole card through any emission would break the
// protocol's one information-hiding invariant, so the mask is applied
// here and nowhere else.
func (r *Round) tableState() *protocol.Message {
	dealerHand := r.dealerHand
	if r.phase == Playing && len(dealerHand) > 1 {
		masked := make([]deck.Card, len(dealerHand))
		masked[0] = dealerHand[0]
		for i := 1; i < len(dealerHand); i++ {
			masked[i] = deck.Hidden
		}
		dealerHand = masked
	}

	msg, _ := protocol.NewMessage(protocol.TypeTableState, protocol.TableStateData{
		PlayerName:  r.playerName,
		PlayerChips: r.chips,
		CurrentBet:  r.bet,
		PlayerHand:  r.playerHand,
		DealerHand:  dealerHand,
		GameState:   r.phase.String(),
	})
	return msg
}

func (r *Round) handResult(winner string, payout int, message string) *protocol.Message {
	msg, _ := protocol.NewMessage(protocol.TypeHandResult, protocol.HandResultData{
		Winner:  winner,
		Payout:  payout,
		Message: message,
	})
	return msg
}
