// Package protocol defines the messages exchanged between the blackjack
// server and its clients, and the newline-delimited codec they travel
// in. Every message is one JSON object per line with a "type"
// discriminator; dispatch is on the tag, never on reflection.
package protocol

import (
	"encoding/json"

	"github.com/blackjackpsp/blackjackd/internal/deck"
)

// MessageType identifies the type of message
type MessageType string

const (
	// Client -> Server
	TypeJoinTable  MessageType = "join_table"
	TypePlaceBet   MessageType = "place_bet"
	TypeHit        MessageType = "hit"
	TypeStand      MessageType = "stand"
	TypeDouble     MessageType = "double"
	TypeSurrender  MessageType = "surrender"
	TypeGetRecords MessageType = "get_records"

	// Server -> Client
	TypeTableState  MessageType = "table_state"
	TypeHandResult  MessageType = "hand_result"
	TypeRecordsList MessageType = "records_list"
)

// String returns the wire tag
func (t MessageType) String() string { return string(t) }

// Winner values carried by hand_result
const (
	WinnerPlayer = "PLAYER"
	WinnerDealer = "DEALER"
	WinnerPush   = "PUSH"
)

// Message is the envelope for every protocol message
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage wraps a payload in an envelope
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	if data == nil {
		return &Message{Type: messageType}, nil
	}
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: messageType, Data: dataBytes}, nil
}

// Client -> Server payloads

type JoinTableData struct {
	PlayerName string `json:"playerName"`
	BuyIn      int    `json:"buyIn"`
	NumDecks   int    `json:"numDecks"`
}

type PlaceBetData struct {
	Amount int `json:"amount"`
}

// hit, stand, double, surrender and get_records carry no payload

// Server -> Client payloads

type TableStateData struct {
	PlayerName  string      `json:"playerName"`
	PlayerChips int         `json:"playerChips"`
	CurrentBet  int         `json:"currentBet"`
	PlayerHand  []deck.Card `json:"playerHand"`
	DealerHand  []deck.Card `json:"dealerHand"`
	GameState   string      `json:"gameState"`
}

type HandResultData struct {
	Winner  string `json:"winner"` // PLAYER, DEALER or PUSH
	Payout  int    `json:"payout"`
	Message string `json:"message"`
}

// PlayerRecord is one leaderboard row
type PlayerRecord struct {
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

type RecordsListData struct {
	Records []PlayerRecord `json:"records"`
}
