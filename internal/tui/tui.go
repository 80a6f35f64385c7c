// Package tui is the terminal client: a bubbletea model over the line
// protocol. Totals and bust odds shown here are recomputed locally from
// the visible cards; the server never sends them.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/blackjackpsp/blackjackd/internal/client"
	"github.com/blackjackpsp/blackjackd/internal/deck"
	"github.com/blackjackpsp/blackjackd/internal/protocol"
)

type screen int

const (
	screenJoin screen = iota
	screenTable
	screenRecords
)

// Model is the bubbletea model for the blackjack client
type Model struct {
	client *client.Client
	logger *log.Logger

	screen    screen
	nameInput textinput.Model
	betInput  textinput.Model
	betting   bool // bet input focused

	playerName string
	buyIn      int
	numDecks   int

	state   *protocol.TableStateData
	result  *protocol.HandResultData
	records []protocol.PlayerRecord
	history []string

	width    int
	height   int
	quitting bool
	err      error
}

// Messages delivered into the bubbletea loop

type serverMsg struct{ msg *protocol.Message }

type disconnectedMsg struct{}

// New creates the model. When playerName is non-empty the join screen
// is skipped and the join request is sent immediately.
func New(c *client.Client, playerName string, buyIn, numDecks int, logger *log.Logger) *Model {
	ni := textinput.New()
	ni.Placeholder = "your name"
	ni.CharLimit = 24
	ni.Width = 24
	ni.Focus()

	bi := textinput.New()
	bi.Placeholder = "bet"
	bi.CharLimit = 8
	bi.Width = 10

	m := &Model{
		client:     c,
		logger:     logger.WithPrefix("tui"),
		screen:     screenJoin,
		nameInput:  ni,
		betInput:   bi,
		playerName: playerName,
		buyIn:      buyIn,
		numDecks:   numDecks,
	}
	if playerName != "" {
		m.screen = screenTable
	}
	return m
}

// Init starts listening for server messages
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.waitForServer()}
	if m.playerName != "" {
		cmds = append(cmds, m.join())
	}
	return tea.Batch(cmds...)
}

// waitForServer relays one server message into the update loop
func (m *Model) waitForServer() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.client.Messages()
		if !ok {
			return disconnectedMsg{}
		}
		return serverMsg{msg: msg}
	}
}

func (m *Model) join() tea.Cmd {
	return func() tea.Msg {
		if err := m.client.JoinTable(m.playerName, m.buyIn, m.numDecks); err != nil {
			m.logger.Error("Join failed", "error", err)
		}
		return nil
	}
}

// Update handles UI events and server messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case disconnectedMsg:
		m.quitting = true
		m.err = fmt.Errorf("server closed the connection")
		return m, tea.Quit

	case serverMsg:
		m.applyServerMessage(msg.msg)
		return m, m.waitForServer()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) applyServerMessage(msg *protocol.Message) {
	switch msg.Type {
	case protocol.TypeTableState:
		var data protocol.TableStateData
		if err := protocol.DecodeData(msg, &data); err != nil {
			m.logger.Warn("Bad table_state", "error", err)
			return
		}
		m.state = &data
		if data.GameState == "BETTING" {
			m.result = nil
		}
		m.screen = screenTable

	case protocol.TypeHandResult:
		var data protocol.HandResultData
		if err := protocol.DecodeData(msg, &data); err != nil {
			m.logger.Warn("Bad hand_result", "error", err)
			return
		}
		m.result = &data
		m.history = append([]string{resultLine(&data)}, m.history...)
		if len(m.history) > 10 {
			m.history = m.history[:10]
		}

	case protocol.TypeRecordsList:
		var data protocol.RecordsListData
		if err := protocol.DecodeData(msg, &data); err != nil {
			m.logger.Warn("Bad records_list", "error", err)
			return
		}
		m.records = data.Records
		m.screen = screenRecords
	}
}

func resultLine(r *protocol.HandResultData) string {
	switch r.Winner {
	case protocol.WinnerPlayer:
		return fmt.Sprintf("won +%d (%s)", r.Payout, r.Message)
	case protocol.WinnerPush:
		return fmt.Sprintf("push (%s)", r.Message)
	default:
		return fmt.Sprintf("lost (%s)", r.Message)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.screen {
	case screenJoin:
		switch msg.String() {
		case "enter":
			name := strings.TrimSpace(m.nameInput.Value())
			if name == "" {
				return m, nil
			}
			m.playerName = name
			m.screen = screenTable
			return m, m.join()
		case "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m.updateInputs(msg)

	case screenRecords:
		switch msg.String() {
		case "esc", "q", "enter":
			m.screen = screenTable
		}
		return m, nil

	case screenTable:
		return m.handleTableKey(msg)
	}
	return m, nil
}

func (m *Model) handleTableKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.betting {
		switch msg.String() {
		case "enter":
			amount, err := strconv.Atoi(strings.TrimSpace(m.betInput.Value()))
			m.betInput.SetValue("")
			m.betInput.Blur()
			m.betting = false
			if err != nil || amount <= 0 {
				return m, nil
			}
			return m, m.sendCmd(func() error { return m.client.PlaceBet(amount) })
		case "esc":
			m.betInput.Blur()
			m.betting = false
			return m, nil
		}
		return m.updateInputs(msg)
	}

	phase := ""
	if m.state != nil {
		phase = m.state.GameState
	}

	switch msg.String() {
	case "q", "esc":
		m.quitting = true
		return m, tea.Quit
	case "b":
		if phase == "BETTING" {
			m.betting = true
			m.betInput.Focus()
			return m, textinput.Blink
		}
	case "h":
		if phase == "PLAYING" {
			return m, m.sendCmd(m.client.Hit)
		}
	case "s":
		if phase == "PLAYING" {
			return m, m.sendCmd(m.client.Stand)
		}
	case "d":
		if phase == "PLAYING" {
			return m, m.sendCmd(m.client.Double)
		}
	case "u":
		if phase == "PLAYING" {
			return m, m.sendCmd(m.client.Surrender)
		}
	case "n":
		if phase == "FINISHED" {
			// Rejoin keeps the balance and starts a fresh betting round
			return m, m.join()
		}
	case "r":
		return m, m.sendCmd(m.client.GetRecords)
	}
	return m, nil
}

func (m *Model) sendCmd(fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			m.logger.Error("Send failed", "error", err)
		}
		return nil
	}
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	cmds = append(cmds, cmd)
	m.betInput, cmd = m.betInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View renders the current screen
func (m *Model) View() string {
	if m.quitting {
		if m.err != nil {
			return m.err.Error() + "\n"
		}
		return ""
	}

	switch m.screen {
	case screenJoin:
		return m.viewJoin()
	case screenRecords:
		return m.viewRecords()
	default:
		return m.viewTable()
	}
}

func (m *Model) viewJoin() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("BLACKJACK") + "\n\n")
	b.WriteString("Name: " + m.nameInput.View() + "\n\n")
	b.WriteString(HelpStyle.Render("enter: join · esc: quit") + "\n")
	return b.String()
}

func (m *Model) viewRecords() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("HALL OF FAME") + "\n\n")
	if len(m.records) == 0 {
		b.WriteString("No records yet\n")
	}
	for i, r := range m.records {
		b.WriteString(fmt.Sprintf("%2d. %-24s %s\n", i+1, r.Name, ChipStyle.Render(fmt.Sprintf("%d wins", r.Wins))))
	}
	b.WriteString("\n" + HelpStyle.Render("esc: back") + "\n")
	return b.String()
}

func (m *Model) viewTable() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("BLACKJACK") + "\n\n")

	if m.state == nil {
		b.WriteString("Waiting for table...\n")
		return b.String()
	}
	st := m.state

	b.WriteString(fmt.Sprintf("%s  %s  bet %d\n\n",
		st.PlayerName,
		ChipStyle.Render(fmt.Sprintf("%d chips", st.PlayerChips)),
		st.CurrentBet))

	b.WriteString("Dealer: " + renderHand(st.DealerHand) + dealerTotal(st) + "\n")
	b.WriteString("You:    " + renderHand(st.PlayerHand))
	if len(st.PlayerHand) > 0 {
		b.WriteString(fmt.Sprintf("  (%d)", deck.HandValue(st.PlayerHand)))
		if st.GameState == "PLAYING" {
			b.WriteString("  " + OddsStyle.Render(fmt.Sprintf("bust odds %d%%", deck.BustProbability(st.PlayerHand))))
		}
	}
	b.WriteString("\n\n")

	if m.result != nil {
		b.WriteString(renderResult(m.result) + "\n\n")
	}

	if m.betting {
		b.WriteString("Bet: " + m.betInput.View() + "\n")
	}

	b.WriteString(m.helpLine(st.GameState) + "\n")

	if len(m.history) > 0 {
		b.WriteString("\n" + HelpStyle.Render("history: "+strings.Join(m.history, " | ")) + "\n")
	}
	return b.String()
}

func (m *Model) helpLine(phase string) string {
	switch phase {
	case "BETTING":
		return HelpStyle.Render("b: bet · r: records · q: quit")
	case "PLAYING":
		return HelpStyle.Render("h: hit · s: stand · d: double · u: surrender · q: quit")
	case "FINISHED":
		return HelpStyle.Render("n: next round · r: records · q: quit")
	default:
		return HelpStyle.Render("q: quit")
	}
}

func renderHand(hand []deck.Card) string {
	if len(hand) == 0 {
		return HelpStyle.Render("-")
	}
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = renderCard(c)
	}
	return strings.Join(parts, " ")
}

func renderCard(c deck.Card) string {
	switch {
	case c.IsHidden():
		return HiddenCardStyle.Render("[??]")
	case c.IsRed():
		return RedCardStyle.Render("[" + c.String() + "]")
	default:
		return BlackCardStyle.Render("[" + c.String() + "]")
	}
}

// dealerTotal shows the dealer's visible total; hidden cards count
// nothing, same rule the server uses.
func dealerTotal(st *protocol.TableStateData) string {
	if len(st.DealerHand) == 0 {
		return ""
	}
	return fmt.Sprintf("  (%d)", deck.HandValue(st.DealerHand))
}

func renderResult(r *protocol.HandResultData) string {
	switch r.Winner {
	case protocol.WinnerPlayer:
		return WinStyle.Render(fmt.Sprintf("YOU WIN +%d (%s)", r.Payout, r.Message))
	case protocol.WinnerPush:
		return PushStyle.Render(fmt.Sprintf("PUSH (%s)", r.Message))
	default:
		return LoseStyle.Render(fmt.Sprintf("DEALER WINS (%s)", r.Message))
	}
}
