package main

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/adventure-relay/pkg/chat"
	"github.com/jwebster45206/adventure-relay/pkg/protocol"
)

const PlaceHolderText = "Speak, or act (try: I search the room)..."

var rollPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// characterSheet mirrors the character_update payload.
type characterSheet struct {
	Class     string   `json:"class"`
	Level     int      `json:"level"`
	HP        int      `json:"hp"`
	MaxHP     int      `json:"max_hp"`
	Inventory []string `json:"inventory"`
}

type chatLine struct {
	speaker string
	text    string
	isError bool
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ws       *wsClient
	username string

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int

	history   []chatLine
	character *characterSheet
	room      string
	rooms     map[string]int
	players   []string

	showQuitModal bool
	disconnected  bool
}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	dmStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(ws *wsClient, username, class string, maxHP int) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	m := ConsoleUI{
		ws:           ws,
		username:     username,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		rooms:        make(map[string]int),
	}

	// Queued before the event loop starts; replies arrive as events.
	_ = ws.send(protocol.EventCreateCharacter, protocol.CreateCharacterRequest{
		Username:  username,
		CharClass: class,
		MaxHP:     maxHP,
	})
	_ = ws.send(protocol.EventJoin, protocol.JoinRequest{})

	return m
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.ws.waitForEvent(), textarea.Blink)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		return m, vpCmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case serverEventMsg:
		if msg.err != nil {
			m.disconnected = true
			m.appendLine(chatLine{text: "Connection lost: " + msg.err.Error(), isError: true})
			return m, nil
		}
		m.applyServerEvent(msg.env)
		return m, m.ws.waitForEvent()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" || m.disconnected {
				return m, nil
			}
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			// The server broadcasts to everyone else; echo locally.
			m.appendLine(chatLine{speaker: m.username, text: input})
			if err := m.ws.send(protocol.EventMessage, protocol.MessageRequest{Message: input}); err != nil {
				m.appendLine(chatLine{text: "Send failed: " + err.Error(), isError: true})
			}
			return m, nil
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) applyServerEvent(env protocol.Envelope) {
	switch env.Type {
	case protocol.EventMessage:
		var msg protocol.ChatBroadcast
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return
		}
		m.appendLine(chatLine{speaker: msg.Username, text: msg.Message})

	case protocol.EventCharacterUpdate:
		var update protocol.CharacterUpdate
		if err := json.Unmarshal(env.Data, &update); err != nil {
			return
		}
		var sheet characterSheet
		if err := json.Unmarshal(update.Character, &sheet); err != nil {
			return
		}
		m.character = &sheet
		m.metaViewport.SetContent(m.writeMetadata())

	case protocol.EventRoomUpdate:
		var update protocol.RoomUpdate
		if err := json.Unmarshal(env.Data, &update); err != nil {
			return
		}
		m.rooms = make(map[string]int, len(update.Rooms))
		for id, summary := range update.Rooms {
			m.rooms[id] = summary.Players
		}
		m.metaViewport.SetContent(m.writeMetadata())

	case protocol.EventPlayerList:
		var list protocol.PlayerList
		if err := json.Unmarshal(env.Data, &list); err != nil {
			return
		}
		m.players = list.Names
		m.metaViewport.SetContent(m.writeMetadata())

	case protocol.EventError:
		var errEvent protocol.ErrorEvent
		if err := json.Unmarshal(env.Data, &errEvent); err != nil {
			return
		}
		m.appendLine(chatLine{text: errEvent.Reason, isError: true})
	}
}

func (m *ConsoleUI) appendLine(line chatLine) {
	// Track the current room from join announcements.
	if line.speaker == protocol.SpeakerSystem {
		if idx := strings.Index(line.text, " joins "); idx > 0 &&
			strings.HasPrefix(line.text, m.username) {
			rest := strings.TrimPrefix(line.text[idx:], " joins ")
			if end := strings.Index(rest, "!"); end > 0 {
				m.room = rest[:end]
				m.metaViewport.SetContent(m.writeMetadata())
			}
		}
	}

	m.history = append(m.history, line)
	m.writeChatContent()
}

func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE RELAY") + "\n\n")
	content.WriteString("Speak freely; phrases like \"I attack\" wake the DM.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth-6)) + "\n\n")

	for _, line := range m.history {
		content.WriteString(m.formatLine(line, chatWidth) + "\n\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) formatLine(line chatLine, width int) string {
	if line.isError {
		return errorStyle.Render(wordwrap.String(line.text, width))
	}

	body := wordwrap.String(line.text, width-len(line.speaker)-2)
	switch line.speaker {
	case protocol.SpeakerDM:
		// DM narration may already open with an NPC speaker prefix.
		return dmStyle.Render(wordwrap.String(chat.FormatSpeaker(line.text, "DM"), width))
	case protocol.SpeakerSystem:
		return systemStyle.Render(body)
	case m.username:
		return userStyle.Render("You: ") + body
	default:
		return speakerStyle.Render(line.speaker+": ") + body
	}
}

func (m *ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("PARTY") + "\n\n")

	if m.character != nil {
		content.WriteString(fmt.Sprintf("%s\nLevel %d %s\nHP %d/%d\n\n",
			m.username, m.character.Level, m.character.Class, m.character.HP, m.character.MaxHP))
		if len(m.character.Inventory) > 0 {
			content.WriteString("Inventory:\n")
			for _, item := range m.character.Inventory {
				content.WriteString("• " + item + "\n")
			}
			content.WriteString("\n")
		}
	}

	if m.room != "" {
		content.WriteString("Room:\n" + m.room + "\n\n")
	}

	if len(m.players) > 0 {
		content.WriteString("Players here:\n")
		for _, name := range m.players {
			content.WriteString("• " + name + "\n")
		}
		content.WriteString("\n")
	}

	if len(m.rooms) > 0 {
		content.WriteString("Active rooms:\n")
		ids := make([]string, 0, len(m.rooms))
		for id := range m.rooms {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			content.WriteString(fmt.Sprintf("• %s (%d)\n", id, m.rooms[id]))
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• /join <room>\n")
	content.WriteString("• /leave\n")
	content.WriteString("• /roll 2d6+1\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/join":
		room := ""
		if len(fields) > 1 {
			room = strings.Join(fields[1:], " ")
		}
		if err := m.ws.send(protocol.EventJoin, protocol.JoinRequest{Room: room}); err != nil {
			m.appendLine(chatLine{text: "Send failed: " + err.Error(), isError: true})
		}

	case "/leave":
		if err := m.ws.send(protocol.EventLeave, nil); err != nil {
			m.appendLine(chatLine{text: "Send failed: " + err.Error(), isError: true})
		}

	case "/roll":
		if len(fields) < 2 {
			m.appendLine(chatLine{text: "Usage: /roll 2d6+1", isError: true})
			break
		}
		req, err := parseRoll(fields[1])
		if err != nil {
			m.appendLine(chatLine{text: err.Error(), isError: true})
			break
		}
		if err := m.ws.send(protocol.EventRollDice, req); err != nil {
			m.appendLine(chatLine{text: "Send failed: " + err.Error(), isError: true})
		}

	case "/quit":
		m.showQuitModal = true

	case "/help":
		m.appendLine(chatLine{
			speaker: protocol.SpeakerSystem,
			text:    "Commands: /join <room>, /leave, /roll <dice>, /quit. Everything else is table talk; action phrases summon the DM.",
		})

	default:
		m.appendLine(chatLine{text: "Unknown command: " + cmd, isError: true})
	}

	return m, nil
}

// parseRoll turns notation like "2d6+1" into a roll request.
func parseRoll(notation string) (protocol.RollDiceRequest, error) {
	match := rollPattern.FindStringSubmatch(strings.ToLower(notation))
	if match == nil {
		return protocol.RollDiceRequest{}, fmt.Errorf("invalid dice notation: %q", notation)
	}

	num := 1
	if match[1] != "" {
		num, _ = strconv.Atoi(match[1])
	}
	modifier := 0
	if match[3] != "" {
		modifier, _ = strconv.Atoi(match[3])
	}

	return protocol.RollDiceRequest{
		DieType:  "d" + match[2],
		Num:      num,
		Modifier: modifier,
	}, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Adventure?"))
	content.WriteString("\n\n")
	content.WriteString("Your character will depart the realm.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to keep playing"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Connecting..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
