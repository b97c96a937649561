package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/mwisniewski/tale-engine/pkg/actor"
	"github.com/mwisniewski/tale-engine/pkg/chat"
	"github.com/mwisniewski/tale-engine/pkg/session"
)

const (
	NarratorName    = "Narrator"
	PlaceholderText = "What do you do?"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	gameSession  *session.GameSession
	character    *actor.CharacterSpec
	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	statusNote   string
	progressTick int
}

type turnResponseMsg struct {
	response *chat.TurnResponse
	err      error
}

type sessionRefreshMsg struct {
	gameSession *session.GameSession
	err         error
}

type progressTickMsg struct{}

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
			Foreground(lipgloss.Color("205")).
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	metaHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("105")).
			Bold(true)
)

// NewConsoleUI creates the UI model for a fresh session
func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, gs *session.GameSession, character *actor.CharacterSpec) *ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceholderText
	ta.Focus()
	ta.Prompt = "> "
	ta.CharLimit = 500
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	return &ConsoleUI{
		config:      cfg,
		client:      client,
		gameSession: gs,
		character:   character,
		textarea:    ta,
	}
}

func (ui *ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

func (ui *ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var taCmd, vpCmd tea.Cmd
	ui.textarea, taCmd = ui.textarea.Update(msg)
	ui.chatViewport, vpCmd = ui.chatViewport.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		ui.width = msg.Width
		ui.height = msg.Height
		ui.layout()
		ui.refreshChat()
		ui.refreshMeta()
		ui.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return ui, tea.Quit

		case tea.KeyCtrlY:
			if err := clipboard.WriteAll(ui.gameSession.ID.String()); err == nil {
				ui.statusNote = "Session ID copied to clipboard"
			} else {
				ui.statusNote = "Clipboard unavailable"
			}
			ui.refreshMeta()

		case tea.KeyEnter:
			if ui.loading {
				return ui, tea.Batch(taCmd, vpCmd)
			}
			text := strings.TrimSpace(ui.textarea.Value())
			if text == "" {
				return ui, tea.Batch(taCmd, vpCmd)
			}
			ui.textarea.Reset()
			ui.loading = true
			ui.statusNote = ""
			ui.progressTick = 0

			// Echo the action immediately; the server appends it to the
			// session log as part of turn processing.
			ui.gameSession.Messages = append(ui.gameSession.Messages,
				chat.NewNarrativeMessage(chat.RolePlayer, ui.character.Name, text))
			ui.refreshChat()

			return ui, tea.Batch(ui.submitTurn(text), ui.tickProgress(), taCmd, vpCmd)
		}

	case turnResponseMsg:
		ui.loading = false
		if msg.err != nil {
			ui.err = msg.err
			ui.refreshChat()
			return ui, tea.Batch(taCmd, vpCmd)
		}
		ui.err = nil
		if msg.response.Error != "" {
			ui.statusNote = msg.response.Error
		}
		return ui, tea.Batch(ui.refreshSession(), taCmd, vpCmd)

	case sessionRefreshMsg:
		if msg.err == nil && msg.gameSession != nil {
			ui.gameSession = msg.gameSession
		}
		ui.refreshChat()
		ui.refreshMeta()

	case progressTickMsg:
		if ui.loading {
			ui.progressTick++
			ui.refreshChat()
			return ui, tea.Batch(ui.tickProgress(), taCmd, vpCmd)
		}
	}

	return ui, tea.Batch(taCmd, vpCmd)
}

func (ui *ConsoleUI) View() string {
	if !ui.ready {
		return "Loading..."
	}

	chatPanel := chatPanelStyle.Render(ui.chatViewport.View())
	metaPanel := metaPanelStyle.Render(ui.metaViewport.View())

	panels := lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
	footer := promptStyle.Render("enter: act | ctrl+y: copy session id | esc: quit")

	return lipgloss.JoinVertical(lipgloss.Left, panels, ui.textarea.View(), footer)
}

func (ui *ConsoleUI) layout() {
	chatWidth := ui.width * 2 / 3
	metaWidth := ui.width - chatWidth - 6
	panelHeight := ui.height - ui.textarea.Height() - 4

	ui.chatViewport = viewport.New(chatWidth, panelHeight)
	ui.metaViewport = viewport.New(metaWidth, panelHeight)
	ui.textarea.SetWidth(ui.width - 4)
}

func (ui *ConsoleUI) submitTurn(text string) tea.Cmd {
	sessionID := ui.gameSession.ID
	characterName := ui.character.Name
	return func() tea.Msg {
		resp, err := sendTurn(ui.client, ui.config.APIBaseURL, chat.TurnRequest{
			SessionID: sessionID,
			Character: characterName,
			Message:   text,
		})
		return turnResponseMsg{response: resp, err: err}
	}
}

func (ui *ConsoleUI) refreshSession() tea.Cmd {
	sessionID := ui.gameSession.ID
	return func() tea.Msg {
		gs, err := getSession(ui.client, ui.config.APIBaseURL, sessionID)
		return sessionRefreshMsg{gameSession: gs, err: err}
	}
}

func (ui *ConsoleUI) tickProgress() tea.Cmd {
	return tea.Tick(400*time.Millisecond, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func (ui *ConsoleUI) refreshChat() {
	if ui.chatViewport.Width == 0 {
		return
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(ui.gameSession.Name))
	b.WriteString("\n\n")

	for _, msg := range ui.gameSession.Messages {
		switch msg.Role {
		case chat.RolePlayer:
			b.WriteString(speakerStyle.Render(msg.Speaker+": ") + userStyle.Render(msg.Text))
		case chat.RoleNarrator:
			b.WriteString(speakerStyle.Render(NarratorName+": ") + narratorStyle.Render(msg.Text))
		case chat.RoleSystem:
			b.WriteString(systemStyle.Render(msg.Text))
		}
		b.WriteString("\n\n")
	}

	if ui.loading {
		dots := strings.Repeat(".", ui.progressTick%4)
		b.WriteString(loadingStyle.Render("The narrator is thinking" + dots))
		b.WriteString("\n")
	}

	if ui.err != nil {
		b.WriteString(errorStyle.Render("Error: " + ui.err.Error()))
		b.WriteString("\n")
	}

	ui.chatViewport.SetContent(wordwrap.String(b.String(), ui.chatViewport.Width))
	ui.chatViewport.GotoBottom()
}

func (ui *ConsoleUI) refreshMeta() {
	if ui.metaViewport.Width == 0 {
		return
	}

	var b strings.Builder

	b.WriteString(metaHeaderStyle.Render("Character"))
	b.WriteString(fmt.Sprintf("\n%s (%s %s)\nHP %d/%d  AC %d  XP %d\n\n",
		ui.character.Name, ui.character.Race, ui.character.Class,
		ui.character.HP, ui.character.MaxHP, ui.character.AC, ui.character.XP))

	if ui.gameSession.QuestLog != "" {
		b.WriteString(metaHeaderStyle.Render("Quest"))
		b.WriteString("\n" + ui.gameSession.QuestLog + "\n\n")
	}

	if ui.gameSession.Background != "" {
		b.WriteString(metaHeaderStyle.Render("Scene"))
		b.WriteString("\n" + ui.gameSession.Background + "\n\n")
	}

	if len(ui.gameSession.NPCs) > 0 {
		b.WriteString(metaHeaderStyle.Render("NPCs"))
		b.WriteString("\n")
		for name := range ui.gameSession.NPCs {
			b.WriteString("- " + name + "\n")
		}
		b.WriteString("\n")
	}

	if ui.gameSession.InCombat {
		b.WriteString(metaHeaderStyle.Render("Combat"))
		b.WriteString("\n")
		for _, c := range ui.gameSession.Combatants {
			b.WriteString(fmt.Sprintf("%2d  %s (HP %d)\n", c.Initiative, c.Name, c.HP))
		}
		b.WriteString("\n")
	}

	if len(ui.gameSession.Choices) > 0 {
		b.WriteString(metaHeaderStyle.Render("Choices"))
		b.WriteString("\n")
		for i, choice := range ui.gameSession.Choices {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, choice))
		}
		b.WriteString("\n")
	}

	if ui.statusNote != "" {
		b.WriteString(promptStyle.Render(ui.statusNote))
		b.WriteString("\n")
	}

	ui.metaViewport.SetContent(wordwrap.String(b.String(), ui.metaViewport.Width))
}
