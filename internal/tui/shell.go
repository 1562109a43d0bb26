// Package tui provides the interactive terminal console for the bot.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lepinkainen/bookbot/internal/chat"
)

const (
	defaultWidth  = 72
	transcriptMax = 200
	unknownHint   = "Неизвестная команда. Список команд: /help"
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// Handler answers one chat message.
type Handler interface {
	Handle(ctx context.Context, text string, reply chat.Replier) error
}

type speaker int

const (
	speakerUser speaker = iota
	speakerBot
	speakerSystem
)

type line struct {
	from speaker
	text string
}

// repliesMsg carries the replies of one handled command back to the model.
type repliesMsg struct {
	replies []string
	err     error
}

type model struct {
	ctx        context.Context
	handler    Handler
	input      textinput.Model
	transcript []line
	busy       bool
	width      int
}

func newModel(ctx context.Context, handler Handler) *model {
	ti := textinput.New()
	ti.Placeholder = "/find Harry Potter"
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Width = defaultWidth - 4
	ti.Focus()

	return &model{
		ctx:     ctx,
		handler: handler,
		input:   ti,
		width:   defaultWidth,
		transcript: []line{
			{from: speakerSystem, text: "Введите /start, /help, /find, /author или /random"},
		},
	}
}

func (m *model) Init() tea.Cmd { return textinput.Blink }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			return m, m.submit()
		}
	case tea.WindowSizeMsg:
		m.width = clamp(defaultWidth, msg.Width-2, 30)
		m.input.Width = m.width - 4
	case repliesMsg:
		m.busy = false
		for _, r := range msg.replies {
			m.append(speakerBot, r)
		}
		if errors.Is(msg.err, chat.ErrNotCommand) || errors.Is(msg.err, chat.ErrUnknownCommand) {
			m.append(speakerSystem, unknownHint)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the current input to the handler. Input is ignored while a
// previous command is still running.
func (m *model) submit() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy {
		return nil
	}
	m.input.SetValue("")

	if text == "/quit" || text == "/exit" {
		return tea.Quit
	}

	m.append(speakerUser, text)
	m.busy = true

	ctx, handler := m.ctx, m.handler
	return func() tea.Msg {
		var replies []string
		err := handler.Handle(ctx, text, func(_ context.Context, reply string) error {
			replies = append(replies, reply)
			return nil
		})
		return repliesMsg{replies: replies, err: err}
	}
}

func (m *model) append(from speaker, text string) {
	m.transcript = append(m.transcript, line{from: from, text: strings.TrimRight(text, "\n")})
	if len(m.transcript) > transcriptMax {
		m.transcript = m.transcript[len(m.transcript)-transcriptMax:]
	}
}

func (m *model) View() string {
	header := headerStyle.Render("bookbot")

	rendered := make([]string, 0, len(m.transcript))
	for _, l := range m.transcript {
		switch l.from {
		case speakerUser:
			rendered = append(rendered, userStyle.Render(l.text))
		case speakerBot:
			rendered = append(rendered, botStyle.Width(m.width).Render(l.text))
		default:
			rendered = append(rendered, systemStyle.Render(l.text))
		}
	}

	status := ""
	if m.busy {
		status = systemStyle.Render("...")
	}

	help := helpStyle.Render("Enter send | Esc quit")
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinVertical(lipgloss.Left, rendered...),
		status,
		m.input.View(),
		help,
	)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("110"))

	botStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("62")).
			PaddingLeft(1).
			Foreground(lipgloss.Color("252"))

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("247")).
			Faint(true)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// Run starts the interactive console and blocks until the user quits.
func Run(ctx context.Context, handler Handler) error {
	final, err := runProgram(newModel(ctx, handler))
	if err != nil {
		return err
	}
	if _, ok := final.(*model); !ok {
		return fmt.Errorf("unexpected program result")
	}
	return nil
}

func clamp(defaultValue, available, minimum int) int {
	width := defaultValue
	if available > 0 && available < defaultValue {
		width = available
	}
	if width < minimum {
		width = minimum
	}
	return width
}
