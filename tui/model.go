// Package tui runs the chat widget in the terminal: a text input stands in for
// the page's input box, Enter for the send button and a scrolling viewport for
// the output container.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github/itish2003/invoicechat/widget"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// chrome is the number of rows taken by everything but the viewport.
const chrome = 5

// transcriptUpdatedMsg tells the model a line was appended from a request
// goroutine.
type transcriptUpdatedMsg struct{}

// textInputField adapts a textinput.Model to widget.Input.
type textInputField struct {
	model *textinput.Model
}

func (f textInputField) Value() string         { return f.model.Value() }
func (f textInputField) SetValue(value string) { f.model.SetValue(value) }

type Model struct {
	ctx        context.Context
	title      string
	input      *textinput.Model
	viewport   viewport.Model
	transcript *widget.Transcript
	widget     *widget.ChatWidget
	quitting   bool
}

// New builds the model. The input lives behind a pointer so the widget and
// the bubbletea update loop see the same control.
func New(ctx context.Context, title string, asker widget.Asker, log logrus.FieldLogger) Model {
	input := textinput.New()
	input.Placeholder = "Ask about the invoice..."
	input.Prompt = "> "
	input.Focus()
	input.Width = 72

	transcript := widget.NewTranscript()
	return Model{
		ctx:        ctx,
		title:      title,
		input:      &input,
		viewport:   viewport.New(80, 20),
		transcript: transcript,
		widget:     widget.New(textInputField{model: &input}, transcript, asker, log),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.widget.Click(m.ctx)
			m.refresh()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 1)
		m.input.Width = max(msg.Width-len(m.input.Prompt)-1, 1)
		m.refresh()

	case transcriptUpdatedMsg:
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.input.View())
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("enter: send • pgup/pgdn: scroll • esc: quit"))
	return sb.String()
}

// Transcript exposes the output container.
func (m Model) Transcript() *widget.Transcript {
	return m.transcript
}

func (m *Model) refresh() {
	lines := m.transcript.Lines()
	rendered := make([]string, len(lines))
	for i, line := range lines {
		style := assistantStyle
		if strings.HasPrefix(line, widget.UserPrefix) {
			style = userStyle
		}
		rendered[i] = style.Width(m.viewport.Width).Render(line)
	}
	m.viewport.SetContent(strings.Join(rendered, "\n"))
	m.viewport.GotoBottom()
}

// Run starts the terminal chat and blocks until the user quits. Replies still
// in flight at that point are abandoned.
func Run(ctx context.Context, title string, asker widget.Asker, log logrus.FieldLogger) error {
	m := New(ctx, title, asker, log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	// Appends happen inside Update as well as on request goroutines, so the
	// notification must never block the event loop.
	m.transcript.OnAppend(func(string) {
		go p.Send(transcriptUpdatedMsg{})
	})

	_, err := p.Run()
	return err
}
