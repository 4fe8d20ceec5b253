package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/itish2003/invoicechat/widget"
)

type echoAsker struct{}

func (echoAsker) Ask(_ context.Context, question string) (widget.Reply, error) {
	return widget.TextReply("you asked " + question), nil
}

func newTestModel() Model {
	logger, _ := logtest.NewNullLogger()
	return New(context.Background(), "Invoice Assistant", echoAsker{}, logger)
}

func press(m Model, key tea.KeyType) Model {
	updated, _ := m.Update(tea.KeyMsg{Type: key})
	return updated.(Model)
}

func TestEnterSendsAndClearsInput(t *testing.T) {
	m := newTestModel()
	m.input.SetValue("total?")

	m = press(m, tea.KeyEnter)

	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, "User: total?", m.Transcript().Lines()[0])

	m.widget.Wait()
	updated, _ := m.Update(transcriptUpdatedMsg{})
	m = updated.(Model)

	assert.Equal(t, []string{"User: total?", "Assistant: you asked total?"}, m.Transcript().Lines())
	assert.Contains(t, m.View(), "Assistant: you asked total?")
}

func TestEnterWithEmptyInputDoesNothing(t *testing.T) {
	m := press(newTestModel(), tea.KeyEnter)
	m.widget.Wait()

	assert.Zero(t, m.Transcript().Len())
}

func TestWindowResize(t *testing.T) {
	updated, _ := newTestModel().Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m := updated.(Model)

	assert.Equal(t, 100, m.viewport.Width)
	assert.Equal(t, 30-chrome, m.viewport.Height)
}

func TestEscQuits(t *testing.T) {
	updated, cmd := newTestModel().Update(tea.KeyMsg{Type: tea.KeyEsc})
	m := updated.(Model)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
