package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/chat"
	bt "github.com/fwojciec/chat/bubbletea"
	"github.com/stretchr/testify/require"
)

const greeting = "Hello! I'm an AI assistant."

// initModel creates a model seeded with a greeting and sends a
// WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, submit bt.SubmitFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, submit, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, submit bt.SubmitFunc, width, height int) bt.Model {
	t.Helper()
	log := chat.NewLog("test", chat.AssistantMessage(greeting))
	m := bt.New(submit, log, chat.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// typeText sends text to the model one rune at a time.
func typeText(t *testing.T, m bt.Model, text string) bt.Model {
	t.Helper()
	for _, r := range text {
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// nopSubmit is a submit function that does nothing.
func nopSubmit(_ context.Context, _ string, _ chat.Hooks) error {
	return nil
}
