package ui_test

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/sotsync/internal/tui/ui"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestKeyMap_Navigation(t *testing.T) {
	t.Parallel()

	km := ui.DefaultKeyMap()

	tests := []struct {
		key    string
		up     bool
		down   bool
		scroll bool
	}{
		{"up", true, false, false},
		{"k", true, false, false},
		{"down", false, true, false},
		{"j", false, true, false},
		{"pgdown", false, false, true},
		{"x", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Parallel()
			msg := keyMsg(tt.key)
			assert.Equal(t, tt.up, km.IsUp(msg))
			assert.Equal(t, tt.down, km.IsDown(msg))
			assert.Equal(t, tt.scroll, km.IsScroll(msg))
		})
	}
}

func TestKeyMap_ApproveCancel(t *testing.T) {
	t.Parallel()

	km := ui.DefaultKeyMap()

	assert.True(t, key.Matches(keyMsg("a"), km.Approve))
	assert.True(t, key.Matches(keyMsg("enter"), km.Approve))
	assert.True(t, key.Matches(keyMsg("q"), km.Cancel))
	assert.True(t, key.Matches(keyMsg("esc"), km.Cancel))
	assert.False(t, key.Matches(keyMsg("y"), km.Approve))
}
