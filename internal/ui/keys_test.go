package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// The escape key reports itself as "esc", so the bindings must be declared
// with that name or they never match.
func TestEscBindingsMatchTheReportedKey(t *testing.T) {
	keys := DefaultKeyMap()
	esc := tea.KeyMsg{Type: tea.KeyEsc}

	if esc.String() != "esc" {
		t.Fatalf("esc key reports as %q", esc.String())
	}
	if !key.Matches(esc, keys.Back) {
		t.Error("Back binding does not match esc")
	}
	if !key.Matches(esc, keys.Cancel) {
		t.Error("Cancel binding does not match esc")
	}
}

func TestQuitBindingMatchesBothKeys(t *testing.T) {
	keys := DefaultKeyMap()

	q := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
	if !key.Matches(q, keys.Quit) {
		t.Error("Quit binding does not match q")
	}
	ctrlC := tea.KeyMsg{Type: tea.KeyCtrlC}
	if !key.Matches(ctrlC, keys.Quit) {
		t.Error("Quit binding does not match ctrl+c")
	}
}
