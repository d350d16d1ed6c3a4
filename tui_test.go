package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func pressRunes(m tuiModel, s string) tuiModel {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return next.(tuiModel)
}

func press(m tuiModel, t tea.KeyType) tuiModel {
	next, _ := m.Update(tea.KeyMsg{Type: t})
	return next.(tuiModel)
}

func TestTuiInputSubmits(t *testing.T) {
	var got []Command
	m := tuiModel{submit: func(cmd Command) bool {
		got = append(got, cmd)
		return true
	}}

	m = pressRunes(m, "what")
	m = press(m, tea.KeySpace)
	m = pressRunes(m, "time")
	if m.input != "what time" {
		t.Fatalf("input = %q", m.input)
	}
	m = press(m, tea.KeyBackspace)
	if m.input != "what tim" {
		t.Fatalf("input after backspace = %q", m.input)
	}

	m = press(m, tea.KeyEnter)
	if m.input != "" {
		t.Errorf("input not cleared after enter: %q", m.input)
	}
	if len(got) != 1 || got[0].Kind != CmdTextQuery || got[0].Text != "what tim" {
		t.Fatalf("submitted = %+v", got)
	}

	// Enter on blank input submits nothing.
	m = press(m, tea.KeySpace)
	m = press(m, tea.KeyEnter)
	if len(got) != 1 {
		t.Fatalf("blank input submitted: %+v", got)
	}
}

func TestTuiTabTogglesMic(t *testing.T) {
	var got []Command
	m := tuiModel{submit: func(cmd Command) bool {
		got = append(got, cmd)
		return true
	}}

	m = pressRunes(m, "half typed")
	m = press(m, tea.KeyTab)
	if len(got) != 1 || got[0].Kind != CmdToggleMic {
		t.Fatalf("submitted = %+v", got)
	}
	if m.input != "half typed" {
		t.Errorf("tab clobbered input: %q", m.input)
	}
}

func TestTuiChatHistoryCapped(t *testing.T) {
	m := tuiModel{submit: func(Command) bool { return true }}
	for i := 0; i < chatHistoryLimit+20; i++ {
		next, _ := m.Update(ChatMsg{Who: "Ghost", Text: "line"})
		m = next.(tuiModel)
	}
	if len(m.chat) != chatHistoryLimit {
		t.Fatalf("chat history = %d entries, want %d", len(m.chat), chatHistoryLimit)
	}
}

func TestTuiStatusResetsLevel(t *testing.T) {
	m := tuiModel{submit: func(Command) bool { return true }}

	next, _ := m.Update(StatusMsg{Text: "Receiving Transmission...", State: StateListening})
	m = next.(tuiModel)
	next, _ = m.Update(AudioLevelMsg{Level: 0.5})
	m = next.(tuiModel)
	if m.audioLevel == 0 {
		t.Fatal("level not tracked while listening")
	}

	next, _ = m.Update(StatusMsg{Text: "Awaiting Orders.", State: StateIdle})
	m = next.(tuiModel)
	if m.audioLevel != 0 {
		t.Errorf("level = %v after leaving listening", m.audioLevel)
	}
}

func TestTuiViewShowsChat(t *testing.T) {
	m := tuiModel{submit: func(Command) bool { return true }}
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	m = next.(tuiModel)
	next, _ = m.Update(ChatMsg{Who: "You", Text: "hello there", User: true})
	m = next.(tuiModel)
	next, _ = m.Update(ChatMsg{Who: "Ghost", Text: "Hello! How can I assist you?"})
	m = next.(tuiModel)

	view := m.View()
	if !strings.Contains(view, "You: hello there") {
		t.Error("user line missing from view")
	}
	if !strings.Contains(view, "Ghost: Hello! How can I assist you?") {
		t.Error("assistant line missing from view")
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"", 10, []string{""}},
		{"short", 10, []string{"short"}},
		{"split on a space", 8, []string{"split on", "a space"}},
		{"unbreakablelongword", 6, []string{"unbrea", "kablel", "ongwor", "d"}},
	}
	for _, tc := range tests {
		got := wrapText(tc.text, tc.width)
		if len(got) != len(tc.want) {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tc.text, tc.width, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("wrapText(%q, %d)[%d] = %q, want %q", tc.text, tc.width, i, got[i], tc.want[i])
			}
		}
	}
}
