package search

import (
	"encoding/json"
	"os"
)

// History is the conversation log persisted as ChatLog.json, trimmed to the
// most recent turns on every save.
type History struct {
	path     string
	messages []chatMessage
}

// LoadHistory reads an existing chat log. A missing or unreadable file just
// starts an empty history.
func LoadHistory(path string) *History {
	h := &History{path: path}
	if path == "" {
		return h
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return h
	}
	_ = json.Unmarshal(data, &h.messages)
	return h
}

func (h *History) Append(role, content string) {
	h.messages = append(h.messages, chatMessage{Role: role, Content: content})
}

// Tail returns the most recent n messages.
func (h *History) Tail(n int) []chatMessage {
	if len(h.messages) <= n {
		return h.messages
	}
	return h.messages[len(h.messages)-n:]
}

func (h *History) Len() int {
	return len(h.messages)
}

// Save writes the trimmed history back to disk.
func (h *History) Save() error {
	if h.path == "" {
		return nil
	}
	if len(h.messages) > historyTurns {
		h.messages = h.messages[len(h.messages)-historyTurns:]
	}
	data, err := json.MarshalIndent(h.messages, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(h.path, data, 0644)
}
