package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"cuts source sections",
			"Paris is the capital of France. Sources: [1] wikipedia.org",
			"Paris is the capital of France.",
		},
		{
			"strips urls and fixes spacing",
			"See https://example.com for details.",
			"See for details.",
		},
		{
			"strips clock times",
			"The market closed at 4:30 PM today.",
			"The market closed today.",
		},
		{
			"capitalizes sentences",
			"gravity bends light. einstein predicted this.",
			"Gravity bends light. Einstein predicted this.",
		},
		{
			"groups into paragraphs of three",
			"One. Two. Three. Four.",
			"One. Two. Three.\n\nFour.",
		},
		{"empty input", "", ""},
		{"only a url", "https://example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ChatLog.json")

	h := LoadHistory(path)
	if h.Len() != 0 {
		t.Fatalf("fresh history has %d messages", h.Len())
	}
	for i := 0; i < 13; i++ {
		h.Append("user", "question")
		h.Append("assistant", "answer")
	}
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	reloaded := LoadHistory(path)
	if reloaded.Len() != historyTurns {
		t.Errorf("reloaded %d messages, want %d", reloaded.Len(), historyTurns)
	}
	tail := reloaded.Tail(2)
	if len(tail) != 2 || tail[1].Role != "assistant" {
		t.Errorf("Tail(2) = %+v", tail)
	}

	// The file on disk must be valid indented JSON.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var msgs []chatMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		t.Fatalf("log is not valid JSON: %v", err)
	}
}

func TestHistoryWithoutPath(t *testing.T) {
	h := LoadHistory("")
	h.Append("user", "hi there")
	if err := h.Save(); err != nil {
		t.Errorf("Save() without path error: %v", err)
	}
}

func TestExtractSnippets(t *testing.T) {
	page := `<html><body>
<div class="BNeawe s3v9rd AP7Wnd">Albert Einstein was a theoretical physicist born in Ulm.</div>
<div class="BNeawe s3v9rd AP7Wnd">short</div>
<span class="BNeawe s3v9rd AP7Wnd">He developed the theory of <b>relativity</b> &amp; more.</span>
<div class="BNeawe s3v9rd AP7Wnd">Albert Einstein was a theoretical physicist born in Ulm.</div>
</body></html>`

	got := extractSnippets(page)
	want := []string{
		"Albert Einstein was a theoretical physicist born in Ulm.",
		"He developed the theory of relativity & more.",
	}
	if len(got) != len(want) {
		t.Fatalf("extractSnippets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("snippet %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestQuery(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<div class="BNeawe s3v9rd AP7Wnd">Einstein developed the theory of general relativity.</div>`))
	}))
	defer google.Close()

	var captured chatRequest
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"einstein was a physicist. Sources: [1]"}}]}`))
	}))
	defer chat.Close()

	path := filepath.Join(t.TempDir(), "ChatLog.json")
	e, err := New("test-key", "Ghost", path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	e.apiURL = chat.URL
	e.searchURL = google.URL + "/?q="
	e.now = func() time.Time {
		return time.Date(2024, time.March, 11, 15, 4, 0, 0, time.UTC)
	}

	got, err := e.Query(context.Background(), "who is Einstein")
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if got != "Einstein was a physicist." {
		t.Errorf("answer = %q", got)
	}

	if captured.Model != chatModel {
		t.Errorf("model = %q, want %q", captured.Model, chatModel)
	}
	if captured.Temperature != temperature || captured.MaxTokens != maxTokens {
		t.Errorf("sampling = %v/%v", captured.Temperature, captured.MaxTokens)
	}
	if len(captured.Messages) < 2 {
		t.Fatalf("messages = %d, want >= 2", len(captured.Messages))
	}
	if !strings.HasPrefix(captured.Messages[0].Content, "You are Ghost,") {
		t.Errorf("system prompt = %q", captured.Messages[0].Content)
	}
	user := captured.Messages[len(captured.Messages)-1].Content
	if !strings.Contains(user, "Query: who is Einstein") {
		t.Errorf("user message missing query: %q", user)
	}
	if !strings.Contains(user, "Current time: Monday, March 11, 2024 03:04 PM") {
		t.Errorf("user message missing time: %q", user)
	}
	if !strings.Contains(user, "Einstein developed the theory of general relativity.") {
		t.Errorf("user message missing scraped source: %q", user)
	}

	// Both turns must have landed in the persisted history.
	h := LoadHistory(path)
	if h.Len() != 2 {
		t.Errorf("history has %d messages, want 2", h.Len())
	}
}

func TestQueryWithoutSources(t *testing.T) {
	google := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusTooManyRequests)
	}))
	defer google.Close()

	var user string
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &req)
		user = req.Messages[len(req.Messages)-1].Content
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"An answer."}}]}`))
	}))
	defer chat.Close()

	e, err := New("test-key", "Ghost", "")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	e.apiURL = chat.URL
	e.searchURL = google.URL + "/?q="

	if _, err := e.Query(context.Background(), "anything"); err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if !strings.Contains(user, "No sources found") {
		t.Errorf("user message = %q, want No sources found marker", user)
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New("", "Ghost", ""); err == nil {
		t.Error("New() with empty key did not error")
	}
}

func TestQueryAPIError(t *testing.T) {
	chat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer chat.Close()

	e, err := New("test-key", "Ghost", "")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	e.apiURL = chat.URL
	e.searchURL = chat.URL + "/?q=" // irrelevant, scrape output unused on error

	if _, err := e.Query(context.Background(), "anything"); err == nil {
		t.Error("Query() with failing API did not error")
	}
}
