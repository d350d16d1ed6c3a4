// Package search answers open-ended questions. It scrapes a handful of web
// snippets for grounding, hands them to a Groq chat model together with the
// conversation history, and post-processes the reply into clean speakable
// prose.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	chatURL   = "https://api.groq.com/openai/v1/chat/completions"
	chatModel = "llama3-70b-8192"

	temperature = 0.7
	maxTokens   = 1024

	// historyTurns limits how much of the conversation rides along with
	// each request.
	historyTurns = 20
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Engine struct {
	apiKey  string
	name    string
	http    *http.Client
	history *History
	now     func() time.Time

	// Endpoints, overridden in tests.
	apiURL    string
	searchURL string
}

// New builds a search engine speaking as assistantName. historyPath is the
// JSON chat log carried across sessions; an empty path disables persistence.
func New(apiKey, assistantName, historyPath string) (*Engine, error) {
	if apiKey == "" {
		return nil, errors.New("set GROQ_API_KEY environment variable")
	}
	return &Engine{
		apiKey:    apiKey,
		name:      assistantName,
		http:      &http.Client{Timeout: 30 * time.Second},
		history:   LoadHistory(historyPath),
		now:       time.Now,
		apiURL:    chatURL,
		searchURL: googleURL,
	}, nil
}

func (e *Engine) systemPrompt() string {
	return fmt.Sprintf("You are %s, an AI assistant that provides concise information. "+
		"Respond with: - Complete, well-structured paragraphs - Current, accurate data "+
		"- Natural flowing text - No sources or timestamps", e.name)
}

// Query answers q using fresh web context. The reply is already cleaned for
// speech output.
func (e *Engine) Query(ctx context.Context, q string) (string, error) {
	sources := e.scrape(ctx, q)
	sourceBlock := "No sources found"
	if len(sources) > 0 {
		sourceBlock = strings.Join(sources, "\n")
	}
	searchContext := fmt.Sprintf("Current time: %s\nSources:\n%s",
		e.now().Format("Monday, January 02, 2006 03:04 PM"), sourceBlock)

	messages := []chatMessage{{Role: "system", Content: e.systemPrompt()}}
	messages = append(messages, e.history.Tail(historyTurns)...)
	messages = append(messages, chatMessage{
		Role:    "user",
		Content: fmt.Sprintf("Query: %s\nContext:\n%s", q, searchContext),
	})

	raw, err := e.complete(ctx, messages)
	if err != nil {
		return "", err
	}
	answer := Clean(raw)
	if answer == "" {
		answer = "No information available"
	}

	e.history.Append("user", q)
	e.history.Append("assistant", answer)
	if err := e.history.Save(); err != nil {
		return answer, fmt.Errorf("save chat history: %w", err)
	}
	return answer, nil
}

func (e *Engine) complete(ctx context.Context, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       chatModel,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("chat API: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat API returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
