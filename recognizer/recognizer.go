// Package recognizer turns captured speech into text. Audio is encoded
// concurrently while the user is still talking, then uploaded in one
// request when the phrase closes.
package recognizer

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type NetworkMetrics struct {
	DNS        time.Duration
	ConnWait   time.Duration
	TCP        time.Duration
	TLS        time.Duration
	ReqHeaders time.Duration
	ReqBody    time.Duration
	TTFB       time.Duration
	Download   time.Duration
	Total      time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

type Segment struct {
	Text             string
	NoSpeechProb     float64
	AvgLogProb       float64
	CompressionRatio float64
	Temperature      float64
	Start            float64
	End              float64
}

type Result struct {
	Text         string
	Metrics      *NetworkMetrics
	RateLimit    string
	Confidence   float64
	NoSpeechProb float64
	AvgLogProb   float64
	Duration     float64
	Segments     []Segment
}

type Recognizer interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
}

type baseRecognizer struct {
	client *TracedClient
	apiURL string
	lang   string
}

func (b *baseRecognizer) SetLanguage(lang string) { b.lang = lang }

func (b *baseRecognizer) GetLanguage() string { return b.lang }

func New(apiKey string) (Recognizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("set GROQ_API_KEY environment variable")
	}
	return NewGroq(apiKey), nil
}
