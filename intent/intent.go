// Package intent maps transcribed utterances to assistant intents. A small
// TF-IDF classifier trained from a local SQLite database does the heavy
// lifting, with keyword patterns as a fallback for queries the model is
// unsure about. Corrections fed back at runtime become new training data.
package intent

import (
	"math"
	"strings"
	"sync"
)

const (
	// ConfidenceThreshold is the minimum model score for a prediction to be
	// acted on directly. Below it the keyword patterns get a say.
	ConfidenceThreshold = 0.6

	// UncertainThreshold marks logged queries worth reviewing for feedback.
	UncertainThreshold = 0.7

	// patternConfidence is assigned when a keyword pattern matches.
	patternConfidence = 0.8

	// minSamplesPerIntent gates training. With fewer examples per class the
	// centroids are noise.
	minSamplesPerIntent = 3
)

type Prediction struct {
	Intent     string
	Entity     string
	Type       string
	Confidence float64
	Source     string // "model", "pattern" or "none"
}

type Engine struct {
	mu    sync.Mutex
	store *Store
	clf   *classifier
}

// seedExamples bootstrap an empty database so the assistant understands the
// core commands on first run.
var seedExamples = []Example{
	{"what time is it now", "get_time"},
	{"current time", "get_time"},
	{"what's the current time", "get_time"},
	{"tell me the time", "get_time"},
	{"what's the time", "get_time"},

	{"hello there", "greeting"},
	{"hi", "greeting"},
	{"hey", "greeting"},
	{"howdy", "greeting"},
	{"good morning", "greeting"},
	{"good afternoon", "greeting"},
	{"good evening", "greeting"},

	{"what's the weather in London", "get_weather"},
	{"tell me the temperature", "get_weather"},
	{"how's the weather looking today", "get_weather"},
	{"will it rain tomorrow in Paris", "get_weather"},
	{"weather in Delhi", "get_weather"},
	{"temperature in Mumbai", "get_weather"},
	{"is it sunny in New York", "get_weather"},
	{"weather for paudi garhwal", "get_weather"},
	{"how is the weather today", "get_weather"},
	{"weather", "get_weather"},

	{"who made you", "system_info"},
	{"what can you do", "system_info"},
	{"tell me about yourself", "system_info"},
	{"what is your purpose", "system_info"},
	{"what is your name", "system_info"},
	{"who created you", "system_info"},
	{"about yourself", "system_info"},

	{"exit the program", "exit"},
	{"stop listening", "exit"},
	{"terminate program", "exit"},
	{"goodbye", "exit"},
	{"go to sleep", "exit"},
	{"shut down", "exit"},
	{"I am done", "exit"},
	{"you can stop now", "exit"},
	{"quit", "exit"},

	{"who is Albert Einstein", "get_info"},
	{"what is the capital of France", "get_info"},
	{"where is the Eiffel Tower", "get_info"},
	{"how does a volcano erupt", "get_info"},
	{"find information about gravity", "get_info"},
	{"show me facts about space", "get_info"},
	{"tell me about artificial intelligence", "get_info"},
	{"who is Honey Singh", "get_info"},
	{"who is narendra modi", "get_info"},
}

// fallbackPatterns are checked in order, first match wins.
var fallbackPatterns = []struct {
	intent   string
	triggers []string
}{
	{"greeting", []string{"hello", "hi", "hey"}},
	{"get_time", []string{"time", "clock", "what time"}},
	{"get_weather", []string{"weather", "forecast", "temperature"}},
	{"system_info", []string{"who made", "created", "what are you", "your name"}},
	{"exit", []string{"exit", "quit", "stop", "goodbye", "go to sleep", "shut down", "i am done", "you can stop now"}},
	{"get_info", []string{"who is", "where is", "what is", "how", "find", "show me"}},
}

func New(dbPath string) (*Engine, error) {
	store, err := OpenStore(dbPath)
	if err != nil {
		return nil, err
	}
	e := &Engine{store: store}
	n, err := store.TrainingCount()
	if err != nil {
		store.Close()
		return nil, err
	}
	if n == 0 {
		if err := e.seed(); err != nil {
			store.Close()
			return nil, err
		}
	}
	if err := e.retrain(); err != nil {
		store.Close()
		return nil, err
	}
	return e, nil
}

func (e *Engine) seed() error {
	for _, ex := range seedExamples {
		clean := normalize(ex.Text)
		if clean == "" {
			continue
		}
		if err := e.store.AddTraining(clean, ex.Intent, "initial"); err != nil {
			return err
		}
	}
	return nil
}

// Predict classifies an utterance. Every non-empty query lands in the query
// log so low-confidence ones can be reviewed and corrected later.
func (e *Engine) Predict(text string) Prediction {
	e.mu.Lock()
	defer e.mu.Unlock()

	text = strings.TrimSpace(text)
	clean := normalize(text)

	var p Prediction
	switch {
	case text == "" || clean == "":
		p = Prediction{Intent: "unknown", Type: "unknown", Source: "none"}
	case e.clf == nil:
		p = e.fromPatterns(text, 0)
	default:
		name, conf := e.clf.predict(clean)
		if name == "" || conf < ConfidenceThreshold {
			p = e.fromPatterns(text, conf)
		} else {
			p = resolve(name, text, conf, "model")
		}
	}
	if text != "" {
		_ = e.store.LogQuery(text, p.Intent, p.Confidence)
	}
	return p
}

func (e *Engine) fromPatterns(text string, modelConf float64) Prediction {
	lower := strings.ToLower(text)
	for _, fp := range fallbackPatterns {
		for _, trigger := range fp.triggers {
			if strings.Contains(lower, trigger) {
				return resolve(fp.intent, text, math.Max(modelConf, patternConfidence), "pattern")
			}
		}
	}
	return Prediction{Intent: "unknown", Type: "unknown", Confidence: modelConf, Source: "none"}
}

// resolve fills in the action type and entity for a recognized intent.
func resolve(name, text string, conf float64, source string) Prediction {
	p := Prediction{Intent: name, Confidence: conf, Source: source}
	switch name {
	case "get_time":
		p.Type = "time_query"
	case "get_weather":
		p.Type = "weather_query"
		p.Entity = extractLocation(text)
	case "system_info":
		p.Type = "system_query"
		p.Entity = systemEntity(text)
	case "greeting":
		p.Type = "greeting"
	case "exit":
		p.Type = "exit_command"
		p.Entity = "terminate"
	case "get_info":
		p.Type = "information_query"
		p.Entity = extractSubject(text)
	default:
		p.Type = name
	}
	return p
}

// AddExample records a new training phrase and retrains once every intent
// has enough samples.
func (e *Engine) AddExample(text, intentName, source string) error {
	clean := normalize(text)
	if clean == "" {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.AddTraining(clean, intentName, source); err != nil {
		return err
	}
	return e.retrainLocked()
}

// Feedback corrects the latest prediction for text and folds the correction
// into the training set.
func (e *Engine) Feedback(text, correctIntent string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.SetCorrectIntent(text, correctIntent); err != nil {
		return err
	}
	clean := normalize(text)
	if clean == "" {
		return nil
	}
	have, err := e.store.HasTraining(clean, correctIntent)
	if err != nil {
		return err
	}
	if !have {
		if err := e.store.AddTraining(clean, correctIntent, "user"); err != nil {
			return err
		}
	}
	return e.retrainLocked()
}

// Uncertain lists recent queries the model scored below UncertainThreshold.
func (e *Engine) Uncertain() ([]UncertainQuery, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Uncertain(UncertainThreshold)
}

func (e *Engine) Trained() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clf != nil
}

func (e *Engine) retrain() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.retrainLocked()
}

func (e *Engine) retrainLocked() error {
	counts, err := e.store.TrainingCounts()
	if err != nil {
		return err
	}
	if !trainable(counts) {
		return nil
	}
	examples, err := e.store.TrainingData()
	if err != nil {
		return err
	}
	e.clf = trainClassifier(examples)
	return nil
}

// trainable requires at least two intents with minSamplesPerIntent examples
// each.
func trainable(counts map[string]int) bool {
	if len(counts) < 2 {
		return false
	}
	for _, n := range counts {
		if n < minSamplesPerIntent {
			return false
		}
	}
	return true
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Close()
}
