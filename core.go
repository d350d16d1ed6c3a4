package main

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/23578aniket/Ghost/actions"
	"github.com/23578aniket/Ghost/audio"
	"github.com/23578aniket/Ghost/beep"
	"github.com/23578aniket/Ghost/config"
	"github.com/23578aniket/Ghost/encoder"
	"github.com/23578aniket/Ghost/intent"
	"github.com/23578aniket/Ghost/log"
	"github.com/23578aniket/Ghost/recognizer"
	"github.com/23578aniket/Ghost/search"
	"github.com/23578aniket/Ghost/speaker"
	"github.com/23578aniket/Ghost/state"
)

// Status lines shown while the assistant works. They are also what lands
// in Status.data, so external tooling sees the same strings the UI does.
const (
	statusIdle      = "Awaiting Orders."
	statusListening = "Receiving Transmission..."
	statusAnalyzing = "Analyzing Data..."
	statusActivated = "Activated. Processing..."
	statusCommand   = "Command Received. Processing..."
	statusOffline   = "Offline."
	statusError     = "Critical Error."
)

const (
	recognizeTimeout = 30 * time.Second
	speakTimeout     = 30 * time.Second
	searchTimeout    = 60 * time.Second
	listenBackoff    = time.Second
)

var (
	greetingResponses = []string{
		"Hello! How can I assist you?",
		"Hi there!",
		"Greetings!",
	}
	exitResponses = []string{
		"Goodbye!",
		"See you later!",
		"Shutting down.",
	}
	unknownResponses = []string{
		"I'm not sure how to help with that. Can you rephrase?",
		"I didn't quite catch that. Could you say it again?",
		"Sorry, I didn't understand. Could you try a different command?",
	}
)

const actionErrorResponse = "Sorry, I encountered an error while trying to perform that action."

// CommandKind tags the messages the presentation layer may submit.
type CommandKind int

const (
	CmdToggleMic CommandKind = iota
	CmdTextQuery
	CmdFeedback
	CmdStop
)

func (k CommandKind) String() string {
	switch k {
	case CmdToggleMic:
		return "toggle_mic"
	case CmdTextQuery:
		return "text_query"
	case CmdFeedback:
		return "feedback"
	case CmdStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Command is the single message type crossing from the UI to the core.
type Command struct {
	Kind   CommandKind
	Text   string // CmdTextQuery: the typed query
	Query  string // CmdFeedback: the misunderstood query
	Intent string // CmdFeedback: the corrected intent
}

// Components are the wired domain pieces the core drives. main wires the
// real implementations; tests inject fakes.
type Components struct {
	Audio      audio.Context
	Device     *audio.DeviceInfo // nil means the system default microphone
	Recognizer recognizer.Recognizer
	Intent     *intent.Engine
	Actions    *actions.Dispatcher
	Search     *search.Engine // nil disables realtime lookups
	Speaker    speaker.Synthesizer
	Files      *state.Files
}

// Core owns the assistant loop. All listening, intent dispatch and speech
// happen on its goroutine; the UI talks to it exclusively through Submit
// and hears back through the EventSink.
type Core struct {
	cfg      *config.Config
	sink     EventSink
	files    *state.Files
	actx     audio.Context
	dev      *audio.DeviceInfo
	rec      recognizer.Recognizer
	engine   *intent.Engine
	disp     *actions.Dispatcher
	searcher *search.Engine
	synth    speaker.Synthesizer

	commands chan Command
	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc

	// Loop state, owned by the core goroutine.
	capture     audio.CaptureDevice
	deviceShown bool
	det         *energyDetector
	micOn       bool
	active      bool
	lastCmd     time.Time
	handled     int

	// lastReply is also read by the tray's copy action, off-loop.
	replyMu   sync.Mutex
	lastReply string

	pick func(n int) int // swapped in tests for fixed canned replies
}

func NewCore(cfg *config.Config, sink EventSink, comps Components) *Core {
	ctx, cancel := context.WithCancel(context.Background())
	return &Core{
		cfg:      cfg,
		sink:     sink,
		files:    comps.Files,
		actx:     comps.Audio,
		dev:      comps.Device,
		rec:      comps.Recognizer,
		engine:   comps.Intent,
		disp:     comps.Actions,
		searcher: comps.Search,
		synth:    comps.Speaker,
		commands: make(chan Command, 16),
		stopped:  make(chan struct{}),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		det:      newEnergyDetector(cfg.EnergyThreshold),
		lastCmd:  time.Now(),
		pick:     rand.Intn,
	}
}

// Start launches the assistant loop goroutine.
func (c *Core) Start() {
	go c.loop()
}

// Submit hands a command to the core without blocking. It reports false
// once shutdown has begun or when the queue is full; an accepted command
// is executed exactly once.
func (c *Core) Submit(cmd Command) bool {
	select {
	case <-c.stopped:
		log.Warnf("command %s dropped: core stopped", cmd.Kind)
		return false
	default:
	}
	select {
	case c.commands <- cmd:
		return true
	case <-c.stopped:
		log.Warnf("command %s dropped: core stopped", cmd.Kind)
		return false
	default:
		log.Warnf("command %s dropped: queue full", cmd.Kind)
		return false
	}
}

// Stop asks the loop to exit. Safe to call more than once, from any
// goroutine.
func (c *Core) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopped)
		c.cancel()
	})
}

// Wait blocks until the loop has exited or the timeout elapses, and
// reports whether it finished in time.
func (c *Core) Wait(timeout time.Duration) bool {
	select {
	case <-c.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Handled reports how many commands the loop has processed. Valid after
// the loop has exited.
func (c *Core) Handled() int {
	return c.handled
}

// LastReply returns the most recent assistant reply, "" before the first.
func (c *Core) LastReply() string {
	c.replyMu.Lock()
	defer c.replyMu.Unlock()
	return c.lastReply
}

func (c *Core) setLastReply(text string) {
	c.replyMu.Lock()
	c.lastReply = text
	c.replyMu.Unlock()
}

func (c *Core) loop() {
	defer close(c.done)
	defer func() {
		if c.capture != nil {
			c.capture.Close()
		}
	}()

	c.micOn = c.files.Mic()
	c.sink.MicState(c.micOn)
	c.setStatus(statusIdle, StateIdle)
	log.Info("assistant loop started")

	for {
		if !c.micOn {
			// Nothing to do between typed commands.
			select {
			case <-c.stopped:
				c.setStatus(statusOffline, StateOffline)
				return
			case cmd := <-c.commands:
				c.handle(cmd)
			}
			continue
		}

		select {
		case <-c.stopped:
			c.setStatus(statusOffline, StateOffline)
			return
		case cmd := <-c.commands:
			c.handle(cmd)
			continue
		default:
		}

		if c.active && time.Since(c.lastCmd) > c.cfg.InactivityTimeout {
			c.goToSleep()
			continue
		}

		c.listenOnce()
	}
}

// handle runs one submitted command on the core goroutine.
func (c *Core) handle(cmd Command) {
	switch cmd.Kind {
	case CmdToggleMic:
		c.toggleMic()
	case CmdTextQuery:
		text := strings.TrimSpace(cmd.Text)
		if text == "" {
			return
		}
		c.setStatus(statusCommand, StateProcessing)
		c.process(text)
	case CmdFeedback:
		if err := c.engine.Feedback(cmd.Query, cmd.Intent); err != nil {
			log.Errorf("intent feedback: %v", err)
		}
	case CmdStop:
		c.Stop()
	}
}

// toggleMic flips capture on or off, mirroring the original mic icon:
// switching on counts as an activation, switching off says goodnight.
func (c *Core) toggleMic() {
	c.micOn = !c.micOn
	if err := c.files.SetMic(c.micOn); err != nil {
		log.Errorf("write mic state: %v", err)
	}
	c.sink.MicState(c.micOn)

	if c.micOn {
		c.active = true
		c.lastCmd = time.Now()
		beep.PlayStart()
		c.setStatus(statusActivated, StateProcessing)
		c.respond("How may I help you?")
	} else {
		c.active = false
		beep.PlayEnd()
		c.respond("Okay, I'm going to sleep.")
	}
}

// goToSleep powers the listener down after the inactivity timeout, the way
// the assistant originally went offline.
func (c *Core) goToSleep() {
	log.Info("inactivity timeout reached, going to sleep")
	c.active = false
	c.micOn = false
	if err := c.files.SetMic(false); err != nil {
		log.Errorf("write mic state: %v", err)
	}
	beep.PlayEnd()
	c.setStatus("Going to sleep now.", StateSpeaking)
	c.speak("Going to sleep now.")
	c.sink.MicState(false)
	c.setStatus(statusOffline, StateOffline)
}

// listenOnce runs a single capture window: a short hotword probe while the
// assistant is dormant, a full command window once it is active.
func (c *Core) listenOnce() {
	limit := c.cfg.HotwordWindow
	if c.active {
		limit = c.cfg.PhraseTimeLimit
	}

	c.setStatus(statusListening, StateListening)
	text := c.listen(limit)

	switch {
	case !c.active:
		if text != "" && strings.Contains(strings.ToLower(text), strings.ToLower(c.cfg.Hotword)) {
			c.activate()
		}
	case text != "":
		c.setStatus(statusCommand, StateProcessing)
		c.process(text)
	default:
		c.setStatus(statusIdle, StateIdle)
	}
}

// listen opens one capture window and returns the recognized text, "" for
// a window that stayed silent, was aborted, or could not be recognized.
// Capture and recognition failures are logged and reported as silence so
// the loop keeps running, as the original recognizer did.
func (c *Core) listen(limit time.Duration) string {
	capture, err := c.captureDevice()
	if err != nil {
		log.Errorf("open capture: %v", err)
		c.sink.Warning("Microphone unavailable.")
		c.setStatus(statusError, StateError)
		c.sleep(listenBackoff)
		return ""
	}

	var mu sync.Mutex
	var buf []byte
	c.det.Reset()
	capture.SetCallback(func(data []byte, _ uint32) {
		mu.Lock()
		buf = append(buf, data...)
		mu.Unlock()
		c.det.Process(data)
	})

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		log.Errorf("start capture: %v", err)
		c.sink.Warning("Microphone unavailable.")
		c.sleep(listenBackoff)
		return ""
	}

	if !c.deviceShown {
		c.deviceShown = true
		name := capture.DeviceName()
		c.sink.DeviceLine(name)
		if audio.IsBluetooth(name) {
			c.sink.Warning("Bluetooth microphone detected, audio quality may be reduced.")
		}
	}

	monitor := newPhraseMonitor(c.cfg.PauseThreshold, limit)
	ticker := time.NewTicker(tickInterval)
	aborted := false

window:
	for {
		select {
		case <-c.stopped:
			aborted = true
			break window
		case <-ticker.C:
			c.sink.AudioLevel(c.det.Level())
			ev := monitor.Tick(c.det.HasSpeechTick())
			if ev == PhraseEnd || ev == PhraseTimeout {
				break window
			}
			if len(c.commands) > 0 {
				// A pending command outranks the open window.
				aborted = true
				break window
			}
		}
	}
	ticker.Stop()
	capture.Stop()
	capture.ClearCallback()
	c.sink.AudioLevel(0)

	if aborted || !monitor.SpeechSeen() {
		return ""
	}

	mu.Lock()
	pcm := buf
	buf = nil
	mu.Unlock()
	if len(pcm) == 0 {
		return ""
	}

	return c.recognize(pcm)
}

// recognize ships one window of PCM through the recognizer.
func (c *Core) recognize(pcm []byte) string {
	if c.rec == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(c.ctx, recognizeTimeout)
	defer cancel()

	sess, err := c.rec.NewSession(ctx, recognizer.SessionConfig{Format: "flac"})
	if err != nil {
		log.Errorf("recognizer session: %v", err)
		c.sleep(listenBackoff)
		return ""
	}
	sess.Feed(pcm)
	res, err := sess.Close()
	if err != nil {
		log.Errorf("recognition: %v", err)
		c.sleep(listenBackoff)
		return ""
	}

	if res.RateLimit != "" {
		log.Warnf("recognition rate limit: %s", res.RateLimit)
	}
	for _, line := range res.Metrics {
		log.Info(line)
	}
	if res.Batch != nil {
		log.Confidence(res.Batch.Confidence)
	}
	if res.NoSpeech || !res.HasText {
		return ""
	}
	return strings.TrimSpace(res.Text)
}

// activate flips the assistant into command mode after a hotword hit.
func (c *Core) activate() {
	c.active = true
	c.lastCmd = time.Now()
	beep.PlayStart()
	c.setStatus(statusActivated, StateProcessing)
	c.respond("How may I help you?")
	c.lastCmd = time.Now() // the prompt must not eat into the command window
}

// process runs one heard or typed command through intent recognition,
// actions and search, then voices the reply.
func (c *Core) process(text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("command panic: %v", r)
			beep.PlayError()
			resp := "Sorry, I encountered an internal error while processing your command."
			c.setStatus(resp, StateError)
			c.emitChat(c.cfg.AssistantName, resp, false)
			c.speak(resp)
		}
	}()

	c.lastCmd = time.Now()
	c.handled++
	c.emitChat(c.cfg.Username, text, true)

	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "deactivate" || lower == "go to sleep" {
		c.active = false
		beep.PlayEnd()
		c.respond("Okay, I'm going to sleep.")
		return
	}

	c.setStatus(statusAnalyzing, StateProcessing)
	c.respond(c.reply(text))
}

// reply maps command text to a spoken response. Explicit system commands
// run first so a retrained model can never reroute them.
func (c *Core) reply(text string) string {
	if req, ok := actions.Match(text); ok {
		req.LastReply = c.LastReply()
		resp, err := c.disp.Dispatch(req)
		if err != nil {
			log.Errorf("action %s: %v", req.Intent, err)
			return actionErrorResponse
		}
		return resp
	}

	pred := c.engine.Predict(text)
	log.IntentPrediction(text, pred.Intent, pred.Confidence, pred.Source)

	if pred.Intent == "unknown" || pred.Confidence < intent.ConfidenceThreshold {
		return unknownResponses[c.pick(len(unknownResponses))]
	}

	switch pred.Intent {
	case "greeting":
		return greetingResponses[c.pick(len(greetingResponses))]
	case "exit":
		c.active = false
		beep.PlayEnd()
		return exitResponses[c.pick(len(exitResponses))]
	case "system_info":
		return c.systemReply(pred.Entity)
	case "get_weather":
		q := "current weather"
		if pred.Entity != "" {
			q = pred.Entity + " weather"
		}
		resp, err := c.disp.Dispatch(actions.Request{Intent: "search_on_google", Entity: q, Query: text})
		if err != nil {
			log.Errorf("weather search: %v", err)
			return actionErrorResponse
		}
		return resp
	case "get_info":
		if pred.Entity == "" {
			return "What information are you looking for?"
		}
		return c.lookup(pred.Entity)
	default:
		if c.disp.Handles(pred.Intent) {
			resp, err := c.disp.Dispatch(actions.Request{
				Intent:    pred.Intent,
				Entity:    pred.Entity,
				Query:     text,
				LastReply: c.LastReply(),
			})
			if err != nil {
				log.Errorf("action %s: %v", pred.Intent, err)
				return actionErrorResponse
			}
			return resp
		}
		return c.lookup(text)
	}
}

func (c *Core) systemReply(entity string) string {
	switch entity {
	case "your name":
		return "My name is " + c.cfg.AssistantName + "."
	case "creator":
		return "I was created by a human developer. My identity is open-source."
	case "capabilities":
		return "I can help you with system commands, web searches, media control, and more."
	default:
		return "I am a virtual assistant designed to help you with various tasks."
	}
}

// lookup answers an information query through the realtime search engine.
func (c *Core) lookup(q string) string {
	if c.searcher == nil {
		return "I can't find information on that."
	}
	ctx, cancel := context.WithTimeout(c.ctx, searchTimeout)
	defer cancel()
	answer, err := c.searcher.Query(ctx, q)
	if err != nil {
		log.Errorf("realtime search: %v", err)
		return actionErrorResponse
	}
	return answer
}

// respond shows and speaks an assistant reply, then returns to idle.
func (c *Core) respond(text string) {
	if text == "" {
		return
	}
	c.setLastReply(text)
	c.setStatus(text, StateSpeaking)
	c.emitChat(c.cfg.AssistantName, text, false)
	c.speak(text)
	c.setStatus(statusIdle, StateIdle)
}

func (c *Core) emitChat(who, text string, user bool) {
	c.sink.ChatMessage(who, text, user)
	log.ChatLine(who, text)
}

// speak voices text through the synthesizer. Failures are logged; the
// reply already reached the chat panel.
func (c *Core) speak(text string) {
	if c.synth == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, speakTimeout)
	defer cancel()
	if err := c.synth.Speak(ctx, text); err != nil {
		log.Errorf("speak: %v", err)
	}
}

// setStatus publishes a status change to the UI and to Status.data.
func (c *Core) setStatus(text string, s State) {
	c.sink.Status(text, s)
	if err := c.files.SetStatus(text); err != nil {
		log.Errorf("write status: %v", err)
	}
}

func (c *Core) captureDevice() (audio.CaptureDevice, error) {
	if c.capture != nil {
		return c.capture, nil
	}
	capture, err := c.actx.NewCapture(c.dev, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		return nil, err
	}
	c.capture = capture
	return capture, nil
}

// sleep pauses the loop without blocking shutdown.
func (c *Core) sleep(d time.Duration) {
	select {
	case <-c.stopped:
	case <-time.After(d):
	}
}
