package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/23578aniket/Ghost/actions"
	"github.com/23578aniket/Ghost/audio"
	"github.com/23578aniket/Ghost/beep"
	"github.com/23578aniket/Ghost/config"
	"github.com/23578aniket/Ghost/hotkey"
	"github.com/23578aniket/Ghost/intent"
	"github.com/23578aniket/Ghost/log"
	"github.com/23578aniket/Ghost/recognizer"
	"github.com/23578aniket/Ghost/speaker"
	"github.com/23578aniket/Ghost/state"
)

// testSink prints assistant events as line records so a driving process
// can assert on them.
type testSink struct {
	replies chan struct{}
}

func (s *testSink) Status(text string, state State) {
	fmt.Printf("STATUS [%s] %s\n", state, text)
}

func (s *testSink) ChatMessage(who, text string, user bool) {
	fmt.Printf("CHAT %s: %s\n", who, text)
	if !user {
		select {
		case s.replies <- struct{}{}:
		default:
		}
	}
}

func (s *testSink) MicState(on bool) {
	if on {
		fmt.Println("MIC on")
	} else {
		fmt.Println("MIC off")
	}
}

func (s *testSink) AudioLevel(level float64) {}

func (s *testSink) DeviceLine(text string) {
	fmt.Printf("DEVICE %s\n", text)
}

func (s *testSink) Warning(text string) {
	fmt.Printf("WARNING %s\n", text)
}

// runTestMode drives the assistant loop with fakes, controlled by stdin
// commands: TOGGLE, TEXT <query>, KEYDOWN, KEYUP, WAIT, SLEEP <ms>, QUIT.
// wavPath feeds every capture window; script seeds the fake recognizer
// with one transcript per recognized window.
func runTestMode(cfg *config.Config, wavPath string, script []string) {
	beep.Disable()

	var actx audio.Context
	if wavPath != "" {
		fc, err := audio.NewFakeContext(wavPath, true)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading WAV: %v\n", err)
			os.Exit(1)
		}
		actx = fc
	} else {
		actx = audio.NewSilentFakeContext(false)
	}

	var rec recognizer.Recognizer
	if len(script) > 0 {
		rec = recognizer.NewFake(script...)
	}

	eng, err := intent.New(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening intent store: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	ts := &testSink{replies: make(chan struct{}, 16)}
	core := NewCore(cfg, ts, Components{
		Audio:      actx,
		Recognizer: rec,
		Intent:     eng,
		Actions:    actions.New(cfg.DataDir),
		Speaker:    speaker.NewFake(),
		Files:      state.New(cfg.FilesDir),
	})
	mainCore = core

	hk := hotkey.NewFake()
	hy := hotkey.NewHybrid(hk, 350*time.Millisecond)
	go func() {
		for {
			select {
			case <-hy.Start():
				core.Submit(Command{Kind: CmdToggleMic})
			case <-hy.StopChan():
				core.Submit(Command{Kind: CmdToggleMic})
			}
		}
	}()

	core.Start()

	quit := func() {
		core.Stop()
		if !core.Wait(5 * time.Second) {
			log.Warn("assistant loop did not stop within 5s")
		}
		log.SessionEnd(core.Handled())
		log.Close()
		os.Exit(0)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := strings.TrimSpace(scanner.Text())
		switch {
		case cmd == "TOGGLE":
			core.Submit(Command{Kind: CmdToggleMic})
		case strings.HasPrefix(cmd, "TEXT "):
			core.Submit(Command{Kind: CmdTextQuery, Text: strings.TrimPrefix(cmd, "TEXT ")})
		case cmd == "KEYDOWN":
			hk.SimKeydown()
		case cmd == "KEYUP":
			hk.SimKeyup()
		case cmd == "WAIT":
			<-ts.replies
		case strings.HasPrefix(cmd, "SLEEP "):
			if ms, err := strconv.Atoi(cmd[6:]); err == nil {
				time.Sleep(time.Duration(ms) * time.Millisecond)
			}
		case cmd == "QUIT":
			quit()
		}
	}
	quit()
}
