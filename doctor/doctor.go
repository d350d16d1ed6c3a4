package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/23578aniket/Ghost/audio"
	"github.com/23578aniket/Ghost/clipboard"
	"github.com/23578aniket/Ghost/config"
	"github.com/23578aniket/Ghost/encoder"
	"github.com/23578aniket/Ghost/hotkey"
	"github.com/23578aniket/Ghost/intent"
	"github.com/23578aniket/Ghost/recognizer"
	"github.com/23578aniket/Ghost/speaker"
)

// Run executes interactive diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run() int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("ghost doctor - interactive system diagnostics")
	fmt.Println("=============================================")

	allPass := true

	cfg, ok := checkConfig()
	if !ok {
		allPass = false
	}

	var pcm []byte
	var actx audio.Context
	if allPass {
		var ok bool
		actx, pcm, ok = checkMicrophone()
		if !ok {
			allPass = false
		}
		if actx != nil {
			defer actx.Close()
		}
	}

	if allPass && !checkRecognition(cfg, pcm) {
		allPass = false
	}
	if allPass && !checkSpeech(actx, cfg) {
		allPass = false
	}
	if allPass && !checkHotkey() {
		allPass = false
	}
	if allPass && !checkIntentStore(cfg) {
		allPass = false
	}
	if allPass && !checkClipboard() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkConfig() (*config.Config, bool) {
	fmt.Println()
	fmt.Println("[1/7] Configuration")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return nil, false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return nil, false
	}
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return nil, false
	}

	fmt.Printf("  assistant %q, hotword %q\n", cfg.AssistantName, cfg.Hotword)
	fmt.Printf("  data dir: %s\n", cfg.DataDir)
	if cfg.GroqAPIKey == "" {
		fmt.Println("  Warning: GROQ_API_KEY not set, recognition and search start disabled")
	}
	fmt.Println("  PASS: configuration loaded")
	return cfg, true
}

func checkMicrophone() (audio.Context, []byte, bool) {
	fmt.Println()
	fmt.Println("[2/7] Microphone")

	reader := bufio.NewReader(os.Stdin)

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return nil, nil, false
	}

	devices, err := actx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return actx, nil, false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return actx, nil, false
	}

	var device *audio.DeviceInfo
	if len(devices) == 1 {
		device = &devices[0]
		fmt.Printf("Using device: %s\n", device.Name)
	} else {
		fmt.Println()
		fmt.Println("Select input device:")
		for i, d := range devices {
			fmt.Printf("  %d. %s\n", i+1, d.Name)
		}
		fmt.Printf("Choice [1-%d]: ", len(devices))

		devChoice, _ := reader.ReadString('\n')
		devChoice = strings.TrimSpace(devChoice)
		idx := 0
		if devChoice != "" {
			fmt.Sscanf(devChoice, "%d", &idx)
			idx--
		}
		if idx < 0 || idx >= len(devices) {
			fmt.Printf("  FAIL: invalid choice\n")
			return actx, nil, false
		}
		device = &devices[idx]
		fmt.Printf("Selected: %s\n", device.Name)
	}

	fmt.Println()
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	stop := make(chan struct{})
	go func() {
		time.Sleep(3 * time.Second)
		close(stop)
	}()

	pcm, err := recordAudio(actx, device, stop)
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return actx, nil, false
	}
	if len(pcm) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return actx, nil, false
	}

	level := audio.RMS(pcm)
	fmt.Printf("  Recorded %.1f KB, RMS level %.0f\n", float64(len(pcm))/1024, level)
	if level < 100 {
		fmt.Println("  Warning: level is very low, check the input volume")
	}
	fmt.Println("  PASS: captured audio")
	return actx, pcm, true
}

func checkRecognition(cfg *config.Config, pcm []byte) bool {
	fmt.Println()
	fmt.Println("[3/7] Recognition round trip")

	key := cfg.GroqAPIKey
	if key == "" {
		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Enter Groq API key: ")
		entered, _ := reader.ReadString('\n')
		key = strings.TrimSpace(entered)
	}
	if key == "" {
		fmt.Println("  FAIL: API key required")
		return false
	}

	rec, err := recognizer.New(key)
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	fmt.Println("  Transcribing the recording...")
	sess, err := rec.NewSession(context.Background(), recognizer.SessionConfig{Format: "flac"})
	if err != nil {
		fmt.Printf("  FAIL: session error: %v\n", err)
		return false
	}
	sess.Feed(pcm)
	result, err := sess.Close()
	if err != nil {
		fmt.Printf("  FAIL: recognition error: %v\n", err)
		return false
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("\n  Heard: %s\n\n", text)

	if confirm("Is this what you said?") {
		fmt.Println("  PASS: recognition verified by user")
		return true
	}
	fmt.Println("  FAIL: recognition not confirmed")
	return false
}

func checkSpeech(actx audio.Context, cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[4/7] Speech synthesis")

	synth := speaker.New(actx, cfg.Voice)
	defer synth.Close()

	fmt.Println("  Synthesizing a test sentence...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := synth.Speak(ctx, "Ghost diagnostics online."); err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	if confirm("Did you hear the voice?") {
		fmt.Println("  PASS: speech verified by user")
		return true
	}
	fmt.Println("  FAIL: speech not confirmed")
	return false
}

func checkHotkey() bool {
	fmt.Println()
	fmt.Println("[5/7] Hotkey detection")
	fmt.Println("Press Ctrl+Shift+G...")

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		fmt.Printf("  FAIL: could not register hotkey: %v\n", err)
		if msg, derr := hotkey.Diagnose(); derr != nil {
			fmt.Printf("  %v\n", derr)
		} else {
			fmt.Printf("  %s\n", msg)
		}
		return false
	}
	defer hk.Unregister()

	select {
	case <-hk.Keydown():
		fmt.Println("  PASS: hotkey detected")
		// Wait for keyup to avoid triggering next step
		select {
		case <-hk.Keyup():
		case <-time.After(5 * time.Second):
		}
		// Reset terminal after hotkey - it may leave terminal in raw mode
		resetTerminal()
		return true
	case <-time.After(10 * time.Second):
		fmt.Println("  FAIL: timeout waiting for hotkey")
		return false
	}
}

func checkIntentStore(cfg *config.Config) bool {
	fmt.Println()
	fmt.Println("[6/7] Intent store")

	eng, err := intent.New(cfg.DBPath)
	if err != nil {
		fmt.Printf("  FAIL: cannot open %s: %v\n", cfg.DBPath, err)
		return false
	}
	defer eng.Close()

	pred := eng.Predict("what time is it")
	if pred.Intent == "" || pred.Intent == "unknown" {
		fmt.Printf("  FAIL: classifier gave no intent for a seeded phrase (got %q)\n", pred.Intent)
		return false
	}
	fmt.Printf("  trained=%v, \"what time is it\" -> %s (%.2f, %s)\n",
		eng.Trained(), pred.Intent, pred.Confidence, pred.Source)
	fmt.Println("  PASS: intent store open")
	return true
}

func checkClipboard() bool {
	fmt.Println()
	fmt.Println("[7/7] Clipboard")

	if clipboard.Unsupported() {
		fmt.Println("  FAIL: no clipboard tool found (install xclip or xsel)")
		return false
	}

	previous, _ := clipboard.Read()

	testStr := "ghost-doctor-test"
	if err := clipboard.Copy(testStr); err != nil {
		fmt.Printf("  FAIL: clipboard copy failed: %v\n", err)
		return false
	}
	got, err := clipboard.Read()
	if err != nil {
		fmt.Printf("  FAIL: clipboard read failed: %v\n", err)
		return false
	}
	if got != testStr {
		fmt.Printf("  FAIL: roundtrip mismatch (got %q)\n", got)
		return false
	}

	// Put back whatever was on the clipboard before the test.
	clipboard.Copy(previous)

	fmt.Println("  PASS: clipboard roundtrip")
	return true
}

func confirm(prompt string) bool {
	// Fresh reader to clear any buffered input
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("%s [y/n]: ", prompt)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

func recordAudio(actx audio.Context, device *audio.DeviceInfo, stop <-chan struct{}) ([]byte, error) {
	var pcmBuf []byte
	var bufMu sync.Mutex
	var stopped bool
	done := make(chan struct{})

	config := audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}

	captureDevice, err := actx.NewCapture(device, config)
	if err != nil {
		return nil, err
	}

	captureDevice.SetCallback(func(data []byte, frameCount uint32) {
		bufMu.Lock()
		if stopped {
			bufMu.Unlock()
			return
		}
		pcmBuf = append(pcmBuf, data...)
		bufMu.Unlock()
	})

	if err := captureDevice.Start(); err != nil {
		captureDevice.Close()
		return nil, err
	}

	fmt.Print("  Recording")
	ticker := time.NewTicker(500 * time.Millisecond)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	<-stop
	close(done)

	captureDevice.Stop()
	fmt.Println(" done")
	captureDevice.Close()

	bufMu.Lock()
	stopped = true
	raw := pcmBuf
	bufMu.Unlock()

	return raw, nil
}
