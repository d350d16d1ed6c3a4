package main

import (
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/23578aniket/Ghost/actions"
	"github.com/23578aniket/Ghost/audio"
	"github.com/23578aniket/Ghost/beep"
	"github.com/23578aniket/Ghost/clipboard"
	"github.com/23578aniket/Ghost/config"
	"github.com/23578aniket/Ghost/doctor"
	"github.com/23578aniket/Ghost/hotkey"
	"github.com/23578aniket/Ghost/intent"
	"github.com/23578aniket/Ghost/log"
	"github.com/23578aniket/Ghost/login"
	"github.com/23578aniket/Ghost/recognizer"
	"github.com/23578aniket/Ghost/search"
	"github.com/23578aniket/Ghost/shutdown"
	"github.com/23578aniket/Ghost/speaker"
	"github.com/23578aniket/Ghost/state"
	"github.com/23578aniket/Ghost/tray"
	"github.com/23578aniket/Ghost/update"
)

var version = "dev"

// guiMode is set by initGUI before run starts; sink is the display the
// core reports into (initGUI presets it, otherwise run picks TUI/tray).
var (
	guiMode  bool
	sink     EventSink
	mainCore *Core
)

var shutdownOnce sync.Once

// gracefulShutdown stops the assistant loop with a bounded wait, flushes
// logs and exits. Safe to call from any goroutine.
func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if core := mainCore; core != nil {
			core.Stop()
			if !core.Wait(5 * time.Second) {
				log.Warn("assistant loop did not stop within 5s")
			}
			log.SessionEnd(core.Handled())
		}
		log.Close()
		tray.Quit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

// initCrashLog installs a crash handler before any audio code runs. The
// destination is re-opened if -logpath later overrides the directory.
func initCrashLog() {
	dir, err := log.ResolveDir("")
	if err != nil {
		return
	}
	log.SetDir(dir)
	if err := log.EnsureDir(); err != nil {
		return
	}
	openCrashFile()
}

func openCrashFile() {
	path := filepath.Join(log.Dir(), "crash_log.txt")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	fmt.Fprintf(f, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
	debug.SetCrashOutput(f, debug.CrashOptions{})
}

// traySink mirrors assistant events into the menu bar. Every call is a
// no-op on platforms without the native tray.
type traySink struct{}

func (traySink) Status(text string, state State) {
	tray.SetStatus(text)
	if state == StateError {
		tray.SetError(text)
	}
}

func (traySink) ChatMessage(_, text string, user bool) {
	if !user {
		tray.SetLastReply(text)
	}
}

func (traySink) MicState(on bool) { tray.SetMic(on) }

func (traySink) AudioLevel(level float64) {}

func (traySink) DeviceLine(text string) {}

func (traySink) Warning(text string) { tray.SetError(text) }

// multiSink fans assistant events out to several displays.
type multiSink []EventSink

func (m multiSink) Status(text string, state State) {
	for _, s := range m {
		s.Status(text, state)
	}
}

func (m multiSink) ChatMessage(who, text string, user bool) {
	for _, s := range m {
		s.ChatMessage(who, text, user)
	}
}

func (m multiSink) MicState(on bool) {
	for _, s := range m {
		s.MicState(on)
	}
}

func (m multiSink) AudioLevel(level float64) {
	for _, s := range m {
		s.AudioLevel(level)
	}
}

func (m multiSink) DeviceLine(text string) {
	for _, s := range m {
		s.DeviceLine(text)
	}
}

func (m multiSink) Warning(text string) {
	for _, s := range m {
		s.Warning(text)
	}
}

// mergeStop returns a channel that closes when any source fires.
func mergeStop(sources ...<-chan struct{}) chan struct{} {
	out := make(chan struct{})
	var once sync.Once
	for _, s := range sources {
		if s == nil {
			continue
		}
		go func(ch <-chan struct{}) {
			select {
			case <-ch:
				once.Do(func() { close(out) })
			case <-out:
			}
		}(s)
	}
	return out
}

func run() {
	if len(os.Args) > 1 && os.Args[1] == "update" {
		runUpdate()
		return
	}

	guiFlag := flag.Bool("gui", false, "Run with the Fyne GUI (requires a build with -tags gui)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	testFlag := flag.Bool("test", false, "Test mode (headless, stdin-driven)")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	hotkeyFlag := flag.Bool("hotkey", true, "Enable the global Ctrl+Shift+G hotkey")
	longPressFlag := flag.Duration("longpress", 350*time.Millisecond, "Long-press threshold for push-to-talk vs tap (e.g., 350ms)")
	langFlag := flag.String("lang", "en", "Language code for recognition (e.g., en, es, fr). Empty = auto-detect")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	if *logPathFlag != "" {
		openCrashFile()
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("ghost %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	if *guiFlag && !guiMode {
		// main dispatches -gui before flag parsing; only a build without
		// the gui tag can land here.
		fmt.Fprintln(os.Stderr, "Error: built without GUI support (rebuild with -tags gui)")
		os.Exit(1)
	}

	// Resolve -setup into -device early (the background copy has no terminal)
	if *setupFlag && *deviceFlag == "" && !guiMode {
		actx, err := audio.NewContext()
		if err != nil {
			fmt.Printf("Error initializing audio: %v\n", err)
			os.Exit(1)
		}
		if dev, _ := selectDevice(actx); dev != nil {
			*deviceFlag = dev.Name
		}
		actx.Close()
	}

	// Daemonize in headless mode: re-exec in background, return the prompt
	if !*tuiFlag && !guiMode && os.Getenv("_GHOST_BG") == "" {
		args := os.Args[1:]
		if *deviceFlag != "" {
			args = append(args, "-device", *deviceFlag)
		}
		exe, _ := os.Executable()
		cmd := exec.Command(exe, args...)
		cmd.Env = append(os.Environ(), "_GHOST_BG=1")
		devnull, _ := os.Open(os.DevNull)
		cmd.Stdin, cmd.Stdout, cmd.Stderr = devnull, devnull, devnull
		if err := cmd.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	provider := "none"
	if cfg.GroqAPIKey != "" {
		provider = "groq"
	}
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	} else {
		log.SessionStart(provider, cfg.Voice)
	}

	if *testFlag {
		args := flag.Args()
		wav := ""
		var script []string
		if len(args) > 0 {
			wav = args[0]
			script = args[1:]
		}
		runTestMode(cfg, wav, script)
		return
	}

	actx := guiAudioCtx
	if actx == nil {
		actx, err = audio.NewContext()
		if err != nil {
			log.Errorf("audio context init error: %v", err)
			fmt.Printf("Error initializing audio context: %v\n", err)
			os.Exit(1)
		}
	}
	defer actx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := actx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			log.Warnf("device not found: %s", *deviceFlag)
			fmt.Printf("Warning: device %q not found, using system default\n", *deviceFlag)
		}
	}

	var rec recognizer.Recognizer
	var searcher *search.Engine
	if cfg.GroqAPIKey == "" {
		log.Warn("GROQ_API_KEY not set, voice recognition and realtime search disabled")
	} else {
		r, err := recognizer.New(cfg.GroqAPIKey)
		if err != nil {
			log.Warnf("recognizer init: %v", err)
		} else {
			if *langFlag != "" {
				r.SetLanguage(*langFlag)
			}
			rec = r
		}
		s, err := search.New(cfg.GroqAPIKey, cfg.AssistantName, cfg.ChatLogPath)
		if err != nil {
			log.Warnf("search init: %v", err)
		} else {
			searcher = s
		}
	}

	eng, err := intent.New(cfg.DBPath)
	if err != nil {
		log.Errorf("intent store init error: %v", err)
		fmt.Printf("Error opening intent store: %v\n", err)
		os.Exit(1)
	}
	defer eng.Close()

	synth := speaker.New(actx, cfg.Voice)
	defer synth.Close()

	files := state.New(cfg.FilesDir)

	if sink == nil {
		if *tuiFlag {
			sink = multiSink{tuiSink{}, traySink{}}
		} else {
			sink = traySink{}
		}
	}

	core := NewCore(cfg, sink, Components{
		Audio:      actx,
		Device:     selectedDevice,
		Recognizer: rec,
		Intent:     eng,
		Actions:    actions.New(cfg.DataDir),
		Search:     searcher,
		Speaker:    synth,
		Files:      files,
	})
	mainCore = core

	// Start TUI
	if !guiMode && *tuiFlag {
		p := NewTUIProgram(core)
		setTUIProgram(p)
		go func() {
			if _, err := p.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()
		<-tuiReady
	} else {
		tuiReadyOnce.Do(func() { close(tuiReady) })
	}

	tray.OnMicToggle(func() {
		core.Submit(Command{Kind: CmdToggleMic})
	})
	tray.OnCopyLast(func() {
		if text := core.LastReply(); text != "" {
			if err := clipboard.Copy(text); err != nil {
				log.Errorf("copy last reply: %v", err)
			}
		}
	})
	tray.SetLogin(login.Enabled())
	tray.OnLogin(func(on bool) error {
		if on {
			return login.Enable()
		}
		return login.Disable()
	})
	var trayQuit <-chan struct{}
	if !guiMode {
		// The Fyne tray owns the menu bar in GUI builds.
		trayQuit = tray.Init()
	}

	if guiMode {
		wireGUI(core)
	}

	update.StartBackgroundCheck(version, log.Dir(), func(rel update.Release) {
		log.Info("update_available: " + rel.Version)
		sink.Warning("Update available: " + rel.Version + " (run \"ghost update\")")
		tray.SetUpdateAvailable(rel.Version)
	})

	go beep.Init()

	if *hotkeyFlag {
		hk := hotkey.New()
		if err := hk.Register(); err != nil {
			log.Errorf("hotkey register error: %v", err)
			sink.Warning("Global hotkey unavailable.")
		} else {
			defer hk.Unregister()
			hy := hotkey.NewHybrid(hk, *longPressFlag)
			go func() {
				// A tap pair toggles the mic on and off; a hold opens it
				// for the duration of the press.
				for {
					select {
					case <-hy.Start():
						core.Submit(Command{Kind: CmdToggleMic})
					case <-hy.StopChan():
						core.Submit(Command{Kind: CmdToggleMic})
					}
				}
			}()
		}
	}

	core.Start()
	log.Info("ghost " + version + " ready")

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	sigDone := make(chan struct{})
	go func() {
		<-sigChan
		close(sigDone)
	}()

	<-mergeStop(sigDone, trayQuit)
	gracefulShutdown()
}

// runUpdate handles the "ghost update" subcommand.
func runUpdate() {
	if version == "dev" {
		fmt.Println("Dev build: cannot check for updates.")
		os.Exit(0)
	}
	fmt.Printf("ghost %s: checking for updates...\n", version)
	rel, err := update.CheckLatest(version)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if rel == nil {
		fmt.Println("Already up to date.")
		os.Exit(0)
	}
	fmt.Printf("Update available: %s -> %s\n", version, rel.Version)
	fmt.Print("Continue? [y/N] ")
	var answer string
	fmt.Scanln(&answer)
	if answer != "y" && answer != "Y" {
		fmt.Println("Aborted.")
		os.Exit(0)
	}
	fmt.Printf("Downloading %s...\n", rel.Version)
	if err := update.Apply(rel); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated to %s\n", rel.Version)
	os.Exit(0)
}
