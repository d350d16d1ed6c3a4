//go:build integration

package test_test

import (
	"encoding/binary"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

var testBinary string

func TestMain(m *testing.M) {
	testBinary = os.Getenv("GHOST_TEST_BIN")
	if testBinary == "" {
		fmt.Fprintln(os.Stderr, "GHOST_TEST_BIN not set; point it at a built ghost binary")
		os.Exit(1)
	}

	if err := os.MkdirAll("data", 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create data dir: %v\n", err)
		os.Exit(1)
	}
	voicePath := filepath.Join("data", "voice.wav")
	if err := generateVoiceWAV(voicePath, 16000, 0.6); err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate voice.wav: %v\n", err)
		os.Exit(1)
	}
	defer os.Remove(voicePath)

	os.Exit(m.Run())
}

// generateVoiceWAV writes a mono 16-bit WAV loud enough to clear the
// energy threshold, so every capture window reads as speech.
func generateVoiceWAV(path string, sampleRate int, durationS float64) error {
	const headerSize = 44
	numSamples := int(float64(sampleRate) * durationS)
	dataSize := numSamples * 2

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], 1) // mono
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(buf[32:34], 2)  // block align
	binary.LittleEndian.PutUint16(buf[34:36], 16) // bits per sample
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))

	for i := 0; i < numSamples; i++ {
		s := int16(8000)
		if i%2 == 1 {
			s = -8000
		}
		binary.LittleEndian.PutUint16(buf[headerSize+i*2:], uint16(s))
	}

	return os.WriteFile(path, buf, 0644)
}

func cmds(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

type assistantRun struct {
	out      string
	logDir   string
	filesDir string
}

// runGhost runs the binary in test mode against throwaway data dirs and
// returns its output. micOn pre-seeds Mic.data so the assistant starts
// with the microphone restored on.
func runGhost(t *testing.T, stdin string, micOn bool, args ...string) assistantRun {
	t.Helper()
	logDir := t.TempDir()
	dataDir := t.TempDir()
	filesDir := filepath.Join(dataDir, "Files")

	if micOn {
		if err := os.MkdirAll(filesDir, 0755); err != nil {
			t.Fatalf("failed to create files dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(filesDir, "Mic.data"), []byte("True"), 0644); err != nil {
			t.Fatalf("failed to seed mic state: %v", err)
		}
	}

	cmdArgs := append([]string{"-logpath", logDir}, args...)
	cmd := exec.Command(testBinary, cmdArgs...)
	cmd.Stdin = strings.NewReader(stdin)
	cmd.Env = append(os.Environ(),
		"GHOST_DATA_DIR="+dataDir,
		"GHOST_FILES_DIR="+filesDir,
	)

	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("ghost exited with error: %v\noutput: %s", err, out)
	}
	return assistantRun{out: string(out), logDir: logDir, filesDir: filesDir}
}

func readLog(t *testing.T, logDir, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return ""
		}
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return string(data)
}

func readState(t *testing.T, r assistantRun, filename string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.filesDir, filename))
	if err != nil {
		t.Fatalf("failed to read %s: %v", filename, err)
	}
	return strings.TrimSpace(string(data))
}

// --- Typed commands ---

func TestTypedTimeQuery(t *testing.T) {
	r := runGhost(t, cmds("TEXT what time is it", "WAIT", "QUIT"), false, "-test")

	if !strings.Contains(r.out, "CHAT You: what time is it") {
		t.Errorf("user line missing from output:\n%s", r.out)
	}
	if !strings.Contains(r.out, "CHAT Ghost: The current time is") {
		t.Errorf("time reply missing from output:\n%s", r.out)
	}
	if got := readState(t, r, "Status.data"); got != "Offline." {
		t.Errorf("Status.data after shutdown = %q, want %q", got, "Offline.")
	}

	chat := readLog(t, r.logDir, "chat_log.txt")
	if !strings.Contains(chat, "The current time is") {
		t.Error("time reply not recorded in chat_log.txt")
	}
	diag := readLog(t, r.logDir, "diagnostics_log.txt")
	if !strings.Contains(diag, "session_start") {
		t.Error("expected session_start in diagnostics")
	}
	if !strings.Contains(diag, `"intent":"get_time"`) {
		t.Error("expected get_time prediction in diagnostics")
	}
	if !strings.Contains(diag, `"commands":1`) {
		t.Error("expected command count 1 in session_end")
	}
}

func TestUnknownQueryAnswersLocally(t *testing.T) {
	r := runGhost(t, cmds("TEXT blorp fizzle", "WAIT", "QUIT"), false, "-test")

	replied := strings.Contains(r.out, "rephrase") ||
		strings.Contains(r.out, "catch that") ||
		strings.Contains(r.out, "didn't understand")
	if !replied {
		t.Errorf("expected a fallback reply for an unknown query:\n%s", r.out)
	}
	diag := readLog(t, r.logDir, "diagnostics_log.txt")
	if !strings.Contains(diag, `"intent":"unknown"`) {
		t.Error("expected unknown prediction in diagnostics")
	}
}

// --- Microphone state ---

func TestMicToggleStateFiles(t *testing.T) {
	r := runGhost(t, cmds("TOGGLE", "WAIT", "TOGGLE", "WAIT", "QUIT"), false, "-test")

	on := strings.Index(r.out, "MIC on")
	off := strings.Index(r.out, "MIC off")
	if on < 0 || off < 0 || off < on {
		t.Errorf("expected MIC on followed by MIC off:\n%s", r.out)
	}
	if !strings.Contains(r.out, "CHAT Ghost: How may I help you?") {
		t.Errorf("activation reply missing:\n%s", r.out)
	}
	if !strings.Contains(r.out, "Okay, I'm going to sleep.") {
		t.Errorf("goodnight reply missing:\n%s", r.out)
	}
	if got := readState(t, r, "Mic.data"); got != "False" {
		t.Errorf("Mic.data after toggle off = %q, want %q", got, "False")
	}
	if got := readState(t, r, "Status.data"); got != "Offline." {
		t.Errorf("Status.data after shutdown = %q, want %q", got, "Offline.")
	}
}

func TestHotkeyTapToggles(t *testing.T) {
	r := runGhost(t, cmds("KEYDOWN", "KEYUP", "WAIT", "KEYDOWN", "KEYUP", "WAIT", "QUIT"),
		false, "-test")

	on := strings.Index(r.out, "MIC on")
	off := strings.Index(r.out, "MIC off")
	if on < 0 || off < 0 || off < on {
		t.Errorf("expected a tap to open the mic and the next tap to close it:\n%s", r.out)
	}
	if got := readState(t, r, "Mic.data"); got != "False" {
		t.Errorf("Mic.data after second tap = %q, want %q", got, "False")
	}
}

func TestMicStateRestored(t *testing.T) {
	r := runGhost(t, cmds("SLEEP 1200", "QUIT"), true, "-test")

	if !strings.Contains(r.out, "MIC on") {
		t.Errorf("expected restored mic state to be announced:\n%s", r.out)
	}
	if strings.Contains(r.out, "CHAT ") {
		t.Errorf("silent windows should produce no chat:\n%s", r.out)
	}
	if got := readState(t, r, "Status.data"); got != "Offline." {
		t.Errorf("Status.data after shutdown = %q, want %q", got, "Offline.")
	}
}

func TestDeactivateKeepsMicOpen(t *testing.T) {
	r := runGhost(t, cmds("TOGGLE", "WAIT", "TEXT deactivate", "WAIT", "QUIT"), false, "-test")

	if !strings.Contains(r.out, "Okay, I'm going to sleep.") {
		t.Errorf("goodnight reply missing:\n%s", r.out)
	}
	if strings.Contains(r.out, "MIC off") {
		t.Errorf("deactivate must not close the microphone:\n%s", r.out)
	}
	if got := readState(t, r, "Mic.data"); got != "True" {
		t.Errorf("Mic.data after deactivate = %q, want %q", got, "True")
	}
}

// --- Hotword ---

func TestHotwordActivation(t *testing.T) {
	r := runGhost(t, cmds("WAIT", "WAIT", "QUIT"), true,
		"-test", "data/voice.wav", "hey ghost", "what time is it")

	if !strings.Contains(r.out, "CHAT Ghost: How may I help you?") {
		t.Errorf("hotword did not activate the assistant:\n%s", r.out)
	}
	if !strings.Contains(r.out, "CHAT You: what time is it") {
		t.Errorf("voiced command missing from output:\n%s", r.out)
	}
	if !strings.Contains(r.out, "CHAT Ghost: The current time is") {
		t.Errorf("time reply missing from output:\n%s", r.out)
	}
	if !strings.Contains(r.out, "STATUS [listening] Receiving Transmission...") {
		t.Errorf("listening status never shown:\n%s", r.out)
	}
}

func TestHotwordIgnoresOtherSpeech(t *testing.T) {
	r := runGhost(t, cmds("SLEEP 2500", "QUIT"), true,
		"-test", "data/voice.wav", "completely unrelated words")

	if strings.Contains(r.out, "CHAT Ghost: How may I help you?") {
		t.Errorf("assistant activated without the hotword:\n%s", r.out)
	}
	if !strings.Contains(r.out, "STATUS [listening]") {
		t.Errorf("expected hotword probes to run:\n%s", r.out)
	}
}
