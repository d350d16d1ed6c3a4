package speaker

import (
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/23578aniket/Ghost/audio"
)

func TestSecMSGEC(t *testing.T) {
	base := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	tok := secMSGEC(base)
	if len(tok) != 64 {
		t.Fatalf("token length = %d, want 64", len(tok))
	}
	if tok != strings.ToUpper(tok) {
		t.Error("token is not uppercase hex")
	}

	// Same five minute window, same token.
	if got := secMSGEC(base.Add(4 * time.Minute)); got != tok {
		t.Error("token changed inside the five minute window")
	}
	// Next window rolls the token.
	if got := secMSGEC(base.Add(5 * time.Minute)); got == tok {
		t.Error("token did not roll over to the next window")
	}
}

func TestRequestURL(t *testing.T) {
	u := requestURL(time.Now(), "abc123")
	for _, part := range []string{
		"TrustedClientToken=" + trustedClientToken,
		"Sec-MS-GEC=",
		"Sec-MS-GEC-Version=1-" + chromiumVersion,
		"ConnectionId=abc123",
	} {
		if !strings.Contains(u, part) {
			t.Errorf("url missing %q: %s", part, u)
		}
	}
}

func TestRequestID(t *testing.T) {
	id := requestID()
	if len(id) != 32 {
		t.Errorf("id length = %d, want 32", len(id))
	}
	if strings.Contains(id, "-") {
		t.Errorf("id contains dashes: %s", id)
	}
}

func TestTimestamp(t *testing.T) {
	now := time.Date(2024, time.March, 11, 15, 4, 5, 0, time.UTC)
	want := "Mon Mar 11 2024 15:04:05 GMT+0000 (Coordinated Universal Time)"
	if got := timestamp(now); got != want {
		t.Errorf("timestamp = %q, want %q", got, want)
	}
}

func TestMessages(t *testing.T) {
	now := time.Now()

	cfg := configMessage(now)
	if !strings.Contains(cfg, "Path:speech.config") {
		t.Error("config message missing path header")
	}
	if !strings.Contains(cfg, outputFormat) {
		t.Error("config message missing output format")
	}

	ssml := ssmlMessage("req1", now, "en-US-GuyNeural", "Tom & Jerry")
	if !strings.Contains(ssml, "X-RequestId:req1") {
		t.Error("ssml message missing request id")
	}
	if !strings.Contains(ssml, "Path:ssml") {
		t.Error("ssml message missing path header")
	}
	if !strings.Contains(ssml, "<voice name='en-US-GuyNeural'>") {
		t.Error("ssml message missing voice")
	}
	if !strings.Contains(ssml, "Tom &amp; Jerry") {
		t.Error("text not XML escaped")
	}
}

func TestAudioPayload(t *testing.T) {
	header := "X-RequestId:abc\r\nContent-Type:audio/x-raw\r\nPath:audio\r\n"
	payload := []byte{1, 2, 3, 4}
	frame := make([]byte, 2+len(header)+len(payload))
	binary.BigEndian.PutUint16(frame, uint16(len(header)))
	copy(frame[2:], header)
	copy(frame[2+len(header):], payload)

	got, ok := audioPayload(frame)
	if !ok {
		t.Fatal("audio frame not recognized")
	}
	if len(got) != 4 || got[0] != 1 || got[3] != 4 {
		t.Errorf("payload = %v", got)
	}

	// Non-audio frames and runts are skipped.
	other := "Path:turn.start\r\n"
	frame2 := make([]byte, 2+len(other))
	binary.BigEndian.PutUint16(frame2, uint16(len(other)))
	copy(frame2[2:], other)
	if _, ok := audioPayload(frame2); ok {
		t.Error("non-audio frame recognized as audio")
	}
	if _, ok := audioPayload([]byte{0}); ok {
		t.Error("runt frame recognized as audio")
	}
}

func TestSpeakPlaysAudio(t *testing.T) {
	actx := audio.NewSilentFakeContext(false)
	s := New(actx, "en-US-GuyNeural")

	var fetched []string
	s.fetch = func(_ context.Context, voice, text string) ([]byte, error) {
		fetched = append(fetched, voice+"|"+text)
		return make([]byte, 4800), nil // 0.1s at 24kHz
	}

	if err := s.Speak(context.Background(), "Hello there."); err != nil {
		t.Fatalf("Speak() error: %v", err)
	}
	player := actx.LastPlayer()
	if player.Utterances() != 1 {
		t.Errorf("utterances = %d, want 1", player.Utterances())
	}
	if player.Samples() != 2400 {
		t.Errorf("samples = %d, want 2400", player.Samples())
	}
	if len(fetched) != 1 || fetched[0] != "en-US-GuyNeural|Hello there." {
		t.Errorf("fetched = %v", fetched)
	}

	// Empty text is a no-op, no network round trip.
	if err := s.Speak(context.Background(), "   "); err != nil {
		t.Fatalf("Speak(blank) error: %v", err)
	}
	if len(fetched) != 1 {
		t.Errorf("blank text reached the synthesizer: %v", fetched)
	}

	s.Close()
}

func TestSpeakFetchError(t *testing.T) {
	s := New(audio.NewSilentFakeContext(false), "en-US-GuyNeural")
	s.fetch = func(_ context.Context, _, _ string) ([]byte, error) {
		return nil, errors.New("service unavailable")
	}
	if err := s.Speak(context.Background(), "Hello."); err == nil {
		t.Error("Speak() with failing fetch did not error")
	}
}

func TestToSamples(t *testing.T) {
	data := []byte{0x34, 0x12, 0xFF, 0xFF}
	samples := toSamples(data)
	if len(samples) != 2 {
		t.Fatalf("len = %d, want 2", len(samples))
	}
	if samples[0] != 0x1234 {
		t.Errorf("samples[0] = %#x, want 0x1234", samples[0])
	}
	if samples[1] != -1 {
		t.Errorf("samples[1] = %d, want -1", samples[1])
	}
}

func TestFakeSynthesizer(t *testing.T) {
	f := NewFake()
	if err := f.Speak(context.Background(), "one"); err != nil {
		t.Fatalf("Speak() error: %v", err)
	}
	f.Speak(context.Background(), "two")
	if got := f.Last(); got != "two" {
		t.Errorf("Last() = %q", got)
	}
	if got := f.Spoken(); len(got) != 2 || got[0] != "one" {
		t.Errorf("Spoken() = %v", got)
	}

	f.Fail(errors.New("muted"))
	if err := f.Speak(context.Background(), "three"); err == nil {
		t.Error("Speak() after Fail did not error")
	}
	if got := f.Last(); got != "two" {
		t.Errorf("failed utterance was recorded: %q", got)
	}
}
