package speaker

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// The readaloud endpoint used by the Edge browser. The trusted client token
// is baked into the browser and doubles as the seed for the Sec-MS-GEC
// window token below.
const (
	wssURL             = "wss://speech.platform.bing.com/consumer/speech/synthesize/readaloud/edge/v1"
	trustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"
	chromiumVersion    = "130.0.2849.68"

	outputFormat = "raw-24khz-16bit-mono-pcm"

	// SampleRate of the PCM stream outputFormat yields.
	SampleRate = 24000
)

const windowsEpochOffset = 11644473600 // seconds from 1601-01-01 to 1970-01-01

// secMSGEC computes the anti-abuse token: SHA-256 over the current Windows
// file time rounded down to a five minute boundary, concatenated with the
// trusted client token, as uppercase hex.
func secMSGEC(now time.Time) string {
	ticks := now.Unix() + windowsEpochOffset
	ticks -= ticks % 300
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d%s", ticks*10_000_000, trustedClientToken)))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func requestURL(now time.Time, connectionID string) string {
	return fmt.Sprintf("%s?TrustedClientToken=%s&Sec-MS-GEC=%s&Sec-MS-GEC-Version=1-%s&ConnectionId=%s",
		wssURL, trustedClientToken, secMSGEC(now), chromiumVersion, connectionID)
}

func dialHeaders() http.Header {
	h := http.Header{}
	h.Set("Pragma", "no-cache")
	h.Set("Cache-Control", "no-cache")
	h.Set("Origin", "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold")
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0")
	return h
}

func requestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// timestamp renders the JavaScript-style date header the service expects.
func timestamp(now time.Time) string {
	return now.UTC().Format("Mon Jan 02 2006 15:04:05") + " GMT+0000 (Coordinated Universal Time)"
}

func configMessage(now time.Time) string {
	return "X-Timestamp:" + timestamp(now) + "\r\n" +
		"Content-Type:application/json; charset=utf-8\r\n" +
		"Path:speech.config\r\n\r\n" +
		`{"context":{"synthesis":{"audio":{"metadataoptions":{` +
		`"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},` +
		`"outputFormat":"` + outputFormat + `"}}}}`
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func ssmlMessage(id string, now time.Time, voice, text string) string {
	ssml := fmt.Sprintf("<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'>"+
		"<voice name='%s'><prosody pitch='+0Hz' rate='+0%%' volume='+0%%'>%s</prosody></voice></speak>",
		voice, xmlEscaper.Replace(text))
	return "X-RequestId:" + id + "\r\n" +
		"Content-Type:application/ssml+xml\r\n" +
		"X-Timestamp:" + timestamp(now) + "\r\n" +
		"Path:ssml\r\n\r\n" + ssml
}

// audioPayload extracts the PCM bytes from a binary frame. The frame starts
// with a big-endian header length, then header text, then the payload.
func audioPayload(frame []byte) ([]byte, bool) {
	if len(frame) < 2 {
		return nil, false
	}
	headerLen := int(binary.BigEndian.Uint16(frame[:2]))
	if len(frame) < 2+headerLen {
		return nil, false
	}
	if !strings.Contains(string(frame[2:2+headerLen]), "Path:audio") {
		return nil, false
	}
	return frame[2+headerLen:], true
}

// fetchAudio runs one synthesis turn against the readaloud service and
// returns the concatenated PCM stream.
func fetchAudio(ctx context.Context, voice, text string) ([]byte, error) {
	now := time.Now()
	conn, _, err := websocket.Dial(ctx, requestURL(now, requestID()), &websocket.DialOptions{
		HTTPHeader: dialHeaders(),
	})
	if err != nil {
		return nil, fmt.Errorf("dial speech service: %w", err)
	}
	defer conn.Close(websocket.StatusInternalError, "abandoned")
	conn.SetReadLimit(1 << 20)

	if err := conn.Write(ctx, websocket.MessageText, []byte(configMessage(now))); err != nil {
		return nil, fmt.Errorf("send speech config: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, []byte(ssmlMessage(requestID(), now, voice, text))); err != nil {
		return nil, fmt.Errorf("send ssml: %w", err)
	}

	var pcm []byte
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return nil, fmt.Errorf("read speech stream: %w", err)
		}
		switch typ {
		case websocket.MessageText:
			if strings.Contains(string(data), "Path:turn.end") {
				conn.Close(websocket.StatusNormalClosure, "")
				return pcm, nil
			}
		case websocket.MessageBinary:
			if payload, ok := audioPayload(data); ok {
				pcm = append(pcm, payload...)
			}
		}
	}
}
