// Package actions executes system-level commands on behalf of the assistant:
// launching applications, media and volume keys, screenshots, power control
// and web shortcuts. Dispatch returns the sentence the assistant should speak
// once the action ran.
package actions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/23578aniket/Ghost/clipboard"
)

const ipifyURL = "https://api.ipify.org?format=json"

// Request names the action to perform. Query carries the original utterance
// and LastReply the most recent assistant response, for actions that need
// them.
type Request struct {
	Intent    string
	Entity    string
	Query     string
	LastReply string
}

type Dispatcher struct {
	http    *http.Client
	ipURL   string
	shotDir string

	// Side-effecting operations, swapped for fakes in tests.
	now      func() time.Time
	open     func(url string) error
	copyText func(text string) error
	tap      func(action string) error
	launch   func(app string) error
	kill     func(app string) error
	power    func(action string) error
	shot     func(path string) error
}

func New(screenshotDir string) *Dispatcher {
	return &Dispatcher{
		http:     &http.Client{Timeout: 5 * time.Second},
		ipURL:    ipifyURL,
		shotDir:  screenshotDir,
		now:      time.Now,
		open:     openURL,
		copyText: clipboard.Copy,
		tap:      tapKey,
		launch:   launchApp,
		kill:     killApp,
		power:    powerCommand,
		shot:     screenshotCmd,
	}
}

var handledIntents = map[string]bool{
	"get_time":          true,
	"get_date":          true,
	"get_ip_address":    true,
	"open_application":  true,
	"close_application": true,
	"shutdown":          true,
	"restart":           true,
	"sleep":             true,
	"hibernate":         true,
	"lock":              true,
	"take_screenshot":   true,
	"volume_up":         true,
	"volume_down":       true,
	"mute":              true,
	"browser_action":    true,
	"media_playback":    true,
	"play_youtube":      true,
	"search_youtube":    true,
	"search_on_google":  true,
	"copy_that":         true,
}

func (d *Dispatcher) Handles(intent string) bool {
	return handledIntents[intent]
}

func (d *Dispatcher) Dispatch(req Request) (string, error) {
	switch req.Intent {
	case "get_time":
		return fmt.Sprintf("The current time is %s.", d.now().Format("03:04 PM")), nil
	case "get_date":
		return d.todayDate(), nil
	case "get_ip_address":
		return d.publicIP(), nil
	case "open_application":
		return d.openApplication(req.Entity)
	case "close_application":
		return d.closeApplication(req.Entity)
	case "shutdown", "restart", "sleep", "hibernate", "lock":
		return d.powerAction(req.Intent)
	case "take_screenshot":
		return d.screenshot()
	case "volume_up":
		return d.adjustVolume("volume_up", "Volume increased.")
	case "volume_down":
		return d.adjustVolume("volume_down", "Volume decreased.")
	case "mute":
		if err := d.tap("mute"); err != nil {
			return "", err
		}
		return "Toggled mute.", nil
	case "browser_action":
		if err := d.tap(req.Entity); err != nil {
			return "", err
		}
		return fmt.Sprintf("Attempted to perform '%s' browser action.", strings.ReplaceAll(req.Entity, "_", " ")), nil
	case "media_playback":
		key, ok := mediaKeyFor[req.Entity]
		if !ok {
			return "", fmt.Errorf("unknown media action %q", req.Entity)
		}
		if err := d.tap(key); err != nil {
			return "", err
		}
		return fmt.Sprintf("Attempted to %s media playback.", req.Entity), nil
	case "play_youtube":
		if req.Entity == "" {
			return "What should I play on YouTube?", nil
		}
		if err := d.open("https://www.youtube.com/results?search_query=" + url.QueryEscape(req.Entity)); err != nil {
			return "", err
		}
		return fmt.Sprintf("Playing %s on YouTube.", req.Entity), nil
	case "search_youtube":
		if req.Entity == "" {
			return "What should I search on YouTube?", nil
		}
		if err := d.open("https://www.youtube.com/results?search_query=" + url.QueryEscape(req.Entity)); err != nil {
			return "", err
		}
		return fmt.Sprintf("Searching YouTube for %s.", req.Entity), nil
	case "search_on_google":
		q := req.Entity
		if q == "" {
			q = req.Query
		}
		if err := d.open("https://www.google.com/search?q=" + url.QueryEscape(q)); err != nil {
			return "", err
		}
		return fmt.Sprintf("Searching Google for %s.", q), nil
	case "copy_that":
		if req.LastReply == "" {
			return "There's nothing to copy yet.", nil
		}
		if err := d.copyText(req.LastReply); err != nil {
			return "", err
		}
		return "Copied the last response to the clipboard.", nil
	}
	return "", fmt.Errorf("unsupported action %q", req.Intent)
}

var mediaKeyFor = map[string]string{
	"pause":  "play_pause",
	"resume": "play_pause",
	"play":   "play_pause",
	"skip":   "next_track",
	"rewind": "previous_track",
	"stop":   "stop",
}

// sites lets "open youtube" style commands go to the browser instead of a
// process launch.
var sites = map[string]string{
	"youtube":   "https://www.youtube.com",
	"google":    "https://www.google.com",
	"gmail":     "https://mail.google.com",
	"github":    "https://github.com",
	"reddit":    "https://www.reddit.com",
	"wikipedia": "https://www.wikipedia.org",
	"twitter":   "https://twitter.com",
	"instagram": "https://www.instagram.com",
}

func (d *Dispatcher) openApplication(app string) (string, error) {
	if app == "" {
		return "Which application should I open?", nil
	}
	if site, ok := sites[strings.ToLower(app)]; ok {
		if err := d.open(site); err != nil {
			return "", err
		}
		return fmt.Sprintf("Opening %s for you.", app), nil
	}
	if strings.Contains(app, ".") && !strings.Contains(app, " ") {
		if err := d.open("https://" + app); err != nil {
			return "", err
		}
		return fmt.Sprintf("Opening %s for you.", app), nil
	}
	if err := d.launch(app); err != nil {
		return "", err
	}
	return fmt.Sprintf("Opening %s for you.", app), nil
}

func (d *Dispatcher) closeApplication(app string) (string, error) {
	if app == "" {
		return "Which application should I close?", nil
	}
	if err := d.kill(app); err != nil {
		return fmt.Sprintf("No running process found for %s.", app), nil
	}
	return fmt.Sprintf("Attempted to close %s.", app), nil
}

var powerResponses = map[string]string{
	"shutdown":  "Shutting down the system. Goodbye!",
	"restart":   "Restarting the system now.",
	"sleep":     "Putting the system to sleep.",
	"hibernate": "Hibernating the system.",
	"lock":      "Locking the screen.",
}

func (d *Dispatcher) powerAction(action string) (string, error) {
	if err := d.power(action); err != nil {
		return "", err
	}
	return powerResponses[action], nil
}

func (d *Dispatcher) adjustVolume(key, response string) (string, error) {
	// One tap is barely audible, a burst of five gives a noticeable step.
	for i := 0; i < 5; i++ {
		if err := d.tap(key); err != nil {
			return "", err
		}
	}
	return response, nil
}

func (d *Dispatcher) screenshot() (string, error) {
	name := fmt.Sprintf("screenshot_%s.png", d.now().Format("20060102_150405"))
	if err := d.shot(filepath.Join(d.shotDir, name)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Screenshot saved as %s.", name), nil
}

func (d *Dispatcher) publicIP() string {
	const failure = "Sorry, I couldn't retrieve your IP address at this moment."
	resp, err := d.http.Get(d.ipURL)
	if err != nil {
		return failure
	}
	defer resp.Body.Close()
	var out struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.IP == "" {
		return failure
	}
	return fmt.Sprintf("Your public IP address is %s.", out.IP)
}

func (d *Dispatcher) todayDate() string {
	now := d.now()
	day := now.Day()
	suffix := "th"
	if day < 10 || day > 20 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("Today is %s, %s the %d%s, %d.", now.Weekday(), now.Month(), day, suffix, now.Year())
}
