package actions

import (
	"regexp"
	"strings"
)

var (
	playYouTubeRe   = regexp.MustCompile(`(?i)^play\s+(.+?)\s+on youtube$`)
	searchYouTubeRe = regexp.MustCompile(`(?i)search youtube for\s+(.+)$`)
	searchGoogleRe  = regexp.MustCompile(`(?i)search google for\s+(.+)$`)
	openAppRe       = regexp.MustCompile(`(?i)^open\s+(.+)$`)
	closeAppRe      = regexp.MustCompile(`(?i)^close\s+(.+)$`)
	entityNoiseRe   = regexp.MustCompile(`(?i)^(?:the|a|an)\s+|[\s,]*(?:please|for me|now)$`)
)

// Match recognizes explicit command phrases that bypass the intent
// classifier: media control, tabs, screenshots, app launches and the like.
// These are checked before classification so a learned model can never
// reroute a direct order.
func Match(query string) (Request, bool) {
	text := strings.TrimSpace(query)
	lower := strings.ToLower(text)
	req := Request{Query: text}

	if m := playYouTubeRe.FindStringSubmatch(text); m != nil {
		req.Intent, req.Entity = "play_youtube", m[1]
		return req, true
	}
	if m := searchYouTubeRe.FindStringSubmatch(text); m != nil {
		req.Intent, req.Entity = "search_youtube", m[1]
		return req, true
	}
	if m := searchGoogleRe.FindStringSubmatch(text); m != nil {
		req.Intent, req.Entity = "search_on_google", m[1]
		return req, true
	}

	if strings.Contains(lower, "screenshot") {
		req.Intent = "take_screenshot"
		return req, true
	}

	if containsAny(lower, "volume up", "increase volume", "turn it up", "louder") {
		req.Intent = "volume_up"
		return req, true
	}
	if containsAny(lower, "volume down", "decrease volume", "turn it down", "quieter") {
		req.Intent = "volume_down"
		return req, true
	}
	if strings.Contains(lower, "mute") {
		req.Intent = "mute"
		return req, true
	}

	if media, ok := matchMedia(lower); ok {
		req.Intent, req.Entity = "media_playback", media
		return req, true
	}
	if tab, ok := matchBrowser(lower); ok {
		req.Intent, req.Entity = "browser_action", tab
		return req, true
	}
	if power, ok := matchPower(lower); ok {
		req.Intent = power
		return req, true
	}

	if strings.Contains(lower, "ip address") {
		req.Intent = "get_ip_address"
		return req, true
	}
	if containsAny(lower, "today's date", "todays date", "what's the date", "what is the date", "what day is it") {
		req.Intent = "get_date"
		return req, true
	}
	if lower == "copy" || lower == "copy it" || strings.Contains(lower, "copy that") {
		req.Intent = "copy_that"
		return req, true
	}

	if m := openAppRe.FindStringSubmatch(text); m != nil {
		req.Intent, req.Entity = "open_application", cleanEntity(m[1])
		return req, true
	}
	if m := closeAppRe.FindStringSubmatch(text); m != nil {
		req.Intent, req.Entity = "close_application", cleanEntity(m[1])
		return req, true
	}
	return Request{}, false
}

func matchMedia(lower string) (string, bool) {
	switch {
	case strings.Contains(lower, "pause"):
		return "pause", true
	case strings.Contains(lower, "resume"):
		return "resume", true
	case containsAny(lower, "next song", "next track", "skip this song", "skip song"):
		return "skip", true
	case containsAny(lower, "previous song", "previous track", "last song"):
		return "rewind", true
	case containsAny(lower, "stop the music", "stop music", "stop playback"):
		return "stop", true
	case strings.Contains(lower, "play music"):
		return "play", true
	}
	return "", false
}

func matchBrowser(lower string) (string, bool) {
	switch {
	case containsAny(lower, "new tab", "open a tab"):
		return "new_tab", true
	case containsAny(lower, "close tab", "close the tab", "close this tab"):
		return "close_tab", true
	case strings.Contains(lower, "next tab"):
		return "next_tab", true
	case strings.Contains(lower, "previous tab"):
		return "previous_tab", true
	case containsAny(lower, "refresh the page", "refresh page", "reload the page", "reload page"):
		return "refresh", true
	}
	return "", false
}

// matchPower deliberately requires an object ("the system", "the computer"):
// a bare "shut down" or "go to sleep" deactivates the assistant instead.
func matchPower(lower string) (string, bool) {
	switch {
	case containsAny(lower, "shutdown the system", "shut down the system", "shutdown the computer", "shut down the computer", "power off"):
		return "shutdown", true
	case containsAny(lower, "restart the system", "restart the computer", "reboot"):
		return "restart", true
	case containsAny(lower, "put the system to sleep", "put the computer to sleep"):
		return "sleep", true
	case strings.Contains(lower, "hibernate"):
		return "hibernate", true
	case containsAny(lower, "lock the screen", "lock the computer", "lock my pc"):
		return "lock", true
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func cleanEntity(s string) string {
	for {
		cleaned := strings.TrimSpace(entityNoiseRe.ReplaceAllString(s, ""))
		if cleaned == s {
			return s
		}
		s = cleaned
	}
}
