package intent

import (
	"regexp"
	"strings"
)

var (
	locationRe    = regexp.MustCompile(`(?i)\b(?:in|at|for|near|around)\s+([\w\s]+?)(?:\s+(?:please|thanks|thank you|now))?$`)
	capitalizedRe = regexp.MustCompile(`\b[A-Z][a-zA-Z]*(?:\s+[A-Z][a-zA-Z]*)*\b`)
	infoRe        = regexp.MustCompile(`(?i)(?:who is|what is|where is|how does|find|show me|tell me about)\s+(.+)`)
	trailingQRe   = regexp.MustCompile(`\?+$`)
	leadArticleRe = regexp.MustCompile(`(?i)^(?:the|a|an)\s+`)
)

var locationStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "this": true, "that": true,
	"it": true, "today": true, "tomorrow": true,
}

var capitalizedStopwords = map[string]bool{
	"today": true, "tomorrow": true, "weather": true,
	"forecast": true, "temperature": true, "india": true,
}

var selfReferences = map[string]bool{
	"you": true, "yourself": true, "your name": true, "your purpose": true,
}

// extractLocation pulls a place name out of a weather query, first from a
// preposition phrase ("weather in London") and then from capitalized words.
func extractLocation(text string) string {
	if m := locationRe.FindStringSubmatch(text); m != nil {
		loc := strings.TrimSpace(m[1])
		if !locationStopwords[strings.ToLower(loc)] {
			return loc
		}
	}
	var kept []string
	for _, w := range capitalizedRe.FindAllString(text, -1) {
		if !capitalizedStopwords[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// extractSubject pulls the topic from an information query, e.g. "who is
// Albert Einstein" yields "Albert Einstein". Questions about the assistant
// itself yield nothing so they route to the built-in responses.
func extractSubject(text string) string {
	m := infoRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	subject := strings.TrimSpace(m[1])
	subject = strings.TrimSpace(trailingQRe.ReplaceAllString(subject, ""))
	subject = leadArticleRe.ReplaceAllString(subject, "")
	if selfReferences[strings.ToLower(subject)] {
		return ""
	}
	return subject
}

// systemEntity classifies which aspect of the assistant a system_info query
// asks about.
func systemEntity(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "name"):
		return "your name"
	case strings.Contains(t, "made") || strings.Contains(t, "created") || strings.Contains(t, "creator"):
		return "creator"
	case strings.Contains(t, "can you do") || strings.Contains(t, "what can") || strings.Contains(t, "capab"):
		return "capabilities"
	}
	return ""
}
