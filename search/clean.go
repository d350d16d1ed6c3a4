package search

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Model replies get read aloud, so anything that sounds wrong spoken has to
// go: clock times and "as of" datelines that are stale by the time they are
// uttered, URLs, citation tails.
var (
	clockRe    = regexp.MustCompile(`(?i)\bat \d{1,2}:\d{2}\s?(?:AM|PM)\b`)
	asOfRe     = regexp.MustCompile(`(?i)\bas of [^.!?]*?\d{4}`)
	urlRe      = regexp.MustCompile(`https?://\S+`)
	spaceRe    = regexp.MustCompile(`\s+`)
	gapPunctRe = regexp.MustCompile(`\s+([.,!?;:])`)
	sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*`)

	cutMarkers = []string{"Sources:", "References:", "According to"}
)

// perParagraph groups cleaned sentences for readable chat output.
const perParagraph = 3

// Clean normalizes a model reply into speakable prose: citation sections cut,
// URLs and time references removed, spacing fixed, sentences capitalized and
// regrouped into short paragraphs. Returns "" when nothing survives.
func Clean(text string) string {
	for _, marker := range cutMarkers {
		if i := strings.Index(text, marker); i >= 0 {
			text = text[:i]
		}
	}
	text = clockRe.ReplaceAllString(text, "")
	text = asOfRe.ReplaceAllString(text, "")
	text = urlRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	text = gapPunctRe.ReplaceAllString(text, "$1")
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	var sentences []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		sentences = append(sentences, capitalize(s))
	}
	if len(sentences) == 0 {
		return ""
	}

	var paragraphs []string
	for i := 0; i < len(sentences); i += perParagraph {
		end := i + perParagraph
		if end > len(sentences) {
			end = len(sentences)
		}
		paragraphs = append(paragraphs, strings.Join(sentences[i:end], " "))
	}
	return strings.Join(paragraphs, "\n\n")
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
