// Package security provides input sanitization for user-supplied text.
//
// Chat questions and history messages are rendered back to users as markdown,
// so all HTML is stripped before any further processing. No filter is perfect;
// this is a first line of defense, with output encoding handled client-side.
package security

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	newlineRun    = regexp.MustCompile(`\n{3,}`)
)

// StripHTML removes all HTML tags from the input, keeping only text content.
// Script and style element bodies are dropped entirely. Entities are decoded.
func StripHTML(input string) string {
	tz := html.NewTokenizer(strings.NewReader(input))

	var b strings.Builder
	skipDepth := 0

	for {
		switch tz.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way we keep what we have
			return b.String()
		case html.StartTagToken:
			name, _ := tz.TagName()
			if isRawContentTag(string(name)) {
				skipDepth++
			}
		case html.EndTagToken:
			name, _ := tz.TagName()
			if isRawContentTag(string(name)) && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tz.Text())
			}
		}
	}
}

// isRawContentTag reports whether a tag's text content must never surface
// (executable or presentational payloads, not user prose).
func isRawContentTag(name string) bool {
	switch name {
	case "script", "style", "iframe", "object":
		return true
	}
	return false
}

// SanitizeText strips HTML and normalizes all whitespace runs to a single
// space. Use for single-line inputs (names, titles).
func SanitizeText(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(StripHTML(input), " "))
}

// SanitizeTextPreserveFormatting strips HTML but keeps line structure,
// capping consecutive newlines at two. Use for longer content like chat
// messages.
func SanitizeTextPreserveFormatting(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(newlineRun.ReplaceAllString(StripHTML(input), "\n\n"))
}
