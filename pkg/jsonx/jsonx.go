// Package jsonx recovers JSON payloads from noisy generated text.
//
// Generation models regularly wrap JSON in prose or markdown fences even
// when told not to. These helpers cut out the first plausible JSON value
// so the caller can attempt a normal unmarshal; they never fail, returning
// an empty value instead so the caller's own default kicks in.
package jsonx

import (
	"log/slog"
	"strings"
)

const previewLen = 120

// ExtractObject returns the substring from the first '{' to the last '}'
// inclusive, or "{}" when no such pair exists.
func ExtractObject(text string) string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		slog.Warn("no JSON object found in generated text", "preview", preview(text))
		return "{}"
	}
	return text[start : end+1]
}

// ExtractArray is the symmetric form for JSON arrays, defaulting to "[]".
func ExtractArray(text string) string {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end <= start {
		slog.Warn("no JSON array found in generated text", "preview", preview(text))
		return "[]"
	}
	return text[start : end+1]
}

func preview(text string) string {
	text = strings.TrimSpace(text)
	if len(text) > previewLen {
		return text[:previewLen] + "..."
	}
	return text
}
