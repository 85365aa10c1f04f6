// Package transcript normalizes raw engine output for the streaming protocol.
package transcript

import "strings"

// Markers are control substrings engines interleave with recognized text:
// the end-of-text sentinel and the explicit end-of-utterance tag.
var markers = []string{"<|endoftext|>", "EOU"}

// StripMarkers removes control markers wherever they occur and trims the result.
func StripMarkers(raw string) string {
	cleaned := raw
	for _, marker := range markers {
		cleaned = strings.ReplaceAll(cleaned, marker, "")
	}
	return strings.TrimSpace(cleaned)
}

// Join appends a chunk to accumulated text with a single separating space.
// Empty chunks leave the accumulation untouched.
func Join(accumulated, chunk string) string {
	if chunk == "" {
		return accumulated
	}
	if accumulated == "" {
		return chunk
	}
	return accumulated + " " + chunk
}
