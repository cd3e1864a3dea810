// Package text provides small helpers for rune-aware text handling.
// Prompt budgets and fallback summaries are measured in characters, not bytes,
// so every cut goes through this package.
package text

import "unicode/utf8"

// CountRunes counts the number of Unicode characters (runes) in the given text.
//
//	CountRunes("hello")     // 5
//	CountRunes("héllo")     // 5
//	CountRunes("")          // 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// TruncateRunes returns the first n runes of text. It never splits a
// multi-byte character and returns text unchanged when it is already short enough.
func TruncateRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

// Excerpt is TruncateRunes for log output: it appends "..." when text was cut.
func Excerpt(text string, n int) string {
	cut := TruncateRunes(text, n)
	if len(cut) < len(text) {
		return cut + "..."
	}
	return cut
}
