package rules

import (
	"strings"
	"unicode"
)

// isCJKChar reports whether r falls in the CJK Unified Ideographs blocks.
// Hangul, hiragana and katakana are written as space-separated words and
// are handled like every other script.
func isCJKChar(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF,
		r >= 0x3400 && r <= 0x4DBF,
		r >= 0x20000 && r <= 0x2A6DF,
		r >= 0x2A700 && r <= 0x2B73F,
		r >= 0x2B740 && r <= 0x2B81F,
		r >= 0x2B820 && r <= 0x2CEAF,
		r >= 0xF900 && r <= 0xFAFF,
		r >= 0x2F800 && r <= 0x2FA1F:
		return true
	}
	return false
}

// containsCJK reports whether any rune of s is a CJK ideograph.
func containsCJK(s string) bool {
	for _, r := range s {
		if isCJKChar(r) {
			return true
		}
	}
	return false
}

// Tokenize segments text into tokens: each CJK ideograph is its own
// token, latin/digit runs form word tokens, everything else separates.
// This stands in for a real word segmenter; callers treat it as opaque.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		switch {
		case isCJKChar(r):
			flush()
			tokens = append(tokens, string(r))
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			current.WriteRune(unicode.ToLower(r))
		default:
			flush()
		}
	}
	flush()
	return tokens
}
