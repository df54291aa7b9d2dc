package services

import (
	"strings"
	"unicode/utf8"
)

// maxBlankRun is the longest run of blank lines kept by Sanitize.
const maxBlankRun = 2

// Sanitize prepares document text for chunking. It drops control
// characters below 0x20 other than newline and tab, collapses runs of
// three or more blank lines to two, and trims surrounding whitespace.
func Sanitize(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)

	lines := strings.Split(cleaned, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > maxBlankRun {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// CharCount returns the number of characters in s.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// Preview returns the first n characters of text followed by "..." when
// text is longer.
func Preview(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + "..."
}
