package utils

import (
	"strings"
	"unicode/utf8"
)

// CountWords returns the number of whitespace-delimited tokens in s.
func CountWords(s string) int64 {
	return int64(len(strings.Fields(s)))
}

// CountChars returns the number of characters (code points) in s.
func CountChars(s string) int64 {
	return int64(utf8.RuneCountInString(s))
}
