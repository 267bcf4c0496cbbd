package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"hello world", 2},
		{"", 0},
		{"   ", 0},
		{"  leading and trailing  ", 3},
		{"tabs\tand\nnewlines", 3},
		{"don't split-on punctuation", 3},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CountWords(tc.in), "CountWords(%q)", tc.in)
	}
}

func TestCountChars(t *testing.T) {
	assert.Equal(t, int64(11), CountChars("hello world"))
	assert.Equal(t, int64(0), CountChars(""))
	// multi-byte characters count once
	assert.Equal(t, int64(5), CountChars("héllo"))
	assert.Equal(t, int64(1), CountChars("😀"))
}
