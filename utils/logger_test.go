package utils

import (
	"bytes"
	"log"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestLogFallsBackToStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)
	InitLogger(nil, "")

	Warn("Totals", "Recompute", "channel c1 failed")
	assert.Contains(t, buf.String(), "[WARN] Module: Totals, Operation: Recompute, Details: channel c1 failed")
}

func TestLogEmbed(t *testing.T) {
	e := logEmbed("ERROR", "Import", "Run", "boom")
	assert.Equal(t, ColorError, e.Color)
	assert.Equal(t, "Log Level: ERROR", e.Title)
	assert.Equal(t, "boom", e.Fields[2].Value)

	assert.Equal(t, ColorInfo, logEmbed("DEBUG", "m", "o", "d").Color)

	long := logEmbed("INFO", "m", "o", strings.Repeat("é", 2000))
	assert.Equal(t, maxFieldLen, utf8.RuneCountInString(long.Fields[2].Value))
}
