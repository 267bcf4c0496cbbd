package utils

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorInfo  = 0x00ff00 // Green
	ColorWarn  = 0xffff00 // Yellow
	ColorError = 0xff0000 // Red
)

var (
	mu        sync.RWMutex
	session   *discordgo.Session
	channelID string
)

// InitLogger routes Info/Warn/Error to the admin channel of a Discord session.
// An empty channel ID keeps logging on the standard logger only.
func InitLogger(s *discordgo.Session, adminChannelID string) {
	mu.Lock()
	defer mu.Unlock()
	session = s
	channelID = adminChannelID
	if channelID == "" {
		log.Println("Warning: bot.admin_channel_id is not set. Logging to channel will be disabled.")
	}
}

// Log sends a log message to the admin channel, or to the standard logger when none is configured.
func Log(level, module, operation, details string) {
	mu.RLock()
	s, ch := session, channelID
	mu.RUnlock()

	if s == nil || ch == "" {
		log.Printf("[%s] Module: %s, Operation: %s, Details: %s", level, module, operation, details)
		return
	}

	embed := logEmbed(level, module, operation, details)
	if _, err := s.ChannelMessageSendEmbed(ch, embed); err != nil {
		log.Printf("Error sending log message to Discord: %v", err)
		log.Printf("[%s] Module: %s, Operation: %s, Details: %s", level, module, operation, details)
	}
}

// maxFieldLen is the platform limit on an embed field value.
const maxFieldLen = 1024

func logEmbed(level, module, operation, details string) *discordgo.MessageEmbed {
	color := ColorInfo
	switch level {
	case "WARN":
		color = ColorWarn
	case "ERROR":
		color = ColorError
	}
	if r := []rune(details); len(r) > maxFieldLen {
		details = string(r[:maxFieldLen-1]) + "…"
	}
	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("Log Level: %s", level),
		Color:     color,
		Timestamp: time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: module, Inline: true},
			{Name: "Operation", Value: operation, Inline: true},
			{Name: "Details", Value: details},
		},
	}
}

// Info logs an informational message.
func Info(module, operation, details string) {
	Log("INFO", module, operation, details)
}

// Warn logs a warning message.
func Warn(module, operation, details string) {
	Log("WARN", module, operation, details)
}

// Error logs an error message.
func Error(module, operation, details string) {
	Log("ERROR", module, operation, details)
}
