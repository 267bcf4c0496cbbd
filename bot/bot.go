package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"discord-archive/command"
	"discord-archive/models"
	"discord-archive/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/gorilla/websocket"
	netproxy "golang.org/x/net/proxy"
)

const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildMessageReactions

// Bot encapsulates the bot's state.
type Bot struct {
	Session *discordgo.Session
	cfg     models.BotConfig
}

// NewBot creates a session for the configured token. REST and gateway
// traffic go through cfg.Proxy when it is set.
func NewBot(cfg models.BotConfig) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("no bot token provided")
	}

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating Discord session: %w", err)
	}
	dg.Identify.Intents = intents

	if cfg.Proxy != "" {
		dial, err := socksDialContext(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = nil
		transport.DialContext = dial
		dg.Client = &http.Client{Timeout: 20 * time.Second, Transport: transport}
		dg.Dialer = &websocket.Dialer{
			NetDialContext:   dial,
			HandshakeTimeout: 45 * time.Second,
		}
		log.Printf("Routing Discord traffic through SOCKS5 proxy %s", proxyAddr(cfg.Proxy))
	}

	return &Bot{Session: dg, cfg: cfg}, nil
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func proxyAddr(raw string) string {
	return strings.TrimPrefix(raw, "socks5://")
}

func socksDialContext(raw string) (dialFunc, error) {
	dialer, err := netproxy.SOCKS5("tcp", proxyAddr(raw), nil, &net.Dialer{Timeout: 10 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("configure proxy %q: %w", raw, err)
	}
	cd, ok := dialer.(netproxy.ContextDialer)
	if !ok {
		return nil, errors.New("proxy dialer does not support contexts")
	}
	return cd.DialContext, nil
}

// Start registers handlers, opens the gateway connection and publishes the
// slash commands when enabled.
func (b *Bot) Start(registerHandlers func(*Bot)) error {
	registerHandlers(b)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	utils.InitLogger(b.Session, b.cfg.AdminChannelID)

	if b.cfg.RegisterCommands {
		for _, def := range command.GetCommandDefinitions() {
			if _, err := b.Session.ApplicationCommandCreate(b.Session.State.User.ID, "", def); err != nil {
				log.Printf("Cannot create '%v' command: %v", def.Name, err)
			}
		}
	}

	log.Println("Bot is now running.")
	return nil
}

// Stop gracefully closes the bot's session.
func (b *Bot) Stop() {
	if b.Session != nil {
		b.Session.Close()
	}
	utils.InitLogger(nil, "")
	log.Println("Bot stopped gracefully.")
}
