// Package discord exposes admin operations as a Discord slash command
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/logging"
	"github.com/KirkDiggler/pickup/internal/services/booking"
	"github.com/KirkDiggler/pickup/internal/services/messaging"
	"github.com/KirkDiggler/pickup/internal/services/scheduler"
	"github.com/KirkDiggler/pickup/internal/services/sessions"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// BotError is a custom error type for bot setup errors
type BotError string

// Error implements the error interface
func (e BotError) Error() string {
	return string(e)
}

const (
	ErrNilConfig    BotError = "config cannot be nil"
	ErrEmptyToken   BotError = "token cannot be empty"
	ErrNilBookings  BotError = "booking service cannot be nil"
	ErrNilSessions  BotError = "session service cannot be nil"
	ErrNilScheduler BotError = "scheduler service cannot be nil"
	ErrNilMessages  BotError = "messaging service cannot be nil"
)

// Bot represents the Discord bot instance
type Bot struct {
	session    *discordgo.Session
	commands   map[string]CommandHandler
	commandIDs map[string]string
	config     *Config
	logger     *zap.Logger

	// ctx scopes command handling to the bot's lifetime
	ctx context.Context
}

// Config holds the configuration for the bot
type Config struct {
	// Discord bot token
	Token string

	// Application ID for the bot
	ApplicationID string

	// Optional guild ID for development (server-specific commands)
	GuildID string

	// AdminRole is the role ID allowed to run /pickup. Empty means members
	// with the Administrator permission.
	AdminRole string

	// TimeZone is used when printing session times; defaults to UTC
	TimeZone *time.Location

	// Defaults for /pickup create
	Defaults SessionDefaults

	// Service dependencies
	Bookings  booking.Service
	Sessions  sessions.Service
	Scheduler scheduler.Service
	Messages  messaging.Service
	Logger    *zap.Logger
}

// New creates a new Discord bot
func New(cfg *Config) (*Bot, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Token == "" {
		return nil, ErrEmptyToken
	}

	if cfg.Bookings == nil {
		return nil, ErrNilBookings
	}

	if cfg.Sessions == nil {
		return nil, ErrNilSessions
	}

	if cfg.Scheduler == nil {
		return nil, ErrNilScheduler
	}

	if cfg.Messages == nil {
		return nil, ErrNilMessages
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	bot := &Bot{
		session:    session,
		commands:   make(map[string]CommandHandler),
		commandIDs: make(map[string]string),
		config:     cfg,
		logger:     logging.OrNop(cfg.Logger).Named("discord"),
		ctx:        context.Background(),
	}

	session.AddHandler(bot.handleInteraction)

	return bot, nil
}

// Run opens the connection, registers commands and blocks until ctx is
// done, then removes the commands and disconnects
func (b *Bot) Run(ctx context.Context) error {
	b.ctx = ctx

	if err := b.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	return b.Stop()
}

// Start initializes the Discord connection and registers commands
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.RegisterCommand(NewPickupCommand(b.config)); err != nil {
		return fmt.Errorf("failed to register pickup command: %w", err)
	}

	b.logger.Info("bot is running")
	return nil
}

// Stop removes registered commands and closes the Discord connection
func (b *Bot) Stop() error {
	appID := b.appID()

	for name, id := range b.commandIDs {
		if err := b.session.ApplicationCommandDelete(appID, b.config.GuildID, id); err != nil {
			b.logger.Warn("failed to delete command",
				zap.String("command", name),
				zap.String("command_id", id),
				zap.Error(err),
			)
		}
	}

	return b.session.Close()
}

// RegisterCommand registers a command with Discord. Without a guild ID the
// command is registered globally.
func (b *Bot) RegisterCommand(cmd CommandHandler) error {
	created, err := b.session.ApplicationCommandCreate(b.appID(), b.config.GuildID, cmd.GetCommand())
	if err != nil {
		return fmt.Errorf("failed to create command %s: %w", cmd.GetName(), err)
	}

	b.commands[cmd.GetName()] = cmd
	b.commandIDs[cmd.GetName()] = created.ID
	b.logger.Info("registered command",
		zap.String("command", cmd.GetName()),
		zap.String("command_id", created.ID),
		zap.String("guild_id", b.config.GuildID),
	)

	return nil
}

func (b *Bot) appID() string {
	if b.config.ApplicationID != "" {
		return b.config.ApplicationID
	}
	return b.session.State.User.ID
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	h, ok := b.commands[name]
	if !ok {
		return
	}

	if err := h.Handle(b.ctx, s, i); err != nil {
		b.logger.Error("failed to handle command",
			zap.String("command", name),
			zap.Error(err),
		)
	}
}
