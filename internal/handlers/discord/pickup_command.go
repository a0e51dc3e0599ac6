package discord

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/pickup/internal/common/logging"
	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/KirkDiggler/pickup/internal/services/booking"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/messaging"
	"github.com/KirkDiggler/pickup/internal/services/scheduler"
	"github.com/KirkDiggler/pickup/internal/services/sessions"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Subcommand and option names
const (
	subRoster  = "roster"
	subCancel  = "cancel"
	subCreate  = "create"
	subPublish = "publish"
	subClose   = "close"
	subInvite  = "invite"
	subPromote = "promote"

	optSession  = "session"
	optBooking  = "booking"
	optReason   = "reason"
	optDate     = "date"
	optStart    = "start"
	optEnd      = "end"
	optCapacity = "capacity"
	optLocation = "location"
	optPublish  = "publish"
)

var errMissingSubcommand = errors.New("missing subcommand")

// SessionDefaults fill in /pickup create options the admin leaves out
type SessionDefaults struct {
	StartTime string
	EndTime   string
	Capacity  int
	Location  string
}

// PickupCommand handles the /pickup admin command
type PickupCommand struct {
	BaseCommand
	bookings  booking.Service
	sessions  sessions.Service
	scheduler scheduler.Service
	messages  messaging.Service
	adminRole string
	defaults  SessionDefaults
	location  *time.Location
	logger    *zap.Logger
}

// NewPickupCommand creates a new pickup command handler
func NewPickupCommand(cfg *Config) *PickupCommand {
	sessionOpt := func(description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        optSession,
			Description: description,
			Required:    true,
		}
	}

	adminOnly := int64(discordgo.PermissionManageServer)

	loc := cfg.TimeZone
	if loc == nil {
		loc = time.UTC
	}

	return &PickupCommand{
		BaseCommand: BaseCommand{
			Name:        "pickup",
			Description: "Manage pickup sessions",
			Permissions: &adminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subRoster,
					Description: "Show confirmed players and the waitlist",
					Options: []*discordgo.ApplicationCommandOption{
						sessionOpt("Session date (YYYY-MM-DD) or ID"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subCancel,
					Description: "Cancel a booking, ignoring the cancel deadline",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optBooking,
							Description: "Booking ID from the roster",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optReason,
							Description: "Sent to the friend with the cancellation",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subCreate,
					Description: "Schedule a session",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optDate,
							Description: "YYYY-MM-DD",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optStart,
							Description: "Start time, HH:MM",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optEnd,
							Description: "End time, HH:MM",
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        optCapacity,
							Description: "Number of seats",
							MinValue:    floatPtr(sessions.MinCapacity),
							MaxValue:    sessions.MaxCapacity,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optLocation,
							Description: "Where to play",
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        optPublish,
							Description: "Open for booking right away",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subPublish,
					Description: "Open a session for booking",
					Options: []*discordgo.ApplicationCommandOption{
						sessionOpt("Session date (YYYY-MM-DD) or ID"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subClose,
					Description: "Stop taking bookings for a session",
					Options: []*discordgo.ApplicationCommandOption{
						sessionOpt("Session date (YYYY-MM-DD) or ID"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subInvite,
					Description: "Text a booking link to every active friend",
					Options: []*discordgo.ApplicationCommandOption{
						sessionOpt("Session date (YYYY-MM-DD) or ID"),
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subPromote,
					Description: "Move the next waitlisted friend into a free seat",
					Options: []*discordgo.ApplicationCommandOption{
						sessionOpt("Session date (YYYY-MM-DD) or ID"),
					},
				},
			},
		},
		bookings:  cfg.Bookings,
		sessions:  cfg.Sessions,
		scheduler: cfg.Scheduler,
		messages:  cfg.Messages,
		adminRole: cfg.AdminRole,
		defaults:  cfg.Defaults,
		location:  loc,
		logger:    logging.OrNop(cfg.Logger),
	}
}

// Handle processes a Discord interaction for the pickup command
func (c *PickupCommand) Handle(ctx context.Context, r Responder, i *discordgo.InteractionCreate) error {
	if i.Type != discordgo.InteractionApplicationCommand {
		return nil
	}

	data := i.ApplicationCommandData()
	if data.Name != c.Name {
		return nil
	}

	if !c.isAdmin(i.Member) {
		return c.respondError(ctx, r, i, messaging.ErrorTypeForbidden)
	}

	if len(data.Options) == 0 {
		return errMissingSubcommand
	}
	sub := data.Options[0]
	args := optionMap(sub.Options)

	var (
		embed *discordgo.MessageEmbed
		err   error
	)
	switch sub.Name {
	case subRoster:
		embed, err = c.handleRoster(ctx, args)
	case subCancel:
		embed, err = c.handleCancel(ctx, args)
	case subCreate:
		embed, err = c.handleCreate(ctx, args)
	case subPublish:
		embed, err = c.handleStatus(ctx, args, models.SessionStatusPublished)
	case subClose:
		embed, err = c.handleStatus(ctx, args, models.SessionStatusClosed)
	case subInvite:
		embed, err = c.handleInvite(ctx, args)
	case subPromote:
		embed, err = c.handlePromote(ctx, args)
	default:
		return RespondWithError(r, i, fmt.Sprintf("Unknown subcommand: %s", sub.Name))
	}

	if err != nil {
		return c.respondFailure(ctx, r, i, sub.Name, err)
	}

	return RespondWithEmbed(r, i, embed)
}

func (c *PickupCommand) handleRoster(ctx context.Context, args options) (*discordgo.MessageEmbed, error) {
	out, err := c.bookings.GetRoster(ctx, &booking.GetRosterInput{
		SessionID: args.text(optSession),
		Admin:     true,
	})
	if err != nil {
		return nil, err
	}

	return renderRoster(out, c.location), nil
}

func (c *PickupCommand) handleCancel(ctx context.Context, args options) (*discordgo.MessageEmbed, error) {
	out, err := c.bookings.AdminCancel(ctx, &booking.AdminCancelInput{
		BookingID: args.text(optBooking),
		Reason:    args.text(optReason),
	})
	if err != nil {
		return nil, err
	}

	return renderCanceled(out, c.location), nil
}

func (c *PickupCommand) handleCreate(ctx context.Context, args options) (*discordgo.MessageEmbed, error) {
	input := &sessions.CreateInput{
		Date:      args.text(optDate),
		StartTime: args.stringOr(optStart, c.defaults.StartTime),
		EndTime:   args.stringOr(optEnd, c.defaults.EndTime),
		Capacity:  args.intOr(optCapacity, c.defaults.Capacity),
		Location:  args.stringOr(optLocation, c.defaults.Location),
		Status:    models.SessionStatusDraft,
	}
	if args.flag(optPublish) {
		input.Status = models.SessionStatusPublished
	}

	out, err := c.sessions.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	return renderSession("Scheduled "+out.Session.Date, out.Session, c.location), nil
}

func (c *PickupCommand) handleStatus(ctx context.Context, args options, status models.SessionStatus) (*discordgo.MessageEmbed, error) {
	out, err := c.sessions.UpdateStatus(ctx, &sessions.UpdateStatusInput{
		DateOrID: args.text(optSession),
		Status:   status,
	})
	if err != nil {
		return nil, err
	}

	title := "Published " + out.Session.Date
	if status == models.SessionStatusClosed {
		title = "Closed " + out.Session.Date
	}

	return renderSession(title, out.Session, c.location), nil
}

func (c *PickupCommand) handleInvite(ctx context.Context, args options) (*discordgo.MessageEmbed, error) {
	session := args.text(optSession)
	out, err := c.scheduler.InviteActive(ctx, &scheduler.InviteActiveInput{SessionID: session})
	if err != nil {
		return nil, err
	}

	return renderInvited(session, out.Invited), nil
}

func (c *PickupCommand) handlePromote(ctx context.Context, args options) (*discordgo.MessageEmbed, error) {
	out, err := c.bookings.Promote(ctx, &booking.PromoteInput{SessionID: args.text(optSession)})
	if err != nil {
		return nil, err
	}

	return renderPromoted(out), nil
}

// isAdmin reports whether the member holds the configured admin role.
// Without a configured role the Administrator permission is required.
func (c *PickupCommand) isAdmin(member *discordgo.Member) bool {
	if member == nil {
		return false
	}

	if c.adminRole == "" {
		return member.Permissions&discordgo.PermissionAdministrator != 0
	}

	for _, role := range member.Roles {
		if role == c.adminRole {
			return true
		}
	}

	return false
}

// respondFailure answers with the validation text for registry errors, which
// only admins ever see, and with a friendly message for everything else
func (c *PickupCommand) respondFailure(ctx context.Context, r Responder, i *discordgo.InteractionCreate, sub string, err error) error {
	var sessionErr sessions.SessionError
	if errors.As(err, &sessionErr) && sessionErr != sessions.ErrSessionNotFound {
		return RespondWithError(r, i, sessionErr.Error())
	}

	errType := errorType(err)
	if errType == "" {
		c.logger.Error("pickup command failed",
			zap.String("subcommand", sub),
			zap.Error(err),
		)
	}

	return c.respondError(ctx, r, i, errType)
}

func (c *PickupCommand) respondError(ctx context.Context, r Responder, i *discordgo.InteractionCreate, errType messaging.ErrorType) error {
	msg, err := c.messages.GetErrorMessage(ctx, &messaging.GetErrorMessageInput{ErrorType: errType})
	if err != nil {
		return RespondWithError(r, i, "Something went wrong.")
	}

	return RespondWithError(r, i, msg.Message)
}

// errorType maps a service error to a user-facing error type. Unknown
// errors map to the empty type.
func errorType(err error) messaging.ErrorType {
	switch {
	case errors.Is(err, booking.ErrInvalidToken):
		return messaging.ErrorTypeInvalidLink
	case errors.Is(err, booking.ErrSessionNotPublished),
		errors.Is(err, scheduler.ErrNotPublished):
		return messaging.ErrorTypeNotPublished
	case errors.Is(err, booking.ErrDeadlinePassed):
		return messaging.ErrorTypeDeadlinePassed
	case errors.Is(err, booking.ErrAlreadyCanceled):
		return messaging.ErrorTypeAlreadyCanceled
	case errors.Is(err, booking.ErrInvalidPhone),
		errors.Is(err, directory.ErrInvalidPhone):
		return messaging.ErrorTypeInvalidPhone
	case errors.Is(err, booking.ErrBusy):
		return messaging.ErrorTypeBusy
	case errors.Is(err, booking.ErrSessionNotFound),
		errors.Is(err, booking.ErrBookingNotFound),
		errors.Is(err, sessions.ErrSessionNotFound),
		errors.Is(err, directory.ErrFriendNotFound):
		return messaging.ErrorTypeNotFound
	}

	return ""
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	out := make(options, len(opts))
	for _, opt := range opts {
		out[opt.Name] = opt
	}
	return out
}

func (o options) text(name string) string {
	return o.stringOr(name, "")
}

func (o options) stringOr(name, fallback string) string {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionString {
		return opt.StringValue()
	}
	return fallback
}

func (o options) intOr(name string, fallback int) int {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionInteger {
		return int(opt.IntValue())
	}
	return fallback
}

func (o options) flag(name string) bool {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionBoolean {
		return opt.BoolValue()
	}
	return false
}

func floatPtr(v float64) *float64 {
	return &v
}
