package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/KirkDiggler/pickup/internal/services/booking"
	"github.com/bwmarrin/discordgo"
)

// Discord rejects embed field values longer than this
const maxFieldValue = 1024

func sessionWhen(session *models.Session, loc *time.Location) string {
	start := session.StartsAt.In(loc)
	end := session.EndsAt.In(loc)
	return fmt.Sprintf("%s, %s - %s", start.Format("Mon Jan 2"), start.Format("3:04 PM"), end.Format("3:04 PM"))
}

func sessionFields(session *models.Session, loc *time.Location) []*discordgo.MessageEmbedField {
	fields := []*discordgo.MessageEmbedField{
		{Name: "When", Value: sessionWhen(session, loc)},
		{Name: "Status", Value: string(session.Status), Inline: true},
		{Name: "Capacity", Value: fmt.Sprintf("%d", session.Capacity), Inline: true},
	}
	if session.Location != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Where", Value: session.Location, Inline: true})
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "ID", Value: session.ID})

	return fields
}

// renderSession renders a session after it was created or changed
func renderSession(title string, session *models.Session, loc *time.Location) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:  title,
		Color:  colorOK,
		Fields: sessionFields(session, loc),
	}
}

// renderRoster renders the admin roster: confirmed seats then the waitlist
func renderRoster(out *booking.GetRosterOutput, loc *time.Location) *discordgo.MessageEmbed {
	roster := out.Roster

	confirmed := make([]string, 0, len(roster.Entries))
	for n, entry := range roster.Entries {
		confirmed = append(confirmed, fmt.Sprintf("%d. %s %s `%s`", n+1, displayName(entry.Name), entry.Phone, entry.BookingID))
	}

	waitlist := make([]string, 0, len(roster.Waitlist))
	for _, entry := range roster.Waitlist {
		waitlist = append(waitlist, fmt.Sprintf("%d. %s %s `%s`", entry.Position, displayName(entry.Name), entry.Phone, entry.BookingID))
	}

	color := colorOK
	if roster.Stats.Available == 0 {
		color = colorWarning
	}

	return &discordgo.MessageEmbed{
		Title:       "Roster for " + out.Session.Date,
		Description: sessionWhen(out.Session, loc),
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  fmt.Sprintf("Confirmed (%d/%d)", roster.Stats.Confirmed, out.Session.Capacity),
				Value: fieldValue(confirmed, "Nobody yet"),
			},
			{
				Name:  fmt.Sprintf("Waitlist (%d)", roster.Stats.Waitlisted),
				Value: fieldValue(waitlist, "Empty"),
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d seats open", roster.Stats.Available),
		},
	}
}

// renderCanceled renders an admin cancellation receipt
func renderCanceled(out *booking.CancelBookingOutput, loc *time.Location) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Session", Value: sessionWhen(out.Session, loc)},
		{Name: "Was", Value: string(out.PreviousStatus), Inline: true},
	}
	if out.Booking.CancelReason != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Reason", Value: out.Booking.CancelReason, Inline: true})
	}

	description := "The friend has been notified."
	if out.PreviousStatus == models.BookingStatusConfirmed {
		description += " The seat goes to the next person on the waitlist."
	}

	return &discordgo.MessageEmbed{
		Title:       "Canceled booking " + out.Booking.ID,
		Description: description,
		Color:       colorOK,
		Fields:      fields,
	}
}

// renderPromoted renders the result of a manual promotion
func renderPromoted(out *booking.PromoteOutput) *discordgo.MessageEmbed {
	if out.Promoted == nil {
		return &discordgo.MessageEmbed{
			Title:       "Nobody promoted",
			Description: "The session is full or the waitlist is empty.",
			Color:       colorWarning,
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "Promoted booking " + out.Promoted.ID,
		Description: "They have a seat now and have been notified.",
		Color:       colorOK,
	}
}

func renderInvited(date string, invited int) *discordgo.MessageEmbed {
	description := fmt.Sprintf("Sent %d invites.", invited)
	if invited == 0 {
		description = "Everyone active was already invited."
	}

	return &discordgo.MessageEmbed{
		Title:       "Invites for " + date,
		Description: description,
		Color:       colorOK,
	}
}

// fieldValue joins lines and cuts the list short when it would not fit in a field
func fieldValue(lines []string, empty string) string {
	if len(lines) == 0 {
		return empty
	}

	var b strings.Builder
	for n, line := range lines {
		more := fmt.Sprintf("...and %d more", len(lines)-n)
		if b.Len()+len(line)+1 > maxFieldValue-len(more)-1 {
			b.WriteString(more)
			break
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func displayName(name string) string {
	if name == "" {
		return "(no name)"
	}
	return name
}
