// Package calendar renders iCalendar files for confirmed bookings.
package calendar

import (
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
)

const (
	productID   = "-//pickup//booking//EN"
	contentType = "text/calendar; charset=utf-8"
)

// Event is one calendar entry
type Event struct {
	// UID must be stable so re-downloads update rather than duplicate
	UID         string
	Summary     string
	Description string
	Location    string
	URL         string
	Start       time.Time
	End         time.Time

	// Stamp is when the file was generated
	Stamp time.Time
}

type GenerateInput struct {
	Event *Event
}

type GenerateOutput struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Generator builds .ics files
type Generator struct{}

// New creates a new calendar generator
func New() *Generator {
	return &Generator{}
}

// Generate renders a single-event calendar
func (g *Generator) Generate(input *GenerateInput) (*GenerateOutput, error) {
	if input == nil || input.Event == nil {
		return nil, errors.New("event cannot be nil")
	}

	event := input.Event
	if event.UID == "" {
		return nil, errors.New("event UID cannot be empty")
	}

	if !event.End.After(event.Start) {
		return nil, errors.New("event must end after it starts")
	}

	cal := ics.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ics.MethodPublish)

	vevent := cal.AddEvent(event.UID)
	vevent.SetDtStampTime(event.Stamp.UTC())
	vevent.SetStartAt(event.Start.UTC())
	vevent.SetEndAt(event.End.UTC())
	vevent.SetSummary(event.Summary)
	if event.Description != "" {
		vevent.SetDescription(event.Description)
	}
	if event.Location != "" {
		vevent.SetLocation(event.Location)
	}
	if event.URL != "" {
		vevent.SetURL(event.URL)
	}

	return &GenerateOutput{
		Filename:    fmt.Sprintf("pickup-%s.ics", event.Start.Format("2006-01-02")),
		ContentType: contentType,
		Data:        []byte(cal.Serialize()),
	}, nil
}
