package api

import (
	"time"

	"github.com/KirkDiggler/pickup/internal/models"
)

type sessionResponse struct {
	ID       string    `json:"id"`
	Date     string    `json:"date"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Capacity int       `json:"capacity"`
	Status   string    `json:"status"`
	Location string    `json:"location,omitempty"`
}

func toSession(s *models.Session) *sessionResponse {
	if s == nil {
		return nil
	}
	return &sessionResponse{
		ID:       s.ID,
		Date:     s.Date,
		StartsAt: s.StartsAt,
		EndsAt:   s.EndsAt,
		Capacity: s.Capacity,
		Status:   string(s.Status),
		Location: s.Location,
	}
}

type rosterEntryResponse struct {
	BookingID string `json:"booking_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
}

type waitlistEntryResponse struct {
	BookingID string `json:"booking_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Position  int    `json:"position"`
}

type rosterResponse struct {
	SessionID  string                  `json:"session_id"`
	Confirmed  int                     `json:"confirmed"`
	Available  int                     `json:"available"`
	Waitlisted int                     `json:"waitlisted"`
	Entries    []rosterEntryResponse   `json:"entries"`
	Waitlist   []waitlistEntryResponse `json:"waitlist,omitempty"`
}

func toRoster(r *models.Roster) *rosterResponse {
	if r == nil {
		return nil
	}

	out := &rosterResponse{
		SessionID:  r.SessionID,
		Confirmed:  r.Stats.Confirmed,
		Available:  r.Stats.Available,
		Waitlisted: r.Stats.Waitlisted,
		Entries:    make([]rosterEntryResponse, 0, len(r.Entries)),
	}
	for _, e := range r.Entries {
		out.Entries = append(out.Entries, rosterEntryResponse{
			BookingID: e.BookingID,
			Name:      e.Name,
			Phone:     e.Phone,
		})
	}
	for _, w := range r.Waitlist {
		out.Waitlist = append(out.Waitlist, waitlistEntryResponse{
			BookingID: w.BookingID,
			Name:      w.Name,
			Phone:     w.Phone,
			Position:  w.Position,
		})
	}
	return out
}

type bookingResponse struct {
	ID               string           `json:"id"`
	SessionID        string           `json:"session_id"`
	Status           string           `json:"status"`
	AlreadyBooked    bool             `json:"already_booked,omitempty"`
	WaitlistPosition int              `json:"waitlist_position,omitempty"`
	CanceledBy       string           `json:"canceled_by,omitempty"`
	Session          *sessionResponse `json:"session,omitempty"`
	Roster           *rosterResponse  `json:"roster,omitempty"`
}

type friendResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Active bool   `json:"active"`
}

func toFriend(f *models.Friend) *friendResponse {
	if f == nil {
		return nil
	}
	return &friendResponse{
		ID:     f.ID,
		Name:   f.Name,
		Phone:  f.Phone,
		Active: f.Active,
	}
}
