package api

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/KirkDiggler/pickup/internal/services/booking"
	"github.com/KirkDiggler/pickup/internal/services/calendar"
	"github.com/gin-gonic/gin"
)

// Link previews in messaging apps issue GETs, so GET only renders a form and
// the state change happens on POST.
var confirmTemplate = template.Must(template.New("confirm").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h3>{{.Title}}</h3>
<form method="post" action="{{.Action}}">
{{if .AskName}}<label>Your name <input name="name" autocomplete="name"></label>{{end}}
<button type="submit">{{.Title}}</button>
</form>
</body></html>
`))

type linkBookRequest struct {
	Name string `form:"name" json:"name"`
}

func (s *Server) confirmPage(title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("token") == "" {
			s.writeError(c, booking.ErrInvalidToken)
			return
		}
		c.HTML(http.StatusOK, "confirm", gin.H{
			"Title":   title,
			"Action":  c.Request.URL.RequestURI(),
			"AskName": c.Request.URL.Path == "/links/book",
		})
	}
}

// BookWithLink handles POST /links/book?token=
func (s *Server) BookWithLink(c *gin.Context) {
	var req linkBookRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBind(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	out, err := s.bookings.BookWithLink(c.Request.Context(), &booking.BookWithLinkInput{
		Token: c.Query("token"),
		Name:  req.Name,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	status := http.StatusCreated
	if out.AlreadyBooked {
		status = http.StatusOK
	}

	c.JSON(status, &bookingResponse{
		ID:               out.Booking.ID,
		SessionID:        out.Booking.SessionID,
		Status:           string(out.Status),
		AlreadyBooked:    out.AlreadyBooked,
		WaitlistPosition: out.WaitlistPosition,
		Session:          toSession(out.Session),
		Roster:           toRoster(out.Roster),
	})
}

// CancelWithLink handles POST /links/cancel?token=
func (s *Server) CancelWithLink(c *gin.Context) {
	out, err := s.bookings.CancelWithLink(c.Request.Context(), &booking.CancelWithLinkInput{
		Token: c.Query("token"),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, &bookingResponse{
		ID:         out.Booking.ID,
		SessionID:  out.Booking.SessionID,
		Status:     string(out.Booking.Status),
		CanceledBy: string(out.Booking.CanceledBy),
		Session:    toSession(out.Session),
	})
}

// Calendar handles GET /links/calendar?token= for confirmed bookings
func (s *Server) Calendar(c *gin.Context) {
	found, err := s.bookings.FindBooking(c.Request.Context(), &booking.FindBookingInput{
		Token: c.Query("token"),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	if found.Booking.Status != models.BookingStatusConfirmed {
		s.writeError(c, errNotConfirmed)
		return
	}

	session := found.Session
	description := "You're confirmed."
	if found.Friend != nil && found.Friend.Name != "" {
		description = fmt.Sprintf("%s, you're confirmed.", found.Friend.Name)
	}

	out, err := s.calendar.Generate(&calendar.GenerateInput{
		Event: &calendar.Event{
			UID:         found.Booking.ID + "@pickup",
			Summary:     "Pickup " + session.Date,
			Description: description,
			Location:    session.Location,
			Start:       session.StartsAt,
			End:         session.EndsAt,
			Stamp:       s.clock.Now(),
		},
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Data)
}

// PublicRoster handles GET /sessions/:id/roster with masked phones
func (s *Server) PublicRoster(c *gin.Context) {
	s.roster(c, false)
}

func (s *Server) roster(c *gin.Context, admin bool) {
	out, err := s.bookings.GetRoster(c.Request.Context(), &booking.GetRosterInput{
		SessionID: c.Param("id"),
		Admin:     admin,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session": toSession(out.Session),
		"roster":  toRoster(out.Roster),
	})
}
