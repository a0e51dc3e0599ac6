package api

import (
	"net/http"
	"strconv"

	"github.com/KirkDiggler/pickup/internal/models"
	"github.com/KirkDiggler/pickup/internal/services/booking"
	"github.com/KirkDiggler/pickup/internal/services/directory"
	"github.com/KirkDiggler/pickup/internal/services/scheduler"
	"github.com/KirkDiggler/pickup/internal/services/sessions"
	"github.com/gin-gonic/gin"
)

type createSessionRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Capacity  int    `json:"capacity" binding:"required"`
	Location  string `json:"location"`
	Status    string `json:"status"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type importRequest struct {
	Friends []struct {
		Name   string `json:"name"`
		Phone  string `json:"phone" binding:"required"`
		Active *bool  `json:"active"`
	} `json:"friends" binding:"required,dive"`
}

type updateFriendRequest struct {
	Name   string `json:"name"`
	Active *bool  `json:"active"`
}

// ListSessions handles GET /admin/sessions?from=&limit=
func (s *Server) ListSessions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	out, err := s.sessions.ListUpcoming(c.Request.Context(), &sessions.ListUpcomingInput{
		From:  c.Query("from"),
		Limit: limit,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := make([]*sessionResponse, 0, len(out.Sessions))
	for _, session := range out.Sessions {
		resp = append(resp, toSession(session))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

// CreateSession handles POST /admin/sessions
func (s *Server) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := s.sessions.Create(c.Request.Context(), &sessions.CreateInput{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Capacity:  req.Capacity,
		Location:  req.Location,
		Status:    models.SessionStatus(req.Status),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSession(out.Session))
}

// UpdateSessionStatus handles POST /admin/sessions/:id/status
func (s *Server) UpdateSessionStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := s.sessions.UpdateStatus(c.Request.Context(), &sessions.UpdateStatusInput{
		DateOrID: c.Param("id"),
		Status:   models.SessionStatus(req.Status),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSession(out.Session))
}

// AdminRoster handles GET /admin/sessions/:id/roster with phones and waitlist
func (s *Server) AdminRoster(c *gin.Context) {
	s.roster(c, true)
}

// InviteActive handles POST /admin/sessions/:id/invite
func (s *Server) InviteActive(c *gin.Context) {
	out, err := s.scheduler.InviteActive(c.Request.Context(), &scheduler.InviteActiveInput{
		SessionID: c.Param("id"),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"invited": out.Invited})
}

// Promote handles POST /admin/sessions/:id/promote
func (s *Server) Promote(c *gin.Context) {
	out, err := s.bookings.Promote(c.Request.Context(), &booking.PromoteInput{
		SessionID: c.Param("id"),
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp := gin.H{"promoted": nil}
	if out.Promoted != nil {
		resp["promoted"] = out.Promoted.ID
	}
	c.JSON(http.StatusOK, resp)
}

// AdminCancel handles POST /admin/bookings/:id/cancel
func (s *Server) AdminCancel(c *gin.Context) {
	var req cancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	out, err := s.bookings.AdminCancel(c.Request.Context(), &booking.AdminCancelInput{
		BookingID: c.Param("id"),
		Reason:    req.Reason,
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

// ImportFriends handles POST /admin/friends/import. Rows fail individually.
func (s *Server) ImportFriends(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	records := make([]directory.ImportRecord, 0, len(req.Friends))
	for _, f := range req.Friends {
		active := true
		if f.Active != nil {
			active = *f.Active
		}
		records = append(records, directory.ImportRecord{
			Name:   f.Name,
			Phone:  f.Phone,
			Active: active,
		})
	}

	out, err := s.directory.Import(c.Request.Context(), &directory.ImportInput{Records: records})
	if err != nil {
		s.writeError(c, err)
		return
	}

	type result struct {
		Friend *friendResponse `json:"friend,omitempty"`
		Error  string          `json:"error,omitempty"`
	}
	results := make([]result, 0, len(out.Results))
	for _, r := range out.Results {
		if r.Err != nil {
			_, msg := statusFor(r.Err)
			results = append(results, result{Error: msg})
			continue
		}
		results = append(results, result{Friend: toFriend(r.Friend)})
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// UpdateFriend handles PATCH /admin/friends/:phone
func (s *Server) UpdateFriend(c *gin.Context) {
	var req updateFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out, err := s.directory.Update(c.Request.Context(), &directory.UpdateInput{
		Phone:  c.Param("phone"),
		Name:   req.Name,
		Active: req.Active,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFriend(out.Friend))
}
