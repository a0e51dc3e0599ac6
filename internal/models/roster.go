package models

// RosterEntry is one confirmed participant as shown on a roster
type RosterEntry struct {
	BookingID string
	Name      string

	// Phone is masked unless the roster was requested by an admin
	Phone string
}

// WaitlistEntry is one waitlisted participant, shown to admins only
type WaitlistEntry struct {
	BookingID string
	Name      string
	Phone     string

	// Position is the 1-based place in line
	Position int
}

// RosterStats summarizes seat usage for a session
type RosterStats struct {
	Confirmed  int
	Available  int
	Waitlisted int
}

// Roster is the confirmed-participant view of a session
type Roster struct {
	SessionID string
	Entries   []RosterEntry
	Stats     RosterStats

	// Waitlist is populated only for admin callers
	Waitlist []WaitlistEntry
}
