package scheduler

// SchedulerError is a custom error type for scheduler errors
type SchedulerError string

// Error implements the error interface
func (e SchedulerError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNotPublished  SchedulerError = "invites can only go out for published sessions"
	ErrNilConfig     SchedulerError = "config cannot be nil"
	ErrNilSessions   SchedulerError = "session service cannot be nil"
	ErrNilDirectory  SchedulerError = "directory service cannot be nil"
	ErrNilLinks      SchedulerError = "link service cannot be nil"
	ErrNilMessages   SchedulerError = "messaging service cannot be nil"
	ErrNilNotifier   SchedulerError = "notifier cannot be nil"
	ErrNilClock      SchedulerError = "clock cannot be nil"
	ErrInvalidWindow SchedulerError = "default start and end times are required"
)
