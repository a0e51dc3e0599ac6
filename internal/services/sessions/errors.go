package sessions

// SessionError is a custom error type for session registry errors
type SessionError string

// Error implements the error interface
func (e SessionError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound   SessionError = "session not found"
	ErrDuplicateSession  SessionError = "a session already exists for that date"
	ErrInvalidWindow     SessionError = "session must end after it starts"
	ErrInvalidCapacity   SessionError = "capacity must be between 1 and 20"
	ErrInvalidDate       SessionError = "invalid date or time"
	ErrInvalidStatus     SessionError = "invalid session status"
	ErrInvalidTransition SessionError = "session status cannot move backwards"
	ErrNilConfig         SessionError = "config cannot be nil"
	ErrNilSessionRepo    SessionError = "session repository cannot be nil"
	ErrNilClock          SessionError = "clock cannot be nil"
	ErrNilUUIDGenerator  SessionError = "UUID generator cannot be nil"
)
