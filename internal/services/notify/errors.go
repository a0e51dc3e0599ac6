package notify

// NotifyError is a custom error type for notification errors
type NotifyError string

// Error implements the error interface
func (e NotifyError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrInvalidMessage NotifyError = "message needs a dedupe key, a recipient and a body"
	ErrNilConfig      NotifyError = "config cannot be nil"
	ErrNilRepo        NotifyError = "notification repository cannot be nil"
	ErrNilDispatcher  NotifyError = "dispatcher cannot be nil"
	ErrNilClock       NotifyError = "clock cannot be nil"
)
