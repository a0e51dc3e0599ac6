package links

// LinkError is a custom error type for signed link errors
type LinkError string

// Error implements the error interface
func (e LinkError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrInvalidToken LinkError = "link invalid or expired"
	ErrEmptySecret  LinkError = "signing secret cannot be empty"
	ErrNilConfig    LinkError = "config cannot be nil"
	ErrNilClock     LinkError = "clock cannot be nil"
	ErrInvalidInput LinkError = "session ID, phone and a positive TTL are required"
)
