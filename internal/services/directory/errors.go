package directory

// DirectoryError is a custom error type for friend directory errors
type DirectoryError string

// Error implements the error interface
func (e DirectoryError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrInvalidPhone     DirectoryError = "invalid phone number"
	ErrFriendNotFound   DirectoryError = "friend not found"
	ErrNilConfig        DirectoryError = "config cannot be nil"
	ErrNilFriendRepo    DirectoryError = "friend repository cannot be nil"
	ErrNilClock         DirectoryError = "clock cannot be nil"
	ErrNilUUIDGenerator DirectoryError = "UUID generator cannot be nil"
)
