package booking

// BookingError is a custom error type for booking ledger errors
type BookingError string

// Error implements the error interface
func (e BookingError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrSessionNotFound     BookingError = "session not found"
	ErrSessionNotPublished BookingError = "session is not open for booking"
	ErrBookingNotFound     BookingError = "booking not found"
	ErrAlreadyCanceled     BookingError = "booking already canceled"
	ErrDeadlinePassed      BookingError = "cancellation deadline has passed"
	ErrBusy                BookingError = "too many concurrent changes, try again"
	ErrInvalidToken        BookingError = "link invalid or expired"
	ErrInvalidPhone        BookingError = "invalid phone number"
	ErrInvalidActor        BookingError = "invalid actor"
	ErrNilConfig           BookingError = "config cannot be nil"
	ErrNilBookingRepo      BookingError = "booking repository cannot be nil"
	ErrNilSessions         BookingError = "session service cannot be nil"
	ErrNilDirectory        BookingError = "directory service cannot be nil"
	ErrNilLinks            BookingError = "link service cannot be nil"
	ErrNilMessages         BookingError = "messaging service cannot be nil"
	ErrNilNotifier         BookingError = "notifier cannot be nil"
	ErrNilClock            BookingError = "clock cannot be nil"
	ErrNilUUIDGenerator    BookingError = "UUID generator cannot be nil"
)
