package reservation

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPickedUp  Status = "picked_up"
	StatusReturned  Status = "returned"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// allowedTransitions is the authoritative status transition table. Any
// transition not listed here is rejected.
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPickedUp, StatusCancelled},
	StatusPickedUp:  {StatusReturned},
	StatusReturned:  {StatusCompleted},
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPickedUp, StatusReturned, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range allowedTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// BookingBlockingStatuses are the statuses that pin a vehicle against new
// bookings. A pending, unpaid reservation still blocks the calendar.
var BookingBlockingStatuses = []Status{StatusPending, StatusConfirmed, StatusPickedUp}

// ReplacementBlockingStatuses are the statuses considered when computing which
// vehicles are committed elsewhere during a pickup-time replacement search.
// Pending reservations are excluded: an unpaid hold must not pin a vehicle
// that could serve a customer standing at the counter.
var ReplacementBlockingStatuses = []Status{StatusConfirmed, StatusPickedUp}

type PaymentStatus string

const (
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
	PaymentPending  PaymentStatus = "pending"
)

func (p PaymentStatus) String() string {
	return string(p)
}

// PaymentInfo records the latest payment attempt against a reservation.
// The zero value means no attempt has been made yet.
type PaymentInfo struct {
	TransactionID string
	Method        string
	Status        PaymentStatus
}

func (p PaymentInfo) IsZero() bool {
	return p == PaymentInfo{}
}
