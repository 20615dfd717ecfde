package listings

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusDelisted  Status = "DELISTED"
)

// IsValid checks if the listing status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusDelisted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsBookable checks if new bookings may be created against this listing
func (s Status) IsBookable() bool {
	return s == StatusActive
}
