package domain

import "time"

// RecipientRecord tracks an address that has received the automatic point
// grant. TopUpDate is refreshed on every re-grant; locker discovery passes
// fill in LockerAddress/LastChecked later. Records are never deleted.
type RecipientRecord struct {
	Address           string     `json:"address"`
	TopUpDate         time.Time  `json:"topUpDate"`
	LockerAddress     *string    `json:"lockerAddress,omitempty"`
	LockerCheckedDate *time.Time `json:"lockerCheckedDate,omitempty"`
	Claimed           bool       `json:"claimed"`
	LastChecked       *time.Time `json:"lastChecked,omitempty"`
}

// RecipientUpdate carries the partial fields merged into an existing
// recipient record. Nil fields are left untouched.
type RecipientUpdate struct {
	TopUpDate         *time.Time
	LockerAddress     *string
	LockerCheckedDate *time.Time
	Claimed           *bool
	LastChecked       *time.Time
}
