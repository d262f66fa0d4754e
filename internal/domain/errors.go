package domain

import "errors"

var (
	// ErrRecipientNotFound is returned when updating a recipient that does not exist
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrEligibilityUnavailable is returned when every upstream dependency is
	// unreachable and not even a degraded eligibility answer can be computed
	ErrEligibilityUnavailable = errors.New("eligibility computation unavailable")
)
