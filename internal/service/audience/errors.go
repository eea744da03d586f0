package audience

import "errors"

// Sentinel errors for the audience service layer.
var (
	// ErrMissingFields means the name or customer list was not supplied.
	ErrMissingFields = errors.New("missing required fields")

	// ErrNoValidCustomers means every record lacked all identifiers.
	ErrNoValidCustomers = errors.New("no valid customer data to upload")

	// ErrUpdateUnsupported means the caller asked to populate an existing audience.
	ErrUpdateUnsupported = errors.New("updating an existing audience is not supported")

	// ErrCreateFailed wraps a platform failure while creating the audience.
	ErrCreateFailed = errors.New("creating custom audience")
)
