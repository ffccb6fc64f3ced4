package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// record (or photo file) does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service and photo-store functions when input
// fails validation (coordinates out of bounds, empty location name, non-image
// upload, unsupported file extension).
// Handlers should map this to a client error response.
var ErrValidation = errors.New("validation error")

// ErrDuplicateID is returned by the repo when an insert collides with an
// existing record ID. Generated UUIDs make this vanishingly unlikely, but it
// is handled rather than assumed away.
var ErrDuplicateID = errors.New("duplicate id")
