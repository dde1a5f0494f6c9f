package domain

import "errors"

// ErrValidation is the base error for entity validation failures. The
// field-specific job errors wrap it so callers can classify any of them
// with a single errors.Is check.
var ErrValidation = errors.New("validation failed")
