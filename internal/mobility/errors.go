package mobility

import "errors"

// ErrInvariantViolation marks a condition serious enough to fail the
// process fast rather than recover from: IP pool exhaustion, duplicate IP
// allocation, or a user appearing in two cells at once.
var ErrInvariantViolation = errors.New("mobility: invariant violation")

// ErrCellNotFound is returned when a lookup references an unknown cell id.
var ErrCellNotFound = errors.New("mobility: cell not found")
