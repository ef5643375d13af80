package ledger

import "errors"

// Error kinds. Concrete failures wrap one of these, so callers classify with errors.Is.
var (
	// ErrValidation covers negative or overflowing amounts, percentages outside
	// [0,100], unknown participants and split sets that do not match the total.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an expense or split does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermission is returned when the actor is neither the payer nor the split's user.
	ErrPermission = errors.New("permission denied")

	// ErrConflict is returned when a conditional transition lost a race.
	ErrConflict = errors.New("conflicting concurrent update")
)
