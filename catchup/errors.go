package catchup

import "errors"

// ErrUnknownLedger is wrapped into a ValidationError when a message names a
// ledger the core has no View registered for.
var ErrUnknownLedger = errors.New("catchup: unknown ledger")

// ValidationError is the single error type the validator returns: it
// carries the name of the first predicate that failed rather than a type
// switch over many distinct error values, so the drop-and-log call site in
// Core can format one line unconditionally.
type ValidationError struct {
	Rule   string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "catchup: validation failed: " + e.Rule
	}
	return "catchup: validation failed: " + e.Rule + ": " + e.Detail
}
