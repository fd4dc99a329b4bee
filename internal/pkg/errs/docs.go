// Package errs provides the typed errors used across the dispatch engine.
//
// Every error type follows the same pattern:
//   - a sentinel error variable (e.g., ErrValueIsRequired)
//   - a struct type with fields for error details
//   - constructor functions with and without cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// The malformed-input errors (ValueIsRequiredError, ValueIsInvalidError,
// ValueIsOutOfRangeError) additionally match ErrValidation, so adapters can
// map a whole class of failures with a single errors.Is check:
//
//	switch {
//	case errors.Is(err, errs.ErrValidation):        // 400
//	case errors.Is(err, errs.ErrObjectNotFound):    // 404
//	case errors.Is(err, errs.ErrConflict):          // 409
//	case errors.Is(err, errs.ErrIllegalTransition): // 409
//	}
package errs
