// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Declaration loading reports its failure kinds through dedicated codes
// (MISSING_FIELD, MALFORMED_SOURCE_ORIGIN, DUPLICATE_NAME, UNREADABLE_FILE)
// so callers can branch on the kind without string matching:
//
//	r, err := recipe.Load(path)
//	if errors.HasCode(err, errors.ErrCodeMissingField) {
//	    ...
//	}
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeUnreadableFile,
//	    "failed to read recipe",
//	    cause,
//	    map[string]any{
//	        "path": path,
//	    },
//	)
package errors
