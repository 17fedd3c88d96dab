/*
Package errors provides semantic error types for the recordstore service.

The package defines the failure classes of the pagination and marshalling
layer with specific types that can be checked using the standard errors.Is()
function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound                 = errors.New("record not found")
	    ErrMissingField             = errors.New("missing required field")
	    ErrMalformedContinuationKey = errors.New("malformed continuation key")
	    ErrInvalidInput             = errors.New("invalid input")
	    ErrStore                    = errors.New("store error")
	    ErrStoreUnavailable         = errors.New("store unavailable")
	)

A MissingFieldError without a field name describes an empty item, which is
how the store reports a key that does not exist; it matches both
ErrMissingField and ErrNotFound so callers can answer 404 instead of 400:

	person, err := store.FindByPrimaryKey(ctx, key)
	if err != nil {
	    if errors.IsNotFound(err) {
	        // no such record
	    }
	    return nil, err
	}

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
