/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package pagination

import (
	"net/url"
	"strconv"

	"github.com/suparena/recordstore/continuation"
	"github.com/suparena/recordstore/errors"
)

// DefaultLimit is the page size used when a request does not set one.
const DefaultLimit = 10

// Query parameter names.
const (
	LimitParam            = "limit"
	LastEvaluatedKeyParam = "lastEvaluatedKey"
)

// Request carries the client's paging input. LastEvaluatedKey is the encoded
// continuation key as received from the outside.
type Request struct {
	Limit            int
	LastEvaluatedKey string
}

// ParseRequest reads limit and lastEvaluatedKey from query parameters. An
// absent limit means DefaultLimit; a limit that is not a positive 32-bit
// integer is a ValidationError.
func ParseRequest(values url.Values) (Request, error) {
	req := Request{LastEvaluatedKey: values.Get(LastEvaluatedKeyParam)}

	if raw := values.Get(LimitParam); raw != "" {
		limit, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || limit <= 0 {
			return Request{}, errors.NewValidationError(LimitParam, "must be a positive 32-bit integer")
		}
		req.Limit = int(limit)
	}
	return req, nil
}

// PageLimit returns the requested limit or DefaultLimit.
func (r Request) PageLimit() int {
	if r.Limit <= 0 {
		return DefaultLimit
	}
	return r.Limit
}

// StartKey decodes the continuation key. An absent key yields an empty Key.
func (r Request) StartKey() (continuation.Key, error) {
	return continuation.Decode(r.LastEvaluatedKey)
}
