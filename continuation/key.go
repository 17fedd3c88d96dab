/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package continuation encodes the store's last evaluated key into an opaque
// string that fits in a URL query parameter, and decodes it back.
//
// The wire form is a comma-separated list of field:value pairs:
//
//	firstName:Person5,lastName:lastNameTest
//
// Encode percent-escapes '%', ',' and ':' inside names and values, so any
// key round-trips; unescaped input without those characters decodes as is.
package continuation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/recordstore/errors"
)

const (
	pairSeparator  = ","
	fieldSeparator = ":"
)

var (
	escaper   = strings.NewReplacer("%", "%25", ",", "%2C", ":", "%3A")
	unescaper = strings.NewReplacer("%25", "%", "%2C", ",", "%2c", ",", "%3A", ":", "%3a", ":")
)

// Key identifies the position after the last item of a scan or query page.
// An empty Key means there are no further pages.
type Key map[string]string

// Empty reports whether k carries no continuation.
func (k Key) Empty() bool {
	return len(k) == 0
}

// String returns the encoded form of k.
func (k Key) String() string {
	return Encode(k)
}

// AttributeValues converts k into the store's start key shape. An empty key
// yields nil so callers can leave ExclusiveStartKey unset.
func (k Key) AttributeValues() map[string]types.AttributeValue {
	if k.Empty() {
		return nil
	}
	av := make(map[string]types.AttributeValue, len(k))
	for field, value := range k {
		av[field] = &types.AttributeValueMemberS{Value: value}
	}
	return av
}

// Encode serializes k. Fields are emitted in sorted order so equal keys encode
// identically. The empty key encodes to "".
func Encode(k Key) string {
	if k.Empty() {
		return ""
	}

	fields := make([]string, 0, len(k))
	for field := range k {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteString(pairSeparator)
		}
		b.WriteString(escaper.Replace(field))
		b.WriteString(fieldSeparator)
		b.WriteString(escaper.Replace(k[field]))
	}
	return b.String()
}

// Decode parses s into a Key. The empty string decodes to an empty Key.
// Pieces without a ':' separator, pieces with an empty field name and repeated
// fields are rejected with a MalformedKeyError.
func Decode(s string) (Key, error) {
	key := Key{}
	if s == "" {
		return key, nil
	}

	for _, piece := range strings.Split(s, pairSeparator) {
		field, value, ok := strings.Cut(piece, fieldSeparator)
		if !ok {
			return nil, errors.NewMalformedKeyError(s, fmt.Sprintf("piece %q has no %q", piece, fieldSeparator))
		}
		field = unescaper.Replace(field)
		if field == "" {
			return nil, errors.NewMalformedKeyError(s, fmt.Sprintf("piece %q has an empty field name", piece))
		}
		if _, dup := key[field]; dup {
			return nil, errors.NewMalformedKeyError(s, fmt.Sprintf("field %q appears more than once", field))
		}
		key[field] = unescaper.Replace(value)
	}
	return key, nil
}

// FromAttributeValues converts a last evaluated key returned by the store into
// a Key. Only string attributes are supported; a nil or empty map yields an
// empty Key.
func FromAttributeValues(av map[string]types.AttributeValue) (Key, error) {
	key := make(Key, len(av))
	for field, value := range av {
		s, ok := value.(*types.AttributeValueMemberS)
		if !ok {
			return nil, errors.NewMalformedKeyError(field, fmt.Sprintf("attribute %q is %T, want a string", field, value))
		}
		key[field] = s.Value
	}
	return key, nil
}
