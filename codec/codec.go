/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package codec converts records to and from the store's attribute maps.
//
// Two strategies satisfy Codec: hand-written codecs declared next to each
// record type, and Mapped, which relies on the attributevalue package and the
// record's registered schema.
package codec

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/registry"
)

// Codec maps a record type T to and from a DynamoDB attribute map.
//
// Decode must either return a fully populated record or an error; an empty or
// nil map, and a map lacking a required attribute, fail with a
// MissingFieldError.
type Codec[T any] interface {
	Decode(item map[string]types.AttributeValue) (T, error)
	Encode(record T) (map[string]types.AttributeValue, error)
}

// Mapped is a Codec driven by struct tags. Records are marshaled with
// attributevalue and checked against the Required list of their schema.
type Mapped[T any] struct {
	schema registry.Schema
}

// NewMapped returns a Mapped codec for T. T must have a registered schema.
func NewMapped[T any]() (*Mapped[T], error) {
	schema, ok := registry.GetSchema[T]()
	if !ok {
		var zero T
		return nil, fmt.Errorf("no schema registered for %T", zero)
	}
	return &Mapped[T]{schema: schema}, nil
}

// Decode implements Codec.
func (m *Mapped[T]) Decode(item map[string]types.AttributeValue) (T, error) {
	var record T
	if err := CheckRequired(m.schema, item); err != nil {
		return record, err
	}
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to unmarshal %s: %w", m.schema.Name, err)
	}
	return record, nil
}

// Encode implements Codec.
func (m *Mapped[T]) Encode(record T) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", m.schema.Name, err)
	}
	if err := CheckRequired(m.schema, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CheckRequired verifies that item is non-empty and carries a non-empty string
// for every attribute the schema requires.
func CheckRequired(schema registry.Schema, item map[string]types.AttributeValue) error {
	if len(item) == 0 {
		return errors.NewMissingFieldError(schema.Name, "")
	}
	for _, attr := range schema.Required {
		if _, err := String(schema.Name, item, attr); err != nil {
			return err
		}
	}
	return nil
}

// String reads a required, non-empty string attribute from item.
func String(recordType string, item map[string]types.AttributeValue, attr string) (string, error) {
	s, ok := item[attr].(*types.AttributeValueMemberS)
	if !ok || s.Value == "" {
		return "", errors.NewMissingFieldError(recordType, attr)
	}
	return s.Value, nil
}

// StringValue builds a string attribute.
func StringValue(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}
