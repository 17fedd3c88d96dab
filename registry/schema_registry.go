/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Schema describes the table layout of a record type.
type Schema struct {
	// Name is the record type name used in errors and logs (e.g. "Person").
	Name string
	// Table is the DynamoDB table name.
	Table string
	// PartitionKey is the attribute name of the table's partition key.
	PartitionKey string
	// SortKey is the attribute name of the table's sort key, if any.
	SortKey string
	// Indexes maps a secondary index name to its partition key attribute.
	Indexes map[string]string
	// Required lists the attributes a stored item must carry.
	Required []string
}

// KeyAttributes returns the primary key attribute names in key order.
func (s Schema) KeyAttributes() []string {
	if s.SortKey == "" {
		return []string{s.PartitionKey}
	}
	return []string{s.PartitionKey, s.SortKey}
}

// IsKey reports whether attr is part of the table's primary key.
func (s Schema) IsKey(attr string) bool {
	return attr == s.PartitionKey || (s.SortKey != "" && attr == s.SortKey)
}

// IndexNames returns the secondary index names in sorted order.
func (s Schema) IndexNames() []string {
	names := make([]string, 0, len(s.Indexes))
	for name := range s.Indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the schema names a table and a partition key, and that
// every key attribute is required.
func (s Schema) Validate() error {
	if s.Table == "" {
		return fmt.Errorf("schema %q: table name is required", s.Name)
	}
	if s.PartitionKey == "" {
		return fmt.Errorf("schema %q: partition key is required", s.Name)
	}
	required := make(map[string]bool, len(s.Required))
	for _, attr := range s.Required {
		required[attr] = true
	}
	for _, attr := range s.KeyAttributes() {
		if !required[attr] {
			return fmt.Errorf("schema %q: key attribute %q must be required", s.Name, attr)
		}
	}
	for index, attr := range s.Indexes {
		if attr == "" {
			return fmt.Errorf("schema %q: index %q has no partition key", s.Name, index)
		}
	}
	return nil
}

var (
	schemaRegistry = make(map[reflect.Type]Schema)
	mu             sync.RWMutex
)

// RegisterSchema associates a Go type T with a table schema. It panics if the
// schema is invalid, since registration happens at init time.
func RegisterSchema[T any](schema Schema) {
	var zero T
	t := reflect.TypeOf(zero)

	if schema.Name == "" {
		schema.Name = t.Name()
	}
	if err := schema.Validate(); err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}

	mu.Lock()
	defer mu.Unlock()
	schemaRegistry[t] = schema
}

// GetSchema retrieves the schema for type T, if any.
func GetSchema[T any]() (Schema, bool) {
	var zero T
	t := reflect.TypeOf(zero)

	mu.RLock()
	defer mu.RUnlock()
	s, ok := schemaRegistry[t]
	return s, ok
}

// MustSchema retrieves the schema for type T or panics.
func MustSchema[T any]() Schema {
	s, ok := GetSchema[T]()
	if !ok {
		var zero T
		panic(fmt.Sprintf("registry: no schema registered for %T", zero))
	}
	return s
}

// Schemas returns every registered schema ordered by table name.
func Schemas() []Schema {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]Schema, 0, len(schemaRegistry))
	for _, s := range schemaRegistry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Table < out[j].Table })
	return out
}
