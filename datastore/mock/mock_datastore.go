/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides test doubles for the record store: an in-memory
// DynamoDB client (Client) and a map-backed DataStore.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/recordstore/continuation"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/storagemodels"
)

// keyField is the single field of the continuation keys this mock hands out.
const keyField = "key"

// DataStore is a mock implementation of datastore.DataStore[T] for testing
type DataStore[T any] struct {
	mu          sync.RWMutex
	data        map[storagemodels.PrimaryKey]T
	getKeyFunc  func(T) storagemodels.PrimaryKey
	indexFunc   func(index string, record T) (string, bool)
	findError   error
	putError    error
	updateError error
	deleteError error
}

var _ datastore.DataStore[struct{}] = (*DataStore[struct{}])(nil)

// New creates a new mock DataStore. keyFunc extracts the primary key of a record.
func New[T any](keyFunc func(T) storagemodels.PrimaryKey) *DataStore[T] {
	return &DataStore[T]{
		data:       make(map[storagemodels.PrimaryKey]T),
		getKeyFunc: keyFunc,
	}
}

// WithIndexFunc sets the function that reads a record's secondary index key
func (m *DataStore[T]) WithIndexFunc(f func(index string, record T) (string, bool)) *DataStore[T] {
	m.indexFunc = f
	return m
}

// WithFindError makes read operations return an error
func (m *DataStore[T]) WithFindError(err error) *DataStore[T] {
	m.findError = err
	return m
}

// WithPutError makes Add and PutBatch return an error
func (m *DataStore[T]) WithPutError(err error) *DataStore[T] {
	m.putError = err
	return m
}

// WithUpdateError makes Update return an error
func (m *DataStore[T]) WithUpdateError(err error) *DataStore[T] {
	m.updateError = err
	return m
}

// WithDeleteError makes Delete and DeleteBatch return an error
func (m *DataStore[T]) WithDeleteError(err error) *DataStore[T] {
	m.deleteError = err
	return m
}

// FindAll pages through every record in key order
func (m *DataStore[T]) FindAll(ctx context.Context, req pagination.Request) (*pagination.Page[T], error) {
	return m.page(req, func(T) bool { return true })
}

// FindByPrimaryKey retrieves a record by key
func (m *DataStore[T]) FindByPrimaryKey(ctx context.Context, key storagemodels.PrimaryKey) (*T, error) {
	if m.findError != nil {
		return nil, m.findError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if record, exists := m.data[key]; exists {
		return &record, nil
	}
	return nil, errors.NewMissingFieldError(m.typeName(), "")
}

// FindByPartitionKey pages through the records whose partition value matches
func (m *DataStore[T]) FindByPartitionKey(ctx context.Context, value string, req pagination.Request) (*pagination.Page[T], error) {
	return m.page(req, func(record T) bool {
		return m.getKeyFunc(record).PartitionValue == value
	})
}

// FindBySecondaryKey pages through the records whose index key matches
func (m *DataStore[T]) FindBySecondaryKey(ctx context.Context, index, value string, req pagination.Request) (*pagination.Page[T], error) {
	if m.indexFunc == nil {
		return nil, errors.NewValidationError("index", fmt.Sprintf("unknown index %q", index))
	}
	return m.page(req, func(record T) bool {
		v, ok := m.indexFunc(index, record)
		return ok && v == value
	})
}

// Add stores a record
func (m *DataStore[T]) Add(ctx context.Context, record T) (*T, error) {
	if m.putError != nil {
		return nil, m.putError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.getKeyFunc(record)] = record
	return &record, nil
}

// Update replaces a record, creating it if absent
func (m *DataStore[T]) Update(ctx context.Context, record T) (*T, error) {
	if m.updateError != nil {
		return nil, m.updateError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[m.getKeyFunc(record)] = record
	return &record, nil
}

// Delete removes a record and returns it
func (m *DataStore[T]) Delete(ctx context.Context, key storagemodels.PrimaryKey) (*T, error) {
	if m.deleteError != nil {
		return nil, m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.data[key]
	if !exists {
		return nil, errors.NewMissingFieldError(m.typeName(), "")
	}
	delete(m.data, key)
	return &record, nil
}

// PutBatch stores many records
func (m *DataStore[T]) PutBatch(ctx context.Context, records []T) error {
	if m.putError != nil {
		return m.putError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range records {
		m.data[m.getKeyFunc(record)] = record
	}
	return nil
}

// DeleteBatch removes many records; missing keys are ignored
func (m *DataStore[T]) DeleteBatch(ctx context.Context, keys []storagemodels.PrimaryKey) error {
	if m.deleteError != nil {
		return m.deleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Helper methods for testing

// SetData replaces the stored records (for testing)
func (m *DataStore[T]) SetData(records ...T) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[storagemodels.PrimaryKey]T, len(records))
	for _, record := range records {
		m.data[m.getKeyFunc(record)] = record
	}
}

// Count returns the number of stored records
func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all data
func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[storagemodels.PrimaryKey]T)
}

func (m *DataStore[T]) typeName() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// page returns the matching records in key order, resuming after the
// request's continuation key.
func (m *DataStore[T]) page(req pagination.Request, keep func(T) bool) (*pagination.Page[T], error) {
	if m.findError != nil {
		return nil, m.findError
	}
	start, err := req.StartKey()
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.data))
	byID := make(map[string]T, len(m.data))
	for key, record := range m.data {
		if !keep(record) {
			continue
		}
		id := key.PartitionValue + "|" + key.SortValue
		ids = append(ids, id)
		byID[id] = record
	}
	sort.Strings(ids)

	if after, ok := start[keyField]; ok {
		n := sort.SearchStrings(ids, after)
		if n < len(ids) && ids[n] == after {
			n++
		}
		ids = ids[n:]
	}

	limit := req.PageLimit()
	lek := continuation.Key{}
	if len(ids) > limit {
		ids = ids[:limit]
		lek[keyField] = ids[limit-1]
	}

	items := make([]T, len(ids))
	for i, id := range ids {
		items[i] = byID[id]
	}
	return &pagination.Page[T]{Items: items, Size: len(items), LastEvaluatedKey: lek}, nil
}
