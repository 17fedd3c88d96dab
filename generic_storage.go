/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/recordstore/codec"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/datastore/async"
	"github.com/suparena/recordstore/datastore/ddb"
)

// Standard variant keys. Each is also the URL prefix the variant is served under.
const (
	VariantSync          = "sync"
	VariantSyncEnhanced  = "sync/enhanced"
	VariantAsync         = "async"
	VariantAsyncEnhanced = "async/enhanced"
)

// TypedStorage holds the façade variants of one record type T, blocking and
// non-blocking, under unique keys.
type TypedStorage[T any] struct {
	mu       sync.RWMutex
	stores   map[string]datastore.DataStore[T]
	asyncers map[string]async.DataStore[T]
}

// NewTypedStorage creates a new TypedStorage for type T
func NewTypedStorage[T any]() *TypedStorage[T] {
	return &TypedStorage[T]{
		stores:   make(map[string]datastore.DataStore[T]),
		asyncers: make(map[string]async.DataStore[T]),
	}
}

// NewVariants builds the four standard variants of T over one client: the
// blocking and non-blocking façades, each with the hand-written codec raw and
// with the attribute-mapping codec.
func NewVariants[T any](client ddb.DynamoDBAPI, raw codec.Codec[T], concurrency int, opts ...ddb.Option) (*TypedStorage[T], error) {
	rawStore, err := ddb.NewRawStore[T](client, raw, opts...)
	if err != nil {
		return nil, err
	}
	mappedStore, err := ddb.NewMappedStore[T](client, opts...)
	if err != nil {
		return nil, err
	}

	ts := NewTypedStorage[T]()
	for _, register := range []func() error{
		func() error { return ts.Register(VariantSync, rawStore) },
		func() error { return ts.Register(VariantSyncEnhanced, mappedStore) },
		func() error { return ts.RegisterAsync(VariantAsync, async.New[T](rawStore, concurrency)) },
		func() error { return ts.RegisterAsync(VariantAsyncEnhanced, async.New[T](mappedStore, concurrency)) },
	} {
		if err := register(); err != nil {
			return nil, err
		}
	}
	return ts, nil
}

func (ts *TypedStorage[T]) taken(key string) bool {
	_, blocking := ts.stores[key]
	_, nonBlocking := ts.asyncers[key]
	return blocking || nonBlocking
}

// Register adds a blocking datastore with the given key
func (ts *TypedStorage[T]) Register(key string, ds datastore.DataStore[T]) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.taken(key) {
		return fmt.Errorf("datastore with key %q already registered", key)
	}
	ts.stores[key] = ds
	return nil
}

// RegisterAsync adds a non-blocking datastore with the given key
func (ts *TypedStorage[T]) RegisterAsync(key string, ds async.DataStore[T]) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.taken(key) {
		return fmt.Errorf("datastore with key %q already registered", key)
	}
	ts.asyncers[key] = ds
	return nil
}

// Get retrieves a blocking datastore by key
func (ts *TypedStorage[T]) Get(key string) (datastore.DataStore[T], error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	ds, exists := ts.stores[key]
	if !exists {
		return nil, fmt.Errorf("datastore with key %q not found", key)
	}
	return ds, nil
}

// GetAsync retrieves a non-blocking datastore by key
func (ts *TypedStorage[T]) GetAsync(key string) (async.DataStore[T], error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	ds, exists := ts.asyncers[key]
	if !exists {
		return nil, fmt.Errorf("async datastore with key %q not found", key)
	}
	return ds, nil
}

// IsAsync reports whether key names a non-blocking datastore
func (ts *TypedStorage[T]) IsAsync(key string) bool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	_, ok := ts.asyncers[key]
	return ok
}

// Remove deletes a datastore by key
func (ts *TypedStorage[T]) Remove(key string) error {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if !ts.taken(key) {
		return fmt.Errorf("datastore with key %q not found", key)
	}
	delete(ts.stores, key)
	delete(ts.asyncers, key)
	return nil
}

// List returns all registered datastore keys in sorted order
func (ts *TypedStorage[T]) List() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	keys := make([]string, 0, len(ts.stores)+len(ts.asyncers))
	for k := range ts.stores {
		keys = append(keys, k)
	}
	for k := range ts.asyncers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
