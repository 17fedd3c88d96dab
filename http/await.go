/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package http

import (
	"context"

	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/datastore/async"
	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/storagemodels"
)

// awaitStore serves a non-blocking store to the handlers: each call starts the
// operation and waits for its future under the request context.
type awaitStore[T any] struct {
	async async.DataStore[T]
}

var (
	_ datastore.DataStore[struct{}] = awaitStore[struct{}]{}
	_ async.Streamer[struct{}]      = awaitStore[struct{}]{}
)

// Awaiting adapts s to the blocking contract.
func Awaiting[T any](s async.DataStore[T]) datastore.DataStore[T] {
	return awaitStore[T]{async: s}
}

func (s awaitStore[T]) FindAll(ctx context.Context, req pagination.Request) (*pagination.Page[T], error) {
	return s.async.FindAll(ctx, req).Await(ctx)
}

func (s awaitStore[T]) FindByPrimaryKey(ctx context.Context, key storagemodels.PrimaryKey) (*T, error) {
	return s.async.FindByPrimaryKey(ctx, key).Await(ctx)
}

func (s awaitStore[T]) FindByPartitionKey(ctx context.Context, value string, req pagination.Request) (*pagination.Page[T], error) {
	return s.async.FindByPartitionKey(ctx, value, req).Await(ctx)
}

func (s awaitStore[T]) FindBySecondaryKey(ctx context.Context, index, value string, req pagination.Request) (*pagination.Page[T], error) {
	return s.async.FindBySecondaryKey(ctx, index, value, req).Await(ctx)
}

func (s awaitStore[T]) Add(ctx context.Context, record T) (*T, error) {
	return s.async.Add(ctx, record).Await(ctx)
}

func (s awaitStore[T]) Update(ctx context.Context, record T) (*T, error) {
	return s.async.Update(ctx, record).Await(ctx)
}

func (s awaitStore[T]) Delete(ctx context.Context, key storagemodels.PrimaryKey) (*T, error) {
	return s.async.Delete(ctx, key).Await(ctx)
}

func (s awaitStore[T]) PutBatch(ctx context.Context, records []T) error {
	_, err := s.async.PutBatch(ctx, records).Await(ctx)
	return err
}

func (s awaitStore[T]) DeleteBatch(ctx context.Context, keys []storagemodels.PrimaryKey) error {
	_, err := s.async.DeleteBatch(ctx, keys).Await(ctx)
	return err
}

func (s awaitStore[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	return s.async.Stream(ctx, opts...)
}
