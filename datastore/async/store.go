/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package async

import (
	"context"
	"time"

	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/datastore/ddb"
	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/storagemodels"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// DataStore is the non-blocking CRUD façade. Every operation returns at once;
// its result is delivered through a Future or, for Stream, a channel.
type DataStore[T any] interface {
	FindAll(ctx context.Context, req pagination.Request) *Future[*pagination.Page[T]]
	FindByPrimaryKey(ctx context.Context, key storagemodels.PrimaryKey) *Future[*T]
	FindByPartitionKey(ctx context.Context, value string, req pagination.Request) *Future[*pagination.Page[T]]
	FindBySecondaryKey(ctx context.Context, index, value string, req pagination.Request) *Future[*pagination.Page[T]]
	Add(ctx context.Context, record T) *Future[*T]
	Update(ctx context.Context, record T) *Future[*T]
	Delete(ctx context.Context, key storagemodels.PrimaryKey) *Future[*T]
	PutBatch(ctx context.Context, records []T) *Future[struct{}]
	DeleteBatch(ctx context.Context, keys []storagemodels.PrimaryKey) *Future[struct{}]

	// Stream delivers every record of the table, page after page.
	Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
}

// Streamer is implemented by stores that can stream a full table natively.
type Streamer[T any] interface {
	Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
}

// Store runs a blocking DataStore in the background.
type Store[T any] struct {
	inner       datastore.DataStore[T]
	concurrency int
}

var _ DataStore[struct{}] = (*Store[struct{}])(nil)

// New wraps inner. concurrency bounds how many batch chunks are written at
// once; zero or less means 4.
func New[T any](inner datastore.DataStore[T], concurrency int) *Store[T] {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Store[T]{inner: inner, concurrency: concurrency}
}

// Blocking returns the wrapped store.
func (s *Store[T]) Blocking() datastore.DataStore[T] {
	return s.inner
}

func (s *Store[T]) FindAll(ctx context.Context, req pagination.Request) *Future[*pagination.Page[T]] {
	return Go(ctx, func(ctx context.Context) (*pagination.Page[T], error) {
		return s.inner.FindAll(ctx, req)
	})
}

func (s *Store[T]) FindByPrimaryKey(ctx context.Context, key storagemodels.PrimaryKey) *Future[*T] {
	return Go(ctx, func(ctx context.Context) (*T, error) {
		return s.inner.FindByPrimaryKey(ctx, key)
	})
}

func (s *Store[T]) FindByPartitionKey(ctx context.Context, value string, req pagination.Request) *Future[*pagination.Page[T]] {
	return Go(ctx, func(ctx context.Context) (*pagination.Page[T], error) {
		return s.inner.FindByPartitionKey(ctx, value, req)
	})
}

func (s *Store[T]) FindBySecondaryKey(ctx context.Context, index, value string, req pagination.Request) *Future[*pagination.Page[T]] {
	return Go(ctx, func(ctx context.Context) (*pagination.Page[T], error) {
		return s.inner.FindBySecondaryKey(ctx, index, value, req)
	})
}

func (s *Store[T]) Add(ctx context.Context, record T) *Future[*T] {
	return Go(ctx, func(ctx context.Context) (*T, error) {
		return s.inner.Add(ctx, record)
	})
}

func (s *Store[T]) Update(ctx context.Context, record T) *Future[*T] {
	return Go(ctx, func(ctx context.Context) (*T, error) {
		return s.inner.Update(ctx, record)
	})
}

func (s *Store[T]) Delete(ctx context.Context, key storagemodels.PrimaryKey) *Future[*T] {
	return Go(ctx, func(ctx context.Context) (*T, error) {
		return s.inner.Delete(ctx, key)
	})
}

// PutBatch writes chunks of ddb.MaxBatchSize records concurrently. A store
// that implements datastore.BatchValidator checks the whole batch first, so
// an invalid record fails the batch before any chunk is written. Chunk
// failures are combined in chunk order.
func (s *Store[T]) PutBatch(ctx context.Context, records []T) *Future[struct{}] {
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		if v, ok := s.inner.(datastore.BatchValidator[T]); ok {
			if err := v.ValidateBatch(records); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, fanOut(ctx, s.concurrency, ddb.Chunk(records, ddb.MaxBatchSize), s.inner.PutBatch)
	})
}

// DeleteBatch removes chunks of ddb.MaxBatchSize keys concurrently, with the
// same validation and error collection as PutBatch.
func (s *Store[T]) DeleteBatch(ctx context.Context, keys []storagemodels.PrimaryKey) *Future[struct{}] {
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		if v, ok := s.inner.(datastore.BatchValidator[T]); ok {
			if err := v.ValidateKeys(keys); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, fanOut(ctx, s.concurrency, ddb.Chunk(keys, ddb.MaxBatchSize), s.inner.DeleteBatch)
	})
}

// fanOut writes every chunk, at most limit at a time. A failed chunk does
// not stop the others.
func fanOut[E any](ctx context.Context, limit int, chunks [][]E, write func(context.Context, []E) error) error {
	errs := make([]error, len(chunks))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			errs[i] = write(ctx, chunk)
			return nil
		})
	}
	_ = g.Wait()
	return multierr.Combine(errs...)
}

// Stream uses the wrapped store's native stream when it has one, and pages
// through FindAll otherwise.
func (s *Store[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	if streamer, ok := s.inner.(Streamer[T]); ok {
		return streamer.Stream(ctx, opts...)
	}

	options := storagemodels.NewStreamOptions(opts...)
	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)
	go func() {
		defer close(resultCh)

		send := func(r storagemodels.StreamResult[T]) bool {
			select {
			case <-ctx.Done():
				return false
			case resultCh <- r:
				return true
			}
		}

		req := pagination.Request{Limit: int(options.PageSize)}
		var index int64
		for pageNumber := 1; ; pageNumber++ {
			page, err := s.inner.FindAll(ctx, req)
			if err != nil {
				send(storagemodels.StreamResult[T]{
					Error: err,
					Meta:  storagemodels.StreamMeta{Index: index, PageNumber: pageNumber, Timestamp: time.Now()},
				})
				return
			}
			for _, item := range page.Items {
				if !send(storagemodels.StreamResult[T]{
					Item: item,
					Meta: storagemodels.StreamMeta{Index: index, PageNumber: pageNumber, Timestamp: time.Now()},
				}) {
					return
				}
				index++
			}
			if !page.HasMore() {
				return
			}
			req = page.NextRequest(req.Limit)
		}
	}()
	return resultCh
}
