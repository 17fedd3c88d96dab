/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/storagemodels"
)

// DataStore is the blocking CRUD façade over one record type.
type DataStore[T any] interface {
	// FindAll scans the table one page at a time.
	FindAll(ctx context.Context, req pagination.Request) (*pagination.Page[T], error)

	// FindByPrimaryKey reads one record. A missing record fails with a
	// MissingFieldError that also matches errors.ErrNotFound.
	FindByPrimaryKey(ctx context.Context, key storagemodels.PrimaryKey) (*T, error)

	// FindByPartitionKey queries the table for records sharing a partition value.
	FindByPartitionKey(ctx context.Context, value string, req pagination.Request) (*pagination.Page[T], error)

	// FindBySecondaryKey queries a secondary index for records whose index key equals value.
	FindBySecondaryKey(ctx context.Context, index, value string, req pagination.Request) (*pagination.Page[T], error)

	// Add stores a record and returns it.
	Add(ctx context.Context, record T) (*T, error)

	// Update overwrites the non-key attributes of a record and returns the
	// stored post-update state.
	Update(ctx context.Context, record T) (*T, error)

	// Delete removes a record and returns its pre-delete state.
	Delete(ctx context.Context, key storagemodels.PrimaryKey) (*T, error)

	// PutBatch stores many records.
	PutBatch(ctx context.Context, records []T) error

	// DeleteBatch removes many records.
	DeleteBatch(ctx context.Context, keys []storagemodels.PrimaryKey) error
}

// BatchValidator is implemented by stores that can reject a batch before
// any part of it is written. Wrappers that split a batch call it first.
type BatchValidator[T any] interface {
	ValidateBatch(records []T) error
	ValidateKeys(keys []storagemodels.PrimaryKey) error
}
