/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/storagemodels"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// MaxBatchSize is the maximum number of write requests in one BatchWriteItem call.
const MaxBatchSize = 25

// Chunk splits items into consecutive groups of at most size elements.
func Chunk[E any](items []E, size int) [][]E {
	if size <= 0 {
		size = MaxBatchSize
	}
	var chunks [][]E
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[i:end])
	}
	return chunks
}

// PutBatch stores records in chunks of MaxBatchSize. Every record is encoded
// before anything is written; chunk failures are collected and returned
// together.
func (d *Store[T]) PutBatch(ctx context.Context, records []T) error {
	requests, err := d.putRequests(records)
	if err != nil {
		return err
	}
	return d.writeAll(ctx, requests)
}

// DeleteBatch removes records in chunks of MaxBatchSize. Keys that do not
// exist are ignored by DynamoDB.
func (d *Store[T]) DeleteBatch(ctx context.Context, keys []storagemodels.PrimaryKey) error {
	requests, err := d.deleteRequests(keys)
	if err != nil {
		return err
	}
	return d.writeAll(ctx, requests)
}

// ValidateBatch encodes every record without writing, failing the same way
// PutBatch would.
func (d *Store[T]) ValidateBatch(records []T) error {
	_, err := d.putRequests(records)
	return err
}

// ValidateKeys checks every key without writing, failing the same way
// DeleteBatch would.
func (d *Store[T]) ValidateKeys(keys []storagemodels.PrimaryKey) error {
	_, err := d.deleteRequests(keys)
	return err
}

func (d *Store[T]) putRequests(records []T) ([]types.WriteRequest, error) {
	requests := make([]types.WriteRequest, 0, len(records))
	for _, record := range records {
		item, err := d.codec.Encode(record)
		if err != nil {
			return nil, err
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}
	return requests, nil
}

func (d *Store[T]) deleteRequests(keys []storagemodels.PrimaryKey) ([]types.WriteRequest, error) {
	requests := make([]types.WriteRequest, 0, len(keys))
	for _, pk := range keys {
		key, err := d.key(pk)
		if err != nil {
			return nil, err
		}
		requests = append(requests, types.WriteRequest{DeleteRequest: &types.DeleteRequest{Key: key}})
	}
	return requests, nil
}

func (d *Store[T]) writeAll(ctx context.Context, requests []types.WriteRequest) error {
	var err error
	for i, chunk := range Chunk(requests, MaxBatchSize) {
		if chunkErr := d.writeBatch(ctx, chunk); chunkErr != nil {
			d.logger.Warn("batch chunk failed", zap.Int("chunk", i), zap.Int("requests", len(chunk)), zap.Error(chunkErr))
			err = multierr.Append(err, chunkErr)
		}
	}
	return err
}

// writeBatch sends one chunk, resending unprocessed items and transient
// failures with linear backoff until maxRetries is exhausted.
func (d *Store[T]) writeBatch(ctx context.Context, requests []types.WriteRequest) error {
	const op = "BatchWriteItem"
	pending := map[string][]types.WriteRequest{d.schema.Table: requests}

	for attempt := 0; ; attempt++ {
		out, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		switch {
		case err != nil && !errors.IsRetryable(err):
			return d.storeError(op, err)
		case err != nil:
			if attempt >= d.maxRetries {
				return d.storeError(op, fmt.Errorf("failed after %d retries: %w", d.maxRetries, err))
			}
		default:
			left := len(out.UnprocessedItems[d.schema.Table])
			if left == 0 {
				return nil
			}
			if attempt >= d.maxRetries {
				return d.storeError(op, fmt.Errorf("%d items left unprocessed after %d retries", left, d.maxRetries))
			}
			pending = map[string][]types.WriteRequest{d.schema.Table: out.UnprocessedItems[d.schema.Table]}
			d.logger.Debug("retrying unprocessed items", zap.Int("attempt", attempt+1), zap.Int("items", left))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * d.retryBackoff):
		}
	}
}
