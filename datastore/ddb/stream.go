/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/storagemodels"
	"go.uber.org/zap"
)

// Stream scans the whole table in the background and delivers every record
// on the returned channel, which is closed when the scan ends, fails, or ctx
// is cancelled. An ErrorHandler may resume a failed page at most MaxRetries
// times in a row, waiting RetryBackoff longer before each attempt.
func (d *Store[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.NewStreamOptions(opts...)

	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)
	go d.streamWorker(ctx, options, resultCh)
	return resultCh
}

// streamWorker handles the actual streaming logic
func (d *Store[T]) streamWorker(
	ctx context.Context,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	var itemIndex int64
	var pageNumber int
	var failures []error
	// handled counts consecutive scan failures the error handler resumed
	var handled int
	startTime := time.Now()

	reportProgress := func(lastKey map[string]types.AttributeValue) {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: itemIndex,
			PagesProcessed: pageNumber,
			LastKey:        lastKey,
			Errors:         failures,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}
		options.ProgressHandler(progress)
	}

	send := func(result storagemodels.StreamResult[T]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- result:
			return true
		}
	}

	input := &dynamodb.ScanInput{
		TableName: aws.String(d.schema.Table),
		Limit:     aws.Int32(options.PageSize),
	}

	for {
		if ctx.Err() != nil {
			return
		}

		out, err := d.scanWithRetry(ctx, input, options)
		if err != nil {
			if handled < options.MaxRetries && options.ErrorHandler != nil && options.ErrorHandler(err) {
				// Record error and fetch the same page again after a pause
				failures = append(failures, err)
				handled++
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Duration(handled) * options.RetryBackoff):
				}
				continue
			}
			send(storagemodels.StreamResult[T]{
				Error: d.storeError("Scan", err),
				Meta: storagemodels.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			})
			return
		}

		handled = 0
		pageNumber++
		for _, item := range out.Items {
			result := d.processItem(item, itemIndex, pageNumber)
			itemIndex++
			if result.Error != nil {
				failures = append(failures, result.Error)
			}
			if !send(result) {
				return
			}
		}

		reportProgress(out.LastEvaluatedKey)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	d.logger.Debug("stream finished", zap.Int64("items", itemIndex), zap.Int("pages", pageNumber))
	reportProgress(nil)
}

// scanWithRetry executes a scan, retrying transient errors with linear backoff
func (d *Store[T]) scanWithRetry(
	ctx context.Context,
	input *dynamodb.ScanInput,
	options storagemodels.StreamOptions,
) (*dynamodb.ScanOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		out, err := d.client.Scan(ctx, input)
		if err == nil {
			return out, nil
		}

		lastErr = err
		if !errors.IsRetryable(err) {
			return nil, err
		}

		if attempt < options.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * options.RetryBackoff):
			}
		}
	}

	return nil, fmt.Errorf("scan failed after %d retries: %w", options.MaxRetries, lastErr)
}

// processItem converts a DynamoDB item to a typed result
func (d *Store[T]) processItem(
	item map[string]types.AttributeValue,
	index int64,
	pageNumber int,
) storagemodels.StreamResult[T] {
	result := storagemodels.StreamResult[T]{
		Raw: item,
		Meta: storagemodels.StreamMeta{
			Index:      index,
			PageNumber: pageNumber,
			Timestamp:  time.Now(),
		},
	}

	record, err := d.codec.Decode(item)
	if err != nil {
		result.Error = err
		return result
	}
	result.Item = record
	return result
}
