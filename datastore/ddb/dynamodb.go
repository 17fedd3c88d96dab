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
	"github.com/suparena/recordstore/codec"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/registry"
	"github.com/suparena/recordstore/storagemodels"
	"go.uber.org/zap"
)

// Store implements datastore.DataStore[T] on DynamoDB. The codec decides how
// records map to attribute maps; the table layout comes from T's registered
// schema.
type Store[T any] struct {
	client       DynamoDBAPI
	codec        codec.Codec[T]
	schema       registry.Schema
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration
}

var (
	_ datastore.DataStore[struct{}]      = (*Store[struct{}])(nil)
	_ datastore.BatchValidator[struct{}] = (*Store[struct{}])(nil)
)

// Option configures a Store.
type Option func(*options)

type options struct {
	logger       *zap.Logger
	maxRetries   int
	retryBackoff time.Duration
}

// WithLogger sets the logger used for store calls.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBatchRetry sets how often unprocessed batch items and transient
// failures are retried, and the base backoff between attempts.
func WithBatchRetry(maxRetries int, backoff time.Duration) Option {
	return func(o *options) {
		o.maxRetries = maxRetries
		o.retryBackoff = backoff
	}
}

// NewStore constructs a Store for T. T must have a registered schema.
func NewStore[T any](client DynamoDBAPI, c codec.Codec[T], opts ...Option) (*Store[T], error) {
	schema, ok := registry.GetSchema[T]()
	if !ok {
		var zero T
		return nil, fmt.Errorf("no schema registered for %T", zero)
	}

	o := options{
		logger:       zap.NewNop(),
		maxRetries:   3,
		retryBackoff: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[T]{
		client:       client,
		codec:        c,
		schema:       schema,
		logger:       o.logger.With(zap.String("table", schema.Table)),
		maxRetries:   o.maxRetries,
		retryBackoff: o.retryBackoff,
	}, nil
}

// NewRawStore builds a Store using the hand-written codec c.
func NewRawStore[T any](client DynamoDBAPI, c codec.Codec[T], opts ...Option) (*Store[T], error) {
	return NewStore[T](client, c, opts...)
}

// NewMappedStore builds a Store using the attribute-mapping codec.
func NewMappedStore[T any](client DynamoDBAPI, opts ...Option) (*Store[T], error) {
	m, err := codec.NewMapped[T]()
	if err != nil {
		return nil, err
	}
	return NewStore[T](client, m, opts...)
}

// Schema returns the table layout the store works against.
func (d *Store[T]) Schema() registry.Schema {
	return d.schema
}

func (d *Store[T]) storeError(op string, err error) error {
	d.logger.Debug("store call failed", zap.String("op", op), zap.Error(err))
	return errors.NewStoreError(op, d.schema.Table, err)
}

// key builds the primary key attribute map.
func (d *Store[T]) key(pk storagemodels.PrimaryKey) (map[string]types.AttributeValue, error) {
	if pk.PartitionValue == "" {
		return nil, errors.NewValidationError(d.schema.PartitionKey, "partition key value is required")
	}
	key := map[string]types.AttributeValue{
		d.schema.PartitionKey: codec.StringValue(pk.PartitionValue),
	}
	if d.schema.SortKey != "" {
		if pk.SortValue == "" {
			return nil, errors.NewValidationError(d.schema.SortKey, "sort key value is required")
		}
		key[d.schema.SortKey] = codec.StringValue(pk.SortValue)
	}
	return key, nil
}

// keyOf extracts the primary key attributes from an encoded item.
func (d *Store[T]) keyOf(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	key := make(map[string]types.AttributeValue, 2)
	for _, attr := range d.schema.KeyAttributes() {
		key[attr] = item[attr]
	}
	return key
}

// FindAll returns the first page of a table scan starting after the
// request's continuation key.
func (d *Store[T]) FindAll(ctx context.Context, req pagination.Request) (*pagination.Page[T], error) {
	start, err := req.StartKey()
	if err != nil {
		return nil, err
	}

	input := BuildScan(storagemodels.ScanParams{
		TableName: d.schema.Table,
		Limit:     req.PageLimit(),
		StartKey:  start,
	})
	d.logger.Debug("scan", zap.Int32("limit", aws.ToInt32(input.Limit)), zap.Bool("continued", !start.Empty()))

	page, err := pagination.FirstPage[T](ctx, newScanIterator(d.client, input, d.codec))
	if err != nil {
		if errors.IsMissingField(err) {
			return nil, err
		}
		return nil, d.storeError("Scan", err)
	}
	return page, nil
}

// FindByPrimaryKey reads one record.
func (d *Store[T]) FindByPrimaryKey(ctx context.Context, pk storagemodels.PrimaryKey) (*T, error) {
	key, err := d.key(pk)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("get item", zap.String("partitionKey", pk.PartitionValue), zap.String("sortKey", pk.SortValue))
	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.schema.Table),
		Key:       key,
	})
	if err != nil {
		return nil, d.storeError("GetItem", err)
	}

	record, err := d.codec.Decode(out.Item)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByPartitionKey queries the table for records sharing a partition value.
func (d *Store[T]) FindByPartitionKey(ctx context.Context, value string, req pagination.Request) (*pagination.Page[T], error) {
	out, records, err := d.query(ctx, "", d.schema.PartitionKey, value, req)
	if err != nil {
		return nil, err
	}
	return pagination.Of(records, out.LastEvaluatedKey)
}

// FindBySecondaryKey queries the named secondary index.
func (d *Store[T]) FindBySecondaryKey(ctx context.Context, index, value string, req pagination.Request) (*pagination.Page[T], error) {
	attr, ok := d.schema.Indexes[index]
	if !ok {
		return nil, errors.NewValidationError("index", fmt.Sprintf("table %q has no index %q", d.schema.Table, index))
	}
	out, records, err := d.query(ctx, index, attr, value, req)
	if err != nil {
		return nil, err
	}
	return pagination.From[T](queryResult[T]{records: records, out: out})
}

func (d *Store[T]) query(ctx context.Context, index, attr, value string, req pagination.Request) (*dynamodb.QueryOutput, []T, error) {
	start, err := req.StartKey()
	if err != nil {
		return nil, nil, err
	}

	input, err := BuildQuery(storagemodels.QueryParams{
		TableName:    d.schema.Table,
		IndexName:    index,
		KeyAttribute: attr,
		KeyValue:     value,
		Limit:        req.PageLimit(),
		StartKey:     start,
	})
	if err != nil {
		return nil, nil, err
	}

	d.logger.Debug("query", zap.String("index", index), zap.String("attribute", attr), zap.Int32("limit", aws.ToInt32(input.Limit)))
	out, err := d.client.Query(ctx, input)
	if err != nil {
		return nil, nil, d.storeError("Query", err)
	}

	records, err := decodeAll(d.codec, out.Items)
	if err != nil {
		return nil, nil, err
	}
	return out, records, nil
}

// Add stores a record. PutItem cannot return the new attributes, so the
// input is returned as stored.
func (d *Store[T]) Add(ctx context.Context, record T) (*T, error) {
	item, err := d.codec.Encode(record)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("put item")
	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.schema.Table),
		Item:      item,
	}); err != nil {
		return nil, d.storeError("PutItem", err)
	}
	return &record, nil
}

// Update sets every non-key attribute of record, creating the record if its
// key does not exist, and returns the stored post-update state.
func (d *Store[T]) Update(ctx context.Context, record T) (*T, error) {
	item, err := d.codec.Encode(record)
	if err != nil {
		return nil, err
	}

	expr, ok, err := buildUpdate(item, d.schema.IsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Nothing but key attributes; an update is a plain put.
		return d.Add(ctx, record)
	}

	d.logger.Debug("update item")
	out, err := d.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(d.schema.Table),
		Key:                       d.keyOf(item),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, d.storeError("UpdateItem", err)
	}

	updated, err := d.codec.Decode(out.Attributes)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a record and returns its pre-delete state. Deleting a key
// that does not exist fails with a MissingFieldError matching ErrNotFound.
func (d *Store[T]) Delete(ctx context.Context, pk storagemodels.PrimaryKey) (*T, error) {
	key, err := d.key(pk)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("delete item", zap.String("partitionKey", pk.PartitionValue), zap.String("sortKey", pk.SortValue))
	out, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(d.schema.Table),
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, d.storeError("DeleteItem", err)
	}

	deleted, err := d.codec.Decode(out.Attributes)
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}
