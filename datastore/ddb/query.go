/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/recordstore/codec"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/storagemodels"
)

// pageLimit applies the default limit and caps the rest at the largest
// Limit DynamoDB accepts.
func pageLimit(limit int) *int32 {
	switch {
	case limit <= 0:
		limit = pagination.DefaultLimit
	case limit > math.MaxInt32:
		limit = math.MaxInt32
	}
	return aws.Int32(int32(limit))
}

// BuildScan builds a paginated Scan request. ExclusiveStartKey is set only
// when the continuation key is non-empty.
func BuildScan(params storagemodels.ScanParams) *dynamodb.ScanInput {
	return &dynamodb.ScanInput{
		TableName:         aws.String(params.TableName),
		Limit:             pageLimit(params.Limit),
		ExclusiveStartKey: params.StartKey.AttributeValues(),
	}
}

// BuildQuery builds a paginated Query request selecting the items whose
// KeyAttribute equals KeyValue, on the table or on IndexName.
func BuildQuery(params storagemodels.QueryParams) (*dynamodb.QueryInput, error) {
	if params.KeyAttribute == "" {
		return nil, errors.NewValidationError("KeyAttribute", "key attribute is required")
	}

	keyCondition := expression.Key(params.KeyAttribute).Equal(expression.Value(params.KeyValue))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCondition).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(params.TableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     pageLimit(params.Limit),
		ExclusiveStartKey:         params.StartKey.AttributeValues(),
		ScanIndexForward:          params.ScanIndexForward,
	}
	if params.IndexName != "" {
		input.IndexName = aws.String(params.IndexName)
	}
	return input, nil
}

// buildUpdate builds a SET expression assigning every non-key attribute of item.
func buildUpdate(item map[string]types.AttributeValue, isKey func(string) bool) (expression.Expression, bool, error) {
	var update expression.UpdateBuilder
	set := false
	for attr, value := range item {
		if isKey(attr) {
			continue
		}
		var plain interface{}
		if err := attributevalue.Unmarshal(value, &plain); err != nil {
			return expression.Expression{}, false, fmt.Errorf("failed to unmarshal attribute %q: %w", attr, err)
		}
		update = update.Set(expression.Name(attr), expression.Value(plain))
		set = true
	}
	if !set {
		return expression.Expression{}, false, nil
	}
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return expression.Expression{}, false, fmt.Errorf("failed to build update expression: %w", err)
	}
	return expr, true, nil
}

// decodeAll decodes a page of items, failing on the first item that does not
// decode.
func decodeAll[T any](c codec.Codec[T], items []map[string]types.AttributeValue) ([]T, error) {
	records := make([]T, 0, len(items))
	for _, item := range items {
		record, err := c.Decode(item)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// scanIterator adapts the SDK's Scan paginator to pagination.Iterator.
type scanIterator[T any] struct {
	paginator *dynamodb.ScanPaginator
	codec     codec.Codec[T]
}

func newScanIterator[T any](client dynamodb.ScanAPIClient, input *dynamodb.ScanInput, c codec.Codec[T]) *scanIterator[T] {
	return &scanIterator[T]{paginator: dynamodb.NewScanPaginator(client, input), codec: c}
}

func (it *scanIterator[T]) HasMorePages() bool {
	return it.paginator.HasMorePages()
}

func (it *scanIterator[T]) NextPage(ctx context.Context) (pagination.Result[T], error) {
	out, err := it.paginator.NextPage(ctx)
	if err != nil {
		return nil, err
	}
	records, err := decodeAll(it.codec, out.Items)
	if err != nil {
		return nil, err
	}
	return pagination.Slice[T]{Items: records, LastEvaluatedKey: out.LastEvaluatedKey}, nil
}

// queryResult is a decoded Query response.
type queryResult[T any] struct {
	records []T
	out     *dynamodb.QueryOutput
}

func (r queryResult[T]) PageItems() []T { return r.records }

func (r queryResult[T]) PageLastEvaluatedKey() map[string]types.AttributeValue {
	return r.out.LastEvaluatedKey
}
