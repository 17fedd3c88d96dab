/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package pagination wraps a page of records and its continuation key into
// the uniform response shape
//
//	{"items": [...], "size": N, "lastEvaluatedKey": {"field": "value"}}
//
// regardless of which store API produced the page.
package pagination

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/recordstore/continuation"
)

// Page is one page of records. Size always equals len(Items) and
// LastEvaluatedKey is empty, never nil, when no further pages exist.
type Page[T any] struct {
	Items            []T              `json:"items"`
	Size             int              `json:"size"`
	LastEvaluatedKey continuation.Key `json:"lastEvaluatedKey"`
}

// HasMore reports whether a further page may exist.
func (p *Page[T]) HasMore() bool {
	return !p.LastEvaluatedKey.Empty()
}

// NextRequest returns the request for the page following p with the same limit.
func (p *Page[T]) NextRequest(limit int) Request {
	return Request{Limit: limit, LastEvaluatedKey: continuation.Encode(p.LastEvaluatedKey)}
}

// Result is a single page-like result: decoded items plus the store's last
// evaluated key.
type Result[T any] interface {
	PageItems() []T
	PageLastEvaluatedKey() map[string]types.AttributeValue
}

// Iterator lazily yields pages, like the SDK's Scan and Query paginators.
type Iterator[T any] interface {
	HasMorePages() bool
	NextPage(ctx context.Context) (Result[T], error)
}

// Of builds a Page from raw items and the store's last evaluated key.
func Of[T any](items []T, lastEvaluatedKey map[string]types.AttributeValue) (*Page[T], error) {
	key, err := continuation.FromAttributeValues(lastEvaluatedKey)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:            items,
		Size:             len(items),
		LastEvaluatedKey: key,
	}, nil
}

// From builds a Page from a single page-like result.
func From[T any](r Result[T]) (*Page[T], error) {
	return Of(r.PageItems(), r.PageLastEvaluatedKey())
}

// FirstPage builds a Page from the first page of it. Later pages are never
// requested; an exhausted iterator yields an empty Page.
func FirstPage[T any](ctx context.Context, it Iterator[T]) (*Page[T], error) {
	if !it.HasMorePages() {
		return Of[T](nil, nil)
	}
	r, err := it.NextPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first page: %w", err)
	}
	return From(r)
}

// Map converts the items of p with fn, keeping its continuation key.
func Map[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	items := make([]U, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}
	return &Page[U]{Items: items, Size: len(items), LastEvaluatedKey: p.LastEvaluatedKey}
}

// Slice is a Result over an in-memory slice.
type Slice[T any] struct {
	Items            []T
	LastEvaluatedKey map[string]types.AttributeValue
}

// PageItems implements Result.
func (s Slice[T]) PageItems() []T { return s.Items }

// PageLastEvaluatedKey implements Result.
func (s Slice[T]) PageLastEvaluatedKey() map[string]types.AttributeValue {
	return s.LastEvaluatedKey
}
