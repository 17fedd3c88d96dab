/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Stream defaults.
const (
	DefaultStreamBufferSize   = 100
	DefaultStreamPageSize     = 100
	DefaultStreamMaxRetries   = 3
	DefaultStreamRetryBackoff = 100 * time.Millisecond
)

// StreamResult is one record delivered by a table stream. When Error is set
// and Raw is not, the stream failed and no further results follow; when both
// are set, only this record could not be decoded.
type StreamResult[T any] struct {
	Item  T
	Raw   map[string]types.AttributeValue
	Error error
	Meta  StreamMeta
}

// StreamMeta locates a result in the stream.
type StreamMeta struct {
	Index      int64 // 0-based
	PageNumber int   // 1-based
	Timestamp  time.Time
}

// StreamOptions configures a table stream.
type StreamOptions struct {
	// BufferSize is the capacity of the result channel.
	BufferSize int
	// PageSize is the Scan limit of each page.
	PageSize int32

	// MaxRetries bounds both the transient-error retries of one Scan call and
	// the consecutive page failures ErrorHandler may resume.
	MaxRetries int
	// RetryBackoff is the linear backoff step between attempts.
	RetryBackoff time.Duration

	// ProgressHandler, if set, is called after every page and once at the end.
	ProgressHandler func(StreamProgress)
	// ErrorHandler, if set, decides whether a failed page is fetched again.
	ErrorHandler func(error) bool
}

// StreamProgress is the running state reported to a ProgressHandler.
type StreamProgress struct {
	ItemsProcessed int64
	PagesProcessed int
	LastKey        map[string]types.AttributeValue
	Errors         []error // resumed page failures and undecodable records
	StartTime      time.Time
	CurrentRate    float64 // records per second
}

// StreamOption mutates StreamOptions.
type StreamOption func(*StreamOptions)

// NewStreamOptions applies opts on top of the defaults. Non-positive sizes
// fall back to their defaults; a negative retry count means none.
func NewStreamOptions(opts ...StreamOption) StreamOptions {
	options := StreamOptions{
		BufferSize:   DefaultStreamBufferSize,
		PageSize:     DefaultStreamPageSize,
		MaxRetries:   DefaultStreamMaxRetries,
		RetryBackoff: DefaultStreamRetryBackoff,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.BufferSize < 0 {
		options.BufferSize = DefaultStreamBufferSize
	}
	if options.PageSize <= 0 {
		options.PageSize = DefaultStreamPageSize
	}
	if options.MaxRetries < 0 {
		options.MaxRetries = 0
	}
	return options
}

// WithBufferSize sets the result channel capacity. Zero makes the channel
// unbuffered.
func WithBufferSize(size int) StreamOption {
	return func(opts *StreamOptions) {
		opts.BufferSize = size
	}
}

// WithPageSize sets the Scan limit of each page.
func WithPageSize(size int32) StreamOption {
	return func(opts *StreamOptions) {
		opts.PageSize = size
	}
}

// WithRetry sets the retry budget and backoff step, the same pair the store
// uses for batch writes.
func WithRetry(maxRetries int, backoff time.Duration) StreamOption {
	return func(opts *StreamOptions) {
		opts.MaxRetries = maxRetries
		opts.RetryBackoff = backoff
	}
}

func WithProgressHandler(handler func(StreamProgress)) StreamOption {
	return func(opts *StreamOptions) {
		opts.ProgressHandler = handler
	}
}

// WithErrorHandler lets handler resume the stream after a page fails.
// Returning false ends the stream with the error.
func WithErrorHandler(handler func(error) bool) StreamOption {
	return func(opts *StreamOptions) {
		opts.ErrorHandler = handler
	}
}
