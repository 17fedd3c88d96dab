/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

Store[T] supports:
  - One table per record type, laid out by the type's registered schema
  - Pluggable record codecs (hand-written or attribute-mapped)
  - Paginated scans and key-equality queries on the table or a secondary index
  - Batch writes chunked to 25 requests with unprocessed-item retry
  - Full-table streaming with retry logic

Key Features:

Variants:
The same store serves both codec strategies:

	raw, err := ddb.NewRawStore[model.Person](client, model.PersonCodec{})
	mapped, err := ddb.NewMappedStore[model.Person](client)

Pagination:
Every read returns one page and the key to continue from:

	page, err := store.FindAll(ctx, pagination.Request{Limit: 2})
	next, err := store.FindAll(ctx, page.NextRequest(2))

Streaming:
The streaming API drains every page of a scan:

	results := store.Stream(ctx,
	    storagemodels.WithBufferSize(100),
	    storagemodels.WithPageSize(25),
	    storagemodels.WithRetry(3, 100*time.Millisecond),
	)

Query builders (BuildScan, BuildQuery) are pure and can be used without a
store.
*/
package ddb
