/*
Package datastore defines the CRUD façade contract of recordstore.

DataStore[T] is the blocking façade every HTTP variant is served from:

	type DataStore[T any] interface {
	    FindAll(ctx context.Context, req pagination.Request) (*pagination.Page[T], error)
	    FindByPrimaryKey(ctx context.Context, key storagemodels.PrimaryKey) (*T, error)
	    FindByPartitionKey(ctx context.Context, value string, req pagination.Request) (*pagination.Page[T], error)
	    FindBySecondaryKey(ctx context.Context, index, value string, req pagination.Request) (*pagination.Page[T], error)
	    Add(ctx context.Context, record T) (*T, error)
	    Update(ctx context.Context, record T) (*T, error)
	    Delete(ctx context.Context, key storagemodels.PrimaryKey) (*T, error)
	    PutBatch(ctx context.Context, records []T) error
	    DeleteBatch(ctx context.Context, keys []storagemodels.PrimaryKey) error
	}

Implementations:
  - ddb: DynamoDB implementation, parameterized by a record codec (hand-written or attribute-mapped)
  - async: non-blocking wrapper returning futures over any DataStore
  - mock: func-field mock and an in-memory DynamoDB client for testing

Mutations return the store's authoritative attributes when the store returns
them (Update, Delete) and echo the input otherwise (Add).
*/
package datastore
