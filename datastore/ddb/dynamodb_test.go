/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/recordstore/continuation"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/datastore/ddb"
	"github.com/suparena/recordstore/datastore/mock"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/model"
	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/registry"
	"github.com/suparena/recordstore/storagemodels"
	"go.uber.org/zap/zaptest"
)

var _ ddb.DynamoDBAPI = (*mock.Client)(nil)
var _ ddb.TableCreator = (*mock.Client)(nil)

func newClient(t *testing.T) *mock.Client {
	t.Helper()
	client := mock.NewClient()
	require.NoError(t, ddb.CreateTables(context.Background(), client, registry.Schemas(), zaptest.NewLogger(t)))
	return client
}

// personStores returns the raw and mapped variants over one client.
func personStores(t *testing.T, client *mock.Client, opts ...ddb.Option) map[string]datastore.DataStore[model.Person] {
	t.Helper()
	opts = append([]ddb.Option{ddb.WithLogger(zaptest.NewLogger(t))}, opts...)

	raw, err := ddb.NewRawStore[model.Person](client, model.PersonCodec{}, opts...)
	require.NoError(t, err)
	mapped, err := ddb.NewMappedStore[model.Person](client, opts...)
	require.NoError(t, err)
	return map[string]datastore.DataStore[model.Person]{"raw": raw, "mapped": mapped}
}

func seedPeople(t *testing.T, store datastore.DataStore[model.Person], n int) []model.Person {
	t.Helper()
	people := make([]model.Person, 0, n)
	for i := 1; i <= n; i++ {
		p, err := model.NewPerson(fmt.Sprintf("Person%d", i), "lastNameTest", "123")
		require.NoError(t, err)
		_, err = store.Add(context.Background(), p)
		require.NoError(t, err)
		people = append(people, p)
	}
	return people
}

func TestStoreAddThenFind(t *testing.T) {
	ctx := context.Background()
	for name, store := range personStores(t, newClient(t)) {
		t.Run(name, func(t *testing.T) {
			p, err := model.NewPerson("Ana", "Silva", "111")
			require.NoError(t, err)

			added, err := store.Add(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, p, *added)

			found, err := store.FindByPrimaryKey(ctx, p.Key())
			require.NoError(t, err)
			assert.Equal(t, p, *found)

			_, err = store.FindByPrimaryKey(ctx, storagemodels.PrimaryKey{PartitionValue: "Nobody", SortValue: "Here"})
			assert.True(t, errors.IsNotFound(err))
			assert.True(t, errors.IsMissingField(err))
		})
	}
}

func TestStoreSecondaryKeyPagination(t *testing.T) {
	ctx := context.Background()
	for name, store := range personStores(t, newClient(t)) {
		t.Run(name, func(t *testing.T) {
			seedPeople(t, store, 5)

			first, err := store.FindBySecondaryKey(ctx, model.CpfIndex, "123", pagination.Request{Limit: 2})
			require.NoError(t, err)
			assert.Equal(t, 2, first.Size)
			assert.Equal(t, continuation.Key{
				"cpf":       "123",
				"firstName": "Person2",
				"lastName":  "lastNameTest",
			}, first.LastEvaluatedKey)

			rest, err := store.FindBySecondaryKey(ctx, model.CpfIndex, "123", pagination.Request{
				LastEvaluatedKey: continuation.Encode(first.LastEvaluatedKey),
			})
			require.NoError(t, err)
			assert.Equal(t, 3, rest.Size)
			assert.Empty(t, rest.LastEvaluatedKey)
			assert.NotNil(t, rest.LastEvaluatedKey)

			_, err = store.FindBySecondaryKey(ctx, "no_such_index", "123", pagination.Request{})
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestStoreFindAllPagination(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	store := personStores(t, client)["raw"]
	seedPeople(t, store, 5)

	first, err := store.FindAll(ctx, pagination.Request{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Person1", "Person2"}, []string{first.Items[0].FirstName, first.Items[1].FirstName})
	assert.Equal(t, "firstName:Person2,lastName:lastNameTest", continuation.Encode(first.LastEvaluatedKey))

	calls := client.Calls(mock.OpScan)
	rest, err := store.FindAll(ctx, pagination.Request{LastEvaluatedKey: "firstName:Person2,lastName:lastNameTest"})
	require.NoError(t, err)
	assert.Equal(t, 3, rest.Size)
	assert.False(t, rest.HasMore())
	assert.Equal(t, calls+1, client.Calls(mock.OpScan), "only the first page is fetched")

	byName, err := store.FindByPartitionKey(ctx, "Person3", pagination.Request{})
	require.NoError(t, err)
	require.Equal(t, 1, byName.Size)
	assert.Equal(t, "Person3", byName.Items[0].FirstName)
}

func TestStoreMalformedContinuationKey(t *testing.T) {
	client := newClient(t)
	store := personStores(t, client)["mapped"]

	_, err := store.FindAll(context.Background(), pagination.Request{LastEvaluatedKey: "firstName"})
	assert.True(t, errors.IsMalformedContinuationKey(err))
	assert.Zero(t, client.Calls(mock.OpScan), "no store call for a malformed key")

	_, err = store.FindByPartitionKey(context.Background(), "x", pagination.Request{LastEvaluatedKey: ":x"})
	assert.True(t, errors.IsMalformedContinuationKey(err))
}

func TestStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	for name, store := range personStores(t, newClient(t)) {
		t.Run(name, func(t *testing.T) {
			p, err := model.NewPerson("Bia", "Souza", "222")
			require.NoError(t, err)
			_, err = store.Add(ctx, p)
			require.NoError(t, err)

			p.Cpf = "333"
			updated, err := store.Update(ctx, p)
			require.NoError(t, err)
			assert.Equal(t, p, *updated)

			found, err := store.FindByPrimaryKey(ctx, p.Key())
			require.NoError(t, err)
			assert.Equal(t, "333", found.Cpf)

			deleted, err := store.Delete(ctx, p.Key())
			require.NoError(t, err)
			assert.Equal(t, p, *deleted)

			_, err = store.Delete(ctx, p.Key())
			assert.True(t, errors.IsMissingField(err))
			assert.True(t, errors.IsNotFound(err))
		})
	}
}

func TestStoreUpdateUpserts(t *testing.T) {
	store := personStores(t, newClient(t))["raw"]
	p, err := model.NewPerson("Caio", "Lima", "444")
	require.NoError(t, err)

	updated, err := store.Update(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, *updated)
}

func TestStoreRejectsIncompleteInput(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	store := personStores(t, client)["raw"]

	_, err := store.Add(ctx, model.Person{FirstName: "Only"})
	assert.True(t, errors.IsMissingField(err))
	assert.False(t, errors.IsNotFound(err))

	_, err = store.FindByPrimaryKey(ctx, storagemodels.PrimaryKey{PartitionValue: "Only"})
	assert.True(t, errors.IsValidationError(err))
	assert.Zero(t, client.Calls(mock.OpPutItem)+client.Calls(mock.OpGetItem))
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	store := personStores(t, client)["raw"]

	client.FailNext(mock.OpGetItem, 1, fmt.Errorf("connection reset"))
	_, err := store.FindByPrimaryKey(ctx, storagemodels.PrimaryKey{PartitionValue: "a", SortValue: "b"})
	assert.True(t, errors.IsStoreError(err))
	assert.NotErrorIs(t, err, errors.ErrStoreUnavailable)

	client.FailNext(mock.OpScan, 1, &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")})
	_, err = store.FindAll(ctx, pagination.Request{})
	assert.True(t, errors.IsStoreError(err))
	assert.ErrorIs(t, err, errors.ErrStoreUnavailable)
}

func bookStore(t *testing.T, client *mock.Client, opts ...ddb.Option) *ddb.Store[model.Book] {
	t.Helper()
	opts = append([]ddb.Option{ddb.WithLogger(zaptest.NewLogger(t))}, opts...)
	store, err := ddb.NewMappedStore[model.Book](client, opts...)
	require.NoError(t, err)
	return store
}

func books(n int) []model.Book {
	out := make([]model.Book, n)
	for i := range out {
		out[i] = model.Book{
			Isbn:        fmt.Sprintf("978-%04d", i),
			Name:        fmt.Sprintf("Book %d", i),
			Description: "test",
		}
	}
	return out
}

func TestPutBatchChunksAndRetries(t *testing.T) {
	ctx := context.Background()
	client := newClient(t)
	store := bookStore(t, client, ddb.WithBatchRetry(3, time.Millisecond))

	client.DeferNext(4)
	require.NoError(t, store.PutBatch(ctx, books(30)))
	assert.Equal(t, 30, client.Len(model.BookTable))
	// two chunks plus one resend of the deferred items
	assert.Equal(t, 3, client.Calls(mock.OpBatchWriteItem))

	keys := make([]storagemodels.PrimaryKey, 0, 30)
	for _, b := range books(30) {
		keys = append(keys, b.Key())
	}
	require.NoError(t, store.DeleteBatch(ctx, keys))
	assert.Zero(t, client.Len(model.BookTable))
}

func TestPutBatchFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("unprocessed items left after retries", func(t *testing.T) {
		client := newClient(t)
		store := bookStore(t, client, ddb.WithBatchRetry(0, time.Millisecond))
		client.DeferNext(2)

		err := store.PutBatch(ctx, books(5))
		assert.True(t, errors.IsStoreError(err))
		assert.Equal(t, 3, client.Len(model.BookTable))
	})

	t.Run("transient failure is retried", func(t *testing.T) {
		client := newClient(t)
		store := bookStore(t, client, ddb.WithBatchRetry(2, time.Millisecond))
		client.FailNext(mock.OpBatchWriteItem, 1, &types.InternalServerError{Message: aws.String("oops")})

		require.NoError(t, store.PutBatch(ctx, books(3)))
		assert.Equal(t, 3, client.Len(model.BookTable))
	})

	t.Run("invalid record writes nothing", func(t *testing.T) {
		client := newClient(t)
		store := bookStore(t, client)
		batch := append(books(2), model.Book{Isbn: "x"})

		err := store.PutBatch(ctx, batch)
		assert.True(t, errors.IsMissingField(err))
		assert.Zero(t, client.Calls(mock.OpBatchWriteItem))
	})
}

func TestChunk(t *testing.T) {
	chunks := ddb.Chunk(make([]int, 51), ddb.MaxBatchSize)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 25)
	assert.Len(t, chunks[2], 1)
	assert.Empty(t, ddb.Chunk([]int{}, 25))
}
