/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore

import (
	"context"
	"testing"

	"github.com/suparena/recordstore/datastore/async"
	"github.com/suparena/recordstore/datastore/ddb"
	"github.com/suparena/recordstore/datastore/mock"
	"github.com/suparena/recordstore/model"
	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/registry"
	"go.uber.org/zap/zaptest"
)

func TestTypedStorage(t *testing.T) {
	t.Run("BasicOperations", func(t *testing.T) {
		storage := NewTypedStorage[model.Book]()

		bookStore := mock.New(model.Book.Key)
		if err := storage.Register("books", bookStore); err != nil {
			t.Fatalf("Failed to register: %v", err)
		}
		if err := storage.RegisterAsync("async/books", async.New[model.Book](bookStore, 1)); err != nil {
			t.Fatalf("Failed to register async: %v", err)
		}

		retrieved, err := storage.Get("books")
		if err != nil {
			t.Fatalf("Failed to get: %v", err)
		}
		if retrieved == nil {
			t.Fatal("Retrieved store is nil")
		}
		if storage.IsAsync("books") || !storage.IsAsync("async/books") {
			t.Fatal("IsAsync reports the wrong kind")
		}
		if _, err := storage.GetAsync("books"); err == nil {
			t.Fatal("Expected a blocking store not to be returned as async")
		}

		keys := storage.List()
		if len(keys) != 2 || keys[0] != "async/books" || keys[1] != "books" {
			t.Fatalf("Expected [async/books books], got %v", keys)
		}

		if err := storage.Remove("books"); err != nil {
			t.Fatalf("Failed to remove: %v", err)
		}
		if _, err := storage.Get("books"); err == nil {
			t.Fatal("Expected error after removal")
		}
		if err := storage.Remove("books"); err == nil {
			t.Fatal("Expected error removing twice")
		}
	})

	t.Run("DuplicateRegistration", func(t *testing.T) {
		storage := NewTypedStorage[model.Book]()

		if err := storage.Register("books", mock.New(model.Book.Key)); err != nil {
			t.Fatalf("First registration failed: %v", err)
		}
		if err := storage.Register("books", mock.New(model.Book.Key)); err == nil {
			t.Fatal("Expected duplicate registration error")
		}
		if err := storage.RegisterAsync("books", async.New[model.Book](mock.New(model.Book.Key), 1)); err == nil {
			t.Fatal("Expected duplicate registration error across kinds")
		}
	})
}

func TestNewVariants(t *testing.T) {
	ctx := context.Background()
	client := mock.NewClient()
	if err := ddb.CreateTables(ctx, client, registry.Schemas(), zaptest.NewLogger(t)); err != nil {
		t.Fatalf("CreateTables failed: %v", err)
	}

	variants, err := NewVariants[model.Person](client, model.PersonCodec{}, 2)
	if err != nil {
		t.Fatalf("NewVariants failed: %v", err)
	}

	want := []string{VariantAsync, VariantAsyncEnhanced, VariantSync, VariantSyncEnhanced}
	got := variants.List()
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, got)
		}
	}

	// Every variant sees the same table.
	p := model.Person{FirstName: "Ana", LastName: "Silva", Cpf: "1"}
	raw, _ := variants.Get(VariantSync)
	if _, err := raw.Add(ctx, p); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	mapped, _ := variants.Get(VariantSyncEnhanced)
	found, err := mapped.FindByPrimaryKey(ctx, p.Key())
	if err != nil || *found != p {
		t.Fatalf("Mapped variant read %+v, %v", found, err)
	}

	asyncMapped, _ := variants.GetAsync(VariantAsyncEnhanced)
	page, err := asyncMapped.FindAll(ctx, pagination.Request{}).Await(ctx)
	if err != nil || page.Size != 1 {
		t.Fatalf("Async variant read %+v, %v", page, err)
	}
}
