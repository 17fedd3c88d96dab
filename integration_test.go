//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/suparena/recordstore"
	"github.com/suparena/recordstore/datastore/ddb"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/model"
	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/registry"
	"go.uber.org/zap/zaptest"
)

// setupVariants connects to the DynamoDB named by RECORDSTORE_DYNAMODB_ENDPOINT
// (typically DynamoDB Local) and creates the tables.
func setupVariants(t *testing.T) *recordstore.TypedStorage[model.Person] {
	_ = godotenv.Load()

	endpoint := os.Getenv("RECORDSTORE_DYNAMODB_ENDPOINT")
	if endpoint == "" {
		t.Skip("RECORDSTORE_DYNAMODB_ENDPOINT not set, skipping integration test")
	}

	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
		Region:    "us-east-1",
		AccessKey: "local",
		SecretKey: "local",
		Endpoint:  endpoint,
	}, logger)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	if err := ddb.CreateTables(ctx, client, registry.Schemas(), logger); err != nil {
		t.Fatalf("Failed to create tables: %v", err)
	}

	variants, err := recordstore.NewVariants[model.Person](client, model.PersonCodec{}, 2, ddb.WithLogger(logger))
	if err != nil {
		t.Fatalf("Failed to build variants: %v", err)
	}
	return variants
}

func TestIntegrationBasicOperations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	variants := setupVariants(t)

	for _, key := range []string{recordstore.VariantSync, recordstore.VariantSyncEnhanced} {
		t.Run(key, func(t *testing.T) {
			store, err := variants.Get(key)
			if err != nil {
				t.Fatal(err)
			}

			cpf := fmt.Sprintf("cpf-%d", time.Now().UnixNano())
			p, err := model.NewPerson("Integration", key, cpf)
			if err != nil {
				t.Fatal(err)
			}

			if _, err := store.Add(ctx, p); err != nil {
				t.Fatalf("Failed to add person: %v", err)
			}

			page, err := store.FindBySecondaryKey(ctx, model.CpfIndex, cpf, pagination.Request{})
			if err != nil {
				t.Fatalf("Failed to query index: %v", err)
			}
			if page.Size != 1 || page.Items[0] != p {
				t.Errorf("Index query returned %+v, want [%+v]", page.Items, p)
			}

			p.Cpf = cpf + "-updated"
			updated, err := store.Update(ctx, p)
			if err != nil {
				t.Fatalf("Failed to update person: %v", err)
			}
			if *updated != p {
				t.Errorf("Update returned %+v, want %+v", updated, p)
			}

			deleted, err := store.Delete(ctx, p.Key())
			if err != nil {
				t.Fatalf("Failed to delete person: %v", err)
			}
			if *deleted != p {
				t.Errorf("Delete returned %+v, want %+v", deleted, p)
			}

			_, err = store.FindByPrimaryKey(ctx, p.Key())
			if !errors.IsNotFound(err) {
				t.Errorf("Expected not found error, got: %v", err)
			}
		})
	}
}
