/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	rserrors "github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/registry"
	"go.uber.org/zap"
)

// CreateTableInput builds an on-demand table definition for schema. Every
// key attribute is a string; secondary indexes project all attributes.
func CreateTableInput(schema registry.Schema) *dynamodb.CreateTableInput {
	attrs := map[string]bool{}
	var definitions []types.AttributeDefinition
	define := func(attr string) {
		if attrs[attr] {
			return
		}
		attrs[attr] = true
		definitions = append(definitions, types.AttributeDefinition{
			AttributeName: aws.String(attr),
			AttributeType: types.ScalarAttributeTypeS,
		})
	}

	keySchema := []types.KeySchemaElement{{AttributeName: aws.String(schema.PartitionKey), KeyType: types.KeyTypeHash}}
	define(schema.PartitionKey)
	if schema.SortKey != "" {
		keySchema = append(keySchema, types.KeySchemaElement{AttributeName: aws.String(schema.SortKey), KeyType: types.KeyTypeRange})
		define(schema.SortKey)
	}

	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(schema.Table),
		KeySchema:   keySchema,
		BillingMode: types.BillingModePayPerRequest,
	}
	for _, index := range schema.IndexNames() {
		attr := schema.Indexes[index]
		define(attr)
		input.GlobalSecondaryIndexes = append(input.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(index),
			KeySchema:  []types.KeySchemaElement{{AttributeName: aws.String(attr), KeyType: types.KeyTypeHash}},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}
	input.AttributeDefinitions = definitions
	return input
}

// CreateTables creates a table for every schema. Tables that already exist
// are skipped.
func CreateTables(ctx context.Context, client TableCreator, schemas []registry.Schema, logger *zap.Logger) error {
	for _, schema := range schemas {
		_, err := client.CreateTable(ctx, CreateTableInput(schema))
		var inUse *types.ResourceInUseException
		switch {
		case errors.As(err, &inUse):
			logger.Info("table already exists", zap.String("table", schema.Table))
		case err != nil:
			return rserrors.NewStoreError("CreateTable", schema.Table, err)
		default:
			logger.Info("table created", zap.String("table", schema.Table), zap.Strings("indexes", schema.IndexNames()))
		}
	}
	return nil
}
