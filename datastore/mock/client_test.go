/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/recordstore/datastore/mock"
)

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }

func seedPeople(t *testing.T, c *mock.Client, n int) {
	t.Helper()
	for i := 1; i <= n; i++ {
		_, err := c.PutItem(context.Background(), &dynamodb.PutItemInput{
			TableName: aws.String("person"),
			Item: map[string]types.AttributeValue{
				"firstName": s("Person" + string(rune('0'+i))),
				"lastName":  s("lastNameTest"),
				"cpf":       s("123"),
			},
		})
		require.NoError(t, err)
	}
}

func TestClientScanPages(t *testing.T) {
	c := mock.NewClient()
	c.AddTable("person", "firstName", "lastName", map[string]string{"cpf_index": "cpf"})
	seedPeople(t, c, 5)

	out, err := c.Scan(context.Background(), &dynamodb.ScanInput{TableName: aws.String("person"), Limit: aws.Int32(2)})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	assert.Equal(t, map[string]types.AttributeValue{
		"firstName": s("Person2"),
		"lastName":  s("lastNameTest"),
	}, out.LastEvaluatedKey)

	out, err = c.Scan(context.Background(), &dynamodb.ScanInput{
		TableName:         aws.String("person"),
		ExclusiveStartKey: out.LastEvaluatedKey,
	})
	require.NoError(t, err)
	assert.Len(t, out.Items, 3)
	assert.Empty(t, out.LastEvaluatedKey)
}

func TestClientIndexQuery(t *testing.T) {
	c := mock.NewClient()
	c.AddTable("person", "firstName", "lastName", map[string]string{"cpf_index": "cpf"})
	seedPeople(t, c, 3)

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("cpf").Equal(expression.Value("123"))).
		Build()
	require.NoError(t, err)

	out, err := c.Query(context.Background(), &dynamodb.QueryInput{
		TableName:                 aws.String("person"),
		IndexName:                 aws.String("cpf_index"),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(2),
	})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, s("123"), out.LastEvaluatedKey["cpf"])
	assert.Equal(t, s("Person2"), out.LastEvaluatedKey["firstName"])
}

func TestClientUpdateAndDeleteReturnValues(t *testing.T) {
	ctx := context.Background()
	c := mock.NewClient()
	c.AddTable("Book", "Isbn", "", nil)

	key := map[string]types.AttributeValue{"Isbn": s("1")}
	expr, err := expression.NewBuilder().
		WithUpdate(expression.Set(expression.Name("Name"), expression.Value("Dune")).
			Set(expression.Name("Description"), expression.Value("Sand"))).
		Build()
	require.NoError(t, err)

	updated, err := c.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String("Book"),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	require.NoError(t, err)
	assert.Equal(t, s("Dune"), updated.Attributes["Name"])
	assert.Equal(t, s("1"), updated.Attributes["Isbn"])

	deleted, err := c.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String("Book"),
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	})
	require.NoError(t, err)
	assert.Equal(t, s("Sand"), deleted.Attributes["Description"])

	missing, err := c.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String("Book"),
		Key:          key,
		ReturnValues: types.ReturnValueAllOld,
	})
	require.NoError(t, err)
	assert.Empty(t, missing.Attributes)
}

func TestClientFailuresAndDeferredWrites(t *testing.T) {
	ctx := context.Background()
	c := mock.NewClient()
	c.AddTable("Book", "Isbn", "", nil)

	boom := errors.New("boom")
	c.FailNext(mock.OpGetItem, 1, boom)
	_, err := c.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String("Book"), Key: map[string]types.AttributeValue{"Isbn": s("1")}})
	assert.ErrorIs(t, err, boom)
	_, err = c.GetItem(ctx, &dynamodb.GetItemInput{TableName: aws.String("Book"), Key: map[string]types.AttributeValue{"Isbn": s("1")}})
	assert.NoError(t, err)
	assert.Equal(t, 2, c.Calls(mock.OpGetItem))

	c.DeferNext(1)
	out, err := c.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{
			"Book": {
				{PutRequest: &types.PutRequest{Item: map[string]types.AttributeValue{"Isbn": s("1")}}},
				{PutRequest: &types.PutRequest{Item: map[string]types.AttributeValue{"Isbn": s("2")}}},
			},
		},
	})
	require.NoError(t, err)
	assert.Len(t, out.UnprocessedItems["Book"], 1)
	assert.Equal(t, 1, c.Len("Book"))

	_, err = c.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String("missing")})
	var notFound *types.ResourceNotFoundException
	assert.ErrorAs(t, err, &notFound)
}
