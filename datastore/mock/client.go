/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Operation names accepted by FailNext and Calls.
const (
	OpGetItem        = "GetItem"
	OpPutItem        = "PutItem"
	OpUpdateItem     = "UpdateItem"
	OpDeleteItem     = "DeleteItem"
	OpScan           = "Scan"
	OpQuery          = "Query"
	OpBatchWriteItem = "BatchWriteItem"
	OpCreateTable    = "CreateTable"
)

type table struct {
	partitionKey string
	sortKey      string
	// index name -> partition key attribute
	indexes map[string]string
	items   map[string]map[string]types.AttributeValue
}

type failure struct {
	remaining int
	err       error
}

// Client is an in-memory DynamoDB client. It understands the subset of the
// API the record store uses: single-item CRUD, paginated Scan, key-equality
// Query on a table or secondary index, BatchWriteItem and CreateTable.
//
// Items are kept in key order, so Scan and Query pages are deterministic. A
// LastEvaluatedKey is returned only when further items exist.
type Client struct {
	mu       sync.Mutex
	tables   map[string]*table
	calls    map[string]int
	failures map[string]*failure
	deferred int
}

// NewClient creates an empty in-memory client.
func NewClient() *Client {
	return &Client{
		tables:   make(map[string]*table),
		calls:    make(map[string]int),
		failures: make(map[string]*failure),
	}
}

// AddTable registers a table directly. indexes maps a secondary index name to
// its partition key attribute.
func (c *Client) AddTable(name, partitionKey, sortKey string, indexes map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addTable(name, partitionKey, sortKey, indexes)
}

func (c *Client) addTable(name, partitionKey, sortKey string, indexes map[string]string) {
	idx := make(map[string]string, len(indexes))
	for k, v := range indexes {
		idx[k] = v
	}
	c.tables[name] = &table{
		partitionKey: partitionKey,
		sortKey:      sortKey,
		indexes:      idx,
		items:        make(map[string]map[string]types.AttributeValue),
	}
}

// FailNext makes the next n calls of op return err.
func (c *Client) FailNext(op string, n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[op] = &failure{remaining: n, err: err}
}

// DeferNext makes the next BatchWriteItem call leave its last n write
// requests unprocessed.
func (c *Client) DeferNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deferred = n
}

// Calls returns how many times op was invoked, failed calls included.
func (c *Client) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// Len returns the number of items stored in the named table.
func (c *Client) Len(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tables[name]; ok {
		return len(t.items)
	}
	return 0
}

// Tables returns the registered table names in sorted order.
func (c *Client) Tables() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// enter records a call of op and returns the injected failure, if any.
// Callers must hold c.mu.
func (c *Client) enter(op string) error {
	c.calls[op]++
	f, ok := c.failures[op]
	if !ok || f.remaining <= 0 {
		return nil
	}
	f.remaining--
	return f.err
}

func (c *Client) table(name *string) (*table, error) {
	t, ok := c.tables[aws.ToString(name)]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String(fmt.Sprintf("table %q not found", aws.ToString(name)))}
	}
	return t, nil
}

func (t *table) keyAttributes() []string {
	if t.sortKey == "" {
		return []string{t.partitionKey}
	}
	return []string{t.partitionKey, t.sortKey}
}

// keyOf builds the internal identity of an item from its key attributes.
func (t *table) keyOf(item map[string]types.AttributeValue) (string, error) {
	parts := make([]string, 0, 2)
	for _, attr := range t.keyAttributes() {
		s, ok := item[attr].(*types.AttributeValueMemberS)
		if !ok || s.Value == "" {
			return "", fmt.Errorf("ValidationException: missing key attribute %q", attr)
		}
		parts = append(parts, s.Value)
	}
	return strings.Join(parts, "\x00"), nil
}

// sorted returns the items matching keep in key order.
func (t *table) sorted(keep func(map[string]types.AttributeValue) bool) ([]string, []map[string]types.AttributeValue) {
	ids := make([]string, 0, len(t.items))
	for id, item := range t.items {
		if keep == nil || keep(item) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	items := make([]map[string]types.AttributeValue, len(ids))
	for i, id := range ids {
		items[i] = t.items[id]
	}
	return ids, items
}

// page applies ExclusiveStartKey and Limit to an ordered result set. extra
// names attributes besides the table key that go into the LastEvaluatedKey.
func (t *table) page(
	ids []string,
	items []map[string]types.AttributeValue,
	start map[string]types.AttributeValue,
	limit *int32,
	extra ...string,
) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	from := 0
	if len(start) > 0 {
		startID, err := t.keyOf(start)
		if err != nil {
			return nil, nil, err
		}
		// The start item may have been deleted since; resume after its position.
		from = sort.SearchStrings(ids, startID)
		for i, id := range ids {
			if id == startID {
				from = i + 1
				break
			}
		}
	}

	to := len(items)
	if limit != nil && *limit > 0 && from+int(*limit) < to {
		to = from + int(*limit)
	}

	out := make([]map[string]types.AttributeValue, 0, to-from)
	for _, item := range items[from:to] {
		out = append(out, clone(item))
	}

	if to >= len(items) || to == from {
		return out, nil, nil
	}
	last := items[to-1]
	lek := make(map[string]types.AttributeValue)
	for _, attr := range append(t.keyAttributes(), extra...) {
		if v, ok := last[attr]; ok {
			lek[attr] = v
		}
	}
	return out, lek, nil
}

// CreateTable registers the table described by params.
func (c *Client) CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(OpCreateTable); err != nil {
		return nil, err
	}

	name := aws.ToString(params.TableName)
	if _, exists := c.tables[name]; exists {
		return nil, &types.ResourceInUseException{Message: aws.String(fmt.Sprintf("table %q already exists", name))}
	}

	pk, sk := keySchema(params.KeySchema)
	indexes := make(map[string]string, len(params.GlobalSecondaryIndexes))
	for _, gsi := range params.GlobalSecondaryIndexes {
		indexPK, _ := keySchema(gsi.KeySchema)
		indexes[aws.ToString(gsi.IndexName)] = indexPK
	}
	c.addTable(name, pk, sk, indexes)

	return &dynamodb.CreateTableOutput{
		TableDescription: &types.TableDescription{
			TableName:   params.TableName,
			KeySchema:   params.KeySchema,
			TableStatus: types.TableStatusActive,
		},
	}, nil
}

func keySchema(elements []types.KeySchemaElement) (pk, sk string) {
	for _, e := range elements {
		switch e.KeyType {
		case types.KeyTypeHash:
			pk = aws.ToString(e.AttributeName)
		case types.KeyTypeRange:
			sk = aws.ToString(e.AttributeName)
		}
	}
	return pk, sk
}

// GetItem returns the item with the given key, or an empty output.
func (c *Client) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(OpGetItem); err != nil {
		return nil, err
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	id, err := t.keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	out := &dynamodb.GetItemOutput{}
	if item, ok := t.items[id]; ok {
		out.Item = clone(item)
	}
	return out, nil
}

// PutItem stores or replaces an item.
func (c *Client) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(OpPutItem); err != nil {
		return nil, err
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	id, err := t.keyOf(params.Item)
	if err != nil {
		return nil, err
	}
	old, existed := t.items[id]
	t.items[id] = clone(params.Item)

	out := &dynamodb.PutItemOutput{}
	if existed && params.ReturnValues == types.ReturnValueAllOld {
		out.Attributes = old
	}
	return out, nil
}

// UpdateItem applies a SET update expression, creating the item if absent.
func (c *Client) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(OpUpdateItem); err != nil {
		return nil, err
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	id, err := t.keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	assignments, err := parseSet(aws.ToString(params.UpdateExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	old, existed := t.items[id]
	updated := clone(params.Key)
	if existed {
		updated = clone(old)
	}
	for attr, value := range assignments {
		if t.isKey(attr) {
			return nil, fmt.Errorf("ValidationException: cannot update key attribute %q", attr)
		}
		updated[attr] = value
	}
	t.items[id] = updated

	out := &dynamodb.UpdateItemOutput{}
	switch params.ReturnValues {
	case types.ReturnValueAllNew:
		out.Attributes = clone(updated)
	case types.ReturnValueAllOld:
		if existed {
			out.Attributes = old
		}
	}
	return out, nil
}

func (t *table) isKey(attr string) bool {
	return attr == t.partitionKey || (t.sortKey != "" && attr == t.sortKey)
}

// DeleteItem removes an item. With ReturnValues ALL_OLD the removed item is
// returned; deleting a missing key succeeds with no attributes.
func (c *Client) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(OpDeleteItem); err != nil {
		return nil, err
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	id, err := t.keyOf(params.Key)
	if err != nil {
		return nil, err
	}
	old, existed := t.items[id]
	delete(t.items, id)

	out := &dynamodb.DeleteItemOutput{}
	if existed && params.ReturnValues == types.ReturnValueAllOld {
		out.Attributes = old
	}
	return out, nil
}

// Scan pages through a table in key order.
func (c *Client) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(OpScan); err != nil {
		return nil, err
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	ids, items := t.sorted(nil)
	page, lek, err := t.page(ids, items, params.ExclusiveStartKey, params.Limit)
	if err != nil {
		return nil, err
	}
	return &dynamodb.ScanOutput{
		Items:            page,
		Count:            int32(len(page)),
		ScannedCount:     int32(len(page)),
		LastEvaluatedKey: lek,
	}, nil
}

// Query returns the items whose key attribute equals the condition value. The
// key condition must be a single equality, as produced by the expression
// package ("#0 = :0").
func (c *Client) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(OpQuery); err != nil {
		return nil, err
	}

	t, err := c.table(params.TableName)
	if err != nil {
		return nil, err
	}
	attr, want, err := parseEquality(aws.ToString(params.KeyConditionExpression), params.ExpressionAttributeNames, params.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}

	var extra []string
	if index := aws.ToString(params.IndexName); index != "" {
		indexPK, ok := t.indexes[index]
		if !ok {
			return nil, fmt.Errorf("ValidationException: table has no index %q", index)
		}
		if attr != indexPK {
			return nil, fmt.Errorf("ValidationException: %q is not the key of index %q", attr, index)
		}
		extra = []string{indexPK}
	} else if attr != t.partitionKey {
		return nil, fmt.Errorf("ValidationException: %q is not the partition key", attr)
	}

	ids, items := t.sorted(func(item map[string]types.AttributeValue) bool {
		s, ok := item[attr].(*types.AttributeValueMemberS)
		return ok && s.Value == want
	})
	if params.ScanIndexForward != nil && !*params.ScanIndexForward {
		reverse(ids, items)
	}
	page, lek, err := t.page(ids, items, params.ExclusiveStartKey, params.Limit, extra...)
	if err != nil {
		return nil, err
	}
	return &dynamodb.QueryOutput{
		Items:            page,
		Count:            int32(len(page)),
		ScannedCount:     int32(len(page)),
		LastEvaluatedKey: lek,
	}, nil
}

// BatchWriteItem applies put and delete requests across tables.
func (c *Client) BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.enter(OpBatchWriteItem); err != nil {
		return nil, err
	}

	total := 0
	for _, reqs := range params.RequestItems {
		total += len(reqs)
	}
	if total > 25 {
		return nil, fmt.Errorf("ValidationException: too many items requested for the BatchWriteItem call")
	}

	deferred := c.deferred
	c.deferred = 0

	out := &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}
	for _, name := range sortedTables(params.RequestItems) {
		reqs := params.RequestItems[name]
		t, err := c.table(aws.String(name))
		if err != nil {
			return nil, err
		}
		cut := len(reqs)
		if deferred > 0 {
			n := deferred
			if n > cut {
				n = cut
			}
			cut -= n
			deferred -= n
			out.UnprocessedItems[name] = append(out.UnprocessedItems[name], reqs[cut:]...)
		}
		for _, req := range reqs[:cut] {
			switch {
			case req.PutRequest != nil:
				id, err := t.keyOf(req.PutRequest.Item)
				if err != nil {
					return nil, err
				}
				t.items[id] = clone(req.PutRequest.Item)
			case req.DeleteRequest != nil:
				id, err := t.keyOf(req.DeleteRequest.Key)
				if err != nil {
					return nil, err
				}
				delete(t.items, id)
			}
		}
	}
	return out, nil
}

func sortedTables(m map[string][]types.WriteRequest) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parseEquality reads "<name> = <value>" with placeholder substitution.
func parseEquality(expr string, names map[string]string, values map[string]types.AttributeValue) (string, string, error) {
	lhs, rhs, ok := strings.Cut(strings.TrimSpace(expr), "=")
	if !ok || strings.Contains(rhs, "=") {
		return "", "", fmt.Errorf("ValidationException: unsupported key condition %q", expr)
	}
	attr := resolveName(strings.TrimSpace(lhs), names)
	v, ok := values[strings.TrimSpace(rhs)].(*types.AttributeValueMemberS)
	if !ok {
		return "", "", fmt.Errorf("ValidationException: key condition value %q is not a string", strings.TrimSpace(rhs))
	}
	return attr, v.Value, nil
}

// parseSet reads "SET a = :a, b = :b" with placeholder substitution.
func parseSet(expr string, names map[string]string, values map[string]types.AttributeValue) (map[string]types.AttributeValue, error) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(strings.ToUpper(expr), "SET ") {
		return nil, fmt.Errorf("ValidationException: unsupported update expression %q", expr)
	}
	assignments := make(map[string]types.AttributeValue)
	for _, clause := range strings.Split(expr[len("SET "):], ",") {
		lhs, rhs, ok := strings.Cut(clause, "=")
		if !ok {
			return nil, fmt.Errorf("ValidationException: malformed clause %q", clause)
		}
		v, ok := values[strings.TrimSpace(rhs)]
		if !ok {
			return nil, fmt.Errorf("ValidationException: unknown value %q", strings.TrimSpace(rhs))
		}
		assignments[resolveName(strings.TrimSpace(lhs), names)] = v
	}
	return assignments, nil
}

func resolveName(name string, names map[string]string) string {
	if resolved, ok := names[name]; ok {
		return resolved
	}
	return name
}

func reverse(ids []string, items []map[string]types.AttributeValue) {
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
		items[i], items[j] = items[j], items[i]
	}
}

func clone(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	if item == nil {
		return nil
	}
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
