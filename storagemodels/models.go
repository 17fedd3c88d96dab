/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/suparena/recordstore/continuation"
)

// PrimaryKey addresses a single record. SortValue is ignored for tables
// without a sort key.
type PrimaryKey struct {
	PartitionValue string `json:"partitionKey"`
	SortValue      string `json:"sortKey,omitempty"`
}

// ScanParams defines parameters for a paginated DynamoDB Scan.
type ScanParams struct {
	// TableName is the DynamoDB table name.
	TableName string
	// Limit is the maximum number of items per page. Zero or less means the default.
	Limit int
	// StartKey is the decoded continuation key; empty starts from the beginning.
	StartKey continuation.Key
}

// QueryParams defines parameters for a paginated key-equality DynamoDB Query.
type QueryParams struct {
	// TableName is the DynamoDB table name.
	TableName string
	// IndexName is set when querying a secondary index rather than the table.
	IndexName string
	// KeyAttribute is the partition key attribute the condition applies to.
	KeyAttribute string
	// KeyValue is the value KeyAttribute must equal.
	KeyValue string
	// Limit is the maximum number of items per page. Zero or less means the default.
	Limit int
	// StartKey is the decoded continuation key; empty starts from the beginning.
	StartKey continuation.Key
	// ScanIndexForward specifies the order for index traversal.
	// If nil or true, traversal is in ascending order.
	ScanIndexForward *bool
}
