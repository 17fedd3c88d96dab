/*
Package storagemodels defines the request descriptors and value types shared by
the recordstore façades.

Key Types:

PrimaryKey:
The partition and optional sort value that address one record:

	key := storagemodels.PrimaryKey{PartitionValue: "Person5", SortValue: "lastNameTest"}

ScanParams and QueryParams:
Inputs of the query builders, with the continuation key already decoded:

	params := storagemodels.QueryParams{
	    TableName:    "person",
	    IndexName:    "cpf_index",
	    KeyAttribute: "cpf",
	    KeyValue:     "12345678900",
	    Limit:        2,
	    StartKey:     continuation.Key{"cpf": "12345678900", "firstName": "Person1", "lastName": "x"},
	}

StreamResult:
Results from streaming scans with metadata:

	type StreamResult[T any] struct {
	    Item  T                               // The decoded record
	    Raw   map[string]types.AttributeValue // Raw DynamoDB attributes
	    Error error                           // Item-specific error, if any
	    Meta  StreamMeta                      // Metadata about this item
	}

StreamOptions:
Configuration for streaming and its retry budget:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithRetry(3, 100*time.Millisecond),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
