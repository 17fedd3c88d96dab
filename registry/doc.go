/*
Package registry associates record types with the layout of the DynamoDB
table that stores them.

A Schema names the table, its partition key, its optional sort key, the
secondary indexes that can be queried and the attributes a stored item must
carry to be decoded:

	registry.RegisterSchema[model.Person](registry.Schema{
	    Table:        "person",
	    PartitionKey: "firstName",
	    SortKey:      "lastName",
	    Indexes:      map[string]string{"cpf_index": "cpf"},
	    Required:     []string{"firstName", "lastName", "cpf"},
	})

The generic object-mapping codec and the DynamoDB façade look schemas up by
Go type. The registry is thread-safe and should be populated during
initialization, typically in init() functions of the package declaring the
record types.
*/
package registry
