/*
Package recordstore is a REST service exposing CRUD over Person and Book
records stored in Amazon DynamoDB, served through four interchangeable
façade variants.

Every record type is available as:
  - sync: blocking façade, hand-written codec
  - sync/enhanced: blocking façade, attribute-mapping codec
  - async: non-blocking façade (futures), hand-written codec
  - async/enhanced: non-blocking façade, attribute-mapping codec

All variants share the pagination layer: reads return one page plus a
continuation key, encoded for the client as "field:value,field:value" and
decoded back into the store's exclusive start key on the next request.

Basic Usage:

	client, _ := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{Region: "us-east-1"}, logger)

	people, _ := recordstore.NewVariants[model.Person](client, model.PersonCodec{}, 4)
	store, _ := people.Get(recordstore.VariantSync)

	page, _ := store.FindAll(ctx, pagination.Request{Limit: 2})
	next, _ := store.FindAll(ctx, page.NextRequest(2))

The recordstore command serves the HTTP API and bootstraps tables on
DynamoDB Local; see cmd/recordstore.
*/
package recordstore
