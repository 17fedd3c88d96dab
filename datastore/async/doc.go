/*
Package async provides the non-blocking variant of the record store façade.

Store[T] wraps any blocking datastore.DataStore[T] and runs each operation in
its own goroutine, returning a Future:

	people := async.New[model.Person](store, 4)
	page, err := people.FindAll(ctx, pagination.Request{Limit: 2}).Await(ctx)

Then chains a follow-up that starts only after the first operation has
completed:

	deleted := async.Then(ctx, people.Add(ctx, p), func(ctx context.Context, _ *model.Person) (*model.Person, error) {
	    return people.Blocking().Delete(ctx, p.Key())
	})

Batch writes are split into chunks of 25 and sent concurrently.
*/
package async
