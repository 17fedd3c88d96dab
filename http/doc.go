// Package http serves the record stores over a REST API built on chi.
//
// Every variant registered in a recordstore.TypedStorage is mounted under
// its key, e.g. /sync/person or /async/enhanced/books. Non-blocking variants
// are awaited under the request context. Errors are written as
// {"code", "message"} with the code repeated in the X-Platform-Error-Code
// header.
package http
