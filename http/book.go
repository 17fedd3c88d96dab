/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package http

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/model"
	"github.com/suparena/recordstore/storagemodels"
	"go.uber.org/zap"
)

const prefixBooks = "/books"

// NewBookHandler serves Book records from store. streamOpts configure the
// stream route.
func NewBookHandler(log *zap.Logger, store datastore.DataStore[model.Book], streamOpts ...storagemodels.StreamOption) chi.Router {
	h := newRecordHandler(log, store, model.Book.Key, streamOpts)

	bookKey := func(r *http.Request) storagemodels.PrimaryKey {
		return storagemodels.PrimaryKey{PartitionValue: urlParam(r, "isbn")}
	}

	r := chi.NewRouter()
	h.routes(r)
	r.Get("/isbn/{isbn}", h.handleFindByPrimaryKey(bookKey))
	r.Delete("/isbn/{isbn}", h.handleDelete(bookKey))
	return r
}
