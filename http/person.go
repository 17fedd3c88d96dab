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

const prefixPerson = "/person"

// NewPersonHandler serves Person records from store. streamOpts configure
// the stream route.
func NewPersonHandler(log *zap.Logger, store datastore.DataStore[model.Person], streamOpts ...storagemodels.StreamOption) chi.Router {
	h := newRecordHandler(log, store, model.Person.Key, streamOpts)

	personKey := func(r *http.Request) storagemodels.PrimaryKey {
		return storagemodels.PrimaryKey{
			PartitionValue: urlParam(r, "firstName"),
			SortValue:      urlParam(r, "lastName"),
		}
	}

	r := chi.NewRouter()
	h.routes(r)
	r.Route("/firstname/{firstName}", func(r chi.Router) {
		r.Get("/", h.handleFindByPartitionKey("firstName"))
		r.Get("/lastname/{lastName}", h.handleFindByPrimaryKey(personKey))
		r.Delete("/lastname/{lastName}", h.handleDelete(personKey))
	})
	r.Get("/cpf/{cpf}", h.handleFindBySecondaryKey(model.CpfIndex, "cpf"))
	return r
}
