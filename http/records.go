/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package http

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/datastore/async"
	"github.com/suparena/recordstore/pagination"
	"github.com/suparena/recordstore/storagemodels"
	"go.uber.org/zap"
)

// keyFunc reads a primary key from the path parameters of a request.
type keyFunc func(r *http.Request) storagemodels.PrimaryKey

// recordHandler serves the routes every record type shares. Record-specific
// lookups are added by the constructors in person.go and book.go.
type recordHandler[T any] struct {
	api   *API
	log   *zap.Logger
	store datastore.DataStore[T]
	keyOf func(T) storagemodels.PrimaryKey

	streamOpts []storagemodels.StreamOption
}

func newRecordHandler[T any](log *zap.Logger, store datastore.DataStore[T], keyOf func(T) storagemodels.PrimaryKey, streamOpts []storagemodels.StreamOption) *recordHandler[T] {
	return &recordHandler[T]{
		api:        NewAPI(WithLog(log)),
		log:        log,
		store:      store,
		keyOf:      keyOf,
		streamOpts: streamOpts,
	}
}

// routes registers the shared routes on r.
func (h *recordHandler[T]) routes(r chi.Router) {
	r.Get("/", h.handleFindAll)
	r.Post("/", h.handleAdd)
	r.Put("/", h.handleUpdate)
	r.Post("/batch", h.handlePutBatch)
	r.Post("/batch/delete", h.handleDeleteBatch)
	r.Get("/stream", h.handleStream)
}

// urlParam returns the unescaped path parameter name.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func (h *recordHandler[T]) handleFindAll(w http.ResponseWriter, r *http.Request) {
	req, err := pagination.ParseRequest(r.URL.Query())
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	page, err := h.store.FindAll(r.Context(), req)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, http.StatusOK, page)
}

func (h *recordHandler[T]) handleFindByPrimaryKey(key keyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := h.store.FindByPrimaryKey(r.Context(), key(r))
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		h.api.Respond(w, http.StatusOK, record)
	}
}

func (h *recordHandler[T]) handleFindByPartitionKey(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := pagination.ParseRequest(r.URL.Query())
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		page, err := h.store.FindByPartitionKey(r.Context(), urlParam(r, param), req)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		h.api.Respond(w, http.StatusOK, page)
	}
}

func (h *recordHandler[T]) handleFindBySecondaryKey(index, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := pagination.ParseRequest(r.URL.Query())
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		page, err := h.store.FindBySecondaryKey(r.Context(), index, urlParam(r, param), req)
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		h.api.Respond(w, http.StatusOK, page)
	}
}

func (h *recordHandler[T]) handleAdd(w http.ResponseWriter, r *http.Request) {
	var record T
	if err := h.api.DecodeJSON(r.Body, &record); err != nil {
		h.api.Err(w, r, err)
		return
	}
	added, err := h.store.Add(r.Context(), record)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, http.StatusOK, added)
}

func (h *recordHandler[T]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var record T
	if err := h.api.DecodeJSON(r.Body, &record); err != nil {
		h.api.Err(w, r, err)
		return
	}
	updated, err := h.store.Update(r.Context(), record)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, http.StatusOK, updated)
}

func (h *recordHandler[T]) handleDelete(key keyFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := h.store.Delete(r.Context(), key(r))
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		h.api.Respond(w, http.StatusOK, deleted)
	}
}

func (h *recordHandler[T]) handlePutBatch(w http.ResponseWriter, r *http.Request) {
	var records []T
	if err := h.api.DecodeJSON(r.Body, &records); err != nil {
		h.api.Err(w, r, err)
		return
	}
	if err := h.store.PutBatch(r.Context(), records); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, http.StatusNoContent, nil)
}

// handleDeleteBatch takes a list of records of which only the key fields are
// read.
func (h *recordHandler[T]) handleDeleteBatch(w http.ResponseWriter, r *http.Request) {
	var records []T
	if err := h.api.DecodeJSON(r.Body, &records); err != nil {
		h.api.Err(w, r, err)
		return
	}
	keys := make([]storagemodels.PrimaryKey, len(records))
	for i, record := range records {
		keys[i] = h.keyOf(record)
	}
	if err := h.store.DeleteBatch(r.Context(), keys); err != nil {
		h.api.Err(w, r, err)
		return
	}
	h.api.Respond(w, http.StatusNoContent, nil)
}

// handleStream writes every record of the table as newline-delimited JSON.
// Records that fail to decode are logged and skipped.
func (h *recordHandler[T]) handleStream(w http.ResponseWriter, r *http.Request) {
	streamer, ok := h.store.(async.Streamer[T])
	if !ok {
		h.api.Respond(w, http.StatusNotImplemented, ErrBody{Code: EInternal, Msg: "streaming is not supported by this store"})
		return
	}

	opts := append([]storagemodels.StreamOption{}, h.streamOpts...)
	if q := r.URL.Query().Get(pagination.LimitParam); q != "" {
		req, err := pagination.ParseRequest(r.URL.Query())
		if err != nil {
			h.api.Err(w, r, err)
			return
		}
		opts = append(opts, storagemodels.WithPageSize(int32(req.PageLimit())))
	}

	enc := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	wrote := false
	for result := range streamer.Stream(r.Context(), opts...) {
		if result.Error != nil {
			if result.Raw != nil {
				h.api.logger(r.Context()).Warn("skipping undecodable record", zap.Error(result.Error))
				continue
			}
			if !wrote {
				h.api.Err(w, r, result.Error)
				return
			}
			h.api.logger(r.Context()).Error("stream aborted", zap.Error(result.Error))
			return
		}

		if !wrote {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			wrote = true
		}
		if err := enc.Encode(result.Item); err != nil {
			h.api.logger(r.Context()).Error("failed to write streamed record", zap.Error(err))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if !wrote {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
	}
}
