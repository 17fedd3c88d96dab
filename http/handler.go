/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/suparena/recordstore"
	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/model"
	"github.com/suparena/recordstore/storagemodels"
	"go.uber.org/zap"
)

// Service routes.
const (
	HealthPath  = "/health"
	VersionPath = "/version"
	MetricsPath = "/metrics"
)

// Backend is everything the API handler serves.
type Backend struct {
	Log      *zap.Logger
	Registry *prometheus.Registry

	People *recordstore.TypedStorage[model.Person]
	Books  *recordstore.TypedStorage[model.Book]

	// StreamOptions apply to every GET .../stream request before the
	// request's own limit.
	StreamOptions []storagemodels.StreamOption
}

// Handler is the root HTTP handler. Every registered variant of a record type
// is mounted at /{variant}/person or /{variant}/books.
type Handler struct {
	chi.Router

	log     *zap.Logger
	api     *API
	metrics *Metrics
}

// NewHandler builds the root handler and registers its metrics with
// b.Registry.
func NewHandler(b Backend) (*Handler, error) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{
		log:     log,
		api:     NewAPI(WithLog(log)),
		metrics: NewMetrics(),
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(log),
		h.metrics.Middleware("recordstore"),
	)

	r.Get(HealthPath, h.handleHealth)
	r.Get(VersionPath, h.handleVersion)
	if b.Registry != nil {
		for _, c := range h.metrics.PrometheusCollectors() {
			if err := b.Registry.Register(c); err != nil {
				return nil, fmt.Errorf("failed to register http metrics: %w", err)
			}
		}
		r.Handle(MetricsPath, promhttp.HandlerFor(b.Registry, promhttp.HandlerOpts{}))
	}

	if b.People != nil {
		if err := mountVariants(r, prefixPerson, b.People, func(ds datastore.DataStore[model.Person]) http.Handler {
			return NewPersonHandler(log, ds, b.StreamOptions...)
		}); err != nil {
			return nil, err
		}
	}
	if b.Books != nil {
		if err := mountVariants(r, prefixBooks, b.Books, func(ds datastore.DataStore[model.Book]) http.Handler {
			return NewBookHandler(log, ds, b.StreamOptions...)
		}); err != nil {
			return nil, err
		}
	}

	h.Router = r
	return h, nil
}

func mountVariants[T any](r chi.Router, prefix string, ts *recordstore.TypedStorage[T], build func(datastore.DataStore[T]) http.Handler) error {
	for _, variant := range ts.List() {
		var store datastore.DataStore[T]
		if ts.IsAsync(variant) {
			s, err := ts.GetAsync(variant)
			if err != nil {
				return err
			}
			store = Awaiting(s)
		} else {
			s, err := ts.Get(variant)
			if err != nil {
				return err
			}
			store = s
		}
		r.Mount("/"+variant+prefix, build(store))
	}
	return nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.api.Respond(w, http.StatusOK, map[string]string{"status": "pass"})
}

func (h *Handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.api.Respond(w, http.StatusOK, recordstore.GetVersionInfo())
}
