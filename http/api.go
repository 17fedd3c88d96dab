/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/logger"
	"go.uber.org/zap"
)

// PlatformErrorCodeHeader shows the error code of a failed request.
const PlatformErrorCodeHeader = "X-Platform-Error-Code"

// Error codes reported in ErrBody and PlatformErrorCodeHeader.
const (
	ENotFound    = "not found"
	EInvalid     = "invalid"
	EUnavailable = "unavailable"
	EInternal    = "internal error"
)

// ErrBody is the JSON body of every error response.
type ErrBody struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}

// ErrorCode maps err onto an error code and HTTP status.
func ErrorCode(err error) (string, int) {
	switch {
	case errors.IsNotFound(err):
		return ENotFound, http.StatusNotFound
	case errors.IsMissingField(err), errors.IsMalformedContinuationKey(err), errors.IsValidationError(err):
		return EInvalid, http.StatusBadRequest
	case errors.IsStoreUnavailable(err):
		return EUnavailable, http.StatusServiceUnavailable
	default:
		return EInternal, http.StatusInternalServerError
	}
}

type oker interface {
	OK() error
}

// API writes JSON responses and errors.
type API struct {
	log        *zap.Logger
	prettyJSON bool
}

// APIOptFn configures an API.
type APIOptFn func(*API)

// WithLog sets the logger used when the request context carries none.
func WithLog(log *zap.Logger) APIOptFn {
	return func(api *API) {
		api.log = log
	}
}

// WithPrettyJSON indents response bodies.
func WithPrettyJSON(b bool) APIOptFn {
	return func(api *API) {
		api.prettyJSON = b
	}
}

// NewAPI builds an API.
func NewAPI(opts ...APIOptFn) *API {
	api := &API{log: zap.NewNop()}
	for _, o := range opts {
		o(api)
	}
	return api
}

// DecodeJSON decodes the request body into v. Malformed bodies, and values
// whose OK method fails, are reported as validation errors.
func (a *API) DecodeJSON(r io.Reader, v interface{}) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return errors.NewValidationError("body", err.Error())
	}
	if vv, ok := v.(oker); ok {
		return vv.OK()
	}
	return nil
}

// Respond writes v as JSON with the given status.
func (a *API) Respond(w http.ResponseWriter, status int, v interface{}) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	if a.prettyJSON {
		enc.SetIndent("", "\t")
	}
	if err := enc.Encode(v); err != nil {
		a.log.Error("failed to encode response", zap.Error(err))
	}
}

// Err writes err with the status ErrorCode assigns to it. Server errors are
// logged at error level, client errors at debug.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	code, status := ErrorCode(err)
	log := a.logger(r.Context()).With(
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status_code", status),
		zap.Error(err),
	)

	body := ErrBody{Code: code, Msg: err.Error()}
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("api error encountered")
		if status == http.StatusInternalServerError {
			body.Msg = "An internal error has occurred"
		}
	default:
		log.Debug("api request rejected")
	}

	w.Header().Set(PlatformErrorCodeHeader, code)
	a.Respond(w, status, body)
}

func (a *API) logger(ctx context.Context) *zap.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return a.log
}

// RequestLogger attaches a per-request logger, tagged with the chi request
// id, to each request context.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			l := log.With(zap.String("request_id", middleware.GetReqID(r.Context())))
			next.ServeHTTP(w, r.WithContext(logger.NewContextWithLogger(r.Context(), l)))
		}
		return http.HandlerFunc(fn)
	}
}
