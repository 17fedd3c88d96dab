/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/recordstore/datastore/mock"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/model"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"empty item", errors.NewMissingFieldError("Person", ""), ENotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", errors.ErrNotFound), ENotFound, http.StatusNotFound},
		{"missing field", errors.NewMissingFieldError("Person", "cpf"), EInvalid, http.StatusBadRequest},
		{"malformed key", errors.NewMalformedKeyError("x", "no separator"), EInvalid, http.StatusBadRequest},
		{"validation", errors.NewValidationError("limit", "must be a positive integer"), EInvalid, http.StatusBadRequest},
		{"throttled", errors.NewStoreError("Query", "person", &types.ProvisionedThroughputExceededException{Message: aws.String("slow")}), EUnavailable, http.StatusServiceUnavailable},
		{"store failure", errors.NewStoreError("Query", "person", fmt.Errorf("boom")), EInternal, http.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), EInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, status := ErrorCode(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestErrLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	api := NewAPI(WithLog(zap.New(core)))

	r := httptest.NewRequest(http.MethodGet, "/sync/books/isbn/1", nil)

	w := httptest.NewRecorder()
	api.Err(w, r, errors.NewMissingFieldError("Book", ""))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	api.Err(w, r, fmt.Errorf("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An internal error has occurred")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "/sync/books/isbn/1", entries[1].ContextMap()["path"])
}

func TestRequestLoggerIsUsed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := mock.New(model.Book.Key).WithFindError(fmt.Errorf("boom"))

	h := RequestLogger(zap.New(core))(NewBookHandler(zap.NewNop(), store))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/isbn/1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap(), "request_id")
}

func TestDecodeJSON(t *testing.T) {
	api := NewAPI()

	var b model.Book
	require.NoError(t, api.DecodeJSON(strings.NewReader(`{"isbn":"1","name":"n","description":"d"}`), &b))
	assert.Equal(t, model.Book{Isbn: "1", Name: "n", Description: "d"}, b)

	err := api.DecodeJSON(strings.NewReader(`[`), &b)
	assert.True(t, errors.IsValidationError(err))
}

func TestMockStoreErrors(t *testing.T) {
	store := mock.New(model.Person.Key).
		WithUpdateError(errors.NewStoreError("UpdateItem", "person", &types.InternalServerError{Message: aws.String("down")}))
	store.SetData(model.Person{FirstName: "Ana", LastName: "Silva", Cpf: "1"})
	h := NewPersonHandler(zap.NewNop(), store)

	w := do(t, h, http.MethodGet, "/firstname/Ana/lastname/Silva", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPut, "/", model.Person{FirstName: "Ana", LastName: "Silva", Cpf: "2"})
	assertError(t, w, http.StatusServiceUnavailable, EUnavailable)

	w = do(t, h, http.MethodGet, "/cpf/1", nil)
	assertError(t, w, http.StatusBadRequest, EInvalid)

	w = do(t, h, http.MethodGet, "/stream", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	assert.Equal(t, 1, store.Count())
}
