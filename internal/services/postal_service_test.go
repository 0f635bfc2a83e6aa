package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostalServer(t *testing.T, handler http.HandlerFunc) (*PostalService, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewPostalService(srv.URL+"/api/cep/v2/", 2*time.Second), &hits
}

func TestPostalLookup_Success(t *testing.T) {
	svc, hits := newPostalServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cep/v2/01001000", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cep":"01001000","state":"sp","city":"São Paulo","neighborhood":"Sé","street":"Praça da Sé"}`))
	})

	addr, err := svc.Lookup(context.Background(), "01001-000")
	require.NoError(t, err)
	assert.Equal(t, "01001000", addr.Zipcode)
	assert.Equal(t, "São Paulo", addr.City)
	assert.Equal(t, "SP", addr.State)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestPostalLookup_InvalidFormatNeverCallsDirectory(t *testing.T) {
	svc, hits := newPostalServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, raw := range []string{"", "1234", "0100-1000", "010010001"} {
		_, err := svc.Lookup(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidPostalCode, raw)
	}
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestPostalLookup_NotFound(t *testing.T) {
	svc, _ := newPostalServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"name":"CepPromiseError","message":"Todos os serviços de CEP retornaram erro."}`))
	})

	_, err := svc.Lookup(context.Background(), "99999999")
	assert.ErrorIs(t, err, ErrPostalCodeNotFound)
}

func TestPostalLookup_ServerError(t *testing.T) {
	svc, _ := newPostalServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := svc.Lookup(context.Background(), "01001000")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestPostalLookup_Timeout(t *testing.T) {
	svc, _ := newPostalServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := svc.Lookup(ctx, "01001000")
	assert.ErrorIs(t, err, ErrUpstream)
}
