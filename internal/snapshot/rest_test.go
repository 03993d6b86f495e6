package snapshot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/milkywaybrain/marketstream/internal/config"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotsBody = `[
 {"symbol":"AAPL","price":150.00,"bidPrice":149.95,"askPrice":150.05,"volume":1000,"change":0,"changePercent":0,"timestamp":"2024-03-01 09:30:00"},
 {"symbol":"MSFT","price":300.00,"bidPrice":299.90,"askPrice":300.10,"volume":2000,"change":1.5,"changePercent":0.5,"timestamp":"2024-03-01 09:30:01"}
]`

func newBackend(t *testing.T) *REST {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(config.SnapshotsPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(snapshotsBody))
	})
	mux.HandleFunc(config.SnapshotPath, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != config.SnapshotPath+"AAPL" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"symbol":"AAPL","price":150.25,"bidPrice":150.2,"askPrice":150.3,"volume":10,"change":0.25,"changePercent":0.17,"timestamp":"2024-03-01 09:31:00"}`))
	})
	mux.HandleFunc(config.SymbolsPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["AAPL","GOOGL","MSFT"]`))
	})
	mux.HandleFunc(config.HealthPath, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("MarketStream is running"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewREST(&config.REST{BaseURL: srv.URL + "/", ReqTimeoutSec: 5})
}

func TestRESTLoad(t *testing.T) {
	src := newBackend(t)
	assert.Equal(t, "rest", src.Name())

	records, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "AAPL", records[0].Symbol)
	assert.Equal(t, "0.1", records[0].Spread().String())
	assert.Equal(t, "MSFT", records[1].Symbol)
	assert.Equal(t, int64(2000), records[1].Volume)
}

func TestRESTOne(t *testing.T) {
	src := newBackend(t)

	r, err := src.One(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "150.25", r.Price.String())

	_, err = src.One(context.Background(), "ZZZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRESTSymbolsAndHealth(t *testing.T) {
	src := newBackend(t)

	symbols, err := src.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "GOOGL", "MSFT"}, symbols)

	msg, err := src.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "MarketStream is running", msg)
}

func TestRESTErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"a list"`))
		}},
		{"null body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`null`))
		}},
		{"object body", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"symbol":"AAPL","price":150}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			src := NewREST(&config.REST{BaseURL: srv.URL})
			records, err := src.Load(context.Background())
			assert.Error(t, err)
			assert.Nil(t, records)
		})
	}
}

func TestRESTUnreachable(t *testing.T) {
	src := NewREST(&config.REST{BaseURL: "http://127.0.0.1:1", ReqTimeoutSec: 1})
	_, err := src.Load(context.Background())
	assert.Error(t, err)
}
