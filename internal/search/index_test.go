package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/webshop/internal/models"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   map[string]string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies[r.Method+" "+r.URL.Path] = string(body)
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"},"tagline":"You Know, for Search"}`)
	case r.Method == http.MethodHead && r.URL.Path == "/products":
		w.WriteHeader(http.StatusNotFound)
	case r.Method == http.MethodPut && r.URL.Path == "/products":
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	case strings.HasPrefix(r.URL.Path, "/products/_doc/") && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"result":"not_found"}`)
	case strings.HasPrefix(r.URL.Path, "/products/_doc/"):
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = io.WriteString(w, `{"hits":{"total":{"value":3},"hits":[{"_id":"7"},{"_id":"2"},{"_id":"x"}]}}`)
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unexpected"}`)
	}
}

func newFakeIndex(t *testing.T) (*Index, *fakeES) {
	t.Helper()
	fake := &fakeES{bodies: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	ix, err := NewIndex(context.Background(), Config{URL: srv.URL, Index: "products"})
	require.NoError(t, err)
	return ix, fake
}

func TestIndex_EnsureAndIndexProduct(t *testing.T) {
	ix, fake := newFakeIndex(t)
	ctx := context.Background()

	require.NoError(t, ix.EnsureIndex(ctx))
	assert.Contains(t, fake.requests, "PUT /products")

	p := models.Product{ID: 7, Name: "Desk lamp", Description: "warm light", Price: decimal.RequireFromString("19.9")}
	require.NoError(t, ix.IndexProduct(ctx, p))

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.bodies["PUT /products/_doc/7"]), &doc))
	assert.Equal(t, "Desk lamp", doc["name"])
	assert.Equal(t, "19.90", doc["price"])

	require.NoError(t, ix.DeleteProduct(ctx, 99))
}

func TestIndex_Search(t *testing.T) {
	ix, fake := newFakeIndex(t)

	ids, total, err := ix.Search(context.Background(), "lamp", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []uint{7, 2}, ids)

	var q map[string]any
	for k, v := range fake.bodies {
		if strings.HasSuffix(k, "/_search") {
			require.NoError(t, json.Unmarshal([]byte(v), &q))
		}
	}
	require.NotNil(t, q)
	assert.EqualValues(t, 10, q["size"])
}
