package quote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testMint   = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	testVsMint = "So11111111111111111111111111111111111111112"
)

func TestJupiterClient_Price(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/price", r.URL.Path)
		assert.Equal(t, testMint, r.URL.Query().Get("ids"))
		assert.Equal(t, testVsMint, r.URL.Query().Get("vsToken"))

		resp := map[string]interface{}{
			"data": map[string]interface{}{
				testMint: map[string]interface{}{
					"id":      testMint,
					"vsToken": testVsMint,
					"price":   0.000012,
				},
			},
			"timeTaken": 0.001,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewJupiterClient(server.URL+"/v4/", testVsMint)

	price, ok, err := client.Price(context.Background(), testMint)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.000012, price)
}

func TestJupiterClient_StringPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"` + testMint + `":{"id":"` + testMint + `","type":"derivedPrice","price":"0.5"}}}`))
	}))
	defer server.Close()

	client := NewJupiterClient(server.URL, testVsMint)

	price, ok, err := client.Price(context.Background(), testMint)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.5, price)
}

func TestJupiterClient_NoPrice(t *testing.T) {
	bodies := map[string]string{
		"missing entry": `{"data":{}}`,
		"null entry":    `{"data":{"` + testMint + `":null}}`,
		"zero price":    `{"data":{"` + testMint + `":{"id":"` + testMint + `","price":0}}}`,
		"no data":       `{}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			client := NewJupiterClient(server.URL, testVsMint)

			price, ok, err := client.Price(context.Background(), testMint)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Zero(t, price)
		})
	}
}

func TestJupiterClient_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
		}))
		defer server.Close()

		_, _, err := NewJupiterClient(server.URL, testVsMint).Price(context.Background(), testMint)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": [`))
		}))
		defer server.Close()

		_, _, err := NewJupiterClient(server.URL, testVsMint).Price(context.Background(), testMint)
		assert.Error(t, err)
	})

	t.Run("bad price", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data":{"` + testMint + `":{"price":"abc"}}}`))
		}))
		defer server.Close()

		_, _, err := NewJupiterClient(server.URL, testVsMint).Price(context.Background(), testMint)
		assert.Error(t, err)
	})
}

func TestJupiterClient_NoRetryOnFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, _, err := NewJupiterClient(server.URL, testVsMint).Price(context.Background(), testMint)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestJupiterClient_ContextTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, _, err := NewJupiterClient(server.URL, testVsMint).Price(ctx, testMint)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
