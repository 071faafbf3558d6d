package graphql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Retry link ---

func TestRetryLink(t *testing.T) {
	t.Run("5xx is attempted exactly three times", func(t *testing.T) {
		var attempts atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := NewPipeline("anon", testLogger())
		req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
		require.NoError(t, err)

		_, err = client.Do(req)
		require.Error(t, err)
		assert.Equal(t, int32(3), attempts.Load())

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusInternalServerError, te.Status)
	})

	t.Run("recovery mid-retry returns the response", func(t *testing.T) {
		var attempts atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		client := NewPipeline("anon", testLogger())
		req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("error without a status code is attempted once", func(t *testing.T) {
		var attempts atomic.Int32
		next := roundTripFunc(func(r *http.Request) (*http.Response, error) {
			attempts.Add(1)
			return nil, io.ErrUnexpectedEOF
		})

		link := &retryLink{next: next}
		req, err := http.NewRequest(http.MethodPost, "http://upstream.invalid/graphql", nil)
		require.NoError(t, err)

		_, err = link.RoundTrip(req)
		require.Error(t, err)
		assert.Equal(t, int32(1), attempts.Load())
	})

	t.Run("4xx carries a status code and is retried too", func(t *testing.T) {
		var attempts atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewPipeline("anon", testLogger())
		req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
		require.NoError(t, err)

		_, err = client.Do(req)
		require.Error(t, err)
		assert.Equal(t, int32(3), attempts.Load())

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusUnauthorized, te.Status)
	})
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// --- Auth link ---

func TestAuthLink(t *testing.T) {
	var gotAuth, gotAPIKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewPipeline("anon-key", testLogger())

	t.Run("session token rides the request", func(t *testing.T) {
		ctx := auth.WithSession(context.Background(), &auth.Session{Token: "user-token"})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, "Bearer user-token", gotAuth)
		assert.Equal(t, "anon-key", gotAPIKey)
	})

	t.Run("anonymous falls back to the anon key", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, srv.URL, nil)
		require.NoError(t, err)
		resp, err := client.Do(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, "Bearer anon-key", gotAuth)
	})
}

// --- Client error policy ---

func TestClientErrorPolicy(t *testing.T) {
	t.Run("partial data is returned alongside errors", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"data": {"teamsCollection": {"edges": []}},
				"errors": [{"message": "row filtered", "extensions": {"code": "FORBIDDEN"}}]
			}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, NewPipeline("anon", testLogger()), NewMemoryStore(), testLogger())
		res, err := c.Query(context.Background(), Operation{Name: "Teams", Query: "query{}"}, NetworkOnly)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.NotEmpty(t, res.Data)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "you do not have permission to view this data", res.FriendlyError())
	})

	t.Run("null data with errors is a typed failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": null, "errors": [{"message": "jwt expired", "extensions": {"code": "UNAUTHENTICATED"}}]}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, NewPipeline("anon", testLogger()), NewMemoryStore(), testLogger())
		_, err := c.Query(context.Background(), Operation{Name: "Teams", Query: "query{}"}, NetworkOnly)
		require.Error(t, err)

		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHENTICATED", appErr.Code)
		assert.Equal(t, "please log in to view this data", appErr.Message)
	})
}

// --- Cache behavior ---

func TestClientCache(t *testing.T) {
	t.Run("cache-and-network serves the cached result immediately", func(t *testing.T) {
		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Write([]byte(`{"data": {"value": 1}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, NewPipeline("anon", testLogger()), NewMemoryStore(), testLogger())
		op := Operation{Name: "V", Query: "query{value}"}

		first, err := c.Query(context.Background(), op, CacheAndNetwork)
		require.NoError(t, err)
		assert.False(t, first.FromCache)

		second, err := c.Query(context.Background(), op, CacheAndNetwork)
		require.NoError(t, err)
		assert.True(t, second.FromCache)
		assert.JSONEq(t, string(first.Data), string(second.Data))
	})

	t.Run("distinct variables get distinct cache entries", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Variables map[string]any `json:"variables"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			json.NewEncoder(w).Encode(map[string]any{"data": body.Variables})
		}))
		defer srv.Close()

		c := NewClient(srv.URL, NewPipeline("anon", testLogger()), NewMemoryStore(), testLogger())

		a, err := c.Query(context.Background(), Operation{Name: "V", Query: "q", Variables: map[string]any{"first": 1}}, CacheAndNetwork)
		require.NoError(t, err)
		b, err := c.Query(context.Background(), Operation{Name: "V", Query: "q", Variables: map[string]any{"first": 2}}, CacheAndNetwork)
		require.NoError(t, err)

		assert.False(t, b.FromCache)
		assert.NotEqual(t, string(a.Data), string(b.Data))
	})

	t.Run("reconcile keeps the caller's session", func(t *testing.T) {
		authHeaders := make(chan string, 2)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get("Authorization")
			authHeaders <- got
			if got == "Bearer user-token" {
				w.Write([]byte(`{"data": {"secret": "for-user-eyes"}}`))
				return
			}
			w.Write([]byte(`{"data": {"secret": "public-rows-only"}}`))
		}))
		defer srv.Close()

		store := NewMemoryStore()
		c := NewClient(srv.URL, NewPipeline("anon-key", testLogger()), store, testLogger())
		ctx := auth.WithSession(context.Background(), &auth.Session{Token: "user-token"})
		op := Operation{Name: "Secret", Query: "query{secret}"}

		first, err := c.Query(ctx, op, CacheAndNetwork)
		require.NoError(t, err)
		assert.JSONEq(t, `{"secret": "for-user-eyes"}`, string(first.Data))
		assert.Equal(t, "Bearer user-token", <-authHeaders)

		second, err := c.Query(ctx, op, CacheAndNetwork)
		require.NoError(t, err)
		assert.True(t, second.FromCache)

		select {
		case got := <-authHeaders:
			assert.Equal(t, "Bearer user-token", got)
		case <-time.After(2 * time.Second):
			t.Fatal("reconcile request never arrived")
		}

		time.Sleep(50 * time.Millisecond)
		raw, err := store.Get(context.Background(), operationKey(op))
		require.NoError(t, err)
		assert.Contains(t, string(raw), "for-user-eyes")
	})

	t.Run("cache hits share one in-flight reconcile", func(t *testing.T) {
		var requests atomic.Int32
		arrived := make(chan struct{}, 1)
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requests.Add(1) > 1 {
				select {
				case arrived <- struct{}{}:
				default:
				}
				<-release
			}
			w.Write([]byte(`{"data": {"value": 1}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, NewPipeline("anon", testLogger()), NewMemoryStore(), testLogger())
		op := Operation{Name: "V", Query: "query{value}"}

		_, err := c.Query(context.Background(), op, CacheAndNetwork)
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			res, err := c.Query(context.Background(), op, CacheAndNetwork)
			require.NoError(t, err)
			assert.True(t, res.FromCache)
		}

		<-arrived
		time.Sleep(50 * time.Millisecond)
		close(release)
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, int32(2), requests.Load())
	})

	t.Run("mutation invalidates cached query results", func(t *testing.T) {
		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Write([]byte(`{"data": {"teamsCollection": {"edges": []}}}`))
		}))
		defer srv.Close()

		c := NewClient(srv.URL, NewPipeline("anon", testLogger()), NewMemoryStore(), testLogger())
		op := Operation{Name: "Teams", Query: "query{teams}"}

		_, err := c.Query(context.Background(), op, CacheAndNetwork)
		require.NoError(t, err)
		assert.Equal(t, int32(1), requests.Load())

		_, err = c.Mutate(context.Background(), Operation{Name: "UpdateTeam", Query: "mutation{}"})
		require.NoError(t, err)

		res, err := c.Query(context.Background(), op, CacheAndNetwork)
		require.NoError(t, err)
		assert.False(t, res.FromCache)
		assert.Equal(t, int32(3), requests.Load())
	})

	t.Run("mutation normalizes entities into the store", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": {"insertIntoteamsCollection": {"records": [{"__typename": "teams", "id": "t1", "name": "Rim Runners"}]}}}`))
		}))
		defer srv.Close()

		store := NewMemoryStore()
		c := NewClient(srv.URL, NewPipeline("anon", testLogger()), store, testLogger())

		_, err := c.Mutate(context.Background(), Operation{Name: "CreateTeam", Query: "mutation{}"})
		require.NoError(t, err)

		raw, err := store.Get(context.Background(), "teams:t1")
		require.NoError(t, err)
		var entity map[string]any
		require.NoError(t, json.Unmarshal(raw, &entity))
		assert.Equal(t, "Rim Runners", entity["name"])
	})
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("miss on absent key", func(t *testing.T) {
		_, err := store.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("v"), 0))
		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("expired entries miss", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "ttl", []byte("v"), time.Nanosecond))
		time.Sleep(5 * time.Millisecond)
		_, err := store.Get(ctx, "ttl")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("delete by prefix spares other keys", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "op:a", []byte("1"), 0))
		require.NoError(t, store.Set(ctx, "op:b", []byte("2"), 0))
		require.NoError(t, store.Set(ctx, "teams:t1", []byte("3"), 0))
		require.NoError(t, store.DeletePrefix(ctx, "op:"))

		_, err := store.Get(ctx, "op:a")
		assert.ErrorIs(t, err, ErrCacheMiss)
		_, err = store.Get(ctx, "op:b")
		assert.ErrorIs(t, err, ErrCacheMiss)
		got, err := store.Get(ctx, "teams:t1")
		require.NoError(t, err)
		assert.Equal(t, []byte("3"), got)
	})

	t.Run("last write wins", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "k", []byte("v2"), 0))
		got, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v2"), got)
	})
}
