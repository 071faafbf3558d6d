package graphql

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
)

const (
	queryTTL     = 5 * time.Minute
	entityTTL    = 10 * time.Minute
	reconcileTTL = 15 * time.Second
)

// Operation is a GraphQL document plus its variables.
type Operation struct {
	Name      string
	Query     string
	Variables map[string]any
}

// Error is a single GraphQL-level error from the upstream response.
type Error struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// Result carries the data and any GraphQL-level errors of one operation.
// Both may be populated at once: partial results are allowed.
type Result struct {
	Data      json.RawMessage `json:"data"`
	Errors    []Error         `json:"errors,omitempty"`
	FromCache bool            `json:"-"`
}

// FriendlyError maps the first GraphQL error to a user-facing message, or ""
// when the result is clean.
func (r *Result) FriendlyError() string {
	if len(r.Errors) == 0 {
		return ""
	}
	first := r.Errors[0]
	return domain.FriendlyGraphQLMessage(first.Extensions.Code, first.Message)
}

// FetchPolicy controls how a query interacts with the cache.
type FetchPolicy int

const (
	// CacheAndNetwork returns the cached result immediately when present and
	// reconciles with the network in the background. Misses block on the
	// network. This is the default.
	CacheAndNetwork FetchPolicy = iota
	// NetworkOnly bypasses the cache read; the response still populates it.
	NetworkOnly
)

// Client executes operations against the upstream GraphQL endpoint through
// the link pipeline, fronted by the shared normalized cache.
type Client struct {
	endpoint string
	http     *http.Client
	store    Store
	logger   *slog.Logger
	inflight singleflight.Group
}

// NewClient wires a Client from a pipeline-backed http.Client and a cache store.
func NewClient(endpoint string, httpClient *http.Client, store Store, logger *slog.Logger) *Client {
	return &Client{endpoint: endpoint, http: httpClient, store: store, logger: logger}
}

// Query runs a read operation under the given fetch policy. When the result
// has non-null data it is returned even if GraphQL errors are present; the
// error return is reserved for transport failures and fully failed operations.
func (c *Client) Query(ctx context.Context, op Operation, policy FetchPolicy) (*Result, error) {
	key := operationKey(op)

	if policy == CacheAndNetwork {
		if cached, err := c.store.Get(ctx, key); err == nil {
			go c.reconcile(op, key, auth.SessionFromContext(ctx))
			var res Result
			if err := json.Unmarshal(cached, &res); err == nil {
				res.FromCache = true
				return &res, nil
			}
			// Unreadable cache entry: fall through to the network.
			_ = c.store.Delete(ctx, key)
		}
	}

	res, err, _ := c.inflight.Do(key, func() (any, error) {
		return c.fetch(ctx, op, key)
	})
	if err != nil {
		return nil, err
	}
	return res.(*Result), nil
}

// Mutate runs a write operation. The response entities are normalized back
// into the shared cache and every cached query result is invalidated, so the
// next read observes the new state instead of a stale list.
func (c *Client) Mutate(ctx context.Context, op Operation) (*Result, error) {
	res, err := c.execute(ctx, op)
	if err != nil {
		return nil, err
	}
	if len(res.Data) > 0 {
		normalizeEntities(ctx, c.store, res.Data, entityTTL)
	}
	if err := c.store.DeletePrefix(ctx, opKeyPrefix); err != nil {
		c.logger.Warn("invalidate cached queries", "operation", op.Name, "error", err)
	}
	return res, nil
}

// Entity reads a normalized record by its cache ref ("TypeName:id") into v.
// It reports whether the ref was present and decodable; a miss means the
// caller goes to the network.
func (c *Client) Entity(ctx context.Context, typeName, id string, v any) bool {
	raw, err := c.store.Get(ctx, typeName+":"+id)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// Refetch forces a network round trip and refreshes the cached result.
func (c *Client) Refetch(ctx context.Context, op Operation) (*Result, error) {
	return c.fetch(ctx, op, operationKey(op))
}

func (c *Client) fetch(ctx context.Context, op Operation, key string) (*Result, error) {
	res, err := c.execute(ctx, op)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(res); err == nil {
		_ = c.store.Set(ctx, key, raw, queryTTL)
	}
	if len(res.Data) > 0 {
		normalizeEntities(ctx, c.store, res.Data, entityTTL)
	}
	return res, nil
}

// reconcile refreshes a served-from-cache entry. It runs detached from the
// request so a fast handler return cannot abort the cache write mid-flight,
// but carries the caller's session: the refresh must see the same rows the
// cached result was built from, never the anonymous view. Concurrent hits on
// the same key share one in-flight refresh.
func (c *Client) reconcile(op Operation, key string, sess *auth.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTTL)
	defer cancel()
	if sess != nil {
		ctx = auth.WithSession(ctx, sess)
	}
	_, err, _ := c.inflight.Do(key, func() (any, error) {
		return c.fetch(ctx, op, key)
	})
	if err != nil {
		c.logger.Warn("cache reconcile failed", "operation", op.Name, "error", err)
	}
}

func (c *Client) execute(ctx context.Context, op Operation) (*Result, error) {
	payload, err := json.Marshal(map[string]any{
		"query":     op.Query,
		"variables": op.Variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal operation %s: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.ErrUpstream(fmt.Sprintf("operation %s failed", op.Name), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.ErrUpstream(fmt.Sprintf("operation %s returned status %d", op.Name, resp.StatusCode), &TransportError{Status: resp.StatusCode})
	}

	var res Result
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, domain.ErrUpstream(fmt.Sprintf("decode operation %s", op.Name), err)
	}

	if len(res.Errors) > 0 {
		c.logger.Error("graphql errors",
			"operation", op.Name,
			"count", len(res.Errors),
			"first", res.Errors[0].Message,
			"code", res.Errors[0].Extensions.Code,
		)
		if len(res.Data) == 0 || string(res.Data) == "null" {
			first := res.Errors[0]
			msg := domain.FriendlyGraphQLMessage(first.Extensions.Code, first.Message)
			switch first.Extensions.Code {
			case "UNAUTHENTICATED":
				return nil, domain.ErrNotAuthenticated(msg)
			case "FORBIDDEN":
				return nil, domain.ErrForbidden(msg)
			default:
				return nil, domain.ErrUpstream(msg, nil)
			}
		}
	}
	return &res, nil
}

const opKeyPrefix = "op:"

func operationKey(op Operation) string {
	vars, _ := json.Marshal(op.Variables)
	sum := sha256.Sum256(append([]byte(op.Query), vars...))
	return opKeyPrefix + op.Name + ":" + hex.EncodeToString(sum[:8])
}
