package service

import (
	"context"
	"encoding/json"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/graphql"
)

// connection is the paginated edge/node wrapper every collection query
// arrives in. Server-provided order is preserved when flattening.
type connection[T any] struct {
	Edges []edge[T] `json:"edges"`
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
}

type edge[T any] struct {
	Node T `json:"node"`
}

func flatten[T any](c connection[T]) []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

// requireSession enforces the hook-skip contract: no request leaves the
// process while the caller has no resolved user.
func requireSession(ctx context.Context) (*auth.Session, error) {
	s := auth.SessionFromContext(ctx)
	if s == nil || s.User == nil {
		return nil, domain.ErrNotAuthenticated("sign in to load this data")
	}
	return s, nil
}

// QueryResult pairs flattened data with any partial-result errors that
// accompanied it.
type QueryResult[T any] struct {
	Items     []T
	Errors    []graphql.Error
	Friendly  string
	FromCache bool
}

func decodeCollection[T any](res *graphql.Result, field string) (QueryResult[T], error) {
	var qr QueryResult[T]
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(res.Data, &payload); err != nil {
		return qr, domain.ErrUpstream("decode collection payload", err)
	}
	var conn connection[T]
	if raw, ok := payload[field]; ok {
		if err := json.Unmarshal(raw, &conn); err != nil {
			return qr, domain.ErrUpstream("decode collection "+field, err)
		}
	}
	qr.Items = flatten(conn)
	qr.Errors = res.Errors
	qr.Friendly = res.FriendlyError()
	qr.FromCache = res.FromCache
	return qr, nil
}
