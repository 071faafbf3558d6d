package service

import (
	"context"
	"time"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/graphql"
)

const eventsQuery = `
query Events($first: Int!) {
  eventsCollection(first: $first, orderBy: [{start_date: DescNullsLast}]) {
    edges {
      node {
        __typename
        id
        name
        tier
        status
        start_date
        end_date
        max_rp
        decay_days
        prize_pool
        prize_breakdown
        banner_url
        registration_fee
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

// EventService serves tournament and season metadata.
type EventService struct {
	gql *graphql.Client
}

// NewEventService creates an EventService over the shared GraphQL client.
func NewEventService(gql *graphql.Client) *EventService {
	return &EventService{gql: gql}
}

// List returns events newest first, with status derived from the date range
// so a stale upstream status field cannot mark a finished event active.
func (s *EventService) List(ctx context.Context, limit int) (QueryResult[domain.Event], error) {
	if _, err := requireSession(ctx); err != nil {
		return QueryResult[domain.Event]{}, err
	}
	if limit <= 0 {
		limit = 25
	}
	res, err := s.gql.Query(ctx, eventsOp(limit), graphql.CacheAndNetwork)
	if err != nil {
		return QueryResult[domain.Event]{}, err
	}
	qr, err := decodeCollection[domain.Event](res, "eventsCollection")
	if err != nil {
		return qr, err
	}
	now := time.Now()
	for i := range qr.Items {
		qr.Items[i].Status = qr.Items[i].StatusAt(now)
	}
	return qr, nil
}

func eventsOp(limit int) graphql.Operation {
	return graphql.Operation{
		Name:      "Events",
		Query:     eventsQuery,
		Variables: map[string]any{"first": limit},
	}
}
