package service

import (
	"context"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/graphql"
)

const teamsQuery = `
query Teams($first: Int!) {
  teamsCollection(first: $first, orderBy: [{global_rank: AscNullsLast}]) {
    edges {
      node {
        __typename
        id
        name
        logo_url
        current_rp
        elo_rating
        global_rank
        leaderboard_tier
        money_won
        wins
        losses
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

const teamByIDQuery = `
query Team($id: ID!) {
  teamsCollection(filter: {id: {eq: $id}}, first: 1) {
    edges {
      node {
        __typename
        id
        name
        logo_url
        current_rp
        elo_rating
        global_rank
        leaderboard_tier
        money_won
        wins
        losses
      }
    }
  }
}`

// TeamService serves the team roster and standings.
type TeamService struct {
	gql *graphql.Client
}

// NewTeamService creates a TeamService over the shared GraphQL client.
func NewTeamService(gql *graphql.Client) *TeamService {
	return &TeamService{gql: gql}
}

// List returns teams in upstream standing order.
func (s *TeamService) List(ctx context.Context, limit int) (QueryResult[domain.Team], error) {
	if _, err := requireSession(ctx); err != nil {
		return QueryResult[domain.Team]{}, err
	}
	if limit <= 0 {
		limit = 50
	}
	res, err := s.gql.Query(ctx, teamsOp(limit), graphql.CacheAndNetwork)
	if err != nil {
		return QueryResult[domain.Team]{}, err
	}
	return decodeCollection[domain.Team](res, "teamsCollection")
}

// Get returns one team by id. A record already normalized into the cache is
// served without a network trip.
func (s *TeamService) Get(ctx context.Context, id string) (*domain.Team, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	var cached domain.Team
	if s.gql.Entity(ctx, "teams", id, &cached) {
		return &cached, nil
	}
	res, err := s.gql.Query(ctx, graphql.Operation{
		Name:      "Team",
		Query:     teamByIDQuery,
		Variables: map[string]any{"id": id},
	}, graphql.CacheAndNetwork)
	if err != nil {
		return nil, err
	}
	qr, err := decodeCollection[domain.Team](res, "teamsCollection")
	if err != nil {
		return nil, err
	}
	if len(qr.Items) == 0 {
		return nil, domain.ErrNotFound("team", id)
	}
	t := qr.Items[0]
	return &t, nil
}

// Refetch bypasses the cache and refreshes the team list.
func (s *TeamService) Refetch(ctx context.Context, limit int) (QueryResult[domain.Team], error) {
	if _, err := requireSession(ctx); err != nil {
		return QueryResult[domain.Team]{}, err
	}
	if limit <= 0 {
		limit = 50
	}
	res, err := s.gql.Refetch(ctx, teamsOp(limit))
	if err != nil {
		return QueryResult[domain.Team]{}, err
	}
	return decodeCollection[domain.Team](res, "teamsCollection")
}

func teamsOp(limit int) graphql.Operation {
	return graphql.Operation{
		Name:      "Teams",
		Query:     teamsQuery,
		Variables: map[string]any{"first": limit},
	}
}
