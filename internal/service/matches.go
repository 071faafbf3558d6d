package service

import (
	"context"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/graphql"
)

const matchesQuery = `
query Matches($first: Int!, $eventId: ID) {
  matchesCollection(first: $first, filter: {event_id: {eq: $eventId}}, orderBy: [{played_at: DescNullsLast}]) {
    edges {
      node {
        __typename
        id
        event_id
        team_a_id
        team_b_id
        winner_id
        score_a
        score_b
        played_at
        stage
        game_number
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

const matchStatsQuery = `
query MatchStats($matchId: ID!) {
  matchStatsCollection(filter: {match_id: {eq: $matchId}}) {
    edges {
      node {
        __typename
        id
        match_id
        player_id
        points
        assists
        rebounds
        steals
        blocks
        turnovers
        fouls
        fgm
        fga
        three_points_made
        three_points_attempted
        ftm
        fta
        plus_minus
        minutes_played
      }
    }
  }
}`

// MatchService serves game schedules, results and box scores.
type MatchService struct {
	gql *graphql.Client
}

// NewMatchService creates a MatchService over the shared GraphQL client.
func NewMatchService(gql *graphql.Client) *MatchService {
	return &MatchService{gql: gql}
}

// List returns matches newest first, optionally scoped to one event.
func (s *MatchService) List(ctx context.Context, eventID string, limit int) (QueryResult[domain.Match], error) {
	if _, err := requireSession(ctx); err != nil {
		return QueryResult[domain.Match]{}, err
	}
	if limit <= 0 {
		limit = 50
	}
	vars := map[string]any{"first": limit}
	if eventID != "" {
		vars["eventId"] = eventID
	}
	res, err := s.gql.Query(ctx, graphql.Operation{
		Name:      "Matches",
		Query:     matchesQuery,
		Variables: vars,
	}, graphql.CacheAndNetwork)
	if err != nil {
		return QueryResult[domain.Match]{}, err
	}
	return decodeCollection[domain.Match](res, "matchesCollection")
}

// BoxScore returns the per-player stat lines for one match.
func (s *MatchService) BoxScore(ctx context.Context, matchID string) (QueryResult[domain.MatchStats], error) {
	if _, err := requireSession(ctx); err != nil {
		return QueryResult[domain.MatchStats]{}, err
	}
	res, err := s.gql.Query(ctx, graphql.Operation{
		Name:      "MatchStats",
		Query:     matchStatsQuery,
		Variables: map[string]any{"matchId": matchID},
	}, graphql.CacheAndNetwork)
	if err != nil {
		return QueryResult[domain.MatchStats]{}, err
	}
	return decodeCollection[domain.MatchStats](res, "matchStatsCollection")
}
