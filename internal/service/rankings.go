package service

import (
	"context"
	"fmt"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/graphql"
)

const rankingsQuery = `
query Rankings($first: Int!, $tier: String) {
  teamsCollection(first: $first, filter: {leaderboard_tier: {eq: $tier}}, orderBy: [{current_rp: DescNullsLast}]) {
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

// DefaultRankingsPage is how many teams one load of the rankings view shows.
const DefaultRankingsPage = 25

// RankingsService serves the leaderboard view. Load-more re-runs the query
// with a larger window rather than tracking cursors; the window itself is the
// caller's state, carried per request, and the cache absorbs the overlap.
type RankingsService struct {
	gql *graphql.Client
}

// NewRankingsService creates a RankingsService over the shared GraphQL client.
func NewRankingsService(gql *graphql.Client) *RankingsService {
	return &RankingsService{gql: gql}
}

// Leaderboard returns the ranked teams for a tier ("" means all tiers),
// ordered by ranking points as served upstream. A non-positive limit falls
// back to one page.
func (s *RankingsService) Leaderboard(ctx context.Context, tier string, limit int) (QueryResult[domain.Team], error) {
	if _, err := requireSession(ctx); err != nil {
		return QueryResult[domain.Team]{}, err
	}
	if limit <= 0 {
		limit = DefaultRankingsPage
	}
	vars := map[string]any{"first": limit}
	if tier != "" {
		vars["tier"] = tier
	}
	res, err := s.gql.Query(ctx, graphql.Operation{
		Name:      "Rankings",
		Query:     rankingsQuery,
		Variables: vars,
	}, graphql.CacheAndNetwork)
	if err != nil {
		return QueryResult[domain.Team]{}, err
	}
	return decodeCollection[domain.Team](res, "teamsCollection")
}

// CalculateWinRate formats a win percentage with one decimal place.
// Zero games played is "0", not a division error.
func CalculateWinRate(wins, losses int) string {
	total := wins + losses
	if total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(wins)/float64(total)*100)
}
