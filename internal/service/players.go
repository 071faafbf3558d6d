package service

import (
	"context"

	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/graphql"
)

const playersQuery = `
query Players($first: Int!) {
  playersCollection(first: $first, orderBy: [{player_rank_score: DescNullsLast}]) {
    edges {
      node {
        __typename
        id
        gamertag
        position
        player_rp
        player_rank_score
        teams { id name }
        stats { ppg rpg apg spg bpg fgPercentage threePointPercentage ftPercentage }
        createdAt
        updatedAt
      }
    }
    pageInfo { hasNextPage endCursor }
  }
}`

const playerByIDQuery = `
query Player($id: ID!) {
  playersCollection(filter: {id: {eq: $id}}, first: 1) {
    edges {
      node {
        __typename
        id
        gamertag
        position
        player_rp
        player_rank_score
        teams { id name }
        stats { ppg rpg apg spg bpg fgPercentage threePointPercentage ftPercentage }
        createdAt
        updatedAt
      }
    }
  }
}`

// PlayerService serves the player roster. Queries are skipped entirely for
// anonymous callers.
type PlayerService struct {
	gql *graphql.Client
}

// NewPlayerService creates a PlayerService over the shared GraphQL client.
func NewPlayerService(gql *graphql.Client) *PlayerService {
	return &PlayerService{gql: gql}
}

// List returns players ordered by rank score, as served upstream.
func (s *PlayerService) List(ctx context.Context, limit int) (QueryResult[domain.Player], error) {
	if _, err := requireSession(ctx); err != nil {
		return QueryResult[domain.Player]{}, err
	}
	if limit <= 0 {
		limit = 50
	}
	res, err := s.gql.Query(ctx, playersOp(limit), graphql.CacheAndNetwork)
	if err != nil {
		return QueryResult[domain.Player]{}, err
	}
	return decodeCollection[domain.Player](res, "playersCollection")
}

// Get returns one player by id. A record already normalized into the cache
// by a list query or a mutation write-back is served without a network trip.
func (s *PlayerService) Get(ctx context.Context, id string) (*domain.Player, error) {
	if _, err := requireSession(ctx); err != nil {
		return nil, err
	}
	var cached domain.Player
	if s.gql.Entity(ctx, "players", id, &cached) {
		return &cached, nil
	}
	res, err := s.gql.Query(ctx, graphql.Operation{
		Name:      "Player",
		Query:     playerByIDQuery,
		Variables: map[string]any{"id": id},
	}, graphql.CacheAndNetwork)
	if err != nil {
		return nil, err
	}
	qr, err := decodeCollection[domain.Player](res, "playersCollection")
	if err != nil {
		return nil, err
	}
	if len(qr.Items) == 0 {
		return nil, domain.ErrNotFound("player", id)
	}
	p := qr.Items[0]
	return &p, nil
}

// Refetch bypasses the cache and refreshes the player list.
func (s *PlayerService) Refetch(ctx context.Context, limit int) (QueryResult[domain.Player], error) {
	if _, err := requireSession(ctx); err != nil {
		return QueryResult[domain.Player]{}, err
	}
	if limit <= 0 {
		limit = 50
	}
	res, err := s.gql.Refetch(ctx, playersOp(limit))
	if err != nil {
		return QueryResult[domain.Player]{}, err
	}
	return decodeCollection[domain.Player](res, "playersCollection")
}

func playersOp(limit int) graphql.Operation {
	return graphql.Operation{
		Name:      "Players",
		Query:     playersQuery,
		Variables: map[string]any{"first": limit},
	}
}
