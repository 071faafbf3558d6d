package service

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/courtside/platform/internal/domain"
)

// SearchHit is one ranked search result across players and teams.
type SearchHit struct {
	Kind string `json:"kind"` // "player" or "team"
	ID   string `json:"id"`
	Name string `json:"name"`
	Rank int    `json:"-"`
}

// SearchService fuzzy-matches gamertags and team names over the already
// cached lists, so a search never fans out to the upstream per keystroke.
type SearchService struct {
	players *PlayerService
	teams   *TeamService
}

// NewSearchService creates a SearchService over the entity services.
func NewSearchService(players *PlayerService, teams *TeamService) *SearchService {
	return &SearchService{players: players, teams: teams}
}

// Search returns fuzzy matches for the query, best first.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrValidation("search query is required")
	}
	if limit <= 0 {
		limit = 20
	}

	players, err := s.players.List(ctx, 200)
	if err != nil {
		return nil, err
	}
	teams, err := s.teams.List(ctx, 200)
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for _, p := range players.Items {
		if rank := fuzzy.RankMatchNormalizedFold(query, p.Gamertag); rank >= 0 {
			hits = append(hits, SearchHit{Kind: "player", ID: p.ID, Name: p.Gamertag, Rank: rank})
		}
	}
	for _, t := range teams.Items {
		if rank := fuzzy.RankMatchNormalizedFold(query, t.Name); rank >= 0 {
			hits = append(hits, SearchHit{Kind: "team", ID: t.ID, Name: t.Name, Rank: rank})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Rank < hits[j].Rank })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
