package service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/platform/internal/auth"
	"github.com/courtside/platform/internal/domain"
	"github.com/courtside/platform/internal/graphql"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authedContext() context.Context {
	return auth.WithSession(context.Background(), &auth.Session{
		User:  &domain.User{ID: "u1", Email: "fan@series.gg"},
		Token: "tok",
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*graphql.Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return graphql.NewClient(srv.URL, graphql.NewPipeline("anon", testLogger()), graphql.NewMemoryStore(), testLogger()), srv
}

func TestQueryGating(t *testing.T) {
	t.Run("anonymous caller issues no request", func(t *testing.T) {
		var requests atomic.Int32
		gql, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Write([]byte(`{"data": {}}`))
		})

		players := NewPlayerService(gql)
		_, err := players.List(context.Background(), 10)
		require.Error(t, err)

		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHENTICATED", appErr.Code)
		assert.Equal(t, int32(0), requests.Load())
	})

	t.Run("authenticated caller issues exactly one request", func(t *testing.T) {
		var requests atomic.Int32
		gql, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Write([]byte(`{"data": {"playersCollection": {"edges": []}}}`))
		})

		players := NewPlayerService(gql)
		_, err := players.List(authedContext(), 10)
		require.NoError(t, err)
		assert.Equal(t, int32(1), requests.Load())
	})
}

func TestEdgeNodeFlattening(t *testing.T) {
	payload := `{"data": {"playersCollection": {"edges": [
		{"node": {"id": "p1", "gamertag": "Slasher", "player_rp": 820.5, "stats": {"ppg": 24.1}}},
		{"node": {"id": "p2", "gamertag": "BigDunks", "player_rp": 799, "stats": {}}},
		{"node": {"id": "p3", "gamertag": "Dimes", "player_rp": 640}}
	]}}}`

	gql, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	})

	players := NewPlayerService(gql)
	qr, err := players.List(authedContext(), 10)
	require.NoError(t, err)

	t.Run("server order is preserved", func(t *testing.T) {
		require.Len(t, qr.Items, 3)
		assert.Equal(t, []string{"Slasher", "BigDunks", "Dimes"},
			[]string{qr.Items[0].Gamertag, qr.Items[1].Gamertag, qr.Items[2].Gamertag})
	})

	t.Run("absent stat fields default to zero", func(t *testing.T) {
		assert.Equal(t, 24.1, qr.Items[0].Stats.PPG)
		assert.Zero(t, qr.Items[1].Stats.PPG)
		assert.Zero(t, qr.Items[2].Stats.RPG)
	})
}

func TestPlayerGet(t *testing.T) {
	t.Run("normalized record serves a by-id read without a network trip", func(t *testing.T) {
		var requests atomic.Int32
		gql, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Write([]byte(`{"data": {"playersCollection": {"edges": [
				{"node": {"__typename": "players", "id": "p1", "gamertag": "Slasher"}}
			]}}}`))
		})

		players := NewPlayerService(gql)
		_, err := players.List(authedContext(), 10)
		require.NoError(t, err)

		got, err := players.Get(authedContext(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Slasher", got.Gamertag)
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("missing player is NOT_FOUND", func(t *testing.T) {
		gql, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"data": {"playersCollection": {"edges": []}}}`))
		})

		players := NewPlayerService(gql)
		_, err := players.Get(authedContext(), "ghost")
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "NOT_FOUND", appErr.Code)
	})
}

func TestRankings(t *testing.T) {
	newCapture := func(t *testing.T) (*RankingsService, *map[string]any) {
		var gotVars map[string]any
		gql, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body struct {
				Variables map[string]any `json:"variables"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			gotVars = body.Variables
			w.Write([]byte(`{"data": {"teamsCollection": {"edges": []}}}`))
		})
		return NewRankingsService(gql), &gotVars
	}

	t.Run("tier filter rides the variables", func(t *testing.T) {
		s, gotVars := newCapture(t)
		_, err := s.Leaderboard(authedContext(), "gold", 0)
		require.NoError(t, err)
		assert.Equal(t, "gold", (*gotVars)["tier"])
		assert.Equal(t, float64(DefaultRankingsPage), (*gotVars)["first"])
	})

	t.Run("caller's window rides the variables", func(t *testing.T) {
		s, gotVars := newCapture(t)
		_, err := s.Leaderboard(authedContext(), "", 3*DefaultRankingsPage)
		require.NoError(t, err)
		assert.Equal(t, float64(3*DefaultRankingsPage), (*gotVars)["first"])
	})

	t.Run("windows are independent between requests", func(t *testing.T) {
		s, gotVars := newCapture(t)
		_, err := s.Leaderboard(authedContext(), "", 2*DefaultRankingsPage)
		require.NoError(t, err)
		_, err = s.Leaderboard(authedContext(), "", 0)
		require.NoError(t, err)
		assert.Equal(t, float64(DefaultRankingsPage), (*gotVars)["first"])
	})
}

func TestCalculateWinRate(t *testing.T) {
	tests := []struct {
		wins, losses int
		want         string
	}{
		{0, 0, "0"},
		{3, 1, "75.0"},
		{1, 2, "33.3"},
		{10, 0, "100.0"},
		{0, 5, "0.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateWinRate(tt.wins, tt.losses), "wins=%d losses=%d", tt.wins, tt.losses)
	}
}

func TestEventStatusDerivation(t *testing.T) {
	gql, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"eventsCollection": {"edges": [
			{"node": {"id": "e1", "name": "Summer Open", "start_date": "2099-01-01T00:00:00Z"}},
			{"node": {"id": "e2", "name": "Winter Finals", "start_date": "2001-01-01T00:00:00Z", "end_date": "2001-02-01T00:00:00Z"}}
		]}}}`))
	})

	events := NewEventService(gql)
	qr, err := events.List(authedContext(), 10)
	require.NoError(t, err)
	require.Len(t, qr.Items, 2)
	assert.Equal(t, domain.EventUpcoming, qr.Items[0].Status)
	assert.Equal(t, domain.EventCompleted, qr.Items[1].Status)
}

func TestSearch(t *testing.T) {
	gql, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if strings.Contains(body.Query, "playersCollection") {
			w.Write([]byte(`{"data": {"playersCollection": {"edges": [
				{"node": {"id": "p1", "gamertag": "ShadowHoops"}},
				{"node": {"id": "p2", "gamertag": "Bricklayer"}}
			]}}}`))
			return
		}
		w.Write([]byte(`{"data": {"teamsCollection": {"edges": [
			{"node": {"id": "t1", "name": "Shadow Syndicate"}}
		]}}}`))
	})

	search := NewSearchService(NewPlayerService(gql), NewTeamService(gql))

	t.Run("matches players and teams", func(t *testing.T) {
		hits, err := search.Search(authedContext(), "shadow", 10)
		require.NoError(t, err)
		require.Len(t, hits, 2)
		kinds := map[string]bool{}
		for _, h := range hits {
			kinds[h.Kind] = true
		}
		assert.True(t, kinds["player"])
		assert.True(t, kinds["team"])
	})

	t.Run("empty query is a validation error", func(t *testing.T) {
		_, err := search.Search(authedContext(), "  ", 10)
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})
}

func TestAdminGating(t *testing.T) {
	gql, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {}}`))
	})
	admin := NewAdminService(gql)

	t.Run("anonymous is unauthenticated", func(t *testing.T) {
		_, err := admin.Create(context.Background(), "teams", map[string]any{"name": "x"})
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "UNAUTHENTICATED", appErr.Code)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		_, err := admin.Create(authedContext(), "teams", map[string]any{"name": "x"})
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "FORBIDDEN", appErr.Code)
	})

	t.Run("unknown entity is rejected before the network", func(t *testing.T) {
		ctx := auth.WithSession(context.Background(), &auth.Session{
			User: &domain.User{ID: "a1", Role: auth.RoleAdmin}, Token: "tok", IsAdmin: true,
		})
		_, err := admin.Delete(ctx, "wallets", "w1")
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})
}
