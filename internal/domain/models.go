package domain

import "time"

// User is the auth provider's user record. The platform only ever reads it;
// creation, persistence and expiry are owned by the provider.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Role         string       `json:"role,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	LastSignInAt *time.Time   `json:"last_sign_in_at,omitempty"`
}

// UserMetadata carries the OAuth profile fields the provider copies onto the user.
type UserMetadata struct {
	FullName  string `json:"full_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Session is the token pair returned by the auth provider.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         *User  `json:"user,omitempty"`
}

// Player is a rostered player as served by the upstream GraphQL API.
type Player struct {
	ID              string      `json:"id"`
	Gamertag        string      `json:"gamertag"`
	Position        string      `json:"position,omitempty"`
	PlayerRP        float64     `json:"player_rp"`
	PlayerRankScore float64     `json:"player_rank_score"`
	Team            *TeamRef    `json:"teams,omitempty"`
	Stats           PlayerStats `json:"stats"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// TeamRef is the abbreviated team shape embedded in a player node.
type TeamRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PlayerStats holds per-player season averages. Absent fields decode as 0.
type PlayerStats struct {
	PPG                  float64 `json:"ppg"`
	RPG                  float64 `json:"rpg"`
	APG                  float64 `json:"apg"`
	SPG                  float64 `json:"spg"`
	BPG                  float64 `json:"bpg"`
	FGPercentage         float64 `json:"fgPercentage"`
	ThreePointPercentage float64 `json:"threePointPercentage"`
	FTPercentage         float64 `json:"ftPercentage"`
}

// Team is a competing team with its leaderboard standing.
type Team struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	LogoURL         string  `json:"logo_url,omitempty"`
	CurrentRP       float64 `json:"current_rp"`
	EloRating       float64 `json:"elo_rating"`
	GlobalRank      int     `json:"global_rank"`
	LeaderboardTier string  `json:"leaderboard_tier,omitempty"`
	MoneyWon        float64 `json:"money_won"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
}

// Match is a completed or scheduled game between two teams.
type Match struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	TeamAID    string     `json:"team_a_id"`
	TeamBID    string     `json:"team_b_id"`
	WinnerID   string     `json:"winner_id,omitempty"`
	ScoreA     int        `json:"score_a"`
	ScoreB     int        `json:"score_b"`
	PlayedAt   *time.Time `json:"played_at,omitempty"`
	Stage      string     `json:"stage,omitempty"`
	GameNumber int        `json:"game_number"`
}

// MatchStats is a single player's box score for one match.
type MatchStats struct {
	ID            string  `json:"id"`
	MatchID       string  `json:"match_id"`
	PlayerID      string  `json:"player_id"`
	Points        int     `json:"points"`
	Assists       int     `json:"assists"`
	Rebounds      int     `json:"rebounds"`
	Steals        int     `json:"steals"`
	Blocks        int     `json:"blocks"`
	Turnovers     int     `json:"turnovers"`
	Fouls         int     `json:"fouls"`
	FGM           int     `json:"fgm"`
	FGA           int     `json:"fga"`
	ThreePM       int     `json:"three_points_made"`
	ThreePA       int     `json:"three_points_attempted"`
	FTM           int     `json:"ftm"`
	FTA           int     `json:"fta"`
	PlusMinus     int     `json:"plus_minus"`
	MinutesPlayed float64 `json:"minutes_played"`
}

// EventStatus is derived from an event's date range.
type EventStatus string

const (
	EventUpcoming  EventStatus = "upcoming"
	EventActive    EventStatus = "active"
	EventCompleted EventStatus = "completed"
)

// Event is a tournament or season within the series.
type Event struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Tier            string      `json:"tier,omitempty"`
	Status          EventStatus `json:"status"`
	StartDate       *time.Time  `json:"start_date,omitempty"`
	EndDate         *time.Time  `json:"end_date,omitempty"`
	MaxRP           float64     `json:"max_rp"`
	DecayDays       int         `json:"decay_days"`
	PrizePool       float64     `json:"prize_pool"`
	PrizeBreakdown  string      `json:"prize_breakdown,omitempty"`
	BannerURL       string      `json:"banner_url,omitempty"`
	RegistrationFee float64     `json:"registration_fee"`
}

// StatusAt derives the event status from its date range at the given instant.
// Events without a start date are upcoming; an open end keeps the event active.
func (e *Event) StatusAt(now time.Time) EventStatus {
	if e.StartDate == nil || now.Before(*e.StartDate) {
		return EventUpcoming
	}
	if e.EndDate != nil && now.After(*e.EndDate) {
		return EventCompleted
	}
	return EventActive
}
