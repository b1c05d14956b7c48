package league

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Match struct {
	ID            uuid.UUID `db:"id"`
	CompetitionID uuid.UUID `db:"competition_id"`

	// Position in the schedule
	RoundNumber int `db:"round_number"`
	MatchOrder  int `db:"match_order"`

	HomeTeamID *uuid.UUID `db:"home_team_id"`
	AwayTeamID *uuid.UUID `db:"away_team_id"`
	MatchDate  *time.Time `db:"match_date"`

	HomeScore   int  `db:"home_score"`
	AwayScore   int  `db:"away_score"`
	IsCompleted bool `db:"is_completed"`

	CreatedAt time.Time `db:"created_at"`
}

// MatchPlayer records a player turning out for one side of a match.
type MatchPlayer struct {
	MatchID  uuid.UUID `db:"match_id"`
	PlayerID uuid.UUID `db:"player_id"`
	TeamID   uuid.UUID `db:"team_id"`
}

// CheckReady returns ErrMatchNotReady, with the missing piece, unless the
// match has a date, both teams and at least one player per side.
func (m *Match) CheckReady(players []MatchPlayer) error {
	switch {
	case m.HomeTeamID == nil || m.AwayTeamID == nil:
		return fmt.Errorf("%w: teams not assigned", ErrMatchNotReady)
	case m.MatchDate == nil:
		return fmt.Errorf("%w: no match date", ErrMatchNotReady)
	}

	var home, away bool
	for _, p := range players {
		switch p.TeamID {
		case *m.HomeTeamID:
			home = true
		case *m.AwayTeamID:
			away = true
		}
	}
	if !home || !away {
		return fmt.Errorf("%w: players missing for one side", ErrMatchNotReady)
	}
	return nil
}

// Involves reports whether the team plays in this match.
func (m *Match) Involves(teamID uuid.UUID) bool {
	return (m.HomeTeamID != nil && *m.HomeTeamID == teamID) || (m.AwayTeamID != nil && *m.AwayTeamID == teamID)
}
