package league

import (
	"fmt"

	"github.com/google/uuid"
)

// TeamCompetitionRecord is the running aggregate of one team in one competition.
type TeamCompetitionRecord struct {
	TeamID        uuid.UUID `db:"team_id"`
	CompetitionID uuid.UUID `db:"competition_id"`
	Points        int       `db:"points"`
	Wins          int       `db:"wins"`
	Draws         int       `db:"draws"`
	Losses        int       `db:"losses"`
	GoalsFor      int       `db:"goals_for"`
	GoalsAgainst  int       `db:"goals_against"`
}

func (r TeamCompetitionRecord) Played() int {
	return r.Wins + r.Draws + r.Losses
}

func (r TeamCompetitionRecord) GoalDifference() int {
	return r.GoalsFor - r.GoalsAgainst
}

// Apply returns the record with the delta added. The receiver is left untouched.
func (r TeamCompetitionRecord) Apply(d StatsDelta) TeamCompetitionRecord {
	r.Points += d.Points
	r.Wins += d.Wins
	r.Draws += d.Draws
	r.Losses += d.Losses
	r.GoalsFor += d.GoalsFor
	r.GoalsAgainst += d.GoalsAgainst
	return r
}

// Validate checks that no field is negative and points follow 3-1-0 scoring.
func (r TeamCompetitionRecord) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"points", r.Points},
		{"wins", r.Wins},
		{"draws", r.Draws},
		{"losses", r.Losses},
		{"goals_for", r.GoalsFor},
		{"goals_against", r.GoalsAgainst},
	}
	for _, f := range fields {
		if f.value < 0 {
			return fmt.Errorf("%w: %s would be %d", ErrNegativeStat, f.name, f.value)
		}
	}

	if want := r.Wins*PointsForWin + r.Draws*PointsForDraw; r.Points != want {
		return fmt.Errorf("%w: points %d, expected %d from %d wins and %d draws", ErrInvariantViolation, r.Points, want, r.Wins, r.Draws)
	}
	return nil
}
