// Package schedule builds round-robin fixture lists. It does no I/O and keeps
// no state between calls, so it is safe to use concurrently.
package schedule

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/google/uuid"
)

// bye marks the placeholder slot added for odd team counts
const bye = -1

// Generate returns the rounds of a single (or double) round robin between the
// teams. The team order is shuffled with rng first, so callers must not rely
// on who meets whom in which round. A nil rng uses a time seeded source.
func Generate(teams []league.Team, doubleRound bool, rng *rand.Rand) ([][]league.Fixture, error) {
	if err := validateTeams(teams); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	slots := make([]int, len(teams))
	for i := range slots {
		slots[i] = i
	}
	rng.Shuffle(len(slots), func(i, j int) {
		slots[i], slots[j] = slots[j], slots[i]
	})
	if len(slots)%2 != 0 {
		slots = append(slots, bye)
	}

	count := len(slots)
	half := count / 2
	totalRounds := count - 1

	rounds := make([][]league.Fixture, 0, totalRounds)
	for r := 0; r < totalRounds; r++ {
		fixtures := make([]league.Fixture, 0, half)
		for i := 0; i < half; i++ {
			home, away := slots[i], slots[count-1-i]
			if home == bye || away == bye {
				continue
			}

			// The fixed slot alternates between hosting and travelling, everyone
			// else hosts while in the first half of the lineup. Rotation moves
			// each team through both halves, which keeps the split within one.
			if i == 0 && r%2 != 0 {
				home, away = away, home
			}

			fixtures = append(fixtures, league.Fixture{
				Round:    r + 1,
				HomeTeam: teams[home],
				AwayTeam: teams[away],
			})
		}
		rounds = append(rounds, fixtures)

		slots = rotate(slots)
	}

	if !doubleRound {
		return rounds, nil
	}

	for r := 0; r < totalRounds; r++ {
		reverse := make([]league.Fixture, 0, len(rounds[r]))
		for _, f := range rounds[r] {
			reverse = append(reverse, league.Fixture{
				Round:    totalRounds + r + 1,
				HomeTeam: f.AwayTeam,
				AwayTeam: f.HomeTeam,
			})
		}
		rounds = append(rounds, reverse)
	}

	return rounds, nil
}

// rotate keeps slot 0 in place and moves the last slot to index 1
func rotate(slots []int) []int {
	next := make([]int, 0, len(slots))
	next = append(next, slots[0], slots[len(slots)-1])
	next = append(next, slots[1:len(slots)-1]...)
	return next
}

func validateTeams(teams []league.Team) error {
	if len(teams) < 2 {
		return fmt.Errorf("%w: need at least 2 teams, got %d", league.ErrInvalidTeamSet, len(teams))
	}

	seen := make(map[uuid.UUID]bool, len(teams))
	for _, t := range teams {
		if t.ID == uuid.Nil {
			return fmt.Errorf("%w: team %q has no id", league.ErrInvalidTeamSet, t.Name)
		}
		if seen[t.ID] {
			return fmt.Errorf("%w: team %s listed twice", league.ErrInvalidTeamSet, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// Flatten returns every fixture in round order.
func Flatten(rounds [][]league.Fixture) []league.Fixture {
	var fixtures []league.Fixture
	for _, round := range rounds {
		fixtures = append(fixtures, round...)
	}
	return fixtures
}

// HomeAwayCounts tallies home and away games per team id.
func HomeAwayCounts(fixtures []league.Fixture) (map[uuid.UUID]int, map[uuid.UUID]int) {
	home := make(map[uuid.UUID]int)
	away := make(map[uuid.UUID]int)
	for _, f := range fixtures {
		home[f.HomeTeam.ID]++
		away[f.AwayTeam.ID]++
	}
	return home, away
}
