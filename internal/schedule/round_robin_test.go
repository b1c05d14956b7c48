package schedule

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/AdamBeresnev/op-league/internal/league"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTeams(n int) []league.Team {
	teams := make([]league.Team, n)
	for i := range teams {
		teams[i] = league.Team{ID: uuid.New(), Name: fmt.Sprintf("Team %d", i+1)}
	}
	return teams
}

type pairKey struct {
	a, b uuid.UUID
}

func unordered(a, b uuid.UUID) pairKey {
	if a.String() > b.String() {
		a, b = b, a
	}
	return pairKey{a, b}
}

func expectedRounds(n int) int {
	if n%2 == 0 {
		return n - 1
	}
	return n
}

func TestGenerate_InvalidTeamSet(t *testing.T) {
	dup := league.Team{ID: uuid.New(), Name: "Dup"}

	testCases := []struct {
		name  string
		teams []league.Team
	}{
		{name: "No teams", teams: nil},
		{name: "Single team", teams: makeTeams(1)},
		{name: "Duplicate team", teams: []league.Team{dup, dup, {ID: uuid.New(), Name: "Other"}}},
		{name: "Missing id", teams: []league.Team{{Name: "Nameless"}, {ID: uuid.New(), Name: "Other"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rounds, err := Generate(tc.teams, false, rand.New(rand.NewSource(1)))
			assert.ErrorIs(t, err, league.ErrInvalidTeamSet)
			assert.Nil(t, rounds)
		})
	}
}

func TestGenerate_SingleRoundRobin(t *testing.T) {
	for n := 2; n <= 12; n++ {
		for seed := int64(0); seed < 5; seed++ {
			t.Run(fmt.Sprintf("%d teams seed %d", n, seed), func(t *testing.T) {
				teams := makeTeams(n)
				rounds, err := Generate(teams, false, rand.New(rand.NewSource(seed)))
				require.NoError(t, err)
				require.Len(t, rounds, expectedRounds(n))

				pairs := make(map[pairKey]int)
				for i, round := range rounds {
					assert.Len(t, round, n/2, "round %d", i+1)

					inRound := make(map[uuid.UUID]bool)
					for _, f := range round {
						assert.Equal(t, i+1, f.Round)
						assert.NotEqual(t, f.HomeTeam.ID, f.AwayTeam.ID)
						assert.False(t, inRound[f.HomeTeam.ID], "team twice in round %d", i+1)
						assert.False(t, inRound[f.AwayTeam.ID], "team twice in round %d", i+1)
						inRound[f.HomeTeam.ID] = true
						inRound[f.AwayTeam.ID] = true
						pairs[unordered(f.HomeTeam.ID, f.AwayTeam.ID)]++
					}
				}

				assert.Len(t, pairs, n*(n-1)/2)
				for _, seen := range pairs {
					assert.Equal(t, 1, seen)
				}

				home, away := HomeAwayCounts(Flatten(rounds))
				for _, team := range teams {
					diff := home[team.ID] - away[team.ID]
					assert.LessOrEqual(t, diff, 1, "team %s", team.Name)
					assert.GreaterOrEqual(t, diff, -1, "team %s", team.Name)
				}
			})
		}
	}
}

func TestGenerate_DoubleRoundRobin(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 8} {
		t.Run(fmt.Sprintf("%d teams", n), func(t *testing.T) {
			teams := makeTeams(n)
			rounds, err := Generate(teams, true, rand.New(rand.NewSource(42)))
			require.NoError(t, err)

			legRounds := expectedRounds(n)
			require.Len(t, rounds, 2*legRounds)

			oriented := make(map[[2]uuid.UUID]int)
			for i, round := range rounds {
				for _, f := range round {
					assert.Equal(t, i+1, f.Round)
					oriented[[2]uuid.UUID{f.HomeTeam.ID, f.AwayTeam.ID}]++
				}
			}

			// Every pair twice, once each way round
			assert.Len(t, oriented, n*(n-1))
			for key, seen := range oriented {
				assert.Equal(t, 1, seen)
				assert.Equal(t, 1, oriented[[2]uuid.UUID{key[1], key[0]}])
			}

			// The second leg mirrors the first
			for r := 0; r < legRounds; r++ {
				require.Len(t, rounds[legRounds+r], len(rounds[r]))
				for i, f := range rounds[r] {
					mirror := rounds[legRounds+r][i]
					assert.Equal(t, f.HomeTeam.ID, mirror.AwayTeam.ID)
					assert.Equal(t, f.AwayTeam.ID, mirror.HomeTeam.ID)
				}
			}
		})
	}
}

func TestGenerate_OddTeamCountSitsOneOut(t *testing.T) {
	teams := makeTeams(5)
	rounds, err := Generate(teams, false, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.Len(t, rounds, 5)

	sittingOut := make(map[uuid.UUID]int)
	for _, round := range rounds {
		require.Len(t, round, 2)

		playing := make(map[uuid.UUID]bool)
		for _, f := range round {
			playing[f.HomeTeam.ID] = true
			playing[f.AwayTeam.ID] = true
		}
		for _, team := range teams {
			if !playing[team.ID] {
				sittingOut[team.ID]++
			}
		}
	}

	// Each team gets exactly one bye
	assert.Len(t, sittingOut, 5)
	for _, byes := range sittingOut {
		assert.Equal(t, 1, byes)
	}
}

func TestGenerate_FourTeams(t *testing.T) {
	teams := []league.Team{
		{ID: uuid.New(), Name: "A"},
		{ID: uuid.New(), Name: "B"},
		{ID: uuid.New(), Name: "C"},
		{ID: uuid.New(), Name: "D"},
	}

	rounds, err := Generate(teams, false, nil)
	require.NoError(t, err)
	require.Len(t, rounds, 3)

	fixtures := Flatten(rounds)
	assert.Len(t, fixtures, 6)

	appearances := make(map[uuid.UUID]int)
	for _, f := range fixtures {
		appearances[f.HomeTeam.ID]++
		appearances[f.AwayTeam.ID]++
	}

	home, _ := HomeAwayCounts(fixtures)
	for _, team := range teams {
		assert.Equal(t, 3, appearances[team.ID], "team %s", team.Name)
		assert.Contains(t, []int{1, 2}, home[team.ID], "team %s", team.Name)
	}
}

func TestGenerate_DoesNotMutateInput(t *testing.T) {
	teams := makeTeams(6)
	original := make([]league.Team, len(teams))
	copy(original, teams)

	_, err := Generate(teams, true, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.Equal(t, original, teams)
}
