package league

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type VoteStatus string

const (
	VotingOpen   VoteStatus = "open"
	VotingClosed VoteStatus = "closed"
)

// BallotSize is the number of ranked picks on one ballot.
const BallotSize = 3

// BallotPoints are the points handed out on a ballot, one pick each.
var BallotPoints = [BallotSize]int{3, 2, 1}

type VoteWindow struct {
	MatchID        uuid.UUID  `db:"match_id"`
	Status         VoteStatus `db:"status"`
	OpensWithMatch bool       `db:"opens_with_match"`
	EndsAt         *time.Time `db:"ends_at"`
	ClosedAt       *time.Time `db:"closed_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

// AcceptsVotesAt reports whether a ballot may land at the given instant. An
// expired window that has not been swept yet counts as closed.
func (w *VoteWindow) AcceptsVotesAt(now time.Time) bool {
	if w.Status != VotingOpen {
		return false
	}
	return w.EndsAt == nil || now.Before(*w.EndsAt)
}

// ExpiredAt reports whether the deadline has passed.
func (w *VoteWindow) ExpiredAt(now time.Time) bool {
	return w.EndsAt != nil && !now.Before(*w.EndsAt)
}

type BallotEntry struct {
	CandidateID uuid.UUID `db:"candidate_id"`
	Points      int       `db:"points"`
}

type Ballot []BallotEntry

// Vote is a stored ballot entry.
type Vote struct {
	MatchID     uuid.UUID `db:"match_id"`
	VoterID     uuid.UUID `db:"voter_id"`
	CandidateID uuid.UUID `db:"candidate_id"`
	Points      int       `db:"points"`
	CreatedAt   time.Time `db:"created_at"`
}

// Validate checks the ballot shape: exactly BallotSize picks, distinct
// candidates drawn from the participants, points exactly 3, 2 and 1.
func (b Ballot) Validate(participants map[uuid.UUID]bool) error {
	if len(b) != BallotSize {
		return fmt.Errorf("%w: expected %d picks, got %d", ErrInvalidBallot, BallotSize, len(b))
	}

	seen := make(map[uuid.UUID]bool, len(b))
	points := make(map[int]int, len(b))
	for _, e := range b {
		if seen[e.CandidateID] {
			return fmt.Errorf("%w: candidate %s picked twice", ErrInvalidBallot, e.CandidateID)
		}
		seen[e.CandidateID] = true

		if !participants[e.CandidateID] {
			return fmt.Errorf("%w: candidate %s did not take part in the match", ErrInvalidBallot, e.CandidateID)
		}
		points[e.Points]++
	}

	for _, p := range BallotPoints {
		if points[p] != 1 {
			return fmt.Errorf("%w: points must be exactly %v", ErrInvalidBallot, BallotPoints)
		}
	}
	return nil
}
