package league

import (
	"errors"
	"fmt"
)

// Precondition errors are caller-correctable and never retried here.
var (
	ErrInvalidTeamSet        = errors.New("invalid team set")
	ErrMatchNotReady         = errors.New("match is not ready to be completed")
	ErrMatchNotCompleted     = errors.New("match is not completed")
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrInvalidScore          = errors.New("scores must be non-negative")
	ErrWindowAlreadyClosed   = errors.New("voting window is already closed")
	ErrVotingDisabled        = errors.New("voting is disabled for this competition")
	ErrInvalidVotingSettings = errors.New("invalid voting settings")
	ErrTeamHasResults        = errors.New("team has completed matches in this competition")
	ErrTeamNotInMatch        = errors.New("team does not play in this match")
)

// Voting rule errors describe which ballot rule rejected a vote.
var (
	ErrWindowClosed    = errors.New("voting window is closed")
	ErrNotAParticipant = errors.New("voter did not take part in the match")
	ErrAlreadyVoted    = errors.New("voter has already cast a ballot for this match")
	ErrInvalidBallot   = errors.New("invalid ballot")
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrWindowNotFound = errors.New("voting window not found")
	ErrStaleMatch     = errors.New("match changed during update")
)

// Invariant violations point at a bug upstream, not at the user.
var (
	ErrInvariantViolation = errors.New("invariant violation")
	ErrNegativeStat       = fmt.Errorf("%w: negative stat", ErrInvariantViolation)
)

var preconditionErrors = []error{
	ErrInvalidTeamSet,
	ErrMatchNotReady,
	ErrMatchNotCompleted,
	ErrMatchAlreadyCompleted,
	ErrInvalidScore,
	ErrWindowAlreadyClosed,
	ErrVotingDisabled,
	ErrInvalidVotingSettings,
	ErrTeamHasResults,
	ErrTeamNotInMatch,
}

var votingRuleErrors = []error{
	ErrWindowClosed,
	ErrNotAParticipant,
	ErrAlreadyVoted,
	ErrInvalidBallot,
}

func IsPrecondition(err error) bool {
	return isAny(err, preconditionErrors)
}

func IsVotingRule(err error) bool {
	return isAny(err, votingRuleErrors)
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
