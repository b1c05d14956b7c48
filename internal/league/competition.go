package league

import (
	"time"

	"github.com/google/uuid"
)

type CompetitionStatus string

const (
	CompetitionDraft     CompetitionStatus = "draft"
	CompetitionStarted   CompetitionStatus = "started"
	CompetitionCompleted CompetitionStatus = "completed"
)

type Competition struct {
	ID               uuid.UUID         `db:"id"`
	Name             string            `db:"name" json:"name"`
	Status           CompetitionStatus `db:"status"`
	DoubleRound      bool              `db:"double_round"`
	VotingEnabled    bool              `db:"voting_enabled"`
	VotingPeriodDays int               `db:"voting_period_days"`
	CreatedAt        time.Time         `db:"created_at"`
}
