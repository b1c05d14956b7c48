package league

import (
	"time"

	"github.com/google/uuid"
)

// Team identity is the ID; names may change without touching standings.
type Team struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Fixture is one scheduled meeting. Byes never appear here.
type Fixture struct {
	Round    int
	HomeTeam Team
	AwayTeam Team
}
