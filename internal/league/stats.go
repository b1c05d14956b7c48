package league

type Outcome int

const (
	Loss Outcome = iota
	Draw
	Win
)

const (
	PointsForWin  = 3
	PointsForDraw = 1
	PointsForLoss = 0
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "loss"
	}
}

func (o Outcome) Points() int {
	switch o {
	case Win:
		return PointsForWin
	case Draw:
		return PointsForDraw
	default:
		return PointsForLoss
	}
}

// Classify returns the outcome for the home side. The away side gets the mirror.
func Classify(homeScore, awayScore int) Outcome {
	switch {
	case homeScore > awayScore:
		return Win
	case homeScore == awayScore:
		return Draw
	default:
		return Loss
	}
}

// StatsDelta is a signed change to a standings record. Reversing a result is
// just the negated delta.
type StatsDelta struct {
	Points       int
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
}

// DeltaFor builds the delta of a single side that scored goalsFor and conceded goalsAgainst.
func DeltaFor(goalsFor, goalsAgainst int) StatsDelta {
	outcome := Classify(goalsFor, goalsAgainst)
	d := StatsDelta{
		Points:       outcome.Points(),
		GoalsFor:     goalsFor,
		GoalsAgainst: goalsAgainst,
	}
	switch outcome {
	case Win:
		d.Wins = 1
	case Draw:
		d.Draws = 1
	case Loss:
		d.Losses = 1
	}
	return d
}

// ResultDeltas returns the home and away deltas for a final score.
func ResultDeltas(homeScore, awayScore int) (StatsDelta, StatsDelta) {
	return DeltaFor(homeScore, awayScore), DeltaFor(awayScore, homeScore)
}

// CorrectionDeltas returns the net home and away deltas that turn the old
// score into the new one.
func CorrectionDeltas(oldHome, oldAway, newHome, newAway int) (StatsDelta, StatsDelta) {
	oldHomeDelta, oldAwayDelta := ResultDeltas(oldHome, oldAway)
	newHomeDelta, newAwayDelta := ResultDeltas(newHome, newAway)
	return newHomeDelta.Sub(oldHomeDelta), newAwayDelta.Sub(oldAwayDelta)
}

func (d StatsDelta) Add(o StatsDelta) StatsDelta {
	return StatsDelta{
		Points:       d.Points + o.Points,
		Wins:         d.Wins + o.Wins,
		Draws:        d.Draws + o.Draws,
		Losses:       d.Losses + o.Losses,
		GoalsFor:     d.GoalsFor + o.GoalsFor,
		GoalsAgainst: d.GoalsAgainst + o.GoalsAgainst,
	}
}

func (d StatsDelta) Sub(o StatsDelta) StatsDelta {
	return d.Add(o.Neg())
}

func (d StatsDelta) Neg() StatsDelta {
	return StatsDelta{
		Points:       -d.Points,
		Wins:         -d.Wins,
		Draws:        -d.Draws,
		Losses:       -d.Losses,
		GoalsFor:     -d.GoalsFor,
		GoalsAgainst: -d.GoalsAgainst,
	}
}

func (d StatsDelta) IsZero() bool {
	return d == StatsDelta{}
}
