package game

const (
	EffectIgnored EffectKind = iota
	EffectHit
	EffectMiss
	EffectRevealed
	EffectEliminated
	EffectTick
)

type (
	EffectKind int

	// Effect describes what a transition did. Outcome is set only on the
	// transition that finished the session.
	Effect struct {
		Kind    EffectKind
		Letters []rune
		Outcome *Outcome
	}

	Outcome struct {
		Won          bool
		TimeExpired  bool
		ScoreDelta   int
		PointsSpent  int
		HintsUsed    HintSet
		WrongGuesses int
		Difficulty   Difficulty
		Word         string
		Eligibility  Eligibility
	}

	// Eligibility is the input to achievement awarding.
	Eligibility struct {
		WonGame        bool
		WasPerfect     bool
		HintTypesUsed  HintSet
		WinStreakAfter int
		Difficulty     Difficulty
	}
)

func (k EffectKind) String() string {
	return [...]string{"ignored", "hit", "miss", "revealed", "eliminated", "tick"}[k]
}

func (k EffectKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (s Session) outcome() *Outcome {
	won := s.status == StatusWon

	delta := 0
	streak := 0
	if won {
		delta = s.difficulty.Points()
		streak = s.winStreak + 1
	}

	return &Outcome{
		Won:          won,
		TimeExpired:  s.timeExpired,
		ScoreDelta:   delta,
		PointsSpent:  s.pointsSpent,
		HintsUsed:    s.hintsUsed,
		WrongGuesses: s.wrongGuesses,
		Difficulty:   s.difficulty,
		Word:         s.word,
		Eligibility: Eligibility{
			WonGame:        won,
			WasPerfect:     s.wrongGuesses == 0,
			HintTypesUsed:  s.hintsUsed,
			WinStreakAfter: streak,
			Difficulty:     s.difficulty,
		},
	}
}
