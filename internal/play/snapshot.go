package play

import (
	"time"

	"github.com/Roma7-7-7/readyword/internal/game"
)

type (
	// Snapshot is the client view of a live session. Word is only filled in
	// once the session is over.
	Snapshot struct {
		ID              string          `json:"id"`
		Masked          string          `json:"masked"`
		Word            string          `json:"word,omitempty"`
		Hint            string          `json:"hint"`
		Topic           string          `json:"topic"`
		Difficulty      game.Difficulty `json:"difficulty"`
		Status          game.Status     `json:"status"`
		Guessed         string          `json:"guessed_letters"`
		Wrong           string          `json:"wrong_letters"`
		Eliminated      string          `json:"eliminated_letters"`
		Revealed        string          `json:"revealed_letters"`
		WrongGuesses    int             `json:"wrong_guesses"`
		MaxWrongGuesses int             `json:"max_wrong_guesses"`
		TimeRemaining   int             `json:"time_remaining"`
		PointBalance    int             `json:"point_balance"`
		PointsSpent     int             `json:"points_spent"`
		HintsUsed       []game.Hint     `json:"hints_used"`
		LastEffect      game.EffectKind `json:"last_effect"`
		EffectLetters   string          `json:"effect_letters,omitempty"`
		Result          *Result         `json:"result,omitempty"`
		StartedAt       time.Time       `json:"started_at"`
		FinishedAt      *time.Time      `json:"finished_at,omitempty"`
	}

	Result struct {
		Won         bool `json:"won"`
		TimeExpired bool `json:"time_expired"`
		ScoreDelta  int  `json:"score_delta"`
		PointsSpent int  `json:"points_spent"`
	}
)

func (l *live) snapshot() Snapshot {
	s := l.session
	res := Snapshot{
		ID:              l.id,
		Masked:          s.Masked(),
		Hint:            s.Hint(),
		Topic:           s.Topic(),
		Difficulty:      s.Difficulty(),
		Status:          s.Status(),
		Guessed:         s.Guessed().String(),
		Wrong:           s.WrongLetters().String(),
		Eliminated:      s.Eliminated().String(),
		Revealed:        s.RevealedByHint().String(),
		WrongGuesses:    s.WrongGuesses(),
		MaxWrongGuesses: s.MaxWrongGuesses(),
		TimeRemaining:   s.TimeRemaining(),
		PointBalance:    s.PointBalance(),
		PointsSpent:     s.PointsSpent(),
		HintsUsed:       s.HintsUsed().Hints(),
		LastEffect:      l.lastEffect.Kind,
		EffectLetters:   string(l.lastEffect.Letters),
		StartedAt:       l.startedAt,
	}

	if outcome, ok := s.Outcome(); ok {
		finished := l.finishedAt
		res.Word = s.Word()
		res.FinishedAt = &finished
		res.Result = &Result{
			Won:         outcome.Won,
			TimeExpired: outcome.TimeExpired,
			ScoreDelta:  outcome.ScoreDelta,
			PointsSpent: outcome.PointsSpent,
		}
	}
	return res
}
