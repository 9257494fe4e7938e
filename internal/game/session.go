package game

import (
	"errors"
	"strings"
)

const (
	StatusActive Status = iota
	StatusWon
	StatusLost
)

var (
	ErrEmptyWord           = errors.New("word is empty")
	ErrNoLetters           = errors.New("word has no letters to guess")
	ErrUnknownDifficulty   = errors.New("unknown difficulty")
	ErrSessionOver         = errors.New("session is over")
	ErrInsufficientBalance = errors.New("insufficient point balance")
	ErrNoEligibleTargets   = errors.New("no eligible letters")
)

type (
	Status int

	StartParams struct {
		Word         string
		Hint         string
		Topic        string
		Difficulty   Difficulty
		PointBalance int
		WinStreak    int
	}

	// Session is one round of the game. It is a value: every transition
	// returns a new Session and leaves the receiver untouched.
	Session struct {
		word       string
		hint       string
		topic      string
		difficulty Difficulty

		target     LetterSet
		guessed    LetterSet
		revealed   LetterSet
		eliminated LetterSet

		wrongGuesses    int
		maxWrongGuesses int
		hintsUsed       HintSet

		pointBalance int
		pointsSpent  int

		timeRemaining int
		status        Status
		timeExpired   bool

		winStreak int
	}
)

func Start(p StartParams) (Session, error) {
	word := strings.TrimSpace(p.Word)
	if word == "" {
		return Session{}, ErrEmptyWord
	}
	target := lettersOf(word)
	if target.Empty() {
		return Session{}, ErrNoLetters
	}
	if !p.Difficulty.Valid() {
		return Session{}, ErrUnknownDifficulty
	}

	return Session{
		word:            word,
		hint:            p.Hint,
		topic:           p.Topic,
		difficulty:      p.Difficulty,
		target:          target,
		maxWrongGuesses: p.Difficulty.MaxWrongGuesses(),
		pointBalance:    max(p.PointBalance, 0),
		timeRemaining:   p.Difficulty.TimeLimitSeconds(),
		status:          StatusActive,
		winStreak:       max(p.WinStreak, 0),
	}, nil
}

// GuessLetter applies a player guess. Guesses on a finished session, repeated
// letters and non-letters are ignored without changing anything.
func (s Session) GuessLetter(r rune) (Session, Effect) {
	if s.status != StatusActive || !IsLetter(r) || s.guessed.Has(r) {
		return s, Effect{Kind: EffectIgnored}
	}

	letter := toLower(r)
	s.guessed = s.guessed.With(letter)

	if !s.target.Has(letter) {
		s.wrongGuesses++
		if s.wrongGuesses >= s.maxWrongGuesses {
			s.status = StatusLost
			return s, Effect{Kind: EffectMiss, Letters: []rune{letter}, Outcome: s.outcome()}
		}
		return s, Effect{Kind: EffectMiss, Letters: []rune{letter}}
	}

	if s.solved() {
		s.status = StatusWon
		return s, Effect{Kind: EffectHit, Letters: []rune{letter}, Outcome: s.outcome()}
	}
	return s, Effect{Kind: EffectHit, Letters: []rune{letter}}
}

// Tick consumes one second of the time budget.
func (s Session) Tick() (Session, Effect) {
	if s.status != StatusActive {
		return s, Effect{Kind: EffectIgnored}
	}

	s.timeRemaining--
	if s.timeRemaining <= 0 {
		s.timeRemaining = 0
		s.status = StatusLost
		s.timeExpired = true
		return s, Effect{Kind: EffectTick, Outcome: s.outcome()}
	}
	return s, Effect{Kind: EffectTick}
}

func (s Session) solved() bool {
	return s.target&^s.guessed == 0
}

// Masked renders the word with every unguessed letter replaced by "_".
func (s Session) Masked() string {
	var b strings.Builder
	b.Grow(len(s.word))
	for _, r := range s.word {
		if IsLetter(r) && !s.guessed.Has(r) {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Outcome returns the final result of a finished session.
func (s Session) Outcome() (Outcome, bool) {
	if s.status == StatusActive {
		return Outcome{}, false
	}
	return *s.outcome(), true
}

func (s Session) Word() string              { return s.word }
func (s Session) Hint() string              { return s.hint }
func (s Session) Topic() string             { return s.topic }
func (s Session) Difficulty() Difficulty    { return s.difficulty }
func (s Session) Guessed() LetterSet        { return s.guessed }
func (s Session) RevealedByHint() LetterSet { return s.revealed }
func (s Session) Eliminated() LetterSet     { return s.eliminated }
func (s Session) WrongGuesses() int         { return s.wrongGuesses }
func (s Session) MaxWrongGuesses() int      { return s.maxWrongGuesses }
func (s Session) HintsUsed() HintSet        { return s.hintsUsed }
func (s Session) PointBalance() int         { return s.pointBalance }
func (s Session) PointsSpent() int          { return s.pointsSpent }
func (s Session) TimeRemaining() int        { return s.timeRemaining }
func (s Session) Status() Status            { return s.status }
func (s Session) TimeExpired() bool         { return s.timeExpired }
func (s Session) Active() bool              { return s.status == StatusActive }

// WrongLetters are player guesses absent from the word. Eliminated letters
// are not included.
func (s Session) WrongLetters() LetterSet {
	return s.guessed &^ s.target &^ s.eliminated
}

func (st Status) String() string {
	switch st {
	case StatusActive:
		return "active"
	case StatusWon:
		return "won"
	case StatusLost:
		return "lost"
	default:
		return "unknown"
	}
}

func (st Status) MarshalText() ([]byte, error) {
	return []byte(st.String()), nil
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + ('a' - 'A')
	}
	return r
}
