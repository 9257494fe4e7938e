package game

const (
	HintReveal    Hint = "reveal"
	HintEliminate Hint = "eliminate"

	RevealCost      = 3
	EliminateCost   = 2
	EliminateLetter = 3
)

type (
	Hint string

	// HintSet records which hint kinds were bought during a session.
	HintSet uint8
)

func (h HintSet) Has(hint Hint) bool {
	return h&hintBit(hint) != 0
}

func (h HintSet) With(hint Hint) HintSet {
	return h | hintBit(hint)
}

func (h HintSet) Hints() []Hint {
	res := make([]Hint, 0, 2) //nolint:mnd // two hint kinds
	for _, hint := range []Hint{HintReveal, HintEliminate} {
		if h.Has(hint) {
			res = append(res, hint)
		}
	}
	return res
}

func hintBit(hint Hint) HintSet {
	switch hint {
	case HintReveal:
		return 1
	case HintEliminate:
		return 2 //nolint:mnd // second bit
	default:
		return 0
	}
}

// RevealLetter spends RevealCost points to uncover one letter of the word,
// picked uniformly among the distinct letters not guessed yet.
func (s Session) RevealLetter(rng Rand) (Session, Effect, error) {
	if s.status != StatusActive {
		return s, Effect{Kind: EffectIgnored}, ErrSessionOver
	}
	if s.pointBalance < RevealCost {
		return s, Effect{Kind: EffectIgnored}, ErrInsufficientBalance
	}
	candidates := (s.target &^ s.guessed).Letters()
	if len(candidates) == 0 {
		return s, Effect{Kind: EffectIgnored}, ErrNoEligibleTargets
	}

	letter := candidates[rng.IntN(len(candidates))]
	s.guessed = s.guessed.With(letter)
	s.revealed = s.revealed.With(letter)
	s.spend(RevealCost, HintReveal)

	effect := Effect{Kind: EffectRevealed, Letters: []rune{letter}}
	if s.solved() {
		s.status = StatusWon
		effect.Outcome = s.outcome()
	}
	return s, effect, nil
}

// EliminateLetters spends EliminateCost points to rule out EliminateLetter
// letters absent from the word. Eliminated letters never count as wrong guesses.
func (s Session) EliminateLetters(rng Rand) (Session, Effect, error) {
	if s.status != StatusActive {
		return s, Effect{Kind: EffectIgnored}, ErrSessionOver
	}
	if s.pointBalance < EliminateCost {
		return s, Effect{Kind: EffectIgnored}, ErrInsufficientBalance
	}
	candidates := (allLetters &^ s.target &^ s.guessed).Letters()
	if len(candidates) < EliminateLetter {
		return s, Effect{Kind: EffectIgnored}, ErrNoEligibleTargets
	}

	// partial Fisher-Yates over the candidates
	for i := range EliminateLetter {
		j := i + rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	picked := candidates[:EliminateLetter]
	for _, letter := range picked {
		s.guessed = s.guessed.With(letter)
		s.eliminated = s.eliminated.With(letter)
	}
	s.spend(EliminateCost, HintEliminate)

	return s, Effect{Kind: EffectEliminated, Letters: picked}, nil
}

func (s *Session) spend(cost int, hint Hint) {
	s.pointBalance -= cost
	s.pointsSpent += cost
	s.hintsUsed = s.hintsUsed.With(hint)
}
