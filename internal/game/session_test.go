package game

import (
	"errors"
	"testing"
)

type fixedRand struct {
	vals []int
	pos  int
}

func (r *fixedRand) IntN(n int) int {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[r.pos%len(r.vals)]
	r.pos++
	return v % n
}

func mustStart(t *testing.T, p StartParams) Session {
	t.Helper()
	s, err := Start(p)
	if err != nil {
		t.Fatalf("Start(%+v) error = %v", p, err)
	}
	return s
}

func TestStart_TierTable(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		maxWrong   int
		seconds    int
		points     int
	}{
		{DifficultyEasy, 8, 90, 1},
		{DifficultyMedium, 6, 60, 3},
		{DifficultyHard, 4, 45, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.difficulty), func(t *testing.T) {
			s := mustStart(t, StartParams{Word: "shelter", Difficulty: tt.difficulty})
			if s.MaxWrongGuesses() != tt.maxWrong {
				t.Errorf("MaxWrongGuesses() = %d, want %d", s.MaxWrongGuesses(), tt.maxWrong)
			}
			if s.TimeRemaining() != tt.seconds {
				t.Errorf("TimeRemaining() = %d, want %d", s.TimeRemaining(), tt.seconds)
			}
			if tt.difficulty.Points() != tt.points {
				t.Errorf("Points() = %d, want %d", tt.difficulty.Points(), tt.points)
			}
			if s.Status() != StatusActive {
				t.Errorf("Status() = %v, want active", s.Status())
			}
			if !s.Guessed().Empty() || s.WrongGuesses() != 0 || s.HintsUsed() != 0 {
				t.Errorf("fresh session is not empty: %+v", s)
			}
		})
	}
}

func TestStart_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    StartParams
		want error
	}{
		{"empty word", StartParams{Word: "", Difficulty: DifficultyEasy}, ErrEmptyWord},
		{"blank word", StartParams{Word: "   ", Difficulty: DifficultyEasy}, ErrEmptyWord},
		{"no letters", StartParams{Word: "9-1-1", Difficulty: DifficultyEasy}, ErrNoLetters},
		{"unknown difficulty", StartParams{Word: "flood", Difficulty: "extreme"}, ErrUnknownDifficulty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Start(tt.p)
			if !errors.Is(err, tt.want) {
				t.Errorf("Start() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMasked_PassesThroughNonLetters(t *testing.T) {
	s := mustStart(t, StartParams{Word: "First-Aid Kit", Difficulty: DifficultyMedium})
	if got, want := s.Masked(), "_____-___ ___"; got != want {
		t.Errorf("Masked() = %q, want %q", got, want)
	}

	s, _ = s.GuessLetter('i')
	if got, want := s.Masked(), "_i___-_i_ _i_"; got != want {
		t.Errorf("Masked() = %q, want %q", got, want)
	}
}

func TestGuessLetter_FireExample(t *testing.T) {
	s := mustStart(t, StartParams{Word: "FIRE", Difficulty: DifficultyMedium})

	steps := []struct {
		letter rune
		wrong  int
		status Status
	}{
		{'f', 0, StatusActive},
		{'x', 1, StatusActive},
		{'i', 1, StatusActive},
		{'r', 1, StatusActive},
		{'e', 1, StatusWon},
	}

	var effect Effect
	for _, step := range steps {
		s, effect = s.GuessLetter(step.letter)
		if s.WrongGuesses() != step.wrong {
			t.Errorf("after %q WrongGuesses() = %d, want %d", step.letter, s.WrongGuesses(), step.wrong)
		}
		if s.Status() != step.status {
			t.Errorf("after %q Status() = %v, want %v", step.letter, s.Status(), step.status)
		}
	}

	if s.Masked() != "FIRE" {
		t.Errorf("Masked() = %q, want FIRE", s.Masked())
	}
	if effect.Outcome == nil {
		t.Fatal("winning guess has no outcome")
	}
	if !effect.Outcome.Won || effect.Outcome.ScoreDelta != 3 {
		t.Errorf("outcome = %+v, want won with delta 3", effect.Outcome)
	}
}

func TestGuessLetter_FloodHardExample(t *testing.T) {
	s := mustStart(t, StartParams{Word: "FLOOD", Difficulty: DifficultyHard})

	var effect Effect
	for i, r := range []rune{'q', 'z', 'x', 'j'} {
		if s.Status() != StatusActive {
			t.Fatalf("lost before guess %d", i+1)
		}
		s, effect = s.GuessLetter(r)
	}

	if s.Status() != StatusLost {
		t.Errorf("Status() = %v, want lost", s.Status())
	}
	if s.WrongGuesses() != 4 {
		t.Errorf("WrongGuesses() = %d, want 4", s.WrongGuesses())
	}
	if effect.Outcome == nil || effect.Outcome.Won || effect.Outcome.TimeExpired {
		t.Errorf("outcome = %+v, want guess-based loss", effect.Outcome)
	}
	if effect.Outcome.ScoreDelta != 0 || effect.Outcome.Eligibility.WinStreakAfter != 0 {
		t.Errorf("outcome = %+v, want zero delta and reset streak", effect.Outcome)
	}
}

func TestGuessLetter_WinsInAnyOrder(t *testing.T) {
	orders := [][]rune{
		{'t', 's', 'u', 'n', 'a', 'm', 'i'},
		{'i', 'm', 'a', 'n', 'u', 's', 't'},
		{'N', 'A', 'M', 'I', 'T', 'S', 'U'},
	}

	for _, order := range orders {
		t.Run(string(order), func(t *testing.T) {
			s := mustStart(t, StartParams{Word: "Tsunami", Difficulty: DifficultyEasy})
			for _, r := range order {
				s, _ = s.GuessLetter(r)
			}
			if s.Status() != StatusWon {
				t.Errorf("Status() = %v, want won", s.Status())
			}
		})
	}
}

func TestGuessLetter_LosesExactlyAtLimit(t *testing.T) {
	for _, d := range Difficulties() {
		t.Run(string(d), func(t *testing.T) {
			s := mustStart(t, StartParams{Word: "ember", Difficulty: d})
			wrong := []rune("qwzxvjkyp")
			for i := range d.MaxWrongGuesses() {
				if s.Status() != StatusActive {
					t.Fatalf("lost after %d wrong guesses, limit %d", i, d.MaxWrongGuesses())
				}
				s, _ = s.GuessLetter(wrong[i])
			}
			if s.Status() != StatusLost {
				t.Errorf("Status() = %v, want lost", s.Status())
			}
		})
	}
}

func TestGuessLetter_Ignored(t *testing.T) {
	s := mustStart(t, StartParams{Word: "drought", Difficulty: DifficultyMedium})
	s, _ = s.GuessLetter('x')
	s, _ = s.GuessLetter('d')

	tests := []struct {
		name   string
		letter rune
	}{
		{"repeated wrong", 'x'},
		{"repeated hit", 'd'},
		{"repeated uppercase", 'D'},
		{"digit", '7'},
		{"space", ' '},
		{"non latin", 'é'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effect := s.GuessLetter(tt.letter)
			if effect.Kind != EffectIgnored {
				t.Errorf("effect = %v, want ignored", effect.Kind)
			}
			if next != s {
				t.Errorf("session changed: %+v -> %+v", s, next)
			}
		})
	}
}

func TestGuessLetter_AfterFinishIsIgnored(t *testing.T) {
	s := mustStart(t, StartParams{Word: "aid", Difficulty: DifficultyEasy})
	for _, r := range "aid" {
		s, _ = s.GuessLetter(r)
	}
	if s.Status() != StatusWon {
		t.Fatalf("Status() = %v, want won", s.Status())
	}

	next, effect := s.GuessLetter('z')
	if effect.Kind != EffectIgnored || effect.Outcome != nil || next != s {
		t.Errorf("guess after finish changed state: effect=%+v", effect)
	}
}

func TestTick_TimeExpiry(t *testing.T) {
	for _, d := range Difficulties() {
		t.Run(string(d), func(t *testing.T) {
			s := mustStart(t, StartParams{Word: "evacuate", Difficulty: d, WinStreak: 4})
			var effect Effect
			for i := range d.TimeLimitSeconds() {
				if s.Status() != StatusActive {
					t.Fatalf("finished after %d ticks", i)
				}
				s, effect = s.Tick()
			}

			if s.Status() != StatusLost || !s.TimeExpired() {
				t.Errorf("Status() = %v, TimeExpired() = %v, want lost by time", s.Status(), s.TimeExpired())
			}
			if s.WrongGuesses() != 0 {
				t.Errorf("WrongGuesses() = %d, want 0", s.WrongGuesses())
			}
			if effect.Outcome == nil || !effect.Outcome.TimeExpired {
				t.Fatalf("outcome = %+v, want time expired", effect.Outcome)
			}
			if effect.Outcome.Eligibility.WinStreakAfter != 0 {
				t.Errorf("WinStreakAfter = %d, want 0", effect.Outcome.Eligibility.WinStreakAfter)
			}

			late, lateEffect := s.Tick()
			if lateEffect.Kind != EffectIgnored || lateEffect.Outcome != nil || late != s {
				t.Errorf("late tick changed state: %+v", lateEffect)
			}
		})
	}
}

func TestOutcome_WinStreak(t *testing.T) {
	s := mustStart(t, StartParams{Word: "go", Difficulty: DifficultyHard, WinStreak: 2})
	if _, ok := s.Outcome(); ok {
		t.Fatal("active session reports an outcome")
	}
	s, _ = s.GuessLetter('g')
	s, _ = s.GuessLetter('o')

	out, ok := s.Outcome()
	if !ok {
		t.Fatal("finished session has no outcome")
	}
	if out.ScoreDelta != 5 || out.Eligibility.WinStreakAfter != 3 || !out.Eligibility.WasPerfect {
		t.Errorf("outcome = %+v", out)
	}
}
