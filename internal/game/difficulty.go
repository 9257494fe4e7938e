package game

import (
	"fmt"
	"strings"
	"time"
)

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"

	DefaultDifficulty = DifficultyMedium
)

type (
	Difficulty string

	tier struct {
		maxWrongGuesses int
		timeLimit       int
		points          int
		minLength       int
		maxLength       int
		complexity      string
	}
)

var tiers = map[Difficulty]tier{ //nolint:gochecknoglobals // fixed tier table
	DifficultyEasy:   {maxWrongGuesses: 8, timeLimit: 90, points: 1, minLength: 4, maxLength: 6, complexity: "simple"},
	DifficultyMedium: {maxWrongGuesses: 6, timeLimit: 60, points: 3, minLength: 4, maxLength: 12, complexity: "moderate"},
	DifficultyHard:   {maxWrongGuesses: 4, timeLimit: 45, points: 5, minLength: 8, maxLength: 12, complexity: "challenging"},
}

func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
	}
	return d, nil
}

func Difficulties() []Difficulty {
	return []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}
}

func (d Difficulty) Valid() bool {
	_, ok := tiers[d]
	return ok
}

func (d Difficulty) MaxWrongGuesses() int {
	return tiers[d].maxWrongGuesses
}

// TimeLimitSeconds is the number of ticks a fresh session starts with.
func (d Difficulty) TimeLimitSeconds() int {
	return tiers[d].timeLimit
}

func (d Difficulty) TimeLimit() time.Duration {
	return time.Duration(tiers[d].timeLimit) * time.Second
}

// Points awarded for winning a session on this tier.
func (d Difficulty) Points() int {
	return tiers[d].points
}

// WordLength is the inclusive letter count range words of this tier should have.
func (d Difficulty) WordLength() (int, int) {
	t := tiers[d]
	return t.minLength, t.maxLength
}

func (d Difficulty) Complexity() string {
	return tiers[d].complexity
}

func (d Difficulty) String() string {
	return string(d)
}
