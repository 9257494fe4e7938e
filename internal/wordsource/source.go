package wordsource

import (
	"context"
	"errors"

	"github.com/Roma7-7-7/readyword/internal/game"
)

var (
	ErrUpstream        = errors.New("word source upstream error")
	ErrInvalidResponse = errors.New("word source returned invalid response")
	ErrNoWord          = errors.New("no word available")
	ErrNoFact          = errors.New("no fact available")
)

type (
	Request struct {
		Topic      string
		Difficulty game.Difficulty
		Avoid      []string
	}

	Word struct {
		Word  string `json:"word"`
		Hint  string `json:"hint"`
		Topic string `json:"-"`
	}

	Source interface {
		Generate(ctx context.Context, req Request) (Word, error)
		Fact(ctx context.Context, word string) (string, error)
	}
)
