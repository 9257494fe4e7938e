package wordsource

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

// BankSource picks words from the locally imported word bank.
type BankSource struct {
	repo dal.WordBankRepository
}

func NewBankSource(repo dal.WordBankRepository) *BankSource {
	return &BankSource{repo: repo}
}

// Generate prefers a word of the requested topic and falls back to any topic
// when the bank has none left for it.
func (s *BankSource) Generate(ctx context.Context, req Request) (Word, error) {
	minLen, maxLen := req.Difficulty.WordLength()
	filter := dal.BankWordFilter{
		Topic:      req.Topic,
		Difficulty: string(req.Difficulty),
		MinLength:  minLen,
		MaxLength:  maxLen,
		Exclude:    lowerAll(req.Avoid),
	}

	w, err := s.repo.FindRandomBankWord(ctx, filter)
	if errors.Is(err, dal.ErrNotFound) && filter.Topic != "" {
		filter.Topic = ""
		w, err = s.repo.FindRandomBankWord(ctx, filter)
	}
	if errors.Is(err, dal.ErrNotFound) {
		return Word{}, ErrNoWord
	}
	if err != nil {
		return Word{}, fmt.Errorf("find bank word: %w", err)
	}

	topic := w.Topic
	if topic == "" {
		topic = req.Topic
	}
	return Word{Word: w.Word, Hint: w.Hint, Topic: topic}, nil
}

func (s *BankSource) Fact(context.Context, string) (string, error) {
	return "", ErrNoFact
}

func lowerAll(words []string) []string {
	res := make([]string, 0, len(words))
	for _, w := range words {
		res = append(res, strings.ToLower(w))
	}
	return res
}
