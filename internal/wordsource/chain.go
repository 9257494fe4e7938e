package wordsource

import (
	"context"
	"errors"
	"log/slog"
)

// Chain asks each source in order and returns the first success.
type Chain struct {
	sources []Source
	log     *slog.Logger
}

func NewChain(log *slog.Logger, sources ...Source) *Chain {
	return &Chain{sources: sources, log: log}
}

func (c *Chain) Generate(ctx context.Context, req Request) (Word, error) {
	var errs []error
	for i, s := range c.sources {
		w, err := s.Generate(ctx, req)
		if err == nil {
			return w, nil
		}
		if ctx.Err() != nil {
			return Word{}, ctx.Err()
		}
		c.log.WarnContext(ctx, "word source failed", "source", i, "error", err)
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Word{}, ErrNoWord
	}
	return Word{}, errors.Join(errs...)
}

func (c *Chain) Fact(ctx context.Context, word string) (string, error) {
	var errs []error
	for i, s := range c.sources {
		fact, err := s.Fact(ctx, word)
		if err == nil {
			return fact, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !errors.Is(err, ErrNoFact) {
			c.log.WarnContext(ctx, "fact source failed", "source", i, "error", err)
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return "", ErrNoFact
	}
	return "", errors.Join(errs...)
}
