package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

func (r *Repository) AddBankWord(ctx context.Context, word dal.BankWord) error {
	if _, err := r.exec(ctx, r.queries.UpsertBankWordQuery(word)); err != nil {
		return fmt.Errorf("add bank word: %w", err)
	}
	return nil
}

func (r *Repository) FindRandomBankWord(ctx context.Context, filter dal.BankWordFilter) (*dal.BankWord, error) {
	row, err := r.queryRow(ctx, r.queries.FindRandomBankWordQuery(filter))
	if err != nil {
		return nil, err
	}

	var w dal.BankWord
	if err = row.Scan(&w.Word, &w.Hint, &w.Topic, &w.Difficulty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find random bank word: %w", err)
	}
	return &w, nil
}

func (r *Repository) CountBankWords(ctx context.Context) (int, error) {
	row, err := r.queryRow(ctx, r.queries.CountBankWordsQuery())
	if err != nil {
		return 0, err
	}
	var count int
	if err = row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count bank words: %w", err)
	}
	return count, nil
}
