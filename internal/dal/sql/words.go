package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

// SaveWord stores a served word. A word that was served before keeps its id
// and only has its last use refreshed.
func (r *Repository) SaveWord(ctx context.Context, word, hint string, at time.Time) (*dal.Word, error) {
	var res *dal.Word
	err := r.transact(ctx, func(tx *Repository) error {
		id, inserted, err := tx.insert(ctx, r.queries.InsertWordQuery(word, hint, at))
		if err != nil {
			return fmt.Errorf("insert word: %w", err)
		}
		if inserted {
			res = &dal.Word{ID: id, Word: word, Hint: hint, DateUsed: at}
			return nil
		}

		existing, err := tx.findWord(ctx, word)
		if err != nil {
			return err
		}
		if _, err = tx.exec(ctx, r.queries.TouchWordQuery(existing.ID, at)); err != nil {
			return fmt.Errorf("touch word: %w", err)
		}
		existing.DateUsed = at
		res = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Repository) findWord(ctx context.Context, word string) (*dal.Word, error) {
	row, err := r.queryRow(ctx, r.queries.FindWordByTextQuery(word))
	if err != nil {
		return nil, err
	}

	var w dal.Word
	if err = row.Scan(&w.ID, &w.Word, &w.Hint, &w.DateUsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find word: %w", err)
	}
	return &w, nil
}

func (r *Repository) FindWords(ctx context.Context, limit uint64) ([]dal.Word, error) {
	rows, err := r.query(ctx, r.queries.FindWordsQuery(limit))
	if err != nil {
		return nil, fmt.Errorf("find words: %w", err)
	}
	defer rows.Close()

	res := make([]dal.Word, 0, limit)
	for rows.Next() {
		var w dal.Word
		if err = rows.Scan(&w.ID, &w.Word, &w.Hint, &w.DateUsed); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		res = append(res, w)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate words: %w", rows.Err())
	}
	return res, nil
}

func (r *Repository) FindRecentWords(ctx context.Context, limit uint64) ([]string, error) {
	words, err := r.FindWords(ctx, limit)
	if err != nil {
		return nil, err
	}
	res := make([]string, len(words))
	for i, w := range words {
		res[i] = w.Word
	}
	return res, nil
}

// DeleteWords clears served words along with every play that references them.
func (r *Repository) DeleteWords(ctx context.Context) error {
	return r.transact(ctx, func(tx *Repository) error {
		if _, err := tx.exec(ctx, r.queries.DeleteAllWordPlaysQuery()); err != nil {
			return fmt.Errorf("delete word plays: %w", err)
		}
		if _, err := tx.exec(ctx, r.queries.DeleteWordsQuery()); err != nil {
			return fmt.Errorf("delete words: %w", err)
		}
		return nil
	})
}

func (r *Repository) RecordWordPlay(ctx context.Context, userID, wordID int64, guessedCorrectly bool, at time.Time) error {
	if _, err := r.exec(ctx, r.queries.InsertWordPlayQuery(userID, wordID, guessedCorrectly, at)); err != nil {
		return fmt.Errorf("record word play: %w", err)
	}
	return nil
}

func (r *Repository) FindWordHistory(ctx context.Context, userID int64, limit uint64) ([]dal.WordPlay, error) {
	rows, err := r.query(ctx, r.queries.FindWordHistoryQuery(userID, limit))
	if err != nil {
		return nil, fmt.Errorf("find word history: %w", err)
	}
	defer rows.Close()

	res := make([]dal.WordPlay, 0, limit)
	for rows.Next() {
		var p dal.WordPlay
		if err = rows.Scan(&p.WordID, &p.Word, &p.Hint, &p.GuessedCorrectly, &p.DatePlayed); err != nil {
			return nil, fmt.Errorf("scan word play: %w", err)
		}
		res = append(res, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate word history: %w", rows.Err())
	}
	return res, nil
}
