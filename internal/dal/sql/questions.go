package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

func (r *Repository) InsertQuestion(ctx context.Context, userID int64, question, response string, at time.Time) (*dal.Question, error) {
	id, _, err := r.insert(ctx, r.queries.InsertQuestionQuery(userID, question, response, at))
	if err != nil {
		return nil, fmt.Errorf("insert question: %w", err)
	}
	return &dal.Question{
		ID:        id,
		UserID:    userID,
		Question:  question,
		Response:  response,
		Timestamp: at,
	}, nil
}

func (r *Repository) FindQuestions(ctx context.Context, userID int64, limit uint64) ([]dal.Question, error) {
	rows, err := r.query(ctx, r.queries.FindQuestionsQuery(userID, limit))
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	defer rows.Close()

	res := make([]dal.Question, 0, limit)
	for rows.Next() {
		var q dal.Question
		if err = rows.Scan(&q.ID, &q.UserID, &q.Question, &q.Response, &q.Timestamp); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		res = append(res, q)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate questions: %w", rows.Err())
	}
	return res, nil
}

func (r *Repository) DeleteQuestions(ctx context.Context, userID int64) error {
	if _, err := r.exec(ctx, r.queries.DeleteQuestionsQuery(userID)); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	return nil
}
