package sql

import (
	"context"
	"fmt"
	"time"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

func (r *Repository) FindAchievements(ctx context.Context) ([]dal.Achievement, error) {
	rows, err := r.query(ctx, r.queries.FindAchievementsQuery())
	if err != nil {
		return nil, fmt.Errorf("find achievements: %w", err)
	}
	defer rows.Close()

	res := make([]dal.Achievement, 0, 5) //nolint:mnd // catalog size
	for rows.Next() {
		var a dal.Achievement
		if err = rows.Scan(&a.ID, &a.Title, &a.Description, &a.Icon); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		res = append(res, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate achievements: %w", rows.Err())
	}
	return res, nil
}

func (r *Repository) FindUserAchievements(ctx context.Context, userID int64) ([]dal.UserAchievement, error) {
	rows, err := r.query(ctx, r.queries.FindUserAchievementsQuery(userID))
	if err != nil {
		return nil, fmt.Errorf("find user achievements: %w", err)
	}
	defer rows.Close()

	res := make([]dal.UserAchievement, 0)
	for rows.Next() {
		var a dal.UserAchievement
		if err = rows.Scan(&a.ID, &a.Title, &a.Description, &a.Icon, &a.DateAwarded); err != nil {
			return nil, fmt.Errorf("scan user achievement: %w", err)
		}
		res = append(res, a)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate user achievements: %w", rows.Err())
	}
	return res, nil
}

func (r *Repository) AwardAchievement(ctx context.Context, userID int64, achievementID string, at time.Time) error {
	res, err := r.exec(ctx, r.queries.InsertUserAchievementQuery(userID, achievementID, at))
	if err != nil {
		return fmt.Errorf("award achievement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("award achievement: rows affected: %w", err)
	}
	if affected == 0 {
		return dal.ErrAlreadyExists
	}
	return nil
}
