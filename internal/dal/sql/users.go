package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"golang.org/x/sync/errgroup"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string, registeredAt time.Time) (*dal.User, error) {
	var user *dal.User
	err := r.transact(ctx, func(tx *Repository) error {
		id, inserted, err := tx.insert(ctx, r.queries.InsertUserQuery(username, passwordHash, registeredAt))
		if err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if !inserted {
			return dal.ErrAlreadyExists
		}

		if err = tx.SaveSettings(ctx, dal.DefaultSettings(id)); err != nil {
			return fmt.Errorf("insert default settings: %w", err)
		}

		user = &dal.User{
			ID:           id,
			Username:     username,
			PasswordHash: passwordHash,
			RegisterDate: registeredAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindUserByID(ctx context.Context, id int64) (*dal.User, error) {
	return r.findUser(ctx, squirrel.Eq{"id": id})
}

func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*dal.User, error) {
	return r.findUser(ctx, squirrel.Eq{"username": username})
}

func (r *Repository) findUser(ctx context.Context, where squirrel.Eq) (*dal.User, error) {
	row, err := r.queryRow(ctx, r.queries.FindUserQuery(where))
	if err != nil {
		return nil, err
	}

	user, err := hydrateUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// FindProfile loads the user together with settings and awarded achievements.
func (r *Repository) FindProfile(ctx context.Context, userID int64) (*dal.Profile, error) {
	var (
		res          dal.Profile
		settings     *dal.Settings
		achievements []dal.UserAchievement
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		user, err := r.FindUserByID(egCtx, userID)
		if err != nil {
			return err
		}
		res.User = *user
		return nil
	})
	eg.Go(func() error {
		s, err := r.FindSettings(egCtx, userID)
		if err != nil && !errors.Is(err, dal.ErrNotFound) {
			return err
		}
		settings = s
		return nil
	})
	eg.Go(func() error {
		a, err := r.FindUserAchievements(egCtx, userID)
		if err != nil {
			return err
		}
		achievements = a
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	res.Settings = dal.DefaultSettings(userID)
	if settings != nil {
		res.Settings = *settings
	}
	res.Achievements = achievements
	return &res, nil
}

func (r *Repository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	return r.updateUser(ctx, r.queries.UpdateLastLoginQuery(userID, at), "update last login")
}

func (r *Repository) UpdateUserStats(ctx context.Context, userID int64, stats dal.UserStats) error {
	return r.updateUser(ctx, r.queries.UpdateUserStatsQuery(userID, stats), "update user stats")
}

func (r *Repository) ApplyGameResult(ctx context.Context, userID int64, res dal.GameResult) error {
	return r.updateUser(ctx, r.queries.ApplyGameResultQuery(userID, res), "apply game result")
}

func (r *Repository) AdjustScore(ctx context.Context, userID int64, delta int) error {
	return r.updateUser(ctx, r.queries.AdjustScoreQuery(userID, delta), "adjust score")
}

func (r *Repository) updateUser(ctx context.Context, query squirrel.Sqlizer, op string) error {
	res, err := r.exec(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return dal.ErrNotFound
	}
	return nil
}

func (r *Repository) FindLeaderboard(ctx context.Context, limit uint64) (*dal.Leaderboard, error) {
	res := &dal.Leaderboard{Entries: make([]dal.LeaderboardEntry, 0, limit)}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		rows, err := r.query(egCtx, r.queries.TopScoresQuery(limit))
		if err != nil {
			return fmt.Errorf("find top scores: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var e dal.LeaderboardEntry
			if err = rows.Scan(&e.UserID, &e.Username, &e.Score, &e.Wins); err != nil {
				return fmt.Errorf("scan leaderboard entry: %w", err)
			}
			res.Entries = append(res.Entries, e)
		}
		if rows.Err() != nil {
			return fmt.Errorf("iterate leaderboard: %w", rows.Err())
		}
		return nil
	})
	eg.Go(func() error {
		row, err := r.queryRow(egCtx, r.queries.CountUsersQuery())
		if err != nil {
			return err
		}
		if err = row.Scan(&res.TotalPlayers); err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func hydrateUser(row scanner) (*dal.User, error) {
	var (
		u         dal.User
		lastLogin sql.NullTime
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Score, &u.TotalGames, &u.Wins, &u.WinStreak,
		&u.RegisterDate, &lastLogin); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}
