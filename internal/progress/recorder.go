package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Roma7-7-7/readyword/internal/dal"
	"github.com/Roma7-7-7/readyword/internal/game"
	"github.com/Roma7-7-7/readyword/internal/play"
)

const (
	DefaultAttempts   = 3
	DefaultRetryDelay = 500 * time.Millisecond
)

// Recorder persists session outcomes: user counters, word history and
// achievements. It never reports failures back to the live session.
type Recorder struct {
	repo       dal.Repository
	attempts   int
	retryDelay time.Duration
	now        func() time.Time
	log        *slog.Logger
}

func NewRecorder(repo dal.Repository, attempts int, retryDelay time.Duration, log *slog.Logger) *Recorder {
	if attempts < 1 {
		attempts = 1
	}
	return &Recorder{
		repo:       repo,
		attempts:   attempts,
		retryDelay: retryDelay,
		now:        time.Now,
		log:        log,
	}
}

func (r *Recorder) Finished(ctx context.Context, f play.Finished) {
	var awarded []string
	err := r.retry(ctx, func() error {
		var err error
		awarded, err = r.record(ctx, f)
		return err
	})
	if err != nil {
		r.log.ErrorContext(ctx, "failed to record finished session",
			"sessionID", f.SessionID, "userID", f.UserID, "won", f.Outcome.Won, "error", err)
		return
	}

	r.log.InfoContext(ctx, "session recorded",
		"sessionID", f.SessionID, "userID", f.UserID, "won", f.Outcome.Won,
		"scoreDelta", f.Outcome.ScoreDelta, "pointsSpent", f.Outcome.PointsSpent, "achievements", awarded)
}

func (r *Recorder) Abandoned(ctx context.Context, a play.Abandoned) {
	err := r.retry(ctx, func() error {
		return r.repo.AdjustScore(ctx, a.UserID, -a.PointsSpent)
	})
	if err != nil {
		r.log.ErrorContext(ctx, "failed to record abandoned session spend",
			"sessionID", a.SessionID, "userID", a.UserID, "pointsSpent", a.PointsSpent, "error", err)
		return
	}
	r.log.DebugContext(ctx, "abandoned session spend recorded", "sessionID", a.SessionID, "pointsSpent", a.PointsSpent)
}

func (r *Recorder) record(ctx context.Context, f play.Finished) ([]string, error) {
	var awarded []string
	now := r.now().UTC()

	err := r.repo.Transact(ctx, func(tx dal.Repository) error {
		awarded = awarded[:0]
		o := f.Outcome

		if err := tx.ApplyGameResult(ctx, f.UserID, dal.GameResult{
			ScoreDelta:  o.ScoreDelta,
			PointsSpent: o.PointsSpent,
			Won:         o.Won,
		}); err != nil {
			return fmt.Errorf("apply game result: %w", err)
		}

		if f.WordID > 0 {
			if err := tx.RecordWordPlay(ctx, f.UserID, f.WordID, o.Won, now); err != nil {
				return fmt.Errorf("record word play: %w", err)
			}
		}

		if !o.Won {
			return nil
		}

		// the stored streak is authoritative, the session only saw the
		// value it started with
		user, err := tx.FindUserByID(ctx, f.UserID)
		if err != nil {
			return fmt.Errorf("find user: %w", err)
		}
		eligibility := o.Eligibility
		eligibility.WinStreakAfter = user.WinStreak

		eligible := game.Eligible(eligibility)
		if len(eligible) == 0 {
			return nil
		}
		owned, err := tx.FindUserAchievements(ctx, f.UserID)
		if err != nil {
			return fmt.Errorf("find user achievements: %w", err)
		}
		for _, id := range eligible {
			if slices.ContainsFunc(owned, func(a dal.UserAchievement) bool { return a.ID == id }) {
				continue
			}
			err := tx.AwardAchievement(ctx, f.UserID, id, now)
			if errors.Is(err, dal.ErrAlreadyExists) {
				continue
			}
			if err != nil {
				return fmt.Errorf("award %s: %w", id, err)
			}
			awarded = append(awarded, id)
		}
		return nil
	})
	return awarded, err
}

func (r *Recorder) retry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, dal.ErrNotFound) || attempt == r.attempts {
			break
		}

		r.log.WarnContext(ctx, "persisting session outcome failed, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(r.retryDelay):
		}
	}
	return err
}
