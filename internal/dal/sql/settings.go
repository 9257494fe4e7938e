package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

func (r *Repository) FindSettings(ctx context.Context, userID int64) (*dal.Settings, error) {
	row, err := r.queryRow(ctx, r.queries.FindSettingsQuery(userID))
	if err != nil {
		return nil, err
	}

	var s dal.Settings
	if err = row.Scan(&s.UserID, &s.DarkMode, &s.SoundEnabled, &s.MusicEnabled, &s.MusicTrack, &s.Difficulty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, dal.ErrNotFound
		}
		return nil, fmt.Errorf("find settings: %w", err)
	}
	return &s, nil
}

func (r *Repository) SaveSettings(ctx context.Context, settings dal.Settings) error {
	if _, err := r.exec(ctx, r.queries.UpsertSettingsQuery(settings)); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
