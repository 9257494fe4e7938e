package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/readyword/internal/context"
	"github.com/Roma7-7-7/readyword/internal/dal"
)

type (
	User struct {
		ID           int64      `json:"id"`
		Username     string     `json:"username"`
		Score        int        `json:"score"`
		TotalGames   int        `json:"total_games"`
		Wins         int        `json:"wins"`
		WinStreak    int        `json:"win_streak"`
		RegisterDate time.Time  `json:"register_date"`
		LastLogin    *time.Time `json:"last_login,omitempty"`
	}

	Settings struct {
		DarkMode     bool   `json:"dark_mode"`
		SoundEnabled bool   `json:"sound_enabled"`
		MusicEnabled bool   `json:"music_enabled"`
		MusicTrack   string `json:"music_track"`
		Difficulty   string `json:"difficulty"`
	}

	UserStatsRequest struct {
		Score      *int `json:"score" validate:"required"`
		TotalGames *int `json:"total_games" validate:"required,min=0"`
		Wins       *int `json:"wins" validate:"required,min=0"`
		WinStreak  int  `json:"win_streak" validate:"min=0"`
	}

	SettingsRequest struct {
		DarkMode     *bool   `json:"dark_mode"`
		SoundEnabled *bool   `json:"sound_enabled"`
		MusicEnabled *bool   `json:"music_enabled"`
		MusicTrack   *string `json:"music_track" validate:"omitempty,max=64"`
		Difficulty   *string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	}

	successResponse struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	UsersHandler struct {
		repo        dal.Repository
		leaderboard *LeaderboardHandler
		log         *slog.Logger
	}
)

func NewUsersHandler(repo dal.Repository, leaderboard *LeaderboardHandler, log *slog.Logger) *UsersHandler {
	return &UsersHandler{
		repo:        repo,
		leaderboard: leaderboard,
		log:         log,
	}
}

func (h *UsersHandler) GetUser(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	user, err := h.repo.FindUserByID(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{"User not found"})
		}
		h.log.ErrorContext(c.Request().Context(), "failed to find user", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusOK, toUser(user))
}

func (h *UsersHandler) UpdateScore(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	var req UserStatsRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	err := h.repo.UpdateUserStats(c.Request().Context(), userID, dal.UserStats{
		Score:      *req.Score,
		TotalGames: *req.TotalGames,
		Wins:       *req.Wins,
		WinStreak:  req.WinStreak,
	})
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{"User not found"})
		}
		h.log.ErrorContext(c.Request().Context(), "failed to update user stats", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
	h.leaderboard.Invalidate()

	return c.JSON(http.StatusOK, successResponse{Success: true, Message: "User stats updated"})
}

func (h *UsersHandler) GetSettings(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	settings, err := h.findSettings(c, userID)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find settings", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusOK, toSettings(settings))
}

// UpdateSettings changes only the fields present in the request.
func (h *UsersHandler) UpdateSettings(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	var req SettingsRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	settings, err := h.findSettings(c, userID)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find settings", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	if req.DarkMode != nil {
		settings.DarkMode = *req.DarkMode
	}
	if req.SoundEnabled != nil {
		settings.SoundEnabled = *req.SoundEnabled
	}
	if req.MusicEnabled != nil {
		settings.MusicEnabled = *req.MusicEnabled
	}
	if req.MusicTrack != nil {
		settings.MusicTrack = *req.MusicTrack
	}
	if req.Difficulty != nil && *req.Difficulty != "" {
		settings.Difficulty = *req.Difficulty
	}

	if err = h.repo.SaveSettings(c.Request().Context(), settings); err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to save settings", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusOK, toSettings(settings))
}

func (h *UsersHandler) findSettings(c echo.Context, userID int64) (dal.Settings, error) {
	settings, err := h.repo.FindSettings(c.Request().Context(), userID)
	if errors.Is(err, dal.ErrNotFound) {
		return dal.DefaultSettings(userID), nil
	}
	if err != nil {
		return dal.Settings{}, err
	}
	return *settings, nil
}

func toUser(u *dal.User) User {
	return User{
		ID:           u.ID,
		Username:     u.Username,
		Score:        u.Score,
		TotalGames:   u.TotalGames,
		Wins:         u.Wins,
		WinStreak:    u.WinStreak,
		RegisterDate: u.RegisterDate,
		LastLogin:    u.LastLogin,
	}
}

func toSettings(s dal.Settings) Settings {
	return Settings{
		DarkMode:     s.DarkMode,
		SoundEnabled: s.SoundEnabled,
		MusicEnabled: s.MusicEnabled,
		MusicTrack:   s.MusicTrack,
		Difficulty:   s.Difficulty,
	}
}
