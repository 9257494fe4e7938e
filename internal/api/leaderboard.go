package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/readyword/internal/dal"
	"github.com/Roma7-7-7/readyword/pkg/cache"
)

const (
	leaderboardSize     = 10
	leaderboardCacheKey = "top"
)

type (
	LeaderboardEntry struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
		Score    int    `json:"score"`
		Wins     int    `json:"wins"`
	}

	Leaderboard struct {
		Players      []LeaderboardEntry `json:"players"`
		TotalPlayers int                `json:"total_players"`
	}

	LeaderboardHandler struct {
		repo  dal.UsersRepository
		cache *cache.InMemory[Leaderboard]
		ttl   time.Duration
		log   *slog.Logger
	}
)

func NewLeaderboardHandler(repo dal.UsersRepository, ttl time.Duration, log *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		repo:  repo,
		cache: cache.NewInMemory[Leaderboard](),
		ttl:   ttl,
		log:   log,
	}
}

func (h *LeaderboardHandler) Leaderboard(c echo.Context) error {
	if cached, ok := h.cache.Get(leaderboardCacheKey); ok {
		return c.JSON(http.StatusOK, cached)
	}

	board, err := h.repo.FindLeaderboard(c.Request().Context(), leaderboardSize)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find leaderboard", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	res := Leaderboard{
		Players:      make([]LeaderboardEntry, len(board.Entries)),
		TotalPlayers: board.TotalPlayers,
	}
	for i, e := range board.Entries {
		res.Players[i] = LeaderboardEntry{
			ID:       e.UserID,
			Username: e.Username,
			Score:    e.Score,
			Wins:     e.Wins,
		}
	}

	if h.ttl > 0 {
		h.cache.Set(leaderboardCacheKey, res, h.ttl)
	}
	return c.JSON(http.StatusOK, res)
}

// Invalidate drops the cached leaderboard after a direct score change.
func (h *LeaderboardHandler) Invalidate() {
	h.cache.Delete(leaderboardCacheKey)
}
