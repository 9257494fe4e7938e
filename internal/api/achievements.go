package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/readyword/internal/context"
	"github.com/Roma7-7-7/readyword/internal/dal"
	"github.com/Roma7-7-7/readyword/internal/game"
)

type (
	Achievement struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	}

	UserAchievement struct {
		Achievement
		DateAwarded time.Time `json:"date_awarded"`
	}

	AwardRequest struct {
		AchievementID string `json:"achievement_id" validate:"required"`
	}

	AchievementsHandler struct {
		repo dal.AchievementsRepository
		log  *slog.Logger
	}
)

func NewAchievementsHandler(repo dal.AchievementsRepository, log *slog.Logger) *AchievementsHandler {
	return &AchievementsHandler{
		repo: repo,
		log:  log,
	}
}

func (h *AchievementsHandler) Catalog(c echo.Context) error {
	achievements, err := h.repo.FindAchievements(c.Request().Context())
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find achievements", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	res := make([]Achievement, len(achievements))
	for i, a := range achievements {
		res[i] = toAchievement(a)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AchievementsHandler) FindUserAchievements(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	achievements, err := h.repo.FindUserAchievements(c.Request().Context(), userID)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find user achievements", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusOK, toUserAchievements(achievements))
}

func (h *AchievementsHandler) Award(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	var req AwardRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	achievement, ok := game.LookupAchievement(req.AchievementID)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{"Achievement not found"})
	}

	now := time.Now().UTC()
	if err := h.repo.AwardAchievement(c.Request().Context(), userID, achievement.ID, now); err != nil {
		if errors.Is(err, dal.ErrAlreadyExists) {
			return c.JSON(http.StatusConflict, ErrorResponse{"Achievement already awarded to user"})
		}
		h.log.ErrorContext(c.Request().Context(), "failed to award achievement", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusCreated, UserAchievement{
		Achievement: Achievement{
			ID:          achievement.ID,
			Title:       achievement.Title,
			Description: achievement.Description,
			Icon:        achievement.Icon,
		},
		DateAwarded: now,
	})
}

func toAchievement(a dal.Achievement) Achievement {
	return Achievement{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		Icon:        a.Icon,
	}
}

func toUserAchievements(achievements []dal.UserAchievement) []UserAchievement {
	res := make([]UserAchievement, len(achievements))
	for i, a := range achievements {
		res[i] = UserAchievement{
			Achievement: toAchievement(a.Achievement),
			DateAwarded: a.DateAwarded,
		}
	}
	return res
}
