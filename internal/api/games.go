package api

import (
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/readyword/internal/context"
	"github.com/Roma7-7-7/readyword/internal/game"
	"github.com/Roma7-7-7/readyword/internal/play"
	"github.com/Roma7-7-7/readyword/internal/wordsource"
)

type (
	NewGameRequest struct {
		Topic      string `json:"topic" validate:"omitempty,max=64"`
		Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	}

	GuessRequest struct {
		Letter string `json:"letter" validate:"required"`
	}

	Topics struct {
		Topics       []string `json:"topics"`
		Difficulties []string `json:"difficulties"`
	}

	Fact struct {
		Fact string `json:"fact"`
	}

	GamesHandler struct {
		games *play.Service
		log   *slog.Logger
	}
)

func NewGamesHandler(games *play.Service, log *slog.Logger) *GamesHandler {
	return &GamesHandler{
		games: games,
		log:   log,
	}
}

func (h *GamesHandler) Topics(c echo.Context) error {
	difficulties := make([]string, 0, len(game.Difficulties()))
	for _, d := range game.Difficulties() {
		difficulties = append(difficulties, d.String())
	}
	return c.JSON(http.StatusOK, Topics{
		Topics:       wordsource.Topics(),
		Difficulties: difficulties,
	})
}

func (h *GamesHandler) New(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	var req NewGameRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	snapshot, err := h.games.NewGame(c.Request().Context(), userID, play.NewGameParams{
		Topic:      req.Topic,
		Difficulty: game.Difficulty(req.Difficulty),
	})
	if err != nil {
		return h.gameError(c, "failed to start game", err)
	}

	return c.JSON(http.StatusCreated, snapshot)
}

func (h *GamesHandler) Current(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	snapshot, err := h.games.Manager().Current(userID)
	if err != nil {
		return h.gameError(c, "failed to find current game", err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *GamesHandler) Get(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	snapshot, err := h.games.Manager().Get(userID, c.Param("id"))
	if err != nil {
		return h.gameError(c, "failed to find game", err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *GamesHandler) Guess(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	var req GuessRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}
	if utf8.RuneCountInString(req.Letter) != 1 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{"Letter must be a single character"})
	}
	letter, _ := utf8.DecodeRuneInString(req.Letter)

	snapshot, err := h.games.Manager().Guess(c.Request().Context(), userID, c.Param("id"), letter)
	if err != nil {
		return h.gameError(c, "failed to guess letter", err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *GamesHandler) RevealLetter(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	snapshot, err := h.games.Manager().RevealLetter(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return h.gameError(c, "failed to reveal letter", err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *GamesHandler) EliminateLetters(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	snapshot, err := h.games.Manager().EliminateLetters(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return h.gameError(c, "failed to eliminate letters", err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (h *GamesHandler) Discard(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	if err := h.games.Manager().Discard(c.Request().Context(), userID, c.Param("id")); err != nil {
		return h.gameError(c, "failed to discard game", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *GamesHandler) Fact(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	fact, err := h.games.Fact(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return h.gameError(c, "failed to load fact", err)
	}
	return c.JSON(http.StatusOK, Fact{Fact: fact})
}

func (h *GamesHandler) gameError(c echo.Context, msg string, err error) error {
	ctx := c.Request().Context()
	switch {
	case errors.Is(err, play.ErrSessionNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{"Game not found"})
	case errors.Is(err, play.ErrForbidden):
		return c.JSON(http.StatusForbidden, ForbiddenError)
	case errors.Is(err, game.ErrInsufficientBalance):
		return c.JSON(http.StatusPaymentRequired, ErrorResponse{"Not enough points for this hint"})
	case errors.Is(err, game.ErrNoEligibleTargets):
		return c.JSON(http.StatusConflict, ErrorResponse{"No letters left for this hint"})
	case errors.Is(err, game.ErrSessionOver):
		return c.JSON(http.StatusConflict, ErrorResponse{"Game is over"})
	case errors.Is(err, play.ErrSessionActive):
		return c.JSON(http.StatusConflict, ErrorResponse{"Game is still in progress"})
	case errors.Is(err, play.ErrUnknownTopic), errors.Is(err, game.ErrUnknownDifficulty):
		h.log.DebugContext(ctx, msg, "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{err.Error()})
	case errors.Is(err, wordsource.ErrUpstream), errors.Is(err, wordsource.ErrInvalidResponse),
		errors.Is(err, wordsource.ErrNoWord), errors.Is(err, wordsource.ErrNoFact),
		errors.Is(err, game.ErrEmptyWord), errors.Is(err, game.ErrNoLetters):
		h.log.WarnContext(ctx, msg, "error", err)
		return c.JSON(http.StatusBadGateway, ErrorResponse{"Word service unavailable, please try again"})
	default:
		h.log.ErrorContext(ctx, msg, "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
}
