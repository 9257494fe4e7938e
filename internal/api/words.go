package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/readyword/internal/context"
	"github.com/Roma7-7-7/readyword/internal/dal"
)

const defaultListLimit = 100

type (
	Word struct {
		ID       int64     `json:"id"`
		Word     string    `json:"word"`
		Hint     string    `json:"hint"`
		DateUsed time.Time `json:"date_used"`
	}

	WordPlay struct {
		WordID           int64     `json:"word_id"`
		Word             string    `json:"word"`
		Hint             string    `json:"hint"`
		GuessedCorrectly bool      `json:"guessed_correctly"`
		DatePlayed       time.Time `json:"date_played"`
	}

	SaveWordRequest struct {
		Word string `json:"word" validate:"required,max=64"`
		Hint string `json:"hint" validate:"required,max=512"`
	}

	RecordPlayRequest struct {
		WordID           int64 `json:"word_id" validate:"required,min=1"`
		GuessedCorrectly bool  `json:"guessed_correctly"`
	}

	ListQueryParams struct {
		Limit uint64 `query:"limit" validate:"omitempty,min=1,max=500"`
	}

	WordsHandler struct {
		repo dal.WordsRepository
		log  *slog.Logger
	}
)

func NewWordsHandler(repo dal.WordsRepository, log *slog.Logger) *WordsHandler {
	return &WordsHandler{
		repo: repo,
		log:  log,
	}
}

func (h *WordsHandler) SaveWord(c echo.Context) error {
	var req SaveWordRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	word, err := h.repo.SaveWord(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Word)), req.Hint, time.Now().UTC())
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to save word", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusCreated, toWord(*word))
}

func (h *WordsHandler) FindWords(c echo.Context) error {
	limit, err := bindLimit(c)
	if err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return err
	}

	words, err := h.repo.FindWords(c.Request().Context(), limit)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find words", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	res := make([]Word, len(words))
	for i, w := range words {
		res[i] = toWord(w)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *WordsHandler) DeleteWords(c echo.Context) error {
	if err := h.repo.DeleteWords(c.Request().Context()); err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to delete words", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{"Failed to clear word history"})
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Message: "Word history cleared"})
}

func (h *WordsHandler) History(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	limit, err := bindLimit(c)
	if err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return err
	}

	plays, err := h.repo.FindWordHistory(c.Request().Context(), userID, limit)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find word history", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	res := make([]WordPlay, len(plays))
	for i, p := range plays {
		res[i] = WordPlay{
			WordID:           p.WordID,
			Word:             p.Word,
			Hint:             p.Hint,
			GuessedCorrectly: p.GuessedCorrectly,
			DatePlayed:       p.DatePlayed,
		}
	}
	return c.JSON(http.StatusOK, res)
}

func (h *WordsHandler) RecordPlay(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	var req RecordPlayRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	now := time.Now().UTC()
	if err := h.repo.RecordWordPlay(c.Request().Context(), userID, req.WordID, req.GuessedCorrectly, now); err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to record word play", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{"Failed to record word play"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"user_id":           userID,
		"word_id":           req.WordID,
		"guessed_correctly": req.GuessedCorrectly,
		"date_played":       now,
	})
}

// bindLimit reads the optional ?limit= query parameter.
func bindLimit(c echo.Context) (uint64, error) {
	var qp ListQueryParams
	if err := c.Bind(&qp); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, BadRequestError.Message).SetInternal(err)
	}
	if err := c.Validate(&qp); err != nil {
		return 0, err
	}
	if qp.Limit == 0 {
		return defaultListLimit, nil
	}
	return qp.Limit, nil
}

func toWord(w dal.Word) Word {
	return Word{
		ID:       w.ID,
		Word:     w.Word,
		Hint:     w.Hint,
		DateUsed: w.DateUsed,
	}
}
