package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/readyword/internal/context"
	"github.com/Roma7-7-7/readyword/internal/dal"
)

type (
	Question struct {
		ID        int64     `json:"id"`
		UserID    int64     `json:"user_id"`
		Question  string    `json:"question"`
		Response  string    `json:"response"`
		Timestamp time.Time `json:"timestamp"`
	}

	SaveQuestionRequest struct {
		Question  string     `json:"question" validate:"required"`
		Response  string     `json:"response" validate:"required"`
		Timestamp *time.Time `json:"timestamp"`
	}

	QuestionsHandler struct {
		repo dal.QuestionsRepository
		log  *slog.Logger
	}
)

func NewQuestionsHandler(repo dal.QuestionsRepository, log *slog.Logger) *QuestionsHandler {
	return &QuestionsHandler{
		repo: repo,
		log:  log,
	}
}

func (h *QuestionsHandler) Save(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	var req SaveQuestionRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if req.Question == "" || req.Response == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{"Question and response are required"})
	}

	at := time.Now().UTC()
	if req.Timestamp != nil {
		at = req.Timestamp.UTC()
	}

	q, err := h.repo.InsertQuestion(c.Request().Context(), userID, req.Question, req.Response, at)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to save question", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{"Failed to save question"})
	}

	return c.JSON(http.StatusCreated, toQuestion(*q))
}

func (h *QuestionsHandler) Find(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	limit, err := bindLimit(c)
	if err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return err
	}

	questions, err := h.repo.FindQuestions(c.Request().Context(), userID, limit)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to find questions", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	res := make([]Question, len(questions))
	for i, q := range questions {
		res[i] = toQuestion(q)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *QuestionsHandler) Delete(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	if err := h.repo.DeleteQuestions(c.Request().Context(), userID); err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to delete questions", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{"Failed to clear question history"})
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Message: "Question history cleared"})
}

func toQuestion(q dal.Question) Question {
	return Question{
		ID:        q.ID,
		UserID:    q.UserID,
		Question:  q.Question,
		Response:  q.Response,
		Timestamp: q.Timestamp,
	}
}
