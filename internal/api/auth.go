package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Roma7-7-7/readyword/internal/context"
	"github.com/Roma7-7-7/readyword/internal/dal"
)

type (
	AuthDependencies struct {
		Repo             dal.Repository
		JWTProcessor     *JWTProcessor
		CookiesProcessor *CookiesProcessor
		BcryptCost       int
		Logger           *slog.Logger
	}

	AuthHandler struct {
		repo             dal.Repository
		jwtProcessor     *JWTProcessor
		cookiesProcessor *CookiesProcessor
		bcryptCost       int

		log *slog.Logger
	}

	CredentialsRequest struct {
		Username string `json:"username" validate:"required,min=3,max=50"`
		Password string `json:"password" validate:"required,min=6,max=72"`
	}

	loginResponse struct {
		User
		Settings    Settings `json:"settings"`
		AccessToken string   `json:"access_token"`
	}

	profileResponse struct {
		User
		Settings     Settings          `json:"settings"`
		Achievements []UserAchievement `json:"achievements"`
	}
)

func NewAuthHandler(deps AuthDependencies) *AuthHandler {
	cost := deps.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		repo:             deps.Repo,
		jwtProcessor:     deps.JWTProcessor,
		cookiesProcessor: deps.CookiesProcessor,
		bcryptCost:       cost,

		log: deps.Logger,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if err := c.Validate(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to hash password", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	user, err := h.repo.CreateUser(c.Request().Context(), req.Username, string(hash), time.Now().UTC())
	if err != nil {
		if errors.Is(err, dal.ErrAlreadyExists) {
			return c.JSON(http.StatusConflict, ErrorResponse{"Username already exists"})
		}
		h.log.ErrorContext(c.Request().Context(), "failed to create user", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	h.log.InfoContext(c.Request().Context(), "user registered", "user_id", user.ID)
	return c.JSON(http.StatusCreated, toUser(user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		h.log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, BadRequestError)
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{"Username and password are required"})
	}

	invalid := ErrorResponse{"Invalid username or password"}
	user, err := h.repo.FindUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, invalid)
		}
		h.log.ErrorContext(c.Request().Context(), "failed to find user", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.log.DebugContext(c.Request().Context(), "password mismatch", "user_id", user.ID)
		return c.JSON(http.StatusUnauthorized, invalid)
	}

	now := time.Now().UTC()
	if err = h.repo.UpdateLastLogin(c.Request().Context(), user.ID, now); err != nil {
		h.log.WarnContext(c.Request().Context(), "failed to update last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLogin = &now
	}

	settings, err := h.repo.FindSettings(c.Request().Context(), user.ID)
	if err != nil {
		if !errors.Is(err, dal.ErrNotFound) {
			h.log.WarnContext(c.Request().Context(), "failed to find settings, using defaults", "user_id", user.ID, "error", err)
		}
		defaults := dal.DefaultSettings(user.ID)
		settings = &defaults
	}

	token, err := h.jwtProcessor.ToAccessToken(user.ID, user.Username)
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "failed to create access token", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}
	c.SetCookie(h.cookiesProcessor.NewAccessTokenCookie(token))

	return c.JSON(http.StatusOK, loginResponse{
		User:        toUser(user),
		Settings:    toSettings(*settings),
		AccessToken: token,
	})
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	c.SetCookie(h.cookiesProcessor.ExpireAccessTokenCookie())
	return c.JSON(http.StatusOK, successResponse{Success: true, Message: "Logged out"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID := context.MustUserIDFromContext(c.Request().Context())

	profile, err := h.repo.FindProfile(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, dal.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, UnauthorizedError)
		}
		h.log.ErrorContext(c.Request().Context(), "failed to find profile", "error", err)
		return c.JSON(http.StatusInternalServerError, InternalServerError)
	}

	return c.JSON(http.StatusOK, profileResponse{
		User:         toUser(&profile.User),
		Settings:     toSettings(profile.Settings),
		Achievements: toUserAchievements(profile.Achievements),
	})
}
