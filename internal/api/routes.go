package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/Roma7-7-7/readyword/internal/config"
	"github.com/Roma7-7-7/readyword/internal/dal"
	"github.com/Roma7-7-7/readyword/internal/play"
)

type (
	Dependencies struct {
		Repo   dal.Repository
		DB     Pinger
		Games  *play.Service
		Logger *slog.Logger
	}
)

func NewRouter(ctx context.Context, conf *config.API, deps Dependencies) http.Handler {
	e := echo.New()

	e.Use(middleware.RequestID())
	e.Use(loggingMiddleware(ctx, deps.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(conf.HTTP.RateLimit))))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.HTTP.CORS.AllowOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Skipper: isStream,
		Timeout: conf.HTTP.ProcessTimeout,
	}))
	e.Use(middleware.Secure())

	e.HTTPErrorHandler = HTTPErrorHandler(deps.Logger)
	e.Validator = NewValidator()

	jwtProcessor := NewJWTProcessor(conf.JWT, conf.HTTP.Cookie.AccessExpiresIn)
	cookiesProcessor := NewCookiesProcessor(conf.HTTP.Cookie)
	authMiddleware := AuthMiddleware(cookiesProcessor, jwtProcessor, deps.Logger)

	health := NewHealthHandler(deps.DB, conf.BuildInfo.Version, deps.Logger)
	auth := NewAuthHandler(AuthDependencies{
		Repo:             deps.Repo,
		JWTProcessor:     jwtProcessor,
		CookiesProcessor: cookiesProcessor,
		Logger:           deps.Logger,
	})
	leaderboard := NewLeaderboardHandler(deps.Repo, conf.HTTP.LeaderboardTTL, deps.Logger)
	users := NewUsersHandler(deps.Repo, leaderboard, deps.Logger)
	achievements := NewAchievementsHandler(deps.Repo, deps.Logger)
	words := NewWordsHandler(deps.Repo, deps.Logger)
	questions := NewQuestionsHandler(deps.Repo, deps.Logger)
	games := NewGamesHandler(deps.Games, deps.Logger)
	stream := NewStreamHandler(deps.Games.Manager(), conf.HTTP.CORS.AllowOrigins, deps.Logger)

	e.GET("/health", health.Health)

	public := e.Group("/api")
	public.GET("/ping", health.Ping)
	public.POST("/register", auth.Register)
	public.POST("/login", auth.Login)
	public.POST("/logout", auth.LogOut)
	public.GET("/leaderboard", leaderboard.Leaderboard)
	public.GET("/achievements", achievements.Catalog)
	public.GET("/topics", games.Topics)

	secured := e.Group("/api", authMiddleware)
	secured.GET("/me", auth.Me)

	secured.POST("/words", words.SaveWord)
	secured.GET("/words", words.FindWords)
	secured.DELETE("/words", words.DeleteWords)

	self := secured.Group("/users/:id", SelfOnly)
	self.GET("", users.GetUser)
	self.PUT("/score", users.UpdateScore)
	self.GET("/settings", users.GetSettings)
	self.PUT("/settings", users.UpdateSettings)
	self.GET("/achievements", achievements.FindUserAchievements)
	self.POST("/achievements", achievements.Award)
	self.GET("/words/history", words.History)
	self.POST("/words", words.RecordPlay)
	self.POST("/questions", questions.Save)
	self.GET("/questions", questions.Find)
	self.DELETE("/questions", questions.Delete)

	secured.POST("/games", games.New)
	secured.GET("/games/current", games.Current)
	secured.GET("/games/:id", games.Get)
	secured.POST("/games/:id/guess", games.Guess)
	secured.POST("/games/:id/hints/reveal", games.RevealLetter)
	secured.POST("/games/:id/hints/eliminate", games.EliminateLetters)
	secured.DELETE("/games/:id", games.Discard)
	secured.GET("/games/:id/fact", games.Fact)
	secured.GET("/games/:id/stream", stream.Stream)

	return e
}

// isStream skips the timeout middleware for websocket upgrades. Its
// buffered writer cannot be hijacked.
func isStream(c echo.Context) bool {
	return strings.HasSuffix(c.Path(), "/stream")
}

func loggingMiddleware(ctx context.Context, log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		HandleError: true, // forwards error to the global error handler, so it can decide appropriate status code
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				log.LogAttrs(ctx, slog.LevelInfo, "REQUEST",
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
				)
			} else {
				log.LogAttrs(ctx, slog.LevelError, "REQUEST_ERROR",
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("err", v.Error.Error()),
				)
			}
			return nil
		},
	})
}
