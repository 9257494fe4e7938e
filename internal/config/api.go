package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

const devJWTSecret = "readyword-dev-secret" //nolint:gosec // only used with DEV=true

type (
	// DB is shared by every command that opens the database. MySQL URLs need
	// parseTime=true&clientFoundRows=true.
	DB struct {
		Driver string `envconfig:"DRIVER" default:"sqlite"`
		URL    string `envconfig:"URL" default:"readyword.db"`
	}

	CORS struct {
		AllowOrigins []string `envconfig:"ALLOW_ORIGINS" default:"http://localhost:3000"`
	}

	JWT struct {
		Issuer   string   `envconfig:"ISSUER" default:"readyword-api"`
		Audience []string `envconfig:"AUDIENCE" default:"readyword"`
		Secret   string   `envconfig:"SECRET"`
	}

	Cookie struct {
		Path            string        `envconfig:"CPATH" default:"/"` // not using PATH here because it may conflict with os.Path
		Domain          string        `envconfig:"DOMAIN" default:""`
		Secure          bool          `envconfig:"SECURE" default:"true"`
		AccessExpiresIn time.Duration `envconfig:"ACCESS_EXPIRES_IN" default:"24h"`
	}

	HTTP struct {
		ProcessTimeout time.Duration `envconfig:"PROCESS_TIMEOUT" default:"30s"`
		RateLimit      float64       `envconfig:"RATE_LIMIT" default:"25"`
		LeaderboardTTL time.Duration `envconfig:"LEADERBOARD_TTL" default:"5s"`
		CORS           CORS
		Cookie         Cookie
	}

	Server struct {
		ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"10s"`
		Addr              string        `envconfig:"ADDR" default:":8080"`
	}

	Gemini struct {
		APIKey         string        `envconfig:"API_KEY"`
		BaseURL        string        `envconfig:"BASE_URL" default:"https://generativelanguage.googleapis.com"`
		Model          string        `envconfig:"MODEL" default:"gemini-1.5-flash"`
		FallbackModels []string      `envconfig:"FALLBACK_MODELS"`
		Timeout        time.Duration `envconfig:"TIMEOUT" default:"20s"`
	}

	Game struct {
		ReapInterval     time.Duration `envconfig:"REAP_INTERVAL" default:"1m"`
		ReapAfter        time.Duration `envconfig:"REAP_AFTER" default:"15m"`
		RecordAttempts   int           `envconfig:"RECORD_ATTEMPTS" default:"3"`
		RecordRetryDelay time.Duration `envconfig:"RECORD_RETRY_DELAY" default:"500ms"`
	}

	BuildInfo struct {
		Version   string `ignored:"true"`
		BuildTime string `ignored:"true"`
	}

	API struct {
		Dev       bool   `envconfig:"DEV" default:"false"`
		SSMPrefix string `envconfig:"SSM_PREFIX"`
		AWSRegion string `envconfig:"AWS_REGION"`
		DB        DB
		HTTP      HTTP
		JWT       JWT
		Server    Server
		Gemini    Gemini
		Game      Game
		BuildInfo BuildInfo
	}
)

func NewAPI(ctx context.Context) (*API, error) {
	res := &API{}
	if err := envconfig.Process(EnvPrefix, res); err != nil {
		return nil, fmt.Errorf("parse api environment: %w", err)
	}

	if !res.Dev && res.SSMPrefix != "" {
		if err := setAPIProdConfig(ctx, res); err != nil {
			return nil, fmt.Errorf("set api prod config: %w", err)
		}
	}

	if res.Dev && res.JWT.Secret == "" {
		res.JWT.Secret = devJWTSecret
	}

	return validateAPI(res)
}

func (c *API) DBType() dal.DBType {
	dbType, _ := dal.ParseDBType(c.DB.Driver)
	return dbType
}

func validateAPI(conf *API) (*API, error) {
	var errs validationErrors

	if _, err := dal.ParseDBType(conf.DB.Driver); err != nil {
		errs.add("%s", err)
	}
	if conf.DB.URL == "" {
		errs.add("db url is required")
	}
	if conf.JWT.Secret == "" {
		errs.add("jwt secret is required")
	}
	if len(conf.JWT.Audience) == 0 {
		errs.add("jwt audience is required")
	}
	if conf.HTTP.RateLimit <= 0 {
		errs.add("rate limit %v must be positive", conf.HTTP.RateLimit)
	}
	if conf.Game.ReapInterval <= 0 {
		errs.add("reap interval is required")
	}
	if conf.Game.RecordAttempts < 1 {
		errs.add("record attempts %d must be at least 1", conf.Game.RecordAttempts)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return conf, nil
}

func setAPIProdConfig(ctx context.Context, target *API) error {
	prefix := strings.TrimRight(target.SSMPrefix, "/")
	region := target.AWSRegion
	if region == "" {
		region = DefaultAWSRegion
	}
	var (
		jwtSecretKey = prefix + "/jwt-secret"
		geminiKey    = prefix + "/gemini-api-key"
		dbURLKey     = prefix + "/db-url"
	)

	parameters, err := FetchAWSParams(ctx, region, jwtSecretKey, geminiKey, dbURLKey)
	if err != nil {
		return fmt.Errorf("get parameters: %w", err)
	}

	for name, value := range parameters {
		switch name {
		case jwtSecretKey:
			target.JWT.Secret = value
		case geminiKey:
			target.Gemini.APIKey = value
		case dbURLKey:
			target.DB.URL = value
		}
	}

	return nil
}
