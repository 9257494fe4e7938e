package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

func TestNewAPI_Defaults(t *testing.T) {
	t.Setenv("READYWORD_DEV", "true")

	conf, err := NewAPI(context.Background())
	if err != nil {
		t.Fatalf("NewAPI() error = %v", err)
	}

	if conf.DBType() != dal.DBTypeSQLite || conf.DB.URL != "readyword.db" {
		t.Errorf("unexpected db config %+v", conf.DB)
	}
	if conf.JWT.Secret != devJWTSecret {
		t.Errorf("jwt secret = %q, want dev secret", conf.JWT.Secret)
	}
	if conf.HTTP.LeaderboardTTL != 5*time.Second {
		t.Errorf("leaderboard ttl = %v", conf.HTTP.LeaderboardTTL)
	}
	if conf.Gemini.Model != "gemini-1.5-flash" {
		t.Errorf("gemini model = %s", conf.Gemini.Model)
	}
	if conf.Game.RecordAttempts != 3 || conf.Game.ReapInterval != time.Minute {
		t.Errorf("unexpected game config %+v", conf.Game)
	}
	if conf.Server.Addr != ":8080" {
		t.Errorf("addr = %s", conf.Server.Addr)
	}
}

func TestNewAPI_Overrides(t *testing.T) {
	t.Setenv("READYWORD_DB_DRIVER", "postgres")
	t.Setenv("READYWORD_DB_URL", "postgres://localhost/readyword")
	t.Setenv("READYWORD_JWT_SECRET", "s3cret")
	t.Setenv("READYWORD_GEMINI_API_KEY", "gemini-key")
	t.Setenv("READYWORD_GEMINI_FALLBACK_MODELS", "a,b")
	t.Setenv("READYWORD_HTTP_CORS_ALLOW_ORIGINS", "https://one.example,https://two.example")
	t.Setenv("READYWORD_HTTP_COOKIE_DOMAIN", "example.com")

	conf, err := NewAPI(context.Background())
	if err != nil {
		t.Fatalf("NewAPI() error = %v", err)
	}

	if conf.DBType() != dal.DBTypePostgres {
		t.Errorf("db type = %s", conf.DBType())
	}
	if conf.JWT.Secret != "s3cret" || conf.Gemini.APIKey != "gemini-key" {
		t.Errorf("secrets not loaded: %+v %+v", conf.JWT, conf.Gemini)
	}
	if len(conf.Gemini.FallbackModels) != 2 {
		t.Errorf("fallback models = %v", conf.Gemini.FallbackModels)
	}
	if len(conf.HTTP.CORS.AllowOrigins) != 2 || conf.HTTP.Cookie.Domain != "example.com" {
		t.Errorf("unexpected http config %+v", conf.HTTP)
	}
}

func TestNewAPI_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing secret outside dev",
			env:  map[string]string{},
			want: "jwt secret is required",
		},
		{
			name: "unknown driver",
			env:  map[string]string{"READYWORD_DEV": "true", "READYWORD_DB_DRIVER": "oracle"},
			want: "oracle",
		},
		{
			name: "no record attempts",
			env:  map[string]string{"READYWORD_DEV": "true", "READYWORD_GAME_RECORD_ATTEMPTS": "0"},
			want: "record attempts 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := NewAPI(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("NewAPI() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}
