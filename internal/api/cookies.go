package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/readyword/internal/config"
)

const accessCookieName = "access"

type CookiesProcessor struct {
	path            string
	domain          string
	secure          bool
	accessExpiresIn time.Duration
}

func NewCookiesProcessor(conf config.Cookie) *CookiesProcessor {
	return &CookiesProcessor{
		path:            conf.Path,
		domain:          conf.Domain,
		secure:          conf.Secure,
		accessExpiresIn: conf.AccessExpiresIn,
	}
}

func (p *CookiesProcessor) NewAccessTokenCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     accessCookieName,
		Path:     p.path,
		Domain:   p.domain,
		Value:    token,
		Expires:  time.Now().Add(p.accessExpiresIn),
		Secure:   p.secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// GetAccessToken reads the access cookie and falls back to a bearer token.
func (p *CookiesProcessor) GetAccessToken(c echo.Context) (string, bool) {
	if cookie, err := c.Cookie(accessCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, true
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return token, true
	}
	return "", false
}

func (p *CookiesProcessor) ExpireAccessTokenCookie() *http.Cookie {
	return &http.Cookie{
		Name:    accessCookieName,
		Path:    p.path,
		Domain:  p.domain,
		Expires: time.Now(),
		MaxAge:  -1,
	}
}
