package api

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Roma7-7-7/readyword/internal/config"
)

type (
	JWTProcessor struct {
		issuer         string
		audience       []string
		accessExpireIn time.Duration

		secret []byte
	}

	Claims struct {
		Username string `json:"username"`
		jwt.RegisteredClaims
	}

	Principal struct {
		UserID   int64
		Username string
	}
)

func NewJWTProcessor(conf config.JWT, accessExpireIn time.Duration) *JWTProcessor {
	return &JWTProcessor{
		issuer:         conf.Issuer,
		audience:       conf.Audience,
		accessExpireIn: accessExpireIn,

		secret: []byte(conf.Secret),
	}
}

func (p *JWTProcessor) ToAccessToken(userID int64, username string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  p.audience,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.accessExpireIn)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	})

	signedString, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signedString, nil
}

func (p *JWTProcessor) ParseAccessToken(token string) (Principal, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		// Validate signing algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return Principal{}, errors.New("invalid token claims")
	}

	// Validate issuer and audience
	if claims.Issuer != p.issuer {
		return Principal{}, errors.New("invalid issuer")
	}
	if !containsAll(claims.Audience, p.audience) {
		return Principal{}, errors.New("invalid audience")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Principal{}, fmt.Errorf("parse subject: %w", err)
	}
	return Principal{UserID: userID, Username: claims.Username}, nil
}

// containsAll returns true if all elements in required are present in actual
func containsAll(actual, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(actual) < len(required) {
		return false
	}
	for _, r := range required {
		found := false
		for _, a := range actual {
			if a == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
