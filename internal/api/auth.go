package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Auth issues and checks HS256 player tokens bound to one game session.
type Auth struct {
	secret  []byte
	ttl     time.Duration
	session string
	now     func() time.Time
}

// NewAuth returns nil when secret is empty, which disables auth.
func NewAuth(secret string, ttl time.Duration, session string) *Auth {
	if secret == "" {
		return nil
	}
	return &Auth{secret: []byte(secret), ttl: ttl, session: session, now: time.Now}
}

// Issue signs a token for player.
func (a *Auth) Issue(player string) (string, time.Time, error) {
	now := a.now()
	exp := now.Add(a.ttl)
	claims := jwt.StandardClaims{
		Id:        uuid.NewString(),
		Subject:   player,
		Audience:  a.session,
		IssuedAt:  now.Unix(),
		ExpiresAt: exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses a token and returns its player.
func (a *Auth) Verify(token string) (string, error) {
	claims := &jwt.StandardClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !parsed.Valid {
		return "", errors.New("invalid token")
	}
	if !claims.VerifyAudience(a.session, true) {
		return "", errors.New("token belongs to another session")
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid bearer token.
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		player, err := a.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		c.Set("player", player)
		c.Next()
	}
}
