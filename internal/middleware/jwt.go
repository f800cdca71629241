package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"time-tracker/internal/logger"
	"time-tracker/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userKey   = "user"
	renewTTL  = 7 * 24 * time.Hour
	renewLeft = 24 * time.Hour
)

// Identity resolves the caller from an optional bearer token. No token means
// Anonymous; a bad token is rejected.
func Identity(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			setUser(c, model.Anonymous{})
			c.Next()
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		claims, err := parseToken(secret, auth[7:])
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("token rejected", "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		userID := subject(claims)
		setUser(c, model.UserFromID(userID))

		// renew tokens with less than a day left
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && time.Until(exp.Time) < renewLeft && userID != "" {
			if tok, err := IssueToken(secret, userID, renewTTL); err == nil {
				c.Header("X-New-Token", tok)
			}
		}
		c.Next()
	}
}

// RequireUser rejects anonymous callers.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := model.UserID(User(c)); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "sign in required"})
			return
		}
		c.Next()
	}
}

// User returns the caller resolved by Identity.
func User(c *gin.Context) model.UserContext {
	if v, ok := c.Get(userKey); ok {
		if u, ok := v.(model.UserContext); ok {
			return u
		}
	}
	return model.Anonymous{}
}

// IssueToken signs an HS256 token for userID.
func IssueToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("empty user id")
	}
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}).SignedString(secret)
}

func setUser(c *gin.Context, u model.UserContext) {
	c.Set(userKey, u)
	c.Request = c.Request.WithContext(model.WithUser(c.Request.Context(), u))
}

func parseToken(secret []byte, raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// subject reads "sub", falling back to a numeric or string "uid".
func subject(claims jwt.MapClaims) string {
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub
	}
	switch uid := claims["uid"].(type) {
	case string:
		return uid
	case float64:
		return fmt.Sprintf("%d", int64(uid))
	}
	return ""
}
