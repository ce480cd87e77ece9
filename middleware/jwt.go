package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"fintrack/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "fintrack"

// sessionKey gin context key of the verified session claims
const sessionKey = "session"

var jwtSecret []byte

// SessionClaims claims of an unlocked session
type SessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// InitJWT loads the signing secret from cfg
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.Auth.JWTSecret)
}

// GenerateToken issues a session token for the unlocked profile
func GenerateToken(name string, ttl time.Duration) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("jwt secret not initialised")
	}
	now := time.Now()
	claims := SessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "owner",
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ParseToken verifies tokenString and returns its claims
func ParseToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// SessionAuth requires a valid Bearer session token once setup is complete. Before setup
// there is nothing to unlock and every request passes.
func SessionAuth(firstRun func() (bool, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		open, err := firstRun()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   config.SafeErrorMessage(err, "failed to read settings"),
			})
			c.Abort()
			return
		}
		if open {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			unauthorized(c, "missing session token")
			return
		}
		claims, err := ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(c, "invalid or expired session token")
			return
		}
		c.Set(sessionKey, claims)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   msg,
	})
	c.Abort()
}
