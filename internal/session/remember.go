package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// RememberCookieName is the long-lived "remember me" cookie.
	RememberCookieName = "inkwell_remember"

	// RememberLifetime is how long a remember-me token stays valid.
	RememberLifetime = 30 * 24 * time.Hour

	rememberIssuer   = "inkwell"
	rememberAudience = "inkwell-web"
)

// IssueRememberToken creates a signed token that re-establishes a
// session for userID after the session cookie expires.
func IssueRememberToken(secret string, userID uint) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("session secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": rememberIssuer,
		"aud": rememberAudience,
		"exp": now.Add(RememberLifetime).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseRememberToken validates a remember-me token and returns the user
// ID it was issued for.
func ParseRememberToken(secret, tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	},
		jwt.WithIssuer(rememberIssuer),
		jwt.WithAudience(rememberAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid remember token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid remember token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fmt.Errorf("invalid subject claim")
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil || userID == 0 {
		return 0, fmt.Errorf("invalid user ID in remember token")
	}
	return uint(userID), nil
}
