package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/Atri9Ghosh/thinkplus/backend/config"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// GenerateToken mints an HS256 token for the given external identity,
// mirroring what the identity provider issues.
func GenerateToken(externalID, email string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub":   externalID,
		"email": email,
		"exp":   time.Now().Add(72 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ExtractSubjectFromToken parses the Authorization header and returns
// the external identity id and email carried by the token.
func ExtractSubjectFromToken(c *fiber.Ctx, cfg *config.Config) (string, string, error) {
	tokenString := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
	if tokenString == "" {
		return "", "", errors.New("missing authorization token")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", errors.New("missing subject in token")
	}

	email, _ := claims["email"].(string)
	return sub, email, nil
}
