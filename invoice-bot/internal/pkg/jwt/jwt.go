package jwtToken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type Config struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL" env-default:"24h"`
}

// New подписывает токен, привязанный к сессии сбора данных.
func New(
	sessionId string,
	tokenTTL time.Duration,
	secret []byte,
) (
	string,
	error,
) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["session_id"] = sessionId
	claims["exp"] = time.Now().Add(tokenTTL).Unix()

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// VerifyToken проверяет подпись и срок действия, возвращает id сессии.
func VerifyToken(tokenString string, secret []byte) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	sessionId, ok := claims["session_id"].(string)
	if !ok || sessionId == "" {
		return "", fmt.Errorf("%w: session_id claim is missing", ErrInvalidToken)
	}

	return sessionId, nil
}
