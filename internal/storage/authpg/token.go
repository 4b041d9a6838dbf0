// Package authpg реализует встроенный провайдер идентификации поверх
// PostgreSQL: учетные записи с паролем, федеративный вход по внешнему
// субъекту, выдача JWT сессионных токенов и сброс пароля через почту.
package authpg

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims пользовательские данные сессионного токена.
type SessionClaims struct {
	UID                  string `json:"uid"`   // Идентификатор пользователя
	Email                string `json:"email"` // Электронная почта
	jwt.RegisteredClaims        // Стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}

// TokenMaker выпускает и проверяет сессионные JWT токены.
type TokenMaker struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewTokenMaker создает TokenMaker с секретным ключом и временем жизни токена.
func NewTokenMaker(secretKey string, ttl time.Duration) *TokenMaker {
	return &TokenMaker{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// Generate выпускает токен сессии для пользователя.
func (m *TokenMaker) Generate(uid, email string) (string, error) {
	claims := SessionClaims{
		UID:   uid,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Parse проверяет подпись и срок токена, возвращая его claims.
func (m *TokenMaker) Parse(tokenStr string) (*SessionClaims, error) {
	const op = "authpg.Parse"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	return claims, nil
}
