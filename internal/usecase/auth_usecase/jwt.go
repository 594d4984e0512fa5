package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// HS256のアクセストークン。subにユーザーID、jtiにUUIDを入れる。
type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
	idGen     IDGenerator
}

func NewJWTIssuer(secret string, accessTTL time.Duration, idGen IDGenerator) *JWTIssuer {
	if idGen == nil {
		idGen = UUIDGenerator{}
	}
	return &JWTIssuer{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		idGen:     idGen,
	}
}

func (i *JWTIssuer) Issue(userID int64, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        i.idGen.NewID(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify は署名と有効期限を確認してユーザーIDを返す。
func (i *JWTIssuer) Verify(raw string) (int64, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ExpiresAt == nil {
		return 0, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: invalid sub", ErrInvalidToken)
	}
	return userID, nil
}
