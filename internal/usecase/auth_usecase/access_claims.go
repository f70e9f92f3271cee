package auth

import (
	"errors"
	"strings"

	"restaurant/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidAccessToken = errors.New("invalid access token")

// AccessClaims はアクセストークンの中身。sub=ユーザーID、tv=発行時のtoken_version
type AccessClaims struct {
	Role         model.Role `json:"role"`
	TokenVersion int        `json:"tv"`
	jwt.RegisteredClaims
}

// ParseAccessToken はHS256の署名と期限を確かめ、ロールとtvが使える値かも見る
func ParseAccessToken(secret, raw string) (*AccessClaims, error) {
	var claims AccessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	if strings.TrimSpace(claims.Subject) == "" || !claims.Role.Valid() || claims.TokenVersion < 0 {
		return nil, ErrInvalidAccessToken
	}
	return &claims, nil
}
