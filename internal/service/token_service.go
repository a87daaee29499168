package service

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService valida bearer tokens HS256 emitidos por el servicio de
// identidad externo. Este servicio no emite tokens propios.
type TokenService struct {
	secret []byte
	issuer string
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

// NewTokenService crea el validador. Un issuer vacio desactiva el chequeo
// de emisor.
func NewTokenService(secret, issuer string) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
	}
}

// ParseAccessToken valida firma, vigencia y sujeto del token.
func (s *TokenService) ParseAccessToken(tokenString string) (jwt.RegisteredClaims, error) {
	if s == nil || len(s.secret) == 0 {
		return jwt.RegisteredClaims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return jwt.RegisteredClaims{}, ErrTokenInvalid
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return jwt.RegisteredClaims{}, ErrTokenExpired
		}
		return jwt.RegisteredClaims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return jwt.RegisteredClaims{}, ErrTokenInvalid
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return jwt.RegisteredClaims{}, ErrTokenInvalid
	}
	return claims, nil
}
