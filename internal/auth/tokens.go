package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"monstager/internal/domain"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims carry the account identity as subject plus the token type, so a
// refresh token can never pass for an access token at a resource endpoint.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"token_type"`
}

// TokenIssuer is the token codec collaborator: it mints and verifies the
// signed, expiring identity tokens for the session layer.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenIssuer(secret []byte, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (i *TokenIssuer) issue(accountID, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
	})
	return token.SignedString(i.secret)
}

// IssueAccessToken mints a short-lived credential for resource access.
func (i *TokenIssuer) IssueAccessToken(accountID string) (string, error) {
	return i.issue(accountID, tokenTypeAccess, i.accessTTL)
}

// IssueRefreshToken mints a longer-lived credential usable only at the
// refresh endpoint.
func (i *TokenIssuer) IssueRefreshToken(accountID string) (string, error) {
	return i.issue(accountID, tokenTypeRefresh, i.refreshTTL)
}

func (i *TokenIssuer) verify(tokenString, wantType string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrInvalidCredentials
	}
	if claims.TokenType != wantType || claims.Subject == "" {
		return "", domain.ErrInvalidCredentials
	}
	return claims.Subject, nil
}

// VerifyAccessToken returns the account identity embedded in a valid,
// non-expired access token.
func (i *TokenIssuer) VerifyAccessToken(tokenString string) (string, error) {
	return i.verify(tokenString, tokenTypeAccess)
}

// Refresh validates a refresh token and mints a new access token for the same
// identity.
func (i *TokenIssuer) Refresh(refreshToken string) (string, error) {
	accountID, err := i.verify(refreshToken, tokenTypeRefresh)
	if err != nil {
		return "", err
	}
	return i.IssueAccessToken(accountID)
}
