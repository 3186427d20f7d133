package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/askhub/askhub/internal/shared"
)

// Token purposes. A token issued for one purpose is never accepted for
// another.
const (
	PurposeAccess  = "access"
	PurposeRefresh = "refresh"
	PurposeVerify  = "verify"
)

// Claims carries the signed token payload: subject (the account email) and
// expiry via RegisteredClaims, plus the purpose tag.
type Claims struct {
	jwt.RegisteredClaims
	Purpose string `json:"type"`
}

// TokenConfig holds the signing secret and expiry windows. It is built once
// at startup and threaded into the issuer, never read from globals.
type TokenConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	VerifyTTL  time.Duration
}

// Issuer mints access, refresh, and email-verification tokens.
type Issuer struct {
	cfg TokenConfig
}

// NewIssuer constructs an Issuer.
func NewIssuer(cfg TokenConfig) *Issuer {
	return &Issuer{cfg: cfg}
}

// IssueAccess mints a short-lived access token for the email.
func (i *Issuer) IssueAccess(email string) (string, error) {
	return i.issue(email, PurposeAccess, i.cfg.AccessTTL)
}

// IssueRefresh mints a refresh token for the email.
func (i *Issuer) IssueRefresh(email string) (string, error) {
	return i.issue(email, PurposeRefresh, i.cfg.RefreshTTL)
}

// IssueVerification mints an email-verification token for the email.
func (i *Issuer) IssueVerification(email string) (string, error) {
	return i.issue(email, PurposeVerify, i.cfg.VerifyTTL)
}

func (i *Issuer) issue(email, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Purpose: purpose,
	})
	return token.SignedString(i.cfg.Secret)
}

// DecodeToken validates the signature and expiry and returns the claims.
// It fails with shared.ErrInvalidToken for tampered, malformed, or expired
// input. Purpose and subject checks belong to the caller.
func DecodeToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	if !token.Valid {
		return nil, shared.ErrInvalidToken
	}
	return claims, nil
}
