package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the verified contents of a bearer token.
type Claims struct {
	UserID   int64
	Username string
}

type tokenClaims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies self-contained HS256 bearer tokens.
// Tokens are stateless: nothing is persisted server-side and they are
// invalidated only by expiry.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer returns an issuer signing with secret; tokens expire after ttl.
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl}
}

// Issue creates a signed token embedding the user id and username.
func (t *TokenIssuer) Issue(userID int64, username string) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. Pure check:
// no side effects. Malformed input, a bad signature or an expired token all
// yield ErrForbidden.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForbidden, err)
	}
	return &Claims{UserID: claims.UserID, Username: claims.Username}, nil
}

// Sentinel errors for the credential service.
var (
	ErrDuplicateUser      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("username or password incorrect")
	ErrUnauthenticated    = errors.New("missing or malformed bearer token")
	ErrForbidden          = errors.New("token invalid or expired")
)
