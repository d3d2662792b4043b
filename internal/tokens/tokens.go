// Package tokens mints and verifies the credentials that drive the auth
// protocol: short-lived HMAC-signed access tokens, and the opaque random
// strings used as single-use refresh tokens.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenMalformed    = errors.New("token malformed")
	ErrTokenBadSignature = errors.New("token bad signature")
)

// State classifies a token that passed structural and signature checks.
// Expiry is deliberately not an error here: the refresh protocol operates
// on access tokens that have already expired, so the caller decides what
// an expired token means.
type State int

const (
	StateValid State = iota
	StateExpired
)

// Claims is the claim set carried by an access token. The registered ID
// claim (jti) binds the token to the refresh record it was issued with.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Signer mints and verifies access tokens with a single symmetric key.
// It holds no mutable state and is safe for concurrent use.
type Signer struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration
}

// NewSigner validates the signing configuration up front; an empty secret
// or non-positive lifetime is a startup error, not a per-call one.
func NewSigner(
	secret []byte,
	issuer string,
	accessTTL time.Duration,
) (
	*Signer,
	error,
) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is empty")
	}
	if accessTTL <= 0 {
		return nil, errors.New("access token lifetime must be positive")
	}
	return &Signer{
		secret:    secret,
		issuer:    issuer,
		accessTTL: accessTTL,
	}, nil
}

// Mint signs a fresh access token for the account and returns the encoded
// token, its unique jti, and its expiry.
func (s *Signer) Mint(
	accountID string,
	email string,
) (
	encoded string,
	jti string,
	expiry time.Time,
	err error,
) {
	now := time.Now()
	expiry = now.Add(s.accessTTL)
	jti = uuid.NewString()

	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ID:        jti,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	encoded, err = jwt.
		NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString(s.secret)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("couldn't sign access token: %v", err)
	}
	return encoded, jti, expiry, nil
}

// Verify checks structure, signature, and signing algorithm. Only HS256 is
// accepted; a token presenting any other algorithm fails verification. An
// expired but otherwise sound token returns its claims with StateExpired.
func (s *Signer) Verify(
	encoded string,
) (
	*Claims,
	State,
	error,
) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	_, err := parser.ParseWithClaims(encoded, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})

	switch {
	case err == nil:
		return claims, StateValid, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		// signature was already checked; claims are populated
		return claims, StateExpired, nil
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, StateValid, fmt.Errorf("%w: %v", ErrTokenBadSignature, err)
	default:
		return nil, StateValid, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
}
