package middleware

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid access token")

// accessClaims are the claims of an access token issued by the host. The
// subject is the numeric user id.
type accessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// HS256Validator validates host-issued HS256 access tokens.
type HS256Validator struct {
	secret []byte
	issuer string
}

// NewHS256Validator creates a validator for tokens signed with secret. An
// empty issuer accepts any issuer.
func NewHS256Validator(secret, issuer string) *HS256Validator {
	return &HS256Validator{secret: []byte(secret), issuer: issuer}
}

// ValidateToken implements JWTValidator.
func (v *HS256Validator) ValidateToken(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: subject %q is not a user id", ErrInvalidToken, claims.Subject)
	}

	return &Claims{UserID: userID, Email: claims.Email}, nil
}

// Compile-time check
var _ JWTValidator = (*HS256Validator)(nil)
