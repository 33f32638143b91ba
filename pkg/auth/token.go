package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/stockroom/pkg/config"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL applies when a caller does not ask for a specific lifetime.
// The login endpoint uses JWTConfig.AccessTokenTTL instead.
const DefaultTokenTTL = 15 * time.Minute

var jwtSigningMethod = jwt.SigningMethodHS256

// IssueToken mints a signed token for subject that expires ttl after now.
func IssueToken(cfg config.JWTConfig, now time.Time, subject string, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("token subject is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	claims := AccessTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

// VerifyToken validates tokenString as of now and returns its subject. Any
// failure is a *VerificationError.
func VerifyToken(cfg config.JWTConfig, now time.Time, tokenString string) (string, error) {
	if cfg.Secret == "" {
		return "", &VerificationError{Reason: ReasonUnknown, Err: errors.New("jwt secret is required")}
	}
	if strings.TrimSpace(tokenString) == "" {
		return "", &VerificationError{Reason: ReasonMalformed, Err: jwt.ErrTokenMalformed}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	claims := &AccessTokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		opts...,
	)
	if err != nil {
		return "", &VerificationError{Reason: classify(err), Err: err}
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return "", &VerificationError{Reason: ReasonMissingSubject}
	}
	return subject, nil
}

// ReasonOf extracts the failure reason from err, or ReasonUnknown.
func ReasonOf(err error) FailureReason {
	var verr *VerificationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return ReasonUnknown
}

func classify(err error) FailureReason {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonSignature
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ReasonMissingExpiry
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ReasonIssuer
	}
	return ReasonUnknown
}
