package auth

import "github.com/golang-jwt/jwt/v5"

// AccessTokenClaims is the claim set carried by bearer tokens: the login as
// `sub` plus an absolute `exp`.
type AccessTokenClaims struct {
	jwt.RegisteredClaims
}

// FailureReason tags why a token failed verification. It is meant for logs
// and metrics; clients only ever see a single unauthorized outcome.
type FailureReason string

const (
	ReasonMalformed      FailureReason = "malformed"
	ReasonSignature      FailureReason = "signature"
	ReasonExpired        FailureReason = "expired"
	ReasonMissingSubject FailureReason = "missing_subject"
	ReasonMissingExpiry  FailureReason = "missing_expiry"
	ReasonIssuer         FailureReason = "issuer"
	ReasonUnknown        FailureReason = "unknown"
)

// VerificationError is returned for every token that cannot be trusted.
type VerificationError struct {
	Reason FailureReason
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return "token verification failed: " + string(e.Reason)
	}
	return "token verification failed: " + string(e.Reason) + ": " + e.Err.Error()
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}
