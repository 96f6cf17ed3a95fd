package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoExpiry is returned by ExpiresAt for tokens without an exp claim.
	ErrNoExpiry = errors.New("token has no exp claim")

	// ErrMalformedToken is returned for tokens that are not three dot-separated segments.
	ErrMalformedToken = errors.New("token is not a three-part jwt")
)

// unverifiedParser only decodes segments. Signatures and headers are never checked.
var unverifiedParser = jwt.NewParser()

// expClaim is the one payload field the client reads
type expClaim struct {
	Exp json.Number `json:"exp"`
}

// expSeconds decodes the payload segment and returns exp in seconds,
// fraction included. The header is not decoded.
func expSeconds(token string) (float64, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return 0, ErrMalformedToken
	}
	payload, err := unverifiedParser.DecodeSegment(parts[1])
	if err != nil {
		return 0, fmt.Errorf("decode token payload: %w", err)
	}

	var claims expClaim
	if err := json.Unmarshal(payload, &claims); err != nil {
		return 0, fmt.Errorf("decode token payload: %w", err)
	}
	if claims.Exp == "" {
		return 0, ErrNoExpiry
	}
	exp, err := claims.Exp.Float64()
	if err != nil || math.IsNaN(exp) || math.IsInf(exp, 0) {
		return 0, fmt.Errorf("token exp %q is not a number", claims.Exp)
	}
	return exp, nil
}

// ExpiresAt decodes the token payload without verifying the signature and
// returns its exp claim.
func ExpiresAt(token string) (time.Time, error) {
	exp, err := expSeconds(token)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(math.Floor(exp * 1000))), nil
}

// IsExpired reports whether token is expired as of now.
func IsExpired(token string) bool {
	return IsExpiredAt(token, time.Now())
}

// IsExpiredAt reports whether exp*1000 lies before now in milliseconds.
// Anything that cannot be decoded counts as expired.
func IsExpiredAt(token string, now time.Time) bool {
	exp, err := expSeconds(token)
	if err != nil {
		return true
	}
	return exp*1000 < float64(now.UnixMilli())
}
