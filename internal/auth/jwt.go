// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns the exp claim of a JWT token. Tokens that are not JWTs,
// or carry no exp claim, report false. The signature is not verified: the
// client only needs to know when the server will stop honouring the token.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func tokenExpired(token string, now time.Time) bool {
	exp, ok := TokenExpiry(token)
	return ok && !now.Before(exp)
}
