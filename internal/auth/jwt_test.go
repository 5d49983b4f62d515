// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/restoclient/internal/auth"
)

func signedJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return token
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("jwt with exp", func(t *testing.T) {
		got, ok := auth.TokenExpiry(signedJWT(t, jwt.MapClaims{"exp": exp.Unix()}))
		require.True(t, ok)
		assert.True(t, exp.Equal(got))
	})

	t.Run("jwt without exp", func(t *testing.T) {
		_, ok := auth.TokenExpiry(signedJWT(t, jwt.MapClaims{"sub": "alice"}))
		assert.False(t, ok)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, ok := auth.TokenExpiry("f7a1c2d3e4")
		assert.False(t, ok)
	})
}
