// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"github.com/holomush/restoclient/pkg/errutil"
)

// DefaultDeniedMessage is reported when the server refuses a token request
// without saying why.
const DefaultDeniedMessage = "Invalid username/password"

func accessDenied(server, message string) error {
	if message == "" {
		message = DefaultDeniedMessage
	}
	return errutil.User(errutil.CodeAccessDenied).
		With("server", server).
		Errorf("%s", message)
}
