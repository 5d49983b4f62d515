// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package auth manages the per-server authentication state of the client.
//
// # State
//
//   - Credentials - username and password for one server. The password only
//     lives in memory; a username change invalidates the cached token.
//   - TokenManager - the opaque bearer token: lazy acquisition, validation,
//     revocation and renewal through a TokenAPI.
//
// # Policy
//
// Service decides, for each request, whether and how to attach an
// Authorization header according to the route's dialect.Requirement:
//   - Never - no header.
//   - Always - a valid token is required; credentials are prompted for when
//     missing.
//   - Opportunistic - a header is attached only when it can be had without
//     prompting.
//
// A refused token request resets username, password and token before the
// error reaches the caller.
package auth
