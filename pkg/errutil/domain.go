// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil

import (
	"fmt"

	"github.com/samber/oops"
)

// Error domains. A user error is caused by input or server-side refusal and is
// shown to the operator as a single line. A design error signals a client bug.
// A server error is an unexpected response or transport failure.
const (
	DomainUser   = "user"
	DomainDesign = "design"
	DomainServer = "server"
)

// User starts an oops builder for a user-domain error.
func User(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In(DomainUser)
}

// Design starts an oops builder for a design-domain error.
func Design(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In(DomainDesign)
}

// Server starts an oops builder for a server-domain error.
func Server(code string) oops.OopsErrorBuilder {
	return oops.Code(code).In(DomainServer)
}

// Domain returns the oops domain carried by err, or "" for plain errors.
func Domain(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Domain()
	}
	return ""
}

// IsUserError reports whether err belongs to the user domain.
func IsUserError(err error) bool {
	return Domain(err) == DomainUser
}

// HasCode reports whether err is an oops error carrying code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}

// Render formats err for the terminal. User errors are always a single line.
// Other errors only expose their code unless verbose is set, in which case the
// full oops context and stack trace are included.
func Render(err error, verbose bool) string {
	if err == nil {
		return ""
	}
	if verbose {
		return fmt.Sprintf("%+v", err)
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "error: " + err.Error()
	}
	switch oopsErr.Domain() {
	case DomainUser:
		return "error: " + oopsErr.Error()
	case DomainServer:
		return fmt.Sprintf("server error: %s (rerun with --verbosity DEBUG for details)", oopsErr.Error())
	default:
		return fmt.Sprintf("internal error [%v]: %s (rerun with --verbosity DEBUG for details)", oopsErr.Code(), oopsErr.Error())
	}
}

// Codes shared across packages.
const (
	// CodeAccessDenied marks a refused authorization: bad credentials or HTTP 403.
	CodeAccessDenied = "ACCESS_DENIED"
	// CodeHTTPStatus marks an unexpected non-2xx response.
	CodeHTTPStatus = "HTTP_STATUS"
	// CodeTransport marks a request that never got a response.
	CodeTransport = "TRANSPORT_FAILED"
)
