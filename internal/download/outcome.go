// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package download

import "fmt"

// Outcome is the interpretation of one download response.
type Outcome interface {
	label() string
}

// Success means the file was written to Path.
type Success struct {
	Path  string
	Bytes int64
}

// LicenseRequired means the server wants LicenseID signed first.
type LicenseRequired struct {
	LicenseID string
}

// Forbidden means the account may not download the file.
type Forbidden struct {
	Message string
}

// StagingPending means the product is being copied from tape to disk on the
// server side.
type StagingPending struct {
	Nudged bool
}

// ProtocolError means the response could not be understood.
type ProtocolError struct {
	ContentType string
	Detail      string
}

func (Success) label() string         { return "success" }
func (LicenseRequired) label() string { return "license_required" }
func (Forbidden) label() string       { return "forbidden" }
func (StagingPending) label() string  { return "staging" }
func (ProtocolError) label() string   { return "protocol_error" }

func (p ProtocolError) String() string {
	if p.ContentType == "" {
		return p.Detail
	}
	return fmt.Sprintf("%s (content-type %s)", p.Detail, p.ContentType)
}
