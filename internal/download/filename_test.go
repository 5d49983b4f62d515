// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package download

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/restoclient/pkg/errutil"
)

func TestMediaType(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"application/zip", "application/zip"},
		{"Image/JPEG; charset=binary", "image/jpeg"},
		{"text/html; charset=UTF-8", "text/html"},
		{"", ""},
		{"   ", ""},
		{";;;", ""},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, mediaType(tt.header))
		})
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mt   string
		want string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"text/html", ".html"},
		{"application/zip", ".zip"},
		{"application/octet-stream", ".bin"},
	}
	for _, tt := range tests {
		t.Run(tt.mt, func(t *testing.T) {
			ext, err := extensionFor(tt.mt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ext)
		})
	}
}

func TestExtensionFor_Unknown(t *testing.T) {
	_, err := extensionFor("application/x-resto-unheard-of")
	require.Error(t, err)
	assert.Equal(t, errutil.DomainDesign, errutil.Domain(err))
	errutil.AssertErrorCode(t, err, "UNKNOWN_MIMETYPE")
	assert.Contains(t, err.Error(), "cannot guess the file extension from mimetype: application/x-resto-unheard-of")
}

func TestTargetPath(t *testing.T) {
	dir := t.TempDir()

	p, err := targetPath(dir, "S2A", ".zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "S2A.zip"), p)

	require.NoError(t, os.WriteFile(p, nil, 0o600))
	p, err = targetPath(dir, "S2A", ".zip")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "S2A[1].zip"), p)
}

func TestCheckDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, checkDir(dir))

	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	errutil.AssertUserError(t, checkDir(file), "INVALID_DOWNLOAD_DIR")
}
