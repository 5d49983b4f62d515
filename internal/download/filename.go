// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package download

import (
	"errors"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/holomush/restoclient/pkg/errutil"
)

// preferredExt pins the extension of common types. mime.ExtensionsByType
// depends on the system tables and sorts its answer, which would for
// example name JPEG files .jfif on some hosts.
var preferredExt = map[string]string{
	"image/jpeg":                   ".jpg",
	"image/png":                    ".png",
	"image/tiff":                   ".tif",
	"text/html":                    ".html",
	"text/plain":                   ".txt",
	"text/xml":                     ".xml",
	"application/xml":              ".xml",
	"application/json":             ".json",
	"application/pdf":              ".pdf",
	"application/zip":              ".zip",
	"application/x-zip-compressed": ".zip",
	"application/gzip":             ".gz",
	"application/x-gzip":           ".gz",
	"application/x-tar":            ".tar",
	"application/octet-stream":     ".bin",
}

// mediaType returns the lowercased media type of a Content-Type value, or ""
// when it cannot be parsed.
func mediaType(contentType string) string {
	if strings.TrimSpace(contentType) == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(mt)
}

// extensionFor returns the file extension for a media type. An unknown type
// is a design error: the client cannot name the file.
func extensionFor(mt string) (string, error) {
	if ext, ok := preferredExt[mt]; ok {
		return ext, nil
	}
	exts, err := mime.ExtensionsByType(mt)
	if err != nil || len(exts) == 0 {
		return "", errutil.Design("UNKNOWN_MIMETYPE").
			With("mimetype", mt).
			Errorf("cannot guess the file extension from mimetype: %s", mt)
	}
	ext := strings.ToLower(exts[0])
	if ext == ".jpe" {
		ext = ".jpg"
	}
	return ext, nil
}

// targetPath returns <dir>/<base><ext>, or the first free <base>[n]<ext>.
// Existing files are never overwritten.
func targetPath(dir, base, ext string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	for n := 1; ; n++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", errutil.User("DOWNLOAD_DIR_UNREADABLE").
				With("path", candidate).
				Wrapf(err, "cannot inspect %s", candidate)
		}
		candidate = filepath.Join(dir, base+"["+strconv.Itoa(n)+"]"+ext)
	}
}

// checkDir requires dir to be an existing directory.
func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return errutil.User("INVALID_DOWNLOAD_DIR").
			With("dir", dir).
			Errorf("download directory %s does not exist or is not a directory", dir)
	}
	return nil
}
