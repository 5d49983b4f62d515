// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package download

import (
	"context"
	"io"
	"os"

	"github.com/holomush/restoclient/pkg/errutil"
)

// ChunkSize is the size of the blocks copied from the network to disk.
const ChunkSize = 32 * 1024

// Progress receives the advancement of a file transfer.
type Progress interface {
	Start(name string, total int64)
	Advance(n int64)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(string, int64) {}
func (nopProgress) Advance(int64)       {}
func (nopProgress) Finish()             {}

// writeFile streams body into destPath through a temporary file renamed on
// success. total is only used for progress and may be zero when unknown.
func writeFile(ctx context.Context, body io.Reader, destPath string, total int64, progress Progress) (int64, error) {
	tmpPath := destPath + ".tmp"
	tmpFile, err := os.Create(tmpPath) //nolint:gosec // destination is chosen by the client
	if err != nil {
		return 0, errutil.User("DOWNLOAD_WRITE_FAILED").With("path", tmpPath).Wrapf(err, "cannot create %s", tmpPath)
	}

	cleanupNeeded := true
	defer func() {
		_ = tmpFile.Close()
		if cleanupNeeded {
			_ = os.Remove(tmpPath)
		}
	}()

	progress.Start(destPath, total)
	defer progress.Finish()

	var written int64
	buf := make([]byte, ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := tmpFile.Write(buf[:n]); err != nil {
				return written, errutil.User("DOWNLOAD_WRITE_FAILED").With("path", tmpPath).Wrapf(err, "cannot write %s", tmpPath)
			}
			written += int64(n)
			progress.Advance(int64(n))
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return written, ctxErr
			}
			return written, errutil.Server(errutil.CodeTransport).
				With("path", destPath).
				With("written", written).
				Wrapf(readErr, "transfer interrupted after %d bytes", written)
		}
	}

	if err := tmpFile.Close(); err != nil {
		return written, errutil.User("DOWNLOAD_WRITE_FAILED").With("path", tmpPath).Wrapf(err, "cannot close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return written, errutil.User("DOWNLOAD_WRITE_FAILED").With("path", destPath).Wrapf(err, "cannot rename %s", tmpPath)
	}
	cleanupNeeded = false
	return written, nil
}
