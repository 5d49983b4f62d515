// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package download retrieves the files attached to catalog features.
//
// One download is a loop over response interpretations. A license request is
// answered by signing the license and retrying. A product still on tape is
// nudged, waited for, refetched and retried. Every other interpretation ends
// the loop with a file or an error.
package download

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/holomush/restoclient/internal/feature"
	"github.com/holomush/restoclient/internal/observability"
	"github.com/holomush/restoclient/pkg/errutil"
)

// DefaultStagingInterval is the wait between two attempts on a product
// being staged from tape.
const DefaultStagingInterval = 60 * time.Second

// Server error codes carried by JSON download answers.
const (
	CodeLicenseRequired = 3002
	CodeForbidden       = 3006
)

var tracer = otel.Tracer("github.com/holomush/restoclient/internal/download")

// Backend performs the network side of a download.
type Backend interface {
	// Fetch starts a streamed GET of a file. The caller closes the body.
	Fetch(ctx context.Context, kind feature.FileKind, url string) (*http.Response, error)
	SignLicense(ctx context.Context, licenseID string) error
	// Refetch returns a fresh copy of f from the catalog.
	Refetch(ctx context.Context, f *feature.Feature) (*feature.Feature, error)
}

// Options configures an Orchestrator.
type Options struct {
	// ProductURLSuffix is appended to product URLs.
	ProductURLSuffix string
	StagingInterval  time.Duration
	// StagingRetries bounds the staging waits. Zero waits until the context
	// is cancelled.
	StagingRetries uint64
	Progress       Progress
	Logger         *slog.Logger
	Metrics        *observability.Metrics
}

// Orchestrator downloads feature files one at a time.
type Orchestrator struct {
	backend Backend
	opts    Options
}

// New creates an Orchestrator.
func New(backend Backend, opts Options) *Orchestrator {
	if opts.StagingInterval <= 0 {
		opts.StagingInterval = DefaultStagingInterval
	}
	if opts.Progress == nil {
		opts.Progress = nopProgress{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{backend: backend, opts: opts}
}

// Download writes the file of the given kind of f into dir and returns its
// path.
func (o *Orchestrator) Download(ctx context.Context, f *feature.Feature, kind feature.FileKind, dir string) (string, error) {
	ctx, span := tracer.Start(ctx, "resto.download")
	defer span.End()
	span.SetAttributes(
		attribute.String("resto.feature", f.Title()),
		attribute.String("resto.file_kind", string(kind)),
	)

	path, err := o.download(ctx, f, kind, dir)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "download failed")
		return "", err
	}
	span.SetAttributes(attribute.String("resto.path", path))
	return path, nil
}

func (o *Orchestrator) download(ctx context.Context, f *feature.Feature, kind feature.FileKind, dir string) (string, error) {
	if _, ok := f.DownloadURL(kind); !ok {
		return "", noFile(f, kind)
	}
	if err := checkDir(dir); err != nil {
		return "", err
	}

	var backoff retry.Backoff = retry.NewConstant(o.opts.StagingInterval)
	if o.opts.StagingRetries > 0 {
		backoff = retry.WithMaxRetries(o.opts.StagingRetries, backoff)
	}

	var (
		path    string
		refetch bool
		waits   int
		signed  = map[string]bool{}
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if refetch {
			fresh, err := o.backend.Refetch(ctx, f)
			if err != nil {
				return err
			}
			f = fresh
			refetch = false
		}

		for {
			out, err := o.attempt(ctx, f, kind, dir)
			if err != nil {
				return err
			}
			o.opts.Metrics.RecordDownload(string(kind), out.label())

			switch v := out.(type) {
			case Success:
				o.opts.Metrics.AddBytes(string(kind), v.Bytes)
				o.opts.Logger.InfoContext(ctx, "file downloaded", "path", v.Path, "bytes", v.Bytes)
				path = v.Path
				return nil

			case LicenseRequired:
				if signed[v.LicenseID] {
					return errutil.User("LICENSE_NOT_SIGNED").
						With("license_id", v.LicenseID).
						With("feature", f.Title()).
						Errorf("license %s is still required for %s after signing it", v.LicenseID, f.Title())
				}
				if err := o.backend.SignLicense(ctx, v.LicenseID); err != nil {
					return err
				}
				signed[v.LicenseID] = true
				o.opts.Logger.InfoContext(ctx, "license signed", "license_id", v.LicenseID)

			case Forbidden:
				return errutil.User("DOWNLOAD_FORBIDDEN").
					With("feature", f.Title()).
					With("message", v.Message).
					Errorf("User does not have permission to download %s", f.Title())

			case StagingPending:
				waits++
				refetch = true
				o.opts.Metrics.RecordStagingWait()
				o.opts.Logger.WarnContext(ctx, "product is being copied from tape to disk, waiting",
					"feature", f.Title(),
					"wait", o.opts.StagingInterval,
					"attempt", waits)
				return retry.RetryableError(errutil.User("STAGING_TIMEOUT").
					With("feature", f.Title()).
					With("attempts", waits).
					Errorf("product %s is still being staged after %d attempts, try again later", f.Title(), waits))

			case ProtocolError:
				return errutil.Server("DOWNLOAD_PROTOCOL_ERROR").
					With("feature", f.Title()).
					With("content_type", v.ContentType).
					With("detail", v.Detail).
					Errorf("cannot process the answer when downloading %s %s: %s", kind, f.Title(), v)
			}
		}
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// attempt sends one download request and interprets the answer.
func (o *Orchestrator) attempt(ctx context.Context, f *feature.Feature, kind feature.FileKind, dir string) (Outcome, error) {
	u, ok := f.DownloadURL(kind)
	if !ok {
		return nil, noFile(f, kind)
	}
	if kind == feature.Product {
		u += o.opts.ProductURLSuffix
	}

	resp, err := o.backend.Fetch(ctx, kind, u)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	header := resp.Header.Get("Content-Type")
	mt := mediaType(header)
	o.opts.Logger.DebugContext(ctx, "download answer", "feature", f.Title(), "kind", kind, "content_type", header)

	if mt == "application/json" {
		return parseEnvelope(resp.Body), nil
	}
	if mt == "" {
		return ProtocolError{ContentType: header, Detail: "cannot infer file extension without content-type"}, nil
	}

	ext, err := extensionFor(mt)
	if err != nil {
		return nil, err
	}

	switch mt {
	case "image/jpeg", "image/png", "text/html":
		if kind == feature.Product {
			switch f.Storage() {
			case feature.StorageTape:
				o.opts.Logger.WarnContext(ctx, "product is on tape, triggering its copy to disk on the server", "feature", f.Title())
				if err := o.nudge(ctx, resp.Body, f, ext); err != nil {
					return nil, err
				}
				return StagingPending{Nudged: true}, nil
			case feature.StorageStaging:
				return StagingPending{}, nil
			}
		}
		return o.save(ctx, resp, f, kind, dir, ext, resp.ContentLength)
	}

	if mt == mediaType(f.ProductMimetype()) {
		total, _ := f.ProductSize()
		return o.save(ctx, resp, f, kind, dir, ext, total)
	}

	return ProtocolError{ContentType: header, Detail: "unexpected content-type"}, nil
}

func (o *Orchestrator) save(ctx context.Context, resp *http.Response, f *feature.Feature, kind feature.FileKind, dir, ext string, total int64) (Outcome, error) {
	if total < 0 {
		total = 0
	}
	path, err := targetPath(dir, f.Title()+kind.Suffix(), ext)
	if err != nil {
		return nil, err
	}
	n, err := writeFile(ctx, resp.Body, path, total, o.opts.Progress)
	if err != nil {
		return nil, err
	}
	return Success{Path: path, Bytes: n}, nil
}

// nudge reads the placeholder answer of a taped product into a throwaway
// file. Servers start staging once such a download completes.
func (o *Orchestrator) nudge(ctx context.Context, body io.Reader, f *feature.Feature, ext string) error {
	tmpDir, err := os.MkdirTemp("", "resto-nudge-")
	if err != nil {
		return errutil.User("DOWNLOAD_WRITE_FAILED").Wrapf(err, "cannot create temporary directory")
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	_, err = writeFile(ctx, body, filepath.Join(tmpDir, f.Title()+ext), 0, nopProgress{})
	return err
}

// envelope is the JSON answer of a refused download.
type envelope struct {
	ErrorMessage string          `json:"ErrorMessage"`
	ErrorCode    *int            `json:"ErrorCode"`
	Feature      string          `json:"feature"`
	Collection   string          `json:"collection"`
	LicenseID    string          `json:"license_id"`
	License      json.RawMessage `json:"license"`
	UserID       json.RawMessage `json:"user_id"`
}

func parseEnvelope(body io.Reader) Outcome {
	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return ProtocolError{ContentType: "application/json", Detail: "cannot read JSON answer: " + err.Error()}
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.ErrorCode == nil {
		return ProtocolError{ContentType: "application/json", Detail: "unexpected JSON answer: " + string(data)}
	}
	switch *env.ErrorCode {
	case CodeLicenseRequired:
		if env.LicenseID == "" {
			return ProtocolError{ContentType: "application/json", Detail: "license required without license_id: " + string(data)}
		}
		return LicenseRequired{LicenseID: env.LicenseID}
	case CodeForbidden:
		return Forbidden{Message: env.ErrorMessage}
	default:
		return ProtocolError{
			ContentType: "application/json",
			Detail:      "unsupported error code " + strconv.Itoa(*env.ErrorCode) + ": " + env.ErrorMessage,
		}
	}
}

func noFile(f *feature.Feature, kind feature.FileKind) error {
	return errutil.User("NO_FILE_TO_DOWNLOAD").
		With("feature", f.Title()).
		With("kind", string(kind)).
		Errorf("There is no %s to download for product %s.", kind, f.Title())
}
