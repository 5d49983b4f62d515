// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package transport issues HTTP requests on behalf of the resto services and
// classifies their failures.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/internal/observability"
	"github.com/holomush/restoclient/pkg/errutil"
)

const (
	// DefaultTimeout bounds non-streamed requests. Streamed downloads are
	// only bounded by the caller's context.
	DefaultTimeout = 2 * time.Minute
	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "resto-client"

	errorSnippetLimit = 512
)

var tracer = otel.Tracer("github.com/holomush/restoclient/internal/transport")

// Authorizer supplies the Authorization header for a requirement.
type Authorizer interface {
	AuthorizationHeader(ctx context.Context, req dialect.Requirement) (string, error)
}

// BasicSource supplies raw credentials for token requests.
type BasicSource interface {
	BasicCredentials(ctx context.Context) (string, string, error)
}

// Request is one HTTP exchange.
type Request struct {
	Route dialect.Route
	// URL is absolute, either resolved from Route or taken from feature metadata.
	URL string
	// Form is sent url-encoded when Route.Method is POST.
	Form url.Values
	// Basic attaches HTTP Basic credentials instead of a token.
	Basic bool
	// Authorization, when set, is sent verbatim and the Authorizer is skipped.
	Authorization string
}

// Options configures an Executor.
type Options struct {
	Client     *http.Client
	Authorizer Authorizer
	Basic      BasicSource
	Logger     *slog.Logger
	Metrics    *observability.Metrics
	UserAgent  string
}

// Executor sends requests and classifies their outcome.
type Executor struct {
	client    *http.Client
	authz     Authorizer
	basic     BasicSource
	logger    *slog.Logger
	metrics   *observability.Metrics
	userAgent string
}

// NewExecutor creates an Executor. Nil options fall back to defaults; a nil
// Authorizer sends no Authorization header.
func NewExecutor(opts Options) *Executor {
	e := &Executor{
		client:    opts.Client,
		authz:     opts.Authorizer,
		basic:     opts.Basic,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		userAgent: opts.UserAgent,
	}
	if e.client == nil {
		e.client = &http.Client{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.userAgent == "" {
		e.userAgent = DefaultUserAgent
	}
	return e
}

// SetAuthorizer replaces the Authorizer. Used when the authorizer itself
// depends on an executor.
func (e *Executor) SetAuthorizer(a Authorizer) {
	e.authz = a
}

// SetBasicSource replaces the source of Basic credentials.
func (e *Executor) SetBasicSource(b BasicSource) {
	e.basic = b
}

// Do sends req and returns the response when the status is 2xx. The caller
// owns the body. A 403 yields a user-domain ACCESS_DENIED error; any other
// non-2xx status a server-domain HTTP_STATUS error; a request that never got
// an answer a TRANSPORT_FAILED error.
func (e *Executor) Do(ctx context.Context, req Request) (*http.Response, error) {
	action := req.Route.Action
	ctx, span := tracer.Start(ctx, "resto."+string(req.Route.Kind),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Route.Method),
			attribute.String("url.full", req.URL),
			attribute.Bool("resto.streamed", req.Route.Streamed),
		))
	defer span.End()

	resp, err := e.do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, action)
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	return resp, nil
}

func (e *Executor) do(ctx context.Context, req Request) (*http.Response, error) {
	method := req.Route.Method
	if method == "" {
		method = http.MethodGet
	}

	if !req.Route.Streamed {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		// The body of a non-streamed response is read by the caller, after
		// Do returns, so the timer is released with the body.
		defer func() {
			if cancel != nil {
				cancel()
			}
		}()
		httpReq, err := e.build(ctx, method, req)
		if err != nil {
			return nil, err
		}
		resp, err := e.send(ctx, httpReq, req)
		if err != nil {
			return nil, err
		}
		resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
		cancel = nil
		return resp, nil
	}

	httpReq, err := e.build(ctx, method, req)
	if err != nil {
		return nil, err
	}
	return e.send(ctx, httpReq, req)
}

func (e *Executor) build(ctx context.Context, method string, req Request) (*http.Request, error) {
	var body io.Reader
	if method == http.MethodPost && req.Form != nil {
		body = strings.NewReader(req.Form.Encode())
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, errutil.Design("REQUEST_BUILD_FAILED").
			With("url", req.URL).
			With("action", req.Route.Action).
			Wrap(err)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if req.Route.Accept != "" {
		httpReq.Header.Set("Accept", req.Route.Accept)
	}
	httpReq.Header.Set("User-Agent", e.userAgent)

	switch {
	case req.Authorization != "":
		httpReq.Header.Set("Authorization", req.Authorization)
	case req.Basic:
		if e.basic == nil {
			return nil, errutil.Design("NO_BASIC_SOURCE").
				With("action", req.Route.Action).
				Errorf("basic credentials requested without a credential source")
		}
		user, pass, err := e.basic.BasicCredentials(ctx)
		if err != nil {
			return nil, err
		}
		httpReq.SetBasicAuth(user, pass)
	case e.authz != nil:
		header, err := e.authz.AuthorizationHeader(ctx, req.Route.Auth)
		if err != nil {
			return nil, err
		}
		if header != "" {
			httpReq.Header.Set("Authorization", header)
		}
	}
	return httpReq, nil
}

func (e *Executor) send(ctx context.Context, httpReq *http.Request, req Request) (*http.Response, error) {
	action := req.Route.Action
	start := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		e.metrics.RecordRequest(action, 0)
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, errutil.Server(errutil.CodeTransport).
			With("url", req.URL).
			With("action", action).
			Wrapf(err, "network failure while %s", action)
	}
	e.metrics.RecordRequest(action, resp.StatusCode)
	e.logger.DebugContext(ctx, "http exchange",
		"action", action,
		"method", httpReq.Method,
		"url", req.URL,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"elapsed", time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	snippet := readSnippet(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, errutil.User(errutil.CodeAccessDenied).
			With("url", req.URL).
			With("status", resp.StatusCode).
			With("action", action).
			Errorf("Access denied (HTTP 403) while %s", action)
	}
	return nil, errutil.Server(errutil.CodeHTTPStatus).
		With("url", req.URL).
		With("status", resp.StatusCode).
		With("action", action).
		With("body", snippet).
		Errorf("Error %d when %s for %s", resp.StatusCode, action, req.URL)
}

// DoJSON sends req and decodes a JSON body into out.
func (e *Executor) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := e.Do(ctx, req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errutil.Server("INVALID_RESPONSE").
			With("url", req.URL).
			With("action", req.Route.Action).
			Wrapf(err, "invalid JSON response while %s", req.Route.Action)
	}
	return nil
}

// DoText sends req and returns the body as text.
func (e *Executor) DoText(ctx context.Context, req Request) (string, error) {
	resp, err := e.Do(ctx, req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errutil.Server(errutil.CodeTransport).
			With("url", req.URL).
			With("action", req.Route.Action).
			Wrapf(err, "reading response while %s", req.Route.Action)
	}
	return string(data), nil
}

func readSnippet(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, errorSnippetLimit))
	return strings.TrimSpace(string(data))
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
