// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package dialect holds the route tables of the authentication and catalog
// protocol variants spoken by resto servers.
//
// A dialect maps each request kind to a Route: relative path template, HTTP
// method, expected response type, authorization requirement, and whether the
// body is streamed. A kind missing from a dialect is unsupported by servers
// speaking it; callers decide what "unsupported" means for them.
package dialect

import (
	"errors"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/holomush/restoclient/pkg/errutil"
)

// Requirement says whether a request needs an Authorization header.
type Requirement int

// Authorization requirements.
const (
	// Never sends no Authorization header.
	Never Requirement = iota
	// Always requires a valid token, prompting for credentials if needed.
	Always
	// Opportunistic attaches a token only if one can be had without prompting.
	Opportunistic
)

// String returns the requirement name.
func (r Requirement) String() string {
	switch r {
	case Never:
		return "NEVER"
	case Always:
		return "ALWAYS"
	case Opportunistic:
		return "OPPORTUNISTIC"
	default:
		return "UNKNOWN"
	}
}

// Kind identifies a request type.
type Kind string

// Request kinds.
const (
	GetToken          Kind = "get_token"
	CheckToken        Kind = "check_token"
	RevokeToken       Kind = "revoke_token"
	Describe          Kind = "describe"
	GetCollections    Kind = "get_collections"
	GetCollection     Kind = "get_collection"
	SearchCollection  Kind = "search_collection"
	SignLicense       Kind = "sign_license"
	DownloadProduct   Kind = "download_product"
	DownloadQuicklook Kind = "download_quicklook"
	DownloadThumbnail Kind = "download_thumbnail"
	DownloadAnnexes   Kind = "download_annexes"
)

// Accept values for Route.Accept.
const (
	AcceptJSON = "application/json"
	AcceptText = "text/plain"
)

// Route describes how to issue one kind of request.
type Route struct {
	Kind   Kind
	Action string
	// Path is relative to the service base URL. Empty for downloads whose URL
	// comes from feature metadata, and for SSO token endpoints that live at
	// the base URL itself.
	Path     string
	Method   string
	Accept   string
	Auth     Requirement
	Streamed bool
	CacheFor time.Duration
}

// ErrUnsupported is returned when a dialect has no route for a request kind.
var ErrUnsupported = errors.New("request not supported by this server")

var placeholder = regexp.MustCompile(`\{([a-z_]+)\}`)

// Resolve builds the absolute URL of the route against baseURL. Placeholders
// such as {collection} are replaced from params; the {criteria_url} and
// {token} placeholders are query material and are not path-escaped.
func (r Route) Resolve(baseURL string, params map[string]string) (string, error) {
	base, err := url.Parse(EnsureTrailingSlash(baseURL))
	if err != nil {
		return "", oops.Code("DIALECT_BAD_BASE_URL").With("base_url", baseURL).Wrap(err)
	}

	var missing []string
	rel := placeholder.ReplaceAllStringFunc(r.Path, func(m string) string {
		name := m[1 : len(m)-1]
		v, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return m
		}
		if name == "criteria_url" || name == "token" {
			return v
		}
		return url.PathEscape(v)
	})
	if len(missing) > 0 {
		return "", oops.Code("DIALECT_MISSING_PARAM").
			With("kind", string(r.Kind)).
			With("missing", missing).
			Errorf("route %s needs parameters %s", r.Kind, strings.Join(missing, ", "))
	}

	ref, err := url.Parse(rel)
	if err != nil {
		return "", oops.Code("DIALECT_BAD_ROUTE").With("kind", string(r.Kind)).With("path", rel).Wrap(err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Dialect is a named route table.
type Dialect struct {
	Name   string
	Family string
	// ProductURLSuffix is appended to feature product URLs before download.
	ProductURLSuffix string
	routes           map[Kind]Route
}

// Route returns the route for kind, or ErrUnsupported.
func (d *Dialect) Route(kind Kind) (Route, error) {
	r, ok := d.routes[kind]
	if !ok {
		return Route{}, oops.Code("DIALECT_UNSUPPORTED").
			With("dialect", d.Name).
			With("kind", string(kind)).
			Wrap(ErrUnsupported)
	}
	return r, nil
}

// Supports reports whether kind has a route in d.
func (d *Dialect) Supports(kind Kind) bool {
	_, ok := d.routes[kind]
	return ok
}

// EnsureTrailingSlash returns u with exactly one trailing slash.
func EnsureTrailingSlash(u string) string {
	return strings.TrimRight(u, "/") + "/"
}

func names(m map[string]*Dialect) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lookup(family string, m map[string]*Dialect, name string) (*Dialect, error) {
	d, ok := m[strings.ToLower(name)]
	if !ok {
		return nil, errutil.User("DIALECT_UNKNOWN").
			With("family", family).
			With("dialect", name).
			Errorf("%s protocol %q is unknown, should be one of %s", family, name, strings.Join(names(m), ", "))
	}
	return d, nil
}
