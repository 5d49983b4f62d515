// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package restoapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/holomush/restoclient/internal/collection"
	"github.com/holomush/restoclient/internal/criteria"
	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/internal/feature"
	"github.com/holomush/restoclient/internal/transport"
	"github.com/holomush/restoclient/pkg/errutil"
)

// Identity provides the account name used in license routes.
type Identity interface {
	UsernameB64() string
}

type cached struct {
	data []byte
	at   time.Time
}

// Catalog talks to the catalog service of one server.
type Catalog struct {
	exec     *transport.Executor
	dialect  *dialect.Dialect
	baseURL  string
	identity Identity

	mu    sync.Mutex
	cache map[string]cached
	now   func() time.Time
}

// NewCatalog creates a Catalog.
func NewCatalog(exec *transport.Executor, d *dialect.Dialect, baseURL string, identity Identity) *Catalog {
	return &Catalog{
		exec:     exec,
		dialect:  d,
		baseURL:  baseURL,
		identity: identity,
		cache:    map[string]cached{},
		now:      time.Now,
	}
}

// Dialect returns the catalog dialect.
func (c *Catalog) Dialect() *dialect.Dialect {
	return c.dialect
}

// Describe returns the collections of the service with their statistics.
func (c *Catalog) Describe(ctx context.Context) (*collection.Set, error) {
	data, err := c.get(ctx, dialect.Describe, nil)
	if err != nil {
		return nil, err
	}
	return collection.ParseDescription(c.dialect.Name, data)
}

// Collections returns the collections of the service.
func (c *Catalog) Collections(ctx context.Context) (*collection.Set, error) {
	data, err := c.get(ctx, dialect.GetCollections, nil)
	if err != nil {
		return nil, err
	}
	return collection.ParseDescription(c.dialect.Name, data)
}

// Collection returns the description of one collection.
func (c *Catalog) Collection(ctx context.Context, name string) (*collection.Collection, error) {
	data, err := c.get(ctx, dialect.GetCollection, map[string]string{"collection": name})
	if err != nil {
		return nil, err
	}
	return collection.Parse(data)
}

// Search runs a search in collection and returns the decoded page and the
// raw response.
func (c *Catalog) Search(ctx context.Context, collectionName string, crit *criteria.Criteria) (*feature.SearchResult, []byte, error) {
	data, err := c.get(ctx, dialect.SearchCollection, map[string]string{
		"collection":   collectionName,
		"criteria_url": crit.Encode(),
	})
	if err != nil {
		return nil, nil, err
	}
	res, err := feature.ParseSearchResult(data)
	if err != nil {
		return nil, nil, err
	}
	return res, data, nil
}

// FeatureByID fetches the feature whose product identifier or id is id.
// Identifiers that are UUIDs are sent in canonical form.
func (c *Catalog) FeatureByID(ctx context.Context, collectionName, id string) (*feature.Feature, error) {
	if u, err := uuid.Parse(id); err == nil {
		id = u.String()
	}
	crit := criteria.New(c.dialect.Name)
	if err := crit.Set("identifier", id); err != nil {
		return nil, err
	}

	res, _, err := c.Search(ctx, collectionName, crit)
	if err != nil {
		return nil, err
	}
	switch len(res.Features) {
	case 0:
		return nil, errutil.User("FEATURE_NOT_FOUND").
			With("id", id).
			With("collection", collectionName).
			Errorf("No result found for id %s", id)
	case 1:
	default:
		return nil, errutil.Server("FEATURE_AMBIGUOUS").
			With("id", id).
			With("count", len(res.Features)).
			Errorf("Several results found for id %s", id)
	}

	f := res.Features[0]
	if id != f.ProductIdentifier() && !strings.EqualFold(id, f.ID) {
		return nil, errutil.Server("INCONSISTENT_RESPONSE").
			With("id", id).
			With("product_identifier", f.ProductIdentifier()).
			With("uuid", f.ID).
			Errorf("Retrieved feature (id : %s / uuid : %s) inconsistent with requested one (%s)",
				f.ProductIdentifier(), f.ID, id)
	}
	return f, nil
}

// SignLicense signs licenseID on behalf of the current account.
func (c *Catalog) SignLicense(ctx context.Context, licenseID string) error {
	route, err := c.dialect.Route(dialect.SignLicense)
	if err != nil {
		return errutil.User("LICENSE_SIGNING_UNSUPPORTED").
			With("license_id", licenseID).
			Wrapf(err, "license %s must be signed but server cannot sign licenses, sign it on the server web site", licenseID)
	}
	user := c.identity.UsernameB64()
	if user == "" {
		return errutil.User("CREDENTIALS_REQUIRED").
			With("license_id", licenseID).
			Errorf("an account is required to sign license %s", licenseID)
	}
	u, err := route.Resolve(c.baseURL, map[string]string{"user": user, "license_id": licenseID})
	if err != nil {
		return err
	}

	var body statusResponse
	if err := c.exec.DoJSON(ctx, transport.Request{Route: route, URL: u}, &body); err != nil {
		return err
	}
	if !body.ok() {
		return errutil.User("LICENSE_NOT_SIGNED").
			With("license_id", licenseID).
			With("message", body.Message).
			Errorf("Unable to sign license %s. Reason : %s", licenseID, body.Message)
	}
	return nil
}

// Fetch starts the streamed download of a file of the given kind. The caller
// owns the response body.
func (c *Catalog) Fetch(ctx context.Context, kind feature.FileKind, rawURL string) (*http.Response, error) {
	k, ok := dialect.DownloadKind(string(kind))
	if !ok {
		return nil, errutil.Design("UNKNOWN_FILE_KIND").With("kind", string(kind)).Errorf("no route for file kind %s", kind)
	}
	route, err := c.dialect.Route(k)
	if err != nil {
		return nil, err
	}
	return c.exec.Do(ctx, transport.Request{Route: route, URL: rawURL})
}

func (c *Catalog) get(ctx context.Context, kind dialect.Kind, params map[string]string) ([]byte, error) {
	route, err := c.dialect.Route(kind)
	if err != nil {
		return nil, err
	}
	u, err := route.Resolve(c.baseURL, params)
	if err != nil {
		return nil, err
	}

	if route.CacheFor > 0 {
		c.mu.Lock()
		entry, ok := c.cache[u]
		c.mu.Unlock()
		if ok && c.now().Sub(entry.at) < route.CacheFor {
			return entry.data, nil
		}
	}

	resp, err := c.exec.Do(ctx, transport.Request{Route: route, URL: u})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errutil.Server(errutil.CodeTransport).
			With("url", u).
			Wrapf(err, "reading response while %s", route.Action)
	}

	if route.CacheFor > 0 {
		c.mu.Lock()
		c.cache[u] = cached{data: data, at: c.now()}
		c.mu.Unlock()
	}
	return data, nil
}
