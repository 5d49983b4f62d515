// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package criteria builds the search criteria sent to resto catalogs.
//
// Criteria are typed per catalog dialect. Keys are matched without regard to
// case and sent with the server's spelling. Identifier criteria take
// precedence over any geometry, and a region is turned into a WKT geometry
// unless a geometry was given explicitly.
package criteria

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/holomush/restoclient/pkg/errutil"
)

// RegionResolver converts a region name into a WKT geometry.
type RegionResolver interface {
	WKT(name string) (string, error)
}

type entry struct {
	key    string
	values []string
}

// Criteria is an ordered set of search criteria for one catalog dialect.
type Criteria struct {
	protocol string
	defs     map[string]Definition
	entries  []entry
	regions  RegionResolver
	region   string
}

// Option configures Criteria.
type Option func(*Criteria)

// WithRegions enables the region criterion.
func WithRegions(r RegionResolver) Option {
	return func(c *Criteria) { c.regions = r }
}

// New creates empty criteria for a catalog protocol.
func New(protocol string, opts ...Option) *Criteria {
	c := &Criteria{protocol: protocol, defs: map[string]Definition{}}
	for _, d := range Definitions(protocol) {
		c.defs[strings.ToLower(d.Key)] = d
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Set validates and records a criterion. Several values are only accepted
// for list criteria.
func (c *Criteria) Set(key string, values ...string) error {
	def, err := c.lookup(key)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return errutil.User("CRITERION_MISSING_VALUE").
			With("criterion", def.Key).
			Errorf("criterion %s needs a value", def.Key)
	}
	if len(values) > 1 && def.Type != List {
		return errutil.User("CRITERION_NOT_A_LIST").
			With("criterion", def.Key).
			Errorf("criterion %s accepts a single value, got %d", def.Key, len(values))
	}

	if def.Type == Region {
		return c.setRegion(values[0])
	}

	normalized := make([]string, 0, len(values))
	for _, v := range values {
		n, err := normalize(def.Type, v)
		if err != nil {
			return errutil.User("CRITERION_INVALID").
				With("criterion", def.Key).
				With("value", v).
				Wrapf(err, "criterion %s has an unexpected value %q, expected %s", def.Key, v, def.Type)
		}
		normalized = append(normalized, n)
	}
	c.put(def.Key, normalized)
	c.manageGeometry()
	return nil
}

// Get returns the values recorded for key.
func (c *Criteria) Get(key string) ([]string, bool) {
	def, err := c.lookup(key)
	if err != nil {
		return nil, false
	}
	for _, e := range c.entries {
		if e.key == def.Key {
			return e.values, true
		}
	}
	return nil, false
}

// Keys returns the recorded keys in insertion order.
func (c *Criteria) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Validate checks constraints spanning several criteria.
func (c *Criteria) Validate() error {
	_, hasLat := c.Get("lat")
	_, hasLon := c.Get("lon")
	_, hasRadius := c.Get("radius")
	if hasLat != hasLon {
		return errutil.User("CRITERION_GROUP").Errorf("lat AND lon must be present simultaneously")
	}
	if hasRadius && !hasLat {
		return errutil.User("CRITERION_GROUP").Errorf("With radius, latitude AND longitude must be present")
	}
	return nil
}

// Encode returns the query part of a search URL. It always starts with
// _rc=true so that servers report the total number of results. List values
// are sent as key[i]=value.
func (c *Criteria) Encode() string {
	var b strings.Builder
	b.WriteString("_rc=true&")
	for _, e := range c.entries {
		if len(e.values) == 1 {
			b.WriteString(e.key + "=" + url.QueryEscape(e.values[0]) + "&")
			continue
		}
		for i, v := range e.values {
			b.WriteString(e.key + "[" + strconv.Itoa(i) + "]=" + url.QueryEscape(v) + "&")
		}
	}
	return b.String()
}

// Supported lists the supported keys, sorted.
func (c *Criteria) Supported() []string {
	keys := make([]string, 0, len(c.defs))
	for _, d := range c.defs {
		keys = append(keys, d.Key)
	}
	sort.Strings(keys)
	return keys
}

func (c *Criteria) lookup(key string) (Definition, error) {
	def, ok := c.defs[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return Definition{}, errutil.User("CRITERION_UNSUPPORTED").
			With("criterion", key).
			With("protocol", c.protocol).
			Errorf("Criterion %s not supported by this resto server, choose from the following list: %s",
				key, strings.Join(c.Supported(), ", "))
	}
	return def, nil
}

func (c *Criteria) put(key string, values []string) {
	for i, e := range c.entries {
		if e.key == key {
			c.entries[i].values = values
			return
		}
	}
	c.entries = append(c.entries, entry{key: key, values: values})
}

func (c *Criteria) remove(key string) {
	for i, e := range c.entries {
		if e.key == key {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

func (c *Criteria) setRegion(name string) error {
	if c.regions == nil {
		return errutil.Design("NO_REGION_RESOLVER").
			With("region", name).
			Errorf("region criterion used without a region directory")
	}
	c.region = name
	if c.hasIdentifier() {
		return nil
	}
	if _, ok := c.Get("geometry"); ok {
		return nil
	}
	geometry, err := c.regions.WKT(name)
	if err != nil {
		return err
	}
	c.put("geometry", []string{geometry})
	return nil
}

// manageGeometry drops the geometry once an identifier is known.
func (c *Criteria) manageGeometry() {
	if c.hasIdentifier() {
		c.remove("geometry")
	}
}

func (c *Criteria) hasIdentifier() bool {
	for _, e := range c.entries {
		if e.key == "identifier" || e.key == "identifiers" {
			return true
		}
	}
	return false
}
