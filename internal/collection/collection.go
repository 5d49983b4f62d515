// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package collection parses the collection descriptions served by resto
// catalogs and keeps the set of collections of one server.
package collection

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/gobwas/glob"

	"github.com/holomush/restoclient/internal/dialect"
	"github.com/holomush/restoclient/internal/feature"
	"github.com/holomush/restoclient/pkg/errutil"
)

// SynthesisName is the display name of the synthesis pseudo-collection.
const SynthesisName = "all collections"

// Statistics are the facet counts of a collection.
type Statistics struct {
	Count  int            `json:"count"`
	Facets map[string]any `json:"facets"`
}

// Collection describes one catalog collection.
type Collection struct {
	Name          string
	Status        string
	Model         string
	OSDescription map[string]any
	License       feature.License
	Statistics    Statistics
}

// Parse decodes one collection description.
func Parse(data []byte) (*Collection, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errutil.Server("INVALID_COLLECTION").Wrapf(err, "cannot decode collection description")
	}
	return fromMap(raw), nil
}

func fromMap(raw map[string]any) *Collection {
	c := &Collection{
		Name:          str(raw, "name"),
		Status:        str(raw, "status"),
		Model:         str(raw, "model"),
		OSDescription: normalizeOSDescription(raw["osDescription"]),
		License:       feature.LicenseOf(raw),
	}
	if c.Name == "*" {
		c.Name = SynthesisName
	}
	if stats, ok := raw["statistics"].(map[string]any); ok {
		c.Statistics = statisticsOf(stats)
	}
	return c
}

func statisticsOf(m map[string]any) Statistics {
	s := Statistics{}
	if n, ok := m["count"].(float64); ok {
		s.Count = int(n)
	}
	if facets, ok := m["facets"].(map[string]any); ok {
		s.Facets = facets
	}
	return s
}

var osDescriptionKeys = []string{"ShortName", "LongName", "Description", "Tags", "Developer", "Contact", "Query", "Attribution"}

// normalizeOSDescription keeps a single language, preferably english.
func normalizeOSDescription(v any) map[string]any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	for _, k := range osDescriptionKeys {
		if _, ok := m[k]; ok {
			return m
		}
	}
	for _, lang := range []string{"en", "fr"} {
		if loc, ok := m[lang].(map[string]any); ok {
			return loc
		}
	}
	return nil
}

// Set is the collections of one server plus their synthesis.
type Set struct {
	Synthesis *Collection
	byName    map[string]*Collection
	names     []string
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{byName: map[string]*Collection{}}
}

// Add inserts c. Names must be unique ignoring case.
func (s *Set) Add(c *Collection) error {
	if c.Name == "" {
		return errutil.Server("INVALID_COLLECTION").Errorf("cannot add a collection without a name")
	}
	if _, ok := s.lookup(c.Name); ok {
		return errutil.Server("DUPLICATE_COLLECTION").
			With("collection", c.Name).
			Errorf("a collection with name %s already exists", c.Name)
	}
	s.byName[c.Name] = c
	s.names = append(s.names, c.Name)
	return nil
}

// Names returns the collection names in server order.
func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of collections.
func (s *Set) Len() int {
	return len(s.names)
}

// Get returns the collection called name, ignoring case.
func (s *Set) Get(name string) (*Collection, bool) {
	canonical, ok := s.lookup(name)
	if !ok {
		return nil, false
	}
	return s.byName[canonical], true
}

// Normalize returns name with the case used by the server.
func (s *Set) Normalize(name string) (string, error) {
	canonical, ok := s.lookup(name)
	if !ok {
		return "", errutil.User("NO_SUCH_COLLECTION").
			With("collection", name).
			With("known", s.names).
			Errorf("No collection found with name %s", name)
	}
	return canonical, nil
}

// Default returns the only collection of the set, if there is exactly one.
func (s *Set) Default() (string, bool) {
	if len(s.names) != 1 {
		return "", false
	}
	return s.names[0], true
}

// Filter returns the collections whose name matches the glob pattern,
// compared case-insensitively. An empty pattern matches everything.
func (s *Set) Filter(pattern string) ([]*Collection, error) {
	out := make([]*Collection, 0, len(s.names))
	if pattern == "" {
		for _, n := range s.names {
			out = append(out, s.byName[n])
		}
		return out, nil
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return nil, errutil.User("INVALID_FILTER").
			With("pattern", pattern).
			Wrapf(err, "invalid collection filter %q", pattern)
	}
	for _, n := range s.names {
		if g.Match(strings.ToLower(n)) {
			out = append(out, s.byName[n])
		}
	}
	return out, nil
}

func (s *Set) lookup(name string) (string, bool) {
	for _, n := range s.names {
		if strings.EqualFold(n, name) {
			return n, true
		}
	}
	return "", false
}

// ParseDescription decodes a Describe or GetCollections response. The three
// catalog dialects shape statistics differently; the response must match the
// dialect the server is configured with.
func ParseDescription(protocol string, data []byte) (*Set, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errutil.Server("INVALID_RESPONSE").Wrapf(err, "cannot decode collections description")
	}

	detected := detectProtocol(raw)
	if detected == "" {
		return nil, errutil.Server("INCOMPREHENSIBLE_RESPONSE").
			Errorf("response does not contain a valid resto collections description")
	}
	if detected != protocol {
		return nil, errutil.Server("INCONSISTENT_RESPONSE").
			With("detected", detected).
			With("expected", protocol).
			Errorf("detected a %s response while waiting for a %s response", detected, protocol)
	}

	var synthesis map[string]any
	switch detected {
	case dialect.RestoTheiaVersion:
		synthesis, _ = raw["synthesis"].(map[string]any)
	case dialect.RestoPepsVersion:
		synthesis = map[string]any{"name": "*", "statistics": raw["statistics"]}
	default:
		synthesis = map[string]any{
			"name":       "*",
			"statistics": map[string]any{"count": float64(0), "facets": raw["statistics"]},
		}
	}

	set := NewSet()
	set.Synthesis = fromMap(synthesis)
	set.Synthesis.Statistics.Count = countFacet(set.Synthesis.Statistics.Facets, "collection")

	list, _ := raw["collections"].([]any)
	for _, item := range list {
		desc, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if err := set.Add(fromMap(desc)); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func detectProtocol(raw map[string]any) string {
	if _, ok := raw["collections"]; !ok {
		return ""
	}
	if stats, ok := raw["statistics"].(map[string]any); ok {
		if hasFacetsAndCount(stats) {
			return dialect.RestoPepsVersion
		}
		return dialect.RestoDotcloud
	}
	if synthesis, ok := raw["synthesis"].(map[string]any); ok {
		if stats, ok := synthesis["statistics"].(map[string]any); ok && hasFacetsAndCount(stats) {
			return dialect.RestoTheiaVersion
		}
	}
	return ""
}

func hasFacetsAndCount(stats map[string]any) bool {
	_, facets := stats["facets"]
	_, count := stats["count"]
	return facets && count
}

// countFacet sums the counts of one facet.
func countFacet(facets map[string]any, name string) int {
	counts, ok := facets[name].(map[string]any)
	if !ok {
		return 0
	}
	total := 0
	for _, v := range counts {
		if n, ok := v.(float64); ok {
			total += int(n)
		}
	}
	return total
}

// FacetCounts returns the counts of one facet sorted by key.
func (st Statistics) FacetCounts(name string) []FacetCount {
	counts, ok := st.Facets[name].(map[string]any)
	if !ok {
		return nil
	}
	out := make([]FacetCount, 0, len(counts))
	for k, v := range counts {
		if n, ok := v.(float64); ok {
			out = append(out, FacetCount{Value: k, Count: int(n)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// FacetCount is one facet value and its count.
type FacetCount struct {
	Value string
	Count int
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
