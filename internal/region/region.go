// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package region resolves named areas of interest stored as GeoJSON files
// into search geometries.
package region

import (
	"encoding/json"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/holomush/restoclient/pkg/errutil"
)

// Ext is the extension of region files.
const Ext = ".geojson"

// Store lists the regions of a directory.
type Store struct {
	dir string
}

// NewStore creates a Store reading dir. A missing directory holds no
// regions.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding region files.
func (s *Store) Dir() string {
	return s.dir
}

// Names returns the lowercased region names, sorted.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errutil.User("REGIONS_UNREADABLE").
			With("dir", s.dir).
			Wrapf(err, "cannot list regions in %s", s.dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		names = append(names, strings.ToLower(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))))
	}
	sort.Strings(names)
	return names, nil
}

// Normalize returns the lowercased name of an existing region. The name may
// carry the file extension.
func (s *Store) Normalize(name string) (string, error) {
	if _, err := s.path(name); err != nil {
		return "", err
	}
	base := strings.ToLower(name)
	return strings.TrimSuffix(base, Ext), nil
}

func (s *Store) path(name string) (string, error) {
	want := strings.ToLower(name)
	if !strings.HasSuffix(want, Ext) {
		want += Ext
	}
	entries, err := os.ReadDir(s.dir)
	if err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.ToLower(e.Name()) == want {
				return filepath.Join(s.dir, e.Name()), nil
			}
		}
	}
	names, _ := s.Names()
	return "", errutil.User("UNKNOWN_REGION").
		With("region", name).
		With("dir", s.dir).
		Errorf("No region file found with name %s, choose from: %s", name, strings.Join(names, ", "))
}

// BBox is a bounding box in decimal degrees.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

// WKT renders the box as a closed polygon.
func (b BBox) WKT() string {
	p := func(x, y float64) string {
		return strconv.FormatFloat(x, 'f', -1, 64) + " " + strconv.FormatFloat(y, 'f', -1, 64)
	}
	return "POLYGON((" + strings.Join([]string{
		p(b.MinX, b.MinY),
		p(b.MaxX, b.MinY),
		p(b.MaxX, b.MaxY),
		p(b.MinX, b.MaxY),
		p(b.MinX, b.MinY),
	}, ", ") + "))"
}

// BBox returns the bounding box of every shape of the region.
func (s *Store) BBox(name string) (BBox, error) {
	path, err := s.path(name)
	if err != nil {
		return BBox{}, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is resolved inside the zones directory
	if err != nil {
		return BBox{}, errutil.User("REGION_UNREADABLE").With("path", path).Wrapf(err, "cannot read region %s", name)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return BBox{}, errutil.User("REGION_INVALID").With("path", path).Wrapf(err, "region %s is not valid GeoJSON", name)
	}

	box := BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	found := false
	walk(doc, func(x, y float64) {
		found = true
		box.MinX = math.Min(box.MinX, x)
		box.MinY = math.Min(box.MinY, y)
		box.MaxX = math.Max(box.MaxX, x)
		box.MaxY = math.Max(box.MaxY, y)
	})
	if !found {
		return BBox{}, errutil.User("REGION_INVALID").With("path", path).Errorf("region %s holds no coordinates", name)
	}
	return box, nil
}

// WKT returns the bounding box of the region as a WKT polygon.
func (s *Store) WKT(name string) (string, error) {
	box, err := s.BBox(name)
	if err != nil {
		return "", err
	}
	return box.WKT(), nil
}

// walk visits every position found under a "coordinates" member.
func walk(node any, visit func(x, y float64)) {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			if k == "coordinates" {
				positions(v, visit)
				continue
			}
			if k == "properties" {
				continue
			}
			walk(v, visit)
		}
	case []any:
		for _, v := range n {
			walk(v, visit)
		}
	}
}

func positions(node any, visit func(x, y float64)) {
	list, ok := node.([]any)
	if !ok || len(list) == 0 {
		return
	}
	if x, ok := list[0].(float64); ok {
		if len(list) >= 2 {
			if y, ok := list[1].(float64); ok {
				visit(x, y)
			}
		}
		return
	}
	for _, v := range list {
		positions(v, visit)
	}
}
