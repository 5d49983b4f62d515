// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package feature models the GeoJSON features, feature collections and
// catalog collections returned by resto servers.
package feature

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/holomush/restoclient/pkg/errutil"
)

// FileKind names one of the files attached to a feature.
type FileKind string

// File kinds.
const (
	Product   FileKind = "product"
	Quicklook FileKind = "quicklook"
	Thumbnail FileKind = "thumbnail"
	Annexes   FileKind = "annexes"
)

// FileKinds lists the downloadable kinds in display order.
var FileKinds = []FileKind{Product, Quicklook, Thumbnail, Annexes}

// ParseFileKind validates a file kind name.
func ParseFileKind(s string) (FileKind, error) {
	for _, k := range FileKinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", errutil.User("UNKNOWN_FILE_KIND").
		With("kind", s).
		Errorf("unexpected file to download: %s, can be product, quicklook, thumbnail or annexes", s)
}

// Suffix is inserted between the product identifier and the extension of
// downloaded files.
func (k FileKind) Suffix() string {
	switch k {
	case Quicklook:
		return "_ql"
	case Thumbnail:
		return "_th"
	case Annexes:
		return "_ann"
	default:
		return ""
	}
}

// Storage is the storage mode of a product.
type Storage string

// Storage modes. Any mode other than tape or staging means the product can
// be streamed right away.
const (
	StorageNone    Storage = ""
	StorageDisk    Storage = "disk"
	StorageTape    Storage = "tape"
	StorageStaging Storage = "staging"
)

// Annex is the first annexes service of a feature.
type Annex struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Feature is one catalog item.
type Feature struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
	Properties map[string]any  `json:"properties"`
}

// Parse decodes a single feature.
func Parse(data []byte) (*Feature, error) {
	var f Feature
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, errutil.Server("INVALID_FEATURE").Wrapf(err, "cannot decode feature")
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Feature) validate() error {
	if f.Type != "Feature" {
		return errutil.Server("INVALID_FEATURE").
			With("type", f.Type).
			Errorf("cannot create a feature whose type is %q", f.Type)
	}
	if f.Properties == nil {
		f.Properties = map[string]any{}
	}
	return nil
}

// ProductIdentifier returns the productIdentifier property.
func (f *Feature) ProductIdentifier() string {
	return stringProp(f.Properties, "productIdentifier")
}

// Title is the product identifier, or the feature id when the server
// omitted it.
func (f *Feature) Title() string {
	if id := f.ProductIdentifier(); id != "" {
		return id
	}
	return f.ID
}

// DownloadURL returns the URL of the file of the given kind, if any.
func (f *Feature) DownloadURL(kind FileKind) (string, bool) {
	var u string
	switch kind {
	case Product:
		u = stringProp(f.downloadService(), "url")
	case Quicklook:
		u = stringProp(f.Properties, "quicklook")
	case Thumbnail:
		u = stringProp(f.Properties, "thumbnail")
	case Annexes:
		if a, ok := f.Annex(); ok {
			u = a.URL
		}
	}
	return u, u != ""
}

// Annex decodes the annexes property, which servers send as a JSON string
// holding a list of services. Only the first one is used.
func (f *Feature) Annex() (Annex, bool) {
	var list []Annex
	switch v := f.Properties["annexes"].(type) {
	case string:
		if v == "" || json.Unmarshal([]byte(v), &list) != nil {
			return Annex{}, false
		}
	case []any:
		data, err := json.Marshal(v)
		if err != nil || json.Unmarshal(data, &list) != nil {
			return Annex{}, false
		}
	default:
		return Annex{}, false
	}
	if len(list) == 0 {
		return Annex{}, false
	}
	return list[0], true
}

// ProductMimetype returns the mimetype advertised by the download service.
func (f *Feature) ProductMimetype() string {
	return stringProp(f.downloadService(), "mimeType")
}

// ProductSize returns the advertised product size in bytes.
func (f *Feature) ProductSize() (int64, bool) {
	switch v := f.downloadService()["size"].(type) {
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// ProductChecksum returns the advertised checksum, if any.
func (f *Feature) ProductChecksum() string {
	return stringProp(f.downloadService(), "checksum")
}

// Storage returns the storage mode of the product.
func (f *Feature) Storage() Storage {
	storage, ok := f.Properties["storage"].(map[string]any)
	if !ok {
		return StorageNone
	}
	return Storage(strings.ToLower(stringProp(storage, "mode")))
}

// License returns the license attached to the feature.
func (f *Feature) License() License {
	return LicenseOf(f.Properties)
}

func (f *Feature) downloadService() map[string]any {
	services, ok := f.Properties["services"].(map[string]any)
	if !ok {
		return nil
	}
	download, _ := services["download"].(map[string]any)
	return download
}

func stringProp(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
