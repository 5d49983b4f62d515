// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package feature

import (
	"encoding/json"

	"github.com/holomush/restoclient/pkg/errutil"
)

// SearchProperties are the search metadata of a feature collection.
type SearchProperties struct {
	ID           string `json:"id"`
	Query        any    `json:"query,omitempty"`
	TotalResults *int   `json:"totalResults"`
	StartIndex   int    `json:"startIndex"`
	ItemsPerPage int    `json:"itemsPerPage,omitempty"`
}

// SearchResult is a page of search results, a GeoJSON FeatureCollection.
type SearchResult struct {
	Type       string           `json:"type"`
	Properties SearchProperties `json:"properties"`
	Features   []*Feature       `json:"features"`
}

// ParseSearchResult decodes a search response.
func ParseSearchResult(data []byte) (*SearchResult, error) {
	var fc SearchResult
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, errutil.Server("INVALID_FEATURE_COLLECTION").Wrapf(err, "cannot decode search response")
	}
	if fc.Type != "FeatureCollection" {
		return nil, errutil.Server("INVALID_FEATURE_COLLECTION").
			With("type", fc.Type).
			Errorf("cannot create a feature collection whose type is %q", fc.Type)
	}
	for _, f := range fc.Features {
		if f == nil {
			return nil, errutil.Server("INVALID_FEATURE_COLLECTION").Errorf("null feature in search response")
		}
		if err := f.validate(); err != nil {
			return nil, err
		}
	}
	return &fc, nil
}

// IDs returns the product identifiers of the features on this page.
func (fc *SearchResult) IDs() []string {
	ids := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		ids = append(ids, f.Title())
	}
	return ids
}
