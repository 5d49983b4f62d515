// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package feature_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/restoclient/internal/feature"
	"github.com/holomush/restoclient/pkg/errutil"
)

const fullFeature = `{
  "type": "Feature",
  "id": "0b6e8c2a-2f3e-5d4a-9c1b-7e8f9a0b1c2d",
  "geometry": {"type": "Point", "coordinates": [1.5, 43.6]},
  "properties": {
    "productIdentifier": "S2A_MSIL1C_20200101",
    "description": "A very long description that goes on and on and on",
    "quicklook": "https://example.test/ql.jpg",
    "thumbnail": "https://example.test/th.png",
    "annexes": "[{\"name\": \"doc\", \"url\": \"https://example.test/ann.pdf\"}]",
    "storage": {"mode": "TAPE"},
    "services": {"download": {"url": "https://example.test/product", "mimeType": "application/zip", "size": 1024, "checksum": "md5:abc"}},
    "license": "L1",
    "license_info": {"en": {"short_name": "Copernicus"}}
  }
}`

func TestParse(t *testing.T) {
	f, err := feature.Parse([]byte(fullFeature))
	require.NoError(t, err)

	assert.Equal(t, "S2A_MSIL1C_20200101", f.ProductIdentifier())
	assert.Equal(t, "S2A_MSIL1C_20200101", f.Title())
	assert.Equal(t, "application/zip", f.ProductMimetype())
	assert.Equal(t, "md5:abc", f.ProductChecksum())
	assert.Equal(t, feature.StorageTape, f.Storage())

	size, ok := f.ProductSize()
	require.True(t, ok)
	assert.Equal(t, int64(1024), size)

	a, ok := f.Annex()
	require.True(t, ok)
	assert.Equal(t, feature.Annex{Name: "doc", URL: "https://example.test/ann.pdf"}, a)
}

func TestParse_RejectsWrongType(t *testing.T) {
	_, err := feature.Parse([]byte(`{"type": "FeatureCollection", "features": []}`))
	errutil.AssertErrorCode(t, err, "INVALID_FEATURE")

	_, err = feature.Parse([]byte(`not json`))
	errutil.AssertErrorCode(t, err, "INVALID_FEATURE")
}

func TestFeature_DownloadURL(t *testing.T) {
	f, err := feature.Parse([]byte(fullFeature))
	require.NoError(t, err)

	tests := []struct {
		kind feature.FileKind
		want string
	}{
		{feature.Product, "https://example.test/product"},
		{feature.Quicklook, "https://example.test/ql.jpg"},
		{feature.Thumbnail, "https://example.test/th.png"},
		{feature.Annexes, "https://example.test/ann.pdf"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, ok := f.DownloadURL(tt.kind)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeature_MissingFiles(t *testing.T) {
	f, err := feature.Parse([]byte(`{"type": "Feature", "id": "x", "properties": {"productIdentifier": "P", "quicklook": null}}`))
	require.NoError(t, err)

	for _, kind := range feature.FileKinds {
		_, ok := f.DownloadURL(kind)
		assert.False(t, ok, kind)
	}
	_, ok := f.ProductSize()
	assert.False(t, ok)
	assert.Equal(t, feature.StorageNone, f.Storage())
}

func TestFeature_SizeAsString(t *testing.T) {
	f, err := feature.Parse([]byte(`{"type": "Feature", "id": "x", "properties": {"services": {"download": {"size": "2048"}}}}`))
	require.NoError(t, err)

	size, ok := f.ProductSize()
	require.True(t, ok)
	assert.Equal(t, int64(2048), size)
	assert.Equal(t, "x", f.Title())
}

func TestParseFileKind(t *testing.T) {
	k, err := feature.ParseFileKind("QuickLook")
	require.NoError(t, err)
	assert.Equal(t, feature.Quicklook, k)
	assert.Equal(t, "_ql", k.Suffix())
	assert.Equal(t, "", feature.Product.Suffix())
	assert.Equal(t, "_th", feature.Thumbnail.Suffix())
	assert.Equal(t, "_ann", feature.Annexes.Suffix())

	_, err = feature.ParseFileKind("metadata")
	errutil.AssertUserError(t, err, "UNKNOWN_FILE_KIND")
}

func TestFeature_License(t *testing.T) {
	tests := []struct {
		name      string
		props     string
		id        string
		shortName string
	}{
		{
			name:      "full license object",
			props:     `{"license": {"licenseId": "L1", "hasToBeSigned": "once", "description": {"shortName": "Lic"}}}`,
			id:        "L1",
			shortName: "Lic",
		},
		{
			name:      "license id with info",
			props:     `{"license": "L2", "license_info": {"fr": {"short_name": "Court"}}}`,
			id:        "L2",
			shortName: "Court",
		},
		{
			name:      "no license",
			props:     `{}`,
			id:        feature.Unlicensed,
			shortName: "No license",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := feature.Parse([]byte(`{"type": "Feature", "id": "x", "properties": ` + tt.props + `}`))
			require.NoError(t, err)
			l := f.License()
			assert.Equal(t, tt.id, l.ID)
			assert.Equal(t, tt.shortName, l.ShortName)
			assert.Equal(t, tt.id, l.Fields["licenseId"])
		})
	}
}

func TestFeature_WriteTable(t *testing.T) {
	f, err := feature.Parse([]byte(fullFeature))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.WriteTable(&buf))
	out := buf.String()

	assert.Contains(t, out, "Metadata available for product S2A_MSIL1C_20200101")
	assert.Contains(t, out, "A very long description that goes on and[...]")
	assert.Contains(t, out, "download : mimeType")
	assert.Contains(t, out, "https://example.test/ann.pdf")
	assert.Contains(t, out, "FEATURE LICENSE")
	assert.NotContains(t, out, "license_info")
}

func TestParseSearchResult(t *testing.T) {
	body := `{
	  "type": "FeatureCollection",
	  "properties": {"id": "q1", "totalResults": 2, "startIndex": 1},
	  "features": [` + fullFeature + `, {"type": "Feature", "id": "uuid-2", "properties": {}}]
	}`
	res, err := feature.ParseSearchResult([]byte(body))
	require.NoError(t, err)

	require.NotNil(t, res.Properties.TotalResults)
	assert.Equal(t, 2, *res.Properties.TotalResults)
	assert.Equal(t, 1, res.Properties.StartIndex)
	assert.Equal(t, []string{"S2A_MSIL1C_20200101", "uuid-2"}, res.IDs())
}

func TestParseSearchResult_Invalid(t *testing.T) {
	_, err := feature.ParseSearchResult([]byte(`{"type": "Feature"}`))
	errutil.AssertErrorCode(t, err, "INVALID_FEATURE_COLLECTION")

	_, err = feature.ParseSearchResult([]byte(`{"type": "FeatureCollection", "features": [{"type": "Polygon"}]}`))
	errutil.AssertErrorCode(t, err, "INVALID_FEATURE")
}
