// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package criteria

import (
	"sort"
	"strings"

	"github.com/holomush/restoclient/internal/dialect"
)

// Type is the value type of a criterion.
type Type int

// Criterion value types.
const (
	String Type = iota
	Int
	Float
	Bool
	List
	Date
	DateInterval
	Interval
	Geometry
	AscOrDesc
	Polarisation
	Region
)

// String returns a short name used in help and error messages.
func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Date:
		return "date YYYY-MM-DD"
	case DateInterval:
		return "dates YYYY-MM-DD:YYYY-MM-DD"
	case Interval:
		return "interval [n1,n2["
	case Geometry:
		return "WKT geometry"
	case AscOrDesc:
		return "ascending|descending"
	case Polarisation:
		return "HH|VV|HH HV|VV VH"
	case Region:
		return "region"
	default:
		return "string"
	}
}

// Definition describes one supported criterion.
type Definition struct {
	Key  string
	Type Type
	Help string
}

const (
	coverHelp    = " expressed as a percentage and using brackets, e.g. [n1,n2["
	intervalHelp = " of the time slice of "
)

var common = []Definition{
	{"box", String, "Defined by 'west, south, east, north' meridians and parallels in that order, in decimal degrees (EPSG:4326)"},
	{"identifier", String, "Valid ID or UUID according to RFC 4122"},
	{"lang", String, "Two letters language code according to ISO 639-1"},
	{"parentIdentifier", String, "deprecated"},
	{"q", String, "Free text search / Keywords"},
	{"platform", List, "Acquisition platform"},
	{"instrument", List, "Satellite Instrument"},
	{"processingLevel", List, "e.g. L1A, ORTHO"},
	{"productType", List, "e.g. changes, landuse, etc"},
	{"sensorMode", List, "Acquisition mode of the instrument"},
	{"organisationName", List, "e.g. CNES"},
	{"index", Int, "Results page will begin at this index"},
	{"maxRecords", Int, "Number of results returned per page (default 50)"},
	{"orbitNumber", Int, "Orbit Number (for satellite)"},
	{"page", Int, "Number of the page to display"},
	{"geometry", Geometry, "Defined in Well Known Text standard (WKT) with coordinates in decimal degrees (EPSG:4326)"},
	{"startDate", Date, "Beginning" + intervalHelp + "the search query"},
	{"completionDate", Date, "End" + intervalHelp + "the search query"},
	{"updated", DateInterval, "Time slice of last update of the data updatedFrom:updatedTo"},
	{"resolution", Interval, "Spatial resolution expressed in meter and using brackets, e.g. [n1,n2["},
	{"cloudCover", Interval, "Cloud cover" + coverHelp},
	{"snowCover", Interval, "Snow cover" + coverHelp},
	{"cultivatedCover", Interval, "Cultivated area" + coverHelp},
	{"desertCover", Interval, "Desert area" + coverHelp},
	{"floodedCover", Interval, "Flooded area" + coverHelp},
	{"forestCover", Interval, "Forest area" + coverHelp},
	{"herbaceousCover", Interval, "Herbaceous area" + coverHelp},
	{"iceCover", Interval, "Ice area" + coverHelp},
	{"urbanCover", Interval, "Urban area" + coverHelp},
	{"waterCover", Interval, "Water area" + coverHelp},
	{"lat", Float, "Latitude expressed in decimal degrees (EPSG:4326), must be used with lon"},
	{"lon", Float, "Longitude expressed in decimal degrees (EPSG:4326), must be used with lat"},
	{"radius", Float, "Expressed in meter, must be used with lat and lon"},
	{"region", Region, "Name of a .geojson file from the zones directory"},
}

var specific = map[string][]Definition{
	dialect.RestoDotcloud: {
		{"identifiers", String, "Accept multiple identifiers i1,i2,etc."},
		{"producerProductId", String, "Producer product identifier"},
		{"location", String, "Location string e.g. Paris, France"},
		{"metadataVisibility", String, "Hidden access of product"},
		{"productMode", List, "Product production mode"},
		{"license", List, "Identifier of applied license"},
		{"dotcloudType", List, "Dotcloud Product Type e.g. eo_image"},
		{"dotcloudSubType", List, "Dotcloud Product Sub-type e.g. optical"},
		{"publishedFrom", Date, "Beginning" + intervalHelp + "the product's publication"},
		{"publishedTo", Date, "End" + intervalHelp + "the product's publication"},
		{"updatedFrom", Date, "Beginning" + intervalHelp + "the product's update"},
		{"updatedTo", Date, "End" + intervalHelp + "the product's update"},
		{"incidenceAngle", Interval, "Satellite incidence angle [n1,n2["},
		{"onlyDownloadableProduct", Bool, "true or false: show only downloadable products for the current account"},
	},
	dialect.RestoPepsVersion: {
		{"latitudeBand", String, ""},
		{"mgrsGSquare", String, ""},
		{"realtime", String, ""},
		{"s2TakeId", String, ""},
		{"isNrt", String, ""},
		{"location", String, "Location string e.g. Paris, France"},
		{"resolution", String, "not available on peps"},
		{"relativeOrbitNumber", Int, "Should be an integer"},
		{"orbitDirection", AscOrDesc, "ascending or descending"},
		{"polarisation", Polarisation, "For Radar: 'HH', 'VV', 'HH HV' or 'VV VH'"},
		{"publishedBegin", Date, "Beginning" + intervalHelp + "the product's publication"},
		{"publishedEnd", Date, "End" + intervalHelp + "the product's publication"},
	},
	dialect.RestoTheiaVersion: {
		{"location", String, "Location string e.g. Paris, France"},
		{"locationVECTOR", String, ""},
		{"locationRASTER", String, ""},
		{"typeOSO", String, ""},
		{"OSOsite", String, ""},
		{"OSOcountry", String, ""},
		{"country", String, ""},
		{"name", String, ""},
		{"state", String, ""},
		{"tileId", String, "e.g. T31TCJ"},
		{"zonegeo", String, ""},
		{"relativeOrbitNumber", Int, ""},
		{"year", Int, ""},
		{"nbColInterpolationErrorMax", Int, ""},
		{"percentSaturatedPixelsMax", Int, ""},
		{"percentNoDataPixelsMax", Int, ""},
		{"percentGroundUsefulPixels", Int, ""},
		{"percentUsefulPixelsMin", Int, ""},
	},
}

// Definitions returns the criteria supported by protocol, sorted by key.
// Protocol-specific definitions override common ones. An empty protocol
// yields the common criteria only.
func Definitions(protocol string) []Definition {
	byKey := map[string]Definition{}
	for _, d := range common {
		byKey[d.Key] = d
	}
	for _, d := range specific[strings.ToLower(protocol)] {
		byKey[d.Key] = d
	}
	out := make([]Definition, 0, len(byKey))
	for _, d := range byKey {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
