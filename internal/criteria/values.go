// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package criteria

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

const dateLayout = "2006-01-02"

var numberLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Punct", Pattern: `[\[\](),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// interval is a numeric range written [n1,n2[ with either bracket on
// either side.
type interval struct {
	Open  string  `@("[" | "]")`
	Low   float64 `@Number ","`
	High  float64 `@Number`
	Close string  `@("[" | "]")`
}

var intervalParser = participle.MustBuild[interval](
	participle.Lexer(numberLexer),
	participle.Elide("Whitespace"),
)

// wkt is a Well Known Text geometry.
type wkt struct {
	Kind  string   `@Ident`
	Empty bool     `( @"EMPTY"`
	Body  *wktList `| @@ )`
}

type wktList struct {
	Items []*wktItem `"(" @@ ( "," @@ )* ")"`
}

type wktItem struct {
	List  *wktList  `  @@`
	Coord []float64 `| @Number+`
}

var wktParser = participle.MustBuild[wkt](
	participle.Lexer(numberLexer),
	participle.Elide("Whitespace"),
	participle.CaseInsensitive("Ident"),
)

// wktDepths lists, per geometry type, the accepted numbers of list levels
// nested inside the outer parentheses.
var wktDepths = map[string][]int{
	"POINT":           {0},
	"LINESTRING":      {0},
	"POLYGON":         {1},
	"MULTIPOINT":      {0, 1},
	"MULTILINESTRING": {1},
	"MULTIPOLYGON":    {2},
}

// depth returns how many list levels are nested inside l.
func (l *wktList) depth() int {
	if len(l.Items) == 0 || l.Items[0].List == nil {
		return 0
	}
	return 1 + l.Items[0].List.depth()
}

func checkWKT(s string) error {
	g, err := wktParser.ParseString("", s)
	if err != nil {
		return err
	}
	kind := strings.ToUpper(g.Kind)
	depths, ok := wktDepths[kind]
	if !ok {
		return oops.Errorf("unsupported geometry type %s", g.Kind)
	}
	if g.Empty {
		return nil
	}
	got := g.Body.depth()
	if !slices.Contains(depths, got) {
		return oops.Errorf("malformed %s geometry", kind)
	}
	return nil
}

// normalize validates raw against t and returns the value sent to the
// server.
func normalize(t Type, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch t {
	case Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	case Float:
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return "", err
		}
		return raw, nil
	case Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case Date:
		if _, err := time.Parse(dateLayout, raw); err != nil {
			return "", err
		}
		return raw, nil
	case DateInterval:
		from, to, ok := strings.Cut(raw, ":")
		if !ok {
			return "", oops.Errorf("%s has a wrong format, expected from:to", raw)
		}
		start, err := time.Parse(dateLayout, from)
		if err != nil {
			return "", err
		}
		end, err := time.Parse(dateLayout, to)
		if err != nil {
			return "", err
		}
		if end.Before(start) {
			return "", oops.Errorf("interval %s ends before it starts", raw)
		}
		return raw, nil
	case Interval:
		iv, err := intervalParser.ParseString("", raw)
		if err != nil {
			return "", err
		}
		if iv.High < iv.Low {
			return "", oops.Errorf("interval %s ends before it starts", raw)
		}
		return strings.Join(strings.Fields(raw), ""), nil
	case Geometry:
		if err := checkWKT(raw); err != nil {
			return "", err
		}
		return raw, nil
	case AscOrDesc:
		return oneOf(raw, "ascending", "descending")
	case Polarisation:
		return oneOf(raw, "HH", "VV", "HH HV", "VV VH")
	default:
		return raw, nil
	}
}

func oneOf(raw string, accepted ...string) (string, error) {
	for _, a := range accepted {
		if raw == a {
			return raw, nil
		}
	}
	return "", oops.Errorf("%s has a wrong value, expected one of %s", raw, strings.Join(accepted, ", "))
}
