// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package collection

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
)

// currentMarker flags the current collection in listings.
const currentMarker = " (*)"

// WriteTable lists collections, marking the one called current.
func WriteTable(w io.Writer, collections []*Collection, current string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "COLLECTION\tSTATUS\tMODEL\tLICENSE ID\tLICENSE NAME")
	_, _ = fmt.Fprintln(tw, "----------\t------\t-----\t----------\t------------")
	for _, c := range collections {
		name := c.Name
		if current != "" && name == current {
			name += currentMarker
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, c.Status, c.Model, c.License.ID, c.License.ShortName)
	}
	return tw.Flush()
}

// WriteStatistics prints the facet counts of c.
func (c *Collection) WriteStatistics(w io.Writer) error {
	_, _ = fmt.Fprintf(w, "\nStatistics for %s: %d features\n", c.Name, c.Statistics.Count)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	facets := make([]string, 0, len(c.Statistics.Facets))
	for facet := range c.Statistics.Facets {
		facets = append(facets, facet)
	}
	sort.Strings(facets)
	for _, facet := range facets {
		for _, fc := range c.Statistics.FacetCounts(facet) {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\n", facet, fc.Value, fc.Count)
		}
	}
	return tw.Flush()
}

// WriteDetails prints a collection with its open search description and
// license.
func (c *Collection) WriteDetails(w io.Writer) error {
	if err := WriteTable(w, []*Collection{c}, ""); err != nil {
		return err
	}
	if len(c.OSDescription) > 0 {
		_, _ = fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, k := range osDescriptionKeys {
			if v, ok := c.OSDescription[k]; ok {
				_, _ = fmt.Fprintf(tw, "%s\t%v\n", k, v)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return c.License.WriteTable(w, "COLLECTION LICENSE")
}
