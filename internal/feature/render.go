// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package feature

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"text/tabwriter"
)

const descriptionPreview = 40

// hidden properties are shown in their own tables or not at all.
var hidden = map[string]bool{
	"links":        true,
	"keywords":     true,
	"annexes":      true,
	"services":     true,
	"license":      true,
	"license_info": true,
}

// WriteTable renders the metadata of f as aligned tables.
func (f *Feature) WriteTable(w io.Writer) error {
	_, _ = fmt.Fprintf(w, "\nMetadata available for product %s\n", f.Title())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PROPERTY\tVALUE")
	_, _ = fmt.Fprintln(tw, "--------\t-----")
	for _, key := range sortedKeys(f.Properties) {
		if hidden[key] {
			continue
		}
		value := display(f.Properties[key])
		if key == "description" && len(value) > descriptionPreview {
			value = value[:descriptionPreview] + "[...]"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", key, value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if services, ok := f.Properties["services"].(map[string]any); ok && len(services) > 0 {
		flat := map[string]string{}
		flatten("", services, flat)
		if err := writePairs(w, "SERVICE", flat); err != nil {
			return err
		}
	}

	if a, ok := f.Annex(); ok {
		if err := writePairs(w, "ANNEXES", map[string]string{"name": a.Name, "url": a.URL}); err != nil {
			return err
		}
	}

	return f.License().WriteTable(w, "FEATURE LICENSE")
}

// WriteTable renders the license fields under title.
func (l License) WriteTable(w io.Writer, title string) error {
	return writePairs(w, title, l.Fields)
}

func writePairs(w io.Writer, title string, pairs map[string]string) error {
	_, _ = fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "%s\tVALUE\n", title)
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", k, pairs[k])
	}
	return tw.Flush()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func display(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
