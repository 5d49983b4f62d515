// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package feature

import "sort"

// Unlicensed is the identifier of items carrying no license.
const Unlicensed = "unlicensed"

// License describes the license attached to a collection or a feature.
type License struct {
	ID            string
	ShortName     string
	HasToBeSigned string
	// Fields holds the flattened license description for display.
	Fields map[string]string
}

// Keys returns the field names in sorted order.
func (l License) Keys() []string {
	keys := make([]string, 0, len(l.Fields))
	for k := range l.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LicenseOf reads the license of a feature's properties or of a collection
// description. Two shapes exist: a full license object under "license", or a
// license id under "license" with localized descriptions under "license_info".
func LicenseOf(item map[string]any) License {
	entry := item["license"]
	info, hasInfo := item["license_info"].(map[string]any)

	full, isObject := entry.(map[string]any)
	if entry != nil && !hasInfo && isObject {
		l := License{
			ID:            stringProp(full, "licenseId"),
			HasToBeSigned: stringProp(full, "hasToBeSigned"),
			Fields:        map[string]string{},
		}
		if desc, ok := full["description"].(map[string]any); ok {
			l.ShortName = stringProp(desc, "shortName")
		}
		flatten("", full, l.Fields)
		return l
	}

	l := License{
		ID:            Unlicensed,
		ShortName:     "No license",
		HasToBeSigned: "never",
		Fields:        map[string]string{},
	}
	if hasInfo {
		if id, ok := entry.(string); ok {
			l.ID = id
		}
		l.ShortName = "Undefined"
		for _, lang := range []string{"en", "fr"} {
			if loc, ok := info[lang].(map[string]any); ok {
				l.ShortName = stringProp(loc, "short_name")
				break
			}
		}
		flatten("description", info, l.Fields)
	}
	l.Fields["licenseId"] = l.ID
	l.Fields["description : shortName"] = l.ShortName
	l.Fields["hasToBeSigned"] = l.HasToBeSigned
	return l
}

func flatten(prefix string, m map[string]any, out map[string]string) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + " : " + k
		}
		if nested, ok := v.(map[string]any); ok {
			flatten(key, nested, out)
			continue
		}
		out[key] = display(v)
	}
}
