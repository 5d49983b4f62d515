// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package criteria

import (
	"strings"

	"github.com/holomush/restoclient/pkg/errutil"
)

// ParseArgs builds criteria from command-line arguments written key:value.
// A key given several times becomes a list. The value of a key runs up to
// the end of the argument, so it may itself contain colons.
func ParseArgs(protocol string, args []string, opts ...Option) (*Criteria, error) {
	c := New(protocol, opts...)

	var order []string
	values := map[string][]string{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.TrimSpace(value) == "" {
			return nil, errutil.User("CRITERION_MISSING_VALUE").
				With("argument", arg).
				Errorf("Criterion %q must be written key:value", arg)
		}
		def, err := c.lookup(key)
		if err != nil {
			return nil, err
		}
		if _, seen := values[def.Key]; !seen {
			order = append(order, def.Key)
		}
		values[def.Key] = append(values[def.Key], value)
	}

	for _, key := range order {
		if err := c.Set(key, values[key]...); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
