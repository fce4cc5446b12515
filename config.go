// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dither

import (
	"net/url"
	"os"
	"strings"
)

// QueryParam is the page query parameter that selects the mode.
const QueryParam = "dither"

// EnvVar is the environment variable consulted by ModeFromEnv.
const EnvVar = "DITHER_MODE"

// ModeFromQuery resolves the mode from a raw query string such as
// "dither=noise&page=2". A leading '?' is accepted. Unparseable queries and
// missing parameters resolve to DefaultMode.
func ModeFromQuery(rawQuery string) Mode {
	values, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		Logger().Debug("dither: unparseable query, using default mode", "error", err)
		return DefaultMode
	}
	return ResolveMode(values.Get(QueryParam))
}

// ModeFromEnv resolves the mode from the DITHER_MODE environment variable.
func ModeFromEnv() Mode {
	return ResolveMode(os.Getenv(EnvVar))
}
