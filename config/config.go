/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Package config carries the module's ambient settings: a flat string-keyed
 * map with typed accessors, initialised once from a DefaultConfig map.
 */
package config

import (
	"fmt"
	"strconv"

	"github.com/krotik/common/errorutil"
)

// ProductVersion is the current version of this module.
const ProductVersion = "1.0.0"

// Known configuration keys.
const (
	DefaultLocale      = "DefaultLocale"
	MaxLookaheadTokens = "MaxLookaheadTokens"
	BacktrackThreshold = "BacktrackThreshold"
)

// DefaultConfig is the default configuration.
var DefaultConfig = map[string]interface{}{
	// DefaultLocale is the Locale that parser.DefaultSettings fills in.
	// Template selection does not read it; Settings.Localization supplies
	// the templates.
	DefaultLocale: "en-US",

	// MaxLookaheadTokens sizes the initial capacity of a fresh parse's
	// node-id maps: a rough estimate of how many nodes one speculative
	// window (the parenthesized-vs-function-literal disambiguation) is
	// expected to allocate before committing or rolling back, so the
	// common case doesn't grow the backing maps via repeated rehashing.
	MaxLookaheadTokens: 64,

	// BacktrackThreshold is unused by default (0 means "no limit"); a
	// positive value caps how many times one parse may abandon a
	// function-literal attempt and re-read it as a parenthesized expression.
	BacktrackThreshold: 0,
}

// Config is the actual configuration in use.
var Config map[string]interface{}

func init() {
	data := make(map[string]interface{})
	for k, v := range DefaultConfig {
		data[k] = v
	}
	Config = data
}

// Str reads a config value as a string value.
func Str(key string) string {
	return fmt.Sprint(Config[key])
}

// Int reads a config value as an int value.
func Int(key string) int {
	ret, err := strconv.ParseInt(fmt.Sprint(Config[key]), 10, 64)

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return int(ret)
}

// Bool reads a config value as a boolean value.
func Bool(key string) bool {
	ret, err := strconv.ParseBool(fmt.Sprint(Config[key]))

	errorutil.AssertTrue(err == nil,
		fmt.Sprintf("Could not parse config key %v: %v", key, err))

	return ret
}
