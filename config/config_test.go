/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */
package config

import (
	"testing"
)

func TestConfig(t *testing.T) {

	if res := Str(DefaultLocale); res != "en-US" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Int(MaxLookaheadTokens); res != 64 {
		t.Error("Unexpected result:", res)
		return
	}

	if res := Int(BacktrackThreshold); res != 0 {
		t.Error("Unexpected result:", res)
		return
	}
}
