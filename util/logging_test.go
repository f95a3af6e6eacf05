/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package util

import (
	"testing"
)

func TestMemoryLogger(t *testing.T) {
	ml := NewMemoryLogger(5)

	ml.LogDebug("test")
	ml.LogInfo("test")

	if ml.String() != `debug: test
test` {
		t.Error("Unexpected result:", ml.String())
		return
	}

	if res := ml.Slice(); len(res) != 2 || res[0] != "debug: test" || res[1] != "test" {
		t.Error("Unexpected result:", res)
		return
	}

	ml.Reset()
	ml.LogError("test1")

	if res := ml.Slice(); len(res) != 1 || res[0] != "error: test1" {
		t.Error("Unexpected result:", res)
		return
	}

	if res := ml.Size(); res != 1 {
		t.Error("Unexpected result:", res)
		return
	}
}

// MemoryLogger's RingBuffer drops the oldest entry once it's full -- a
// logger meant to trace one parse should never grow unbounded across
// repeated TryRead calls.
func TestMemoryLoggerEvictsOldest(t *testing.T) {
	ml := NewMemoryLogger(2)

	ml.LogInfo("first")
	ml.LogInfo("second")
	ml.LogInfo("third")

	got := ml.Slice()
	if len(got) != 2 || got[0] != "second" || got[1] != "third" {
		t.Error("Unexpected result:", got)
	}
}

func TestNullLoggerDiscardsEverything(t *testing.T) {
	nl := NewNullLogger()
	nl.LogDebug("test")
	nl.LogInfo("test")
	nl.LogError("test")
}

func TestStdOutLoggerFormatsByLevel(t *testing.T) {
	var got []string
	sol := NewStdOutLogger()
	sol.stdlog = func(v ...interface{}) {
		got = append(got, v[0].(string))
	}

	sol.LogDebug("test1")
	sol.LogInfo("test2")
	sol.LogError("test3")

	want := []string{"debug: test1", "test2", "error: test3"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
