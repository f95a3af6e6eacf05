/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package cancel

import (
	"context"
	"testing"
)

func TestNoneNeverCancels(t *testing.T) {
	var tok Token = None{}
	if tok.IsCancelled() {
		t.Fatal("None.IsCancelled() returned true")
	}
	if err := tok.Check(); err != nil {
		t.Fatalf("None.Check() returned %v, want nil", err)
	}
}

func TestContextTokenReflectsCancellation(t *testing.T) {
	ctx, cancelFn := context.WithCancel(context.Background())
	tok := FromContext(ctx)

	if tok.IsCancelled() {
		t.Fatal("IsCancelled() returned true before cancellation")
	}
	if err := tok.Check(); err != nil {
		t.Fatalf("Check() returned %v before cancellation, want nil", err)
	}

	cancelFn()

	if !tok.IsCancelled() {
		t.Fatal("IsCancelled() returned false after cancellation")
	}
	if err := tok.Check(); err != ErrCancelled {
		t.Fatalf("Check() returned %v, want ErrCancelled", err)
	}
}

func TestFromContextNilContextNeverCancels(t *testing.T) {
	tok := FromContext(nil)
	if tok.IsCancelled() {
		t.Fatal("IsCancelled() returned true for a nil context")
	}
}
