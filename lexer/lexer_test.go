/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package lexer

import (
	"testing"

	"github.com/kgliang/powerquery-parser/token"
)

func kinds(t *testing.T, snap Snapshot) []token.Kind {
	t.Helper()
	var out []token.Kind
	for _, tok := range snap.Tokens() {
		out = append(out, tok.Kind)
	}
	return out
}

func mustLex(t *testing.T, source string) Snapshot {
	t.Helper()
	snap, err := Lex(source)
	if err != nil {
		t.Fatalf("Lex(%q) returned error: %v", source, err)
	}
	return snap
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	snap := mustLex(t, "let x = 1 in x")
	got := kinds(t, snap)
	want := []token.Kind{
		token.KeywordLet, token.Identifier, token.Equal, token.NumberLiteral,
		token.KeywordIn, token.Identifier, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v tokens, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexNumberLiteral(t *testing.T) {
	snap := mustLex(t, "3.14")
	tok, ok := snap.At(0)
	if !ok || tok.Kind != token.NumberLiteral || tok.Data != "3.14" {
		t.Fatalf("got %+v, want NumberLiteral(3.14)", tok)
	}
}

func TestLexTextLiteralWithEscapedQuote(t *testing.T) {
	snap := mustLex(t, `"a""b"`)
	tok, ok := snap.At(0)
	if !ok || tok.Kind != token.TextLiteral || tok.Data != `a"b` {
		t.Fatalf("got %+v, want TextLiteral(a\"b)", tok)
	}
}

func TestLexUnterminatedTextLiteralEmitsError(t *testing.T) {
	snap := mustLex(t, `"abc`)
	tok, ok := snap.At(0)
	if !ok || tok.Kind != token.Error {
		t.Fatalf("got %+v, want an Error token", tok)
	}
}

func TestLexMultiRuneSymbols(t *testing.T) {
	snap := mustLex(t, "<= >= <> => ...")
	got := kinds(t, snap)
	want := []token.Kind{
		token.LessThanEqualTo, token.GreaterThanEqualTo, token.NotEqual,
		token.FatArrow, token.Ellipsis, token.EOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexBlockCommentIsSkipped(t *testing.T) {
	snap := mustLex(t, "1 /* comment */ + 2")
	got := kinds(t, snap)
	want := []token.Kind{token.NumberLiteral, token.Plus, token.NumberLiteral, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexLineTracking(t *testing.T) {
	snap := mustLex(t, "1\n+ 2")
	plus, ok := snap.At(1)
	if !ok || plus.Kind != token.Plus {
		t.Fatalf("got %+v, want the Plus token at index 1", plus)
	}
	if plus.PositionStart.LineNumber != 1 {
		t.Errorf("got line %d, want line 1", plus.PositionStart.LineNumber)
	}
}

func TestSnapshotAtOutOfRange(t *testing.T) {
	snap := mustLex(t, "1")
	if _, ok := snap.At(-1); ok {
		t.Error("At(-1) should report ok=false")
	}
	if _, ok := snap.At(snap.Len() + 1); ok {
		t.Error("At(Len()+1) should report ok=false")
	}
}
