/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 */

package parser

import (
	"testing"
)

func ancestryOfRightMostLeaf(t *testing.T, ok *ParseOk) []XorNode {
	t.Helper()
	leaf, found := ok.Collection.RightMostLeaf()
	if !found {
		t.Fatal("expected the parse to have at least one terminal leaf")
	}
	return AssertGetAncestry(ok.Collection, leaf.Id)
}

// AssertGetAncestry returns the chain leaf-first: index 0 is the resolved
// leaf, the last entry is the document root with no parent.
func TestAncestryIsLeafFirst(t *testing.T) {
	ok := mustParseOk(t, "let x = 1 in x")
	ancestry := ancestryOfRightMostLeaf(t, ok)

	if len(ancestry) < 2 {
		t.Fatalf("got ancestry of length %d, want at least leaf and root", len(ancestry))
	}
	if leaf := AssertGetLeaf(ancestry); leaf.Kind() != Identifier {
		t.Fatalf("got leaf kind %v, want Identifier (the trailing x)", leaf.Kind())
	}
	root := ancestry[len(ancestry)-1]
	if root.Kind() != LetExpression {
		t.Fatalf("got root kind %v, want LetExpression", root.Kind())
	}
	if _, hasParent := ok.Collection.GetParent(root.Id()); hasParent {
		t.Fatal("expected the ancestry's last entry to be the parentless root")
	}
}

// MaybeNthNext walks towards the root, MaybeNthPrevious back towards the
// leaf, over the leaf-first ancestry.
func TestMaybeNthPreviousAndNext(t *testing.T) {
	ok := mustParseOk(t, "let x = 1 in x")
	ancestry := ancestryOfRightMostLeaf(t, ok)

	parent, found := MaybeNthNext(ancestry, 0, 1)
	if !found || parent.Kind() != IdentifierExpression {
		t.Fatalf("got %v found=%v, want the IdentifierExpression one step towards the root", parent.Kind(), found)
	}
	back, found := MaybeNthPrevious(ancestry, 1, 1)
	if !found || back.Id() != ancestry[0].Id() {
		t.Fatalf("got id %d found=%v, want the leaf again", back.Id(), found)
	}
	if _, found := MaybeNthNext(ancestry, 0, len(ancestry)); found {
		t.Fatal("stepping past the root must report absent")
	}
	if _, found := MaybeNthPrevious(ancestry, 0, 1); found {
		t.Fatal("stepping before the leaf must report absent")
	}
}

// A kind filter that does not match makes the result absent -- not an error --
// so dispatch rules can be written as declarative patterns.
func TestMaybeNthPreviousOfKindsFiltersWithoutFailing(t *testing.T) {
	ok := mustParseOk(t, "let x = 1 in x")
	ancestry := ancestryOfRightMostLeaf(t, ok)

	rootIndex := len(ancestry) - 1
	if _, found := MaybeNthPreviousOfKinds(ancestry, rootIndex, 1, ListExpression); found {
		t.Fatal("a non-matching kind filter must report absent")
	}
	x, found := MaybeNthPreviousOfKinds(ancestry, rootIndex, 1, ListExpression, IdentifierExpression)
	if !found || x.Kind() != IdentifierExpression {
		t.Fatalf("got %v found=%v, want the IdentifierExpression to pass the filter", x.Kind(), found)
	}
}

func TestIndexOfKindOnOrAbove(t *testing.T) {
	ok := mustParseOk(t, "let x = 1 in x")
	ancestry := ancestryOfRightMostLeaf(t, ok)

	i, found := IndexOfKindOnOrAbove(ancestry, 0, LetExpression)
	if !found || ancestry[i].Kind() != LetExpression {
		t.Fatalf("got index %d found=%v, want the enclosing LetExpression", i, found)
	}
	if _, found := IndexOfKindOnOrAbove(ancestry, 0, RecordExpression); found {
		t.Fatal("a kind absent from the ancestry must report not-found")
	}
}

func TestNthPreviousKind(t *testing.T) {
	ok := mustParseOk(t, "let x = 1 in x")
	ancestry := ancestryOfRightMostLeaf(t, ok)

	rootIndex := len(ancestry) - 1
	kind, found := NthPreviousKind(ancestry, rootIndex, 1)
	if !found || kind != IdentifierExpression {
		t.Fatalf("got %v found=%v, want IdentifierExpression", kind, found)
	}
	if got := AssertGetNthPrevious(ancestry, rootIndex, 1); got.Kind() != IdentifierExpression {
		t.Fatalf("got %v, want IdentifierExpression", got.Kind())
	}
}
