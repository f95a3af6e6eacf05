/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * XorNode: a uniform view over a node that may currently be a finished
 * AstNode or an open ContextNode, plus the ancestry utilities that navigate
 * the dual-mode graph without the caller needing to know which side of the
 * duality any given node is on.
 */
package parser

import (
	"github.com/krotik/common/errorutil"
)

// XorTag discriminates which side of the dual-mode graph a XorNode wraps.
type XorTag int

const (
	XorAst XorTag = iota
	XorContext
)

// XorNode is the uniform "either a finished AstNode or an open ContextNode"
// view, so ancestry and autocomplete code never special-case which kind of
// node it is currently looking at.
type XorNode struct {
	Tag         XorTag
	AstNode     *AstNode
	ContextNode *ContextNode
}

// Id returns the underlying node's id, valid on either side of the duality.
func (x XorNode) Id() int {
	if x.Tag == XorAst {
		return x.AstNode.Id
	}
	return x.ContextNode.Id
}

// Kind returns the underlying node's AstNodeKind, valid on either side.
func (x XorNode) Kind() AstNodeKind {
	if x.Tag == XorAst {
		return x.AstNode.Kind
	}
	return x.ContextNode.Kind
}

// AttributeIndex returns the node's position among its parent's children, or
// nil if it is the root or (for an open ContextNode) has not yet been
// assigned one by StartContext.
func (x XorNode) AttributeIndex() *int {
	if x.Tag == XorAst {
		return x.AstNode.AttributeIndex
	}
	return x.ContextNode.attributeIndex
}

// IsAst reports whether this XorNode currently wraps a finished AstNode.
func (x XorNode) IsAst() bool { return x.Tag == XorAst }

// AssertGetAncestry returns the ancestry chain from rootId up to the
// document root, leaf-first -- the direction every inspection algorithm
// walks. Panics via errorutil if rootId does not resolve; TryRead's
// boundary converts that into a typed error.
func AssertGetAncestry(collection *NodeIdMapCollection, rootId int) []XorNode {
	var chain []XorNode
	id := rootId
	for {
		x, ok := collection.GetXor(id)
		errorutil.AssertTrue(ok, "assertGetAncestry: id must resolve to a node")
		chain = append(chain, x)

		parentId, hasParent := collection.GetParent(id)
		if !hasParent {
			break
		}
		id = parentId
	}
	return chain
}

// MaybeNthPrevious returns the node n steps closer to the leaf than
// ancestry[index], or false if that would run before the start of the chain.
// ancestry is leaf-first, as returned by AssertGetAncestry.
func MaybeNthPrevious(ancestry []XorNode, index int, n int) (XorNode, bool) {
	target := index - n
	if target < 0 || target >= len(ancestry) {
		return XorNode{}, false
	}
	return ancestry[target], true
}

// MaybeNthNext returns the ancestor n steps further from the leaf than
// ancestry[index] (i.e. towards the root), or false if that would run past
// the end of the chain.
func MaybeNthNext(ancestry []XorNode, index int, n int) (XorNode, bool) {
	target := index + n
	if target < 0 || target >= len(ancestry) {
		return XorNode{}, false
	}
	return ancestry[target], true
}

// AssertGetLeaf returns ancestry's leaf (index 0), panicking via errorutil if
// ancestry is empty.
func AssertGetLeaf(ancestry []XorNode) XorNode {
	errorutil.AssertTrue(len(ancestry) > 0, "assertGetLeaf: ancestry must not be empty")
	return ancestry[0]
}

// MaybeNthPreviousOfKinds is MaybeNthPrevious with a kind filter: when the
// reached node's kind is not among kinds, the result is absent -- not an
// error -- so dispatch rules can be written as short declarative patterns.
// An empty kinds list accepts any kind.
func MaybeNthPreviousOfKinds(ancestry []XorNode, index int, n int, kinds ...AstNodeKind) (XorNode, bool) {
	x, ok := MaybeNthPrevious(ancestry, index, n)
	if !ok {
		return XorNode{}, false
	}
	if len(kinds) == 0 {
		return x, true
	}
	for _, k := range kinds {
		if x.Kind() == k {
			return x, true
		}
	}
	return XorNode{}, false
}

// AssertGetNthPrevious is the panicking variant of MaybeNthPrevious, used by
// callers that have already established the index must be in range.
func AssertGetNthPrevious(ancestry []XorNode, index int, n int) XorNode {
	x, ok := MaybeNthPrevious(ancestry, index, n)
	errorutil.AssertTrue(ok, "assertGetNthPrevious: index out of range")
	return x
}

// NthPreviousKind reports the AstNodeKind of the node n steps closer to the
// leaf than ancestry[index], and whether one exists -- the common case in
// pairwise ancestry dispatch, which only cares about kind, not the full
// XorNode.
func NthPreviousKind(ancestry []XorNode, index int, n int) (AstNodeKind, bool) {
	x, ok := MaybeNthPrevious(ancestry, index, n)
	if !ok {
		return 0, false
	}
	return x.Kind(), true
}

// IndexOfKindOnOrAbove returns the first index at or above startIndex
// (inclusive, walking towards the root) whose node has the given kind, and
// whether one was found.
func IndexOfKindOnOrAbove(ancestry []XorNode, startIndex int, kind AstNodeKind) (int, bool) {
	for i := startIndex; i < len(ancestry); i++ {
		if ancestry[i].Kind() == kind {
			return i, true
		}
	}
	return 0, false
}
