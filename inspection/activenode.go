/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * ActiveNode: given a caret position and the node-id map of a tried parse,
 * find the leaf-to-root ancestry the caret is "inside", whether or not the
 * parse finished cleanly.
 */
package inspection

import (
	"github.com/kgliang/powerquery-parser/parser"
	"github.com/kgliang/powerquery-parser/token"
)

// LeafKind classifies how the caret relates to the resolved leaf.
type LeafKind int

const (
	// OnAstNode: the caret sits strictly inside a finished leaf's token span.
	OnAstNode LeafKind = iota
	// AfterAstNode: the caret sits exactly at a finished leaf's end boundary.
	AfterAstNode
	// ContextNodeLeaf: the deepest node at the caret is still an open,
	// unfinished context -- the parse stopped (error or cancellation) with
	// this production in progress.
	ContextNodeLeaf
)

// ActiveNode is the caret-relative view: the leaf-to-root ancestry chain
// the caret resolves to, plus enough context to drive autocomplete's prefix
// filtering.
type ActiveNode struct {
	Position token.Position

	// Ancestry is leaf-first (index 0 is the resolved leaf, the last entry is
	// the document root), matching parser.AssertGetAncestry's ordering.
	Ancestry []parser.XorNode

	LeafKind LeafKind

	// IdentifierUnderPosition is the prefix of an identifier (or keyword-like
	// literal) token the caret sits on or immediately after, used by
	// autocomplete to filter suggestions by what has already been typed.
	IdentifierUnderPosition    string
	HasIdentifierUnderPosition bool
}

// Leaf returns the resolved leaf XorNode.
func (a *ActiveNode) Leaf() parser.XorNode {
	return a.Ancestry[0]
}

// ResolveActiveNode returns the ActiveNode for position, or false if the
// collection has no node the position could resolve to (e.g. an empty
// document with no root context ever opened).
//
// currentContextNodeId is the parser state's still-open context id at the
// point parsing stopped (nil once a parse finishes cleanly). When present
// it takes priority over any completed leaf: the open context is exactly
// where the document's author was still typing, so a partially parsed
// construct wins over its last completed sibling.
func ResolveActiveNode(
	collection *parser.NodeIdMapCollection,
	leafNodeIds map[int]bool,
	currentContextNodeId *int,
	position token.Position,
) (*ActiveNode, bool) {

	if currentContextNodeId != nil {
		ancestry := parser.AssertGetAncestry(collection, *currentContextNodeId)
		return &ActiveNode{
			Position: position,
			Ancestry: ancestry,
			LeafKind: ContextNodeLeaf,
		}, true
	}

	// Common case first: the caret sits at the very end of the document,
	// which is exactly the right-most leaf's end boundary -- served from the
	// collection's cache without scanning the whole leaf set.
	if rightMost, ok := collection.RightMostLeaf(); ok &&
		position.CodeUnit == rightMost.TokenRange.PositionEnd.CodeUnit {
		ancestry := parser.AssertGetAncestry(collection, rightMost.Id)
		identifier, hasIdentifier := maybeIdentifierUnderPosition(rightMost, position)
		return &ActiveNode{
			Position:                   position,
			Ancestry:                   ancestry,
			LeafKind:                   AfterAstNode,
			IdentifierUnderPosition:    identifier,
			HasIdentifierUnderPosition: hasIdentifier,
		}, true
	}

	var best *parser.AstNode
	var bestKind LeafKind
	for id := range leafNodeIds {
		ast, ok := collection.GetAst(id)
		if !ok {
			continue
		}

		start := ast.TokenRange.PositionStart.CodeUnit
		end := ast.TokenRange.PositionEnd.CodeUnit
		pos := position.CodeUnit

		var kind LeafKind
		switch {
		case pos > start && pos < end:
			kind = OnAstNode
		case pos == end:
			kind = AfterAstNode
		default:
			continue
		}

		if best == nil ||
			end > best.TokenRange.PositionEnd.CodeUnit ||
			(end == best.TokenRange.PositionEnd.CodeUnit && start > best.TokenRange.PositionStart.CodeUnit) {
			best = ast
			bestKind = kind
		}
	}

	if best == nil {
		return nil, false
	}

	ancestry := parser.AssertGetAncestry(collection, best.Id)
	identifier, hasIdentifier := maybeIdentifierUnderPosition(best, position)
	return &ActiveNode{
		Position:                   position,
		Ancestry:                   ancestry,
		LeafKind:                   bestKind,
		IdentifierUnderPosition:    identifier,
		HasIdentifierUnderPosition: hasIdentifier,
	}, true
}

// maybeIdentifierUnderPosition returns the typed-so-far prefix of leaf's
// token text when leaf is identifier-like: an Identifier/
// GeneralizedIdentifier, or a keyword-like literal (null/true/false).
func maybeIdentifierUnderPosition(leaf *parser.AstNode, position token.Position) (string, bool) {
	switch leaf.Kind {
	case parser.Identifier, parser.GeneralizedIdentifier:
		return prefixRunes(leaf.IdentifierLiteral, leaf.TokenRange.PositionStart.CodeUnit, position.CodeUnit), true
	case parser.LiteralExpression:
		switch leaf.LiteralKind {
		case parser.NullLiteralKind, parser.TrueLiteralKind, parser.FalseLiteralKind:
			if leaf.Token == nil {
				return "", false
			}
			return prefixRunes(leaf.Token.Data, leaf.TokenRange.PositionStart.CodeUnit, position.CodeUnit), true
		}
	}
	return "", false
}

func prefixRunes(data string, start, pos int) string {
	n := pos - start
	runes := []rune(data)
	if n < 0 {
		n = 0
	}
	if n > len(runes) {
		n = len(runes)
	}
	return string(runes[:n])
}
