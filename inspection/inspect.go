/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Inspect is the package's single entry point: given a tried parse and a
 * caret position, resolve the ActiveNode and run both autocomplete
 * pipelines plus expected-type inference.
 */
package inspection

import (
	"github.com/kgliang/powerquery-parser/parser"
	"github.com/kgliang/powerquery-parser/token"
)

// Result is the combined output of a caret-driven inspection: the resolved
// ActiveNode plus both autocomplete pipelines, ready for a host editor to
// render.
type Result struct {
	Active         *ActiveNode
	Keywords       []Keyword
	PrimitiveTypes []parser.PrimitiveTypeKind

	// ExpectedType is the static type constraint on the caret's immediately
	// enclosing empty slot, if any. HasExpectedType is false when the
	// enclosing slot accepts any type or no such slot is in ancestry.
	ExpectedType    TType
	HasExpectedType bool
}

// Inspect resolves the ActiveNode for position against state -- taken from
// either a successful parser.ParseOk or a failed parse's PartialState;
// autocomplete stays functional over a parse error because the id map still
// reflects the partial parse -- and runs both autocomplete pipelines over
// it.
func Inspect(state *parser.ParserState, position token.Position) (*Result, bool) {
	collection := state.ContextState.Collection
	leafNodeIds := collection.LeafNodeIds

	active, ok := ResolveActiveNode(collection, leafNodeIds, state.ContextState.CurrentContextNodeId, position)
	if !ok {
		return nil, false
	}

	pending := PendingToken(state)
	expected, hasExpected := InferExpectedType(collection, active.Ancestry)

	return &Result{
		Active:          active,
		Keywords:        InspectKeywords(collection, active, pending),
		PrimitiveTypes:  InspectPrimitiveTypes(collection, active, pending),
		ExpectedType:    expected,
		HasExpectedType: hasExpected,
	}, true
}

// PendingToken returns the token the parser had not yet consumed when it
// stopped (nil at a clean, fully-consumed parse), the trailing-text signal
// autocomplete uses to bias towards whatever is mid-typed. An EOF token --
// the document simply ran out, nothing left dangling -- is reported as
// absent.
func PendingToken(state *parser.ParserState) *token.Token {
	tok, ok := state.Snapshot.At(state.TokenIndex)
	if !ok || tok.Kind == token.EOF {
		return nil
	}
	return &tok
}
