/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * AstNodeKind and AstNode: finished, immutable syntax nodes. The grammar
 * covers the core M expression forms -- literals, identifiers, list and
 * record literals, let/if/each/try/error, function literals with typed
 * parameters, invocation and access postfixes, the binary-operator
 * precedence chain, and primitive/nullable-primitive type expressions --
 * not the language's full surface.
 */
package parser

import (
	"fmt"

	"github.com/kgliang/powerquery-parser/token"
)

// AstNodeKind is a closed enumeration of finished syntax-node kinds.
type AstNodeKind int

const (
	LetExpression AstNodeKind = iota
	IdentifierPairedExpression
	GeneralizedIdentifierPairedExpression
	IdentifierExpression
	Identifier
	GeneralizedIdentifier
	LiteralExpression
	IfExpression
	FunctionExpression
	ParameterList
	Parameter
	Constant
	NullablePrimitiveType
	PrimitiveType
	TypePrimaryType
	RecordExpression
	ListExpression
	RangeExpression
	InvokeExpression
	ItemAccessExpression
	FieldAccessExpression
	ParenthesizedExpression
	ErrorHandlingExpression
	OtherwiseExpression
	ErrorRaisingExpression
	EachExpression
	MetadataExpression
	IsExpression
	AsExpression
	ArithmeticExpression
	EqualityExpression
	RelationalExpression
	LogicalExpression
	UnaryExpression
	SectionDocument
	SectionMember
)

var astNodeKindNames = [...]string{
	"LetExpression",
	"IdentifierPairedExpression",
	"GeneralizedIdentifierPairedExpression",
	"IdentifierExpression",
	"Identifier",
	"GeneralizedIdentifier",
	"LiteralExpression",
	"IfExpression",
	"FunctionExpression",
	"ParameterList",
	"Parameter",
	"Constant",
	"NullablePrimitiveType",
	"PrimitiveType",
	"TypePrimaryType",
	"RecordExpression",
	"ListExpression",
	"RangeExpression",
	"InvokeExpression",
	"ItemAccessExpression",
	"FieldAccessExpression",
	"ParenthesizedExpression",
	"ErrorHandlingExpression",
	"OtherwiseExpression",
	"ErrorRaisingExpression",
	"EachExpression",
	"MetadataExpression",
	"IsExpression",
	"AsExpression",
	"ArithmeticExpression",
	"EqualityExpression",
	"RelationalExpression",
	"LogicalExpression",
	"UnaryExpression",
	"SectionDocument",
	"SectionMember",
}

func (k AstNodeKind) String() string {
	if int(k) >= 0 && int(k) < len(astNodeKindNames) {
		return astNodeKindNames[k]
	}
	return fmt.Sprintf("AstNodeKind(%d)", int(k))
}

// IsTBinOpExpression reports whether kind is one of the binary-operator
// expression variants, collectively TBinOpExpression.
func (k AstNodeKind) IsTBinOpExpression() bool {
	switch k {
	case MetadataExpression, IsExpression, AsExpression,
		ArithmeticExpression, EqualityExpression, RelationalExpression, LogicalExpression:
		return true
	}
	return false
}

// TokenRange identifies the span of tokens (by index into the LexerSnapshot)
// and source positions covered by a node.
type TokenRange struct {
	TokenIndexStart int
	TokenIndexEnd   int // exclusive
	PositionStart   token.Position
	PositionEnd     token.Position
}

// LiteralKind distinguishes the kinds of LiteralExpression payload.
type LiteralKind int

const (
	NumberLiteralKind LiteralKind = iota
	TextLiteralKind
	NullLiteralKind
	TrueLiteralKind
	FalseLiteralKind
)

// AstNode is a finished, immutable syntax node: a single flat struct rather
// than one Go type per AstNodeKind. Only the fields relevant to Kind are
// populated, the rest left zero.
type AstNode struct {
	Id              int
	Kind            AstNodeKind
	AttributeIndex  *int // nil for the root
	TokenRange      TokenRange

	// Terminal payloads (leaf nodes; also set on Constant for its token text)
	Token *token.Token

	// Identifier / GeneralizedIdentifier
	IdentifierLiteral string

	// LiteralExpression
	LiteralKind LiteralKind

	// PrimitiveType
	PrimitiveTypeKind PrimitiveTypeKind

	// NullablePrimitiveType
	IsNullable bool

	// Parameter
	IsOptional bool

	// TBinOpExpression variants: the operator token kind at children[1].
	// Cached here for convenience; children[0]/[1]/[2] remain the source of
	// truth for type inference.
	OperatorKind token.Kind
}

// IsLeaf reports whether this AstNode kind is always a terminal (no
// children): used to populate NodeIdMapCollection.LeafNodeIds.
func (n *AstNode) IsLeaf() bool {
	switch n.Kind {
	case Identifier, GeneralizedIdentifier, LiteralExpression, Constant,
		PrimitiveType:
		return true
	}
	return false
}
