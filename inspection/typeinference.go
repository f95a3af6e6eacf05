/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Binary-operator type inference: given a TBinOpExpression node -- finished,
 * or still open with only a left operand and operator read -- infer the type
 * of the result from a statically composed operator table. Record/Table "&"
 * combine semantics are a dedicated merge rather than a table entry, since
 * their result depends on the operands' field sets, not just their kinds.
 */
package inspection

import (
	"fmt"
	"sort"

	"github.com/kgliang/powerquery-parser/parser"
	"github.com/kgliang/powerquery-parser/token"
)

// TTypeTag discriminates the shapes a TType can take.
type TTypeTag int

const (
	TPrimitive TTypeTag = iota
	TDefinedRecord
	TDefinedTable
	TAnyUnion // partial binary-op lookup admits more than one result kind
	TUnknown  // no static information available (e.g. an unresolved identifier)
	TNone     // operator/operand combination has no valid result
)

// TType is an inferred-type value. Only Primitive, DefinedRecord,
// DefinedTable and AnyUnion carry a meaningful payload; the others are
// tag-only.
type TType struct {
	Tag        TTypeTag
	Primitive  parser.PrimitiveTypeKind
	IsNullable bool

	// DefinedRecord / DefinedTable
	Fields map[string]TType
	IsOpen bool // true once a combine merged an open-ended left/right operand

	// AnyUnion: the admissible primitive kinds, each implicitly nullable
	// (the missing right operand can always introduce null). Sorted by kind
	// for deterministic output.
	UnionKinds []parser.PrimitiveTypeKind
}

func primitiveType(kind parser.PrimitiveTypeKind, nullable bool) TType {
	return TType{Tag: TPrimitive, Primitive: kind, IsNullable: nullable}
}

func unknownType() TType { return TType{Tag: TUnknown} }
func noneType() TType    { return TType{Tag: TNone} }

// operatorKey composes the static lookup key "leftKind,opKind,rightKind".
// partialKey strips the trailing component for the
// incomplete-binary-expression case (left operand and operator read, right
// operand missing).
func operatorKey(left, op, right string) string { return left + "," + op + "," + right }
func partialKey(left, op string) string         { return left + "," + op }

var comparableKinds = map[parser.PrimitiveTypeKind]bool{
	parser.PrimitiveTypeNumber: true, parser.PrimitiveTypeText: true,
	parser.PrimitiveTypeDate: true, parser.PrimitiveTypeDateTime: true,
	parser.PrimitiveTypeDateTimeZone: true, parser.PrimitiveTypeTime: true,
	parser.PrimitiveTypeDuration: true, parser.PrimitiveTypeLogical: true,
}

var clockKinds = []parser.PrimitiveTypeKind{
	parser.PrimitiveTypeTime, parser.PrimitiveTypeDate,
	parser.PrimitiveTypeDateTime, parser.PrimitiveTypeDateTimeZone,
}

var combineKinds = []parser.PrimitiveTypeKind{
	parser.PrimitiveTypeText, parser.PrimitiveTypeList,
}

// operatorTable and partialOperatorTable are composed once at init time
// from per-family rules rather than hand-enumerated, so every kind pair a
// rule describes is actually present. partialOperatorTable collects a *set*
// of result kinds per (leftKind, opKind): the same left/op pair can admit
// more than one result kind depending on the still-unknown right operand
// (e.g. "Number,*" admits both Number*Number->Number and
// Number*Duration->Duration).
var operatorTable = map[string]parser.PrimitiveTypeKind{}
var partialOperatorTable = map[string]map[parser.PrimitiveTypeKind]bool{}

func addEntry(left parser.PrimitiveTypeKind, op token.Kind, right parser.PrimitiveTypeKind, result parser.PrimitiveTypeKind) {
	key := operatorKey(left.String(), op.String(), right.String())
	operatorTable[key] = result

	pKey := partialKey(left.String(), op.String())
	set, ok := partialOperatorTable[pKey]
	if !ok {
		set = make(map[parser.PrimitiveTypeKind]bool)
		partialOperatorTable[pKey] = set
	}
	set[result] = true
}

func init() {
	// Equality: "=" / "<>" on any same-kind pair yields Logical.
	for _, k := range parser.PrimitiveTypeNames {
		addEntry(k, token.Equal, k, parser.PrimitiveTypeLogical)
		addEntry(k, token.NotEqual, k, parser.PrimitiveTypeLogical)
	}

	// Relational: "<",">","<=",">=" on any same-kind comparable pair yields
	// Logical.
	for k := range comparableKinds {
		for _, op := range []token.Kind{token.LessThan, token.LessThanEqualTo, token.GreaterThan, token.GreaterThanEqualTo} {
			addEntry(k, op, k, parser.PrimitiveTypeLogical)
		}
	}

	// Logical: "and"/"or" on Logical,Logical yields Logical.
	addEntry(parser.PrimitiveTypeLogical, token.KeywordAnd, parser.PrimitiveTypeLogical, parser.PrimitiveTypeLogical)
	addEntry(parser.PrimitiveTypeLogical, token.KeywordOr, parser.PrimitiveTypeLogical, parser.PrimitiveTypeLogical)

	// Arithmetic: "+","-","*","/" on Number,Number yields Number.
	for _, op := range []token.Kind{token.Plus, token.Minus, token.Asterisk, token.Division} {
		addEntry(parser.PrimitiveTypeNumber, op, parser.PrimitiveTypeNumber, parser.PrimitiveTypeNumber)
	}

	// Duration arithmetic: D+D, D-D -> D; D*N, N*D, D/N -> D.
	addEntry(parser.PrimitiveTypeDuration, token.Plus, parser.PrimitiveTypeDuration, parser.PrimitiveTypeDuration)
	addEntry(parser.PrimitiveTypeDuration, token.Minus, parser.PrimitiveTypeDuration, parser.PrimitiveTypeDuration)
	addEntry(parser.PrimitiveTypeDuration, token.Asterisk, parser.PrimitiveTypeNumber, parser.PrimitiveTypeDuration)
	addEntry(parser.PrimitiveTypeNumber, token.Asterisk, parser.PrimitiveTypeDuration, parser.PrimitiveTypeDuration)
	addEntry(parser.PrimitiveTypeDuration, token.Division, parser.PrimitiveTypeNumber, parser.PrimitiveTypeDuration)

	// Clock + Duration arithmetic: clock+D, D+clock -> clock; clock-D -> clock;
	// clock-clock (same kind) -> Duration.
	for _, clock := range clockKinds {
		addEntry(clock, token.Plus, parser.PrimitiveTypeDuration, clock)
		addEntry(parser.PrimitiveTypeDuration, token.Plus, clock, clock)
		addEntry(clock, token.Minus, parser.PrimitiveTypeDuration, clock)
		addEntry(clock, token.Minus, clock, parser.PrimitiveTypeDuration)
	}

	// Date & Time combine into DateTime.
	addEntry(parser.PrimitiveTypeDate, token.Ampersand, parser.PrimitiveTypeTime, parser.PrimitiveTypeDateTime)
	addEntry(parser.PrimitiveTypeTime, token.Ampersand, parser.PrimitiveTypeDate, parser.PrimitiveTypeDateTime)

	// Text/List "&" combine into the same kind (Record/Table combine is
	// handled separately below, since the result depends on field sets).
	for _, k := range combineKinds {
		addEntry(k, token.Ampersand, k, k)
	}
}

// InferType infers the type of a node on either side of the duality: a
// literal, an identifier (unresolved -- there is no symbol table), a nested
// value expression, or a still-open binary-operator context.
func InferType(collection *parser.NodeIdMapCollection, x parser.XorNode) TType {
	if x.IsAst() {
		return inferAst(collection, x.AstNode)
	}
	return inferOpenContext(collection, x.ContextNode)
}

func inferAst(collection *parser.NodeIdMapCollection, n *parser.AstNode) TType {
	switch n.Kind {
	case parser.LiteralExpression:
		return inferLiteral(n)
	case parser.Identifier, parser.IdentifierExpression, parser.GeneralizedIdentifier,
		parser.InvokeExpression, parser.ItemAccessExpression, parser.FieldAccessExpression,
		parser.FunctionExpression, parser.EachExpression:
		return unknownType() // no symbol table / call-signature resolution
	case parser.ListExpression:
		return primitiveType(parser.PrimitiveTypeList, false)
	case parser.RecordExpression:
		return inferRecordLiteral(collection, n)
	case parser.ParenthesizedExpression:
		return inferSoleChild(collection, n)
	case parser.TypePrimaryType:
		return primitiveType(parser.PrimitiveTypeType, false)
	case parser.UnaryExpression:
		return inferSoleChild(collection, n)
	default:
		if n.Kind.IsTBinOpExpression() {
			return inferBinOp(collection, n.Id, n.OperatorKind)
		}
	}
	return unknownType()
}

func inferLiteral(n *parser.AstNode) TType {
	switch n.LiteralKind {
	case parser.NumberLiteralKind:
		return primitiveType(parser.PrimitiveTypeNumber, false)
	case parser.TextLiteralKind:
		return primitiveType(parser.PrimitiveTypeText, false)
	case parser.NullLiteralKind:
		return primitiveType(parser.PrimitiveTypeNull, true)
	case parser.TrueLiteralKind, parser.FalseLiteralKind:
		return primitiveType(parser.PrimitiveTypeLogical, false)
	}
	return unknownType()
}

// inferSoleChild infers the type of a wrapper node's single value child:
// delimiter and operator Constant leaves ("("/")", a unary sign) are attached
// as children too and carry no type, so the first non-Constant child is the
// one that determines the wrapper's type.
func inferSoleChild(collection *parser.NodeIdMapCollection, n *parser.AstNode) TType {
	for _, id := range collection.GetChildIds(n.Id) {
		x, ok := collection.GetXor(id)
		if !ok {
			continue
		}
		if x.IsAst() && x.AstNode.Kind == parser.Constant {
			continue
		}
		return InferType(collection, x)
	}
	return unknownType()
}

// inferRecordLiteral builds a closed DefinedRecord from a RecordExpression's
// GeneralizedIdentifierPairedExpression children.
func inferRecordLiteral(collection *parser.NodeIdMapCollection, n *parser.AstNode) TType {
	fields := make(map[string]TType)
	for _, id := range collection.GetChildIds(n.Id) {
		pair, ok := collection.GetAst(id)
		if !ok || pair.Kind != parser.GeneralizedIdentifierPairedExpression {
			continue
		}
		name, value, ok := fieldNameAndValue(collection, pair)
		if !ok {
			continue
		}
		fields[name] = value
	}
	return TType{Tag: TDefinedRecord, Fields: fields, IsOpen: false}
}

// fieldNameAndValue reads a GeneralizedIdentifierPairedExpression's
// [identifier, Constant("="), expression] children.
func fieldNameAndValue(collection *parser.NodeIdMapCollection, pair *parser.AstNode) (string, TType, bool) {
	children := collection.GetChildIds(pair.Id)
	if len(children) < 3 {
		return "", TType{}, false
	}
	identifier, ok := collection.GetAst(children[0])
	if !ok {
		return "", TType{}, false
	}
	valueXor, ok := collection.GetXor(children[2])
	if !ok {
		return "", TType{}, false
	}
	return identifier.IdentifierLiteral, InferType(collection, valueXor), true
}

// inferOpenContext infers the type of a still-open TBinOpExpression context
// ("1 +" with the right operand missing): only the left operand and
// operator have been read, so the lookup key drops its right component and
// yields the set of admissible result kinds.
func inferOpenContext(collection *parser.NodeIdMapCollection, ctx *parser.ContextNode) TType {
	if !ctx.Kind.IsTBinOpExpression() {
		return unknownType()
	}

	children := collection.GetChildIds(ctx.Id)
	leftId := -1
	var opKind token.Kind
	haveOp := false
	for _, id := range children {
		x, ok := collection.GetXor(id)
		if !ok {
			continue
		}
		if x.IsAst() && x.AstNode.Kind == parser.Constant && x.AstNode.Token != nil && isBinaryOperatorToken(x.AstNode.Token.Kind) {
			opKind = x.AstNode.Token.Kind
			haveOp = true
			continue
		}
		if !haveOp {
			leftId = id
		}
	}
	if leftId < 0 || !haveOp {
		return unknownType()
	}

	leftXor, ok := collection.GetXor(leftId)
	if !ok {
		return unknownType()
	}
	left := InferType(collection, leftXor)
	if left.Tag != TPrimitive {
		return unknownType()
	}

	resultSet, found := partialOperatorTable[partialKey(left.Primitive.String(), opKind.String())]
	if !found {
		return noneType()
	}
	// The right operand is unknown, so nullability can never be ruled out
	// regardless of the left operand's own nullability: "1 +" yields a
	// nullable Number even though the literal "1" itself is non-nullable.
	if len(resultSet) == 1 {
		for result := range resultSet {
			return primitiveType(result, true)
		}
	}

	kinds := make([]parser.PrimitiveTypeKind, 0, len(resultSet))
	for k := range resultSet {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return TType{Tag: TAnyUnion, UnionKinds: kinds, IsNullable: true}
}

func isBinaryOperatorToken(k token.Kind) bool {
	switch k {
	case token.Equal, token.NotEqual, token.LessThan, token.LessThanEqualTo,
		token.GreaterThan, token.GreaterThanEqualTo, token.Plus, token.Minus,
		token.Asterisk, token.Division, token.Ampersand, token.KeywordAnd,
		token.KeywordOr, token.KeywordIs, token.KeywordAs, token.KeywordMeta:
		return true
	}
	return false
}

// inferBinOp handles a finished TBinOpExpression AstNode: [left,
// Constant(operator), right]. "is"/"as"/"meta" aren't looked up in the
// operator table -- "is" and "as" test/assert a type rather than combine
// two values (always Logical / the asserted type respectively), and "meta"
// simply threads the left operand's type through unchanged.
func inferBinOp(collection *parser.NodeIdMapCollection, ctxId int, opKind token.Kind) TType {
	children := collection.GetChildIds(ctxId)
	if len(children) < 3 {
		return unknownType()
	}
	leftXor, ok := collection.GetXor(children[0])
	if !ok {
		return unknownType()
	}
	left := InferType(collection, leftXor)

	switch opKind {
	case token.KeywordIs:
		return primitiveType(parser.PrimitiveTypeLogical, false)
	case token.KeywordAs:
		return inferTypeExpression(collection, children[2])
	case token.KeywordMeta:
		return left
	}

	rightXor, ok := collection.GetXor(children[2])
	if !ok {
		return unknownType()
	}
	right := InferType(collection, rightXor)

	return combine(left, right, opKind)
}

// inferTypeExpression reads the type named on an "as"/type-primary slot's
// right-hand side (a NullablePrimitiveType or PrimitiveType node).
func inferTypeExpression(collection *parser.NodeIdMapCollection, id int) TType {
	x, ok := collection.GetXor(id)
	if !ok {
		return unknownType()
	}
	switch x.Kind() {
	case parser.PrimitiveType:
		if x.IsAst() {
			return primitiveType(x.AstNode.PrimitiveTypeKind, false)
		}
	case parser.NullablePrimitiveType:
		if x.IsAst() {
			for _, cid := range collection.GetChildIds(id) {
				if child, ok := collection.GetAst(cid); ok && child.Kind == parser.PrimitiveType {
					return primitiveType(child.PrimitiveTypeKind, true)
				}
			}
		}
	}
	return unknownType()
}

// combine applies the "&" field-merge semantics for Record/Table operands
// and the static operator-table lookup for every other kind pair.
func combine(left, right TType, opKind token.Kind) TType {
	if opKind == token.Ampersand && (left.Tag == TDefinedRecord || left.Tag == TDefinedTable) {
		return combineRecordOrTable(left, right)
	}

	if left.Tag != TPrimitive || right.Tag != TPrimitive {
		return unknownType()
	}

	result, found := operatorTable[operatorKey(left.Primitive.String(), opKind.String(), right.Primitive.String())]
	if !found {
		return noneType()
	}
	return primitiveType(result, left.IsNullable || right.IsNullable)
}

// combineRecordOrTable merges two DefinedRecord/DefinedTable operands
// field-by-field: a field present on both sides keeps the right operand's
// type (the combine's rightmost value wins, mirroring M's "&" record merge);
// a field on only one side survives unchanged. The merge is "open" (fields
// beyond this set may exist) whenever either operand already was.
func combineRecordOrTable(left, right TType) TType {
	tag := left.Tag
	if right.Tag != TDefinedRecord && right.Tag != TDefinedTable {
		return TType{Tag: tag, Fields: left.Fields, IsOpen: true}
	}

	fields := make(map[string]TType, len(left.Fields)+len(right.Fields))
	for k, v := range left.Fields {
		fields[k] = v
	}
	for k, v := range right.Fields {
		fields[k] = v
	}
	return TType{Tag: tag, Fields: fields, IsOpen: left.IsOpen || right.IsOpen}
}

// InferExpectedType reports what a still-empty slot in an enclosing
// production is constrained to hold, purely from which attribute index is
// next expected -- the same ancestry-dispatch shape keywordsFromAncestry
// uses. Unlike InferType it does not infer what a node *is*: `if |` expects
// a Logical condition even though nothing has been typed there yet. Only
// the IfExpression condition slot carries a static constraint in this
// grammar; every other slot (then/else branches, error-handling test)
// accepts any type, so those report absent rather than TUnknown (absent
// means "no constraint", not "constrained to an unknown type").
func InferExpectedType(collection *parser.NodeIdMapCollection, ancestry []parser.XorNode) (TType, bool) {
	for i, x := range ancestry {
		if x.Kind() != parser.IfExpression {
			continue
		}
		ai, ok := lastAttachedChildIndex(collection, ancestry, i)
		if ok && ai == 0 {
			return primitiveType(parser.PrimitiveTypeLogical, false), true
		}
		return TType{}, false
	}
	return TType{}, false
}

func (t TType) String() string {
	switch t.Tag {
	case TPrimitive:
		return fmt.Sprintf("Primitive(%s, nullable=%v)", t.Primitive, t.IsNullable)
	case TDefinedRecord:
		return fmt.Sprintf("DefinedRecord{fields=%d, isOpen=%v}", len(t.Fields), t.IsOpen)
	case TDefinedTable:
		return fmt.Sprintf("DefinedTable{fields=%d, isOpen=%v}", len(t.Fields), t.IsOpen)
	case TAnyUnion:
		return fmt.Sprintf("AnyUnion%v", t.UnionKinds)
	case TNone:
		return "None"
	default:
		return "Unknown"
	}
}
