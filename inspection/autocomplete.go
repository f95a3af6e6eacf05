/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Keyword and primitive-type autocomplete: given an ActiveNode, return the
 * keywords or primitive-type names that are syntactically legal to type
 * next. Keyword suggestions come from a leaf-to-root ancestry dispatch;
 * container kinds with their own continuation rules (let bindings, try
 * handlers, if branches, parameter lists, section members) each get a
 * routine below, everything else falls through to the top-level defaults.
 */
package inspection

import (
	"sort"
	"strings"

	"github.com/kgliang/powerquery-parser/parser"
	"github.com/kgliang/powerquery-parser/token"
)

// Keyword is the autocomplete keyword universe: every token.Kind that can
// legally open or continue a production, plus the five "conjunction"
// keywords that can follow any completed value expression.
type Keyword = token.Kind

// conjunctionKeywords may follow any completed value expression, regardless
// of which production it is nested in.
var conjunctionKeywords = []Keyword{
	token.KeywordAnd, token.KeywordAs, token.KeywordIs, token.KeywordMeta, token.KeywordOr,
}

// startOfExpressionKeywords can open a new expression: the suggestions for
// an empty document or a bare leading identifier.
var startOfExpressionKeywords = []Keyword{
	token.KeywordLet, token.KeywordIf, token.KeywordEach, token.KeywordTry,
	token.KeywordError, token.KeywordType, token.KeywordSection,
}

// InspectKeywords returns the keywords legal at the caret. pendingToken is
// the token the parser had not yet consumed when it stopped at active's
// position (nil if the parse consumed every token up to the caret), used to
// bias the prefix filter towards whatever the user is mid-typing.
func InspectKeywords(collection *parser.NodeIdMapCollection, active *ActiveNode, pendingToken *token.Token) []Keyword {
	containerKeywords, conjunctionsEligible := keywordsFromAncestry(collection, active.Ancestry)

	set := make(map[Keyword]bool)
	for _, k := range containerKeywords {
		set[k] = true
	}

	// Conjunctions ("and"/"as"/"is"/"meta"/"or") only make sense as a
	// recovery guess for a dangling identifier fragment the user is
	// mid-typing right after a value expression -- never inside a
	// non-expression slot like a parameter name (conjunctionsEligible
	// covers that), and never when the document simply ended cleanly with
	// nothing left dangling.
	if conjunctionsEligible && pendingToken != nil && pendingToken.Kind == token.Identifier {
		for _, k := range conjunctionKeywords {
			set[k] = true
		}
	}

	out := make([]Keyword, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return autocompleteKeywordTrailingText(out, active, pendingToken, nil)
}

// autocompleteKeywordTrailingText narrows inspected by whatever text sits at
// the caret. previousInspected, when non-nil, is a set an earlier branch
// already selected and biases the filter to operate on that selection
// instead of the raw input; the only call chain today passes nil, operating
// on the pre-filter input.
func autocompleteKeywordTrailingText(inspected []Keyword, active *ActiveNode, pendingToken *token.Token, previousInspected []Keyword) []Keyword {
	base := inspected
	if previousInspected != nil {
		base = previousInspected
	}

	prefix, hasPrefix := positionName(active, pendingToken)
	if !hasPrefix {
		return base
	}
	out := make([]Keyword, 0, len(base))
	for _, k := range base {
		if strings.HasPrefix(k.String(), prefix) {
			out = append(out, k)
		}
	}
	return out
}

// positionName returns the text typed so far at the caret, used to prefix-
// filter candidate keywords and primitive-type names. A pending
// (not-yet-consumed) token takes
// priority over an identifier the caret sits on/after, since it is the most
// recently typed fragment -- but only the portion of that token's text that
// lies at or before the caret counts: a pending token the caret sits in front
// of (e.g. a closing ")" the parser hasn't reached yet) contributes nothing,
// since the user hasn't typed any of it at this position.
func positionName(active *ActiveNode, pendingToken *token.Token) (string, bool) {
	if pendingToken != nil {
		if n := active.Position.CodeUnit - pendingToken.PositionStart.CodeUnit; n > 0 {
			runes := []rune(pendingToken.Data)
			if n > len(runes) {
				n = len(runes)
			}
			return string(runes[:n]), true
		}
	}
	if active.HasIdentifierUnderPosition {
		return active.IdentifierUnderPosition, true
	}
	return "", false
}

// keywordsFromAncestry walks leaf-to-root looking for the nearest ancestor
// whose production governs what can come next, stopping at the first one
// found. It also reports
// whether that slot is "expression-bearing" -- whether the conjunction
// keywords are even grammatically plausible there (a parameter name or a
// list item is not; a let-binding's value or an if-branch is).
func keywordsFromAncestry(collection *parser.NodeIdMapCollection, ancestry []parser.XorNode) ([]Keyword, bool) {
	for i, x := range ancestry {
		switch x.Kind() {
		case parser.LetExpression:
			return letExpressionKeywords(collection, x, i), true
		case parser.ErrorHandlingExpression:
			return errorHandlingExpressionKeywords(collection, ancestry, i), true
		case parser.IfExpression:
			return ifExpressionKeywords(collection, ancestry, i), true
		case parser.IdentifierPairedExpression:
			return nil, false // only "=" can follow an identifier here, not a keyword
		case parser.ListExpression:
			return nil, false // only "," or "}" can follow a list item, not a keyword
		case parser.SectionMember:
			return nil, false
		case parser.SectionDocument:
			return []Keyword{token.KeywordShared}, false
		case parser.Parameter, parser.ParameterList:
			return parameterKeywords(collection, ancestry, i), false
		}
	}

	// No named container anywhere in the ancestry: the caret is at the
	// document's top-level expression. If nothing has been combined into a
	// binary/unary expression yet, any keyword-led form could equally have
	// been typed here (the empty-document / lone-leading-identifier case).
	topmost := ancestry[len(ancestry)-1]
	if topmost.Kind().IsTBinOpExpression() || topmost.Kind() == parser.UnaryExpression {
		return nil, true
	}
	return startOfExpressionKeywords, true
}

func letExpressionKeywords(collection *parser.NodeIdMapCollection, letNode parser.XorNode, idx int) []Keyword {
	if idx != 0 {
		return nil // LetExpression already finished; its body is the last attribute
	}
	children := collection.GetChildIds(letNode.Id())
	if len(children) == 0 {
		return nil
	}
	last, ok := collection.GetXor(children[len(children)-1])
	if !ok {
		return nil
	}
	if last.Kind() == parser.IdentifierPairedExpression {
		return []Keyword{token.KeywordIn}
	}
	return nil
}

// lastAttachedChildIndex returns the attribute index of the last child
// actually attached to a production's node, whether that production is
// still open (idx == 0, the node itself is the active leaf -- look its
// children up directly) or already finished (idx > 0, the ancestry chain
// already names the child one step closer to the leaf).
func lastAttachedChildIndex(collection *parser.NodeIdMapCollection, ancestry []parser.XorNode, idx int) (int, bool) {
	if idx > 0 {
		if ai := ancestry[idx-1].AttributeIndex(); ai != nil {
			return *ai, true
		}
		return 0, false
	}

	children := collection.GetChildIds(ancestry[idx].Id())
	if len(children) == 0 {
		return 0, false
	}
	last, ok := collection.GetXor(children[len(children)-1])
	if !ok {
		return 0, false
	}
	if ai := last.AttributeIndex(); ai != nil {
		return *ai, true
	}
	return 0, false
}

// parameterKeywords suggests "as" right after a parameter name, the only
// keyword a parameter list can continue with. Once the "as" constant is
// attached the next slot holds a type name, handled by the primitive-type
// pipeline instead.
func parameterKeywords(collection *parser.NodeIdMapCollection, ancestry []parser.XorNode, idx int) []Keyword {
	children := collection.GetChildIds(ancestry[idx].Id())
	if len(children) == 0 {
		return nil
	}
	last, ok := collection.GetXor(children[len(children)-1])
	if !ok {
		return nil
	}
	switch last.Kind() {
	case parser.Identifier, parser.Parameter:
		return []Keyword{token.KeywordAs}
	}
	return nil
}

func errorHandlingExpressionKeywords(collection *parser.NodeIdMapCollection, ancestry []parser.XorNode, idx int) []Keyword {
	if ai, ok := lastAttachedChildIndex(collection, ancestry, idx); ok && ai == 1 {
		return []Keyword{token.KeywordOtherwise}
	}
	return nil
}

func ifExpressionKeywords(collection *parser.NodeIdMapCollection, ancestry []parser.XorNode, idx int) []Keyword {
	ai, ok := lastAttachedChildIndex(collection, ancestry, idx)
	if !ok {
		return nil
	}
	switch ai {
	case 1:
		return []Keyword{token.KeywordThen}
	case 3:
		return []Keyword{token.KeywordElse}
	}
	return nil
}

// InspectPrimitiveTypes returns the full primitive-type-name list,
// prefix-filtered, when the caret sits in an empty or partially-typed
// primitive-type slot.
func InspectPrimitiveTypes(collection *parser.NodeIdMapCollection, active *ActiveNode, pendingToken *token.Token) []parser.PrimitiveTypeKind {
	if !primitiveTypeSlotActive(collection, active.Ancestry) {
		return nil
	}

	prefix, hasPrefix := positionName(active, pendingToken)
	if leaf := parser.AssertGetLeaf(active.Ancestry); leaf.Kind() == parser.PrimitiveType && leaf.IsAst() && leaf.AstNode.Token != nil {
		prefix, hasPrefix = leaf.AstNode.Token.Data, true
	}

	out := make([]parser.PrimitiveTypeKind, 0, len(parser.PrimitiveTypeNames))
	for _, k := range parser.PrimitiveTypeNames {
		if !hasPrefix || strings.HasPrefix(k.String(), prefix) {
			out = append(out, k)
		}
	}
	return out
}

// primitiveTypeSlotActive reports whether ancestry shows the caret inside a
// production that expects a primitive-type name next: an open/leaf
// TypePrimaryType or NullablePrimitiveType context with no type child yet
// attached, a completed-but-still-nearby PrimitiveType leaf (partial
// spelling), or a Parameter context whose last attached child is the "as"
// Constant.
func primitiveTypeSlotActive(collection *parser.NodeIdMapCollection, ancestry []parser.XorNode) bool {
	leaf := parser.AssertGetLeaf(ancestry)
	if leaf.Kind() == parser.PrimitiveType {
		return true
	}

	for _, x := range ancestry {
		switch x.Kind() {
		case parser.TypePrimaryType, parser.NullablePrimitiveType:
			children := collection.GetChildIds(x.Id())
			if len(children) == 0 {
				return true
			}
			last, ok := collection.GetXor(children[len(children)-1])
			if !ok || (last.Kind() != parser.PrimitiveType && last.Kind() != parser.NullablePrimitiveType) {
				return true
			}
			return false
		case parser.Parameter:
			children := collection.GetChildIds(x.Id())
			if len(children) == 0 {
				return false
			}
			last, ok := collection.GetXor(children[len(children)-1])
			if !ok {
				return false
			}
			return last.IsAst() && last.AstNode.Kind == parser.Constant &&
				last.AstNode.Token != nil && last.AstNode.Token.Kind == token.KeywordAs
		}
	}
	return false
}
