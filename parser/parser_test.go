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
	"sort"
	"strings"
	"testing"

	"github.com/kgliang/powerquery-parser/cancel"
	"github.com/kgliang/powerquery-parser/config"
	"github.com/kgliang/powerquery-parser/localization"
	"github.com/kgliang/powerquery-parser/perrors"
	"github.com/kgliang/powerquery-parser/util"
)

type alwaysCancelled struct{}

func (alwaysCancelled) IsCancelled() bool { return true }
func (alwaysCancelled) Check() error      { return perrors.NewCancellationError(cancel.ErrCancelled) }

// A cancellation token that is already tripped before the first production
// runs must stop the parse at the very first checkCancellation poll.
func TestTryReadHonorsCancellation(t *testing.T) {
	settings := DefaultSettings()
	settings.CancellationToken = alwaysCancelled{}

	tried := TryRead(settings, "let x = 1 in x")
	if tried.Err == nil {
		t.Fatal("expected TryRead to report a cancellation error")
	}
	commonErr, ok := tried.Err.(*perrors.CommonError)
	if !ok || commonErr.Kind != perrors.CancellationErrorKind {
		t.Fatalf("got error %T (%v), want a CancellationError CommonError", tried.Err, tried.Err)
	}
}

// A Settings.Logger, when supplied, receives debug traces of every
// startContext/endContext/deleteContext event and any rollback.
func TestParseTracesContextLifecycleToSuppliedLogger(t *testing.T) {
	settings := DefaultSettings()
	logger := util.NewMemoryLogger(64)
	settings.Logger = logger

	tried := TryRead(settings, "let x = 1 in x")
	if tried.Err != nil {
		t.Fatalf("TryRead returned error: %v", tried.Err)
	}

	lines := logger.Slice()
	if len(lines) == 0 {
		t.Fatal("expected the logger to have captured context-lifecycle traces")
	}
	var sawStart, sawEnd bool
	for _, line := range lines {
		if strings.Contains(line, "startContext") {
			sawStart = true
		}
		if strings.Contains(line, "endContext") {
			sawEnd = true
		}
	}
	if !sawStart || !sawEnd {
		t.Fatalf("got traces %v, want both startContext and endContext entries", lines)
	}
}

// A backtracked speculative parse (e.g. the parenthesized-expression vs.
// function-literal ambiguity) must also emit a rollback trace.
func TestParseTracesRollbackToSuppliedLogger(t *testing.T) {
	settings := DefaultSettings()
	logger := util.NewMemoryLogger(64)
	settings.Logger = logger

	tried := TryRead(settings, "(1)")
	if tried.Err != nil {
		t.Fatalf("TryRead returned error: %v", tried.Err)
	}

	found := false
	for _, line := range logger.Slice() {
		if strings.Contains(line, "rollback") {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("got traces %v, want a rollback entry for the discarded function-literal speculation", logger.Slice())
	}
}

func mustParseOk(t *testing.T, source string) *ParseOk {
	t.Helper()
	tried := TryRead(DefaultSettings(), source)
	if tried.Err != nil {
		t.Fatalf("TryRead(%q) returned error: %v", source, tried.Err)
	}
	return tried.Ok
}

func TestParseLetExpression(t *testing.T) {
	ok := mustParseOk(t, "let x = 1 in x")
	if ok.Root.Kind != LetExpression {
		t.Fatalf("got root kind %v, want LetExpression", ok.Root.Kind)
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	ok := mustParseOk(t, "1 + 2 * 3")
	if ok.Root.Kind != ArithmeticExpression {
		t.Fatalf("got root kind %v, want ArithmeticExpression", ok.Root.Kind)
	}
	children := ok.Collection.GetChildIds(ok.Root.Id)
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3 ([left, Constant(+), right])", len(children))
	}
	opConstant, ok2 := ok.Collection.GetAst(children[1])
	if !ok2 || opConstant.Kind != Constant || opConstant.Token == nil || opConstant.Token.Data != "+" {
		t.Fatalf("got %+v, want a Constant(+) operator child", opConstant)
	}
}

// A bare value with no operator rolls its speculative wrapper context back:
// the result is the unwrapped literal, not an empty
// ArithmeticExpression/LogicalExpression/etc. shell.
func TestParseBareValueHasNoBinOpWrapper(t *testing.T) {
	ok := mustParseOk(t, "1")
	if ok.Root.Kind != LiteralExpression {
		t.Fatalf("got root kind %v, want LiteralExpression (wrapper should have rolled back)", ok.Root.Kind)
	}
}

// countKind returns how many of ids are AstNode children with the given
// kind -- used below to count list items/record fields among the Constant
// delimiters ("{"/"}", "["/"]") that are also attached as children.
func countKind(t *testing.T, collection *NodeIdMapCollection, ids []int, kind AstNodeKind) int {
	t.Helper()
	n := 0
	for _, id := range ids {
		if ast, ok := collection.GetAst(id); ok && ast.Kind == kind {
			n++
		}
	}
	return n
}

func TestParseListAndRecordLiterals(t *testing.T) {
	ok := mustParseOk(t, "{1, 2, 3}")
	if ok.Root.Kind != ListExpression {
		t.Fatalf("got root kind %v, want ListExpression", ok.Root.Kind)
	}
	children := ok.Collection.GetChildIds(ok.Root.Id)
	if n := countKind(t, ok.Collection, children, LiteralExpression); n != 3 {
		t.Fatalf("got %d list items, want 3", n)
	}

	ok2 := mustParseOk(t, "[a = 1, b = 2]")
	if ok2.Root.Kind != RecordExpression {
		t.Fatalf("got root kind %v, want RecordExpression", ok2.Root.Kind)
	}
	children2 := ok2.Collection.GetChildIds(ok2.Root.Id)
	if n := countKind(t, ok2.Collection, children2, GeneralizedIdentifierPairedExpression); n != 2 {
		t.Fatalf("got %d record fields, want 2", n)
	}
}

func TestParseFunctionExpression(t *testing.T) {
	ok := mustParseOk(t, "(x, y as number) => x")
	if ok.Root.Kind != FunctionExpression {
		t.Fatalf("got root kind %v, want FunctionExpression", ok.Root.Kind)
	}
}

// Adjacent parameters with no separating comma must be rejected -- the CSV
// grammar requires a comma or the closing delimiter between every item.
func TestParseMissingCsvSeparatorIsAnError(t *testing.T) {
	tried := TryRead(DefaultSettings(), "(foo bar) => foo")
	if tried.Err == nil {
		t.Fatal("expected an error for adjacent parameters with no comma")
	}
	if _, ok := tried.Err.(*perrors.ParseError); !ok {
		t.Fatalf("got error of type %T, want *perrors.ParseError", tried.Err)
	}
	if tried.PartialState == nil {
		t.Fatal("expected PartialState to be populated so inspection can still run")
	}
}

func TestParseMissingCsvSeparatorInList(t *testing.T) {
	tried := TryRead(DefaultSettings(), "{1 2}")
	if tried.Err == nil {
		t.Fatal("expected an error for adjacent list items with no comma")
	}
}

func TestParseDanglingTrailingCommaIsAnError(t *testing.T) {
	tried := TryRead(DefaultSettings(), "{1, 2,}")
	if tried.Err == nil {
		t.Fatal("expected an error for a dangling trailing comma before the closing brace")
	}
}

func TestParseIsAndAsExpressionsAttachOperatorConstant(t *testing.T) {
	ok := mustParseOk(t, "1 is number")
	if ok.Root.Kind != IsExpression {
		t.Fatalf("got root kind %v, want IsExpression", ok.Root.Kind)
	}
	children := ok.Collection.GetChildIds(ok.Root.Id)
	if len(children) != 3 {
		t.Fatalf("got %d children, want 3 ([left, Constant(is), type])", len(children))
	}

	ok2 := mustParseOk(t, "1 as number")
	if ok2.Root.Kind != AsExpression {
		t.Fatalf("got root kind %v, want AsExpression", ok2.Root.Kind)
	}
	children2 := ok2.Collection.GetChildIds(ok2.Root.Id)
	if len(children2) != 3 {
		t.Fatalf("got %d children, want 3 ([left, Constant(as), type])", len(children2))
	}
}

func TestParseIfExpression(t *testing.T) {
	ok := mustParseOk(t, "if true then 1 else 2")
	if ok.Root.Kind != IfExpression {
		t.Fatalf("got root kind %v, want IfExpression", ok.Root.Kind)
	}
}

func TestParseErrorHandlingExpression(t *testing.T) {
	ok := mustParseOk(t, "try 1 otherwise 2")
	if ok.Root.Kind != ErrorHandlingExpression {
		t.Fatalf("got root kind %v, want ErrorHandlingExpression", ok.Root.Kind)
	}
}

// An incomplete binary expression ("1 +") leaves its wrapper context open
// (not rolled back, not an error that discards state) so a caret at the end
// can still be inspected against the partial tree.
func TestParseIncompleteArithmeticLeavesContextOpen(t *testing.T) {
	tried := TryRead(DefaultSettings(), "1 +")
	if tried.Err == nil {
		t.Fatal("expected a parse error for a dangling operator with no right operand")
	}
	state := tried.PartialState
	if state == nil {
		t.Fatal("expected PartialState to be populated")
	}
	if state.ContextState.CurrentContextNodeId == nil {
		t.Fatal("expected the ArithmeticExpression context to still be open")
	}
	ctxId := *state.ContextState.CurrentContextNodeId
	ctx, ok := state.ContextState.Collection.GetContext(ctxId)
	if !ok || ctx.Kind != ArithmeticExpression {
		t.Fatalf("got open context %+v, want an open ArithmeticExpression", ctx)
	}
	children := state.ContextState.Collection.GetChildIds(ctxId)
	if len(children) != 2 {
		t.Fatalf("got %d children on the open context, want 2 ([left, Constant(+)])", len(children))
	}
}

// Chained invocation postfixes ("f(a)(b)") nest left-associatively: the
// outer InvokeExpression's first child is itself an InvokeExpression, not a
// bare identifier followed by two sibling argument lists.
func TestParsePostfixInvocationChain(t *testing.T) {
	ok := mustParseOk(t, "f(a)(b)")
	if ok.Root.Kind != InvokeExpression {
		t.Fatalf("got root kind %v, want InvokeExpression", ok.Root.Kind)
	}
	outerChildren := ok.Collection.GetChildIds(ok.Root.Id)
	if len(outerChildren) == 0 {
		t.Fatal("expected the outer InvokeExpression to have children")
	}
	inner, ok2 := ok.Collection.GetAst(outerChildren[0])
	if !ok2 || inner.Kind != InvokeExpression {
		t.Fatalf("got outer's first child kind %v, want InvokeExpression (f(a))", inner)
	}
	innerChildren := ok.Collection.GetChildIds(inner.Id)
	identNode, ok3 := ok.Collection.GetAst(innerChildren[0])
	if !ok3 || identNode.Kind != IdentifierExpression {
		t.Fatalf("got inner's first child kind %v, want IdentifierExpression (f)", identNode)
	}
}

// Mixed item-access/invocation chains ("t[0](x)") nest the same way: item
// access first, invocation wrapping it second.
func TestParsePostfixMixedChain(t *testing.T) {
	ok := mustParseOk(t, "t[0](x)")
	if ok.Root.Kind != InvokeExpression {
		t.Fatalf("got root kind %v, want InvokeExpression", ok.Root.Kind)
	}
	children := ok.Collection.GetChildIds(ok.Root.Id)
	inner, ok2 := ok.Collection.GetAst(children[0])
	if !ok2 || inner.Kind != ItemAccessExpression {
		t.Fatalf("got root's first child kind %v, want ItemAccessExpression (t[0])", inner)
	}
}

// config.BacktrackThreshold caps how many times one parse may discard a
// speculative function-literal attempt and fall back to a parenthesized
// expression. "(1) + (2)" needs that fallback twice; a threshold of 1 lets
// the first one through and turns the second into an InvariantError rather
// than silently continuing to backtrack without limit.
func TestParseBacktrackThresholdLimitsRollbacks(t *testing.T) {
	prior := config.Config[config.BacktrackThreshold]
	config.Config[config.BacktrackThreshold] = 1
	defer func() { config.Config[config.BacktrackThreshold] = prior }()

	tried := TryRead(DefaultSettings(), "(1) + (2)")
	if tried.Err == nil {
		t.Fatal("expected the second backtrack to exceed the configured threshold")
	}
	commonErr, ok := tried.Err.(*perrors.CommonError)
	if !ok || commonErr.Kind != perrors.InvariantErrorKind {
		t.Fatalf("got error %T (%v), want an InvariantError CommonError", tried.Err, tried.Err)
	}
}

// The production table is a capability record: substituting a single reader
// is honored wherever the grammar reaches that nonterminal, without
// re-implementing the driver.
func TestParserTableAllowsOverridingSingleProduction(t *testing.T) {
	calls := 0
	custom := DefaultParser()
	base := custom.ReadLetExpression
	custom.ReadLetExpression = func(s *ParserState) (*AstNode, error) {
		calls++
		return base(s)
	}
	settings := DefaultSettings()
	settings.Parser = custom

	tried := TryRead(settings, "if true then let x = 1 in x else 2")
	if tried.Err != nil {
		t.Fatalf("TryRead returned error: %v", tried.Err)
	}
	if calls != 1 {
		t.Fatalf("got %d ReadLetExpression calls, want 1", calls)
	}
}

// A document whose outermost binary-operator wrapper rolled back hands root
// status to the surviving node: no parent entry, no attribute index.
func TestParseRootHasNoParentOrAttributeIndex(t *testing.T) {
	ok := mustParseOk(t, "1")
	if ok.Root.AttributeIndex != nil {
		t.Fatalf("got root attribute index %v, want nil", *ok.Root.AttributeIndex)
	}
	if _, hasParent := ok.Collection.GetParent(ok.Root.Id); hasParent {
		t.Fatal("expected the root to have no parent entry")
	}
	if ok.State.ContextState.RootId != ok.Root.Id {
		t.Fatalf("got RootId %d, want %d", ok.State.ContextState.RootId, ok.Root.Id)
	}
}

// A malformed document that is nonetheless recognizably a function literal
// (a "=>" follows the matching ")") keeps the failed function attempt's
// partial state instead of backtracking into a parenthesized-expression
// reparse: the open ParameterList context is what caret inspection needs.
func TestParseMalformedFunctionKeepsParameterListContext(t *testing.T) {
	tried := TryRead(DefaultSettings(), "(foo a) => foo")
	if tried.Err == nil {
		t.Fatal("expected an error for adjacent parameters with no comma")
	}
	state := tried.PartialState
	if state == nil || state.ContextState.CurrentContextNodeId == nil {
		t.Fatal("expected an open context in the partial state")
	}
	ctx, ok := state.ContextState.Collection.GetContext(*state.ContextState.CurrentContextNodeId)
	if !ok || ctx.Kind != ParameterList {
		t.Fatalf("got open context %+v, want an open ParameterList", ctx)
	}
}

// Parent/child symmetry must hold over the whole graph after a parse that
// exercises reparenting rollbacks, postfix wrapping and the speculative
// function-literal path all at once.
func TestParentChildSymmetry(t *testing.T) {
	ok := mustParseOk(t, `let f = (x as number) => if x > 1 then {1, x} else [a = "b"] in f(2)`)
	c := ok.Collection
	for childId, parentId := range c.ParentIdById {
		found := false
		for _, id := range c.GetChildIds(parentId) {
			if id == childId {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("node %d has parent %d but is missing from its child list", childId, parentId)
		}
	}
	for parentId, children := range c.ChildIdsById {
		for _, childId := range children {
			if got, hasParent := c.GetParent(childId); !hasParent || got != parentId {
				t.Fatalf("node %d is listed as %d's child but records parent %v", childId, parentId, got)
			}
		}
	}
}

func TestRightMostLeafTracksLastTerminal(t *testing.T) {
	ok := mustParseOk(t, "1 + 2")
	leaf, found := ok.Collection.RightMostLeaf()
	if !found || leaf.Token == nil || leaf.Token.Data != "2" {
		t.Fatalf("got %+v, want the trailing literal 2", leaf)
	}
}

// A caller-supplied localization template set is honored by every
// diagnostic kind, not just the expected-token ones.
func TestParseErrorsUseSuppliedLocalizationTemplates(t *testing.T) {
	settings := DefaultSettings()
	settings.Localization = localization.Templates{
		localization.UnterminatedParentheses: "klammer offen bei %s",
		localization.ExpectedCsvContinuation: "komma unzulaessig bei %s",
	}

	tried := TryRead(settings, "(1")
	parseErr, ok := tried.Err.(*perrors.ParseError)
	if !ok || parseErr.Kind != perrors.UnterminatedParenthesesErrorKind {
		t.Fatalf("got error %T (%v), want an UnterminatedParentheses ParseError", tried.Err, tried.Err)
	}
	if !strings.HasPrefix(parseErr.Message, "klammer offen bei") {
		t.Fatalf("got message %q, want it formatted from the supplied template", parseErr.Message)
	}

	tried = TryRead(settings, "{1, 2,}")
	parseErr, ok = tried.Err.(*perrors.ParseError)
	if !ok || parseErr.Kind != perrors.ExpectedCsvContinuationErrorKind {
		t.Fatalf("got error %T (%v), want an ExpectedCsvContinuation ParseError", tried.Err, tried.Err)
	}
	if !strings.HasPrefix(parseErr.Message, "komma unzulaessig bei") {
		t.Fatalf("got message %q, want it formatted from the supplied template", parseErr.Message)
	}
}

// Every consumed token belongs to exactly one terminal leaf: sorted by token
// index, the leaves tile the token stream with no gap and no overlap (EOF
// excluded), so re-reading the source through their position spans -- with
// the original whitespace between -- reproduces the input.
func TestLeavesTileTokenStream(t *testing.T) {
	sources := []string{
		"let x = 1, y = 2 in y",
		"(x, optional y as number) => x + y",
		"{1, 2, 3}",
		`[a = 1, b = "two"]`,
		"section s; shared f = 1;",
		"if true then 1 else 2",
		"f(a, b)[0]",
	}
	for _, source := range sources {
		ok := mustParseOk(t, source)

		var leaves []*AstNode
		for id := range ok.Collection.LeafNodeIds {
			ast, found := ok.Collection.GetAst(id)
			if !found {
				t.Fatalf("%q: leaf id %d does not resolve to an AstNode", source, id)
			}
			leaves = append(leaves, ast)
		}
		sort.Slice(leaves, func(i, j int) bool {
			return leaves[i].TokenRange.TokenIndexStart < leaves[j].TokenRange.TokenIndexStart
		})

		next := 0
		for _, leaf := range leaves {
			if leaf.TokenRange.TokenIndexStart != next {
				t.Fatalf("%q: leaf %v covers tokens [%d,%d), want it to start at %d",
					source, leaf.Kind, leaf.TokenRange.TokenIndexStart, leaf.TokenRange.TokenIndexEnd, next)
			}
			next = leaf.TokenRange.TokenIndexEnd
		}
		if next != ok.State.Snapshot.Len()-1 {
			t.Fatalf("%q: leaves cover %d tokens, want %d", source, next, ok.State.Snapshot.Len()-1)
		}

		runes := []rune(source)
		var rebuilt strings.Builder
		pos := 0
		for _, leaf := range leaves {
			start := leaf.TokenRange.PositionStart.CodeUnit
			end := leaf.TokenRange.PositionEnd.CodeUnit
			rebuilt.WriteString(string(runes[pos:start]))
			rebuilt.WriteString(string(runes[start:end]))
			pos = end
		}
		rebuilt.WriteString(string(runes[pos:]))
		if rebuilt.String() != source {
			t.Fatalf("round-trip mismatch: got %q, want %q", rebuilt.String(), source)
		}
	}
}

func TestDumpRendersTree(t *testing.T) {
	ok := mustParseOk(t, "1 + 2")
	out := Dump(ok.Collection, ok.Root.Id)
	if out == "" {
		t.Fatal("Dump returned an empty string")
	}
}
