/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Package parser implements the dual-mode node graph, the parse-context
 * lifecycle, the speculative recursive-descent driver and the
 * XorNode/ancestry utilities, plus the concrete M grammar productions.
 *
 * Ordinary parse failures are returned as plain `error` values; a production
 * only panics (via errorutil.AssertTrue) when a structural invariant is
 * violated, and TryRead is the single place that recovers from that and
 * converts it to a CommonError.
 */
package parser

import (
	"fmt"
	"sort"

	"github.com/krotik/common/errorutil"

	"github.com/kgliang/powerquery-parser/cancel"
	"github.com/kgliang/powerquery-parser/config"
	"github.com/kgliang/powerquery-parser/lexer"
	"github.com/kgliang/powerquery-parser/localization"
	"github.com/kgliang/powerquery-parser/perrors"
	"github.com/kgliang/powerquery-parser/token"
	"github.com/kgliang/powerquery-parser/util"
)

// Settings carries the per-parse collaborators: locale, optional
// cancellation token, localization templates, an overridable production
// table (DefaultParser if unset) and optional debug tracing of the context
// lifecycle (util.NullLogger if unset).
type Settings struct {
	Locale            string
	CancellationToken cancel.Token
	Localization      localization.Templates
	Logger            util.Logger
	Parser            *Parser
}

// DefaultSettings returns a Settings value with no cancellation, the English
// localization templates, the default production table and a no-op logger.
func DefaultSettings() Settings {
	return Settings{
		Locale:            config.Str(config.DefaultLocale),
		CancellationToken: cancel.None{},
		Localization:      localization.Default,
		Logger:            util.NewNullLogger(),
	}
}

// Parser bundles one reader per grammar nonterminal so a caller may
// substitute individual productions while reusing the driver. Recursive
// production calls route through the state's table, so an override is
// honored wherever its nonterminal is reached from.
type Parser struct {
	ReadDocument                              func(*ParserState) (*AstNode, error)
	ReadSectionDocument                       func(*ParserState) (*AstNode, error)
	ReadSectionMember                         func(*ParserState) (*AstNode, error)
	ReadExpression                            func(*ParserState) (*AstNode, error)
	ReadLetExpression                         func(*ParserState) (*AstNode, error)
	ReadIfExpression                          func(*ParserState) (*AstNode, error)
	ReadEachExpression                        func(*ParserState) (*AstNode, error)
	ReadErrorHandlingExpression               func(*ParserState) (*AstNode, error)
	ReadErrorRaisingExpression                func(*ParserState) (*AstNode, error)
	ReadFunctionExpression                    func(*ParserState) (*AstNode, error)
	ReadParameterList                         func(*ParserState) (*AstNode, error)
	ReadParameter                             func(*ParserState) (*AstNode, error)
	ReadListExpression                        func(*ParserState) (*AstNode, error)
	ReadRecordExpression                      func(*ParserState) (*AstNode, error)
	ReadParenthesizedExpression               func(*ParserState) (*AstNode, error)
	ReadIdentifierPairedExpression            func(*ParserState) (*AstNode, error)
	ReadGeneralizedIdentifierPairedExpression func(*ParserState) (*AstNode, error)
	ReadTypePrimaryType                       func(*ParserState) (*AstNode, error)
	ReadNullablePrimitiveType                 func(*ParserState) (*AstNode, error)
	ReadPrimitiveType                         func(*ParserState) (*AstNode, error)
}

// DefaultParser returns the base production table.
func DefaultParser() *Parser {
	return &Parser{
		ReadDocument:                              (*ParserState).readDocument,
		ReadSectionDocument:                       (*ParserState).readSectionDocument,
		ReadSectionMember:                         (*ParserState).readSectionMember,
		ReadExpression:                            (*ParserState).readExpression,
		ReadLetExpression:                         (*ParserState).readLetExpression,
		ReadIfExpression:                          (*ParserState).readIfExpression,
		ReadEachExpression:                        (*ParserState).readEachExpression,
		ReadErrorHandlingExpression:               (*ParserState).readErrorHandlingExpression,
		ReadErrorRaisingExpression:                (*ParserState).readErrorRaisingExpression,
		ReadFunctionExpression:                    (*ParserState).readFunctionExpression,
		ReadParameterList:                         (*ParserState).readParameterList,
		ReadParameter:                             (*ParserState).readParameter,
		ReadListExpression:                        (*ParserState).readListExpression,
		ReadRecordExpression:                      (*ParserState).readRecordExpression,
		ReadParenthesizedExpression:               (*ParserState).readParenthesizedExpression,
		ReadIdentifierPairedExpression:            (*ParserState).readIdentifierPairedExpression,
		ReadGeneralizedIdentifierPairedExpression: (*ParserState).readGeneralizedIdentifierPairedExpression,
		ReadTypePrimaryType:                       (*ParserState).readTypePrimaryType,
		ReadNullablePrimitiveType:                 (*ParserState).readNullablePrimitiveType,
		ReadPrimitiveType:                         (*ParserState).readPrimitiveType,
	}
}

// ParserState threads the token cursor, the shared context state and the
// production table through a single parse. The current-context pointer
// lives on ContextState, not duplicated here.
type ParserState struct {
	Settings     Settings
	Snapshot     lexer.Snapshot
	Localization localization.Templates
	Cancellation cancel.Token

	TokenIndex   int
	ContextState *ParseContextState

	parser *Parser

	// backtrackRemaining is config.BacktrackThreshold's per-parse budget:
	// how many more times readParenthesizedOrFunctionExpression may still
	// discard a speculative function-literal attempt and fall back to a
	// parenthesized expression. -1 means config.BacktrackThreshold was 0
	// ("unlimited") at construction time; it never reaches zero.
	backtrackRemaining int
}

func newParserState(settings Settings, snapshot lexer.Snapshot) *ParserState {
	loc := settings.Localization
	if loc == nil {
		loc = localization.Default
	}
	cancellation := settings.CancellationToken
	if cancellation == nil {
		cancellation = cancel.None{}
	}
	logger := settings.Logger
	if logger == nil {
		logger = util.NewNullLogger()
	}
	parser := settings.Parser
	if parser == nil {
		parser = DefaultParser()
	}
	contextState := NewParseContextState()
	contextState.Logger = logger

	backtrackRemaining := -1
	if threshold := config.Int(config.BacktrackThreshold); threshold > 0 {
		backtrackRemaining = threshold
	}

	return &ParserState{
		Settings:           settings,
		Snapshot:           snapshot,
		Localization:       loc,
		Cancellation:       cancellation,
		ContextState:       contextState,
		parser:             parser,
		backtrackRemaining: backtrackRemaining,
	}
}

// checkBacktrackBudget enforces config.BacktrackThreshold: a host that sets
// it catches a pathologically ambiguous document (runaway
// parenthesized-vs-function-literal backtracking) as a structural invariant
// failure, recovered by TryRead into an InvariantError, instead of unbounded
// speculative reparsing. A zero/unset threshold (backtrackRemaining == -1)
// never triggers this.
func (s *ParserState) checkBacktrackBudget() {
	if s.backtrackRemaining < 0 {
		return
	}
	errorutil.AssertTrue(s.backtrackRemaining > 0, "backtrack threshold exceeded")
	s.backtrackRemaining--
}

func (s *ParserState) currentToken() (token.Token, bool) {
	return s.Snapshot.At(s.TokenIndex)
}

func (s *ParserState) currentKind() token.Kind {
	t, ok := s.currentToken()
	if !ok {
		return token.EOF
	}
	return t.Kind
}

func (s *ParserState) advance() { s.TokenIndex++ }

// checkCancellation polls the cancellation token, the parse's only
// cooperative yield. TryRead, readDocument, readExpression and the
// comma-separated collection loops (invoke arguments, list items, record
// fields, parameters) call it; the other productions do not poll on entry.
func (s *ParserState) checkCancellation() error {
	if s.Cancellation != nil && s.Cancellation.IsCancelled() {
		return perrors.NewCancellationError(cancel.ErrCancelled)
	}
	return nil
}

func (s *ParserState) tokenRangeFrom(startIndex int) TokenRange {
	startTok, startOk := s.Snapshot.At(startIndex)
	endIndex := s.TokenIndex
	var endPos token.Position
	if endTok, ok := s.Snapshot.At(endIndex - 1); ok {
		endPos = endTok.PositionEnd
	} else if startOk {
		endPos = startTok.PositionEnd
	}
	var startPos token.Position
	if startOk {
		startPos = startTok.PositionStart
	}
	return TokenRange{
		TokenIndexStart: startIndex,
		TokenIndexEnd:   endIndex,
		PositionStart:   startPos,
		PositionEnd:     endPos,
	}
}

// localize formats the message template registered for id with args, so
// every diagnostic honors a caller-supplied Templates set.
func (s *ParserState) localize(id localization.TemplateID, args ...interface{}) string {
	return fmt.Sprintf(s.Localization.Lookup(id), args...)
}

// expect consumes the current token if it has the given kind, else returns
// an ExpectedTokenKindError.
func (s *ParserState) expect(kind token.Kind) (token.Token, error) {
	tok, ok := s.currentToken()
	if !ok || tok.Kind != kind {
		return token.Token{}, perrors.NewExpectedTokenKindError(kind, tok,
			s.localize(localization.ExpectedTokenKind, kind, tok.Kind))
	}
	s.advance()
	return tok, nil
}

// readConstant parses a single token as a Constant leaf node. Leaf
// productions go through the same StartContext/EndContext cycle as every
// other production so id allocation stays strictly monotonic.
func (s *ParserState) readConstant(kind token.Kind) (*AstNode, error) {
	startIndex := s.TokenIndex
	tok, err := s.expect(kind)
	if err != nil {
		return nil, err
	}
	ctx := s.ContextState.StartContext(Constant, startIndex)
	ast := &AstNode{
		Id:         ctx.Id,
		Kind:       Constant,
		TokenRange: s.tokenRangeFrom(startIndex),
		Token:      &tok,
	}
	return s.ContextState.EndContext(ast), nil
}

// rollback discards the context (and everything started inside it) without
// promoting it, used when a production fails partway through.
func (s *ParserState) rollback(ctx *ContextNode) {
	s.ContextState.DeleteContext(ctx.Id, false)
}

// rollbackIfEmpty discards ctx only when nothing was ever attached to it: a
// speculative binary-operator wrapper whose left operand failed on its very
// first token contributes no state worth inspecting, and leaving it open
// would bury the caret's real enclosing production (the one holding the
// already-parsed left operand and operator) under a chain of empty shells.
func (s *ParserState) rollbackIfEmpty(ctx *ContextNode) {
	if len(s.ContextState.Collection.ChildIdsById[ctx.Id]) == 0 {
		s.rollback(ctx)
	}
}

// FastStateBackup captures, in O(1), everything applyFastStateBackup needs
// to rewind a speculative read: the token cursor, the id watermark, and the
// context that was current.
//
// currentContextAttributeCounter makes the rollback total: every
// StartContext call made during the speculative window attaches its node as
// a child of some context with id >= IdCounter, except the very first one,
// which attaches to the backup's own current context (the one surviving
// context below the watermark) and increments its AttributeCounter.
// Deleting the speculative ids splices them back out of that context's
// child list, but never undoes that increment -- without restoring it here,
// the next real child attached after rollback would be assigned the wrong
// attribute index.
type FastStateBackup struct {
	TokenIndex                     int
	IdCounter                      int
	CurrentContextNodeId           *int
	currentContextAttributeCounter int
	rootId                         int
}

func (s *ParserState) fastStateBackup() FastStateBackup {
	var cur *int
	var attrCounter int
	if s.ContextState.CurrentContextNodeId != nil {
		v := *s.ContextState.CurrentContextNodeId
		cur = &v
		if ctx, ok := s.ContextState.Collection.ContextNodeById[v]; ok {
			attrCounter = ctx.AttributeCounter
		}
	}
	return FastStateBackup{
		TokenIndex:                     s.TokenIndex,
		IdCounter:                      s.ContextState.NextId(),
		CurrentContextNodeId:           cur,
		currentContextAttributeCounter: attrCounter,
		rootId:                         s.ContextState.RootId,
	}
}

// applyFastStateBackup restores tokenIndex and deletes every id allocated
// since the backup: ast ids first (descending), then context ids
// (descending), each with parentWillAlsoBeDeleted=false so a surviving
// pre-backup child is reparented. Descending order removes children before
// their parents, so reparenting never runs against an already-deleted parent.
func (s *ParserState) applyFastStateBackup(backup FastStateBackup) {
	s.TokenIndex = backup.TokenIndex
	cs := s.ContextState
	threshold := backup.IdCounter

	var astIds []int
	for id := range cs.Collection.AstNodeById {
		if id >= threshold {
			astIds = append(astIds, id)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(astIds)))
	for _, id := range astIds {
		cs.deleteAst(id, false)
	}

	var ctxIds []int
	for id := range cs.Collection.ContextNodeById {
		if id >= threshold {
			ctxIds = append(ctxIds, id)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ctxIds)))
	for _, id := range ctxIds {
		cs.DeleteContext(id, false)
	}

	cs.idCounter = threshold
	cs.RootId = backup.rootId
	cs.CurrentContextNodeId = backup.CurrentContextNodeId
	if backup.CurrentContextNodeId != nil {
		if ctx, ok := cs.Collection.ContextNodeById[*backup.CurrentContextNodeId]; ok {
			ctx.AttributeCounter = backup.currentContextAttributeCounter
		}
	}
	if cs.Logger != nil {
		cs.Logger.LogDebug(fmt.Sprintf("rollback threshold=%d tokenIndex=%d", threshold, backup.TokenIndex))
	}
}

// ParseOk is the successful TriedParse result.
type ParseOk struct {
	Root        *AstNode
	Collection  *NodeIdMapCollection
	LeafNodeIds map[int]bool
	State       *ParserState
}

// TriedParse is a result sum: exactly one of Ok/Err is non-nil.
// PartialState carries the parser state at the point of failure so a caret
// inspection can still walk the partially built tree of an in-progress
// edit; it is populated whenever parsing reached the grammar (always except
// on a lex failure or an invariant failure recovered by TryRead).
type TriedParse struct {
	Ok           *ParseOk
	Err          error // *perrors.ParseError or *perrors.CommonError
	PartialState *ParserState
}

// TryRead parses source, asserts no open context and no unused tokens
// remain, and recovers from any invariant-violation panic raised by
// errorutil.AssertTrue along the way, converting it into a CommonError.
// Ordinary parse failures never panic; they propagate as plain `error`
// returns from the grammar.
func TryRead(settings Settings, source string) (result TriedParse) {
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok {
				result = TriedParse{Err: perrors.NewInvariantError(err.Error())}
				return
			}
			result = TriedParse{Err: perrors.NewInvariantError(fmt.Sprint(r))}
		}
	}()

	snapshot, err := lexer.Lex(source)
	if err != nil {
		return TriedParse{Err: perrors.NewUnknownError(err)}
	}

	state := newParserState(settings, snapshot)

	if err := state.checkCancellation(); err != nil {
		return TriedParse{Err: err, PartialState: state}
	}

	root, err := state.parser.ReadDocument(state)
	if err != nil {
		return TriedParse{Err: err, PartialState: state}
	}

	errorutil.AssertTrue(state.ContextState.CurrentContextNodeId == nil,
		"tryRead: a production returned without closing its context")

	if tok, ok := state.currentToken(); ok && tok.Kind != token.EOF {
		return TriedParse{
			Err:          perrors.NewUnusedTokensRemainError(tok, state.localize(localization.UnusedTokensRemain, tok)),
			PartialState: state,
		}
	}

	return TriedParse{Ok: &ParseOk{
		Root:        root,
		Collection:  state.ContextState.Collection,
		LeafNodeIds: state.ContextState.Collection.LeafNodeIds,
		State:       state,
	}}
}

// ---------------------------------------------------------------------
// Grammar productions
// ---------------------------------------------------------------------

// readDocument reads the top-level production: a bare expression, or a
// minimal section document ("section <name>; shared <name> = <expr>;" ...)
// when the document opens with the `section` keyword.
func (s *ParserState) readDocument() (*AstNode, error) {
	if err := s.checkCancellation(); err != nil {
		return nil, err
	}
	if s.currentKind() == token.KeywordSection {
		return s.parser.ReadSectionDocument(s)
	}
	return s.parser.ReadExpression(s)
}

func (s *ParserState) readSectionDocument() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(SectionDocument, startIndex)

	if _, err := s.readConstant(token.KeywordSection); err != nil {
		return nil, err
	}
	if s.currentKind() == token.Identifier {
		if _, err := s.readIdentifier(); err != nil {
			return nil, err
		}
	}
	if _, err := s.readConstant(token.Semicolon); err != nil {
		return nil, err
	}

	for s.currentKind() == token.KeywordShared {
		if _, err := s.parser.ReadSectionMember(s); err != nil {
			return nil, err
		}
	}

	ast := &AstNode{Id: ctx.Id, Kind: SectionDocument, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readSectionMember() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(SectionMember, startIndex)

	if _, err := s.readConstant(token.KeywordShared); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadIdentifierPairedExpression(s); err != nil {
		return nil, err
	}
	if _, err := s.readConstant(token.Semicolon); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: SectionMember, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readIdentifierPairedExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(IdentifierPairedExpression, startIndex)

	if _, err := s.readIdentifier(); err != nil {
		return nil, err
	}
	if _, err := s.readConstant(token.Equal); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: IdentifierPairedExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

// readExpression dispatches keyword-led forms, else falls into the binary
// operator precedence chain (loosest to tightest: Metadata, Logical, Is,
// As, Equality, Relational, Arithmetic).
func (s *ParserState) readExpression() (*AstNode, error) {
	if err := s.checkCancellation(); err != nil {
		return nil, err
	}

	switch s.currentKind() {
	case token.KeywordLet:
		return s.parser.ReadLetExpression(s)
	case token.KeywordIf:
		return s.parser.ReadIfExpression(s)
	case token.KeywordEach:
		return s.parser.ReadEachExpression(s)
	case token.KeywordTry:
		return s.parser.ReadErrorHandlingExpression(s)
	case token.KeywordError:
		return s.parser.ReadErrorRaisingExpression(s)
	}
	return s.readMetadataExpression()
}

var logicalOperators = map[token.Kind]bool{token.KeywordAnd: true, token.KeywordOr: true}
var equalityOperators = map[token.Kind]bool{token.Equal: true, token.NotEqual: true}
var relationalOperators = map[token.Kind]bool{
	token.LessThan: true, token.LessThanEqualTo: true,
	token.GreaterThan: true, token.GreaterThanEqualTo: true,
}
var arithmeticOperators = map[token.Kind]bool{
	token.Plus: true, token.Minus: true, token.Asterisk: true,
	token.Division: true, token.Ampersand: true,
}

// readBinOp wraps `left` in a speculative kind context, consumes a single
// operator from `ops` if present, and recurses into `sameLevel` for the
// right operand so chains ("1+2+3") nest under the same kind. If no
// operator follows, the wrapper context is rolled back and `left` is
// returned unwrapped -- the deletion splices left back onto the grandparent
// in its original position.
func (s *ParserState) readBinOp(kind AstNodeKind, ops map[token.Kind]bool, left func() (*AstNode, error), sameLevel func() (*AstNode, error)) (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(kind, startIndex)

	leftNode, err := left()
	if err != nil {
		s.rollbackIfEmpty(ctx)
		return nil, err
	}

	opTok, ok := s.currentToken()
	if !ok || !ops[opTok.Kind] {
		s.rollback(ctx)
		return leftNode, nil
	}
	if _, err := s.readConstant(opTok.Kind); err != nil {
		return nil, err
	}

	if _, err := sameLevel(); err != nil {
		return nil, err
	}

	ast := &AstNode{
		Id:           ctx.Id,
		Kind:         kind,
		TokenRange:   s.tokenRangeFrom(startIndex),
		OperatorKind: opTok.Kind,
	}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readMetadataExpression() (*AstNode, error) {
	return s.readBinOp(MetadataExpression, map[token.Kind]bool{token.KeywordMeta: true},
		s.readLogicalExpression, s.readMetadataExpression)
}

func (s *ParserState) readLogicalExpression() (*AstNode, error) {
	return s.readBinOp(LogicalExpression, logicalOperators, s.readIsExpression, s.readLogicalExpression)
}

// readIsExpression and readAsExpression take a type on the right, not a
// nested value expression: `is` and `as` test or assert a type.
func (s *ParserState) readIsExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(IsExpression, startIndex)

	leftNode, err := s.readAsExpression()
	if err != nil {
		s.rollbackIfEmpty(ctx)
		return nil, err
	}

	if s.currentKind() != token.KeywordIs {
		s.rollback(ctx)
		return leftNode, nil
	}
	if _, err := s.readConstant(token.KeywordIs); err != nil {
		return nil, err
	}

	if _, err := s.parser.ReadNullablePrimitiveType(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: IsExpression, TokenRange: s.tokenRangeFrom(startIndex), OperatorKind: token.KeywordIs}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readAsExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(AsExpression, startIndex)

	leftNode, err := s.readEqualityExpression()
	if err != nil {
		s.rollbackIfEmpty(ctx)
		return nil, err
	}

	if s.currentKind() != token.KeywordAs {
		s.rollback(ctx)
		return leftNode, nil
	}
	if _, err := s.readConstant(token.KeywordAs); err != nil {
		return nil, err
	}

	if _, err := s.parser.ReadNullablePrimitiveType(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: AsExpression, TokenRange: s.tokenRangeFrom(startIndex), OperatorKind: token.KeywordAs}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readEqualityExpression() (*AstNode, error) {
	return s.readBinOp(EqualityExpression, equalityOperators, s.readRelationalExpression, s.readEqualityExpression)
}

func (s *ParserState) readRelationalExpression() (*AstNode, error) {
	return s.readBinOp(RelationalExpression, relationalOperators, s.readArithmeticExpression, s.readRelationalExpression)
}

func (s *ParserState) readArithmeticExpression() (*AstNode, error) {
	return s.readBinOp(ArithmeticExpression, arithmeticOperators, s.readUnaryExpression, s.readArithmeticExpression)
}

func (s *ParserState) readUnaryExpression() (*AstNode, error) {
	if s.currentKind() != token.Plus && s.currentKind() != token.Minus {
		return s.readPostfixExpression()
	}

	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(UnaryExpression, startIndex)
	opTok, _ := s.currentToken()
	if _, err := s.readConstant(opTok.Kind); err != nil {
		return nil, err
	}

	if _, err := s.readUnaryExpression(); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: UnaryExpression, TokenRange: s.tokenRangeFrom(startIndex), OperatorKind: opTok.Kind}
	return s.ContextState.EndContext(ast), nil
}

// readPostfixExpression parses a primary expression followed by zero or more
// invocation / item-access / field-access postfixes, chained left-
// associatively ("f(a)(b)", "t[0][1]", "f(a)[0]") without needing a
// speculative wrapper context around the common no-postfix case: each
// postfix, once it commits to its opening delimiter, wraps the
// already-finished result so far via WrapExistingChild rather than
// re-parsing it.
func (s *ParserState) readPostfixExpression() (*AstNode, error) {
	node, err := s.readPrimaryExpression()
	if err != nil {
		return nil, err
	}

	for {
		switch s.currentKind() {
		case token.LeftParenthesis:
			node, err = s.readInvokeExpressionPostfix(node)
		case token.LeftBracket:
			node, err = s.readItemOrFieldAccessPostfix(node)
		default:
			return node, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// readInvokeExpressionPostfix wraps left in an InvokeExpression covering
// "<left>(<args>)".
func (s *ParserState) readInvokeExpressionPostfix(left *AstNode) (*AstNode, error) {
	startIndex := left.TokenRange.TokenIndexStart
	openIndex := s.TokenIndex
	ctx := s.ContextState.WrapExistingChild(InvokeExpression, startIndex, left.Id)

	if _, err := s.readConstant(token.LeftParenthesis); err != nil {
		return nil, err
	}
	for s.currentKind() != token.RightParenthesis {
		if err := s.checkCancellation(); err != nil {
			return nil, err
		}
		if _, err := s.parser.ReadExpression(s); err != nil {
			return nil, err
		}
		if err := s.requireCsvContinuationOrClose(token.RightParenthesis); err != nil {
			return nil, err
		}
	}
	if _, err := s.readConstant(token.RightParenthesis); err != nil {
		open := s.mustTokenAt(openIndex)
		return nil, perrors.NewUnterminatedParenthesesError(open, s.localize(localization.UnterminatedParentheses, open))
	}
	ast := &AstNode{Id: ctx.Id, Kind: InvokeExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

// readItemOrFieldAccessPostfix wraps left in an ItemAccessExpression or
// FieldAccessExpression covering "<left>[<key>]".
func (s *ParserState) readItemOrFieldAccessPostfix(left *AstNode) (*AstNode, error) {
	startIndex := left.TokenRange.TokenIndexStart
	openIndex := s.TokenIndex

	// "[identifier]" is a field access (the identifier names a field, not
	// an expression to evaluate); any other bracketed content is a
	// general item access ("list[0]").
	isFieldAccess := s.peekIsFieldAccess()
	kind := ItemAccessExpression
	if isFieldAccess {
		kind = FieldAccessExpression
	}

	ctx := s.ContextState.WrapExistingChild(kind, startIndex, left.Id)

	if _, err := s.readConstant(token.LeftBracket); err != nil {
		return nil, err
	}
	if isFieldAccess {
		if _, err := s.readGeneralizedIdentifier(); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.parser.ReadExpression(s); err != nil {
			return nil, err
		}
	}
	if _, err := s.readConstant(token.RightBracket); err != nil {
		open := s.mustTokenAt(openIndex)
		return nil, perrors.NewUnterminatedBracketError(open, s.localize(localization.UnterminatedBracket, open))
	}
	ast := &AstNode{Id: ctx.Id, Kind: kind, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) mustToken() token.Token {
	tok, _ := s.currentToken()
	return tok
}

func (s *ParserState) mustTokenAt(index int) token.Token {
	tok, _ := s.Snapshot.At(index)
	return tok
}

// peekIsFieldAccess reports whether the bracket at the current position
// opens a field access ("[identifier]") rather than a general item access.
func (s *ParserState) peekIsFieldAccess() bool {
	ident, ok := s.Snapshot.At(s.TokenIndex + 1)
	if !ok || ident.Kind != token.Identifier {
		return false
	}
	closing, ok := s.Snapshot.At(s.TokenIndex + 2)
	return ok && closing.Kind == token.RightBracket
}

// requireCsvContinuationOrClose enforces that a CSV item is followed by
// either a comma (consumed as a Constant leaf, after checking it is not a
// dangling trailing comma) or closeKind -- without this, adjacent items with
// no separator ("foo a") would silently parse as two items instead of
// raising an error.
func (s *ParserState) requireCsvContinuationOrClose(closeKind token.Kind) error {
	if s.currentKind() == token.Comma {
		if s.peekAfterCommaIsClose(closeKind) {
			comma := s.mustToken()
			return perrors.NewExpectedCsvContinuationError(comma, s.localize(localization.ExpectedCsvContinuation, comma))
		}
		if _, err := s.readConstant(token.Comma); err != nil {
			return err
		}
		return nil
	}
	if s.currentKind() == closeKind {
		return nil
	}
	expected := []token.Kind{token.Comma, closeKind}
	return perrors.NewExpectedAnyTokenKindError(expected, s.mustToken(),
		s.localize(localization.ExpectedAnyTokenKind, expected, s.currentKind()))
}

func (s *ParserState) peekAfterCommaIsClose(closeKind token.Kind) bool {
	next, ok := s.Snapshot.At(s.TokenIndex + 1)
	return ok && next.Kind == closeKind
}

func (s *ParserState) readPrimaryExpression() (*AstNode, error) {
	switch s.currentKind() {
	case token.NumberLiteral, token.TextLiteral, token.NullLiteral, token.TrueLiteral, token.FalseLiteral:
		return s.readLiteralExpression()
	case token.Identifier:
		return s.readIdentifierExpression()
	case token.LeftBrace:
		return s.parser.ReadListExpression(s)
	case token.LeftBracket:
		return s.parser.ReadRecordExpression(s)
	case token.KeywordType:
		return s.parser.ReadTypePrimaryType(s)
	case token.LeftParenthesis:
		return s.readParenthesizedOrFunctionExpression()
	}
	tok, _ := s.currentToken()
	expected := []token.Kind{token.NumberLiteral, token.TextLiteral, token.Identifier, token.LeftParenthesis}
	return nil, perrors.NewExpectedAnyTokenKindError(expected, tok,
		s.localize(localization.ExpectedAnyTokenKind, expected, tok.Kind))
}

func (s *ParserState) readLiteralExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	tok, _ := s.currentToken()
	var kind LiteralKind
	switch tok.Kind {
	case token.NumberLiteral:
		kind = NumberLiteralKind
	case token.TextLiteral:
		kind = TextLiteralKind
	case token.NullLiteral:
		kind = NullLiteralKind
	case token.TrueLiteral:
		kind = TrueLiteralKind
	case token.FalseLiteral:
		kind = FalseLiteralKind
	default:
		expected := []token.Kind{token.NumberLiteral, token.TextLiteral, token.NullLiteral, token.TrueLiteral, token.FalseLiteral}
		return nil, perrors.NewExpectedAnyTokenKindError(expected, tok,
			s.localize(localization.ExpectedAnyTokenKind, expected, tok.Kind))
	}
	ctx := s.ContextState.StartContext(LiteralExpression, startIndex)
	s.advance()
	ast := &AstNode{
		Id:          ctx.Id,
		Kind:        LiteralExpression,
		TokenRange:  s.tokenRangeFrom(startIndex),
		Token:       &tok,
		LiteralKind: kind,
	}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readIdentifier() (*AstNode, error) {
	startIndex := s.TokenIndex
	tok, err := s.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	ctx := s.ContextState.StartContext(Identifier, startIndex)
	ast := &AstNode{
		Id:                ctx.Id,
		Kind:              Identifier,
		TokenRange:        s.tokenRangeFrom(startIndex),
		Token:             &tok,
		IdentifierLiteral: tok.Data,
	}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readGeneralizedIdentifier() (*AstNode, error) {
	startIndex := s.TokenIndex
	tok, err := s.expect(token.Identifier)
	if err != nil {
		return nil, err
	}
	ctx := s.ContextState.StartContext(GeneralizedIdentifier, startIndex)
	ast := &AstNode{
		Id:                ctx.Id,
		Kind:              GeneralizedIdentifier,
		TokenRange:        s.tokenRangeFrom(startIndex),
		Token:             &tok,
		IdentifierLiteral: tok.Data,
	}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readIdentifierExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(IdentifierExpression, startIndex)

	if _, err := s.readIdentifier(); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: IdentifierExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readListExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(ListExpression, startIndex)

	if _, err := s.readConstant(token.LeftBrace); err != nil {
		return nil, err
	}
	for s.currentKind() != token.RightBrace {
		if err := s.checkCancellation(); err != nil {
			return nil, err
		}
		if _, err := s.readRangeOrExpression(); err != nil {
			return nil, err
		}
		if err := s.requireCsvContinuationOrClose(token.RightBrace); err != nil {
			return nil, err
		}
	}
	if _, err := s.readConstant(token.RightBrace); err != nil {
		open := s.mustTokenAt(startIndex)
		return nil, perrors.NewUnterminatedBracketError(open, s.localize(localization.UnterminatedBracket, open))
	}

	ast := &AstNode{Id: ctx.Id, Kind: ListExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

// readRangeOrExpression supports M's "1..5" range items inside list
// literals: expr, optionally followed by ".." and another expr.
func (s *ParserState) readRangeOrExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(RangeExpression, startIndex)

	left, err := s.parser.ReadExpression(s)
	if err != nil {
		s.rollbackIfEmpty(ctx)
		return nil, err
	}

	if s.currentKind() != token.Ellipsis {
		s.rollback(ctx)
		return left, nil
	}
	if _, err := s.readConstant(token.Ellipsis); err != nil {
		return nil, err
	}

	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: RangeExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readRecordExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(RecordExpression, startIndex)

	if _, err := s.readConstant(token.LeftBracket); err != nil {
		return nil, err
	}
	for s.currentKind() != token.RightBracket {
		if err := s.checkCancellation(); err != nil {
			return nil, err
		}
		if _, err := s.parser.ReadGeneralizedIdentifierPairedExpression(s); err != nil {
			return nil, err
		}
		if err := s.requireCsvContinuationOrClose(token.RightBracket); err != nil {
			return nil, err
		}
	}
	if _, err := s.readConstant(token.RightBracket); err != nil {
		open := s.mustTokenAt(startIndex)
		return nil, perrors.NewUnterminatedBracketError(open, s.localize(localization.UnterminatedBracket, open))
	}

	ast := &AstNode{Id: ctx.Id, Kind: RecordExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readGeneralizedIdentifierPairedExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(GeneralizedIdentifierPairedExpression, startIndex)

	if _, err := s.readGeneralizedIdentifier(); err != nil {
		return nil, err
	}
	if _, err := s.readConstant(token.Equal); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: GeneralizedIdentifierPairedExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

// readParenthesizedOrFunctionExpression resolves the "(x) => ..." vs "(x) +
// 1" ambiguity: speculatively try the function literal, and roll back to a
// parenthesized expression if that fails.
//
// The rollback only happens when the document is not actually a function
// literal: if a "=>" (or return-type "as") follows the matching ")", the
// failed attempt IS the real parse of a malformed function, so its partial
// state -- an open ParameterList or Parameter context right at the caret --
// is exactly what a caret inspection needs, and falling back to a
// parenthesized expression would destroy it for a worse second failure.
func (s *ParserState) readParenthesizedOrFunctionExpression() (*AstNode, error) {
	backup := s.fastStateBackup()

	fn, err := s.parser.ReadFunctionExpression(s)
	if err == nil {
		return fn, nil
	}
	if s.peekIsFunctionExpressionFrom(backup.TokenIndex) {
		return nil, err
	}
	s.checkBacktrackBudget()
	s.applyFastStateBackup(backup)

	return s.parser.ReadParenthesizedExpression(s)
}

// peekIsFunctionExpressionFrom scans from the "(" at startIndex to its
// matching ")" and reports whether a "=>" or a return-type "as" follows --
// the token shapes only a function literal can continue with.
func (s *ParserState) peekIsFunctionExpressionFrom(startIndex int) bool {
	depth := 0
	for i := startIndex; ; i++ {
		tok, ok := s.Snapshot.At(i)
		if !ok || tok.Kind == token.EOF {
			return false
		}
		switch tok.Kind {
		case token.LeftParenthesis:
			depth++
		case token.RightParenthesis:
			depth--
			if depth == 0 {
				next, ok := s.Snapshot.At(i + 1)
				return ok && (next.Kind == token.FatArrow || next.Kind == token.KeywordAs)
			}
		}
	}
}

func (s *ParserState) readParenthesizedExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(ParenthesizedExpression, startIndex)

	if _, err := s.readConstant(token.LeftParenthesis); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}
	if _, err := s.readConstant(token.RightParenthesis); err != nil {
		open := s.mustTokenAt(startIndex)
		return nil, perrors.NewUnterminatedParenthesesError(open, s.localize(localization.UnterminatedParentheses, open))
	}

	ast := &AstNode{Id: ctx.Id, Kind: ParenthesizedExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readFunctionExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(FunctionExpression, startIndex)

	if _, err := s.parser.ReadParameterList(s); err != nil {
		return nil, err
	}
	if s.currentKind() == token.KeywordAs {
		if _, err := s.readConstant(token.KeywordAs); err != nil {
			return nil, err
		}
		if _, err := s.parser.ReadNullablePrimitiveType(s); err != nil {
			return nil, err
		}
	}
	if _, err := s.readConstant(token.FatArrow); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: FunctionExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readParameterList() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(ParameterList, startIndex)

	if _, err := s.readConstant(token.LeftParenthesis); err != nil {
		return nil, err
	}

	sawOptional := false
	for s.currentKind() != token.RightParenthesis {
		if err := s.checkCancellation(); err != nil {
			return nil, err
		}
		param, err := s.parser.ReadParameter(s)
		if err != nil {
			return nil, err
		}
		if param.IsOptional {
			sawOptional = true
		} else if sawOptional {
			return nil, perrors.NewRequiredParameterAfterOptionalParameterError(s.mustToken(),
				s.localize(localization.RequiredParamAfterOptional))
		}
		if err := s.requireCsvContinuationOrClose(token.RightParenthesis); err != nil {
			return nil, err
		}
	}
	if _, err := s.readConstant(token.RightParenthesis); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: ParameterList, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

// peekIsOptionalKeyword reports whether the current position starts an
// "optional" parameter marker: the contextual identifier "optional"
// immediately followed by the parameter's own identifier. "optional" is not
// a reserved word in M, so this needs a two-token lookahead rather than a
// dedicated token.Kind.
func (s *ParserState) peekIsOptionalKeyword() bool {
	tok, ok := s.currentToken()
	if !ok || tok.Kind != token.Identifier || tok.Data != "optional" {
		return false
	}
	next, ok := s.Snapshot.At(s.TokenIndex + 1)
	return ok && next.Kind == token.Identifier
}

func (s *ParserState) readParameter() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(Parameter, startIndex)

	isOptional := s.peekIsOptionalKeyword()
	if isOptional {
		// "optional" is a contextual identifier, not a reserved word, so it
		// arrives as an Identifier token but is recorded as a Constant leaf.
		if _, err := s.readConstant(token.Identifier); err != nil {
			return nil, err
		}
	}

	if _, err := s.readIdentifier(); err != nil {
		return nil, err
	}

	isNullableAnnotated := false
	if s.currentKind() == token.KeywordAs {
		if _, err := s.readConstant(token.KeywordAs); err != nil {
			return nil, err
		}
		if s.currentKind() == token.KeywordNullable {
			isNullableAnnotated = true
		}
		if _, err := s.parser.ReadNullablePrimitiveType(s); err != nil {
			return nil, err
		}
	}

	ast := &AstNode{
		Id:         ctx.Id,
		Kind:       Parameter,
		TokenRange: s.tokenRangeFrom(startIndex),
		IsOptional: isOptional,
		IsNullable: isNullableAnnotated,
	}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readNullablePrimitiveType() (*AstNode, error) {
	startIndex := s.TokenIndex
	if s.currentKind() != token.KeywordNullable {
		return s.parser.ReadPrimitiveType(s)
	}

	ctx := s.ContextState.StartContext(NullablePrimitiveType, startIndex)
	if _, err := s.readConstant(token.KeywordNullable); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadPrimitiveType(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: NullablePrimitiveType, TokenRange: s.tokenRangeFrom(startIndex), IsNullable: true}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readPrimitiveType() (*AstNode, error) {
	startIndex := s.TokenIndex
	tok, ok := s.currentToken()
	if !ok {
		return nil, perrors.NewExpectedTokenKindError(token.Identifier, tok,
			s.localize(localization.ExpectedTokenKind, token.Identifier, tok.Kind))
	}
	kind, recognized := LookupPrimitiveTypeName(tok.Data)
	if (tok.Kind != token.Identifier && !isPrimitiveTypeKeyword(tok.Kind)) || !recognized {
		return nil, perrors.NewInvalidPrimitiveTypeError(tok,
			s.localize(localization.InvalidPrimitiveType, tok.Data))
	}

	ctx := s.ContextState.StartContext(PrimitiveType, startIndex)
	s.advance()
	ast := &AstNode{
		Id:                ctx.Id,
		Kind:              PrimitiveType,
		TokenRange:        s.tokenRangeFrom(startIndex),
		Token:             &tok,
		PrimitiveTypeKind: kind,
	}
	return s.ContextState.EndContext(ast), nil
}

func isPrimitiveTypeKeyword(k token.Kind) bool {
	switch k {
	case token.KeywordAny, token.KeywordAnyNonNull, token.KeywordBinary, token.KeywordDate,
		token.KeywordDateTime, token.KeywordDateTimeZone, token.KeywordDuration, token.KeywordFunction,
		token.KeywordList, token.KeywordLogical, token.KeywordNone, token.KeywordNumber,
		token.KeywordRecord, token.KeywordTable, token.KeywordText, token.KeywordTime:
		return true
	}
	return false
}

func (s *ParserState) readTypePrimaryType() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(TypePrimaryType, startIndex)

	if _, err := s.readConstant(token.KeywordType); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadNullablePrimitiveType(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: TypePrimaryType, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readLetExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(LetExpression, startIndex)

	if _, err := s.readConstant(token.KeywordLet); err != nil {
		return nil, err
	}

	for {
		if _, err := s.parser.ReadIdentifierPairedExpression(s); err != nil {
			return nil, err
		}
		if s.currentKind() != token.Comma {
			break
		}
		if s.peekAfterCommaIsKeyword(token.KeywordIn) {
			comma := s.mustToken()
			return nil, perrors.NewExpectedCsvContinuationError(comma, s.localize(localization.ExpectedCsvContinuation, comma))
		}
		if _, err := s.readConstant(token.Comma); err != nil {
			return nil, err
		}
	}

	if _, err := s.readConstant(token.KeywordIn); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: LetExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) peekAfterCommaIsKeyword(kind token.Kind) bool {
	next, ok := s.Snapshot.At(s.TokenIndex + 1)
	return ok && next.Kind == kind
}

func (s *ParserState) readIfExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(IfExpression, startIndex)

	if _, err := s.readConstant(token.KeywordIf); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}
	if _, err := s.readConstant(token.KeywordThen); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}
	if _, err := s.readConstant(token.KeywordElse); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: IfExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readEachExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(EachExpression, startIndex)

	if _, err := s.readConstant(token.KeywordEach); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: EachExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readErrorRaisingExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(ErrorRaisingExpression, startIndex)

	if _, err := s.readConstant(token.KeywordError); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: ErrorRaisingExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readErrorHandlingExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(ErrorHandlingExpression, startIndex)

	if _, err := s.readConstant(token.KeywordTry); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}
	if s.currentKind() == token.KeywordOtherwise {
		if _, err := s.readOtherwiseExpression(); err != nil {
			return nil, err
		}
	}

	ast := &AstNode{Id: ctx.Id, Kind: ErrorHandlingExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}

func (s *ParserState) readOtherwiseExpression() (*AstNode, error) {
	startIndex := s.TokenIndex
	ctx := s.ContextState.StartContext(OtherwiseExpression, startIndex)

	if _, err := s.readConstant(token.KeywordOtherwise); err != nil {
		return nil, err
	}
	if _, err := s.parser.ReadExpression(s); err != nil {
		return nil, err
	}

	ast := &AstNode{Id: ctx.Id, Kind: OtherwiseExpression, TokenRange: s.tokenRangeFrom(startIndex)}
	return s.ContextState.EndContext(ast), nil
}
