/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Package lexer tokenizes M source into an immutable, indexable token
 * stream. Lexing runs to completion eagerly and returns a plain slice
 * rather than streaming, because the parser framework needs arbitrary O(1)
 * rewind to any previously-seen token index during speculative reads.
 *
 * Rune reading is delegated to github.com/ianlewis/runeio rather than
 * hand-rolled byte-offset arithmetic, keeping positions rune-indexed.
 */
package lexer

import (
	"bufio"
	"strings"
	"unicode"

	"github.com/ianlewis/runeio"

	"github.com/kgliang/powerquery-parser/token"
)

// Snapshot is the parser framework's view of the lexed tokens: immutable,
// indexable, with position helpers.
type Snapshot interface {
	Tokens() []token.Token
	At(index int) (token.Token, bool)
	Len() int
	GraphemePositionStartFrom(t token.Token) token.Position
	ColumnNumberStartFrom(t token.Token) int
}

type snapshot struct {
	tokens []token.Token
}

func (s *snapshot) Tokens() []token.Token { return s.tokens }

func (s *snapshot) At(index int) (token.Token, bool) {
	if index < 0 || index >= len(s.tokens) {
		return token.Token{}, false
	}
	return s.tokens[index], true
}

func (s *snapshot) Len() int { return len(s.tokens) }

func (s *snapshot) GraphemePositionStartFrom(t token.Token) token.Position {
	return t.PositionStart
}

func (s *snapshot) ColumnNumberStartFrom(t token.Token) int {
	return t.PositionStart.LineCodeUnit
}

// Lex tokenizes source and returns an immutable Snapshot.
func Lex(source string) (Snapshot, error) {
	l := newLexState(source)
	for {
		done, err := l.step()
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
	}
	l.emitEOF()
	return &snapshot{tokens: l.tokens}, nil
}

type lexState struct {
	source string
	r      *runeio.RuneReader

	// runeOffset/line/lineStart track the position of the rune the reader is
	// about to yield next; cursor* track where the current token began.
	runeOffset int
	line       int
	lineStart  int // rune offset of the first rune of the current line

	cursorOffset    int
	cursorLine      int
	cursorLineStart int

	pending []rune // lookahead queue, front is next to be consumed

	tokens []token.Token
}

func newLexState(source string) *lexState {
	return &lexState{
		source: source,
		r:      runeio.NewReader(bufio.NewReader(strings.NewReader(source))),
	}
}

func (l *lexState) position() token.Position {
	return token.Position{
		CodeUnit:     l.runeOffset,
		LineNumber:   l.line,
		LineCodeUnit: l.runeOffset - l.lineStart,
	}
}

func (l *lexState) markCursor() {
	l.cursorOffset = l.runeOffset
	l.cursorLine = l.line
	l.cursorLineStart = l.lineStart
}

func (l *lexState) cursorPosition() token.Position {
	return token.Position{
		CodeUnit:     l.cursorOffset,
		LineNumber:   l.cursorLine,
		LineCodeUnit: l.cursorOffset - l.cursorLineStart,
	}
}

// next reads the next rune, or returns (0, false) at end of input.
func (l *lexState) next() (rune, bool) {
	if len(l.pending) > 0 {
		r := l.pending[0]
		l.pending = l.pending[1:]
		return l.advanceRune(r)
	}
	r, _, err := l.r.ReadRune()
	if err != nil {
		return 0, false
	}
	return l.advanceRune(r)
}

func (l *lexState) advanceRune(r rune) (rune, bool) {
	l.runeOffset++
	if r == '\n' {
		l.line++
		l.lineStart = l.runeOffset
	}
	return r, true
}

// fill ensures at least n runes are buffered in l.pending (or as many as
// remain before EOF).
func (l *lexState) fill(n int) {
	for len(l.pending) < n {
		r, _, err := l.r.ReadRune()
		if err != nil {
			return
		}
		l.pending = append(l.pending, r)
	}
}

// peek looks at the next rune without consuming it.
func (l *lexState) peek() (rune, bool) {
	l.fill(1)
	if len(l.pending) == 0 {
		return 0, false
	}
	return l.pending[0], true
}

// peekAt looks at the rune n positions ahead (0 == next) without consuming.
func (l *lexState) peekAt(n int) (rune, bool) {
	l.fill(n + 1)
	if len(l.pending) <= n {
		return 0, false
	}
	return l.pending[n], true
}

func (l *lexState) emit(kind token.Kind, data string) {
	l.tokens = append(l.tokens, token.Token{
		Kind:          kind,
		Data:          data,
		PositionStart: l.cursorPosition(),
		PositionEnd:   l.position(),
	})
}

func (l *lexState) emitEOF() {
	l.markCursor()
	l.emit(token.EOF, "")
}

// step consumes whitespace/comments then lexes exactly one token. Returns
// done=true once the input is exhausted.
func (l *lexState) step() (done bool, err error) {
	for {
		r, ok := l.peek()
		if !ok {
			return true, nil
		}
		if unicode.IsSpace(r) {
			l.next()
			continue
		}
		if r == '/' {
			// lookahead for a block comment; otherwise fall through to symbol lexing
			if n, ok := l.peekAt(1); ok && n == '*' {
				l.consumeBlockComment()
				continue
			}
		}
		break
	}

	l.markCursor()
	r, ok := l.peek()
	if !ok {
		return true, nil
	}

	switch {
	case r == '"':
		return false, l.lexTextLiteral()
	case unicode.IsDigit(r):
		l.lexNumber()
		return false, nil
	case isIdentifierStart(r):
		l.lexIdentifierOrKeyword()
		return false, nil
	default:
		return false, l.lexSymbol()
	}
}

func (l *lexState) consumeBlockComment() {
	start := l.cursorPosition()
	l.markCursor()
	l.next() // consume '/'
	l.next() // consume '*'
	for {
		r, ok := l.next()
		if !ok {
			l.tokens = append(l.tokens, token.Token{Kind: token.Error, Data: "unterminated comment", PositionStart: start, PositionEnd: l.position()})
			return
		}
		if r == '*' {
			if n, ok := l.peek(); ok && n == '/' {
				l.next()
				return
			}
		}
	}
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.'
}

func (l *lexState) lexIdentifierOrKeyword() {
	var b strings.Builder
	for {
		r, ok := l.peek()
		if !ok || !isIdentifierPart(r) {
			break
		}
		l.next()
		b.WriteRune(r)
	}
	word := b.String()
	if kind, ok := token.KeywordMap[word]; ok {
		l.emit(kind, word)
		return
	}
	l.emit(token.Identifier, word)
}

func (l *lexState) lexNumber() {
	var b strings.Builder
	sawDot := false
	for {
		r, ok := l.peek()
		if !ok {
			break
		}
		if unicode.IsDigit(r) {
			l.next()
			b.WriteRune(r)
			continue
		}
		if r == '.' && !sawDot {
			sawDot = true
			l.next()
			b.WriteRune(r)
			continue
		}
		break
	}
	l.emit(token.NumberLiteral, b.String())
}

func (l *lexState) lexTextLiteral() error {
	l.next() // opening quote
	var b strings.Builder
	for {
		r, ok := l.next()
		if !ok {
			l.tokens = append(l.tokens, token.Token{
				Kind: token.Error, Data: "unterminated text literal",
				PositionStart: l.cursorPosition(), PositionEnd: l.position(),
			})
			return nil
		}
		if r == '"' {
			// M escapes a literal quote as "" inside a text literal.
			if n, ok := l.peek(); ok && n == '"' {
				l.next()
				b.WriteRune('"')
				continue
			}
			break
		}
		b.WriteRune(r)
	}
	l.emit(token.TextLiteral, b.String())
	return nil
}

// symbolCandidates lists multi-rune symbols, matched longest-first.
var symbolCandidates = []string{"...", "<=", ">=", "<>", "=>"}

func (l *lexState) lexSymbol() error {
	r, _ := l.next()

	// Try to extend into one of the known multi-rune symbols.
	for _, cand := range symbolCandidates {
		runes := []rune(cand)
		if runes[0] != r {
			continue
		}
		if len(runes) == 2 {
			if n, ok := l.peek(); ok && n == runes[1] {
				l.next()
				l.emit(token.SymbolMap[cand], cand)
				return nil
			}
		} else if len(runes) == 3 {
			// "..." : only '.' triggers this branch
			if n1, ok := l.peek(); ok && n1 == '.' {
				l.next()
				if n2, ok := l.peek(); ok && n2 == '.' {
					l.next()
					l.emit(token.SymbolMap[cand], cand)
					return nil
				}
				// only two dots seen: not a valid M token, emit as error
				l.tokens = append(l.tokens, token.Token{Kind: token.Error, Data: "..", PositionStart: l.cursorPosition(), PositionEnd: l.position()})
				return nil
			}
		}
	}

	if kind, ok := token.SymbolMap[string(r)]; ok {
		l.emit(kind, string(r))
		return nil
	}

	l.tokens = append(l.tokens, token.Token{
		Kind: token.Error, Data: string(r),
		PositionStart: l.cursorPosition(), PositionEnd: l.position(),
	})
	return nil
}
