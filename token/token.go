/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Token kinds and the Token value produced by package lexer.
 */
package token

import "fmt"

// Kind is a closed enumeration of lexical token kinds.
type Kind int

const (
	EOF Kind = iota
	Error

	Identifier
	NumberLiteral
	TextLiteral

	// Keyword-like literals: spellings that read like keywords but
	// produce literal values.
	NullLiteral
	TrueLiteral
	FalseLiteral

	// Keywords
	KeywordLet
	KeywordIn
	KeywordIf
	KeywordThen
	KeywordElse
	KeywordType
	KeywordAs
	KeywordIs
	KeywordMeta
	KeywordAnd
	KeywordOr
	KeywordNot
	KeywordEach
	KeywordTry
	KeywordOtherwise
	KeywordError
	KeywordSection
	KeywordShared
	KeywordNullable

	// Primitive type names (see parser.PrimitiveTypeNames)
	KeywordAny
	KeywordAnyNonNull
	KeywordBinary
	KeywordDate
	KeywordDateTime
	KeywordDateTimeZone
	KeywordDuration
	KeywordFunction
	KeywordList
	KeywordLogical
	KeywordNone
	KeywordNumber
	KeywordRecord
	KeywordTable
	KeywordText
	KeywordTime

	// Punctuation
	LeftParenthesis
	RightParenthesis
	LeftBracket
	RightBracket
	LeftBrace
	RightBrace
	Comma
	Equal
	NotEqual
	LessThan
	LessThanEqualTo
	GreaterThan
	GreaterThanEqualTo
	FatArrow
	Plus
	Minus
	Asterisk
	Division
	Ampersand
	Semicolon
	AtSign
	QuestionMark
	Ellipsis
	Comment
)

var kindNames = map[Kind]string{
	EOF:                 "EOF",
	Error:               "Error",
	Identifier:          "Identifier",
	NumberLiteral:       "NumberLiteral",
	TextLiteral:         "TextLiteral",
	NullLiteral:         "NullLiteral",
	TrueLiteral:         "TrueLiteral",
	FalseLiteral:        "FalseLiteral",
	KeywordLet:          "let",
	KeywordIn:           "in",
	KeywordIf:           "if",
	KeywordThen:         "then",
	KeywordElse:         "else",
	KeywordType:         "type",
	KeywordAs:           "as",
	KeywordIs:           "is",
	KeywordMeta:         "meta",
	KeywordAnd:          "and",
	KeywordOr:           "or",
	KeywordNot:          "not",
	KeywordEach:         "each",
	KeywordTry:          "try",
	KeywordOtherwise:    "otherwise",
	KeywordError:        "error",
	KeywordSection:      "section",
	KeywordShared:       "shared",
	KeywordNullable:     "nullable",
	KeywordAny:          "any",
	KeywordAnyNonNull:   "anynonnull",
	KeywordBinary:       "binary",
	KeywordDate:         "date",
	KeywordDateTime:     "datetime",
	KeywordDateTimeZone: "datetimezone",
	KeywordDuration:     "duration",
	KeywordFunction:     "function",
	KeywordList:         "list",
	KeywordLogical:      "logical",
	KeywordNone:         "none",
	KeywordNumber:       "number",
	KeywordRecord:       "record",
	KeywordTable:        "table",
	KeywordText:         "text",
	KeywordTime:         "time",
	LeftParenthesis:     "(",
	RightParenthesis:    ")",
	LeftBracket:         "[",
	RightBracket:        "]",
	LeftBrace:           "{",
	RightBrace:          "}",
	Comma:               ",",
	Equal:               "=",
	NotEqual:            "<>",
	LessThan:            "<",
	LessThanEqualTo:     "<=",
	GreaterThan:         ">",
	GreaterThanEqualTo:  ">=",
	FatArrow:            "=>",
	Plus:                "+",
	Minus:               "-",
	Asterisk:            "*",
	Division:            "/",
	Ampersand:           "&",
	Semicolon:           ";",
	AtSign:              "@",
	QuestionMark:        "?",
	Ellipsis:            "...",
	Comment:             "Comment",
}

// String implements fmt.Stringer. Keyword and symbol kinds render as their
// source spelling so error messages and autocomplete can name them directly.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KeywordMap maps keyword spellings to their token kinds. The autocomplete
// keyword universe is drawn from these kinds.
var KeywordMap = map[string]Kind{
	"let":          KeywordLet,
	"in":           KeywordIn,
	"if":           KeywordIf,
	"then":         KeywordThen,
	"else":         KeywordElse,
	"type":         KeywordType,
	"as":           KeywordAs,
	"is":           KeywordIs,
	"meta":         KeywordMeta,
	"and":          KeywordAnd,
	"or":           KeywordOr,
	"not":          KeywordNot,
	"each":         KeywordEach,
	"try":          KeywordTry,
	"otherwise":    KeywordOtherwise,
	"error":        KeywordError,
	"section":      KeywordSection,
	"shared":       KeywordShared,
	"nullable":     KeywordNullable,
	"null":         NullLiteral,
	"true":         TrueLiteral,
	"false":        FalseLiteral,
	"any":          KeywordAny,
	"anynonnull":   KeywordAnyNonNull,
	"binary":       KeywordBinary,
	"date":         KeywordDate,
	"datetime":     KeywordDateTime,
	"datetimezone": KeywordDateTimeZone,
	"duration":     KeywordDuration,
	"function":     KeywordFunction,
	"list":         KeywordList,
	"logical":      KeywordLogical,
	"none":         KeywordNone,
	"number":       KeywordNumber,
	"record":       KeywordRecord,
	"table":        KeywordTable,
	"text":         KeywordText,
	"time":         KeywordTime,
}

// SymbolMap maps symbol spellings (longest first where ambiguous, handled by
// the lexer) to their Kind.
var SymbolMap = map[string]Kind{
	"(":   LeftParenthesis,
	")":   RightParenthesis,
	"[":   LeftBracket,
	"]":   RightBracket,
	"{":   LeftBrace,
	"}":   RightBrace,
	",":   Comma,
	"=":   Equal,
	"<>":  NotEqual,
	"<":   LessThan,
	"<=":  LessThanEqualTo,
	">":   GreaterThan,
	">=":  GreaterThanEqualTo,
	"=>":  FatArrow,
	"+":   Plus,
	"-":   Minus,
	"*":   Asterisk,
	"/":   Division,
	"&":   Ampersand,
	";":   Semicolon,
	"@":   AtSign,
	"?":   QuestionMark,
	"...": Ellipsis,
}

// Position is a rune-indexed source position.
type Position struct {
	CodeUnit     int // rune offset from the start of the document
	LineNumber   int // zero-based line number
	LineCodeUnit int // rune offset from the start of the line
}

// Token is the immutable value produced by the lexer.
type Token struct {
	Kind          Kind
	Data          string
	PositionStart Position
	PositionEnd   Position
}

func (t Token) String() string {
	switch t.Kind {
	case TextLiteral:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Data)
	case Identifier, NumberLiteral:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Data)
	}
	return t.Kind.String()
}
