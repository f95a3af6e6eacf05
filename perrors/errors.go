/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Package perrors implements the error taxonomy:
 *
 *   CommonError  { CancellationError, InvariantError, UnknownError }
 *   ParseError   { ExpectedTokenKindError, ExpectedAnyTokenKindError,
 *                  ExpectedCsvContinuationError, UnusedTokensRemainError,
 *                  UnterminatedParenthesesError, UnterminatedBracketError,
 *                  InvalidPrimitiveTypeError,
 *                  RequiredParameterAfterOptionalParameterError }
 *
 * A closed set of concrete types rather than error-equals-to sentinels,
 * since consumers switch on the error shape, not just compare it.
 */
package perrors

import (
	"fmt"

	"github.com/kgliang/powerquery-parser/token"
)

// CommonError is the parent type of cancellation/invariant/unknown faults:
// everything that is not a diagnosis of the user's input.
type CommonError struct {
	Kind CommonErrorKind
	Err  error
}

type CommonErrorKind int

const (
	CancellationErrorKind CommonErrorKind = iota
	InvariantErrorKind
	UnknownErrorKind
)

func (e *CommonError) Error() string {
	return fmt.Sprintf("common error (%v): %v", e.kindString(), e.Err)
}

func (e *CommonError) Unwrap() error { return e.Err }

func (e *CommonError) kindString() string {
	switch e.Kind {
	case CancellationErrorKind:
		return "cancellation"
	case InvariantErrorKind:
		return "invariant"
	default:
		return "unknown"
	}
}

// NewCancellationError wraps err (typically cancel.ErrCancelled) as a
// CommonError of kind CancellationErrorKind.
func NewCancellationError(err error) *CommonError {
	return &CommonError{Kind: CancellationErrorKind, Err: err}
}

// NewInvariantError reports a violated structural assumption -- a bug, not a
// malformed-input condition. Production code raises these via panic; see
// parser.TryRead for the recovery boundary.
func NewInvariantError(reason string) *CommonError {
	return &CommonError{Kind: InvariantErrorKind, Err: fmt.Errorf("%s", reason)}
}

// NewUnknownError wraps any non-recognized fault for uniformity.
func NewUnknownError(err error) *CommonError {
	return &CommonError{Kind: UnknownErrorKind, Err: err}
}

// ParseErrorKind enumerates the closed set of diagnostic parse errors.
type ParseErrorKind int

const (
	ExpectedTokenKindErrorKind ParseErrorKind = iota
	ExpectedAnyTokenKindErrorKind
	ExpectedCsvContinuationErrorKind
	UnusedTokensRemainErrorKind
	UnterminatedParenthesesErrorKind
	UnterminatedBracketErrorKind
	InvalidPrimitiveTypeErrorKind
	RequiredParameterAfterOptionalParameterErrorKind
)

// ParseError carries the offending token and an accurate line/column
// position for diagnostics.
type ParseError struct {
	Kind           ParseErrorKind
	Message        string
	OffendingToken *token.Token
	Expected       []token.Kind
}

func (e *ParseError) Error() string {
	if e.OffendingToken != nil {
		return fmt.Sprintf("parse error at line %d, pos %d: %s",
			e.OffendingToken.PositionStart.LineNumber+1,
			e.OffendingToken.PositionStart.LineCodeUnit, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func newParseError(kind ParseErrorKind, message string, offending *token.Token) *ParseError {
	return &ParseError{Kind: kind, Message: message, OffendingToken: offending}
}

// NewExpectedTokenKindError reports that the parser required `expected` but
// the lexer produced `got`.
func NewExpectedTokenKindError(expected token.Kind, got token.Token, message string) *ParseError {
	e := newParseError(ExpectedTokenKindErrorKind, message, &got)
	e.Expected = []token.Kind{expected}
	return e
}

// NewExpectedAnyTokenKindError reports that none of `expected` matched `got`.
func NewExpectedAnyTokenKindError(expected []token.Kind, got token.Token, message string) *ParseError {
	e := newParseError(ExpectedAnyTokenKindErrorKind, message, &got)
	e.Expected = expected
	return e
}

// NewExpectedCsvContinuationError reports illegal comma placement (a
// dangling trailing comma, or a comma immediately before a closing
// delimiter / "in").
func NewExpectedCsvContinuationError(got token.Token, message string) *ParseError {
	return newParseError(ExpectedCsvContinuationErrorKind, message, &got)
}

// NewUnusedTokensRemainError reports that the document still had tokens
// after the root production completed.
func NewUnusedTokensRemainError(got token.Token, message string) *ParseError {
	return newParseError(UnusedTokensRemainErrorKind, message, &got)
}

// NewUnterminatedParenthesesError reports a `(` with no matching `)`.
func NewUnterminatedParenthesesError(opening token.Token, message string) *ParseError {
	return newParseError(UnterminatedParenthesesErrorKind, message, &opening)
}

// NewUnterminatedBracketError reports a `[`/`{` with no matching close.
func NewUnterminatedBracketError(opening token.Token, message string) *ParseError {
	return newParseError(UnterminatedBracketErrorKind, message, &opening)
}

// NewInvalidPrimitiveTypeError reports an identifier in type position that
// is not one of the primitive type names.
func NewInvalidPrimitiveTypeError(got token.Token, message string) *ParseError {
	return newParseError(InvalidPrimitiveTypeErrorKind, message, &got)
}

// NewRequiredParameterAfterOptionalParameterError reports a required
// parameter declared after an optional ("optional x") one in a parameter
// list.
func NewRequiredParameterAfterOptionalParameterError(got token.Token, message string) *ParseError {
	return newParseError(RequiredParameterAfterOptionalParameterErrorKind, message, &got)
}
