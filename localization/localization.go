/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Package localization supplies the error-message template dictionary. A
 * small English default set is provided so Settings values are
 * constructible without a caller supplying their own templates.
 */
package localization

// TemplateID identifies a localizable error message template. The parser
// looks templates up by TemplateID when it formats an error message; the string
// value is only ever used for formatting, never switched on.
type TemplateID string

const (
	ExpectedTokenKind          TemplateID = "ExpectedTokenKind"
	ExpectedAnyTokenKind       TemplateID = "ExpectedAnyTokenKind"
	ExpectedCsvContinuation    TemplateID = "ExpectedCsvContinuation"
	UnusedTokensRemain         TemplateID = "UnusedTokensRemain"
	UnterminatedParentheses    TemplateID = "UnterminatedParentheses"
	UnterminatedBracket        TemplateID = "UnterminatedBracket"
	InvalidPrimitiveType       TemplateID = "InvalidPrimitiveType"
	RequiredParamAfterOptional TemplateID = "RequiredParamAfterOptional"
)

// Templates maps a TemplateID to a human-readable message format.
type Templates map[TemplateID]string

// Default is the English template set.
var Default = Templates{
	ExpectedTokenKind:          "expected token of kind %s but found %s",
	ExpectedAnyTokenKind:       "expected one of %v but found %s",
	ExpectedCsvContinuation:    "unexpected comma-separated-value continuation near %s",
	UnusedTokensRemain:         "unused tokens remain after the document was parsed, starting at %s",
	UnterminatedParentheses:    "unterminated parentheses starting at %s",
	UnterminatedBracket:        "unterminated bracket starting at %s",
	InvalidPrimitiveType:       "%q is not a valid primitive type name",
	RequiredParamAfterOptional: "a required parameter cannot follow an optional parameter",
}

// Lookup returns the template for id, falling back to id's own string value
// if the caller's Templates set does not define it -- inspection code must
// never fail just because localization content is missing.
func (t Templates) Lookup(id TemplateID) string {
	if t == nil {
		return string(id)
	}
	if s, ok := t[id]; ok {
		return s
	}
	return string(id)
}
