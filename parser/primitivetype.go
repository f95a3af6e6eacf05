/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * PrimitiveTypeKind is the closed set of primitive type names that both the
 * primitive-type autocomplete and the binary-operator type inference
 * operate over.
 */
package parser

import "fmt"

type PrimitiveTypeKind int

const (
	PrimitiveTypeAny PrimitiveTypeKind = iota
	PrimitiveTypeAnyNonNull
	PrimitiveTypeBinary
	PrimitiveTypeDate
	PrimitiveTypeDateTime
	PrimitiveTypeDateTimeZone
	PrimitiveTypeDuration
	PrimitiveTypeFunction
	PrimitiveTypeList
	PrimitiveTypeLogical
	PrimitiveTypeNone
	PrimitiveTypeNull
	PrimitiveTypeNumber
	PrimitiveTypeRecord
	PrimitiveTypeTable
	PrimitiveTypeText
	PrimitiveTypeTime
	PrimitiveTypeType
)

var primitiveTypeNames = map[PrimitiveTypeKind]string{
	PrimitiveTypeAny:          "any",
	PrimitiveTypeAnyNonNull:   "anynonnull",
	PrimitiveTypeBinary:       "binary",
	PrimitiveTypeDate:         "date",
	PrimitiveTypeDateTime:     "datetime",
	PrimitiveTypeDateTimeZone: "datetimezone",
	PrimitiveTypeDuration:     "duration",
	PrimitiveTypeFunction:     "function",
	PrimitiveTypeList:         "list",
	PrimitiveTypeLogical:      "logical",
	PrimitiveTypeNone:         "none",
	PrimitiveTypeNull:         "null",
	PrimitiveTypeNumber:       "number",
	PrimitiveTypeRecord:       "record",
	PrimitiveTypeTable:        "table",
	PrimitiveTypeText:         "text",
	PrimitiveTypeTime:         "time",
	PrimitiveTypeType:         "type",
}

func (k PrimitiveTypeKind) String() string {
	if s, ok := primitiveTypeNames[k]; ok {
		return s
	}
	return fmt.Sprintf("PrimitiveTypeKind(%d)", int(k))
}

// PrimitiveTypeNames is the full ordered primitive-type-name list, suggested
// verbatim when the caret sits in an empty type slot.
var PrimitiveTypeNames = []PrimitiveTypeKind{
	PrimitiveTypeAny, PrimitiveTypeAnyNonNull, PrimitiveTypeBinary, PrimitiveTypeDate,
	PrimitiveTypeDateTime, PrimitiveTypeDateTimeZone, PrimitiveTypeDuration,
	PrimitiveTypeFunction, PrimitiveTypeList, PrimitiveTypeLogical, PrimitiveTypeNone,
	PrimitiveTypeNull, PrimitiveTypeNumber, PrimitiveTypeRecord, PrimitiveTypeTable,
	PrimitiveTypeText, PrimitiveTypeTime, PrimitiveTypeType,
}

// LookupPrimitiveTypeName returns the PrimitiveTypeKind for a type-keyword
// spelling, used when parsing "type <name>" / "nullable <name>".
func LookupPrimitiveTypeName(name string) (PrimitiveTypeKind, bool) {
	for k, v := range primitiveTypeNames {
		if v == name {
			return k, true
		}
	}
	return 0, false
}
