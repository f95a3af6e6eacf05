/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * Dump renders a node-id map subtree as an indented tree, for debugging and
 * test failure output. Works over XorNode, so open contexts render alongside
 * finished nodes.
 */
package parser

import (
	"bytes"
	"fmt"

	"github.com/krotik/common/stringutil"
)

// Dump returns a tree representation of the node rootId and everything
// beneath it, one line per node, children indented two spaces further than
// their parent.
func Dump(collection *NodeIdMapCollection, rootId int) string {
	var buf bytes.Buffer
	x, ok := collection.GetXor(rootId)
	if !ok {
		return ""
	}
	levelString(collection, x, 0, &buf)
	return buf.String()
}

func levelString(collection *NodeIdMapCollection, x XorNode, indent int, buf *bytes.Buffer) {
	buf.WriteString(stringutil.GenerateRollingString(" ", indent*2))
	buf.WriteString(describe(x))
	buf.WriteString("\n")

	for _, child := range collection.IterChildrenXor(x.Id()) {
		levelString(collection, child, indent+1, buf)
	}
}

// describe renders a single node's label: its kind, an open-context marker
// if it hasn't finished yet, and whatever payload (token text, literal kind,
// operator) is most useful to see at a glance.
func describe(x XorNode) string {
	if !x.IsAst() {
		return fmt.Sprintf("%v (open)", x.ContextNode.Kind)
	}

	n := x.AstNode
	switch n.Kind {
	case Identifier, GeneralizedIdentifier:
		return fmt.Sprintf("%v: %v", n.Kind, n.IdentifierLiteral)
	case Constant:
		if n.Token != nil {
			return fmt.Sprintf("%v: %v", n.Kind, n.Token.Data)
		}
	case LiteralExpression:
		if n.Token != nil {
			return fmt.Sprintf("%v: %v", n.Kind, n.Token.Data)
		}
	case PrimitiveType:
		return fmt.Sprintf("%v: %v", n.Kind, n.PrimitiveTypeKind)
	default:
		if n.Kind.IsTBinOpExpression() {
			return fmt.Sprintf("%v: %v", n.Kind, n.OperatorKind)
		}
	}
	return n.Kind.String()
}
