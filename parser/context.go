/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * ContextNode and ParseContextState: the lifecycle of open parse contexts --
 * start, end (promote to AST), delete (rollback).
 */
package parser

import (
	"fmt"

	"github.com/krotik/common/errorutil"

	"github.com/kgliang/powerquery-parser/util"
)

// ContextNode represents an in-progress production: identity and slot
// bookkeeping exist, the payload does not yet.
type ContextNode struct {
	Id               int
	Kind             AstNodeKind
	TokenIndexStart  int
	AttributeCounter int
	ParentId         *int // nil at the document root

	// attributeIndex is this node's own position among its parent's
	// children, copied onto the promoted AstNode at EndContext; nil for the
	// root.
	attributeIndex *int
}

// ParseContextState holds the open-context lifecycle plus the shared
// NodeIdMapCollection that both AST and context nodes live in. Logger is
// optional debug tracing of start/end/delete events (nil is silently
// treated as no tracing); callers typically get one via Settings.Logger.
//
// RootId tracks the outermost node: the context most recently started while
// no other context was open. When that context is later rolled back onto a
// sole surviving child (the common shape for a document whose outermost
// binary-operator wrapper never saw an operator), RootId follows the child.
type ParseContextState struct {
	RootId               int
	idCounter            int
	Collection           *NodeIdMapCollection
	CurrentContextNodeId *int
	Logger               util.Logger
}

// NewParseContextState allocates a fresh, empty state. No context is open
// yet; the first StartContext call becomes the root.
func NewParseContextState() *ParseContextState {
	return &ParseContextState{
		Collection: newNodeIdMapCollection(),
	}
}

// trace reports a context-lifecycle event at debug level. A nil Logger (the
// zero value, before Settings.Logger is threaded in by newParserState) is a
// silent no-op.
func (s *ParseContextState) trace(event string, id int, kind AstNodeKind) {
	if s.Logger == nil {
		return
	}
	s.Logger.LogDebug(fmt.Sprintf("%s id=%d kind=%v", event, id, kind))
}

// NextId returns the id the next StartContext call will allocate, without
// allocating it. Used by fastStateBackup as its rollback watermark.
func (s *ParseContextState) NextId() int { return s.idCounter }

func (s *ParseContextState) allocateId() int {
	id := s.idCounter
	s.idCounter++
	return id
}

// StartContext allocates the next id, attaches it as a child of the current
// context (if any), and makes it the new current context.
func (s *ParseContextState) StartContext(kind AstNodeKind, tokenIndexStart int) *ContextNode {
	id := s.allocateId()

	ctx := &ContextNode{
		Id:              id,
		Kind:            kind,
		TokenIndexStart: tokenIndexStart,
	}

	if s.CurrentContextNodeId != nil {
		parentId := *s.CurrentContextNodeId
		ctx.ParentId = &parentId

		parent, ok := s.Collection.ContextNodeById[parentId]
		errorutil.AssertTrue(ok, "startContext: current context must be open")

		attrIndex := parent.AttributeCounter
		parent.AttributeCounter++
		ctx.attributeIndex = &attrIndex

		s.Collection.attachChild(parentId, id)
	} else {
		s.RootId = id
	}

	s.Collection.ContextNodeById[id] = ctx
	if ctx.ParentId != nil {
		s.Collection.ParentIdById[id] = *ctx.ParentId
	}

	newCurrent := id
	s.CurrentContextNodeId = &newCurrent

	s.trace("startContext", id, kind)
	return ctx
}

// EndContext promotes the current context to the given finished AstNode,
// which must carry the same id and kind. The node keeps its id, parent and
// position among siblings; the parent becomes current again.
func (s *ParseContextState) EndContext(ast *AstNode) *AstNode {
	errorutil.AssertTrue(s.CurrentContextNodeId != nil, "endContext: no open context")
	currentId := *s.CurrentContextNodeId

	ctx, ok := s.Collection.ContextNodeById[currentId]
	errorutil.AssertTrue(ok, "endContext: current context node must exist")
	errorutil.AssertTrue(ctx.Id == ast.Id, "endContext: id mismatch between context and ast payload")
	errorutil.AssertTrue(ctx.Kind == ast.Kind, "endContext: kind mismatch between context and ast payload")

	ast.AttributeIndex = ctx.attributeIndex

	delete(s.Collection.ContextNodeById, currentId)
	s.Collection.AstNodeById[currentId] = ast

	if ast.IsLeaf() {
		s.Collection.addLeaf(ast)
	}

	if ctx.ParentId != nil {
		parentId := *ctx.ParentId
		s.CurrentContextNodeId = &parentId
	} else {
		s.CurrentContextNodeId = nil
	}

	s.trace("endContext", currentId, ast.Kind)
	return ast
}

// DeleteContext rolls back the context with the given id, reparenting its
// children to its own parent in order. If id is the current context, the
// new current becomes its parent.
func (s *ParseContextState) DeleteContext(id int, parentWillAlsoBeDeleted bool) {
	ctx, ok := s.Collection.ContextNodeById[id]
	if !ok {
		// It may already have been promoted to an AST node (deleteAst path);
		// callers route that case through deleteAst instead.
		_, isAst := s.Collection.AstNodeById[id]
		errorutil.AssertTrue(isAst, "deleteContext: id must be open context or ast node")
		s.deleteAst(id, parentWillAlsoBeDeleted)
		return
	}

	wasCurrent := s.CurrentContextNodeId != nil && *s.CurrentContextNodeId == id

	children := s.Collection.ChildIdsById[id]

	if parentWillAlsoBeDeleted {
		// The parent is being torn down too; children are dropped silently
		// rather than reparented onto a node that is about to go away.
		for _, c := range children {
			s.detachOnly(c)
		}
	} else if ctx.ParentId != nil {
		s.Collection.spliceChildReference(*ctx.ParentId, id, children...)
		for _, c := range children {
			s.Collection.ParentIdById[c] = *ctx.ParentId
		}
		// A deleted context that held exactly one child is the common case
		// (readBinOp's speculative wrapper rolling back onto its sole
		// operand): that child now occupies the deleted context's former
		// slot in the parent, so it inherits the deleted context's own
		// attributeIndex rather than keeping the index it held as the
		// deleted context's child (almost always 0, which would otherwise
		// silently corrupt ancestry-pairwise dispatch in inspection's
		// autocomplete).
		if len(children) == 1 {
			s.Collection.setAttributeIndex(children[0], ctx.attributeIndex)
		}
	} else {
		// Root context deleted with no parent: children become orphans with
		// no parent entry, matching the "root" convention (ParentIdById has
		// no entry for the root, and the root's attributeIndex is absent).
		delete(s.Collection.ParentIdById, id)
		for _, c := range children {
			delete(s.Collection.ParentIdById, c)
			s.Collection.setAttributeIndex(c, nil)
		}
		if len(children) == 1 && s.RootId == id {
			s.RootId = children[0]
		}
	}

	delete(s.Collection.ContextNodeById, id)
	delete(s.Collection.ChildIdsById, id)
	delete(s.Collection.ParentIdById, id)

	if wasCurrent {
		s.CurrentContextNodeId = ctx.ParentId
	}

	s.trace("deleteContext", id, ctx.Kind)
}

// WrapExistingChild opens a new context of the given kind in childId's
// current slot, reparenting childId underneath it as the new context's sole
// (and so far only) child, then makes the new context current. Unlike
// StartContext, the new context does not take the next free slot in
// whatever is presently current -- it takes over childId's existing slot in
// childId's existing parent, so a chain of postfix operators (invocation,
// item access, field access) can wrap an already-promoted result without
// re-parsing it or disturbing that parent's AttributeCounter.
func (s *ParseContextState) WrapExistingChild(kind AstNodeKind, tokenIndexStart int, childId int) *ContextNode {
	parentId, hasParent := s.Collection.ParentIdById[childId]
	errorutil.AssertTrue(hasParent, "wrapExistingChild: child must have a parent")

	childXor, ok := s.Collection.GetXor(childId)
	errorutil.AssertTrue(ok, "wrapExistingChild: child must resolve to a node")
	oldAttrIndex := childXor.AttributeIndex()

	id := s.allocateId()
	ctx := &ContextNode{
		Id:               id,
		Kind:             kind,
		TokenIndexStart:  tokenIndexStart,
		ParentId:         &parentId,
		attributeIndex:   oldAttrIndex,
		AttributeCounter: 1,
	}

	s.Collection.spliceChildReference(parentId, childId, id)
	s.Collection.ParentIdById[id] = parentId
	s.Collection.ContextNodeById[id] = ctx

	s.Collection.attachChild(id, childId)
	s.Collection.ParentIdById[childId] = id
	zero := 0
	s.Collection.setAttributeIndex(childId, &zero)

	newCurrent := id
	s.CurrentContextNodeId = &newCurrent

	s.trace("startContext", id, kind)
	return ctx
}

// detachOnly removes id and its subtree bookkeeping without reparenting,
// used when a whole speculative subtree is discarded together.
func (s *ParseContextState) detachOnly(id int) {
	for _, c := range s.Collection.ChildIdsById[id] {
		s.detachOnly(c)
	}
	delete(s.Collection.ContextNodeById, id)
	delete(s.Collection.AstNodeById, id)
	delete(s.Collection.ChildIdsById, id)
	delete(s.Collection.ParentIdById, id)
	s.Collection.dropLeaf(id)
}

// deleteAst mirrors DeleteContext but for an already-promoted AST node; used
// by applyFastStateBackup, which must roll back both kinds of node above the
// backup watermark.
func (s *ParseContextState) deleteAst(id int, parentWillAlsoBeDeleted bool) {
	parentId, hasParent := s.Collection.ParentIdById[id]
	children := s.Collection.ChildIdsById[id]

	if parentWillAlsoBeDeleted {
		for _, c := range children {
			s.detachOnly(c)
		}
	} else if hasParent {
		s.Collection.spliceChildReference(parentId, id, children...)
		for _, c := range children {
			s.Collection.ParentIdById[c] = parentId
		}
		if len(children) == 1 {
			var idx *int
			if x, ok := s.Collection.GetXor(id); ok {
				idx = x.AttributeIndex()
			}
			s.Collection.setAttributeIndex(children[0], idx)
		}
	} else {
		for _, c := range children {
			delete(s.Collection.ParentIdById, c)
			s.Collection.setAttributeIndex(c, nil)
		}
		if len(children) == 1 && s.RootId == id {
			s.RootId = children[0]
		}
	}

	delete(s.Collection.AstNodeById, id)
	delete(s.Collection.ChildIdsById, id)
	delete(s.Collection.ParentIdById, id)
	s.Collection.dropLeaf(id)
}
