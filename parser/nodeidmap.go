/*
 * powerquery-parser
 *
 * Copyright 2026 Kevin Liang. All rights reserved.
 *
 * This Source Code Form is subject to the terms of the MIT
 * License, If a copy of the MIT License was not distributed with this
 * file, You can obtain one at https://opensource.org/licenses/MIT.
 *
 * NodeIdMapCollection: constant-time lookups over the dual-mode graph plus
 * the traversal and splice primitives the context manager and ancestry
 * utilities build on. A node may still be an open ContextNode when its
 * parent already records it as a child, so finished and in-progress nodes
 * share one id space across parallel maps; child-list insertion order is
 * syntactic order.
 */
package parser

import "github.com/kgliang/powerquery-parser/config"

// NodeIdMapCollection bundles the id-indexed views of a single parse's node
// graph.
type NodeIdMapCollection struct {
	AstNodeById     map[int]*AstNode
	ContextNodeById map[int]*ContextNode
	ParentIdById    map[int]int
	ChildIdsById    map[int][]int
	LeafNodeIds     map[int]bool

	maybeRightMostLeaf *int
}

func newNodeIdMapCollection() *NodeIdMapCollection {
	// Sized off config.MaxLookaheadTokens: a rough estimate of how many
	// nodes a document's first speculative window allocates, so the
	// common case fills these maps without a rehash along the way.
	hint := config.Int(config.MaxLookaheadTokens)
	return &NodeIdMapCollection{
		AstNodeById:     make(map[int]*AstNode, hint),
		ContextNodeById: make(map[int]*ContextNode, hint),
		ParentIdById:    make(map[int]int, hint),
		ChildIdsById:    make(map[int][]int, hint),
		LeafNodeIds:     make(map[int]bool, hint),
	}
}

// GetAst returns the finished AstNode for id, if any.
func (c *NodeIdMapCollection) GetAst(id int) (*AstNode, bool) {
	n, ok := c.AstNodeById[id]
	return n, ok
}

// GetContext returns the open ContextNode for id, if any.
func (c *NodeIdMapCollection) GetContext(id int) (*ContextNode, bool) {
	n, ok := c.ContextNodeById[id]
	return n, ok
}

// GetParent returns id's parent id, if it has one (the root has none).
func (c *NodeIdMapCollection) GetParent(id int) (int, bool) {
	p, ok := c.ParentIdById[id]
	return p, ok
}

// GetChildIds returns id's children in syntactic (insertion) order. The
// returned slice must not be mutated by callers.
func (c *NodeIdMapCollection) GetChildIds(id int) []int {
	return c.ChildIdsById[id]
}

// GetXor looks up id in whichever map currently holds it and returns the
// uniform XorNode view.
func (c *NodeIdMapCollection) GetXor(id int) (XorNode, bool) {
	if n, ok := c.AstNodeById[id]; ok {
		return XorNode{Tag: XorAst, AstNode: n}, true
	}
	if n, ok := c.ContextNodeById[id]; ok {
		return XorNode{Tag: XorContext, ContextNode: n}, true
	}
	return XorNode{}, false
}

// IterChildrenXor returns id's children as XorNodes in syntactic order,
// looking each one up in whichever map currently holds it. Attribute slots
// for which no child was ever appended are simply absent from the returned
// slice; consumers treat absent indices as unparsed.
func (c *NodeIdMapCollection) IterChildrenXor(id int) []XorNode {
	ids := c.ChildIdsById[id]
	if len(ids) == 0 {
		return nil
	}
	out := make([]XorNode, 0, len(ids))
	for _, cid := range ids {
		if x, ok := c.GetXor(cid); ok {
			out = append(out, x)
		}
	}
	return out
}

// attachChild appends childId to parentId's ordered child list. StartContext
// calls this when a new context begins as a child of the current one.
func (c *NodeIdMapCollection) attachChild(parentId, childId int) {
	c.ChildIdsById[parentId] = append(c.ChildIdsById[parentId], childId)
}

// addLeaf records a freshly promoted terminal node and keeps the
// right-most-leaf cache current. Promotion happens left to right, so a new
// leaf at or past the cached end simply takes over.
func (c *NodeIdMapCollection) addLeaf(ast *AstNode) {
	c.LeafNodeIds[ast.Id] = true
	if c.maybeRightMostLeaf == nil {
		c.maybeRightMostLeaf = &ast.Id
		return
	}
	if cached, ok := c.AstNodeById[*c.maybeRightMostLeaf]; !ok ||
		ast.TokenRange.PositionEnd.CodeUnit >= cached.TokenRange.PositionEnd.CodeUnit {
		c.maybeRightMostLeaf = &ast.Id
	}
}

// dropLeaf removes id from the leaf set, invalidating the right-most-leaf
// cache when it pointed there (rollback deletes leaves in descending id
// order, so the cached leaf is often among the first to go).
func (c *NodeIdMapCollection) dropLeaf(id int) {
	delete(c.LeafNodeIds, id)
	if c.maybeRightMostLeaf != nil && *c.maybeRightMostLeaf == id {
		c.maybeRightMostLeaf = nil
	}
}

// RightMostLeaf returns the terminal node whose token range ends last, if
// any leaves exist. Served from the cache when valid, recomputed (and
// re-memoized) from LeafNodeIds after a rollback invalidated it.
func (c *NodeIdMapCollection) RightMostLeaf() (*AstNode, bool) {
	if c.maybeRightMostLeaf != nil {
		if ast, ok := c.AstNodeById[*c.maybeRightMostLeaf]; ok {
			return ast, true
		}
		c.maybeRightMostLeaf = nil
	}
	var best *AstNode
	for id := range c.LeafNodeIds {
		ast, ok := c.AstNodeById[id]
		if !ok {
			continue
		}
		if best == nil || ast.TokenRange.PositionEnd.CodeUnit > best.TokenRange.PositionEnd.CodeUnit {
			best = ast
		}
	}
	if best == nil {
		return nil, false
	}
	c.maybeRightMostLeaf = &best.Id
	return best, true
}

// setAttributeIndex overwrites id's own attributeIndex, on whichever side of
// the duality currently holds it. Used when reparenting changes which slot a
// surviving node occupies in its (possibly new) parent's children.
func (c *NodeIdMapCollection) setAttributeIndex(id int, idx *int) {
	if n, ok := c.AstNodeById[id]; ok {
		n.AttributeIndex = idx
		return
	}
	if n, ok := c.ContextNodeById[id]; ok {
		n.attributeIndex = idx
	}
}

// spliceChildReference replaces oldChildId in parentId's ordered child list
// with zero or more newChildIds, preserving the order of parentId's other
// children. DeleteContext's reparenting step uses this to put a deleted
// node's surviving children in its place.
func (c *NodeIdMapCollection) spliceChildReference(parentId, oldChildId int, newChildIds ...int) {
	siblings := c.ChildIdsById[parentId]
	for i, id := range siblings {
		if id != oldChildId {
			continue
		}
		replaced := make([]int, 0, len(siblings)-1+len(newChildIds))
		replaced = append(replaced, siblings[:i]...)
		replaced = append(replaced, newChildIds...)
		replaced = append(replaced, siblings[i+1:]...)
		c.ChildIdsById[parentId] = replaced
		return
	}
}
