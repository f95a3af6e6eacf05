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
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// snapshot is a deep-enough copy of the collection's exported maps to detect
// any mutation a speculative parse leaves behind after rollback -- slices and
// pointed-to structs are copied by value so later splicing/incrementing
// in-place can't retroactively corrupt an already-taken snapshot.
type snapshot struct {
	AstNodeById     map[int]AstNode
	ContextNodeById map[int]ContextNode
	ParentIdById    map[int]int
	ChildIdsById    map[int][]int
}

func takeSnapshot(collection *NodeIdMapCollection) snapshot {
	s := snapshot{
		AstNodeById:     make(map[int]AstNode, len(collection.AstNodeById)),
		ContextNodeById: make(map[int]ContextNode, len(collection.ContextNodeById)),
		ParentIdById:    make(map[int]int, len(collection.ParentIdById)),
		ChildIdsById:    make(map[int][]int, len(collection.ChildIdsById)),
	}
	for id, ast := range collection.AstNodeById {
		s.AstNodeById[id] = *ast
	}
	for id, ctx := range collection.ContextNodeById {
		s.ContextNodeById[id] = *ctx
	}
	for id, parentId := range collection.ParentIdById {
		s.ParentIdById[id] = parentId
	}
	for id, childIds := range collection.ChildIdsById {
		cp := make([]int, len(childIds))
		copy(cp, childIds)
		s.ChildIdsById[id] = cp
	}
	return s
}

// Backing up state, speculatively opening and closing contexts, then
// rolling back must leave the collection exactly as it was before the
// backup -- including the surviving parent context's AttributeCounter, not
// just its child-id set.
func TestRollbackIsIdempotent(t *testing.T) {
	ok := mustParseOk(t, "let x = 1 in x")
	state := &ParserState{
		TokenIndex:   ok.State.TokenIndex,
		ContextState: ok.State.ContextState,
	}

	before := takeSnapshot(state.ContextState.Collection)
	backup := state.fastStateBackup()

	speculative := state.ContextState.StartContext(LiteralExpression, state.TokenIndex)
	_ = state.ContextState.StartContext(Constant, state.TokenIndex)
	state.applyFastStateBackup(backup)

	after := takeSnapshot(state.ContextState.Collection)

	opts := cmp.Options{
		cmpopts.IgnoreUnexported(ContextNode{}),
		cmpopts.EquateEmpty(),
	}
	if diff := cmp.Diff(before, after, opts); diff != "" {
		t.Fatalf("collection differs after backup/rollback round-trip (-before +after):\n%s", diff)
	}
	if speculative.Id >= backup.IdCounter {
		// sanity: the speculative context really was above the threshold,
		// so the snapshot equality above is actually exercising deletion,
		// not vacuously comparing an untouched tree.
		if _, stillPresent := state.ContextState.Collection.ContextNodeById[speculative.Id]; stillPresent {
			t.Fatalf("speculative context %d survived rollback", speculative.Id)
		}
	}
}

// The surviving parent's attribute bookkeeping must reflect only the
// children that exist after rollback, so the next real child attached gets
// the right AttributeIndex.
func TestRollbackRestoresAttributeCounter(t *testing.T) {
	ok := mustParseOk(t, "1")
	state := &ParserState{
		TokenIndex:   ok.State.TokenIndex,
		ContextState: ok.State.ContextState,
	}

	rootId := ok.Root.Id
	rootCtx := &ContextNode{Id: rootId, Kind: ok.Root.Kind}
	state.ContextState.Collection.ContextNodeById[rootId] = rootCtx
	delete(state.ContextState.Collection.AstNodeById, rootId)
	v := rootId
	state.ContextState.CurrentContextNodeId = &v
	rootCtx.AttributeCounter = 1

	backup := state.fastStateBackup()
	if backup.currentContextAttributeCounter != 1 {
		t.Fatalf("got backed-up AttributeCounter %d, want 1", backup.currentContextAttributeCounter)
	}

	state.ContextState.StartContext(LiteralExpression, state.TokenIndex)
	if rootCtx.AttributeCounter != 2 {
		t.Fatalf("got AttributeCounter %d after speculative StartContext, want 2", rootCtx.AttributeCounter)
	}

	state.applyFastStateBackup(backup)
	if rootCtx.AttributeCounter != 1 {
		t.Fatalf("got AttributeCounter %d after rollback, want 1 (restored)", rootCtx.AttributeCounter)
	}

	next := state.ContextState.StartContext(LiteralExpression, state.TokenIndex)
	if next.attributeIndex == nil || *next.attributeIndex != 1 {
		t.Fatalf("next real child got attribute index %v, want 1", next.attributeIndex)
	}
}
