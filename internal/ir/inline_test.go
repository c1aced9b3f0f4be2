package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

// buildIncrementCallee builds a two-block proc `inc(x) = x + 1`: an entry
// block holding only the param, the constant and a jump into the body, and
// a body block holding the
// actual computation and the single return, matching the convention that a
// callee's entry block is never itself linked into the caller.
func buildIncrementCallee() *ir.Graph {
	g := ir.NewGraph("inc")
	entry := ir.NewBasicBlock(0, g, "entry")
	g.InsertBB(entry)
	body := ir.NewBasicBlock(0, g, "body")
	g.InsertBBAfter(entry, body, true)

	one := g.FindConstant(ir.I32, 1)
	x := g.NewParam(ir.I32, "x")
	entry.PushFrontInst(x)
	entry.PushBackInst(g.NewJump(body))

	add := g.NewBinary(ir.Add, ir.I32, x, one)
	body.PushBackInst(add)
	body.PushBackInst(g.NewUnary(ir.Return, ir.I32, add))

	return g
}

func TestInlineSingleReturnSubstitutesCallResult(t *testing.T) {
	callee := buildIncrementCallee()

	caller := ir.NewGraph("main")
	entry := ir.NewBasicBlock(0, caller, "entry")
	caller.InsertBB(entry)

	arg := caller.FindConstant(ir.I32, 41)
	call := caller.NewCall(ir.I32, callee, arg)
	entry.PushBackInst(call)
	ret := caller.NewUnary(ir.Return, ir.I32, call)
	entry.PushBackInst(ret)

	require.True(t, ir.RunOptimization(caller, ir.NewInlinePass))

	for inst := entry.FirstInst(); inst != nil; inst = inst.Next() {
		assert.NotEqual(t, ir.Call, inst.Opcode(), "inlined call must not remain in the caller")
	}

	add, ok := ret.Inputs()[0].(*ir.FixedInst)
	require.True(t, ok, "call's single return value must be substituted directly into its user")
	assert.Equal(t, ir.Add, add.Opcode())
}

// buildAbsCallee builds a four-block proc `abs(x) = x < 0 ? -x : x`: an
// entry block holding only the param and constant and an unconditional jump
// into a decide block, which branches to one of two single-return blocks.
// This mirrors the convention (also enforced by the original compiler's
// Inline::linkBlocks, which assumes the entry's true-successor is the
// callee's sole body-entry point) that a callee's entry block never
// branches and is left behind, unlinked, once its contents are consumed.
func buildAbsCallee() (*ir.Graph, *ir.BasicBlock, *ir.BasicBlock) {
	g := ir.NewGraph("abs")
	entry := ir.NewBasicBlock(0, g, "entry")
	g.InsertBB(entry)
	decide := ir.NewBasicBlock(0, g, "decide")
	g.InsertBBAfter(entry, decide, true)
	negBB := ir.NewBasicBlock(0, g, "neg")
	g.InsertBBAfter(decide, negBB, true)
	posBB := ir.NewBasicBlock(0, g, "pos")
	g.InsertBBAfter(decide, posBB, false)

	zero := g.FindConstant(ir.I32, 0)
	x := g.NewParam(ir.I32, "x")
	entry.PushFrontInst(x)
	entry.PushBackInst(g.NewJump(decide))

	decide.PushBackInst(g.NewBinary(ir.Cmp, ir.I32, x, zero))
	decide.PushBackInst(g.NewCondJump(ir.Jb, negBB))

	negVal := g.NewUnary(ir.Neg, ir.I32, x)
	negBB.PushBackInst(negVal)
	negBB.PushBackInst(g.NewUnary(ir.Return, ir.I32, negVal))

	posBB.PushBackInst(g.NewUnary(ir.Return, ir.I32, x))

	return g, negBB, posBB
}

func TestInlineMultiReturnInsertsPhi(t *testing.T) {
	callee, _, _ := buildAbsCallee()

	caller := ir.NewGraph("main")
	entry := ir.NewBasicBlock(0, caller, "entry")
	caller.InsertBB(entry)

	arg := caller.FindConstant(ir.I32, uint64(uint32(int32(-7))))
	call := caller.NewCall(ir.I32, callee, arg)
	entry.PushBackInst(call)
	ret := caller.NewUnary(ir.Return, ir.I32, call)
	entry.PushBackInst(ret)

	require.True(t, ir.RunOptimization(caller, ir.NewInlinePass))

	phi, ok := ret.Inputs()[0].(*ir.PhiInst)
	require.True(t, ok, "call's merged return value must be a phi when the callee has multiple returns")
	assert.Len(t, phi.PhiInputs(), 2)

	for _, bb := range caller.Blocks() {
		for inst := bb.FirstInst(); inst != nil; inst = inst.Next() {
			if inst != ret {
				assert.NotEqual(t, ir.Return, inst.Opcode(), "callee Return terminators must be stripped after inlining")
			}
			assert.NotEqual(t, ir.Call, inst.Opcode())
		}
	}
}
