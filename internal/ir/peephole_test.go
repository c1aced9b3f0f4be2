package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

func TestPeepholeMulByPowerOfTwo(t *testing.T) {
	g := ir.NewGraph("peephole")
	entry := ir.NewBasicBlock(0, g, "entry")
	g.InsertBB(entry)

	v6 := g.NewParam(ir.I32, "v6")
	entry.PushFrontInst(v6)
	v300 := g.FindConstant(ir.I32, 64)
	mul := g.NewBinary(ir.Mul, ir.I32, v6, v300)
	entry.PushBackInst(mul)
	ret := g.NewUnary(ir.Return, ir.I32, mul)
	entry.PushBackInst(ret)

	require.True(t, ir.RunOptimization(g, ir.NewPeepholePass))
	require.True(t, ir.RunOptimization(g, ir.NewDCEPass))

	shl, ok := ret.Inputs()[0].(*ir.FixedInst)
	require.True(t, ok)
	assert.Equal(t, ir.Shl, shl.Opcode())

	shiftAmount, ok := shl.Inputs()[1].(*ir.ConstInst)
	require.True(t, ok)
	assert.Equal(t, uint64(6), shiftAmount.Bits)

	for inst := entry.FirstInst(); inst != nil; inst = inst.Next() {
		assert.NotEqual(t, ir.Mul, inst.Opcode())
	}
}

func TestPeepholeMulByZeroLeavesNoUsers(t *testing.T) {
	g := ir.NewGraph("peephole-zero")
	entry := ir.NewBasicBlock(0, g, "entry")
	g.InsertBB(entry)

	v := g.NewParam(ir.I32, "v")
	entry.PushFrontInst(v)
	zero := g.FindConstant(ir.I32, 0)
	mul := g.NewBinary(ir.Mul, ir.I32, v, zero)
	entry.PushBackInst(mul)
	ret := g.NewUnary(ir.Return, ir.I32, mul)
	entry.PushBackInst(ret)

	require.True(t, ir.RunOptimization(g, ir.NewPeepholePass))

	assert.Empty(t, mul.Users())
}
