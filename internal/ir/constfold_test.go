package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

func buildConstFoldGraph() (*ir.Graph, *ir.FixedInst) {
	g := ir.NewGraph("fold")
	entry := ir.NewBasicBlock(0, g, "entry")
	g.InsertBB(entry)

	v200 := g.FindConstant(ir.I64, 2)
	v300 := g.FindConstant(ir.I64, 5)
	v0 := g.NewParam(ir.I32, "v0")
	entry.PushFrontInst(v0)

	mul := g.NewBinary(ir.Mul, ir.I64, v200, v300)
	entry.PushBackInst(mul)
	cmp := g.NewBinary(ir.Cmp, ir.I32, v0, mul)
	entry.PushBackInst(cmp)
	entry.PushBackInst(g.NewRetVoid())

	return g, cmp
}

func TestConstFoldingScenario(t *testing.T) {
	g, cmp := buildConstFoldGraph()

	require.True(t, ir.RunOptimization(g, ir.NewConstFoldPass))
	require.True(t, ir.RunOptimization(g, ir.NewDCEPass))

	folded, ok := cmp.Inputs()[1].(*ir.ConstInst)
	require.True(t, ok, "cmp's right operand must be a const after folding")
	assert.Equal(t, ir.I64, folded.Type())
	assert.Equal(t, uint64(10), folded.Bits)

	for inst := g.EntryBlock().FirstInst(); inst != nil; inst = inst.Next() {
		assert.NotEqual(t, ir.Mul, inst.Opcode(), "folded Mul must be dead-code eliminated")
	}
}

func TestConstFoldingIdempotent(t *testing.T) {
	g, _ := buildConstFoldGraph()

	require.True(t, ir.RunOptimization(g, ir.NewConstFoldPass))
	first := ir.Print(g)

	require.True(t, ir.RunOptimization(g, ir.NewConstFoldPass))
	second := ir.Print(g)

	assert.Equal(t, first, second)
}
