package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

func TestChecksEliminationRedundantZeroCheck(t *testing.T) {
	g := ir.NewGraph("checks")
	entry := ir.NewBasicBlock(0, g, "entry")
	g.InsertBB(entry)

	x := g.NewParam(ir.I32, "x")
	entry.PushFrontInst(x)

	check1 := g.NewZeroCheck(x)
	entry.PushBackInst(check1)
	user1 := g.NewUnary(ir.Neg, ir.I32, x)
	entry.PushBackInst(user1)

	check2 := g.NewZeroCheck(x)
	entry.PushBackInst(check2)
	user2 := g.NewUnary(ir.Not, ir.I32, x)
	entry.PushBackInst(user2)

	entry.PushBackInst(g.NewRetVoid())

	require.True(t, ir.RunOptimization(g, ir.NewChecksEliminationPass))

	found := map[*ir.FixedInst]bool{}
	for inst := entry.FirstInst(); inst != nil; inst = inst.Next() {
		if inst.Opcode() == ir.ZeroCheck {
			found[inst.(*ir.FixedInst)] = true
		}
	}
	assert.Len(t, found, 1, "the later duplicate ZeroCheck must be removed")
	assert.True(t, found[check1])
	assert.False(t, found[check2])
}
