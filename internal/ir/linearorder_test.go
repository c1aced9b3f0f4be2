package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

func TestLinearOrderScenario(t *testing.T) {
	g, bb := buildScenarioGraph()
	require.True(t, ir.RunAnalysis(g, ir.NewLinearOrderPass))

	want := []*ir.BasicBlock{bb["bb1"], bb["bb2"], bb["bb4"], bb["bb5"], bb["bb3"], bb["bb6"]}
	assert.Equal(t, want, g.GetLinearOrderBBs())
}

func TestLinearOrderLoopBodyIsContiguous(t *testing.T) {
	g, bb := buildScenarioGraph()
	require.True(t, ir.RunAnalysis(g, ir.NewLinearOrderPass))

	order := g.GetLinearOrderBBs()
	indexOf := func(bb *ir.BasicBlock) int {
		for i, b := range order {
			if b == bb {
				return i
			}
		}
		t.Fatalf("block %s not present in linear order", bb.Name())
		return -1
	}

	loopBlocks := []int{indexOf(bb["bb2"]), indexOf(bb["bb4"]), indexOf(bb["bb5"])}
	lo, hi := loopBlocks[0], loopBlocks[0]
	for _, idx := range loopBlocks {
		if idx < lo {
			lo = idx
		}
		if idx > hi {
			hi = idx
		}
	}
	assert.Equal(t, hi-lo+1, len(loopBlocks), "loop body must occupy a contiguous range")
}
