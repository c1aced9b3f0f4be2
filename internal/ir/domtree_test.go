package ir_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

func idSet(bbs []*ir.BasicBlock) []uint64 {
	ids := make([]uint64, len(bbs))
	for i, bb := range bbs {
		ids[i] = bb.ID()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestDomTreeScenario(t *testing.T) {
	g, bb := buildScenarioGraph()
	require.True(t, ir.RunAnalysis(g, ir.NewDomTreePass))

	assert.Equal(t, []uint64{0}, idSet(bb["bb1"].Dominators()))
	assert.Equal(t, []uint64{0, 1}, idSet(bb["bb2"].Dominators()))
	assert.Equal(t, []uint64{0, 1, 2}, idSet(bb["bb3"].Dominators()))
	assert.Equal(t, []uint64{0, 1, 3}, idSet(bb["bb4"].Dominators()))
	assert.Equal(t, []uint64{0, 1, 3, 4}, idSet(bb["bb5"].Dominators()))
	assert.Equal(t, []uint64{0, 1, 5}, idSet(bb["bb6"].Dominators()))

	assert.Equal(t, bb["bb1"], bb["bb1"].Idom())
	assert.Equal(t, bb["bb1"], bb["bb2"].Idom())
	assert.Equal(t, bb["bb2"], bb["bb3"].Idom())
	assert.Equal(t, bb["bb2"], bb["bb4"].Idom())
	assert.Equal(t, bb["bb4"], bb["bb5"].Idom())
	assert.Equal(t, bb["bb2"], bb["bb6"].Idom())
}

func TestDomTreeEverySelfAndEntryDominate(t *testing.T) {
	g, bb := buildScenarioGraph()
	require.True(t, ir.RunAnalysis(g, ir.NewDomTreePass))

	for _, block := range bb {
		assert.True(t, block.Dominates(block))
		assert.True(t, bb["bb1"].Dominates(block))
	}
}
