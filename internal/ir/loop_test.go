package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

func TestLoopTreeScenario(t *testing.T) {
	g, bb := buildScenarioGraph()
	require.True(t, ir.RunAnalysis(g, ir.NewLoopPass))

	root := g.RootLoop()
	require.NotNil(t, root)
	assert.ElementsMatch(t, []*ir.BasicBlock{bb["bb1"], bb["bb3"], bb["bb6"]}, root.Body)
	require.Len(t, root.Inner, 1)

	inner := root.Inner[0]
	assert.Equal(t, bb["bb2"], inner.Header)
	assert.Equal(t, []*ir.BasicBlock{bb["bb5"]}, inner.Latches)
	assert.ElementsMatch(t, []*ir.BasicBlock{bb["bb2"], bb["bb4"], bb["bb5"]}, inner.Body)
	assert.False(t, inner.Irreducible)
}

func TestLoopBackEdgeTargetsAreHeaders(t *testing.T) {
	g, bb := buildScenarioGraph()
	require.True(t, ir.RunAnalysis(g, ir.NewLoopPass))

	assert.True(t, bb["bb2"].IsHeader())
	assert.False(t, bb["bb5"].IsHeader())
}
