package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

func TestRPOScenario(t *testing.T) {
	g, bb := buildScenarioGraph()

	require.True(t, ir.RunAnalysis(g, ir.NewRPOPass))

	want := []*ir.BasicBlock{bb["bb1"], bb["bb2"], bb["bb4"], bb["bb5"], bb["bb3"], bb["bb6"]}
	assert.Equal(t, want, g.GetRpoBBs())
}

func TestRPOStartsAtEntryAndCoversReachableBlocks(t *testing.T) {
	g, bb := buildScenarioGraph()
	require.True(t, ir.RunAnalysis(g, ir.NewRPOPass))

	order := g.GetRpoBBs()
	require.NotEmpty(t, order)
	assert.Equal(t, bb["bb1"], order[0])
	assert.ElementsMatch(t, g.Blocks(), order)
}
