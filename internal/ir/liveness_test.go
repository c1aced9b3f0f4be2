package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

func TestLivenessOperandsStayInRange(t *testing.T) {
	g, _ := buildScenarioGraph()
	require.True(t, ir.RunAnalysis(g, ir.NewLivenessPass))

	intervals := g.GetLiveIntervals()
	require.NotEmpty(t, intervals)

	for _, bb := range g.Blocks() {
		for inst := bb.FirstInst(); inst != nil; inst = inst.Next() {
			for _, operand := range inst.Inputs() {
				interval, ok := intervals[operand]
				if !ok {
					continue
				}
				assert.GreaterOrEqual(t, inst.LiveNum(), interval.Start)
				assert.LessOrEqual(t, inst.LiveNum(), interval.End)
			}
		}
	}
}
