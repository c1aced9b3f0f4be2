package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssamid/internal/ir"
)

func overlaps(a, b *ir.LiveInterval) bool {
	return a.Start < b.End && b.Start < a.End
}

func TestRegAllocNoOverlapSharesRegister(t *testing.T) {
	g, _ := buildScenarioGraph()
	require.True(t, ir.RunOptimization(g, ir.NewRegAllocPass))

	intervals := g.GetLiveIntervals()

	var nonEmpty []*ir.LiveInterval
	for _, iv := range intervals {
		if !iv.IsEmpty() {
			nonEmpty = append(nonEmpty, iv)
		}
	}

	for i := 0; i < len(nonEmpty); i++ {
		for j := i + 1; j < len(nonEmpty); j++ {
			a, b := nonEmpty[i], nonEmpty[j]
			if !overlaps(a, b) {
				continue
			}
			if a.IsRegister && b.IsRegister {
				assert.NotEqual(t, a.Location, b.Location,
					"overlapping intervals must not share a physical register")
			}
		}
	}
}
