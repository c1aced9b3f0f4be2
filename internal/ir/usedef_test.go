package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ssamid/internal/ir"
)

// TestUseDefCoherence checks that users(v) and inputs(u) agree in both
// directions for every instruction in the scenario graph: u is in v's user
// list iff v is among u's inputs.
func TestUseDefCoherence(t *testing.T) {
	g, _ := buildScenarioGraph()

	var all []ir.Inst
	for _, bb := range g.Blocks() {
		for _, phi := range bb.Phis() {
			all = append(all, phi)
		}
		for inst := bb.FirstInst(); inst != nil; inst = inst.Next() {
			all = append(all, inst)
		}
	}

	for _, u := range all {
		for _, v := range u.Inputs() {
			if v == nil {
				continue
			}
			assert.Contains(t, v.Users(), u, "u must appear in users(v) for every v in inputs(u)")
		}
	}

	for _, v := range all {
		for _, u := range v.Users() {
			found := false
			for _, in := range u.Inputs() {
				if in == v {
					found = true
					break
				}
			}
			assert.True(t, found, "v must appear in inputs(u) for every u in users(v)")
		}
	}
}
