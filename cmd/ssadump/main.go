package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"ssamid/internal/ir"
)

// main builds the six-block sample graph used throughout the design docs
// (edges 1->2, 2->3(true), 2->4(false), 4->5, 5->2(true, back edge),
// 5->6(false), 3->6) and runs it through the full analysis and
// optimization pipeline, printing the graph before and after.
func main() {
	g := buildSampleGraph()

	fmt.Println(ir.Print(g))

	if !ir.RunAnalysis(g, ir.NewLinearOrderPass) {
		color.Red("linear order failed: %v", g.Passes().Failed())
		os.Exit(1)
	}
	if !ir.RunAnalysis(g, ir.NewLivenessPass) {
		color.Red("liveness failed: %v", g.Passes().Failed())
		os.Exit(1)
	}
	if !ir.RunOptimization(g, ir.NewRegAllocPass) {
		color.Red("register allocation failed: %v", g.Passes().Failed())
		os.Exit(1)
	}
	ir.RunOptimization(g, ir.NewConstFoldPass)
	ir.RunOptimization(g, ir.NewPeepholePass)
	ir.RunOptimization(g, ir.NewDCEPass)

	fmt.Println(ir.Print(g))

	color.Green("✅ ran %d analyses, %d optimizations, %d failures",
		len(g.Passes().AnalysesRun()), len(g.Passes().OptimizationsRun()), len(g.Passes().Failed()))
}

func buildSampleGraph() *ir.Graph {
	g := ir.NewGraph("sample")

	bb1 := ir.NewBasicBlock(0, g, "bb1")
	g.InsertBB(bb1)
	bb2 := ir.NewBasicBlock(0, g, "bb2")
	g.InsertBBAfter(bb1, bb2, true)
	bb3 := ir.NewBasicBlock(0, g, "bb3")
	g.InsertBBAfter(bb2, bb3, true)
	bb4 := ir.NewBasicBlock(0, g, "bb4")
	g.InsertBBAfter(bb2, bb4, false)
	bb5 := ir.NewBasicBlock(0, g, "bb5")
	g.InsertBBAfter(bb4, bb5, true)
	bb6 := ir.NewBasicBlock(0, g, "bb6")
	g.InsertBBAfter(bb3, bb6, true)

	// bb5's true edge closes the loop back to bb2; its false edge joins bb6.
	g.AddEdge(bb5, bb2)
	g.AddEdge(bb5, bb6)

	// Both constants are requested before the param is linked in: findConstant
	// always inserts at the front of the entry block, so the param must be
	// pushed there last to keep it ahead of every constant.
	zero := g.FindConstant(ir.I32, 0)
	one := g.FindConstant(ir.I32, 1)
	cond := g.NewParam(ir.I32, "cond")
	bb1.PushFrontInst(cond)
	bb1.PushBackInst(g.NewJump(bb2))

	bb2.PushBackInst(g.NewBinary(ir.Cmp, ir.I32, cond, zero))
	bb2.PushBackInst(g.NewCondJump(ir.Jne, bb3))

	bb3.PushBackInst(g.NewJump(bb6))

	bb4.PushBackInst(g.NewJump(bb5))

	bb5.PushBackInst(g.NewBinary(ir.Cmp, ir.I32, cond, one))
	bb5.PushBackInst(g.NewCondJump(ir.Je, bb2))

	bb6.PushBackInst(g.NewRetVoid())

	return g
}
