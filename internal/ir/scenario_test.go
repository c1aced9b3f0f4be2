package ir_test

import "ssamid/internal/ir"

// buildScenarioGraph builds a six-block graph with an if/else diamond
// feeding into a loop: edges 1->2, 2->3(true), 2->4(false), 4->5,
// 5->2(true, back edge), 5->6(false), 3->6.
func buildScenarioGraph() (*ir.Graph, map[string]*ir.BasicBlock) {
	g := ir.NewGraph("scenario")

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

	g.AddEdge(bb5, bb2)
	g.AddEdge(bb5, bb6)

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

	return g, map[string]*ir.BasicBlock{
		"bb1": bb1, "bb2": bb2, "bb3": bb3, "bb4": bb4, "bb5": bb5, "bb6": bb6,
	}
}
