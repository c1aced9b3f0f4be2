package ir

// ChecksEliminationPass drops a ZeroCheck or BoundsCheck that is provably
// redundant: another check of the same kind and operands, found among the
// checked value's users, that dominates it.
type ChecksEliminationPass struct {
	graph *Graph
}

func NewChecksEliminationPass(g *Graph) *ChecksEliminationPass {
	return &ChecksEliminationPass{graph: g}
}

func (p *ChecksEliminationPass) Name() string { return "ChecksElimination" }

func (p *ChecksEliminationPass) Run() bool {
	if !RunAnalysis(p.graph, NewDomTreePass) {
		return false
	}
	v := NewVisitor(nil)
	v.On(ZeroCheck, eliminateZeroCheck)
	v.On(BoundsCheck, eliminateBoundsCheck)
	v.VisitGraph(p.graph)
	return true
}

func eliminateZeroCheck(inst Inst) bool {
	input := inst.Inputs()[0]
	for _, user := range input.Users() {
		if user.Opcode() == ZeroCheck && user != inst && user.Dominates(inst) {
			dropCheck(inst, input)
			return true
		}
	}
	return false
}

func eliminateBoundsCheck(inst Inst) bool {
	input, index := inst.Inputs()[0], inst.Inputs()[1]
	for _, user := range input.Users() {
		if user.Opcode() == BoundsCheck && user != inst &&
			user.Inputs()[1] == index && user.Dominates(inst) {
			dropCheck(inst, input, index)
			return true
		}
	}
	return false
}

// dropCheck unlinks inst from its operands' user lists and removes it from
// its block; unlike ReplaceUsers (which exists to redirect a value's own
// users elsewhere), a dropped check has no result worth redirecting.
func dropCheck(inst Inst, operands ...Inst) {
	for _, op := range operands {
		op.RemoveUser(inst)
	}
	inst.Block().Remove(inst)
}
