package ir

// DCEPass removes instructions with an empty user list and no observable
// side effect, in a single forward pass. Removing an instruction unlinks it
// from its operands' user lists; an operand that becomes unused this way is
// removed only if the walk has not passed it yet (operands usually precede
// their users), otherwise it stays until a later run.
type DCEPass struct {
	graph *Graph
}

func NewDCEPass(g *Graph) *DCEPass { return &DCEPass{graph: g} }

func (p *DCEPass) Name() string { return "DCE" }

// isEligible reports whether inst may be removed once unused: every jump,
// Call, Mov, Cmp, and Return is kept regardless of its user count.
func isEligible(inst Inst) bool {
	switch inst.Opcode() {
	case Call, Mov, Cmp, Return:
		return false
	default:
		return !inst.Opcode().IsJump()
	}
}

func (p *DCEPass) Run() bool {
	for _, bb := range p.graph.Blocks() {
		for inst := bb.FirstInst(); inst != nil; {
			next := inst.Next()
			if len(inst.Users()) == 0 && isEligible(inst) {
				for _, in := range inst.Inputs() {
					if in != nil {
						in.RemoveUser(inst)
					}
				}
				bb.Remove(inst)
			}
			inst = next
		}
	}
	return true
}
