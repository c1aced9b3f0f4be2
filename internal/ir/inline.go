package ir

// InlinePass replaces every Call in the graph with the callee's body. It
// walks the block list once, top to bottom; a callee transplanted into the
// caller is itself scanned for further calls as the walk reaches its
// blocks, so inlining nests without extra bookkeeping.
type InlinePass struct {
	graph *Graph
}

func NewInlinePass(g *Graph) *InlinePass { return &InlinePass{graph: g} }

func (p *InlinePass) Name() string { return "Inline" }

func (p *InlinePass) Run() bool {
	for i := 0; i < len(p.graph.blocks); i++ {
		for inst := p.graph.blocks[i].FirstInst(); inst != nil; inst = inst.Next() {
			if call, ok := inst.(*CallInst); ok {
				// The rest of this block now lives in the split-off block,
				// which is appended to the block list and scanned later.
				p.inlineCall(call)
				break
			}
		}
	}
	return true
}

func (p *InlinePass) inlineCall(call *CallInst) {
	callerBB := call.Block()
	callee := call.Callee

	nextBB := callerBB.SplitBlockAfterInst(call, true)
	p.remapParams(call, callee)
	p.fuseReturns(call, callee, nextBB)
	callerBB.Remove(call)
	p.mergeConstants(callee)
	p.transplantBlocks(callee)
	p.linkBlocks(callerBB, nextBB, callee)
}

// remapParams replaces each callee Param's users with the matching call
// argument and discards the param, one per argument in order. The callee's
// entry block holds its params before any other instruction, so popping the
// front of the list always yields the next unconsumed one.
func (p *InlinePass) remapParams(call *CallInst, callee *Graph) {
	entry := callee.EntryBlock()
	for _, arg := range call.Inputs() {
		call.RemoveUser(arg)
		param := entry.FirstInst()
		for _, user := range param.Users() {
			arg.AddUser(user)
			user.ReplaceInput(param, arg)
		}
		entry.PopFront()
	}
}

// fuseReturns substitutes the callee's return value(s) for the call's
// result, inserting a phi in nextBB when more than one block returns, then
// strips every Return/RetVoid terminator from the callee.
func (p *InlinePass) fuseReturns(call *CallInst, callee *Graph, nextBB *BasicBlock) {
	var returns []*FixedInst
	for _, bb := range callee.Blocks() {
		if last := bb.LastInst(); last != nil && last.Opcode() == Return {
			returns = append(returns, last.(*FixedInst))
		}
	}

	switch len(returns) {
	case 0:
		// void callee: call has no users to redirect.
	case 1:
		retval := returns[0].Inputs()[0]
		call.ReplaceUsers(retval)
	default:
		phi := p.graph.NewPhi(returns[0].Type())
		nextBB.PushBackPhi(phi)
		for _, ret := range returns {
			retval := ret.Inputs()[0]
			phi.addRawInput(retval, ret.Block())
		}
		call.ReplaceUsers(phi)
	}

	for _, bb := range callee.Blocks() {
		last := bb.LastInst()
		if last == nil {
			continue
		}
		if last.Opcode() == Return || last.Opcode() == RetVoid {
			if len(last.Inputs()) > 0 {
				last.Inputs()[0].RemoveUser(last)
			}
			bb.Remove(last)
		}
	}
}

// mergeConstants replaces every callee Const's users with the caller's
// equivalent constant; the callee's constants are discarded along with the
// rest of its entry block during transplant.
func (p *InlinePass) mergeConstants(callee *Graph) {
	for _, c := range callee.constants {
		merged := p.graph.FindConstant(c.Type(), c.Bits)
		c.ReplaceUsers(merged)
	}
}

// transplantBlocks adopts every callee block except the entry into the
// caller graph, renumbering their instructions from the caller's running id
// counter. The entry block holds only params, constants and its jump into
// the body; the params and the constants' users were already taken over, so
// the entry block is simply left behind.
func (p *InlinePass) transplantBlocks(callee *Graph) {
	for _, bb := range callee.Blocks()[1:] {
		for inst := bb.FirstInst(); inst != nil; inst = inst.Next() {
			inst.SetID(p.graph.nextInstID())
		}
		bb.graph = p.graph
		p.graph.blocks = append(p.graph.blocks, bb)
	}
}

// linkBlocks splices the callee's body between callerBB and nextBB: the
// callee's second block, formerly reached from its entry, becomes
// callerBB's successor, and the callee's last block's successor becomes
// nextBB.
func (p *InlinePass) linkBlocks(callerBB, nextBB *BasicBlock, callee *Graph) {
	calleeEntry := callee.Blocks()[0]
	calleeFirst := calleeEntry.TrueSucc()
	calleeLast := callee.Blocks()[len(callee.Blocks())-1]

	calleeFirst.ReplacePred(calleeEntry, callerBB)
	callerBB.ReplaceSucc(nextBB, calleeFirst)

	calleeLast.AddSucc(nextBB)
	nextBB.ReplacePred(callerBB, calleeLast)
}
