package ir

import "math/bits"

// PeepholePass rewrites a handful of local identities that ConstFolding
// cannot, because only one operand is constant: multiply by 0/1/-1/a power
// of two, Or idempotence/identity/De Morgan collapse, and AShr by zero.
type PeepholePass struct {
	graph *Graph
}

func NewPeepholePass(g *Graph) *PeepholePass { return &PeepholePass{graph: g} }

func (p *PeepholePass) Name() string { return "Peepholes" }

func (p *PeepholePass) Run() bool {
	v := NewVisitor(nil)
	v.On(Mul, p.visitMul)
	v.On(Or, p.visitOr)
	v.On(AShr, p.visitAShr)
	v.VisitGraph(p.graph)
	return true
}

// canonicalizeConstRight puts a constant operand in the right-hand slot of
// a commutative binary instruction and returns it, or ok=false if the
// right-hand operand is then not an integer constant. When both operands
// are constants they stay in place and the right-hand one is returned.
func canonicalizeConstRight(inst *FixedInst) (left Inst, right *ConstInst, ok bool) {
	in0, in1 := inst.Inputs()[0], inst.Inputs()[1]
	_, in0IsConst := asConst(in0)
	_, in1IsConst := asConst(in1)

	if in0IsConst && !in1IsConst {
		inst.SwapInputs()
		in0, in1 = inst.Inputs()[0], inst.Inputs()[1]
	} else if !in1IsConst {
		return nil, nil, false
	}

	c, isConst := asConst(in1)
	if !isConst || (c.Type() != I32 && c.Type() != I64) {
		return nil, nil, false
	}
	return in0, c, true
}

func intValues(c *ConstInst) (unsigned uint64, signed int64) {
	if c.Type() == I32 {
		return uint64(uint32(c.Bits)), int64(int32(c.Bits))
	}
	return c.Bits, int64(c.Bits)
}

func isPowerOfTwo(v uint64) bool { return v != 0 && bits.OnesCount64(v) == 1 }

func (p *PeepholePass) visitMul(inst Inst) bool {
	mul := inst.(*FixedInst)
	left, c, ok := canonicalizeConstRight(mul)
	if !ok {
		return false
	}
	unsigned, signed := intValues(c)

	switch {
	case unsigned == 0:
		// Mul v, 0 --> Const 0
		inst.ReplaceUsers(c)
	case unsigned == 1:
		// Mul v, 1 --> v
		inst.ReplaceUsers(left)
	case signed == -1:
		// Mul v, -1 --> Neg v
		neg := p.graph.NewUnary(Neg, inst.Type(), left)
		inst.Block().InsertAfter(inst, neg)
		inst.ReplaceUsers(neg)
	case isPowerOfTwo(unsigned):
		// Mul v, 2^k --> Shl v, k
		power := p.graph.FindConstant(c.Type(), uint64(bits.TrailingZeros64(unsigned)))
		shl := p.graph.NewBinary(Shl, inst.Type(), left, power)
		inst.Block().InsertAfter(inst, shl)
		inst.ReplaceUsers(shl)
	default:
		return false
	}
	return true
}

func (p *PeepholePass) visitOr(inst Inst) bool {
	or := inst.(*FixedInst)
	left, right := or.Inputs()[0], or.Inputs()[1]

	if left == right {
		// Or v, v --> v
		inst.ReplaceUsers(left)
		return true
	}

	if left.Opcode() == Not && right.Opcode() == Not {
		// De Morgan: Or (Not a) (Not b) --> And a b
		a, b := left.Inputs()[0], right.Inputs()[0]
		and := p.graph.NewBinary(And, inst.Type(), a, b)
		inst.Block().InsertAfter(inst, and)
		left.RemoveUser(inst)
		right.RemoveUser(inst)
		inst.ReplaceUsers(and)
		return true
	}

	_, c, ok := canonicalizeConstRight(or)
	if !ok {
		return false
	}
	unsigned, _ := intValues(c)
	allOnes := uint64(0xFFFFFFFF)
	if c.Type() == I64 {
		allOnes = ^uint64(0)
	}

	switch unsigned {
	case 0:
		// Or v, 0 --> v
		inst.ReplaceUsers(or.Inputs()[0])
		return true
	case allOnes:
		// Or v, allOnes --> 1
		one := p.graph.FindConstant(c.Type(), 1)
		inst.ReplaceUsers(one)
		return true
	}
	return false
}

func (p *PeepholePass) visitAShr(inst Inst) bool {
	ashr := inst.(*FixedInst)
	// AShr is not commutative, so its operands are never swapped.
	left := ashr.Inputs()[0]
	c, ok := asConst(ashr.Inputs()[1])
	if !ok || !c.Type().IsInteger() {
		return false
	}
	unsigned, _ := intValues(c)
	if unsigned == 0 {
		// AShr v, 0 --> v
		inst.ReplaceUsers(left)
		return true
	}
	return false
}
