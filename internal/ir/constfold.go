package ir

import (
	"math"

	"ssamid/internal/assert"
)

// ConstFoldPass replaces binary/unary instructions whose operands are all
// constants with a single new constant, folded in the instruction's own
// typed arithmetic. It does not remove the folded instruction itself; DCE
// cleans up the now-unused original.
type ConstFoldPass struct {
	graph *Graph
}

func NewConstFoldPass(g *Graph) *ConstFoldPass { return &ConstFoldPass{graph: g} }

func (p *ConstFoldPass) Name() string { return "ConstFolding" }

func (p *ConstFoldPass) Run() bool {
	v := NewVisitor(nil)
	for _, op := range []Opcode{Add, Sub, Mul, Div, Mod, Shl, Shr, AShr, And, Or, Xor} {
		v.On(op, p.foldBinary)
	}
	v.On(Not, p.foldUnary)
	v.On(Neg, p.foldUnary)
	v.VisitGraph(p.graph)
	return true
}

func asConst(i Inst) (*ConstInst, bool) {
	c, ok := i.(*ConstInst)
	return c, ok
}

func (p *ConstFoldPass) foldBinary(inst Inst) bool {
	left, lok := asConst(inst.Inputs()[0])
	right, rok := asConst(inst.Inputs()[1])
	if !lok || !rok {
		return false
	}
	assert.Check(left.Type() == right.Type(), "const fold: operand type mismatch")

	folded := evalBinary(inst.Opcode(), left.Type(), left.Bits, right.Bits)
	newConst := p.graph.FindConstant(left.Type(), folded)
	inst.ReplaceUsers(newConst)
	return true
}

func (p *ConstFoldPass) foldUnary(inst Inst) bool {
	in, ok := asConst(inst.Inputs()[0])
	if !ok {
		return false
	}
	folded := evalUnary(inst.Opcode(), in.Type(), in.Bits)
	newConst := p.graph.FindConstant(in.Type(), folded)
	inst.ReplaceUsers(newConst)
	return true
}

// evalBinary computes op(a, b) in typ's arithmetic, returning the result as
// a 64-bit bit pattern: two's-complement wrapping for signed integers;
// Mod/Shl/Shr/AShr/And/Or/Xor are defined only for integer types.
func evalBinary(op Opcode, typ DataType, a, b uint64) uint64 {
	switch typ {
	case I32:
		x, y := int32(a), int32(b)
		switch op {
		case Add:
			return uint64(uint32(x + y))
		case Sub:
			return uint64(uint32(x - y))
		case Mul:
			return uint64(uint32(x * y))
		case Div:
			return uint64(uint32(x / y))
		case Mod:
			return uint64(uint32(x % y))
		case Shl:
			return uint64(uint32(x) << uint32(y))
		case Shr:
			return uint64(uint32(x) >> uint32(y))
		case AShr:
			return uint64(uint32(x >> uint32(y)))
		case And:
			return uint64(uint32(x) & uint32(y))
		case Or:
			return uint64(uint32(x) | uint32(y))
		case Xor:
			return uint64(uint32(x) ^ uint32(y))
		}
	case I64:
		x, y := int64(a), int64(b)
		switch op {
		case Add:
			return uint64(x + y)
		case Sub:
			return uint64(x - y)
		case Mul:
			return uint64(x * y)
		case Div:
			return uint64(x / y)
		case Mod:
			return uint64(x % y)
		case Shl:
			return a << b
		case Shr:
			return a >> b
		case AShr:
			return uint64(x >> uint64(y))
		case And:
			return a & b
		case Or:
			return a | b
		case Xor:
			return a ^ b
		}
	case F32:
		x, y := math.Float32frombits(uint32(a)), math.Float32frombits(uint32(b))
		switch op {
		case Add:
			return uint64(math.Float32bits(x + y))
		case Sub:
			return uint64(math.Float32bits(x - y))
		case Mul:
			return uint64(math.Float32bits(x * y))
		case Div:
			return uint64(math.Float32bits(x / y))
		}
	case F64:
		x, y := math.Float64frombits(a), math.Float64frombits(b)
		switch op {
		case Add:
			return math.Float64bits(x + y)
		case Sub:
			return math.Float64bits(x - y)
		case Mul:
			return math.Float64bits(x * y)
		case Div:
			return math.Float64bits(x / y)
		}
	}
	assert.Unreachable("const fold: opcode %s not defined for type %s", op, typ)
	return 0
}

func evalUnary(op Opcode, typ DataType, a uint64) uint64 {
	switch typ {
	case I32:
		x := int32(a)
		switch op {
		case Not:
			return uint64(uint32(^x))
		case Neg:
			return uint64(uint32(-x))
		}
	case I64:
		x := int64(a)
		switch op {
		case Not:
			return uint64(^x)
		case Neg:
			return uint64(-x)
		}
	case F32:
		x := math.Float32frombits(uint32(a))
		if op == Neg {
			return uint64(math.Float32bits(-x))
		}
	case F64:
		x := math.Float64frombits(a)
		if op == Neg {
			return math.Float64bits(-x)
		}
	}
	assert.Unreachable("const fold: opcode %s not defined for type %s", op, typ)
	return 0
}
