package ir

import (
	"sort"

	"ssamid/internal/assert"
)

// Inst is an SSA instruction. An instruction doubles as the value it
// produces: other instructions reference it directly as an input, there is
// no separate value wrapper type.
type Inst interface {
	ID() uint64
	SetID(uint64)
	Opcode() Opcode
	Type() DataType
	Block() *BasicBlock
	SetBlock(*BasicBlock)

	Prev() Inst
	Next() Inst
	SetPrev(Inst)
	SetNext(Inst)

	// Inputs returns this instruction's operands in argument order.
	Inputs() []Inst
	// SetInput atomically rewires input slot i to v, updating both this
	// instruction's input and the old/new operands' user lists.
	SetInput(i int, v Inst)
	// ReplaceInput rewires every input slot currently pointing at old to
	// point at neu, without touching old's user list (used by
	// ReplaceUsers, which discards the whole old user list afterward).
	ReplaceInput(old, neu Inst)

	Users() []Inst
	AddUser(Inst)
	RemoveUser(Inst)
	// ReplaceUsers rewrites every user's operand slot that references this
	// instruction to reference other instead, then empties this
	// instruction's user list.
	ReplaceUsers(other Inst)

	LinearNum() int
	SetLinearNum(int)
	LiveNum() int
	SetLiveNum(int)

	// Dominates reports whether this instruction dominates other: in the
	// same block it is forward reachability along the instruction list,
	// otherwise it defers to block-level dominance.
	Dominates(other Inst) bool

	String() string
}

// InstBase carries the state and behavior common to every instruction kind.
// Concrete types embed it and supply Inputs/SetInput/ReplaceInput/String.
type InstBase struct {
	self Inst

	id    uint64
	op    Opcode
	typ   DataType
	block *BasicBlock

	prev, next Inst
	users      []Inst

	linearNum int
	liveNum   int
}

func (b *InstBase) init(self Inst, id uint64, op Opcode, typ DataType) {
	b.self = self
	b.id = id
	b.op = op
	b.typ = typ
}

func (b *InstBase) ID() uint64 { return b.id }

// SetID reassigns the instruction's id; used by Inline to renumber a
// transplanted callee's instructions into the caller's id space.
func (b *InstBase) SetID(id uint64) { b.id = id }
func (b *InstBase) Opcode() Opcode      { return b.op }
func (b *InstBase) Type() DataType      { return b.typ }
func (b *InstBase) Block() *BasicBlock  { return b.block }
func (b *InstBase) SetBlock(bb *BasicBlock) { b.block = bb }

func (b *InstBase) Prev() Inst      { return b.prev }
func (b *InstBase) Next() Inst      { return b.next }
func (b *InstBase) SetPrev(i Inst)  { b.prev = i }
func (b *InstBase) SetNext(i Inst)  { b.next = i }

func (b *InstBase) Users() []Inst { return b.users }

// AddUser inserts user into the sorted-by-id user list.
func (b *InstBase) AddUser(user Inst) {
	idx := sort.Search(len(b.users), func(i int) bool { return b.users[i].ID() > user.ID() })
	b.users = append(b.users, nil)
	copy(b.users[idx+1:], b.users[idx:])
	b.users[idx] = user
}

// RemoveUser removes the first occurrence of user from the user list.
func (b *InstBase) RemoveUser(user Inst) {
	for i, u := range b.users {
		if u == user {
			b.users = append(b.users[:i], b.users[i+1:]...)
			return
		}
	}
}

func (b *InstBase) ReplaceUsers(other Inst) {
	assert.Check(other != nil, "replaceUsers: nil replacement")
	assert.Check(other != b.self, "replaceUsers: replacement is self")
	for _, u := range b.users {
		u.ReplaceInput(b.self, other)
	}
	b.users = nil
}

func (b *InstBase) LinearNum() int        { return b.linearNum }
func (b *InstBase) SetLinearNum(n int)    { b.linearNum = n }
func (b *InstBase) LiveNum() int          { return b.liveNum }
func (b *InstBase) SetLiveNum(n int)      { b.liveNum = n }

func (b *InstBase) Dominates(other Inst) bool {
	if b.block == other.Block() {
		for cur := Inst(b.self); cur != nil; cur = cur.Next() {
			if cur == other {
				return true
			}
		}
		return false
	}
	return b.block.Dominates(other.Block())
}

// noInputs is embedded by instructions with a fixed, empty operand list.
type noInputs struct{}

func (noInputs) Inputs() []Inst { return nil }
func (noInputs) SetInput(i int, v Inst) {
	assert.Check(false, "instruction takes no inputs, got index %d", i)
}
func (noInputs) ReplaceInput(Inst, Inst) {}

// FixedInst is the fixed-arity (N ∈ {1,2}) instruction variant: binary and
// unary arithmetic, Cast, Mov, ZeroCheck, BoundsCheck.
type FixedInst struct {
	InstBase
	inputs [2]Inst
	arity  int
	// Reg is a Mov's target register, -1 when unassigned. RegAlloc does not
	// set it; it records its assignments in the LiveIntervals only.
	// Meaningless for every other opcode.
	Reg int
}

func newFixedInst(id uint64, op Opcode, typ DataType, arity int) *FixedInst {
	assert.Check(arity == 1 || arity == 2, "fixed-arity instruction must have arity 1 or 2, got %d", arity)
	f := &FixedInst{arity: arity, Reg: -1}
	f.InstBase.init(f, id, op, typ)
	return f
}

func (f *FixedInst) Arity() int      { return f.arity }
func (f *FixedInst) Inputs() []Inst  { return f.inputs[:f.arity] }

func (f *FixedInst) SetInput(i int, v Inst) {
	assert.Check(i >= 0 && i < f.arity, "input index %d out of range [0,%d)", i, f.arity)
	old := f.inputs[i]
	if old != nil {
		old.RemoveUser(f)
	}
	f.inputs[i] = v
	if v != nil {
		v.AddUser(f)
	}
}

func (f *FixedInst) ReplaceInput(old, neu Inst) {
	for i := 0; i < f.arity; i++ {
		if f.inputs[i] == old {
			f.inputs[i] = neu
			neu.AddUser(f)
		}
	}
}

func (f *FixedInst) String() string { return f.Opcode().String() }

// SwapInputs exchanges a binary instruction's two operands in place; used
// by peephole canonicalization to put a constant operand on the right.
func (f *FixedInst) SwapInputs() {
	assert.Check(f.arity == 2, "swapInputs: not a binary instruction")
	f.inputs[0], f.inputs[1] = f.inputs[1], f.inputs[0]
}

// ConstInst stores a 64-bit bit pattern and its DataType; created only via
// Graph.FindConstant.
type ConstInst struct {
	InstBase
	noInputs
	Bits uint64
}

func newConstInst(id uint64, typ DataType, bits uint64) *ConstInst {
	c := &ConstInst{Bits: bits}
	c.InstBase.init(c, id, Const, typ)
	return c
}

func (c *ConstInst) String() string { return "Const" }

// ParamInst is a function parameter; it must live in the entry block before
// any non-param instruction.
type ParamInst struct {
	InstBase
	noInputs
	Name string
}

func newParamInst(id uint64, typ DataType, name string) *ParamInst {
	p := &ParamInst{Name: name}
	p.InstBase.init(p, id, Param, typ)
	return p
}

func (p *ParamInst) String() string { return "Param" }

// JumpInst is an unconditional or conditional jump; the condition itself is
// carried implicitly by a preceding Cmp, so a jump's only operand is its
// target block.
type JumpInst struct {
	InstBase
	noInputs
	Target *BasicBlock
}

func newJumpInst(id uint64, op Opcode, target *BasicBlock) *JumpInst {
	assert.Check(op.IsJump(), "newJumpInst: opcode %s is not a jump", op)
	j := &JumpInst{Target: target}
	j.InstBase.init(j, id, op, NoType)
	return j
}

func (j *JumpInst) String() string { return j.Opcode().String() }

// CallInst references a callee Graph and a dynamic argument list.
type CallInst struct {
	InstBase
	Callee *Graph
	args   []Inst
}

func newCallInst(id uint64, typ DataType, callee *Graph, args []Inst) *CallInst {
	assert.Check(callee != nil, "newCallInst: nil callee graph")
	c := &CallInst{Callee: callee}
	c.InstBase.init(c, id, Call, typ)
	for _, a := range args {
		c.args = append(c.args, a)
		if a != nil {
			a.AddUser(c)
		}
	}
	return c
}

func (c *CallInst) Inputs() []Inst { return c.args }

func (c *CallInst) SetInput(i int, v Inst) {
	assert.Check(i >= 0 && i < len(c.args), "call input index %d out of range [0,%d)", i, len(c.args))
	old := c.args[i]
	if old != nil {
		old.RemoveUser(c)
	}
	c.args[i] = v
	if v != nil {
		v.AddUser(c)
	}
}

func (c *CallInst) ReplaceInput(old, neu Inst) {
	for i, a := range c.args {
		if a == old {
			c.args[i] = neu
			neu.AddUser(c)
		}
	}
}

func (c *CallInst) String() string { return "Call" }

// RetVoidInst terminates a function that returns no value.
type RetVoidInst struct {
	InstBase
	noInputs
}

func newRetVoidInst(id uint64) *RetVoidInst {
	r := &RetVoidInst{}
	r.InstBase.init(r, id, RetVoid, NoType)
	return r
}

func (r *RetVoidInst) String() string { return "RetVoid" }

// PhiInput pairs a value with the predecessor block control flowed from.
type PhiInput struct {
	Value Inst
	Pred  *BasicBlock
}

// PhiInst selects its value by which predecessor block control entered
// from. Phis live in a block's phi list, never its main instruction list.
type PhiInst struct {
	InstBase
	inputs []PhiInput
}

func newPhiInst(id uint64, typ DataType) *PhiInst {
	p := &PhiInst{}
	p.InstBase.init(p, id, Phi, typ)
	return p
}

func (p *PhiInst) Inputs() []Inst {
	ins := make([]Inst, len(p.inputs))
	for i, pi := range p.inputs {
		ins[i] = pi.Value
	}
	return ins
}

func (p *PhiInst) PhiInputs() []PhiInput { return p.inputs }

// AddInput appends a (value, predecessor) pair. pred must already be a
// predecessor of the phi's block.
func (p *PhiInst) AddInput(value Inst, pred *BasicBlock) {
	assert.Check(p.block != nil, "phi has no owning block yet")
	assert.Check(p.block.HasPred(pred), "phi input block bb%d is not a predecessor of bb%d", pred.ID(), p.block.ID())
	p.inputs = append(p.inputs, PhiInput{Value: value, Pred: pred})
	if value != nil {
		value.AddUser(p)
	}
}

// addRawInput appends a (value, predecessor) pair without checking that
// pred is already wired into the phi's block; used by Inline while fusing
// callee return values, before the callee's blocks are linked into the
// caller's CFG.
func (p *PhiInst) addRawInput(value Inst, pred *BasicBlock) {
	p.inputs = append(p.inputs, PhiInput{Value: value, Pred: pred})
	if value != nil {
		value.AddUser(p)
	}
}

// InputFor returns the value paired with pred, if any.
func (p *PhiInst) InputFor(pred *BasicBlock) (Inst, bool) {
	for _, pi := range p.inputs {
		if pi.Pred == pred {
			return pi.Value, true
		}
	}
	return nil, false
}

func (p *PhiInst) SetInput(i int, v Inst) {
	assert.Check(i >= 0 && i < len(p.inputs), "phi input index %d out of range [0,%d)", i, len(p.inputs))
	old := p.inputs[i].Value
	if old != nil {
		old.RemoveUser(p)
	}
	p.inputs[i].Value = v
	if v != nil {
		v.AddUser(p)
	}
}

func (p *PhiInst) ReplaceInput(old, neu Inst) {
	for i := range p.inputs {
		if p.inputs[i].Value == old {
			p.inputs[i].Value = neu
			neu.AddUser(p)
		}
	}
}

func (p *PhiInst) String() string { return "Phi" }
