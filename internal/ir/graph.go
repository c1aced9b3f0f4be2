package ir

import "ssamid/internal/assert"

// Config holds the engine's capacity hints and allocator limits. Everything
// but RegNum and MarkersNum is a performance hint only; zero values fall
// back to sane defaults.
type Config struct {
	RegNum     int // REG_NUM: physical registers available to RegAlloc.
	MarkersNum int // MARKERS_NUM: concurrently-live markers; default 4.

	BBPredsNum    int
	LoopBlocksNum int
	LoopLatchesNum int
	LoopInnersNum int
	GraphBBNum    int
	GraphInstNum  int
	InstUsersNum  int
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() Config {
	return Config{RegNum: 4, MarkersNum: defaultMarkersNum}
}

// Graph owns a function's blocks, constant pool, id counter, analysis
// caches, and the pass/marker managers bound to it.
type Graph struct {
	name string

	blocks    []*BasicBlock
	curInstID uint64
	curBBID   uint64

	constants []*ConstInst

	rpoBBs         []*BasicBlock
	linearOrderBBs []*BasicBlock
	rootLoop       *Loop
	liveIntervals  map[Inst]*LiveInterval

	passManager   *PassManager
	markerManager *MarkerManager

	config Config
}

// NewGraph creates an empty, unowned graph named name.
func NewGraph(name string) *Graph {
	return NewGraphWithConfig(name, DefaultConfig())
}

// NewGraphWithConfig is NewGraph with explicit capacity/allocator settings.
func NewGraphWithConfig(name string, cfg Config) *Graph {
	if cfg.MarkersNum <= 0 {
		cfg.MarkersNum = defaultMarkersNum
	}
	if cfg.RegNum <= 0 {
		cfg.RegNum = 4
	}
	g := &Graph{
		name:          name,
		liveIntervals: make(map[Inst]*LiveInterval),
		config:        cfg,
	}
	g.markerManager = NewMarkerManager(cfg.MarkersNum)
	g.passManager = newPassManager(g)
	return g
}

func (g *Graph) Name() string    { return g.name }
func (g *Graph) Config() Config  { return g.config }
func (g *Graph) Blocks() []*BasicBlock { return g.blocks }
func (g *Graph) Size() int       { return len(g.blocks) }

func (g *Graph) Markers() *MarkerManager { return g.markerManager }
func (g *Graph) Passes() *PassManager    { return g.passManager }

// EntryBlock returns the graph's first block, or nil if empty.
func (g *Graph) EntryBlock() *BasicBlock {
	if len(g.blocks) == 0 {
		return nil
	}
	return g.blocks[0]
}

func (g *Graph) noteInstID(id uint64) {
	if id+1 > g.curInstID {
		g.curInstID = id + 1
	}
}

// CurInstID returns the current upper bound on allocated instruction ids.
func (g *Graph) CurInstID() uint64 { return g.curInstID }

func (g *Graph) nextInstID() uint64 {
	id := g.curInstID
	g.curInstID++
	return id
}

func (g *Graph) nextBBID() uint64 {
	id := g.curBBID
	g.curBBID++
	return id
}

// newBlockRaw allocates and registers a block without wiring any CFG edges;
// used internally by block splitting.
func (g *Graph) newBlockRaw(name string) *BasicBlock {
	bb := NewBasicBlock(g.nextBBID(), g, name)
	g.blocks = append(g.blocks, bb)
	return bb
}

// InsertBB appends bb to the graph, wiring it as a successor of the current
// last block: its true successor when that slot is free, otherwise its false
// successor (a last block with both slots taken is a fatal error). The first
// inserted block becomes the entry and gets no incoming edge.
func (g *Graph) InsertBB(bb *BasicBlock) {
	assert.Check(bb.graph == nil || bb.graph == g, "bb%d already owned by another graph", bb.id)
	bb.graph = g
	bb.id = g.nextBBID()
	if len(g.blocks) > 0 {
		last := g.blocks[len(g.blocks)-1]
		g.AddEdge(last, bb)
		if last.trueSucc == nil {
			last.trueSucc = bb
		}
	}
	g.blocks = append(g.blocks, bb)
}

// InsertBBAfter inserts bb on the edge leaving pred: pred's existing
// successor on that slot becomes a successor of bb instead, and bb takes
// pred's former place on that edge.
func (g *Graph) InsertBBAfter(pred *BasicBlock, bb *BasicBlock, isTrueSucc bool) {
	assert.Check(pred.graph == g, "insertBBAfter: pred bb%d not in this graph", pred.id)
	bb.graph = g
	bb.id = g.nextBBID()
	g.blocks = append(g.blocks, bb)

	var old *BasicBlock
	if isTrueSucc {
		old = pred.trueSucc
		pred.trueSucc = bb
	} else {
		old = pred.falseSucc
		pred.falseSucc = bb
	}
	bb.AddPred(pred)
	if old != nil {
		old.replacePredPtr(pred, bb)
		bb.AddSucc(old)
	}
}

// AddEdge adds dst as a successor of src and src as a predecessor of dst.
func (g *Graph) AddEdge(src, dst *BasicBlock) {
	src.AddSucc(dst)
	dst.AddPred(src)
}

// RemoveBB removes bb from the graph and unlinks it from every predecessor
// and successor, maintaining invariants 4 and 5.
func (g *Graph) RemoveBB(bb *BasicBlock) {
	for _, p := range bb.preds {
		p.ReplaceSucc(bb, nil)
	}
	for _, s := range bb.Succs() {
		s.RemovePred(bb)
	}
	for i, b := range g.blocks {
		if b == bb {
			g.blocks = append(g.blocks[:i], g.blocks[i+1:]...)
			break
		}
	}
}

// ReplaceBB replaces old with neu at the same position in the block list and
// on every edge touching old.
func (g *Graph) ReplaceBB(old, neu *BasicBlock) {
	for i, b := range g.blocks {
		if b == old {
			g.blocks[i] = neu
			break
		}
	}
	for _, p := range old.preds {
		p.ReplaceSucc(old, neu)
		neu.AddPred(p)
	}
	for _, s := range old.Succs() {
		s.ReplacePred(old, neu)
	}
	neu.trueSucc, neu.falseSucc = old.trueSucc, old.falseSucc
}

// --- constant pool ----------------------------------------------------------

// FindConstant returns the existing Const of (typ, bits) or creates and
// inserts a new one into the entry block.
func (g *Graph) FindConstant(typ DataType, bits uint64) *ConstInst {
	for _, c := range g.constants {
		if c.Type() == typ && c.Bits == bits {
			return c
		}
	}
	assert.Check(g.EntryBlock() != nil, "findConstant: graph has no entry block")
	c := newConstInst(g.nextInstID(), typ, bits)
	g.EntryBlock().PushFrontInst(c)
	g.constants = append(g.constants, c)
	return c
}

// --- instruction factories ---------------------------------------------------

// NewBinary creates a two-input arithmetic/bitwise/compare instruction.
func (g *Graph) NewBinary(op Opcode, typ DataType, lhs, rhs Inst) *FixedInst {
	assert.Check(op.IsBinary(), "newBinary: opcode %s is not binary", op)
	f := newFixedInst(g.nextInstID(), op, typ, 2)
	f.SetInput(0, lhs)
	f.SetInput(1, rhs)
	return f
}

// NewUnary creates a one-input instruction: Not, Neg, Return, Cast, Mov,
// ZeroCheck, or BoundsCheck's first operand (BoundsCheck itself is 2-ary,
// see NewBoundsCheck).
func (g *Graph) NewUnary(op Opcode, typ DataType, input Inst) *FixedInst {
	f := newFixedInst(g.nextInstID(), op, typ, 1)
	f.SetInput(0, input)
	return f
}

// NewCast creates a Cast instruction converting input to typ.
func (g *Graph) NewCast(typ DataType, input Inst) *FixedInst {
	f := newFixedInst(g.nextInstID(), Cast, typ, 1)
	f.SetInput(0, input)
	return f
}

// NewMov creates a Mov; its target register (Reg) starts unassigned.
func (g *Graph) NewMov(typ DataType, input Inst) *FixedInst {
	f := newFixedInst(g.nextInstID(), Mov, typ, 1)
	f.SetInput(0, input)
	return f
}

// NewZeroCheck creates a ZeroCheck guarding x.
func (g *Graph) NewZeroCheck(x Inst) *FixedInst {
	f := newFixedInst(g.nextInstID(), ZeroCheck, NoType, 1)
	f.SetInput(0, x)
	return f
}

// NewBoundsCheck creates a BoundsCheck guarding index i against bound x.
func (g *Graph) NewBoundsCheck(x, i Inst) *FixedInst {
	f := newFixedInst(g.nextInstID(), BoundsCheck, NoType, 2)
	f.SetInput(0, x)
	f.SetInput(1, i)
	return f
}

// NewParam creates a function parameter instruction.
func (g *Graph) NewParam(typ DataType, name string) *ParamInst {
	return newParamInst(g.nextInstID(), typ, name)
}

// NewJump creates an unconditional jump to target.
func (g *Graph) NewJump(target *BasicBlock) *JumpInst {
	return newJumpInst(g.nextInstID(), Jmp, target)
}

// NewCondJump creates a conditional jump of the given opcode (Je, Jne, Jb,
// Jbe, Ja, Jae) whose implicit condition comes from a preceding Cmp.
func (g *Graph) NewCondJump(op Opcode, target *BasicBlock) *JumpInst {
	assert.Check(op.IsJump() && op != Jmp, "newCondJump: opcode %s is not conditional", op)
	return newJumpInst(g.nextInstID(), op, target)
}

// NewCall creates a call to callee with the given arguments.
func (g *Graph) NewCall(typ DataType, callee *Graph, args ...Inst) *CallInst {
	return newCallInst(g.nextInstID(), typ, callee, args)
}

// NewRetVoid creates a void-returning terminator.
func (g *Graph) NewRetVoid() *RetVoidInst {
	return newRetVoidInst(g.nextInstID())
}

// NewPhi creates an empty phi of the given type; inputs are added with
// PhiInst.AddInput once the phi is in its block.
func (g *Graph) NewPhi(typ DataType) *PhiInst {
	return newPhiInst(g.nextInstID(), typ)
}

// --- analysis caches ---------------------------------------------------------

func (g *Graph) setRPOBBs(bbs []*BasicBlock)          { g.rpoBBs = bbs }
func (g *Graph) GetRpoBBs() []*BasicBlock             { return g.rpoBBs }
func (g *Graph) setLinearOrderBBs(bbs []*BasicBlock)  { g.linearOrderBBs = bbs }
func (g *Graph) GetLinearOrderBBs() []*BasicBlock     { return g.linearOrderBBs }
func (g *Graph) setRootLoop(l *Loop)                  { g.rootLoop = l }
func (g *Graph) RootLoop() *Loop                      { return g.rootLoop }
func (g *Graph) setLiveIntervals(m map[Inst]*LiveInterval) { g.liveIntervals = m }
func (g *Graph) GetLiveIntervals() map[Inst]*LiveInterval  { return g.liveIntervals }
