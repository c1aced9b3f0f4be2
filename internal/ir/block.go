package ir

import "ssamid/internal/assert"

// BasicBlock is a container of instructions: a separate phi list and a main
// instruction list, each an intrusive doubly-linked list over Inst's own
// Prev/Next fields, plus predecessor/successor edges.
type BasicBlock struct {
	id    uint64
	name  string
	graph *Graph

	phiFirst, phiLast Inst
	phiCount          int

	instFirst, instLast Inst
	instCount           int

	preds               []*BasicBlock
	trueSucc, falseSucc *BasicBlock

	dominators []*BasicBlock
	idom       *BasicBlock

	loop *Loop

	liveStart, liveEnd int

	markers MarkerSet
}

// NewBasicBlock creates a block not yet owned by any graph; ownership
// transfers on Graph.InsertBB / Graph.InsertBBAfter.
func NewBasicBlock(id uint64, g *Graph, name string) *BasicBlock {
	return &BasicBlock{id: id, graph: g, name: name}
}

func (bb *BasicBlock) ID() uint64     { return bb.id }
func (bb *BasicBlock) Name() string   { return bb.name }
func (bb *BasicBlock) Graph() *Graph  { return bb.graph }
func (bb *BasicBlock) InstCount() int { return bb.instCount }

func (bb *BasicBlock) Markers() *MarkerSet { return &bb.markers }

// --- main instruction list -------------------------------------------------

// FirstInst returns the first instruction in the main list, or nil if empty.
func (bb *BasicBlock) FirstInst() Inst { return bb.instFirst }

// LastInst returns the last instruction in the main list, or nil if empty.
func (bb *BasicBlock) LastInst() Inst { return bb.instLast }

// Insts returns the main-list instructions in order. O(n); intended for
// iteration, dumping, and analyses, not for hot-path mutation.
func (bb *BasicBlock) Insts() []Inst {
	out := make([]Inst, 0, bb.instCount)
	for i := bb.instFirst; i != nil; i = i.Next() {
		out = append(out, i)
	}
	return out
}

// PushBackInst appends inst to the end of the main list.
func (bb *BasicBlock) PushBackInst(inst Inst) {
	assert.Check(inst.Prev() == nil && inst.Next() == nil, "v%d already linked into a block", inst.ID())
	inst.SetBlock(bb)
	if bb.instLast == nil {
		bb.instFirst, bb.instLast = inst, inst
	} else {
		bb.instLast.SetNext(inst)
		inst.SetPrev(bb.instLast)
		bb.instLast = inst
	}
	bb.instCount++
	bb.graph.noteInstID(inst.ID())
}

// PushFrontInst prepends inst to the main list (used for Param instructions,
// which must precede every non-param instruction in the entry block).
func (bb *BasicBlock) PushFrontInst(inst Inst) {
	assert.Check(inst.Prev() == nil && inst.Next() == nil, "v%d already linked into a block", inst.ID())
	inst.SetBlock(bb)
	if bb.instFirst == nil {
		bb.instFirst, bb.instLast = inst, inst
	} else {
		bb.instFirst.SetPrev(inst)
		inst.SetNext(bb.instFirst)
		bb.instFirst = inst
	}
	bb.instCount++
	bb.graph.noteInstID(inst.ID())
}

// InsertAfter inserts inst immediately after after in the main list.
func (bb *BasicBlock) InsertAfter(after, inst Inst) {
	assert.Check(inst.Prev() == nil && inst.Next() == nil, "v%d already linked into a block", inst.ID())
	assert.Check(after.Block() == bb, "insertAfter: anchor v%d is not in bb%d", after.ID(), bb.id)
	inst.SetBlock(bb)
	next := after.Next()
	inst.SetPrev(after)
	inst.SetNext(next)
	after.SetNext(inst)
	if next != nil {
		next.SetPrev(inst)
	} else {
		bb.instLast = inst
	}
	bb.instCount++
	bb.graph.noteInstID(inst.ID())
}

// PopFront removes and returns the first instruction of the main list.
func (bb *BasicBlock) PopFront() Inst {
	inst := bb.instFirst
	if inst == nil {
		return nil
	}
	bb.Remove(inst)
	return inst
}

// PopBack removes and returns the last instruction of the main list.
func (bb *BasicBlock) PopBack() Inst {
	inst := bb.instLast
	if inst == nil {
		return nil
	}
	bb.Remove(inst)
	return inst
}

// Remove unlinks inst from whichever list (main or phi) it belongs to. It
// does not touch inst's operands' user lists; callers that want the
// instruction fully gone (not merely relocated) should first drop it from
// each operand's user list (RemoveUser, or SetInput with nil).
func (bb *BasicBlock) Remove(inst Inst) {
	if _, isPhi := inst.(*PhiInst); isPhi {
		bb.removePhi(inst)
		return
	}
	prev, next := inst.Prev(), inst.Next()
	if prev != nil {
		prev.SetNext(next)
	} else {
		bb.instFirst = next
	}
	if next != nil {
		next.SetPrev(prev)
	} else {
		bb.instLast = prev
	}
	inst.SetPrev(nil)
	inst.SetNext(nil)
	inst.SetBlock(nil)
	bb.instCount--
}

// --- phi list ---------------------------------------------------------------

// Phis returns the block's phi instructions in insertion order.
func (bb *BasicBlock) Phis() []Inst {
	out := make([]Inst, 0, bb.phiCount)
	for i := bb.phiFirst; i != nil; i = i.Next() {
		out = append(out, i)
	}
	return out
}

func (bb *BasicBlock) FirstPhi() Inst { return bb.phiFirst }
func (bb *BasicBlock) LastPhi() Inst  { return bb.phiLast }

// PushBackPhi appends phi to the block's phi list.
func (bb *BasicBlock) PushBackPhi(phi *PhiInst) {
	assert.Check(phi.Prev() == nil && phi.Next() == nil, "phi v%d already linked", phi.ID())
	phi.SetBlock(bb)
	if bb.phiLast == nil {
		bb.phiFirst, bb.phiLast = phi, phi
	} else {
		bb.phiLast.SetNext(phi)
		phi.SetPrev(bb.phiLast)
		bb.phiLast = phi
	}
	bb.phiCount++
	bb.graph.noteInstID(phi.ID())
}

func (bb *BasicBlock) removePhi(phi Inst) {
	prev, next := phi.Prev(), phi.Next()
	if prev != nil {
		prev.SetNext(next)
	} else {
		bb.phiFirst = next
	}
	if next != nil {
		next.SetPrev(prev)
	} else {
		bb.phiLast = prev
	}
	phi.SetPrev(nil)
	phi.SetNext(nil)
	phi.SetBlock(nil)
	bb.phiCount--
}

// --- splitting ---------------------------------------------------------------

// SplitBlockAfterInst creates a fresh block that adopts every instruction
// strictly after inst, takes over bb's successors, and becomes bb's true or
// false successor per makeTrueSucc. Phis are never moved; bb keeps them.
func (bb *BasicBlock) SplitBlockAfterInst(inst Inst, makeTrueSucc bool) *BasicBlock {
	assert.Check(inst.Block() == bb, "splitBlockAfterInst: v%d is not in bb%d", inst.ID(), bb.id)

	tail := bb.graph.newBlockRaw(bb.name + ".split")

	moved := inst.Next()
	inst.SetNext(nil)
	bb.instLast = inst

	count := 0
	for cur := moved; cur != nil; {
		next := cur.Next()
		cur.SetBlock(tail)
		cur.SetPrev(nil)
		cur.SetNext(nil)
		if tail.instFirst == nil {
			tail.instFirst = cur
		} else {
			tail.instLast.SetNext(cur)
			cur.SetPrev(tail.instLast)
		}
		tail.instLast = cur
		count++
		cur = next
	}
	tail.instCount = count
	bb.instCount -= count

	oldTrue, oldFalse := bb.trueSucc, bb.falseSucc
	tail.trueSucc, tail.falseSucc = oldTrue, oldFalse
	for _, s := range []*BasicBlock{oldTrue, oldFalse} {
		if s != nil {
			s.replacePredPtr(bb, tail)
		}
	}

	bb.trueSucc, bb.falseSucc = nil, nil
	if makeTrueSucc {
		bb.trueSucc = tail
	} else {
		bb.falseSucc = tail
	}
	tail.AddPred(bb)

	return tail
}

// --- predecessors -------------------------------------------------------------

func (bb *BasicBlock) Preds() []*BasicBlock { return bb.preds }

func (bb *BasicBlock) HasPred(pred *BasicBlock) bool {
	for _, p := range bb.preds {
		if p == pred {
			return true
		}
	}
	return false
}

// AddPred adds pred to the predecessor list if not already present.
func (bb *BasicBlock) AddPred(pred *BasicBlock) {
	if !bb.HasPred(pred) {
		bb.preds = append(bb.preds, pred)
	}
}

// RemovePred removes pred from the predecessor list.
func (bb *BasicBlock) RemovePred(pred *BasicBlock) {
	for i, p := range bb.preds {
		if p == pred {
			bb.preds = append(bb.preds[:i], bb.preds[i+1:]...)
			return
		}
	}
}

// RemovePredByID removes the predecessor with the given id, if present.
func (bb *BasicBlock) RemovePredByID(id uint64) {
	for i, p := range bb.preds {
		if p.id == id {
			bb.preds = append(bb.preds[:i], bb.preds[i+1:]...)
			return
		}
	}
}

func (bb *BasicBlock) replacePredPtr(old, neu *BasicBlock) {
	for i, p := range bb.preds {
		if p == old {
			bb.preds[i] = neu
			return
		}
	}
}

// ReplacePred replaces old with neu in the predecessor list.
func (bb *BasicBlock) ReplacePred(old, neu *BasicBlock) {
	bb.replacePredPtr(old, neu)
}

// --- successors ---------------------------------------------------------------

func (bb *BasicBlock) TrueSucc() *BasicBlock  { return bb.trueSucc }
func (bb *BasicBlock) FalseSucc() *BasicBlock { return bb.falseSucc }

// Succs returns the block's non-nil successors, true-successor first.
func (bb *BasicBlock) Succs() []*BasicBlock {
	var out []*BasicBlock
	if bb.trueSucc != nil {
		out = append(out, bb.trueSucc)
	}
	if bb.falseSucc != nil {
		out = append(out, bb.falseSucc)
	}
	return out
}

func (bb *BasicBlock) SetTrueSucc(s *BasicBlock)  { bb.trueSucc = s }
func (bb *BasicBlock) SetFalseSucc(s *BasicBlock) { bb.falseSucc = s }

// AddSucc fills whichever successor slot is empty; it is a fatal
// precondition violation to call this when both are already occupied.
func (bb *BasicBlock) AddSucc(succ *BasicBlock) {
	if bb.trueSucc == nil {
		bb.trueSucc = succ
		return
	}
	assert.Check(bb.falseSucc == nil, "bb%d already has both successors", bb.id)
	bb.falseSucc = succ
}

// ReplaceSucc replaces old with neu in whichever successor slot holds it.
func (bb *BasicBlock) ReplaceSucc(old, neu *BasicBlock) {
	if bb.trueSucc == old {
		bb.trueSucc = neu
	}
	if bb.falseSucc == old {
		bb.falseSucc = neu
	}
}

// SwapSuccs exchanges the true and false successor slots.
func (bb *BasicBlock) SwapSuccs() {
	bb.trueSucc, bb.falseSucc = bb.falseSucc, bb.trueSucc
}

// --- dominance ------------------------------------------------------------

// Dominators returns this block's dominator list in the order DomTree
// inserted them: RPO order of the candidates, which is why computeIdom can
// take the second-to-last entry as the immediate dominator.
func (bb *BasicBlock) Dominators() []*BasicBlock { return bb.dominators }

func (bb *BasicBlock) addDominator(d *BasicBlock) { bb.dominators = append(bb.dominators, d) }

func (bb *BasicBlock) clearDominators() {
	bb.dominators = nil
	bb.idom = nil
}

// Idom returns the immediate dominator computed by DomTree.
func (bb *BasicBlock) Idom() *BasicBlock { return bb.idom }

func (bb *BasicBlock) computeIdom() {
	n := len(bb.dominators)
	switch {
	case n == 0:
		bb.idom = nil
	case n == 1:
		bb.idom = bb.dominators[0]
	default:
		bb.idom = bb.dominators[n-2]
	}
}

// Dominates reports whether bb dominates other (bb appears in other's
// dominator list; every block dominates itself).
func (bb *BasicBlock) Dominates(other *BasicBlock) bool {
	if bb == other {
		return true
	}
	for _, d := range other.dominators {
		if d == bb {
			return true
		}
	}
	return false
}

// --- loop membership --------------------------------------------------------

func (bb *BasicBlock) Loop() *Loop     { return bb.loop }
func (bb *BasicBlock) SetLoop(l *Loop) { bb.loop = l }

// IsHeader reports whether bb is the header of its own (innermost) loop.
func (bb *BasicBlock) IsHeader() bool { return bb.loop != nil && bb.loop.Header == bb }

// --- live range -------------------------------------------------------------

// LiveRange returns the [start, end] live-number range covering the block.
func (bb *BasicBlock) LiveRange() (start, end int) { return bb.liveStart, bb.liveEnd }

func (bb *BasicBlock) setLiveRange(start, end int) {
	bb.liveStart, bb.liveEnd = start, end
}
