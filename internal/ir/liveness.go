package ir

import (
	"sort"

	"github.com/willf/bitset"
)

const liveNumberStep = 2

// invalidLocation marks a LiveInterval not yet assigned a register or
// spill slot by RegAlloc.
const invalidLocation = -1

// LiveInterval is the inclusive-start/exclusive-end live-number range over
// which a value must be kept available. RegAlloc fills in Location and
// IsRegister once it assigns the value a physical register or a spill slot.
type LiveInterval struct {
	Start, End     int
	Location       int
	IsRegister     bool
	NeedsSpillFill bool
}

func (li *LiveInterval) extend(start, end int) {
	if start < li.Start {
		li.Start = start
	}
	if end > li.End {
		li.End = end
	}
}

// IsEmpty reports a zero-width interval, which RegAlloc skips.
func (li *LiveInterval) IsEmpty() bool { return li.Start == li.End }

// liveSet is the per-block working set of live instructions during the
// reverse interval-construction walk: a bitset keyed by instruction id for
// fast union/membership, alongside a lookup table to recover the Inst
// values the bitset only remembers the ids of.
type liveSet struct {
	bits *bitset.BitSet
	byID map[uint64]Inst
}

func newLiveSet() *liveSet {
	return &liveSet{bits: bitset.New(0), byID: make(map[uint64]Inst)}
}

func (s *liveSet) add(inst Inst) {
	s.bits.Set(uint(inst.ID()))
	s.byID[inst.ID()] = inst
}

func (s *liveSet) del(inst Inst) {
	s.bits.Clear(uint(inst.ID()))
	delete(s.byID, inst.ID())
}

func (s *liveSet) unite(other *liveSet) {
	s.bits.InPlaceUnion(other.bits)
	for id, inst := range other.byID {
		s.byID[id] = inst
	}
}

// members returns the live instructions in ascending id order, for
// deterministic interval construction.
func (s *liveSet) members() []Inst {
	out := make([]Inst, 0, len(s.byID))
	for _, inst := range s.byID {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// LivenessPass assigns linear and live numbers to every instruction in
// linear order, then builds per-value live intervals by walking the
// schedule in reverse.
type LivenessPass struct {
	graph     *Graph
	liveSets  map[*BasicBlock]*liveSet
	intervals map[Inst]*LiveInterval
}

func NewLivenessPass(g *Graph) *LivenessPass {
	return &LivenessPass{graph: g, liveSets: make(map[*BasicBlock]*liveSet)}
}

func (p *LivenessPass) Name() string { return "Liveness" }

func (p *LivenessPass) Run() bool {
	g := p.graph
	if !RunAnalysis(g, NewLinearOrderPass) {
		return false
	}

	p.intervals = make(map[Inst]*LiveInterval)
	bbs := g.GetLinearOrderBBs()

	p.numberInsts(bbs)
	p.buildIntervals(bbs)

	g.setLiveIntervals(p.intervals)
	return true
}

func (p *LivenessPass) insertInterval(inst Inst, start, end int) {
	if cur, ok := p.intervals[inst]; ok {
		cur.extend(start, end)
		return
	}
	p.intervals[inst] = &LiveInterval{Start: start, End: end, Location: invalidLocation}
}

// numberInsts assigns linear_num (dense, one per instruction including
// phis) and live_num (even, shared by all phis in a block) and records
// each block's live range.
func (p *LivenessPass) numberInsts(bbs []*BasicBlock) {
	linNum, liveNum := 0, 0
	for _, bb := range bbs {
		start := liveNum
		for i := bb.FirstPhi(); i != nil; i = i.Next() {
			i.SetLinearNum(linNum)
			i.SetLiveNum(liveNum)
			linNum++
		}
		for i := bb.FirstInst(); i != nil; i = i.Next() {
			i.SetLinearNum(linNum)
			i.SetLiveNum(liveNum)
			linNum++
			liveNum += liveNumberStep
		}
		bb.setLiveRange(start, liveNum)
	}
}

func (p *LivenessPass) buildIntervals(bbs []*BasicBlock) {
	for i := len(bbs) - 1; i >= 0; i-- {
		bb := bbs[i]
		live := p.calcInitLiveSet(bb)

		start, end := bb.LiveRange()
		for _, inst := range live.members() {
			p.insertInterval(inst, start, end)
		}

		p.processBBInsts(bb, live)

		if bb.IsHeader() && !bb.Loop().Irreducible {
			p.processLoop(bb, live)
		}
	}
}

func (p *LivenessPass) calcInitLiveSet(bb *BasicBlock) *liveSet {
	live := newLiveSet()
	p.liveSets[bb] = live

	if s := bb.TrueSucc(); s != nil {
		p.processSucc(bb, s, live)
	}
	if s := bb.FalseSucc(); s != nil {
		p.processSucc(bb, s, live)
	}
	return live
}

func (p *LivenessPass) processSucc(bb, succ *BasicBlock, live *liveSet) {
	// A back-edge successor (a loop header) has no live set yet; values live
	// around the loop are covered by processLoop instead.
	if succLive := p.liveSets[succ]; succLive != nil {
		live.unite(succLive)
	}
	for i := succ.FirstPhi(); i != nil; i = i.Next() {
		phi := i.(*PhiInst)
		if v, ok := phi.InputFor(bb); ok && v != nil {
			live.add(v)
		}
	}
}

func (p *LivenessPass) processBBInsts(bb *BasicBlock, live *liveSet) {
	start, _ := bb.LiveRange()
	for i := bb.LastInst(); i != nil; i = i.Prev() {
		if i.Opcode().IsJump() {
			// Jumps produce no value; give them an empty interval so
			// RegAlloc skips them entirely.
			p.intervals[i] = &LiveInterval{Location: invalidLocation}
			p.processInputs(i, live, start)
			live.del(i)
			continue
		}
		liveNum := i.LiveNum()
		p.insertInterval(i, liveNum, liveNum+liveNumberStep)
		p.processInputs(i, live, start)
		live.del(i)
	}
	for i := bb.LastPhi(); i != nil; i = i.Prev() {
		live.del(i)
	}
}

// processInputs extends every operand's interval back to start and adds it
// to the live set; main-list instructions only, phis are never walked here.
// Phis are handled via processSucc and the trailing phi-list deletion loop
// instead.
func (p *LivenessPass) processInputs(inst Inst, live *liveSet, start int) {
	num := inst.LiveNum()
	for _, in := range inst.Inputs() {
		if in == nil {
			continue
		}
		live.add(in)
		p.insertInterval(in, start, num)
	}
}

// processLoop extends every value still live at a loop header to cover the
// whole loop: through the live range of the loop's deepest block, the last
// block in linear order belonging to the loop (including blocks nested in
// inner loops).
func (p *LivenessPass) processLoop(header *BasicBlock, live *liveSet) {
	loop := header.Loop()
	start, _ := header.LiveRange()

	var deepest *BasicBlock
	for _, bb := range p.graph.GetLinearOrderBBs() {
		if loopContains(bb.Loop(), loop) {
			deepest = bb
		}
	}
	_, end := deepest.LiveRange()

	for _, inst := range live.members() {
		p.insertInterval(inst, start, end)
	}
}

// loopContains reports whether inner is loop itself or nested within it.
func loopContains(inner, loop *Loop) bool {
	for l := inner; l != nil; l = l.Outer {
		if l == loop {
			return true
		}
	}
	return false
}

// Invalidate drops the computed intervals; per-block live ranges are left
// as they are.
func (p *LivenessPass) Invalidate() {
	p.graph.setLiveIntervals(make(map[Inst]*LiveInterval))
}
