package ir

import "sort"

// RegAllocPass is a linear-scan register allocator over the live intervals
// Liveness computes: each interval is assigned a physical register from a
// fixed pool, or, when the pool is exhausted, spilled to a stack slot.
type RegAllocPass struct {
	graph *Graph

	intervals []*LiveInterval
	active    []*LiveInterval // sorted ascending by End

	regs       []bool // true if in use
	usedRegs   int
	curSpillSlot int
}

func NewRegAllocPass(g *Graph) *RegAllocPass { return &RegAllocPass{graph: g} }

func (p *RegAllocPass) Name() string { return "RegisterAllocation" }

func (p *RegAllocPass) Run() bool {
	g := p.graph
	if !RunAnalysis(g, NewLivenessPass) {
		return false
	}

	regNum := g.Config().RegNum
	p.regs = make([]bool, regNum)

	for _, li := range g.GetLiveIntervals() {
		if !li.IsEmpty() {
			p.intervals = append(p.intervals, li)
		}
	}
	sort.Slice(p.intervals, func(i, j int) bool { return p.intervals[i].Start < p.intervals[j].Start })

	p.linearScan()
	return true
}

func (p *RegAllocPass) linearScan() {
	for _, cur := range p.intervals {
		p.expireOldIntervals(cur)
		if p.usedRegs == len(p.regs) {
			p.spillAtInterval(cur)
		} else {
			cur.Location = p.allocReg()
			cur.IsRegister = true
			p.insertActive(cur)
		}
	}
}

// expireOldIntervals releases every active interval that has already ended
// by the time cur starts.
func (p *RegAllocPass) expireOldIntervals(cur *LiveInterval) {
	i := 0
	for ; i < len(p.active); i++ {
		if p.active[i].End > cur.Start {
			break
		}
		p.releaseReg(p.active[i].Location)
	}
	p.active = p.active[i:]
}

// spillAtInterval spills whichever active interval ends latest: if that's
// later than cur's own end, cur takes its register and the spilled
// interval moves to a stack slot; otherwise cur itself spills.
func (p *RegAllocPass) spillAtInterval(cur *LiveInterval) {
	if len(p.active) == 0 {
		cur.Location = p.nextSpillSlot()
		cur.IsRegister = false
		cur.NeedsSpillFill = true
		return
	}
	spill := p.active[len(p.active)-1]
	if spill.End > cur.End {
		cur.Location = spill.Location
		cur.IsRegister = true
		spill.Location = p.nextSpillSlot()
		spill.IsRegister = false
		spill.NeedsSpillFill = true

		p.active = p.active[:len(p.active)-1]
		p.insertActive(cur)
	} else {
		cur.Location = p.nextSpillSlot()
		cur.IsRegister = false
		cur.NeedsSpillFill = true
	}
}

func (p *RegAllocPass) insertActive(li *LiveInterval) {
	idx := sort.Search(len(p.active), func(i int) bool { return p.active[i].End > li.End })
	p.active = append(p.active, nil)
	copy(p.active[idx+1:], p.active[idx:])
	p.active[idx] = li
}

func (p *RegAllocPass) allocReg() int {
	for i, used := range p.regs {
		if !used {
			p.regs[i] = true
			p.usedRegs++
			return i
		}
	}
	panic("regalloc: allocReg called with no free register")
}

func (p *RegAllocPass) releaseReg(n int) {
	p.regs[n] = false
	p.usedRegs--
}

func (p *RegAllocPass) nextSpillSlot() int {
	slot := p.curSpillSlot
	p.curSpillSlot++
	return slot
}
