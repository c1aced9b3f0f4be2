package ir

// Loop is a natural or irreducible loop, or the synthetic root loop that
// collects every block not otherwise in a loop.
type Loop struct {
	Header      *BasicBlock
	Latches     []*BasicBlock
	Body        []*BasicBlock
	Inner       []*Loop
	Outer       *Loop
	Irreducible bool
}

func newLoop(header *BasicBlock, irreducible bool) *Loop {
	return &Loop{Header: header, Irreducible: irreducible}
}

func (l *Loop) addLatch(bb *BasicBlock) { l.Latches = append(l.Latches, bb) }
func (l *Loop) addBlock(bb *BasicBlock) { l.Body = append(l.Body, bb) }
func (l *Loop) addInner(inner *Loop)    { l.Inner = append(l.Inner, inner) }

// LoopPass identifies natural and irreducible loops and builds the
// loop-nesting tree.
type LoopPass struct {
	graph          *Graph
	greyMk, blackMk Marker
}

func NewLoopPass(g *Graph) *LoopPass { return &LoopPass{graph: g} }

func (p *LoopPass) Name() string { return "LoopAnalysis" }

func (p *LoopPass) Run() bool {
	g := p.graph
	rpoOK := RunAnalysis(g, NewRPOPass)
	domOK := RunAnalysis(g, NewDomTreePass)
	if !rpoOK || !domOK {
		return false
	}

	p.greyMk = g.markerManager.New()
	p.blackMk = g.markerManager.New()

	p.findLoopsRec(g.EntryBlock(), nil)

	g.markerManager.Release(p.greyMk)
	g.markerManager.Release(p.blackMk)

	p.populateLoops()
	p.buildLoopTree()
	return true
}

// findLoopsRec is the back-edge detection DFS: a grey successor is a
// back-edge target; the loop is natural if that target dominates the
// current block, irreducible otherwise.
func (p *LoopPass) findLoopsRec(bb, prev *BasicBlock) {
	if bb.markers.IsMarked(p.greyMk) {
		loop := bb.Loop()
		if loop != nil {
			loop.addLatch(prev)
			return
		}
		irreducible := !bb.Dominates(prev)
		loop = newLoop(bb, irreducible)
		loop.addLatch(prev)
		bb.SetLoop(loop)
		return
	}
	if bb.markers.IsMarked(p.blackMk) {
		return // cross edge
	}

	bb.markers.Set(p.greyMk)
	bb.markers.Set(p.blackMk)

	if bb.trueSucc != nil {
		p.findLoopsRec(bb.trueSucc, bb)
	}
	if bb.falseSucc != nil {
		p.findLoopsRec(bb.falseSucc, bb)
	}

	bb.markers.Reset(p.greyMk)
}

// populateLoops is phase 2: for each header, in reverse RPO order, fill in
// the loop body.
func (p *LoopPass) populateLoops() {
	g := p.graph
	rpo := g.GetRpoBBs()
	for i := len(rpo) - 1; i >= 0; i-- {
		bb := rpo[i]
		loop := bb.Loop()
		if loop == nil || loop.Header != bb {
			continue
		}

		if loop.Irreducible {
			for _, latch := range loop.Latches {
				if latch.Loop() != loop {
					loop.addBlock(latch)
					latch.SetLoop(loop)
				}
			}
			loop.addBlock(bb)
			continue
		}

		fillMk := g.markerManager.New()
		bb.markers.Set(fillMk)
		for _, latch := range loop.Latches {
			p.fillLoopRec(loop, latch, fillMk)
		}
		loop.addBlock(bb)
		g.markerManager.Release(fillMk)
	}
}

func (p *LoopPass) fillLoopRec(loop *Loop, bb *BasicBlock, fillMk Marker) {
	if bb.markers.IsMarked(fillMk) {
		return
	}
	bb.markers.Set(fillMk)

	if bbLoop := bb.Loop(); bbLoop != nil {
		if bbLoop.Outer == nil {
			bbLoop.Outer = loop
			loop.addInner(bbLoop)
		}
		if bbLoop.Header == bb {
			loop.addBlock(bb)
		}
	} else {
		bb.SetLoop(loop)
		loop.addBlock(bb)
	}

	for _, pred := range bb.Preds() {
		p.fillLoopRec(loop, pred, fillMk)
	}
}

func (p *LoopPass) buildLoopTree() {
	g := p.graph
	root := newLoop(nil, false)

	for _, bb := range g.blocks {
		bbLoop := bb.Loop()
		if bbLoop == nil {
			bb.SetLoop(root)
			root.addBlock(bb)
			continue
		}
		if bbLoop.Outer == nil {
			root.addInner(bbLoop)
			for _, loopBB := range bbLoop.Body {
				if l := loopBB.Loop(); l.Outer == nil {
					l.Outer = root
				}
			}
		}
	}
	g.setRootLoop(root)
}

// Invalidate drops the loop tree and every block's loop assignment.
func (p *LoopPass) Invalidate() {
	for _, bb := range p.graph.blocks {
		bb.SetLoop(nil)
	}
	p.graph.setRootLoop(nil)
}
