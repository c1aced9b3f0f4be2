package ir

// RPOPass computes a reverse post-order block ordering by a recursive DFS
// from the entry block, visiting true-successor before false-successor.
type RPOPass struct {
	graph *Graph
}

// NewRPOPass binds an RPOPass to g.
func NewRPOPass(g *Graph) *RPOPass { return &RPOPass{graph: g} }

func (p *RPOPass) Name() string { return "RPO" }

func (p *RPOPass) Run() bool {
	g := p.graph
	entry := g.EntryBlock()
	if entry == nil {
		return false
	}

	visited := g.markerManager.New()
	defer g.markerManager.Release(visited)

	var post []*BasicBlock
	var visit func(bb *BasicBlock)
	visit = func(bb *BasicBlock) {
		if bb == nil || bb.markers.IsMarked(visited) {
			return
		}
		bb.markers.Set(visited)
		visit(bb.trueSucc)
		visit(bb.falseSucc)
		post = append(post, bb)
	}
	visit(entry)

	rpo := make([]*BasicBlock, len(post))
	for i, bb := range post {
		rpo[len(post)-1-i] = bb
	}
	g.setRPOBBs(rpo)
	return true
}

// Invalidate clears the cached RPO order.
func (p *RPOPass) Invalidate() { p.graph.setRPOBBs(nil) }
