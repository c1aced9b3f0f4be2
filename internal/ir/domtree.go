package ir

import "ssamid/internal/assert"

// DomTreePass computes, for every reachable block, its dominator list and
// immediate dominator.
//
// Algorithm: for each candidate dominator D, taken in RPO order, mark D
// blocked and run a second reachability DFS from entry; every block not
// reached is dominated by D. Because candidates are processed in RPO order,
// each block's dominator list ends up in top-down traversal order, so the
// immediate dominator is simply the second-to-last entry.
type DomTreePass struct {
	graph *Graph
}

func NewDomTreePass(g *Graph) *DomTreePass { return &DomTreePass{graph: g} }

func (p *DomTreePass) Name() string { return "DomTree" }

func (p *DomTreePass) Run() bool {
	g := p.graph
	if !RunAnalysis(g, NewRPOPass) {
		return false
	}
	bbs := g.GetRpoBBs()
	assert.Check(len(bbs) > 0, "domtree: empty graph")

	for _, bb := range bbs {
		bb.clearDominators()
	}

	blocked := g.markerManager.New()
	defer g.markerManager.Release(blocked)

	for _, candidate := range bbs {
		candidate.markers.Set(blocked)
		reached := reachableExcluding(g, blocked)
		for _, bb := range bbs {
			if !reached[bb] {
				bb.addDominator(candidate)
			}
		}
		candidate.markers.Reset(blocked)
	}

	for _, bb := range bbs {
		bb.computeIdom()
	}

	// Re-run RPO so its cache reflects the post-domtree graph.
	RunAnalysis(g, NewRPOPass)
	return true
}

// reachableExcluding returns the set of blocks reachable from the entry
// block without ever entering the block currently holding blocked.
func reachableExcluding(g *Graph, blocked Marker) map[*BasicBlock]bool {
	visited := g.markerManager.New()
	defer g.markerManager.Release(visited)

	reached := make(map[*BasicBlock]bool)
	var visit func(bb *BasicBlock)
	visit = func(bb *BasicBlock) {
		if bb == nil || bb.markers.IsMarked(blocked) || bb.markers.IsMarked(visited) {
			return
		}
		bb.markers.Set(visited)
		reached[bb] = true
		visit(bb.trueSucc)
		visit(bb.falseSucc)
	}
	visit(g.EntryBlock())
	return reached
}

// Invalidate clears every block's dominator list and idom.
func (p *DomTreePass) Invalidate() {
	for _, bb := range p.graph.blocks {
		bb.clearDominators()
	}
}
