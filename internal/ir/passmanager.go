package ir

// Pass is either an analysis (produces/refreshes a Graph-owned cache) or an
// optimization (mutates the IR). Both expose Run() bool and Name() string;
// Run returning false means a pass-dependency failure. The IR is left
// unmodified and the manager records the failure.
type Pass interface {
	Name() string
	Run() bool
}

// PassManager dispatches pass execution and keeps debugging registries of
// what ran. Dependency ordering is explicit: each analysis's Run() calls
// RunAnalysis on the analyses it needs before doing its own work. The legal
// dependency list: DomTree needs RPO; LoopAnalysis needs RPO and DomTree;
// LinearOrder needs LoopAnalysis; Liveness needs LinearOrder; RegAlloc
// needs Liveness; ChecksElimination needs DomTree.
type PassManager struct {
	graph *Graph

	analysesRun     []string
	optimizationsRun []string
	failed          []string
}

func newPassManager(g *Graph) *PassManager {
	return &PassManager{graph: g}
}

// AnalysesRun returns the names of every analysis pass executed so far.
func (pm *PassManager) AnalysesRun() []string { return pm.analysesRun }

// OptimizationsRun returns the names of every optimization pass executed.
func (pm *PassManager) OptimizationsRun() []string { return pm.optimizationsRun }

// Failed returns the names of passes that returned false, in order.
func (pm *PassManager) Failed() []string { return pm.failed }

func (pm *PassManager) record(kind string, name string, ok bool) {
	switch kind {
	case "analysis":
		pm.analysesRun = append(pm.analysesRun, name)
	case "optimization":
		pm.optimizationsRun = append(pm.optimizationsRun, name)
	}
	if !ok {
		pm.failed = append(pm.failed, name)
	}
}

// RunAnalysis constructs P via ctor, runs it, and records it in the
// analyses registry.
func RunAnalysis[P Pass](g *Graph, ctor func(*Graph) P) bool {
	p := ctor(g)
	ok := p.Run()
	g.passManager.record("analysis", p.Name(), ok)
	return ok
}

// RunOptimization constructs P via ctor, runs it, and records it in the
// optimizations registry.
func RunOptimization[P Pass](g *Graph, ctor func(*Graph) P) bool {
	p := ctor(g)
	ok := p.Run()
	g.passManager.record("optimization", p.Name(), ok)
	return ok
}

// RunPass is the generic entry point for optimization passes; analyses are
// run through RunAnalysis so the two end up in separate registries.
func RunPass[P Pass](g *Graph, ctor func(*Graph) P) bool {
	return RunOptimization(g, ctor)
}
