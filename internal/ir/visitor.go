package ir

// VisitFunc handles one instruction during a graph walk. It returns true if
// it changed the IR; VisitGraph reports whether any handler did. The walk
// itself does not depend on the result.
type VisitFunc func(inst Inst) bool

// Visitor dispatches each main-list instruction in a graph to a per-opcode
// handler, falling back to a default handler when none is registered: an
// opcode-indexed table in place of a type switch, since there is one
// concrete instruction shape per opcode rather than one Go type per opcode.
type Visitor struct {
	handlers map[Opcode]VisitFunc
	fallback VisitFunc
}

// NewVisitor creates an empty Visitor; fallback runs for any opcode with no
// registered handler (pass nil for a no-op default).
func NewVisitor(fallback VisitFunc) *Visitor {
	return &Visitor{handlers: make(map[Opcode]VisitFunc), fallback: fallback}
}

// On registers fn for op, overwriting any previous handler.
func (v *Visitor) On(op Opcode, fn VisitFunc) *Visitor {
	v.handlers[op] = fn
	return v
}

// VisitGraph walks every block's main instruction list in block order,
// dispatching each instruction to its handler. Instructions are visited via
// an explicit next-pointer capture so a handler that unlinks or replaces
// the current instruction does not derail the walk.
func (v *Visitor) VisitGraph(g *Graph) (changed bool) {
	for _, bb := range g.Blocks() {
		for inst := bb.FirstInst(); inst != nil; {
			next := inst.Next()
			fn, ok := v.handlers[inst.Opcode()]
			if !ok {
				fn = v.fallback
			}
			if fn != nil && fn(inst) {
				changed = true
			}
			inst = next
		}
	}
	return changed
}
