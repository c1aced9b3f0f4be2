package ir

import (
	"fmt"
	"math"
	"strings"
)

// Printer renders a Graph in the engine's dump format: one header line per
// graph, one block per header line, exposing preds, phis, instructions, and
// succs in textual form.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates an empty printer.
func NewPrinter() *Printer { return &Printer{} }

// Print returns the full textual dump of g.
func Print(g *Graph) string {
	p := NewPrinter()
	p.printGraph(g)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...any) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) write(format string, args ...any) {
	p.output.WriteString(fmt.Sprintf(format, args...))
}

func (p *Printer) printGraph(g *Graph) {
	p.writeLine("Graph for proc %s", g.Name())
	for _, bb := range g.Blocks() {
		p.printBlock(bb, g.Size())
	}
}

func (p *Printer) printBlock(bb *BasicBlock, graphSize int) {
	p.writeLine("BB %s[%d/%d]", bb.Name(), bb.ID(), graphSize)

	preds := bb.Preds()
	names := make([]string, len(preds))
	for i, pr := range preds {
		names[i] = fmt.Sprintf("bb%d", pr.ID())
	}
	p.writeLine("preds : %s", strings.Join(names, " "))

	for _, phi := range bb.Phis() {
		p.printInst(phi)
	}
	for inst := bb.FirstInst(); inst != nil; inst = inst.Next() {
		p.printInst(inst)
	}

	trueStr, falseStr := "none", "none"
	if bb.TrueSucc() != nil {
		trueStr = fmt.Sprintf("bb%d", bb.TrueSucc().ID())
	}
	if bb.FalseSucc() != nil {
		falseStr = fmt.Sprintf("bb%d", bb.FalseSucc().ID())
	}
	p.writeLine("succs : true %s, false %s", trueStr, falseStr)
}

func (p *Printer) printInst(inst Inst) {
	p.write("\tv%d. %s [%s] %s\n", inst.ID(), inst.Opcode(), inst.Type(), operandsString(inst))
}

// operandsString renders an instruction's operands the way its concrete
// kind needs: plain value refs for arithmetic, the decoded literal for a
// Const, the target block for a jump, and so on.
func operandsString(inst Inst) string {
	switch v := inst.(type) {
	case *ConstInst:
		return constLiteral(v)
	case *ParamInst:
		return v.Name
	case *JumpInst:
		return fmt.Sprintf("bb%d", v.Target.ID())
	case *CallInst:
		return fmt.Sprintf("%s(%s)", v.Callee.Name(), valueRefs(v.Inputs()))
	case *PhiInst:
		parts := make([]string, len(v.PhiInputs()))
		for i, in := range v.PhiInputs() {
			parts[i] = fmt.Sprintf("(v%d, bb%d)", in.Value.ID(), in.Pred.ID())
		}
		return strings.Join(parts, " ")
	case *RetVoidInst:
		return ""
	default:
		return valueRefs(inst.Inputs())
	}
}

func valueRefs(ins []Inst) string {
	parts := make([]string, len(ins))
	for i, in := range ins {
		parts[i] = fmt.Sprintf("v%d", in.ID())
	}
	return strings.Join(parts, ", ")
}

func constLiteral(c *ConstInst) string {
	switch c.Type() {
	case I32:
		return fmt.Sprintf("%d", int32(c.Bits))
	case I64:
		return fmt.Sprintf("%d", int64(c.Bits))
	case F32:
		return fmt.Sprintf("%g", math.Float32frombits(uint32(c.Bits)))
	case F64:
		return fmt.Sprintf("%g", math.Float64frombits(c.Bits))
	default:
		return fmt.Sprintf("%#x", c.Bits)
	}
}
