package hlo

// Instruction opcodes consumed by this tool. The capture side records many
// more; anything unrecognized is carried through untouched.
const (
	OpcodeParameter = "parameter"
	OpcodeConstant  = "constant"
	OpcodeInfeed    = "infeed"
)

// Instruction is one operation inside a computation.
type Instruction struct {
	Opcode string
	Name   string
	Shape  Shape
}

// Computation is a named sequence of instructions.
type Computation struct {
	Name         string
	Instructions []Instruction
}

// Module is a computation graph: an entry computation plus any
// sub-computations it calls.
type Module struct {
	Name         string
	Computations []Computation
}

// Entry returns the entry computation. By convention the entry is the
// first computation recorded in the snapshot.
func (m *Module) Entry() *Computation {
	if len(m.Computations) == 0 {
		return nil
	}
	return &m.Computations[0]
}

// ParameterShapes returns the shapes of the entry computation's
// parameter instructions, in instruction order.
func (m *Module) ParameterShapes() []Shape {
	entry := m.Entry()
	if entry == nil {
		return nil
	}
	var shapes []Shape
	for _, inst := range entry.Instructions {
		if inst.Opcode == OpcodeParameter {
			shapes = append(shapes, inst.Shape)
		}
	}
	return shapes
}

// InfeedShapes returns the shapes of every infeed instruction across all
// computations of the module, not just the entry. Callers that support a
// single infeed must check the count themselves.
func (m *Module) InfeedShapes() []Shape {
	var shapes []Shape
	for _, comp := range m.Computations {
		for _, inst := range comp.Instructions {
			if inst.Opcode == OpcodeInfeed {
				shapes = append(shapes, inst.Shape)
			}
		}
	}
	return shapes
}

// InstructionCount returns the total instruction count across all
// computations.
func (m *Module) InstructionCount() int {
	n := 0
	for _, comp := range m.Computations {
		n += len(comp.Instructions)
	}
	return n
}
