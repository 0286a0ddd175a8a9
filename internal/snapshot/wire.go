package snapshot

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/jprabhas/openxla-xla/internal/hlo"
)

// Payload field numbers. The payload is protobuf wire format assembled
// with encoding/protowire; there is no generated code to keep in sync,
// so the numbers below are the format definition. Unknown fields are
// skipped on decode.
//
// Snapshot:     1=module  2=arguments (repeated)  3=result
// Module:       1=name    2=computations (repeated)
// Computation:  1=name    2=instructions (repeated)
// Instruction:  1=opcode  2=name  3=shape
// Shape:        1=element_type (varint)  2=dims (packed zigzag varint)
// Literal:      1=shape  2=preds (packed varint)  3=ints (packed zigzag)
//               4=floats (packed fixed64)
const (
	snapModuleField = 1
	snapArgsField   = 2
	snapResultField = 3

	moduleNameField  = 1
	moduleCompsField = 2

	compNameField  = 1
	compInstsField = 2

	instOpcodeField = 1
	instNameField   = 2
	instShapeField  = 3

	shapeElementField = 1
	shapeDimsField    = 2

	litShapeField  = 1
	litPredsField  = 2
	litIntsField   = 3
	litFloatsField = 4
)

// Marshal encodes a snapshot into its payload wire form.
func Marshal(s *Snapshot) []byte {
	var b []byte
	b = appendMessage(b, snapModuleField, marshalModule(&s.Module))
	for _, arg := range s.Arguments {
		b = appendMessage(b, snapArgsField, marshalLiteral(arg))
	}
	if s.Result != nil {
		b = appendMessage(b, snapResultField, marshalLiteral(*s.Result))
	}
	return b
}

// Unmarshal decodes a snapshot payload.
func Unmarshal(data []byte) (*Snapshot, error) {
	s := &Snapshot{}
	err := eachField(data, func(num protowire.Number, val []byte) error {
		switch num {
		case snapModuleField:
			return unmarshalModule(val, &s.Module)
		case snapArgsField:
			lit, err := unmarshalLiteral(val)
			if err != nil {
				return err
			}
			s.Arguments = append(s.Arguments, lit)
		case snapResultField:
			lit, err := unmarshalLiteral(val)
			if err != nil {
				return err
			}
			s.Result = &lit
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func marshalModule(m *hlo.Module) []byte {
	var b []byte
	b = appendString(b, moduleNameField, m.Name)
	for _, comp := range m.Computations {
		b = appendMessage(b, moduleCompsField, marshalComputation(comp))
	}
	return b
}

func unmarshalModule(data []byte, m *hlo.Module) error {
	return eachField(data, func(num protowire.Number, val []byte) error {
		switch num {
		case moduleNameField:
			m.Name = string(val)
		case moduleCompsField:
			comp, err := unmarshalComputation(val)
			if err != nil {
				return err
			}
			m.Computations = append(m.Computations, comp)
		}
		return nil
	})
}

func marshalComputation(c hlo.Computation) []byte {
	var b []byte
	b = appendString(b, compNameField, c.Name)
	for _, inst := range c.Instructions {
		b = appendMessage(b, compInstsField, marshalInstruction(inst))
	}
	return b
}

func unmarshalComputation(data []byte) (hlo.Computation, error) {
	var c hlo.Computation
	err := eachField(data, func(num protowire.Number, val []byte) error {
		switch num {
		case compNameField:
			c.Name = string(val)
		case compInstsField:
			inst, err := unmarshalInstruction(val)
			if err != nil {
				return err
			}
			c.Instructions = append(c.Instructions, inst)
		}
		return nil
	})
	return c, err
}

func marshalInstruction(inst hlo.Instruction) []byte {
	var b []byte
	b = appendString(b, instOpcodeField, inst.Opcode)
	b = appendString(b, instNameField, inst.Name)
	b = appendMessage(b, instShapeField, marshalShape(inst.Shape))
	return b
}

func unmarshalInstruction(data []byte) (hlo.Instruction, error) {
	var inst hlo.Instruction
	err := eachField(data, func(num protowire.Number, val []byte) error {
		switch num {
		case instOpcodeField:
			inst.Opcode = string(val)
		case instNameField:
			inst.Name = string(val)
		case instShapeField:
			shape, err := unmarshalShape(val)
			if err != nil {
				return err
			}
			inst.Shape = shape
		}
		return nil
	})
	return inst, err
}

func marshalShape(s hlo.Shape) []byte {
	var b []byte
	b = protowire.AppendTag(b, shapeElementField, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Element))
	if len(s.Dims) > 0 {
		var packed []byte
		for _, d := range s.Dims {
			packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(d))
		}
		b = appendMessage(b, shapeDimsField, packed)
	}
	return b
}

func unmarshalShape(data []byte) (hlo.Shape, error) {
	var s hlo.Shape
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return s, wireError(n)
		}
		data = data[n:]

		switch {
		case num == shapeElementField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return s, wireError(n)
			}
			s.Element = hlo.PrimitiveType(v)
			data = data[n:]
		case num == shapeDimsField && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return s, wireError(n)
			}
			data = data[n:]
			for len(packed) > 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return s, wireError(m)
				}
				s.Dims = append(s.Dims, protowire.DecodeZigZag(v))
				packed = packed[m:]
			}
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return s, wireError(n)
			}
			data = data[n:]
		}
	}
	return s, nil
}

func marshalLiteral(l hlo.Literal) []byte {
	var b []byte
	b = appendMessage(b, litShapeField, marshalShape(l.Shape()))

	switch {
	case l.Shape().Element.IsBool():
		var packed []byte
		for _, v := range l.Bools() {
			bit := uint64(0)
			if v {
				bit = 1
			}
			packed = protowire.AppendVarint(packed, bit)
		}
		b = appendMessage(b, litPredsField, packed)
	case l.Shape().Element.IsInteger():
		var packed []byte
		for _, v := range l.Ints() {
			packed = protowire.AppendVarint(packed, protowire.EncodeZigZag(v))
		}
		b = appendMessage(b, litIntsField, packed)
	default:
		var packed []byte
		for _, v := range l.Floats() {
			packed = protowire.AppendFixed64(packed, math.Float64bits(v))
		}
		b = appendMessage(b, litFloatsField, packed)
	}
	return b
}

func unmarshalLiteral(data []byte) (hlo.Literal, error) {
	var (
		shape  hlo.Shape
		bools  []bool
		ints   []int64
		floats []float64
	)

	err := eachField(data, func(num protowire.Number, val []byte) error {
		switch num {
		case litShapeField:
			s, err := unmarshalShape(val)
			if err != nil {
				return err
			}
			shape = s
		case litPredsField:
			for len(val) > 0 {
				v, n := protowire.ConsumeVarint(val)
				if n < 0 {
					return wireError(n)
				}
				bools = append(bools, v != 0)
				val = val[n:]
			}
		case litIntsField:
			for len(val) > 0 {
				v, n := protowire.ConsumeVarint(val)
				if n < 0 {
					return wireError(n)
				}
				ints = append(ints, protowire.DecodeZigZag(v))
				val = val[n:]
			}
		case litFloatsField:
			for len(val) > 0 {
				v, n := protowire.ConsumeFixed64(val)
				if n < 0 {
					return wireError(n)
				}
				floats = append(floats, math.Float64frombits(v))
				val = val[n:]
			}
		}
		return nil
	})
	if err != nil {
		return hlo.Literal{}, err
	}

	switch {
	case shape.Element.IsBool():
		return hlo.NewBoolLiteral(shape, bools)
	case shape.Element.IsInteger():
		return hlo.NewIntLiteral(shape, ints)
	case shape.Element.IsFloat():
		return hlo.NewFloatLiteral(shape, floats)
	default:
		return hlo.Literal{}, fmt.Errorf("snapshot: literal with invalid element type %d", shape.Element)
	}
}

// eachField walks length-delimited fields of a message, skipping any
// field that is not length-delimited or that the callback ignores.
func eachField(data []byte, fn func(num protowire.Number, val []byte) error) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return wireError(n)
		}
		data = data[n:]

		if typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return wireError(n)
			}
			data = data[n:]
			continue
		}

		val, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return wireError(n)
		}
		if err := fn(num, val); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func wireError(n int) error {
	return fmt.Errorf("snapshot: malformed payload: %w", protowire.ParseError(n))
}
