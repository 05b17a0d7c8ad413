package cpu

import (
	"godmg/mask"
	"godmg/mem"
)

// bitSet reports whether bit (0=LSB .. 7=MSB, the hardware's own
// numbering) is set in v, built on the teacher's mask package, whose
// own byte indices run 1-8 from the MSB down.
func bitSet(v, bit byte) bool {
	switch bit {
	case 0:
		return mask.IsSet(v, mask.I8)
	case 1:
		return mask.IsSet(v, mask.I7)
	case 2:
		return mask.IsSet(v, mask.I6)
	case 3:
		return mask.IsSet(v, mask.I5)
	case 4:
		return mask.IsSet(v, mask.I4)
	case 5:
		return mask.IsSet(v, mask.I3)
	case 6:
		return mask.IsSet(v, mask.I2)
	default:
		return mask.IsSet(v, mask.I1)
	}
}

// get8 reads an 8-bit operand, resolving the three indirect forms
// (BC)/(DE)/(HL) through memory.
func (c *CPU) get8(m *mem.Memory, r RegisterName) byte {
	switch r {
	case HLRef:
		return m.Read8(c.Reg.Read16(HL))
	case BCRef:
		return m.Read8(c.Reg.Read16(BC))
	case DERef:
		return m.Read8(c.Reg.Read16(DE))
	default:
		return c.Reg.Read8(r)
	}
}

// set8 writes an 8-bit operand, resolving the indirect forms the same
// way get8 does.
func (c *CPU) set8(m *mem.Memory, r RegisterName, v byte) {
	switch r {
	case HLRef:
		m.Write8(c.Reg.Read16(HL), v)
	case BCRef:
		m.Write8(c.Reg.Read16(BC), v)
	case DERef:
		m.Write8(c.Reg.Read16(DE), v)
	default:
		c.Reg.Write8(r, v)
	}
}

func isIndirect(r RegisterName) bool {
	return r == HLRef || r == BCRef || r == DERef
}

// push writes a 16-bit value to the stack, two distinct bytes at
// sp-2/sp-1, decrementing SP by 2 first.
func (c *CPU) push(m *mem.Memory, v uint16) {
	sp := c.Reg.SP() - 2
	c.Reg.SetSP(sp)
	m.Write16(sp, v)
}

// pop reads a 16-bit value off the stack, incrementing SP by 2.
func (c *CPU) pop(m *mem.Memory) uint16 {
	sp := c.Reg.SP()
	v := m.Read16(sp)
	c.Reg.SetSP(sp + 2)
	return v
}

func (c *CPU) condTrue(cond Cond) bool {
	switch cond {
	case CondZ:
		return c.Reg.Flag(FlagZero)
	case CondNZ:
		return !c.Reg.Flag(FlagZero)
	case CondC:
		return c.Reg.Flag(FlagCarry)
	case CondNC:
		return !c.Reg.Flag(FlagCarry)
	}
	return false
}

// addWithFlags computes a+b+carryIn as a byte and reports the zero,
// half-carry and carry flags. Half-carry and carry are computed from
// the operand nibbles/values, never from bits of the already-wrapped
// result — a shortcut that silently breaks for several operand pairs.
func addWithFlags(a, b byte, carryIn bool) (sum byte, zero, half, carry bool) {
	var cin byte
	if carryIn {
		cin = 1
	}
	full := int(a) + int(b) + int(cin)
	sum = byte(full)
	half = (a&0xF)+(b&0xF)+cin > 0xF
	carry = full > 0xFF
	zero = sum == 0
	return
}

// subWithFlags computes a-b-carryIn as a byte and reports the zero,
// half-carry (borrow from bit 4) and carry (borrow from bit 8) flags.
// The carry-out is `a < b + carryIn`, evaluated in int arithmetic so
// SBC's incoming borrow is never silently dropped.
func subWithFlags(a, b byte, carryIn bool) (diff byte, zero, half, carry bool) {
	var cin byte
	if carryIn {
		cin = 1
	}
	diff = a - b - cin
	half = int(a&0xF)-int(b&0xF)-int(cin) < 0
	carry = int(a)-int(b)-int(cin) < 0
	zero = diff == 0
	return
}

// Execute carries out one decoded Instruction against the register
// file and memory, returning its cycle cost. Every arm leaves the low
// nibble of F at zero (Registers.Write8/SetFlags already enforce that)
// and never itself advances PC beyond what Decode already did, except
// for the control-flow ops that explicitly retarget it.
func (c *CPU) Execute(inst Instruction, m *mem.Memory) int {
	reg := &c.Reg

	switch inst.Op {
	case OpIllegal:
		return 4

	case OpNop:
		return 4

	case OpLd8Reg:
		v := c.get8(m, inst.R2)
		c.set8(m, inst.R1, v)
		if isIndirect(inst.R1) || isIndirect(inst.R2) {
			return 8
		}
		return 4

	case OpLd8Imm:
		c.set8(m, inst.R1, inst.Imm8)
		if isIndirect(inst.R1) {
			return 12
		}
		return 8

	case OpHalt:
		c.Halted = true
		return 4

	case OpStop:
		c.Stopped = true
		return 4

	case OpStoreSP:
		m.Write16(inst.Imm16, reg.SP())
		return 20

	case OpLdDecHLA:
		hl := reg.Read16(HL)
		m.Write8(hl, reg.Read8(A))
		reg.Write16(HL, hl-1)
		return 8

	case OpLdDecAHL:
		hl := reg.Read16(HL)
		reg.Write8(A, m.Read8(hl))
		reg.Write16(HL, hl-1)
		return 8

	case OpLdIncAHL:
		hl := reg.Read16(HL)
		reg.Write8(A, m.Read8(hl))
		reg.Write16(HL, hl+1)
		return 8

	case OpLdIncHLA:
		hl := reg.Read16(HL)
		m.Write8(hl, reg.Read8(A))
		reg.Write16(HL, hl+1)
		return 8

	case OpLdhN:
		m.Write8(0xFF00+uint16(inst.Imm8), reg.Read8(A))
		return 12

	case OpLdhA:
		reg.Write8(A, m.Read8(0xFF00+uint16(inst.Imm8)))
		return 12

	case OpLdAInd:
		reg.Write8(A, m.Read8(inst.Imm16))
		return 16

	case OpLdIndA:
		m.Write8(inst.Imm16, reg.Read8(A))
		return 16

	case OpLdAC:
		reg.Write8(A, m.Read8(0xFF00+uint16(reg.Read8(C))))
		return 8

	case OpLdCA:
		m.Write8(0xFF00+uint16(reg.Read8(C)), reg.Read8(A))
		return 8

	case OpLd16Imm:
		reg.Write16(inst.R1, inst.Imm16)
		return 12

	case OpLdSPHL:
		reg.SetSP(reg.Read16(HL))
		return 8

	case OpLdHLSPn:
		sp := reg.SP()
		offset := int16(inst.Rel)
		result := uint16(int32(sp) + int32(offset))
		_, _, half, carry := addWithFlags(byte(sp), byte(offset), false)
		reg.Write16(HL, result)
		reg.SetFlags(false, false, half, carry)
		return 12

	case OpPush:
		c.push(m, reg.Read16(inst.R1))
		return 16

	case OpPop:
		reg.Write16(inst.R1, c.pop(m))
		return 12

	case OpAddReg, OpAddImm:
		a := reg.Read8(A)
		var b byte
		indirect := false
		if inst.Op == OpAddReg {
			b = c.get8(m, inst.R1)
			indirect = isIndirect(inst.R1)
		} else {
			b = inst.Imm8
		}
		sum, zero, half, carry := addWithFlags(a, b, false)
		reg.Write8(A, sum)
		reg.SetFlags(zero, false, half, carry)
		return aluCycles(inst.Op == OpAddImm, indirect)

	case OpAdcReg, OpAdcImm:
		a := reg.Read8(A)
		var b byte
		indirect := false
		if inst.Op == OpAdcReg {
			b = c.get8(m, inst.R1)
			indirect = isIndirect(inst.R1)
		} else {
			b = inst.Imm8
		}
		sum, zero, half, carry := addWithFlags(a, b, reg.Flag(FlagCarry))
		reg.Write8(A, sum)
		reg.SetFlags(zero, false, half, carry)
		return aluCycles(inst.Op == OpAdcImm, indirect)

	case OpSubReg, OpSubImm:
		a := reg.Read8(A)
		var b byte
		indirect := false
		if inst.Op == OpSubReg {
			b = c.get8(m, inst.R1)
			indirect = isIndirect(inst.R1)
		} else {
			b = inst.Imm8
		}
		diff, zero, half, carry := subWithFlags(a, b, false)
		reg.Write8(A, diff)
		reg.SetFlags(zero, true, half, carry)
		return aluCycles(inst.Op == OpSubImm, indirect)

	case OpSbcReg, OpSbcImm:
		a := reg.Read8(A)
		var b byte
		indirect := false
		if inst.Op == OpSbcReg {
			b = c.get8(m, inst.R1)
			indirect = isIndirect(inst.R1)
		} else {
			b = inst.Imm8
		}
		diff, zero, half, carry := subWithFlags(a, b, reg.Flag(FlagCarry))
		reg.Write8(A, diff)
		reg.SetFlags(zero, true, half, carry)
		return aluCycles(inst.Op == OpSbcImm, indirect)

	case OpAndReg, OpAndImm:
		a := reg.Read8(A)
		var b byte
		indirect := false
		if inst.Op == OpAndReg {
			b = c.get8(m, inst.R1)
			indirect = isIndirect(inst.R1)
		} else {
			b = inst.Imm8
		}
		result := a & b
		reg.Write8(A, result)
		reg.SetFlags(result == 0, false, true, false)
		return aluCycles(inst.Op == OpAndImm, indirect)

	case OpOrReg, OpOrImm:
		a := reg.Read8(A)
		var b byte
		indirect := false
		if inst.Op == OpOrReg {
			b = c.get8(m, inst.R1)
			indirect = isIndirect(inst.R1)
		} else {
			b = inst.Imm8
		}
		result := a | b
		reg.Write8(A, result)
		reg.SetFlags(result == 0, false, false, false)
		return aluCycles(inst.Op == OpOrImm, indirect)

	case OpXorReg, OpXorImm:
		a := reg.Read8(A)
		var b byte
		indirect := false
		if inst.Op == OpXorReg {
			b = c.get8(m, inst.R1)
			indirect = isIndirect(inst.R1)
		} else {
			b = inst.Imm8
		}
		result := a ^ b
		reg.Write8(A, result)
		reg.SetFlags(result == 0, false, false, false)
		return aluCycles(inst.Op == OpXorImm, indirect)

	case OpCpReg, OpCpImm:
		a := reg.Read8(A)
		var b byte
		indirect := false
		if inst.Op == OpCpReg {
			b = c.get8(m, inst.R1)
			indirect = isIndirect(inst.R1)
		} else {
			b = inst.Imm8
		}
		_, zero, half, carry := subWithFlags(a, b, false)
		reg.SetFlags(zero, true, half, carry)
		return aluCycles(inst.Op == OpCpImm, indirect)

	case OpInc:
		v := c.get8(m, inst.R1)
		result := v + 1
		c.set8(m, inst.R1, result)
		half := v&0xF == 0xF
		reg.SetFlags(result == 0, false, half, reg.Flag(FlagCarry))
		if isIndirect(inst.R1) {
			return 12
		}
		return 4

	case OpDec:
		v := c.get8(m, inst.R1)
		result := v - 1
		c.set8(m, inst.R1, result)
		half := v&0xF == 0
		reg.SetFlags(result == 0, true, half, reg.Flag(FlagCarry))
		if isIndirect(inst.R1) {
			return 12
		}
		return 4

	case OpAdd16:
		hl := reg.Read16(HL)
		operand := reg.Read16(inst.R1)
		sum := uint32(hl) + uint32(operand)
		half := (hl&0xFFF)+(operand&0xFFF) > 0xFFF
		reg.Write16(HL, uint16(sum))
		reg.SetFlags(reg.Flag(FlagZero), false, half, sum > 0xFFFF)
		return 8

	case OpAddSP:
		sp := reg.SP()
		offset := int16(inst.Rel)
		_, _, half, carry := addWithFlags(byte(sp), byte(offset), false)
		reg.SetSP(uint16(int32(sp) + int32(offset)))
		reg.SetFlags(false, false, half, carry)
		return 16

	case OpInc16:
		reg.Write16(inst.R1, reg.Read16(inst.R1)+1)
		return 8

	case OpDec16:
		reg.Write16(inst.R1, reg.Read16(inst.R1)-1)
		return 8

	case OpSwap:
		v := c.get8(m, inst.R1)
		result := v<<4 | v>>4
		c.set8(m, inst.R1, result)
		reg.SetFlags(result == 0, false, false, false)
		if isIndirect(inst.R1) {
			return 16
		}
		return 8

	case OpDaa:
		return c.daa()

	case OpCpl:
		reg.Write8(A, ^reg.Read8(A))
		reg.SetFlag(FlagSub, true)
		reg.SetFlag(FlagHalfCarry, true)
		return 4

	case OpCcf:
		reg.SetFlag(FlagSub, false)
		reg.SetFlag(FlagHalfCarry, false)
		reg.SetFlag(FlagCarry, !reg.Flag(FlagCarry))
		return 4

	case OpScf:
		reg.SetFlag(FlagSub, false)
		reg.SetFlag(FlagHalfCarry, false)
		reg.SetFlag(FlagCarry, true)
		return 4

	case OpDi:
		c.DIPending = true
		return 4

	case OpEi:
		c.EIPending = true
		return 4

	case OpRlca:
		a := reg.Read8(A)
		carry := a&0x80 != 0
		result := a<<1 | a>>7
		reg.Write8(A, result)
		reg.SetFlags(false, false, false, carry)
		return 4

	case OpRla:
		a := reg.Read8(A)
		carryIn := byte(0)
		if reg.Flag(FlagCarry) {
			carryIn = 1
		}
		carryOut := a&0x80 != 0
		result := a<<1 | carryIn
		reg.Write8(A, result)
		reg.SetFlags(false, false, false, carryOut)
		return 4

	case OpRrca:
		a := reg.Read8(A)
		carry := a&0x01 != 0
		result := a>>1 | a<<7
		reg.Write8(A, result)
		reg.SetFlags(false, false, false, carry)
		return 4

	case OpRra:
		a := reg.Read8(A)
		var carryIn byte
		if reg.Flag(FlagCarry) {
			carryIn = 0x80
		}
		carryOut := a&0x01 != 0
		result := a>>1 | carryIn
		reg.Write8(A, result)
		reg.SetFlags(false, false, false, carryOut)
		return 4

	case OpRlc:
		v := c.get8(m, inst.R1)
		carry := v&0x80 != 0
		result := v<<1 | v>>7
		c.set8(m, inst.R1, result)
		reg.SetFlags(result == 0, false, false, carry)
		return shiftCycles(inst.R1)

	case OpRl:
		v := c.get8(m, inst.R1)
		var carryIn byte
		if reg.Flag(FlagCarry) {
			carryIn = 1
		}
		carryOut := v&0x80 != 0
		result := v<<1 | carryIn
		c.set8(m, inst.R1, result)
		reg.SetFlags(result == 0, false, false, carryOut)
		return shiftCycles(inst.R1)

	case OpRrc:
		v := c.get8(m, inst.R1)
		carry := v&0x01 != 0
		result := v>>1 | v<<7
		c.set8(m, inst.R1, result)
		reg.SetFlags(result == 0, false, false, carry)
		return shiftCycles(inst.R1)

	case OpRr:
		v := c.get8(m, inst.R1)
		var carryIn byte
		if reg.Flag(FlagCarry) {
			carryIn = 0x80
		}
		carryOut := v&0x01 != 0
		result := v>>1 | carryIn
		c.set8(m, inst.R1, result)
		reg.SetFlags(result == 0, false, false, carryOut)
		return shiftCycles(inst.R1)

	case OpSla:
		v := c.get8(m, inst.R1)
		carry := v&0x80 != 0
		result := v << 1
		c.set8(m, inst.R1, result)
		reg.SetFlags(result == 0, false, false, carry)
		return shiftCycles(inst.R1)

	case OpSra:
		v := c.get8(m, inst.R1)
		carry := v&0x01 != 0
		result := v>>1 | v&0x80
		c.set8(m, inst.R1, result)
		reg.SetFlags(result == 0, false, false, carry)
		return shiftCycles(inst.R1)

	case OpSrl:
		v := c.get8(m, inst.R1)
		carry := v&0x01 != 0
		result := v >> 1
		c.set8(m, inst.R1, result)
		reg.SetFlags(result == 0, false, false, carry)
		return shiftCycles(inst.R1)

	case OpBit:
		v := c.get8(m, inst.R1)
		zero := !bitSet(v, inst.Bit)
		reg.SetFlag(FlagZero, zero)
		reg.SetFlag(FlagSub, false)
		reg.SetFlag(FlagHalfCarry, true)
		if isIndirect(inst.R1) {
			return 12
		}
		return 8

	case OpSet:
		v := c.get8(m, inst.R1)
		c.set8(m, inst.R1, v|(1<<inst.Bit))
		return shiftCycles(inst.R1)

	case OpRes:
		v := c.get8(m, inst.R1)
		c.set8(m, inst.R1, v&^(1<<inst.Bit))
		return shiftCycles(inst.R1)

	case OpJp:
		reg.SetPC(inst.Imm16)
		return 16

	case OpJpCond:
		if c.condTrue(inst.Cond) {
			reg.SetPC(inst.Imm16)
			return 16
		}
		return 12

	case OpJr:
		reg.SetPC(uint16(int32(reg.PC()) + int32(inst.Rel)))
		return 12

	case OpJrCond:
		if c.condTrue(inst.Cond) {
			reg.SetPC(uint16(int32(reg.PC()) + int32(inst.Rel)))
			return 12
		}
		return 8

	case OpJpHL:
		reg.SetPC(reg.Read16(HL))
		return 4

	case OpCall:
		c.push(m, reg.PC())
		reg.SetPC(inst.Imm16)
		return 24

	case OpCallCond:
		if c.condTrue(inst.Cond) {
			c.push(m, reg.PC())
			reg.SetPC(inst.Imm16)
			return 24
		}
		return 12

	case OpRst:
		c.push(m, reg.PC())
		reg.SetPC(uint16(inst.Imm8))
		return 16

	case OpRet:
		reg.SetPC(c.pop(m))
		return 16

	case OpRetCond:
		if c.condTrue(inst.Cond) {
			reg.SetPC(c.pop(m))
			return 20
		}
		return 8

	case OpReti:
		reg.SetPC(c.pop(m))
		c.EIPending = true
		return 16
	}

	return 4
}

// aluCycles returns the cycle cost of an 8-bit ALU operation: 8 for
// the immediate form, 4 for a register operand, 8 when that register
// operand is one of the indirect (HL)/(BC)/(DE) forms.
func aluCycles(immediate, indirect bool) int {
	if immediate {
		return 8
	}
	if indirect {
		return 8
	}
	return 4
}

// shiftCycles returns the cycle cost shared by the CB-prefixed
// rotate/shift/SET/RES forms: 16 through (HL), 8 through a plain
// register.
func shiftCycles(r RegisterName) int {
	if isIndirect(r) {
		return 16
	}
	return 8
}

// daa corrects A into packed BCD after an 8-bit addition or
// subtraction, following the documented correction table rather than
// any post-hoc bit trick: after addition, a correction is added when C
// or A>0x99 (tens) and when H or the low nibble exceeds 9 (units);
// after subtraction, the same corrections are subtracted. H is always
// cleared afterward; Z and the final C reflect the corrected value.
func (c *CPU) daa() int {
	reg := &c.Reg
	a := reg.Read8(A)
	carry := reg.Flag(FlagCarry)
	half := reg.Flag(FlagHalfCarry)
	sub := reg.Flag(FlagSub)

	if !sub {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if half || a&0xF > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if half {
			a -= 0x06
		}
	}

	reg.Write8(A, a)
	reg.SetFlags(a == 0, sub, false, carry)
	return 4
}
