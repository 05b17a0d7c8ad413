package cpu

import "godmg/mem"

// Decode reads one instruction at Reg.PC(), advancing PC past every
// byte it consumes (the opcode itself plus any operands). The byte
// stream is split into the classic Z80 fields x = bits 7:6, y = bits
// 5:3, z = bits 2:0 (with p = y>>1, q = y&1), and an Instruction is
// built by a three-level switch on those fields, matching the
// reference decoding tables at http://www.z80.info/decoding.htm
// generalized to the LR35902 subset of legal opcodes.
//
// Decode never fails in the sense of returning early: an illegal byte
// position yields an OpIllegal Instruction and Decode still advances
// PC exactly one byte, matching the hardware's "opcode consumed,
// nothing happens" behavior.
func Decode(m *mem.Memory, reg *Registers) Instruction {
	pc := reg.PC()
	b := m.Read8(pc)
	reg.SetPC(pc + 1)

	if illegalOpcodes[b] {
		return Instruction{Op: OpIllegal}
	}
	if b == 0xCB {
		return decodeCB(m, reg)
	}

	x := b >> 6
	y := (b >> 3) & 7
	z := b & 7
	p := y >> 1
	q := y & 1

	fetch8 := func() byte {
		v := m.Read8(reg.PC())
		reg.SetPC(reg.PC() + 1)
		return v
	}
	fetch16 := func() uint16 {
		v := m.Read16(reg.PC())
		reg.SetPC(reg.PC() + 2)
		return v
	}
	fetchRel := func() int8 {
		return int8(fetch8())
	}

	switch x {
	case 0:
		switch z {
		case 0:
			switch y {
			case 0:
				return Instruction{Op: OpNop}
			case 1:
				return Instruction{Op: OpStoreSP, Imm16: fetch16()}
			case 2:
				return Instruction{Op: OpStop}
			case 3:
				return Instruction{Op: OpJr, Rel: fetchRel()}
			default: // 4..7
				return Instruction{Op: OpJrCond, Cond: tableCC[y-4], Rel: fetchRel()}
			}
		case 1:
			if q == 0 {
				return Instruction{Op: OpLd16Imm, R1: tableRP[p], Imm16: fetch16()}
			}
			return Instruction{Op: OpAdd16, R1: tableRP[p]}
		case 2:
			switch {
			case q == 0 && p == 0:
				return Instruction{Op: OpLd8Reg, R1: BCRef, R2: A}
			case q == 0 && p == 1:
				return Instruction{Op: OpLd8Reg, R1: DERef, R2: A}
			case q == 0 && p == 2:
				return Instruction{Op: OpLdIncHLA}
			case q == 0 && p == 3:
				return Instruction{Op: OpLdDecHLA}
			case q == 1 && p == 0:
				return Instruction{Op: OpLd8Reg, R1: A, R2: BCRef}
			case q == 1 && p == 1:
				return Instruction{Op: OpLd8Reg, R1: A, R2: DERef}
			case q == 1 && p == 2:
				return Instruction{Op: OpLdIncAHL}
			default: // q==1, p==3
				return Instruction{Op: OpLdDecAHL}
			}
		case 3:
			if q == 0 {
				return Instruction{Op: OpInc16, R1: tableRP[p]}
			}
			return Instruction{Op: OpDec16, R1: tableRP[p]}
		case 4:
			return Instruction{Op: OpInc, R1: tableR[y]}
		case 5:
			return Instruction{Op: OpDec, R1: tableR[y]}
		case 6:
			return Instruction{Op: OpLd8Imm, R1: tableR[y], Imm8: fetch8()}
		case 7:
			switch y {
			case 0:
				return Instruction{Op: OpRlca}
			case 1:
				return Instruction{Op: OpRrca}
			case 2:
				return Instruction{Op: OpRla}
			case 3:
				return Instruction{Op: OpRra}
			case 4:
				return Instruction{Op: OpDaa}
			case 5:
				return Instruction{Op: OpCpl}
			case 6:
				return Instruction{Op: OpScf}
			default:
				return Instruction{Op: OpCcf}
			}
		}
	case 1:
		if z == 6 && y == 6 {
			return Instruction{Op: OpHalt}
		}
		return Instruction{Op: OpLd8Reg, R1: tableR[y], R2: tableR[z]}
	case 2:
		return aluReg(int(y), tableR[z])
	case 3:
		switch z {
		case 0:
			switch {
			case y <= 3:
				return Instruction{Op: OpRetCond, Cond: tableCC[y]}
			case y == 4:
				return Instruction{Op: OpLdhN, Imm8: fetch8()}
			case y == 5:
				return Instruction{Op: OpAddSP, Rel: fetchRel()}
			case y == 6:
				return Instruction{Op: OpLdhA, Imm8: fetch8()}
			default:
				return Instruction{Op: OpLdHLSPn, Rel: fetchRel()}
			}
		case 1:
			if q == 0 {
				return Instruction{Op: OpPop, R1: tableRP2[p]}
			}
			switch p {
			case 0:
				return Instruction{Op: OpRet}
			case 1:
				return Instruction{Op: OpReti}
			case 2:
				return Instruction{Op: OpJpHL}
			default:
				return Instruction{Op: OpLdSPHL}
			}
		case 2:
			switch {
			case y <= 3:
				return Instruction{Op: OpJpCond, Cond: tableCC[y], Imm16: fetch16()}
			case y == 4:
				return Instruction{Op: OpLdCA}
			case y == 5:
				return Instruction{Op: OpLdIndA, Imm16: fetch16()}
			case y == 6:
				return Instruction{Op: OpLdAC}
			default:
				return Instruction{Op: OpLdAInd, Imm16: fetch16()}
			}
		case 3:
			switch y {
			case 0:
				return Instruction{Op: OpJp, Imm16: fetch16()}
			case 6:
				return Instruction{Op: OpDi}
			case 7:
				return Instruction{Op: OpEi}
			default:
				// y==1 is the 0xCB prefix, handled above; y==2..5 are
				// covered by illegalOpcodes. Unreachable in practice.
				return Instruction{Op: OpIllegal}
			}
		case 4:
			if y <= 3 {
				return Instruction{Op: OpCallCond, Cond: tableCC[y], Imm16: fetch16()}
			}
			return Instruction{Op: OpIllegal}
		case 5:
			if q == 0 {
				return Instruction{Op: OpPush, R1: tableRP2[p]}
			}
			if p == 0 {
				return Instruction{Op: OpCall, Imm16: fetch16()}
			}
			return Instruction{Op: OpIllegal}
		case 6:
			return aluImm(int(y), fetch8())
		case 7:
			return Instruction{Op: OpRst, Imm8: y * 8}
		}
	}
	return Instruction{Op: OpIllegal}
}

// decodeCB decodes the second byte of a 0xCB-prefixed instruction: bit
// rotates/shifts for x=0, and BIT/RES/SET for x=1/2/3.
func decodeCB(m *mem.Memory, reg *Registers) Instruction {
	b := m.Read8(reg.PC())
	reg.SetPC(reg.PC() + 1)

	x := b >> 6
	y := (b >> 3) & 7
	z := b & 7
	r := tableR[z]

	switch x {
	case 0:
		return rot(int(y), r)
	case 1:
		return Instruction{Op: OpBit, R1: r, Bit: y}
	case 2:
		return Instruction{Op: OpRes, R1: r, Bit: y}
	default:
		return Instruction{Op: OpSet, R1: r, Bit: y}
	}
}
