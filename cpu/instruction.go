package cpu

// Op names one member of the closed instruction set. An Instruction
// carries exactly the operand fields its Op needs; decode never
// produces a partially-populated value outside of that contract.
type Op int

const (
	OpIllegal Op = iota

	OpLd8Reg // R1 <- R2, either operand may be (HL)/(BC)/(DE)
	OpLd8Imm // R1 <- Imm8
	OpHalt
	OpNop
	OpStoreSP  // (Imm16) <- SP
	OpStop
	OpLdDecHLA // (HL) <- A; HL--
	OpLdDecAHL // A <- (HL); HL--
	OpLdIncAHL // A <- (HL); HL++
	OpLdIncHLA // (HL) <- A; HL++
	OpLdhN     // (FF00+Imm8) <- A
	OpLdhA     // A <- (FF00+Imm8)
	OpLdAInd   // A <- (Imm16)
	OpLdIndA   // (Imm16) <- A
	OpLdAC     // A <- (FF00+C)
	OpLdCA     // (FF00+C) <- A
	OpLd16Imm  // R1 <- Imm16
	OpLdSPHL   // SP <- HL
	OpLdHLSPn  // HL <- SP + Rel
	OpPush     // push R1
	OpPop      // pop into R1

	OpAddImm
	OpAddReg
	OpAdcImm
	OpAdcReg
	OpSubImm
	OpSubReg
	OpSbcImm
	OpSbcReg
	OpAndImm
	OpAndReg
	OpOrImm
	OpOrReg
	OpXorImm
	OpXorReg
	OpCpImm
	OpCpReg

	OpInc   // R1++ (8-bit)
	OpDec   // R1-- (8-bit)
	OpAdd16 // HL += R1
	OpAddSP // SP += Rel
	OpInc16 // R1++ (16-bit)
	OpDec16 // R1-- (16-bit)
	OpSwap  // swap nibbles of R1

	OpDaa
	OpCpl
	OpCcf
	OpScf
	OpDi
	OpEi

	OpRlca
	OpRla
	OpRrca
	OpRra

	OpRlc
	OpRl
	OpRrc
	OpRr
	OpSla
	OpSra
	OpSrl

	OpBit // test bit Bit of R1
	OpSet // set bit Bit of R1
	OpRes // clear bit Bit of R1

	OpJp
	OpJpCond
	OpJr
	OpJrCond
	OpJpHL
	OpCall
	OpCallCond
	OpRst
	OpRet
	OpRetCond
	OpReti
)

// Instruction is a single decoded instruction together with its
// operands. It is a plain value: decoding never touches CPU state
// beyond advancing PC, and executing an Instruction is a pure function
// of the register file and memory at that moment.
type Instruction struct {
	Op   Op
	R1   RegisterName
	R2   RegisterName
	Cond Cond
	Imm8 byte
	Imm16 uint16
	Rel  int8
	Bit  byte
}

// tableR is the classic Z80-family register-operand table: indices 0-7
// decode to B,C,D,E,H,L,(HL),A. Index 6 — (HL) — means "operate on the
// byte memory points at", which is why it reads RegisterName(HLRef)
// rather than a plain 8-bit register.
var tableR = [8]RegisterName{B, C, D, E, H, L, HLRef, A}

// tableRP is the 16-bit register-pair table used by instructions that
// pick among BC/DE/HL/SP.
var tableRP = [4]RegisterName{BC, DE, HL, SP}

// tableRP2 is the 16-bit register-pair table used by PUSH/POP, which
// push AF instead of SP.
var tableRP2 = [4]RegisterName{BC, DE, HL, AF}

// tableCC is the condition-code table used by conditional jumps, calls
// and returns.
var tableCC = [4]Cond{CondNZ, CondZ, CondNC, CondC}

// aluReg builds the x=2 ALU-against-register instruction for ALU
// opcode idx (0-7: ADD,ADC,SUB,SBC,AND,XOR,OR,CP) and register operand
// reg.
func aluReg(idx int, reg RegisterName) Instruction {
	return Instruction{Op: aluRegOps[idx], R1: reg}
}

// aluImm builds the ALU-against-immediate instruction for ALU opcode
// idx and the already-fetched operand byte.
func aluImm(idx int, operand byte) Instruction {
	return Instruction{Op: aluImmOps[idx], Imm8: operand}
}

var aluRegOps = [8]Op{OpAddReg, OpAdcReg, OpSubReg, OpSbcReg, OpAndReg, OpXorReg, OpOrReg, OpCpReg}
var aluImmOps = [8]Op{OpAddImm, OpAdcImm, OpSubImm, OpSbcImm, OpAndImm, OpXorImm, OpOrImm, OpCpImm}

// rot builds a CB-prefixed rotate/shift instruction for rotate opcode
// idx (0-7: RLC,RRC,RL,RR,SLA,SRA,SWAP,SRL) and register operand reg.
func rot(idx int, reg RegisterName) Instruction {
	return Instruction{Op: rotOps[idx], R1: reg}
}

var rotOps = [8]Op{OpRlc, OpRrc, OpRl, OpRr, OpSla, OpSra, OpSwap, OpSrl}
