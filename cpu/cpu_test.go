package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"godmg/mem"
)

func newTestCPU(t *testing.T, program ...byte) (*CPU, *mem.Memory) {
	t.Helper()
	m := mem.New()
	rom := make([]byte, 0x0100+len(program))
	copy(rom[0x0100:], program) // New(false) starts execution at 0x0100
	m.LoadROM(rom)
	m.Write8(uint16(mem.BootOff), 1)
	m.ApplyBootUnpage()
	c := New(false)
	return c, m
}

func TestDecodeAdvancesPCByOperandLength(t *testing.T) {
	c, m := newTestCPU(t, 0x06, 0x05) // LD B, 5
	inst := Decode(m, &c.Reg)
	assert.Equal(t, OpLd8Imm, inst.Op)
	assert.Equal(t, B, inst.R1)
	assert.Equal(t, byte(5), inst.Imm8)
	assert.Equal(t, uint16(0x0102), c.Reg.PC())
}

func TestLdBImmediate(t *testing.T) {
	c, m := newTestCPU(t, 0x06, 0x05)
	cycles := c.Step(m)
	assert.Equal(t, byte(5), c.Reg.Read8(B))
	assert.Equal(t, uint16(0x0102), c.Reg.PC())
	assert.Equal(t, 8, cycles)
}

func TestLdDE16Immediate(t *testing.T) {
	c, m := newTestCPU(t, 0x11, 0x01, 0x00) // LD DE, 0x0001
	cycles := c.Step(m)
	assert.Equal(t, uint16(1), c.Reg.Read16(DE))
	assert.Equal(t, uint16(0x0103), c.Reg.PC())
	assert.Equal(t, 12, cycles)
}

func TestAddOverflowSetsFlags(t *testing.T) {
	c, m := newTestCPU(t,
		0x3E, 0xFF, // LD A, 0xFF
		0xC6, 0x01, // ADD A, 1
	)
	c.Step(m)
	c.Step(m)
	assert.Equal(t, byte(0), c.Reg.Read8(A))
	assert.True(t, c.Reg.Flag(FlagZero))
	assert.True(t, c.Reg.Flag(FlagHalfCarry))
	assert.True(t, c.Reg.Flag(FlagCarry))
	assert.False(t, c.Reg.Flag(FlagSub))
}

func TestXorAClearsAAndSetsOnlyZero(t *testing.T) {
	c, m := newTestCPU(t, 0xAF) // XOR A
	c.Step(m)
	assert.Equal(t, byte(0), c.Reg.Read8(A))
	assert.Equal(t, byte(0x80), c.Reg.Read8(F))
}

func TestCallPushesReturnAddress(t *testing.T) {
	c, m := newTestCPU(t, 0xCD, 0x34, 0x12) // CALL 0x1234
	c.Reg.SetSP(0xFFFE)
	c.Step(m)
	assert.Equal(t, uint16(0x1234), c.Reg.PC())
	assert.Equal(t, uint16(0xFFFC), c.Reg.SP())
	assert.Equal(t, uint16(0x0103), m.Read16(0xFFFC))
}

func TestCallThenRetRestoresPCAndSP(t *testing.T) {
	c, m := newTestCPU(t,
		0xCD, 0x06, 0x01, // CALL 0x0106, at 0x0100
		0x00, // NOP (landing site, 0x0103)
		0x00, // padding (0x0104)
		0x00, // padding (0x0105)
		0xC9, // RET, at 0x0106
	)
	c.Reg.SetSP(0xFFFE)
	c.Step(m) // CALL
	sp := c.Reg.SP()
	c.Step(m) // RET
	assert.Equal(t, uint16(0x0103), c.Reg.PC())
	assert.Equal(t, uint16(0xFFFE), c.Reg.SP())
	_ = sp
}

func TestPushPopRoundTrips(t *testing.T) {
	c, m := newTestCPU(t,
		0x01, 0xCD, 0xAB, // LD BC, 0xABCD
		0xC5,             // PUSH BC
		0xD1,             // POP DE
	)
	c.Reg.SetSP(0xFFFE)
	c.Step(m)
	c.Step(m)
	sp := c.Reg.SP()
	c.Step(m)
	assert.Equal(t, uint16(0xABCD), c.Reg.Read16(DE))
	assert.Equal(t, sp+2, c.Reg.SP())
}

func TestSetThenResLeavesValueUnchanged(t *testing.T) {
	c := &CPU{}
	c.Reg.Reset()
	c.Reg.Write8(B, 0)
	m := mem.New()
	m.Write8(uint16(mem.BootOff), 1)
	m.ApplyBootUnpage()

	cycles := c.Execute(Instruction{Op: OpSet, R1: B, Bit: 3}, m)
	assert.Equal(t, byte(0x08), c.Reg.Read8(B))
	assert.Equal(t, 8, cycles)

	c.Execute(Instruction{Op: OpRes, R1: B, Bit: 3}, m)
	assert.Equal(t, byte(0), c.Reg.Read8(B))
}

func TestBitReportsZeroFlag(t *testing.T) {
	c := &CPU{}
	c.Reg.Reset()
	c.Reg.Write8(B, 0x08)
	m := mem.New()

	c.Execute(Instruction{Op: OpBit, R1: B, Bit: 3}, m)
	assert.False(t, c.Reg.Flag(FlagZero))

	c.Execute(Instruction{Op: OpBit, R1: B, Bit: 4}, m)
	assert.True(t, c.Reg.Flag(FlagZero))
}

func TestEightRLCRoundTrips(t *testing.T) {
	c := &CPU{}
	c.Reg.Reset()
	c.Reg.Write8(B, 0x5A)
	m := mem.New()

	for i := 0; i < 8; i++ {
		c.Execute(Instruction{Op: OpRlc, R1: B}, m)
	}
	assert.Equal(t, byte(0x5A), c.Reg.Read8(B))
}

func TestDaaCorrectsBCDAddition(t *testing.T) {
	c := &CPU{}
	c.Reg.Reset()
	c.Reg.Write8(A, 0x45)
	m := mem.New()

	c.Execute(Instruction{Op: OpAddImm, Imm8: 0x38}, m) // 45 + 38 decimal-looking add
	c.Execute(Instruction{Op: OpDaa}, m)
	assert.Equal(t, byte(0x83), c.Reg.Read8(A))
	assert.False(t, c.Reg.Flag(FlagCarry))
}

func TestInterruptPriorityServicesVBlankFirst(t *testing.T) {
	c := &CPU{}
	c.Reg.Reset()
	c.Reg.SetIME(true)
	c.Reg.SetPC(0x0150)
	m := mem.New()
	m.Write8(uint16(mem.BootOff), 1)
	m.ApplyBootUnpage()
	m.SetRegister(mem.IE, 0x1F)
	m.SetRegister(mem.IF, 0x1F)

	serviced, cycles := c.serviceInterrupts(m)
	assert.True(t, serviced)
	assert.Equal(t, 20, cycles)
	assert.Equal(t, uint16(0x0040), c.Reg.PC())
	assert.Equal(t, byte(0x1E), m.Register(mem.IF))
	assert.False(t, c.Reg.IME())
}

func TestEIDoesNotTakeEffectUntilFollowingInstructionRetires(t *testing.T) {
	c, m := newTestCPU(t,
		0xFB, // EI
		0x00, // NOP
		0x00, // NOP
	)
	c.Step(m) // EI
	assert.True(t, c.EIPending)
	assert.False(t, c.Reg.IME())

	c.ApplyDeferred()
	assert.False(t, c.Reg.IME())

	c.Step(m) // NOP
	c.ApplyDeferred()
	assert.True(t, c.Reg.IME())
}

func TestIllegalOpcodeConsumesOneByteNoStateChange(t *testing.T) {
	c, m := newTestCPU(t, 0xD3, 0x00)
	cycles := c.Step(m)
	assert.Equal(t, uint16(0x0101), c.Reg.PC())
	assert.Equal(t, 4, cycles)
}
