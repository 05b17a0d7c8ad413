package cpu

import "godmg/mem"

// Interrupt sources, in fixed priority order (highest first). The bit
// position doubles as the bit tested in IE/IF.
const (
	InterruptVBlank = iota
	InterruptLCDStat
	InterruptTimer
	InterruptSerial
	InterruptJoypad
)

// vectorTable maps an interrupt bit to its fixed dispatch address.
var vectorTable = [5]uint16{
	InterruptVBlank:  0x0040,
	InterruptLCDStat: 0x0048,
	InterruptTimer:   0x0050,
	InterruptSerial:  0x0058,
	InterruptJoypad:  0x0060,
}

// RequestInterrupt sets the request bit for source in IF, the only
// write path external callers (the PPU, a future timer) should use;
// the controller itself is the only thing that ever clears a bit.
func RequestInterrupt(m *mem.Memory, source int) {
	m.SetRegister(mem.IF, m.Register(mem.IF)|1<<uint(source))
}

// pendingInterrupt reports the lowest-numbered (highest-priority)
// interrupt bit that is both requested (IF) and enabled (IE), or ok
// false if none is.
func pendingInterrupt(m *mem.Memory) (bit int, ok bool) {
	pending := m.Register(mem.IF) & m.Register(mem.IE) & 0x1F
	if pending == 0 {
		return 0, false
	}
	for i := 0; i < 5; i++ {
		if pending&(1<<uint(i)) != 0 {
			return i, true
		}
	}
	return 0, false
}

// serviceInterrupts resolves interrupt priority and, if IME is set and
// some enabled interrupt is pending, dispatches it: clears IME, clears
// the one serviced bit in IF (every other pending bit is left alone),
// pushes PC, and jumps to the fixed vector. Returns whether an
// interrupt was serviced and its fixed 20-cycle cost.
func (c *CPU) serviceInterrupts(m *mem.Memory) (serviced bool, cycles int) {
	if !c.Reg.IME() {
		return false, 0
	}
	bit, ok := pendingInterrupt(m)
	if !ok {
		return false, 0
	}
	m.SetRegister(mem.IF, m.Register(mem.IF)&^(1<<uint(bit)))
	c.Reg.SetIME(false)
	c.push(m, c.Reg.PC())
	c.Reg.SetPC(vectorTable[bit])
	return true, 20
}
