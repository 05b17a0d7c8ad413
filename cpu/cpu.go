// Package cpu implements the Sharp LR35902, the Z80-derived processor
// at the heart of the console this module emulates.
package cpu

import (
	"time"

	"godmg/mem"
)

// Tick is the nominal wall-clock duration of a single machine cycle at
// the console's 4.194304 MHz clock, mirroring the teacher's own
// package-level Tick constant for the 6502 it started from.
var Tick = time.Second / 4194304

// CPU is the register file plus the small amount of state that
// doesn't fit in a register: the one-instruction-deferred EI/DI
// edges, and the HALT/STOP resting states. It owns no Memory of its
// own; every Step call is handed the shared Memory instance to read
// and mutate, the same arrangement the teacher's 6502 Cpu/Bus pair
// uses.
type CPU struct {
	Reg Registers

	EIPending bool
	DIPending bool
	Halted    bool
	Stopped   bool

	// eiSeen/diSeen record that ApplyDeferred has already run once
	// since the matching pending flag was armed.
	eiSeen bool
	diSeen bool
}

// New returns a CPU in its post-reset state. bootPaged selects whether
// the caller intends to run with the boot overlay active (PC starts
// at 0) or boot directly into the cartridge (PC starts at 0x0100);
// Memory's own boot-paged flag is set independently by mem.New.
func New(bootPaged bool) *CPU {
	c := &CPU{}
	c.Reg.Reset()
	if !bootPaged {
		c.Reg.SetPC(0x0100)
	}
	return c
}

// Step runs one tick's worth of work: HALT-wake check, the pending
// boot-ROM unpage, decode+execute (or an illegal-opcode no-op), then
// interrupt dispatch. It does not advance the PPU or apply deferred
// EI/DI edges — those are the driver's job, run in the fixed order
// the concurrency model requires, so that the PPU always observes the
// register writes the just-retired instruction made and an EI/DI
// requested this tick never takes effect before the following
// instruction retires.
func (c *CPU) Step(m *mem.Memory) int {
	if c.Halted {
		if _, ok := pendingInterrupt(m); ok {
			c.Halted = false
			m.ApplyBootUnpage()
			c.serviceInterrupts(m)
			return 20
		}
		m.ApplyBootUnpage()
		return 4
	}

	m.ApplyBootUnpage()

	inst := Decode(m, &c.Reg)
	cycles := c.Execute(inst, m)

	if serviced, extra := c.serviceInterrupts(m); serviced {
		cycles += extra
	}

	return cycles
}

// ApplyDeferred commits an EI/DI edge at the end of the tick after the
// one whose instruction armed it: the first call after EI/DI (or RETI)
// only notes the pending edge, the second changes IME. Called once per
// tick, after the PPU has observed that tick's register writes, so the
// IME change takes effect only once the following instruction has
// retired.
func (c *CPU) ApplyDeferred() {
	if c.DIPending {
		if c.diSeen {
			c.Reg.SetIME(false)
			c.DIPending = false
		}
		c.diSeen = !c.diSeen
	}
	if c.EIPending {
		if c.eiSeen {
			c.Reg.SetIME(true)
			c.EIPending = false
		}
		c.eiSeen = !c.eiSeen
	}
}
