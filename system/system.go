// Package system wires the CPU, memory, and PPU into a running
// machine: it owns the fixed per-tick order the concurrency model
// requires, per-tick clock pacing, and a non-blocking breakpoint channel a
// debugger front end can use to pause and resume the run loop.
package system

import (
	"time"

	"godmg/audio"
	"godmg/cart"
	"godmg/cpu"
	"godmg/display"
	"godmg/mem"
	"godmg/ppu"
)

// BreakpointMsg adds or removes a PC value the driver should stop
// before executing.
type BreakpointMsg struct {
	Add bool
	PC  uint16
}

// Config selects the driver's backends and initial ROM.
type Config struct {
	ROM     *cart.ROM
	Display display.Sink
	Audio   audio.Sink
	// Paced, when true, sleeps between ticks to track the console's
	// real clock rate; tests leave it false to run as fast as possible.
	Paced bool
}

// Driver owns one running machine: its CPU, memory, and PPU, plus the
// breakpoint set a debugger mutates through Breakpoints().
type Driver struct {
	CPU *cpu.CPU
	Mem *mem.Memory
	PPU *ppu.PPU

	display display.Sink
	audio   audio.Sink
	paced   bool

	breakpoints map[uint16]bool
	bpChan      chan BreakpointMsg
	Paused      bool
}

// New builds a Driver from cfg. The cartridge, if any, is copied into
// memory and the CPU starts at the boot ROM entry point (0x0000); the
// boot ROM is the image embedded in package mem, paged in by the
// mem.New call made here.
func New(cfg Config) *Driver {
	m := mem.New()
	if cfg.ROM != nil {
		cfg.ROM.CopyInto(m)
	}

	sink := cfg.Display
	if sink == nil {
		sink = display.NewHeadless()
	}
	snd := cfg.Audio
	if snd == nil {
		snd = audio.NewNull()
	}

	d := &Driver{
		CPU:         cpu.New(m.BootPaged()),
		Mem:         m,
		PPU:         ppu.New(),
		display:     sink,
		audio:       snd,
		paced:       cfg.Paced,
		breakpoints: make(map[uint16]bool),
		bpChan:      make(chan BreakpointMsg, 8),
	}
	m.SetWriteHook(func(addr uint16, v byte) {
		if addr >= uint16(mem.NR10) && addr <= uint16(mem.NR52) || isWaveRAM(addr) {
			d.audio.WriteRegister(addr, v)
		}
	})
	return d
}

func isWaveRAM(addr uint16) bool {
	return addr >= uint16(mem.WaveRAM(0)) && addr <= uint16(mem.WaveRAM(15))
}

// Breakpoints returns the channel a debugger front end sends
// BreakpointMsg values on. Sends never block the debugger; the driver
// drains the channel once per tick.
func (d *Driver) Breakpoints() chan<- BreakpointMsg {
	return d.bpChan
}

// drainBreakpoints applies every pending BreakpointMsg without
// blocking the caller.
func (d *Driver) drainBreakpoints() {
	for {
		select {
		case msg := <-d.bpChan:
			if msg.Add {
				d.breakpoints[msg.PC] = true
			} else {
				delete(d.breakpoints, msg.PC)
			}
		default:
			return
		}
	}
}

// Tick runs exactly one CPU instruction plus its dependent PPU and
// interrupt work, in the fixed order the core requires: CPU.Step
// (decode+execute+interrupt-dispatch, with the boot overlay unpage
// applied first), then PPU.Tick observing the state that step just
// produced, then CPU.ApplyDeferred, which commits an EI/DI edge at the
// end of the tick after the one that armed it. Returns the cycle cost of the
// step, and whether the PC about to execute next is a breakpoint.
func (d *Driver) Tick() (cycles int, atBreakpoint bool) {
	d.drainBreakpoints()

	cycles = d.CPU.Step(d.Mem)
	d.PPU.Tick(d.Mem, cycles, d.display)
	d.CPU.ApplyDeferred()

	return cycles, d.breakpoints[d.CPU.Reg.PC()]
}

// Run drives Tick in a loop until stop is closed or a breakpoint is
// hit, pacing itself to the console's nominal clock when cfg.Paced
// was set.
func (d *Driver) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		cycles, atBreakpoint := d.Tick()
		if atBreakpoint {
			d.Paused = true
			return
		}
		if d.paced {
			time.Sleep(cpu.Tick * time.Duration(cycles))
		}
	}
}

// Close releases the driver's backends.
func (d *Driver) Close() error {
	if err := d.display.Close(); err != nil {
		return err
	}
	return d.audio.Close()
}
