// Package mem implements the flat 64KiB address space shared by the CPU
// and PPU: a single byte array, a boot-ROM overlay over the first 256
// bytes, and named accessors for the memory-mapped I/O registers.
package mem

import _ "embed"

// bootROM is the embedded bootrom.bin file: synthetic placeholder data
// used to exercise the boot-ROM overlay, not a dump of any real
// console's boot program.
//
//go:embed bootrom.bin
var bootROM []byte

// bootImage is the 256-byte overlay served below 0x100: the first 256
// bytes of bootROM.
var bootImage = func() (img [256]byte) {
	copy(img[:], bootROM)
	return img
}()

// Memory is the console's flat address space. There is no bank switching
// and no mirroring: every address indexes directly into data.
type Memory struct {
	data              [64 * 1024]byte
	bootPaged         bool
	bootUnpagePending bool

	// writeHook, if set, is called after every Write8 with the address
	// and value written. The APU register range (NR10-NR52, wave RAM)
	// is the only consumer today; it lets the driver forward those
	// writes to an audio.Sink without Memory importing anything
	// above it.
	writeHook func(addr uint16, v byte)
}

// New returns a Memory with the boot overlay paged in, matching the
// console's reset state.
func New() *Memory {
	return &Memory{bootPaged: true}
}

// Read8 returns the byte at addr. While the boot overlay is paged in,
// addresses below 0x100 are served from the boot image instead of the
// underlying array.
func (m *Memory) Read8(addr uint16) byte {
	if m.bootPaged && addr < 0x100 {
		return bootImage[addr]
	}
	return m.data[addr]
}

// Write8 stores v at addr. A write of 1 to the boot-unpage register
// (0xFF50) is latched and takes effect on the next ApplyBootUnpage call,
// so an instruction that both writes 0xFF50 and reads low memory in the
// same step still sees the overlay it expected.
func (m *Memory) Write8(addr uint16, v byte) {
	m.data[addr] = v
	if addr == uint16(BootOff) && v == 1 {
		m.bootUnpagePending = true
	}
	if m.writeHook != nil {
		m.writeHook(addr, v)
	}
}

// SetWriteHook installs fn to be called after every Write8. Passing
// nil removes it.
func (m *Memory) SetWriteHook(fn func(addr uint16, v byte)) {
	m.writeHook = fn
}

// Read16 reads a little-endian 16-bit value starting at addr.
func (m *Memory) Read16(addr uint16) uint16 {
	lo := m.Read8(addr)
	hi := m.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

// Write16 stores a little-endian 16-bit value starting at addr.
func (m *Memory) Write16(addr uint16, v uint16) {
	m.Write8(addr, byte(v))
	m.Write8(addr+1, byte(v>>8))
}

// ApplyBootUnpage commits a pending write to the boot-unpage register.
// The CPU driver calls this once per tick, after the instruction that
// may have triggered it has fully retired.
func (m *Memory) ApplyBootUnpage() {
	if m.bootUnpagePending {
		m.bootPaged = false
		m.bootUnpagePending = false
	}
}

// BootPaged reports whether the boot overlay is currently active.
func (m *Memory) BootPaged() bool { return m.bootPaged }

// LoadROM copies up to the first 0x4000 bytes of rom into bank 0.
func (m *Memory) LoadROM(rom []byte) {
	n := len(rom)
	if n > 0x4000 {
		n = 0x4000
	}
	copy(m.data[0:n], rom[:n])
}

// Register reads a named I/O register.
func (m *Memory) Register(reg Register) byte { return m.Read8(uint16(reg)) }

// SetRegister writes a named I/O register.
func (m *Memory) SetRegister(reg Register, v byte) { m.Write8(uint16(reg), v) }
