// Package ppu implements the background-rendering path of the
// handheld's picture processing unit: the scanline/HBlank/VBlank
// timing state machine, background tile map and tile data addressing,
// and BGP palette decoding. Sprite and window rendering are Non-goals.
package ppu

import (
	"godmg/cpu"
	"godmg/display"
	"godmg/mask"
	"godmg/mem"
)

// shades lists the four fixed DMG gray levels a palette index can
// resolve to.
var shades = [4]display.RGBA{
	{R: 0xE0, G: 0xF0, B: 0xE0, A: 0xFF}, // white
	{R: 0x88, G: 0xA0, B: 0x88, A: 0xFF}, // light gray
	{R: 0x48, G: 0x60, B: 0x48, A: 0xFF}, // dark gray
	{R: 0x10, G: 0x18, B: 0x10, A: 0xFF}, // black
}

// rowEntry caches one tile-map lookup for the current group of 8
// scanlines, so only the fine-Y row within each tile needs redoing as
// LY advances.
type rowEntry struct {
	mapOffset uint16
}

// PPU holds the scanline timing state and the small caches the
// background renderer refills every eighth line. LY, LYC, STAT, SCX,
// SCY, BGP, and LCDC themselves live in the shared Memory register
// file; the PPU only caches derived values.
type PPU struct {
	hblankAcc int
	vblankAcc int

	rowBuffer []rowEntry
	bgPalette [4]display.RGBA

	disabled bool
	frame    display.Frame
}

// New returns a PPU with its timing accumulators at rest; the first
// Tick call after reset renders line 0.
func New() *PPU {
	return &PPU{}
}

// Tick advances the PPU by the CPU cycles the instruction that just
// retired cost, or by one rendering/timing step when both
// accumulators are already drained. It returns true on the tick that
// requests the VBlank interrupt (the one that finds LY at 144); the
// request is latched in IF, where the CPU's next interrupt dispatch
// sees it.
func (p *PPU) Tick(m *mem.Memory, cycles int, sink display.Sink) bool {
	if cycles <= 0 {
		cycles = 1
	}

	if p.hblankAcc > 0 {
		p.hblankAcc -= cycles
		if p.hblankAcc < 0 {
			p.hblankAcc = 0
		}
		return false
	}

	if p.vblankAcc > 0 {
		p.vblankAcc--
		ly := m.Register(mem.LY)
		if p.vblankAcc > 0 {
			m.SetRegister(mem.LY, ly+1)
		}
		if p.vblankAcc == 1 {
			sink.Present(p.frame)
		}
		if p.vblankAcc == 0 {
			m.SetRegister(mem.LY, 0)
		}
		return false
	}

	lcdc := m.Register(mem.LCDC)
	if lcdc&0x80 == 0 {
		if !p.disabled {
			sink.Clear()
			p.disabled = true
		}
	} else {
		p.disabled = false
		p.renderScanline(m)
	}

	ly := m.Register(mem.LY)
	if ly == 144 {
		p.vblankAcc = 10
		p.rowBuffer = nil
		cpu.RequestInterrupt(m, cpu.InterruptVBlank)
		return true
	}
	p.hblankAcc = 204
	m.SetRegister(mem.LY, ly+1)
	return false
}

// renderScanline paints the 160 background pixels of the current LY
// into the frame buffer. It uses the corrected hardware tile-map
// addressing formula
//
//	32 * ((SCY+LY)/8 mod 32) + (SCX/8 mod 32)
//
// rather than the simpler-looking 4*SCY + SCX/8 shortcut, which only
// happens to agree with hardware when SCY and SCX are both zero.
func (p *PPU) renderScanline(m *mem.Memory) {
	ly := m.Register(mem.LY)
	if ly >= display.Height {
		return
	}
	lcdc := m.Register(mem.LCDC)
	p.decodePalette(m.Register(mem.BGP))

	tileMapBase := uint16(0x9C00)
	if lcdc&0x08 != 0 {
		tileMapBase = 0x9800
	}
	signedTileData := lcdc&0x10 == 0

	scy := uint16(m.Register(mem.SCY))
	scx := uint16(m.Register(mem.SCX))

	tileRow := ((scy + uint16(ly)) / 8) % 32
	tileCol0 := (scx / 8) % 32

	fineY := (scy + uint16(ly)) % 8

	if p.rowBuffer == nil || fineY == 0 {
		p.rowBuffer = make([]rowEntry, 20)
		for col := 0; col < 20; col++ {
			colOffset := (tileCol0 + uint16(col)) % 32
			p.rowBuffer[col] = rowEntry{mapOffset: 32*tileRow + colOffset}
		}
	}

	for col, entry := range p.rowBuffer {
		tileIndex := m.Read8(tileMapBase + entry.mapOffset)

		var tileDataAddr uint16
		if signedTileData {
			tileDataAddr = uint16(int32(0x9000) + int32(int8(tileIndex))*16)
		} else {
			tileDataAddr = 0x8000 + uint16(tileIndex)*16
		}
		rowAddr := tileDataAddr + fineY*2
		lo := m.Read8(rowAddr)
		hi := m.Read8(rowAddr + 1)

		for bit := 0; bit < 8; bit++ {
			shift := uint(7 - bit)
			loBit := (lo >> shift) & 1
			hiBit := (hi >> shift) & 1
			colorIdx := loBit | hiBit<<1
			px := col*8 + bit
			if px < display.Width {
				p.frame[ly][px] = p.bgPalette[colorIdx]
			}
		}
	}
}

// decodePalette unpacks BGP's four 2-bit shade indices, built on the
// teacher's own mask package rather than hand-rolled shifts: mask's
// byte indices run 1-8 from the MSB, so color 0 (the register's low
// two bits) sits at mask positions 7-8, color 3 at 1-2.
func (p *PPU) decodePalette(bgp byte) {
	p.bgPalette[0] = shades[mask.Range(bgp, mask.I7, mask.I8)]
	p.bgPalette[1] = shades[mask.Range(bgp, mask.I5, mask.I6)]
	p.bgPalette[2] = shades[mask.Range(bgp, mask.I3, mask.I4)]
	p.bgPalette[3] = shades[mask.Range(bgp, mask.I1, mask.I2)]
}
