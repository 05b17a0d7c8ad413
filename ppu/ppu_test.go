package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"godmg/display"
	"godmg/mem"
)

func TestLYAdvancesThroughEveryScanlineOnceBeforeWrapping(t *testing.T) {
	p := New()
	m := mem.New()
	sink := display.NewHeadless()
	m.SetRegister(mem.LCDC, 0x91) // LCD on, background on

	seen := map[byte]bool{}
	for i := 0; i < 200000; i++ {
		seen[m.Register(mem.LY)] = true
		p.Tick(m, 4, sink)
		if m.Register(mem.LY) == 0 && len(seen) == 154 {
			break
		}
	}
	assert.Len(t, seen, 154)
	for ly := 0; ly < 154; ly++ {
		assert.True(t, seen[byte(ly)], "LY=%d should have been observed", ly)
	}
}

func TestVBlankRaisedWhenLYReaches144(t *testing.T) {
	p := New()
	m := mem.New()
	sink := display.NewHeadless()
	m.SetRegister(mem.LCDC, 0x91)

	raised := false
	for i := 0; i < 100000 && !raised; i++ {
		raised = p.Tick(m, 4, sink)
	}
	assert.True(t, raised)
	assert.Equal(t, byte(0x01), m.Register(mem.IF)&0x01)
}

func TestFramePresentedOnceDuringVBlank(t *testing.T) {
	p := New()
	m := mem.New()
	sink := display.NewHeadless()
	m.SetRegister(mem.LCDC, 0x91)

	for i := 0; i < 200000; i++ {
		p.Tick(m, 4, sink)
		if sink.FrameCount() > 0 {
			break
		}
	}
	assert.Equal(t, uint64(1), sink.FrameCount())
}

func TestDisabledLCDClearsSinkOnceAndStopsRendering(t *testing.T) {
	p := New()
	m := mem.New()
	sink := display.NewHeadless()
	m.SetRegister(mem.LCDC, 0x00)

	for i := 0; i < 10; i++ {
		p.Tick(m, 4, sink)
	}
	assert.True(t, p.disabled)
}
