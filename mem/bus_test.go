package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBootOverlayShadowsLowMemory(t *testing.T) {
	m := New()
	m.Write8(0x00, 0xAA)
	assert.NotEqual(t, byte(0xAA), m.Read8(0x00), "boot overlay should shadow the write while paged in")

	m.Write8(uint16(BootOff), 1)
	assert.NotEqual(t, byte(0xAA), m.Read8(0x00), "write must still be masked until ApplyBootUnpage runs")

	m.ApplyBootUnpage()
	assert.False(t, m.BootPaged())
	assert.Equal(t, byte(0xAA), m.Read8(0x00))
}

func unpage(m *Memory) {
	m.Write8(uint16(BootOff), 1)
	m.ApplyBootUnpage()
}

func TestReadWrite16LittleEndian(t *testing.T) {
	m := New()
	unpage(m)
	m.Write16(0xC000, 0xBEEF)
	assert.Equal(t, byte(0xEF), m.Read8(0xC000))
	assert.Equal(t, byte(0xBE), m.Read8(0xC001))
	assert.Equal(t, uint16(0xBEEF), m.Read16(0xC000))
}

func TestLoadROMTruncatesToBankZero(t *testing.T) {
	m := New()
	rom := make([]byte, 0x8000)
	for i := range rom {
		rom[i] = byte(i)
	}
	m.LoadROM(rom)
	unpage(m)
	assert.Equal(t, byte(0x34), m.Read8(0x0034))
	assert.Equal(t, byte(0), m.Read8(0x4001), "bytes past bank 0 must not be copied")
}

func TestNamedRegisterRoundTrip(t *testing.T) {
	m := New()
	m.SetRegister(LCDC, 0x91)
	assert.Equal(t, byte(0x91), m.Register(LCDC))
	assert.Equal(t, byte(0x91), m.Read8(uint16(LCDC)))
}
