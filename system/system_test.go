package system

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"godmg/audio"
	"godmg/display"
	"godmg/mem"
)

func unpageBoot(d *Driver) {
	d.Mem.Write8(uint16(mem.BootOff), 1)
	d.Mem.ApplyBootUnpage()
}

type recordingAudio struct {
	writes []uint16
}

func (r *recordingAudio) WriteRegister(addr uint16, _ byte) {
	r.writes = append(r.writes, addr)
}
func (r *recordingAudio) Close() error { return nil }

func TestTickRunsCPUThenPPUThenAppliesDeferred(t *testing.T) {
	d := New(Config{Display: display.NewHeadless(), Audio: audio.NewNull()})
	unpageBoot(d)
	d.Mem.Write8(0x0000, 0xFB) // EI
	d.Mem.Write8(0x0001, 0x00) // NOP

	_, _ = d.Tick()
	assert.True(t, d.CPU.EIPending)
	assert.False(t, d.CPU.Reg.IME())

	_, _ = d.Tick()
	assert.True(t, d.CPU.Reg.IME())
}

func TestBreakpointStopsRunBeforeExecutingTargetPC(t *testing.T) {
	d := New(Config{Display: display.NewHeadless(), Audio: audio.NewNull()})
	unpageBoot(d)
	d.Mem.Write8(0x0000, 0x00) // NOP
	d.Mem.Write8(0x0001, 0x00) // NOP
	d.Mem.Write8(0x0002, 0x00) // NOP

	d.Breakpoints() <- BreakpointMsg{Add: true, PC: 0x0002}

	stop := make(chan struct{})
	d.Run(stop)

	assert.True(t, d.Paused)
	assert.Equal(t, uint16(0x0002), d.CPU.Reg.PC())
}

func TestAudioRegisterWritesForwardedToSink(t *testing.T) {
	rec := &recordingAudio{}
	d := New(Config{Display: display.NewHeadless(), Audio: rec})

	d.Mem.Write8(0xFF12, 0xF0) // NR12

	assert.Contains(t, rec.writes, uint16(0xFF12))
}
