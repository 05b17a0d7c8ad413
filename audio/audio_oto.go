//go:build !headless

package audio

import (
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Oto is a Sink backed by github.com/ebitengine/oto/v3. Synthesizing
// the four DMG sound channels from register writes is out of scope
// here; Oto exists to prove the register stream reaches a live audio
// device, so it keeps an open silent stream and records the last
// value written to each register for a debugger to inspect.
type Oto struct {
	mu   sync.Mutex
	regs [0x30]byte

	ctx    *oto.Context
	player *oto.Player
}

// silence is an io.Reader that always returns zeroed float32 samples.
type silence struct{}

func (silence) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

// NewOto opens an audio device at the given sample rate and starts a
// silent stream playing on it.
func NewOto(sampleRate int) (*Oto, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	o := &Oto{ctx: ctx}
	o.player = ctx.NewPlayer(silence{})
	o.player.Play()
	return o, nil
}

func (o *Oto) WriteRegister(addr uint16, value byte) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if addr >= 0xFF10 && int(addr-0xFF10) < len(o.regs) {
		o.regs[addr-0xFF10] = value
	}
}

func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.player != nil {
		return o.player.Close()
	}
	return nil
}
