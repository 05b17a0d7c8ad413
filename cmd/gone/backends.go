//go:build !headless

package main

import (
	"github.com/charmbracelet/log"

	"godmg/audio"
	"godmg/display"
)

// newBackends opens the windowed display and the real audio device,
// returning the window's own blocking Run method so main doesn't need
// to reference the concrete display.Ebiten type (which doesn't exist
// at all in a -tags headless build). Built only into the default
// (non-"headless"-tagged) binary; the headless build in
// backends_headless.go never links ebiten or oto.
func newBackends(scale int, logger *log.Logger) (sink display.Sink, runWindow func(title string) error, snd audio.Sink) {
	win := display.NewEbiten(scale)
	snd = audio.Sink(audio.NewNull())
	if o, err := audio.NewOto(44100); err != nil {
		logger.Warn("audio device unavailable, running muted", "err", err)
	} else {
		snd = o
	}
	return win, win.Run, snd
}
