//go:build headless

package main

import (
	"github.com/charmbracelet/log"

	"godmg/audio"
	"godmg/display"
)

// newBackends returns a nil runWindow: a binary built with -tags
// headless never links ebiten or oto, so there is no window to run
// even if the caller omits -headless at the command line.
func newBackends(_ int, _ *log.Logger) (sink display.Sink, runWindow func(title string) error, snd audio.Sink) {
	return display.NewHeadless(), nil, audio.NewNull()
}
