// Command gone runs a Game Boy ROM: it wires the cartridge loader,
// memory, CPU, PPU, and the display/audio backends into a
// system.Driver, then either drives it headless or hands it to the
// windowed display and the interactive debugger.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"godmg/audio"
	"godmg/cart"
	"godmg/debugger"
	"godmg/display"
	"godmg/system"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		romFlag  = flag.String("rom", "", "path to a ROM image (also accepted as a bare positional argument)")
		headless = flag.Bool("headless", false, "run without a window or debugger TUI, tracing frames to the log instead")
		scale    = flag.Int("scale", 3, "integer pixel scale for the windowed display")
		frames   = flag.Int("frames", 0, "in -headless mode, stop after this many frames (0 runs forever)")
	)
	flag.Parse()

	romPath := *romFlag
	if romPath == "" && flag.NArg() > 0 {
		romPath = flag.Arg(0)
	}
	if romPath == "" {
		fmt.Fprintln(os.Stderr, "usage: gone [-headless] [-scale N] <rom-path>")
		return 2
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	rom, err := cart.Load(romPath)
	if err != nil {
		logger.Error("failed to load ROM", "path", romPath, "err", err)
		return 1
	}
	logger.Info("loaded cartridge", "path", romPath, "bytes", len(rom.Bytes), "checksum", fmt.Sprintf("%08x", rom.Checksum))

	headlessSink := display.NewHeadless()
	sink := display.Sink(headlessSink)
	snd := audio.Sink(audio.NewNull())
	var runWindow func(title string) error

	if !*headless {
		sink, runWindow, snd = newBackends(*scale, logger)
		if runWindow == nil {
			logger.Warn("this binary was built with -tags headless; running headless regardless of flags")
			sink = headlessSink
			*headless = true
		}
	}

	driver := system.New(system.Config{
		ROM:     rom,
		Display: sink,
		Audio:   snd,
		Paced:   !*headless,
	})
	defer func() {
		if err := driver.Close(); err != nil {
			logger.Warn("error closing backends", "err", err)
		}
	}()

	logger.Info("starting machine", "pc", fmt.Sprintf("0x%04x", driver.CPU.Reg.PC()), "boot-paged", driver.Mem.BootPaged())

	if *headless {
		runHeadless(driver, headlessSink, *frames, logger)
		logger.Info("shutting down")
		return 0
	}

	go func() {
		if err := debugger.Run(driver); err != nil {
			logger.Error("debugger exited with error", "err", err)
		}
	}()
	if err := runWindow("gone"); err != nil {
		logger.Error("display closed with error", "err", err)
		return 1
	}
	logger.Info("shutting down")
	return 0
}

// runHeadless drives the machine in chunks of 70224 cycles (the
// console's nominal frame length) without any window or TUI. After each
// chunk it logs the presented-frame count if that count is a multiple
// of 60, and it stops after the first chunk that ends with at least
// limit frames presented, or runs forever if limit is 0.
func runHeadless(d *system.Driver, sink *display.Headless, limit int, logger *log.Logger) {
	for limit == 0 || sink.FrameCount() < uint64(limit) {
		for budget := 0; budget < 70224; {
			cycles, atBreakpoint := d.Tick()
			budget += cycles
			if atBreakpoint {
				logger.Warn("breakpoint hit in headless mode, ignoring", "pc", fmt.Sprintf("0x%04x", d.CPU.Reg.PC()))
				d.Paused = false
			}
		}
		if sink.FrameCount()%60 == 0 {
			logger.Info("frame", "count", sink.FrameCount())
		}
	}
}
