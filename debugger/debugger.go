// Package debugger is an interactive Bubble Tea front end onto a
// running system.Driver: a memory page table, the register/flag
// view, the next instruction to be decoded, and single-step and
// breakpoint controls. The machine advances only on a single-step key;
// "r" flips the model's running flag, which nothing else reads.
package debugger

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"godmg/cpu"
	"godmg/system"
)

type model struct {
	driver *system.Driver
	offset uint16 // page table scroll position

	prevPC  uint16
	running bool
	err     error
}

// New returns a model ready to run against driver, with the page
// table initially scrolled to the CPU's current PC.
func New(driver *system.Driver) model {
	return model{driver: driver, offset: driver.CPU.Reg.PC() &^ 0xF}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit

		case " ", "j", "s":
			m.prevPC = m.driver.CPU.Reg.PC()
			m.driver.Tick()

		case "r":
			m.running = !m.running

		case "b":
			m.driver.Breakpoints() <- system.BreakpointMsg{Add: true, PC: m.driver.CPU.Reg.PC()}

		case "up", "k":
			if m.offset >= 16 {
				m.offset -= 16
			}

		case "down":
			m.offset += 16
		}
	}
	return m, nil
}

// renderPage renders a single 16-byte memory row as a line, with the
// current PC's byte bracketed.
func (m model) renderPage(start uint16) string {
	s := fmt.Sprintf("%04x | ", start)
	for i := 0; i < 16; i++ {
		addr := start + uint16(i)
		b := m.driver.Mem.Read8(addr)
		if addr == m.driver.CPU.Reg.PC() {
			s += fmt.Sprintf("[%02x] ", b)
		} else {
			s += fmt.Sprintf(" %02x  ", b)
		}
	}
	return s
}

func (m model) pageTable() string {
	header := "addr | "
	for b := 0; b < 16; b++ {
		header += fmt.Sprintf("  %01x  ", b)
	}
	rows := []string{header}
	for i := 0; i < 8; i++ {
		rows = append(rows, m.renderPage(m.offset+uint16(i*16)))
	}
	return strings.Join(rows, "\n")
}

func (m model) status() string {
	reg := &m.driver.CPU.Reg
	var flags string
	for _, f := range []bool{
		reg.Flag(cpu.FlagZero),
		reg.Flag(cpu.FlagSub),
		reg.Flag(cpu.FlagHalfCarry),
		reg.Flag(cpu.FlagCarry),
	} {
		if f {
			flags += "/ "
		} else {
			flags += "  "
		}
	}
	return fmt.Sprintf(`
PC: %04x (%04x)
SP: %04x
 A: %02x   F: %02x
 B: %02x   C: %02x
 D: %02x   E: %02x
 H: %02x   L: %02x
IME: %v
Z N H C
%s`,
		reg.PC(), m.prevPC,
		reg.SP(),
		reg.Read8(cpu.A), reg.Read8(cpu.F),
		reg.Read8(cpu.B), reg.Read8(cpu.C),
		reg.Read8(cpu.D), reg.Read8(cpu.E),
		reg.Read8(cpu.H), reg.Read8(cpu.L),
		reg.IME(),
		flags,
	)
}

func (m model) View() string {
	pc := m.driver.CPU.Reg.PC()
	next := cpu.Decode(m.driver.Mem, &m.driver.CPU.Reg)
	m.driver.CPU.Reg.SetPC(pc) // Decode peeked ahead; undo the PC advance

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			m.pageTable(),
			m.status(),
		),
		"",
		spew.Sdump(next),
	)
}

// Run starts the interactive TUI against driver and blocks until the
// user quits.
func Run(driver *system.Driver) error {
	_, err := tea.NewProgram(New(driver)).Run()
	return err
}
