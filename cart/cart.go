// Package cart loads cartridge ROM images and copies them into the
// console's address space at reset.
package cart

import (
	"fmt"
	"io"
	"os"

	"godmg/mem"
)

// BankZeroSize is the number of bytes this core loads into the fixed
// cartridge bank at address 0x0000. Bank switching is out of scope; a
// larger ROM is simply truncated to its first bank.
const BankZeroSize = 0x4000

// ROM is a loaded cartridge image.
type ROM struct {
	Bytes    []byte
	Checksum uint32
}

// Load reads a ROM image from path.
func Load(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cart: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrom(f)
}

// ReadFrom builds a ROM from any reader, e.g. an embedded test fixture.
func ReadFrom(r io.Reader) (*ROM, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("cart: read: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("cart: empty ROM image")
	}
	var sum uint32
	for _, b := range data {
		sum += uint32(b)
	}
	return &ROM{Bytes: data, Checksum: sum}, nil
}

// CopyInto loads the ROM's first bank into m. It touches no CPU state
// and leaves m's boot overlay as it was.
func (r *ROM) CopyInto(m *mem.Memory) {
	m.LoadROM(r.Bytes)
}

// Size reports the number of bytes actually present in the bank-zero
// window, which may be smaller than BankZeroSize for a short test ROM.
func (r *ROM) Size() int {
	if len(r.Bytes) > BankZeroSize {
		return BankZeroSize
	}
	return len(r.Bytes)
}
