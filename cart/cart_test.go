package cart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"godmg/mem"
)

func TestReadFromRejectsEmptyImage(t *testing.T) {
	_, err := ReadFrom(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestReadFromComputesChecksum(t *testing.T) {
	rom, err := ReadFrom(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
	require.NoError(t, err)
	assert.Equal(t, uint32(6), rom.Checksum)
}

func TestCopyIntoLoadsBankZero(t *testing.T) {
	data := make([]byte, BankZeroSize+0x100)
	for i := range data {
		data[i] = byte(i)
	}
	rom, err := ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)

	m := mem.New()
	m.Write8(uint16(mem.BootOff), 1)
	m.ApplyBootUnpage()
	rom.CopyInto(m)

	assert.Equal(t, byte(0x34), m.Read8(0x0034))
	assert.Equal(t, BankZeroSize, rom.Size())
}

func TestSizeReflectsShortROMs(t *testing.T) {
	rom, err := ReadFrom(bytes.NewReader([]byte{0xAA, 0xBB}))
	require.NoError(t, err)
	assert.Equal(t, 2, rom.Size())
}
