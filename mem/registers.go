package mem

// Register names a memory-mapped I/O register by its fixed address.
type Register uint16

// Register addresses, ordered as the hardware groups them: joypad and
// serial, timer, interrupt flags, sound, LCD, and the boot-overlay
// control byte.
const (
	P1 Register = 0xFF00 // joypad
	SB Register = 0xFF01 // serial transfer data
	SC Register = 0xFF02 // serial transfer control

	DIV  Register = 0xFF04
	TIMA Register = 0xFF05
	TMA  Register = 0xFF06
	TAC  Register = 0xFF07

	IF Register = 0xFF0F // interrupt flags

	NR10 Register = 0xFF10
	NR11 Register = 0xFF11
	NR12 Register = 0xFF12
	NR13 Register = 0xFF13
	NR14 Register = 0xFF14
	NR21 Register = 0xFF16
	NR22 Register = 0xFF17
	NR23 Register = 0xFF18
	NR24 Register = 0xFF19
	NR30 Register = 0xFF1A
	NR31 Register = 0xFF1B
	NR32 Register = 0xFF1C
	NR33 Register = 0xFF1D
	NR34 Register = 0xFF1E
	NR41 Register = 0xFF20
	NR42 Register = 0xFF21
	NR43 Register = 0xFF22
	NR44 Register = 0xFF23
	NR50 Register = 0xFF24
	NR51 Register = 0xFF25
	NR52 Register = 0xFF26

	LCDC Register = 0xFF40
	STAT Register = 0xFF41
	SCY  Register = 0xFF42
	SCX  Register = 0xFF43
	LY   Register = 0xFF44
	LYC  Register = 0xFF45
	DMA  Register = 0xFF46
	BGP  Register = 0xFF47
	OBP0 Register = 0xFF48
	OBP1 Register = 0xFF49
	WY   Register = 0xFF4A
	WX   Register = 0xFF4B

	BootOff Register = 0xFF50

	IE Register = 0xFFFF
)

// WaveRAM returns the register address of wave-pattern RAM byte i (0..15).
func WaveRAM(i int) Register { return Register(0xFF30 + i) }
