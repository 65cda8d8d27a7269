// machine_bus.go - glues CPU, ULA, beeper queue, and tape deck onto one
// flat 64KB address space, implementing the Z80Bus contract.

package main

import "github.com/charmbracelet/log"

const romSize = 0x4000

// MachineBus implements Z80Bus for a 48K ZX Spectrum: 16KB ROM (ignores
// writes), 48KB RAM, and port 0xFE decoded to the ULA.
type MachineBus struct {
	mem     [65536]byte
	romSize int

	ula    *ULAEngine
	beeper *BeeperQueue
	deck   *TapeDeck

	frameCycles uint32

	log *log.Logger
}

// NewMachineBus creates a bus with the given ROM image loaded at 0x0000.
// If rom is shorter than 16KB it is zero-padded; if longer, only the
// first 16KB is used.
func NewMachineBus(rom []byte, ula *ULAEngine, beeper *BeeperQueue, logger *log.Logger) *MachineBus {
	b := &MachineBus{
		romSize: romSize,
		ula:     ula,
		beeper:  beeper,
		log:     logger,
	}
	n := copy(b.mem[:romSize], rom)
	_ = n
	return b
}

// Memory exposes the flat address space for the ULA's renderer and the
// self-test harness.
func (b *MachineBus) Memory() *[65536]byte { return &b.mem }

// SetTapeDeck attaches the tape deck so EAR reads reflect playback and MIC
// writes are captured by whatever recorder is currently armed.
func (b *MachineBus) SetTapeDeck(d *TapeDeck) { b.deck = d }

// Read implements Z80Bus.
func (b *MachineBus) Read(addr uint16) byte {
	return b.mem[addr]
}

// Write implements Z80Bus. Writes below romSize are silently ignored,
// matching ROM-protect behavior on real hardware.
func (b *MachineBus) Write(addr uint16, value byte) {
	if int(addr) < b.romSize {
		return
	}
	b.mem[addr] = value
}

// In implements Z80Bus. Any port with bit 0 clear reads the ULA;
// unassigned ports float high (0xFF) as on real hardware with no
// peripherals attached.
func (b *MachineBus) In(port uint16) byte {
	if port&ULAPortMask == 0 {
		v := b.ula.ReadPort(port)
		if b.deck != nil && b.deck.Active() {
			if b.deck.EARLevel() {
				v |= 0x40
			} else {
				v &^= 0x40
			}
		}
		return v
	}
	return 0xFF
}

// Out implements Z80Bus. Any port with bit 0 clear writes the ULA,
// forwarding MIC and beeper edges to the recorder and beeper queue.
func (b *MachineBus) Out(port uint16, value byte) {
	if port&ULAPortMask == 0 {
		_, mic, beep := b.ula.WritePort(value)
		b.beeper.Push(b.frameCycles, beep)
		if b.deck != nil {
			b.deck.Push(b.frameCycles, mic)
		}
	}
}

// Tick implements Z80Bus, advancing the frame-relative cycle counter used
// to timestamp beeper/recorder edges.
func (b *MachineBus) Tick(cycles int) {
	b.frameCycles += uint32(cycles)
}

// EndFrame resets the frame-relative cycle counter for the next frame,
// folding any overrun back so accounting never drifts.
func (b *MachineBus) EndFrame() {
	if b.frameCycles >= TStatesPerFrame {
		overrun := b.frameCycles - TStatesPerFrame
		if b.log != nil && overrun > 0 {
			b.log.Debug("frame cycle overrun", "overrun", overrun)
		}
		b.frameCycles = overrun
	} else {
		b.frameCycles = 0
	}
}

// FrameCycles returns the current frame-relative T-state count.
func (b *MachineBus) FrameCycles() uint32 { return b.frameCycles }

// LoadSnapshotBytes copies raw bytes into RAM starting at addr, used by
// tape fast-loaders and headless test harnesses. Bytes below romSize are
// rejected.
func (b *MachineBus) LoadSnapshotBytes(addr uint16, data []byte) {
	for i, v := range data {
		a := int(addr) + i
		if a >= 65536 {
			break
		}
		if a < b.romSize {
			continue
		}
		b.mem[a] = v
	}
}
