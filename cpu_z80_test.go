package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// flatBus is a trivial 64KB Z80Bus used for CPU unit tests; it has no
// I/O ports or peripherals wired up.
type flatBus struct {
	mem [65536]byte
}

func (b *flatBus) Read(addr uint16) byte       { return b.mem[addr] }
func (b *flatBus) Write(addr uint16, v byte)   { b.mem[addr] = v }
func (b *flatBus) In(port uint16) byte         { return 0xFF }
func (b *flatBus) Out(port uint16, value byte) {}
func (b *flatBus) Tick(cycles int)             {}

func newTestCPU() (*CPU, *flatBus) {
	bus := &flatBus{}
	return NewCPU(bus), bus
}

func TestLDIRCopiesAllBytesAndClearsBC(t *testing.T) {
	cpu, bus := newTestCPU()
	src := []byte{0x11, 0x22, 0x33, 0x44}
	copy(bus.mem[0x1000:], src)

	cpu.SetHL(0x1000)
	cpu.SetDE(0x2000)
	cpu.SetBC(uint16(len(src)))
	cpu.F = 0
	bus.mem[0x0000] = 0xED
	bus.mem[0x0001] = 0xB0 // LDIR
	cpu.PC = 0x0000

	for cpu.BC() != 0 {
		_, err := cpu.Step()
		require.NoError(t, err)
	}

	require.Equal(t, src, bus.mem[0x2000:0x2000+len(src)])
	require.Equal(t, uint16(0), cpu.BC())
	require.False(t, cpu.Flag(z80FlagPV))
}

func TestLDIRRepeatsUntilBCIsZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 16).Draw(t, "n")
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(rapid.IntRange(0, 255).Draw(t, "byte"))
		}

		cpu, bus := newTestCPU()
		copy(bus.mem[0x1000:], data)
		cpu.SetHL(0x1000)
		cpu.SetDE(0x2000)
		cpu.SetBC(uint16(n))
		bus.mem[0x0000] = 0xED
		bus.mem[0x0001] = 0xB0
		cpu.PC = 0x0000

		for cpu.BC() != 0 {
			_, err := cpu.Step()
			require.NoError(t, err)
		}

		require.Equal(t, data, bus.mem[0x2000:0x2000+n])
	})
}

func TestCPIRStopsOnMatchAndSetsZero(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.mem[0x1000] = 0x10
	bus.mem[0x1001] = 0x20
	bus.mem[0x1002] = 0x30

	cpu.A = 0x20
	cpu.SetHL(0x1000)
	cpu.SetBC(3)
	bus.mem[0x0000] = 0xED
	bus.mem[0x0001] = 0xB1 // CPIR
	cpu.PC = 0x0000

	for i := 0; i < 3; i++ {
		_, err := cpu.Step()
		require.NoError(t, err)
		if cpu.Flag(z80FlagZ) {
			break
		}
	}

	require.True(t, cpu.Flag(z80FlagZ))
	require.Equal(t, uint16(0x1002), cpu.HL())
	require.Equal(t, uint16(1), cpu.BC())
}

func TestCPInstructionLeavesAUnchanged(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.A = 0x40
	bus.mem[0x0000] = 0xFE // CP n
	bus.mem[0x0001] = 0x40
	cpu.PC = 0x0000

	_, err := cpu.Step()
	require.NoError(t, err)

	require.Equal(t, byte(0x40), cpu.A)
	require.True(t, cpu.Flag(z80FlagZ))
}

// TestCPUndocumentedXYFromOperand verifies CP n takes its undocumented
// bit 5/3 flags from the compared operand, not from the (discarded)
// subtraction result.
func TestCPUndocumentedXYFromOperand(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.A = 0x00
	bus.mem[0x0000] = 0xFE
	bus.mem[0x0001] = 0x28 // bits 5 and 3 set in the operand
	cpu.PC = 0x0000

	_, err := cpu.Step()
	require.NoError(t, err)

	require.True(t, cpu.Flag(z80FlagY))
	require.True(t, cpu.Flag(z80FlagX))
}

// TestDDCBIndexedRegisterCopyTakes20TStates verifies the undocumented
// DDCB/FDCB copy-to-register form (reg != 6) costs 20 T-states, not the
// 23 the memory-only form costs.
func TestDDCBIndexedRegisterCopyTakes20TStates(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.IX = 0x2000
	bus.mem[0x2000] = 0x01
	bus.mem[0x0000] = 0xDD
	bus.mem[0x0001] = 0xCB
	bus.mem[0x0002] = 0x00 // displacement 0
	bus.mem[0x0003] = 0x30 // SLL (IX+0),B
	cpu.PC = 0x0000

	n, err := cpu.Step()
	require.NoError(t, err)

	require.Equal(t, 20, n)
	require.Equal(t, byte(0x03), cpu.B)
	require.Equal(t, byte(0x03), bus.mem[0x2000])
}

// TestDDCBIndexedMemoryOnlyTakes23TStates verifies the plain memory-only
// DDCB/FDCB form (reg == 6, no register copy) costs 23 T-states.
func TestDDCBIndexedMemoryOnlyTakes23TStates(t *testing.T) {
	cpu, bus := newTestCPU()
	cpu.IX = 0x2000
	bus.mem[0x2000] = 0x01
	bus.mem[0x0000] = 0xDD
	bus.mem[0x0001] = 0xCB
	bus.mem[0x0002] = 0x00 // displacement 0
	bus.mem[0x0003] = 0x36 // SLL (IX+0)
	cpu.PC = 0x0000

	n, err := cpu.Step()
	require.NoError(t, err)

	require.Equal(t, 23, n)
	require.Equal(t, byte(0x03), bus.mem[0x2000])
}

func TestHaltSetsHaltedState(t *testing.T) {
	cpu, bus := newTestCPU()
	bus.mem[0x0000] = 0x76 // HALT
	cpu.PC = 0x0000

	_, err := cpu.Step()
	require.NoError(t, err)
	require.True(t, cpu.Halted)
}

func TestInterruptNoOpWhenIFF1Clear(t *testing.T) {
	cpu, _ := newTestCPU()
	cpu.IFF1 = false
	cycles := cpu.Interrupt(0xFF)
	require.Equal(t, 0, cycles)
}

func TestInterruptJumpsToIM1Vector(t *testing.T) {
	cpu, _ := newTestCPU()
	cpu.IFF1 = true
	cpu.IM = 1
	cpu.SP = 0xFFFE
	cpu.PC = 0x8000

	cycles := cpu.Interrupt(0xFF)

	require.Equal(t, uint16(0x0038), cpu.PC)
	require.Greater(t, cycles, 0)
}
