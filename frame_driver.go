// frame_driver.go - wall-clock-paced execution loop: steps the CPU,
// drains tape/beeper state, and raises the 50Hz frame interrupt.

package main

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

const maxFrameCatchup = 0.25 // seconds; clamps the accumulator after a stall

// FrameDriver runs the machine in real time, one 69888-T-state frame
// (1/50th of a second) at a time.
type FrameDriver struct {
	cpu    *CPU
	bus    *MachineBus
	ula    *ULAEngine
	beeper *BeeperQueue
	deck   *TapeDeck

	log *log.Logger
}

// NewFrameDriver wires together a CPU, bus, ULA, beeper queue, and
// optional tape deck into one frame-paced loop.
func NewFrameDriver(cpu *CPU, bus *MachineBus, ula *ULAEngine, beeper *BeeperQueue, deck *TapeDeck, logger *log.Logger) *FrameDriver {
	return &FrameDriver{cpu: cpu, bus: bus, ula: ula, beeper: beeper, deck: deck, log: logger}
}

// Run drives frames until ctx is canceled.
func (d *FrameDriver) Run(ctx context.Context) {
	const frameSeconds = 1.0 / 50.0
	accumulator := 0.0
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		now := time.Now()
		elapsed := now.Sub(last).Seconds()
		last = now
		if elapsed > maxFrameCatchup {
			elapsed = maxFrameCatchup
		}
		accumulator += elapsed

		for accumulator >= frameSeconds {
			d.runFrame()
			accumulator -= frameSeconds
		}

		time.Sleep(time.Millisecond)
	}
}

// runFrame steps the CPU for one full frame's worth of T-states, raises
// the frame interrupt, advances the tape player, and signals the ULA.
func (d *FrameDriver) runFrame() {
	var cycles uint32
	for cycles < TStatesPerFrame {
		n, err := d.cpu.Step()
		if err != nil {
			if d.log != nil {
				d.log.Error("cpu step failed", "err", err)
			}
			return
		}
		cycles += uint32(n)
		if d.deck != nil {
			d.deck.Advance(uint32(n))
			d.ula.SetEARIn(d.deck.EARLevel())
		}
	}

	d.cpu.Interrupt(0xFF)
	d.bus.EndFrame()
	d.beeper.EndFrame()
	d.ula.SignalVSync()
}
