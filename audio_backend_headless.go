//go:build headless

// audio_backend_headless.go - no-op audio output for headless/CI builds,
// where no real sound device is available.

package main

import "os"

// OtoPlayer stands in for the oto-backed player under the headless build
// tag, discarding every sample instead of opening a real audio device.
type OtoPlayer struct {
	started bool
	queue   *BeeperQueue
	dump    *os.File
}

// NewOtoPlayer returns a player that discards all audio.
func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

// SetupPlayer attaches the beeper queue; samples are still drained so the
// filter/idle-reset state machine behaves the same as a real run.
func (op *OtoPlayer) SetupPlayer(queue *BeeperQueue) {
	op.queue = queue
}

// SetDumpFile attaches a file every drained PCM sample is written to.
func (op *OtoPlayer) SetDumpFile(f *os.File) {
	op.dump = f
}

// Read drains the beeper queue so its internal state keeps advancing even
// without a real audio device consuming it, optionally mirroring samples
// to a dump file.
func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	if op.queue == nil {
		return len(p), nil
	}
	samples := make([]int16, len(p)/2)
	op.queue.ReadSamples(samples)
	if op.dump != nil {
		buf := make([]byte, len(samples)*2)
		for i, s := range samples {
			buf[2*i] = byte(s)
			buf[2*i+1] = byte(s >> 8)
		}
		op.dump.Write(buf)
	}
	return len(p), nil
}

// Start marks the player as running.
func (op *OtoPlayer) Start() { op.started = true }

// Stop marks the player as paused.
func (op *OtoPlayer) Stop() { op.started = false }

// Close marks the player as stopped.
func (op *OtoPlayer) Close() { op.started = false }

// IsStarted reports whether Start has been called more recently than Stop.
func (op *OtoPlayer) IsStarted() bool { return op.started }
