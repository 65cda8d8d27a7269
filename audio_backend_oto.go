//go:build !headless

// audio_backend_oto.go - oto/v3 audio output, fed from a BeeperQueue.

package main

import (
	"os"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer drives the host audio device from a BeeperQueue, emitting
// mono 16-bit PCM.
type OtoPlayer struct {
	ctx       *oto.Context
	player    *oto.Player
	queue     atomic.Pointer[BeeperQueue]
	sampleBuf []int16
	started   bool
	mutex     sync.Mutex

	dump *os.File
}

// SetDumpFile attaches a file that every PCM sample played out is also
// written to, for offline inspection of the beeper waveform. Pass nil to
// stop dumping.
func (op *OtoPlayer) SetDumpFile(f *os.File) {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	op.dump = f
}

// NewOtoPlayer opens an oto context at the given sample rate.
func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   0,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	return &OtoPlayer{
		ctx:     ctx,
		started: false,
	}, nil
}

// SetupPlayer attaches the beeper queue this player reads samples from.
func (op *OtoPlayer) SetupPlayer(queue *BeeperQueue) {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	op.queue.Store(queue)
	op.player = op.ctx.NewPlayer(op)
	op.sampleBuf = make([]int16, 2048)
}

// Read implements io.Reader for oto.Player, producing little-endian
// int16 PCM samples pulled from the beeper queue.
func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	q := op.queue.Load()
	if q == nil {
		clear(p)
		return len(p), nil
	}

	numSamples := len(p) / 2
	if len(op.sampleBuf) < numSamples {
		op.sampleBuf = make([]int16, numSamples)
	}
	samples := op.sampleBuf[:numSamples]
	q.ReadSamples(samples)

	n = numSamples * 2
	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:n])

	op.mutex.Lock()
	dump := op.dump
	op.mutex.Unlock()
	if dump != nil {
		dump.Write(p[:n])
	}

	return n, nil
}

// Start begins playback.
func (op *OtoPlayer) Start() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if !op.started && op.player != nil {
		op.player.Play()
		op.started = true
	}
}

// Stop halts playback without releasing the underlying player.
func (op *OtoPlayer) Stop() {
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.started && op.player != nil {
		op.player.Pause()
		op.started = false
	}
}

// Close releases the player.
func (op *OtoPlayer) Close() {
	op.Stop()
	op.mutex.Lock()
	defer op.mutex.Unlock()

	if op.player != nil {
		op.player.Close()
		op.player = nil
	}
}

// IsStarted reports whether playback is currently active.
func (op *OtoPlayer) IsStarted() bool {
	op.mutex.Lock()
	defer op.mutex.Unlock()
	return op.started
}
