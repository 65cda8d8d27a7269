// beeper.go - beeper/EAR audio pipeline: T-state-timestamped edge queue,
// sample-cursor playback, and a single-pole high-pass filter.

package main

import (
	"sync"

	"github.com/charmbracelet/log"
)

// beeperEdge records a MIC/beeper level change at a given CPU T-state,
// measured from the start of the current frame.
type beeperEdge struct {
	tstate uint32
	level  bool
}

const (
	beeperQueueSize   = 64
	beeperAlpha       = 0.995
	beeperIdleSamples = 512
)

// BeeperQueue accumulates level-change events produced by ULA port writes
// during a frame and turns them into a continuous PCM stream on demand,
// applying a single-pole high-pass filter to remove the DC bias that a
// naive square wave would otherwise carry.
type BeeperQueue struct {
	mu sync.Mutex

	sampleRate      int
	cyclesPerSample float64

	queue    [beeperQueueSize]beeperEdge
	qLen     int
	curLevel bool

	cycleCursor float64
	lastIn      float64
	lastOut     float64
	idleCount   int

	log *log.Logger
}

// SetLogger attaches a diagnostics logger; edge drops and idle-reset
// transitions are reported at debug level when one is set.
func (q *BeeperQueue) SetLogger(l *log.Logger) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.log = l
}

// NewBeeperQueue creates a queue producing samples at sampleRate Hz from
// a 3.5MHz Z80 clock.
func NewBeeperQueue(sampleRate int) *BeeperQueue {
	return &BeeperQueue{
		sampleRate:      sampleRate,
		cyclesPerSample: float64(CPUClockHz) / float64(sampleRate),
	}
}

// Push records a beeper/MIC level change occurring tstate cycles into the
// current frame. Called from the machine bus on every OUT to port 0xFE.
func (q *BeeperQueue) Push(tstate uint32, level bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.qLen >= beeperQueueSize {
		// Drop the oldest pending edge; the level it set is still carried
		// forward by curLevel so no DC information is lost, only timing
		// precision within this frame.
		if q.log != nil {
			q.log.Debug("beeper edge queue full, dropping oldest edge")
		}
		copy(q.queue[:], q.queue[1:])
		q.qLen--
	}
	q.queue[q.qLen] = beeperEdge{tstate: tstate, level: level}
	q.qLen++
}

// EndFrame applies and drops every queued edge at or before the end of a
// TStatesPerFrame-cycle frame, carrying curLevel forward so the next frame
// starts from the correct steady level, then rebases the cycle cursor
// (clamped at 0) and the remaining edges by TStatesPerFrame.
func (q *BeeperQueue) EndFrame() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.applyPassedEdges(float64(TStatesPerFrame))
	q.cycleCursor -= float64(TStatesPerFrame)
	if q.cycleCursor < 0 {
		q.cycleCursor = 0
	}
	for i := range q.qLen {
		q.queue[i].tstate -= TStatesPerFrame
	}
}

// applyPassedEdges must be called with mu held. It updates curLevel to
// reflect every queued edge at or before cycle c, compacting the queue.
func (q *BeeperQueue) applyPassedEdges(c float64) {
	i := 0
	for i < q.qLen && float64(q.queue[i].tstate) <= c {
		q.curLevel = q.queue[i].level
		i++
	}
	if i > 0 {
		copy(q.queue[:], q.queue[i:q.qLen])
		q.qLen -= i
	}
}

// ReadSamples fills out with int16 PCM samples, advancing the internal
// cycle cursor by len(out)*cyclesPerSample T-states and applying the
// high-pass filter to each raw square-wave sample.
func (q *BeeperQueue) ReadSamples(out []int16) {
	q.mu.Lock()
	defer q.mu.Unlock()

	silentRun := true
	for i := range out {
		q.applyPassedEdges(q.cycleCursor)

		var raw float64
		if q.curLevel {
			raw = 1.0
			silentRun = false
		}

		y := raw - q.lastIn + beeperAlpha*q.lastOut
		q.lastIn = raw
		q.lastOut = y

		sample := int16(y * 24000)
		out[i] = sample

		q.cycleCursor += q.cyclesPerSample
	}

	if silentRun {
		q.idleCount += len(out)
		if q.idleCount >= beeperIdleSamples {
			if q.log != nil && (q.lastIn != 0 || q.lastOut != 0) {
				q.log.Debug("beeper filter idle reset", "silent samples", q.idleCount)
			}
			q.lastIn, q.lastOut = 0, 0
		}
	} else {
		q.idleCount = 0
	}
}

// Resync drops all pending edges and resets the filter state, used when
// the frame driver detects the cycle cursor has drifted (e.g. after a
// pause/rewind or a long stall in the host audio callback).
func (q *BeeperQueue) Resync() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.qLen = 0
	q.cycleCursor = 0
	q.lastIn, q.lastOut = 0, 0
	q.idleCount = 0
}
