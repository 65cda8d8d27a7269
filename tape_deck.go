// tape_deck.go - runtime transport control over the tape subsystem: the
// PLAY/STOP/REWIND/RECORD session state machine a real deck's buttons
// drive, including same-file overdub handling for WAV recordings.

package main

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

type tapeDeckState int

const (
	tapeDeckIdle tapeDeckState = iota
	tapeDeckPlaying
	tapeDeckStopped
	tapeDeckRewound
	tapeDeckRecording
)

// TapeDeck is the single integration point between the machine and the
// tape subsystem: it owns the current playback source and an optional
// recorder, and exposes the transport operations a deck's front panel
// would offer. Binding these to actual key events or on-screen buttons is
// a host-layer concern this type does not address.
type TapeDeck struct {
	mu sync.Mutex

	player   *TapePlayer
	recorder *TapeRecorder

	inputPath  string
	inputIsWAV bool

	state       tapeDeckState
	overdubbing bool
	overdubHead uint64

	log *log.Logger
}

// NewTapeDeck creates a deck around an already-loaded playback source.
// inputPath/inputIsWAV identify the tape that was loaded (if any), used to
// detect the same-file overdub case when Record is later called.
func NewTapeDeck(player *TapePlayer, inputPath string, inputIsWAV bool, logger *log.Logger) *TapeDeck {
	return &TapeDeck{player: player, inputPath: inputPath, inputIsWAV: inputIsWAV, log: logger}
}

// SetRecorder attaches (or replaces) the recorder used by Record/Stop.
func (d *TapeDeck) SetRecorder(r *TapeRecorder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recorder = r
}

// Player returns the current playback source. The returned pointer can
// become stale across a Stop() that reloads a same-file overdub; prefer
// Advance/EARLevel for driving playback from the frame loop.
func (d *TapeDeck) Player() *TapePlayer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.player
}

// Advance steps the current playback source forward by cycles T-states.
func (d *TapeDeck) Advance(cycles uint32) {
	d.mu.Lock()
	p := d.player
	d.mu.Unlock()
	if p != nil {
		p.Advance(cycles)
	}
}

// EARLevel returns the EAR level the current playback source presents.
// With no tape loaded it returns true, matching an idle EAR line's
// pulled-up level.
func (d *TapeDeck) EARLevel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.player == nil {
		return true
	}
	return d.player.EARLevel()
}

// Active reports whether the current playback source is advancing.
func (d *TapeDeck) Active() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.player != nil && d.player.Active()
}

// Push forwards a MIC-line edge to the recorder, if one is armed.
func (d *TapeDeck) Push(t uint32, level bool) {
	d.mu.Lock()
	r := d.recorder
	d.mu.Unlock()
	if r != nil {
		r.Push(t, level)
	}
}

// Play resumes playback from the current position.
func (d *TapeDeck) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil || d.player.waveform == nil || len(d.player.waveform.Pulses) == 0 {
		return fmt.Errorf("tape play: no tape loaded")
	}
	if d.player.Active() {
		return fmt.Errorf("tape play: already playing")
	}
	if d.player.Done() {
		return fmt.Errorf("tape play: tape at end")
	}

	d.player.Resume()
	d.state = tapeDeckPlaying
	if d.log != nil {
		d.log.Info("tape play")
	}
	return nil
}

// Stop halts playback and, if a recording session is in progress, flushes
// it to disk. When the session was a same-file overdub, the playback
// waveform is reloaded from the freshly written file and re-seeked to the
// position recording started from, so the next Play hears the new audio.
func (d *TapeDeck) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

func (d *TapeDeck) stopLocked() error {
	wasPlaying := d.player != nil && d.player.Active()
	if wasPlaying {
		d.player.Pause()
	}

	wasRecording := d.recorder != nil && d.recorder.Armed()
	if wasRecording {
		if err := d.recorder.Finalize(); err != nil {
			return fmt.Errorf("tape stop: %w", err)
		}
		d.recorder.Disarm()

		if d.overdubbing {
			wf, err := LoadWAV(d.recorder.outPath)
			if err != nil {
				return fmt.Errorf("tape stop: reload after record: %w", err)
			}
			d.player = NewTapePlayerFromWaveform(wf)
			d.player.Start()
			d.player.Pause()
			d.player.Seek(d.overdubHead)
		}
		d.overdubbing = false
	}

	d.state = tapeDeckStopped
	if d.log != nil {
		d.log.Info("tape stop", "was_playing", wasPlaying, "was_recording", wasRecording)
	}
	return nil
}

// Rewind stops playback and any recording session, then returns playback
// to the start of the tape.
func (d *TapeDeck) Rewind() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.stopLocked(); err != nil {
		return err
	}
	if d.player != nil {
		d.player.Rewind()
	}
	d.state = tapeDeckRewound
	if d.log != nil {
		d.log.Info("tape rewind")
	}
	return nil
}

// Record arms the recorder and starts a new recording session, pausing
// playback first. If the loaded input tape and the recorder's configured
// output are the same WAV file, this is a same-file overdub: audio up to
// the current playback position is preserved and the rest is replaced by
// what gets recorded from here, rather than appended after it.
func (d *TapeDeck) Record(appendMode bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.recorder == nil {
		if d.inputIsWAV && d.inputPath != "" {
			d.recorder = NewTapeRecorder(d.inputPath, true, appendMode)
		} else {
			return fmt.Errorf("tape record: no output configured")
		}
	}

	if d.player != nil {
		d.player.Pause()
	}

	sameFile := d.recorder.asWAV && d.inputIsWAV && d.inputPath != "" && d.inputPath == d.recorder.outPath
	d.recorder.append = appendMode && !sameFile
	d.overdubbing = sameFile

	if sameFile {
		head := uint64(0)
		if d.player != nil {
			head = d.player.Position()
		}
		d.overdubHead = head
		if err := d.recorder.PrepareOverdub(head); err != nil {
			return fmt.Errorf("tape record: %w", err)
		}
	} else {
		d.recorder.mu.Lock()
		d.recorder.prefixSamples = nil
		d.recorder.mu.Unlock()
	}

	d.recorder.Arm()
	d.state = tapeDeckRecording
	if d.log != nil {
		d.log.Info("tape record", "append", appendMode, "overdub", sameFile)
	}
	return nil
}

// RecordAppend starts a recording session in append mode (Shift+F8 on a
// real deck's keyboard binding).
func (d *TapeDeck) RecordAppend() error {
	return d.Record(true)
}
