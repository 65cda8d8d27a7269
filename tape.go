// tape.go - TAP/TZX/WAV tape image loading, pulse-waveform synthesis,
// playback, and recording.

package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

const (
	tapePilotPulse        = 2168
	tapeSyncFirstPulse    = 667
	tapeSyncSecondPulse   = 735
	tapeBit0Pulse         = 855
	tapeBit1Pulse         = 1710
	tapeHeaderPilotCount  = 8063
	tapeDataPilotCount    = 3223
	tapeSilenceThreshold  = 350000
	tapeDefaultTAPPauseMs = 1000
)

// TapeBlock is one data block of a tape image (a TAP/TZX "standard speed
// data block" payload), with the pause to insert after it.
type TapeBlock struct {
	Data    []byte
	PauseMs uint32
}

// TapeImage is a parsed tape file: an ordered sequence of blocks.
type TapeImage struct {
	Blocks []TapeBlock
}

// LoadTAP parses a TAP file: a sequence of [u16 length][payload] records,
// each becoming one block with the standard 1 second inter-block pause.
func LoadTAP(path string) (*TapeImage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tap %s: %w", path, err)
	}
	img := &TapeImage{}
	pos := 0
	for pos+2 <= len(raw) {
		length := int(binary.LittleEndian.Uint16(raw[pos : pos+2]))
		pos += 2
		if pos+length > len(raw) {
			return nil, fmt.Errorf("load tap %s: truncated block at offset %d", path, pos)
		}
		data := make([]byte, length)
		copy(data, raw[pos:pos+length])
		pos += length
		img.Blocks = append(img.Blocks, TapeBlock{Data: data, PauseMs: tapeDefaultTAPPauseMs})
	}
	return img, nil
}

// LoadTZX parses a TZX file. Only block type 0x10 (standard speed data
// block) is supported; any other block type is a load-time error, as
// this loader makes no attempt at turbo-loader or custom-ROM support.
func LoadTZX(path string) (*TapeImage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tzx %s: %w", path, err)
	}
	if len(raw) < 10 || string(raw[0:7]) != "ZXTape!" {
		return nil, fmt.Errorf("load tzx %s: bad signature", path)
	}
	// Only the first 8 of the 10 header bytes are validated: signature
	// plus the 0x1A end marker. The two version bytes are accepted as-is.
	if raw[7] != 0x1A {
		return nil, fmt.Errorf("load tzx %s: missing end-of-file marker", path)
	}

	img := &TapeImage{}
	pos := 10
	for pos < len(raw) {
		blockType := raw[pos]
		pos++
		switch blockType {
		case 0x10:
			if pos+2 > len(raw) {
				return nil, fmt.Errorf("load tzx %s: truncated pause field", path)
			}
			pauseMs := uint32(binary.LittleEndian.Uint16(raw[pos : pos+2]))
			pos += 2
			if pos+2 > len(raw) {
				return nil, fmt.Errorf("load tzx %s: truncated length field", path)
			}
			length := int(binary.LittleEndian.Uint16(raw[pos : pos+2]))
			pos += 2
			if pos+length > len(raw) {
				return nil, fmt.Errorf("load tzx %s: truncated block data", path)
			}
			data := make([]byte, length)
			copy(data, raw[pos:pos+length])
			pos += length
			img.Blocks = append(img.Blocks, TapeBlock{Data: data, PauseMs: pauseMs})
		default:
			return nil, fmt.Errorf("load tzx %s: unsupported block type 0x%02X", path, blockType)
		}
	}
	return img, nil
}

// TapePulse is one half-cycle of the synthesized EAR waveform.
type TapePulse struct {
	Duration uint32
}

// TapeWaveform is a flattened sequence of level-change pulses with the
// EAR level it starts from.
type TapeWaveform struct {
	Pulses       []TapePulse
	InitialLevel bool
}

// GenerateWaveform expands a tape image's blocks into pilot/sync/data
// pulses. A block's pause is folded into the first pulse of the next
// block, matching how real loaders treat inter-block gaps as silence
// rather than a distinct phase. The last block's pause emits no pulse.
func GenerateWaveform(img *TapeImage) *TapeWaveform {
	wf := &TapeWaveform{InitialLevel: true}
	if img == nil || len(img.Blocks) == 0 {
		return wf
	}

	var pendingSilence uint32
	add := func(duration uint32) {
		if pendingSilence > 0 {
			duration += pendingSilence
			pendingSilence = 0
		}
		wf.Pulses = append(wf.Pulses, TapePulse{Duration: duration})
	}

	for _, block := range img.Blocks {
		pilotCount := tapeDataPilotCount
		if len(block.Data) > 0 && block.Data[0] == 0x00 {
			pilotCount = tapeHeaderPilotCount
		}
		for range pilotCount {
			add(tapePilotPulse)
		}
		add(tapeSyncFirstPulse)
		wf.Pulses = append(wf.Pulses, TapePulse{Duration: tapeSyncSecondPulse})

		for _, b := range block.Data {
			mask := uint8(0x80)
			for range 8 {
				pulse := uint32(tapeBit0Pulse)
				if b&mask != 0 {
					pulse = tapeBit1Pulse
				}
				add(pulse)
				wf.Pulses = append(wf.Pulses, TapePulse{Duration: pulse})
				mask >>= 1
			}
		}

		pendingSilence += pauseToTStates(block.PauseMs)
	}

	return wf
}

func pauseToTStates(pauseMs uint32) uint32 {
	if pauseMs == 0 {
		return 0
	}
	return uint32(float64(pauseMs) / 1000.0 * CPUClockHz)
}

// TapePlayer steps a synthesized waveform forward in lockstep with CPU
// T-states, presenting the current EAR level to the machine bus.
type TapePlayer struct {
	waveform *TapeWaveform
	index    int
	level    bool
	playing  bool

	nextTransition uint64
	elapsed        uint64
}

// NewTapePlayer creates a player over the given tape image.
func NewTapePlayer(img *TapeImage) *TapePlayer {
	return NewTapePlayerFromWaveform(GenerateWaveform(img))
}

// NewTapePlayerFromWaveform creates a player directly over a pre-built
// waveform, used for WAV tapes which are played pulse-for-pulse.
func NewTapePlayerFromWaveform(wf *TapeWaveform) *TapePlayer {
	return &TapePlayer{
		waveform: wf,
		level:    wf.InitialLevel,
	}
}

// Start begins playback from the first pulse.
func (t *TapePlayer) Start() {
	t.index = 0
	t.elapsed = 0
	t.level = t.waveform.InitialLevel
	if len(t.waveform.Pulses) == 0 {
		t.playing = false
		return
	}
	t.nextTransition = uint64(t.waveform.Pulses[0].Duration)
	t.playing = true
}

// Pause halts advancement without losing position.
func (t *TapePlayer) Pause() { t.playing = false }

// Resume continues advancement from the paused position.
func (t *TapePlayer) Resume() {
	if t.index < len(t.waveform.Pulses) {
		t.playing = true
	}
}

// Rewind returns playback to the start of the tape, stopped.
func (t *TapePlayer) Rewind() {
	t.index = 0
	t.elapsed = 0
	t.level = t.waveform.InitialLevel
	if len(t.waveform.Pulses) > 0 {
		t.nextTransition = uint64(t.waveform.Pulses[0].Duration)
	}
	t.playing = false
}

// Active reports whether playback is currently advancing.
func (t *TapePlayer) Active() bool { return t.playing }

// EARLevel returns the current EAR bit presented to the ULA.
func (t *TapePlayer) EARLevel() bool { return t.level }

// Advance moves playback forward by cycles T-states, toggling the EAR
// level at each pulse boundary crossed.
func (t *TapePlayer) Advance(cycles uint32) {
	if !t.playing {
		return
	}
	t.elapsed += uint64(cycles)
	for t.playing && t.elapsed >= t.nextTransition {
		t.index++
		t.level = !t.level
		if t.index >= len(t.waveform.Pulses) {
			t.playing = false
			return
		}
		t.nextTransition += uint64(t.waveform.Pulses[t.index].Duration)
	}
}

// Done reports whether the tape has played past its final pulse.
func (t *TapePlayer) Done() bool {
	return t.index >= len(t.waveform.Pulses)
}

// Position returns the current playback offset in T-states from the start
// of the tape.
func (t *TapePlayer) Position() uint64 { return t.elapsed }

// Seek moves playback to an absolute T-state offset from the start of the
// tape without altering the playing/paused state (except that seeking past
// the final pulse stops playback), used to resume from the same point
// after a same-file overdub rewrites the underlying waveform.
func (t *TapePlayer) Seek(tstates uint64) {
	level := t.waveform.InitialLevel
	var cum uint64
	idx := 0
	for idx < len(t.waveform.Pulses) {
		next := cum + uint64(t.waveform.Pulses[idx].Duration)
		if next > tstates {
			break
		}
		cum = next
		level = !level
		idx++
	}
	t.index = idx
	t.elapsed = tstates
	t.level = level
	if idx < len(t.waveform.Pulses) {
		t.nextTransition = cum + uint64(t.waveform.Pulses[idx].Duration)
	} else {
		t.nextTransition = cum
		t.playing = false
	}
}

// TapeRecorder captures MIC-line edges from the ULA and decodes them
// back into TAP blocks (or raw WAV samples), mirroring the pulse widths
// GenerateWaveform produces.
type TapeRecorder struct {
	mu  sync.Mutex
	log *log.Logger

	outPath string
	asWAV   bool
	append  bool

	// armed gates Push: a recorder only captures edges during an active
	// RECORD session, matching a real deck's transport state machine
	// rather than recording from the moment a path is configured.
	armed bool

	sampleRate    uint32
	prefixSamples []int16

	recording    bool
	lastLevel    bool
	lastEdge     uint64
	elapsed      uint64
	pulseWidths  []uint32
	pilotWidths  []uint32
	bitAcc       uint8
	bitCount     int
	blockBytes   []byte
	blocks       []TapeBlock
	sinceLastOne uint64
}

// NewTapeRecorder creates a recorder writing TAP or WAV output to path.
func NewTapeRecorder(path string, asWAV bool, appendMode bool) *TapeRecorder {
	return &TapeRecorder{outPath: path, asWAV: asWAV, append: appendMode, lastLevel: true, sampleRate: 44100}
}

// SetLogger attaches a diagnostics logger for append/overdub fallbacks.
func (r *TapeRecorder) SetLogger(l *log.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = l
}

// Arm starts a fresh recording session: any previously captured blocks are
// discarded and Push begins accepting edges again.
func (r *TapeRecorder) Arm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = true
	r.recording = false
	r.blocks = nil
	r.blockBytes = nil
	r.pulseWidths = nil
	r.bitAcc, r.bitCount = 0, 0
}

// Disarm ends the current recording session; Push stops accepting edges.
func (r *TapeRecorder) Disarm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = false
}

// Armed reports whether a recording session is currently in progress.
func (r *TapeRecorder) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed
}

// Push records a MIC-line level change at frame-relative T-state t.
// A gap of tapeSilenceThreshold T-states with no edges ends the current
// block, matching real loaders' end-of-block detection. Edges are
// discarded while the recorder is not armed.
func (r *TapeRecorder) Push(t uint32, level bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.armed {
		return
	}
	if !r.recording {
		r.recording = true
		r.lastLevel = level
		r.lastEdge = uint64(t)
		return
	}
	if level == r.lastLevel {
		return
	}
	width := uint64(t) - r.lastEdge
	if width >= tapeSilenceThreshold {
		r.flushBlock()
	} else {
		r.pulseWidths = append(r.pulseWidths, uint32(width))
		r.classifyPulse(uint32(width))
	}
	r.lastLevel = level
	r.lastEdge = uint64(t)
}

// classifyPulse folds two same-length pulses into one decoded bit once
// enough pilot pulses have established the expected bit widths, using
// the pilot run's observed average as the pilot/data threshold.
func (r *TapeRecorder) classifyPulse(width uint32) {
	if len(r.pulseWidths) < 2 {
		return
	}
	a, b := r.pulseWidths[len(r.pulseWidths)-2], r.pulseWidths[len(r.pulseWidths)-1]
	avgPilot := tapePilotPulse
	if width > uint32(avgPilot)+200 || (a > uint32(avgPilot)+200 && b > uint32(avgPilot)+200) {
		return // still inside pilot/sync run
	}
	bit := uint8(0)
	if a > (tapeBit0Pulse+tapeBit1Pulse)/2 {
		bit = 1
	}
	r.bitAcc = r.bitAcc<<1 | bit
	r.bitCount++
	if r.bitCount == 8 {
		r.blockBytes = append(r.blockBytes, r.bitAcc)
		r.bitAcc, r.bitCount = 0, 0
	}
}

func (r *TapeRecorder) flushBlock() {
	if len(r.blockBytes) > 0 {
		r.blocks = append(r.blocks, TapeBlock{Data: r.blockBytes, PauseMs: tapeDefaultTAPPauseMs})
	}
	r.blockBytes = nil
	r.pulseWidths = nil
	r.bitAcc, r.bitCount = 0, 0
}

// Finalize flushes any in-progress block, ends the recording session
// (the recorder is disarmed), and writes the accumulated blocks out as a
// TAP or WAV file.
func (r *TapeRecorder) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushBlock()
	r.armed = false
	if r.asWAV {
		return r.writeWAV()
	}
	return r.writeTAP()
}

func (r *TapeRecorder) writeTAP() error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if r.append {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(r.outPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("write tap %s: %w", r.outPath, err)
	}
	defer f.Close()

	for _, block := range r.blocks {
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(block.Data)))
		if _, err := f.Write(lenBuf[:]); err != nil {
			return fmt.Errorf("write tap %s: %w", r.outPath, err)
		}
		if _, err := f.Write(block.Data); err != nil {
			return fmt.Errorf("write tap %s: %w", r.outPath, err)
		}
	}
	return nil
}

// writeWAV renders the recorded blocks to 16-bit mono PCM and writes them
// out, honoring three distinct sessions: a same-file overdub (prefix
// samples captured by PrepareOverdub are written ahead of the new audio,
// replacing the file outright), a plain append (new samples are written
// after the end of an existing 16-bit mono PCM file's data chunk, with
// the RIFF/data sizes patched in place), and a fresh file otherwise.
func (r *TapeRecorder) writeWAV() error {
	img := &TapeImage{Blocks: r.blocks}
	wf := GenerateWaveform(img)
	newSamples := renderWAVSamples(wf, r.sampleRate)

	if len(r.prefixSamples) > 0 {
		combined := make([]int16, 0, len(r.prefixSamples)+len(newSamples))
		combined = append(combined, r.prefixSamples...)
		combined = append(combined, newSamples...)
		return r.writeWAVFresh(combined)
	}

	if r.append {
		appendAt, existingSize, rate, ok, err := probeWAVForAppend(r.outPath)
		if err != nil {
			if r.log != nil {
				r.log.Warn("tape record append: falling back to a fresh file", "path", r.outPath, "err", err)
			}
		} else if ok {
			if rate > 0 {
				r.sampleRate = rate
			}
			return r.appendWAVSamples(appendAt, existingSize, newSamples)
		}
	}

	return r.writeWAVFresh(newSamples)
}

// renderWAVSamples expands a pulse waveform into constant-sign 16-bit PCM
// sample runs at the given sample rate.
func renderWAVSamples(wf *TapeWaveform, sampleRate uint32) []int16 {
	var samples []int16
	level := wf.InitialLevel
	for _, p := range wf.Pulses {
		n := int(float64(p.Duration) / CPUClockHz * float64(sampleRate))
		v := int16(-16384)
		if level {
			v = 16384
		}
		for range n {
			samples = append(samples, v)
		}
		level = !level
	}
	return samples
}

// probeWAVForAppend validates that path is a canonical 44-byte-header,
// 16-bit mono PCM WAV file and reports where its data chunk ends (the
// append point), the existing data size, and the file's sample rate. A
// missing file is reported as ok=false with a nil error so callers fall
// back to writing a fresh file instead of treating it as a failure.
func probeWAVForAppend(path string) (appendAt, existingSize, sampleRate uint32, ok bool, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, 0, 0, false, nil
		}
		return 0, 0, 0, false, err
	}
	if len(raw) < 44 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" ||
		string(raw[12:16]) != "fmt " || string(raw[36:40]) != "data" {
		return 0, 0, 0, false, fmt.Errorf("not a canonical WAV file")
	}
	audioFormat := binary.LittleEndian.Uint16(raw[20:22])
	channels := binary.LittleEndian.Uint16(raw[22:24])
	bits := binary.LittleEndian.Uint16(raw[34:36])
	if audioFormat != 1 || channels != 1 || bits != 16 {
		return 0, 0, 0, false, fmt.Errorf("existing file must be 16-bit mono PCM")
	}
	rate := binary.LittleEndian.Uint32(raw[24:28])
	size := binary.LittleEndian.Uint32(raw[40:44])
	if size > uint32(len(raw)-44) {
		size = uint32(len(raw) - 44)
	}
	return 44 + size, size, rate, true, nil
}

// appendWAVSamples writes newSamples after an existing data chunk ending
// at appendAt, then patches the RIFF and data chunk sizes to cover the
// combined length.
func (r *TapeRecorder) appendWAVSamples(appendAt, existingSize uint32, newSamples []int16) error {
	f, err := os.OpenFile(r.outPath, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("append wav %s: %w", r.outPath, err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(appendAt), 0); err != nil {
		return fmt.Errorf("append wav %s: %w", r.outPath, err)
	}
	buf := int16SamplesToBytes(newSamples)
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("append wav %s: %w", r.outPath, err)
	}

	newDataSize := existingSize + uint32(len(buf))
	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], 36+newDataSize)
	if _, err := f.WriteAt(sizeBuf[:], 4); err != nil {
		return fmt.Errorf("append wav %s: %w", r.outPath, err)
	}
	binary.LittleEndian.PutUint32(sizeBuf[:], newDataSize)
	if _, err := f.WriteAt(sizeBuf[:], 40); err != nil {
		return fmt.Errorf("append wav %s: %w", r.outPath, err)
	}
	return nil
}

// writeWAVFresh writes samples out as a brand new canonical WAV file,
// truncating whatever was there before.
func (r *TapeRecorder) writeWAVFresh(samples []int16) error {
	f, err := os.OpenFile(r.outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("write wav %s: %w", r.outPath, err)
	}
	defer f.Close()

	buf := int16SamplesToBytes(samples)
	dataSize := uint32(len(buf))
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], r.sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], r.sampleRate*2)
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := f.Write(header); err != nil {
		return fmt.Errorf("write wav %s: %w", r.outPath, err)
	}
	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("write wav %s: %w", r.outPath, err)
	}
	return nil
}

func int16SamplesToBytes(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	return buf
}

// PrepareOverdub arms a same-file overdub session: audio already present
// in the output WAV up to headTStates is preserved as a prefix, and the
// file is rewritten (not appended to) when the session is finalized. Used
// when the loaded input tape and the recorder's output reference the same
// WAV path and playback has progressed to headTStates.
func (r *TapeRecorder) PrepareOverdub(headTStates uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.asWAV {
		return fmt.Errorf("prepare overdub %s: only supported for wav output", r.outPath)
	}

	appendAt, existingSize, rate, ok, err := probeWAVForAppend(r.outPath)
	if err != nil {
		return fmt.Errorf("prepare overdub %s: %w", r.outPath, err)
	}
	if !ok {
		r.prefixSamples = nil
		return nil
	}
	if rate > 0 {
		r.sampleRate = rate
	}

	headSamples := uint64(float64(headTStates) / CPUClockHz * float64(r.sampleRate))
	maxSamples := uint64(existingSize / 2)
	if headSamples > maxSamples {
		headSamples = maxSamples
	}

	raw, err := os.ReadFile(r.outPath)
	if err != nil {
		return fmt.Errorf("prepare overdub %s: %w", r.outPath, err)
	}
	dataStart := appendAt - existingSize
	end := dataStart + uint32(headSamples*2)
	if int(end) > len(raw) {
		end = uint32(len(raw))
	}
	prefixBytes := raw[dataStart:end]
	prefix := make([]int16, len(prefixBytes)/2)
	for i := range prefix {
		prefix[i] = int16(binary.LittleEndian.Uint16(prefixBytes[2*i:]))
	}
	r.prefixSamples = prefix
	return nil
}

// LoadWAV parses a canonical 44-byte-header RIFF/WAVE file (mono 8 or
// 16-bit PCM) by run-length-encoding samples crossing the midline into
// pulses, and returns them directly as a pre-built waveform with no
// block structure (WAV tapes are played back pulse-for-pulse, not
// byte-decoded).
func LoadWAV(path string) (*TapeWaveform, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load wav %s: %w", path, err)
	}
	if len(raw) < 44 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return nil, fmt.Errorf("load wav %s: bad RIFF/WAVE header", path)
	}
	if string(raw[12:16]) != "fmt " {
		return nil, fmt.Errorf("load wav %s: expected fmt chunk at offset 12", path)
	}
	bitsPerSample := binary.LittleEndian.Uint16(raw[34:36])
	sampleRate := binary.LittleEndian.Uint32(raw[24:28])
	if string(raw[36:40]) != "data" {
		return nil, fmt.Errorf("load wav %s: expected data chunk at offset 36", path)
	}
	dataSize := binary.LittleEndian.Uint32(raw[40:44])
	data := raw[44:]
	if uint32(len(data)) > dataSize {
		data = data[:dataSize]
	}

	wf := &TapeWaveform{}
	cyclesPerSample := float64(CPUClockHz) / float64(sampleRate)

	var level bool
	var runSamples uint32
	flush := func() {
		if runSamples == 0 {
			return
		}
		duration := uint32(float64(runSamples) * cyclesPerSample)
		wf.Pulses = append(wf.Pulses, TapePulse{Duration: duration})
		runSamples = 0
	}

	switch bitsPerSample {
	case 8:
		wf.InitialLevel = data[0] >= 0x80
		level = wf.InitialLevel
		for _, s := range data {
			hi := s >= 0x80
			if hi != level {
				flush()
				level = hi
			}
			runSamples++
		}
	case 16:
		if len(data) >= 2 {
			wf.InitialLevel = int16(binary.LittleEndian.Uint16(data[0:2])) >= 0
		}
		level = wf.InitialLevel
		for i := 0; i+2 <= len(data); i += 2 {
			v := int16(binary.LittleEndian.Uint16(data[i : i+2]))
			hi := v >= 0
			if hi != level {
				flush()
				level = hi
			}
			runSamples++
		}
	default:
		return nil, fmt.Errorf("load wav %s: unsupported bits-per-sample %d", path, bitsPerSample)
	}
	flush()

	return wf, nil
}
