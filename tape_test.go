package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTAPFile(t *testing.T, blocks [][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.tap")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	for _, block := range blocks {
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(block)))
		_, err := f.Write(lenBuf[:])
		require.NoError(t, err)
		_, err = f.Write(block)
		require.NoError(t, err)
	}
	return path
}

func TestLoadTAPParsesBlocks(t *testing.T) {
	path := writeTAPFile(t, [][]byte{{0x00, 0x01, 0x02}, {0xFF, 0xAA}})

	img, err := LoadTAP(path)
	require.NoError(t, err)
	require.Len(t, img.Blocks, 2)
	require.Equal(t, []byte{0x00, 0x01, 0x02}, img.Blocks[0].Data)
	require.Equal(t, []byte{0xFF, 0xAA}, img.Blocks[1].Data)
	require.Equal(t, uint32(tapeDefaultTAPPauseMs), img.Blocks[0].PauseMs)
}

func TestGenerateWaveformHeaderBlockUsesLongPilot(t *testing.T) {
	img := &TapeImage{Blocks: []TapeBlock{{Data: []byte{0x00, 0x03}, PauseMs: 0}}}
	wf := GenerateWaveform(img)

	// Header pilot + sync (2) + 2 bytes * 8 bits * 2 pulses each.
	expected := tapeHeaderPilotCount + 2 + 2*8*2
	require.Len(t, wf.Pulses, expected)
	require.Equal(t, uint32(tapePilotPulse), wf.Pulses[0].Duration)
}

func TestGenerateWaveformDataBlockUsesShortPilot(t *testing.T) {
	img := &TapeImage{Blocks: []TapeBlock{{Data: []byte{0x01}, PauseMs: 0}}}
	wf := GenerateWaveform(img)

	expected := tapeDataPilotCount + 2 + 1*8*2
	require.Len(t, wf.Pulses, expected)
}

func TestGenerateWaveformFoldsPauseIntoNextBlockFirstPulse(t *testing.T) {
	img := &TapeImage{Blocks: []TapeBlock{
		{Data: []byte{0x01}, PauseMs: 1000},
		{Data: []byte{0x02}, PauseMs: 0},
	}}
	wf := GenerateWaveform(img)

	firstBlockPulses := tapeDataPilotCount + 2 + 1*8*2
	pauseTStates := pauseToTStates(1000)
	secondBlockFirstPulse := wf.Pulses[firstBlockPulses]

	require.Equal(t, uint32(tapePilotPulse)+pauseTStates, secondBlockFirstPulse.Duration)
}

func TestTapePlayerAdvanceTogglesAtPulseBoundaries(t *testing.T) {
	wf := &TapeWaveform{
		Pulses:       []TapePulse{{Duration: 100}, {Duration: 200}},
		InitialLevel: true,
	}
	player := NewTapePlayerFromWaveform(wf)
	player.Start()

	require.True(t, player.EARLevel())
	player.Advance(50)
	require.True(t, player.EARLevel())
	player.Advance(60) // crosses the 100-cycle boundary
	require.False(t, player.EARLevel())
	player.Advance(200) // crosses the 300-cycle total boundary
	require.True(t, player.Done())
}

func TestTapeRecorderRoundTripsTAP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.tap")
	rec := NewTapeRecorder(path, false, false)
	rec.Arm()

	// Synthesize a tiny block's worth of edges directly.
	img := &TapeImage{Blocks: []TapeBlock{{Data: []byte{0xAA}, PauseMs: 0}}}
	wf := GenerateWaveform(img)

	var t_ uint32
	level := wf.InitialLevel
	rec.Push(t_, level)
	for _, p := range wf.Pulses {
		t_ += p.Duration
		level = !level
		rec.Push(t_, level)
	}

	require.NoError(t, rec.Finalize())
	require.False(t, rec.Armed())

	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestTapeRecorderIgnoresEdgesBeforeArm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unarmed.tap")
	rec := NewTapeRecorder(path, false, false)

	rec.Push(0, true)
	rec.Push(1000, false)
	require.NoError(t, rec.Finalize())

	img, err := LoadTAP(path)
	require.NoError(t, err)
	require.Empty(t, img.Blocks)
}

func TestTapeRecorderWAVAppendPreservesExistingAudio(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	first := NewTapeRecorder(path, true, false)
	first.Arm()
	pushBlockEdges(first, []byte{0xAA})
	require.NoError(t, first.Finalize())

	firstSize := fileSize(t, path)

	second := NewTapeRecorder(path, true, true)
	second.Arm()
	pushBlockEdges(second, []byte{0x55})
	require.NoError(t, second.Finalize())

	secondSize := fileSize(t, path)
	require.Greater(t, secondSize, firstSize)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	dataSize := binary.LittleEndian.Uint32(raw[40:44])
	require.EqualValues(t, len(raw)-44, dataSize)
}

func pushBlockEdges(rec *TapeRecorder, data []byte) {
	img := &TapeImage{Blocks: []TapeBlock{{Data: data, PauseMs: 0}}}
	wf := GenerateWaveform(img)

	var t_ uint32
	level := wf.InitialLevel
	rec.Push(t_, level)
	for _, p := range wf.Pulses {
		t_ += p.Duration
		level = !level
		rec.Push(t_, level)
	}
}

func fileSize(t *testing.T, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	return info.Size()
}

func TestLoadWAV8BitRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	samples := []byte{0xFF, 0xFF, 0xFF, 0x00, 0x00, 0xFF}
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(samples)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], 44100)
	binary.LittleEndian.PutUint32(header[28:32], 44100)
	binary.LittleEndian.PutUint16(header[32:34], 1)
	binary.LittleEndian.PutUint16(header[34:36], 8)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(samples)))
	_, err = f.Write(header)
	require.NoError(t, err)
	_, err = f.Write(samples)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	wf, err := LoadWAV(path)
	require.NoError(t, err)
	require.True(t, wf.InitialLevel)
	require.Len(t, wf.Pulses, 3) // 3 samples high, 2 low, 1 high
}
