//go:build !headless

// video_backend_ebiten.go - ebiten presentation of the rendered ULA frame
// and PC-keyboard-to-Spectrum-matrix translation.

package main

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// keyMapEntry names one (row, bit) position in the 8x5 keyboard matrix.
type keyMapEntry struct {
	row int
	bit uint8
}

// spectrumKeyMap translates host keys to ZX Spectrum matrix positions.
// Row numbering follows the port-address convention: row N is selected
// by clearing bit N of the port's high byte.
var spectrumKeyMap = map[ebiten.Key]keyMapEntry{
	ebiten.KeyShiftLeft:  {0, 0x01}, // CAPS SHIFT
	ebiten.KeyShiftRight: {0, 0x01},
	ebiten.KeyZ:          {0, 0x02},
	ebiten.KeyX:          {0, 0x04},
	ebiten.KeyC:          {0, 0x08},
	ebiten.KeyV:          {0, 0x10},

	ebiten.KeyA: {1, 0x01},
	ebiten.KeyS: {1, 0x02},
	ebiten.KeyD: {1, 0x04},
	ebiten.KeyF: {1, 0x08},
	ebiten.KeyG: {1, 0x10},

	ebiten.KeyQ: {2, 0x01},
	ebiten.KeyW: {2, 0x02},
	ebiten.KeyE: {2, 0x04},
	ebiten.KeyR: {2, 0x08},
	ebiten.KeyT: {2, 0x10},

	ebiten.Key1: {3, 0x01},
	ebiten.Key2: {3, 0x02},
	ebiten.Key3: {3, 0x04},
	ebiten.Key4: {3, 0x08},
	ebiten.Key5: {3, 0x10},

	ebiten.Key0: {4, 0x01},
	ebiten.Key9: {4, 0x02},
	ebiten.Key8: {4, 0x04},
	ebiten.Key7: {4, 0x08},
	ebiten.Key6: {4, 0x10},

	ebiten.KeyP: {5, 0x01},
	ebiten.KeyO: {5, 0x02},
	ebiten.KeyI: {5, 0x04},
	ebiten.KeyU: {5, 0x08},
	ebiten.KeyY: {5, 0x10},

	ebiten.KeyEnter: {6, 0x01},
	ebiten.KeyL:     {6, 0x02},
	ebiten.KeyK:     {6, 0x04},
	ebiten.KeyJ:     {6, 0x08},
	ebiten.KeyH:     {6, 0x10},

	ebiten.KeySpace:      {7, 0x01},
	ebiten.KeyControlLeft: {7, 0x02}, // SYMBOL SHIFT
	ebiten.KeyM:          {7, 0x04},
	ebiten.KeyN:          {7, 0x08},
	ebiten.KeyB:          {7, 0x10},
}

// SpectrumDisplay presents ULA-rendered frames in an ebiten window and
// drives the ULA's keyboard matrix from host key state every tick.
type SpectrumDisplay struct {
	ula     *ULAEngine
	window  *ebiten.Image
	running bool
	scale   int
}

// NewSpectrumDisplay creates a display bound to the given ULA.
func NewSpectrumDisplay(ula *ULAEngine, scale int) *SpectrumDisplay {
	if scale < 1 {
		scale = 1
	}
	return &SpectrumDisplay{ula: ula, scale: scale}
}

// Run opens the window and blocks until it is closed.
func (d *SpectrumDisplay) Run() error {
	d.running = true
	ebiten.SetWindowSize(ULAFrameWidth*d.scale, ULAFrameHeight*d.scale)
	ebiten.SetWindowTitle("ZX Spectrum 48K")
	ebiten.SetWindowResizable(true)
	return ebiten.RunGame(d)
}

// Update polls host key state and writes it into the ULA's matrix rows.
func (d *SpectrumDisplay) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	var rows [8]uint8
	for i := range rows {
		rows[i] = 0xFF
	}
	for key, pos := range spectrumKeyMap {
		if ebiten.IsKeyPressed(key) {
			rows[pos.row] &^= pos.bit
		}
	}
	for row, bits := range rows {
		d.ula.SetKeyRow(row, bits)
	}

	return nil
}

// Draw blits the ULA's current frame into the window.
func (d *SpectrumDisplay) Draw(screen *ebiten.Image) {
	if d.window == nil {
		d.window = ebiten.NewImage(ULAFrameWidth, ULAFrameHeight)
	}
	frame := d.ula.GetFrame()
	if frame != nil {
		d.window.WritePixels(frame)
	}
	screen.DrawImage(d.window, nil)
}

// Layout fixes the logical screen size to the ULA's frame dimensions.
func (d *SpectrumDisplay) Layout(_, _ int) (int, int) {
	return ULAFrameWidth, ULAFrameHeight
}
