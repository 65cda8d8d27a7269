// ula_constants.go - ZX Spectrum ULA memory layout, I/O port, and palette constants.

package main

// =============================================================================
// ULA VRAM Layout
// =============================================================================

const (
	// VRAM base address (authentic ZX Spectrum location)
	ULAVRAMBase = 0x4000

	// Bitmap section: 6144 bytes (256x192 pixels, 1 bit per pixel)
	ULABitmapSize = 6144

	// Attribute section offset from VRAM base
	ULAAttrOffset = 0x1800

	// Attribute section: 768 bytes (32x24 cells)
	ULAAttrSize = 768

	// Total VRAM size
	ULAVRAMSize = ULABitmapSize + ULAAttrSize // 6912 bytes
)

// =============================================================================
// ULA Display Dimensions
// =============================================================================

const (
	ULADisplayWidth  = 256
	ULADisplayHeight = 192

	ULACellWidth  = 8
	ULACellHeight = 8
	ULACellsX     = 32 // 256 / 8
	ULACellsY     = 24 // 192 / 8

	// Border size (pixels on each side). The 48K board's border is 48px,
	// not the 32px used by some other machines in this family.
	ULABorderLeft   = 48
	ULABorderRight  = 48
	ULABorderTop    = 48
	ULABorderBottom = 48

	// Total frame dimensions (display + border)
	ULAFrameWidth  = ULADisplayWidth + ULABorderLeft + ULABorderRight   // 352
	ULAFrameHeight = ULADisplayHeight + ULABorderTop + ULABorderBottom // 288
)

// =============================================================================
// ULA Timing Constants
// =============================================================================

const (
	// Flash toggle interval (in frames at 50Hz refresh) -> ~1.6Hz
	ULAFlashFrames = 32

	// T-states per frame at 3.5MHz / 50Hz
	TStatesPerFrame = 69888

	// CPU clock, Hz
	CPUClockHz = 3500000
)

// =============================================================================
// Z80 I/O port (authentic ZX Spectrum)
// =============================================================================

const (
	// Decoded on any port with bit 0 of the low byte clear.
	// Write: bits 0-2 = border color, bit 3 = MIC, bit 4 = EAR/beeper.
	// Read: keyboard matrix row AND (high byte selects rows), bit 6 = EAR in.
	ULAPortMask = 0x01
)

// =============================================================================
// Color Palette
// =============================================================================

// ULAColorNormal holds RGB values for INK/PAPER indices 0-7 when BRIGHT is 0.
var ULAColorNormal = [8][3]uint8{
	{0, 0, 0},       // 0: Black
	{0, 0, 205},     // 1: Blue
	{205, 0, 0},     // 2: Red
	{205, 0, 205},   // 3: Magenta
	{0, 205, 0},     // 4: Green
	{0, 205, 205},   // 5: Cyan
	{205, 205, 0},   // 6: Yellow
	{205, 205, 205}, // 7: White
}

// ULAColorBright holds RGB values for INK/PAPER indices 0-7 when BRIGHT is 1.
var ULAColorBright = [8][3]uint8{
	{0, 0, 0},       // 0: Black (can't brighten)
	{0, 0, 255},     // 1: Bright Blue
	{255, 0, 0},     // 2: Bright Red
	{255, 0, 255},   // 3: Bright Magenta
	{0, 255, 0},     // 4: Bright Green
	{0, 255, 255},   // 5: Bright Cyan
	{255, 255, 0},   // 6: Bright Yellow
	{255, 255, 255}, // 7: Bright White
}
