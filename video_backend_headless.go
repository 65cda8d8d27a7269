//go:build headless

// video_backend_headless.go - no-op display for headless/self-test runs.

package main

import (
	"sync/atomic"
	"time"
)

// SpectrumDisplay is a no-op stand-in for the ebiten window, used by
// the headless build tag (self-test runs, CI) where no display server
// is available. It still drains the ULA's triple buffer at roughly the
// real refresh rate so GetFrame's swap doesn't stall behind an unread
// buffer during headless runs.
type SpectrumDisplay struct {
	ula        *ULAEngine
	frameCount atomic.Uint64
}

// NewSpectrumDisplay creates a headless display bound to the given ULA.
func NewSpectrumDisplay(ula *ULAEngine, scale int) *SpectrumDisplay {
	return &SpectrumDisplay{ula: ula}
}

// Run drains frames from the ULA at 50Hz without presenting them and
// never returns (headless builds have no window to close).
func (d *SpectrumDisplay) Run() error {
	ticker := time.NewTicker(time.Second / 50)
	defer ticker.Stop()
	for range ticker.C {
		d.ula.GetFrame()
		d.frameCount.Add(1)
	}
	return nil
}
