// diagnostics.go - per-subsystem structured loggers, gated by CLI flags.

package main

import (
	"os"

	"github.com/charmbracelet/log"
)

// Diagnostics holds one logger per subsystem so each can be filtered or
// silenced independently, named the way its messages will be tagged.
type Diagnostics struct {
	Tape   *log.Logger
	Beeper *log.Logger
	System *log.Logger
}

// NewDiagnostics builds loggers writing to stderr, setting the tape and
// beeper loggers to Error level (only errors are printed) unless their
// corresponding debug flag was given, in which case they log at Debug level.
func NewDiagnostics(cfg *Config) *Diagnostics {
	base := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})

	tape := base.WithPrefix("tape")
	if !cfg.TapeDebug {
		tape.SetLevel(log.ErrorLevel)
	} else {
		tape.SetLevel(log.DebugLevel)
	}

	beeper := base.WithPrefix("beeper")
	if !cfg.BeeperLog {
		beeper.SetLevel(log.ErrorLevel)
	} else {
		beeper.SetLevel(log.DebugLevel)
	}

	system := base.WithPrefix("system")
	system.SetLevel(log.InfoLevel)

	return &Diagnostics{Tape: tape, Beeper: beeper, System: system}
}
