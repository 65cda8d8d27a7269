// config.go - command-line configuration via pflag.

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// Config holds every user-facing knob of the emulator, parsed from the
// command line.
type Config struct {
	ROMPath string

	TAPPath string
	TZXPath string
	WAVPath string

	SaveTAPPath string
	SaveWAVPath string
	AppendTape  bool

	AudioDumpPath string
	BeeperLog     bool
	TapeDebug     bool

	RunTests   bool
	TestROMDir string

	Scale      int
	SampleRate int
}

// ParseConfig parses os.Args[1:] into a Config. The ROM path, if given,
// is the sole positional argument; it defaults to "48.rom".
func ParseConfig(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("spectrum48", pflag.ContinueOnError)

	cfg := &Config{Scale: 2, SampleRate: 44100}

	fs.StringVar(&cfg.TAPPath, "tap", "", "load a .tap tape image")
	fs.StringVar(&cfg.TZXPath, "tzx", "", "load a .tzx tape image")
	fs.StringVar(&cfg.WAVPath, "wav", "", "load a .wav tape recording")
	fs.StringVar(&cfg.SaveTAPPath, "save-tap", "", "record tape output to a .tap file")
	fs.StringVar(&cfg.SaveWAVPath, "save-wav", "", "record tape output to a .wav file")
	fs.BoolVar(&cfg.AppendTape, "append", false, "append to an existing recording instead of truncating it")
	fs.StringVar(&cfg.AudioDumpPath, "audio-dump", "", "write raw beeper PCM samples to a file")
	fs.BoolVar(&cfg.BeeperLog, "beeper-log", false, "log beeper edges and filter state")
	fs.BoolVar(&cfg.TapeDebug, "tape-debug", false, "log tape block and phase transitions")
	fs.BoolVar(&cfg.RunTests, "run-tests", false, "run ZEXDOC/ZEXALL exercisers from --test-rom-dir and exit")
	fs.StringVar(&cfg.TestROMDir, "test-rom-dir", "", "directory containing ZEXDOC.COM/ZEXALL.COM")
	fs.IntVar(&cfg.Scale, "scale", 2, "window scale factor")
	fs.IntVar(&cfg.SampleRate, "sample-rate", 44100, "audio sample rate in Hz")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if !cfg.RunTests {
		romArg := "48.rom"
		if positional := fs.Args(); len(positional) >= 1 {
			romArg = positional[0]
		}
		cfg.ROMPath = resolveROMPath(romArg)
	}

	return cfg, nil
}

// resolveROMPath looks for path relative to the working directory first,
// then relative to the executable's directory, matching how the teacher
// resolves bundled asset paths.
func resolveROMPath(path string) string {
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}
