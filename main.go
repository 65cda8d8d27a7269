// main.go - entry point: parses flags, wires the machine together, and
// either runs the self-test harness or starts the emulator.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg, err := ParseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	diag := NewDiagnostics(cfg)

	if cfg.RunTests {
		if cfg.TestROMDir == "" {
			fmt.Fprintln(os.Stderr, "--run-tests requires --test-rom-dir")
			os.Exit(1)
		}
		if err := RunSelfTests(cfg.TestROMDir); err != nil {
			diag.System.Error("self test run failed", "err", err)
			os.Exit(1)
		}
		return
	}

	rom, err := os.ReadFile(cfg.ROMPath)
	if err != nil {
		diag.System.Error("failed to load ROM", "path", cfg.ROMPath, "err", err)
		os.Exit(1)
	}

	beeper := NewBeeperQueue(cfg.SampleRate)
	beeper.SetLogger(diag.Beeper)
	bus := NewMachineBus(rom, nil, beeper, diag.System)
	ula := NewULAEngine(bus.Memory())
	bus.ula = ula

	cpu := NewCPU(bus)

	var player *TapePlayer
	var tapeInputPath string
	var tapeInputIsWAV bool
	if tapePath, format := pickTapeInput(cfg); tapePath != "" {
		img, wf, err := loadTape(tapePath, format)
		if err != nil {
			diag.Tape.Error("failed to load tape", "path", tapePath, "err", err)
			os.Exit(1)
		}
		if wf != nil {
			player = NewTapePlayerFromWaveform(wf)
		} else {
			player = NewTapePlayer(img)
		}
		player.Start()
		tapeInputPath = tapePath
		tapeInputIsWAV = format == "wav"
		diag.Tape.Info("loaded tape", "path", tapePath)
	}

	deck := NewTapeDeck(player, tapeInputPath, tapeInputIsWAV, diag.Tape)
	bus.SetTapeDeck(deck)

	var recorder *TapeRecorder
	if cfg.SaveTAPPath != "" {
		recorder = NewTapeRecorder(cfg.SaveTAPPath, false, cfg.AppendTape)
	} else if cfg.SaveWAVPath != "" {
		recorder = NewTapeRecorder(cfg.SaveWAVPath, true, cfg.AppendTape)
	}
	if recorder != nil {
		recorder.SetLogger(diag.Tape)
		deck.SetRecorder(recorder)
		if err := deck.Record(cfg.AppendTape); err != nil {
			diag.Tape.Error("failed to start recording session", "err", err)
			os.Exit(1)
		}
	}

	audio, err := NewOtoPlayer(cfg.SampleRate)
	if err != nil {
		diag.System.Error("failed to initialize audio", "err", err)
		os.Exit(1)
	}
	audio.SetupPlayer(beeper)
	if cfg.AudioDumpPath != "" {
		dump, err := os.Create(cfg.AudioDumpPath)
		if err != nil {
			diag.System.Error("failed to open audio dump file", "path", cfg.AudioDumpPath, "err", err)
			os.Exit(1)
		}
		audio.SetDumpFile(dump)
		defer dump.Close()
	}
	audio.Start()
	defer audio.Close()

	driver := NewFrameDriver(cpu, bus, ula, beeper, deck, diag.System)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
		if err := deck.Stop(); err != nil {
			diag.Tape.Error("failed to finalize recording", "err", err)
		}
	}()

	ula.StartRenderLoop()
	defer ula.StopRenderLoop()

	go driver.Run(ctx)

	display := NewSpectrumDisplay(ula, cfg.Scale)
	if err := display.Run(); err != nil {
		diag.System.Error("display exited", "err", err)
	}
	cancel()
}

// pickTapeInput returns the first configured tape source and its format
// tag ("tap", "tzx", or "wav"), in flag-precedence order.
func pickTapeInput(cfg *Config) (path, format string) {
	switch {
	case cfg.TAPPath != "":
		return cfg.TAPPath, "tap"
	case cfg.TZXPath != "":
		return cfg.TZXPath, "tzx"
	case cfg.WAVPath != "":
		return cfg.WAVPath, "wav"
	default:
		return "", ""
	}
}

func loadTape(path, format string) (*TapeImage, *TapeWaveform, error) {
	switch format {
	case "tap":
		img, err := LoadTAP(path)
		return img, nil, err
	case "tzx":
		img, err := LoadTZX(path)
		return img, nil, err
	case "wav":
		wf, err := LoadWAV(path)
		return nil, wf, err
	default:
		return nil, nil, fmt.Errorf("unrecognized tape format for %s", path)
	}
}
