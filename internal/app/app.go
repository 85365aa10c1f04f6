package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/murmur/internal/audio"
	"github.com/rbright/murmur/internal/catalog"
	"github.com/rbright/murmur/internal/cli"
	"github.com/rbright/murmur/internal/doctor"
	"github.com/rbright/murmur/internal/engine"
	"github.com/rbright/murmur/internal/logging"
	"github.com/rbright/murmur/internal/manager"
	"github.com/rbright/murmur/internal/notify"
	"github.com/rbright/murmur/internal/settings"
	"github.com/rbright/murmur/internal/version"
)

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	// Factory builds recognition engines; nil selects the stub backend.
	Factory engine.Factory
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("murmur"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("murmur"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	loaded, err := settings.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load settings failed", "error", err.Error())
		return 1
	}
	for _, w := range loaded.Warnings {
		fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		logger.Warn("settings warning", "message", w.Message)
	}

	if parsed.Model != "" {
		loaded.Settings.SelectedModel = parsed.Model
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", loaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(loaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandModels:
		return r.commandModels(loaded.Settings)
	case cli.CommandTranscribe:
		return r.commandTranscribe(ctx, parsed, loaded.Settings, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandModels(cfg settings.Settings) int {
	cat, err := catalog.OpenDirectory(cfg.ModelsDir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	models := cat.Models()
	if len(models) == 0 {
		fmt.Fprintln(r.Stdout, "no models in catalog")
		return 1
	}

	for _, model := range models {
		selectedMark := " "
		if model.ID == cfg.SelectedModel {
			selectedMark = "*"
		}
		downloaded := "yes"
		if !model.Downloaded {
			downloaded = "no"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | name=%q | kind=%s | downloaded=%s\n",
			selectedMark,
			model.ID,
			model.Name,
			model.Kind,
			downloaded,
		)
	}

	return 0
}

func (r Runner) commandTranscribe(ctx context.Context, parsed cli.Parsed, cfg settings.Settings, logger *slog.Logger) int {
	decoded, err := readAudioFile(parsed.AudioPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if decoded.SampleRate != engine.SampleRate {
		fmt.Fprintf(r.Stderr, "error: %s: sample rate %d Hz, need %d Hz\n",
			parsed.AudioPath, decoded.SampleRate, engine.SampleRate)
		return 1
	}

	cat, err := catalog.OpenDirectory(cfg.ModelsDir)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	factory := r.Factory
	if factory == nil {
		logger.Warn("no native engine backend built in; using stub engine")
		factory = engine.StubFactory(logger)
	}

	mgr, err := manager.New(manager.Options{
		Logger:   logger,
		Catalog:  cat,
		Settings: settings.Static{Value: cfg},
		Factory:  factory,
		Sink: notify.SinkFunc(func(event notify.Event) {
			logger.Info("model state changed",
				"event", string(event.Type),
				"model_id", event.ModelID,
				"error", event.Error,
			)
		}),
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer mgr.Close()

	if err := mgr.Load(cfg.SelectedModel); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	sessionID := mgr.Reset()
	logger.Info("transcription session started",
		"session_id", sessionID,
		"model", cfg.SelectedModel,
		"samples", len(decoded.Samples),
		"chunk_ms", parsed.ChunkMillis,
	)

	chunkSize := engine.SampleRate * parsed.ChunkMillis / 1000
	chunks := make(chan []float32)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(chunks)
		for _, chunk := range audio.Split(decoded.Samples, chunkSize) {
			select {
			case chunks <- chunk:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	g.Go(func() error {
		for chunk := range chunks {
			text, err := mgr.TranscribeChunk(chunk)
			if err != nil {
				return err
			}
			if text != "" {
				fmt.Fprintln(r.Stdout, text)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	final, err := mgr.Finalize()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if final != "" {
		fmt.Fprintf(r.Stdout, "---\n%s\n", final)
	}

	logger.Info("transcription session finished", "session_id", sessionID, "chars", len(final))
	return 0
}

func readAudioFile(path string) (audio.Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return audio.Decoded{}, fmt.Errorf("open audio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoded, err := audio.DecodeWAV(f)
	if err != nil {
		return audio.Decoded{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return decoded, nil
}
