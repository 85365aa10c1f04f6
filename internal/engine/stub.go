package engine

import (
	"fmt"
	"log/slog"
)

// Stub is a deterministic Engine used by tests and stub-mode runs.
// It reports received sample counts instead of recognizing speech.
type Stub struct {
	log          *slog.Logger
	chunks       int
	totalSamples int
	closed       bool
}

// NewStub returns an Engine that generates placeholder transcripts.
func NewStub(logger *slog.Logger) *Stub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stub{log: logger.With("component", "engine.stub")}
}

// ProcessChunk implements the Engine interface.
func (s *Stub) ProcessChunk(samples []float32, final bool) (string, error) {
	if s.closed {
		return "", fmt.Errorf("stub engine is closed")
	}
	if len(samples) == 0 {
		return "", nil
	}
	s.chunks++
	s.totalSamples += len(samples)
	s.log.Debug("stub chunk", "samples", len(samples), "final", final)
	if final {
		text := fmt.Sprintf("[stub] %d samples across %d chunks", s.totalSamples, s.chunks)
		s.chunks = 0
		s.totalSamples = 0
		return text, nil
	}
	return fmt.Sprintf("[stub] chunk %d", s.chunks), nil
}

// Close implements the Engine interface.
func (s *Stub) Close() error {
	s.closed = true
	return nil
}

// StubFactory adapts NewStub to the Factory signature, ignoring the path.
func StubFactory(logger *slog.Logger) Factory {
	return func(string, LoadOptions) (Engine, error) {
		return NewStub(logger), nil
	}
}
