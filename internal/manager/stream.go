package manager

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rbright/murmur/internal/audio"
	"github.com/rbright/murmur/internal/engine"
	"github.com/rbright/murmur/internal/settings"
	"github.com/rbright/murmur/internal/transcript"
	"github.com/rbright/murmur/internal/words"
)

// The finalize flush feeds a few short silence frames with final=true;
// 2560 samples is 160 ms at 16 kHz.
const (
	flushFrames       = 3
	flushFrameSamples = 2560
)

// Reset clears the accumulation buffer for a new recording session and
// returns the new session's correlation ID.
func (m *Manager) Reset() string {
	m.accumMu.Lock()
	defer m.accumMu.Unlock()
	m.accum = ""
	m.sessionID = uuid.NewString()
	m.logger.Debug("streaming session reset", "session_id", m.sessionID)
	return m.sessionID
}

// AccumulatedText returns the text accumulated so far in the current session.
func (m *Manager) AccumulatedText() string {
	m.accumMu.Lock()
	defer m.accumMu.Unlock()
	return m.accum
}

// TranscribeChunk feeds one chunk of 16 kHz mono samples through the
// resident engine and returns the chunk-level text after marker stripping
// and custom-word correction. Non-empty results are appended to the session
// accumulation. An empty chunk short-circuits without touching the engine
// or the buffer. Callers arriving during a background load block until the
// load resolves, then either transcribe or fail with ErrModelNotLoaded.
func (m *Manager) TranscribeChunk(samples []float32) (string, error) {
	m.lastActivity.Store(time.Now().UnixMilli())

	if len(samples) == 0 {
		return "", nil
	}

	m.awaitLoad()

	raw, err := m.withEngine(func(eng engine.Engine) (string, error) {
		return eng.ProcessChunk(samples, false)
	})
	if err != nil {
		return "", err
	}

	cleaned := transcript.StripMarkers(raw)
	cfg := m.settings.Settings()
	corrected := cleaned
	if len(cfg.CustomWords) > 0 {
		corrected = strings.TrimSpace(words.Correct(cleaned, cfg.CustomWords, cfg.WordThreshold))
	}

	if corrected != "" {
		m.accumMu.Lock()
		m.accum = transcript.Join(m.accum, corrected)
		m.accumMu.Unlock()
	}
	return corrected, nil
}

// Finalize drains the session accumulation, or when the session produced no
// text, flushes the engine's internal buffer with silence frames to recover
// speech that never crossed an utterance boundary. Under the immediately
// policy the engine is unloaded after the result is computed; that unload
// never fails the call.
func (m *Manager) Finalize() (string, error) {
	start := time.Now()

	if !m.IsLoaded() {
		return "", ErrModelNotLoaded
	}

	m.accumMu.Lock()
	result := m.accum
	m.accum = ""
	sessionID := m.sessionID
	m.accumMu.Unlock()

	if result == "" {
		m.logger.Debug("no accumulated text, flushing engine buffer", "session_id", sessionID)
		flushed, err := m.withEngine(func(eng engine.Engine) (string, error) {
			var text strings.Builder
			silence := audio.Silence(flushFrameSamples)
			for i := 0; i < flushFrames; i++ {
				emitted, err := eng.ProcessChunk(silence, true)
				if err != nil {
					return "", err
				}
				text.WriteString(emitted)
			}
			return text.String(), nil
		})
		if err != nil {
			return "", err
		}
		result = flushed
	}

	cfg := m.settings.Settings()
	if len(cfg.CustomWords) > 0 {
		result = words.Correct(result, cfg.CustomWords, cfg.WordThreshold)
	}
	result = strings.TrimSpace(result)

	m.logger.Info("finalize complete",
		"session_id", sessionID,
		"took_ms", time.Since(start).Milliseconds(),
		"chars", len(result),
	)

	if cfg.Unload.Kind == settings.PolicyImmediately {
		if err := m.Unload(); err != nil {
			m.logger.Error("immediate unload after finalize failed", "error", err)
		}
	}
	return result, nil
}
