package manager

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rbright/murmur/internal/notify"
	"github.com/rbright/murmur/internal/settings"
)

func loadedManager(t *testing.T, eng *fakeEngine, opts Options) *Manager {
	t.Helper()
	opts.Factory = fixedFactory(eng, nil, nil)
	m := newTestManager(t, opts)
	if err := m.Load("parakeet-ok"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestTranscribeChunkAccumulatesAcrossChunks(t *testing.T) {
	eng := &fakeEngine{texts: []string{"hello", "world"}}
	m := loadedManager(t, eng, Options{})

	first, err := m.TranscribeChunk([]float32{0.1})
	if err != nil {
		t.Fatalf("first chunk: %v", err)
	}
	second, err := m.TranscribeChunk([]float32{0.2})
	if err != nil {
		t.Fatalf("second chunk: %v", err)
	}

	if first != "hello" || second != "world" {
		t.Fatalf("chunk texts = %q, %q", first, second)
	}
	if got := m.AccumulatedText(); got != "hello world" {
		t.Fatalf("AccumulatedText = %q, want %q", got, "hello world")
	}
}

func TestTranscribeChunkReturnsChunkTextNotAccumulation(t *testing.T) {
	eng := &fakeEngine{texts: []string{"one", "two", "three"}}
	m := loadedManager(t, eng, Options{})

	for _, want := range []string{"one", "two", "three"} {
		got, err := m.TranscribeChunk([]float32{0.1})
		if err != nil {
			t.Fatalf("TranscribeChunk: %v", err)
		}
		if got != want {
			t.Fatalf("chunk text = %q, want %q", got, want)
		}
	}
}

func TestTranscribeChunkEmptyShortCircuits(t *testing.T) {
	eng := &fakeEngine{texts: []string{"should never surface"}}
	m := loadedManager(t, eng, Options{})

	text, err := m.TranscribeChunk(nil)
	if err != nil {
		t.Fatalf("TranscribeChunk: %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty", text)
	}
	if calls, _, _, _ := eng.snapshot(); calls != 0 {
		t.Fatalf("engine calls = %d, want 0", calls)
	}
	if got := m.AccumulatedText(); got != "" {
		t.Fatalf("accumulation mutated by empty chunk: %q", got)
	}
}

func TestTranscribeChunkWhenNotLoaded(t *testing.T) {
	m := newTestManager(t, Options{})

	_, err := m.TranscribeChunk([]float32{0.1})
	if !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("err = %v, want ErrModelNotLoaded", err)
	}
}

func TestTranscribeChunkStripsMarkers(t *testing.T) {
	eng := &fakeEngine{texts: []string{"hello<|endoftext|> EOU world"}}
	m := loadedManager(t, eng, Options{})

	text, err := m.TranscribeChunk([]float32{0.1})
	if err != nil {
		t.Fatalf("TranscribeChunk: %v", err)
	}
	if text != "hello world" {
		t.Fatalf("text = %q, want %q", text, "hello world")
	}
}

func TestTranscribeChunkSkipsEmptyResults(t *testing.T) {
	eng := &fakeEngine{texts: []string{"<|endoftext|>", "hello"}}
	m := loadedManager(t, eng, Options{})

	text, err := m.TranscribeChunk([]float32{0.1})
	if err != nil {
		t.Fatalf("TranscribeChunk: %v", err)
	}
	if text != "" {
		t.Fatalf("text = %q, want empty after marker-only chunk", text)
	}
	if _, err := m.TranscribeChunk([]float32{0.2}); err != nil {
		t.Fatalf("TranscribeChunk: %v", err)
	}
	if got := m.AccumulatedText(); got != "hello" {
		t.Fatalf("AccumulatedText = %q, want %q (no stray separator)", got, "hello")
	}
}

func TestTranscribeChunkAppliesCustomWords(t *testing.T) {
	cfg := settings.Default()
	cfg.SelectedModel = "parakeet-ok"
	cfg.CustomWords = []string{"kubernetes"}
	cfg.WordThreshold = 0.8

	eng := &fakeEngine{texts: []string{"restart cubernetes"}}
	m := loadedManager(t, eng, Options{Settings: settings.Static{Value: cfg}})

	text, err := m.TranscribeChunk([]float32{0.1})
	if err != nil {
		t.Fatalf("TranscribeChunk: %v", err)
	}
	if text != "restart kubernetes" {
		t.Fatalf("text = %q, want corrected", text)
	}
}

func TestTranscribeChunkInferenceFailure(t *testing.T) {
	eng := &fakeEngine{}
	m := loadedManager(t, eng, Options{})
	eng.mu.Lock()
	eng.err = fmt.Errorf("decoder wedged")
	eng.mu.Unlock()

	_, err := m.TranscribeChunk([]float32{0.1})
	if !errors.Is(err, ErrInference) {
		t.Fatalf("err = %v, want ErrInference", err)
	}

	// A failed chunk never invalidates the manager.
	eng.mu.Lock()
	eng.err = nil
	eng.texts = []string{"recovered"}
	eng.mu.Unlock()
	text, err := m.TranscribeChunk([]float32{0.1})
	if err != nil || text != "recovered" {
		t.Fatalf("after recovery: text=%q err=%v", text, err)
	}
}

func TestResetClearsAccumulationAndRotatesSession(t *testing.T) {
	eng := &fakeEngine{texts: []string{"hello"}}
	m := loadedManager(t, eng, Options{})

	if _, err := m.TranscribeChunk([]float32{0.1}); err != nil {
		t.Fatalf("TranscribeChunk: %v", err)
	}
	firstSession := m.Reset()
	if got := m.AccumulatedText(); got != "" {
		t.Fatalf("AccumulatedText after Reset = %q, want empty", got)
	}
	if secondSession := m.Reset(); secondSession == firstSession {
		t.Fatal("Reset must rotate the session ID")
	}
}

func TestFinalizeDrainsAccumulation(t *testing.T) {
	eng := &fakeEngine{texts: []string{"hello", "world"}}
	m := loadedManager(t, eng, Options{})

	m.Reset()
	_, _ = m.TranscribeChunk([]float32{0.1})
	_, _ = m.TranscribeChunk([]float32{0.2})

	final, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if final != "hello world" {
		t.Fatalf("final = %q, want %q", final, "hello world")
	}
	if got := m.AccumulatedText(); got != "" {
		t.Fatalf("accumulation not cleared by Finalize: %q", got)
	}

	// Accumulation present, so the engine saw no final flush frames.
	if _, finalCalls, _, _ := eng.snapshot(); finalCalls != 0 {
		t.Fatalf("final engine calls = %d, want 0", finalCalls)
	}
}

func TestFinalizeFlushesSilenceWhenNoAccumulation(t *testing.T) {
	eng := &fakeEngine{texts: []string{"buffered ", "speech"}}
	m := loadedManager(t, eng, Options{})
	m.Reset()

	final, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if final != "buffered speech" {
		t.Fatalf("final = %q, want %q", final, "buffered speech")
	}

	calls, finalCalls, lastSamples, _ := eng.snapshot()
	if calls != flushFrames || finalCalls != flushFrames {
		t.Fatalf("flush calls = %d (%d final), want %d final frames", calls, finalCalls, flushFrames)
	}
	if lastSamples != flushFrameSamples {
		t.Fatalf("flush frame size = %d samples, want %d", lastSamples, flushFrameSamples)
	}
}

func TestFinalizeWhenNotLoaded(t *testing.T) {
	m := newTestManager(t, Options{})

	_, err := m.Finalize()
	if !errors.Is(err, ErrModelNotLoaded) {
		t.Fatalf("err = %v, want ErrModelNotLoaded", err)
	}
}

func TestFinalizeImmediatePolicyUnloads(t *testing.T) {
	cfg := settings.Default()
	cfg.SelectedModel = "parakeet-ok"
	cfg.Unload = settings.UnloadPolicy{Kind: settings.PolicyImmediately}

	sink := &recordingSink{}
	eng := &fakeEngine{texts: []string{"hello"}}
	m := loadedManager(t, eng, Options{Settings: settings.Static{Value: cfg}, Sink: sink})

	if _, err := m.TranscribeChunk([]float32{0.1}); err != nil {
		t.Fatalf("TranscribeChunk: %v", err)
	}
	final, err := m.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if final != "hello" {
		t.Fatalf("final = %q, want hello", final)
	}
	if m.IsLoaded() {
		t.Fatal("engine must be evicted right after finalize")
	}
	if got := len(sink.byType(notify.EventUnloaded)); got != 1 {
		t.Fatalf("unloaded events = %d, want 1", got)
	}
}

func TestFinalizeFlushFailure(t *testing.T) {
	eng := &fakeEngine{}
	m := loadedManager(t, eng, Options{})
	m.Reset()
	eng.mu.Lock()
	eng.err = fmt.Errorf("flush rejected")
	eng.mu.Unlock()

	_, err := m.Finalize()
	if !errors.Is(err, ErrInference) {
		t.Fatalf("err = %v, want ErrInference", err)
	}
}
