// Package engine defines the streaming recognition engine contract and its factories.
package engine

// SampleRate is the fixed input sample rate expected by supported engines.
const SampleRate = 16000

// Kind identifies the model family an engine implementation can load.
type Kind string

const (
	// KindParakeet is the streaming EOU-capable family murmur supports.
	KindParakeet Kind = "parakeet"
	// KindWhisper exists in catalogs but has no resident engine implementation.
	KindWhisper Kind = "whisper"
)

// Engine is one loaded recognition instance. Implementations are not safe
// for concurrent use; callers must serialize every method behind one lock.
type Engine interface {
	// ProcessChunk feeds one chunk of 16 kHz mono samples and returns any
	// text emitted at an utterance boundary. When final is false the engine
	// keeps its recognition context across calls; when final is true it
	// forces emission and resets.
	ProcessChunk(samples []float32, final bool) (string, error)
	// Close releases model weights and buffers.
	Close() error
}

// LoadOptions carries per-load tuning knobs for factories.
type LoadOptions struct {
	Threads int
}

// Factory constructs an Engine from model artifacts on disk.
type Factory func(path string, opts LoadOptions) (Engine, error)
