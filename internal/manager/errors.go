package manager

import "errors"

var (
	// ErrModelNotFound indicates the requested ID is absent from the catalog.
	ErrModelNotFound = errors.New("model not found")
	// ErrModelNotDownloaded indicates catalog metadata exists but artifacts do not.
	ErrModelNotDownloaded = errors.New("model not downloaded")
	// ErrUnsupportedEngineKind indicates the model's family has no resident engine.
	ErrUnsupportedEngineKind = errors.New("unsupported engine kind")
	// ErrEngineLoad indicates the engine factory failed to construct an instance.
	ErrEngineLoad = errors.New("engine load failed")
	// ErrModelNotLoaded indicates a transcription path found no resident engine.
	ErrModelNotLoaded = errors.New("model is not loaded for transcription")
	// ErrInference indicates the resident engine rejected a chunk.
	ErrInference = errors.New("engine inference failed")
)
