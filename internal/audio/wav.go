// Package audio provides the 16 kHz mono sample model and WAV file decoding.
package audio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Decoded is PCM audio converted to the engine's float32 sample model.
type Decoded struct {
	Samples    []float32
	SampleRate int
	Channels   int
}

// DecodeWAV reads a RIFF/WAVE stream holding 16-bit PCM and converts samples
// to float32 in [-1, 1). Multi-channel input is downmixed by averaging.
func DecodeWAV(r io.Reader) (Decoded, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return Decoded{}, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return Decoded{}, fmt.Errorf("not a RIFF/WAVE stream")
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		sawFormat     bool
	)

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(r, chunkHeader[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return Decoded{}, fmt.Errorf("missing data chunk")
			}
			return Decoded{}, fmt.Errorf("read chunk header: %w", err)
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return Decoded{}, fmt.Errorf("fmt chunk too short: %d bytes", chunkSize)
			}
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return Decoded{}, fmt.Errorf("read fmt chunk: %w", err)
			}
			format := binary.LittleEndian.Uint16(body[0:2])
			if format != 1 {
				return Decoded{}, fmt.Errorf("unsupported WAV format %d, want PCM", format)
			}
			channels = int(binary.LittleEndian.Uint16(body[2:4]))
			sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			bitsPerSample = int(binary.LittleEndian.Uint16(body[14:16]))
			if bitsPerSample != 16 {
				return Decoded{}, fmt.Errorf("unsupported bit depth %d, want 16", bitsPerSample)
			}
			if channels <= 0 {
				return Decoded{}, fmt.Errorf("invalid channel count %d", channels)
			}
			sawFormat = true
		case "data":
			if !sawFormat {
				return Decoded{}, fmt.Errorf("data chunk before fmt chunk")
			}
			pcm := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return Decoded{}, fmt.Errorf("read data chunk: %w", err)
			}
			return Decoded{
				Samples:    downmixPCM16(pcm, channels),
				SampleRate: sampleRate,
				Channels:   channels,
			}, nil
		default:
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil {
				return Decoded{}, fmt.Errorf("skip %q chunk: %w", chunkID, err)
			}
		}
	}
}

// downmixPCM16 converts interleaved little-endian PCM16 to mono float32.
func downmixPCM16(pcm []byte, channels int) []float32 {
	frameBytes := 2 * channels
	frames := len(pcm) / frameBytes
	samples := make([]float32, 0, frames)
	for f := 0; f < frames; f++ {
		var sum float32
		for c := 0; c < channels; c++ {
			offset := f*frameBytes + c*2
			sample := int16(binary.LittleEndian.Uint16(pcm[offset : offset+2]))
			sum += float32(sample) / 32768
		}
		samples = append(samples, sum/float32(channels))
	}
	return samples
}
