package audio

// Silence returns n zero-valued samples.
func Silence(n int) []float32 {
	return make([]float32, n)
}

// Split divides samples into consecutive chunks of at most chunkSize samples.
// The final chunk may be shorter. A non-positive chunkSize yields one chunk.
func Split(samples []float32, chunkSize int) [][]float32 {
	if len(samples) == 0 {
		return nil
	}
	if chunkSize <= 0 {
		return [][]float32{samples}
	}

	chunks := make([][]float32, 0, (len(samples)+chunkSize-1)/chunkSize)
	for start := 0; start < len(samples); start += chunkSize {
		end := start + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		chunks = append(chunks, samples[start:end])
	}
	return chunks
}
