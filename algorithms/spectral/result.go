package spectral

// Result holds a one-sided complex spectrogram: NFFT/2+1 frequency bins by
// however many frames the hop produced. Storage is column-major by frame,
// each frame's spectrum occupying one contiguous block, so concurrent frame
// writers never share a cache line's worth of overlap during computation.
// A Result is never mutated after construction.
type Result[C Complex] struct {
	data   []C
	bins   int
	frames int

	// SampleRate is the informational rate the caller supplied
	SampleRate int
	// Config is the validated configuration the matrix was computed with
	Config Config
	// FreqResolution is the bin spacing in Hz (0 when no rate was supplied)
	FreqResolution float64
	// TimeResolution is the frame spacing in seconds (0 when no rate was supplied)
	TimeResolution float64
}

// NumBins returns the number of frequency bins (NFFT/2 + 1)
func (r *Result[C]) NumBins() int {
	return r.bins
}

// NumFrames returns the number of time frames, 0 for a signal shorter than
// one frame
func (r *Result[C]) NumFrames() int {
	return r.frames
}

// At returns the complex value at the given bin and frame
func (r *Result[C]) At(bin, frame int) C {
	return r.data[frame*r.bins+bin]
}

// Frame returns one frame's one-sided spectrum. The returned slice aliases
// the matrix storage and must be treated as read-only.
func (r *Result[C]) Frame(frame int) []C {
	return r.data[frame*r.bins : (frame+1)*r.bins]
}

// Data returns the backing storage, frame-contiguous, for serializers.
// Treat as read-only.
func (r *Result[C]) Data() []C {
	return r.data
}
