package spectral

// reflectPad returns signal extended by pad samples on each side, mirroring
// the samples nearest each boundary and excluding the boundary sample itself.
// Pads longer than the signal keep bouncing between the boundaries.
func reflectPad[F Float](signal []F, pad int) []F {
	if pad <= 0 {
		return signal
	}

	n := len(signal)
	out := make([]F, n+2*pad)
	for i := range out {
		out[i] = signal[reflectIndex(i-pad, n)]
	}
	return out
}

// reflectIndex maps a virtual position t (possibly out of range) to a source
// index in [0, n) by mirroring across the boundaries. The mirrored sequence
// has period 2(n-1), e.g. for n=4: 0 1 2 3 2 1 | 0 1 2 3 2 1 | ...
func reflectIndex(t, n int) int {
	if n == 1 {
		return 0
	}

	period := 2 * (n - 1)
	m := t % period
	if m < 0 {
		m += period
	}
	if m >= n {
		m = period - m
	}
	return m
}
