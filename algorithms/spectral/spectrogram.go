package spectral

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"

	"github.com/gabyfle/SoundML/algorithms/common"
)

// Magnitude returns the magnitude spectrogram as a frames x bins matrix
func (r *Result[C]) Magnitude() [][]float64 {
	mag := make([][]float64, r.frames)
	for t := 0; t < r.frames; t++ {
		row := make([]float64, r.bins)
		frame := r.Frame(t)
		for i, v := range frame {
			row[i] = cmplx.Abs(complex128(v))
		}
		mag[t] = row
	}
	return mag
}

// Power returns the power spectrogram (squared magnitudes) as a frames x bins matrix
func (r *Result[C]) Power() [][]float64 {
	power := make([][]float64, r.frames)
	for t := 0; t < r.frames; t++ {
		row := make([]float64, r.bins)
		frame := r.Frame(t)
		for i, v := range frame {
			z := complex128(v)
			row[i] = real(z)*real(z) + imag(z)*imag(z)
		}
		power[t] = row
	}
	return power
}

// LogPower returns the power spectrogram in dB, floored at floorDB
func (r *Result[C]) LogPower(floorDB float64) [][]float64 {
	floor := math.Pow(10, floorDB/10.0)

	logPower := make([][]float64, r.frames)
	for t, row := range r.Power() {
		out := make([]float64, len(row))
		for i, p := range row {
			if p < floor {
				p = floor
			}
			out[i] = 10 * math.Log10(p)
		}
		logPower[t] = out
	}
	return logPower
}

// LogPowerMax returns the power spectrogram in dB referenced to the peak
// value, so the strongest bin sits at 0 dB. Values below floorDB (relative)
// are floored. An all-zero matrix is referenced to 1.
func (r *Result[C]) LogPowerMax(floorDB float64) [][]float64 {
	power := r.Power()

	ref := 0.0
	for _, row := range power {
		ref = math.Max(ref, common.MaxAbs(row))
	}
	if ref == 0 {
		ref = 1
	}

	floor := math.Pow(10, floorDB/10.0)
	logPower := make([][]float64, len(power))
	for t, row := range power {
		out := make([]float64, len(row))
		for i, p := range row {
			v := p / ref
			if v < floor {
				v = floor
			}
			out[i] = 10 * math.Log10(v)
		}
		logPower[t] = out
	}
	return logPower
}

// PeakBin returns the index of the strongest bin in a magnitude (or power)
// spectrum, -1 for an empty spectrum
func PeakBin(spectrum []float64) int {
	if len(spectrum) == 0 {
		return -1
	}
	return floats.MaxIdx(spectrum)
}
