package windowing

import (
	"fmt"
	"math"
)

// Bartlett represents a Bartlett (triangular) window function
type Bartlett struct {
	size         int
	coefficients []float64
}

// NewBartlett creates a new Bartlett window using the symmetric convention
func NewBartlett(size int) *Bartlett {
	b := &Bartlett{size: size}
	b.generate()
	return b
}

// generate creates Bartlett window coefficients
func (b *Bartlett) generate() {
	b.coefficients = make([]float64, b.size)

	if b.size == 1 {
		b.coefficients[0] = 1.0
		return
	}

	half := float64(b.size-1) / 2.0
	for i := 0; i < b.size; i++ {
		b.coefficients[i] = 1.0 - math.Abs(float64(i)-half)/half
	}
}

// Apply applies the window to a signal (creates new array)
func (b *Bartlett) Apply(signal []float64) []float64 {
	if len(signal) != b.size {
		return nil
	}

	windowed := make([]float64, b.size)
	for i := 0; i < b.size; i++ {
		windowed[i] = signal[i] * b.coefficients[i]
	}

	return windowed
}

// ApplyInPlace applies the window to a signal in-place
func (b *Bartlett) ApplyInPlace(signal []float64) error {
	if len(signal) != b.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), b.size)
	}

	for i := 0; i < b.size; i++ {
		signal[i] *= b.coefficients[i]
	}

	return nil
}

// GetCoefficients returns a copy of the window coefficients
func (b *Bartlett) GetCoefficients() []float64 {
	coeffs := make([]float64, len(b.coefficients))
	copy(coeffs, b.coefficients)
	return coeffs
}

// GetSize returns the window size
func (b *Bartlett) GetSize() int {
	return b.size
}

// GetType returns the window type
func (b *Bartlett) GetType() Type {
	return TypeBartlett
}
