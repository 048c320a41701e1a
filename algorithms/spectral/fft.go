package spectral

import (
	"math"
	"sync"

	"github.com/gabyfle/SoundML/algorithms/common"
)

// Float constrains the sample precision of the DSP core
type Float interface {
	~float32 | ~float64
}

// Complex constrains the spectrum precision matching a Float sample type
type Complex interface {
	~complex64 | ~complex128
}

// FFT is a forward-transform plan for a fixed size. Output follows the
// unnormalized forward DFT convention X[k] = sum_n x[n]*exp(-2*pi*i*k*n/N).
// Power-of-two sizes run an iterative radix-2 transform; every other size
// goes through the Bluestein chirp-z algorithm, so any positive size is valid.
//
// A plan's tables are read-only after construction and can be shared across
// goroutines.
type FFT[C Complex] struct {
	n    int
	perm []int // bit-reversal permutation (power-of-two sizes only)
	tw   []C   // exp(-2*pi*i*k/n) for k < n/2

	// Bluestein tables (non-power-of-two sizes only)
	chirp  []C     // exp(-i*pi*k^2/n) for k < n
	conv   *FFT[C] // power-of-two convolution plan
	kernel []C     // spectrum of the conjugate chirp sequence

	// half-size sub-plan for real-input packing, built on first use
	realOnce sync.Once
	rsub     *FFT[C]
	rtw      []C // exp(-2*pi*i*k/n) for k <= n/2
}

// NewFFT creates a forward-transform plan for n-point inputs
func NewFFT[C Complex](n int) (*FFT[C], error) {
	if n <= 0 {
		return nil, common.InvalidConfigf("fft size must be positive, got %d", n)
	}
	return newPlan[C](n), nil
}

func newPlan[C Complex](n int) *FFT[C] {
	p := &FFT[C]{n: n}

	if isPowerOfTwo(n) {
		p.perm = bitReversal(n)
		p.tw = make([]C, n/2)
		for k := range p.tw {
			angle := -2 * math.Pi * float64(k) / float64(n)
			p.tw[k] = cval[C](math.Cos(angle), math.Sin(angle))
		}
		return p
	}

	// Bluestein: an n-point DFT expressed as a circular convolution of
	// chirp-modulated sequences, evaluated with a power-of-two plan of
	// length >= 2n-1.
	m := nextPowerOfTwo(2*n - 1)
	p.chirp = make([]C, n)
	for k := range p.chirp {
		// k^2 mod 2n keeps the chirp argument small for large sizes
		kk := (int64(k) * int64(k)) % int64(2*n)
		angle := -math.Pi * float64(kk) / float64(n)
		p.chirp[k] = cval[C](math.Cos(angle), math.Sin(angle))
	}

	p.conv = newPlan[C](m)
	b := make([]C, m)
	b[0] = conjc(p.chirp[0])
	for k := 1; k < n; k++ {
		c := conjc(p.chirp[k])
		b[k] = c
		b[m-k] = c
	}
	p.conv.forward(b)
	p.kernel = b

	return p
}

// Size returns the transform length
func (p *FFT[C]) Size() int {
	return p.n
}

// Forward computes the unnormalized DFT of x, leaving the input untouched
func (p *FFT[C]) Forward(x []C) ([]C, error) {
	if len(x) != p.n {
		return nil, common.InvalidConfigf("input length %d doesn't match plan size %d", len(x), p.n)
	}

	out := make([]C, p.n)
	copy(out, x)
	p.forward(out)
	return out, nil
}

// RealSpectrum computes the one-sided spectrum of a real frame: n/2+1 bins
// covering DC through Nyquist, the redundant conjugate half dropped. Even
// sizes pack the frame into a half-length complex transform.
func RealSpectrum[F Float, C Complex](p *FFT[C], frame []F) ([]C, error) {
	if len(frame) != p.n {
		return nil, common.InvalidConfigf("frame length %d doesn't match plan size %d", len(frame), p.n)
	}

	out := make([]C, p.n/2+1)
	realForward(p, frame, out)
	return out, nil
}

// forward transforms x in place; len(x) must equal p.n
func (p *FFT[C]) forward(x []C) {
	if p.perm != nil {
		p.radix2(x)
		return
	}
	p.bluestein(x)
}

func (p *FFT[C]) radix2(x []C) {
	n := p.n
	for i, j := range p.perm {
		if j > i {
			x[i], x[j] = x[j], x[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		step := n / size
		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				w := p.tw[k*step]
				t := w * x[start+half+k]
				x[start+half+k] = x[start+k] - t
				x[start+k] += t
			}
		}
	}
}

func (p *FFT[C]) bluestein(x []C) {
	n := p.n
	m := p.conv.n

	a := make([]C, m)
	for k := 0; k < n; k++ {
		a[k] = x[k] * p.chirp[k]
	}
	p.conv.forward(a)

	for k := range a {
		a[k] *= p.kernel[k]
	}

	// inverse transform of a via conjugation: ifft(y) = conj(fft(conj(y)))/m
	for k := range a {
		a[k] = conjc(a[k])
	}
	p.conv.forward(a)

	scale := cval[C](1/float64(m), 0)
	for k := 0; k < n; k++ {
		x[k] = conjc(a[k]) * scale * p.chirp[k]
	}
}

func (p *FFT[C]) initReal() {
	p.realOnce.Do(func() {
		half := p.n / 2
		p.rsub = newPlan[C](half)
		p.rtw = make([]C, half+1)
		for k := range p.rtw {
			angle := -2 * math.Pi * float64(k) / float64(p.n)
			p.rtw[k] = cval[C](math.Cos(angle), math.Sin(angle))
		}
	})
}

// realForward writes the one-sided spectrum of frame into out (n/2+1 bins)
func realForward[F Float, C Complex](p *FFT[C], frame []F, out []C) {
	n := p.n

	if n == 1 {
		out[0] = cval[C](float64(frame[0]), 0)
		return
	}

	if n%2 == 1 {
		buf := make([]C, n)
		for i, v := range frame {
			buf[i] = cval[C](float64(v), 0)
		}
		p.forward(buf)
		copy(out, buf[:n/2+1])
		return
	}

	// Pack adjacent real samples into a half-length complex sequence and
	// unpack the result through the Hermitian symmetry of real input.
	p.initReal()
	half := n / 2

	z := make([]C, half)
	for k := 0; k < half; k++ {
		z[k] = cval[C](float64(frame[2*k]), float64(frame[2*k+1]))
	}
	p.rsub.forward(z)

	for k := 0; k <= half; k++ {
		zk := z[k%half]
		znk := conjc(z[(half-k)%half])
		even := (zk + znk) * cval[C](0.5, 0)
		odd := (zk - znk) * cval[C](0, -0.5)
		out[k] = even + p.rtw[k]*odd
	}
}

func cval[C Complex](re, im float64) C {
	return C(complex(re, im))
}

func conjc[C Complex](v C) C {
	z := complex128(v)
	return C(complex(real(z), -imag(z)))
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func nextPowerOfTwo(n int) int {
	m := 1
	for m < n {
		m <<= 1
	}
	return m
}

func bitReversal(n int) []int {
	perm := make([]int, n)
	for i := 1; i < n; i++ {
		perm[i] = perm[i>>1]>>1 | (i&1)*(n>>1)
	}
	return perm
}
