package windowing

import (
	"strings"
	"sync"

	"github.com/gabyfle/SoundML/algorithms/common"
)

// Type identifies a window function family
type Type string

const (
	TypeHann           Type = "hann"
	TypeHamming        Type = "hamming"
	TypeBlackman       Type = "blackman"
	TypeBoxcar         Type = "boxcar"
	TypeBartlett       Type = "bartlett"
	TypeBlackmanHarris Type = "blackman_harris"
	TypeWelch          Type = "welch"
)

// ParseType maps a window name, as found in analysis parameter files, to a Type
func ParseType(name string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "hann", "hanning":
		return TypeHann, nil
	case "hamming":
		return TypeHamming, nil
	case "blackman":
		return TypeBlackman, nil
	case "boxcar", "rectangular":
		return TypeBoxcar, nil
	case "bartlett", "triangular":
		return TypeBartlett, nil
	case "blackman_harris", "blackmanharris":
		return TypeBlackmanHarris, nil
	case "welch":
		return TypeWelch, nil
	default:
		return "", common.InvalidConfigf("unknown window type %q", name)
	}
}

// Window is a fixed-size window function with precomputed coefficients
type Window interface {
	// Apply applies the window to a signal (creates new array)
	Apply(signal []float64) []float64
	// ApplyInPlace applies the window to a signal in-place
	ApplyInPlace(signal []float64) error
	// GetCoefficients returns a copy of the window coefficients
	GetCoefficients() []float64
	// GetSize returns the window size
	GetSize() int
	// GetType returns the window type
	GetType() Type
}

// New creates a window of the given type and size
func New(windowType Type, size int) (Window, error) {
	if size <= 0 {
		return nil, common.InvalidConfigf("window length must be positive, got %d", size)
	}

	switch windowType {
	case TypeHann:
		return NewHann(size), nil
	case TypeHamming:
		return NewHamming(size), nil
	case TypeBlackman:
		return NewBlackman(size), nil
	case TypeBoxcar:
		return NewRectangular(size), nil
	case TypeBartlett:
		return NewBartlett(size), nil
	case TypeBlackmanHarris:
		return NewBlackmanHarris(size), nil
	case TypeWelch:
		return NewWelch(size), nil
	default:
		return nil, common.InvalidConfigf("unknown window type %q", string(windowType))
	}
}

type cacheKey struct {
	windowType Type
	length     int
	nFFT       int
}

var (
	cacheMu sync.Mutex
	cache   = map[cacheKey][]float64{}
)

// Generate returns the window vector for an analysis block of nFFT samples:
// windowLength coefficients embedded at floor((nFFT-windowLength)/2), the
// remaining entries zero. Vectors are memoized per (type, length, nFFT) key;
// callers always receive a private copy.
func Generate(windowType Type, windowLength, nFFT int) ([]float64, error) {
	if nFFT <= 0 {
		return nil, common.InvalidConfigf("n_fft must be positive, got %d", nFFT)
	}
	if windowLength < 1 || windowLength > nFFT {
		return nil, common.InvalidConfigf("window length must be in [1, %d], got %d", nFFT, windowLength)
	}

	key := cacheKey{windowType: windowType, length: windowLength, nFFT: nFFT}

	// Holding the lock across generation guarantees a single computation
	// per distinct key.
	cacheMu.Lock()
	defer cacheMu.Unlock()

	vec, ok := cache[key]
	if !ok {
		window, err := New(windowType, windowLength)
		if err != nil {
			return nil, err
		}

		vec = make([]float64, nFFT)
		copy(vec[(nFFT-windowLength)/2:], window.GetCoefficients())
		cache[key] = vec
	}

	out := make([]float64, len(vec))
	copy(out, vec)
	return out, nil
}
