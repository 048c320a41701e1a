package spectral

import (
	"runtime"
	"sync"

	"github.com/gabyfle/SoundML/algorithms/common"
	"github.com/gabyfle/SoundML/algorithms/windowing"
	"github.com/gabyfle/SoundML/logging"
)

// Config holds the STFT analysis parameters
type Config struct {
	// NFFT is the FFT block size. Any positive size works; powers of two
	// take the fast radix-2 path.
	NFFT int
	// WindowLength is the number of non-zero window coefficients,
	// in [1, NFFT]. Shorter windows are zero-padded, centered in the block.
	WindowLength int
	// HopLength is the frame advance in samples
	HopLength int
	// Window selects the window function family
	Window windowing.Type
	// Center reflect-pads the signal by NFFT/2 on each side before framing,
	// aligning frame f with sample f*HopLength at the frame's midpoint
	Center bool
	// Workers caps the number of frame-processing goroutines; 0 selects
	// automatically from the workload and CPU count
	Workers int
}

// NewConfig returns the default analysis parameters for a given FFT size:
// full-length Hann window, quarter-block hop, centered frames. These match
// the reference test-vector generator defaults.
func NewConfig(nFFT int) Config {
	return Config{
		NFFT:         nFFT,
		WindowLength: nFFT,
		HopLength:    nFFT / 4,
		Window:       windowing.TypeHann,
		Center:       true,
	}
}

// Validate checks the parameters, wrapping every failure in
// common.ErrInvalidConfig. No clamping or correction is applied.
func (c Config) Validate() error {
	if c.NFFT <= 0 {
		return common.InvalidConfigf("n_fft must be positive, got %d", c.NFFT)
	}
	if c.HopLength <= 0 {
		return common.InvalidConfigf("hop length must be positive, got %d", c.HopLength)
	}
	if c.Workers < 0 {
		return common.InvalidConfigf("workers must be non-negative, got %d", c.Workers)
	}
	if _, err := windowing.Generate(c.Window, c.WindowLength, c.NFFT); err != nil {
		return err
	}
	return nil
}

// STFT computes the Short-Time Fourier Transform of a float64 signal.
// The sample rate is informational only; it is recorded on the result for
// resolution bookkeeping and never affects the transform.
//
// A signal shorter than one frame yields a zero-frame result, not an error.
// The input slice is never mutated.
func STFT(signal []float64, sampleRate int, cfg Config) (*Result[complex128], error) {
	return computeSTFT[float64, complex128](signal, sampleRate, cfg)
}

// STFT32 is the 32-bit precision counterpart of STFT: float32 samples in,
// complex64 spectrum out, all frame arithmetic in single precision.
func STFT32(signal []float32, sampleRate int, cfg Config) (*Result[complex64], error) {
	return computeSTFT[float32, complex64](signal, sampleRate, cfg)
}

func computeSTFT[F Float, C Complex](signal []F, sampleRate int, cfg Config) (*Result[C], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	winCoeffs, err := windowing.Generate(cfg.Window, cfg.WindowLength, cfg.NFFT)
	if err != nil {
		return nil, err
	}
	win := make([]F, len(winCoeffs))
	for i, w := range winCoeffs {
		win[i] = F(w)
	}

	x := signal
	if cfg.Center && len(signal) > 0 {
		x = reflectPad(signal, cfg.NFFT/2)
	}

	bins := cfg.NFFT/2 + 1
	numFrames := 0
	if len(x) >= cfg.NFFT {
		numFrames = (len(x)-cfg.NFFT)/cfg.HopLength + 1
	}

	result := &Result[C]{
		data:       make([]C, bins*numFrames),
		bins:       bins,
		frames:     numFrames,
		SampleRate: sampleRate,
		Config:     cfg,
	}
	if sampleRate > 0 {
		result.FreqResolution = float64(sampleRate) / float64(cfg.NFFT)
		result.TimeResolution = float64(cfg.HopLength) / float64(sampleRate)
	}

	if numFrames == 0 {
		// Valid edge case: signal shorter than one frame
		return result, nil
	}

	plan := newPlan[C](cfg.NFFT)

	numWorkers := cfg.Workers
	if numWorkers == 0 {
		numWorkers = optimalWorkerCount(numFrames)
	}
	numWorkers = min(numWorkers, numFrames)

	logging.Debug("computing stft", logging.Fields{
		"n_fft":      cfg.NFFT,
		"hop_length": cfg.HopLength,
		"frames":     numFrames,
		"workers":    numWorkers,
	})

	// Frames are independent: each worker owns a scratch frame buffer and
	// writes to disjoint columns of the result, so no locking is needed and
	// the output is identical for any worker count.
	jobs := make(chan int, numFrames)
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			frame := make([]F, cfg.NFFT)
			for f := range jobs {
				start := f * cfg.HopLength
				copy(frame, x[start:start+cfg.NFFT])
				for i := range frame {
					frame[i] *= win[i]
				}
				realForward(plan, frame, result.data[f*bins:(f+1)*bins])
			}
		}()
	}

	for f := 0; f < numFrames; f++ {
		jobs <- f
	}
	close(jobs)
	wg.Wait()

	return result, nil
}

// optimalWorkerCount sizes the worker pool from the workload and CPU count
func optimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	if numFrames < 1000 {
		return min(numCPU, 8)
	}

	return numCPU
}
