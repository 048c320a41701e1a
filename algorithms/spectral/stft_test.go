package spectral

import (
	"fmt"
	"math"
	"testing"

	"github.com/mjibson/go-dsp/fft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabyfle/SoundML/algorithms/common"
	"github.com/gabyfle/SoundML/algorithms/windowing"
)

func sineSignal(freq float64, sampleRate, length int) []float64 {
	signal := make([]float64, length)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return signal
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig(2048)

	assert.Equal(t, 2048, cfg.NFFT)
	assert.Equal(t, 2048, cfg.WindowLength)
	assert.Equal(t, 512, cfg.HopLength)
	assert.Equal(t, windowing.TypeHann, cfg.Window)
	assert.True(t, cfg.Center)
	require.NoError(t, cfg.Validate())
}

func TestSTFTShape(t *testing.T) {
	tests := []struct {
		name      string
		signalLen int
		cfg       Config
	}{
		{"exact_one_frame", 512, Config{NFFT: 512, WindowLength: 512, HopLength: 128, Window: windowing.TypeHann}},
		{"several_frames", 4096, Config{NFFT: 1024, WindowLength: 1024, HopLength: 256, Window: windowing.TypeHann}},
		{"short_window", 2000, Config{NFFT: 512, WindowLength: 400, HopLength: 160, Window: windowing.TypeHamming}},
		{"non_power_of_two", 1500, Config{NFFT: 300, WindowLength: 300, HopLength: 100, Window: windowing.TypeBlackman}},
		{"centered", 2048, Config{NFFT: 512, WindowLength: 512, HopLength: 128, Window: windowing.TypeHann, Center: true}},
		{"hop_larger_than_window", 5000, Config{NFFT: 256, WindowLength: 256, HopLength: 1000, Window: windowing.TypeBoxcar}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal := randomSignal(tt.signalLen, 3)

			result, err := STFT(signal, 44100, tt.cfg)
			require.NoError(t, err)

			paddedLen := tt.signalLen
			if tt.cfg.Center {
				paddedLen += 2 * (tt.cfg.NFFT / 2)
			}
			wantFrames := 0
			if paddedLen >= tt.cfg.NFFT {
				wantFrames = (paddedLen-tt.cfg.NFFT)/tt.cfg.HopLength + 1
			}

			assert.Equal(t, tt.cfg.NFFT/2+1, result.NumBins())
			assert.Equal(t, wantFrames, result.NumFrames())
			assert.Len(t, result.Data(), result.NumBins()*result.NumFrames())
		})
	}
}

func TestSTFTCenteredFrameCount(t *testing.T) {
	// With centering and an even NFFT the padding adds exactly one block,
	// so the frame count is 1 + len/hop
	cfg := NewConfig(512)
	signal := randomSignal(4096, 11)

	result, err := STFT(signal, 0, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1+len(signal)/cfg.HopLength, result.NumFrames())
}

func TestSTFTShortSignalNoCenter(t *testing.T) {
	cfg := Config{NFFT: 1024, WindowLength: 1024, HopLength: 256, Window: windowing.TypeHann}

	result, err := STFT(randomSignal(100, 5), 44100, cfg)
	require.NoError(t, err)

	assert.Equal(t, 0, result.NumFrames())
	assert.Equal(t, 513, result.NumBins())
	assert.Empty(t, result.Data())
}

func TestSTFTEmptySignal(t *testing.T) {
	for _, center := range []bool{false, true} {
		cfg := Config{NFFT: 64, WindowLength: 64, HopLength: 16, Window: windowing.TypeHann, Center: center}

		result, err := STFT(nil, 0, cfg)
		require.NoError(t, err)
		assert.Equal(t, 0, result.NumFrames())
	}
}

func TestSTFTInvalidConfig(t *testing.T) {
	signal := randomSignal(2048, 9)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero_nfft", Config{NFFT: 0, WindowLength: 1, HopLength: 1, Window: windowing.TypeHann}},
		{"negative_hop", Config{NFFT: 512, WindowLength: 512, HopLength: -1, Window: windowing.TypeHann}},
		{"window_longer_than_nfft", Config{NFFT: 512, WindowLength: 513, HopLength: 128, Window: windowing.TypeHann}},
		{"zero_window_length", Config{NFFT: 512, WindowLength: 0, HopLength: 128, Window: windowing.TypeHann}},
		{"unknown_window", Config{NFFT: 512, WindowLength: 512, HopLength: 128, Window: windowing.Type("gauss")}},
		{"negative_workers", Config{NFFT: 512, WindowLength: 512, HopLength: 128, Window: windowing.TypeHann, Workers: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := STFT(signal, 44100, tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestSTFTSinePeak(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate int
		nFFT       int
		freq       float64
	}{
		{"power_of_two", 1024, 1024, 100},
		{"non_power_of_two", 1000, 1000, 125},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{
				NFFT:         tt.nFFT,
				WindowLength: tt.nFFT,
				HopLength:    tt.nFFT / 4,
				Window:       windowing.TypeBoxcar,
			}
			signal := sineSignal(tt.freq, tt.sampleRate, 2*tt.nFFT)

			result, err := STFT(signal, tt.sampleRate, cfg)
			require.NoError(t, err)
			require.Greater(t, result.NumFrames(), 0)

			wantBin := int(math.Round(tt.freq * float64(tt.nFFT) / float64(tt.sampleRate)))
			peak := PeakBin(result.Magnitude()[0])
			assert.InDelta(t, wantBin, peak, 1, "energy peak off by more than one bin")
		})
	}
}

func TestSTFTMatchesReference(t *testing.T) {
	// Cross-check the whole pipeline against per-frame windowing plus the
	// go-dsp transform, without centering so frame extraction is direct
	cfg := Config{NFFT: 256, WindowLength: 256, HopLength: 64, Window: windowing.TypeHann}
	signal := randomSignal(1000, 21)

	result, err := STFT(signal, 8000, cfg)
	require.NoError(t, err)

	window, err := windowing.Generate(cfg.Window, cfg.WindowLength, cfg.NFFT)
	require.NoError(t, err)

	wantFrames := (len(signal)-cfg.NFFT)/cfg.HopLength + 1
	require.Equal(t, wantFrames, result.NumFrames())

	for f := 0; f < wantFrames; f++ {
		frame := make([]float64, cfg.NFFT)
		copy(frame, signal[f*cfg.HopLength:])
		for i := range frame {
			frame[i] *= window[i]
		}

		want := fft.FFTReal(frame)[:cfg.NFFT/2+1]
		tol := 1e-9 * maxMagnitude(want)
		got := result.Frame(f)
		for i := range want {
			require.InDelta(t, real(want[i]), real(got[i]), tol, "frame %d bin %d real part", f, i)
			require.InDelta(t, imag(want[i]), imag(got[i]), tol, "frame %d bin %d imag part", f, i)
		}
	}
}

func TestSTFTDeterministicAcrossWorkers(t *testing.T) {
	signal := randomSignal(8192, 13)
	base := Config{NFFT: 512, WindowLength: 512, HopLength: 128, Window: windowing.TypeHann, Center: true}

	serial := base
	serial.Workers = 1
	want, err := STFT(signal, 44100, serial)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			cfg := base
			cfg.Workers = workers

			got, err := STFT(signal, 44100, cfg)
			require.NoError(t, err)

			// Bit-identical, not merely close
			assert.Equal(t, want.Data(), got.Data())
		})
	}
}

func TestSTFTDoesNotMutateInput(t *testing.T) {
	signal := randomSignal(4096, 17)
	saved := make([]float64, len(signal))
	copy(saved, signal)

	for _, center := range []bool{false, true} {
		cfg := Config{NFFT: 512, WindowLength: 400, HopLength: 128, Window: windowing.TypeBlackman, Center: center}
		_, err := STFT(signal, 44100, cfg)
		require.NoError(t, err)
		assert.Equal(t, saved, signal)
	}
}

func TestSTFT32MatchesDoublePrecision(t *testing.T) {
	signal := randomSignal(4096, 19)
	signal32 := make([]float32, len(signal))
	for i, v := range signal {
		signal32[i] = float32(v)
	}

	cfg := NewConfig(1024)

	want, err := STFT(signal, 44100, cfg)
	require.NoError(t, err)
	got, err := STFT32(signal32, 44100, cfg)
	require.NoError(t, err)

	require.Equal(t, want.NumFrames(), got.NumFrames())
	require.Equal(t, want.NumBins(), got.NumBins())

	for f := 0; f < want.NumFrames(); f++ {
		w := want.Frame(f)
		g := got.Frame(f)
		tol := 1e-3 * maxMagnitude(w)
		for i := range w {
			require.InDelta(t, real(w[i]), float64(real(g[i])), tol, "frame %d bin %d real part", f, i)
			require.InDelta(t, imag(w[i]), float64(imag(g[i])), tol, "frame %d bin %d imag part", f, i)
		}
	}
}

func TestSTFTResolutionBookkeeping(t *testing.T) {
	cfg := NewConfig(2048)
	result, err := STFT(randomSignal(8192, 23), 44100, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 44100.0/2048.0, result.FreqResolution, 1e-12)
	assert.InDelta(t, 512.0/44100.0, result.TimeResolution, 1e-12)
	assert.Equal(t, 44100, result.SampleRate)
}
