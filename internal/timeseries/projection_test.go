package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsanalyzer/internal/dataset"
	"tsanalyzer/pkg/contracts/domain"
)

func TestFrequencyDomainSinePeak(t *testing.T) {
	// 5 Hz sine sampled at 100 Hz over 2 seconds: well above Nyquist, ten
	// full cycles. The dominant bin must land within one bin width of 5 Hz.
	const (
		freq = 5.0
		rate = 100.0
		n    = 200
	)
	times := make([]float64, n)
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		times[i] = float64(i) / rate
		values[i] = math.Sin(2 * math.Pi * freq * times[i])
	}
	d := numericDataset(t, map[string][]float64{"t": times, "signal": values}, "t", "signal")

	s, err := New(d, "t", []string{"signal"})
	require.NoError(t, err)

	block, err := s.FrequencyDomain(DefaultSpectralConfig())
	require.NoError(t, err)

	freqs := block.Frequencies["signal"]
	amps := block.Amplitudes["signal"]
	require.NotEmpty(t, freqs)
	require.Len(t, amps, len(freqs))

	peak := 0
	for i := range amps {
		if amps[i] > amps[peak] {
			peak = i
		}
	}
	binWidth := rate / float64(n)
	assert.InDelta(t, freq, freqs[peak], binWidth)

	// Bins are ascending and strictly positive.
	for i, f := range freqs {
		assert.Greater(t, f, 0.0)
		if i > 0 {
			assert.Greater(t, f, freqs[i-1])
		}
	}
}

func TestFrequencyDomainBinCount(t *testing.T) {
	// n samples yield floor((n-1)/2) strictly positive bins: DC is dropped
	// and, for even n, so is the Nyquist bin.
	tests := []struct {
		n    int
		want int
	}{
		{n: 8, want: 3},
		{n: 9, want: 4},
		{n: 2, want: 0},
	}
	for _, tt := range tests {
		times := make([]float64, tt.n)
		values := make([]float64, tt.n)
		for i := range times {
			times[i] = float64(i)
			values[i] = float64(i % 3)
		}
		d := numericDataset(t, map[string][]float64{"t": times, "v": values}, "t", "v")
		s, err := New(d, "", nil)
		require.NoError(t, err)

		block, err := s.FrequencyDomain(DefaultSpectralConfig())
		require.NoError(t, err)
		assert.Len(t, block.Frequencies["v"], tt.want)
		assert.Len(t, block.Amplitudes["v"], tt.want)
	}
}

func TestFrequencyDomainInterpolatesMissing(t *testing.T) {
	d := dataset.New("t", "v")
	times := make([]dataset.Value, 16)
	values := make([]dataset.Value, 16)
	for i := range times {
		times[i] = dataset.Number(float64(i))
		values[i] = dataset.Number(float64(i))
	}
	values[5] = dataset.Missing()
	values[6] = dataset.Missing()
	require.NoError(t, d.SetColumn("t", times))
	require.NoError(t, d.SetColumn("v", values))

	s, err := New(d, "", nil)
	require.NoError(t, err)

	block, err := s.FrequencyDomain(DefaultSpectralConfig())
	require.NoError(t, err)

	// The column keeps its full sample count: 16 samples -> 7 positive bins.
	assert.Len(t, block.Frequencies["v"], 7)
	for _, a := range block.Amplitudes["v"] {
		assert.False(t, math.IsNaN(a))
	}
}

func TestFrequencyDomainInsufficientSamples(t *testing.T) {
	d := numericDataset(t, map[string][]float64{"t": {1}, "v": {10}}, "t", "v")
	s, err := New(d, "", nil)
	require.NoError(t, err)

	_, err = s.FrequencyDomain(DefaultSpectralConfig())
	assert.True(t, domain.IsKind(err, domain.ErrInsufficientSamples))
}

func TestFrequencyDomainDegenerateSpacingFallback(t *testing.T) {
	// All time points identical: the transform stays computable with the
	// configured fallback spacing instead of failing.
	d := numericDataset(t, map[string][]float64{
		"t": {7, 7, 7, 7},
		"v": {1, 2, 3, 4},
	}, "t", "v")
	s, err := New(d, "", nil)
	require.NoError(t, err)

	cfg := DefaultSpectralConfig()
	block, err := s.FrequencyDomain(cfg)
	require.NoError(t, err)

	// First positive bin for n=4 at fallback spacing 0.1: 1/(4*0.1) = 2.5.
	require.NotEmpty(t, block.Frequencies["v"])
	assert.InDelta(t, 1/(4*cfg.FallbackSpacing), block.Frequencies["v"][0], 1e-12)
}

func TestFrequencyDomainTemporalAxis(t *testing.T) {
	d := dataset.New("date", "v")
	require.NoError(t, d.SetColumn("date", []dataset.Value{
		dataset.String("2023-01-01 00:00:00"),
		dataset.String("2023-01-01 00:00:01"),
		dataset.String("2023-01-01 00:00:02"),
		dataset.String("2023-01-01 00:00:03"),
	}))
	require.NoError(t, d.SetColumn("v", []dataset.Value{
		dataset.Number(0), dataset.Number(1), dataset.Number(0), dataset.Number(1),
	}))

	s, err := New(d, "", nil)
	require.NoError(t, err)

	block, err := s.FrequencyDomain(DefaultSpectralConfig())
	require.NoError(t, err)

	// One-second spacing: the single positive bin sits at 0.25 Hz.
	require.Len(t, block.Frequencies["v"], 1)
	assert.InDelta(t, 0.25, block.Frequencies["v"][0], 1e-12)
}

func TestSampleSpacing(t *testing.T) {
	cfg := DefaultSpectralConfig()
	tests := []struct {
		name  string
		times []float64
		want  float64
	}{
		{name: "uniform", times: []float64{0, 1, 2, 3}, want: 1},
		{name: "non-uniform uses span", times: []float64{0, 1, 5, 9}, want: 3},
		{name: "all identical falls back", times: []float64{4, 4, 4}, want: cfg.FallbackSpacing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, sampleSpacing(tt.times, cfg), 1e-12)
		})
	}
}

func TestInterpolateMissingEdges(t *testing.T) {
	cells := []dataset.Value{
		dataset.Missing(),
		dataset.Number(10),
		dataset.Missing(),
		dataset.Missing(),
		dataset.Number(40),
		dataset.Missing(),
	}
	got := interpolateMissing(cells)
	assert.Equal(t, []float64{10, 10, 20, 30, 40, 40}, got)
}
