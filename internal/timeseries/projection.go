package timeseries

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"tsanalyzer/internal/dataset"
	"tsanalyzer/pkg/contracts/domain"
)

// SpectralConfig tunes the frequency-domain projection.
type SpectralConfig struct {
	// FallbackSpacing substitutes for the sample spacing when the time axis
	// has degenerate deltas (all identical time points, or spacing within
	// floating tolerance of zero). The 0.1 default keeps the transform
	// computable at the cost of an approximate frequency axis.
	FallbackSpacing float64
	// Tolerance is the relative floating tolerance used for near-uniform
	// spacing detection and the zero-spacing guard.
	Tolerance float64
}

// DefaultSpectralConfig returns the standard projection settings.
func DefaultSpectralConfig() SpectralConfig {
	return SpectralConfig{FallbackSpacing: 0.1, Tolerance: 1e-9}
}

// TimeDomain projects the series onto the time domain: time values verbatim
// plus one value sequence per column, with missing entries as explicit nils.
// NaN never appears in the output.
func (s *Series) TimeDomain() *domain.TimeDomainBlock {
	block := &domain.TimeDomainBlock{
		Time:   make([]any, 0, s.Data.RowCount()),
		Series: make(map[string][]*float64, len(s.ValueColumns)),
	}
	for _, c := range s.Data.Column(s.TimeColumn) {
		block.Time = append(block.Time, c.Native())
	}
	for _, name := range s.ValueColumns {
		cells := s.Data.Column(name)
		seq := make([]*float64, len(cells))
		for i, c := range cells {
			if f, ok := c.Float(); ok && !math.IsNaN(f) {
				v := f
				seq[i] = &v
			}
		}
		block.Series[name] = seq
	}
	return block
}

// FrequencyDomain projects every value column onto the frequency domain:
// the magnitude of the discrete Fourier transform over strictly positive
// frequency bins. Missing values are filled by linear interpolation against
// sample index before the transform so each column keeps its full length.
func (s *Series) FrequencyDomain(cfg SpectralConfig) (block *domain.FrequencyDomainBlock, err error) {
	defer func() {
		if r := recover(); r != nil {
			block = nil
			err = domain.WrapError(domain.ErrFrequencyDomain, fmt.Errorf("%v", r),
				"frequency domain transform failed")
		}
	}()

	times, err := s.numericTimeAxis()
	if err != nil {
		return nil, err
	}
	if len(times) < 2 {
		return nil, domain.NewError(domain.ErrInsufficientSamples,
			"frequency analysis requires at least 2 time points, got %d", len(times))
	}
	spacing := sampleSpacing(times, cfg)

	block = &domain.FrequencyDomainBlock{
		Frequencies: make(map[string][]float64, len(s.ValueColumns)),
		Amplitudes:  make(map[string][]float64, len(s.ValueColumns)),
	}
	for _, name := range s.ValueColumns {
		freqs, amps, err := spectrum(s.Data.Column(name), spacing)
		if err != nil {
			return nil, domain.WrapError(domain.ErrFrequencyDomain, err,
				"frequency domain transform failed for column %q", name)
		}
		block.Frequencies[name] = freqs
		block.Amplitudes[name] = amps
	}
	return block, nil
}

// numericTimeAxis converts the time column to floats. Temporal cells become
// epoch seconds.
func (s *Series) numericTimeAxis() ([]float64, error) {
	cells := s.Data.Column(s.TimeColumn)
	out := make([]float64, len(cells))
	for i, c := range cells {
		v := dataset.CoerceNumber(c)
		f, ok := v.Float()
		if !ok {
			return nil, domain.NewError(domain.ErrUnparseableTime,
				"time column %q has a non-numeric entry at row %d", s.TimeColumn, i)
		}
		out[i] = f
	}
	return out, nil
}

// sampleSpacing derives the assumed uniform interval between consecutive
// samples. Near-uniform axes use the mean consecutive difference; otherwise
// the overall span divided by (n-1). Degenerate axes fall back to the
// configured fixed spacing.
func sampleSpacing(times []float64, cfg SpectralConfig) float64 {
	n := len(times)

	mean := 0.0
	for i := 1; i < n; i++ {
		mean += times[i] - times[i-1]
	}
	mean /= float64(n - 1)

	uniform := true
	tol := cfg.Tolerance * math.Max(1, math.Abs(mean))
	for i := 1; i < n; i++ {
		if math.Abs((times[i]-times[i-1])-mean) > tol {
			uniform = false
			break
		}
	}

	spacing := mean
	if !uniform {
		spacing = (times[n-1] - times[0]) / float64(n-1)
	}

	distinct := 1
	for i := 1; i < n; i++ {
		if times[i] != times[i-1] {
			distinct++
		}
	}
	if distinct < 2 || math.Abs(spacing) <= tol {
		return cfg.FallbackSpacing
	}
	return spacing
}

// spectrum computes positive-frequency bins and magnitudes for one column.
func spectrum(cells []dataset.Value, spacing float64) ([]float64, []float64, error) {
	seq := interpolateMissing(cells)
	n := len(seq)
	for i, v := range seq {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("non-finite sample at index %d", i)
		}
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	// Strictly positive bins only: bin 0 is the DC component, and for even n
	// the Nyquist bin folds onto a negative frequency.
	last := (n - 1) / 2
	freqs := make([]float64, 0, last)
	amps := make([]float64, 0, last)
	for i := 1; i <= last; i++ {
		freqs = append(freqs, float64(i)/(float64(n)*spacing))
		amps = append(amps, cmplx.Abs(coeffs[i]))
	}
	return freqs, amps, nil
}

// interpolateMissing fills missing cells by linear interpolation against the
// integer sample index, holding the nearest known value at the edges, so the
// column keeps its original sample count.
func interpolateMissing(cells []dataset.Value) []float64 {
	n := len(cells)
	out := make([]float64, n)
	known := make([]bool, n)
	prev := -1
	for i, c := range cells {
		if f, ok := c.Float(); ok && !math.IsNaN(f) {
			out[i] = f
			known[i] = true
			if prev >= 0 && i-prev > 1 {
				step := (out[i] - out[prev]) / float64(i-prev)
				for j := prev + 1; j < i; j++ {
					out[j] = out[prev] + step*float64(j-prev)
				}
			}
			prev = i
		}
	}
	// Edge fill: run out to the boundaries from the outermost known samples.
	first := -1
	for i := 0; i < n; i++ {
		if known[i] {
			first = i
			break
		}
	}
	if first > 0 {
		for i := 0; i < first; i++ {
			out[i] = out[first]
		}
	}
	if prev >= 0 && prev < n-1 {
		for i := prev + 1; i < n; i++ {
			out[i] = out[prev]
		}
	}
	return out
}
