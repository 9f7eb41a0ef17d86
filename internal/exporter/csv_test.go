package exporter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tsanalyzer/pkg/contracts/domain"
)

func ptr(v float64) *float64 { return &v }

func timeDomainFixture() *domain.TimeDomainBlock {
	return &domain.TimeDomainBlock{
		Time: []any{1.0, 2.0, 3.0},
		Series: map[string][]*float64{
			"temp":     {ptr(10.5), nil, ptr(30)},
			"humidity": {ptr(55), ptr(60), nil},
		},
	}
}

func TestTimeDomainCSV(t *testing.T) {
	var buf bytes.Buffer
	err := TimeDomainCSV(&buf, timeDomainFixture(), "time", []string{"temp", "humidity"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "time,temp,humidity", lines[0])
	assert.Equal(t, "1,10.5,55", lines[1])
	assert.Equal(t, "2,,60", lines[2])
	assert.Equal(t, "3,30,", lines[3])
}

func TestFrequencyDomainCSV(t *testing.T) {
	block := &domain.FrequencyDomainBlock{
		Frequencies: map[string][]float64{
			"temp":     {0.25, 0.5},
			"humidity": {0.25},
		},
		Amplitudes: map[string][]float64{
			"temp":     {4.2, 1.1},
			"humidity": {3.3},
		},
	}

	var buf bytes.Buffer
	err := FrequencyDomainCSV(&buf, block, []string{"temp", "humidity"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "temp_frequency,temp_amplitude", lines[0])
	assert.Equal(t, "0.25,4.2", lines[1])
	assert.Equal(t, "0.5,1.1", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "humidity_frequency,humidity_amplitude", lines[4])
	assert.Equal(t, "0.25,3.3", lines[5])
}

func TestTimeDomainXLSX(t *testing.T) {
	var buf bytes.Buffer
	err := TimeDomainXLSX(&buf, timeDomainFixture(), "time", []string{"temp"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"time", "temp"}, rows[0])
	assert.Equal(t, []string{"1", "10.5"}, rows[1])
	assert.Equal(t, []string{"2"}, rows[2], "missing cell stays blank")
}

func TestFrequencyDomainXLSX(t *testing.T) {
	block := &domain.FrequencyDomainBlock{
		Frequencies: map[string][]float64{"temp": {0.25, 0.5}, "humidity": {0.25}},
		Amplitudes:  map[string][]float64{"temp": {4.2, 1.1}, "humidity": {3.3}},
	}

	var buf bytes.Buffer
	err := FrequencyDomainXLSX(&buf, block, []string{"temp", "humidity"})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"temp", "humidity"}, f.GetSheetList())

	rows, err := f.GetRows("temp")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"frequency", "amplitude"}, rows[0])
	assert.Equal(t, []string{"0.25", "4.2"}, rows[1])
}
