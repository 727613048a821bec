package printer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrinter struct {
	err       error
	jobs      [][]byte
	connected bool
}

func (s *stubPrinter) Print(data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, data)
	return nil
}

func (s *stubPrinter) Close() error      { return nil }
func (s *stubPrinter) IsConnected() bool { return s.connected }

func TestFallbackUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &stubPrinter{connected: true}
	secondary := &stubPrinter{}
	fp := NewFallbackPrinter(primary, secondary)

	surface, err := fp.PrintVia([]byte("job"))
	require.NoError(t, err)
	assert.Equal(t, SurfacePrimary, surface)
	assert.Len(t, primary.jobs, 1)
	assert.Empty(t, secondary.jobs)
}

func TestFallbackFallsThroughWhenPrimaryBlocked(t *testing.T) {
	primary := &stubPrinter{err: ErrNotConnected}
	secondary := &stubPrinter{}
	fp := NewFallbackPrinter(primary, secondary)

	surface, err := fp.PrintVia([]byte("job"))
	require.NoError(t, err)
	assert.Equal(t, SurfaceSecondary, surface)
	assert.Len(t, secondary.jobs, 1)
}

func TestFallbackReportsBothFailures(t *testing.T) {
	fp := NewFallbackPrinter(&stubPrinter{err: ErrNotConnected}, &stubPrinter{err: errors.New("disk full")})

	_, err := fp.PrintVia([]byte("job"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotConnected)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSpoolPrinterWritesJobs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "spool")
	p := NewSpoolPrinter(dir)

	require.NoError(t, p.Print([]byte("one")))
	require.NoError(t, p.Print([]byte("two")))
	assert.True(t, p.IsConnected())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestNewPrinterFromConfig(t *testing.T) {
	_, err := NewPrinterFromConfig(TypeUSB, "", "", "")
	assert.Error(t, err)

	p, err := NewPrinterFromConfig("", "", "", "")
	require.NoError(t, err)
	assert.False(t, p.IsConnected())

	_, err = NewPrinterFromConfig("bluetooth", "", "", "")
	assert.Error(t, err)
}
