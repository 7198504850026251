package diagnostics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderAppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frames.csv")

	rec, err := NewRecorder(path)
	require.NoError(t, err)

	require.NoError(t, rec.Append(FrameRecord{Frame: 1, PoolExhausted: 0, FPSTotal: 60.5}))
	require.NoError(t, rec.Append(FrameRecord{Frame: 2, GridOverflow: 3, FPSTotal: 59.1}))
	require.NoError(t, rec.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var rows []FrameRecord
	require.NoError(t, gocsv.UnmarshalBytes(data, &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].Frame)
	assert.Equal(t, int64(3), rows[1].GridOverflow)
	assert.InDelta(t, 59.1, rows[1].FPSTotal, 1e-6)
}
