package diagnostics

import (
	"os"

	"github.com/gocarina/gocsv"
)

// FrameRecord is one CSV row of per-frame fault counters and phase FPS,
// written by a Recorder for offline analysis.
type FrameRecord struct {
	Frame                int64   `csv:"frame"`
	PoolExhausted        int64   `csv:"pool_exhausted"`
	GridOverflow         int64   `csv:"grid_overflow"`
	TransientWorkerFault int64   `csv:"transient_worker_fault"`
	FPSTotal             float64 `csv:"fps_total"`
}

// Recorder appends FrameRecord rows to a CSV file, writing the header
// once on the first row.
type Recorder struct {
	file          *os.File
	headerWritten bool
}

// NewRecorder creates (or truncates) path for CSV output.
func NewRecorder(path string) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Recorder{file: f}, nil
}

// Close flushes and closes the underlying file.
func (r *Recorder) Close() error { return r.file.Close() }

// Append writes one frame's counters and FPS as a CSV row.
func (r *Recorder) Append(rec FrameRecord) error {
	rows := []FrameRecord{rec}
	if !r.headerWritten {
		if err := gocsv.MarshalFile(&rows, r.file); err != nil {
			return err
		}
		r.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(&rows, r.file)
}
