// Package metrics accumulates training statistics and exports them per
// run.
package metrics

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Window accumulates loss and timing stats across training steps.
// Snapshot drains it, so one Window can serve consecutive epochs.
type Window struct {
	samples   int
	steps     int
	compute   time.Duration
	totalLoss float64
	lastLoss  float64
}

// Record adds one training step to the window.
func (w *Window) Record(batchSize int, computeTime time.Duration, loss float64) {
	w.samples += batchSize
	w.steps++
	w.compute += computeTime
	w.totalLoss += loss
	w.lastLoss = loss
}

// Snapshot returns aggregated stats and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{LastLoss: w.lastLoss, Steps: w.steps, Examples: w.samples}
	if w.compute > 0 {
		snap.ExamplesPerSec = float64(w.samples) / w.compute.Seconds()
	}
	if w.steps > 0 {
		snap.AvgLoss = w.totalLoss / float64(w.steps)
	}

	w.samples = 0
	w.steps = 0
	w.compute = 0
	w.totalLoss = 0
	return snap
}

// Snapshot represents loggable aggregated metrics.
type Snapshot struct {
	ExamplesPerSec float64
	AvgLoss        float64
	LastLoss       float64
	Steps          int
	Examples       int
}

// EpochRecord captures the outcome of one training epoch.
type EpochRecord struct {
	Epoch    int
	AvgLoss  float64
	Accuracy float64
	Examples int
	Duration time.Duration
}

// Run collects the epoch records of a single training run under a
// unique identifier.
type Run struct {
	ID      string
	Started time.Time
	Epochs  []EpochRecord
}

// NewRun starts an empty run with a fresh UUID.
func NewRun() *Run {
	return &Run{
		ID:      uuid.NewString(),
		Started: time.Now(),
	}
}

// Append adds an epoch record to the run.
func (r *Run) Append(rec EpochRecord) {
	r.Epochs = append(r.Epochs, rec)
}

// Last returns the most recent epoch record, or a zero record for an
// empty run.
func (r *Run) Last() EpochRecord {
	if len(r.Epochs) == 0 {
		return EpochRecord{}
	}
	return r.Epochs[len(r.Epochs)-1]
}

// WriteCSV writes the run's epoch records as CSV with a header row.
func (r *Run) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "epoch", "avg_loss", "accuracy", "examples", "duration_ms"}); err != nil {
		return err
	}
	for _, rec := range r.Epochs {
		row := []string{
			r.ID,
			strconv.Itoa(rec.Epoch),
			strconv.FormatFloat(rec.AvgLoss, 'f', 6, 64),
			strconv.FormatFloat(rec.Accuracy, 'f', 6, 64),
			strconv.Itoa(rec.Examples),
			strconv.FormatInt(rec.Duration.Milliseconds(), 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the run's epoch records to a file.
func (r *Run) SaveCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	defer f.Close()

	if err := r.WriteCSV(f); err != nil {
		return err
	}
	return f.Close()
}
