// Package trainer runs the epoch-based training loop for the MNIST
// classifier.
package trainer

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gradflow-ml/gradflow/internal/dataset"
	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/metrics"
	"github.com/gradflow-ml/gradflow/internal/model"
	"github.com/gradflow-ml/gradflow/internal/nn"
	"github.com/gradflow-ml/gradflow/internal/optim"
	"github.com/gradflow-ml/gradflow/internal/tensor"
)

// ErrNumericInstability reports that a batch produced a NaN or Inf
// loss. Training stops immediately; continuing would only propagate
// garbage into the weights.
var ErrNumericInstability = errors.New("non-finite loss")

// Optimizer choices accepted by Config.Optimizer.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// Config captures the knobs of a training run.
type Config struct {
	LearningRate float64
	Epochs       int
	BatchSize    int
	HiddenUnits  int
	Seed         int64
	Optimizer    string // "sgd" or "adam"
	LogEvery     int    // batches between progress log lines
}

// DefaultConfig returns the standard MNIST training setup.
func DefaultConfig() Config {
	return Config{
		LearningRate: 0.5,
		Epochs:       10,
		BatchSize:    100,
		HiddenUnits:  300,
		Seed:         1,
		Optimizer:    OptimizerSGD,
		LogEvery:     100,
	}
}

// Validate verifies the config describes a runnable training job.
func (c *Config) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning rate must be > 0 (got %v)", c.LearningRate)
	}
	if c.Epochs <= 0 {
		return fmt.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be > 0 (got %d)", c.BatchSize)
	}
	if c.HiddenUnits <= 0 {
		return fmt.Errorf("hidden units must be > 0 (got %d)", c.HiddenUnits)
	}
	if c.Optimizer != OptimizerSGD && c.Optimizer != OptimizerAdam {
		return fmt.Errorf("unknown optimizer %q (want %q or %q)", c.Optimizer, OptimizerSGD, OptimizerAdam)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	return nil
}

// EpochSink receives a record after every completed epoch. Used for
// progress reporting and metric export.
type EpochSink func(metrics.EpochRecord)

// Trainer owns the model, loss, and optimizer for a training run.
type Trainer[B graph.Recorder] struct {
	cfg       Config
	backend   B
	model     *model.MLP[B]
	criterion *nn.ClippedCrossEntropy[B]
	optimizer optim.Optimizer
	sink      EpochSink
}

// New builds a Trainer from a validated config. The sink may be nil.
func New[B graph.Recorder](cfg Config, backend B, sink EpochSink) (*Trainer[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("trainer: %w", err)
	}

	mdl := model.NewMLP(cfg.HiddenUnits, backend)

	var optimizer optim.Optimizer
	switch cfg.Optimizer {
	case OptimizerAdam:
		optimizer = optim.NewAdam(mdl.Parameters(), optim.AdamConfig{LR: float32(cfg.LearningRate)})
	default:
		optimizer = optim.NewSGD(mdl.Parameters(), optim.SGDConfig{LR: float32(cfg.LearningRate)})
	}

	return &Trainer[B]{
		cfg:       cfg,
		backend:   backend,
		model:     mdl,
		criterion: nn.NewClippedCrossEntropy(backend),
		optimizer: optimizer,
		sink:      sink,
	}, nil
}

// Model returns the trained network, e.g. for checkpointing.
func (t *Trainer[B]) Model() *model.MLP[B] { return t.model }

// Fit trains for the configured number of epochs, evaluating on test
// after each epoch when test is non-nil. Returns the collected run
// metrics.
//
// A NaN or Inf batch loss aborts the run with ErrNumericInstability.
func (t *Trainer[B]) Fit(train, test *dataset.Dataset[B]) (*metrics.Run, error) {
	run := metrics.NewRun()
	log.Printf("run=%s starting: epochs=%d batch_size=%d lr=%g optimizer=%s backend=%s",
		run.ID, t.cfg.Epochs, t.cfg.BatchSize, t.cfg.LearningRate, t.cfg.Optimizer, t.backend.Name())

	var epochWindow, logWindow metrics.Window
	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		epochStart := time.Now()
		numBatches := train.NumBatches(t.cfg.BatchSize)

		for b := 0; b < numBatches; b++ {
			batch := train.NextBatch(t.cfg.BatchSize)

			stepStart := time.Now()
			loss, err := t.step(batch)
			if err != nil {
				return run, fmt.Errorf("epoch %d batch %d: %w", epoch, b, err)
			}
			elapsed := time.Since(stepStart)
			epochWindow.Record(batch.Size, elapsed, loss)
			logWindow.Record(batch.Size, elapsed, loss)

			if (b+1)%t.cfg.LogEvery == 0 {
				snap := logWindow.Snapshot()
				log.Printf("epoch=%d batch=%d/%d avg_loss=%.4f examples_per_sec=%.0f",
					epoch, b+1, numBatches, snap.AvgLoss, snap.ExamplesPerSec)
			}
		}
		logWindow.Snapshot()

		snap := epochWindow.Snapshot()
		rec := metrics.EpochRecord{
			Epoch:    epoch,
			AvgLoss:  snap.AvgLoss,
			Examples: snap.Examples,
			Duration: time.Since(epochStart),
		}
		if test != nil {
			rec.Accuracy = t.Evaluate(test)
		}

		run.Append(rec)
		if t.sink != nil {
			t.sink(rec)
		}
		log.Printf("epoch=%d done: avg_loss=%.3f accuracy=%.4f duration=%s",
			epoch, rec.AvgLoss, rec.Accuracy, rec.Duration.Round(time.Millisecond))
	}

	return run, nil
}

// step runs forward, backward, and optimizer update for one batch and
// returns the batch loss. Both the loss and the gradients are checked
// for NaN/Inf before they can reach the weights.
func (t *Trainer[B]) step(batch *dataset.Batch[B]) (float64, error) {
	tape := t.backend.Tape()
	tape.Clear()
	tape.StartRecording()
	defer tape.StopRecording()

	logits := t.model.Forward(batch.Images)
	loss := t.criterion.Forward(logits, batch.Labels)

	lossVal := float64(loss.Item())
	if math.IsNaN(lossVal) || math.IsInf(lossVal, 0) {
		return lossVal, fmt.Errorf("%w: loss=%v", ErrNumericInstability, lossVal)
	}

	grads := graph.Backward(loss, t.backend)
	tape.Clear()

	if hasNonFinite(grads) {
		return lossVal, fmt.Errorf("%w: non-finite gradient", ErrNumericInstability)
	}

	t.optimizer.Step(grads)
	return lossVal, nil
}

// hasNonFinite reports whether any gradient holds a NaN or Inf entry.
func hasNonFinite(grads map[*tensor.RawTensor]*tensor.RawTensor) bool {
	for _, g := range grads {
		if g.DType() != tensor.Float32 {
			continue
		}
		for _, v := range g.AsFloat32() {
			if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
				return true
			}
		}
	}
	return false
}

// Evaluate computes classification accuracy over a whole dataset
// without touching the tape.
func (t *Trainer[B]) Evaluate(d *dataset.Dataset[B]) float64 {
	batch := d.All()
	probs := t.model.Probabilities(batch.Images)
	return nn.Accuracy(probs, batch.Labels)
}
