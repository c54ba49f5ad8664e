package trainer_test

import (
	"bytes"
	"log"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/internal/dataset"
	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/metrics"
	"github.com/gradflow-ml/gradflow/internal/trainer"
)

type testBackend = *graph.Graph[*cpu.CPUBackend]

func testConfig() trainer.Config {
	cfg := trainer.DefaultConfig()
	cfg.Epochs = 3
	cfg.BatchSize = 10
	cfg.HiddenUnits = 16
	cfg.LearningRate = 0.5
	return cfg
}

func syntheticData(t *testing.T, g testBackend, n int) *dataset.Dataset[testBackend] {
	t.Helper()
	d, err := dataset.Synthetic(n, 1, g)
	require.NoError(t, err)
	return d
}

func TestConfig_Validate(t *testing.T) {
	cfg := trainer.DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.LearningRate = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Epochs = -1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.BatchSize = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.HiddenUnits = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Optimizer = "momentum"
	assert.Error(t, bad.Validate())
}

func TestDefaultConfig(t *testing.T) {
	cfg := trainer.DefaultConfig()
	assert.Equal(t, 0.5, cfg.LearningRate)
	assert.Equal(t, 10, cfg.Epochs)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 300, cfg.HiddenUnits)
	assert.Equal(t, trainer.OptimizerSGD, cfg.Optimizer)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = -1
	_, err := trainer.New(cfg, graph.New(cpu.New()), nil)
	assert.Error(t, err)
}

func TestFit_LossDecreases(t *testing.T) {
	g := graph.New(cpu.New())
	tr, err := trainer.New(testConfig(), g, nil)
	require.NoError(t, err)

	train := syntheticData(t, g, 50)
	run, err := tr.Fit(train, nil)
	require.NoError(t, err)

	require.Len(t, run.Epochs, 3)
	first, last := run.Epochs[0], run.Epochs[2]
	assert.Less(t, last.AvgLoss, first.AvgLoss,
		"separable synthetic data should train down")
	assert.False(t, math.IsNaN(last.AvgLoss))
}

func TestFit_EmitsEpochRecords(t *testing.T) {
	g := graph.New(cpu.New())

	var seen []metrics.EpochRecord
	tr, err := trainer.New(testConfig(), g, func(rec metrics.EpochRecord) {
		seen = append(seen, rec)
	})
	require.NoError(t, err)

	train := syntheticData(t, g, 30)
	test := syntheticData(t, g, 20)
	run, err := tr.Fit(train, test)
	require.NoError(t, err)

	require.Len(t, seen, 3)
	for i, rec := range seen {
		assert.Equal(t, i+1, rec.Epoch)
		assert.Equal(t, 30, rec.Examples)
		assert.Greater(t, rec.AvgLoss, 0.0)
		assert.GreaterOrEqual(t, rec.Accuracy, 0.0)
		assert.LessOrEqual(t, rec.Accuracy, 1.0)
	}
	assert.Equal(t, seen[2], run.Last())
}

func TestFit_LearnsSyntheticPatterns(t *testing.T) {
	g := graph.New(cpu.New())
	cfg := testConfig()
	cfg.Epochs = 10
	tr, err := trainer.New(cfg, g, nil)
	require.NoError(t, err)

	train := syntheticData(t, g, 100)
	test := syntheticData(t, g, 20)
	run, err := tr.Fit(train, test)
	require.NoError(t, err)

	// The synthetic patterns are linearly separable; the classifier
	// should nail them quickly.
	assert.Greater(t, run.Last().Accuracy, 0.9)
}

func TestFit_LogsEpochLossToThreeDecimals(t *testing.T) {
	g := graph.New(cpu.New())
	cfg := testConfig()
	cfg.Epochs = 1
	tr, err := trainer.New(cfg, g, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	_, err = tr.Fit(syntheticData(t, g, 20), nil)
	require.NoError(t, err)

	assert.Regexp(t, `epoch=1 done: avg_loss=\d+\.\d{3} `, buf.String())
}

func TestFit_DetectsNumericInstability(t *testing.T) {
	g := graph.New(cpu.New())
	tr, err := trainer.New(testConfig(), g, nil)
	require.NoError(t, err)

	// Poison one weight; the forward pass spreads the NaN into the
	// logits and the loss.
	tr.Model().Hidden().Weight().Tensor().Data()[0] = float32(math.NaN())

	train := syntheticData(t, g, 20)
	_, err = tr.Fit(train, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, trainer.ErrNumericInstability)
}

func TestFit_AdamOptimizer(t *testing.T) {
	g := graph.New(cpu.New())
	cfg := testConfig()
	cfg.Optimizer = trainer.OptimizerAdam
	cfg.LearningRate = 0.01

	tr, err := trainer.New(cfg, g, nil)
	require.NoError(t, err)

	train := syntheticData(t, g, 50)
	run, err := tr.Fit(train, nil)
	require.NoError(t, err)
	assert.Less(t, run.Epochs[2].AvgLoss, run.Epochs[0].AvgLoss)
}

func TestEvaluate_Bounds(t *testing.T) {
	g := graph.New(cpu.New())
	tr, err := trainer.New(testConfig(), g, nil)
	require.NoError(t, err)

	acc := tr.Evaluate(syntheticData(t, g, 20))
	assert.GreaterOrEqual(t, acc, 0.0)
	assert.LessOrEqual(t, acc, 1.0)
}
