// Command gradflow trains the MNIST MLP classifier.
//
// Usage:
//
//	gradflow -config configs/mnist.yaml
//	gradflow -data-format idx -data-path ./data/mnist -epochs 10
package main

import (
	"flag"
	"log"

	"github.com/gradflow-ml/gradflow/internal/backend/cpu"
	"github.com/gradflow-ml/gradflow/internal/config"
	"github.com/gradflow-ml/gradflow/internal/dataset"
	"github.com/gradflow-ml/gradflow/internal/graph"
	"github.com/gradflow-ml/gradflow/internal/nn"
	"github.com/gradflow-ml/gradflow/internal/trainer"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML config (optional)")
	learningRate := flag.Float64("lr", 0, "Learning rate")
	epochs := flag.Int("epochs", 0, "Number of training epochs")
	batchSize := flag.Int("batch-size", 0, "Batch size")
	hiddenUnits := flag.Int("hidden-units", 0, "Hidden layer width")
	seed := flag.Int64("seed", 0, "PRNG seed for example shuffling")
	optimizer := flag.String("optimizer", "", "Optimizer: sgd or adam")
	dataFormat := flag.String("data-format", "", "Data source: idx, csv, or synthetic")
	dataPath := flag.String("data-path", "", "IDX directory or CSV file")
	maxSamples := flag.Int("max-samples", 0, "Limit loaded samples (0 = all)")

	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		cfg = loaded
	}

	cfg.ApplyOverrides(config.Overrides{
		LearningRate: *learningRate,
		Epochs:       *epochs,
		BatchSize:    *batchSize,
		HiddenUnits:  *hiddenUnits,
		Seed:         *seed,
		Optimizer:    *optimizer,
		DataFormat:   *dataFormat,
		DataPath:     *dataPath,
		MaxSamples:   *maxSamples,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	backend := cpu.New()
	log.Printf("backend: %s", backend.Description())
	g := graph.New(backend)

	train, test, err := loadData(cfg, g)
	if err != nil {
		log.Fatalf("failed to load data: %v", err)
	}
	log.Printf("data: format=%s train=%d test=%d", cfg.DataFormat, train.NumExamples(), testSize(test))

	tr, err := trainer.New(cfg.Trainer(), g, nil)
	if err != nil {
		log.Fatalf("failed to build trainer: %v", err)
	}

	run, err := tr.Fit(train, test)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	if cfg.MetricsPath != "" {
		if err := run.SaveCSV(cfg.MetricsPath); err != nil {
			log.Fatalf("failed to write metrics: %v", err)
		}
		log.Printf("metrics written to %s", cfg.MetricsPath)
	}
	if cfg.CheckpointPath != "" {
		if err := nn.SaveCheckpoint(cfg.CheckpointPath, tr.Model()); err != nil {
			log.Fatalf("failed to write checkpoint: %v", err)
		}
		log.Printf("checkpoint written to %s", cfg.CheckpointPath)
	}

	log.Printf("run=%s finished: final_loss=%.4f final_accuracy=%.4f",
		run.ID, run.Last().AvgLoss, run.Last().Accuracy)
}

type backendT = *graph.Graph[*cpu.CPUBackend]

// loadData builds the train and test datasets from the configured
// source. Synthetic data and CSV files have no separate test set; we
// hold out a tenth of the examples instead.
func loadData(cfg *config.Config, g backendT) (train, test *dataset.Dataset[backendT], err error) {
	switch cfg.DataFormat {
	case config.FormatIDX:
		train, err = dataset.LoadMNIST(cfg.DataPath, true, cfg.MaxSamples, cfg.Seed, g)
		if err != nil {
			return nil, nil, err
		}
		test, err = dataset.LoadMNIST(cfg.DataPath, false, cfg.MaxSamples, cfg.Seed+1, g)
		if err != nil {
			return nil, nil, err
		}
		return train, test, nil

	case config.FormatCSV:
		full, err := dataset.LoadCSV(cfg.DataPath, cfg.MaxSamples, cfg.Seed, g)
		if err != nil {
			return nil, nil, err
		}
		return full.Split(0.1)

	default:
		n := cfg.MaxSamples
		if n == 0 {
			n = 1000
		}
		full, err := dataset.Synthetic(n, cfg.Seed, g)
		if err != nil {
			return nil, nil, err
		}
		return full.Split(0.1)
	}
}

func testSize(d *dataset.Dataset[backendT]) int {
	if d == nil {
		return 0
	}
	return d.NumExamples()
}
