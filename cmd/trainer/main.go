// Package main provides the MLP trainer CLI.
//
// Usage:
//
//	trainer -config configs/mnist.yaml
//	trainer -synthetic -epochs 3 -optimizer adam -lr 0.003
//	trainer version
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"

	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/config"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/data"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/nn"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/optim"
	"github.com/mukulkrjha/deep-learning-v2-pytorch/internal/trainer"
)

const version = "v0.1.0"

// Synthetic data mimics MNIST's shape so the default model fits both.
const (
	syntheticFeatures = 784
	syntheticSamples  = 2000
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("trainer %s\n", version)
		return
	}

	cfgPath := flag.String("config", "", "Path to YAML config (defaults apply when empty)")
	dataDir := flag.String("data", "", "Directory with MNIST/Fashion-MNIST IDX files")
	synthetic := flag.Bool("synthetic", false, "Train on generated Gaussian clusters")
	epochs := flag.Int("epochs", 0, "Number of epochs")
	batchSize := flag.Int("batch", 0, "Batch size")
	lr := flag.Float64("lr", 0, "Learning rate")
	optimizer := flag.String("optimizer", "", "Optimizer: sgd or adam")
	dropout := flag.Float64("dropout", 0, "Dropout probability after hidden layers")
	seed := flag.Int64("seed", 0, "PRNG seed")
	logEvery := flag.Int("log-every", 0, "Log every N steps")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}
	cfg.ApplyOverrides(config.Overrides{
		DataDir:   *dataDir,
		Synthetic: *synthetic,
		Epochs:    *epochs,
		BatchSize: *batchSize,
		LR:        *lr,
		Optimizer: *optimizer,
		Dropout:   *dropout,
		Seed:      *seed,
		LogEvery:  *logEvery,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	log.Printf("cpu=%q cores=%d threads=%d avx2=%t fma=%t",
		cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores,
		cpuid.CPU.Supports(cpuid.AVX2), cpuid.CPU.Supports(cpuid.FMA3))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("training failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	trainDS, testDS, err := loadData(cfg)
	if err != nil {
		return err
	}
	log.Printf("train=%d test=%d features=%d classes=%d", trainDS.Len(), testDS.Len(), trainDS.Width(), trainDS.Classes)

	var valDS *data.Dataset
	if cfg.Data.ValSplit > 0 {
		if trainDS, valDS, err = trainDS.Split(cfg.Data.ValSplit, cfg.Seed); err != nil {
			return err
		}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	sizes := append([]int{trainDS.Width()}, cfg.Model.Hidden...)
	sizes = append(sizes, trainDS.Classes)
	model, err := nn.NewMLP(nn.MLPConfig{Sizes: sizes, Dropout: cfg.Model.Dropout, Rng: rng})
	if err != nil {
		return err
	}

	opt, err := optim.New(model.Parameters(), optim.Config{
		Name:     cfg.Optimizer.Name,
		LR:       cfg.Optimizer.LR,
		Momentum: cfg.Optimizer.Momentum,
		Betas:    cfg.Optimizer.Betas,
		Eps:      cfg.Optimizer.Eps,
	})
	if err != nil {
		return err
	}

	session, err := trainer.New(model, opt, nn.NewNLLLoss(),
		trainer.WithLogger(log.Default()),
		trainer.WithLogEvery(cfg.LogEvery),
	)
	if err != nil {
		return err
	}
	log.Printf("session=%s layers=%v dropout=%.2f optimizer=%s lr=%g params=%d",
		session.ID, sizes, cfg.Model.Dropout, cfg.Optimizer.Name, opt.LR(), model.NumParameters())

	train, err := data.NewLoader(trainDS, data.LoaderConfig{BatchSize: cfg.BatchSize, Shuffle: true, Seed: cfg.Seed})
	if err != nil {
		return err
	}
	var val data.Source
	if valDS != nil {
		if val, err = data.NewLoader(valDS, data.LoaderConfig{BatchSize: cfg.BatchSize}); err != nil {
			return err
		}
	}
	if _, err := session.Fit(ctx, train, val, cfg.Epochs); err != nil {
		return err
	}

	test, err := data.NewLoader(testDS, data.LoaderConfig{BatchSize: cfg.BatchSize})
	if err != nil {
		return err
	}
	res, err := session.Evaluate(ctx, test)
	if err != nil {
		return err
	}
	log.Printf("session=%s test_loss=%.4f test_acc=%.4f correct=%d total=%d",
		session.ID, res.Loss, res.Accuracy, res.Correct, res.Total)
	return nil
}

// loadData returns the train and test datasets.
func loadData(cfg *config.Config) (train, test *data.Dataset, err error) {
	if cfg.Data.Synthetic {
		samples := cfg.Data.Samples
		if samples == 0 {
			samples = syntheticSamples
		}
		ds, err := data.Synthetic(data.SyntheticConfig{
			Samples:  samples,
			Features: syntheticFeatures,
			Classes:  data.MNISTClasses,
			Seed:     cfg.Seed,
		})
		if err != nil {
			return nil, nil, err
		}
		// Hold out a fixed sixth as the test set.
		return ds.Split(1.0/6, cfg.Seed+1)
	}

	if train, err = data.LoadMNIST(cfg.Data.Dir, true, cfg.Data.Samples); err != nil {
		return nil, nil, errors.Wrap(err, "load training set")
	}
	if test, err = data.LoadMNIST(cfg.Data.Dir, false, 0); err != nil {
		return nil, nil, errors.Wrap(err, "load test set")
	}
	return train, test, nil
}
