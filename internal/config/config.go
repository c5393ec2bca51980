// Package config loads the YAML run configuration of the trainer.
package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	Data      DataConfig      `yaml:"data"`
	Model     ModelConfig     `yaml:"model"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Epochs    int             `yaml:"epochs"`
	BatchSize int             `yaml:"batch_size"`
	Seed      int64           `yaml:"seed"`
	LogEvery  int             `yaml:"log_every"`
}

// DataConfig selects the dataset. With Synthetic set, Dir is ignored.
type DataConfig struct {
	Dir       string  `yaml:"dir"`
	Synthetic bool    `yaml:"synthetic"`
	Samples   int     `yaml:"samples"`
	ValSplit  float64 `yaml:"val_split"`
}

// ModelConfig lists the hidden-layer widths of the MLP. Input and output
// widths come from the dataset.
type ModelConfig struct {
	Hidden  []int   `yaml:"hidden"`
	Dropout float64 `yaml:"dropout"`
}

// OptimizerConfig selects and tunes the optimizer.
type OptimizerConfig struct {
	Name     string     `yaml:"name"`
	LR       float64    `yaml:"lr"`
	Momentum float64    `yaml:"momentum"`
	Betas    [2]float64 `yaml:"betas"`
	Eps      float64    `yaml:"eps"`
}

// Overrides captures CLI supplied values. Zero values leave the config alone.
type Overrides struct {
	DataDir   string
	Synthetic bool
	Epochs    int
	BatchSize int
	LR        float64
	Optimizer string
	Dropout   float64
	Seed      int64
	LogEvery  int
}

// Default returns the configuration of the MNIST notebook: 784→128→10,
// SGD at 0.01, batch 64.
func Default() *Config {
	return &Config{
		Data:      DataConfig{Dir: "data/mnist", ValSplit: 0.1},
		Model:     ModelConfig{Hidden: []int{128}},
		Optimizer: OptimizerConfig{Name: "sgd", LR: 0.01},
		Epochs:    5,
		BatchSize: 64,
		Seed:      1,
		LogEvery:  100,
	}
}

// Load reads and validates a Config from a YAML file. Keys absent from the
// file keep their Default values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open config")
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over Default. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides updates c using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.Data.Dir = o.DataDir
	}
	if o.Synthetic {
		c.Data.Synthetic = true
	}
	if o.Epochs > 0 {
		c.Epochs = o.Epochs
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LR > 0 {
		c.Optimizer.LR = o.LR
	}
	if o.Optimizer != "" {
		c.Optimizer.Name = o.Optimizer
	}
	if o.Dropout > 0 {
		c.Model.Dropout = o.Dropout
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
}

// Validate verifies the config is runnable.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if !c.Data.Synthetic && c.Data.Dir == "" {
		return errors.New("data.dir must be set unless data.synthetic is true")
	}
	if c.Data.Samples < 0 {
		return errors.Errorf("data.samples must be >= 0 (got %d)", c.Data.Samples)
	}
	if c.Data.ValSplit < 0 || c.Data.ValSplit >= 1 {
		return errors.Errorf("data.val_split must be in [0, 1) (got %g)", c.Data.ValSplit)
	}
	for i, h := range c.Model.Hidden {
		if h <= 0 {
			return errors.Errorf("model.hidden[%d] must be > 0 (got %d)", i, h)
		}
	}
	if c.Model.Dropout < 0 || c.Model.Dropout >= 1 {
		return errors.Errorf("model.dropout must be in [0, 1) (got %g)", c.Model.Dropout)
	}
	switch c.Optimizer.Name {
	case "sgd", "adam":
	default:
		return errors.Errorf("optimizer.name must be sgd or adam (got %q)", c.Optimizer.Name)
	}
	if c.Optimizer.LR <= 0 {
		return errors.Errorf("optimizer.lr must be > 0 (got %g)", c.Optimizer.LR)
	}
	if c.Epochs <= 0 {
		return errors.Errorf("epochs must be > 0 (got %d)", c.Epochs)
	}
	if c.BatchSize <= 0 {
		return errors.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 100
	}
	return nil
}
