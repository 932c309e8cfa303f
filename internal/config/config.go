/*
PURPOSE:
  Defines the configuration structure and loading logic for qr-bench.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Configure the sweep: backgrounds, box sizes, EC levels, border colors,
    JPEG qualities, target sizes, iteration count.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Sizes are written as "1400x350" and EC levels as "L".."H".
  - Optional sinks (SQLite history, InfluxDB) are configured here too.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3, github.com/adrg/xdg
  - Uses: internal/qr (color parsing), internal/imageproc (built-in prefix)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing default files fall back to DefaultConfig().
  - Validate() returns sentinel errors from errors.go.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults mirror the parameters the scanning tests were originally tuned with.

USAGE:
  cfg, err := config.Load("qr_bench.yaml")

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update DefaultConfig().

RELATED FILES:
  - internal/config/errors.go
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new sweep dimensions.
*/

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/daryltucker/qr-bench/internal/imageproc"
	"github.com/daryltucker/qr-bench/internal/model"
	"github.com/daryltucker/qr-bench/internal/qr"
)

// AppName is used for XDG directory paths.
const AppName = "qr-bench"

// Config represents the full configuration for qr-bench.
type Config struct {
	ImageDir    string   `yaml:"image_dir"`
	Backgrounds []string `yaml:"backgrounds"`

	IndexLength int    `yaml:"index_length"` // bytes of "smart contract index"
	KeyLength   int    `yaml:"key_length"`   // bytes of decryption key
	BaseURL     string `yaml:"base_url"`

	BoxSizes     []int           `yaml:"box_sizes"`
	QuietZone    int             `yaml:"quiet_zone"` // modules; at least 4 per ISO/IEC 18004
	ECLevels     []model.ECLevel `yaml:"ec_levels"`
	BorderColors []string        `yaml:"border_colors"`
	Label        []string        `yaml:"label"`

	JPEGQualities []int         `yaml:"jpeg_qualities"`
	Sizes         []model.Size  `yaml:"sizes"`
	Preprocess    []bool        `yaml:"preprocess"`
	Preprocessing Preprocessing `yaml:"preprocessing"`

	Iterations int    `yaml:"iterations"`
	Seed       uint64 `yaml:"seed"`    // 0 draws a random seed
	Workers    int    `yaml:"workers"` // configurations decoded in parallel per table

	Output Output `yaml:"output"`
	DBDir  string `yaml:"db_dir"`
	SaveDB bool   `yaml:"save_db"`
	Influx Influx `yaml:"influx"`
}

// Preprocessing tunes the resize + blur + threshold recipe.
type Preprocessing struct {
	// Size is the resize target; zero restores the background's original size.
	Size      model.Size `yaml:"size"`
	BlurSigma float64    `yaml:"blur_sigma"`
	Threshold uint8      `yaml:"threshold"`
}

// Output controls the result files.
type Output struct {
	Dir      string `yaml:"dir"`
	CSV      string `yaml:"csv"`
	JSON     string `yaml:"json"`
	Markdown string `yaml:"markdown"`
}

// Influx configures the optional InfluxDB v2 sink. An empty URL disables it.
type Influx struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// Enabled reports whether results should be pushed to InfluxDB.
func (i Influx) Enabled() bool {
	return i.URL != ""
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ImageDir:      "./images/",
		Backgrounds:   []string{imageproc.BuiltinPrefix + "checkerboard"},
		IndexLength:   8,
		KeyLength:     32,
		BaseURL:       "https://mysomeid.com/v",
		BoxSizes:      []int{3, 4},
		QuietZone:     4,
		ECLevels:      []model.ECLevel{model.ECLevelL, model.ECLevelH},
		BorderColors:  []string{"#AA336A"},
		Label:         []string{"Verified by", "MySoMeID"},
		JPEGQualities: []int{80, 50},
		Sizes: []model.Size{
			{Width: 1400, Height: 350}, // size LinkedIn often provides
			{Width: 800, Height: 200},  // smaller LinkedIn size
			{Width: 800, Height: 150},  // nonproportional scaling
		},
		Preprocess: []bool{true, false},
		Preprocessing: Preprocessing{
			BlurSigma: 1.1, // sigma OpenCV derives for a 5x5 kernel
			Threshold: 128,
		},
		Iterations: 100,
		Workers:    1,
		Output: Output{
			Dir:  ".",
			CSV:  "qr_results.csv",
			JSON: "qr_results.json",
		},
	}
}

// DefaultDBDir is where the run history lives unless db_dir is set.
func DefaultDBDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigFile is the per-user config file location.
func XDGConfigFile() string {
	return filepath.Join(xdg.ConfigHome, AppName, "config.yaml")
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		defaults := []string{"qr_bench.yaml", "qr-bench.yaml", XDGConfigFile()}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				found = true
				break
			}
		}
		if !found {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Marshal renders the effective configuration, used as the run snapshot.
func (c *Config) Marshal() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Validate checks the configuration before a sweep starts.
func (c *Config) Validate() error {
	if len(c.Backgrounds) == 0 {
		return ErrNoBackgrounds
	}
	if c.IndexLength <= 0 || c.KeyLength <= 0 {
		return ErrInvalidLength
	}
	if c.QuietZone < 0 {
		return ErrInvalidQuietZone
	}
	if c.Iterations <= 0 {
		return ErrInvalidIterations
	}
	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if len(c.BoxSizes) == 0 || len(c.ECLevels) == 0 || len(c.BorderColors) == 0 ||
		len(c.JPEGQualities) == 0 || len(c.Sizes) == 0 || len(c.Preprocess) == 0 {
		return ErrNoVariants
	}
	for _, b := range c.BoxSizes {
		if b <= 0 {
			return ErrInvalidBoxSize
		}
	}
	for _, q := range c.JPEGQualities {
		if q < 1 || q > 100 {
			return ErrInvalidQuality
		}
	}
	for _, s := range c.Sizes {
		if s.Width <= 0 || s.Height <= 0 {
			return ErrInvalidSize
		}
	}
	if p := c.Preprocessing.Size; !p.IsZero() && (p.Width <= 0 || p.Height <= 0) {
		return ErrInvalidSize
	}
	for _, bc := range c.BorderColors {
		if _, err := qr.ParseHexColor(bc); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidBorderColor, err)
		}
	}
	return nil
}
