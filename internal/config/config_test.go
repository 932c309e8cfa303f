package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"

	"github.com/daryltucker/qr-bench/internal/imageproc"
	"github.com/daryltucker/qr-bench/internal/model"
)

// TestDefaultConfig documents the defaults the sweep runs with.
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	t.Run("default payload lengths are 8 and 32 bytes", func(t *testing.T) {
		t.Parallel()
		if cfg.IndexLength != 8 || cfg.KeyLength != 32 {
			t.Errorf("expected 8/32, got %d/%d", cfg.IndexLength, cfg.KeyLength)
		}
	})

	t.Run("default sizes include nonproportional scaling", func(t *testing.T) {
		t.Parallel()
		want := []model.Size{{Width: 1400, Height: 350}, {Width: 800, Height: 200}, {Width: 800, Height: 150}}
		if len(cfg.Sizes) != len(want) {
			t.Fatalf("expected %d sizes, got %d", len(want), len(cfg.Sizes))
		}
		for i := range want {
			if cfg.Sizes[i] != want[i] {
				t.Errorf("size %d: expected %v, got %v", i, want[i], cfg.Sizes[i])
			}
		}
	})

	t.Run("default iterations is 100", func(t *testing.T) {
		t.Parallel()
		if cfg.Iterations != 100 {
			t.Errorf("expected 100, got %d", cfg.Iterations)
		}
	})

	t.Run("default is sequential", func(t *testing.T) {
		t.Parallel()
		if cfg.Workers != 1 {
			t.Errorf("expected 1 worker, got %d", cfg.Workers)
		}
	})

	t.Run("default background is the built-in checkerboard", func(t *testing.T) {
		t.Parallel()
		if len(cfg.Backgrounds) != 1 || cfg.Backgrounds[0] != imageproc.BuiltinPrefix+"checkerboard" {
			t.Errorf("unexpected backgrounds %v", cfg.Backgrounds)
		}
		if _, err := imageproc.LoadBackground(cfg.Backgrounds[0]); err != nil {
			t.Errorf("default background does not load: %v", err)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid defaults, got %v", err)
		}
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("parses sizes and EC levels from YAML", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bench.yaml")
		content := `
backgrounds: ["builtin:white", "./bg/hacker.jpg"]
ec_levels: [M, Q]
sizes: ["640x160"]
iterations: 5
preprocessing:
  size: "1600x800"
  threshold: 100
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(cfg.Backgrounds) != 2 || cfg.Backgrounds[1] != "./bg/hacker.jpg" {
			t.Errorf("unexpected backgrounds %v", cfg.Backgrounds)
		}
		if len(cfg.ECLevels) != 2 || cfg.ECLevels[0] != model.ECLevelM || cfg.ECLevels[1] != model.ECLevelQ {
			t.Errorf("unexpected EC levels %v", cfg.ECLevels)
		}
		if len(cfg.Sizes) != 1 || cfg.Sizes[0] != (model.Size{Width: 640, Height: 160}) {
			t.Errorf("unexpected sizes %v", cfg.Sizes)
		}
		if cfg.Iterations != 5 {
			t.Errorf("expected 5 iterations, got %d", cfg.Iterations)
		}
		if cfg.Preprocessing.Size != (model.Size{Width: 1600, Height: 800}) || cfg.Preprocessing.Threshold != 100 {
			t.Errorf("unexpected preprocessing %+v", cfg.Preprocessing)
		}
		// untouched fields keep their defaults
		if cfg.KeyLength != 32 {
			t.Errorf("expected default key length, got %d", cfg.KeyLength)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()
		if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("invalid EC level fails to parse", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("ec_levels: [Z]\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

// TestLoadSearchOrder changes the working directory and XDG_CONFIG_HOME,
// so it cannot run in parallel.
func TestLoadSearchOrder(t *testing.T) {
	t.Cleanup(xdg.Reload)

	setup := func(t *testing.T) (cwd, xdgHome string) {
		t.Helper()
		cwd, xdgHome = t.TempDir(), t.TempDir()
		t.Chdir(cwd)
		t.Setenv("XDG_CONFIG_HOME", xdgHome)
		xdg.Reload()
		return cwd, xdgHome
	}
	write := func(t *testing.T, path string, iterations string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("iterations: "+iterations+"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	t.Run("no file falls back to defaults", func(t *testing.T) {
		setup(t)
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Iterations != DefaultConfig().Iterations {
			t.Errorf("expected default iterations, got %d", cfg.Iterations)
		}
	})

	t.Run("XDG config file is used when nothing is in the working directory", func(t *testing.T) {
		_, xdgHome := setup(t)
		write(t, filepath.Join(xdgHome, AppName, "config.yaml"), "3")
		if got := XDGConfigFile(); got != filepath.Join(xdgHome, AppName, "config.yaml") {
			t.Fatalf("expected XDG path under %s, got %s", xdgHome, got)
		}

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Iterations != 3 {
			t.Errorf("expected 3 iterations from the XDG file, got %d", cfg.Iterations)
		}
	})

	t.Run("qr-bench.yaml wins over the XDG file", func(t *testing.T) {
		cwd, xdgHome := setup(t)
		write(t, filepath.Join(xdgHome, AppName, "config.yaml"), "3")
		write(t, filepath.Join(cwd, "qr-bench.yaml"), "2")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Iterations != 2 {
			t.Errorf("expected 2 iterations from qr-bench.yaml, got %d", cfg.Iterations)
		}
	})

	t.Run("qr_bench.yaml wins over qr-bench.yaml", func(t *testing.T) {
		cwd, xdgHome := setup(t)
		write(t, filepath.Join(xdgHome, AppName, "config.yaml"), "3")
		write(t, filepath.Join(cwd, "qr-bench.yaml"), "2")
		write(t, filepath.Join(cwd, "qr_bench.yaml"), "1")

		cfg, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Iterations != 1 {
			t.Errorf("expected 1 iteration from qr_bench.yaml, got %d", cfg.Iterations)
		}
	})

	t.Run("broken default file is an error", func(t *testing.T) {
		cwd, _ := setup(t)
		write(t, filepath.Join(cwd, "qr_bench.yaml"), "[not a number")

		if _, err := Load(""); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"no backgrounds", func(c *Config) { c.Backgrounds = nil }, ErrNoBackgrounds},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }, ErrInvalidIterations},
		{"zero workers", func(c *Config) { c.Workers = 0 }, ErrInvalidWorkers},
		{"quality out of range", func(c *Config) { c.JPEGQualities = []int{101} }, ErrInvalidQuality},
		{"negative box size", func(c *Config) { c.BoxSizes = []int{-1} }, ErrInvalidBoxSize},
		{"empty size", func(c *Config) { c.Sizes = []model.Size{{Width: 0, Height: 10}} }, ErrInvalidSize},
		{"no EC levels", func(c *Config) { c.ECLevels = nil }, ErrNoVariants},
		{"bad border color", func(c *Config) { c.BorderColors = []string{"pink"} }, ErrInvalidBorderColor},
		{"short border color", func(c *Config) { c.BorderColors = []string{"#fff"} }, ErrInvalidBorderColor},
		{"non-hex border color", func(c *Config) { c.BorderColors = []string{"#AA33ZZ"} }, ErrInvalidBorderColor},
		{"border color without hash", func(c *Config) { c.BorderColors = []string{"AA336A"} }, nil},
		{"zero key length", func(c *Config) { c.KeyLength = 0 }, ErrInvalidLength},
		{"negative quiet zone", func(c *Config) { c.QuietZone = -1 }, ErrInvalidQuietZone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Parallel()

	snapshot, err := DefaultConfig().Marshal()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := os.WriteFile(path, []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("snapshot does not load back: %v", err)
	}
	if cfg.Sizes[2] != (model.Size{Width: 800, Height: 150}) || cfg.ECLevels[1] != model.ECLevelH {
		t.Errorf("snapshot lost sweep values: %+v", cfg)
	}
}
